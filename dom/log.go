package dom

import (
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"
)

// PrintDiff logs the difference between two tree dumps at trace level.
func PrintDiff(a, b, method string) {
	if a == b {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, true)
	logrus.WithField("method", method).Tracef("[TREE]: %s\n\n", dmp.DiffPrettyText(diffs))
}

// traceMutation snapshots the tree around n when trace logging is on and
// returns the function that logs the diff once the edit is done.
func traceMutation(n *Node, method string) func() {
	if !logrus.IsLevelEnabled(logrus.TraceLevel) {
		return func() {}
	}
	root := n.RootNode()
	old := root.String()
	return func() {
		PrintDiff(old, root.String(), method)
	}
}
