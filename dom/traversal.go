package dom

import (
	"strconv"
	"strings"
)

// NextNode returns the node after n in tree order, staying inside
// stayWithin when it is not nil.
func NextNode(n, stayWithin *Node) *Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return NextSkippingChildren(n, stayWithin)
}

// NextSkippingChildren returns the node after n's subtree in tree order.
func NextSkippingChildren(n, stayWithin *Node) *Node {
	for p := n; p != nil; p = p.ParentNode {
		if p == stayWithin {
			return nil
		}
		if p.NextSibling != nil {
			return p.NextSibling
		}
	}
	return nil
}

// PreviousNode returns the node before n in tree order.
func PreviousNode(n, stayWithin *Node) *Node {
	if n == stayWithin {
		return nil
	}
	if prev := n.PreviousSibling; prev != nil {
		for prev.LastChild != nil {
			prev = prev.LastChild
		}
		return prev
	}
	return n.ParentNode
}

// Ancestors returns the inclusive ancestors of n, nearest first.
func Ancestors(n *Node) []*Node {
	var out []*Node
	for p := n; p != nil; p = p.ParentNode {
		out = append(out, p)
	}
	return out
}

// NodeAtPath follows a path of child indexes such as "/0/1/2" from root.
// The empty path and "/" name root itself.
func NodeAtPath(root *Node, path string) (*Node, error) {
	n := root
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		i, err := strconv.Atoi(seg)
		if err != nil {
			return nil, newException(SyntaxError, "bad path segment %q in %q", seg, path)
		}
		child := n.ChildAt(i)
		if child == nil {
			return nil, newException(NotFoundError, "%s has no child %d", n.NodeName, i)
		}
		n = child
	}
	return n, nil
}

// PathOf returns the child-index path from the root of n's tree to n.
func PathOf(n *Node) string {
	var segs []string
	for p := n; p.ParentNode != nil; p = p.ParentNode {
		segs = append(segs, strconv.Itoa(p.NodeIndex()))
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
