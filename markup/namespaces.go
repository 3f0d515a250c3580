package markup

import (
	"sort"

	"github.com/heathj/domedit/dom"
)

// Namespaces maps a prefix to the namespace URI in scope for it. The empty
// prefix is the default namespace. Each level of the walk works on its own
// copy, so declarations never leak back to the parent scope.
type Namespaces map[string]dom.Namespace

func (ns Namespaces) clone() Namespaces {
	out := make(Namespaces, len(ns)+2)
	for k, v := range ns {
		out[k] = v
	}
	return out
}

// prefixFor returns a non-empty prefix bound to uri, preferring the
// alphabetically first one.
func (ns Namespaces) prefixFor(uri dom.Namespace) (string, bool) {
	var prefixes []string
	for p, u := range ns {
		if p != "" && u == uri {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		return "", false
	}
	sort.Strings(prefixes)
	return prefixes[0], true
}

func newNamespaces() Namespaces {
	return Namespaces{"xml": dom.Xmlns}
}
