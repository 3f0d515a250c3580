package dom

import "strings"

// NamedNodeMap keeps attributes in insertion order so serialization is
// stable.
type NamedNodeMap struct {
	Attrs             []*Attr
	AssociatedElement *Node
}

func NewNamedNodeMap(oe *Node) *NamedNodeMap {
	return &NamedNodeMap{AssociatedElement: oe}
}

func (n *NamedNodeMap) Length() int {
	return len(n.Attrs)
}

func (n *NamedNodeMap) Item(i int) *Attr {
	if i < 0 || i >= len(n.Attrs) {
		return nil
	}
	return n.Attrs[i]
}

func (n *NamedNodeMap) lowercaseNames() bool {
	oe := n.AssociatedElement
	return oe != nil && oe.IsHTMLElement() && oe.IsInHTMLDocument()
}

func (n *NamedNodeMap) GetNamedItem(qn string) *Attr {
	return n.getAttributeByName(qn)
}

func (n *NamedNodeMap) getAttributeByName(qn string) *Attr {
	if n.lowercaseNames() {
		qn = strings.ToLower(qn)
	}

	for _, a := range n.Attrs {
		if a.QualifiedName() == qn {
			return a
		}
	}

	return nil
}

func (n *NamedNodeMap) getAttributeByNSLocalName(ns Namespace, ln string) int {
	for i, a := range n.Attrs {
		if a.NamespaceURI == ns && a.LocalName == ln {
			return i
		}
	}

	return -1
}

func (n *NamedNodeMap) GetNamedItemNS(ns Namespace, ln string) *Attr {
	if i := n.getAttributeByNSLocalName(ns, ln); i >= 0 {
		return n.Attrs[i]
	}
	return nil
}

// SetNamedItem adds s, replacing an attribute with the same namespace and
// local name. It returns the replaced attribute, if any.
func (n *NamedNodeMap) SetNamedItem(s *Attr) *Attr {
	if s == nil {
		return nil
	}
	s.OwnerElement = n.AssociatedElement

	i := n.getAttributeByNSLocalName(s.NamespaceURI, s.LocalName)
	if i < 0 {
		n.Attrs = append(n.Attrs, s)
		return nil
	}
	old := n.Attrs[i]
	if old == s {
		return nil
	}
	n.Attrs[i] = s
	old.OwnerElement = nil
	return old
}

func (n *NamedNodeMap) SetNamedItemNS(attr *Attr) *Attr {
	return n.SetNamedItem(attr)
}

func (n *NamedNodeMap) RemoveNamedItem(qn string) *Attr {
	a := n.getAttributeByName(qn)
	if a == nil {
		return nil
	}
	return n.RemoveNamedItemNS(a.NamespaceURI, a.LocalName)
}

func (n *NamedNodeMap) RemoveNamedItemNS(ns Namespace, ln string) *Attr {
	i := n.getAttributeByNSLocalName(ns, ln)
	if i < 0 {
		return nil
	}
	a := n.Attrs[i]
	n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
	a.OwnerElement = nil
	return a
}
