package dom

// Attr is https://dom.whatwg.org/#attr
type Attr struct {
	NamespaceURI      Namespace
	Prefix, LocalName string
	Value             string
	OwnerElement      *Node
}

func (a *Attr) QualifiedName() string {
	return qualifiedName(a.Prefix, a.LocalName)
}
