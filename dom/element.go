package dom

import "strings"

// Namespace is a namespace URI.
type Namespace string

const (
	NoNamespace Namespace = ""
	Htmlns      Namespace = "http://www.w3.org/1999/xhtml"
	Mathmlns    Namespace = "http://www.w3.org/1998/Math/MathML"
	Svgns       Namespace = "http://www.w3.org/2000/svg"
	Xlinkns     Namespace = "http://www.w3.org/1999/xlink"
	Xmlns       Namespace = "http://www.w3.org/XML/1998/namespace"
	Xmlnsns     Namespace = "http://www.w3.org/2000/xmlns/"
)

// Element is https://dom.whatwg.org/#interface-element
type Element struct {
	NamespaceURI      Namespace
	Prefix, LocalName string
	Attributes        *NamedNodeMap
}

// TagName is the qualified name as written in markup.
func (e *Element) TagName() string {
	return qualifiedName(e.Prefix, e.LocalName)
}

func (e *Element) HasAttributes() bool {
	return e.Attributes.Length() > 0
}

func (e *Element) GetAttributeNames() []string {
	names := make([]string, 0, e.Attributes.Length())
	for _, a := range e.Attributes.Attrs {
		names = append(names, a.QualifiedName())
	}
	return names
}

func (e *Element) GetAttribute(qualifiedName string) string {
	if a := e.Attributes.GetNamedItem(qualifiedName); a != nil {
		return a.Value
	}
	return ""
}

func (e *Element) GetAttributeNS(namespace Namespace, localName string) string {
	if a := e.Attributes.GetNamedItemNS(namespace, localName); a != nil {
		return a.Value
	}
	return ""
}

func (e *Element) HasAttribute(qualifiedName string) bool {
	return e.Attributes.GetNamedItem(qualifiedName) != nil
}

func (e *Element) HasAttributeNS(namespace Namespace, localName string) bool {
	return e.Attributes.GetNamedItemNS(namespace, localName) != nil
}

// SetAttribute sets an attribute with no namespace, lowercasing the name on
// HTML elements in HTML documents.
func (e *Element) SetAttribute(qualifiedName, value string) {
	if a := e.Attributes.GetNamedItem(qualifiedName); a != nil {
		a.Value = value
		return
	}
	if e.Attributes.lowercaseNames() {
		qualifiedName = strings.ToLower(qualifiedName)
	}
	e.Attributes.SetNamedItem(&Attr{LocalName: qualifiedName, Value: value})
}

func (e *Element) SetAttributeNS(namespace Namespace, qualifiedName, value string) {
	prefix, local := splitQualifiedName(qualifiedName)
	if a := e.Attributes.GetNamedItemNS(namespace, local); a != nil {
		a.Prefix = prefix
		a.Value = value
		return
	}
	e.Attributes.SetNamedItem(&Attr{NamespaceURI: namespace, Prefix: prefix, LocalName: local, Value: value})
}

func (e *Element) RemoveAttribute(qualifiedName string) {
	e.Attributes.RemoveNamedItem(qualifiedName)
}

func (e *Element) RemoveAttributeNS(namespace Namespace, localName string) {
	e.Attributes.RemoveNamedItemNS(namespace, localName)
}

func splitQualifiedName(qn string) (prefix, local string) {
	if i := strings.IndexByte(qn, ':'); i >= 0 {
		return qn[:i], qn[i+1:]
	}
	return "", qn
}
