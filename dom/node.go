package dom

import (
	"sort"
	"strings"
)

type NodeType uint16

const (
	ElementNode NodeType = iota + 1
	AttrNode
	TextNode
	CDATASectionNode
	ProcessingInstructionNode
	CommentNode
	DocumentNode
	DocumentTypeNode
	DocumentFragmentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case AttrNode:
		return "attribute"
	case TextNode:
		return "text"
	case CDATASectionNode:
		return "cdata-section"
	case ProcessingInstructionNode:
		return "processing-instruction"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	case DocumentTypeNode:
		return "doctype"
	case DocumentFragmentNode:
		return "document-fragment"
	}
	return "unknown"
}

// https://dom.whatwg.org/#node
//
// A Node is a tagged union: NodeType says which of the embedded kind
// structs is set. Character data kinds (text, comment, CDATA and
// processing instructions) all carry a *CharacterData.
type Node struct {
	NodeType                                                        NodeType
	NodeName                                                        string
	OwnerDocument                                                   *Node
	ParentNode, FirstChild, LastChild, PreviousSibling, NextSibling *Node
	ChildNodes                                                      NodeList

	// Node types
	*Element
	*Attr
	*CharacterData
	*ProcessingInstruction
	*Document
	*DocumentType
}

// NewComment returns a comment node with its Data section filled.
func NewComment(od *Node, data string) *Node {
	return &Node{
		NodeType:      CommentNode,
		NodeName:      "#comment",
		OwnerDocument: od,
		CharacterData: &CharacterData{Data: data},
	}
}

func NewTextNode(od *Node, text string) *Node {
	return &Node{
		NodeType:      TextNode,
		NodeName:      "#text",
		OwnerDocument: od,
		CharacterData: &CharacterData{Data: text},
	}
}

func NewCDATASection(od *Node, data string) *Node {
	return &Node{
		NodeType:      CDATASectionNode,
		NodeName:      "#cdata-section",
		OwnerDocument: od,
		CharacterData: &CharacterData{Data: data},
	}
}

func NewProcessingInstruction(od *Node, target, data string) *Node {
	return &Node{
		NodeType:              ProcessingInstructionNode,
		NodeName:              target,
		OwnerDocument:         od,
		CharacterData:         &CharacterData{Data: data},
		ProcessingInstruction: &ProcessingInstruction{Target: target},
	}
}

func NewDocTypeNode(od *Node, name, pub, sys string) *Node {
	return &Node{
		NodeType:      DocumentTypeNode,
		NodeName:      name,
		OwnerDocument: od,
		DocumentType: &DocumentType{
			Name:     name,
			PublicID: pub,
			SystemID: sys,
		},
	}
}

func NewDocumentFragment(od *Node) *Node {
	return &Node{
		NodeType:      DocumentFragmentNode,
		NodeName:      "#document-fragment",
		OwnerDocument: od,
	}
}

// NewElement creates an element. The optional argument is the namespace
// prefix.
func NewElement(od *Node, localName string, namespace Namespace, optionals ...string) *Node {
	var prefix string
	if len(optionals) >= 1 {
		prefix = optionals[0]
	}
	n := &Node{
		NodeType:      ElementNode,
		NodeName:      qualifiedName(prefix, localName),
		OwnerDocument: od,
		Element: &Element{
			NamespaceURI: namespace,
			Prefix:       prefix,
			LocalName:    localName,
		},
	}
	n.Element.Attributes = NewNamedNodeMap(n)
	return n
}

// NewAttrNode wraps an attribute in a node so it can be used as a range
// container.
func NewAttrNode(od *Node, namespace Namespace, prefix, localName, value string) *Node {
	return &Node{
		NodeType:      AttrNode,
		NodeName:      qualifiedName(prefix, localName),
		OwnerDocument: od,
		Attr: &Attr{
			NamespaceURI: namespace,
			Prefix:       prefix,
			LocalName:    localName,
			Value:        value,
		},
	}
}

func qualifiedName(prefix, localName string) string {
	if prefix == "" {
		return localName
	}
	return prefix + ":" + localName
}

// ownerDocumentOrSelf returns the document whose live ranges observe
// edits to n.
func (n *Node) ownerDocumentOrSelf() *Node {
	if n.NodeType == DocumentNode {
		return n
	}
	return n.OwnerDocument
}

func (n *Node) HasChildNodes() bool {
	return len(n.ChildNodes) > 0
}

func (n *Node) CountChildNodes() int {
	return len(n.ChildNodes)
}

// ChildAt returns the child at index i, or nil when out of range.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= len(n.ChildNodes) {
		return nil
	}
	return n.ChildNodes[i]
}

// NodeIndex is the number of preceding siblings.
func (n *Node) NodeIndex() int {
	i := 0
	for s := n.PreviousSibling; s != nil; s = s.PreviousSibling {
		i++
	}
	return i
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.ParentNode {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) RootNode() *Node {
	var prev *Node
	for i := n; i != nil; i = i.ParentNode {
		prev = i
	}

	return prev
}

// IsConnected reports whether the node's root is a document.
func (n *Node) IsConnected() bool {
	return n.RootNode().NodeType == DocumentNode
}

func (n *Node) ParentElement() *Node {
	if n.ParentNode != nil && n.ParentNode.NodeType == ElementNode {
		return n.ParentNode
	}
	return nil
}

func (n *Node) IsCharacterData() bool {
	switch n.NodeType {
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		return true
	}
	return false
}

// OffsetInCharacters reports whether offsets into n count code units
// rather than children.
func (n *Node) OffsetInCharacters() bool {
	return n.IsCharacterData()
}

func (n *Node) IsContainerNode() bool {
	switch n.NodeType {
	case ElementNode, DocumentNode, DocumentFragmentNode:
		return true
	}
	return false
}

func (n *Node) IsHTMLElement() bool {
	return n.NodeType == ElementNode && n.Element.NamespaceURI == Htmlns
}

// HasTagName reports whether n is an HTML element with the given local
// name.
func (n *Node) HasTagName(name string) bool {
	return n.IsHTMLElement() && strings.EqualFold(n.Element.LocalName, name)
}

// IsInHTMLDocument reports whether the node belongs to an HTML document.
func (n *Node) IsInHTMLDocument() bool {
	doc := n.ownerDocumentOrSelf()
	return doc != nil && doc.Document.IsHTMLDocument()
}

// TextContent concatenates the data of all text descendants.
func (n *Node) TextContent() string {
	switch n.NodeType {
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		return n.CharacterData.Data
	case AttrNode:
		return n.Attr.Value
	case DocumentNode, DocumentTypeNode:
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = NextNode(c, n) {
		if c.NodeType == TextNode || c.NodeType == CDATASectionNode {
			b.WriteString(c.CharacterData.Data)
		}
	}
	return b.String()
}

func serializeNodeType(node *Node, ident int) string {
	switch node.NodeType {
	case ElementNode:
		e := "<"
		switch node.Element.NamespaceURI {
		case Svgns:
			e += "svg "
		case Mathmlns:
			e += "math "
		}
		e += node.NodeName
		attrs := node.Element.Attributes.Attrs
		if len(attrs) != 0 {
			e += ">"
			sorted := make([]*Attr, len(attrs))
			copy(sorted, attrs)
			sort.SliceStable(sorted, func(i, j int) bool {
				return sorted[i].QualifiedName() < sorted[j].QualifiedName()
			})
			spaces := "| "
			for i := 1; i < ident; i++ {
				spaces += "  "
			}
			for _, attr := range sorted {
				var ns string
				switch attr.NamespaceURI {
				case Xmlnsns:
					ns = "xmlns "
				case Xmlns:
					ns = "xml "
				case Xlinkns:
					ns = "xlink "
				}
				e += "\n" + spaces + ns + attr.LocalName + "=\"" + attr.Value + "\""
			}
		} else {
			e += ">"
		}
		return e
	case TextNode:
		return "\"" + node.CharacterData.Data + "\""
	case CDATASectionNode:
		return "<![CDATA[" + node.CharacterData.Data + "]]>"
	case CommentNode:
		return "<!-- " + node.CharacterData.Data + " -->"
	case DocumentTypeNode:
		d := "<!DOCTYPE " + node.DocumentType.Name
		if len(node.DocumentType.PublicID) == 0 && len(node.DocumentType.SystemID) == 0 {
			return d + ">"
		}
		d += " \"" + node.DocumentType.PublicID + "\""
		d += " \"" + node.DocumentType.SystemID + "\""
		return d + ">"
	case DocumentNode:
		return "#document"
	case DocumentFragmentNode:
		return "#document-fragment"
	case ProcessingInstructionNode:
		return "<?" + node.ProcessingInstruction.Target + " " + node.CharacterData.Data + ">"
	case AttrNode:
		return node.NodeName + "=\"" + node.Attr.Value + "\""
	}
	return ""
}

func (node *Node) serialize(ident int) string {
	ser := serializeNodeType(node, ident+1) + "\n"
	if node.NodeType != DocumentNode && node.NodeType != DocumentFragmentNode {
		spaces := "| "
		for i := 1; i < ident; i++ {
			spaces += "  "
		}
		ser = spaces + ser
	}
	for _, child := range node.ChildNodes {
		ser += child.serialize(ident + 1)
	}

	return ser
}

// String dumps the subtree in the html5lib tree-construction test format.
func (node *Node) String() string {
	return strings.TrimRight(node.serialize(0), "\n")
}

// CloneNode copies n. The copy has no parent and belongs to n's document;
// cloning a document yields a new document owning its own copy.
func (n *Node) CloneNode(deep bool) *Node {
	return n.cloneInto(n.OwnerDocument, deep)
}

func (n *Node) cloneInto(od *Node, deep bool) *Node {
	var copy *Node
	switch n.NodeType {
	case ElementNode:
		copy = NewElement(od, n.Element.LocalName, n.Element.NamespaceURI, n.Element.Prefix)
		for _, attr := range n.Element.Attributes.Attrs {
			a := *attr
			copy.Element.Attributes.SetNamedItem(&a)
		}
	case DocumentNode:
		d := *n.Document
		d.ranges = nil
		d.listeners = nil
		copy = &Node{NodeType: DocumentNode, NodeName: n.NodeName, Document: &d}
		copy.OwnerDocument = nil
		od = copy
	case DocumentTypeNode:
		dt := *n.DocumentType
		copy = &Node{NodeType: DocumentTypeNode, NodeName: n.NodeName, OwnerDocument: od, DocumentType: &dt}
	case AttrNode:
		a := *n.Attr
		a.OwnerElement = nil
		copy = &Node{NodeType: AttrNode, NodeName: n.NodeName, OwnerDocument: od, Attr: &a}
	case ProcessingInstructionNode:
		copy = NewProcessingInstruction(od, n.ProcessingInstruction.Target, n.CharacterData.Data)
	case TextNode, CDATASectionNode, CommentNode:
		copy = &Node{NodeType: n.NodeType, NodeName: n.NodeName, OwnerDocument: od, CharacterData: &CharacterData{Data: n.CharacterData.Data}}
	case DocumentFragmentNode:
		copy = NewDocumentFragment(od)
	}

	if deep {
		for _, child := range n.ChildNodes {
			copy.appendClone(child.cloneInto(od, true))
		}
	}

	return copy
}

// appendClone links a freshly cloned child without firing notifications:
// nothing can observe a node that is still being built.
func (n *Node) appendClone(c *Node) {
	c.ParentNode = n
	if n.LastChild != nil {
		n.LastChild.NextSibling = c
		c.PreviousSibling = n.LastChild
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
	n.ChildNodes = append(n.ChildNodes, c)
}

// https://dom.whatwg.org/#concept-node-equals
func (n *Node) IsEqualNode(on *Node) bool {
	if on == nil || n.NodeType != on.NodeType {
		return false
	}

	switch n.NodeType {
	case DocumentTypeNode:
		if *n.DocumentType != *on.DocumentType {
			return false
		}
	case ElementNode:
		if n.Element.NamespaceURI != on.Element.NamespaceURI ||
			n.Element.Prefix != on.Element.Prefix ||
			n.Element.LocalName != on.Element.LocalName ||
			n.Element.Attributes.Length() != on.Element.Attributes.Length() {
			return false
		}
		for _, a := range n.Element.Attributes.Attrs {
			b := on.Element.Attributes.GetNamedItemNS(a.NamespaceURI, a.LocalName)
			if b == nil || b.Value != a.Value {
				return false
			}
		}
	case AttrNode:
		if n.Attr.NamespaceURI != on.Attr.NamespaceURI || n.Attr.LocalName != on.Attr.LocalName || n.Attr.Value != on.Attr.Value {
			return false
		}
	case ProcessingInstructionNode:
		if n.ProcessingInstruction.Target != on.ProcessingInstruction.Target || n.CharacterData.Data != on.CharacterData.Data {
			return false
		}
	case TextNode, CommentNode, CDATASectionNode:
		if n.CharacterData.Data != on.CharacterData.Data {
			return false
		}
	}

	if len(n.ChildNodes) != len(on.ChildNodes) {
		return false
	}
	for i := range n.ChildNodes {
		if !n.ChildNodes[i].IsEqualNode(on.ChildNodes[i]) {
			return false
		}
	}
	return true
}
