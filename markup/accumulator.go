package markup

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/domedit/dom"
)

// ResolveURLs is the policy applied to URL-valued attributes.
type ResolveURLs uint8

const (
	DoNotResolveURLs ResolveURLs = iota
	ResolveAllURLs
	// ResolveNonLocalURLs completes URLs unless the document itself was
	// loaded from a local file.
	ResolveNonLocalURLs
)

func (r ResolveURLs) String() string {
	switch r {
	case DoNotResolveURLs:
		return "none"
	case ResolveAllURLs:
		return "all"
	case ResolveNonLocalURLs:
		return "non-local"
	}
	return "unknown"
}

// ParseResolveURLs maps "none", "all" and "non-local" to a policy.
func ParseResolveURLs(s string) (ResolveURLs, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DoNotResolveURLs, nil
	case "all":
		return ResolveAllURLs, nil
	case "non-local":
		return ResolveNonLocalURLs, nil
	}
	return DoNotResolveURLs, errors.Errorf("unknown URL resolution policy %q", s)
}

// FragmentSerialization chooses between HTML and XML syntax. HTML syntax is
// only used for nodes that belong to an HTML document.
type FragmentSerialization uint8

const (
	HTMLFragmentSerialization FragmentSerialization = iota
	XMLFragmentSerialization
)

func (f FragmentSerialization) String() string {
	if f == XMLFragmentSerialization {
		return "xml"
	}
	return "html"
}

type ChildrenMode uint8

const (
	IncludeNode ChildrenMode = iota
	ChildrenOnly
)

// MarkupAccumulator serializes a node tree into markup text. When a range
// is set, text in its boundary containers is clipped to the range.
type MarkupAccumulator struct {
	// AppendCustomAttributes, when set, is called after an element's own
	// attributes are written.
	AppendCustomAttributes func(b *strings.Builder, el *dom.Node, ns Namespaces)

	nodes       *[]*dom.Node
	resolve     ResolveURLs
	r           *dom.Range
	mode        FragmentSerialization
	prefixLevel int
	b           strings.Builder
}

// NewAccumulator returns an accumulator. If nodes is not nil every node
// whose start markup is written is appended to it.
func NewAccumulator(nodes *[]*dom.Node, resolve ResolveURLs, r *dom.Range, mode FragmentSerialization) *MarkupAccumulator {
	return &MarkupAccumulator{
		nodes:   nodes,
		resolve: resolve,
		r:       r,
		mode:    mode,
	}
}

// SerializeNodes writes target and its subtree, skipping nodeToSkip and any
// element whose name is in tagNamesToSkip, and returns the markup
// accumulated so far.
func (a *MarkupAccumulator) SerializeNodes(target, nodeToSkip *dom.Node, children ChildrenMode, tagNamesToSkip []string) string {
	logrus.WithFields(logrus.Fields{
		"node": target.NodeName,
		"mode": a.mode,
	}).Debug("serializing nodes")
	a.serializeNodesWithNamespaces(target, nodeToSkip, children, newNamespaces(), tagNamesToSkip)
	return a.b.String()
}

func (a *MarkupAccumulator) serializeNodesWithNamespaces(target, nodeToSkip *dom.Node, children ChildrenMode, parentNS Namespaces, tagNamesToSkip []string) {
	if target == nodeToSkip || shouldSkipTag(target, tagNamesToSkip) {
		return
	}

	ns := parentNS.clone()
	if children == IncludeNode {
		a.appendStartTag(target, ns)
	}

	if !(a.serializeAsHTML(target) && ElementCannotHaveEndTag(target)) {
		for c := target.FirstChild; c != nil; c = c.NextSibling {
			a.serializeNodesWithNamespaces(c, nodeToSkip, IncludeNode, ns, tagNamesToSkip)
		}
	}

	if children == IncludeNode {
		a.appendEndTag(target)
	}
}

func shouldSkipTag(n *dom.Node, tagNames []string) bool {
	if n.NodeType != dom.ElementNode {
		return false
	}
	for _, name := range tagNames {
		if strings.EqualFold(n.Element.LocalName, name) {
			return true
		}
	}
	return false
}

func (a *MarkupAccumulator) serializeAsHTML(n *dom.Node) bool {
	return a.mode != XMLFragmentSerialization && n.IsInHTMLDocument()
}

func (a *MarkupAccumulator) appendStartTag(n *dom.Node, ns Namespaces) {
	a.appendStartMarkup(&a.b, n, ns)
	if a.nodes != nil {
		*a.nodes = append(*a.nodes, n)
	}
}

func (a *MarkupAccumulator) appendEndTag(n *dom.Node) {
	if n.NodeType == dom.ElementNode {
		a.appendEndMarkup(&a.b, n)
	}
}

func (a *MarkupAccumulator) appendString(s string) {
	a.b.WriteString(s)
}

func (a *MarkupAccumulator) appendStartMarkup(b *strings.Builder, n *dom.Node, ns Namespaces) {
	switch n.NodeType {
	case dom.TextNode:
		a.appendText(b, n)
	case dom.CommentNode:
		appendComment(b, n.CharacterData.Data)
	case dom.DocumentNode:
		appendXMLDeclaration(b, n.Document)
	case dom.DocumentFragmentNode:
	case dom.DocumentTypeNode:
		appendDocumentType(b, n.DocumentType)
	case dom.ProcessingInstructionNode:
		appendProcessingInstruction(b, n.ProcessingInstruction.Target, n.CharacterData.Data)
	case dom.ElementNode:
		a.appendElement(b, n, ns)
	case dom.CDATASectionNode:
		appendCDATASection(b, a.textInRange(n))
	case dom.AttrNode:
		AppendCharactersReplacingEntities(b, n.Attr.Value, EntityMaskInAttributeValue)
	}
}

func (a *MarkupAccumulator) appendEndMarkup(b *strings.Builder, el *dom.Node) {
	if a.shouldSelfClose(el) || (!el.HasChildNodes() && ElementCannotHaveEndTag(el)) {
		return
	}
	b.WriteString("</")
	b.WriteString(el.Element.TagName())
	b.WriteByte('>')
}

// textInRange returns the part of a character data node that lies inside
// the accumulator's range.
func (a *MarkupAccumulator) textInRange(n *dom.Node) string {
	if a.r == nil {
		return n.CharacterData.Data
	}
	length := n.Length()
	start, end := 0, length
	if n == a.r.EndContainer() {
		end = a.r.EndOffset()
	}
	if n == a.r.StartContainer() {
		start = a.r.StartOffset()
	}
	if start == 0 && end == length {
		return n.CharacterData.Data
	}
	if end < start {
		return ""
	}
	s, err := n.SubstringData(start, end-start)
	if err != nil {
		logrus.WithError(err).Debug("range offsets out of bounds")
		return ""
	}
	return s
}

func (a *MarkupAccumulator) entityMaskForText(n *dom.Node) EntityMask {
	if !a.serializeAsHTML(n) {
		return EntityMaskInPCDATA
	}
	if isRawTextParent(n.ParentElement()) {
		return EntityMaskInCDATA
	}
	return EntityMaskInHTMLPCDATA
}

func (a *MarkupAccumulator) appendText(b *strings.Builder, n *dom.Node) {
	AppendCharactersReplacingEntities(b, a.textInRange(n), a.entityMaskForText(n))
}

func (a *MarkupAccumulator) appendElement(b *strings.Builder, el *dom.Node, ns Namespaces) {
	a.appendOpenTag(b, el, ns)
	for _, attr := range el.Element.Attributes.Attrs {
		a.appendAttribute(b, el, attr, ns)
	}
	if a.AppendCustomAttributes != nil {
		a.AppendCustomAttributes(b, el, ns)
	}
	a.appendCloseTag(b, el)
	a.appendLeadingNewline(b, el)
}

// appendLeadingNewline doubles a newline that opens pre, textarea or
// listing content, since the HTML parser drops the first one.
func (a *MarkupAccumulator) appendLeadingNewline(b *strings.Builder, el *dom.Node) {
	if !a.serializeAsHTML(el) || !el.IsHTMLElement() || !leadingNewlineDropped[el.Element.LocalName] {
		return
	}
	first := el.FirstChild
	if first != nil && first.NodeType == dom.TextNode && strings.HasPrefix(first.CharacterData.Data, "\n") {
		b.WriteByte('\n')
	}
}

func (a *MarkupAccumulator) appendOpenTag(b *strings.Builder, el *dom.Node, ns Namespaces) {
	b.WriteByte('<')
	b.WriteString(el.Element.TagName())
	if ns != nil && !a.serializeAsHTML(el) && shouldAddNamespaceElement(el, ns) {
		appendNamespace(b, el.Element.Prefix, el.Element.NamespaceURI, ns, true)
	}
}

func (a *MarkupAccumulator) appendCloseTag(b *strings.Builder, el *dom.Node) {
	if a.shouldSelfClose(el) {
		if el.IsHTMLElement() {
			b.WriteByte(' ')
		}
		b.WriteByte('/')
	}
	b.WriteByte('>')
}

// shouldSelfClose: never in HTML syntax, never with children, and never for
// an HTML element that has an end tag.
func (a *MarkupAccumulator) shouldSelfClose(el *dom.Node) bool {
	if a.serializeAsHTML(el) {
		return false
	}
	if el.HasChildNodes() {
		return false
	}
	if el.IsHTMLElement() && !ElementCannotHaveEndTag(el) {
		return false
	}
	return true
}

func shouldAddNamespaceElement(el *dom.Node, ns Namespaces) bool {
	prefix := el.Element.Prefix
	if prefix == "" {
		if el.Element.HasAttribute("xmlns") {
			ns[""] = el.Element.NamespaceURI
			return false
		}
		return true
	}
	return !el.Element.HasAttribute("xmlns:" + prefix)
}

func shouldAddNamespaceAttribute(el *dom.Node, prefix string) bool {
	if prefix == "" {
		return true
	}
	return !el.Element.HasAttribute("xmlns:" + prefix)
}

// appendNamespace declares prefix as uri unless that binding is already in
// scope.
func appendNamespace(b *strings.Builder, prefix string, uri dom.Namespace, ns Namespaces, allowEmptyDefault bool) {
	if uri == dom.NoNamespace {
		if allowEmptyDefault && ns[""] != dom.NoNamespace {
			ns[""] = dom.NoNamespace
			b.WriteString(` xmlns=""`)
		}
		return
	}
	if found, ok := ns[prefix]; ok && found == uri {
		return
	}
	ns[prefix] = uri
	if uri == dom.Xmlns {
		return
	}
	b.WriteString(" xmlns")
	if prefix != "" {
		b.WriteByte(':')
		b.WriteString(prefix)
	}
	b.WriteString(`="`)
	AppendCharactersReplacingEntities(b, string(uri), EntityMaskInAttributeValue)
	b.WriteByte('"')
}

func (a *MarkupAccumulator) appendAttribute(b *strings.Builder, el *dom.Node, attr *dom.Attr, ns Namespaces) {
	html := a.serializeAsHTML(el)
	var prefix string
	if html {
		prefix = htmlAttributePrefix(attr)
	} else {
		prefix = a.xmlAttributePrefix(attr, ns)
	}

	b.WriteByte(' ')
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte(':')
	}
	b.WriteString(attr.LocalName)

	if IsURLAttribute(el, attr) {
		a.appendQuotedURLAttributeValue(b, el, attr)
	} else {
		b.WriteString(`="`)
		appendAttributeValue(b, attr.Value, html)
		b.WriteByte('"')
	}

	if html || ns == nil {
		return
	}
	switch attr.NamespaceURI {
	case dom.NoNamespace, dom.Xmlnsns:
		return
	}
	if shouldAddNamespaceAttribute(el, attr.Prefix) {
		appendNamespace(b, prefix, attr.NamespaceURI, ns, false)
	}
}

func htmlAttributePrefix(attr *dom.Attr) string {
	switch attr.NamespaceURI {
	case dom.Xmlnsns:
		if attr.LocalName == "xmlns" {
			return ""
		}
		return "xmlns"
	case dom.Xmlns:
		return "xml"
	case dom.Xlinkns:
		return "xlink"
	}
	return ""
}

func (a *MarkupAccumulator) xmlAttributePrefix(attr *dom.Attr, ns Namespaces) string {
	switch attr.NamespaceURI {
	case dom.NoNamespace:
		return attr.Prefix
	case dom.Xmlnsns:
		prefix := attr.Prefix
		if prefix == "" && attr.LocalName != "xmlns" {
			prefix = "xmlns"
		}
		if ns != nil {
			if prefix == "" {
				ns[""] = dom.Namespace(attr.Value)
			} else {
				ns[attr.LocalName] = dom.Namespace(attr.Value)
			}
		}
		return prefix
	case dom.Xmlns:
		return "xml"
	}

	prefix := attr.Prefix
	if prefix == "" && attr.NamespaceURI == dom.Xlinkns {
		prefix = "xlink"
	}
	if prefix == "" && ns != nil {
		if p, ok := ns.prefixFor(attr.NamespaceURI); ok {
			return p
		}
		prefix = a.generateUniquePrefix(ns)
	}
	return prefix
}

// generateUniquePrefix returns the next NS<n> prefix not bound in scope.
func (a *MarkupAccumulator) generateUniquePrefix(ns Namespaces) string {
	for {
		a.prefixLevel++
		p := "NS" + strconv.Itoa(a.prefixLevel)
		if _, taken := ns[p]; !taken {
			return p
		}
	}
}

func appendAttributeValue(b *strings.Builder, v string, html bool) {
	mask := EntityMaskInAttributeValue
	if html {
		mask = EntityMaskInHTMLAttributeValue
	}
	AppendCharactersReplacingEntities(b, v, mask)
}

// appendQuotedURLAttributeValue writes ="value". javascript: URLs get only
// their quotes handled so the script text survives.
func (a *MarkupAccumulator) appendQuotedURLAttributeValue(b *strings.Builder, el *dom.Node, attr *dom.Attr) {
	resolved := a.resolveURLIfNeeded(el, attr.Value)
	quote := byte('"')
	b.WriteByte('=')

	stripped := strings.TrimSpace(resolved)
	if isJavaScriptURL(stripped) {
		if strings.Contains(stripped, `"`) {
			if strings.Contains(stripped, "'") {
				stripped = strings.ReplaceAll(stripped, `"`, "&quot;")
			} else {
				quote = '\''
			}
		}
		b.WriteByte(quote)
		b.WriteString(stripped)
		b.WriteByte(quote)
		return
	}

	b.WriteByte(quote)
	appendAttributeValue(b, resolved, false)
	b.WriteByte(quote)
}

func isJavaScriptURL(s string) bool {
	const scheme = "javascript:"
	return len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme)
}

func (a *MarkupAccumulator) resolveURLIfNeeded(el *dom.Node, v string) string {
	doc := el.OwnerDocument
	if doc == nil || doc.Document == nil {
		return v
	}
	switch a.resolve {
	case ResolveAllURLs:
		return doc.Document.CompleteURL(v)
	case ResolveNonLocalURLs:
		if !doc.Document.IsLocalFile() {
			return doc.Document.CompleteURL(v)
		}
	}
	return v
}

func appendComment(b *strings.Builder, data string) {
	b.WriteString("<!--")
	b.WriteString(data)
	b.WriteString("-->")
}

func appendXMLDeclaration(b *strings.Builder, d *dom.Document) {
	if !d.HasXMLDeclaration {
		return
	}
	b.WriteString(`<?xml version="`)
	b.WriteString(d.XMLVersion)
	b.WriteByte('"')
	if d.XMLEncoding != "" {
		b.WriteString(` encoding="`)
		b.WriteString(d.XMLEncoding)
		b.WriteByte('"')
	}
	switch d.XMLStandalone {
	case dom.StandaloneYes:
		b.WriteString(` standalone="yes"`)
	case dom.StandaloneNo:
		b.WriteString(` standalone="no"`)
	}
	b.WriteString("?>")
}

func appendDocumentType(b *strings.Builder, dt *dom.DocumentType) {
	if dt.Name == "" {
		return
	}
	b.WriteString("<!DOCTYPE ")
	b.WriteString(dt.Name)
	if dt.PublicID != "" {
		b.WriteString(` PUBLIC "`)
		b.WriteString(dt.PublicID)
		b.WriteByte('"')
		if dt.SystemID != "" {
			b.WriteString(` "`)
			b.WriteString(dt.SystemID)
			b.WriteByte('"')
		}
	} else if dt.SystemID != "" {
		b.WriteString(` SYSTEM "`)
		b.WriteString(dt.SystemID)
		b.WriteByte('"')
	}
	if dt.InternalSubset != "" {
		b.WriteString(" [")
		b.WriteString(dt.InternalSubset)
		b.WriteByte(']')
	}
	b.WriteByte('>')
}

func appendProcessingInstruction(b *strings.Builder, target, data string) {
	b.WriteString("<?")
	b.WriteString(target)
	b.WriteByte(' ')
	b.WriteString(data)
	b.WriteString("?>")
}

func appendCDATASection(b *strings.Builder, data string) {
	b.WriteString("<![CDATA[")
	b.WriteString(data)
	b.WriteString("]]>")
}
