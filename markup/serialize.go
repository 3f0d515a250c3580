package markup

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/domedit/dom"
)

// Options configures CreateMarkup.
type Options struct {
	ChildrenOnly   bool
	ResolveURLs    ResolveURLs
	TagNamesToSkip []string
	Fragment       FragmentSerialization
	// Nodes, when set, collects every serialized node in document order.
	Nodes *[]*dom.Node
}

// CreateMarkup serializes n, or only its children with ChildrenOnly.
func CreateMarkup(n *dom.Node, opts Options) string {
	acc := NewAccumulator(opts.Nodes, opts.ResolveURLs, nil, opts.Fragment)
	children := IncludeNode
	if opts.ChildrenOnly {
		children = ChildrenOnly
	}
	return acc.SerializeNodes(n, nil, children, opts.TagNamesToSkip)
}

func InnerHTML(n *dom.Node) string {
	return CreateMarkup(n, Options{ChildrenOnly: true})
}

func OuterHTML(n *dom.Node) string {
	return CreateMarkup(n, Options{})
}

// parseFragment parses markup in the context of the element context, with
// HTML rules in HTML documents and XML rules otherwise.
func parseFragment(doc, context *dom.Node, markup string) (*dom.Node, error) {
	if doc.Document.IsHTMLDocument() {
		return ParseHTMLFragment(doc, context, markup)
	}
	return ParseXMLFragment(doc, context, markup)
}

// SetInnerHTML replaces the children of el with the parsed markup.
func SetInnerHTML(el *dom.Node, markup string) error {
	frag, err := parseFragment(el.OwnerDocument, el, markup)
	if err != nil {
		return err
	}
	return ReplaceChildrenWithFragment(el, frag)
}

// InsertAdjacentHTML parses markup and inserts it relative to el. where is
// one of beforebegin, afterbegin, beforeend and afterend, in any case.
func InsertAdjacentHTML(el *dom.Node, where, markup string) error {
	var parent, before *dom.Node
	switch strings.ToLower(where) {
	case "beforebegin":
		parent, before = el.ParentNode, el
	case "afterbegin":
		parent, before = el, el.FirstChild
	case "beforeend":
		parent = el
	case "afterend":
		parent, before = el.ParentNode, el.NextSibling
	default:
		return dom.NewException(dom.SyntaxError, "%q is not a valid insertion position", where)
	}
	if parent == nil || parent.NodeType == dom.DocumentNode {
		return dom.NewException(dom.HierarchyRequestError, "cannot insert %s an element without a parent element", where)
	}

	frag, err := parseFragment(el.OwnerDocument, parent, markup)
	if err != nil {
		return err
	}
	_, err = parent.InsertBefore(frag, before)
	return err
}

// CreateFragmentFromMarkup parses markup as the contents of a body element.
// URLs are completed against baseURL when it differs from the document's
// own base.
func CreateFragmentFromMarkup(doc *dom.Node, markup, baseURL string) (*dom.Node, error) {
	fakeBody := dom.NewElement(doc, "body", dom.Htmlns)
	frag, err := parseFragment(doc, fakeBody, markup)
	if err != nil {
		return nil, err
	}
	if baseURL != "" && baseURL != "about:blank" && baseURL != documentBaseURL(doc) {
		if err := completeURLs(frag, baseURL); err != nil {
			return nil, err
		}
	}
	return frag, nil
}

func documentBaseURL(doc *dom.Node) string {
	if doc.Document.BaseURL != "" {
		return doc.Document.BaseURL
	}
	return doc.Document.URL
}

func completeURLs(frag *dom.Node, baseURL string) error {
	base, err := url.Parse(baseURL)
	if err != nil {
		return errors.Wrapf(err, "parsing base URL %q", baseURL)
	}
	for n := frag.FirstChild; n != nil; n = dom.NextNode(n, frag) {
		if n.NodeType != dom.ElementNode {
			continue
		}
		for _, attr := range n.Element.Attributes.Attrs {
			if !IsURLAttribute(n, attr) || isJavaScriptURL(strings.TrimSpace(attr.Value)) {
				continue
			}
			ref, err := url.Parse(strings.TrimSpace(attr.Value))
			if err != nil {
				continue
			}
			attr.Value = base.ResolveReference(ref).String()
		}
	}
	return nil
}

// CreateContextualFragment parses markup in the context of the range start.
func CreateContextualFragment(r *dom.Range, markup string) (*dom.Node, error) {
	doc := r.OwnerDocument()
	context := r.StartContainer()
	if context.NodeType != dom.ElementNode {
		context = context.ParentElement()
	}
	if context == nil || (doc.Document.IsHTMLDocument() && context.HasTagName("html")) {
		context = dom.NewElement(doc, "body", dom.Htmlns)
	}
	return parseFragment(doc, context, markup)
}

func createBreakElement(doc *dom.Node) *dom.Node {
	return dom.NewElement(doc, "br", dom.Htmlns)
}

func createInterchangeNewline(doc *dom.Node) *dom.Node {
	br := createBreakElement(doc)
	br.Element.SetAttribute("class", AppleInterchangeNewline)
	return br
}

func createTabSpanElement(doc *dom.Node, tabText string) *dom.Node {
	span := dom.NewElement(doc, "span", dom.Htmlns)
	span.Element.SetAttribute("class", AppleTabSpan)
	span.Element.SetAttribute("style", "white-space:pre")
	appendChild(span, dom.NewTextNode(doc, tabText))
	return span
}

// appendChild is for freshly created nodes, where insertion cannot fail.
func appendChild(parent, child *dom.Node) {
	if _, err := parent.AppendChild(child); err != nil {
		logrus.WithError(err).WithField("parent", parent.NodeName).Error("appending child")
	}
}

func isEditingWhitespace(r rune) bool {
	return r == ' ' || r == '\u00a0' || r == '\t' || r == '\n'
}

// stringWithRebalancedWhitespace alternates spaces and non-breaking spaces
// so that a run of white space keeps its width once rendered.
func stringWithRebalancedWhitespace(s string, startIsStartOfParagraph, endIsEndOfParagraph bool) string {
	var b strings.Builder
	runes := []rune(s)
	previousWasSpace := false
	for i, r := range runes {
		if !isEditingWhitespace(r) {
			b.WriteRune(r)
			previousWasSpace = false
			continue
		}
		if previousWasSpace || (i == 0 && startIsStartOfParagraph) || (i+1 == len(runes) && endIsEndOfParagraph) {
			b.WriteRune('\u00a0')
			previousWasSpace = false
		} else {
			b.WriteByte(' ')
			previousWasSpace = true
		}
	}
	return b.String()
}

// fillContainerFromString appends one line of text to paragraph. Tabs go
// into tab spans; an empty line becomes a placeholder break.
func fillContainerFromString(paragraph *dom.Node, s string) {
	doc := paragraph.OwnerDocument
	if s == "" {
		appendChild(paragraph, createBreakElement(doc))
		return
	}

	parts := strings.Split(s, "\t")
	tabText := ""
	for i, part := range parts {
		if part != "" {
			if tabText != "" {
				appendChild(paragraph, createTabSpanElement(doc, tabText))
				tabText = ""
			}
			appendChild(paragraph, dom.NewTextNode(doc, stringWithRebalancedWhitespace(part, i == 0, i+1 == len(parts))))
		}
		if i+1 != len(parts) {
			tabText += "\t"
		} else if tabText != "" {
			appendChild(paragraph, createTabSpanElement(doc, tabText))
		}
	}
}

func enclosingTextFormControl(n *dom.Node) bool {
	for p := n; p != nil; p = p.ParentNode {
		if p.HasTagName("textarea") || p.HasTagName("input") {
			return true
		}
	}
	return false
}

// CreateFragmentFromText turns plain text into nodes suitable for
// inserting at r. Lines become paragraphs unless the context keeps
// newlines as written.
func CreateFragmentFromText(r *dom.Range, text string) *dom.Node {
	doc := r.OwnerDocument()
	frag := dom.NewDocumentFragment(doc)
	if text == "" {
		return frag
	}

	s := strings.ReplaceAll(text, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	if preservesNewline(r.StartContainer(), InlineStyleResolver{}) {
		appendChild(frag, dom.NewTextNode(doc, s))
		if strings.HasSuffix(s, "\n") {
			appendChild(frag, createInterchangeNewline(doc))
		}
		return frag
	}

	if !strings.Contains(s, "\n") {
		fillContainerFromString(frag, s)
		return frag
	}

	block := enclosingBlock(r.FirstNode())
	useClonesOfEnclosingBlock := block != nil && !block.HasTagName("body") && !block.HasTagName("html")
	useLineBreak := enclosingTextFormControl(r.StartContainer())

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		var el *dom.Node
		switch {
		case line == "" && i+1 == len(lines):
			el = createInterchangeNewline(doc)
		case useLineBreak:
			el = createBreakElement(doc)
			fillContainerFromString(frag, line)
		default:
			if useClonesOfEnclosingBlock {
				el = block.CloneNode(false)
			} else {
				el = dom.NewElement(doc, "div", dom.Htmlns)
			}
			fillContainerFromString(el, line)
		}
		appendChild(frag, el)
	}
	return frag
}

func hasOneChild(n *dom.Node) bool {
	return n.FirstChild != nil && n.FirstChild.NextSibling == nil
}

func hasOneTextChild(n *dom.Node) bool {
	return hasOneChild(n) && n.FirstChild.NodeType == dom.TextNode
}

// ReplaceChildrenWithFragment replaces the children of container with the
// contents of frag, editing a lone text child in place when it can.
func ReplaceChildrenWithFragment(container, frag *dom.Node) error {
	if frag.FirstChild == nil {
		container.RemoveChildren()
		return nil
	}
	if hasOneTextChild(container) && hasOneTextChild(frag) {
		return container.FirstChild.SetData(frag.FirstChild.CharacterData.Data)
	}
	if hasOneChild(container) {
		_, err := container.ReplaceChild(frag, container.FirstChild)
		return err
	}
	container.RemoveChildren()
	_, err := container.AppendChild(frag)
	return err
}

// ReplaceChildrenWithText replaces the children of container with a single
// text node holding text.
func ReplaceChildrenWithText(container *dom.Node, text string) error {
	if hasOneTextChild(container) {
		return container.FirstChild.SetData(text)
	}
	textNode := dom.NewTextNode(container.OwnerDocument, text)
	if hasOneChild(container) {
		_, err := container.ReplaceChild(textNode, container.FirstChild)
		return err
	}
	container.RemoveChildren()
	_, err := container.AppendChild(textNode)
	return err
}

// URLToMarkup returns an anchor pointing at u with title as its text.
func URLToMarkup(u, title string) string {
	var b strings.Builder
	b.WriteString(`<a href="`)
	AppendCharactersReplacingEntities(&b, u, EntityMaskInAttributeValue)
	b.WriteString(`">`)
	AppendCharactersReplacingEntities(&b, title, EntityMaskInPCDATA)
	b.WriteString("</a>")
	return b.String()
}

// DocumentTypeString returns the doctype markup of doc, if it has one.
func DocumentTypeString(doc *dom.Node) string {
	dt := doc.Doctype()
	if dt == nil {
		return ""
	}
	return CreateMarkup(dt, Options{})
}
