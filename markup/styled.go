package markup

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/heathj/domedit/dom"
)

const (
	AppleConvertedSpace     = "Apple-converted-space"
	AppleInterchangeNewline = "Apple-interchange-newline"
	AppleTabSpan            = "Apple-tab-span"

	convertedSpaceString      = `<span class="` + AppleConvertedSpace + `">&nbsp;</span>`
	styleNodeCloseTagInline   = "</span>"
	styleNodeCloseTagForBlock = "</div>"
)

// TextRenderer returns the text a layout engine shows for the code units
// [start, end) of a text node.
type TextRenderer interface {
	RenderedText(text *dom.Node, start, end int) string
}

// RangeOptions configures SerializeRange.
type RangeOptions struct {
	// Annotate adds the markup needed to paste the result elsewhere with
	// the same appearance.
	Annotate               bool
	ConvertBlocksToInlines bool
	ResolveURLs            ResolveURLs
	Nodes                  *[]*dom.Node
	// Styles defaults to InlineStyleResolver.
	Styles StyleResolver
	// Text is optional; without it the node data is used.
	Text TextRenderer
}

type fullySelects uint8

const (
	doesFullySelectNode fullySelects = iota
	doesNotFullySelectNode
)

// StyledMarkupAccumulator serializes the contents of a range, wrapping the
// result in the ancestors needed to keep its structure and appearance.
type StyledMarkupAccumulator struct {
	*MarkupAccumulator

	annotate      bool
	styles        StyleResolver
	text          TextRenderer
	highest       *dom.Node
	wrappingStyle *Style

	reversedPrecedingMarkup []string
}

// NewStyledAccumulator returns an accumulator for r. highest, when set, is
// the topmost node the result is wrapped in.
func NewStyledAccumulator(r *dom.Range, opts RangeOptions, highest *dom.Node) *StyledMarkupAccumulator {
	styles := opts.Styles
	if styles == nil {
		styles = InlineStyleResolver{}
	}
	return &StyledMarkupAccumulator{
		MarkupAccumulator: NewAccumulator(opts.Nodes, opts.ResolveURLs, r, HTMLFragmentSerialization),
		annotate:          opts.Annotate,
		styles:            styles,
		text:              opts.Text,
		highest:           highest,
	}
}

// SerializeRange returns markup for the contents of r. A collapsed range
// yields the empty string.
func SerializeRange(r *dom.Range, opts RangeOptions) string {
	if r.Collapsed() {
		return ""
	}
	common := r.CommonAncestorContainer()
	if common == nil {
		return ""
	}

	body := enclosingElementWithTag(common, "body")
	var fullySelectedRoot *dom.Node
	if body != nil && selectsAllTextOf(r, body) {
		fullySelectedRoot = body
	}
	special := highestAncestorToWrapMarkup(r, opts.Annotate)

	acc := NewStyledAccumulator(r, opts, special)
	pastEnd := r.PastLastNode()
	lastClosed := acc.SerializeNodes(r.FirstNode(), pastEnd)

	if special != nil && lastClosed != nil && special != lastClosed && special.Contains(lastClosed) {
		for ancestor := lastClosed.ParentNode; ancestor != nil; ancestor = ancestor.ParentNode {
			if ancestor == fullySelectedRoot && !opts.ConvertBlocksToInlines {
				if st := acc.fullySelectedRootStyle(fullySelectedRoot); !st.IsEmpty() {
					acc.wrapWithStyleNode(st, true)
				}
				if opts.Nodes != nil {
					*opts.Nodes = append(*opts.Nodes, ancestor)
				}
			} else {
				// wrapWithNode records the ancestor itself.
				acc.wrapWithNode(ancestor, opts.ConvertBlocksToInlines, doesNotFullySelectNode)
			}
			if ancestor == special {
				break
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"start":    r.StartContainer().NodeName,
		"end":      r.EndContainer().NodeName,
		"annotate": opts.Annotate,
	}).Debug("range serialized")
	return acc.TakeResults()
}

func (s *StyledMarkupAccumulator) fullySelectedRootStyle(root *dom.Node) *Style {
	st := s.styles.MatchedStyle(root).Copy()
	// A background attribute on a div has no effect, so carry it as CSS.
	if bg := root.Element.GetAttribute("background"); bg != "" && !st.Has("background-image") {
		st.Set("background-image", "url('"+bg+"')")
	}
	if td := st.Get("text-decoration"); td != "" && td != "none" {
		st.Set("text-decoration", "none")
	}
	return st
}

// SerializeNodes writes the nodes from start up to pastEnd and returns the
// last node whose end tag was written.
func (s *StyledMarkupAccumulator) SerializeNodes(start, pastEnd *dom.Node) *dom.Node {
	if s.highest == nil {
		s.highest = s.traverseNodesForSerialization(start, pastEnd, false)
	}
	if s.highest != nil && s.highest.ParentNode != nil {
		s.wrappingStyle = s.styles.InheritedStyle(s.highest.ParentNode)
	}
	return s.traverseNodesForSerialization(start, pastEnd, true)
}

// traverseNodesForSerialization walks [start, pastEnd) in tree order. With
// emit unset it only computes which node would be closed last.
func (s *StyledMarkupAccumulator) traverseNodesForSerialization(start, pastEnd *dom.Node, emit bool) *dom.Node {
	var ancestorsToClose []*dom.Node
	var lastClosed, next *dom.Node

	for n := start; n != pastEnd; n = next {
		if n == nil {
			break
		}
		next = dom.NextNode(n, nil)
		openedTag := false

		// Empty block containers that are not fully selected are left out.
		if dom.IsBlockElement(n) && !ElementCannotHaveEndTag(n) && next == pastEnd {
			continue
		}

		if !s.isRendered(n) {
			next = dom.NextSkippingChildren(n, nil)
			if pastEnd != nil && n.Contains(pastEnd) {
				next = pastEnd
			}
		} else {
			if emit {
				s.appendStartTag(n)
			}
			if !n.HasChildNodes() {
				if emit {
					s.appendEndTag(n)
				}
				lastClosed = n
			} else {
				openedTag = true
				ancestorsToClose = append(ancestorsToClose, n)
			}
		}

		if openedTag || (n.NextSibling != nil && next != pastEnd) {
			continue
		}

		for len(ancestorsToClose) > 0 {
			ancestor := ancestorsToClose[len(ancestorsToClose)-1]
			if next != pastEnd && ancestor.Contains(next) {
				break
			}
			if emit {
				s.appendEndTag(ancestor)
			}
			lastClosed = ancestor
			ancestorsToClose = ancestorsToClose[:len(ancestorsToClose)-1]
		}

		// Wrap the markup so far in the ancestors that were never opened
		// as the walk leaves their subtrees.
		var nextParent *dom.Node
		if next != nil {
			nextParent = next.ParentNode
		}
		if next == pastEnd || n == nextParent {
			continue
		}
		lastAncestorClosedOrSelf := n
		if lastClosed != nil && lastClosed != n && lastClosed.Contains(n) {
			lastAncestorClosedOrSelf = lastClosed
		}
		for parent := lastAncestorClosedOrSelf.ParentNode; parent != nil && parent != nextParent; parent = parent.ParentNode {
			if !s.isRendered(parent) {
				continue
			}
			if emit {
				s.wrapWithNode(parent, false, doesFullySelectNode)
			}
			lastClosed = parent
		}
	}
	return lastClosed
}

var unrenderedTags = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true,
	"link": true, "template": true, "noscript": true, "base": true,
}

// isRendered stands in for a layout tree: text and visible elements are
// rendered, comments and processing instructions are not.
func (s *StyledMarkupAccumulator) isRendered(n *dom.Node) bool {
	switch n.NodeType {
	case dom.TextNode, dom.CDATASectionNode:
		return true
	case dom.ElementNode:
		if n.IsHTMLElement() && unrenderedTags[n.Element.LocalName] {
			return false
		}
		return s.styles.MatchedStyle(n).Get("display") != "none"
	case dom.DocumentNode, dom.DocumentFragmentNode:
		return true
	}
	return false
}

func (s *StyledMarkupAccumulator) appendStartTag(n *dom.Node) {
	s.appendStartMarkup(&s.b, n)
	if s.nodes != nil {
		*s.nodes = append(*s.nodes, n)
	}
}

func (s *StyledMarkupAccumulator) appendStartMarkup(b *strings.Builder, n *dom.Node) {
	switch n.NodeType {
	case dom.TextNode:
		s.appendText(b, n)
	case dom.ElementNode:
		s.appendElement(b, n, false, doesFullySelectNode)
	default:
		s.MarkupAccumulator.appendStartMarkup(b, n, nil)
	}
}

func (s *StyledMarkupAccumulator) shouldApplyWrappingStyle(n *dom.Node) bool {
	return s.highest != nil && s.highest.ParentNode == n.ParentNode && !s.wrappingStyle.IsEmpty()
}

func (s *StyledMarkupAccumulator) appendText(b *strings.Builder, n *dom.Node) {
	parent := n.ParentElement()
	parentIsTextarea := parent != nil && parent.HasTagName("textarea")
	wrappingSpan := s.shouldApplyWrappingStyle(n) && !parentIsTextarea
	if wrappingSpan {
		st := s.wrappingStyle.Copy()
		st.Set("display", "inline")
		st.Set("float", "none")
		appendStyleNodeOpenTag(b, st, false)
	}

	if !s.annotate || parentIsTextarea {
		s.MarkupAccumulator.appendText(b, n)
	} else {
		var esc strings.Builder
		AppendCharactersReplacingEntities(&esc, s.renderedText(n), EntityMaskInPCDATA)
		b.WriteString(s.convertHTMLTextToInterchangeFormat(esc.String(), n))
	}

	if wrappingSpan {
		b.WriteString(styleNodeCloseTagInline)
	}
}

func (s *StyledMarkupAccumulator) renderedText(n *dom.Node) string {
	if s.text == nil {
		return s.textInRange(n)
	}
	start, end := 0, n.Length()
	if n == s.r.EndContainer() {
		end = s.r.EndOffset()
	}
	if n == s.r.StartContainer() {
		start = s.r.StartOffset()
	}
	return s.text.RenderedText(n, start, end)
}

func isCollapsibleWhitespace(c byte) bool {
	return c == ' ' || c == '\n'
}

// convertHTMLTextToInterchangeFormat replaces runs of collapsible white
// space with converted spaces so that they survive a paste.
func (s *StyledMarkupAccumulator) convertHTMLTextToInterchangeFormat(in string, n *dom.Node) string {
	if preservesNewline(n, s.styles) {
		return in
	}

	var b strings.Builder
	for i := 0; i < len(in); {
		if !isCollapsibleWhitespace(in[i]) {
			b.WriteByte(in[i])
			i++
			continue
		}
		j := i + 1
		for j < len(in) && isCollapsibleWhitespace(in[j]) {
			j++
		}
		count := j - i
		for count > 0 {
			add := count % 3
			switch add {
			case 0:
				b.WriteString(convertedSpaceString)
				b.WriteByte(' ')
				b.WriteString(convertedSpaceString)
				add = 3
			case 1:
				if i == 0 || i+1 == len(in) {
					b.WriteString(convertedSpaceString)
				} else {
					b.WriteByte(' ')
				}
			case 2:
				switch {
				case i == 0:
					b.WriteString(convertedSpaceString)
					b.WriteByte(' ')
				case i+2 == len(in):
					b.WriteString(convertedSpaceString)
					b.WriteString(convertedSpaceString)
				default:
					b.WriteString(convertedSpaceString)
					b.WriteByte(' ')
				}
			}
			count -= add
		}
		i = j
	}
	return b.String()
}

func (s *StyledMarkupAccumulator) appendElement(b *strings.Builder, el *dom.Node, addDisplayInline bool, selects fullySelects) {
	html := s.serializeAsHTML(el)
	s.appendOpenTag(b, el, nil)

	annotateOrForceInline := el.IsHTMLElement() && (s.annotate || addDisplayInline)
	overrideStyleAttr := annotateOrForceInline || s.shouldApplyWrappingStyle(el)
	for _, attr := range el.Element.Attributes.Attrs {
		if overrideStyleAttr && attr.NamespaceURI == dom.NoNamespace && attr.LocalName == "style" {
			continue
		}
		s.appendAttribute(b, el, attr, nil)
	}

	if overrideStyleAttr {
		st := &Style{}
		if s.shouldApplyWrappingStyle(el) {
			st = s.wrappingStyle.Copy()
			for _, d := range defaultStyleFor(el).Declarations() {
				if st.Get(d.Property) == d.Value {
					st.Remove(d.Property)
				}
			}
		}
		st.Merge(ParseStyle(el.Element.GetAttribute("style")), true)

		if annotateOrForceInline {
			if s.annotate {
				st.Merge(s.styles.MatchedStyle(el), true)
			}
			if addDisplayInline {
				st.Set("display", "inline")
			}
			// Only keep styles that affect the node and what it contains.
			if selects == doesNotFullySelectNode {
				st.Remove("float")
			}
		}

		if !st.IsEmpty() {
			b.WriteString(` style="`)
			appendAttributeValue(b, st.String(), html)
			b.WriteByte('"')
		}
	}

	s.appendCloseTag(b, el)
	s.appendLeadingNewline(b, el)
}

func (s *StyledMarkupAccumulator) wrapWithNode(n *dom.Node, convertBlocksToInlines bool, selects fullySelects) {
	var b strings.Builder
	if n.NodeType == dom.ElementNode {
		s.appendElement(&b, n, convertBlocksToInlines && dom.IsBlockElement(n), selects)
	} else {
		s.MarkupAccumulator.appendStartMarkup(&b, n, nil)
	}
	s.reversedPrecedingMarkup = append(s.reversedPrecedingMarkup, b.String())
	s.appendEndTag(n)
	if s.nodes != nil {
		*s.nodes = append(*s.nodes, n)
	}
}

func appendStyleNodeOpenTag(b *strings.Builder, st *Style, isBlock bool) {
	if isBlock {
		b.WriteString(`<div style="`)
	} else {
		b.WriteString(`<span style="`)
	}
	appendAttributeValue(b, st.String(), true)
	b.WriteString(`">`)
}

func (s *StyledMarkupAccumulator) wrapWithStyleNode(st *Style, isBlock bool) {
	var b strings.Builder
	appendStyleNodeOpenTag(&b, st, isBlock)
	s.reversedPrecedingMarkup = append(s.reversedPrecedingMarkup, b.String())
	if isBlock {
		s.appendString(styleNodeCloseTagForBlock)
	} else {
		s.appendString(styleNodeCloseTagInline)
	}
}

// TakeResults returns the wrapped markup. NUL characters are dropped since
// they are never rendered.
func (s *StyledMarkupAccumulator) TakeResults() string {
	var b strings.Builder
	for i := len(s.reversedPrecedingMarkup) - 1; i >= 0; i-- {
		b.WriteString(s.reversedPrecedingMarkup[i])
	}
	b.WriteString(s.b.String())
	return strings.ReplaceAll(b.String(), "\x00", "")
}

func enclosingElementWithTag(n *dom.Node, tag string) *dom.Node {
	for p := n; p != nil; p = p.ParentNode {
		if p.HasTagName(tag) {
			return p
		}
	}
	return nil
}

func enclosingBlock(n *dom.Node) *dom.Node {
	for p := n; p != nil; p = p.ParentNode {
		if dom.IsBlockElement(p) {
			return p
		}
	}
	return nil
}

// selectsAllTextOf reports whether no non-blank text of n lies outside r,
// which is as close as a tree without layout gets to "the range visually
// covers n".
func selectsAllTextOf(r *dom.Range, n *dom.Node) bool {
	if !r.IntersectsNode(n) {
		return false
	}
	for t := n.FirstChild; t != nil; t = dom.NextNode(t, n) {
		if t.NodeType != dom.TextNode {
			continue
		}
		before, err := r.ComparePoint(t, 0)
		if err != nil {
			return false
		}
		after, err := r.ComparePoint(t, t.Length())
		if err != nil {
			return false
		}
		var outside []string
		switch {
		case before == after && before != 0:
			outside = append(outside, t.CharacterData.Data)
		default:
			if before < 0 {
				s, _ := t.SubstringData(0, r.StartOffset())
				outside = append(outside, s)
			}
			if after > 0 {
				s, _ := t.SubstringData(r.EndOffset(), t.Length())
				outside = append(outside, s)
			}
		}
		for _, s := range outside {
			if strings.TrimSpace(s) != "" {
				return false
			}
		}
	}
	return true
}

var structureRetainingTags = map[string]bool{
	"listing": true, "ol": true, "pre": true, "table": true, "ul": true, "xmp": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func ancestorToRetainStructureAndAppearance(common *dom.Node) *dom.Node {
	block := enclosingBlock(common)
	if block == nil {
		return nil
	}
	if block.HasTagName("tbody") || block.HasTagName("tr") {
		return enclosingElementWithTag(block.ParentNode, "table")
	}
	if structureRetainingTags[block.Element.LocalName] {
		return block
	}
	return nil
}

func isListElement(n *dom.Node) bool {
	return n.HasTagName("ul") || n.HasTagName("ol") || n.HasTagName("dl")
}

func isMailBlockquote(n *dom.Node) bool {
	return n.HasTagName("blockquote") && n.Element.GetAttribute("type") == "cite"
}

func isTabSpan(n *dom.Node) bool {
	return n.HasTagName("span") && n.Element.GetAttribute("class") == AppleTabSpan
}

var presentationalTags = map[string]bool{
	"b": true, "i": true, "u": true, "s": true, "strike": true, "em": true, "strong": true,
}

// highestPresentationalAncestor returns the topmost inline formatting
// element around n inside its containing block.
func highestPresentationalAncestor(n *dom.Node) *dom.Node {
	var highest *dom.Node
	for p := n; p != nil; p = p.ParentNode {
		if p != n && dom.IsBlockElement(p) {
			break
		}
		if p.IsHTMLElement() && presentationalTags[p.Element.LocalName] {
			highest = p
		}
	}
	return highest
}

func highestAncestorToWrapMarkup(r *dom.Range, annotate bool) *dom.Node {
	common := r.CommonAncestorContainer()
	var special *dom.Node
	if annotate {
		special = ancestorToRetainStructureAndAppearance(common)

		if li := enclosingElementWithTag(r.FirstNode(), "li"); li != nil && selectsAllTextOf(r, li) {
			special = li.ParentNode
			for special != nil && !isListElement(special) {
				special = special.ParentNode
			}
		}

		var quote *dom.Node
		for p := r.FirstNode(); p != nil; p = p.ParentNode {
			if isMailBlockquote(p) {
				quote = p
			}
		}
		if quote != nil {
			special = quote
		}
	}

	check := special
	if check == nil {
		check = common
	}
	if p := highestPresentationalAncestor(check); p != nil {
		special = p
	}

	if special == nil {
		if common.NodeType == dom.TextNode && common.ParentNode != nil && isTabSpan(common.ParentNode) {
			special = common.ParentNode
		} else if isTabSpan(common) {
			special = common
		}
	}

	from := special
	if from == nil {
		from = common
	}
	if a := enclosingElementWithTag(from, "a"); a != nil {
		special = a
	}
	return special
}
