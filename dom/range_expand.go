package dom

import (
	"unicode"
	"unicode/utf16"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "center": true, "dd": true, "details": true, "dialog": true,
	"dir": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hgroup": true, "hr": true, "li": true, "listing": true,
	"main": true, "menu": true, "nav": true, "ol": true, "p": true,
	"plaintext": true, "pre": true, "section": true, "summary": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true, "xmp": true,
}

// IsBlockElement reports whether n is an HTML element that starts a new
// paragraph.
func IsBlockElement(n *Node) bool {
	return n.IsHTMLElement() && blockTags[n.Element.LocalName]
}

// Expand grows the range to whole units: "word", "sentence", "block" or
// "document". Word and sentence boundaries are found within the text
// containers of the boundary points.
func (r *Range) Expand(unit string) error {
	switch unit {
	case "word":
		r.expandText(isWordUnit, false)
	case "sentence":
		r.expandText(nil, true)
	case "block":
		return r.expandBlock()
	case "document":
		return r.SelectNodeContents(r.ownerDocument)
	default:
		return newException(SyntaxError, "unknown expansion unit %q", unit)
	}
	return nil
}

func isWordUnit(u uint16) bool {
	r := rune(u)
	if utf16.IsSurrogate(r) {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isSentenceTerminator(u uint16) bool {
	return u == '.' || u == '!' || u == '?'
}

func (r *Range) expandText(inUnit func(uint16) bool, sentence bool) {
	if c := r.start.Container(); c.NodeType == TextNode || c.NodeType == CDATASectionNode {
		data := toUTF16(c.CharacterData.Data)
		i := r.start.Offset()
		if sentence {
			for i > 0 && !isSentenceTerminator(data[i-1]) {
				i--
			}
			for i < len(data) && i < r.start.Offset() && unicode.IsSpace(rune(data[i])) {
				i++
			}
		} else {
			for i > 0 && inUnit(data[i-1]) {
				i--
			}
		}
		r.start.SetOffset(i)
	}
	if c := r.end.Container(); c.NodeType == TextNode || c.NodeType == CDATASectionNode {
		data := toUTF16(c.CharacterData.Data)
		i := r.end.Offset()
		if sentence {
			for i < len(data) && !isSentenceTerminator(data[i]) {
				i++
			}
			if i < len(data) {
				i++
			}
		} else {
			for i < len(data) && inUnit(data[i]) {
				i++
			}
		}
		r.end.SetOffset(i)
	}
}

func enclosingBlock(n *Node) *Node {
	for p := n; p != nil; p = p.ParentNode {
		if IsBlockElement(p) {
			return p
		}
	}
	return nil
}

func (r *Range) expandBlock() error {
	startBlock := enclosingBlock(r.start.Container())
	endBlock := enclosingBlock(r.end.Container())
	if startBlock == nil {
		startBlock = r.start.Container().RootNode()
	}
	if endBlock == nil {
		endBlock = r.end.Container().RootNode()
	}

	r.start.SetToStartOfNode(startBlock)
	r.end.SetToEndOfNode(endBlock)
	if r.startAndEndInDifferentTrees() {
		r.Collapse(true)
	}
	return nil
}
