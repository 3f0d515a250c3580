package markup

import (
	"strings"

	"github.com/heathj/domedit/dom"
)

// Elements that never get an end tag in HTML serialization. Their children,
// if any, are not serialized either.
var forbiddenEndTag = map[string]bool{
	"area": true, "base": true, "basefont": true, "br": true, "col": true,
	"embed": true, "frame": true, "hr": true, "image": true, "img": true,
	"input": true, "isindex": true, "link": true, "meta": true, "param": true,
	"source": true, "wbr": true,
}

// Text inside these parents is written without escaping.
var rawTextParents = map[string]bool{
	"script":    true,
	"style":     true,
	"xmp":       true,
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
}

// The HTML parser skips a newline directly after these start tags.
var leadingNewlineDropped = map[string]bool{
	"pre":      true,
	"textarea": true,
	"listing":  true,
}

// urlAttributes maps an attribute name to the HTML elements on which it
// holds a URL. A nil set means every element.
var urlAttributes = map[string]map[string]bool{
	"href":       {"a": true, "area": true, "base": true, "link": true},
	"src":        {"audio": true, "embed": true, "frame": true, "iframe": true, "img": true, "input": true, "script": true, "source": true, "track": true, "video": true},
	"action":     {"form": true},
	"formaction": {"button": true, "input": true},
	"cite":       {"blockquote": true, "del": true, "ins": true, "q": true},
	"background": {"body": true, "table": true, "td": true, "th": true},
	"longdesc":   {"frame": true, "iframe": true, "img": true},
	"usemap":     {"img": true, "input": true, "object": true},
	"codebase":   {"applet": true, "object": true},
	"data":       {"object": true},
	"poster":     {"video": true},
	"lowsrc":     {"img": true},
	"manifest":   {"html": true},
	"icon":       {"command": true, "menuitem": true},
}

// ElementCannotHaveEndTag reports whether n is an HTML element serialized
// without an end tag.
func ElementCannotHaveEndTag(n *dom.Node) bool {
	return n.IsHTMLElement() && forbiddenEndTag[n.Element.LocalName]
}

// IsURLAttribute reports whether attr holds a URL on element el.
func IsURLAttribute(el *dom.Node, attr *dom.Attr) bool {
	if attr.NamespaceURI == dom.Xlinkns && attr.LocalName == "href" {
		return true
	}
	if !el.IsHTMLElement() || attr.NamespaceURI != dom.NoNamespace {
		return false
	}
	tags, ok := urlAttributes[strings.ToLower(attr.LocalName)]
	if !ok {
		return false
	}
	return tags == nil || tags[el.Element.LocalName]
}

func isRawTextParent(n *dom.Node) bool {
	return n != nil && n.IsHTMLElement() && rawTextParents[n.Element.LocalName]
}
