package markup

import (
	"strings"

	"github.com/heathj/domedit/dom"
)

// Declaration is one CSS property/value pair.
type Declaration struct {
	Property, Value string
}

// Style is an ordered list of CSS declarations, as found in a style
// attribute. Property names are lowercase.
type Style struct {
	decls []Declaration
}

// ParseStyle reads a style attribute value. Malformed declarations are
// dropped.
func ParseStyle(s string) *Style {
	st := &Style{}
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}
		st.Set(prop, val)
	}
	return st
}

func (s *Style) IsEmpty() bool {
	return s == nil || len(s.decls) == 0
}

func (s *Style) Len() int {
	if s == nil {
		return 0
	}
	return len(s.decls)
}

func (s *Style) Get(prop string) string {
	if s == nil {
		return ""
	}
	for _, d := range s.decls {
		if d.Property == prop {
			return d.Value
		}
	}
	return ""
}

func (s *Style) Has(prop string) bool {
	if s == nil {
		return false
	}
	for _, d := range s.decls {
		if d.Property == prop {
			return true
		}
	}
	return false
}

// Set replaces the value of prop in place, or appends it.
func (s *Style) Set(prop, value string) {
	for i, d := range s.decls {
		if d.Property == prop {
			s.decls[i].Value = value
			return
		}
	}
	s.decls = append(s.decls, Declaration{Property: prop, Value: value})
}

func (s *Style) Remove(prop string) {
	for i, d := range s.decls {
		if d.Property == prop {
			s.decls = append(s.decls[:i], s.decls[i+1:]...)
			return
		}
	}
}

func (s *Style) Copy() *Style {
	out := &Style{}
	if s != nil {
		out.decls = append(out.decls, s.decls...)
	}
	return out
}

// Merge copies the declarations of other into s. Existing values are only
// replaced when override is set.
func (s *Style) Merge(other *Style, override bool) {
	if other == nil {
		return
	}
	for _, d := range other.decls {
		if !override && s.Has(d.Property) {
			continue
		}
		s.Set(d.Property, d.Value)
	}
}

func (s *Style) Declarations() []Declaration {
	if s == nil {
		return nil
	}
	return s.decls
}

// String renders the declarations as "prop: value; prop2: value2;".
func (s *Style) String() string {
	if s.IsEmpty() {
		return ""
	}
	var b strings.Builder
	for i, d := range s.decls {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// StyleResolver supplies computed style for styled serialization.
type StyleResolver interface {
	// InheritedStyle returns the inherited properties in effect at n.
	InheritedStyle(n *dom.Node) *Style
	// MatchedStyle returns the declarations that apply to el itself.
	MatchedStyle(el *dom.Node) *Style
}

// InlineStyleResolver computes style from style attributes and the
// presentational meaning of HTML tags. It knows nothing about style sheets.
type InlineStyleResolver struct{}

var tagDefaultStyles = map[string][]Declaration{
	"b":         {{"font-weight", "bold"}},
	"strong":    {{"font-weight", "bold"}},
	"i":         {{"font-style", "italic"}},
	"em":        {{"font-style", "italic"}},
	"cite":      {{"font-style", "italic"}},
	"var":       {{"font-style", "italic"}},
	"dfn":       {{"font-style", "italic"}},
	"u":         {{"text-decoration", "underline"}},
	"ins":       {{"text-decoration", "underline"}},
	"s":         {{"text-decoration", "line-through"}},
	"strike":    {{"text-decoration", "line-through"}},
	"del":       {{"text-decoration", "line-through"}},
	"code":      {{"font-family", "monospace"}},
	"tt":        {{"font-family", "monospace"}},
	"kbd":       {{"font-family", "monospace"}},
	"samp":      {{"font-family", "monospace"}},
	"center":    {{"text-align", "center"}},
	"pre":       {{"white-space", "pre"}, {"font-family", "monospace"}},
	"listing":   {{"white-space", "pre"}, {"font-family", "monospace"}},
	"xmp":       {{"white-space", "pre"}, {"font-family", "monospace"}},
	"plaintext": {{"white-space", "pre"}, {"font-family", "monospace"}},
	"textarea":  {{"white-space", "pre-wrap"}},
	"nobr":      {{"white-space", "nowrap"}},
}

var inheritedProperties = map[string]bool{
	"color": true, "direction": true, "font": true, "font-family": true,
	"font-size": true, "font-style": true, "font-variant": true,
	"font-weight": true, "letter-spacing": true, "line-height": true,
	"list-style": true, "list-style-type": true, "text-align": true,
	"text-decoration": true, "text-indent": true, "text-transform": true,
	"visibility": true, "white-space": true, "word-spacing": true,
}

func defaultStyleFor(el *dom.Node) *Style {
	st := &Style{}
	if !el.IsHTMLElement() {
		return st
	}
	for _, d := range tagDefaultStyles[el.Element.LocalName] {
		st.Set(d.Property, d.Value)
	}
	if el.Element.LocalName == "font" {
		if c := el.Element.GetAttribute("color"); c != "" {
			st.Set("color", c)
		}
		if f := el.Element.GetAttribute("face"); f != "" {
			st.Set("font-family", f)
		}
	}
	return st
}

func (InlineStyleResolver) MatchedStyle(el *dom.Node) *Style {
	if el == nil || el.NodeType != dom.ElementNode {
		return &Style{}
	}
	st := defaultStyleFor(el)
	st.Merge(ParseStyle(el.Element.GetAttribute("style")), true)
	return st
}

func (r InlineStyleResolver) InheritedStyle(n *dom.Node) *Style {
	st := &Style{}
	for p := n; p != nil; p = p.ParentNode {
		if p.NodeType != dom.ElementNode {
			continue
		}
		for _, d := range r.MatchedStyle(p).Declarations() {
			if inheritedProperties[d.Property] && !st.Has(d.Property) {
				st.Set(d.Property, d.Value)
			}
		}
	}
	return st
}

var newlinePreservingTags = map[string]bool{
	"pre": true, "textarea": true, "listing": true, "xmp": true, "plaintext": true,
}

// preservesNewline reports whether white space at n is rendered as
// written.
func preservesNewline(n *dom.Node, styles StyleResolver) bool {
	for p := n; p != nil; p = p.ParentNode {
		if p.NodeType != dom.ElementNode {
			continue
		}
		if ws := ParseStyle(p.Element.GetAttribute("style")).Get("white-space"); ws != "" {
			return strings.HasPrefix(ws, "pre")
		}
		if p.IsHTMLElement() && newlinePreservingTags[p.Element.LocalName] {
			return true
		}
	}
	ws := styles.InheritedStyle(n).Get("white-space")
	return strings.HasPrefix(ws, "pre") || ws == "break-spaces"
}
