package markup

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/domedit/dom"
)

// xmlScope is one open element on the parser stack together with the
// prefixes it binds.
type xmlScope struct {
	node    *dom.Node
	rawName xml.Name
	ns      Namespaces
}

type xmlBuilder struct {
	doc   *dom.Node
	data  []byte
	d     *xml.Decoder
	stack []xmlScope
}

// ParseXMLDocument parses a namespace-aware XML document.
func ParseXMLDocument(r io.Reader, documentURL string) (*dom.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading XML document")
	}
	doc := dom.NewXMLDocument(documentURL)
	b := newXMLBuilder(doc, data, doc, newNamespaces())
	if err := b.run(); err != nil {
		return nil, err
	}

	logrus.WithField("url", documentURL).Debug("XML document parsed")
	return doc, nil
}

// ParseXMLFragment parses markup as the children of context. Prefixes in
// scope at context may be used by the markup.
func ParseXMLFragment(doc, context *dom.Node, markup string) (*dom.Node, error) {
	frag := dom.NewDocumentFragment(doc)
	b := newXMLBuilder(doc, []byte(markup), frag, inScopeNamespaces(context))
	if err := b.run(); err != nil {
		return nil, err
	}
	return frag, nil
}

func newXMLBuilder(doc *dom.Node, data []byte, root *dom.Node, ns Namespaces) *xmlBuilder {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Entity = xml.HTMLEntity
	return &xmlBuilder{
		doc:   doc,
		data:  data,
		d:     d,
		stack: []xmlScope{{node: root, ns: ns}},
	}
}

// inScopeNamespaces collects the prefix bindings visible at n, nearest
// declaration first.
func inScopeNamespaces(n *dom.Node) Namespaces {
	ns := newNamespaces()
	seen := map[string]bool{}
	bind := func(prefix string, uri dom.Namespace) {
		if !seen[prefix] {
			seen[prefix] = true
			ns[prefix] = uri
		}
	}
	for p := n; p != nil; p = p.ParentNode {
		if p.NodeType != dom.ElementNode {
			continue
		}
		for _, a := range p.Element.Attributes.Attrs {
			if a.NamespaceURI != dom.Xmlnsns {
				continue
			}
			if a.Prefix == "xmlns" {
				bind(a.LocalName, dom.Namespace(a.Value))
			} else {
				bind("", dom.Namespace(a.Value))
			}
		}
		bind(p.Element.Prefix, p.Element.NamespaceURI)
	}
	return ns
}

func (b *xmlBuilder) top() *xmlScope {
	return &b.stack[len(b.stack)-1]
}

func (b *xmlBuilder) run() error {
	for {
		offset := b.d.InputOffset()
		tok, err := b.d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "parsing XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			err = b.startElement(t)
		case xml.EndElement:
			err = b.endElement(t)
		case xml.CharData:
			err = b.text(string(t), bytes.HasPrefix(b.data[offset:], []byte("<![CDATA[")))
		case xml.Comment:
			err = b.append(dom.NewComment(b.doc, string(t)))
		case xml.ProcInst:
			err = b.procInst(t)
		case xml.Directive:
			err = b.directive(string(t))
		}
		if err != nil {
			return err
		}
	}

	if len(b.stack) > 1 {
		return errors.Errorf("parsing XML: unclosed element <%s>", b.top().node.NodeName)
	}
	return nil
}

func (b *xmlBuilder) append(n *dom.Node) error {
	parent := b.top().node
	if _, err := parent.AppendChild(n); err != nil {
		return errors.Wrapf(err, "building %s", n.NodeName)
	}
	return nil
}

func (b *xmlBuilder) lookup(ns Namespaces, prefix string) (dom.Namespace, error) {
	uri, ok := ns[prefix]
	if !ok && prefix != "" {
		return "", errors.Errorf("parsing XML: unbound namespace prefix %q", prefix)
	}
	return uri, nil
}

func (b *xmlBuilder) startElement(t xml.StartElement) error {
	ns := b.top().ns.clone()
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "xmlns":
			ns[a.Name.Local] = dom.Namespace(a.Value)
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			ns[""] = dom.Namespace(a.Value)
		}
	}

	uri, err := b.lookup(ns, t.Name.Space)
	if err != nil {
		return err
	}
	el := dom.NewElement(b.doc, t.Name.Local, uri, t.Name.Space)
	for _, a := range t.Attr {
		attr := &dom.Attr{Prefix: a.Name.Space, LocalName: a.Name.Local, Value: a.Value}
		switch {
		case a.Name.Space == "xmlns", a.Name.Space == "" && a.Name.Local == "xmlns":
			attr.NamespaceURI = dom.Xmlnsns
		case a.Name.Space == "xml":
			attr.NamespaceURI = dom.Xmlns
		case a.Name.Space != "":
			if attr.NamespaceURI, err = b.lookup(ns, a.Name.Space); err != nil {
				return err
			}
		}
		el.Element.Attributes.SetNamedItem(attr)
	}

	if err := b.append(el); err != nil {
		return err
	}
	b.stack = append(b.stack, xmlScope{node: el, rawName: t.Name, ns: ns})
	return nil
}

func (b *xmlBuilder) endElement(t xml.EndElement) error {
	if len(b.stack) == 1 {
		return errors.Errorf("parsing XML: unexpected end element </%s>", qualifiedXMLName(t.Name))
	}
	if top := b.top(); top.rawName != t.Name {
		return errors.Errorf("parsing XML: element <%s> closed by </%s>", qualifiedXMLName(top.rawName), qualifiedXMLName(t.Name))
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func qualifiedXMLName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func (b *xmlBuilder) text(s string, cdata bool) error {
	parent := b.top().node
	if parent.NodeType == dom.DocumentNode {
		if strings.TrimSpace(s) != "" {
			return errors.New("parsing XML: text outside the document element")
		}
		return nil
	}
	if cdata {
		return b.append(dom.NewCDATASection(b.doc, s))
	}
	return b.append(dom.NewTextNode(b.doc, s))
}

func (b *xmlBuilder) procInst(t xml.ProcInst) error {
	inst := strings.TrimSpace(string(t.Inst))
	if t.Target != "xml" {
		return b.append(dom.NewProcessingInstruction(b.doc, t.Target, inst))
	}
	if b.top().node.NodeType != dom.DocumentNode {
		return nil
	}
	d := b.doc.Document
	d.HasXMLDeclaration = true
	if v := procInstParam(inst, "version"); v != "" {
		d.XMLVersion = v
	}
	d.XMLEncoding = procInstParam(inst, "encoding")
	switch procInstParam(inst, "standalone") {
	case "yes":
		d.XMLStandalone = dom.StandaloneYes
	case "no":
		d.XMLStandalone = dom.StandaloneNo
	}
	return nil
}

// procInstParam returns the value of a pseudo-attribute such as version in
// an XML declaration.
func procInstParam(inst, param string) string {
	for s := inst; s != ""; {
		i := strings.Index(s, param)
		if i < 0 {
			return ""
		}
		s = strings.TrimLeft(s[i+len(param):], " \t\r\n")
		if !strings.HasPrefix(s, "=") {
			continue
		}
		s = strings.TrimLeft(s[1:], " \t\r\n")
		if s == "" || (s[0] != '"' && s[0] != '\'') {
			return ""
		}
		q := s[0]
		end := strings.IndexByte(s[1:], q)
		if end < 0 {
			return ""
		}
		return s[1 : end+1]
	}
	return ""
}

func (b *xmlBuilder) directive(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "DOCTYPE") || b.top().node.NodeType != dom.DocumentNode {
		return nil
	}
	dt := parseDoctype(s[len("DOCTYPE"):])
	n := dom.NewDocTypeNode(b.doc, dt.Name, dt.PublicID, dt.SystemID)
	n.DocumentType.InternalSubset = dt.InternalSubset
	return b.append(n)
}

// parseDoctype reads `name [PUBLIC "p" "s" | SYSTEM "s"] [[subset]]`.
func parseDoctype(s string) dom.DocumentType {
	var dt dom.DocumentType
	s = strings.TrimSpace(s)

	if i := strings.IndexByte(s, '['); i >= 0 {
		if j := strings.LastIndexByte(s, ']'); j > i {
			dt.InternalSubset = strings.TrimSpace(s[i+1 : j])
		}
		s = strings.TrimSpace(s[:i])
	}

	fields := strings.Fields(s)
	if len(fields) == 0 {
		return dt
	}
	dt.Name = fields[0]
	rest := strings.TrimSpace(s[len(fields[0]):])

	var ids []string
	keyword := ""
	if f := strings.Fields(rest); len(f) > 0 {
		keyword = strings.ToUpper(f[0])
		rest = strings.TrimSpace(rest[len(f[0]):])
	}
	for rest != "" && (rest[0] == '"' || rest[0] == '\'') {
		end := strings.IndexByte(rest[1:], rest[0])
		if end < 0 {
			break
		}
		ids = append(ids, rest[1:end+1])
		rest = strings.TrimSpace(rest[end+2:])
	}

	switch {
	case keyword == "PUBLIC" && len(ids) > 0:
		dt.PublicID = ids[0]
		if len(ids) > 1 {
			dt.SystemID = ids[1]
		}
	case keyword == "SYSTEM" && len(ids) > 0:
		dt.SystemID = ids[0]
	}
	return dt
}
