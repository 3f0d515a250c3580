package markup

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/heathj/domedit/dom"
)

var htmlNamespaces = map[string]dom.Namespace{
	"":     dom.Htmlns,
	"svg":  dom.Svgns,
	"math": dom.Mathmlns,
}

var attributeNamespaces = map[string]dom.Namespace{
	"xlink": dom.Xlinkns,
	"xml":   dom.Xmlns,
	"xmlns": dom.Xmlnsns,
}

// ParseHTMLDocument parses an HTML document with the HTML5 tree builder.
func ParseHTMLDocument(r io.Reader, documentURL string) (*dom.Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML document")
	}
	doc := dom.NewHTMLDocument(documentURL)
	if err := appendHTMLChildren(doc, doc, root); err != nil {
		return nil, err
	}
	setBaseURL(doc)

	logrus.WithField("url", documentURL).Debug("HTML document parsed")
	return doc, nil
}

// ParseHTMLFragment parses markup as the children of context and returns
// them in a document fragment owned by doc.
func ParseHTMLFragment(doc, context *dom.Node, markup string) (*dom.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if context != nil && context.NodeType == dom.ElementNode {
		name := context.Element.LocalName
		ctx = &html.Node{
			Type:      html.ElementNode,
			Data:      name,
			DataAtom:  atom.Lookup([]byte(name)),
			Namespace: namespaceName(context.Element.NamespaceURI),
		}
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML fragment")
	}
	frag := dom.NewDocumentFragment(doc)
	for _, hn := range nodes {
		if err := appendHTMLNode(doc, frag, hn); err != nil {
			return nil, err
		}
	}
	return frag, nil
}

func namespaceName(ns dom.Namespace) string {
	switch ns {
	case dom.Svgns:
		return "svg"
	case dom.Mathmlns:
		return "math"
	}
	return ""
}

func appendHTMLChildren(doc, parent *dom.Node, hn *html.Node) error {
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if err := appendHTMLNode(doc, parent, c); err != nil {
			return err
		}
	}
	return nil
}

func appendHTMLNode(doc, parent *dom.Node, hn *html.Node) error {
	n := convertHTMLNode(doc, hn)
	if n == nil {
		return nil
	}
	if _, err := parent.AppendChild(n); err != nil {
		return errors.Wrapf(err, "building %s", n.NodeName)
	}
	return appendHTMLChildren(doc, n, hn)
}

func convertHTMLNode(doc *dom.Node, hn *html.Node) *dom.Node {
	switch hn.Type {
	case html.TextNode, html.RawNode:
		return dom.NewTextNode(doc, hn.Data)
	case html.CommentNode:
		return dom.NewComment(doc, hn.Data)
	case html.DoctypeNode:
		var pub, sys string
		for _, a := range hn.Attr {
			switch a.Key {
			case "public":
				pub = a.Val
			case "system":
				sys = a.Val
			}
		}
		return dom.NewDocTypeNode(doc, hn.Data, pub, sys)
	case html.ElementNode:
		ns := htmlNamespaces[hn.Namespace]
		el := dom.NewElement(doc, hn.Data, ns)
		for _, a := range hn.Attr {
			attr := &dom.Attr{LocalName: a.Key, Value: a.Val}
			if a.Namespace != "" {
				attr.NamespaceURI = attributeNamespaces[a.Namespace]
				attr.Prefix = a.Namespace
			} else if a.Key == "xmlns" && ns != dom.Htmlns {
				attr.NamespaceURI = dom.Xmlnsns
			}
			el.Element.Attributes.SetNamedItem(attr)
		}
		return el
	}
	return nil
}

// setBaseURL applies the first <base href> of an HTML document.
func setBaseURL(doc *dom.Node) {
	for n := doc.FirstChild; n != nil; n = dom.NextNode(n, doc) {
		if n.HasTagName("base") && n.Element.HasAttribute("href") {
			doc.Document.BaseURL = doc.Document.CompleteURL(n.Element.GetAttribute("href"))
			return
		}
	}
}
