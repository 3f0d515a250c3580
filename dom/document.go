package dom

import (
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

type StandaloneStatus uint8

const (
	StandaloneUnspecified StandaloneStatus = iota
	StandaloneYes
	StandaloneNo
)

// Document is https://dom.whatwg.org/#interface-document
//
// Besides document metadata it owns the registry of live ranges that must
// be repaired when the tree changes.
type Document struct {
	URL, BaseURL, ContentType string

	// Type is "html" or "xml".
	Type string

	HasXMLDeclaration bool
	XMLVersion        string
	XMLEncoding       string
	XMLStandalone     StandaloneStatus

	ranges    map[*Range]struct{}
	listeners []registeredListener
	nextID    int
}

func NewHTMLDocument(documentURL string) *Node {
	return &Node{
		NodeType: DocumentNode,
		NodeName: "#document",
		Document: &Document{
			URL:         documentURL,
			ContentType: "text/html",
			Type:        "html",
		},
	}
}

func NewXMLDocument(documentURL string) *Node {
	return &Node{
		NodeType: DocumentNode,
		NodeName: "#document",
		Document: &Document{
			URL:         documentURL,
			ContentType: "application/xml",
			Type:        "xml",
			XMLVersion:  "1.0",
		},
	}
}

func (d *Document) IsHTMLDocument() bool {
	return d.Type == "html"
}

// AttachRange registers r so it is repaired on tree edits.
func (d *Document) AttachRange(r *Range) {
	if d.ranges == nil {
		d.ranges = make(map[*Range]struct{})
	}
	d.ranges[r] = struct{}{}
}

func (d *Document) DetachRange(r *Range) {
	delete(d.ranges, r)
}

// LiveRanges returns a snapshot of the attached ranges.
func (d *Document) LiveRanges() []*Range {
	out := make([]*Range, 0, len(d.ranges))
	for r := range d.ranges {
		out = append(out, r)
	}
	return out
}

// CompleteURL resolves s against the document base URL. Unparseable input
// is returned unchanged.
func (d *Document) CompleteURL(s string) string {
	base := d.BaseURL
	if base == "" {
		base = d.URL
	}
	ref, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	if base == "" {
		return ref.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return s
	}
	return b.ResolveReference(ref).String()
}

// IsLocalFile reports whether the document was loaded from a file: URL.
func (d *Document) IsLocalFile() bool {
	u, err := url.Parse(d.URL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "file")
}

func (n *Node) DocumentElement() *Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.NodeType == ElementNode {
			return c
		}
	}
	return nil
}

func (n *Node) Doctype() *Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.NodeType == DocumentTypeNode {
			return c
		}
	}
	return nil
}

// CreateRange returns a new live range collapsed at the start of the
// document.
func (n *Node) CreateRange() *Range {
	return NewRange(n)
}

// AdoptNode removes node from its parent and moves its subtree into the
// document n.
func (n *Node) AdoptNode(node *Node) (*Node, error) {
	if node.NodeType == DocumentNode {
		return nil, newException(NotSupportedError, "cannot adopt a document")
	}
	if err := node.Remove(); err != nil {
		return nil, err
	}
	adopt(node, n)
	return node, nil
}

func adopt(node, doc *Node) {
	if node.OwnerDocument == doc {
		return
	}
	node.OwnerDocument = doc
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		adopt(c, doc)
	}
}

func rangesFor(n *Node) []*Range {
	doc := n.ownerDocumentOrSelf()
	if doc == nil || doc.Document == nil || len(doc.Document.ranges) == 0 {
		return nil
	}
	return doc.Document.LiveRanges()
}

func nodeChildrenChanged(container *Node) {
	for _, r := range rangesFor(container) {
		r.NodeChildrenChanged(container)
	}
}

func nodeChildrenWillBeRemoved(container *Node) {
	for _, r := range rangesFor(container) {
		r.NodeChildrenWillBeRemoved(container)
	}
}

func nodeWillBeRemoved(n *Node) {
	for _, r := range rangesFor(n) {
		r.NodeWillBeRemoved(n)
	}
}

func textInserted(n *Node, offset, length int) {
	for _, r := range rangesFor(n) {
		r.TextInserted(n, offset, length)
	}
}

func textRemoved(n *Node, offset, length int) {
	for _, r := range rangesFor(n) {
		r.TextRemoved(n, offset, length)
	}
}

func textNodesMerged(oldNode *Node, offset int) {
	ranges := rangesFor(oldNode)
	if len(ranges) == 0 {
		return
	}
	index := oldNode.NodeIndex()
	for _, r := range ranges {
		r.TextNodesMerged(oldNode, index, offset)
	}
}

func textNodeSplit(oldNode *Node) {
	for _, r := range rangesFor(oldNode) {
		r.TextNodeSplit(oldNode)
	}
}

func logRangeRepair(hook string, r *Range) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	logrus.WithFields(logrus.Fields{
		"hook":  hook,
		"start": r.start.String(),
		"end":   r.end.String(),
	}).Debug("range repaired")
}
