package dom

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// CompareHow selects which boundary points CompareBoundaryPoints orders.
type CompareHow uint16

const (
	StartToStart CompareHow = iota
	StartToEnd
	EndToEnd
	EndToStart
)

// CompareResult is the answer of CompareNode.
type CompareResult uint16

const (
	NodeBefore CompareResult = iota
	NodeAfter
	NodeBeforeAndAfter
	NodeInside
)

// Range is a live range: https://dom.whatwg.org/#interface-range
//
// A Range registers itself with its owner document and is repaired by the
// document on every tree edit. Call Detach when it is no longer needed.
type Range struct {
	ownerDocument *Node
	start, end    BoundaryPoint
}

// NewRange returns a range collapsed at (doc, 0).
func NewRange(doc *Node) *Range {
	doc = doc.ownerDocumentOrSelf()
	r := &Range{
		ownerDocument: doc,
		start:         newBoundaryPoint(doc),
		end:           newBoundaryPoint(doc),
	}
	doc.Document.AttachRange(r)
	return r
}

// NewRangeWithBoundaries creates a range and sets both ends through the
// checked setters.
func NewRangeWithBoundaries(doc, startContainer *Node, startOffset int, endContainer *Node, endOffset int) (*Range, error) {
	r := NewRange(doc)
	if err := r.SetStart(startContainer, startOffset); err != nil {
		r.Detach()
		return nil, err
	}
	if err := r.SetEnd(endContainer, endOffset); err != nil {
		r.Detach()
		return nil, err
	}
	return r, nil
}

// Detach unregisters the range; it stops tracking tree edits.
func (r *Range) Detach() {
	r.ownerDocument.Document.DetachRange(r)
}

func (r *Range) setDocument(doc *Node) {
	r.ownerDocument.Document.DetachRange(r)
	r.ownerDocument = doc
	r.start.SetToStartOfNode(doc)
	r.end.SetToStartOfNode(doc)
	doc.Document.AttachRange(r)
}

func (r *Range) OwnerDocument() *Node { return r.ownerDocument }
func (r *Range) StartContainer() *Node { return r.start.Container() }
func (r *Range) StartOffset() int      { return r.start.Offset() }
func (r *Range) EndContainer() *Node   { return r.end.Container() }
func (r *Range) EndOffset() int        { return r.end.Offset() }

// Start returns a copy of the start boundary point.
func (r *Range) Start() BoundaryPoint { return r.start }
func (r *Range) End() BoundaryPoint   { return r.end }

func (r *Range) Collapsed() bool {
	return r.start.equal(&r.end)
}

func (r *Range) CommonAncestorContainer() *Node {
	return CommonAncestorContainer(r.start.Container(), r.end.Container())
}

// checkNodeWOffset validates (n, offset) as a boundary point and returns
// the child just before it, if any.
func checkNodeWOffset(n *Node, offset int) (*Node, error) {
	if offset < 0 {
		return nil, newException(IndexSizeError, "negative offset %d", offset)
	}
	switch n.NodeType {
	case DocumentTypeNode:
		return nil, newException(InvalidNodeTypeError, "a doctype cannot contain a boundary point")
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		if offset > n.Length() {
			return nil, newException(IndexSizeError, "offset %d is larger than the data length %d", offset, n.Length())
		}
		return nil, nil
	}
	if offset == 0 {
		return nil, nil
	}
	childBefore := n.ChildAt(offset - 1)
	if childBefore == nil {
		return nil, newException(IndexSizeError, "offset %d is larger than the child count %d", offset, n.CountChildNodes())
	}
	return childBefore, nil
}

func (r *Range) adoptDocumentOf(n *Node) (bool, error) {
	doc := n.ownerDocumentOrSelf()
	if doc == nil {
		return false, newException(WrongDocumentError, "the node has no owner document")
	}
	if doc != r.ownerDocument {
		r.setDocument(doc)
		return true, nil
	}
	return false, nil
}

// startAndEndInDifferentTrees also reports an inverted range.
func (r *Range) startAndEndInDifferentTrees() bool {
	if r.start.Container().RootNode() != r.end.Container().RootNode() {
		return true
	}
	c, err := compareBoundaryPointValues(&r.start, &r.end)
	return err != nil || c > 0
}

func (r *Range) SetStart(n *Node, offset int) error {
	if n == nil {
		return newException(TypeError, "SetStart requires a node")
	}
	didMoveDocument, err := r.adoptDocumentOf(n)
	if err != nil {
		return err
	}

	childNode, err := checkNodeWOffset(n, offset)
	if err != nil {
		return err
	}

	r.start.Set(n, offset, childNode)

	if didMoveDocument || r.startAndEndInDifferentTrees() {
		r.Collapse(true)
	}
	return nil
}

func (r *Range) SetEnd(n *Node, offset int) error {
	if n == nil {
		return newException(TypeError, "SetEnd requires a node")
	}
	didMoveDocument, err := r.adoptDocumentOf(n)
	if err != nil {
		return err
	}

	childNode, err := checkNodeWOffset(n, offset)
	if err != nil {
		return err
	}

	r.end.Set(n, offset, childNode)

	if didMoveDocument || r.startAndEndInDifferentTrees() {
		r.Collapse(false)
	}
	return nil
}

func parentOrError(n *Node) (*Node, error) {
	if n == nil {
		return nil, newException(TypeError, "a node is required")
	}
	if n.ParentNode == nil {
		return nil, newException(InvalidNodeTypeError, "the node has no parent")
	}
	return n.ParentNode, nil
}

func (r *Range) SetStartBefore(n *Node) error {
	parent, err := parentOrError(n)
	if err != nil {
		return err
	}
	return r.SetStart(parent, n.NodeIndex())
}

func (r *Range) SetStartAfter(n *Node) error {
	parent, err := parentOrError(n)
	if err != nil {
		return err
	}
	return r.SetStart(parent, n.NodeIndex()+1)
}

func (r *Range) SetEndBefore(n *Node) error {
	parent, err := parentOrError(n)
	if err != nil {
		return err
	}
	return r.SetEnd(parent, n.NodeIndex())
}

func (r *Range) SetEndAfter(n *Node) error {
	parent, err := parentOrError(n)
	if err != nil {
		return err
	}
	return r.SetEnd(parent, n.NodeIndex()+1)
}

// Collapse moves one end onto the other.
func (r *Range) Collapse(toStart bool) {
	if toStart {
		r.end = r.start
	} else {
		r.start = r.end
	}
}

// SelectNode makes the range cover exactly n.
func (r *Range) SelectNode(n *Node) error {
	parent, err := parentOrError(n)
	if err != nil {
		return err
	}
	switch n.NodeType {
	case AttrNode, DocumentFragmentNode, DocumentNode:
		return newException(InvalidNodeTypeError, "cannot select a %s node", n.NodeType)
	}
	if _, err := r.adoptDocumentOf(n); err != nil {
		return err
	}

	index := n.NodeIndex()
	if err := r.SetStart(parent, index); err != nil {
		return err
	}
	return r.SetEnd(parent, index+1)
}

// SelectNodeContents makes the range cover the contents of n.
func (r *Range) SelectNodeContents(n *Node) error {
	if n == nil {
		return newException(TypeError, "SelectNodeContents requires a node")
	}
	if n.NodeType == DocumentTypeNode {
		return newException(InvalidNodeTypeError, "cannot select the contents of a doctype")
	}
	if _, err := r.adoptDocumentOf(n); err != nil {
		return err
	}

	r.start.SetToStartOfNode(n)
	r.end.SetToEndOfNode(n)
	return nil
}

// ComparePoint returns -1, 0 or 1 when (n, offset) is before, inside or
// after the range.
func (r *Range) ComparePoint(n *Node, offset int) (int, error) {
	if n == nil {
		return 0, newException(TypeError, "ComparePoint requires a node")
	}
	if !n.IsConnected() {
		if CommonAncestorContainer(n, r.start.Container()) == nil {
			return 0, newException(WrongDocumentError, "the node is not in the range's tree")
		}
	} else if n.ownerDocumentOrSelf() != r.ownerDocument {
		return 0, newException(WrongDocumentError, "the node is in another document")
	}

	if _, err := checkNodeWOffset(n, offset); err != nil {
		return 0, err
	}

	c, err := CompareBoundaryPoints(n, offset, r.start.Container(), r.start.Offset())
	if err != nil {
		return 0, err
	}
	if c < 0 {
		return -1, nil
	}

	c, err = CompareBoundaryPoints(n, offset, r.end.Container(), r.end.Offset())
	if err != nil {
		return 0, err
	}
	if c > 0 {
		return 1, nil
	}

	return 0, nil
}

// IsPointInRange reports whether (n, offset) lies within the range. Points
// in another tree are never in range.
func (r *Range) IsPointInRange(n *Node, offset int) (bool, error) {
	if n == nil {
		return false, newException(TypeError, "IsPointInRange requires a node")
	}
	if n.RootNode() != r.start.Container().RootNode() {
		return false, nil
	}
	if _, err := checkNodeWOffset(n, offset); err != nil {
		return false, err
	}

	c, err := CompareBoundaryPoints(n, offset, r.start.Container(), r.start.Offset())
	if err != nil || c < 0 {
		return false, nil
	}
	c, err = CompareBoundaryPoints(n, offset, r.end.Container(), r.end.Offset())
	if err != nil || c > 0 {
		return false, nil
	}
	return true, nil
}

// CompareNode classifies n relative to the range. Nodes outside the
// range's document compare as NodeBefore.
func (r *Range) CompareNode(n *Node) (CompareResult, error) {
	if n == nil {
		return NodeBefore, newException(TypeError, "CompareNode requires a node")
	}
	if !n.IsConnected() || n.ownerDocumentOrSelf() != r.ownerDocument {
		return NodeBefore, nil
	}

	parent := n.ParentNode
	if parent == nil {
		return NodeBefore, newException(NotFoundError, "the node has no parent")
	}
	index := n.NodeIndex()

	startCompare, err := r.ComparePoint(parent, index)
	if err != nil {
		return NodeBefore, err
	}
	endCompare, err := r.ComparePoint(parent, index+1)
	if err != nil {
		return NodeBefore, err
	}
	nodeStartsBeforeRange := startCompare < 0
	nodeEndsAfterRange := endCompare > 0

	switch {
	case nodeStartsBeforeRange && nodeEndsAfterRange:
		return NodeBeforeAndAfter, nil
	case nodeStartsBeforeRange:
		return NodeBefore, nil
	case nodeEndsAfterRange:
		return NodeAfter, nil
	}
	return NodeInside, nil
}

// CompareBoundaryPoints orders one boundary point of r against one of
// source.
func (r *Range) CompareBoundaryPoints(how CompareHow, source *Range) (int, error) {
	if source == nil {
		return 0, newException(TypeError, "CompareBoundaryPoints requires a range")
	}
	if how > EndToStart {
		return 0, newException(SyntaxError, "invalid compare type %d", how)
	}

	thisCont := r.CommonAncestorContainer()
	sourceCont := source.CommonAncestorContainer()
	if thisCont == nil || sourceCont == nil || thisCont.ownerDocumentOrSelf() != sourceCont.ownerDocumentOrSelf() {
		return 0, newException(WrongDocumentError, "the ranges are in different documents")
	}
	if thisCont.RootNode() != sourceCont.RootNode() {
		return 0, newException(WrongDocumentError, "the ranges are in different trees")
	}

	switch how {
	case StartToStart:
		return compareBoundaryPointValues(&r.start, &source.start)
	case StartToEnd:
		return compareBoundaryPointValues(&r.end, &source.start)
	case EndToEnd:
		return compareBoundaryPointValues(&r.end, &source.end)
	default:
		return compareBoundaryPointValues(&r.start, &source.end)
	}
}

// BoundaryPointsValid reports whether start is set and not after end.
func (r *Range) BoundaryPointsValid() bool {
	if r.start.Container() == nil {
		return false
	}
	c, err := compareBoundaryPointValues(&r.start, &r.end)
	return err == nil && c <= 0
}

// IntersectsNode reports whether any part of n is inside the range. A node
// without a parent in the range's tree trivially intersects.
func (r *Range) IntersectsNode(n *Node) bool {
	if n == nil || n.RootNode() != r.start.Container().RootNode() {
		return false
	}

	parent := n.ParentNode
	if parent == nil {
		return true
	}
	index := n.NodeIndex()

	beforeEnd, err := CompareBoundaryPoints(parent, index, r.end.Container(), r.end.Offset())
	if err != nil {
		return false
	}
	afterStart, err := CompareBoundaryPoints(parent, index+1, r.start.Container(), r.start.Offset())
	if err != nil {
		return false
	}
	return beforeEnd < 0 && afterStart > 0
}

// Contains reports whether other lies entirely within r.
func (r *Range) Contains(other *Range) bool {
	startToStart, err := r.CompareBoundaryPoints(StartToStart, other)
	if err != nil || startToStart > 0 {
		return false
	}
	endToEnd, err := r.CompareBoundaryPoints(EndToEnd, other)
	return err == nil && endToEnd >= 0
}

// ContainsNode reports whether n lies entirely within r.
func (r *Range) ContainsNode(n *Node) bool {
	result, err := r.CompareNode(n)
	return err == nil && result == NodeInside
}

// AreRangesEqual reports whether a and b have the same boundary points.
func AreRangesEqual(a, b *Range) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.start.equal(&b.start) && a.end.equal(&b.end)
}

// RangesOverlap reports whether a and b share any position.
func RangesOverlap(a, b *Range) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}

	// Ranges in different trees never overlap.
	startToStart, err := a.CompareBoundaryPoints(StartToStart, b)
	if err != nil {
		return false
	}
	endToEnd, err := a.CompareBoundaryPoints(EndToEnd, b)
	if err != nil {
		return false
	}

	// First range contains the second range.
	if startToStart <= 0 && endToEnd >= 0 {
		return true
	}

	// End of first range is inside second range.
	startToEnd, err := a.CompareBoundaryPoints(StartToEnd, b)
	if err != nil {
		return false
	}
	if startToStart <= 0 && startToEnd >= 0 {
		return true
	}

	// Start of first range is inside second range.
	endToStart, err := a.CompareBoundaryPoints(EndToStart, b)
	if err != nil {
		return false
	}
	if endToStart <= 0 && endToEnd >= 0 {
		return true
	}

	// Second range contains the first range.
	return startToStart >= 0 && endToEnd <= 0
}

// InsertNode inserts node at the start of the range, splitting a text or
// CDATA start container.
func (r *Range) InsertNode(node *Node) error {
	if node == nil {
		return newException(TypeError, "InsertNode requires a node")
	}
	startContainer := r.start.Container()
	switch startContainer.NodeType {
	case CommentNode, ProcessingInstructionNode:
		return newException(HierarchyRequestError, "cannot insert into a %s node", startContainer.NodeType)
	}
	startIsText := startContainer.NodeType == TextNode || startContainer.NodeType == CDATASectionNode
	if startIsText && startContainer.ParentNode == nil {
		return newException(HierarchyRequestError, "the start text node has no parent")
	}
	if node == startContainer {
		return newException(HierarchyRequestError, "cannot insert the start container into itself")
	}

	var referenceNode *Node
	if startIsText {
		referenceNode = startContainer
	} else {
		referenceNode = startContainer.ChildAt(r.start.Offset())
	}
	parent := startContainer
	if referenceNode != nil {
		parent = referenceNode.ParentNode
	}
	if !parent.IsContainerNode() {
		return newException(HierarchyRequestError, "cannot insert into a %s node", parent.NodeType)
	}
	if err := parent.ensurePreInsertionValidity(node, referenceNode); err != nil {
		return err
	}

	if startIsText {
		split, err := startContainer.SplitText(r.start.Offset())
		if err != nil {
			return err
		}
		referenceNode = split
	}

	if referenceNode == node {
		referenceNode = referenceNode.NextSibling
	}

	if err := node.Remove(); err != nil {
		return err
	}

	newOffset := parent.CountChildNodes()
	if referenceNode != nil {
		newOffset = referenceNode.NodeIndex()
	}
	if node.NodeType == DocumentFragmentNode {
		newOffset += node.CountChildNodes()
	} else {
		newOffset++
	}

	if _, err := parent.InsertBefore(node, referenceNode); err != nil {
		return err
	}

	if r.Collapsed() {
		return r.SetEnd(parent, newOffset)
	}
	return nil
}

// SurroundContents moves the range contents into newParent and puts
// newParent where the contents were. The range then selects newParent's
// contents.
func (r *Range) SurroundContents(newParent *Node) error {
	if newParent == nil {
		return newException(TypeError, "SurroundContents requires a node")
	}

	startNonTextContainer := r.start.Container()
	if startNonTextContainer.NodeType == TextNode {
		startNonTextContainer = startNonTextContainer.ParentNode
	}
	endNonTextContainer := r.end.Container()
	if endNonTextContainer.NodeType == TextNode {
		endNonTextContainer = endNonTextContainer.ParentNode
	}
	if startNonTextContainer != endNonTextContainer {
		return newException(InvalidStateError, "the range partially selects a non-text node")
	}

	switch newParent.NodeType {
	case AttrNode, DocumentFragmentNode, DocumentNode, DocumentTypeNode:
		return newException(InvalidNodeTypeError, "a %s node cannot surround contents", newParent.NodeType)
	}

	fragment, err := r.ExtractContents()
	if err != nil {
		return err
	}

	if newParent.HasChildNodes() {
		newParent.RemoveChildren()
	}

	if err := r.InsertNode(newParent); err != nil {
		return err
	}

	if _, err := newParent.AppendChild(fragment); err != nil {
		return err
	}

	return r.SelectNodeContents(newParent)
}

// CloneRange returns a new live range with the same boundary points.
func (r *Range) CloneRange() *Range {
	c := NewRange(r.ownerDocument)
	c.start = r.start
	c.end = r.end
	return c
}

// FirstNode is the first node in tree order touched by the range.
func (r *Range) FirstNode() *Node {
	startContainer := r.start.Container()
	if startContainer.OffsetInCharacters() {
		return startContainer
	}
	if child := startContainer.ChildAt(r.start.Offset()); child != nil {
		return child
	}
	if r.start.Offset() == 0 {
		return startContainer
	}
	return NextSkippingChildren(startContainer, nil)
}

// PastLastNode is the first node in tree order after the range.
func (r *Range) PastLastNode() *Node {
	endContainer := r.end.Container()
	if endContainer.OffsetInCharacters() {
		return NextSkippingChildren(endContainer, nil)
	}
	if child := endContainer.ChildAt(r.end.Offset()); child != nil {
		return child
	}
	return NextSkippingChildren(endContainer, nil)
}

// String returns the text of the Text and CDATA nodes in the range.
func (r *Range) String() string {
	var b strings.Builder
	pastLast := r.PastLastNode()
	for n := r.FirstNode(); n != nil && n != pastLast; n = NextNode(n, nil) {
		if n.NodeType != TextNode && n.NodeType != CDATASectionNode {
			continue
		}
		data := n.CharacterData.Data
		length := utf16Length(data)
		start, end := 0, length
		if n == r.start.Container() {
			start = clamp(r.start.Offset(), 0, length)
		}
		if n == r.end.Container() {
			end = clamp(r.end.Offset(), start, length)
		}
		if start == 0 && end == length {
			b.WriteString(data)
		} else {
			b.WriteString(utf16Slice(data, start, end))
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Snapshot returns a non-live copy of the boundary points.
func (r *Range) Snapshot() *StaticRange {
	s := &StaticRange{start: r.start, end: r.end}
	s.start.Set(s.start.Container(), s.start.Offset(), nil)
	s.end.Set(s.end.Container(), s.end.Offset(), nil)
	return s
}

func (r *Range) debug(msg string) {
	logrus.WithFields(logrus.Fields{
		"start": r.start.String(),
		"end":   r.end.String(),
	}).Debug(msg)
}
