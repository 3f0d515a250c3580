package dom

import "fmt"

// BoundaryPoint is a (container, offset) position in the tree. For
// container nodes it also remembers the child just before the position;
// while that cache is set the offset may be stale and is recomputed from
// the child's index on demand.
type BoundaryPoint struct {
	container   *Node
	offset      int
	offsetValid bool
	childBefore *Node
}

func newBoundaryPoint(container *Node) BoundaryPoint {
	return BoundaryPoint{container: container, offsetValid: true}
}

func (b *BoundaryPoint) Container() *Node {
	return b.container
}

func (b *BoundaryPoint) ChildBefore() *Node {
	return b.childBefore
}

func (b *BoundaryPoint) Offset() int {
	b.ensureOffsetIsValid()
	return b.offset
}

func (b *BoundaryPoint) ensureOffsetIsValid() {
	if b.offsetValid {
		return
	}
	b.offset = b.childBefore.NodeIndex() + 1
	b.offsetValid = true
}

func (b *BoundaryPoint) Clear() {
	*b = BoundaryPoint{}
}

func (b *BoundaryPoint) Set(container *Node, offset int, childBefore *Node) {
	b.container = container
	b.offset = offset
	b.offsetValid = true
	b.childBefore = childBefore
}

// SetOffset moves the point inside a character data container.
func (b *BoundaryPoint) SetOffset(offset int) {
	b.offset = offset
	b.offsetValid = true
}

func (b *BoundaryPoint) SetToBeforeChild(child *Node) {
	b.childBefore = child.PreviousSibling
	b.container = child.ParentNode
	b.offsetValid = b.childBefore == nil
	b.offset = 0
}

func (b *BoundaryPoint) SetToAfterChild(child *Node) {
	b.childBefore = child
	b.container = child.ParentNode
	b.offsetValid = false
}

func (b *BoundaryPoint) SetToStartOfNode(container *Node) {
	b.container = container
	b.offset = 0
	b.offsetValid = true
	b.childBefore = nil
}

func (b *BoundaryPoint) SetToEndOfNode(container *Node) {
	b.container = container
	if container.OffsetInCharacters() {
		b.offset = container.Length()
		b.offsetValid = true
		b.childBefore = nil
		return
	}
	b.childBefore = container.LastChild
	b.offset = 0
	b.offsetValid = b.childBefore == nil
}

// ChildBeforeWillBeRemoved keeps the point in place when the cached child
// is about to leave the tree.
func (b *BoundaryPoint) ChildBeforeWillBeRemoved() {
	b.childBefore = b.childBefore.PreviousSibling
	if b.childBefore == nil {
		b.offset = 0
		b.offsetValid = true
	} else if b.offsetValid && b.offset > 0 {
		b.offset--
	}
}

func (b *BoundaryPoint) InvalidateOffset() {
	if b.childBefore != nil {
		b.offsetValid = false
	}
}

func (b *BoundaryPoint) equal(o *BoundaryPoint) bool {
	return b.container == o.container && b.Offset() == o.Offset()
}

func (b *BoundaryPoint) String() string {
	if b.container == nil {
		return "(nil)"
	}
	return fmt.Sprintf("(%s, %d)", b.container.NodeName, b.Offset())
}
