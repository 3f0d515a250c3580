package dom

// The hooks below are called by the owner document on every tree edit.
// Each one repairs both boundary points in place.

func boundaryNodeChildrenChanged(b *BoundaryPoint, container *Node) {
	if b.ChildBefore() == nil {
		return
	}
	if b.Container() != container {
		return
	}
	b.InvalidateOffset()
}

// NodeChildrenChanged is called after children were inserted into or
// removed from container.
func (r *Range) NodeChildrenChanged(container *Node) {
	boundaryNodeChildrenChanged(&r.start, container)
	boundaryNodeChildrenChanged(&r.end, container)
}

func boundaryNodeChildrenWillBeRemoved(b *BoundaryPoint, container *Node) {
	for nodeToBeRemoved := container.FirstChild; nodeToBeRemoved != nil; nodeToBeRemoved = nodeToBeRemoved.NextSibling {
		if b.ChildBefore() == nodeToBeRemoved {
			b.SetToStartOfNode(container)
			return
		}

		for n := b.Container(); n != nil; n = n.ParentNode {
			if n == nodeToBeRemoved {
				b.SetToStartOfNode(container)
				return
			}
		}
	}
}

// NodeChildrenWillBeRemoved is called before all children of container
// are removed at once.
func (r *Range) NodeChildrenWillBeRemoved(container *Node) {
	boundaryNodeChildrenWillBeRemoved(&r.start, container)
	boundaryNodeChildrenWillBeRemoved(&r.end, container)
	logRangeRepair("NodeChildrenWillBeRemoved", r)
}

func boundaryNodeWillBeRemoved(b *BoundaryPoint, nodeToBeRemoved *Node) {
	if b.ChildBefore() == nodeToBeRemoved {
		b.ChildBeforeWillBeRemoved()
		return
	}

	for n := b.Container(); n != nil; n = n.ParentNode {
		if n == nodeToBeRemoved {
			b.SetToBeforeChild(nodeToBeRemoved)
			return
		}
	}
}

// NodeWillBeRemoved is called before n is detached from its parent.
func (r *Range) NodeWillBeRemoved(n *Node) {
	boundaryNodeWillBeRemoved(&r.start, n)
	boundaryNodeWillBeRemoved(&r.end, n)
	logRangeRepair("NodeWillBeRemoved", r)
}

func boundaryTextInserted(b *BoundaryPoint, text *Node, offset, length int) {
	if b.Container() != text {
		return
	}
	boundaryOffset := b.Offset()
	if offset >= boundaryOffset {
		return
	}
	b.SetOffset(boundaryOffset + length)
}

// TextInserted is called after length code units were inserted into text
// at offset.
func (r *Range) TextInserted(text *Node, offset, length int) {
	boundaryTextInserted(&r.start, text, offset, length)
	boundaryTextInserted(&r.end, text, offset, length)
}

func boundaryTextRemoved(b *BoundaryPoint, text *Node, offset, length int) {
	if b.Container() != text {
		return
	}
	boundaryOffset := b.Offset()
	if offset >= boundaryOffset {
		return
	}
	if offset+length >= boundaryOffset {
		b.SetOffset(offset)
	} else {
		b.SetOffset(boundaryOffset - length)
	}
}

// TextRemoved is called after length code units were removed from text at
// offset.
func (r *Range) TextRemoved(text *Node, offset, length int) {
	boundaryTextRemoved(&r.start, text, offset, length)
	boundaryTextRemoved(&r.end, text, offset, length)
}

func boundaryTextNodesMerged(b *BoundaryPoint, oldNode *Node, oldIndex, offset int) {
	prev := oldNode.PreviousSibling
	if prev == nil {
		return
	}
	if b.Container() == oldNode {
		b.Set(prev, b.Offset()+offset, nil)
	} else if b.Container() == oldNode.ParentNode && b.Offset() == oldIndex {
		b.Set(prev, offset, nil)
	}
}

// TextNodesMerged is called when oldNode's data was appended to its
// previous sibling, whose length before the append was offset. oldNode is
// still in the tree at oldIndex and is removed right after.
func (r *Range) TextNodesMerged(oldNode *Node, oldIndex, offset int) {
	boundaryTextNodesMerged(&r.start, oldNode, oldIndex, offset)
	boundaryTextNodesMerged(&r.end, oldNode, oldIndex, offset)
	logRangeRepair("TextNodesMerged", r)
}

func boundaryTextNodeSplit(b *BoundaryPoint, oldNode *Node) {
	parent := oldNode.ParentNode
	if b.Container() == oldNode {
		splitOffset := oldNode.Length()
		boundaryOffset := b.Offset()
		if boundaryOffset > splitOffset {
			if parent != nil && oldNode.NextSibling != nil {
				b.Set(oldNode.NextSibling, boundaryOffset-splitOffset, nil)
			} else {
				b.SetOffset(splitOffset)
			}
		}
		return
	}
	if parent == nil {
		return
	}
	if b.Container() == parent && b.ChildBefore() == oldNode {
		if newChild := oldNode.NextSibling; newChild != nil {
			b.SetToAfterChild(newChild)
		}
	}
}

// TextNodeSplit is called after oldNode was truncated and the remainder
// inserted as its next sibling.
func (r *Range) TextNodeSplit(oldNode *Node) {
	boundaryTextNodeSplit(&r.start, oldNode)
	boundaryTextNodeSplit(&r.end, oldNode)
	logRangeRepair("TextNodeSplit", r)
}
