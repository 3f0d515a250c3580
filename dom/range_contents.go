package dom

import "github.com/sirupsen/logrus"

// ActionType selects what ProcessContents does with the selected nodes.
type ActionType uint8

const (
	ActionDelete ActionType = iota
	ActionExtract
	ActionClone
)

func (a ActionType) String() string {
	switch a {
	case ActionDelete:
		return "delete"
	case ActionExtract:
		return "extract"
	case ActionClone:
		return "clone"
	}
	return "unknown"
}

type contentsProcessDirection uint8

const (
	processContentsForward contentsProcessDirection = iota
	processContentsBackward
)

// DeleteContents removes the range contents from the tree and collapses
// the range.
func (r *Range) DeleteContents() error {
	_, err := r.ProcessContents(ActionDelete)
	return err
}

// ExtractContents moves the range contents into a new document fragment.
// Partially selected ancestors are split: the fragment gets shallow copies
// holding the selected part.
func (r *Range) ExtractContents() (*Node, error) {
	if err := r.checkDeleteExtract(); err != nil {
		return nil, err
	}
	return r.ProcessContents(ActionExtract)
}

// CloneContents copies the range contents into a new document fragment.
func (r *Range) CloneContents() (*Node, error) {
	return r.ProcessContents(ActionClone)
}

func (r *Range) checkDeleteExtract() error {
	pastLast := r.PastLastNode()
	for n := r.FirstNode(); n != nil && n != pastLast; n = NextNode(n, nil) {
		if n.NodeType == DocumentTypeNode {
			return newException(HierarchyRequestError, "a doctype cannot be extracted")
		}
	}
	return nil
}

func lengthOfContentsInNode(n *Node) int {
	// Must agree with the dispatch in processContentsBetweenOffsets.
	switch n.NodeType {
	case DocumentTypeNode, AttrNode:
		return 0
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		return n.Length()
	}
	return n.CountChildNodes()
}

func highestAncestorUnderCommonRoot(n, commonRoot *Node) *Node {
	if n == commonRoot {
		return nil
	}
	for n != nil && n.ParentNode != commonRoot {
		n = n.ParentNode
	}
	return n
}

func childOfCommonRootBeforeOffset(container *Node, offset int, commonRoot *Node) *Node {
	if !commonRoot.Contains(container) {
		return nil
	}
	if container == commonRoot {
		return container.ChildAt(offset)
	}
	for container.ParentNode != commonRoot {
		container = container.ParentNode
	}
	return container
}

// ProcessContents deletes, extracts or clones the range contents. The
// returned fragment is nil for ActionDelete.
func (r *Range) ProcessContents(action ActionType) (*Node, error) {
	var fragment *Node
	if action == ActionExtract || action == ActionClone {
		fragment = NewDocumentFragment(r.ownerDocument)
	}

	if r.Collapsed() {
		return fragment, nil
	}

	commonRoot := r.CommonAncestorContainer()
	if commonRoot == nil {
		return nil, newException(WrongDocumentError, "the range boundary points are in different trees")
	}
	r.debug("processing range contents: " + action.String())

	if r.start.Container() == r.end.Container() {
		if _, err := processContentsBetweenOffsets(action, fragment, r.start.Container(), r.start.Offset(), r.end.Offset()); err != nil {
			return nil, err
		}
		return fragment, nil
	}

	// Edits below fire notifications that move the live boundary points,
	// so work from a copy of the original ones.
	original := r.Snapshot()
	originalStart, originalStartOffset := original.StartContainer(), original.StartOffset()
	originalEnd, originalEndOffset := original.EndContainer(), original.EndOffset()

	// The highest nodes that partially select the start and the end.
	partialStart := highestAncestorUnderCommonRoot(originalStart, commonRoot)
	partialEnd := highestAncestorUnderCommonRoot(originalEnd, commonRoot)

	// Start and end containers differ, so either one of them is the common
	// root and the other a descendant, or both are descendants. Content
	// after the start up to a child of the common root goes into
	// leftContents, content before the end into rightContents, and the
	// children of the common root in between are processed as a run.
	//
	// Errors from the two ancestor walks are dropped on purpose: a failure
	// deep in a partially selected subtree does not abort the operation,
	// and callers have long depended on that.
	var leftContents *Node
	if originalStart != commonRoot && commonRoot.Contains(originalStart) {
		first, err := processContentsBetweenOffsets(action, nil, originalStart, originalStartOffset, lengthOfContentsInNode(originalStart))
		second, err := processAncestorsAndTheirSiblings(action, originalStart, processContentsForward, first, err, commonRoot)
		if err == nil {
			leftContents = second
		} else {
			logrus.WithError(err).Debug("ignoring error while processing the start side of a range")
		}
	}

	var rightContents *Node
	if r.end.Container() != commonRoot && commonRoot.Contains(originalEnd) {
		first, err := processContentsBetweenOffsets(action, nil, originalEnd, 0, originalEndOffset)
		second, err := processAncestorsAndTheirSiblings(action, originalEnd, processContentsBackward, first, err, commonRoot)
		if err == nil {
			rightContents = second
		} else {
			logrus.WithError(err).Debug("ignoring error while processing the end side of a range")
		}
	}

	processStart := childOfCommonRootBeforeOffset(originalStart, originalStartOffset, commonRoot)
	if processStart != nil && originalStart != commonRoot {
		// processStart holds content before the start.
		processStart = processStart.NextSibling
	}
	processEnd := childOfCommonRootBeforeOffset(originalEnd, originalEndOffset, commonRoot)

	// Collapse so the result is not inside a partially selected node.
	if action == ActionExtract || action == ActionDelete {
		var err error
		if partialStart != nil && partialStart.ParentNode != nil && commonRoot.Contains(partialStart) {
			err = r.SetStart(partialStart.ParentNode, partialStart.NodeIndex()+1)
		} else if partialEnd != nil && partialEnd.ParentNode != nil && commonRoot.Contains(partialEnd) {
			err = r.SetStart(partialEnd.ParentNode, partialEnd.NodeIndex())
		}
		if err != nil {
			return nil, err
		}
		r.Collapse(true)
	}

	if (action == ActionExtract || action == ActionClone) && leftContents != nil {
		if _, err := fragment.AppendChild(leftContents); err != nil {
			return nil, err
		}
	}

	if processStart != nil {
		var nodes NodeList
		for n := processStart; n != nil && n != processEnd; n = n.NextSibling {
			nodes = append(nodes, n)
		}
		if err := processNodes(action, nodes, commonRoot, fragment); err != nil {
			return nil, err
		}
	}

	if (action == ActionExtract || action == ActionClone) && rightContents != nil {
		if _, err := fragment.AppendChild(rightContents); err != nil {
			return nil, err
		}
	}

	return fragment, nil
}

// processContentsBetweenOffsets handles the part of a single container
// between two offsets. Without a fragment it returns the shallow copy
// holding the processed part.
func processContentsBetweenOffsets(action ActionType, fragment, container *Node, startOffset, endOffset int) (*Node, error) {
	var result *Node
	switch container.NodeType {
	case TextNode, CDATASectionNode, CommentNode:
		endOffset = min(endOffset, container.Length())
		startOffset = min(startOffset, endOffset)
		if action == ActionExtract || action == ActionClone {
			characters := container.CloneNode(true)
			if err := characters.DeleteData(endOffset, characters.Length()-endOffset); err != nil {
				return nil, err
			}
			if err := characters.DeleteData(0, startOffset); err != nil {
				return nil, err
			}
			if fragment != nil {
				if _, err := fragment.AppendChild(characters); err != nil {
					return nil, err
				}
			} else {
				result = characters
			}
		}
		if action == ActionExtract || action == ActionDelete {
			if err := container.DeleteData(startOffset, endOffset-startOffset); err != nil {
				return nil, err
			}
		}
	case ProcessingInstructionNode:
		endOffset = min(endOffset, container.Length())
		startOffset = min(startOffset, endOffset)
		data := toUTF16(container.CharacterData.Data)
		if action == ActionExtract || action == ActionClone {
			instruction := container.CloneNode(true)
			if err := instruction.SetData(fromUTF16(data[startOffset:endOffset])); err != nil {
				return nil, err
			}
			if fragment != nil {
				if _, err := fragment.AppendChild(instruction); err != nil {
					return nil, err
				}
			} else {
				result = instruction
			}
		}
		if action == ActionExtract || action == ActionDelete {
			remaining := append(append([]uint16{}, data[:startOffset]...), data[endOffset:]...)
			if err := container.SetData(fromUTF16(remaining)); err != nil {
				return nil, err
			}
		}
	default:
		if action == ActionExtract || action == ActionClone {
			if fragment != nil {
				result = fragment
			} else {
				result = container.CloneNode(false)
			}
		}

		var nodes NodeList
		n := container.ChildAt(startOffset)
		for i := startOffset; n != nil && i < endOffset; i, n = i+1, n.NextSibling {
			if action != ActionDelete && n.NodeType == DocumentTypeNode {
				return nil, newException(HierarchyRequestError, "a doctype cannot be extracted or cloned")
			}
			nodes = append(nodes, n)
		}

		if err := processNodes(action, nodes, container, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func processNodes(action ActionType, nodes NodeList, oldContainer, newContainer *Node) error {
	for _, n := range nodes {
		switch action {
		case ActionDelete:
			if _, err := oldContainer.RemoveChild(n); err != nil {
				return err
			}
		case ActionExtract:
			// Appending detaches n from its old parent.
			if _, err := newContainer.AppendChild(n); err != nil {
				return err
			}
		case ActionClone:
			if _, err := newContainer.AppendChild(n.CloneNode(true)); err != nil {
				return err
			}
		}
	}
	return nil
}

// processAncestorsAndTheirSiblings walks up from container to just below
// commonRoot, processing the siblings on one side at every level. For
// extract and clone each ancestor gets a shallow copy that holds the
// processed content, so the nesting of partially selected nodes is kept.
func processAncestorsAndTheirSiblings(action ActionType, container *Node, direction contentsProcessDirection, clonedContainer *Node, passedErr error, commonRoot *Node) (*Node, error) {
	if passedErr != nil {
		return nil, passedErr
	}

	var ancestors NodeList
	for ancestor := container.ParentNode; ancestor != nil && ancestor != commonRoot; ancestor = ancestor.ParentNode {
		ancestors = append(ancestors, ancestor)
	}

	next := func(n *Node) *Node {
		if direction == processContentsForward {
			return n.NextSibling
		}
		return n.PreviousSibling
	}

	firstChildInAncestorToProcess := next(container)
	for _, ancestor := range ancestors {
		if action == ActionExtract || action == ActionClone {
			// The ancestor may already have been removed by a listener.
			clonedAncestor := ancestor.CloneNode(false)
			if clonedContainer != nil {
				if _, err := clonedAncestor.AppendChild(clonedContainer); err != nil {
					return nil, err
				}
			}
			clonedContainer = clonedAncestor
		}

		var nodes NodeList
		for child := firstChildInAncestorToProcess; child != nil; child = next(child) {
			nodes = append(nodes, child)
		}

		for _, child := range nodes {
			var err error
			switch action {
			case ActionDelete:
				_, err = ancestor.RemoveChild(child)
			case ActionExtract:
				if direction == processContentsForward {
					_, err = clonedContainer.AppendChild(child)
				} else {
					_, err = clonedContainer.InsertBefore(child, clonedContainer.FirstChild)
				}
			case ActionClone:
				if direction == processContentsForward {
					_, err = clonedContainer.AppendChild(child.CloneNode(true))
				} else {
					_, err = clonedContainer.InsertBefore(child.CloneNode(true), clonedContainer.FirstChild)
				}
			}
			if err != nil {
				return nil, err
			}
		}
		firstChildInAncestorToProcess = next(ancestor)
	}

	return clonedContainer, nil
}
