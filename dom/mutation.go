package dom

import "github.com/sirupsen/logrus"

// https://dom.whatwg.org/#concept-node-ensure-pre-insertion-validity
func (n *Node) ensurePreInsertionValidity(node, child *Node) error {
	if err := n.checkAcceptsChild(node); err != nil {
		return err
	}
	if child != nil && child.ParentNode != n {
		return newException(NotFoundError, "the reference child is not a child of this node")
	}
	if n.NodeType == DocumentNode {
		return n.checkDocumentChild(node, child, nil)
	}
	return nil
}

func (n *Node) checkAcceptsChild(node *Node) error {
	if node == nil {
		return newException(TypeError, "node is nil")
	}
	switch n.NodeType {
	case DocumentNode, DocumentFragmentNode, ElementNode:
	default:
		return newException(HierarchyRequestError, "a %s node cannot have children", n.NodeType)
	}
	if node.Contains(n) {
		return newException(HierarchyRequestError, "the new child is an inclusive ancestor of the parent")
	}
	switch node.NodeType {
	case DocumentFragmentNode, DocumentTypeNode, ElementNode, TextNode, CDATASectionNode, ProcessingInstructionNode, CommentNode:
	default:
		return newException(HierarchyRequestError, "a %s node cannot be inserted", node.NodeType)
	}
	if (node.NodeType == TextNode || node.NodeType == CDATASectionNode) && n.NodeType == DocumentNode {
		return newException(HierarchyRequestError, "text cannot be a child of a document")
	}
	if node.NodeType == DocumentTypeNode && n.NodeType != DocumentNode {
		return newException(HierarchyRequestError, "a doctype can only be a child of a document")
	}
	return nil
}

// checkDocumentChild enforces the single document element and doctype
// ordering rules. replaced is the child a replace operation removes.
func (n *Node) checkDocumentChild(node, child, replaced *Node) error {
	hasElement := func() bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.NodeType == ElementNode && c != replaced {
				return true
			}
		}
		return false
	}
	doctypeFollows := func(c *Node) bool {
		for s := c.NextSibling; s != nil; s = s.NextSibling {
			if s.NodeType == DocumentTypeNode {
				return true
			}
		}
		return false
	}
	checkElement := func() error {
		if hasElement() {
			return newException(HierarchyRequestError, "the document already has a document element")
		}
		if child != nil && replaced == nil && child.NodeType == DocumentTypeNode {
			return newException(HierarchyRequestError, "an element cannot precede the doctype")
		}
		if child != nil && doctypeFollows(child) {
			return newException(HierarchyRequestError, "an element cannot precede the doctype")
		}
		return nil
	}

	switch node.NodeType {
	case DocumentFragmentNode:
		elements := 0
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			switch c.NodeType {
			case ElementNode:
				elements++
			case TextNode, CDATASectionNode:
				return newException(HierarchyRequestError, "text cannot be a child of a document")
			}
		}
		if elements > 1 {
			return newException(HierarchyRequestError, "a document can only have one document element")
		}
		if elements == 1 {
			return checkElement()
		}
	case ElementNode:
		return checkElement()
	case DocumentTypeNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.NodeType == DocumentTypeNode && c != replaced {
				return newException(HierarchyRequestError, "the document already has a doctype")
			}
		}
		if child != nil {
			for s := child.PreviousSibling; s != nil; s = s.PreviousSibling {
				if s.NodeType == ElementNode {
					return newException(HierarchyRequestError, "a doctype cannot follow the document element")
				}
			}
		} else if hasElement() {
			return newException(HierarchyRequestError, "a doctype cannot follow the document element")
		}
	}
	return nil
}

// InsertBefore inserts node before child, or at the end when child is nil.
// Inserting a document fragment moves its children.
func (n *Node) InsertBefore(node, child *Node) (*Node, error) {
	if err := n.ensurePreInsertionValidity(node, child); err != nil {
		return nil, err
	}
	if child == node {
		child = node.NextSibling
	}

	defer traceMutation(n, "InsertBefore")()
	if err := n.insert(node, child); err != nil {
		return nil, err
	}
	return node, nil
}

func (n *Node) AppendChild(node *Node) (*Node, error) {
	return n.InsertBefore(node, nil)
}

func (n *Node) insert(node, child *Node) error {
	var nodes NodeList
	if node.NodeType == DocumentFragmentNode {
		nodes = node.ChildNodes.Snapshot()
		node.RemoveChildren()
	} else {
		if node.ParentNode != nil {
			if _, err := node.ParentNode.RemoveChild(node); err != nil {
				return err
			}
		}
		nodes = NodeList{node}
	}
	if len(nodes) == 0 {
		return nil
	}
	if child != nil && child.ParentNode != n {
		return newException(NotFoundError, "the reference child was moved during insertion")
	}

	doc := n.ownerDocumentOrSelf()
	for _, c := range nodes {
		adopt(c, doc)
		n.link(c, child)
	}

	logrus.WithFields(logrus.Fields{
		"parent": n.NodeName,
		"count":  len(nodes),
	}).Debug("children inserted")

	nodeChildrenChanged(n)
	n.notifyChildList(nodes, nil)
	return nil
}

func (n *Node) link(c, before *Node) {
	idx := len(n.ChildNodes)
	if before != nil {
		if i := n.ChildNodes.Contains(before); i >= 0 {
			idx = i
		}
	}
	n.ChildNodes.WedgeIn(idx, c)

	c.ParentNode = n
	c.PreviousSibling, c.NextSibling = nil, nil
	if idx > 0 {
		prev := n.ChildNodes[idx-1]
		prev.NextSibling = c
		c.PreviousSibling = prev
	}
	if idx+1 < len(n.ChildNodes) {
		next := n.ChildNodes[idx+1]
		next.PreviousSibling = c
		c.NextSibling = next
	}
	n.FirstChild = n.ChildNodes[0]
	n.LastChild = n.ChildNodes[len(n.ChildNodes)-1]
}

func (n *Node) unlink(child *Node) {
	n.ChildNodes.Remove(n.ChildNodes.Contains(child))
	if prev := child.PreviousSibling; prev != nil {
		prev.NextSibling = child.NextSibling
	}
	if next := child.NextSibling; next != nil {
		next.PreviousSibling = child.PreviousSibling
	}
	if len(n.ChildNodes) == 0 {
		n.FirstChild, n.LastChild = nil, nil
	} else {
		n.FirstChild = n.ChildNodes[0]
		n.LastChild = n.ChildNodes[len(n.ChildNodes)-1]
	}
	child.ParentNode, child.PreviousSibling, child.NextSibling = nil, nil, nil
}

// RemoveChild detaches child from n. Live ranges inside the removed
// subtree move to where it was.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil || child.ParentNode != n {
		return nil, newException(NotFoundError, "the node to be removed is not a child of this node")
	}

	defer traceMutation(n, "RemoveChild")()
	nodeWillBeRemoved(child)
	if child.ParentNode != n {
		return nil, newException(NotFoundError, "the node was moved before it could be removed")
	}
	n.unlink(child)

	logrus.WithFields(logrus.Fields{
		"parent": n.NodeName,
		"child":  child.NodeName,
	}).Debug("child removed")

	nodeChildrenChanged(n)
	n.notifyChildList(nil, NodeList{child})
	return child, nil
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() error {
	if n.ParentNode == nil {
		return nil
	}
	_, err := n.ParentNode.RemoveChild(n)
	return err
}

// RemoveChildren detaches every child of n with a single notification.
func (n *Node) RemoveChildren() {
	if len(n.ChildNodes) == 0 {
		return
	}

	defer traceMutation(n, "RemoveChildren")()
	nodeChildrenWillBeRemoved(n)
	removed := n.ChildNodes.Snapshot()
	for _, c := range removed {
		c.ParentNode, c.PreviousSibling, c.NextSibling = nil, nil, nil
	}
	n.ChildNodes = nil
	n.FirstChild, n.LastChild = nil, nil

	nodeChildrenChanged(n)
	n.notifyChildList(nil, removed)
}

// ReplaceChild replaces child with node and returns child.
// https://dom.whatwg.org/#concept-node-replace
func (n *Node) ReplaceChild(node, child *Node) (*Node, error) {
	if err := n.checkAcceptsChild(node); err != nil {
		return nil, err
	}
	if child == nil || child.ParentNode != n {
		return nil, newException(NotFoundError, "the node to be replaced is not a child of this node")
	}
	if n.NodeType == DocumentNode {
		if err := n.checkDocumentChild(node, child, child); err != nil {
			return nil, err
		}
	}

	ref := child.NextSibling
	if ref == node {
		ref = node.NextSibling
	}
	if _, err := n.RemoveChild(child); err != nil {
		return nil, err
	}
	if err := n.insert(node, ref); err != nil {
		return nil, err
	}
	return child, nil
}
