package dom

// CommonAncestorContainer returns the deepest node that is an inclusive
// ancestor of both a and b, or nil when they are in different trees.
func CommonAncestorContainer(a, b *Node) *Node {
	for parentA := a; parentA != nil; parentA = parentA.ParentNode {
		for parentB := b; parentB != nil; parentB = parentB.ParentNode {
			if parentA == parentB {
				return parentA
			}
		}
	}
	return nil
}

// CompareBoundaryPoints orders (containerA, offsetA) against
// (containerB, offsetB): -1 before, 0 equal, 1 after. Points without a
// common ancestor yield WrongDocumentError.
// https://www.w3.org/TR/DOM-Level-2-Traversal-Range/ranges.html#Level-2-Range-Comparing
func CompareBoundaryPoints(containerA *Node, offsetA int, containerB *Node, offsetB int) (int, error) {
	// case 1: both points have the same container
	if containerA == containerB {
		switch {
		case offsetA == offsetB:
			return 0, nil
		case offsetA < offsetB:
			return -1, nil
		}
		return 1, nil
	}

	// case 2: node C (container B or an ancestor) is a child node of A
	c := containerB
	for c != nil && c.ParentNode != containerA {
		c = c.ParentNode
	}
	if c != nil {
		offsetC := 0
		n := containerA.FirstChild
		for n != c && offsetC < offsetA {
			offsetC++
			n = n.NextSibling
		}

		if offsetA <= offsetC {
			return -1, nil
		}
		return 1, nil
	}

	// case 3: node C (container A or an ancestor) is a child node of B
	c = containerA
	for c != nil && c.ParentNode != containerB {
		c = c.ParentNode
	}
	if c != nil {
		offsetC := 0
		n := containerB.FirstChild
		for n != c && offsetC < offsetB {
			offsetC++
			n = n.NextSibling
		}

		if offsetC < offsetB {
			return -1, nil
		}
		return 1, nil
	}

	// case 4: containers A and B are siblings, or children of siblings
	commonAncestor := CommonAncestorContainer(containerA, containerB)
	if commonAncestor == nil {
		return 0, newException(WrongDocumentError, "the boundary points are in different trees")
	}
	childA := containerA
	for childA != nil && childA.ParentNode != commonAncestor {
		childA = childA.ParentNode
	}
	if childA == nil {
		childA = commonAncestor
	}
	childB := containerB
	for childB != nil && childB.ParentNode != commonAncestor {
		childB = childB.ParentNode
	}
	if childB == nil {
		childB = commonAncestor
	}

	if childA == childB {
		return 0, nil
	}

	for n := commonAncestor.FirstChild; n != nil; n = n.NextSibling {
		if n == childA {
			return -1, nil
		}
		if n == childB {
			return 1, nil
		}
	}

	return 0, newException(WrongDocumentError, "the boundary points are not ordered in their common ancestor")
}

func compareBoundaryPointValues(a, b *BoundaryPoint) (int, error) {
	return CompareBoundaryPoints(a.Container(), a.Offset(), b.Container(), b.Offset())
}
