package dom

import "github.com/sirupsen/logrus"

// SplitText breaks a text node in two at offset and returns the new node,
// which holds the data after offset and is inserted as the next sibling.
// https://dom.whatwg.org/#concept-text-split
func (n *Node) SplitText(offset int) (*Node, error) {
	if n.NodeType != TextNode && n.NodeType != CDATASectionNode {
		return nil, newException(InvalidNodeTypeError, "SplitText called on a %s node", n.NodeType)
	}
	units := toUTF16(n.CharacterData.Data)
	if offset < 0 || offset > len(units) {
		return nil, newException(IndexSizeError, "offset %d is larger than the data length %d", offset, len(units))
	}

	defer traceMutation(n, "SplitText")()
	old := n.CharacterData.Data
	newText := &Node{
		NodeType:      n.NodeType,
		NodeName:      n.NodeName,
		OwnerDocument: n.OwnerDocument,
		CharacterData: &CharacterData{Data: fromUTF16(units[offset:])},
	}
	n.CharacterData.Data = fromUTF16(units[:offset])
	n.notifyCharacterData(old)

	if parent := n.ParentNode; parent != nil {
		if _, err := parent.InsertBefore(newText, n.NextSibling); err != nil {
			return nil, err
		}
	}
	textNodeSplit(n)
	logrus.WithFields(logrus.Fields{"node": n.NodeName, "offset": offset}).Debug("text split")
	return newText, nil
}

// Normalize merges adjacent text nodes and removes empty ones in the
// subtree rooted at n.
// https://dom.whatwg.org/#dom-node-normalize
func (n *Node) Normalize() error {
	for node := n.FirstChild; node != nil; {
		if node.NodeType != TextNode {
			if err := node.Normalize(); err != nil {
				return err
			}
			node = node.NextSibling
			continue
		}

		if node.Length() == 0 {
			next := node.NextSibling
			if err := node.Remove(); err != nil {
				return err
			}
			node = next
			continue
		}

		for next := node.NextSibling; next != nil && next.NodeType == TextNode; next = node.NextSibling {
			if next.Length() == 0 {
				if err := next.Remove(); err != nil {
					return err
				}
				continue
			}
			offset := node.Length()
			if err := node.AppendData(next.CharacterData.Data); err != nil {
				return err
			}
			textNodesMerged(next, offset)
			if err := next.Remove(); err != nil {
				return err
			}
		}
		node = node.NextSibling
	}
	return nil
}
