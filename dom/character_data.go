package dom

import "github.com/sirupsen/logrus"

// CharacterData is https://dom.whatwg.org/#characterdata
type CharacterData struct {
	Data string
}

// ProcessingInstruction is https://dom.whatwg.org/#processinginstruction.
// Its data lives in the node's CharacterData.
type ProcessingInstruction struct {
	Target string
}

// Length is the DOM length of a node: code units for character data, zero
// for doctypes and attributes, the child count otherwise.
func (n *Node) Length() int {
	switch n.NodeType {
	case DocumentTypeNode, AttrNode:
		return 0
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		return utf16Length(n.CharacterData.Data)
	}
	return len(n.ChildNodes)
}

func (n *Node) checkCharacterData(method string) error {
	if !n.IsCharacterData() {
		return newException(InvalidNodeTypeError, "%s called on a %s node", method, n.NodeType)
	}
	return nil
}

func (n *Node) SubstringData(offset, count int) (string, error) {
	if err := n.checkCharacterData("SubstringData"); err != nil {
		return "", err
	}
	length := n.Length()
	if offset < 0 || offset > length || count < 0 {
		return "", newException(IndexSizeError, "offset %d is larger than the data length %d", offset, length)
	}
	end := offset + count
	if end > length {
		end = length
	}
	return utf16Slice(n.CharacterData.Data, offset, end), nil
}

func (n *Node) AppendData(data string) error {
	if err := n.checkCharacterData("AppendData"); err != nil {
		return err
	}
	return n.ReplaceData(n.Length(), 0, data)
}

func (n *Node) InsertData(offset int, data string) error {
	return n.ReplaceData(offset, 0, data)
}

func (n *Node) DeleteData(offset, count int) error {
	return n.ReplaceData(offset, count, "")
}

// ReplaceData replaces count code units starting at offset with data and
// repairs the live ranges of the node's document.
// https://dom.whatwg.org/#concept-cd-replace
func (n *Node) ReplaceData(offset, count int, data string) error {
	if err := n.checkCharacterData("ReplaceData"); err != nil {
		return err
	}
	units := toUTF16(n.CharacterData.Data)
	length := len(units)
	if offset < 0 || offset > length || count < 0 {
		return newException(IndexSizeError, "offset %d is larger than the data length %d", offset, length)
	}
	if offset+count > length {
		count = length - offset
	}

	defer traceMutation(n, "ReplaceData")()
	old := n.CharacterData.Data
	inserted := toUTF16(data)
	out := make([]uint16, 0, length-count+len(inserted))
	out = append(out, units[:offset]...)
	out = append(out, inserted...)
	out = append(out, units[offset+count:]...)
	n.CharacterData.Data = fromUTF16(out)

	logrus.WithFields(logrus.Fields{
		"node":   n.NodeName,
		"offset": offset,
		"count":  count,
		"added":  len(inserted),
	}).Debug("character data replaced")

	textRemoved(n, offset, count)
	textInserted(n, offset, len(inserted))
	n.notifyCharacterData(old)
	return nil
}

// SetData replaces the whole data of a character data node.
func (n *Node) SetData(data string) error {
	if err := n.checkCharacterData("SetData"); err != nil {
		return err
	}
	return n.ReplaceData(0, n.Length(), data)
}
