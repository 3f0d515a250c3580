package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeFollowsSplitText(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := newRange(t, tt.t1, 1, tt.t1, 4)
	after := newRange(t, tt.p1, 1, tt.p1, 1)

	newText, err := tt.t1.SplitText(2)
	require.NoError(t, err)
	assert.Equal(t, "he", tt.t1.CharacterData.Data)
	assert.Equal(t, "llo", newText.CharacterData.Data)
	assert.Same(t, newText, tt.t1.NextSibling)

	requireBoundaries(t, r, tt.t1, 1, newText, 2)
	assert.Equal(t, "ell", r.String())
	requireBoundaries(t, after, tt.p1, 2, tt.p1, 2)

	_, err = tt.t1.SplitText(3)
	requireException(t, err, IndexSizeError)
}

func TestRangeFollowsNormalize(t *testing.T) {
	t.Parallel()
	doc := NewHTMLDocument("")
	p := appendEl(t, doc, doc, "p")
	first := appendText(t, doc, p, "he")
	second := appendText(t, doc, p, "llo")
	appendText(t, doc, p, "")

	inSecond := newRange(t, second, 1, second, 2)
	between := newRange(t, p, 1, p, 1)

	require.NoError(t, p.Normalize())
	require.Len(t, p.ChildNodes, 1)
	assert.Equal(t, "hello", first.CharacterData.Data)
	requireBoundaries(t, inSecond, first, 3, first, 4)
	requireBoundaries(t, between, first, 2, first, 2)
}

func TestRangeFollowsRemoval(t *testing.T) {
	t.Parallel()

	t.Run("container removed", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t2, 1, tt.t2, 3)
		require.NoError(t, tt.p2.Remove())
		requireBoundaries(t, r, tt.body, 1, tt.body, 1)
	})

	t.Run("earlier sibling removed", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.body, 2, tt.body, 2)
		require.NoError(t, tt.p1.Remove())
		requireBoundaries(t, r, tt.body, 1, tt.body, 1)
	})

	t.Run("child before removed", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.body, 2, tt.body, 2)
		require.NoError(t, tt.p2.Remove())
		requireBoundaries(t, r, tt.body, 1, tt.body, 1)
	})

	t.Run("all children removed", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.t2, 2)
		tt.body.RemoveChildren()
		requireBoundaries(t, r, tt.body, 0, tt.body, 0)
	})

	t.Run("replaced", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.body, 2)
		div := NewElement(tt.doc, "div", Htmlns)
		_, err := tt.body.ReplaceChild(div, tt.p1)
		require.NoError(t, err)
		requireBoundaries(t, r, tt.body, 0, tt.body, 2)
	})
}

func TestRangeFollowsInsertion(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := newRange(t, tt.body, 1, tt.body, 2)

	_, err := tt.body.InsertBefore(NewElement(tt.doc, "h1", Htmlns), tt.p1)
	require.NoError(t, err)
	requireBoundaries(t, r, tt.body, 2, tt.body, 3)

	_, err = tt.body.AppendChild(NewElement(tt.doc, "footer", Htmlns))
	require.NoError(t, err)
	requireBoundaries(t, r, tt.body, 2, tt.body, 3)
}

func TestRangeFollowsCharacterData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		edit        func(n *Node) error
		data        string
		startOffset int
		endOffset   int
	}{
		{"replace over start", func(n *Node) error { return n.ReplaceData(0, 2, "XYZ") }, "XYZllo", 0, 5},
		{"insert before", func(n *Node) error { return n.InsertData(0, "oh ") }, "oh hello", 4, 7},
		{"insert at start offset", func(n *Node) error { return n.InsertData(1, "-") }, "h-ello", 1, 5},
		{"append", func(n *Node) error { return n.AppendData("!") }, "hello!", 1, 4},
		{"delete inside", func(n *Node) error { return n.DeleteData(2, 1) }, "helo", 1, 3},
		{"delete all", func(n *Node) error { return n.SetData("") }, "", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := newTestTree(t)
			r := newRange(t, tt.t1, 1, tt.t1, 4)
			require.NoError(t, tc.edit(tt.t1))
			assert.Equal(t, tc.data, tt.t1.CharacterData.Data)
			requireBoundaries(t, r, tt.t1, tc.startOffset, tt.t1, tc.endOffset)
		})
	}
}

func TestReentrantMutationListener(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := newRange(t, tt.t2, 1, tt.t2, 2)

	var records []*MutationRecord
	remove := tt.doc.Document.AddMutationListener(func(rec *MutationRecord) {
		records = append(records, rec)
		if rec.Type == CharacterDataMutation && rec.Target == tt.t1 && tt.p2.ParentNode != nil {
			require.NoError(t, tt.p2.Remove())
		}
	})

	require.NoError(t, tt.t1.AppendData("!"))
	requireBoundaries(t, r, tt.body, 1, tt.body, 1)
	require.Len(t, records, 2)
	assert.Equal(t, CharacterDataMutation, records[0].Type)
	assert.Equal(t, "hello", records[0].OldValue)
	assert.Equal(t, ChildListMutation, records[1].Type)
	assert.Equal(t, NodeList{tt.p2}, records[1].RemovedNodes)

	remove()
	require.NoError(t, tt.t1.AppendData("?"))
	assert.Len(t, records, 2)
}

func TestDetachedRangeIsNotRepaired(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r, err := NewRangeWithBoundaries(tt.doc, tt.t1, 1, tt.t1, 4)
	require.NoError(t, err)
	r.Detach()

	require.NoError(t, tt.t1.DeleteData(0, 5))
	assert.Equal(t, 4, r.EndOffset())
	assert.NotContains(t, tt.doc.Document.LiveRanges(), r)
}
