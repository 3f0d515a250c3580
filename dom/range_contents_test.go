package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeParagraphs builds body > p "hello", p "mid", p "world".
func threeParagraphs(t *testing.T) (*testTree, *Node) {
	t.Helper()
	tt := newTestTree(t)
	mid := NewElement(tt.doc, "p", Htmlns)
	appendText(t, tt.doc, mid, "mid")
	_, err := tt.body.InsertBefore(mid, tt.p2)
	require.NoError(t, err)
	return tt, mid
}

func TestCloneContents(t *testing.T) {
	t.Parallel()
	tt, mid := threeParagraphs(t)
	before := tt.doc.String()
	r := newRange(t, tt.t1, 2, tt.t2, 3)

	frag, err := r.CloneContents()
	require.NoError(t, err)
	require.Len(t, frag.ChildNodes, 3)
	assert.Equal(t, "p", frag.ChildNodes[0].NodeName)
	assert.Equal(t, "llo", frag.ChildNodes[0].TextContent())
	assert.NotSame(t, mid, frag.ChildNodes[1])
	assert.True(t, mid.IsEqualNode(frag.ChildNodes[1]))
	assert.Equal(t, "wor", frag.ChildNodes[2].TextContent())

	assert.Equal(t, before, tt.doc.String())
	requireBoundaries(t, r, tt.t1, 2, tt.t2, 3)
}

func TestExtractContents(t *testing.T) {
	t.Parallel()
	tt, mid := threeParagraphs(t)
	r := newRange(t, tt.t1, 2, tt.t2, 3)

	frag, err := r.ExtractContents()
	require.NoError(t, err)
	require.Len(t, frag.ChildNodes, 3)
	assert.Equal(t, "llo", frag.ChildNodes[0].TextContent())
	assert.Same(t, mid, frag.ChildNodes[1])
	assert.Equal(t, "wor", frag.ChildNodes[2].TextContent())

	require.Len(t, tt.body.ChildNodes, 2)
	assert.Equal(t, "he", tt.t1.CharacterData.Data)
	assert.Equal(t, "ld", tt.t2.CharacterData.Data)
	requireBoundaries(t, r, tt.body, 1, tt.body, 1)
}

func TestDeleteContents(t *testing.T) {
	t.Parallel()

	t.Run("across elements", func(t *testing.T) {
		tt, _ := threeParagraphs(t)
		r := newRange(t, tt.t1, 2, tt.t2, 3)

		require.NoError(t, r.DeleteContents())
		require.Len(t, tt.body.ChildNodes, 2)
		assert.Equal(t, "held", tt.body.TextContent())
		assert.True(t, r.Collapsed())
		requireBoundaries(t, r, tt.body, 1, tt.body, 1)
	})

	t.Run("within text", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.t1, 4)
		require.NoError(t, r.DeleteContents())
		assert.Equal(t, "ho", tt.t1.CharacterData.Data)
		requireBoundaries(t, r, tt.t1, 1, tt.t1, 1)
	})

	t.Run("collapsed is a no-op", func(t *testing.T) {
		tt := newTestTree(t)
		before := tt.doc.String()
		r := newRange(t, tt.t1, 1, tt.t1, 1)
		require.NoError(t, r.DeleteContents())
		assert.Equal(t, before, tt.doc.String())
	})

	t.Run("start container is the common root", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.body, 0, tt.t2, 2)
		require.NoError(t, r.DeleteContents())
		require.Len(t, tt.body.ChildNodes, 1)
		assert.Equal(t, "rld", tt.body.TextContent())
		requireBoundaries(t, r, tt.body, 0, tt.body, 0)
	})
}

func TestProcessContentsOfCharacterData(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	comment := NewComment(tt.doc, "a comment")
	pi := NewProcessingInstruction(tt.doc, "xml-stylesheet", "href=a.css")
	_, err := tt.body.AppendChild(comment)
	require.NoError(t, err)
	_, err = tt.body.AppendChild(pi)
	require.NoError(t, err)

	r := newRange(t, comment, 2, comment, 9)
	frag, err := r.ExtractContents()
	require.NoError(t, err)
	require.Len(t, frag.ChildNodes, 1)
	assert.Equal(t, CommentNode, frag.FirstChild.NodeType)
	assert.Equal(t, "comment", frag.FirstChild.CharacterData.Data)
	assert.Equal(t, "a ", comment.CharacterData.Data)

	require.NoError(t, r.SelectNodeContents(pi))
	require.NoError(t, r.SetStart(pi, 5))
	frag, err = r.CloneContents()
	require.NoError(t, err)
	assert.Equal(t, "a.css", frag.FirstChild.CharacterData.Data)
	assert.Equal(t, "xml-stylesheet", frag.FirstChild.ProcessingInstruction.Target)
	assert.Equal(t, "href=a.css", pi.CharacterData.Data)

	require.NoError(t, r.DeleteContents())
	assert.Equal(t, "href=", pi.CharacterData.Data)
}

func TestProcessContentsDoctype(t *testing.T) {
	t.Parallel()

	newDoc := func(t *testing.T) *testTree {
		tt := newTestTree(t)
		_, err := tt.doc.InsertBefore(NewDocTypeNode(tt.doc, "html", "", ""), tt.html)
		require.NoError(t, err)
		return tt
	}

	t.Run("clone", func(t *testing.T) {
		tt := newDoc(t)
		r := newRange(t, tt.doc, 0, tt.doc, 2)
		_, err := r.CloneContents()
		requireException(t, err, HierarchyRequestError)
	})

	t.Run("extract", func(t *testing.T) {
		tt := newDoc(t)
		r := newRange(t, tt.doc, 0, tt.doc, 2)
		_, err := r.ExtractContents()
		requireException(t, err, HierarchyRequestError)
		assert.Len(t, tt.doc.ChildNodes, 2)
	})

	t.Run("delete", func(t *testing.T) {
		tt := newDoc(t)
		r := newRange(t, tt.doc, 0, tt.doc, 2)
		require.NoError(t, r.DeleteContents())
		assert.False(t, tt.doc.HasChildNodes())
	})
}

func TestCloneThenDeleteMatchesExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		boundary func(tt *testTree, mid *Node) (sc *Node, so int, ec *Node, eo int)
	}{
		{"text to text", func(tt *testTree, _ *Node) (*Node, int, *Node, int) { return tt.t1, 1, tt.t2, 4 }},
		{"element to text", func(tt *testTree, _ *Node) (*Node, int, *Node, int) { return tt.body, 1, tt.t2, 2 }},
		{"text to element", func(tt *testTree, mid *Node) (*Node, int, *Node, int) { return tt.t1, 3, mid, 1 }},
		{"whole body", func(tt *testTree, _ *Node) (*Node, int, *Node, int) { return tt.body, 0, tt.body, 3 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, aMid := threeParagraphs(t)
			b, bMid := threeParagraphs(t)

			sc, so, ec, eo := tc.boundary(a, aMid)
			ra := newRange(t, sc, so, ec, eo)
			cloned, err := ra.CloneContents()
			require.NoError(t, err)
			require.NoError(t, ra.DeleteContents())

			sc, so, ec, eo = tc.boundary(b, bMid)
			rb := newRange(t, sc, so, ec, eo)
			extracted, err := rb.ExtractContents()
			require.NoError(t, err)

			assert.True(t, cloned.IsEqualNode(extracted), "clone:\n%s\nextract:\n%s", cloned, extracted)
			assert.True(t, a.doc.IsEqualNode(b.doc), "tree:\n%s\nvs\n%s", a.doc, b.doc)
			assert.Equal(t, ra.StartOffset(), rb.StartOffset())
		})
	}
}

func TestProcessContentsWrongDocument(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := newRange(t, tt.t1, 0, tt.t1, 2)
	// Bypass the checked setters to build boundary points in two trees.
	r.end.Set(NewTextNode(tt.doc, "loose"), 1, nil)

	_, err := r.ProcessContents(ActionClone)
	requireException(t, err, WrongDocumentError)
}
