package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRangeIsCollapsedAtDocumentStart(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := tt.doc.CreateRange()
	defer r.Detach()

	requireBoundaries(t, r, tt.doc, 0, tt.doc, 0)
	assert.True(t, r.Collapsed())
	assert.Same(t, tt.doc, r.CommonAncestorContainer())
	assert.Contains(t, tt.doc.Document.LiveRanges(), r)
}

func TestSetStartAndEnd(t *testing.T) {
	t.Parallel()

	t.Run("start after end collapses to start", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 0, tt.t2, 3)
		require.NoError(t, r.SetStart(tt.t2, 4))
		requireBoundaries(t, r, tt.t2, 4, tt.t2, 4)
	})

	t.Run("end before start collapses to end", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 3, tt.t2, 3)
		require.NoError(t, r.SetEnd(tt.t1, 1))
		requireBoundaries(t, r, tt.t1, 1, tt.t1, 1)
	})

	t.Run("other root collapses", func(t *testing.T) {
		tt := newTestTree(t)
		detached := NewTextNode(tt.doc, "loose")
		r := newRange(t, tt.t1, 1, tt.t1, 3)
		require.NoError(t, r.SetEnd(detached, 2))
		requireBoundaries(t, r, detached, 2, detached, 2)
	})

	t.Run("other document moves the range", func(t *testing.T) {
		tt := newTestTree(t)
		other := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.t1, 3)
		require.NoError(t, r.SetStart(other.t1, 1))
		assert.Same(t, other.doc, r.OwnerDocument())
		requireBoundaries(t, r, other.t1, 1, other.t1, 1)
		assert.NotContains(t, tt.doc.Document.LiveRanges(), r)
		assert.Contains(t, other.doc.Document.LiveRanges(), r)
	})

	t.Run("relative to a node", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.doc, 0, tt.doc, 0)
		require.NoError(t, r.SetEndAfter(tt.p2))
		require.NoError(t, r.SetStartBefore(tt.p2))
		requireBoundaries(t, r, tt.body, 1, tt.body, 2)
		require.NoError(t, r.SetStartAfter(tt.p1))
		require.NoError(t, r.SetEndBefore(tt.p2))
		requireBoundaries(t, r, tt.body, 1, tt.body, 1)
	})
}

func TestSetStartErrors(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	doctype := NewDocTypeNode(tt.doc, "html", "", "")
	_, err := tt.doc.InsertBefore(doctype, tt.html)
	require.NoError(t, err)

	tests := []struct {
		name     string
		node     *Node
		offset   int
		expected ExceptionCode
	}{
		{"doctype", doctype, 0, InvalidNodeTypeError},
		{"negative", tt.t1, -1, IndexSizeError},
		{"past text length", tt.t1, 6, IndexSizeError},
		{"past child count", tt.body, 3, IndexSizeError},
		{"nil node", nil, 0, TypeError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRange(t, tt.t1, 1, tt.t1, 2)
			requireException(t, r.SetStart(tc.node, tc.offset), tc.expected)
			requireException(t, r.SetEnd(tc.node, tc.offset), tc.expected)
			requireBoundaries(t, r, tt.t1, 1, tt.t1, 2)
		})
	}

	r := newRange(t, tt.t1, 0, tt.t1, 0)
	requireException(t, r.SetStartBefore(tt.doc), InvalidNodeTypeError)
	requireException(t, r.SetEndAfter(NewElement(tt.doc, "b", Htmlns)), InvalidNodeTypeError)
}

func TestSelectNode(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := newRange(t, tt.doc, 0, tt.doc, 0)

	require.NoError(t, r.SelectNode(tt.p2))
	requireBoundaries(t, r, tt.body, 1, tt.body, 2)

	require.NoError(t, r.SelectNodeContents(tt.t1))
	requireBoundaries(t, r, tt.t1, 0, tt.t1, 5)

	require.NoError(t, r.SelectNodeContents(tt.body))
	requireBoundaries(t, r, tt.body, 0, tt.body, 2)

	requireException(t, r.SelectNode(tt.doc), InvalidNodeTypeError)
	requireException(t, r.SelectNodeContents(NewDocTypeNode(tt.doc, "html", "", "")), InvalidNodeTypeError)
}

func TestComparePoint(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := newRange(t, tt.t1, 1, tt.t2, 3)

	tests := []struct {
		name     string
		node     *Node
		offset   int
		expected int
	}{
		{"before", tt.t1, 0, -1},
		{"at start", tt.t1, 1, 0},
		{"between", tt.body, 1, 0},
		{"at end", tt.t2, 3, 0},
		{"after", tt.t2, 4, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.ComparePoint(tc.node, tc.offset)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := r.ComparePoint(NewElement(tt.doc, "div", Htmlns), 0)
	requireException(t, err, WrongDocumentError)
	_, err = r.ComparePoint(tt.t1, 9)
	requireException(t, err, IndexSizeError)

	in, err := r.IsPointInRange(tt.body, 1)
	require.NoError(t, err)
	assert.True(t, in)
	in, err = r.IsPointInRange(tt.t2, 5)
	require.NoError(t, err)
	assert.False(t, in)
	in, err = r.IsPointInRange(NewTextNode(tt.doc, "x"), 0)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestCompareNode(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)

	r := newRange(t, tt.t1, 1, tt.t2, 3)
	got, err := r.CompareNode(tt.p1)
	require.NoError(t, err)
	assert.Equal(t, NodeBefore, got)
	got, err = r.CompareNode(tt.p2)
	require.NoError(t, err)
	assert.Equal(t, NodeAfter, got)

	require.NoError(t, r.SelectNodeContents(tt.body))
	got, err = r.CompareNode(tt.p1)
	require.NoError(t, err)
	assert.Equal(t, NodeInside, got)
	got, err = r.CompareNode(tt.body)
	require.NoError(t, err)
	assert.Equal(t, NodeBeforeAndAfter, got)
	assert.True(t, r.ContainsNode(tt.p2))
	assert.False(t, r.ContainsNode(tt.body))

	got, err = r.CompareNode(NewElement(tt.doc, "div", Htmlns))
	require.NoError(t, err)
	assert.Equal(t, NodeBefore, got)

	_, err = r.CompareNode(tt.doc)
	requireException(t, err, NotFoundError)
}

func TestIntersectsNode(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := newRange(t, tt.t1, 1, tt.t1, 3)

	assert.True(t, r.IntersectsNode(tt.p1))
	assert.True(t, r.IntersectsNode(tt.t1))
	assert.False(t, r.IntersectsNode(tt.p2))
	assert.True(t, r.IntersectsNode(tt.doc))
	assert.False(t, r.IntersectsNode(NewElement(tt.doc, "div", Htmlns)))
}

func TestRangeCompareBoundaryPoints(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	first := newRange(t, tt.t1, 0, tt.t1, 5)
	second := newRange(t, tt.t2, 0, tt.t2, 5)

	tests := []struct {
		how      CompareHow
		a, b     *Range
		expected int
	}{
		{StartToStart, first, second, -1},
		{StartToEnd, first, second, -1},
		{EndToEnd, first, second, -1},
		{EndToStart, first, second, -1},
		{StartToEnd, second, first, 1},
		{EndToStart, second, first, 1},
		{StartToStart, first, first, 0},
		{EndToEnd, first, first, 0},
	}
	for _, tc := range tests {
		got, err := tc.a.CompareBoundaryPoints(tc.how, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got, "how %d", tc.how)
	}

	_, err := first.CompareBoundaryPoints(EndToStart+1, second)
	requireException(t, err, SyntaxError)

	other := newTestTree(t)
	_, err = first.CompareBoundaryPoints(StartToStart, newRange(t, other.t1, 0, other.t1, 1))
	requireException(t, err, WrongDocumentError)
}

func TestRangeRelations(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	outer := newRange(t, tt.t1, 0, tt.t2, 5)
	inner := newRange(t, tt.t1, 2, tt.t1, 4)
	overlapping := newRange(t, tt.t1, 3, tt.t1, 5)
	disjoint := newRange(t, tt.t2, 1, tt.t2, 2)

	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.True(t, RangesOverlap(inner, overlapping))
	assert.True(t, RangesOverlap(outer, inner))
	assert.True(t, RangesOverlap(inner, outer))
	assert.False(t, RangesOverlap(inner, disjoint))

	other := newTestTree(t)
	elsewhere := newRange(t, other.t1, 0, other.t1, 5)
	assert.False(t, RangesOverlap(outer, elsewhere))
	assert.False(t, RangesOverlap(elsewhere, outer))

	detached := NewElement(tt.doc, "div", Htmlns)
	appendText(t, tt.doc, detached, "loose")
	inDetached := newRange(t, detached.FirstChild, 0, detached.FirstChild, 5)
	assert.False(t, RangesOverlap(outer, inDetached))
	assert.False(t, RangesOverlap(inDetached, outer))

	clone := inner.CloneRange()
	defer clone.Detach()
	assert.True(t, AreRangesEqual(inner, clone))
	require.NoError(t, clone.SetEnd(tt.t1, 5))
	assert.False(t, AreRangesEqual(inner, clone))
	assert.True(t, inner.BoundaryPointsValid())
}

func TestInsertNode(t *testing.T) {
	t.Parallel()

	t.Run("splits text", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 2, tt.t1, 2)
		b := NewElement(tt.doc, "b", Htmlns)

		require.NoError(t, r.InsertNode(b))
		require.Len(t, tt.p1.ChildNodes, 3)
		assert.Equal(t, "he", tt.t1.CharacterData.Data)
		assert.Same(t, b, tt.p1.ChildNodes[1])
		assert.Equal(t, "llo", tt.p1.ChildNodes[2].CharacterData.Data)
		requireBoundaries(t, r, tt.t1, 2, tt.p1, 2)
	})

	t.Run("into container", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.body, 1, tt.body, 2)
		hr := NewElement(tt.doc, "hr", Htmlns)

		require.NoError(t, r.InsertNode(hr))
		assert.Same(t, hr, tt.body.ChildNodes[1])
		requireBoundaries(t, r, tt.body, 1, tt.body, 3)
	})

	t.Run("fragment", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.body, 0, tt.body, 0)
		frag := NewDocumentFragment(tt.doc)
		appendEl(t, tt.doc, frag, "h1")
		appendEl(t, tt.doc, frag, "h2")

		require.NoError(t, r.InsertNode(frag))
		require.Len(t, tt.body.ChildNodes, 4)
		assert.Equal(t, "h1", tt.body.ChildNodes[0].NodeName)
		assert.False(t, frag.HasChildNodes())
		requireBoundaries(t, r, tt.body, 0, tt.body, 2)
	})

	t.Run("splits cdata", func(t *testing.T) {
		doc := NewXMLDocument("")
		root := NewElement(doc, "r", NoNamespace)
		_, err := doc.AppendChild(root)
		require.NoError(t, err)
		cdata := NewCDATASection(doc, "abcd")
		_, err = root.AppendChild(cdata)
		require.NoError(t, err)
		r := newRange(t, cdata, 2, cdata, 2)
		e := NewElement(doc, "e", NoNamespace)

		require.NoError(t, r.InsertNode(e))
		require.Len(t, root.ChildNodes, 3)
		assert.Equal(t, "ab", cdata.CharacterData.Data)
		assert.Same(t, e, root.ChildNodes[1])
		assert.Equal(t, CDATASectionNode, root.ChildNodes[2].NodeType)
		assert.Equal(t, "cd", root.ChildNodes[2].CharacterData.Data)
		requireBoundaries(t, r, cdata, 2, root, 2)
	})

	t.Run("comment start", func(t *testing.T) {
		tt := newTestTree(t)
		c := NewComment(tt.doc, "note")
		_, err := tt.body.AppendChild(c)
		require.NoError(t, err)
		r := newRange(t, c, 1, c, 1)
		requireException(t, r.InsertNode(NewElement(tt.doc, "b", Htmlns)), HierarchyRequestError)
	})

	t.Run("ancestor", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.body, 0, tt.body, 0)
		requireException(t, r.InsertNode(tt.html), HierarchyRequestError)
	})
}

func TestSurroundContents(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.t1, 4)
		b := NewElement(tt.doc, "b", Htmlns)
		appendText(t, tt.doc, b, "discarded")

		require.NoError(t, r.SurroundContents(b))
		assert.Equal(t, "hello", tt.p1.TextContent())
		assert.Equal(t, "ell", b.TextContent())
		assert.Same(t, tt.p1, b.ParentNode)
		requireBoundaries(t, r, b, 0, b, 1)
	})

	t.Run("partially selected element", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.t2, 1)
		err := r.SurroundContents(NewElement(tt.doc, "b", Htmlns))
		requireException(t, err, InvalidStateError)
		assert.Equal(t, "hello", tt.t1.CharacterData.Data)
	})

	t.Run("invalid parent", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.t1, 2)
		err := r.SurroundContents(NewDocumentFragment(tt.doc))
		requireException(t, err, InvalidNodeTypeError)
	})
}

func TestRangeString(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)

	tests := []struct {
		name     string
		sc       *Node
		so       int
		ec       *Node
		eo       int
		expected string
	}{
		{"within text", tt.t1, 1, tt.t1, 4, "ell"},
		{"across elements", tt.t1, 2, tt.t2, 3, "llowor"},
		{"whole body", tt.body, 0, tt.body, 2, "helloworld"},
		{"collapsed", tt.t2, 2, tt.t2, 2, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRange(t, tc.sc, tc.so, tc.ec, tc.eo)
			assert.Equal(t, tc.expected, r.String())
		})
	}
}

func TestRangeStringCountsUTF16(t *testing.T) {
	t.Parallel()
	doc := NewHTMLDocument("")
	p := appendEl(t, doc, doc, "p")
	text := appendText(t, doc, p, "a😀b")
	require.Equal(t, 4, text.Length())

	r := newRange(t, text, 1, text, 3)
	assert.Equal(t, "😀", r.String())
}

func TestFirstAndPastLastNode(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)

	r := newRange(t, tt.body, 1, tt.body, 2)
	assert.Same(t, tt.p2, r.FirstNode())
	assert.Nil(t, r.PastLastNode())

	r = newRange(t, tt.t1, 3, tt.body, 1)
	assert.Same(t, tt.t1, r.FirstNode())
	assert.Same(t, tt.p2, r.PastLastNode())
}
