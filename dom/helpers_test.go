package dom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testTree is the fixture most range tests run against:
//
//	#document
//	  <html>
//	    <body>
//	      <p> "hello"
//	      <p> "world"
type testTree struct {
	doc, html, body, p1, t1, p2, t2 *Node
}

func newTestTree(t *testing.T) *testTree {
	t.Helper()
	doc := NewHTMLDocument("http://example.com/dir/page.html")
	tt := &testTree{doc: doc}
	tt.html = appendEl(t, doc, doc, "html")
	tt.body = appendEl(t, doc, tt.html, "body")
	tt.p1 = appendEl(t, doc, tt.body, "p")
	tt.t1 = appendText(t, doc, tt.p1, "hello")
	tt.p2 = appendEl(t, doc, tt.body, "p")
	tt.t2 = appendText(t, doc, tt.p2, "world")
	return tt
}

func appendEl(t *testing.T, doc, parent *Node, name string) *Node {
	t.Helper()
	e := NewElement(doc, name, Htmlns)
	_, err := parent.AppendChild(e)
	require.NoError(t, err)
	return e
}

func appendText(t *testing.T, doc, parent *Node, data string) *Node {
	t.Helper()
	text := NewTextNode(doc, data)
	_, err := parent.AppendChild(text)
	require.NoError(t, err)
	return text
}

func newRange(t *testing.T, sc *Node, so int, ec *Node, eo int) *Range {
	t.Helper()
	r, err := NewRangeWithBoundaries(sc.ownerDocumentOrSelf(), sc, so, ec, eo)
	require.NoError(t, err)
	t.Cleanup(r.Detach)
	return r
}

func requireException(t *testing.T, err error, code ExceptionCode) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, ExceptionCodeOf(err), "got %v", err)
}

func requireBoundaries(t *testing.T, r *Range, sc *Node, so int, ec *Node, eo int) {
	t.Helper()
	require.Same(t, sc, r.StartContainer(), "start container")
	require.Equal(t, so, r.StartOffset(), "start offset")
	require.Same(t, ec, r.EndContainer(), "end container")
	require.Equal(t, eo, r.EndOffset(), "end offset")
}
