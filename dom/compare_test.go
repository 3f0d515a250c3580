package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareBoundaryPoints(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)

	tests := []struct {
		name     string
		cA       *Node
		oA       int
		cB       *Node
		oB       int
		expected int
	}{
		{"same container before", tt.t1, 1, tt.t1, 3, -1},
		{"same container equal", tt.t1, 2, tt.t1, 2, 0},
		{"same container after", tt.t1, 4, tt.t1, 2, 1},
		{"ancestor a before child", tt.body, 1, tt.t2, 0, -1},
		{"ancestor a after child", tt.body, 2, tt.t2, 0, 1},
		{"ancestor a at child start", tt.body, 0, tt.t1, 0, -1},
		{"ancestor b before", tt.t1, 5, tt.body, 1, -1},
		{"ancestor b after", tt.t2, 0, tt.body, 1, 1},
		{"siblings before", tt.t1, 5, tt.t2, 0, -1},
		{"siblings after", tt.t2, 0, tt.t1, 5, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CompareBoundaryPoints(tc.cA, tc.oA, tc.cB, tc.oB)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestCompareBoundaryPointsDifferentTrees(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	detached := NewElement(tt.doc, "div", Htmlns)

	_, err := CompareBoundaryPoints(tt.t1, 0, detached, 0)
	requireException(t, err, WrongDocumentError)
}

func TestCommonAncestorContainer(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)

	assert.Same(t, tt.body, CommonAncestorContainer(tt.t1, tt.t2))
	assert.Same(t, tt.p1, CommonAncestorContainer(tt.t1, tt.p1))
	assert.Nil(t, CommonAncestorContainer(tt.t1, NewTextNode(tt.doc, "x")))
}
