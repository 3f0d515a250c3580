package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	t.Parallel()

	t.Run("word", func(t *testing.T) {
		doc := NewHTMLDocument("")
		div := appendEl(t, doc, doc, "div")
		text := appendText(t, doc, div, "hello wide_world!")
		r := newRange(t, text, 8, text, 8)

		require.NoError(t, r.Expand("word"))
		assert.Equal(t, "wide_world", r.String())
	})

	t.Run("sentence", func(t *testing.T) {
		doc := NewHTMLDocument("")
		div := appendEl(t, doc, doc, "div")
		text := appendText(t, doc, div, "One. Two three. Four")
		r := newRange(t, text, 8, text, 8)

		require.NoError(t, r.Expand("sentence"))
		assert.Equal(t, "Two three.", r.String())
	})

	t.Run("block", func(t *testing.T) {
		doc := NewHTMLDocument("")
		div := appendEl(t, doc, doc, "div")
		span := appendEl(t, doc, div, "span")
		text := appendText(t, doc, span, "abc")
		r := newRange(t, text, 1, text, 2)

		require.NoError(t, r.Expand("block"))
		requireBoundaries(t, r, div, 0, div, 1)
	})

	t.Run("document", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.t1, 2)
		require.NoError(t, r.Expand("document"))
		requireBoundaries(t, r, tt.doc, 0, tt.doc, 1)
	})

	t.Run("unknown unit", func(t *testing.T) {
		tt := newTestTree(t)
		r := newRange(t, tt.t1, 1, tt.t1, 2)
		requireException(t, r.Expand("paragraph"), SyntaxError)
		requireBoundaries(t, r, tt.t1, 1, tt.t1, 2)
	})
}
