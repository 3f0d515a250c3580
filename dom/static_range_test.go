package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStaticRange(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)

	s, err := NewStaticRange(StaticRangeInit{StartContainer: tt.t1, StartOffset: 1, EndContainer: tt.t2, EndOffset: 2})
	require.NoError(t, err)
	assert.True(t, s.Valid())
	assert.False(t, s.Collapsed())

	_, err = NewStaticRange(StaticRangeInit{StartContainer: NewDocTypeNode(tt.doc, "html", "", ""), EndContainer: tt.t1})
	requireException(t, err, InvalidNodeTypeError)
	_, err = NewStaticRange(StaticRangeInit{StartContainer: tt.t1})
	requireException(t, err, TypeError)

	s, err = NewStaticRange(StaticRangeInit{StartContainer: tt.t1, StartOffset: 9, EndContainer: tt.t1, EndOffset: 9})
	require.NoError(t, err)
	assert.False(t, s.Valid())

	s, err = NewStaticRange(StaticRangeInit{StartContainer: tt.t2, EndContainer: tt.t1})
	require.NoError(t, err)
	assert.False(t, s.Valid())
}

func TestSnapshotIsNotLive(t *testing.T) {
	t.Parallel()
	tt := newTestTree(t)
	r := newRange(t, tt.body, 1, tt.t2, 4)

	s := r.Snapshot()
	_, err := tt.body.InsertBefore(NewElement(tt.doc, "h1", Htmlns), tt.p1)
	require.NoError(t, err)
	require.NoError(t, tt.t2.DeleteData(0, 2))

	assert.Equal(t, 1, s.StartOffset())
	assert.Equal(t, 4, s.EndOffset())
	assert.Equal(t, 2, r.StartOffset())
	assert.Equal(t, 2, r.EndOffset())

	assert.False(t, s.Valid())
	_, err = s.ToRange()
	requireException(t, err, IndexSizeError)

	live, err := r.Snapshot().ToRange()
	require.NoError(t, err)
	defer live.Detach()
	requireBoundaries(t, live, tt.body, 2, tt.t2, 2)
}
