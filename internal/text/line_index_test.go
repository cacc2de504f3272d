package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIndexOffsetToPoint(t *testing.T) {
	t.Parallel()

	idx := NewLineIndex([]byte("a\r\nb\n\nc"))
	require.Equal(t, 4, idx.LineCount())

	tests := map[ByteOffset]Point{
		0: {Line: 0, Column: 0},
		2: {Line: 0, Column: 2},
		3: {Line: 1, Column: 0},
		5: {Line: 2, Column: 0},
		6: {Line: 3, Column: 0},
		7: {Line: 3, Column: 1},
	}
	for off, want := range tests {
		got, err := idx.OffsetToPoint(off)
		require.NoError(t, err, "offset %d", off)
		assert.Equal(t, want, got, "offset %d", off)
	}

	_, err := idx.OffsetToPoint(8)
	require.Error(t, err)

	start, err := idx.LineStart(3)
	require.NoError(t, err)
	assert.Equal(t, ByteOffset(6), start)
}

func TestNilLineIndex(t *testing.T) {
	t.Parallel()

	var idx *LineIndex
	assert.Equal(t, 0, idx.LineCount())
	_, err := idx.OffsetToPoint(0)
	require.Error(t, err)
}

func TestFindNextLineAndNewlines(t *testing.T) {
	t.Parallel()

	src := []byte("a;\n\n\nb;\nc;")

	next, ok := FindNextLine(src, 0)
	require.True(t, ok)
	assert.Equal(t, ByteOffset(3), next)

	_, ok = FindNextLine(src, 9)
	assert.False(t, ok)

	assert.Equal(t, 3, LineNewlines(src, 2, 5))
	assert.Equal(t, 1, LineNewlines(src, 7, 8))
	assert.Equal(t, 0, LineNewlines(src, 5, 2))
}
