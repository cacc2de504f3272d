package text

import (
	"bytes"
	"slices"

	"gitlab.com/tozd/go/errors"
)

// LineIndex maps byte offsets to 0-based line and byte-column locations.
type LineIndex struct {
	src        []byte
	lineStarts []ByteOffset
}

var errNilLineIndex = errors.Base("nil LineIndex")

// NewLineIndex builds an index over src.
func NewLineIndex(src []byte) *LineIndex {
	starts := []ByteOffset{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	return &LineIndex{
		src:        src,
		lineStarts: starts,
	}
}

// LineCount returns the number of logical lines in the source.
func (li *LineIndex) LineCount() int {
	if li == nil {
		return 0
	}
	return len(li.lineStarts)
}

// OffsetToPoint converts a byte offset to a UTF-8 byte-based point.
func (li *LineIndex) OffsetToPoint(off ByteOffset) (Point, error) {
	if li == nil {
		return Point{}, errors.WithStack(errNilLineIndex)
	}
	if !off.IsValid() || off > ByteOffset(len(li.src)) {
		return Point{}, errors.Errorf("offset out of range: %d", off)
	}

	// largest i such that lineStarts[i] <= off
	line, found := slices.BinarySearch(li.lineStarts, off)
	if !found {
		line--
	}
	return Point{
		Line:   line,
		Column: int(off - li.lineStarts[line]),
	}, nil
}

// LineStart returns the offset of the first byte of line.
func (li *LineIndex) LineStart(line int) (ByteOffset, error) {
	if li == nil {
		return 0, errors.WithStack(errNilLineIndex)
	}
	if line < 0 || line >= len(li.lineStarts) {
		return 0, errors.Errorf("line out of range: %d", line)
	}
	return li.lineStarts[line], nil
}

// FindNextLine returns the offset just past the next '\n' at or after off.
func FindNextLine(src []byte, off ByteOffset) (ByteOffset, bool) {
	if off < 0 || int(off) >= len(src) {
		return 0, false
	}
	i := bytes.IndexByte(src[off:], '\n')
	if i < 0 {
		return 0, false
	}
	return off + ByteOffset(i) + 1, true
}

// LineNewlines counts '\n' bytes in src[from:to]. Two or more means the range spans a blank line.
func LineNewlines(src []byte, from, to ByteOffset) int {
	if from >= to {
		return 0
	}
	return bytes.Count(Span{Start: from, End: to}.Slice(src), []byte{'\n'})
}
