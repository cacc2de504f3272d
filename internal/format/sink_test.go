package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkIndentsLazily(t *testing.T) {
	t.Parallel()

	s := newSink(4)
	s.indent(1)
	require.NoError(t, s.write("a\n\nb"))
	assert.Equal(t, "    a\n\n    b", s.String())
	assert.Equal(t, 'b', s.lastChar)
	assert.False(t, s.isBeginningOfLine())

	s.dedent(1)
	require.NoError(t, s.write("\nc\n"))
	assert.Equal(t, "    a\n\n    b\nc\n", s.String())
	assert.True(t, s.isBeginningOfLine())
	assert.Equal(t, 0, s.currentLineLen)
}

func TestSinkGroups(t *testing.T) {
	t.Parallel()

	s := newSink(2)
	s.startGroup()
	require.NoError(t, s.write("head"))
	assert.False(t, s.endGroup(), "a group without a line break indents nothing")

	s.startGroup()
	require.NoError(t, s.write(" tail\nnext\nlast"))
	assert.True(t, s.endGroup())
	assert.Equal(t, "head tail\n  next\n  last", s.String())
}

func TestSinkSingleLineBudget(t *testing.T) {
	t.Parallel()

	s := newSink(4)
	s.restrictToSingleLine(true)
	require.NoError(t, s.write("fits"))
	err := s.write(" and\nbreaks")
	require.ErrorIs(t, err, errSingleLineBudget)
	require.ErrorIs(t, s.writeRaw("\n"), errSingleLineBudget)
}

func TestSinkTempInheritsPosition(t *testing.T) {
	t.Parallel()

	parent := newSink(4)
	parent.indent(1)
	require.NoError(t, parent.write("abc"))

	tmp := parent.newTemp()
	assert.Equal(t, 4, tmp.baseIndentLen)
	assert.Equal(t, 3, tmp.currentLineLen)
	assert.Equal(t, rune(0), tmp.lastChar)
	assert.False(t, tmp.isBeginningOfLine())

	require.NoError(t, tmp.writeRaw("x\n      y"))
	assert.Equal(t, "x\n  y", tmp.String())
}

func TestSinkLineIndentIgnoresLevelsPushedMidLine(t *testing.T) {
	t.Parallel()

	s := newSink(4)
	s.indent(1)
	require.NoError(t, s.write("head("))
	s.indent(1)
	assert.Equal(t, 4, s.lineIndentLen())
	assert.Equal(t, 8, s.totalIndentLen())
	assert.Equal(t, 4, s.newTemp().lineIndentLen())

	require.NoError(t, s.write("\nnext"))
	assert.Equal(t, 8, s.lineIndentLen())

	s.dedent(1)
	require.NoError(t, s.write("\n"))
	assert.Equal(t, 4, s.lineIndentLen())
	assert.Equal(t, "    head(\n        next\n", s.String())
}

func TestSinkTruncate(t *testing.T) {
	t.Parallel()

	s := newSink(4)
	require.NoError(t, s.write("ab\ncd"))
	s.truncate(3)
	assert.Equal(t, "ab\n", s.String())
	assert.True(t, s.isBeginningOfLine())
	assert.Equal(t, '\n', s.lastChar)
	assert.Equal(t, 0, s.currentLineLen)

	s.truncate(1)
	assert.Equal(t, "a", s.String())
	assert.False(t, s.isBeginningOfLine())
	assert.Equal(t, 1, s.currentLineLen)

	s.truncate(0)
	assert.Empty(t, s.String())
	assert.Equal(t, rune(0), s.lastChar)
}

func TestSinkCountsDisplayWidth(t *testing.T) {
	t.Parallel()

	s := newSink(4)
	require.NoError(t, s.write("日本"))
	assert.Equal(t, 4, s.currentLineLen)
	assert.Equal(t, "ab", trimIndent("    ab", 8))
	assert.Equal(t, "  ab", trimIndent("    ab", 2))
}
