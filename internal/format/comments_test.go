package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpumuk/sol-weaver/internal/text"
)

func TestExtractCommentsClassifies(t *testing.T) {
	t.Parallel()

	src := "// header\n" +
		"pragma solidity ^0.8.0;\n" +
		"\n" +
		"/// @notice doc\n" +
		"contract A {\n" +
		"    uint256 x; // trailing\n" +
		"               // continued\n" +
		"    /* block */\n" +
		"\n" +
		"    /** docblock */\n" +
		"    uint256 y;\n" +
		"}\n"
	tree := parseTree(t, src)
	comments := ExtractComments(tree.Source, tree.Tokens)

	type want struct {
		text       string
		kind       CommentKind
		position   CommentPosition
		blankAbove bool
	}
	expected := []want{
		{text: "// header", kind: CommentLine, position: CommentPrefix, blankAbove: true},
		{text: "/// @notice doc", kind: CommentDocLine, position: CommentPrefix, blankAbove: true},
		{text: "// trailing", kind: CommentLine, position: CommentPostfix},
		{text: "// continued", kind: CommentLine, position: CommentPostfix},
		{text: "/* block */", kind: CommentBlock, position: CommentPrefix},
		{text: "/** docblock */", kind: CommentDocBlock, position: CommentPrefix, blankAbove: true},
	}
	require.Len(t, comments, len(expected))
	for i, w := range expected {
		c := comments[i]
		assert.Equal(t, w.text, c.Text, "comment %d", i)
		assert.Equal(t, w.kind, c.Kind, "comment %d kind", i)
		assert.Equal(t, w.position, c.Position, "comment %d position", i)
		assert.Equal(t, w.blankAbove, c.HasNewlineBefore, "comment %d blank line above", i)
		assert.Equal(t, w.text, string(c.Span.Slice(tree.Source)), "comment %d span", i)
	}
}

func TestCommentContentsAndTokens(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		c     Comment
		start string
		end   string
		body  string
	}{
		"line":      {c: Comment{Kind: CommentLine, Text: "// hi"}, start: "//", body: " hi"},
		"doc line":  {c: Comment{Kind: CommentDocLine, Text: "/// hi"}, start: "///", body: " hi"},
		"block":     {c: Comment{Kind: CommentBlock, Text: "/* hi */"}, start: "/*", end: "*/", body: " hi "},
		"doc block": {c: Comment{Kind: CommentDocBlock, Text: "/** hi */"}, start: "/**", end: "*/", body: " hi "},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.start, tt.c.startToken())
			assert.Equal(t, tt.end, tt.c.endToken())
			assert.Equal(t, tt.body, tt.c.contents())
		})
	}
}

func TestCommentStoreOrdersQueues(t *testing.T) {
	t.Parallel()

	at := func(start int, pos CommentPosition) Comment {
		return Comment{Span: text.Span{Start: text.ByteOffset(start), End: text.ByteOffset(start + 2)}, Position: pos}
	}
	store := NewCommentStore([]Comment{
		at(0, CommentPrefix),
		at(10, CommentPostfix),
		at(20, CommentPrefix),
		at(30, CommentPostfix),
	})
	require.Equal(t, 4, store.Len())

	c, ok := store.Peek()
	require.True(t, ok)
	assert.Equal(t, text.ByteOffset(0), c.Span.Start)

	got := store.RemovePostfixesBefore(25)
	require.Len(t, got, 1)
	assert.Equal(t, text.ByteOffset(10), got[0].Span.Start)

	snap := store.snapshot()
	all := store.RemoveAllBefore(100)
	require.Len(t, all, 3)
	assert.Equal(t, []text.ByteOffset{0, 20, 30}, []text.ByteOffset{all[0].Span.Start, all[1].Span.Start, all[2].Span.Start})
	assert.Zero(t, store.Len())
	_, ok = store.Pop()
	assert.False(t, ok)

	store.restore(snap)
	assert.Equal(t, 3, store.Len())
	c, ok = store.Pop()
	require.True(t, ok)
	assert.Equal(t, text.ByteOffset(0), c.Span.Start)
	c, ok = store.Pop()
	require.True(t, ok)
	assert.Equal(t, text.ByteOffset(20), c.Span.Start)
}

func TestPrevLineBlank(t *testing.T) {
	t.Parallel()

	src := []byte("a\n\n  b\nc\n")
	assert.True(t, prevLineBlank(src, 0))
	assert.False(t, prevLineBlank(src, 2), "the line above holds a")
	assert.True(t, prevLineBlank(src, 5))
	assert.False(t, prevLineBlank(src, 7))
}
