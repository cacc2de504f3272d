package format

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// noOffset marks an absent byte offset.
const noOffset text.ByteOffset = -1

// Chunk is a rendered fragment together with the comments that surround it.
// Content never contains comment text.
type Chunk struct {
	PostfixCommentsBefore []Comment
	PrefixComments        []Comment
	Content               string
	PostfixComments       []Comment
	// NeedsSpace forces (or suppresses) the separating space before Content.
	// When nil the space is derived from the surrounding characters.
	NeedsSpace *bool
}

func spaced(v bool) *bool { return &v }

// surroundingChunk is an opening or closing delimiter of a list.
type surroundingChunk struct {
	content string
	before  text.ByteOffset
	next    text.ByteOffset
	spaced  *bool
}

func surrounding(content string, before, next text.ByteOffset) surroundingChunk {
	return surroundingChunk{content: content, before: before, next: next}
}

func (c surroundingChunk) nonSpaced() surroundingChunk {
	c.spaced = spaced(false)
	return c
}

func (c surroundingChunk) beforeOffset() text.ByteOffset { return max(c.before, 0) }

// chunkAt builds a chunk from content and takes the comments leading up to
// off and, when next is set, the trailing comments leading up to next.
func (f *formatter) chunkAt(off, next text.ByteOffset, needsSpace *bool, content string) Chunk {
	c := Chunk{
		PostfixCommentsBefore: f.comments.RemovePostfixesBefore(off),
		PrefixComments:        f.comments.RemovePrefixesBefore(off),
		Content:               content,
		NeedsSpace:            needsSpace,
	}
	if next != noOffset {
		c.PostfixComments = f.comments.RemovePostfixesBefore(next)
	}
	return c
}

// chunked is chunkAt with the content rendered into a temporary buffer.
func (f *formatter) chunked(off, next text.ByteOffset, render func() error) (Chunk, error) {
	postfixesBefore := f.comments.RemovePostfixesBefore(off)
	prefixes := f.comments.RemovePrefixesBefore(off)
	content, err := f.withTempBuf(render)
	if err != nil {
		return Chunk{}, err
	}
	c := Chunk{PostfixCommentsBefore: postfixesBefore, PrefixComments: prefixes, Content: content}
	if next != noOffset {
		c.PostfixComments = f.comments.RemovePostfixesBefore(next)
	}
	return c, nil
}

func (f *formatter) visitToChunk(off, next text.ByteOffset, n syntax.Node) (Chunk, error) {
	return f.chunked(off, next, func() error { return f.visit(n) })
}

// writeChunkAt writes content as a chunk anchored at off.
func (f *formatter) writeChunkAt(off text.ByteOffset, content string) error {
	return f.writeChunk(f.chunkAt(off, noOffset, nil, content))
}

// writeChunkSpan writes content anchored at off, taking trailing comments up to next.
func (f *formatter) writeChunkSpan(off, next text.ByteOffset, content string) error {
	return f.writeChunk(f.chunkAt(off, next, nil, content))
}

// writeText writes content as a chunk without consulting the comment store.
func (f *formatter) writeText(content string) error {
	return f.writeChunk(Chunk{Content: content})
}

func (f *formatter) writeChunk(c Chunk) error {
	if err := f.writeComments(c.PostfixCommentsBefore); err != nil {
		return err
	}
	if err := f.writeComments(c.PrefixComments); err != nil {
		return err
	}

	content := c.Content
	switch {
	case strings.HasPrefix(content, "\n"):
		content = "\n" + strings.TrimLeftFunc(content, unicode.IsSpace)
	case strings.HasPrefix(content, " "):
		content = " " + strings.TrimLeftFunc(content, unicode.IsSpace)
	}
	if content != "" {
		var needsSpace bool
		if c.NeedsSpace != nil {
			needsSpace = *c.NeedsSpace
		} else {
			r, _ := utf8.DecodeRuneInString(content)
			needsSpace = f.nextCharNeedsSpace(r)
		}
		if needsSpace {
			sep := "\n"
			if f.willItFit(content) {
				sep = " "
			}
			if err := f.write(sep); err != nil {
				return err
			}
		}
		if err := f.write(content); err != nil {
			return err
		}
	}
	return f.writeComments(c.PostfixComments)
}

func (f *formatter) writeChunksSeparated(chunks []Chunk, sep string, multiline bool) error {
	for i, c := range chunks {
		if err := f.writeComments(c.PostfixCommentsBefore); err != nil {
			return err
		}
		if multiline && !f.isBeginningOfLine() {
			if err := f.write("\n"); err != nil {
				return err
			}
		}
		postfixes := c.PostfixComments
		c.PostfixCommentsBefore, c.PostfixComments = nil, nil
		if err := f.writeChunk(c); err != nil {
			return err
		}
		if i == len(chunks)-1 {
			return f.writeComments(postfixes)
		}
		if err := f.write(sep); err != nil {
			return err
		}
		if err := f.writeComments(postfixes); err != nil {
			return err
		}
		if multiline && !f.isBeginningOfLine() {
			if err := f.write("\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// areChunksSeparatedMultiline reports whether chunks joined by sep fail to fit
// on the current line once substituted for "{}" in format.
func (f *formatter) areChunksSeparatedMultiline(format string, chunks []Chunk, sep string) (bool, error) {
	joined, ok, err := f.simulateToSingleLine(func() error {
		return f.writeChunksSeparated(chunks, sep, false)
	})
	if err != nil || !ok {
		return true, err
	}
	return !f.willItFit(strings.Replace(format, "{}", joined, 1)), nil
}

// willChunkFit reports whether the chunk rendered into format fits the line.
func (f *formatter) willChunkFit(format string, c Chunk) (bool, error) {
	if len(c.PrefixComments) > 0 || len(c.PostfixCommentsBefore) > 0 || len(c.PostfixComments) > 0 {
		return false, nil
	}
	content, ok, err := f.simulateToSingleLine(func() error { return f.writeChunk(c) })
	if err != nil || !ok {
		return false, err
	}
	return f.willItFit(strings.Replace(format, "{}", content, 1)), nil
}

// itemsToChunks renders each item to a chunk whose trailing comments extend
// to the next item, or to next for the last one. Disabled items are copied
// from the source.
func itemsToChunks[T syntax.Node](f *formatter, next text.ByteOffset, items []T) ([]Chunk, error) {
	out := make([]Chunk, 0, len(items))
	for i, item := range items {
		sp := item.Span()
		chunkNext := next
		if i+1 < len(items) {
			chunkNext = items[i+1].Span().Start
		}
		var (
			c   Chunk
			err error
		)
		if f.inline.IsDisabled(sp) {
			c, err = f.chunked(sp.Start, chunkNext, func() error { return f.visitSource(sp) })
		} else {
			c, err = f.visitToChunk(sp.Start, chunkNext, item)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// surrounded writes first, then the list produced by render and last. When
// the list does not fit on the current line it is moved to its own indented
// lines with last on a line of its own.
func (f *formatter) surrounded(first, last surroundingChunk, render func(multiline bool) error) error {
	if err := f.writeChunk(f.chunkAt(first.beforeOffset(), first.next, first.spaced, first.content)); err != nil {
		return err
	}

	fits, err := f.tryOnSingleLine(func() error {
		if err := render(false); err != nil {
			return err
		}
		return f.writeChunk(f.chunkAt(last.beforeOffset(), last.next, last.spaced, last.content))
	})
	if err != nil || fits {
		return err
	}

	err = f.indented(1, func() error {
		if err := f.writeWhitespaceSeparator(true); err != nil {
			return err
		}
		s, err := f.withTempBuf(func() error { return render(true) })
		if err != nil {
			return err
		}
		if err := f.writeText(strings.TrimLeftFunc(s, unicode.IsSpace)); err != nil {
			return err
		}
		if strings.TrimLeftFunc(last.content, unicode.IsSpace) == "" {
			return nil
		}
		return f.writeWhitespaceSeparator(true)
	})
	if err != nil {
		return err
	}
	return f.writeChunk(f.chunkAt(last.beforeOffset(), last.next, last.spaced, last.content))
}

// reorderChunks returns chunks stably sorted by cmp, which compares the
// original positions of two chunks.
func reorderChunks(chunks []Chunk, cmp func(a, b int) int) []Chunk {
	order := make([]int, len(chunks))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, cmp)
	out := make([]Chunk, len(order))
	for i, j := range order {
		out[i] = chunks[j]
	}
	return out
}
