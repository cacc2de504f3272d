package format

import (
	"strings"
	"unicode"

	"github.com/kpumuk/sol-weaver/internal/text"
)

func (f *formatter) writePostfixCommentsBefore(off text.ByteOffset) error {
	return f.writeComments(f.comments.RemovePostfixesBefore(off))
}

func (f *formatter) writePrefixCommentsBefore(off text.ByteOffset) error {
	return f.writeComments(f.comments.RemovePrefixesBefore(off))
}

func (f *formatter) writeComments(comments []Comment) error {
	if len(comments) == 0 {
		return nil
	}
	lastByteWritten := comments[0].Span.Start
	for i, c := range comments {
		gap := text.Span{Start: lastByteWritten, End: max(lastByteWritten, c.Span.Start)}
		if !f.inline.IsDisabled(gap) {
			if err := f.writeComment(c, i == 0); err != nil {
				return err
			}
			continue
		}
		if err := f.writeRaw(string(gap.Slice(f.src))); err != nil {
			return err
		}
		if err := f.writeRawComment(c); err != nil {
			return err
		}
		lastByteWritten = c.Span.End
		if next, ok := f.findNextLine(c.Span.End); ok && c.IsLine() {
			lastByteWritten = next
		}
	}
	return nil
}

func (f *formatter) writeComment(c Comment, isFirst bool) error {
	if f.inline.IsDisabled(c.Span) {
		return f.writeRawComment(c)
	}
	if c.IsPrefix() {
		return f.writePrefixComment(c, isFirst)
	}
	return f.writePostfixComment(c)
}

func (f *formatter) writeRawComment(c Comment) error {
	if err := f.writeRaw(string(c.Span.Slice(f.src))); err != nil {
		return err
	}
	if c.IsLine() {
		return f.write("\n")
	}
	return nil
}

func (f *formatter) writePrefixComment(c Comment, isFirst bool) error {
	if !f.isBeginningOfLine() {
		if err := f.write("\n"); err != nil {
			return err
		}
	}
	if !isFirst && c.HasNewlineBefore {
		if err := f.write("\n"); err != nil {
			return err
		}
	}

	if c.Kind == CommentDocBlock {
		if err := f.write(c.startToken() + "\n"); err != nil {
			return err
		}
		for _, line := range sourceLines(strings.TrimSpace(c.contents())) {
			if err := f.writeDocBlockLine(c, line); err != nil {
				return err
			}
		}
		return f.write(" " + c.endToken() + "\n")
	}

	if err := f.write(c.startToken()); err != nil {
		return err
	}
	contents := c.contents()
	lines := sourceLines(contents)
	wrapped := false
	for i, line := range lines {
		w, err := f.writeCommentLine(c, line)
		if err != nil {
			return err
		}
		wrapped = wrapped || w
		if i < len(lines)-1 {
			if err := f.write("\n"); err != nil {
				return err
			}
		}
	}
	if end := c.endToken(); end != "" {
		// the closing token had a line of its own in the source
		if !wrapped && strings.HasSuffix(strings.TrimRight(contents, "\r"), "\n") {
			if err := f.write("\n"); err != nil {
				return err
			}
		}
		if err := f.write(end); err != nil {
			return err
		}
	}
	if _, ok := f.findNextLine(c.Span.End); ok {
		return f.write("\n")
	}
	return nil
}

func (f *formatter) writePostfixComment(c Comment) error {
	indented := f.isBeginningOfLine()
	return f.indentedIf(indented, 1, func() error {
		if !indented && f.nextCharNeedsSpace('/') {
			if err := f.writeWhitespaceSeparator(false); err != nil {
				return err
			}
		}
		if err := f.write(c.startToken()); err != nil {
			return err
		}
		startTokenPos := f.buf().currentLineLen

		lines := sourceLines(c.contents())
		_, err := f.grouped(func() error {
			for i, line := range lines {
				if _, err := f.writeCommentLine(c, line); err != nil {
					return err
				}
				if i < len(lines)-1 {
					if err := f.writeWhitespaceSeparator(true); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		if end := c.endToken(); end != "" {
			if f.isBeginningOfLine() {
				end = strings.Repeat(" ", startTokenPos) + end
			}
			if err := f.write(end); err != nil {
				return err
			}
		}
		if c.IsLine() {
			return f.writeWhitespaceSeparator(true)
		}
		return nil
	})
}

// writeDocBlockLine writes one line of a doc block behind a " *" gutter.
func (f *formatter) writeDocBlockLine(c Comment, line string) error {
	if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "*") {
		rest := strings.TrimLeft(trimmed, "*")
		gutter := " *"
		if r := firstRune(rest); r != 0 && !unicode.IsSpace(r) {
			gutter += " "
		}
		if err := f.write(gutter); err != nil {
			return err
		}
		if _, err := f.writeCommentLine(c, rest); err != nil {
			return err
		}
		return f.writeWhitespaceSeparator(true)
	}

	content := line[f.indentToSkip(line):]
	if err := f.write(" *"); err != nil {
		return err
	}
	if strings.TrimSpace(content) != "" {
		if err := f.write(" "); err != nil {
			return err
		}
		if _, err := f.writeCommentLine(c, content); err != nil {
			return err
		}
	}
	return f.writeWhitespaceSeparator(true)
}

// indentToSkip is the leading whitespace of line already provided by the
// current indentation, rounded down to whole tab stops.
func (f *formatter) indentToSkip(line string) int {
	n := 0
	limit := f.buf().currentIndentLen()
	for n < len(line) && n <= limit && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	if tw := f.opts.TabWidth; tw > 0 {
		n -= n % tw
	}
	return n
}

// writeCommentLine writes one line of comment text, wrapping it at word
// boundaries when WrapComments is set and it overflows. It reports whether
// the line was wrapped.
func (f *formatter) writeCommentLine(c Comment, line string) (bool, error) {
	if f.willItFit(line) || !f.opts.WrapComments {
		if !f.isBeginningOfLine() || !unicode.IsSpace(firstRune(line)) {
			return false, f.write(line)
		}
		return false, f.write(line[f.indentToSkip(line):])
	}

	words := strings.Split(line, " ")
	for i, word := range words {
		var err error
		if f.isBeginningOfLine() {
			err = f.write(strings.TrimLeftFunc(word, unicode.IsSpace))
		} else {
			err = f.writeRaw(word)
		}
		if err != nil {
			return false, err
		}
		if i == len(words)-1 {
			break
		}
		if word != "" && !f.willItFit(words[i+1]) {
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return false, err
			}
			if err := f.write(c.wrapToken()); err != nil {
				return false, err
			}
			if _, err := f.writeCommentLine(c, strings.Join(words[i+1:], " ")); err != nil {
				return false, err
			}
			return true, nil
		}
		if err := f.writeWhitespaceSeparator(false); err != nil {
			return false, err
		}
	}
	return false, nil
}

// sourceLines splits s into lines the way a reader counts them: a trailing
// newline does not open another line and carriage returns are dropped.
func sourceLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
