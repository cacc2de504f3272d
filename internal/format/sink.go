package format

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"gitlab.com/tozd/go/errors"
)

// errSingleLineBudget is returned by a sink restricted to a single line when a
// newline is written to it.
var errSingleLineBudget = errors.Base("single line budget exceeded")

type indentGroup struct {
	// skipLine is true while no newline was written with this entry on top of
	// the indent stack. Skipping entries do not count toward the depth.
	skipLine bool
}

// sink accumulates formatted text. Indentation is inserted lazily before the
// first non-newline byte of every line.
type sink struct {
	buf            strings.Builder
	indents        []indentGroup
	baseIndentLen  int
	tabWidth       int
	currentLineLen int
	lastChar       rune
	atLineStart    bool
	singleLine     bool

	// lineIndent is the indentation in effect for the current line. Indent
	// levels pushed after the line started do not change it.
	lineIndent int
}

func newSink(tabWidth int) *sink {
	return &sink{tabWidth: tabWidth, atLineStart: true}
}

// newTemp returns a sink whose content will later be written into s. It
// inherits the line position and indentation of s but no previous character,
// so the parent decides on separating whitespace when the content is written.
func (s *sink) newTemp() *sink {
	return &sink{
		tabWidth:       s.tabWidth,
		baseIndentLen:  s.totalIndentLen(),
		currentLineLen: s.currentLineLen,
		lineIndent:     s.lineIndentLen(),
		singleLine:     s.singleLine,
	}
}

func (s *sink) String() string { return s.buf.String() }

func (s *sink) Len() int { return s.buf.Len() }

// truncate drops everything written after the first n bytes. Line state is
// recomputed from the retained text.
func (s *sink) truncate(n int) {
	if n >= s.buf.Len() {
		return
	}
	kept := s.buf.String()[:n]
	s.buf.Reset()
	s.buf.WriteString(kept)
	s.lastChar, _ = utf8.DecodeLastRuneInString(kept)
	if kept == "" {
		s.lastChar = 0
	}
	i := strings.LastIndexByte(kept, '\n')
	s.atLineStart = i == len(kept)-1
	line := kept[i+1:]
	lead := len(line) - len(strings.TrimLeft(line, " "))
	s.lineIndent = s.baseIndentLen + lead
	s.currentLineLen = displayWidth(line[lead:])
}

func (s *sink) level() int {
	n := 0
	for _, g := range s.indents {
		if !g.skipLine {
			n++
		}
	}
	return n
}

func (s *sink) currentIndentLen() int { return s.level() * s.tabWidth }

func (s *sink) totalIndentLen() int { return s.baseIndentLen + s.currentIndentLen() }

// lineIndentLen is the indentation of the current line, or of the next line
// when nothing has been written to it yet.
func (s *sink) lineIndentLen() int {
	if s.atLineStart {
		return s.totalIndentLen()
	}
	return s.lineIndent
}

func (s *sink) isBeginningOfLine() bool { return s.atLineStart }

func (s *sink) restrictToSingleLine(v bool) { s.singleLine = v }

func (s *sink) indent(n int) {
	for k := 0; k < n; k++ {
		s.indents = append(s.indents, indentGroup{})
	}
}

func (s *sink) dedent(n int) {
	s.indents = s.indents[:max(len(s.indents)-n, 0)]
}

func (s *sink) startGroup() {
	s.indents = append(s.indents, indentGroup{skipLine: true})
}

// endGroup pops the innermost group and reports whether it indented anything.
func (s *sink) endGroup() bool {
	if len(s.indents) == 0 {
		return false
	}
	g := s.indents[len(s.indents)-1]
	s.indents = s.indents[:len(s.indents)-1]
	return !g.skipLine
}

func (s *sink) newline() error {
	if s.singleLine {
		return errors.WithStack(errSingleLineBudget)
	}
	s.buf.WriteByte('\n')
	s.currentLineLen = 0
	s.lastChar = '\n'
	s.atLineStart = true
	if n := len(s.indents); n > 0 {
		s.indents[n-1].skipLine = false
	}
	return nil
}

func (s *sink) appendText(str string) {
	if str == "" {
		return
	}
	s.buf.WriteString(str)
	s.currentLineLen += displayWidth(str)
	s.lastChar, _ = utf8.DecodeLastRuneInString(str)
	s.atLineStart = false
}

func (s *sink) write(str string) error {
	for str != "" {
		if s.atLineStart {
			i := strings.IndexFunc(str, func(r rune) bool { return r != '\n' })
			if i < 0 {
				i = len(str)
			}
			for k := 0; k < i; k++ {
				if err := s.newline(); err != nil {
					return err
				}
			}
			str = str[i:]
			if str == "" {
				return nil
			}
			if n := s.currentIndentLen(); n > 0 {
				s.buf.WriteString(strings.Repeat(" ", n))
				s.lastChar = ' '
			}
			s.lineIndent = s.totalIndentLen()
			s.currentLineLen = 0
			s.atLineStart = false
			continue
		}
		line, rest, found := strings.Cut(str, "\n")
		s.appendText(line)
		if !found {
			return nil
		}
		if err := s.newline(); err != nil {
			return err
		}
		str = rest
	}
	return nil
}

// writeRaw writes str without inserting indentation. Lines starting at the
// beginning of a line lose up to baseIndentLen leading blanks, which the
// enclosing sink adds back when the content is written into it.
func (s *sink) writeRaw(str string) error {
	for str != "" {
		line, rest, found := strings.Cut(str, "\n")
		if s.atLineStart {
			line = trimIndent(line, s.baseIndentLen)
			s.lineIndent = s.baseIndentLen
		}
		s.appendText(line)
		if !found {
			return nil
		}
		if err := s.newline(); err != nil {
			return err
		}
		str = rest
	}
	return nil
}

func displayWidth(s string) int { return runewidth.StringWidth(s) }

func trimIndent(line string, n int) string {
	i := 0
	for i < len(line) && i < n && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}
