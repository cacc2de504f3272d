package format

import (
	"sort"
	"strings"

	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// CommentKind is the lexical form of a comment.
type CommentKind uint8

// CommentKind values.
const (
	CommentLine CommentKind = iota
	CommentDocLine
	CommentBlock
	CommentDocBlock
)

// CommentPosition tells whether a comment precedes code on its own line or
// trails code on the same line.
type CommentPosition uint8

// CommentPosition values.
const (
	CommentPrefix CommentPosition = iota
	CommentPostfix
)

// Comment is a source comment with the placement facts needed to re-emit it.
type Comment struct {
	Span     text.Span
	Kind     CommentKind
	Position CommentPosition
	// Text is the comment source; line comments lose trailing whitespace.
	Text string
	// HasNewlineBefore is set when the source line above the comment is blank.
	HasNewlineBefore bool
	// IndentLen is the width of the leading whitespace on the comment's line.
	IndentLen int
}

func (c Comment) IsLine() bool { return c.Kind == CommentLine || c.Kind == CommentDocLine }

func (c Comment) IsPrefix() bool { return c.Position == CommentPrefix }

func (c Comment) startToken() string {
	switch c.Kind {
	case CommentDocLine:
		return "///"
	case CommentBlock:
		return "/*"
	case CommentDocBlock:
		return "/**"
	default:
		return "//"
	}
}

func (c Comment) endToken() string {
	if c.IsLine() {
		return ""
	}
	return "*/"
}

// wrapToken starts a continuation line when a long comment is wrapped.
func (c Comment) wrapToken() string {
	switch c.Kind {
	case CommentDocLine:
		return "/// "
	case CommentBlock:
		return ""
	case CommentDocBlock:
		return " * "
	default:
		return "// "
	}
}

// contents is the comment text without its delimiters.
func (c Comment) contents() string {
	s := strings.TrimPrefix(c.Text, c.startToken())
	return strings.TrimSuffix(s, c.endToken())
}

// ExtractComments classifies every comment trivia of tokens.
func ExtractComments(src []byte, tokens []lexer.Token) []Comment {
	var out []Comment
	for i, tok := range tokens {
		var codeEnd text.ByteOffset
		if i > 0 {
			codeEnd = tokens[i-1].Span.End
		}
		lastPostfixEnd := text.ByteOffset(-1)
		for _, tr := range tok.Leading {
			if !tr.Kind.IsComment() {
				continue
			}
			c := newComment(src, tr)
			c.Position, c.HasNewlineBefore = classifyComment(src, tr.Span, i > 0, codeEnd, c, lastPostfixEnd, lineIndent(src, tok.Span.Start))
			if c.Position == CommentPostfix {
				lastPostfixEnd = c.Span.End
			}
			out = append(out, c)
		}
	}
	return out
}

func newComment(src []byte, tr lexer.Trivia) Comment {
	c := Comment{Span: tr.Span, Text: string(tr.Bytes(src)), IndentLen: lineIndent(src, tr.Span.Start)}
	switch tr.Kind {
	case lexer.TriviaDocLineComment:
		c.Kind = CommentDocLine
	case lexer.TriviaBlockComment:
		c.Kind = CommentBlock
	case lexer.TriviaDocBlockComment:
		c.Kind = CommentDocBlock
	default:
		c.Kind = CommentLine
	}
	if c.IsLine() {
		c.Text = strings.TrimRight(c.Text, " \t\r")
	}
	return c
}

func classifyComment(src []byte, sp text.Span, codeBefore bool, codeEnd text.ByteOffset, c Comment, lastPostfixEnd text.ByteOffset, nextCodeIndent int) (CommentPosition, bool) {
	blankAbove := prevLineBlank(src, sp.Start)
	switch {
	case !codeBefore:
		return CommentPrefix, blankAbove
	case c.Kind == CommentDocLine || c.Kind == CommentDocBlock:
		return CommentPrefix, blankAbove
	case !strings.Contains(string(src[codeEnd:sp.Start]), "\n"):
		return CommentPostfix, false
	case blankAbove:
		return CommentPrefix, true
	case lastPostfixEnd > codeEnd && c.IndentLen > nextCodeIndent:
		// continuation of a trailing comment aligned past the code
		return CommentPostfix, false
	default:
		return CommentPrefix, false
	}
}

func lineStartOf(src []byte, off text.ByteOffset) text.ByteOffset {
	i := strings.LastIndexByte(string(src[:off]), '\n')
	return text.ByteOffset(i + 1)
}

func lineIndent(src []byte, off text.ByteOffset) int {
	start := lineStartOf(src, min(off, text.ByteOffset(len(src))))
	n := 0
	for int(start)+n < len(src) && (src[int(start)+n] == ' ' || src[int(start)+n] == '\t') {
		n++
	}
	return n
}

// prevLineBlank reports whether the line above off is empty or whitespace only.
// A comment on the first line has no line above and counts as separated.
func prevLineBlank(src []byte, off text.ByteOffset) bool {
	start := lineStartOf(src, off)
	if start == 0 {
		return true
	}
	prevStart := lineStartOf(src, start-1)
	return strings.TrimSpace(string(src[prevStart:start])) == ""
}

// CommentStore hands out comments in source order. Prefix and postfix
// comments live in separate queues consumed from the front.
type CommentStore struct {
	all       []Comment
	prefixes  []Comment
	postfixes []Comment
	// heads of the two queues
	pre, post int
}

type commentSnapshot struct {
	pre, post int
}

// NewCommentStore builds a store from comments sorted by position.
func NewCommentStore(comments []Comment) *CommentStore {
	s := &CommentStore{all: comments}
	for _, c := range comments {
		if c.IsPrefix() {
			s.prefixes = append(s.prefixes, c)
		} else {
			s.postfixes = append(s.postfixes, c)
		}
	}
	return s
}

func (s *CommentStore) snapshot() commentSnapshot { return commentSnapshot{pre: s.pre, post: s.post} }

func (s *CommentStore) restore(snap commentSnapshot) {
	s.pre, s.post = snap.pre, snap.post
}

// Len returns the number of comments not handed out yet.
func (s *CommentStore) Len() int {
	return len(s.prefixes) - s.pre + len(s.postfixes) - s.post
}

// Peek returns the earliest remaining comment.
func (s *CommentStore) Peek() (Comment, bool) {
	switch {
	case s.pre < len(s.prefixes) && s.post < len(s.postfixes):
		if s.postfixes[s.post].Span.Start < s.prefixes[s.pre].Span.Start {
			return s.postfixes[s.post], true
		}
		return s.prefixes[s.pre], true
	case s.pre < len(s.prefixes):
		return s.prefixes[s.pre], true
	case s.post < len(s.postfixes):
		return s.postfixes[s.post], true
	default:
		return Comment{}, false
	}
}

// Pop removes and returns the earliest remaining comment.
func (s *CommentStore) Pop() (Comment, bool) {
	c, ok := s.Peek()
	if !ok {
		return c, false
	}
	if c.IsPrefix() {
		s.pre++
	} else {
		s.post++
	}
	return c, true
}

// RemovePrefixesBefore removes the prefix comments starting before off.
func (s *CommentStore) RemovePrefixesBefore(off text.ByteOffset) []Comment {
	var out []Comment
	out, s.pre = takeBefore(s.prefixes, s.pre, off)
	return out
}

// RemovePostfixesBefore removes the postfix comments starting before off.
func (s *CommentStore) RemovePostfixesBefore(off text.ByteOffset) []Comment {
	var out []Comment
	out, s.post = takeBefore(s.postfixes, s.post, off)
	return out
}

// RemoveAllBefore removes every comment starting before off, in source order.
func (s *CommentStore) RemoveAllBefore(off text.ByteOffset) []Comment {
	out := append(s.RemovePrefixesBefore(off), s.RemovePostfixesBefore(off)...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}

func takeBefore(queue []Comment, head int, off text.ByteOffset) ([]Comment, int) {
	end := head
	for end < len(queue) && queue[end].Span.Start < off {
		end++
	}
	if end == head {
		return nil, head
	}
	out := make([]Comment, end-head)
	copy(out, queue[head:end])
	return out, end
}

// commentNewlines counts the newlines inside comments overlapping [from, to).
func (s *CommentStore) commentNewlines(src []byte, from, to text.ByteOffset) int {
	n := 0
	for _, c := range s.all {
		if c.Span.End <= from {
			continue
		}
		if c.Span.Start >= to {
			break
		}
		lo, hi := max(c.Span.Start, from), min(c.Span.End, to)
		n += text.LineNewlines(src, lo, hi)
	}
	return n
}
