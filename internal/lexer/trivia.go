package lexer

import (
	"fmt"

	"github.com/kpumuk/sol-weaver/internal/text"
)

// TriviaKind identifies non-token source segments attached as leading trivia.
type TriviaKind uint8

// TriviaKind values describe trivia categories.
const (
	TriviaWhitespace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaDocLineComment
	TriviaBlockComment
	TriviaDocBlockComment
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhitespace:
		return "Whitespace"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaDocLineComment:
		return "DocLineComment"
	case TriviaBlockComment:
		return "BlockComment"
	case TriviaDocBlockComment:
		return "DocBlockComment"
	default:
		return fmt.Sprintf("TriviaKind(%d)", k)
	}
}

// IsComment reports whether k is one of the comment kinds.
func (k TriviaKind) IsComment() bool {
	return k >= TriviaLineComment
}

// Trivia represents a non-token source span (whitespace/comments/newlines).
type Trivia struct {
	Kind TriviaKind
	Span text.Span
}

// Bytes returns the trivia bytes referenced by Span or nil if Span is invalid for src.
func (t Trivia) Bytes(src []byte) []byte {
	return bytesForSpan(src, t.Span)
}

// Comments returns every comment trivia in token order.
func Comments(tokens []Token) []Trivia {
	var out []Trivia
	for _, tok := range tokens {
		for _, tr := range tok.Leading {
			if tr.Kind.IsComment() {
				out = append(out, tr)
			}
		}
	}
	return out
}
