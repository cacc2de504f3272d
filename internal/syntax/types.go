// Package syntax builds a Solidity syntax tree from the lossless lexer token stream.
package syntax

import (
	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// Severity is a diagnostic severity level.
type Severity uint8

const (
	// SeverityError indicates an error diagnostic.
	SeverityError Severity = iota + 1
	// SeverityWarning indicates a warning diagnostic.
	SeverityWarning
	// SeverityInfo indicates an informational diagnostic.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// DiagnosticCode identifies a syntax-layer diagnostic kind.
type DiagnosticCode string

const (
	// DiagnosticUnexpectedToken reports a token the grammar does not allow at that position.
	DiagnosticUnexpectedToken DiagnosticCode = "SYNTAX_UNEXPECTED_TOKEN"
	// DiagnosticUnexpectedEOF reports input that ends inside a construct.
	DiagnosticUnexpectedEOF DiagnosticCode = "SYNTAX_UNEXPECTED_EOF"
	// DiagnosticUnsupported reports valid Solidity the parser does not model.
	DiagnosticUnsupported DiagnosticCode = "SYNTAX_UNSUPPORTED"
)

// Diagnostic is a unified syntax diagnostic.
type Diagnostic struct {
	Code        DiagnosticCode
	Message     string
	Severity    Severity
	Span        text.Span
	Source      string // lexer | parser | formatter
	Recoverable bool
}

// ParseOptions control syntax parsing behavior.
type ParseOptions struct {
	URI string
}

// Tree is the immutable syntax parse result.
type Tree struct {
	URI         string
	Source      []byte
	Tokens      []lexer.Token
	Unit        *SourceUnit
	Comments    []lexer.Trivia
	Diagnostics []Diagnostic
	LineIndex   *text.LineIndex
}

// HasErrors reports whether any diagnostic has error severity.
func (t *Tree) HasErrors() bool {
	if t == nil {
		return false
	}
	for _, d := range t.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
