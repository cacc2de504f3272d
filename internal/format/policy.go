package format

import (
	"bytes"
	"unicode/utf8"

	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

const (
	// DiagnosticFormatterMixedNewlines reports mixed LF/CRLF line endings in input.
	DiagnosticFormatterMixedNewlines syntax.DiagnosticCode = "FMT_MIXED_NEWLINES"
	// DiagnosticFormatterInvalidUTF8 reports formatter refusal for invalid UTF-8 bytes.
	DiagnosticFormatterInvalidUTF8 syntax.DiagnosticCode = "FMT_INVALID_UTF8"
)

// SourcePolicy holds the byte-level traits of an input that survive
// formatting: the byte order mark and the newline style.
type SourcePolicy struct {
	HasBOM        bool
	Newline       string // "\n" or "\r\n"
	MixedNewlines bool
	ValidUTF8     bool
	// Body is the input without the byte order mark and with LF line endings.
	Body []byte
}

// analyzeSourcePolicy inspects src once. The newline style is the one used by
// most lines, LF on a tie. Diagnostics point at the first offending bytes.
func analyzeSourcePolicy(src []byte) (SourcePolicy, []syntax.Diagnostic) {
	body, hasBOM := bytes.CutPrefix(src, []byte(lexer.UTF8BOM))
	base := len(src) - len(body)
	policy := SourcePolicy{HasBOM: hasBOM, Newline: "\n", ValidUTF8: true, Body: body}

	var diags []syntax.Diagnostic
	if i := firstInvalidUTF8(body); i >= 0 {
		policy.ValidUTF8 = false
		diags = append(diags, policyDiagnostic(DiagnosticFormatterInvalidUTF8, syntax.SeverityError,
			byteSpan(base+i, 1), "formatter refuses invalid UTF-8 input"))
	}

	nl := scanNewlines(body)
	if nl.crlf > nl.lf {
		policy.Newline = "\r\n"
	}
	if nl.crlf > 0 {
		policy.Body = bytes.ReplaceAll(body, []byte("\r\n"), []byte("\n"))
	}
	if nl.lf > 0 && nl.crlf > 0 {
		policy.MixedNewlines = true
		at, width := nl.firstCRLF, 2
		if policy.Newline == "\r\n" {
			at, width = nl.firstLF, 1
		}
		diags = append(diags, policyDiagnostic(DiagnosticFormatterMixedNewlines, syntax.SeverityInfo,
			byteSpan(base+at, width), "mixed newline styles detected; formatter will normalize to dominant style"))
	}
	return policy, diags
}

func (p SourcePolicy) needsNormalization() bool {
	return p.HasBOM || p.Newline == "\r\n" || p.MixedNewlines
}

// apply restores the byte order mark and the newline style on output produced
// from Body.
func (p SourcePolicy) apply(out []byte) []byte {
	if p.Newline == "\r\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	if p.HasBOM {
		out = append([]byte(lexer.UTF8BOM), out...)
	}
	return out
}

type newlineCounts struct {
	lf, crlf           int
	firstLF, firstCRLF int
}

func scanNewlines(src []byte) newlineCounts {
	var n newlineCounts
	for i := 0; i < len(src); i++ {
		switch {
		case src[i] == '\r' && i+1 < len(src) && src[i+1] == '\n':
			if n.crlf == 0 {
				n.firstCRLF = i
			}
			n.crlf++
			i++
		case src[i] == '\n':
			if n.lf == 0 {
				n.firstLF = i
			}
			n.lf++
		}
	}
	return n
}

// firstInvalidUTF8 returns the offset of the first byte that is not valid
// UTF-8, or -1.
func firstInvalidUTF8(src []byte) int {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

func policyDiagnostic(code syntax.DiagnosticCode, severity syntax.Severity, sp text.Span, msg string) syntax.Diagnostic {
	return syntax.Diagnostic{
		Code:        code,
		Message:     msg,
		Severity:    severity,
		Span:        sp,
		Source:      "formatter",
		Recoverable: severity != syntax.SeverityError,
	}
}

func byteSpan(start, n int) text.Span {
	return text.Span{Start: text.ByteOffset(start), End: text.ByteOffset(start + n)}
}
