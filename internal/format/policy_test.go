package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

func TestAnalyzeSourcePolicy(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		src       string
		newline   string
		bom       bool
		body      string
		normalize bool
		code      syntax.DiagnosticCode
		span      text.Span
	}{
		"plain lf": {
			src:     "a\nb\n",
			newline: "\n",
			body:    "a\nb\n",
		},
		"crlf": {
			src:       "a\r\nb\r\n",
			newline:   "\r\n",
			body:      "a\nb\n",
			normalize: true,
		},
		"bom": {
			src:       "\xEF\xBB\xBFa\n",
			newline:   "\n",
			bom:       true,
			body:      "a\n",
			normalize: true,
		},
		"mostly lf points at first crlf": {
			src:       "a\nb\r\nc\n",
			newline:   "\n",
			body:      "a\nb\nc\n",
			normalize: true,
			code:      DiagnosticFormatterMixedNewlines,
			span:      text.Span{Start: 3, End: 5},
		},
		"mostly crlf points at first lf": {
			src:       "\xEF\xBB\xBFa\r\nb\nc\r\n",
			newline:   "\r\n",
			bom:       true,
			body:      "a\nb\nc\n",
			normalize: true,
			code:      DiagnosticFormatterMixedNewlines,
			span:      text.Span{Start: 7, End: 8},
		},
		"invalid byte": {
			src:     "ab\xffc\n",
			newline: "\n",
			body:    "ab\xffc\n",
			code:    DiagnosticFormatterInvalidUTF8,
			span:    text.Span{Start: 2, End: 3},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			policy, diags := analyzeSourcePolicy([]byte(tt.src))
			assert.Equal(t, tt.newline, policy.Newline)
			assert.Equal(t, tt.bom, policy.HasBOM)
			assert.Equal(t, tt.body, string(policy.Body))
			assert.Equal(t, tt.normalize, policy.needsNormalization())
			assert.Equal(t, tt.code != DiagnosticFormatterInvalidUTF8, policy.ValidUTF8)
			if tt.code == "" {
				assert.Empty(t, diags)
				assert.Equal(t, tt.src, string(policy.apply(policy.Body)))
				return
			}
			require.Len(t, diags, 1)
			assert.Equal(t, tt.code, diags[0].Code)
			assert.Equal(t, tt.span, diags[0].Span)
		})
	}
}
