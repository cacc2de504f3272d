package format

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

func inlineConfigFor(t *testing.T, src string) (*InlineConfig, []syntax.Diagnostic) {
	t.Helper()
	tree := parseTree(t, src)
	return NewInlineConfig(tree.Source, tree.Tokens, tree.Unit, ExtractComments(tree.Source, tree.Tokens))
}

// spanOf returns the span of the first occurrence of needle in src.
func spanOf(t *testing.T, src, needle string) text.Span {
	t.Helper()
	i := strings.Index(src, needle)
	require.GreaterOrEqual(t, i, 0, "%q not found", needle)
	return text.Span{Start: text.ByteOffset(i), End: text.ByteOffset(i + len(needle))}
}

func TestParseInlineConfigItem(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]InlineConfigItem{
		"disable-next-item": DisableNextItem,
		"disable-line":      DisableLine,
		"disable-next-line": DisableNextLine,
		"disable-start":     DisableStart,
		"disable-end":       DisableEnd,
	} {
		got, err := ParseInlineConfigItem(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseInlineConfigItem("disable-everything")
	require.Error(t, err)
}

func TestInlineConfigRanges(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		src      string
		disabled []string
		enabled  []string
	}{
		"next line": {
			src:      "contract A {\n    // forgefmt: disable-next-line\n    uint   x;\n    uint   y;\n}\n",
			disabled: []string{"uint   x;"},
			enabled:  []string{"uint   y;"},
		},
		"same line": {
			src:      "contract A {\n    uint   x; // forgefmt: disable-line\n    uint   y;\n}\n",
			disabled: []string{"uint   x;"},
			enabled:  []string{"uint   y;"},
		},
		"start and end": {
			src:      "contract A {\n    // forgefmt: disable-start\n    uint   x;\n    uint   y;\n    // forgefmt: disable-end\n    uint   z;\n}\n",
			disabled: []string{"uint   x;", "uint   y;"},
			enabled:  []string{"uint   z;"},
		},
		"unclosed start runs to the end": {
			src:      "contract A {\n    uint   x;\n    // forgefmt: disable-start\n    uint   y;\n}\n",
			disabled: []string{"uint   y;"},
			enabled:  []string{"uint   x;"},
		},
		"next item": {
			src:      "contract A {\n    // forgefmt: disable-next-item\n    function f() public {\n        x   = 1;\n    }\n    uint   y;\n}\n",
			disabled: []string{"function f() public {\n        x   = 1;\n    }", "x   = 1;"},
			enabled:  []string{"uint   y;"},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg, diags := inlineConfigFor(t, tt.src)
			assert.Empty(t, diags)
			for _, s := range tt.disabled {
				assert.True(t, cfg.IsDisabled(spanOf(t, tt.src, s)), "expected %q to be disabled", s)
			}
			for _, s := range tt.enabled {
				assert.False(t, cfg.IsDisabled(spanOf(t, tt.src, s)), "expected %q to be formatted", s)
			}
		})
	}
}

func TestInlineConfigReportsInvalidDirectives(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown item":        "// forgefmt: disable-everything\ncontract A {}\n",
		"end without a start": "contract A {}\n// forgefmt: disable-end\n",
	}

	for name, src := range tests {
		src := src
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg, diags := inlineConfigFor(t, src)
			require.Len(t, diags, 1)
			assert.Equal(t, DiagnosticFormatterInvalidInlineConfig, diags[0].Code)
			assert.Equal(t, syntax.SeverityWarning, diags[0].Severity)
			assert.False(t, cfg.IsDisabled(spanOf(t, src, "contract A {}")))

			res, err := Source(context.Background(), []byte(src), "test.sol", Options{})
			require.NoError(t, err)
			assert.True(t, hasDiagnostic(res.Diagnostics, DiagnosticFormatterInvalidInlineConfig))
		})
	}
}

func TestNilInlineConfigDisablesNothing(t *testing.T) {
	t.Parallel()

	var cfg *InlineConfig
	assert.False(t, cfg.IsDisabled(text.Span{Start: 0, End: 10}))
}
