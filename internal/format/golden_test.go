package format_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpumuk/sol-weaver/internal/config"
	"github.com/kpumuk/sol-weaver/internal/format"
	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/testutil"
)

func goldenOptions(t *testing.T, tc testutil.GoldenCase) format.Options {
	t.Helper()
	var opts format.Options
	if tc.OptionsPath == "" {
		return opts
	}
	_, err := config.Decode(testutil.ReadFile(t, tc.OptionsPath), &opts)
	require.NoError(t, err)
	return opts
}

func TestFormatterGoldenCorpus(t *testing.T) {
	t.Parallel()

	cases, err := testutil.FormatGoldenCases()
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			input := testutil.ReadFile(t, tc.InputPath)
			expected := string(testutil.ReadFile(t, tc.ExpectedPath))
			opts := goldenOptions(t, tc)

			res, err := format.Source(context.Background(), input, filepath.Base(tc.InputPath), opts)
			require.NoError(t, err)
			if got := string(res.Output); got != expected {
				t.Fatalf("formatted output mismatch (-want +got):\n%s", diff.Diff(expected, got))
			}
			assert.Equal(t, string(input) != expected, res.Changed)

			again, err := format.Source(context.Background(), res.Output, filepath.Base(tc.ExpectedPath), opts)
			require.NoError(t, err)
			if got := string(again.Output); got != expected {
				t.Fatalf("second pass is not stable (-want +got):\n%s", diff.Diff(expected, got))
			}
			assert.False(t, again.Changed)
		})
	}
}

func TestFormatterConservesComments(t *testing.T) {
	t.Parallel()

	cases, err := testutil.FormatGoldenCases()
	require.NoError(t, err)

	for _, tc := range cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			input := testutil.ReadFile(t, tc.InputPath)
			res, err := format.Source(context.Background(), input, filepath.Base(tc.InputPath), goldenOptions(t, tc))
			require.NoError(t, err)
			assert.ElementsMatch(t, commentLexemes(input), commentLexemes(res.Output))
		})
	}
}

func TestFormatterStaysWithinLineLength(t *testing.T) {
	t.Parallel()

	cases, err := testutil.FormatGoldenCases()
	require.NoError(t, err)

	for _, tc := range cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			opts := goldenOptions(t, tc)
			res, err := format.Source(context.Background(), testutil.ReadFile(t, tc.InputPath), filepath.Base(tc.InputPath), opts)
			require.NoError(t, err)
			width := opts.LineLength
			if width == 0 {
				width = 120
			}
			assert.Empty(t, overlongLines(string(res.Output), width))
		})
	}

	for _, terms := range []int{4, 12, 24} {
		terms := terms
		for _, width := range []int{40, 60, 80, 100} {
			width := width
			t.Run(fmt.Sprintf("generated %d terms at %d", terms, width), func(t *testing.T) {
				t.Parallel()

				opts := format.Options{LineLength: width}
				res, err := format.Source(context.Background(), []byte(longSource(terms)), "generated.sol", opts)
				require.NoError(t, err)
				assert.Empty(t, overlongLines(string(res.Output), width), "\n%s", res.Output)

				again, err := format.Source(context.Background(), res.Output, "generated.sol", opts)
				require.NoError(t, err)
				assert.False(t, again.Changed)
			})
		}
	}
}

// longSource builds a contract whose statements grow with terms.
func longSource(terms int) string {
	operands := make([]string, terms)
	for i := range operands {
		operands[i] = fmt.Sprintf("value%d", i)
	}
	return "contract Generated {\n" +
		"    event Settled(uint256 a, uint256 b, uint256 c);\n\n" +
		"    function run(uint256 value0, uint256 value1) public returns (uint256) {\n" +
		"        uint256 total = " + strings.Join(operands, " + ") + ";\n" +
		"        total = ledger.lookup(value0).scaled(value1).rounded(total).amount;\n" +
		"        emit Settled(" + strings.Join(operands, ", ") + ");\n" +
		"        return value0 > value1 ? value0 + value1 * total : value1 - value0 / total;\n" +
		"    }\n" +
		"}\n"
}

// overlongLines returns the lines of out wider than width. Disabled lines and
// lines holding a single token are left out.
func overlongLines(out string, width int) []string {
	var long []string
	disabled, skipNext := false, false
	for _, line := range strings.Split(out, "\n") {
		skip := disabled || skipNext
		skipNext = false
		switch {
		case strings.Contains(line, "forgefmt: disable-start"):
			disabled, skip = true, true
		case strings.Contains(line, "forgefmt: disable-end"):
			disabled, skip = false, true
		case strings.Contains(line, "forgefmt: disable-next-line"):
			skipNext = true
		case strings.Contains(line, "forgefmt: disable-line"):
			skip = true
		}
		if skip || runewidth.StringWidth(line) <= width || !strings.ContainsRune(strings.TrimSpace(line), ' ') {
			continue
		}
		long = append(long, line)
	}
	return long
}

func TestFormatterRefusesMalformedCorpus(t *testing.T) {
	t.Parallel()

	files, err := testutil.CorpusFiles("malformed")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			t.Parallel()

			res, err := format.Source(context.Background(), testutil.ReadFile(t, path), filepath.Base(path), format.Options{})
			require.Error(t, err)
			assert.True(t, format.IsErrUnsafeToFormat(err), "unexpected error: %v", err)
			assert.Empty(t, res.Output)
			assert.NotEmpty(t, res.Diagnostics)
		})
	}
}

// commentLexemes returns every comment in src, line comments without their
// trailing blanks.
func commentLexemes(src []byte) []string {
	var out []string
	for _, c := range format.ExtractComments(src, lexer.Lex(src).Tokens) {
		out = append(out, c.Text)
	}
	return out
}
