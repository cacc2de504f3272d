package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func inFunction(body string) string {
	return "contract C {\n    function f() public {\n" + body + "    }\n}\n"
}

func TestSemicolonCountsTowardsLineLength(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		src   string
		width int
		want  string
	}{
		"call arguments": {
			src:   inFunction("        foo(aaaa, bbbb, cccc);\n"),
			width: 29,
			want: inFunction("        foo(\n" +
				"            aaaa, bbbb, cccc\n" +
				"        );\n"),
		},
		"declaration initializer": {
			src:   inFunction("        uint256 x = aaaa + bbbb + cccc;\n"),
			width: 38,
			want: inFunction("        uint256 x =\n" +
				"            aaaa + bbbb + cccc;\n"),
		},
		"state variable initializer": {
			src:   "contract C {\n    uint256[] arr = [uint256(1), 2, 3];\n}\n",
			width: 38,
			want:  "contract C {\n    uint256[] arr =\n        [uint256(1), 2, 3];\n}\n",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			opts := Options{LineLength: tt.width}
			got := formatString(t, tt.src, opts)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, formatString(t, got, opts))
		})
	}
}

func TestConditionalBreaksBeforeOperators(t *testing.T) {
	t.Parallel()

	src := inFunction("        x = someCondition ? someVeryLongValueNumberOne : someVeryLongValueNumberTwo;\n")
	want := inFunction("        x = someCondition\n" +
		"            ? someVeryLongValueNumberOne\n" +
		"            : someVeryLongValueNumberTwo;\n")

	opts := Options{LineLength: 50}
	got := formatString(t, src, opts)
	assert.Equal(t, want, got)
	assert.Equal(t, got, formatString(t, got, opts))
}

func TestBinaryExpressionBreaksBeforeOperators(t *testing.T) {
	t.Parallel()

	src := inFunction("        uint256 total = balances[msg.sender] + amount * multiplier / DENOMINATOR - fee(amount, id, msg.sender);\n")

	for _, width := range []int{60, 80, 100} {
		opts := Options{LineLength: width}
		got := formatString(t, src, opts)
		lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			assert.LessOrEqual(t, displayWidth(line), width, "line %q", line)
			for _, op := range []string{"+", "-", "*", "/", "="} {
				assert.NotEqual(t, op, trimmed, "operator alone on a line at width %d", width)
				if op != "=" {
					assert.False(t, strings.HasSuffix(trimmed, " "+op), "line %q ends with %s", line, op)
				}
			}
		}
		assert.Equal(t, got, formatString(t, got, opts), "width %d", width)
	}
}

func TestMemberChainBreaksOneAccessPerLine(t *testing.T) {
	t.Parallel()

	src := inFunction("        x = registry.lookupAccount(owner).balanceOf(token).scaledBy(factor).rounded;\n")

	tests := map[string]struct {
		width int
		want  string
	}{
		"fits": {
			width: 120,
			want:  src,
		},
		"broken": {
			width: 40,
			want: inFunction("        x = registry\n" +
				"            .lookupAccount(owner)\n" +
				"            .balanceOf(token)\n" +
				"            .scaledBy(factor)\n" +
				"            .rounded;\n"),
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			opts := Options{LineLength: tt.width}
			got := formatString(t, src, opts)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, formatString(t, got, opts))
		})
	}
}

func TestMemberChainKeepsCallOnItsReceiver(t *testing.T) {
	t.Parallel()

	src := inFunction("        token.safeTransferFrom(msg.sender, address(this), amount);\n")
	want := inFunction("        token.safeTransferFrom(\n" +
		"            msg.sender, address(this), amount\n" +
		"        );\n")
	assert.Equal(t, want, formatString(t, src, Options{LineLength: 50}))
}
