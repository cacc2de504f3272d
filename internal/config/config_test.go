package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpumuk/sol-weaver/internal/format"
)

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.FromSlash(name), []byte(content), 0o644))
	}
	return fs
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		src    string
		want   format.Options
		ignore []string
	}{
		"empty": {},
		"fmt table": {
			src: `
[fmt]
line_length = 80
tab_width = 2
bracket_spacing = true
int_types = "short"
multiline_func_header = "all"
quote_style = "single"
number_underscore = "thousands"
hex_underscore = "bytes"
single_line_statement_blocks = "single"
override_spacing = true
wrap_comments = true
contract_new_lines = true
sort_imports = true
ignore = ["lib/**"]
`,
			want: format.Options{
				LineLength:                80,
				TabWidth:                  2,
				BracketSpacing:            true,
				IntTypes:                  format.IntTypesShort,
				MultilineFuncHeader:       format.MultilineFuncHeaderAll,
				QuoteStyle:                format.QuoteStyleSingle,
				NumberUnderscore:          format.NumberUnderscoreThousands,
				HexUnderscore:             format.HexUnderscoreBytes,
				SingleLineStatementBlocks: format.SingleLineBlockSingle,
				OverrideSpacing:           true,
				WrapComments:              true,
				ContractNewLines:          true,
				SortImports:               true,
			},
			ignore: []string{"lib/**"},
		},
		"profile overrides fmt": {
			src: `
[fmt]
line_length = 80
quote_style = "single"

[profile.default.fmt]
line_length = 100
`,
			want: format.Options{LineLength: 100, QuoteStyle: format.QuoteStyleSingle},
		},
		"other profiles are ignored": {
			src: `
[profile.ci.fmt]
line_length = 60
`,
		},
		"unrelated tables": {
			src: `
[profile.default]
src = "src"
optimizer = true
`,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var got format.Options
			ignore, err := Decode([]byte(tt.src), &got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ignore, ignore)
		})
	}
}

func TestDecodeRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown enum":   "[fmt]\nquote_style = \"backtick\"\n",
		"wrong type":     "[fmt]\nline_length = \"long\"\n",
		"malformed toml": "[fmt\n",
	}
	for name, src := range tests {
		src := src
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var opts format.Options
			_, err := Decode([]byte(src), &opts)
			require.Error(t, err)
		})
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	fs := writeFiles(t, map[string]string{
		"/repo/foundry.toml":           "",
		"/repo/src/nested/Token.sol":   "",
		"/other/src/Token.sol":         "",
		"/repo/lib/dep/foundry.toml":   "",
		"/repo/lib/dep/src/Helper.sol": "",
	})

	got, ok, err := Find(fs, "/repo/src/nested")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("/repo/foundry.toml"), got)

	got, ok, err = Find(fs, "/repo/lib/dep/src")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("/repo/lib/dep/foundry.toml"), got)

	_, ok, err = Find(fs, "/other/src")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	fs := writeFiles(t, map[string]string{
		"/repo/foundry.toml":        "[fmt]\nline_length = 100\nignore = [\"src/generated/**\"]\n",
		"/repo/custom.toml":         "[fmt]\ntab_width = 8\n",
		"/repo/src/Token.sol":       "",
		"/repo/src/generated/A.sol": "",
	})

	cfg, err := Resolve(fs, "/repo/src/Token.sol", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/repo/foundry.toml"), cfg.Path)
	assert.Equal(t, 100, cfg.Options.LineLength)
	assert.Equal(t, 0, cfg.Options.TabWidth)

	ignored, err := cfg.Ignored(filepath.FromSlash("/repo/src/generated/A.sol"))
	require.NoError(t, err)
	assert.True(t, ignored)
	ignored, err = cfg.Ignored(filepath.FromSlash("/repo/src/Token.sol"))
	require.NoError(t, err)
	assert.False(t, ignored)

	cfg, err = Resolve(fs, "/repo/src/Token.sol", "/repo/custom.toml")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Options.LineLength)
	assert.Equal(t, 8, cfg.Options.TabWidth)
}

func TestResolveWithoutConfig(t *testing.T) {
	t.Parallel()

	fs := writeFiles(t, map[string]string{"/tmp/A.sol": ""})
	cfg, err := Resolve(fs, "/tmp/A.sol", "")
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, format.Options{}, cfg.Options)

	ignored, err := cfg.Ignored("/tmp/A.sol")
	require.NoError(t, err)
	assert.False(t, ignored)
}

func TestResolveEditorconfig(t *testing.T) {
	t.Parallel()

	fs := writeFiles(t, map[string]string{
		"/repo/.editorconfig": "root = true\n\n[*.sol]\nindent_size = 2\nmax_line_length = 90\n",
		"/repo/src/Token.sol": "",
		"/repo/README.md":     "",
	})

	cfg, err := Resolve(fs, "/repo/src/Token.sol", "")
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Options.LineLength)
	assert.Equal(t, 2, cfg.Options.TabWidth)

	fs = writeFiles(t, map[string]string{
		"/repo/.editorconfig": "root = true\n\n[*.sol]\nindent_size = 2\nmax_line_length = 90\n",
		"/repo/foundry.toml":  "[fmt]\nline_length = 120\n",
		"/repo/src/Token.sol": "",
	})
	cfg, err = Resolve(fs, "/repo/src/Token.sol", "")
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Options.LineLength, "foundry.toml wins over .editorconfig")
	assert.Equal(t, 2, cfg.Options.TabWidth)
}

func TestIgnoredPatterns(t *testing.T) {
	t.Parallel()

	cfg := &Config{Root: "/repo", Ignore: []string{"lib/**", "src/**/*.t.sol", "./script/Deploy.s.sol"}}
	tests := map[string]bool{
		"/repo/lib/forge-std/src/Test.sol": true,
		"/repo/src/token/Token.t.sol":      true,
		"/repo/src/token/Token.sol":        false,
		"/repo/script/Deploy.s.sol":        true,
		"/elsewhere/lib/A.sol":             false,
	}
	for file, want := range tests {
		file, want := file, want
		t.Run(file, func(t *testing.T) {
			t.Parallel()
			got, err := cfg.Ignored(filepath.FromSlash(file))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
