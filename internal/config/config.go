// Package config resolves formatter options from foundry.toml and .editorconfig files.
package config

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/format"
)

// FileName is the project configuration file looked up from formatted files.
const FileName = "foundry.toml"

const defaultProfile = "default"

// Config is the resolved configuration for one file.
type Config struct {
	// Path is the foundry.toml the options came from, or empty.
	Path string
	// Root is the directory Ignore globs are relative to.
	Root    string
	Options format.Options
	Ignore  []string
}

// fmtTable mirrors the [fmt] table. Pointer fields distinguish unset keys.
type fmtTable struct {
	LineLength                *int     `toml:"line_length"`
	TabWidth                  *int     `toml:"tab_width"`
	BracketSpacing            *bool    `toml:"bracket_spacing"`
	IntTypes                  *string  `toml:"int_types"`
	MultilineFuncHeader       *string  `toml:"multiline_func_header"`
	QuoteStyle                *string  `toml:"quote_style"`
	NumberUnderscore          *string  `toml:"number_underscore"`
	HexUnderscore             *string  `toml:"hex_underscore"`
	SingleLineStatementBlocks *string  `toml:"single_line_statement_blocks"`
	OverrideSpacing           *bool    `toml:"override_spacing"`
	WrapComments              *bool    `toml:"wrap_comments"`
	Ignore                    []string `toml:"ignore"`
	ContractNewLines          *bool    `toml:"contract_new_lines"`
	SortImports               *bool    `toml:"sort_imports"`
}

type profile struct {
	Fmt fmtTable `toml:"fmt"`
}

type file struct {
	Fmt     fmtTable           `toml:"fmt"`
	Profile map[string]profile `toml:"profile"`
}

// overlay copies every key set in src over t.
func (t *fmtTable) overlay(src fmtTable) {
	setIf(&t.LineLength, src.LineLength)
	setIf(&t.TabWidth, src.TabWidth)
	setIf(&t.BracketSpacing, src.BracketSpacing)
	setIf(&t.IntTypes, src.IntTypes)
	setIf(&t.MultilineFuncHeader, src.MultilineFuncHeader)
	setIf(&t.QuoteStyle, src.QuoteStyle)
	setIf(&t.NumberUnderscore, src.NumberUnderscore)
	setIf(&t.HexUnderscore, src.HexUnderscore)
	setIf(&t.SingleLineStatementBlocks, src.SingleLineStatementBlocks)
	setIf(&t.OverrideSpacing, src.OverrideSpacing)
	setIf(&t.WrapComments, src.WrapComments)
	setIf(&t.ContractNewLines, src.ContractNewLines)
	setIf(&t.SortImports, src.SortImports)
	if src.Ignore != nil {
		t.Ignore = src.Ignore
	}
}

func setIf[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// apply writes the keys set in t into opts.
func (t fmtTable) apply(opts *format.Options) error {
	if t.LineLength != nil {
		opts.LineLength = *t.LineLength
	}
	if t.TabWidth != nil {
		opts.TabWidth = *t.TabWidth
	}
	if t.BracketSpacing != nil {
		opts.BracketSpacing = *t.BracketSpacing
	}
	if t.OverrideSpacing != nil {
		opts.OverrideSpacing = *t.OverrideSpacing
	}
	if t.WrapComments != nil {
		opts.WrapComments = *t.WrapComments
	}
	if t.ContractNewLines != nil {
		opts.ContractNewLines = *t.ContractNewLines
	}
	if t.SortImports != nil {
		opts.SortImports = *t.SortImports
	}
	return errors.Join(
		parseEnum("int_types", t.IntTypes, intTypes, &opts.IntTypes),
		parseEnum("multiline_func_header", t.MultilineFuncHeader, multilineFuncHeaders, &opts.MultilineFuncHeader),
		parseEnum("quote_style", t.QuoteStyle, quoteStyles, &opts.QuoteStyle),
		parseEnum("number_underscore", t.NumberUnderscore, numberUnderscores, &opts.NumberUnderscore),
		parseEnum("hex_underscore", t.HexUnderscore, hexUnderscores, &opts.HexUnderscore),
		parseEnum("single_line_statement_blocks", t.SingleLineStatementBlocks, singleLineBlocks, &opts.SingleLineStatementBlocks),
	)
}

var (
	intTypes = map[string]format.IntTypes{
		"long":     format.IntTypesLong,
		"short":    format.IntTypesShort,
		"preserve": format.IntTypesPreserve,
	}
	multilineFuncHeaders = map[string]format.MultilineFuncHeader{
		"attributes_first": format.MultilineFuncHeaderAttributesFirst,
		"params_first":     format.MultilineFuncHeaderParamsFirst,
		"all":              format.MultilineFuncHeaderAll,
		"all_params":       format.MultilineFuncHeaderAllParams,
	}
	quoteStyles = map[string]format.QuoteStyle{
		"double":   format.QuoteStyleDouble,
		"single":   format.QuoteStyleSingle,
		"preserve": format.QuoteStylePreserve,
	}
	numberUnderscores = map[string]format.NumberUnderscore{
		"preserve":  format.NumberUnderscorePreserve,
		"remove":    format.NumberUnderscoreRemove,
		"thousands": format.NumberUnderscoreThousands,
	}
	hexUnderscores = map[string]format.HexUnderscore{
		"remove":   format.HexUnderscoreRemove,
		"preserve": format.HexUnderscorePreserve,
		"bytes":    format.HexUnderscoreBytes,
	}
	singleLineBlocks = map[string]format.SingleLineBlockStyle{
		"preserve": format.SingleLineBlockPreserve,
		"single":   format.SingleLineBlockSingle,
		"multi":    format.SingleLineBlockMulti,
	}
)

func parseEnum[T any](key string, value *string, values map[string]T, dst *T) error {
	if value == nil {
		return nil
	}
	v, ok := values[*value]
	if !ok {
		return errors.Errorf("invalid %s %q", key, *value)
	}
	*dst = v
	return nil
}

// Decode reads the formatter settings of a foundry.toml document. Keys of
// [profile.default.fmt] override the ones of [fmt].
func Decode(data []byte, opts *format.Options) ([]string, error) {
	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errors.Errorf("decode %s: %w", FileName, err)
	}
	table := f.Fmt
	if p, ok := f.Profile[defaultProfile]; ok {
		table.overlay(p.Fmt)
	}
	if err := table.apply(opts); err != nil {
		return nil, err
	}
	return table.Ignore, nil
}

// Load reads the configuration file at path.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("read config: %w", err)
	}
	cfg := &Config{Path: path, Root: filepath.Dir(path)}
	if cfg.Ignore, err = Decode(data, &cfg.Options); err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the nearest foundry.toml in dir or one of its parents.
func Find(fs afero.Fs, dir string) (string, bool, error) {
	dir = filepath.Clean(dir)
	for {
		candidate := filepath.Join(dir, FileName)
		ok, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", false, errors.Errorf("stat %s: %w", candidate, err)
		}
		if ok {
			return candidate, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Resolve computes the options for file. explicit names a configuration file
// to use instead of searching from the file's directory. Editor settings fill
// in the widths foundry.toml leaves unset.
func Resolve(fs afero.Fs, file, explicit string) (*Config, error) {
	cfg := &Config{Root: filepath.Dir(file)}
	configPath := explicit
	if configPath == "" {
		found, ok, err := Find(fs, filepath.Dir(file))
		if err != nil {
			return nil, err
		}
		if ok {
			configPath = found
		}
	}

	editor, err := editorSettings(fs, file)
	if err != nil {
		return nil, err
	}
	cfg.Options.LineLength = editor.lineLength
	cfg.Options.TabWidth = editor.tabWidth

	if configPath == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fs, configPath)
	if err != nil {
		return nil, errors.Errorf("read config: %w", err)
	}
	cfg.Path, cfg.Root = configPath, filepath.Dir(configPath)
	if cfg.Ignore, err = Decode(data, &cfg.Options); err != nil {
		return nil, errors.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Ignored reports whether file matches one of the ignore globs. Globs are
// matched against the slash-separated path relative to Root.
func (c *Config) Ignored(file string) (bool, error) {
	if len(c.Ignore) == 0 {
		return false, nil
	}
	rel, err := filepath.Rel(c.Root, file)
	if err != nil {
		return false, nil //nolint:nilerr // files outside the root are never ignored
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false, nil
	}
	for _, pattern := range c.Ignore {
		ok, err := doublestar.Match(path.Clean(pattern), rel)
		if err != nil {
			return false, errors.Errorf("ignore pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
