// Package format provides the formatter core APIs and primitives for Solidity source formatting.
package format

import (
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/syntax"
)

const (
	defaultLineLength = 120
	defaultTabWidth   = 4
)

// IntTypes selects how the uint/int aliases are written.
type IntTypes uint8

const (
	// IntTypesLong writes uint256 and int256.
	IntTypesLong IntTypes = iota
	// IntTypesShort writes uint and int.
	IntTypesShort
	// IntTypesPreserve keeps the source spelling.
	IntTypesPreserve
)

// MultilineFuncHeader selects how an overlong function header is broken.
type MultilineFuncHeader uint8

const (
	// MultilineFuncHeaderAttributesFirst breaks the attributes before the parameters.
	MultilineFuncHeaderAttributesFirst MultilineFuncHeader = iota
	// MultilineFuncHeaderParamsFirst breaks the parameters before the attributes.
	MultilineFuncHeaderParamsFirst
	// MultilineFuncHeaderAll breaks both the parameters and the attributes.
	MultilineFuncHeaderAll
	// MultilineFuncHeaderAllParams is ParamsFirst that also breaks parameters
	// whenever the header does not fit, even with a single parameter.
	MultilineFuncHeaderAllParams
)

// QuoteStyle selects the string literal quote character.
type QuoteStyle uint8

const (
	QuoteStyleDouble QuoteStyle = iota
	QuoteStyleSingle
	QuoteStylePreserve
)

// quote returns the quote character, or 0 when the source quote is kept.
func (q QuoteStyle) quote() byte {
	switch q {
	case QuoteStyleDouble:
		return '"'
	case QuoteStyleSingle:
		return '\''
	}
	return 0
}

// NumberUnderscore selects how underscores in decimal literals are written.
type NumberUnderscore uint8

const (
	NumberUnderscorePreserve NumberUnderscore = iota
	NumberUnderscoreRemove
	// NumberUnderscoreThousands groups digits by three.
	NumberUnderscoreThousands
)

// HexUnderscore selects how underscores in hex string literals are written.
type HexUnderscore uint8

const (
	HexUnderscoreRemove HexUnderscore = iota
	HexUnderscorePreserve
	// HexUnderscoreBytes separates every byte.
	HexUnderscoreBytes
)

// SingleLineBlockStyle selects how blocks with one statement are written.
type SingleLineBlockStyle uint8

const (
	SingleLineBlockPreserve SingleLineBlockStyle = iota
	SingleLineBlockSingle
	SingleLineBlockMulti
)

// Options configure formatter behavior. Zero values select the defaults.
type Options struct {
	LineLength                int
	TabWidth                  int
	BracketSpacing            bool
	IntTypes                  IntTypes
	MultilineFuncHeader       MultilineFuncHeader
	QuoteStyle                QuoteStyle
	NumberUnderscore          NumberUnderscore
	HexUnderscore             HexUnderscore
	SingleLineStatementBlocks SingleLineBlockStyle
	OverrideSpacing           bool
	WrapComments              bool
	SortImports               bool
	ContractNewLines          bool
}

// Result is the full-document formatting result.
type Result struct {
	Output      []byte
	Changed     bool
	Diagnostics []syntax.Diagnostic
}

// UnsafeReason identifies why a request was refused as unsafe.
type UnsafeReason string

const (
	// UnsafeReasonInvalidUTF8 indicates invalid UTF-8 bytes in the source input.
	UnsafeReasonInvalidUTF8 UnsafeReason = "invalid_utf8"
	// UnsafeReasonSyntaxErrors indicates fail-closed refusal due to parser/lexer error diagnostics.
	UnsafeReasonSyntaxErrors UnsafeReason = "syntax_errors"
	// UnsafeReasonInternalError indicates the formatter produced output that does not parse.
	UnsafeReasonInternalError UnsafeReason = "internal_error"
)

// ErrUnsafeToFormat is returned when formatting is refused due to unsafe input state.
type ErrUnsafeToFormat struct {
	Reason      UnsafeReason
	Message     string
	URI         string
	Diagnostics []syntax.Diagnostic
}

func (e *ErrUnsafeToFormat) Error() string {
	if e == nil {
		return "unsafe to format"
	}
	prefix := "unsafe to format"
	if e.URI != "" {
		prefix = e.URI + ": " + prefix
	}
	if e.Message == "" {
		return fmt.Sprintf("%s (%s)", prefix, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", prefix, e.Reason, e.Message)
}

// IsErrUnsafeToFormat reports whether err is a formatter safety refusal.
func IsErrUnsafeToFormat(err error) bool {
	var target *ErrUnsafeToFormat
	return AsUnsafeToFormat(err, &target)
}

// AsUnsafeToFormat reports whether err contains an ErrUnsafeToFormat.
func AsUnsafeToFormat(err error, target **ErrUnsafeToFormat) bool {
	if err == nil || target == nil {
		return false
	}
	return errors.As(err, target)
}

func normalizeOptions(opts Options) (Options, error) {
	if opts.LineLength < 0 {
		return Options{}, errors.Errorf("invalid LineLength %d", opts.LineLength)
	}
	if opts.TabWidth < 0 {
		return Options{}, errors.Errorf("invalid TabWidth %d", opts.TabWidth)
	}
	if opts.LineLength == 0 {
		opts.LineLength = defaultLineLength
	}
	if opts.TabWidth == 0 {
		opts.TabWidth = defaultTabWidth
	}
	return opts, nil
}
