package format

import (
	"strings"

	"github.com/kpumuk/sol-weaver/internal/syntax"
)

// quoteStr re-quotes a string part in the configured style. The source quote
// is kept when the target quote occurs unescaped inside the value.
func (f *formatter) quoteStr(part *syntax.StringPart, prefix string) string {
	q := f.opts.QuoteStyle.quote()
	if q == 0 || q == part.Quote || containsUnescaped(part.Value, q) {
		q = part.Quote
	}
	if part.Unicode {
		prefix = "unicode" + prefix
	}
	return prefix + string(q) + part.Value + string(q)
}

func containsUnescaped(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case c:
			return true
		}
	}
	return false
}

// formatNumber normalizes a decimal, rational or scientific literal: padding
// zeros are dropped and underscores follow the NumberUnderscore option.
func formatNumber(src string, style NumberUnderscore) string {
	value, exp, _ := strings.Cut(strings.ToLower(src), "e")
	value, fract, hasFract := strings.Cut(value, ".")
	if style != NumberUnderscorePreserve {
		value = strings.ReplaceAll(value, "_", "")
		fract = strings.ReplaceAll(fract, "_", "")
		exp = strings.ReplaceAll(exp, "_", "")
	}

	value = strings.TrimLeft(value, "0")
	fract = strings.TrimRight(fract, "0")
	expSign := ""
	if rest, ok := strings.CutPrefix(exp, "-"); ok {
		expSign, exp = "-", rest
	}
	exp = strings.TrimLeft(exp, "0")

	thousands := style == NumberUnderscoreThousands
	var b strings.Builder
	if value == "" || value == "_" {
		b.WriteByte('0')
	} else {
		b.WriteString(groupDigits(value, thousands, false))
	}
	if hasFract {
		b.WriteByte('.')
		if fract == "" {
			b.WriteByte('0')
		} else {
			b.WriteString(groupDigits(fract, thousands, true))
		}
	}
	if exp != "" {
		b.WriteByte('e')
		b.WriteString(expSign)
		b.WriteString(groupDigits(exp, thousands, false))
	}
	return b.String()
}

// groupDigits separates groups of three digits with underscores, counting
// from the right unless fromLeft is set. Short runs stay as they are.
func groupDigits(s string, enabled, fromLeft bool) string {
	if !enabled || len(s) < 5 {
		return s
	}
	var groups []string
	if fromLeft {
		for len(s) > 3 {
			groups = append(groups, s[:3])
			s = s[3:]
		}
		groups = append(groups, s)
	} else {
		for len(s) > 3 {
			groups = append([]string{s[len(s)-3:]}, groups...)
			s = s[:len(s)-3]
		}
		groups = append([]string{s}, groups...)
	}
	return strings.Join(groups, "_")
}

// formatHexLiteral renders one hex"..." part following the HexUnderscore option.
func (f *formatter) formatHexLiteral(part *syntax.StringPart, raw string) string {
	switch f.opts.HexUnderscore {
	case HexUnderscorePreserve:
		return raw
	case HexUnderscoreBytes:
		digits := strings.ReplaceAll(part.Value, "_", "")
		var pairs []string
		for len(digits) > 2 {
			pairs = append(pairs, digits[:2])
			digits = digits[2:]
		}
		if digits != "" {
			pairs = append(pairs, digits)
		}
		p := *part
		p.Value = strings.Join(pairs, "_")
		return f.quoteStr(&p, "hex")
	default:
		p := *part
		p.Value = strings.ReplaceAll(part.Value, "_", "")
		return f.quoteStr(&p, "hex")
	}
}

// intTypeName applies the IntTypes option to an elementary type name.
func intTypeName(name string, style IntTypes) string {
	switch style {
	case IntTypesLong:
		if name == "uint" || name == "int" {
			return name + "256"
		}
	case IntTypesShort:
		if name == "uint256" || name == "int256" {
			return strings.TrimSuffix(name, "256")
		}
	}
	return name
}
