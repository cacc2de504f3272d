package format

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// DiagnosticFormatterInvalidInlineConfig reports an unusable formatter directive comment.
const DiagnosticFormatterInvalidInlineConfig syntax.DiagnosticCode = "FMT_INVALID_INLINE_CONFIG"

const inlineConfigPrefix = "forgefmt:"

// InlineConfigItem is a formatter directive found in a comment.
type InlineConfigItem uint8

// InlineConfigItem values.
const (
	DisableNextItem InlineConfigItem = iota
	DisableLine
	DisableNextLine
	DisableStart
	DisableEnd
)

var inlineConfigItems = map[string]InlineConfigItem{
	"disable-next-item": DisableNextItem,
	"disable-line":      DisableLine,
	"disable-next-line": DisableNextLine,
	"disable-start":     DisableStart,
	"disable-end":       DisableEnd,
}

// ParseInlineConfigItem parses a directive name such as "disable-next-line".
func ParseInlineConfigItem(s string) (InlineConfigItem, error) {
	item, ok := inlineConfigItems[s]
	if !ok {
		return 0, errors.Errorf("unknown inline config item %q", s)
	}
	return item, nil
}

type disabledRange struct {
	start, end text.ByteOffset
	// loose ranges disable anything that starts inside them.
	loose bool
}

func (r disabledRange) includes(sp text.Span) bool {
	if sp.Start < r.start {
		return false
	}
	if r.loose {
		return sp.Start <= r.end
	}
	return sp.End <= r.end
}

// InlineConfig holds the source ranges excluded from formatting.
type InlineConfig struct {
	ranges []disabledRange
}

// NewInlineConfig collects the disabled ranges declared by comments. Directives
// that cannot be applied are reported as diagnostics and otherwise ignored.
func NewInlineConfig(src []byte, tokens []lexer.Token, unit *syntax.SourceUnit, comments []Comment) (*InlineConfig, []syntax.Diagnostic) {
	cfg := &InlineConfig{}
	var diags []syntax.Diagnostic
	var items []syntax.Node
	srcEnd := text.ByteOffset(len(src))

	depth := 0
	var disabledFrom text.ByteOffset
	for _, c := range comments {
		body := strings.TrimSpace(c.contents())
		rest, ok := strings.CutPrefix(body, inlineConfigPrefix)
		if !ok {
			continue
		}
		item, err := ParseInlineConfigItem(strings.TrimSpace(rest))
		if err != nil {
			diags = append(diags, inlineConfigDiagnostic(c.Span, err.Error()))
			continue
		}
		switch item {
		case DisableNextItem:
			if items == nil {
				items = syntax.Items(unit)
			}
			if r, ok := nextItemRange(tokens, items, c.Span.End); ok {
				cfg.ranges = append(cfg.ranges, r)
			}
		case DisableLine:
			start := lineStartOf(src, c.Span.Start)
			if start > 0 {
				start--
			}
			end := srcEnd
			if next, ok := text.FindNextLine(src, c.Span.End); ok {
				end = next - 1
			}
			cfg.ranges = append(cfg.ranges, disabledRange{start: start, end: end, loose: true})
		case DisableNextLine:
			start, ok := text.FindNextLine(src, c.Span.End)
			if !ok {
				continue
			}
			end := srcEnd
			if next, ok := text.FindNextLine(src, start); ok {
				end = next
			}
			cfg.ranges = append(cfg.ranges, disabledRange{start: start, end: end, loose: true})
		case DisableStart:
			if depth == 0 {
				disabledFrom = c.Span.End
			}
			depth++
		case DisableEnd:
			if depth == 0 {
				diags = append(diags, inlineConfigDiagnostic(c.Span, "disable-end without a matching disable-start"))
				continue
			}
			depth--
			if depth == 0 {
				cfg.ranges = append(cfg.ranges, disabledRange{start: disabledFrom, end: c.Span.Start})
			}
		}
	}
	if depth > 0 {
		cfg.ranges = append(cfg.ranges, disabledRange{start: disabledFrom, end: srcEnd})
	}
	return cfg, diags
}

// nextItemRange covers the first item starting at the first token after off.
func nextItemRange(tokens []lexer.Token, items []syntax.Node, off text.ByteOffset) (disabledRange, bool) {
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].Span.Start >= off })
	if i == len(tokens) || tokens[i].Kind == lexer.TokenEOF {
		return disabledRange{}, false
	}
	start := tokens[i].Span.Start
	for _, n := range items {
		if sp := n.Span(); sp.Start >= start {
			return disabledRange{start: start, end: sp.End}, true
		}
	}
	return disabledRange{}, false
}

func inlineConfigDiagnostic(sp text.Span, msg string) syntax.Diagnostic {
	return syntax.Diagnostic{
		Code:        DiagnosticFormatterInvalidInlineConfig,
		Message:     msg,
		Severity:    syntax.SeverityWarning,
		Span:        sp,
		Source:      "formatter",
		Recoverable: true,
	}
}

// IsDisabled reports whether sp lies in a range excluded from formatting.
func (c *InlineConfig) IsDisabled(sp text.Span) bool {
	if c == nil {
		return false
	}
	for _, r := range c.ranges {
		if r.includes(sp) {
			return true
		}
	}
	return false
}
