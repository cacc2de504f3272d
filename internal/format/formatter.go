package format

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// traversalContext is the ambient state visitors consult while descending.
type traversalContext struct {
	contract *syntax.ContractDefinition
	function *syntax.FunctionDefinition
	// ifChainSingleLine is set while the head of an if/else chain is rendered;
	// true while the whole chain is attempted on single lines.
	ifChainSingleLine *bool
}

// formatter renders one syntax tree. It is not safe for concurrent use.
type formatter struct {
	src      []byte
	tokens   []lexer.Token
	unit     *syntax.SourceUnit
	opts     Options
	sinks    []*sink
	comments *CommentStore
	inline   *InlineConfig
	ctx      traversalContext
	log      zerolog.Logger
	// trailing is the width of the text the enclosing construct writes after
	// the current one on the same line, such as a statement's semicolon.
	trailing int
	// copiedUntil is the end of the last source line copied verbatim.
	copiedUntil text.ByteOffset
}

func newFormatter(tree *syntax.Tree, opts Options, log zerolog.Logger) (*formatter, []syntax.Diagnostic) {
	comments := ExtractComments(tree.Source, tree.Tokens)
	inline, diags := NewInlineConfig(tree.Source, tree.Tokens, tree.Unit, comments)
	return &formatter{
		src:      tree.Source,
		tokens:   tree.Tokens,
		unit:     tree.Unit,
		opts:     opts,
		sinks:    []*sink{newSink(opts.TabWidth)},
		comments: NewCommentStore(comments),
		inline:   inline,
		log:      log,
	}, diags
}

// format renders the whole tree and returns the output.
func (f *formatter) format() (string, error) {
	if err := f.visit(f.unit); err != nil {
		return "", err
	}
	if len(f.sinks) != 1 {
		return "", errors.Errorf("unbalanced temporary buffers: %d open", len(f.sinks)-1)
	}
	return f.sinks[0].String(), nil
}

// buf is the sink receiving writes: the innermost temporary buffer, if any.
func (f *formatter) buf() *sink { return f.sinks[len(f.sinks)-1] }

// withTempBuf runs fn with writes redirected to a fresh temporary buffer and
// returns what was written.
func (f *formatter) withTempBuf(fn func() error) (string, error) {
	tmp := f.buf().newTemp()
	f.sinks = append(f.sinks, tmp)
	defer func() { f.sinks = f.sinks[:len(f.sinks)-1] }()
	if err := fn(); err != nil {
		return "", err
	}
	return tmp.String(), nil
}

func (f *formatter) write(s string) error { return f.buf().write(s) }

func (f *formatter) writeRaw(s string) error { return f.buf().writeRaw(s) }

func (f *formatter) isBeginningOfLine() bool { return f.buf().isBeginningOfLine() }

func (f *formatter) indented(n int, fn func() error) error {
	b := f.buf()
	b.indent(n)
	defer b.dedent(n)
	return fn()
}

func (f *formatter) indentedIf(cond bool, n int, fn func() error) error {
	if !cond {
		return fn()
	}
	return f.indented(n, fn)
}

// grouped runs fn inside an indent group: the lines after the first line
// written by fn get one extra level. It reports whether that happened.
func (f *formatter) grouped(fn func() error) (bool, error) {
	b := f.buf()
	b.startGroup()
	err := fn()
	return b.endGroup(), err
}

func (f *formatter) withContract(c *syntax.ContractDefinition, fn func() error) error {
	prev := f.ctx.contract
	f.ctx.contract = c
	defer func() { f.ctx.contract = prev }()
	return fn()
}

func (f *formatter) withFunction(fn *syntax.FunctionDefinition, render func() error) error {
	prev := f.ctx.function
	f.ctx.function = fn
	defer func() { f.ctx.function = prev }()
	return render()
}

// terminated runs fn for a construct that is followed by end on the same
// line, so fit checks leave room for it.
func (f *formatter) terminated(end string, fn func() error) error {
	prev := f.trailing
	f.trailing = displayWidth(end)
	defer func() { f.trailing = prev }()
	return fn()
}

// nextCharNeedsSpace reports whether a space belongs between the last
// written character and next.
func (f *formatter) nextCharNeedsSpace(next rune) bool {
	b := f.buf()
	if b.isBeginningOfLine() {
		return false
	}
	last := b.lastChar
	if last == 0 || unicode.IsSpace(last) || unicode.IsSpace(next) {
		return false
	}
	switch last {
	case '{':
		switch next {
		case '{', '[', '(':
			return false
		case '/':
			return true
		}
		return f.opts.BracketSpacing
	case '(', '.', '[':
		return next == '/'
	case '/':
		return true
	}
	switch next {
	case '}':
		return f.opts.BracketSpacing
	case ')', ',', '.', ';', ']':
		return false
	}
	return true
}

// willItFit reports whether s fits on the current line, counting the
// separating space it would need and the trailing text of the enclosing
// construct.
func (f *formatter) willItFit(s string) bool {
	if s == "" {
		return true
	}
	if strings.Contains(s, "\n") {
		return false
	}
	b := f.buf()
	r, _ := utf8.DecodeRuneInString(s)
	width := b.lineIndentLen() + b.currentLineLen + displayWidth(s) + f.trailing
	if f.nextCharNeedsSpace(r) {
		width++
	}
	return width <= f.opts.LineLength
}

func (f *formatter) writeWhitespaceSeparator(multiline bool) error {
	if f.isBeginningOfLine() {
		return nil
	}
	if multiline {
		return f.write("\n")
	}
	return f.write(" ")
}

func (f *formatter) writeSemicolon() error { return f.write(";") }

func (f *formatter) writeEmptyBrackets() error {
	if f.opts.BracketSpacing {
		return f.writeText("{ }")
	}
	return f.writeText("{}")
}

func (f *formatter) findNextLine(off text.ByteOffset) (text.ByteOffset, bool) {
	return text.FindNextLine(f.src, off)
}

// findNextInSrc returns the start of the first token at or after off whose
// text is needle.
func (f *formatter) findNextInSrc(off text.ByteOffset, needle string) (text.ByteOffset, bool) {
	i := sort.Search(len(f.tokens), func(i int) bool { return f.tokens[i].Span.Start >= off })
	for ; i < len(f.tokens); i++ {
		if f.tokens[i].Kind == lexer.TokenEOF {
			break
		}
		if f.tokens[i].Text(f.src) == needle {
			return f.tokens[i].Span.Start, true
		}
	}
	return 0, false
}

// blankLines counts the newlines outside comments between start and end.
func (f *formatter) blankLines(start, end text.ByteOffset) int {
	if start >= end {
		return 0
	}
	return text.LineNewlines(f.src, start, end) - f.comments.commentNewlines(f.src, start, end)
}

// unwrittenWhitespace is the whitespace run between two items, past any stray
// semicolon and before the closing token of the enclosing item.
func (f *formatter) unwrittenWhitespace(from, to text.ByteOffset) text.Span {
	sp := text.Span{Start: from, End: max(from, to)}
	if i := strings.IndexByte(string(sp.Slice(f.src)), ';'); i >= 0 {
		sp.Start = from + text.ByteOffset(i) + 1
	}
	if i := strings.IndexFunc(string(sp.Slice(f.src)), func(r rune) bool { return !unicode.IsSpace(r) }); i >= 0 {
		sp.End = sp.Start + text.ByteOffset(i)
	}
	return sp
}

// visitSource copies the source of sp unchanged and drops the comments inside it.
func (f *formatter) visitSource(sp text.Span) error {
	src := sp.Slice(f.src)
	if !utf8.Valid(src) {
		return errors.Errorf("disabled source at %s is not valid UTF-8", sp)
	}
	f.log.Trace().Stringer("span", sp).Msg("formatting disabled, copying source")
	first, rest, multiline := strings.Cut(string(src), "\n")
	if err := f.writeChunkAt(sp.Start, first); err != nil {
		return err
	}
	if multiline {
		if err := f.writeRaw("\n" + rest); err != nil {
			return err
		}
	}
	f.comments.RemoveAllBefore(sp.End)
	return nil
}

// writeRawSrc copies sp without its trailing whitespace and ends the line.
// sp runs to the end of a source line.
func (f *formatter) writeRawSrc(sp text.Span) error {
	raw := strings.TrimRightFunc(string(sp.Slice(f.src)), unicode.IsSpace)
	if err := f.writeRaw(raw); err != nil {
		return err
	}
	if err := f.writeWhitespaceSeparator(true); err != nil {
		return err
	}
	f.comments.RemoveAllBefore(sp.End)
	f.copiedUntil = max(f.copiedUntil, sp.End)
	return nil
}

// writeLined writes items one per line with the comments interleaved in
// source order. Source blank lines between items collapse to one, and
// needsSpace can ask for a blank line between two neighbors.
func (f *formatter) writeLined(sp text.Span, items []syntax.Node, needsSpace func(prev, next syntax.Node) bool) error {
	nextComment := func() (Comment, bool) {
		c, ok := f.comments.Peek()
		if !ok || c.Span.End >= sp.End {
			return Comment{}, false
		}
		return c, true
	}

	var lastByteWritten text.ByteOffset
	c, hasComment := nextComment()
	switch {
	case hasComment && len(items) > 0:
		lastByteWritten = min(c.Span.Start, items[0].Span().Start)
	case len(items) > 0:
		lastByteWritten = items[0].Span().Start
	case hasComment:
		lastByteWritten = c.Span.Start
	default:
		return nil
	}

	var (
		lastSpan        text.Span
		hasLast         bool
		spaceNeeded     bool
		lastWasDocBlock bool
	)
	for {
		c, hasComment := nextComment()
		if !hasComment && len(items) == 0 {
			break
		}
		isComment := hasComment && (len(items) == 0 || c.Span.Start < items[0].Span().Start)
		var item syntax.Node
		cur := c.Span
		if isComment {
			f.comments.Pop()
		} else {
			item, items = items[0], items[1:]
			cur = item.Span()
		}

		wsSpan := f.unwrittenWhitespace(lastByteWritten, cur.Start)
		rawWS := f.inline.IsDisabled(wsSpan)
		if rawWS {
			if err := f.writeRaw(string(wsSpan.Slice(f.src))); err != nil {
				return err
			}
		}

		if isComment {
			if rawWS {
				if err := f.writeRawComment(c); err != nil {
					return err
				}
				if strings.Contains(string(wsSpan.Slice(f.src)), "\n") {
					spaceNeeded = false
				}
			} else {
				if err := f.writeComment(c, !hasLast); err != nil {
					return err
				}
				if hasLast && c.HasNewlineBefore {
					spaceNeeded = false
				}
			}
		} else {
			if !rawWS {
				if err := f.writeWhitespaceSeparator(true); err != nil {
					return err
				}
				if hasLast && (spaceNeeded || (!lastWasDocBlock && f.blankLines(lastSpan.End, cur.Start) > 1)) {
					if err := f.write("\n"); err != nil {
						return err
					}
				}
			}
			if len(items) > 0 {
				spaceNeeded = needsSpace(item, items[0])
			}
			if err := f.visit(item); err != nil {
				return err
			}
		}

		lastSpan, hasLast = cur, true
		lastWasDocBlock = false
		lastByteWritten = cur.End
		if !isComment {
			// A disabled closing line of the item was copied up to its end.
			lastByteWritten = max(lastByteWritten, f.copiedUntil)
		}
		if isComment {
			lastWasDocBlock = c.Kind == CommentDocBlock
			if next, ok := f.findNextLine(c.Span.End); ok && c.IsLine() {
				lastByteWritten = next
			}
		}
	}

	for _, c := range f.comments.RemovePrefixesBefore(sp.End) {
		if err := f.writeComment(c, false); err != nil {
			return err
		}
	}

	wsSpan := f.unwrittenWhitespace(lastByteWritten, sp.End)
	if f.inline.IsDisabled(wsSpan) {
		ws := string(wsSpan.Slice(f.src))
		if int(wsSpan.End) == len(f.src) {
			ws = strings.TrimSuffix(ws, "\n")
		}
		return f.writeRaw(ws)
	}
	return nil
}

// visit renders any node. Disabled nodes are copied from the source.
func (f *formatter) visit(n syntax.Node) error {
	if sp := n.Span(); f.inline.IsDisabled(sp) {
		return f.visitSource(sp)
	}
	switch n := n.(type) {
	case *syntax.SourceUnit:
		return f.visitSourceUnit(n)
	case *importGroup:
		return f.visitImportGroup(n)
	case *syntax.PragmaDirective:
		return f.visitPragma(n)
	case *syntax.ImportDirective:
		return f.visitImport(n)
	case *syntax.ContractDefinition:
		return f.visitContract(n)
	case *syntax.InheritanceSpecifier:
		return f.visitBase(n)
	case *syntax.StructDefinition:
		return f.visitStruct(n)
	case *syntax.EnumDefinition:
		return f.visitEnum(n)
	case *syntax.EventDefinition:
		return f.visitEvent(n)
	case *syntax.ErrorDefinition:
		return f.visitError(n)
	case *syntax.Parameter:
		return f.visitParameter(n)
	case *syntax.VariableDeclaration:
		return f.visitVarDeclaration(n)
	case *syntax.FunctionDefinition:
		return f.visitFunction(n)
	case *syntax.Attribute:
		return f.visitAttribute(n)
	case *syntax.VariableDefinition:
		return f.visitVarDefinition(n)
	case *syntax.UsingDirective:
		return f.visitUsing(n)
	case *syntax.UsingFunction:
		return f.visitUsingFunction(n)
	case *syntax.TypeDefinition:
		return f.visitTypeDefinition(n)
	case *syntax.StraySemicolon:
		return f.writeChunkAt(n.Loc.Start, ";")
	case syntax.Statement:
		return f.visitStatement(n)
	case syntax.Expression:
		return f.visitExpr(n)
	case *syntax.NamedArgument:
		return f.visitNamedArgument(n)
	}
	return &InvalidItemError{Span: n.Span(), Kind: nodeKind(n)}
}
