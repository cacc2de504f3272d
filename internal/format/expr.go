package format

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

func (f *formatter) visitExpr(e syntax.Expression) error {
	switch e := e.(type) {
	case *syntax.Identifier:
		return f.writeChunkSpan(e.Loc.Start, e.Loc.End, e.Name)
	case *syntax.BoolLiteral:
		return f.writeChunkSpan(e.Loc.Start, e.Loc.End, strconv.FormatBool(e.Value))
	case *syntax.NumberLiteral:
		return f.visitNumber(e)
	case *syntax.YulPath, *syntax.YulNumber, *syntax.YulCall:
		return f.visitYulExpr(e)
	case *syntax.StringLiteral:
		for _, p := range e.Parts {
			if err := f.writeChunkSpan(p.Loc.Start, p.Loc.End, f.quoteStr(p, "")); err != nil {
				return err
			}
		}
		return nil
	case *syntax.HexLiteral:
		for _, p := range e.Parts {
			raw := string(p.Loc.Slice(f.src))
			if err := f.writeChunkSpan(p.Loc.Start, p.Loc.End, f.formatHexLiteral(p, raw)); err != nil {
				return err
			}
		}
		return nil
	case *syntax.ElementaryType:
		name := intTypeName(e.Name, f.opts.IntTypes)
		if e.Payable {
			name += " payable"
		}
		return f.writeChunkSpan(e.Loc.Start, e.Loc.End, name)
	case *syntax.MappingType:
		return f.visitMapping(e)
	case *syntax.ArrayLiteral:
		return f.visitArrayLiteral(e)
	case *syntax.TupleExpression:
		return f.visitTuple(e)
	case *syntax.MemberAccess:
		return f.visitMemberAccess(e)
	case *syntax.IndexAccess:
		if err := f.visit(e.Expr); err != nil {
			return err
		}
		return f.visitSuffix(e)
	case *syntax.IndexRange:
		if err := f.visit(e.Expr); err != nil {
			return err
		}
		return f.visitSuffix(e)
	case *syntax.FunctionCall:
		if err := f.visit(e.Callee); err != nil {
			return err
		}
		return f.visitSuffix(e)
	case *syntax.CallOptions:
		if err := f.visit(e.Callee); err != nil {
			return err
		}
		return f.visitSuffix(e)
	case *syntax.UnaryExpression:
		return f.visitUnary(e)
	case *syntax.BinaryExpression:
		if err := f.visit(e.Left); err != nil {
			return err
		}
		_, err := f.grouped(func() error {
			return f.writeBrokenBefore(func() error {
				return f.writeOperand(e.Right.Span().Start, e.Op, e.Right)
			})
		})
		return err
	case *syntax.AssignExpression:
		if err := f.visit(e.Left); err != nil {
			return err
		}
		if err := f.writeText(e.Op); err != nil {
			return err
		}
		return f.visitAssignment(e.Right)
	case *syntax.ConditionalExpression:
		return f.visitConditional(e)
	case *syntax.NewExpression:
		if err := f.writeChunkAt(e.Loc.Start, "new"); err != nil {
			return err
		}
		return f.visit(e.Type)
	}
	return &InvalidItemError{Span: e.Span(), Kind: nodeKind(e)}
}

func (f *formatter) visitNumber(n *syntax.NumberLiteral) error {
	val := n.Value
	if !n.Hex {
		val = formatNumber(val, f.opts.NumberUnderscore)
	}
	end := n.Loc.End
	if n.Unit != nil {
		end = n.Unit.Loc.Start
	}
	if err := f.writeChunkSpan(n.Loc.Start, end, val); err != nil {
		return err
	}
	if n.Unit == nil {
		return nil
	}
	return f.writeChunkSpan(n.Unit.Loc.Start, n.Unit.Loc.End, n.Unit.Name)
}

// visitAssignment writes the right-hand side of an assignment: on the current
// line, then indented, then on the next line, and split as a last resort.
func (f *formatter) visitAssignment(e syntax.Expression) error {
	fits, err := f.tryOnSingleLine(func() error { return f.visit(e) })
	if err != nil || fits {
		return err
	}

	start := e.Span().Start
	if err := f.writePostfixCommentsBefore(start); err != nil {
		return err
	}
	if err := f.writePrefixCommentsBefore(start); err != nil {
		return err
	}

	fits, err = f.tryOnSingleLine(func() error {
		return f.indented(1, func() error { return f.visit(e) })
	})
	if err != nil || fits {
		return err
	}

	fitsNextLine := false
	err = f.indented(1, func() error {
		tx, err := f.transact(func() error {
			if err := f.write("\n"); err != nil {
				return err
			}
			var err error
			fitsNextLine, err = f.tryOnSingleLine(func() error { return f.visit(e) })
			return err
		})
		if err != nil || !fitsNextLine {
			return err
		}
		return tx.commit()
	})
	if err != nil || fitsNextLine {
		return err
	}
	return f.indentedIf(isUnsplittable(e), 1, func() error { return f.visit(e) })
}

// isUnsplittable reports whether e renders as a single token sequence that
// has no break opportunity of its own.
func isUnsplittable(e syntax.Expression) bool {
	switch e.(type) {
	case *syntax.Identifier, *syntax.NumberLiteral, *syntax.BoolLiteral, *syntax.StringLiteral, *syntax.HexLiteral:
		return true
	}
	return false
}

// visitList writes a parenthesized, comma separated list after prefix.
func visitList[T syntax.Node](f *formatter, prefix string, items []T, start, end text.ByteOffset, parenRequired bool) error {
	if prefix != "" {
		if err := f.writeText(prefix); err != nil {
			return err
		}
	}
	if len(items) == 0 && !parenRequired {
		return nil
	}
	open := "("
	if prefix != "" {
		open = " ("
	}
	if err := f.write(open); err != nil {
		return err
	}

	firstNext := noOffset
	if len(items) > 0 {
		firstNext = items[0].Span().Start
	}
	first := surrounding("", start, firstNext)
	last := surrounding(")", noOffset, end)
	if len(items) == 0 {
		return f.surrounded(first, last, func(bool) error {
			return f.writeChunkAt(max(end, 0), "")
		})
	}
	return f.surrounded(first, last, func(multiline bool) error {
		chunks, err := itemsToChunks(f, end, items)
		if err != nil {
			return err
		}
		if multiline {
			if multiline, err = f.areChunksSeparatedMultiline("{}", chunks, ","); err != nil {
				return err
			}
		}
		return f.writeChunksSeparated(chunks, ",", multiline)
	})
}

// visitArgs writes a `{name: value, ...}` block.
func (f *formatter) visitArgs(sp text.Span, args []*syntax.NamedArgument) error {
	if err := f.write("{"); err != nil {
		return err
	}
	chunks := make([]Chunk, 0, len(args))
	for i, arg := range args {
		next := sp.End
		if i+1 < len(args) {
			next = args[i+1].Loc.Start
		}
		c, err := f.visitToChunk(arg.Loc.Start, next, arg)
		if err != nil {
			return err
		}
		chunks = append(chunks, c)
	}
	if len(chunks) > 0 && len(chunks[0].PrefixComments) == 0 && len(chunks[0].PostfixCommentsBefore) == 0 && !f.opts.BracketSpacing {
		chunks[0].NeedsSpace = spaced(false)
	}

	multiline, err := f.areChunksSeparatedMultiline("{}}", chunks, ",")
	if err != nil {
		return err
	}
	err = f.indentedIf(multiline, 1, func() error {
		return f.writeChunksSeparated(chunks, ",", multiline)
	})
	if err != nil {
		return err
	}

	closing := "}"
	switch {
	case multiline && !f.isBeginningOfLine():
		closing = "\n}"
	case f.opts.BracketSpacing && len(args) > 0:
		closing = " }"
	}
	closeAt := sp.End
	if len(args) > 0 {
		closeAt = args[len(args)-1].Loc.End
	}
	return f.writeChunk(f.chunkAt(closeAt, noOffset, spaced(false), closing))
}

func (f *formatter) visitNamedArgument(arg *syntax.NamedArgument) error {
	_, err := f.grouped(func() error {
		if err := f.writeChunkAt(arg.Name.Loc.Start, arg.Name.Name+":"); err != nil {
			return err
		}
		return f.visit(arg.Value)
	})
	return err
}

func (f *formatter) visitUnary(e *syntax.UnaryExpression) error {
	if e.Postfix {
		if err := f.visit(e.Operand); err != nil {
			return err
		}
		return f.writeChunk(f.chunkAt(e.Loc.End, noOffset, spaced(false), e.Op))
	}
	operandStart := e.Operand.Span().Start
	if err := f.writeChunkAt(operandStart, e.Op); err != nil {
		return err
	}
	operand, err := f.visitToChunk(operandStart, e.Loc.End, e.Operand)
	if err != nil {
		return err
	}
	operand.NeedsSpace = spaced(isWordOperator(e.Op))
	return f.writeChunk(operand)
}

func isWordOperator(op string) bool {
	for _, r := range op {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return op != ""
}

// writeBrokenBefore writes render on the current line when it fits there and
// on a new line otherwise, so an operator never ends a line.
func (f *formatter) writeBrokenBefore(render func() error) error {
	fits, err := f.tryOnSingleLine(render)
	if err != nil || fits {
		return err
	}
	if err := f.writeWhitespaceSeparator(true); err != nil {
		return err
	}
	return render()
}

// writeOperand writes op and the operand after it. The operand always starts
// on the line of op.
func (f *formatter) writeOperand(off text.ByteOffset, op string, operand syntax.Expression) error {
	if err := f.writeChunkAt(off, op); err != nil {
		return err
	}
	if err := f.write(" "); err != nil {
		return err
	}
	return f.visit(operand)
}

func (f *formatter) visitConditional(e *syntax.ConditionalExpression) error {
	if err := f.visit(e.Cond); err != nil {
		return err
	}
	writeThen := func() error { return f.writeOperand(e.Then.Span().Start, "?", e.Then) }
	writeElse := func() error { return f.writeOperand(e.Else.Span().Start, ":", e.Else) }
	fits, err := f.tryOnSingleLine(func() error {
		if err := writeThen(); err != nil {
			return err
		}
		return writeElse()
	})
	if err != nil || fits {
		return err
	}
	_, err = f.grouped(func() error {
		for _, render := range []func() error{writeThen, writeElse} {
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return err
			}
			if err := render(); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// chainLink is one member of an access chain with the calls and index
// accesses applied to it.
type chainLink struct {
	access   *syntax.MemberAccess
	suffixes []syntax.Expression
}

// postfixOperand returns the expression a call or index access applies to.
func postfixOperand(e syntax.Expression) syntax.Expression {
	switch e := e.(type) {
	case *syntax.FunctionCall:
		return e.Callee
	case *syntax.CallOptions:
		return e.Callee
	case *syntax.IndexAccess:
		return e.Expr
	case *syntax.IndexRange:
		return e.Expr
	}
	return nil
}

// memberChain splits `base.a(1).b[2].c` into base and its links. Calls and
// index accesses above e belong to the caller.
func (f *formatter) memberChain(e *syntax.MemberAccess) (syntax.Expression, []chainLink) {
	links := []chainLink{{access: e}}
	var pending []syntax.Expression
	cur := e.Expr
	for !f.inline.IsDisabled(cur.Span()) {
		if m, ok := cur.(*syntax.MemberAccess); ok {
			slices.Reverse(pending)
			links = append(links, chainLink{access: m, suffixes: pending})
			pending = nil
			cur = m.Expr
			continue
		}
		inner := postfixOperand(cur)
		if inner == nil {
			break
		}
		pending = append(pending, cur)
		cur = inner
	}
	base := cur
	if len(pending) > 0 {
		base = pending[0]
	}
	slices.Reverse(links)
	return base, links
}

// visitMemberAccess keeps a chain on one line when it fits and otherwise puts
// every member on its own indented line.
func (f *formatter) visitMemberAccess(e *syntax.MemberAccess) error {
	base, links := f.memberChain(e)
	if err := f.visit(base); err != nil {
		return err
	}

	writeLinks := func(multiline bool) error {
		for _, l := range links {
			if multiline {
				if err := f.writeWhitespaceSeparator(true); err != nil {
					return err
				}
			}
			if err := f.writeChunkAt(l.access.Member.Loc.Start, "."); err != nil {
				return err
			}
			if err := f.visit(l.access.Member); err != nil {
				return err
			}
			for _, s := range l.suffixes {
				if err := f.visitSuffix(s); err != nil {
					return err
				}
			}
		}
		return nil
	}
	fits, err := f.tryOnSingleLine(func() error { return writeLinks(false) })
	if err != nil || fits {
		return err
	}
	_, err = f.grouped(func() error { return writeLinks(true) })
	return err
}

// visitSuffix writes the part of a call or index access that follows its
// operand.
func (f *formatter) visitSuffix(e syntax.Expression) error {
	if sp := e.Span(); f.inline.IsDisabled(sp) {
		return f.visitSource(sp.WithStart(postfixOperand(e).Span().End))
	}
	switch e := e.(type) {
	case *syntax.FunctionCall:
		if e.Named {
			if err := f.write("("); err != nil {
				return err
			}
			if err := f.visitArgs(e.ArgsSpan, e.NamedArgs); err != nil {
				return err
			}
			return f.write(")")
		}
		return visitList(f, "", e.Args, e.Callee.Span().End, e.Loc.End, true)
	case *syntax.CallOptions:
		return f.visitArgs(e.Loc.WithStart(e.Callee.Span().End), e.Options)
	case *syntax.IndexAccess:
		if err := f.write("["); err != nil {
			return err
		}
		if e.Index != nil {
			if err := f.visit(e.Index); err != nil {
				return err
			}
		}
		return f.write("]")
	case *syntax.IndexRange:
		return f.writeIndexRange(e)
	}
	return errors.Errorf("%T has no suffix", e)
}

func (f *formatter) visitTuple(e *syntax.TupleExpression) error {
	if len(e.Elements) == 1 && e.Elements[0] != nil {
		inner := e.Elements[0]
		return f.surrounded(
			surrounding("(", e.Loc.Start, noOffset),
			surrounding(")", noOffset, e.Loc.End),
			func(bool) error { return f.visit(inner) },
		)
	}

	firstNext := noOffset
	if len(e.Elements) > 0 && e.Elements[0] != nil {
		firstNext = e.Elements[0].Span().Start
	}
	return f.surrounded(
		surrounding("(", e.Loc.Start, firstNext),
		surrounding(")", noOffset, e.Loc.End),
		func(bool) error {
			chunks, err := slotsToChunks(f, e.Elements, e.Loc.End, isNilExpr)
			if err != nil {
				return err
			}
			fits, err := f.tryOnSingleLine(func() error { return f.writeChunksSeparated(chunks, ",", false) })
			if err != nil || fits {
				return err
			}
			return f.writeChunksSeparated(chunks, ",", true)
		},
	)
}

// slotsToChunks renders tuple slots; an empty slot becomes an empty chunk.
func slotsToChunks[T syntax.Node](f *formatter, slots []T, end text.ByteOffset, empty func(T) bool) ([]Chunk, error) {
	present := make([]T, 0, len(slots))
	for _, s := range slots {
		if !empty(s) {
			present = append(present, s)
		}
	}
	rendered, err := itemsToChunks(f, end, present)
	if err != nil {
		return nil, err
	}
	out := make([]Chunk, 0, len(slots))
	for _, s := range slots {
		if empty(s) {
			out = append(out, Chunk{})
			continue
		}
		out = append(out, rendered[0])
		rendered = rendered[1:]
	}
	return out, nil
}

func isNilExpr(e syntax.Expression) bool { return e == nil }

func (f *formatter) visitArrayLiteral(e *syntax.ArrayLiteral) error {
	if err := f.writeChunkAt(e.Loc.Start, "["); err != nil {
		return err
	}
	chunks, err := itemsToChunks(f, e.Loc.End, e.Elements)
	if err != nil {
		return err
	}
	multiline, err := f.areChunksSeparatedMultiline("{}]", chunks, ",")
	if err != nil {
		return err
	}
	err = f.indentedIf(multiline, 1, func() error {
		if err := f.writeChunksSeparated(chunks, ",", multiline); err != nil {
			return err
		}
		if !multiline {
			return nil
		}
		if err := f.writePostfixCommentsBefore(e.Loc.End); err != nil {
			return err
		}
		if err := f.writePrefixCommentsBefore(e.Loc.End); err != nil {
			return err
		}
		return f.writeWhitespaceSeparator(true)
	})
	if err != nil {
		return err
	}
	return f.writeChunkAt(e.Loc.End, "]")
}

func (f *formatter) writeIndexRange(e *syntax.IndexRange) error {
	if err := f.write("["); err != nil {
		return err
	}
	writeSlice := func(multiline bool) error {
		if multiline {
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return err
			}
		}
		_, err := f.grouped(func() error {
			if e.Start != nil {
				if err := f.visit(e.Start); err != nil {
					return err
				}
			}
			if err := f.write(":"); err != nil {
				return err
			}
			if e.End == nil {
				return nil
			}
			c, err := f.visitToChunk(e.End.Span().Start, e.Loc.End, e.End)
			if err != nil {
				return err
			}
			if len(c.PrefixComments) == 0 && len(c.PostfixCommentsBefore) == 0 && (e.Start == nil || f.willItFit(c.Content)) {
				c.NeedsSpace = spaced(false)
			}
			return f.writeChunk(c)
		})
		if err != nil {
			return err
		}
		if multiline {
			return f.writeWhitespaceSeparator(true)
		}
		return nil
	}
	fits, err := f.tryOnSingleLine(func() error { return writeSlice(false) })
	if err != nil {
		return err
	}
	if !fits {
		if err := f.indented(1, func() error { return writeSlice(true) }); err != nil {
			return err
		}
	}
	return f.write("]")
}

func (f *formatter) visitMapping(m *syntax.MappingType) error {
	arrow, hasArrow := f.findNextInSrc(m.Key.Span().End, "=>")
	closeParen, ok := f.findNextInSrc(m.Value.Span().End, ")")
	if !ok {
		closeParen = m.Loc.End
	}
	first := surrounding("mapping(", m.Loc.Start, m.Key.Span().Start)
	last := surrounding(")", closeParen, m.Loc.End).nonSpaced()
	return f.surrounded(first, last, func(multiline bool) error {
		_, err := f.grouped(func() error {
			if err := f.visit(m.Key); err != nil {
				return err
			}
			switch {
			case m.KeyName != nil:
				end := m.Value.Span().Start
				if hasArrow {
					end = arrow
				}
				if err := f.writeChunkSpan(m.KeyName.Loc.Start, end, m.KeyName.Name); err != nil {
					return err
				}
			case hasArrow:
				if err := f.writePostfixCommentsBefore(arrow); err != nil {
					return err
				}
			}

			writeArrowAndValue := func() error {
				if err := f.write("=> "); err != nil {
					return err
				}
				if err := f.visit(m.Value); err != nil {
					return err
				}
				if m.ValueName == nil {
					return nil
				}
				return f.writeChunkAt(m.ValueName.Loc.Start, m.ValueName.Name)
			}
			rest, err := f.simulateToString(writeArrowAndValue)
			if err != nil {
				return err
			}
			if err := f.writeWhitespaceSeparator(multiline && !f.willItFit(rest)); err != nil {
				return err
			}
			if err := writeArrowAndValue(); err != nil {
				return err
			}
			if err := f.writePostfixCommentsBefore(closeParen); err != nil {
				return err
			}
			return f.writePrefixCommentsBefore(closeParen)
		})
		return err
	})
}

// sourceText is the source of sp with all whitespace removed, used to compare
// identifier paths.
func (f *formatter) sourceText(sp text.Span) string {
	return strings.Join(strings.Fields(string(sp.Slice(f.src))), "")
}
