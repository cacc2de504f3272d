package format

import (
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

func (f *formatter) visitStatement(s syntax.Statement) error {
	switch s := s.(type) {
	case *syntax.Block:
		if s.Unchecked {
			if err := f.writeChunkAt(s.Loc.Start, "unchecked"); err != nil {
				return err
			}
		}
		_, err := f.visitBlock(s.Loc, s.Statements, false, false)
		return err
	case *syntax.VariableStatement:
		return f.visitVarStatement(s)
	case *syntax.ExpressionStatement:
		if err := f.terminated(";", func() error { return f.visit(s.Expr) }); err != nil {
			return err
		}
		return f.writeSemicolon()
	case *syntax.IfStatement:
		return f.visitIf(s, true)
	case *syntax.WhileStatement:
		return f.visitWhile(s)
	case *syntax.DoWhileStatement:
		return f.visitDoWhile(s)
	case *syntax.ForStatement:
		return f.visitFor(s)
	case *syntax.ReturnStatement:
		return f.visitReturn(s)
	case *syntax.EmitStatement:
		return f.visitKeywordCall(s.Loc, "emit", s.Call)
	case *syntax.RevertStatement:
		return f.visitKeywordCall(s.Loc, "revert", s.Call)
	case *syntax.BreakStatement:
		return f.writeChunkSpan(s.Loc.Start, s.Loc.End, "break;")
	case *syntax.ContinueStatement:
		return f.writeChunkSpan(s.Loc.Start, s.Loc.End, "continue;")
	case *syntax.TryStatement:
		return f.visitTry(s)
	case *syntax.AssemblyStatement:
		return f.visitAssembly(s)
	case *syntax.YulBlock:
		_, err := f.visitBlock(s.Loc, s.Statements, false, false)
		return err
	case *syntax.YulVariableDeclaration:
		_, err := f.grouped(func() error {
			if err := f.writeChunkAt(s.Loc.Start, "let"); err != nil {
				return err
			}
			return visitYulAssignment(f, s.Loc, s.Names, s.Value)
		})
		return err
	case *syntax.YulAssignment:
		return visitYulAssignment(f, s.Loc, s.Targets, s.Value)
	case *syntax.YulExpressionStatement:
		return f.visit(s.Call)
	case *syntax.YulIf:
		return f.visitYulIf(s)
	case *syntax.YulFor:
		return f.visitYulFor(s)
	case *syntax.YulSwitch:
		return f.visitYulSwitch(s)
	case *syntax.YulFunctionDefinition:
		return f.visitYulFunction(s)
	case *syntax.YulJump:
		return f.writeChunkSpan(s.Loc.Start, s.Loc.End, s.Keyword)
	}
	return &InvalidItemError{Span: s.Span(), Kind: nodeKind(s)}
}

// nextLineOrEOF is the start of the line after off, or the end of the source.
func (f *formatter) nextLineOrEOF(off text.ByteOffset) text.ByteOffset {
	if next, ok := f.findNextLine(off); ok {
		return next
	}
	return text.ByteOffset(len(f.src))
}

// visitBlock writes statements between braces, one per line. With
// attemptSingleLine a lone statement is first tried on the current line,
// without the braces when attemptOmitBraces is set. It reports whether the
// block ended up on a single line.
//
// When the first or the last line of the block is disabled, that line is
// copied from the source together with the statements on it.
func (f *formatter) visitBlock(sp text.Span, stmts []syntax.Statement, attemptSingleLine, attemptOmitBraces bool) (bool, error) {
	if attemptSingleLine && len(stmts) == 1 {
		fits, err := f.tryOnSingleLine(func() error {
			if !attemptOmitBraces {
				if err := f.write("{ "); err != nil {
					return err
				}
			}
			if err := f.visit(stmts[0]); err != nil {
				return err
			}
			if !attemptOmitBraces {
				return f.write(" }")
			}
			return nil
		})
		if err != nil || fits {
			return fits, err
		}
	}

	startDisabled := f.inline.IsDisabled(sp.WithEnd(sp.Start))
	endDisabled := f.inline.IsDisabled(sp.WithStart(sp.End))
	firstLineEnd := f.nextLineOrEOF(sp.Start)
	lastLineEnd := f.nextLineOrEOF(sp.End)

	if startDisabled {
		if err := f.writeRawSrc(sp.WithEnd(firstLineEnd)); err != nil {
			return false, err
		}
	} else if err := f.writeText("{"); err != nil {
		return false, err
	}

	if len(stmts) == 0 {
		err := f.indented(1, func() error {
			if err := f.writePrefixCommentsBefore(sp.End); err != nil {
				return err
			}
			return f.writePostfixCommentsBefore(sp.End)
		})
		if err != nil {
			return false, err
		}
		return true, f.writeChunkAt(sp.End, "}")
	}

	firstWritable, endWritable := 0, len(stmts)
	if startDisabled {
		for i := len(stmts) - 1; i >= 0; i-- {
			if f.nextLineOrEOF(stmts[i].Span().End) == firstLineEnd {
				firstWritable = i + 1
				break
			}
		}
	}
	if endDisabled {
		for i, s := range stmts {
			if f.nextLineOrEOF(s.Span().End) == lastLineEnd {
				endWritable = i
				break
			}
		}
	}
	var writable []syntax.Statement
	if firstWritable < endWritable {
		writable = stmts[firstWritable:endWritable]
	}

	tailStart := firstLineEnd
	if len(writable) > 0 {
		stmtsSpan := sp.WithStart(writable[0].Span().Start)
		if err := f.writeWhitespaceSeparator(true); err != nil {
			return false, err
		}
		if err := f.writePostfixCommentsBefore(stmtsSpan.Start); err != nil {
			return false, err
		}
		if endDisabled {
			stmtsSpan.End = f.nextLineOrEOF(writable[len(writable)-1].Span().End)
		}
		tailStart = stmtsSpan.End
		items := make([]syntax.Node, len(writable))
		for i, s := range writable {
			items[i] = s
		}
		err := f.indented(1, func() error {
			return f.writeLined(stmtsSpan, items, func(syntax.Node, syntax.Node) bool { return false })
		})
		if err != nil {
			return false, err
		}
		if err := f.writeWhitespaceSeparator(true); err != nil {
			return false, err
		}
	} else if !startDisabled {
		tailStart = lineStartOf(f.src, sp.End)
		if endDisabled && firstLineEnd != lastLineEnd {
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return false, err
			}
		}
	}

	if endDisabled {
		return false, f.writeRawSrc(sp.WithStart(min(tailStart, sp.End)).WithEnd(lastLineEnd))
	}
	if firstLineEnd != lastLineEnd {
		if err := f.writeWhitespaceSeparator(true); err != nil {
			return false, err
		}
	}
	return false, f.writeChunkAt(sp.End, "}")
}

// visitStmtAsBlock writes s as the body of a control statement. A body that is
// not a block is wrapped in braces unless it fits on the current line.
func (f *formatter) visitStmtAsBlock(s syntax.Statement, attemptSingleLine bool) (bool, error) {
	if b, ok := s.(*syntax.Block); ok {
		if b.Unchecked || f.inline.IsDisabled(b.Loc) {
			return false, f.visit(b)
		}
		return f.visitBlock(b.Loc, b.Statements, attemptSingleLine, true)
	}
	return f.visitBlock(s.Span(), []syntax.Statement{s}, attemptSingleLine, true)
}

// shouldAttemptBlockSingleLine applies SingleLineStatementBlocks to the body
// s of a control statement whose header ends at startFrom. Preserve keeps a
// body on one line only when it started on the header line.
func (f *formatter) shouldAttemptBlockSingleLine(s syntax.Statement, startFrom text.ByteOffset) bool {
	switch f.opts.SingleLineStatementBlocks {
	case SingleLineBlockSingle:
		return true
	case SingleLineBlockMulti:
		return false
	}
	endAt := s.Span().Start
	if b, ok := s.(*syntax.Block); ok && len(b.Statements) > 0 {
		endAt = b.Statements[0].Span().Start
	}
	next, ok := f.findNextLine(startFrom)
	if !ok {
		return true
	}
	return next >= endAt
}

// visitIf writes an if statement. At the head of an if/else chain the whole
// chain is first attempted with every branch on a single line.
func (f *formatter) visitIf(s *syntax.IfStatement, chainHead bool) error {
	if !chainHead {
		return f.writeIfStmt(s)
	}
	prev := f.ctx.ifChainSingleLine
	defer func() { f.ctx.ifChainSingleLine = prev }()

	wide := true
	f.ctx.ifChainSingleLine = &wide
	tx, err := f.transact(func() error { return f.writeIfStmt(s) })
	switch {
	case err == nil:
		return tx.commit()
	case !errors.Is(err, errSingleLineBudget):
		return err
	}

	narrow := false
	f.ctx.ifChainSingleLine = &narrow
	return f.writeIfStmt(s)
}

func (f *formatter) writeIfStmt(s *syntax.IfStatement) error {
	wide := f.ctx.ifChainSingleLine != nil && *f.ctx.ifChainSingleLine
	thenStart := s.Then.Span().Start

	if header := s.Loc.WithEnd(thenStart); f.inline.IsDisabled(header) {
		if err := f.visitSource(header); err != nil {
			return err
		}
	} else {
		err := f.surrounded(
			surrounding("if (", s.Loc.Start, s.Cond.Span().Start),
			surrounding(")", noOffset, thenStart),
			func(bool) error {
				if err := f.writePrefixCommentsBefore(s.Cond.Span().End); err != nil {
					return err
				}
				if err := f.visit(s.Cond); err != nil {
					return err
				}
				return f.writePostfixCommentsBefore(thenStart)
			},
		)
		if err != nil {
			return err
		}
	}

	closeParen, ok := f.findNextInSrc(s.Cond.Span().End, ")")
	if !ok {
		closeParen = s.Cond.Span().End
	}
	attempt := wide && f.shouldAttemptBlockSingleLine(s.Then, closeParen)
	thenSingle, err := f.visitStmtAsBlock(s.Then, attempt)
	if err != nil {
		return err
	}
	if wide && !thenSingle {
		return errors.WithStack(errSingleLineBudget)
	}
	if s.Else == nil {
		return nil
	}

	elseStart := s.Else.Span().Start
	if err := f.writePostfixCommentsBefore(elseStart); err != nil {
		return err
	}
	if thenSingle {
		if err := f.write("\n"); err != nil {
			return err
		}
	}
	if err := f.writeChunkAt(elseStart, "else"); err != nil {
		return err
	}
	if elseIf, ok := s.Else.(*syntax.IfStatement); ok {
		if f.inline.IsDisabled(elseIf.Loc) {
			return f.visitSource(elseIf.Loc)
		}
		return f.visitIf(elseIf, false)
	}
	elseSingle, err := f.visitStmtAsBlock(s.Else, attempt)
	if err != nil {
		return err
	}
	if wide && !elseSingle {
		return errors.WithStack(errSingleLineBudget)
	}
	return nil
}

func (f *formatter) visitWhile(s *syntax.WhileStatement) error {
	bodyStart := s.Body.Span().Start
	err := f.surrounded(
		surrounding("while (", s.Loc.Start, noOffset),
		surrounding(")", noOffset, s.Cond.Span().End),
		func(bool) error {
			if err := f.visit(s.Cond); err != nil {
				return err
			}
			return f.writePostfixCommentsBefore(bodyStart)
		},
	)
	if err != nil {
		return err
	}
	closeParen, ok := f.findNextInSrc(s.Cond.Span().End, ")")
	if !ok {
		closeParen = s.Cond.Span().End
	}
	_, err = f.visitStmtAsBlock(s.Body, f.shouldAttemptBlockSingleLine(s.Body, closeParen))
	return err
}

func (f *formatter) visitDoWhile(s *syntax.DoWhileStatement) error {
	if err := f.writeChunkAt(s.Loc.Start, "do"); err != nil {
		return err
	}
	if _, err := f.visitStmtAsBlock(s.Body, false); err != nil {
		return err
	}
	tail := s.Loc.WithStart(s.Body.Span().End)
	if f.inline.IsDisabled(tail) {
		return f.visitSource(tail)
	}
	return f.surrounded(
		surrounding("while (", s.Cond.Span().Start, noOffset),
		surrounding(");", noOffset, s.Loc.End),
		func(bool) error { return f.visit(s.Cond) },
	)
}

func (f *formatter) visitFor(s *syntax.ForStatement) error {
	updateEnd := noOffset
	if s.Update != nil {
		updateEnd = s.Update.Span().End
	}
	writeHeader := func(multiline bool) error {
		if s.Init != nil {
			if err := f.visit(s.Init); err != nil {
				return err
			}
		} else if err := f.writeSemicolon(); err != nil {
			return err
		}
		if multiline {
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return err
			}
		}
		if s.Cond != nil {
			if err := f.visit(s.Cond); err != nil {
				return err
			}
		}
		if err := f.writeSemicolon(); err != nil {
			return err
		}
		if multiline {
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return err
			}
		}
		if s.Update != nil {
			return f.visit(s.Update)
		}
		return nil
	}
	err := f.surrounded(
		surrounding("for (", s.Loc.Start, noOffset),
		surrounding(")", noOffset, updateEnd),
		func(bool) error {
			fits, err := f.tryOnSingleLine(func() error { return writeHeader(false) })
			if err != nil || fits {
				return err
			}
			return writeHeader(true)
		},
	)
	if err != nil {
		return err
	}
	_, err = f.visitStmtAsBlock(s.Body, false)
	return err
}

// visitReturn keeps the returned expression next to the keyword when it fits,
// then tries it alone on the following line before splitting it.
func (f *formatter) visitReturn(s *syntax.ReturnStatement) error {
	if err := f.writePostfixCommentsBefore(s.Loc.Start); err != nil {
		return err
	}
	if err := f.writePrefixCommentsBefore(s.Loc.Start); err != nil {
		return err
	}
	if s.Expr == nil {
		return f.writeChunkSpan(s.Loc.Start, s.Loc.End, "return;")
	}

	if err := f.terminated(";", func() error { return f.writeReturnExpr(s) }); err != nil {
		return err
	}
	return f.writeChunkAt(s.Loc.End, ";")
}

func (f *formatter) writeReturnExpr(s *syntax.ReturnStatement) error {
	exprStart := s.Expr.Span().Start
	writeReturn := func() error {
		if err := f.writeChunkAt(s.Loc.Start, "return"); err != nil {
			return err
		}
		return f.writePostfixCommentsBefore(exprStart)
	}

	fits, err := f.tryOnSingleLine(func() error {
		if err := writeReturn(); err != nil {
			return err
		}
		return f.visit(s.Expr)
	})
	if err != nil {
		return err
	}
	if !fits {
		fitsNextLine := false
		tx, err := f.transact(func() error {
			_, err := f.grouped(func() error {
				if err := writeReturn(); err != nil {
					return err
				}
				if err := f.writeWhitespaceSeparator(true); err != nil {
					return err
				}
				var err error
				fitsNextLine, err = f.tryOnSingleLine(func() error { return f.visit(s.Expr) })
				return err
			})
			return err
		})
		if err != nil {
			return err
		}
		if fitsNextLine {
			err = tx.commit()
		} else {
			tx.rollback()
			if err = writeReturn(); err == nil {
				err = f.visit(s.Expr)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// visitKeywordCall writes `emit Event(...)` or `revert Error(...)`.
func (f *formatter) visitKeywordCall(sp text.Span, keyword string, call syntax.Expression) error {
	if err := f.writeChunkAt(sp.Start, keyword); err != nil {
		return err
	}
	if err := f.terminated(";", func() error { return f.visit(call) }); err != nil {
		return err
	}
	return f.writeSemicolon()
}

func (f *formatter) visitVarStatement(s *syntax.VariableStatement) error {
	if err := f.terminated(";", func() error { return f.writeVarStatement(s) }); err != nil {
		return err
	}
	return f.writeSemicolon()
}

func (f *formatter) writeVarStatement(s *syntax.VariableStatement) error {
	var (
		decl Chunk
		err  error
	)
	if s.Tuple {
		decl, err = f.chunked(s.Loc.Start, noOffset, func() error { return f.writeDeclarationTuple(s) })
	} else {
		d := s.Declarations[0]
		decl, err = f.visitToChunk(d.Loc.Start, noOffset, d)
	}
	if err != nil {
		return err
	}
	multiline := strings.Contains(decl.Content, "\n")
	if err := f.writeChunk(decl); err != nil {
		return err
	}
	if s.Initializer != nil {
		if err := f.write(" ="); err != nil {
			return err
		}
		return f.indentedIf(multiline, 1, func() error { return f.visitAssignment(s.Initializer) })
	}
	return nil
}

func (f *formatter) writeDeclarationTuple(s *syntax.VariableStatement) error {
	end := s.Loc.End
	if s.Initializer != nil {
		end = s.Initializer.Span().Start
	}
	firstNext := noOffset
	if len(s.Declarations) > 0 && s.Declarations[0] != nil {
		firstNext = s.Declarations[0].Loc.Start
	}
	return f.surrounded(
		surrounding("(", s.Loc.Start, firstNext),
		surrounding(")", noOffset, noOffset),
		func(multiline bool) error {
			chunks, err := slotsToChunks(f, s.Declarations, end, func(d *syntax.VariableDeclaration) bool { return d == nil })
			if err != nil {
				return err
			}
			return f.writeChunksSeparated(chunks, ",", multiline)
		},
	)
}

func (f *formatter) visitVarDeclaration(d *syntax.VariableDeclaration) error {
	_, err := f.grouped(func() error {
		if err := f.visit(d.Type); err != nil {
			return err
		}
		if d.Storage != "" {
			if err := f.writeText(d.Storage); err != nil {
				return err
			}
		}
		return f.writeChunkSpan(d.Name.Loc.Start, d.Name.Loc.End, d.Name.Name)
	})
	return err
}

// visitTry writes the try clause and its catch clauses. When they do not fit
// on one line, each multi-line clause continues on the line of the previous one.
func (f *formatter) visitTry(s *syntax.TryStatement) error {
	tryNext := s.Loc.End
	if len(s.Catches) > 0 {
		tryNext = s.Catches[0].Loc.Start
	}
	tryChunk, err := f.chunked(s.Loc.Start, tryNext, func() error {
		if err := f.writeChunkSpan(s.Loc.Start, s.Expr.Span().Start, "try"); err != nil {
			return err
		}
		if err := f.visit(s.Expr); err != nil {
			return err
		}
		if s.HasReturns {
			if err := f.writeTryReturns(s); err != nil {
				return err
			}
		}
		return f.visit(s.Body)
	})
	if err != nil {
		return err
	}

	chunks := []Chunk{tryChunk}
	for _, c := range s.Catches {
		ch, err := f.chunked(c.Loc.Start, c.Body.Loc.Start, func() error { return f.writeCatch(c) })
		if err != nil {
			return err
		}
		chunks = append(chunks, ch)
	}

	multiline, err := f.areChunksSeparatedMultiline("{}", chunks, "")
	if err != nil {
		return err
	}
	if !multiline {
		return f.writeChunksSeparated(chunks, "", false)
	}

	rendered := make([]string, len(chunks))
	for i, c := range chunks {
		if rendered[i], err = f.simulateToString(func() error { return f.writeChunk(c) }); err != nil {
			return err
		}
	}
	if err := f.write(rendered[0]); err != nil {
		return err
	}
	prevMultiline := strings.Contains(rendered[0], "\n")
	for i := 1; i < len(rendered); i++ {
		str := rendered[i]
		clauseMultiline := strings.Contains(str, "\n")
		err := f.indentedIf(!clauseMultiline, 1, func() error {
			sameLine := prevMultiline && (clauseMultiline || i == len(rendered)-1)
			switch {
			case f.isBeginningOfLine():
			case sameLine:
				str = " " + str
			default:
				str = "\n" + str
			}
			return f.write(str)
		})
		if err != nil {
			return err
		}
		prevMultiline = clauseMultiline
	}
	return nil
}

func (f *formatter) writeTryReturns(s *syntax.TryStatement) error {
	bodyStart := s.Body.Loc.Start
	before, lastEnd := bodyStart, noOffset
	if n := len(s.Returns); n > 0 {
		before, lastEnd = s.Returns[0].Loc.Start, s.Returns[n-1].Loc.End
	}
	return f.surrounded(
		surrounding("returns (", before, noOffset),
		surrounding(")", noOffset, lastEnd),
		func(bool) error {
			chunks, err := itemsToChunks(f, bodyStart, s.Returns)
			if err != nil {
				return err
			}
			multiline, err := f.areChunksSeparatedMultiline("{})", chunks, ",")
			if err != nil {
				return err
			}
			return f.writeChunksSeparated(chunks, ",", multiline)
		},
	)
}

func (f *formatter) writeCatch(c *syntax.CatchClause) error {
	bodyStart := c.Body.Loc.Start
	paramsStart := bodyStart
	if len(c.Params) > 0 {
		paramsStart = c.Params[0].Loc.Start
	}
	if err := f.writeText("catch"); err != nil {
		return err
	}
	if c.Name != nil {
		if err := f.writePostfixCommentsBefore(min(paramsStart, c.Name.Loc.End)); err != nil {
			return err
		}
		if err := f.writeChunkAt(c.Name.Loc.Start, c.Name.Name); err != nil {
			return err
		}
	}
	if c.HasParams {
		if err := f.writeChunk(f.chunkAt(paramsStart, noOffset, spaced(c.Name == nil), "(")); err != nil {
			return err
		}
		err := f.surrounded(
			surrounding("", paramsStart, noOffset),
			surrounding(")", noOffset, bodyStart),
			func(bool) error {
				chunks, err := itemsToChunks(f, bodyStart, c.Params)
				if err != nil {
					return err
				}
				return f.writeChunksSeparated(chunks, ",", false)
			},
		)
		if err != nil {
			return err
		}
	}
	return f.visit(c.Body)
}

// visitAssembly writes the assembly header and the body. A body that did not
// parse as Yul is copied from the source.
func (f *formatter) visitAssembly(s *syntax.AssemblyStatement) error {
	if err := f.writeChunkAt(s.Loc.Start, "assembly"); err != nil {
		return err
	}
	if s.Dialect != nil {
		for _, p := range s.Dialect.Parts {
			if err := f.writeChunkSpan(p.Loc.Start, p.Loc.End, `"`+p.Value+`"`); err != nil {
				return err
			}
		}
	}
	if len(s.Flags) > 0 {
		err := f.surrounded(
			surrounding("(", s.Flags[0].Loc.Start, noOffset),
			surrounding(")", noOffset, s.Body.Start),
			func(bool) error {
				chunks := make([]Chunk, 0, len(s.Flags))
				for i, flag := range s.Flags {
					next := noOffset
					if i+1 < len(s.Flags) {
						next = s.Flags[i+1].Loc.Start
					}
					var b strings.Builder
					for _, p := range flag.Parts {
						b.WriteString(`"` + p.Value + `"`)
					}
					chunks = append(chunks, f.chunkAt(flag.Loc.Start, next, nil, b.String()))
				}
				return f.writeChunksSeparated(chunks, ",", false)
			},
		)
		if err != nil {
			return err
		}
	}
	if s.Block == nil {
		return f.writeAssemblyBody(s.Body)
	}
	return f.visit(s.Block)
}

// writeAssemblyBody copies body with the lines between the braces one level
// in from the braces. Their relative indentation is kept.
func (f *formatter) writeAssemblyBody(body text.Span) error {
	raw := string(body.Slice(f.src))
	if !utf8.ValidString(raw) {
		return errors.Errorf("assembly block at %s is not valid UTF-8", body)
	}
	lines := strings.Split(raw, "\n")
	if err := f.writeChunkAt(body.Start, strings.TrimRight(lines[0], " \t\r")); err != nil {
		return err
	}
	if len(lines) > 1 {
		inner := lines[1 : len(lines)-1]
		shift := -1
		for _, line := range inner {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if n := len(line) - len(strings.TrimLeft(line, " \t")); shift < 0 || n < shift {
				shift = n
			}
		}
		err := f.indented(1, func() error {
			for _, line := range inner {
				if err := f.write("\n"); err != nil {
					return err
				}
				if line = strings.TrimRight(line, " \t\r"); line != "" {
					if err := f.write(trimIndent(line, shift)); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := f.write("\n" + strings.TrimSpace(lines[len(lines)-1])); err != nil {
			return err
		}
	}
	f.comments.RemoveAllBefore(body.End)
	return nil
}
