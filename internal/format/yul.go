package format

import (
	"strings"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// visitYulAssignment writes `a, b := value`. The targets break only when they
// do not fit before the operator, and the value moves to the next line when it
// does not fit after it.
func visitYulAssignment[T syntax.Node](f *formatter, sp text.Span, targets []T, value syntax.Expression) error {
	_, err := f.grouped(func() error {
		chunks, err := itemsToChunks(f, noOffset, targets)
		if err != nil {
			return err
		}
		multiline, err := f.areChunksSeparatedMultiline("{} := ", chunks, ",")
		if err != nil {
			return err
		}
		if err := f.writeChunksSeparated(chunks, ",", multiline); err != nil {
			return err
		}
		if value == nil {
			return nil
		}
		if err := f.writeChunkAt(value.Span().Start, ":="); err != nil {
			return err
		}
		c, err := f.visitToChunk(value.Span().Start, sp.End, value)
		if err != nil {
			return err
		}
		fits, err := f.willChunkFit("{}", c)
		if err != nil {
			return err
		}
		if !fits {
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return err
			}
		}
		return f.writeChunk(c)
	})
	return err
}

func (f *formatter) visitYulIf(s *syntax.YulIf) error {
	if err := f.writeChunkAt(s.Loc.Start, "if"); err != nil {
		return err
	}
	if err := f.visit(s.Cond); err != nil {
		return err
	}
	_, err := f.visitBlock(s.Body.Loc, s.Body.Statements, true, false)
	return err
}

func (f *formatter) visitYulFor(s *syntax.YulFor) error {
	if err := f.writeChunkAt(s.Loc.Start, "for"); err != nil {
		return err
	}
	if _, err := f.visitBlock(s.Init.Loc, s.Init.Statements, true, false); err != nil {
		return err
	}
	if err := f.visit(s.Cond); err != nil {
		return err
	}
	if _, err := f.visitBlock(s.Post.Loc, s.Post.Statements, true, false); err != nil {
		return err
	}
	_, err := f.visitBlock(s.Body.Loc, s.Body.Statements, true, false)
	return err
}

// visitYulSwitch puts every case on its own line below the switch.
func (f *formatter) visitYulSwitch(s *syntax.YulSwitch) error {
	if err := f.writeChunkAt(s.Loc.Start, "switch"); err != nil {
		return err
	}
	if err := f.visit(s.Expr); err != nil {
		return err
	}
	cases := s.Cases
	if s.Default != nil {
		cases = append(cases[:len(cases):len(cases)], s.Default)
	}
	for _, c := range cases {
		if err := f.writeWhitespaceSeparator(true); err != nil {
			return err
		}
		keyword := "case"
		if c.Value == nil {
			keyword = "default"
		}
		if err := f.writeChunkAt(c.Loc.Start, keyword); err != nil {
			return err
		}
		if c.Value != nil {
			if err := f.visit(c.Value); err != nil {
				return err
			}
		}
		if _, err := f.visitBlock(c.Body.Loc, c.Body.Statements, true, false); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) visitYulFunction(s *syntax.YulFunctionDefinition) error {
	if err := f.writeChunkAt(s.Loc.Start, "function "+s.Name.Name); err != nil {
		return err
	}
	if err := visitList(f, "", s.Params, s.Name.Loc.End, s.ParamsSpan.End, true); err != nil {
		return err
	}
	if len(s.Returns) > 0 {
		_, err := f.grouped(func() error {
			if err := f.writeText("->"); err != nil {
				return err
			}
			chunks, err := itemsToChunks(f, s.Body.Loc.Start, s.Returns)
			if err != nil {
				return err
			}
			multiline, err := f.areChunksSeparatedMultiline("{}", chunks, ",")
			if err != nil {
				return err
			}
			if err := f.writeChunksSeparated(chunks, ",", multiline); err != nil {
				return err
			}
			if multiline {
				return f.writeWhitespaceSeparator(true)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return f.visit(s.Body)
}

func (f *formatter) visitYulExpr(e syntax.Expression) error {
	switch e := e.(type) {
	case *syntax.YulPath:
		names := make([]string, len(e.Parts))
		for i, p := range e.Parts {
			names[i] = p.Name
		}
		return f.writeChunkSpan(e.Loc.Start, e.Loc.End, strings.Join(names, "."))
	case *syntax.YulNumber:
		return f.writeChunkSpan(e.Loc.Start, e.Loc.End, e.Value)
	case *syntax.YulCall:
		if err := f.writeChunkAt(e.Loc.Start, e.Name.Name); err != nil {
			return err
		}
		return visitList(f, "", e.Args, e.Name.Loc.End, e.Loc.End, true)
	}
	return &InvalidItemError{Span: e.Span(), Kind: nodeKind(e)}
}
