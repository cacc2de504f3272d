package format

import (
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// visitSourceUnit writes the top-level items and finishes the file with
// exactly one newline.
func (f *formatter) visitSourceUnit(u *syntax.SourceUnit) error {
	items := f.sourceUnitItems(u)
	if err := f.writeLined(text.Span{End: text.ByteOffset(len(f.src))}, items, sourceUnitPartsNeedSpace); err != nil {
		return err
	}
	if err := f.writeComments(f.comments.RemoveAllBefore(text.ByteOffset(len(f.src) + 1))); err != nil {
		return err
	}
	if f.buf().lastChar != '\n' {
		return f.writeRaw("\n")
	}
	return nil
}

func sourceUnitPartsNeedSpace(prev, next syntax.Node) bool {
	switch prev.(type) {
	case *syntax.PragmaDirective, *syntax.ErrorDefinition, *syntax.UsingDirective, *syntax.VariableDefinition:
		return nodeKind(prev) != nodeKind(next)
	case *syntax.ImportDirective, *importGroup:
		return !isImport(next)
	}
	return true
}

func contractPartsNeedSpace(prev, next syntax.Node) bool {
	switch prev := prev.(type) {
	case *syntax.ErrorDefinition, *syntax.EventDefinition, *syntax.VariableDefinition,
		*syntax.TypeDefinition, *syntax.EnumDefinition, *syntax.UsingDirective:
		return nodeKind(prev) != nodeKind(next)
	case *syntax.FunctionDefinition:
		if !isEmptyFunction(prev) {
			return true
		}
		fn, ok := next.(*syntax.FunctionDefinition)
		return !ok || !isEmptyFunction(fn)
	}
	return true
}

func isEmptyFunction(fn *syntax.FunctionDefinition) bool {
	return fn.Body == nil || len(fn.Body.Statements) == 0
}

func (f *formatter) visitPragma(p *syntax.PragmaDirective) error {
	content := "pragma " + p.Name.Name
	if p.Value != "" {
		content += " " + p.Value
	}
	return f.writeChunkAt(p.Loc.End, content+";")
}

func (f *formatter) visitContract(c *syntax.ContractDefinition) error {
	return f.withContract(c, func() error {
		headerEnd := c.Name.Loc.End
		if len(c.Bases) > 0 {
			if is, ok := f.findNextInSrc(c.Name.Loc.End, "is"); ok {
				headerEnd = is + text.ByteOffset(len("is"))
			}
		}
		if header := c.Loc.WithEnd(headerEnd); f.inline.IsDisabled(header) {
			if err := f.visitSource(header); err != nil {
				return err
			}
		} else {
			_, err := f.grouped(func() error {
				if err := f.writeChunkAt(c.Loc.Start, string(c.Kind)); err != nil {
					return err
				}
				if err := f.writeChunkAt(c.Name.Loc.End, c.Name.Name); err != nil {
					return err
				}
				if len(c.Bases) == 0 {
					return nil
				}
				return f.writeChunkSpan(c.Name.Loc.End, c.Bases[0].Loc.Start, "is")
			})
			if err != nil {
				return err
			}
		}

		if err := f.writeBases(c); err != nil {
			return err
		}
		if err := f.writeText("{"); err != nil {
			return err
		}

		if len(c.Parts) == 0 {
			err := f.indented(1, func() error {
				if err := f.writePostfixCommentsBefore(c.Loc.End); err != nil {
					return err
				}
				return f.writePrefixCommentsBefore(c.Loc.End)
			})
			if err != nil {
				return err
			}
			return f.writeChunkAt(c.Loc.End, "}")
		}

		err := f.indented(1, func() error {
			if err := f.writePostfixCommentsBefore(c.Parts[0].Span().Start); err != nil {
				return err
			}
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return err
			}
			if f.opts.ContractNewLines {
				if err := f.write("\n"); err != nil {
					return err
				}
			}
			parts := make([]syntax.Node, len(c.Parts))
			for i, p := range c.Parts {
				parts[i] = p
			}
			return f.writeLined(c.Loc, parts, contractPartsNeedSpace)
		})
		if err != nil {
			return err
		}
		if err := f.writeWhitespaceSeparator(true); err != nil {
			return err
		}
		if f.opts.ContractNewLines {
			if err := f.write("\n"); err != nil {
				return err
			}
		}
		return f.writeChunkAt(c.Loc.End, "}")
	})
}

// writeBases writes the inheritance list, one base per line when the list
// does not fit. The opening brace then moves to its own line.
func (f *formatter) writeBases(c *syntax.ContractDefinition) error {
	if len(c.Bases) == 0 {
		return nil
	}
	sp := c.Bases[0].Loc.Cover(c.Bases[len(c.Bases)-1].Loc)
	if f.inline.IsDisabled(sp) {
		return f.visitSource(sp)
	}
	next := c.BodyStart
	if len(c.Parts) > 0 {
		next = c.Parts[0].Span().Start
	}
	return f.indented(1, func() error {
		bases, err := itemsToChunks(f, next, c.Bases)
		if err != nil {
			return err
		}
		multiline, err := f.areChunksSeparatedMultiline("{}", bases, ",")
		if err != nil {
			return err
		}
		if err := f.writeChunksSeparated(bases, ",", multiline); err != nil {
			return err
		}
		return f.writeWhitespaceSeparator(multiline)
	})
}

func (f *formatter) visitBase(b *syntax.InheritanceSpecifier) error {
	return f.writeInvocation(b.Loc, b.Name, b.Args)
}

// writeInvocation writes a base constructor or modifier call. Inside a
// function an invocation without arguments keeps its parentheses.
func (f *formatter) writeInvocation(sp text.Span, name syntax.Expression, args []syntax.Expression) error {
	nameSp := name.Span()
	chunk, err := f.visitToChunk(nameSp.Start, nameSp.End, name)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		if f.ctx.function != nil {
			chunk.Content += "()"
		}
		return f.writeChunk(chunk)
	}

	chunk.Content += "("
	formatted, err := f.simulateToString(func() error { return f.writeChunk(chunk) })
	if err != nil {
		return err
	}
	multiline := !f.willItFit(formatted)
	return f.surrounded(
		surrounding(formatted, args[0].Span().Start, noOffset),
		surrounding(")", noOffset, sp.End),
		func(hint bool) error {
			chunks, err := itemsToChunks(f, sp.End, args)
			if err != nil {
				return err
			}
			ml := multiline || hint
			if !ml {
				if ml, err = f.areChunksSeparatedMultiline("{}", chunks, ","); err != nil {
					return err
				}
			}
			return f.writeChunksSeparated(chunks, ",", ml)
		},
	)
}

func (f *formatter) visitStruct(s *syntax.StructDefinition) error {
	_, err := f.grouped(func() error {
		if err := f.writeChunkAt(s.Name.Loc.Start, "struct"); err != nil {
			return err
		}
		if err := f.visit(s.Name); err != nil {
			return err
		}
		if len(s.Fields) == 0 {
			return f.writeEmptyBrackets()
		}
		if err := f.write(" {"); err != nil {
			return err
		}
		return f.surrounded(
			surrounding("", s.Name.Loc.End, noOffset),
			surrounding("}", noOffset, s.Loc.End),
			func(bool) error {
				fields, err := itemsToChunks(f, s.Loc.End, s.Fields)
				if err != nil {
					return err
				}
				for _, c := range fields {
					c.Content += ";"
					if err := f.writeChunk(c); err != nil {
						return err
					}
					if err := f.writeWhitespaceSeparator(true); err != nil {
						return err
					}
				}
				return nil
			},
		)
	})
	return err
}

func (f *formatter) visitEnum(e *syntax.EnumDefinition) error {
	name, err := f.visitToChunk(e.Name.Loc.Start, e.Name.Loc.End, e.Name)
	if err != nil {
		return err
	}
	name.Content = "enum " + name.Content + " "
	if len(e.Values) == 0 {
		if err := f.writeChunk(name); err != nil {
			return err
		}
		return f.writeEmptyBrackets()
	}

	name.Content += "{"
	if err := f.writeChunk(name); err != nil {
		return err
	}
	err = f.indented(1, func() error {
		values, err := itemsToChunks(f, e.Loc.End, e.Values)
		if err != nil {
			return err
		}
		if err := f.writeChunksSeparated(values, ",", true); err != nil {
			return err
		}
		return f.write("\n")
	})
	if err != nil {
		return err
	}
	return f.writeText("}")
}

func (f *formatter) visitEvent(ev *syntax.EventDefinition) error {
	next := ev.Loc.End
	if len(ev.Params) > 0 {
		next = ev.Params[0].Loc.Start
	}
	name, err := f.visitToChunk(ev.Name.Loc.Start, next, ev.Name)
	if err != nil {
		return err
	}
	name.Content = "event " + name.Content + "("

	last := ");"
	if ev.Anonymous {
		last = ") anonymous;"
	}
	if len(ev.Params) == 0 {
		name.Content += last
		return f.writeChunk(name)
	}

	first, err := f.simulateToString(func() error { return f.writeChunk(name) })
	if err != nil {
		return err
	}
	return f.surrounded(
		surrounding(first, ev.Params[0].Loc.Start, noOffset),
		surrounding(last, noOffset, ev.Loc.End),
		func(multiline bool) error {
			params, err := itemsToChunks(f, noOffset, ev.Params)
			if err != nil {
				return err
			}
			if multiline {
				if multiline, err = f.areChunksSeparatedMultiline("{}", params, ","); err != nil {
					return err
				}
			}
			return f.writeChunksSeparated(params, ",", multiline)
		},
	)
}

func (f *formatter) visitError(e *syntax.ErrorDefinition) error {
	name, err := f.visitToChunk(e.Name.Loc.Start, noOffset, e.Name)
	if err != nil {
		return err
	}
	name.Content = "error " + name.Content
	formatted, err := f.simulateToString(func() error { return f.writeChunk(name) })
	if err != nil {
		return err
	}
	if err := f.write(formatted); err != nil {
		return err
	}
	start := noOffset
	if len(e.Params) > 0 {
		start = e.Params[0].Loc.Start
	}
	err = f.terminated(";", func() error { return visitList(f, "", e.Params, start, e.Loc.End, true) })
	if err != nil {
		return err
	}
	return f.writeSemicolon()
}

func (f *formatter) visitParameter(p *syntax.Parameter) error {
	_, err := f.grouped(func() error {
		if err := f.visit(p.Type); err != nil {
			return err
		}
		if p.Indexed {
			if err := f.writeChunkAt(p.Loc.Start, "indexed"); err != nil {
				return err
			}
		}
		if p.Storage != "" {
			if err := f.writeText(p.Storage); err != nil {
				return err
			}
		}
		if p.Name != nil {
			return f.writeChunkAt(p.Name.Loc.End, p.Name.Name)
		}
		return nil
	})
	return err
}

func (f *formatter) visitFunction(fn *syntax.FunctionDefinition) error {
	return f.withFunction(fn, func() error {
		if err := f.writePostfixCommentsBefore(fn.Loc.Start); err != nil {
			return err
		}
		if err := f.writePrefixCommentsBefore(fn.Loc.Start); err != nil {
			return err
		}

		attrsMultiline := false
		fits, err := f.tryOnSingleLine(func() error {
			_, err := f.writeFunctionHeader(fn, false)
			return err
		})
		if err != nil {
			return err
		}
		if !fits {
			if attrsMultiline, err = f.writeFunctionHeader(fn, true); err != nil {
				return err
			}
		}

		if fn.Body == nil {
			return f.writeSemicolon()
		}
		body := fn.Body.Loc
		if f.inline.IsDisabled(body.WithEnd(body.Start)) {
			if len(fn.Body.Statements) > 0 {
				if err := f.writeWhitespaceSeparator(false); err != nil {
					return err
				}
				_, err := f.visitBlock(body, fn.Body.Statements, false, false)
				return err
			}
			attrsMultiline = false
		}
		chunk, err := f.visitToChunk(body.Start, body.End, fn.Body)
		if err != nil {
			return err
		}
		hasTail := len(fn.Attributes) > 0 || len(fn.Returns) > 0
		if err := f.writeWhitespaceSeparator(attrsMultiline && hasTail); err != nil {
			return err
		}
		return f.writeChunk(chunk)
	})
}

// writeFunctionHeader writes everything up to the body. With multiline set
// the header did not fit on one line and MultilineFuncHeader decides which
// part breaks first. It reports whether the attributes went multiline.
func (f *formatter) writeFunctionHeader(fn *syntax.FunctionDefinition, multiline bool) (bool, error) {
	funcName := string(fn.Kind)
	if fn.Name != nil {
		funcName += " " + fn.Name.Name
	}

	bodyStart := noOffset
	if fn.Body != nil {
		bodyStart = fn.Body.Loc.Start
	}
	returnsStart := noOffset
	if len(fn.Returns) > 0 {
		returnsStart = fn.Returns[0].Loc.Start
	}
	paramsNext := bodyStart
	switch {
	case len(fn.Attributes) > 0:
		paramsNext = fn.Attributes[0].Loc.Start
	case returnsStart != noOffset:
		paramsNext = returnsStart
	}
	attrsEnd := bodyStart
	if returnsStart != noOffset {
		attrsEnd = returnsStart
	}

	paramsEnd := fn.ParamsSpan.End
	if !fn.HasParams {
		paramsEnd = fn.Name.Loc.End
	}
	paramsSpan := fn.Loc.WithEnd(paramsEnd)
	paramsDisabled := f.inline.IsDisabled(paramsSpan)
	paramsMultiline := false
	if paramsDisabled {
		chunk, err := f.chunked(fn.Loc.Start, noOffset, func() error { return f.visitSource(paramsSpan) })
		if err != nil {
			return false, err
		}
		paramsMultiline = strings.Contains(chunk.Content, "\n")
		if err := f.writeChunk(chunk); err != nil {
			return false, err
		}
	} else {
		firstNext := paramsEnd
		if len(fn.Params) > 0 {
			firstNext = fn.Params[0].Loc.Start
		}
		err := f.surrounded(
			surrounding(funcName+"(", fn.Loc.Start, firstNext),
			surrounding(")", noOffset, paramsNext),
			func(hint bool) error {
				params, err := itemsToChunks(f, paramsNext, fn.Params)
				if err != nil {
					return err
				}
				afterParams := ";"
				switch {
				case len(fn.Attributes) > 0 || len(fn.Returns) > 0:
					afterParams = ""
				case fn.Body != nil:
					afterParams = " {"
				}
				paramsMultiline = hint || (multiline && f.breaksParamsFirst(len(params)))
				if !paramsMultiline {
					if paramsMultiline, err = f.areChunksSeparatedMultiline("{})"+afterParams, params, ","); err != nil {
						return err
					}
				}
				if len(params) == 1 && paramsMultiline {
					if err := f.write("\n"); err != nil {
						return err
					}
				}
				return f.writeChunksSeparated(params, ",", paramsMultiline)
			},
		)
		if err != nil {
			return false, err
		}
	}

	writeAttributes := func(multiline bool) error {
		if len(fn.Attributes) > 0 {
			sp := fn.Attributes[0].Loc.Cover(fn.Attributes[len(fn.Attributes)-1].Loc)
			switch {
			case f.inline.IsDisabled(sp) && paramsDisabled:
				if err := f.writeWhitespaceSeparator(false); err != nil {
					return err
				}
				if err := f.writeRaw(string(sp.Slice(f.src))); err != nil {
					return err
				}
				f.comments.RemoveAllBefore(sp.End)
			case f.inline.IsDisabled(sp):
				if err := f.indented(1, func() error { return f.visitSource(sp) }); err != nil {
					return err
				}
			default:
				if err := f.writePostfixCommentsBefore(sp.Start); err != nil {
					return err
				}
				if err := f.writeWhitespaceSeparator(multiline); err != nil {
					return err
				}
				attrs, err := f.attributeChunks(attrsEnd, fn.Attributes)
				if err != nil {
					return err
				}
				err = f.indented(1, func() error { return f.writeChunksSeparated(attrs, "", multiline) })
				if err != nil {
					return err
				}
			}
		}

		if len(fn.Returns) == 0 {
			return nil
		}
		sp := fn.Returns[0].Loc.Cover(fn.Returns[len(fn.Returns)-1].Loc)
		if f.inline.IsDisabled(sp) {
			if err := f.writeWhitespaceSeparator(false); err != nil {
				return err
			}
			f.comments.RemoveAllBefore(sp.End)
			return f.writeRaw("returns (" + string(sp.Slice(f.src)) + ")")
		}
		returns, err := itemsToChunks(f, bodyStart, fn.Returns)
		if err != nil {
			return err
		}
		if err := f.writePostfixCommentsBefore(sp.Start); err != nil {
			return err
		}
		if err := f.writeWhitespaceSeparator(multiline); err != nil {
			return err
		}
		return f.indented(1, func() error {
			return f.surrounded(
				surrounding("returns (", sp.Start, noOffset),
				surrounding(")", noOffset, bodyStart),
				func(hint bool) error { return f.writeChunksSeparated(returns, ",", hint) },
			)
		})
	}

	attrsMultiline := multiline && f.breaksAttributes(paramsMultiline)
	if !attrsMultiline {
		end := ";"
		if fn.Body != nil {
			end = " {"
		}
		fits, err := f.tryOnSingleLine(func() error {
			if err := writeAttributes(false); err != nil {
				return err
			}
			if !f.willItFit(end) {
				return errors.WithStack(errSingleLineBudget)
			}
			return nil
		})
		if err != nil {
			return false, err
		}
		attrsMultiline = !fits
	}
	if attrsMultiline {
		if err := writeAttributes(true); err != nil {
			return false, err
		}
	}
	return attrsMultiline, nil
}

// breaksParamsFirst reports whether an overlong header puts its n
// parameters on separate lines before anything else is tried.
func (f *formatter) breaksParamsFirst(n int) bool {
	switch f.opts.MultilineFuncHeader {
	case MultilineFuncHeaderParamsFirst, MultilineFuncHeaderAllParams:
		return true
	case MultilineFuncHeaderAll:
		return n > 1
	}
	return false
}

// breaksAttributes reports whether an overlong header puts its attributes on
// separate lines regardless of their width.
func (f *formatter) breaksAttributes(paramsMultiline bool) bool {
	if paramsMultiline {
		return f.opts.MultilineFuncHeader == MultilineFuncHeaderAll || f.opts.MultilineFuncHeader == MultilineFuncHeaderAllParams
	}
	return f.opts.MultilineFuncHeader == MultilineFuncHeaderAttributesFirst
}

// attributeChunks renders attributes in source order, so comments are
// claimed correctly, and returns them in canonical order.
func (f *formatter) attributeChunks(next text.ByteOffset, attrs []*syntax.Attribute) ([]Chunk, error) {
	chunks, err := itemsToChunks(f, next, attrs)
	if err != nil {
		return nil, err
	}
	return reorderChunks(chunks, func(a, b int) int { return int(attrs[a].Kind) - int(attrs[b].Kind) }), nil
}

func (f *formatter) visitAttribute(a *syntax.Attribute) error {
	switch a.Kind {
	case syntax.AttrOverride:
		if err := f.writeChunkAt(a.Loc.Start, "override"); err != nil {
			return err
		}
		if len(a.Paths) > 0 && f.opts.OverrideSpacing {
			if err := f.writeWhitespaceSeparator(false); err != nil {
				return err
			}
		}
		return visitList(f, "", a.Paths, a.Loc.Start, a.Loc.End, false)
	case syntax.AttrModifier:
		return f.visitModifierInvocation(a)
	}
	return f.writeChunkSpan(a.Loc.Start, a.Loc.End, a.Value)
}

// visitModifierInvocation writes a modifier or base constructor call in a
// function header. Bases of the enclosing contract keep their parentheses.
// Inside a constructor so do names starting with an uppercase letter, since
// those are assumed to be base contracts too.
func (f *formatter) visitModifierInvocation(a *syntax.Attribute) error {
	if f.isContractBase(a.Name) {
		return f.writeInvocation(a.Loc, a.Name, a.Args)
	}
	chunk, err := f.chunked(a.Loc.Start, a.Loc.End, func() error {
		return f.writeInvocation(a.Loc, a.Name, a.Args)
	})
	if err != nil {
		return err
	}
	strip := true
	if fn := f.ctx.function; fn != nil && fn.Kind == syntax.FunctionKindConstructor {
		r := firstRune(chunk.Content)
		strip = unicode.IsLower(r)
	}
	if strip {
		chunk.Content = strings.TrimSuffix(chunk.Content, "()")
	}
	return f.writeChunk(chunk)
}

func (f *formatter) isContractBase(name syntax.Expression) bool {
	if f.ctx.contract == nil {
		return false
	}
	want := f.sourceText(name.Span())
	for _, b := range f.ctx.contract.Bases {
		if f.sourceText(b.Name.Span()) == want {
			return true
		}
	}
	return false
}

func (f *formatter) visitVarDefinition(v *syntax.VariableDefinition) error {
	if err := f.visit(v.Type); err != nil {
		return err
	}
	multiline, err := f.grouped(func() error {
		attrs, err := f.attributeChunks(v.Name.Loc.Start, v.Attributes)
		if err != nil {
			return err
		}
		fits, err := f.tryOnSingleLine(func() error { return f.writeChunksSeparated(attrs, "", false) })
		if err != nil {
			return err
		}
		if !fits {
			if err := f.writeChunksSeparated(attrs, "", true); err != nil {
				return err
			}
		}
		name, err := f.visitToChunk(v.Name.Loc.Start, v.Name.Loc.End, v.Name)
		if err != nil {
			return err
		}
		if v.Initializer != nil {
			name.Content += " ="
		}
		return f.writeChunk(name)
	})
	if err != nil {
		return err
	}
	if v.Initializer != nil {
		err := f.terminated(";", func() error {
			return f.indentedIf(multiline, 1, func() error { return f.visitAssignment(v.Initializer) })
		})
		if err != nil {
			return err
		}
	}
	return f.writeSemicolon()
}

// visitUsing writes `using L for T;` and `using {a, b} for T;`, breaking
// the function list before the for clause.
func (f *formatter) visitUsing(u *syntax.UsingDirective) error {
	if err := f.writeChunkAt(u.Loc.Start, "using"); err != nil {
		return err
	}

	globalStart := noOffset
	if u.Global {
		from := u.Loc.Start
		if u.Type != nil {
			from = u.Type.Span().End
		}
		if off, ok := f.findNextInSrc(from, "global"); ok {
			globalStart = off
		}
	}
	tailEnd := u.Loc.End
	if globalStart != noOffset {
		tailEnd = globalStart
	}
	forNext := tailEnd
	if u.Type != nil {
		forNext = u.Type.Span().Start
	}

	var list []Chunk
	if u.Braces {
		var err error
		if list, err = itemsToChunks(f, noOffset, u.Functions); err != nil {
			return err
		}
	} else {
		lib, err := f.visitToChunk(u.Library.Span().Start, noOffset, u.Library)
		if err != nil {
			return err
		}
		list = []Chunk{lib}
	}

	forChunk := f.chunkAt(u.Loc.Start, forNext, nil, "for")
	var tyChunk Chunk
	if u.Type != nil {
		var err error
		if tyChunk, err = f.visitToChunk(u.Type.Span().Start, tailEnd, u.Type); err != nil {
			return err
		}
	} else {
		tyChunk = f.chunkAt(u.Loc.Start, tailEnd, nil, "*")
	}
	var globalChunk *Chunk
	if globalStart != noOffset {
		c := f.chunkAt(globalStart, u.Loc.End, nil, "global")
		globalChunk = &c
	}

	writeForDef := func() error {
		_, err := f.grouped(func() error {
			if err := f.writeChunk(forChunk); err != nil {
				return err
			}
			if err := f.writeChunk(tyChunk); err != nil {
				return err
			}
			if globalChunk != nil {
				return f.writeChunk(*globalChunk)
			}
			return nil
		})
		return err
	}
	forDef, err := f.simulateToString(writeForDef)
	if err != nil {
		return err
	}

	if !u.Braces {
		lib := list[0]
		fits, err := f.willChunkFit("{} "+forDef+";", lib)
		if err != nil {
			return err
		}
		if fits {
			if err := f.writeChunk(lib); err != nil {
				return err
			}
		} else {
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return err
			}
			if _, err := f.grouped(func() error { return f.writeChunk(lib) }); err != nil {
				return err
			}
			if err := f.writeWhitespaceSeparator(true); err != nil {
				return err
			}
		}
	} else {
		err := f.surrounded(
			surrounding("{", u.Loc.Start, noOffset),
			surrounding("}", noOffset, forNext),
			func(bool) error {
				multiline, err := f.areChunksSeparatedMultiline("{ {} } "+forDef+";", list, ",")
				if err != nil {
					return err
				}
				return f.writeChunksSeparated(list, ",", multiline)
			},
		)
		if err != nil {
			return err
		}
	}
	if err := writeForDef(); err != nil {
		return err
	}
	return f.writeSemicolon()
}

func (f *formatter) visitUsingFunction(fn *syntax.UsingFunction) error {
	if err := f.visit(fn.Path); err != nil {
		return err
	}
	if fn.Operator == "" {
		return nil
	}
	return f.write(" as " + fn.Operator)
}

func (f *formatter) visitTypeDefinition(d *syntax.TypeDefinition) error {
	_, err := f.grouped(func() error {
		if err := f.writeChunkSpan(d.Loc.Start, d.Name.Loc.Start, "type"); err != nil {
			return err
		}
		if err := f.visit(d.Name); err != nil {
			return err
		}
		if err := f.writeChunkSpan(d.Name.Loc.End, d.Type.Span().Start, "is"); err != nil {
			return err
		}
		if err := f.visit(d.Type); err != nil {
			return err
		}
		return f.writeSemicolon()
	})
	return err
}
