package syntax

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// maxNestingDepth bounds statement and expression recursion.
const maxNestingDepth = 512

// Parse tokenizes and parses src into a syntax tree.
//
// Syntax errors do not fail the call: they are reported as diagnostics on the
// returned tree. The error return is reserved for a cancelled context.
func Parse(ctx context.Context, src []byte, opts ParseOptions) (*Tree, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	lexRes := lexer.Lex(src)
	p := &parser{src: src, tokens: lexRes.Tokens}
	unit := p.parseSourceUnit()

	diags := mapLexerDiagnostics(lexRes.Diagnostics)
	diags = append(diags, p.diagnostics...)

	return &Tree{
		URI:         opts.URI,
		Source:      src,
		Tokens:      lexRes.Tokens,
		Unit:        unit,
		Comments:    lexer.Comments(lexRes.Tokens),
		Diagnostics: diags,
		LineIndex:   text.NewLineIndex(src),
	}, nil
}

func mapLexerDiagnostics(in []lexer.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(in))
	for _, d := range in {
		out = append(out, Diagnostic{
			Code:        DiagnosticCode(d.Code),
			Message:     d.Message,
			Severity:    SeverityError,
			Span:        d.Span,
			Source:      "lexer",
			Recoverable: true,
		})
	}
	return out
}

// bailout unwinds the parser to the nearest recovery point.
type bailout struct{}

type parser struct {
	src         []byte
	tokens      []lexer.Token
	pos         int
	depth       int
	speculating int
	diagnostics []Diagnostic
}

func (p *parser) tok() lexer.Token {
	return p.peek(0)
}

func (p *parser) peek(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

// textAt returns the source text of the token n positions ahead, or "" at EOF and on error tokens.
func (p *parser) textAt(n int) string {
	t := p.peek(n)
	if t.Kind == lexer.TokenEOF || t.Kind == lexer.TokenError {
		return ""
	}
	return t.Text(p.src)
}

func (p *parser) at(s string) bool {
	return p.textAt(0) == s
}

func (p *parser) eof() bool {
	return p.tok().Kind == lexer.TokenEOF
}

func (p *parser) next() lexer.Token {
	t := p.tok()
	if t.Kind != lexer.TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(s string) bool {
	if p.at(s) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(s string) lexer.Token {
	if !p.at(s) {
		p.fail("expected %q", s)
	}
	return p.next()
}

func (p *parser) start() text.ByteOffset {
	return p.tok().Span.Start
}

// end returns the end offset of the last consumed token.
func (p *parser) end() text.ByteOffset {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].Span.End
}

func (p *parser) spanFrom(start text.ByteOffset) text.Span {
	end := p.end()
	if end < start {
		end = start
	}
	return text.Span{Start: start, End: end}
}

func (p *parser) fail(format string, args ...any) {
	p.report(DiagnosticUnexpectedToken, format, args...)
	panic(bailout{})
}

func (p *parser) unsupported(what string) {
	p.report(DiagnosticUnsupported, "%s are not supported", what)
	panic(bailout{})
}

func (p *parser) report(code DiagnosticCode, format string, args ...any) {
	if p.speculating > 0 {
		return
	}
	t := p.tok()
	if t.Kind == lexer.TokenError {
		// The lexer already reported this token.
		return
	}
	msg := fmt.Sprintf(format, args...)
	if t.Kind == lexer.TokenEOF {
		code = DiagnosticUnexpectedEOF
		msg += ", found end of file"
	} else if code == DiagnosticUnexpectedToken {
		msg += fmt.Sprintf(", found %q", t.Text(p.src))
	}
	p.diagnostics = append(p.diagnostics, Diagnostic{
		Code:     code,
		Message:  msg,
		Severity: SeverityError,
		Span:     t.Span,
		Source:   "parser",
	})
}

func (p *parser) enter() {
	p.depth++
	if p.depth > maxNestingDepth {
		p.unsupported("nesting levels this deep")
	}
}

func (p *parser) leave() {
	p.depth--
}

// speculate runs fn and reports whether it completed. On failure the token
// position is restored and no diagnostics are recorded.
func (p *parser) speculate(fn func()) (ok bool) {
	saved, depth := p.pos, p.depth
	p.speculating++
	defer func() {
		p.speculating--
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			p.pos, p.depth = saved, depth
			ok = false
		}
	}()
	fn()
	return true
}

// guard runs fn and swallows a bailout, reporting whether fn completed.
func (p *parser) guard(fn func()) (ok bool) {
	depth := p.depth
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			p.depth = depth
			ok = false
		}
	}()
	fn()
	return true
}

var sourceUnitStarts = map[string]struct{}{
	"pragma": {}, "import": {}, "abstract": {}, "contract": {}, "interface": {}, "library": {},
	"struct": {}, "enum": {}, "event": {}, "function": {}, "using": {}, "type": {},
}

// skipToSourceUnitPart advances past the failed construct to the next plausible top-level item.
func (p *parser) skipToSourceUnitPart(from int) {
	if p.pos == from {
		p.next()
	}
	depth := 0
	for !p.eof() {
		word := p.textAt(0)
		if _, ok := sourceUnitStarts[word]; ok && depth == 0 {
			return
		}
		p.next()
		switch word {
		case "{":
			depth++
		case "}":
			if depth > 0 {
				depth--
				if depth == 0 {
					return
				}
			}
		case ";":
			if depth == 0 {
				return
			}
		}
	}
}

func (p *parser) parseSourceUnit() *SourceUnit {
	unit := &SourceUnit{}
	for !p.eof() {
		from := p.pos
		var part SourceUnitPart
		if p.guard(func() { part = p.parseSourceUnitPart() }) {
			unit.Parts = append(unit.Parts, part)
			continue
		}
		p.skipToSourceUnitPart(from)
	}
	unit.Loc = text.Span{Start: 0, End: text.ByteOffset(len(p.src))}
	return unit
}

func (p *parser) parseSourceUnitPart() SourceUnitPart {
	switch p.textAt(0) {
	case "pragma":
		return p.parsePragma()
	case "import":
		return p.parseImport()
	case "abstract", "contract", "interface", "library":
		return p.parseContract()
	case "struct":
		return p.parseStruct()
	case "enum":
		return p.parseEnum()
	case "event":
		return p.parseEvent()
	case "function":
		return p.parseFunction()
	case "using":
		return p.parseUsing()
	case "type":
		return p.parseTypeDefinition()
	case ";":
		start := p.start()
		p.next()
		return &StraySemicolon{node: at(p.spanFrom(start))}
	}
	if p.atErrorDefinition() {
		return p.parseErrorDefinition()
	}
	return p.parseVariableDefinition()
}

func (p *parser) parseContractPart() ContractPart {
	switch p.textAt(0) {
	case "struct":
		return p.parseStruct()
	case "enum":
		return p.parseEnum()
	case "event":
		return p.parseEvent()
	case "function", "constructor", "modifier":
		return p.parseFunction()
	case "using":
		return p.parseUsing()
	case "type":
		return p.parseTypeDefinition()
	case "fallback", "receive":
		if p.textAt(1) == "(" {
			return p.parseFunction()
		}
	case ";":
		start := p.start()
		p.next()
		return &StraySemicolon{node: at(p.spanFrom(start))}
	}
	if p.atErrorDefinition() {
		return p.parseErrorDefinition()
	}
	return p.parseVariableDefinition()
}

func (p *parser) atErrorDefinition() bool {
	return p.at("error") && p.peek(1).Kind == lexer.TokenIdentifier && p.textAt(2) == "("
}

func (p *parser) parseIdentifier() *Identifier {
	t := p.tok()
	if t.Kind != lexer.TokenIdentifier {
		p.fail("expected identifier")
	}
	p.next()
	return &Identifier{node: at(t.Span), Name: t.Text(p.src)}
}

// parseMemberName accepts keywords as member names, e.g. `x.address` in assembly-free code.
func (p *parser) parseMemberName() *Identifier {
	t := p.tok()
	if t.Kind != lexer.TokenIdentifier && t.Kind != lexer.TokenKeyword {
		p.fail("expected member name")
	}
	p.next()
	return &Identifier{node: at(t.Span), Name: t.Text(p.src)}
}

func (p *parser) parseIdentifierPath() Expression {
	start := p.start()
	var out Expression = p.parseIdentifier()
	for p.at(".") {
		p.next()
		member := p.parseIdentifier()
		out = &MemberAccess{node: at(p.spanFrom(start)), Expr: out, Member: member}
	}
	return out
}

func (p *parser) parsePragma() *PragmaDirective {
	start := p.start()
	p.expect("pragma")
	name := p.parseMemberName()
	valueStart := p.start()
	for !p.at(";") {
		if p.eof() || p.tok().Kind == lexer.TokenError {
			p.fail("expected %q", ";")
		}
		p.next()
	}
	valueSpan := text.Span{Start: valueStart, End: valueStart}
	if p.end() > valueStart {
		valueSpan.End = p.end()
	}
	p.next()
	return &PragmaDirective{
		node:      at(p.spanFrom(start)),
		Name:      name,
		Value:     strings.Join(strings.Fields(string(valueSpan.Slice(p.src))), " "),
		ValueSpan: valueSpan,
	}
}

func (p *parser) parseImport() *ImportDirective {
	start := p.start()
	p.expect("import")
	imp := &ImportDirective{}
	switch {
	case p.tok().Kind == lexer.TokenString:
		imp.Path = p.parseStringLiteral()
		if p.accept("as") {
			imp.Alias = p.parseIdentifier()
		}
	case p.at("*"):
		p.next()
		imp.Star = true
		p.expect("as")
		imp.Alias = p.parseIdentifier()
		p.expectFrom()
		imp.Path = p.parseStringLiteral()
	case p.at("{"):
		p.next()
		imp.Braces = true
		for !p.at("}") {
			symStart := p.start()
			sym := &ImportSymbol{Name: p.parseIdentifier()}
			if p.accept("as") {
				sym.Alias = p.parseIdentifier()
			}
			sym.Loc = p.spanFrom(symStart)
			imp.Symbols = append(imp.Symbols, sym)
			if !p.accept(",") {
				break
			}
		}
		p.expect("}")
		p.expectFrom()
		imp.Path = p.parseStringLiteral()
	default:
		imp.Alias = p.parseIdentifier()
		p.expectFrom()
		imp.Path = p.parseStringLiteral()
	}
	p.expect(";")
	imp.Loc = p.spanFrom(start)
	return imp
}

func (p *parser) expectFrom() {
	if !p.at("from") {
		p.fail("expected %q", "from")
	}
	p.next()
}

func (p *parser) parseContract() *ContractDefinition {
	start := p.start()
	c := &ContractDefinition{}
	switch p.next().Text(p.src) {
	case "abstract":
		p.expect("contract")
		c.Kind = ContractKindAbstract
	case "contract":
		c.Kind = ContractKindContract
	case "interface":
		c.Kind = ContractKindInterface
	case "library":
		c.Kind = ContractKindLibrary
	}
	c.Name = p.parseIdentifier()
	if p.accept("is") {
		for {
			baseStart := p.start()
			base := &InheritanceSpecifier{Name: p.parseIdentifierPath()}
			if p.at("(") {
				base.Args, _ = p.parseExpressionList("(", ")")
				base.HasArgs = true
			}
			base.Loc = p.spanFrom(baseStart)
			c.Bases = append(c.Bases, base)
			if !p.accept(",") {
				break
			}
		}
	}
	c.BodyStart = p.start()
	p.expect("{")
	for !p.at("}") {
		if p.eof() {
			p.fail("expected %q", "}")
		}
		c.Parts = append(c.Parts, p.parseContractPart())
	}
	p.next()
	c.Loc = p.spanFrom(start)
	return c
}

func (p *parser) parseStruct() *StructDefinition {
	start := p.start()
	p.expect("struct")
	s := &StructDefinition{Name: p.parseIdentifier()}
	p.expect("{")
	for !p.at("}") {
		if p.eof() {
			p.fail("expected %q", "}")
		}
		s.Fields = append(s.Fields, p.parseVariableDeclaration())
		p.expect(";")
	}
	p.next()
	s.Loc = p.spanFrom(start)
	return s
}

func (p *parser) parseEnum() *EnumDefinition {
	start := p.start()
	p.expect("enum")
	e := &EnumDefinition{Name: p.parseIdentifier()}
	p.expect("{")
	for !p.at("}") {
		e.Values = append(e.Values, p.parseIdentifier())
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	e.Loc = p.spanFrom(start)
	return e
}

func (p *parser) parseEvent() *EventDefinition {
	start := p.start()
	p.expect("event")
	ev := &EventDefinition{Name: p.parseIdentifier()}
	ev.Params, _ = p.parseParameterList()
	ev.Anonymous = p.accept("anonymous")
	p.expect(";")
	ev.Loc = p.spanFrom(start)
	return ev
}

func (p *parser) parseErrorDefinition() *ErrorDefinition {
	start := p.start()
	p.next() // error
	def := &ErrorDefinition{Name: p.parseIdentifier()}
	def.Params, _ = p.parseParameterList()
	p.expect(";")
	def.Loc = p.spanFrom(start)
	return def
}

func (p *parser) parseTypeDefinition() *TypeDefinition {
	start := p.start()
	p.expect("type")
	def := &TypeDefinition{Name: p.parseIdentifier()}
	p.expect("is")
	def.Type = p.parseTypeName()
	p.expect(";")
	def.Loc = p.spanFrom(start)
	return def
}

func (p *parser) parseUsing() *UsingDirective {
	start := p.start()
	p.expect("using")
	u := &UsingDirective{}
	if p.accept("{") {
		u.Braces = true
		for !p.at("}") {
			fnStart := p.start()
			fn := &UsingFunction{Path: p.parseIdentifierPath()}
			if p.accept("as") {
				t := p.tok()
				if t.Kind != lexer.TokenPunct {
					p.fail("expected user-definable operator")
				}
				fn.Operator = p.next().Text(p.src)
			}
			fn.Loc = p.spanFrom(fnStart)
			u.Functions = append(u.Functions, fn)
			if !p.accept(",") {
				break
			}
		}
		p.expect("}")
	} else {
		u.Library = p.parseIdentifierPath()
	}
	p.expect("for")
	if !p.accept("*") {
		u.Type = p.parseTypeName()
	}
	if p.at("global") {
		p.next()
		u.Global = true
	}
	p.expect(";")
	u.Loc = p.spanFrom(start)
	return u
}

func (p *parser) parseFunction() *FunctionDefinition {
	start := p.start()
	fn := &FunctionDefinition{}
	switch p.next().Text(p.src) {
	case "function":
		fn.Kind = FunctionKindFunction
		if p.tok().Kind == lexer.TokenIdentifier {
			fn.Name = p.parseIdentifier()
		}
	case "constructor":
		fn.Kind = FunctionKindConstructor
	case "modifier":
		fn.Kind = FunctionKindModifier
		fn.Name = p.parseIdentifier()
	case "fallback":
		fn.Kind = FunctionKindFallback
	case "receive":
		fn.Kind = FunctionKindReceive
	}
	if p.at("(") {
		paramsStart := p.start()
		fn.Params, _ = p.parseParameterList()
		fn.HasParams = true
		fn.ParamsSpan = p.spanFrom(paramsStart)
	} else if fn.Kind != FunctionKindModifier {
		p.fail("expected %q", "(")
	}
	for !p.at("{") && !p.at(";") && !p.at("returns") {
		if p.eof() {
			p.fail("expected function body")
		}
		fn.Attributes = append(fn.Attributes, p.parseAttribute(false))
	}
	if p.at("returns") {
		returnsStart := p.start()
		p.next()
		fn.Returns, _ = p.parseParameterList()
		fn.ReturnsSpan = p.spanFrom(returnsStart)
	}
	if !p.accept(";") {
		fn.Body = p.parseBlock()
	}
	fn.Loc = p.spanFrom(start)
	return fn
}

var visibilityWords = map[string]struct{}{"public": {}, "private": {}, "internal": {}, "external": {}}

var mutabilityWords = map[string]struct{}{"pure": {}, "view": {}, "payable": {}}

// parseAttribute parses one function attribute, or one state variable attribute when forVariable is set.
func (p *parser) parseAttribute(forVariable bool) *Attribute {
	start := p.start()
	word := p.textAt(0)
	attr := &Attribute{Value: word}
	_, isVisibility := visibilityWords[word]
	_, isMutability := mutabilityWords[word]
	switch {
	case isVisibility:
		attr.Kind = AttrVisibility
		p.next()
	case isMutability && !forVariable:
		attr.Kind = AttrMutability
		p.next()
	case word == "constant":
		attr.Kind = AttrConstant
		if !forVariable {
			attr.Kind = AttrMutability
		}
		p.next()
	case word == "immutable" && forVariable:
		attr.Kind = AttrImmutable
		p.next()
	case word == "virtual":
		attr.Kind = AttrVirtual
		p.next()
	case word == "override":
		attr.Kind = AttrOverride
		p.next()
		if p.accept("(") {
			attr.HasParens = true
			for !p.at(")") {
				attr.Paths = append(attr.Paths, p.parseIdentifierPath())
				if !p.accept(",") {
					break
				}
			}
			p.expect(")")
		}
	case p.tok().Kind == lexer.TokenIdentifier && !forVariable:
		attr.Kind = AttrModifier
		attr.Value = ""
		attr.Name = p.parseIdentifierPath()
		if p.at("(") {
			attr.HasParens = true
			attr.Args, _ = p.parseExpressionList("(", ")")
		}
	default:
		p.fail("expected attribute")
	}
	attr.Loc = p.spanFrom(start)
	return attr
}

func (p *parser) atVariableAttribute() bool {
	switch p.textAt(0) {
	case "public", "private", "internal", "external", "constant", "immutable", "override", "virtual":
		return true
	}
	return false
}

func (p *parser) parseVariableDefinition() *VariableDefinition {
	start := p.start()
	v := &VariableDefinition{Type: p.parseTypeName()}
	for p.atVariableAttribute() {
		v.Attributes = append(v.Attributes, p.parseAttribute(true))
	}
	v.Name = p.parseIdentifier()
	if p.accept("=") {
		v.Initializer = p.parseExpression()
	}
	p.expect(";")
	v.Loc = p.spanFrom(start)
	return v
}

func (p *parser) parseParameterList() ([]*Parameter, text.Span) {
	start := p.start()
	p.expect("(")
	var params []*Parameter
	for !p.at(")") {
		params = append(params, p.parseParameter())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return params, p.spanFrom(start)
}

var storageWords = map[string]struct{}{"memory": {}, "storage": {}, "calldata": {}}

func (p *parser) parseParameter() *Parameter {
	start := p.start()
	param := &Parameter{Type: p.parseTypeName()}
	for {
		word := p.textAt(0)
		if _, ok := storageWords[word]; ok {
			param.Storage = word
			p.next()
			continue
		}
		if word == "indexed" {
			param.Indexed = true
			p.next()
			continue
		}
		break
	}
	if p.tok().Kind == lexer.TokenIdentifier {
		param.Name = p.parseIdentifier()
	}
	param.Loc = p.spanFrom(start)
	return param
}

func (p *parser) parseVariableDeclaration() *VariableDeclaration {
	start := p.start()
	decl := &VariableDeclaration{Type: p.parseTypeName()}
	if _, ok := storageWords[p.textAt(0)]; ok {
		decl.Storage = p.next().Text(p.src)
	}
	decl.Name = p.parseIdentifier()
	decl.Loc = p.spanFrom(start)
	return decl
}

// parseTypeName parses elementary, user-defined, mapping and array type names.
func (p *parser) parseTypeName() Expression {
	start := p.start()
	var t Expression
	switch {
	case p.at("mapping"):
		t = p.parseMapping()
	case p.at("function"):
		p.unsupported("function types")
	case p.tok().Kind == lexer.TokenIdentifier && isElementaryTypeName(p.textAt(0)):
		t = p.parseElementaryType()
	default:
		t = p.parseIdentifierPath()
	}
	for p.at("[") {
		p.next()
		var index Expression
		if !p.at("]") {
			index = p.parseExpression()
		}
		p.expect("]")
		t = &IndexAccess{node: at(p.spanFrom(start)), Expr: t, Index: index}
	}
	return t
}

func (p *parser) parseElementaryType() *ElementaryType {
	start := p.start()
	et := &ElementaryType{Name: p.next().Text(p.src)}
	if et.Name == "address" && p.at("payable") {
		p.next()
		et.Payable = true
	}
	et.Loc = p.spanFrom(start)
	return et
}

func (p *parser) parseMapping() *MappingType {
	start := p.start()
	p.expect("mapping")
	p.expect("(")
	m := &MappingType{Key: p.parseTypeName()}
	if p.tok().Kind == lexer.TokenIdentifier {
		m.KeyName = p.parseIdentifier()
	}
	p.expect("=>")
	m.Value = p.parseTypeName()
	if p.tok().Kind == lexer.TokenIdentifier {
		m.ValueName = p.parseIdentifier()
	}
	p.expect(")")
	m.Loc = p.spanFrom(start)
	return m
}

// isElementaryTypeName reports whether word names a built-in value type.
func isElementaryTypeName(word string) bool {
	switch word {
	case "address", "bool", "string", "bytes", "byte", "int", "uint", "fixed", "ufixed":
		return true
	}
	for _, prefix := range []string{"uint", "int", "bytes"} {
		if rest, ok := strings.CutPrefix(word, prefix); ok && isDigits(rest) {
			return true
		}
	}
	for _, prefix := range []string{"ufixed", "fixed"} {
		if rest, ok := strings.CutPrefix(word, prefix); ok {
			m, n, found := strings.Cut(rest, "x")
			return found && isDigits(m) && isDigits(n)
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
