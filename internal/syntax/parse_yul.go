package syntax

import "github.com/kpumuk/sol-weaver/internal/lexer"

// yulReserved are the words Yul never accepts as identifiers. Solidity
// keywords such as `return` are plain names in assembly.
var yulReserved = map[string]struct{}{
	"let": {}, "function": {}, "if": {}, "switch": {}, "case": {}, "default": {},
	"for": {}, "break": {}, "continue": {}, "leave": {}, "true": {}, "false": {},
}

// skipBalanced consumes a braced region without parsing it.
func (p *parser) skipBalanced() {
	p.expect("{")
	for depth := 1; depth > 0; {
		switch {
		case p.eof() || p.tok().Kind == lexer.TokenError:
			p.fail("expected %q", "}")
		case p.at("{"):
			depth++
		case p.at("}"):
			depth--
		}
		p.next()
	}
}

func (p *parser) parseYulIdentifier() *Identifier {
	t := p.tok()
	if _, reserved := yulReserved[p.textAt(0)]; reserved || (t.Kind != lexer.TokenIdentifier && t.Kind != lexer.TokenKeyword) {
		p.fail("expected identifier")
	}
	p.next()
	return &Identifier{node: at(t.Span), Name: t.Text(p.src)}
}

func (p *parser) parseYulIdentifierList() []*Identifier {
	var out []*Identifier
	for {
		out = append(out, p.parseYulIdentifier())
		if !p.accept(",") {
			return out
		}
	}
}

func (p *parser) parseYulBlock() *YulBlock {
	p.enter()
	defer p.leave()

	start := p.start()
	p.expect("{")
	b := &YulBlock{}
	for !p.at("}") {
		if p.eof() {
			p.fail("expected %q", "}")
		}
		b.Statements = append(b.Statements, p.parseYulStatement())
	}
	p.next()
	b.Loc = p.spanFrom(start)
	return b
}

func (p *parser) parseYulStatement() Statement {
	start := p.start()
	switch p.textAt(0) {
	case "{":
		return p.parseYulBlock()
	case "let":
		p.next()
		decl := &YulVariableDeclaration{Names: p.parseYulIdentifierList()}
		if p.accept(":=") {
			decl.Value = p.parseYulExpression()
		}
		decl.Loc = p.spanFrom(start)
		return decl
	case "if":
		p.next()
		cond := p.parseYulExpression()
		body := p.parseYulBlock()
		return &YulIf{node: at(p.spanFrom(start)), Cond: cond, Body: body}
	case "for":
		p.next()
		init := p.parseYulBlock()
		cond := p.parseYulExpression()
		post := p.parseYulBlock()
		body := p.parseYulBlock()
		return &YulFor{node: at(p.spanFrom(start)), Init: init, Cond: cond, Post: post, Body: body}
	case "switch":
		return p.parseYulSwitch()
	case "function":
		return p.parseYulFunction()
	case "leave", "break", "continue":
		t := p.next()
		return &YulJump{node: at(t.Span), Keyword: t.Text(p.src)}
	}

	expr := p.parseYulExpression()
	if path, ok := expr.(*YulPath); ok && (p.at(",") || p.at(":=")) {
		assign := &YulAssignment{Targets: []*YulPath{path}}
		for p.accept(",") {
			assign.Targets = append(assign.Targets, p.parseYulPath())
		}
		p.expect(":=")
		assign.Value = p.parseYulExpression()
		assign.Loc = p.spanFrom(start)
		return assign
	}
	call, ok := expr.(*YulCall)
	if !ok {
		p.fail("expected assembly statement")
	}
	return &YulExpressionStatement{node: at(call.Loc), Call: call}
}

func (p *parser) parseYulSwitch() *YulSwitch {
	start := p.start()
	p.expect("switch")
	s := &YulSwitch{Expr: p.parseYulExpression()}
	for p.at("case") {
		caseStart := p.start()
		p.next()
		value := p.parseYulLiteral()
		body := p.parseYulBlock()
		s.Cases = append(s.Cases, &YulCase{node: at(p.spanFrom(caseStart)), Value: value, Body: body})
	}
	if p.at("default") {
		caseStart := p.start()
		p.next()
		body := p.parseYulBlock()
		s.Default = &YulCase{node: at(p.spanFrom(caseStart)), Body: body}
	}
	if len(s.Cases) == 0 && s.Default == nil {
		p.fail("expected %q", "case")
	}
	s.Loc = p.spanFrom(start)
	return s
}

func (p *parser) parseYulFunction() *YulFunctionDefinition {
	start := p.start()
	p.expect("function")
	fn := &YulFunctionDefinition{Name: p.parseYulIdentifier()}
	paramsStart := p.start()
	p.expect("(")
	if !p.at(")") {
		fn.Params = p.parseYulIdentifierList()
	}
	p.expect(")")
	fn.ParamsSpan = p.spanFrom(paramsStart)
	if p.accept("->") {
		fn.Returns = p.parseYulIdentifierList()
	}
	fn.Body = p.parseYulBlock()
	fn.Loc = p.spanFrom(start)
	return fn
}

func (p *parser) parseYulPath() *YulPath {
	start := p.start()
	path := &YulPath{Parts: []*Identifier{p.parseYulIdentifier()}}
	for p.accept(".") {
		path.Parts = append(path.Parts, p.parseYulIdentifier())
	}
	path.Loc = p.spanFrom(start)
	return path
}

// parseYulLiteral parses a number, string or boolean literal.
func (p *parser) parseYulLiteral() Expression {
	t := p.tok()
	switch {
	case t.Kind == lexer.TokenNumber || t.Kind == lexer.TokenHexNumber:
		p.next()
		return &YulNumber{node: at(t.Span), Value: t.Text(p.src)}
	case t.Kind == lexer.TokenString:
		return p.parseStringLiteral()
	case t.Kind == lexer.TokenHexString:
		return p.parseHexLiteral()
	case p.at("true") || p.at("false"):
		value := p.at("true")
		p.next()
		return &BoolLiteral{node: at(t.Span), Value: value}
	}
	p.fail("expected literal")
	return nil
}

func (p *parser) parseYulExpression() Expression {
	p.enter()
	defer p.leave()

	t := p.tok()
	if (t.Kind != lexer.TokenIdentifier && t.Kind != lexer.TokenKeyword) || p.at("true") || p.at("false") {
		return p.parseYulLiteral()
	}
	start := p.start()
	path := p.parseYulPath()
	if !p.at("(") {
		return path
	}
	if len(path.Parts) > 1 {
		p.fail("expected %q", ":=")
	}
	argsStart := p.start()
	p.next()
	call := &YulCall{Name: path.Parts[0]}
	for !p.at(")") {
		call.Args = append(call.Args, p.parseYulExpression())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	call.ArgsSpan = p.spanFrom(argsStart)
	call.Loc = p.spanFrom(start)
	return call
}
