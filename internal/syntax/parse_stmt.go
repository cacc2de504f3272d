package syntax

import "github.com/kpumuk/sol-weaver/internal/lexer"

func (p *parser) parseBlock() *Block {
	start := p.start()
	p.expect("{")
	b := &Block{}
	for !p.at("}") {
		if p.eof() {
			p.fail("expected %q", "}")
		}
		b.Statements = append(b.Statements, p.parseStatement())
	}
	p.next()
	b.Loc = p.spanFrom(start)
	return b
}

func (p *parser) parseStatement() Statement {
	p.enter()
	defer p.leave()

	start := p.start()
	switch p.textAt(0) {
	case "{":
		return p.parseBlock()
	case "unchecked":
		if p.textAt(1) == "{" {
			p.next()
			b := p.parseBlock()
			b.Unchecked = true
			b.Loc = p.spanFrom(start)
			return b
		}
	case "if":
		return p.parseIf()
	case "while":
		p.next()
		p.expect("(")
		cond := p.parseExpression()
		p.expect(")")
		body := p.parseStatement()
		return &WhileStatement{node: at(p.spanFrom(start)), Cond: cond, Body: body}
	case "do":
		p.next()
		body := p.parseStatement()
		p.expect("while")
		p.expect("(")
		cond := p.parseExpression()
		p.expect(")")
		p.expect(";")
		return &DoWhileStatement{node: at(p.spanFrom(start)), Body: body, Cond: cond}
	case "for":
		return p.parseFor()
	case "return":
		p.next()
		var expr Expression
		if !p.at(";") {
			expr = p.parseExpression()
		}
		p.expect(";")
		return &ReturnStatement{node: at(p.spanFrom(start)), Expr: expr}
	case "emit":
		p.next()
		call := p.parseExpression()
		p.expect(";")
		return &EmitStatement{node: at(p.spanFrom(start)), Call: call}
	case "revert":
		if p.peek(1).Kind == lexer.TokenIdentifier {
			p.next()
			call := p.parseExpression()
			p.expect(";")
			return &RevertStatement{node: at(p.spanFrom(start)), Call: call}
		}
	case "break":
		p.next()
		p.expect(";")
		return &BreakStatement{node: at(p.spanFrom(start))}
	case "continue":
		p.next()
		p.expect(";")
		return &ContinueStatement{node: at(p.spanFrom(start))}
	case "try":
		return p.parseTry()
	case "assembly":
		return p.parseAssembly()
	}
	return p.parseSimpleStatement()
}

func (p *parser) parseIf() *IfStatement {
	start := p.start()
	p.expect("if")
	p.expect("(")
	stmt := &IfStatement{Cond: p.parseExpression()}
	p.expect(")")
	stmt.Then = p.parseStatement()
	if p.accept("else") {
		stmt.Else = p.parseStatement()
	}
	stmt.Loc = p.spanFrom(start)
	return stmt
}

func (p *parser) parseFor() *ForStatement {
	start := p.start()
	p.expect("for")
	p.expect("(")
	stmt := &ForStatement{}
	if !p.accept(";") {
		stmt.Init = p.parseSimpleStatement()
	}
	if !p.at(";") {
		stmt.Cond = p.parseExpression()
	}
	p.expect(";")
	if !p.at(")") {
		stmt.Update = p.parseExpression()
	}
	p.expect(")")
	stmt.Body = p.parseStatement()
	stmt.Loc = p.spanFrom(start)
	return stmt
}

// parseSimpleStatement parses a variable declaration or an expression statement, including the semicolon.
func (p *parser) parseSimpleStatement() Statement {
	start := p.start()
	if decl := p.tryVariableStatement(); decl != nil {
		return decl
	}
	expr := p.parseExpression()
	p.expect(";")
	return &ExpressionStatement{node: at(p.spanFrom(start)), Expr: expr}
}

// tryVariableStatement speculatively parses a declaration header. Only the
// header is speculative: once it matches, errors in the initializer are reported.
func (p *parser) tryVariableStatement() *VariableStatement {
	start := p.start()
	stmt := &VariableStatement{}
	var matched bool
	if p.at("(") {
		matched = p.speculate(func() {
			p.next()
			named := false
			for {
				if p.at(",") || p.at(")") {
					stmt.Declarations = append(stmt.Declarations, nil)
				} else {
					stmt.Declarations = append(stmt.Declarations, p.parseVariableDeclaration())
					named = true
				}
				if !p.accept(",") {
					break
				}
			}
			p.expect(")")
			if !named || !p.at("=") {
				p.fail("expected tuple declaration")
			}
		})
		stmt.Tuple = true
	} else {
		matched = p.speculate(func() {
			stmt.Declarations = []*VariableDeclaration{p.parseVariableDeclaration()}
		})
	}
	if !matched {
		return nil
	}
	if p.accept("=") {
		stmt.Initializer = p.parseExpression()
	} else if stmt.Tuple {
		p.fail("expected %q", "=")
	}
	p.expect(";")
	stmt.Loc = p.spanFrom(start)
	return stmt
}

func (p *parser) parseTry() *TryStatement {
	start := p.start()
	p.expect("try")
	stmt := &TryStatement{Expr: p.parseExpression()}
	if p.at("returns") {
		returnsStart := p.start()
		p.next()
		stmt.Returns, _ = p.parseParameterList()
		stmt.HasReturns = true
		stmt.ReturnsSpan = p.spanFrom(returnsStart)
	}
	stmt.Body = p.parseBlock()
	for p.at("catch") {
		clauseStart := p.start()
		p.next()
		clause := &CatchClause{}
		if p.tok().Kind == lexer.TokenIdentifier {
			clause.Name = p.parseIdentifier()
		}
		if p.at("(") {
			clause.Params, _ = p.parseParameterList()
			clause.HasParams = true
		}
		clause.Body = p.parseBlock()
		clause.Loc = p.spanFrom(clauseStart)
		stmt.Catches = append(stmt.Catches, clause)
	}
	if len(stmt.Catches) == 0 {
		p.fail("expected %q", "catch")
	}
	stmt.Loc = p.spanFrom(start)
	return stmt
}

func (p *parser) parseAssembly() *AssemblyStatement {
	start := p.start()
	p.expect("assembly")
	stmt := &AssemblyStatement{}
	if p.tok().Kind == lexer.TokenString {
		stmt.Dialect = p.parseStringLiteral()
	}
	if p.accept("(") {
		for !p.at(")") {
			if p.tok().Kind != lexer.TokenString {
				p.fail("expected assembly flag")
			}
			stmt.Flags = append(stmt.Flags, p.parseStringLiteral())
			if !p.accept(",") {
				break
			}
		}
		p.expect(")")
	}
	bodyStart := p.start()
	if !p.speculate(func() { stmt.Block = p.parseYulBlock() }) {
		p.skipBalanced()
	}
	stmt.Body = p.spanFrom(bodyStart)
	stmt.Loc = p.spanFrom(start)
	return stmt
}
