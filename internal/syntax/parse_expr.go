package syntax

import (
	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/text"
)

var assignmentOps = map[string]struct{}{
	"=": {}, "|=": {}, "^=": {}, "&=": {}, "<<=": {}, ">>=": {}, ">>>=": {},
	"+=": {}, "-=": {}, "*=": {}, "/=": {}, "%=": {},
}

// binaryPrecedence follows the Solidity operator table; higher binds tighter.
var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"|":  5,
	"^":  6,
	"&":  7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

var prefixOps = map[string]struct{}{"!": {}, "~": {}, "-": {}, "++": {}, "--": {}, "delete": {}}

var numberUnits = map[string]struct{}{
	"wei": {}, "gwei": {}, "ether": {}, "szabo": {}, "finney": {},
	"seconds": {}, "minutes": {}, "hours": {}, "days": {}, "weeks": {}, "years": {},
}

func (p *parser) parseExpression() Expression {
	p.enter()
	defer p.leave()

	start := p.start()
	left := p.parseConditional()
	if _, ok := assignmentOps[p.textAt(0)]; ok {
		op := p.next().Text(p.src)
		right := p.parseExpression()
		return &AssignExpression{node: at(p.spanFrom(start)), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseConditional() Expression {
	start := p.start()
	cond := p.parseBinary(1)
	if !p.accept("?") {
		return cond
	}
	then := p.parseExpression()
	p.expect(":")
	els := p.parseExpression()
	return &ConditionalExpression{node: at(p.spanFrom(start)), Cond: cond, Then: then, Else: els}
}

func (p *parser) parseBinary(minPrec int) Expression {
	start := p.start()
	left := p.parseUnary()
	for {
		op := p.textAt(0)
		prec, ok := binaryPrecedence[op]
		if !ok || prec < minPrec || p.tok().Kind != lexer.TokenPunct {
			return left
		}
		p.next()
		var right Expression
		if op == "**" {
			right = p.parseBinary(prec)
		} else {
			right = p.parseBinary(prec + 1)
		}
		left = &BinaryExpression{node: at(p.spanFrom(start)), Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() Expression {
	start := p.start()
	if _, ok := prefixOps[p.textAt(0)]; ok {
		p.enter()
		defer p.leave()
		op := p.next().Text(p.src)
		operand := p.parseUnary()
		return &UnaryExpression{node: at(p.spanFrom(start)), Op: op, Operand: operand}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() Expression {
	start := p.start()
	expr := p.parsePrimary()
	for {
		switch {
		case p.at("."):
			p.next()
			member := p.parseMemberName()
			expr = &MemberAccess{node: at(p.spanFrom(start)), Expr: expr, Member: member}
		case p.at("["):
			expr = p.parseIndex(start, expr)
		case p.at("("):
			expr = p.parseCall(start, expr)
		case p.at("{") && p.peek(1).Kind == lexer.TokenIdentifier && p.textAt(2) == ":":
			p.next()
			opts := &CallOptions{Callee: expr, Options: p.parseNamedArguments()}
			opts.Loc = p.spanFrom(start)
			expr = opts
		case p.at("++") || p.at("--"):
			op := p.next().Text(p.src)
			return &UnaryExpression{node: at(p.spanFrom(start)), Op: op, Operand: expr, Postfix: true}
		default:
			return expr
		}
	}
}

func (p *parser) parseIndex(start text.ByteOffset, expr Expression) Expression {
	p.expect("[")
	var first Expression
	if !p.at("]") && !p.at(":") {
		first = p.parseExpression()
	}
	if p.accept(":") {
		var second Expression
		if !p.at("]") {
			second = p.parseExpression()
		}
		p.expect("]")
		return &IndexRange{node: at(p.spanFrom(start)), Expr: expr, Start: first, End: second}
	}
	p.expect("]")
	return &IndexAccess{node: at(p.spanFrom(start)), Expr: expr, Index: first}
}

func (p *parser) parseCall(start text.ByteOffset, callee Expression) *FunctionCall {
	argsStart := p.start()
	call := &FunctionCall{Callee: callee}
	if p.textAt(1) == "{" {
		p.next()
		p.next()
		call.Named = true
		call.NamedArgs = p.parseNamedArguments()
		p.expect(")")
	} else {
		call.Args, _ = p.parseExpressionList("(", ")")
	}
	call.ArgsSpan = p.spanFrom(argsStart)
	call.Loc = p.spanFrom(start)
	return call
}

// parseNamedArguments parses `name: value, ...}` after the opening brace, consuming the closing brace.
func (p *parser) parseNamedArguments() []*NamedArgument {
	var out []*NamedArgument
	for !p.at("}") {
		argStart := p.start()
		arg := &NamedArgument{Name: p.parseIdentifier()}
		p.expect(":")
		arg.Value = p.parseExpression()
		arg.Loc = p.spanFrom(argStart)
		out = append(out, arg)
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	return out
}

// parseExpressionList parses a delimited, comma separated list of expressions.
func (p *parser) parseExpressionList(open, closing string) ([]Expression, text.Span) {
	start := p.start()
	p.expect(open)
	var out []Expression
	for !p.at(closing) {
		out = append(out, p.parseExpression())
		if !p.accept(",") {
			break
		}
	}
	p.expect(closing)
	return out, p.spanFrom(start)
}

func (p *parser) parsePrimary() Expression {
	start := p.start()
	t := p.tok()
	word := p.textAt(0)
	switch {
	case t.Kind == lexer.TokenNumber || t.Kind == lexer.TokenHexNumber:
		p.next()
		num := &NumberLiteral{Value: t.Text(p.src), Hex: t.Kind == lexer.TokenHexNumber}
		if _, ok := numberUnits[p.textAt(0)]; ok && p.tok().Kind == lexer.TokenIdentifier {
			num.Unit = p.parseIdentifier()
		}
		num.Loc = p.spanFrom(start)
		return num
	case t.Kind == lexer.TokenString:
		return p.parseStringLiteral()
	case t.Kind == lexer.TokenHexString:
		return p.parseHexLiteral()
	case word == "true" || word == "false":
		p.next()
		return &BoolLiteral{node: at(t.Span), Value: word == "true"}
	case (word == "type" || word == "payable") && p.textAt(1) == "(":
		p.next()
		if word == "payable" {
			return &ElementaryType{node: at(t.Span), Name: word}
		}
		return &Identifier{node: at(t.Span), Name: word}
	case word == "new":
		p.next()
		typ := p.parseTypeName()
		return &NewExpression{node: at(p.spanFrom(start)), Type: typ}
	case word == "mapping":
		return p.parseMapping()
	case t.Kind == lexer.TokenIdentifier && isElementaryTypeName(word):
		return p.parseElementaryType()
	case t.Kind == lexer.TokenIdentifier:
		return p.parseIdentifier()
	case word == "(":
		p.next()
		tuple := &TupleExpression{}
		if !p.at(")") {
			for {
				if p.at(",") || p.at(")") {
					tuple.Elements = append(tuple.Elements, nil)
				} else {
					tuple.Elements = append(tuple.Elements, p.parseExpression())
				}
				if !p.accept(",") {
					break
				}
			}
		}
		p.expect(")")
		tuple.Loc = p.spanFrom(start)
		return tuple
	case word == "[":
		elems, sp := p.parseExpressionList("[", "]")
		return &ArrayLiteral{node: at(sp), Elements: elems}
	}
	p.fail("expected expression")
	return nil
}

// parseStringLiteral joins adjacent string tokens into one literal.
func (p *parser) parseStringLiteral() *StringLiteral {
	start := p.start()
	lit := &StringLiteral{}
	for p.tok().Kind == lexer.TokenString {
		t := p.next()
		prefix := 0
		if t.Flags.Has(lexer.TokenFlagUnicode) {
			prefix = len("unicode")
		}
		lit.Parts = append(lit.Parts, p.stringPart(t, prefix))
	}
	if len(lit.Parts) == 0 {
		p.fail("expected string literal")
	}
	lit.Loc = p.spanFrom(start)
	return lit
}

func (p *parser) parseHexLiteral() *HexLiteral {
	start := p.start()
	lit := &HexLiteral{}
	for p.tok().Kind == lexer.TokenHexString {
		lit.Parts = append(lit.Parts, p.stringPart(p.next(), len("hex")))
	}
	lit.Loc = p.spanFrom(start)
	return lit
}

func (p *parser) stringPart(t lexer.Token, prefix int) *StringPart {
	raw := t.Text(p.src)
	return &StringPart{
		node:    at(t.Span),
		Unicode: t.Flags.Has(lexer.TokenFlagUnicode),
		Quote:   raw[prefix],
		Value:   raw[prefix+1 : len(raw)-1],
	}
}
