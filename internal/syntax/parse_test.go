package syntax

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpumuk/sol-weaver/internal/lexer"
	"github.com/kpumuk/sol-weaver/internal/testutil"
)

func mustParse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), []byte(src), ParseOptions{URI: "file:///demo.sol"})
	require.NoError(t, err)
	require.Empty(t, tree.Diagnostics, "unexpected diagnostics")
	return tree
}

func TestParseValidBuildsTree(t *testing.T) {
	t.Parallel()

	src := `// SPDX-License-Identifier: MIT
pragma solidity >=0.8.0  <0.9.0;

import "./A.sol";
import {B as C, D} from "./B.sol";
import * as E from "./E.sol";

abstract contract Vault is Ownable(msg.sender), IERC20 {
    using SafeMath for uint256;

    uint256 public constant FEE = 10 gwei;
    mapping(address owner => uint256) private balances;

    event Deposit(address indexed from, uint256 amount);
    error Unauthorized(address caller);

    constructor(address owner) Ownable(owner) {}

    function deposit(uint256 amount) external payable virtual override returns (bool ok) {
        balances[msg.sender] += amount;
        emit Deposit(msg.sender, amount);
        return true;
    }

    receive() external payable {}
}
`

	tree := mustParse(t, src)
	require.Equal(t, "file:///demo.sol", tree.URI)
	require.NotNil(t, tree.LineIndex)
	require.Equal(t, lexer.TokenEOF, tree.Tokens[len(tree.Tokens)-1].Kind)
	require.Len(t, tree.Comments, 1)
	require.Len(t, tree.Unit.Parts, 5)

	pragma, ok := tree.Unit.Parts[0].(*PragmaDirective)
	require.True(t, ok)
	assert.Equal(t, "solidity", pragma.Name.Name)
	assert.Equal(t, ">=0.8.0 <0.9.0", pragma.Value)

	imp, ok := tree.Unit.Parts[2].(*ImportDirective)
	require.True(t, ok)
	require.Len(t, imp.Symbols, 2)
	assert.Equal(t, "B", imp.Symbols[0].Name.Name)
	assert.Equal(t, "C", imp.Symbols[0].Alias.Name)
	assert.Equal(t, "./B.sol", imp.Path.Parts[0].Value)

	star, ok := tree.Unit.Parts[3].(*ImportDirective)
	require.True(t, ok)
	assert.True(t, star.Star)
	assert.Equal(t, "E", star.Alias.Name)

	c, ok := tree.Unit.Parts[4].(*ContractDefinition)
	require.True(t, ok)
	assert.Equal(t, ContractKindAbstract, c.Kind)
	assert.Equal(t, "Vault", c.Name.Name)
	require.Len(t, c.Bases, 2)
	assert.True(t, c.Bases[0].HasArgs)
	assert.False(t, c.Bases[1].HasArgs)
	require.Len(t, c.Parts, 8)

	kinds := make([]string, 0, len(c.Parts))
	for _, p := range c.Parts {
		kinds = append(kinds, fmt.Sprintf("%T", p))
	}
	assert.Equal(t, []string{
		"*syntax.UsingDirective",
		"*syntax.VariableDefinition",
		"*syntax.VariableDefinition",
		"*syntax.EventDefinition",
		"*syntax.ErrorDefinition",
		"*syntax.FunctionDefinition",
		"*syntax.FunctionDefinition",
		"*syntax.FunctionDefinition",
	}, kinds)

	fee := c.Parts[1].(*VariableDefinition)
	require.Len(t, fee.Attributes, 2)
	assert.Equal(t, AttrVisibility, fee.Attributes[0].Kind)
	assert.Equal(t, AttrConstant, fee.Attributes[1].Kind)
	num := fee.Initializer.(*NumberLiteral)
	assert.Equal(t, "10", num.Value)
	assert.Equal(t, "gwei", num.Unit.Name)

	balances := c.Parts[2].(*VariableDefinition)
	mapping := balances.Type.(*MappingType)
	assert.Equal(t, "owner", mapping.KeyName.Name)
	assert.Nil(t, mapping.ValueName)

	ctor := c.Parts[5].(*FunctionDefinition)
	assert.Equal(t, FunctionKindConstructor, ctor.Kind)
	require.Len(t, ctor.Attributes, 1)
	assert.Equal(t, AttrModifier, ctor.Attributes[0].Kind)
	assert.True(t, ctor.Attributes[0].HasParens)

	deposit := c.Parts[6].(*FunctionDefinition)
	assert.Equal(t, "deposit", deposit.Name.Name)
	require.Len(t, deposit.Attributes, 4)
	require.Len(t, deposit.Returns, 1)
	assert.Equal(t, "returns (bool ok)", string(deposit.ReturnsSpan.Slice(tree.Source)))
	assert.Equal(t, "(uint256 amount)", string(deposit.ParamsSpan.Slice(tree.Source)))
	require.Len(t, deposit.Body.Statements, 3)
	assign := deposit.Body.Statements[0].(*ExpressionStatement)
	assert.Equal(t, "balances[msg.sender] += amount;", string(assign.Span().Slice(tree.Source)))
	assert.IsType(t, &AssignExpression{}, assign.Expr)

	receive := c.Parts[7].(*FunctionDefinition)
	assert.Equal(t, FunctionKindReceive, receive.Kind)
	assert.Nil(t, receive.Name)
}

func TestParseStatementDisambiguation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		stmt string
		want string
	}{
		"typed declaration":       {stmt: "uint256 x = 1;", want: "*syntax.VariableStatement"},
		"storage declaration":     {stmt: "bytes memory data;", want: "*syntax.VariableStatement"},
		"user type declaration":   {stmt: "Lib.Point memory p = q;", want: "*syntax.VariableStatement"},
		"array type declaration":  {stmt: "uint[] memory xs = new uint[](3);", want: "*syntax.VariableStatement"},
		"tuple declaration":       {stmt: "(uint a, , bool c) = f();", want: "*syntax.VariableStatement"},
		"tuple assignment":        {stmt: "(a, b) = (b, a);", want: "*syntax.ExpressionStatement"},
		"index assignment":        {stmt: "a[i] = 1;", want: "*syntax.ExpressionStatement"},
		"conversion call":         {stmt: "uint(x).foo();", want: "*syntax.ExpressionStatement"},
		"payable transfer":        {stmt: "payable(to).transfer(1 ether);", want: "*syntax.ExpressionStatement"},
		"revert call":             {stmt: `revert("no");`, want: "*syntax.ExpressionStatement"},
		"custom revert":           {stmt: "revert Errors.Bad(1);", want: "*syntax.RevertStatement"},
		"unchecked block":         {stmt: "unchecked { i++; }", want: "*syntax.Block"},
		"call options":            {stmt: `(bool ok, ) = to.call{value: v}("");`, want: "*syntax.VariableStatement"},
		"inline assembly":         {stmt: `assembly ("memory-safe") { let x := mload(0x40) }`, want: "*syntax.AssemblyStatement"},
		"try catch":               {stmt: "try t.f() returns (uint v) { } catch Error(string memory r) { } catch { }", want: "*syntax.TryStatement"},
		"for loop":                {stmt: "for (uint i; i < n; ++i) {}", want: "*syntax.ForStatement"},
		"do while":                {stmt: "do { x--; } while (x > 0);", want: "*syntax.DoWhileStatement"},
		"delete expression":       {stmt: "delete m[k];", want: "*syntax.ExpressionStatement"},
		"named arguments":         {stmt: "f({a: 1, b: 2});", want: "*syntax.ExpressionStatement"},
		"index range":             {stmt: "bytes calldata s = data[4:];", want: "*syntax.VariableStatement"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tree := mustParse(t, "function f() {\n"+tt.stmt+"\n}\n")
			fn := tree.Unit.Parts[0].(*FunctionDefinition)
			require.Len(t, fn.Body.Statements, 1)
			stmt := fn.Body.Statements[0]
			assert.Equal(t, tt.want, fmt.Sprintf("%T", stmt))
			assert.Equal(t, tt.stmt, string(stmt.Span().Slice(tree.Source)))
		})
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		expr string
		want string
	}{
		"mul binds tighter":   {expr: "a + b * c", want: "(a + (b * c))"},
		"left associative":    {expr: "a - b - c", want: "((a - b) - c)"},
		"power right assoc":   {expr: "a ** b ** c", want: "(a ** (b ** c))"},
		"unary before power":  {expr: "-a ** 2", want: "((-a) ** 2)"},
		"logical":             {expr: "a || b && c == d", want: "(a || (b && (c == d)))"},
		"shift vs compare":    {expr: "a << 1 < b", want: "((a << 1) < b)"},
		"bitwise order":       {expr: "a | b ^ c & d", want: "(a | (b ^ (c & d)))"},
		"conditional":         {expr: "a ? b : c ? d : e", want: "(a ? b : (c ? d : e))"},
		"assignment right":    {expr: "a = b += c", want: "(a = (b += c))"},
		"postfix and member":  {expr: "x.y[i]++", want: "((x.y[i])++)"},
		"call chain":          {expr: "a.b(c).d", want: "(a.b(c)).d"},
		"tuple with gap":      {expr: "(a, , b)", want: "(a, _, b)"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tree := mustParse(t, "function f() {\n"+tt.expr+";\n}\n")
			stmt := tree.Unit.Parts[0].(*FunctionDefinition).Body.Statements[0].(*ExpressionStatement)
			assert.Equal(t, tt.want, renderExpr(stmt.Expr))
		})
	}
}

func TestParseMalformedCorpusReportsDiagnostics(t *testing.T) {
	t.Parallel()

	files, err := testutil.CorpusFiles("malformed")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			t.Parallel()

			src, err := os.ReadFile(path)
			require.NoError(t, err)
			tree, err := Parse(context.Background(), src, ParseOptions{URI: path})
			require.NoError(t, err)
			require.True(t, tree.HasErrors(), "expected syntax errors")
			for _, d := range tree.Diagnostics {
				require.NoError(t, d.Span.Validate())
				require.LessOrEqual(t, int(d.Span.End), len(src))
				require.NotEmpty(t, d.Message)
			}
		})
	}
}

func TestParseRecoversAtNextTopLevelItem(t *testing.T) {
	t.Parallel()

	src := []byte("contract A { function f( {} }\ncontract B {}\n")
	tree, err := Parse(context.Background(), src, ParseOptions{})
	require.NoError(t, err)
	require.True(t, tree.HasErrors())
	require.NotEmpty(t, tree.Unit.Parts)
	last, ok := tree.Unit.Parts[len(tree.Unit.Parts)-1].(*ContractDefinition)
	require.True(t, ok)
	assert.Equal(t, "B", last.Name.Name)
}

func TestParseDeepNestingIsBounded(t *testing.T) {
	t.Parallel()

	depth := maxNestingDepth + 10
	expr := ""
	for k := 0; k < depth; k++ {
		expr += "("
	}
	expr += "1"
	for k := 0; k < depth; k++ {
		expr += ")"
	}
	tree, err := Parse(context.Background(), []byte("uint constant X = "+expr+";\n"), ParseOptions{})
	require.NoError(t, err)
	require.True(t, tree.HasErrors())
	assert.Equal(t, DiagnosticUnsupported, tree.Diagnostics[0].Code)
}

func TestParseCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, []byte("contract A {}"), ParseOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestItemsPreorder(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, `contract A {
    uint x;
    function f() public {
        if (x > 0) {
            x = 1;
        }
    }
}
`)
	var got []string
	for _, n := range Items(tree.Unit) {
		got = append(got, fmt.Sprintf("%T", n))
	}
	assert.Equal(t, []string{
		"*syntax.ContractDefinition",
		"*syntax.VariableDefinition",
		"*syntax.FunctionDefinition",
		"*syntax.Block",
		"*syntax.IfStatement",
		"*syntax.Block",
		"*syntax.ExpressionStatement",
	}, got)
}

func TestIsElementaryTypeName(t *testing.T) {
	t.Parallel()

	for word, want := range map[string]bool{
		"uint": true, "uint256": true, "int8": true, "bytes32": true, "address": true,
		"fixed128x18": true, "ufixed": true, "string": true,
		"uintx": false, "bytes_": false, "fixed128": false, "Foo": false, "": false,
	} {
		assert.Equal(t, want, isElementaryTypeName(word), word)
	}
}

// renderExpr prints an expression with explicit grouping for precedence tests.
func renderExpr(e Expression) string {
	switch e := e.(type) {
	case nil:
		return "_"
	case *Identifier:
		return e.Name
	case *NumberLiteral:
		return e.Value
	case *BinaryExpression:
		return "(" + renderExpr(e.Left) + " " + e.Op + " " + renderExpr(e.Right) + ")"
	case *AssignExpression:
		return "(" + renderExpr(e.Left) + " " + e.Op + " " + renderExpr(e.Right) + ")"
	case *UnaryExpression:
		if e.Postfix {
			return "(" + renderExpr(e.Operand) + e.Op + ")"
		}
		return "(" + e.Op + renderExpr(e.Operand) + ")"
	case *ConditionalExpression:
		return "(" + renderExpr(e.Cond) + " ? " + renderExpr(e.Then) + " : " + renderExpr(e.Else) + ")"
	case *MemberAccess:
		return renderExpr(e.Expr) + "." + e.Member.Name
	case *IndexAccess:
		return "(" + renderExpr(e.Expr) + "[" + renderExpr(e.Index) + "])"
	case *FunctionCall:
		out := "(" + renderExpr(e.Callee) + "("
		for i, a := range e.Args {
			if i > 0 {
				out += ", "
			}
			out += renderExpr(a)
		}
		return out + "))"
	case *TupleExpression:
		out := "("
		for i, a := range e.Elements {
			if i > 0 {
				out += ", "
			}
			out += renderExpr(a)
		}
		return out + ")"
	default:
		return fmt.Sprintf("%T", e)
	}
}
