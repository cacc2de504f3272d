package syntax

import "github.com/kpumuk/sol-weaver/internal/text"

// Node is implemented by every syntax tree node.
type Node interface {
	Span() text.Span
}

// SourceUnitPart is a top-level item of a source file.
type SourceUnitPart interface {
	Node
	sourceUnitPart()
}

// ContractPart is an item inside a contract, interface or library body.
type ContractPart interface {
	Node
	contractPart()
}

// Statement is a function body statement.
type Statement interface {
	Node
	statement()
}

// Expression covers expressions and type names, which share one grammar.
type Expression interface {
	Node
	expression()
}

type node struct {
	Loc text.Span
}

func (n *node) Span() text.Span { return n.Loc }

func at(sp text.Span) node { return node{Loc: sp} }

// SourceUnit is the root of a parsed file.
type SourceUnit struct {
	node
	Parts []SourceUnitPart
}

// PragmaDirective is `pragma <name> <value>;`.
type PragmaDirective struct {
	node
	Name *Identifier
	// Value is the source text between the name and the semicolon.
	Value     string
	ValueSpan text.Span
}

// ImportDirective covers plain, aliased, star and symbol-list imports.
type ImportDirective struct {
	node
	Path    *StringLiteral
	Alias   *Identifier
	Star    bool
	Braces  bool
	Symbols []*ImportSymbol
}

// ImportSymbol is one entry of `import {a as b} from "p";`.
type ImportSymbol struct {
	node
	Name  *Identifier
	Alias *Identifier
}

// ContractKind distinguishes contract-like declarations.
type ContractKind string

// ContractKind values.
const (
	ContractKindContract  ContractKind = "contract"
	ContractKindAbstract  ContractKind = "abstract contract"
	ContractKindInterface ContractKind = "interface"
	ContractKindLibrary   ContractKind = "library"
)

// ContractDefinition is a contract, abstract contract, interface or library.
type ContractDefinition struct {
	node
	Kind  ContractKind
	Name  *Identifier
	Bases []*InheritanceSpecifier
	Parts []ContractPart
	// BodyStart is the offset of the opening brace.
	BodyStart text.ByteOffset
}

// InheritanceSpecifier is a base contract reference with optional constructor args.
type InheritanceSpecifier struct {
	node
	Name    Expression
	Args    []Expression
	HasArgs bool
}

// StructDefinition is `struct Name { fields }`.
type StructDefinition struct {
	node
	Name   *Identifier
	Fields []*VariableDeclaration
}

// EnumDefinition is `enum Name { values }`.
type EnumDefinition struct {
	node
	Name   *Identifier
	Values []*Identifier
}

// EventDefinition is `event Name(params) [anonymous];`.
type EventDefinition struct {
	node
	Name      *Identifier
	Params    []*Parameter
	Anonymous bool
}

// ErrorDefinition is `error Name(params);`.
type ErrorDefinition struct {
	node
	Name   *Identifier
	Params []*Parameter
}

// Parameter is a function, event, error, return or catch parameter.
type Parameter struct {
	node
	Type    Expression
	Indexed bool
	Storage string
	Name    *Identifier
}

// VariableDeclaration is `Type [storage] name` as used by struct fields and local variables.
type VariableDeclaration struct {
	node
	Type    Expression
	Storage string
	Name    *Identifier
}

// FunctionKind distinguishes function-like declarations.
type FunctionKind string

// FunctionKind values.
const (
	FunctionKindFunction    FunctionKind = "function"
	FunctionKindConstructor FunctionKind = "constructor"
	FunctionKindFallback    FunctionKind = "fallback"
	FunctionKindReceive     FunctionKind = "receive"
	FunctionKindModifier    FunctionKind = "modifier"
)

// FunctionDefinition is any function-like declaration.
type FunctionDefinition struct {
	node
	Kind FunctionKind
	// Name is nil for constructors, fallback and receive functions.
	Name       *Identifier
	Params     []*Parameter
	HasParams  bool
	ParamsSpan text.Span
	Attributes []*Attribute
	Returns    []*Parameter
	// ReturnsSpan covers `returns (...)` and is empty when absent.
	ReturnsSpan text.Span
	Body        *Block
}

// AttributeKind orders attributes for canonical output.
type AttributeKind uint8

// AttributeKind values in canonical order.
const (
	AttrVisibility AttributeKind = iota
	AttrMutability
	AttrConstant
	AttrImmutable
	AttrVirtual
	AttrOverride
	AttrModifier
)

// Attribute is a function or state variable attribute.
type Attribute struct {
	node
	Kind AttributeKind
	// Value holds the keyword for visibility, mutability, constant, immutable and virtual.
	Value string
	// Paths lists `override(A, B)` targets.
	Paths     []Expression
	HasParens bool
	// Name and Args describe a modifier or base constructor invocation.
	Name Expression
	Args []Expression
}

// VariableDefinition is a state variable or file-level constant.
type VariableDefinition struct {
	node
	Type        Expression
	Attributes  []*Attribute
	Name        *Identifier
	Initializer Expression
}

// UsingDirective is `using Lib for Type [global];` or `using {f as +} for Type;`.
type UsingDirective struct {
	node
	Library   Expression
	Braces    bool
	Functions []*UsingFunction
	// Type is nil for `for *`.
	Type   Expression
	Global bool
}

// UsingFunction is one entry of a using-for list.
type UsingFunction struct {
	node
	Path     Expression
	Operator string
}

// TypeDefinition is `type Name is Type;`.
type TypeDefinition struct {
	node
	Name *Identifier
	Type Expression
}

// StraySemicolon is an empty `;` item.
type StraySemicolon struct {
	node
}

func (*PragmaDirective) sourceUnitPart()    {}
func (*ImportDirective) sourceUnitPart()    {}
func (*ContractDefinition) sourceUnitPart() {}
func (*StructDefinition) sourceUnitPart()   {}
func (*EnumDefinition) sourceUnitPart()     {}
func (*EventDefinition) sourceUnitPart()    {}
func (*ErrorDefinition) sourceUnitPart()    {}
func (*FunctionDefinition) sourceUnitPart() {}
func (*VariableDefinition) sourceUnitPart() {}
func (*UsingDirective) sourceUnitPart()     {}
func (*TypeDefinition) sourceUnitPart()     {}
func (*StraySemicolon) sourceUnitPart()     {}

func (*StructDefinition) contractPart()   {}
func (*EnumDefinition) contractPart()     {}
func (*EventDefinition) contractPart()    {}
func (*ErrorDefinition) contractPart()    {}
func (*FunctionDefinition) contractPart() {}
func (*VariableDefinition) contractPart() {}
func (*UsingDirective) contractPart()     {}
func (*TypeDefinition) contractPart()     {}
func (*StraySemicolon) contractPart()     {}

// Block is `{ statements }` or `unchecked { statements }`.
type Block struct {
	node
	Unchecked  bool
	Statements []Statement
}

// VariableStatement declares one local variable or destructures a tuple.
type VariableStatement struct {
	node
	// Declarations has one entry unless Tuple is set; tuple slots may be nil.
	Declarations []*VariableDeclaration
	Tuple        bool
	Initializer  Expression
}

// ExpressionStatement is `expr;`.
type ExpressionStatement struct {
	node
	Expr Expression
}

// IfStatement is `if (cond) then [else else]`.
type IfStatement struct {
	node
	Cond Expression
	Then Statement
	Else Statement
}

// WhileStatement is `while (cond) body`.
type WhileStatement struct {
	node
	Cond Expression
	Body Statement
}

// DoWhileStatement is `do body while (cond);`.
type DoWhileStatement struct {
	node
	Body Statement
	Cond Expression
}

// ForStatement is `for (init; cond; update) body`; every part is optional.
type ForStatement struct {
	node
	Init   Statement
	Cond   Expression
	Update Expression
	Body   Statement
}

// ReturnStatement is `return [expr];`.
type ReturnStatement struct {
	node
	Expr Expression
}

// EmitStatement is `emit Event(args);`.
type EmitStatement struct {
	node
	Call Expression
}

// RevertStatement is `revert Error(args);` with a custom error.
type RevertStatement struct {
	node
	Call Expression
}

// BreakStatement is `break;`.
type BreakStatement struct {
	node
}

// ContinueStatement is `continue;`.
type ContinueStatement struct {
	node
}

// TryStatement is `try expr [returns (...)] { } catch ... { }`.
type TryStatement struct {
	node
	Expr        Expression
	Returns     []*Parameter
	HasReturns  bool
	ReturnsSpan text.Span
	Body        *Block
	Catches     []*CatchClause
}

// CatchClause is one `catch [Name](params) { }` clause.
type CatchClause struct {
	node
	Name      *Identifier
	Params    []*Parameter
	HasParams bool
	Body      *Block
}

// AssemblyStatement is an inline assembly block.
type AssemblyStatement struct {
	node
	Dialect *StringLiteral
	Flags   []*StringLiteral
	// Body covers the braces and everything between them.
	Body text.Span
	// Block is the parsed body, or nil when the body is not plain Yul and is
	// kept as source.
	Block *YulBlock
}

// YulBlock is a braced list of Yul statements.
type YulBlock struct {
	node
	Statements []Statement
}

// YulVariableDeclaration is `let a, b := value`; Value is optional.
type YulVariableDeclaration struct {
	node
	Names []*Identifier
	Value Expression
}

// YulAssignment is `a, b := value`.
type YulAssignment struct {
	node
	Targets []*YulPath
	Value   Expression
}

// YulExpressionStatement is a function call used as a statement.
type YulExpressionStatement struct {
	node
	Call *YulCall
}

type YulIf struct {
	node
	Cond Expression
	Body *YulBlock
}

// YulFor is `for { init } cond { post } { body }`.
type YulFor struct {
	node
	Init *YulBlock
	Cond Expression
	Post *YulBlock
	Body *YulBlock
}

// YulSwitch is `switch expr case v { } ... default { }`.
type YulSwitch struct {
	node
	Expr    Expression
	Cases   []*YulCase
	Default *YulCase
}

// YulCase is one case of a switch; Value is nil for the default case.
type YulCase struct {
	node
	Value Expression
	Body  *YulBlock
}

// YulFunctionDefinition is `function name(a, b) -> c { }`.
type YulFunctionDefinition struct {
	node
	Name       *Identifier
	Params     []*Identifier
	ParamsSpan text.Span
	Returns    []*Identifier
	Body       *YulBlock
}

// YulJump is `leave`, `break` or `continue`.
type YulJump struct {
	node
	Keyword string
}

func (*Block) statement()               {}
func (*VariableStatement) statement()   {}
func (*ExpressionStatement) statement() {}
func (*IfStatement) statement()         {}
func (*WhileStatement) statement()      {}
func (*DoWhileStatement) statement()    {}
func (*ForStatement) statement()        {}
func (*ReturnStatement) statement()     {}
func (*EmitStatement) statement()       {}
func (*RevertStatement) statement()     {}
func (*BreakStatement) statement()      {}
func (*ContinueStatement) statement()   {}
func (*TryStatement) statement()        {}
func (*AssemblyStatement) statement()   {}

func (*YulBlock) statement()               {}
func (*YulVariableDeclaration) statement() {}
func (*YulAssignment) statement()          {}
func (*YulExpressionStatement) statement() {}
func (*YulIf) statement()                  {}
func (*YulFor) statement()                 {}
func (*YulSwitch) statement()              {}
func (*YulFunctionDefinition) statement()  {}
func (*YulJump) statement()                {}

// Identifier is a plain name.
type Identifier struct {
	node
	Name string
}

// NumberLiteral is a decimal, rational, scientific or hex number with an optional unit.
type NumberLiteral struct {
	node
	// Value is the literal source text without the unit.
	Value string
	Hex   bool
	Unit  *Identifier
}

// StringLiteral is one or more adjacent string parts.
type StringLiteral struct {
	node
	Parts []*StringPart
}

// StringPart is a single quoted string.
type StringPart struct {
	node
	Unicode bool
	Quote   byte
	// Value is the raw text between the quotes.
	Value string
}

// HexLiteral is one or more adjacent hex"..." parts.
type HexLiteral struct {
	node
	Parts []*StringPart
}

// BoolLiteral is true or false.
type BoolLiteral struct {
	node
	Value bool
}

// ElementaryType is a built-in type name such as uint256, address payable or bytes32.
type ElementaryType struct {
	node
	Name    string
	Payable bool
}

// MappingType is `mapping(Key [name] => Value [name])`.
type MappingType struct {
	node
	Key       Expression
	KeyName   *Identifier
	Value     Expression
	ValueName *Identifier
}

// ArrayLiteral is `[a, b, c]`.
type ArrayLiteral struct {
	node
	Elements []Expression
}

// TupleExpression is a parenthesized expression or tuple; empty slots are nil.
type TupleExpression struct {
	node
	Elements []Expression
}

// MemberAccess is `expr.member`.
type MemberAccess struct {
	node
	Expr   Expression
	Member *Identifier
}

// IndexAccess is `expr[index]`; Index is nil for array type names such as `uint[]`.
type IndexAccess struct {
	node
	Expr  Expression
	Index Expression
}

// IndexRange is `expr[start:end]`.
type IndexRange struct {
	node
	Expr  Expression
	Start Expression
	End   Expression
}

// FunctionCall is `callee(args)` or `callee({name: value})`.
type FunctionCall struct {
	node
	Callee    Expression
	Args      []Expression
	Named     bool
	NamedArgs []*NamedArgument
	ArgsSpan  text.Span
}

// CallOptions is `callee{value: 1, gas: 2}`.
type CallOptions struct {
	node
	Callee  Expression
	Options []*NamedArgument
}

// NamedArgument is `name: value`.
type NamedArgument struct {
	node
	Name  *Identifier
	Value Expression
}

// UnaryExpression is a prefix or postfix operator application.
type UnaryExpression struct {
	node
	Op      string
	Operand Expression
	Postfix bool
}

// BinaryExpression is a non-assigning binary operator application.
type BinaryExpression struct {
	node
	Op    string
	Left  Expression
	Right Expression
}

// AssignExpression is `left op= right`.
type AssignExpression struct {
	node
	Op    string
	Left  Expression
	Right Expression
}

// ConditionalExpression is `cond ? then : else`.
type ConditionalExpression struct {
	node
	Cond Expression
	Then Expression
	Else Expression
}

// NewExpression is `new Type`.
type NewExpression struct {
	node
	Type Expression
}

// YulPath is an identifier or a dotted path such as `x.slot` in assembly.
type YulPath struct {
	node
	Parts []*Identifier
}

// YulCall is `name(args)` in assembly.
type YulCall struct {
	node
	Name     *Identifier
	Args     []Expression
	ArgsSpan text.Span
}

// YulNumber is a decimal or hex number in assembly, kept as written.
type YulNumber struct {
	node
	Value string
}

func (*Identifier) expression()            {}
func (*NumberLiteral) expression()         {}
func (*StringLiteral) expression()         {}
func (*HexLiteral) expression()            {}
func (*BoolLiteral) expression()           {}
func (*ElementaryType) expression()        {}
func (*MappingType) expression()           {}
func (*ArrayLiteral) expression()          {}
func (*TupleExpression) expression()       {}
func (*MemberAccess) expression()          {}
func (*IndexAccess) expression()           {}
func (*IndexRange) expression()            {}
func (*FunctionCall) expression()          {}
func (*CallOptions) expression()           {}
func (*UnaryExpression) expression()       {}
func (*BinaryExpression) expression()      {}
func (*AssignExpression) expression()      {}
func (*ConditionalExpression) expression() {}
func (*NewExpression) expression()         {}
func (*YulPath) expression()               {}
func (*YulCall) expression()               {}
func (*YulNumber) expression()             {}
