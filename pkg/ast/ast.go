// Package ast defines the Mini-Lisp AST node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// Op represents a built-in operator.
type Op string

const (
	OpPlus     Op = "+"
	OpMinus    Op = "-"
	OpMultiply Op = "*"
	OpDivide   Op = "/"
	OpModulus  Op = "mod"
	OpGreater  Op = ">"
	OpSmaller  Op = "<"
	OpEqual    Op = "="
	OpAnd      Op = "and"
	OpOr       Op = "or"
	OpNot      Op = "not"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type NumberLit struct {
	Span  Span
	Value int64
}

func (n *NumberLit) Kind() string   { return "NumberLit" }
func (n *NumberLit) NodeSpan() Span { return n.Span }
func (n *NumberLit) exprNode()      {}

type BoolLit struct {
	Span  Span
	Value bool
}

func (n *BoolLit) Kind() string   { return "BoolLit" }
func (n *BoolLit) NodeSpan() Span { return n.Span }
func (n *BoolLit) exprNode()      {}

// --- Identifiers ---

type Ident struct {
	Span Span
	Name string
}

func (n *Ident) Kind() string   { return "Ident" }
func (n *Ident) NodeSpan() Span { return n.Span }
func (n *Ident) exprNode()      {}

// --- Operator application ---

type OpExpr struct {
	Span     Span
	Op       Op
	Operands []Expr
}

func (n *OpExpr) Kind() string   { return "OpExpr" }
func (n *OpExpr) NodeSpan() Span { return n.Span }
func (n *OpExpr) exprNode()      {}

// --- Functions ---

// FunExpr is a function expression: parameter names, zero or more local
// defines, and a single body expression.
type FunExpr struct {
	Span    Span
	Params  []string
	Defines []*DefineStmt
	Body    Expr
}

func (n *FunExpr) Kind() string   { return "FunExpr" }
func (n *FunExpr) NodeSpan() Span { return n.Span }
func (n *FunExpr) exprNode()      {}

// CallExpr applies a callee to arguments. The callee is an Ident for a
// named call or a FunExpr for an anonymous call.
type CallExpr struct {
	Span   Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

// --- Control Flow ---

type IfExpr struct {
	Span Span
	Test Expr
	Then Expr
	Else Expr
}

func (n *IfExpr) Kind() string   { return "IfExpr" }
func (n *IfExpr) NodeSpan() Span { return n.Span }
func (n *IfExpr) exprNode()      {}

// --- Print primitives ---

// PrintExpr is print-num or print-bool depending on Bool.
type PrintExpr struct {
	Span Span
	Bool bool
	Arg  Expr
}

func (n *PrintExpr) Kind() string   { return "PrintExpr" }
func (n *PrintExpr) NodeSpan() Span { return n.Span }
func (n *PrintExpr) exprNode()      {}

// --- Statements ---

type DefineStmt struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *DefineStmt) Kind() string   { return "DefineStmt" }
func (n *DefineStmt) NodeSpan() Span { return n.Span }
func (n *DefineStmt) stmtNode()      {}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
