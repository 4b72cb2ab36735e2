// Package ast defines the abstract syntax tree consumed by the interpreter.
package ast

import (
	"simplelisp/internal/span"
	"simplelisp/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Roots
// ============================================================

// File is a whole program: an ordered list of top-level function definitions.
type File struct {
	NodeBase
	Funcs []*FuncDecl
}

// Func returns the definition named name, or nil. When a name is defined more
// than once the last definition wins.
func (f *File) Func(name string) *FuncDecl {
	for i := len(f.Funcs) - 1; i >= 0; i-- {
		if f.Funcs[i].Name == name {
			return f.Funcs[i]
		}
	}
	return nil
}

// Snippet is interactive input: definitions and bare statements in any order.
type Snippet struct {
	NodeBase
	Funcs []*FuncDecl
	Stmts []Stmt
}

// FuncDecl is a top-level function definition: fn name(params) { body }.
type FuncDecl struct {
	NodeBase
	Name   string
	Params []string
	Body   []Stmt
}

// ============================================================
// Expressions
// ============================================================

// IdentExpr is a variable reference.
type IdentExpr struct {
	ExprBase
	Name string
}

// IntLiteral is a 32-bit integer literal.
type IntLiteral struct {
	ExprBase
	Value int32
}

// FloatLiteral is a 32-bit float literal.
type FloatLiteral struct {
	ExprBase
	Value float32
}

// StringLiteral is a string literal with escapes already resolved.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral is true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// ArrayLiteral is a list literal whose elements have not been evaluated yet.
type ArrayLiteral struct {
	ExprBase
	Elements []Expr
}

// BinaryExpr is a binary operation: a + b, x == y.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// CallExpr calls a function by name: f(a, b).
type CallExpr struct {
	ExprBase
	Name string
	Args []Expr
}

// IndexExpr reads an array element: a[i].
type IndexExpr struct {
	ExprBase
	Array Expr
	Index Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression evaluated for its side effects.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt is let name = init.
type VarDeclStmt struct {
	StmtBase
	Name string
	Init Expr
}

// AssignStmt is name = value.
type AssignStmt struct {
	StmtBase
	Name  string
	Value Expr
}

// IndexAssignStmt is name[index] = value.
type IndexAssignStmt struct {
	StmtBase
	Name  string
	Index Expr
	Value Expr
}

// ReturnStmt is return [value]. Value is nil for a bare return.
type ReturnStmt struct {
	StmtBase
	Value Expr
}

// IfStmt is if cond { body }. There is no else branch.
type IfStmt struct {
	StmtBase
	Condition Expr
	Body      []Stmt
}
