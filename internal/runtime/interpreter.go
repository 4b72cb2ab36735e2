package runtime

import (
	"fmt"
	"strings"

	"fortio.org/log"

	"simplelisp/internal/ast"
	"simplelisp/internal/span"
)

// ============================================================
// Control flow
// ============================================================

// ExecSignal tells the caller of a statement list how it finished.
type ExecSignal int

const (
	SigNone   ExecSignal = iota // ran off the end
	SigReturn                   // hit a return; Value holds the result
)

// ExecResult carries a control flow signal and, for SigReturn, the value.
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Interpreter
// ============================================================

// DefaultMaxCallDepth is the nesting of user function calls after which
// evaluation faults with ErrStackOverflow.
const DefaultMaxCallDepth = 10000

// MaxCallDepthLimit bounds WithMaxCallDepth. Each call nests several Go
// frames, and past this depth the goroutine stack limit is hit first.
const MaxCallDepthLimit = 100000

// Interpreter walks the AST of a loaded program.
type Interpreter struct {
	funcs    *FuncTable
	output   Output
	maxDepth int
	depth    int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxCallDepth sets the call nesting limit. Values <= 0 keep the default
// and values above MaxCallDepthLimit are clamped to it.
func WithMaxCallDepth(n int) Option {
	return func(i *Interpreter) {
		switch {
		case n > MaxCallDepthLimit:
			log.Warnf("max call depth %d clamped to %d", n, MaxCallDepthLimit)
			i.maxDepth = MaxCallDepthLimit
		case n > 0:
			i.maxDepth = n
		}
	}
}

// NewInterpreter creates an interpreter that writes program output to output.
func NewInterpreter(output Output, opts ...Option) *Interpreter {
	i := &Interpreter{
		funcs:    NewFuncTable(nil),
		output:   output,
		maxDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Load replaces the function table with decls plus the built-ins.
func (i *Interpreter) Load(decls []*ast.FuncDecl) {
	i.funcs = NewFuncTable(decls)
}

// Funcs returns the current function table.
func (i *Interpreter) Funcs() *FuncTable {
	return i.funcs
}

// Run loads file and calls its main function with no arguments, returning
// main's result.
func (i *Interpreter) Run(file *ast.File) (Value, error) {
	i.Load(file.Funcs)
	fn, ok := i.funcs.Lookup("main")
	if !ok || fn.IsBuiltin() {
		return nil, runtimeErr(file.Span, ErrMissingEntryPoint, "no function named 'main'")
	}
	log.LogVf("running %d functions, entry main at %s", len(file.Funcs), fn.Decl.Span.Start)
	return i.invoke(fn, nil, fn.Decl.Span)
}

// Invoke calls the function registered under name with already evaluated
// arguments.
func (i *Interpreter) Invoke(name string, args []Value) (Value, error) {
	return i.call(name, args, span.Span{})
}

func (i *Interpreter) call(name string, args []Value, at span.Span) (Value, error) {
	fn, ok := i.funcs.Lookup(name)
	if !ok {
		return nil, runtimeErr(at, ErrUndefinedFunction, "no function named '%s'", name)
	}
	return i.invoke(fn, args, at)
}

func (i *Interpreter) invoke(fn *Function, args []Value, at span.Span) (Value, error) {
	if fn.IsBuiltin() {
		val, err := fn.Builtin(args, i.output)
		if err != nil {
			return nil, located(at, err)
		}
		return val, nil
	}

	params := fn.Decl.Params
	if len(args) != len(params) {
		return nil, runtimeErr(at, ErrArityMismatch, "%s() expects %d arguments, got %d", fn.Name, len(params), len(args))
	}
	if i.depth >= i.maxDepth {
		return nil, runtimeErr(at, ErrStackOverflow, "maximum call depth %d exceeded calling %s()", i.maxDepth, fn.Name)
	}
	i.depth++
	defer func() { i.depth-- }()

	if log.LogVerbose() {
		log.LogVf("call %s(%s) depth=%d", fn.Name, debugList(args), i.depth)
	}

	env := NewEnvironment()
	for idx, param := range params {
		env.Set(param, args[idx])
	}

	result, err := i.execBlock(fn.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if result.Signal == SigReturn {
		if log.LogVerbose() {
			log.LogVf("return %s from %s()", Debug(result.Value), fn.Name)
		}
		return result.Value, nil
	}
	return Void, nil
}

// ============================================================
// Statement execution
// ============================================================

// execBlock runs stmts in order and stops at the first return.
func (i *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) (ExecResult, error) {
	for _, stmt := range stmts {
		result, err := i.execStmt(stmt, env)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execStmt(stmt ast.Stmt, env *Environment) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr, env)
		return resultNone, err

	case *ast.VarDeclStmt:
		return i.execSet(s.Name, s.Init, env)

	case *ast.AssignStmt:
		return i.execSet(s.Name, s.Value, env)

	case *ast.IndexAssignStmt:
		return i.execIndexAssign(s, env)

	case *ast.ReturnStmt:
		if s.Value == nil {
			return ExecResult{Signal: SigReturn, Value: Void}, nil
		}
		val, err := i.evalExpr(s.Value, env)
		if err != nil {
			return resultNone, err
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.IfStmt:
		return i.execIf(s, env)

	default:
		return resultNone, runtimeErr(stmt.GetSpan(), ErrTypeMismatch, "unhandled statement type %T", stmt)
	}
}

func (i *Interpreter) execSet(name string, expr ast.Expr, env *Environment) (ExecResult, error) {
	val, err := i.evalExpr(expr, env)
	if err != nil {
		return resultNone, err
	}
	env.Set(name, val)
	return resultNone, nil
}

// execIf runs the body in a snapshot of env. Assignments made inside the
// body, including to names that exist outside, are dropped when it ends.
func (i *Interpreter) execIf(s *ast.IfStmt, env *Environment) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition, env)
	if err != nil {
		return resultNone, err
	}
	b, ok := cond.(BoolVal)
	if !ok {
		return resultNone, runtimeErr(s.Condition.GetSpan(), ErrTypeMismatch, "if condition must be bool, got %s", cond.TypeName())
	}
	if !b {
		return resultNone, nil
	}
	log.LogVf("enter if block at %s", s.Span.Start)
	return i.execBlock(s.Body, env.Child())
}

// execIndexAssign writes into a copy of the array and rebinds the name, so
// other bindings of the same array keep the old contents.
func (i *Interpreter) execIndexAssign(s *ast.IndexAssignStmt, env *Environment) (ExecResult, error) {
	idx, err := i.evalExpr(s.Index, env)
	if err != nil {
		return resultNone, err
	}
	val, err := i.evalExpr(s.Value, env)
	if err != nil {
		return resultNone, err
	}

	cur, ok := env.Get(s.Name)
	if !ok {
		return resultNone, runtimeErr(s.Span, ErrUnboundVariable, "'%s' is not defined", s.Name)
	}
	arr, ok := cur.(ArrayVal)
	if !ok {
		return resultNone, runtimeErr(s.Span, ErrTypeMismatch, "cannot index-assign %s '%s'", cur.TypeName(), s.Name)
	}
	n, err := checkIndex(arr, idx)
	if err != nil {
		return resultNone, located(s.Index.GetSpan(), err)
	}

	updated := arr.Clone()
	updated[n] = val
	env.Set(s.Name, updated)
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return IntVal(e.Value), nil
	case *ast.FloatLiteral:
		return FloatVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.ArrayLiteral:
		return i.evalArrayLiteral(e, env)
	case *ast.IdentExpr:
		val, ok := env.Get(e.Name)
		if !ok {
			return nil, runtimeErr(e.Span, ErrUnboundVariable, "'%s' is not defined", e.Name)
		}
		return val, nil
	case *ast.BinaryExpr:
		return i.evalBinary(e, env)
	case *ast.CallExpr:
		return i.evalCall(e, env)
	case *ast.IndexExpr:
		return i.evalIndex(e, env)
	default:
		return nil, runtimeErr(expr.GetSpan(), ErrTypeMismatch, "unhandled expression type %T", expr)
	}
}

// evalArrayLiteral is the only place a list literal becomes an ArrayVal.
func (i *Interpreter) evalArrayLiteral(e *ast.ArrayLiteral, env *Environment) (Value, error) {
	elems := make(ArrayVal, len(e.Elements))
	for idx, elemExpr := range e.Elements {
		val, err := i.evalExpr(elemExpr, env)
		if err != nil {
			return nil, err
		}
		elems[idx] = val
	}
	return elems, nil
}

// evalBinary evaluates both operands left to right; nothing short-circuits.
func (i *Interpreter) evalBinary(e *ast.BinaryExpr, env *Environment) (Value, error) {
	left, err := i.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}
	val, err := BinaryOp(e.Op, left, right)
	if err != nil {
		return nil, located(e.Span, err)
	}
	return val, nil
}

func (i *Interpreter) evalCall(e *ast.CallExpr, env *Environment) (Value, error) {
	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evalExpr(argExpr, env)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}
	return i.call(e.Name, args, e.Span)
}

func (i *Interpreter) evalIndex(e *ast.IndexExpr, env *Environment) (Value, error) {
	target, err := i.evalExpr(e.Array, env)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpr(e.Index, env)
	if err != nil {
		return nil, err
	}
	arr, ok := target.(ArrayVal)
	if !ok {
		return nil, runtimeErr(e.Array.GetSpan(), ErrTypeMismatch, "cannot index %s", target.TypeName())
	}
	n, err := checkIndex(arr, idx)
	if err != nil {
		return nil, located(e.Index.GetSpan(), err)
	}
	return arr[n], nil
}

// ============================================================
// Helpers
// ============================================================

func checkIndex(arr ArrayVal, idx Value) (int, error) {
	n, ok := idx.(IntVal)
	if !ok {
		return 0, fmt.Errorf("%w: array index must be int, got %s", ErrTypeMismatch, idx.TypeName())
	}
	if n < 0 || int(n) >= len(arr) {
		return 0, fmt.Errorf("%w: index %d out of range (length %d)", ErrIndexOutOfBounds, n, len(arr))
	}
	return int(n), nil
}

func debugList(vals []Value) string {
	parts := make([]string, len(vals))
	for idx, v := range vals {
		parts[idx] = Debug(v)
	}
	return strings.Join(parts, ", ")
}
