package runtime

import (
	"sort"

	"simplelisp/internal/ast"
)

// BuiltinFn is a native function. It receives fully evaluated arguments and
// the output channel of the running interpreter.
type BuiltinFn func(args []Value, out Output) (Value, error)

// Function is an entry of the function table: either a user definition or a
// built-in.
type Function struct {
	Name    string
	Decl    *ast.FuncDecl
	Builtin BuiltinFn
}

// IsBuiltin reports whether f is implemented natively.
func (f *Function) IsBuiltin() bool {
	return f.Builtin != nil
}

// FuncTable maps names to functions. It is built once and only read
// afterwards, which is what lets functions call each other regardless of
// definition order.
type FuncTable struct {
	funcs map[string]*Function
}

// NewFuncTable registers decls in order and then the built-ins. A later
// definition replaces an earlier one with the same name, so built-ins always
// take precedence over user functions named print or println.
func NewFuncTable(decls []*ast.FuncDecl) *FuncTable {
	t := &FuncTable{funcs: make(map[string]*Function, len(decls)+len(builtins))}
	for _, decl := range decls {
		t.register(decl)
	}
	for _, b := range builtins {
		t.registerBuiltin(b.name, b.fn)
	}
	return t
}

func (t *FuncTable) register(decl *ast.FuncDecl) {
	t.funcs[decl.Name] = &Function{Name: decl.Name, Decl: decl}
}

func (t *FuncTable) registerBuiltin(name string, fn BuiltinFn) {
	t.funcs[name] = &Function{Name: name, Builtin: fn}
}

// Lookup returns the function registered under name.
func (t *FuncTable) Lookup(name string) (*Function, bool) {
	fn, ok := t.funcs[name]
	return fn, ok
}

// Names returns every registered name in sorted order.
func (t *FuncTable) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
