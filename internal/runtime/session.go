package runtime

import (
	"simplelisp/internal/ast"
)

// Session evaluates interactive input. Function definitions accumulate
// across calls to Eval, and bare statements run against one environment
// that lives as long as the session.
type Session struct {
	interp *Interpreter
	decls  []*ast.FuncDecl
	env    *Environment
}

// NewSession creates an empty session writing to output.
func NewSession(output Output, opts ...Option) *Session {
	return &Session{
		interp: NewInterpreter(output, opts...),
		env:    NewEnvironment(),
	}
}

// Eval registers the snippet's definitions, replacing earlier ones with the
// same name, then runs its statements. The result is the value of the first
// return reached or of the last expression statement, and Void otherwise.
func (s *Session) Eval(snip *ast.Snippet) (Value, error) {
	if len(snip.Funcs) > 0 {
		for _, fn := range snip.Funcs {
			s.define(fn)
		}
		s.interp.Load(s.decls)
	}

	var last Value = Void
	for _, stmt := range snip.Stmts {
		if es, ok := stmt.(*ast.ExprStmt); ok {
			val, err := s.interp.evalExpr(es.Expr, s.env)
			if err != nil {
				return nil, err
			}
			last = val
			continue
		}
		result, err := s.interp.execStmt(stmt, s.env)
		if err != nil {
			return nil, err
		}
		if result.Signal == SigReturn {
			return result.Value, nil
		}
		last = Void
	}
	return last, nil
}

func (s *Session) define(fn *ast.FuncDecl) {
	for idx, existing := range s.decls {
		if existing.Name == fn.Name {
			s.decls[idx] = fn
			return
		}
	}
	s.decls = append(s.decls, fn)
}

// Funcs lists the names callable from the session, built-ins included.
func (s *Session) Funcs() []string {
	return s.interp.Funcs().Names()
}

// Vars lists the variables bound at session level.
func (s *Session) Vars() []string {
	return s.env.Names()
}
