package ast

import (
	"simplelisp/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// Every node is tagged with a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *File:
		funcs := make([]interface{}, len(n.Funcs))
		for i, f := range n.Funcs {
			funcs[i] = NodeToMap(f)
		}
		return m("File", n.Span, "funcs", funcs)
	case *Snippet:
		funcs := make([]interface{}, len(n.Funcs))
		for i, f := range n.Funcs {
			funcs[i] = NodeToMap(f)
		}
		return m("Snippet", n.Span, "funcs", funcs, "stmts", stmtSlice(n.Stmts))
	case *FuncDecl:
		params := n.Params
		if params == nil {
			params = []string{}
		}
		return m("FuncDecl", n.Span,
			"name", n.Name,
			"params", params,
			"body", stmtSlice(n.Body))

	// ---- Expressions ----
	case *IdentExpr:
		return m("IdentExpr", n.Span, "name", n.Name)
	case *IntLiteral:
		return m("IntLiteral", n.Span, "value", n.Value)
	case *FloatLiteral:
		return m("FloatLiteral", n.Span, "value", n.Value)
	case *StringLiteral:
		return m("StringLiteral", n.Span, "value", n.Value)
	case *BoolLiteral:
		return m("BoolLiteral", n.Span, "value", n.Value)
	case *ArrayLiteral:
		return m("ArrayLiteral", n.Span, "elements", exprSlice(n.Elements))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *CallExpr:
		return m("CallExpr", n.Span, "name", n.Name, "args", exprSlice(n.Args))
	case *IndexExpr:
		return m("IndexExpr", n.Span,
			"array", NodeToMap(n.Array),
			"index", NodeToMap(n.Index))

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *VarDeclStmt:
		return m("VarDeclStmt", n.Span, "name", n.Name, "init", NodeToMap(n.Init))
	case *AssignStmt:
		return m("AssignStmt", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *IndexAssignStmt:
		return m("IndexAssignStmt", n.Span,
			"name", n.Name,
			"index", NodeToMap(n.Index),
			"value", NodeToMap(n.Value))
	case *ReturnStmt:
		result := m("ReturnStmt", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *IfStmt:
		return m("IfStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"body", stmtSlice(n.Body))

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		result[kvs[i].(string)] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}
