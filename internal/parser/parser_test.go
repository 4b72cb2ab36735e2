package parser

import (
	"encoding/json"
	"strings"
	"testing"

	"simplelisp/internal/ast"
	"simplelisp/internal/diag"
	"simplelisp/internal/lexer"
	"simplelisp/internal/token"
)

// helper: parse source and return AST + check for no errors
func parseOK(t *testing.T, source string) *ast.File {
	t.Helper()
	l := lexer.New(source, "test.sl")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	p := New(tokens)
	file, parseDiags := p.ParseFile()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return file
}

// helper: parse statements wrapped in fn main and return its body
func parseBody(t *testing.T, stmts string) []ast.Stmt {
	t.Helper()
	file := parseOK(t, "fn main() {\n"+stmts+"\n}")
	if len(file.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(file.Funcs))
	}
	return file.Funcs[0].Body
}

// helper: parse a single expression
func parseExprOK(t *testing.T, expr string) ast.Expr {
	t.Helper()
	body := parseBody(t, "return "+expr)
	ret, ok := body[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", body[0])
	}
	return ret.Value
}

// helper: parse source expecting failure, returning all diagnostics
func parseErr(t *testing.T, source string) diag.List {
	t.Helper()
	tokens, _ := lexer.New(source, "test.sl").Tokenize()
	_, diags := New(tokens).ParseFile()
	if len(diags) == 0 {
		t.Fatalf("expected parse errors for %q", source)
	}
	return diags
}

func hasCode(diags diag.List, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestParseFuncDecl(t *testing.T) {
	file := parseOK(t, `fn add(a, b) {
  return a + b
}

fn main() { }`)
	if len(file.Funcs) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(file.Funcs))
	}
	fn := file.Funcs[0]
	if fn.Name != "add" {
		t.Errorf("expected name 'add', got %q", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Errorf("expected params [a b], got %v", fn.Params)
	}
	if len(fn.Body) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(fn.Body))
	}
	if len(file.Funcs[1].Params) != 0 || len(file.Funcs[1].Body) != 0 {
		t.Errorf("main should be empty, got %+v", file.Funcs[1])
	}
}

func TestFileFuncLastDefinitionWins(t *testing.T) {
	tokens, _ := lexer.New("fn f() { return 1 }\nfn f() { return 2 }", "test.sl").Tokenize()
	file, diags := New(tokens).ParseFile()
	if diags.HasErrors() {
		t.Fatalf("redefinition should not be an error: %v", diags)
	}
	if len(diags) != 1 || diags[0].Code != diag.CodeRedefinedFunc || diags[0].Severity != diag.Warning {
		t.Fatalf("expected one %s warning, got %v", diag.CodeRedefinedFunc, diags)
	}
	if !strings.Contains(diags[0].Message, "first defined at 1:1") || diags[0].Span.Start.Line != 2 {
		t.Errorf("warning should point at the second definition: %s", diags[0])
	}
	got := file.Func("f")
	if got == nil || got != file.Funcs[1] {
		t.Errorf("expected the second definition of f")
	}
	if file.Func("missing") != nil {
		t.Error("expected nil for an unknown function")
	}
}

func TestParseVarDecl(t *testing.T) {
	body := parseBody(t, `let x = 42`)
	decl, ok := body[0].(*ast.VarDeclStmt)
	if !ok {
		t.Fatalf("expected VarDeclStmt, got %T", body[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name 'x', got %q", decl.Name)
	}
	lit, ok := decl.Init.(*ast.IntLiteral)
	if !ok || lit.Value != 42 {
		t.Errorf("expected IntLiteral 42, got %#v", decl.Init)
	}
}

func TestParseAssignment(t *testing.T) {
	body := parseBody(t, "x = 1\nxs[i + 1] = \"v\"")
	assign, ok := body[0].(*ast.AssignStmt)
	if !ok || assign.Name != "x" {
		t.Fatalf("expected AssignStmt to x, got %#v", body[0])
	}
	idx, ok := body[1].(*ast.IndexAssignStmt)
	if !ok {
		t.Fatalf("expected IndexAssignStmt, got %T", body[1])
	}
	if idx.Name != "xs" {
		t.Errorf("expected target 'xs', got %q", idx.Name)
	}
	if _, ok := idx.Index.(*ast.BinaryExpr); !ok {
		t.Errorf("expected BinaryExpr index, got %T", idx.Index)
	}
	if s, ok := idx.Value.(*ast.StringLiteral); !ok || s.Value != "v" {
		t.Errorf("expected string value, got %#v", idx.Value)
	}
}

func TestParseSeparators(t *testing.T) {
	body := parseBody(t, "let a = 1; let b = 2;; println(a, b)\n\n\nreturn")
	if len(body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(body))
	}
	if _, ok := body[2].(*ast.ExprStmt); !ok {
		t.Errorf("expected ExprStmt, got %T", body[2])
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + (2 * 3)
	bin, ok := parseExprOK(t, `1 + 2 * 3`).(*ast.BinaryExpr)
	if !ok {
		t.Fatal("expected BinaryExpr")
	}
	if bin.Op != token.PLUS {
		t.Errorf("expected '+', got %q", bin.Op.String())
	}
	if right, ok := bin.Right.(*ast.BinaryExpr); !ok || right.Op != token.STAR {
		t.Errorf("expected right '*', got %#v", bin.Right)
	}

	// (a - b) - c
	bin = parseExprOK(t, `a - b - c`).(*ast.BinaryExpr)
	if left, ok := bin.Left.(*ast.BinaryExpr); !ok || left.Op != token.MINUS {
		t.Errorf("expected left-associative '-', got %#v", bin.Left)
	}

	// (a < b) == (c > d)
	bin = parseExprOK(t, `a < b == c > d`).(*ast.BinaryExpr)
	if bin.Op != token.EQ {
		t.Errorf("expected '==' at the root, got %q", bin.Op.String())
	}

	// (1 + 2) % 3
	bin = parseExprOK(t, `(1 + 2) % 3`).(*ast.BinaryExpr)
	if bin.Op != token.PERCENT {
		t.Errorf("expected '%%' at the root, got %q", bin.Op.String())
	}
}

func TestParseNegativeLiterals(t *testing.T) {
	if lit, ok := parseExprOK(t, `-5`).(*ast.IntLiteral); !ok || lit.Value != -5 {
		t.Errorf("expected IntLiteral -5, got %#v", lit)
	}
	if lit, ok := parseExprOK(t, `-2147483648`).(*ast.IntLiteral); !ok || lit.Value != -2147483648 {
		t.Errorf("expected minimum int, got %#v", lit)
	}
	if lit, ok := parseExprOK(t, `-0.5`).(*ast.FloatLiteral); !ok || lit.Value != -0.5 {
		t.Errorf("expected FloatLiteral -0.5, got %#v", lit)
	}
	bin := parseExprOK(t, `3 - -2`).(*ast.BinaryExpr)
	if lit, ok := bin.Right.(*ast.IntLiteral); !ok || lit.Value != -2 {
		t.Errorf("expected right IntLiteral -2, got %#v", bin.Right)
	}
}

func TestUnaryMinusOnlyForLiterals(t *testing.T) {
	diags := parseErr(t, "fn main() { let y = -x }")
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "unary minus") && strings.Contains(d.Hint, "0 - x") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unary minus diagnostic with hint, got %v", diags)
	}
}

func TestLiteralRange(t *testing.T) {
	if !hasCode(parseErr(t, "fn main() { return 2147483648 }"), diag.CodeIntRange) {
		t.Error("expected integer range diagnostic")
	}
	huge := strings.Repeat("9", 50) + ".0"
	if !hasCode(parseErr(t, "fn main() { return "+huge+" }"), diag.CodeFloatRange) {
		t.Error("expected float range diagnostic")
	}
}

func TestParseCallAndIndex(t *testing.T) {
	call, ok := parseExprOK(t, `f(1, [2, 3],)`).(*ast.CallExpr)
	if !ok {
		t.Fatal("expected CallExpr")
	}
	if call.Name != "f" || len(call.Args) != 2 {
		t.Errorf("expected f with 2 args, got %s with %d", call.Name, len(call.Args))
	}
	arr, ok := call.Args[1].(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 2 {
		t.Errorf("expected 2-element ArrayLiteral, got %#v", call.Args[1])
	}

	// (grid[1])[2]
	outer, ok := parseExprOK(t, `grid[1][2]`).(*ast.IndexExpr)
	if !ok {
		t.Fatal("expected IndexExpr")
	}
	if _, ok := outer.Array.(*ast.IndexExpr); !ok {
		t.Errorf("expected nested IndexExpr, got %T", outer.Array)
	}

	if arr, ok := parseExprOK(t, `[]`).(*ast.ArrayLiteral); !ok || len(arr.Elements) != 0 {
		t.Errorf("expected empty ArrayLiteral, got %#v", arr)
	}
}

func TestParseMultilineCall(t *testing.T) {
	body := parseBody(t, "println(\n  1,\n  2\n)")
	stmt, ok := body[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", body[0])
	}
	if call := stmt.Expr.(*ast.CallExpr); len(call.Args) != 2 {
		t.Errorf("expected 2 args, got %d", len(call.Args))
	}
}

func TestParseReturnForms(t *testing.T) {
	body := parseBody(t, "if x { return }\nreturn\nreturn 1")
	ifStmt := body[0].(*ast.IfStmt)
	if ret := ifStmt.Body[0].(*ast.ReturnStmt); ret.Value != nil {
		t.Errorf("expected bare return in if body, got %#v", ret.Value)
	}
	if ret := body[1].(*ast.ReturnStmt); ret.Value != nil {
		t.Errorf("expected bare return, got %#v", ret.Value)
	}
	if ret := body[2].(*ast.ReturnStmt); ret.Value == nil {
		t.Error("expected return value")
	}
}

func TestParseIfStmt(t *testing.T) {
	source := `if x > 0 {
  print(x)
  if x == 1 {
    print("one")
  }
}`
	body := parseBody(t, source)
	ifStmt, ok := body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", body[0])
	}
	if cond, ok := ifStmt.Condition.(*ast.BinaryExpr); !ok || cond.Op != token.GT {
		t.Errorf("expected '>' condition, got %#v", ifStmt.Condition)
	}
	if len(ifStmt.Body) != 2 {
		t.Fatalf("expected 2 statements in body, got %d", len(ifStmt.Body))
	}
	if _, ok := ifStmt.Body[1].(*ast.IfStmt); !ok {
		t.Errorf("expected nested IfStmt, got %T", ifStmt.Body[1])
	}
}

func TestParseSpans(t *testing.T) {
	body := parseBody(t, "  let total = a + b")
	decl := body[0].(*ast.VarDeclStmt)
	if decl.Span.Start.Line != 2 || decl.Span.Start.Column != 3 {
		t.Errorf("let at %s, want 2:3", decl.Span.Start)
	}
	bin := decl.Init.(*ast.BinaryExpr)
	if bin.Span.Start.Column != 15 || bin.Span.End.Column != 20 {
		t.Errorf("a + b spans %s, want 2:15..2:20", bin.Span)
	}
}

func TestSnippetRedefinitionIsSilent(t *testing.T) {
	tokens, _ := lexer.New("fn f() { }\nfn f() { }", "<repl>").Tokenize()
	if _, diags := New(tokens).ParseSnippet(); len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestParseSpansJoinOperands(t *testing.T) {
	body := parseBody(t, "xs[0] = f(1)\ng(a)[2]")
	assign := body[0].(*ast.IndexAssignStmt)
	if assign.Span.Start.Column != 1 || assign.Span.End.Column != 13 {
		t.Errorf("assignment spans %s, want 2:1..2:13", assign.Span)
	}
	idx := body[1].(*ast.ExprStmt).Expr.(*ast.IndexExpr)
	if idx.Span.Start.Column != 1 || idx.Span.End.Column != 8 {
		t.Errorf("index spans %s, want 3:1..3:8", idx.Span)
	}
	call := idx.Array.(*ast.CallExpr)
	if call.Span.End.Column != 5 {
		t.Errorf("call spans %s, want 3:1..3:5", call.Span)
	}
}

func TestParseSnippet(t *testing.T) {
	tokens, _ := lexer.New("fn f() { return 1 }\nlet x = f()\nx", "<repl>").Tokenize()
	snip, diags := New(tokens).ParseSnippet()
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	if len(snip.Funcs) != 1 || snip.Funcs[0].Name != "f" {
		t.Errorf("expected function f, got %v", snip.Funcs)
	}
	if len(snip.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(snip.Stmts))
	}
	if _, ok := snip.Stmts[1].(*ast.ExprStmt); !ok {
		t.Errorf("expected ExprStmt, got %T", snip.Stmts[1])
	}
}

func TestTopLevelStatementRejected(t *testing.T) {
	tokens, _ := lexer.New("let x = 1\nfn main() { }", "test.sl").Tokenize()
	file, diags := New(tokens).ParseFile()
	if !hasCode(diags, diag.CodeTopLevel) {
		t.Fatalf("expected %s, got %v", diag.CodeTopLevel, diags)
	}
	if file.Func("main") == nil {
		t.Error("parser should recover and still read main")
	}
}

func TestNestedFuncRejected(t *testing.T) {
	diags := parseErr(t, "fn main() {\n  fn inner() { return 1 }\n}")
	if !hasCode(diags, diag.CodeNestedFunc) {
		t.Errorf("expected %s, got %v", diag.CodeNestedFunc, diags)
	}
}

func TestDuplicateParam(t *testing.T) {
	diags := parseErr(t, "fn f(a, b, a) { return a }")
	if !hasCode(diags, diag.CodeDuplicateParam) {
		t.Errorf("expected %s, got %v", diag.CodeDuplicateParam, diags)
	}
}

func TestInvalidAssignTarget(t *testing.T) {
	diags := parseErr(t, "fn main() { f() = 1 }")
	if !strings.Contains(diags.Error(), "invalid assignment target") {
		t.Errorf("expected invalid assignment target, got %v", diags)
	}
}

func TestLetRequiresInitializer(t *testing.T) {
	diags := parseErr(t, "fn main() { let x }")
	if !hasCode(diags, diag.CodeExpectedToken) {
		t.Errorf("expected %s, got %v", diag.CodeExpectedToken, diags)
	}
}

func TestParseJSONOutput(t *testing.T) {
	file := parseOK(t, "fn main() { let x = [1, \"a\"] }")
	data, err := json.Marshal(ast.NodeToMap(file))
	if err != nil {
		t.Fatalf("json error: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["kind"] != "File" {
		t.Errorf("expected kind 'File', got %v", m["kind"])
	}
	funcs, ok := m["funcs"].([]interface{})
	if !ok || len(funcs) != 1 {
		t.Fatalf("expected 1 func, got %v", m["funcs"])
	}
	if fn := funcs[0].(map[string]interface{}); fn["name"] != "main" {
		t.Errorf("expected main, got %v", fn["name"])
	}
}

func TestParseErrorRecovery(t *testing.T) {
	// missing closing paren; parser should still produce a file
	source := `fn main() {
  let x = add(1, 2
  let y = 3
}
fn other() { return 1 }`
	tokens, _ := lexer.New(source, "test.sl").Tokenize()
	file, diags := New(tokens).ParseFile()
	if len(diags) == 0 {
		t.Error("expected parse errors")
	}
	if file == nil {
		t.Fatal("file is nil")
	}
	if file.Func("other") == nil {
		t.Error("expected parser to recover and read other()")
	}
}
