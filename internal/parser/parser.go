// Package parser implements syntax analysis for simplelisp.
// It uses Pratt parsing for expressions and recursive descent for statements
// and function definitions.
package parser

import (
	"fmt"
	"strconv"

	"simplelisp/internal/ast"
	"simplelisp/internal/diag"
	"simplelisp/internal/span"
	"simplelisp/internal/token"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpEquality   = 10 // == !=
	bpComparison = 20 // < >
	bpAdditive   = 30 // + -
	bpMultiply   = 40 // * / %
	bpPostfix    = 50 // () []
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.GT:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return bpMultiply
	case token.LPAREN, token.LBRACKET:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  diag.List
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseFile parses a whole program. Only function definitions are allowed at
// top level.
func (p *Parser) ParseFile() (*ast.File, diag.List) {
	file := &ast.File{}
	start := p.peek().Span.Start

	defined := make(map[string]span.Position)
	p.skipSep()
	for !p.isAtEnd() {
		if p.check(token.KW_FN) {
			decl := p.parseFuncDecl()
			if prev, ok := defined[decl.Name]; ok && decl.Name != "" {
				p.errorAt(diag.Warningf(diag.CodeRedefinedFunc, decl.Span,
					"function '%s' redefined (first defined at %s); the later definition is used", decl.Name, prev))
			} else {
				defined[decl.Name] = decl.Span.Start
			}
			file.Funcs = append(file.Funcs, decl)
		} else {
			tok := p.peek()
			p.errorAt(diag.Errorf(diag.CodeTopLevel, tok.Span,
				"expected function definition at top level, got '%s'", tok.Kind).
				WithHint("statements belong inside fn main() { ... }"))
			p.advance()
			p.synchronize()
			p.skipBlock()
		}
		p.skipSep()
	}

	file.Span = span.Span{Start: start, End: p.peek().Span.End}
	return file, p.diags
}

// ParseSnippet parses interactive input, where function definitions and bare
// statements may be mixed.
func (p *Parser) ParseSnippet() (*ast.Snippet, diag.List) {
	snip := &ast.Snippet{}
	start := p.peek().Span.Start

	p.skipSep()
	for !p.isAtEnd() {
		if p.check(token.KW_FN) {
			snip.Funcs = append(snip.Funcs, p.parseFuncDecl())
		} else if stmt := p.parseStmt(); stmt != nil {
			snip.Stmts = append(snip.Stmts, stmt)
		}
		p.skipSep()
	}

	snip.Span = span.Span{Start: start, End: p.peek().Span.End}
	return snip, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	if p.pos+offset >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error(diag.CodeExpectedToken, tok.Span, fmt.Sprintf("expected '%s', got '%s'", kind, tok.Kind))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

// skipSep skips NEWLINE and SEMICOLON tokens.
func (p *Parser) skipSep() {
	for p.match(token.NEWLINE, token.SEMICOLON) {
		p.advance()
	}
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(code, s, "%s", msg))
}

func (p *Parser) errorAt(d diag.Diagnostic) {
	p.diags = append(p.diags, d)
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.match(token.NEWLINE, token.SEMICOLON) {
			p.advance()
			return
		}
		if p.match(token.RBRACE, token.LBRACE, token.KW_FN, token.KW_LET, token.KW_IF, token.KW_RETURN) {
			return
		}
		p.advance()
	}
}

// skipBlock discards a balanced { ... } group, used after a stray top-level
// statement so its body is not reported token by token.
func (p *Parser) skipBlock() {
	if !p.check(token.LBRACE) {
		if p.check(token.RBRACE) {
			p.advance()
		}
		return
	}
	depth := 0
	for !p.isAtEnd() {
		switch p.advance().Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// ============================================================
// Declarations
// ============================================================

// parseFuncDecl parses: fn IDENT ( params ) block
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	start := p.advance() // consume 'fn'
	decl := &ast.FuncDecl{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		p.skipBlock()
		decl.Span = p.makeSpan(start.Span.Start)
		return decl
	}
	decl.Name = nameTok.Lexeme
	decl.Params = p.parseParamList()
	decl.Body = p.parseBlock()
	decl.Span = p.makeSpan(start.Span.Start)
	return decl
}

// parseParamList parses: ( ident, ident, ... )
func (p *Parser) parseParamList() []string {
	var params []string
	if _, ok := p.expect(token.LPAREN); !ok {
		return params
	}

	seen := make(map[string]bool)
	add := func(tok token.Token) {
		if seen[tok.Lexeme] {
			p.error(diag.CodeDuplicateParam, tok.Span, fmt.Sprintf("duplicate parameter '%s'", tok.Lexeme))
			return
		}
		seen[tok.Lexeme] = true
		params = append(params, tok.Lexeme)
	}

	p.skipNewlines()
	if !p.check(token.RPAREN) {
		if nameTok, ok := p.expect(token.IDENT); ok {
			add(nameTok)
		}
		for p.check(token.COMMA) {
			p.advance()
			p.skipNewlines()
			if nameTok, ok := p.expect(token.IDENT); ok {
				add(nameTok)
			}
		}
	}
	p.skipNewlines()
	p.expect(token.RPAREN)
	return params
}

// parseBlock parses: { stmts }
func (p *Parser) parseBlock() []ast.Stmt {
	var stmts []ast.Stmt
	if _, ok := p.expect(token.LBRACE); !ok {
		p.synchronize()
		return stmts
	}

	p.skipSep()
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if p.check(token.KW_FN) {
			tok := p.peek()
			p.errorAt(diag.Errorf(diag.CodeNestedFunc, tok.Span,
				"function definitions are only allowed at top level"))
			p.parseFuncDecl()
		} else if stmt := p.parseStmt(); stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.skipSep()
	}

	p.expect(token.RBRACE)
	return stmts
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_LET:
		return p.parseVarDecl()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	default:
		return p.parseSimpleStmt()
	}
}

// parseVarDecl parses: let IDENT = expr
func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.advance() // consume 'let'
	stmt := &ast.VarDeclStmt{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return nil
	}
	stmt.Name = nameTok.Lexeme

	if _, ok := p.expect(token.ASSIGN); !ok {
		p.synchronize()
		return nil
	}
	p.skipNewlines()
	stmt.Init = p.parseExpr(bpNone)
	if stmt.Init == nil {
		p.unexpected()
		return nil
	}
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseReturnStmt parses: return [expr]
func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{}

	if !p.match(token.NEWLINE, token.SEMICOLON, token.RBRACE, token.EOF) {
		stmt.Value = p.parseExpr(bpNone)
		if stmt.Value == nil {
			p.unexpected()
			return nil
		}
	}
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseIfStmt parses: if expr block
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	stmt.Condition = p.parseExpr(bpNone)
	if stmt.Condition == nil {
		p.unexpected()
		p.skipBlock()
		return nil
	}
	p.skipNewlines()
	stmt.Body = p.parseBlock()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseSimpleStmt parses an expression statement or one of the two assignment forms.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	expr := p.parseExpr(bpNone)
	if expr == nil {
		p.unexpected()
		return nil
	}

	if !p.check(token.ASSIGN) {
		return &ast.ExprStmt{
			StmtBase: stmtBaseOf(expr.GetSpan()),
			Expr:     expr,
		}
	}

	p.advance() // consume '='
	p.skipNewlines()
	value := p.parseExpr(bpNone)
	if value == nil {
		p.unexpected()
		return nil
	}
	base := stmtBaseOf(expr.GetSpan().Join(value.GetSpan()))

	switch target := expr.(type) {
	case *ast.IdentExpr:
		return &ast.AssignStmt{StmtBase: base, Name: target.Name, Value: value}
	case *ast.IndexExpr:
		if arr, ok := target.Array.(*ast.IdentExpr); ok {
			return &ast.IndexAssignStmt{StmtBase: base, Name: arr.Name, Index: target.Index, Value: value}
		}
	}
	p.errorAt(diag.Errorf(diag.CodeUnexpectedToken, expr.GetSpan(), "invalid assignment target").
		WithHint("assign to a variable or to name[index]"))
	return nil
}

func (p *Parser) unexpected() {
	tok := p.peek()
	p.error(diag.CodeUnexpectedToken, tok.Span, fmt.Sprintf("unexpected token: '%s'", tok.Kind))
	if !p.match(token.RBRACE, token.EOF, token.NEWLINE, token.SEMICOLON) {
		p.advance()
	}
	p.synchronize()
}

// ============================================================
// Expressions (Pratt)
// ============================================================

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		bp := infixBP(p.peekKind())
		if bp <= minBP {
			break
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}
	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.INT, token.FLOAT:
		p.advance()
		return p.numberLiteral(tok, "", tok.Span.Start)

	case token.MINUS:
		// only numeric literals take a sign
		next := p.peekAt(1)
		if next.Kind != token.INT && next.Kind != token.FLOAT {
			p.errorAt(diag.Errorf(diag.CodeUnexpectedToken, tok.Span, "unary minus applies only to numeric literals").
				WithHint("write 0 - x to negate a value"))
			return nil
		}
		p.advance()
		p.advance()
		return p.numberLiteral(next, "-", tok.Span.Start)

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme,
		}

	case token.KW_TRUE, token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Kind == token.KW_TRUE,
		}

	case token.IDENT:
		p.advance()
		return &ast.IdentExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok.Lexeme,
		}

	case token.LPAREN:
		p.advance()
		p.skipNewlines()
		expr := p.parseExpr(bpNone)
		if expr == nil {
			return nil
		}
		p.skipNewlines()
		p.expect(token.RPAREN)
		return expr

	case token.LBRACKET:
		return p.parseArrayLiteral()

	default:
		return nil
	}
}

func (p *Parser) numberLiteral(tok token.Token, sign string, start span.Position) ast.Expr {
	base := makeExprBase(start, tok.Span.End)
	if tok.Kind == token.INT {
		val, err := strconv.ParseInt(sign+tok.Lexeme, 10, 32)
		if err != nil {
			p.error(diag.CodeIntRange, base.Span, fmt.Sprintf("integer literal %s%s out of range", sign, tok.Lexeme))
		}
		return &ast.IntLiteral{ExprBase: base, Value: int32(val)}
	}
	val, err := strconv.ParseFloat(sign+tok.Lexeme, 32)
	if err != nil {
		p.error(diag.CodeFloatRange, base.Span, fmt.Sprintf("float literal %s%s out of range", sign, tok.Lexeme))
	}
	return &ast.FloatLiteral{ExprBase: base, Value: float32(val)}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.LPAREN:
		ident, ok := left.(*ast.IdentExpr)
		if !ok {
			p.error(diag.CodeUnexpectedToken, tok.Span, "only named functions can be called")
			return nil
		}
		return p.parseCallExpr(ident)

	case token.LBRACKET:
		p.advance()
		p.skipNewlines()
		index := p.parseExpr(bpNone)
		if index == nil {
			p.unexpected()
			return nil
		}
		p.skipNewlines()
		end, _ := p.expect(token.RBRACKET)
		return &ast.IndexExpr{
			ExprBase: exprBaseOf(left.GetSpan().Join(end.Span)),
			Array:    left,
			Index:    index,
		}
	}

	// binary infix operator, left-associative
	bp := infixBP(tok.Kind)
	p.advance()
	p.skipNewlines()
	right := p.parseExpr(bp)
	if right == nil {
		p.unexpected()
		return nil
	}
	return &ast.BinaryExpr{
		ExprBase: exprBaseOf(left.GetSpan().Join(right.GetSpan())),
		Op:       tok.Kind,
		Left:     left,
		Right:    right,
	}
}

// parseCallExpr parses: name ( args )
func (p *Parser) parseCallExpr(callee *ast.IdentExpr) ast.Expr {
	p.advance() // consume '('
	args, ok := p.parseExprList(token.RPAREN)
	if !ok {
		return nil
	}
	end, _ := p.expect(token.RPAREN)
	return &ast.CallExpr{
		ExprBase: exprBaseOf(callee.GetSpan().Join(end.Span)),
		Name:     callee.Name,
		Args:     args,
	}
}

// parseArrayLiteral parses: [ expr, expr, ... ]
func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.advance() // consume '['
	elements, ok := p.parseExprList(token.RBRACKET)
	if !ok {
		return nil
	}
	end, _ := p.expect(token.RBRACKET)
	return &ast.ArrayLiteral{
		ExprBase: makeExprBase(start.Span.Start, end.Span.End),
		Elements: elements,
	}
}

// parseExprList parses comma-separated expressions up to (not including)
// closer. A trailing comma is allowed.
func (p *Parser) parseExprList(closer token.Kind) ([]ast.Expr, bool) {
	var exprs []ast.Expr
	p.skipNewlines()
	for !p.check(closer) {
		expr := p.parseExpr(bpNone)
		if expr == nil {
			p.unexpected()
			return nil, false
		}
		exprs = append(exprs, expr)
		p.skipNewlines()
		if !p.check(token.COMMA) {
			break
		}
		p.advance()
		p.skipNewlines()
	}
	return exprs, true
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func exprBaseOf(s span.Span) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: s}}
}

func stmtBaseOf(s span.Span) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: s}}
}
