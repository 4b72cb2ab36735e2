// Package lexer implements tokenization for simplelisp source text.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"simplelisp/internal/diag"
	"simplelisp/internal/span"
	"simplelisp/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags diag.List
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
		col:      1,
	}
}

// Filename returns the name the lexer was created with.
func (l *Lexer) Filename() string {
	return l.filename
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The token slice always ends with an EOF token.
func (l *Lexer) Tokenize() ([]token.Token, diag.List) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) tok(kind token.Kind, lexeme string, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// skipWhitespace skips spaces and tabs. Newlines are significant.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

func (l *Lexer) addError(code string, s span.Span, format string, args ...interface{}) {
	l.diags = append(l.diags, diag.Errorf(code, s, format, args...))
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	for {
		l.skipWhitespace()
		if (l.peek() == '/' && l.peekNext() == '/') || l.peek() == '#' {
			l.skipLineComment()
			continue
		}
		break
	}

	start := l.curPos()
	if l.pos >= len(l.source) {
		return l.tok(token.EOF, "", start)
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		l.advance()
		return l.tok(token.NEWLINE, "\\n", start)
	case ch == '"':
		return l.readString(start)
	case isDigit(ch):
		return l.readNumber(start)
	case isIdentStart(l.source[l.pos:]):
		return l.readIdentifier(start)
	}
	return l.readOperator(start)
}

// readString reads a double-quoted string literal. Strings may not span lines.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // opening "
	var value []byte

	for l.pos < len(l.source) {
		ch := l.peek()
		switch ch {
		case '"':
			l.advance()
			return l.tok(token.STRING, string(value), start)
		case '\n':
			l.addError(diag.CodeUnterminatedString, l.makeSpan(start), "unterminated string literal")
			return l.tok(token.STRING, string(value), start)
		case '\\':
			l.advance()
			if l.pos >= len(l.source) {
				continue
			}
			esc := l.peek()
			switch esc {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			case '\\':
				value = append(value, '\\')
			case '"':
				value = append(value, '"')
			default:
				l.addError(diag.CodeUnknownEscape, l.makeSpan(start), "unknown escape sequence: \\%c", esc)
				value = append(value, esc)
			}
			l.advance()
		default:
			value = append(value, ch)
			l.advance()
		}
	}

	l.addError(diag.CodeUnterminatedString, l.makeSpan(start), "unterminated string literal")
	return l.tok(token.STRING, string(value), start)
}

// readNumber reads an integer or float literal. Range checks happen in the
// parser, where a preceding minus sign is known.
func (l *Lexer) readNumber(start span.Position) token.Token {
	numStart := l.pos
	kind := token.INT

	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		kind = token.FLOAT
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.tok(kind, l.source[numStart:l.pos], start)
}

func (l *Lexer) readIdentifier(start span.Position) token.Token {
	identStart := l.pos
	for l.pos < len(l.source) {
		r, size := utf8.DecodeRuneInString(l.source[l.pos:])
		if !isIdentRune(r) {
			break
		}
		for i := 0; i < size; i++ {
			l.advance()
		}
	}
	lexeme := l.source[identStart:l.pos]
	return l.tok(token.LookupIdent(lexeme), lexeme, start)
}

func (l *Lexer) readOperator(start span.Position) token.Token {
	ch := l.advance()

	switch ch {
	case '(':
		return l.tok(token.LPAREN, "(", start)
	case ')':
		return l.tok(token.RPAREN, ")", start)
	case '{':
		return l.tok(token.LBRACE, "{", start)
	case '}':
		return l.tok(token.RBRACE, "}", start)
	case '[':
		return l.tok(token.LBRACKET, "[", start)
	case ']':
		return l.tok(token.RBRACKET, "]", start)
	case ',':
		return l.tok(token.COMMA, ",", start)
	case ';':
		return l.tok(token.SEMICOLON, ";", start)
	case '+':
		return l.tok(token.PLUS, "+", start)
	case '-':
		return l.tok(token.MINUS, "-", start)
	case '*':
		return l.tok(token.STAR, "*", start)
	case '/':
		return l.tok(token.SLASH, "/", start)
	case '%':
		return l.tok(token.PERCENT, "%", start)
	case '<':
		return l.tok(token.LT, "<", start)
	case '>':
		return l.tok(token.GT, ">", start)
	case '=':
		if l.peek() == '=' {
			l.advance()
			return l.tok(token.EQ, "==", start)
		}
		return l.tok(token.ASSIGN, "=", start)
	case '!':
		if l.peek() == '=' {
			l.advance()
			return l.tok(token.NEQ, "!=", start)
		}
		l.addError(diag.CodeUnexpectedChar, l.makeSpan(start), "unexpected character: '!'")
		return l.tok(token.ILLEGAL, "!", start)
	}

	if ch >= utf8.RuneSelf {
		// report the whole rune rather than its first byte
		l.pos--
		l.col--
		r, size := utf8.DecodeRuneInString(l.source[l.pos:])
		for i := 0; i < size; i++ {
			l.advance()
		}
		l.addError(diag.CodeUnexpectedChar, l.makeSpan(start), "unexpected character: '%c'", r)
		return l.tok(token.ILLEGAL, string(r), start)
	}
	d := diag.Errorf(diag.CodeUnexpectedChar, l.makeSpan(start), "unexpected character: '%c'", ch)
	if ch == '&' || ch == '|' {
		d = d.WithHint("there are no logical operators; nest if statements instead")
	}
	l.diags = append(l.diags, d)
	return l.tok(token.ILLEGAL, fmt.Sprintf("%c", ch), start)
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
