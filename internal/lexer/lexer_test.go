package lexer

import (
	"testing"

	"simplelisp/internal/diag"
	"simplelisp/internal/token"
)

func expectKinds(t *testing.T, source string, expected []token.Kind) []token.Token {
	t.Helper()
	tokens, diags := New(source, "test.sl").Tokenize()
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
	return tokens
}

func TestTokenizeSimple(t *testing.T) {
	expectKinds(t, `let x = 1 + 2`, []token.Kind{
		token.KW_LET, token.IDENT, token.ASSIGN,
		token.INT, token.PLUS, token.INT, token.EOF,
	})
}

func TestTokenizeKeywords(t *testing.T) {
	expectKinds(t, `fn let return if true false`, []token.Kind{
		token.KW_FN, token.KW_LET, token.KW_RETURN, token.KW_IF,
		token.KW_TRUE, token.KW_FALSE, token.EOF,
	})
}

func TestKeywordPrefixIsIdent(t *testing.T) {
	tokens := expectKinds(t, `fnord letter iffy returns`, []token.Kind{
		token.IDENT, token.IDENT, token.IDENT, token.IDENT, token.EOF,
	})
	if tokens[0].Lexeme != "fnord" {
		t.Errorf("expected lexeme 'fnord', got %q", tokens[0].Lexeme)
	}
}

func TestTokenizeOperators(t *testing.T) {
	expectKinds(t, `= == != < > + - * / %`, []token.Kind{
		token.ASSIGN, token.EQ, token.NEQ, token.LT, token.GT,
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EOF,
	})
}

func TestTokenizePunctuation(t *testing.T) {
	expectKinds(t, `( ) { } [ ] , ;`, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.SEMICOLON,
		token.EOF,
	})
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := expectKinds(t, `42 3.14 0 99999999999`, []token.Kind{
		token.INT, token.FLOAT, token.INT, token.INT, token.EOF,
	})
	if tokens[1].Lexeme != "3.14" {
		t.Errorf("expected '3.14', got %q", tokens[1].Lexeme)
	}
	// range checks belong to the parser
	if tokens[3].Lexeme != "99999999999" {
		t.Errorf("expected full digit run, got %q", tokens[3].Lexeme)
	}
}

func TestTokenizeStrings(t *testing.T) {
	tokens, diags := New(`"hello" "a\tb\n" "q\"uote\\"`, "test.sl").Tokenize()
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	expected := []string{"hello", "a\tb\n", `q"uote\`}
	for i, exp := range expected {
		if tokens[i].Kind != token.STRING {
			t.Fatalf("token[%d]: expected STRING, got %s", i, tokens[i].Kind)
		}
		if tokens[i].Lexeme != exp {
			t.Errorf("token[%d]: expected %q, got %q", i, exp, tokens[i].Lexeme)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	_, diags := New("\"abc\nlet", "test.sl").Tokenize()
	if len(diags) != 1 || diags[0].Code != diag.CodeUnterminatedString {
		t.Fatalf("expected one %s diagnostic, got %v", diag.CodeUnterminatedString, diags)
	}
}

func TestUnknownEscape(t *testing.T) {
	tokens, diags := New(`"a\qb"`, "test.sl").Tokenize()
	if len(diags) != 1 || diags[0].Code != diag.CodeUnknownEscape {
		t.Fatalf("expected one %s diagnostic, got %v", diag.CodeUnknownEscape, diags)
	}
	if tokens[0].Lexeme != "aqb" {
		t.Errorf("expected recovered lexeme 'aqb', got %q", tokens[0].Lexeme)
	}
}

func TestComments(t *testing.T) {
	expectKinds(t, "let x = 1 // trailing\n# whole line\nx", []token.Kind{
		token.KW_LET, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.NEWLINE,
		token.IDENT, token.EOF,
	})
}

func TestSlashIsNotComment(t *testing.T) {
	expectKinds(t, `a / b`, []token.Kind{token.IDENT, token.SLASH, token.IDENT, token.EOF})
}

func TestUnicodeIdentifiers(t *testing.T) {
	tokens := expectKinds(t, `größe _x1`, []token.Kind{token.IDENT, token.IDENT, token.EOF})
	if tokens[0].Lexeme != "größe" {
		t.Errorf("expected 'größe', got %q", tokens[0].Lexeme)
	}
}

func TestUnexpectedCharacters(t *testing.T) {
	tests := []struct {
		source  string
		hasHint bool
	}{
		{"!", false},
		{"&", true},
		{"|", true},
		{"@", false},
		{"€", false},
	}
	for _, tt := range tests {
		tokens, diags := New(tt.source, "test.sl").Tokenize()
		if len(diags) != 1 || diags[0].Code != diag.CodeUnexpectedChar {
			t.Errorf("%q: expected one %s diagnostic, got %v", tt.source, diag.CodeUnexpectedChar, diags)
			continue
		}
		if (diags[0].Hint != "") != tt.hasHint {
			t.Errorf("%q: hint = %q", tt.source, diags[0].Hint)
		}
		if tokens[0].Kind != token.ILLEGAL || tokens[0].Lexeme != tt.source {
			t.Errorf("%q: got %s %q", tt.source, tokens[0].Kind, tokens[0].Lexeme)
		}
	}
}

func TestPositions(t *testing.T) {
	source := "fn main() {\n  return 1\n}"
	tokens, _ := New(source, "test.sl").Tokenize()

	// tokens: fn main ( ) { \n return 1 \n } EOF
	ret := tokens[6]
	if ret.Kind != token.KW_RETURN {
		t.Fatalf("expected KW_RETURN, got %s", ret.Kind)
	}
	if ret.Span.Start.Line != 2 || ret.Span.Start.Column != 3 {
		t.Errorf("return at %s, want 2:3", ret.Span.Start)
	}
	if ret.Span.End.Column != 9 {
		t.Errorf("return ends at column %d, want 9", ret.Span.End.Column)
	}
	if ret.Span.Start.Offset != 14 {
		t.Errorf("return offset %d, want 14", ret.Span.Start.Offset)
	}
	closing := tokens[9]
	if closing.Kind != token.RBRACE || closing.Span.Start.Line != 3 {
		t.Errorf("expected '}' on line 3, got %s at %s", closing.Kind, closing.Span.Start)
	}
}

func TestAlwaysEndsWithEOF(t *testing.T) {
	for _, src := range []string{"", "   ", "// only a comment", "\"open"} {
		tokens, _ := New(src, "test.sl").Tokenize()
		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
			t.Errorf("%q: token stream does not end with EOF: %v", src, tokens)
		}
	}
}
