// Package token defines the token kinds produced by the lexer.
package token

import (
	"fmt"

	"simplelisp/internal/span"
)

// Kind is the type of a token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	NEWLINE

	// Literals
	IDENT  // main, x, fib
	INT    // 123
	FLOAT  // 3.14
	STRING // "hello"

	// Operators
	ASSIGN  // =
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	EQ      // ==
	NEQ     // !=
	LT      // <
	GT      // >

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;

	// Keywords
	KW_FN
	KW_LET
	KW_RETURN
	KW_IF
	KW_TRUE
	KW_FALSE
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",

	IDENT:  "IDENT",
	INT:    "INT",
	FLOAT:  "FLOAT",
	STRING: "STRING",

	ASSIGN:  "=",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	EQ:      "==",
	NEQ:     "!=",
	LT:      "<",
	GT:      ">",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	SEMICOLON: ";",

	KW_FN:     "fn",
	KW_LET:    "let",
	KW_RETURN: "return",
	KW_IF:     "if",
	KW_TRUE:   "true",
	KW_FALSE:  "false",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KW_FN && k <= KW_FALSE
}

// IsBinaryOp reports whether k is one of the nine infix operators.
func (k Kind) IsBinaryOp() bool {
	return k >= PLUS && k <= GT
}

var keywords = map[string]Kind{
	"fn":     KW_FN,
	"let":    KW_LET,
	"return": KW_RETURN,
	"if":     KW_IF,
	"true":   KW_TRUE,
	"false":  KW_FALSE,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token is a lexical token with its kind, text, and source location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
