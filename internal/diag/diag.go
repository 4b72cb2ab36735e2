// Package diag provides the diagnostics reported by the lexer and parser.
package diag

import (
	"fmt"
	"strings"

	"simplelisp/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Stable diagnostic codes. E1xxx come from the lexer, E2xxx from the parser,
// W2xxx are parser warnings.
const (
	CodeUnterminatedString = "E1001"
	CodeUnknownEscape      = "E1002"
	CodeUnexpectedChar     = "E1003"
	CodeIntRange           = "E1004"
	CodeFloatRange         = "E1005"

	CodeExpectedToken   = "E2001"
	CodeUnexpectedToken = "E2002"
	CodeTopLevel        = "E2003"
	CodeNestedFunc      = "E2004"
	CodeDuplicateParam  = "E2005"

	CodeRedefinedFunc = "W2001"
)

// Diagnostic is a single lexer or parser message.
type Diagnostic struct {
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Span     span.Span `json:"span"`
	Hint     string    `json:"hint,omitempty"`
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, d.Severity, d.Span.Start, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

// WithHint returns a copy of d carrying hint.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// Errorf creates an error diagnostic at the given span.
func Errorf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Warningf creates a warning diagnostic at the given span.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	d := Errorf(code, s, format, args...)
	d.Severity = Warning
	return d
}

// List is an ordered collection of diagnostics that can be returned as an error.
type List []Diagnostic

// HasErrors reports whether any diagnostic in l has Error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (l List) Error() string {
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
