package runtime

import (
	"errors"
	"fmt"

	"simplelisp/internal/span"
)

// Fault kinds. Every runtime error wraps exactly one of these, so callers can
// classify a failure with errors.Is.
var (
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrUnboundVariable   = errors.New("unbound variable")
	ErrUndefinedFunction = errors.New("undefined function")
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrIndexOutOfBounds  = errors.New("index out of bounds")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrMissingEntryPoint = errors.New("missing entry point")
	ErrStackOverflow     = errors.New("stack overflow")
)

// RuntimeError is a fault raised while evaluating a program, located at the
// node that raised it.
type RuntimeError struct {
	Err  error
	Span span.Span
}

func (e *RuntimeError) Error() string {
	if e.Span.Start.Line == 0 {
		return fmt.Sprintf("runtime error: %v", e.Err)
	}
	return fmt.Sprintf("runtime error at %s: %v", e.Span.Start, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func runtimeErr(s span.Span, kind error, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Err:  fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
		Span: s,
	}
}

// located attaches s to err unless err already carries a location.
func located(s span.Span, err error) error {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return err
	}
	return &RuntimeError{Err: err, Span: s}
}

func typeMismatch(op string, a, b Value) error {
	return fmt.Errorf("%w: cannot apply '%s' to %s and %s", ErrTypeMismatch, op, a.TypeName(), b.TypeName())
}
