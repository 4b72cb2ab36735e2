package runtime

import (
	"fmt"
	"math"

	"simplelisp/internal/token"
)

// BinaryOp applies the infix operator op to a and b. Operands must share a
// tag; there is no implicit int/float coercion.
func BinaryOp(op token.Kind, a, b Value) (Value, error) {
	switch op {
	case token.PLUS:
		return Add(a, b)
	case token.MINUS:
		return Sub(a, b)
	case token.STAR:
		return Mul(a, b)
	case token.SLASH:
		return Div(a, b)
	case token.PERCENT:
		return Rem(a, b)
	case token.EQ:
		return BoolVal(Equal(a, b)), nil
	case token.NEQ:
		return BoolVal(!Equal(a, b)), nil
	case token.LT:
		ok, err := Less(a, b)
		return BoolVal(ok), err
	case token.GT:
		ok, err := Greater(a, b)
		return BoolVal(ok), err
	default:
		return nil, fmt.Errorf("unknown binary operator '%s'", op)
	}
}

// Add is numeric addition or string concatenation.
func Add(a, b Value) (Value, error) {
	switch l := a.(type) {
	case IntVal:
		if r, ok := b.(IntVal); ok {
			return l + r, nil
		}
	case FloatVal:
		if r, ok := b.(FloatVal); ok {
			return l + r, nil
		}
	case StringVal:
		if r, ok := b.(StringVal); ok {
			return l + r, nil
		}
	}
	return nil, typeMismatch("+", a, b)
}

func Sub(a, b Value) (Value, error) {
	switch l := a.(type) {
	case IntVal:
		if r, ok := b.(IntVal); ok {
			return l - r, nil
		}
	case FloatVal:
		if r, ok := b.(FloatVal); ok {
			return l - r, nil
		}
	}
	return nil, typeMismatch("-", a, b)
}

func Mul(a, b Value) (Value, error) {
	switch l := a.(type) {
	case IntVal:
		if r, ok := b.(IntVal); ok {
			return l * r, nil
		}
	case FloatVal:
		if r, ok := b.(FloatVal); ok {
			return l * r, nil
		}
	}
	return nil, typeMismatch("*", a, b)
}

// Div truncates toward zero for integers and follows IEEE for floats.
// Integer division by zero is ErrDivisionByZero.
func Div(a, b Value) (Value, error) {
	switch l := a.(type) {
	case IntVal:
		if r, ok := b.(IntVal); ok {
			if r == 0 {
				return nil, fmt.Errorf("%w: %d / 0", ErrDivisionByZero, l)
			}
			return l / r, nil
		}
	case FloatVal:
		if r, ok := b.(FloatVal); ok {
			return l / r, nil
		}
	}
	return nil, typeMismatch("/", a, b)
}

// Rem has the sign of the dividend, like Go's %. Integer modulo by zero is
// ErrDivisionByZero; float remainder follows math.Mod.
func Rem(a, b Value) (Value, error) {
	switch l := a.(type) {
	case IntVal:
		if r, ok := b.(IntVal); ok {
			if r == 0 {
				return nil, fmt.Errorf("%w: %d %% 0", ErrDivisionByZero, l)
			}
			return l % r, nil
		}
	case FloatVal:
		if r, ok := b.(FloatVal); ok {
			return FloatVal(math.Mod(float64(l), float64(r))), nil
		}
	}
	return nil, typeMismatch("%", a, b)
}

// Equal compares structurally. Values of different tags are never equal.
func Equal(a, b Value) bool {
	switch l := a.(type) {
	case ArrayVal:
		r, ok := b.(ArrayVal)
		if !ok || len(l) != len(r) {
			return false
		}
		for i := range l {
			if !Equal(l[i], r[i]) {
				return false
			}
		}
		return true
	case IntVal, FloatVal, StringVal, BoolVal, VoidVal:
		return a == b
	default:
		return false
	}
}

// Less orders two ints, two floats, or two strings (bytewise).
func Less(a, b Value) (bool, error) {
	switch l := a.(type) {
	case IntVal:
		if r, ok := b.(IntVal); ok {
			return l < r, nil
		}
	case FloatVal:
		if r, ok := b.(FloatVal); ok {
			return l < r, nil
		}
	case StringVal:
		if r, ok := b.(StringVal); ok {
			return l < r, nil
		}
	}
	return false, typeMismatch("<", a, b)
}

func Greater(a, b Value) (bool, error) {
	switch l := a.(type) {
	case IntVal:
		if r, ok := b.(IntVal); ok {
			return l > r, nil
		}
	case FloatVal:
		if r, ok := b.(FloatVal); ok {
			return l > r, nil
		}
	case StringVal:
		if r, ok := b.(StringVal); ok {
			return l > r, nil
		}
	}
	return false, typeMismatch(">", a, b)
}
