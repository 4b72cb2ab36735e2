// Package runtime implements the tree-walking evaluator and the runtime value
// model for simplelisp.
package runtime

import (
	"math"
	"strconv"
	"strings"
)

// Value is a runtime value. The set of implementations is closed: IntVal,
// FloatVal, StringVal, BoolVal, VoidVal and ArrayVal.
type Value interface {
	TypeName() string
	// String returns the display form used by print for top-level arguments.
	String() string
	value()
}

// IntVal is a 32-bit signed integer. Arithmetic wraps on overflow.
type IntVal int32

func (v IntVal) TypeName() string { return "int" }
func (v IntVal) String() string   { return strconv.FormatInt(int64(v), 10) }
func (IntVal) value()             {}

// FloatVal is a 32-bit IEEE float.
type FloatVal float32

func (v FloatVal) TypeName() string { return "float" }
func (v FloatVal) String() string   { return formatFloat(float32(v)) }
func (FloatVal) value()             {}

// StringVal is an immutable string.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }
func (StringVal) value()             {}

// BoolVal is true or false.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string   { return strconv.FormatBool(bool(v)) }
func (BoolVal) value()             {}

// VoidVal is the absence of a value, produced by functions that do not
// return one and by the built-ins.
type VoidVal struct{}

func (VoidVal) TypeName() string { return "void" }
func (VoidVal) String() string   { return "void" }
func (VoidVal) value()           {}

// Void is the single VoidVal.
var Void Value = VoidVal{}

// ArrayVal is an evaluated list. Arrays have value semantics: code that
// changes an element must work on a Clone so no other binding observes it.
type ArrayVal []Value

func (v ArrayVal) TypeName() string { return "array" }
func (ArrayVal) value()             {}

func (v ArrayVal) String() string {
	parts := make([]string, len(v))
	for i, elem := range v {
		parts[i] = Debug(elem)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Clone returns a shallow copy of v. Nested arrays are never mutated in
// place, so sharing them is safe.
func (v ArrayVal) Clone() ArrayVal {
	out := make(ArrayVal, len(v))
	copy(out, v)
	return out
}

// Debug returns the form used for values nested inside arrays, where strings
// are wrapped in double quotes. The contents are not escaped.
func Debug(v Value) string {
	if s, ok := v.(StringVal); ok {
		return "\"" + string(s) + "\""
	}
	return v.String()
}

// formatFloat renders the shortest representation that round-trips through
// float32, never using an exponent.
func formatFloat(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		return "NaN"
	case math.IsInf(float64(f), 1):
		return "inf"
	case math.IsInf(float64(f), -1):
		return "-inf"
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
