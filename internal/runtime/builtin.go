package runtime

import "strings"

// builtins are registered after user functions, in this order.
var builtins = []struct {
	name string
	fn   BuiltinFn
}{
	{"println", builtinPrintln},
	{"print", builtinPrint},
}

// FormatArgs renders print arguments back to back with no separator, using
// the display form for each argument.
func FormatArgs(args []Value) string {
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(arg.String())
	}
	return sb.String()
}

func builtinPrint(args []Value, out Output) (Value, error) {
	if err := out.Write(FormatArgs(args)); err != nil {
		return nil, err
	}
	return Void, nil
}

func builtinPrintln(args []Value, out Output) (Value, error) {
	if err := out.WriteLine(FormatArgs(args)); err != nil {
		return nil, err
	}
	return Void, nil
}
