package runtime

import (
	"bytes"
	"reflect"
	"testing"
)

func TestWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	out := WriterOutput(&buf)
	_ = out.Write("a")
	_ = out.WriteLine("b")
	_ = out.WriteLine("")
	if buf.String() != "ab\n\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestLineOutput(t *testing.T) {
	var lines []string
	out := &LineOutput{Emit: func(line string) { lines = append(lines, line) }}

	_ = out.Write("partial ")
	if len(lines) != 0 {
		t.Fatalf("partial line emitted early: %v", lines)
	}
	_ = out.WriteLine("line")
	_ = out.Write("two\nlines\n")
	_ = out.WriteLine("")
	_ = out.Write("tail")
	out.Flush()
	out.Flush()

	expected := []string{"partial line", "two", "lines", "", "tail"}
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("lines = %q, want %q", lines, expected)
	}
}

func TestPrintThroughLineOutput(t *testing.T) {
	var lines []string
	out := &LineOutput{Emit: func(line string) { lines = append(lines, line) }}
	if _, err := builtinPrint([]Value{StringVal("x="), IntVal(3)}, out); err != nil {
		t.Fatal(err)
	}
	if _, err := builtinPrintln([]Value{ArrayVal{StringVal("y")}}, out); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lines, []string{`x=3["y"]`}) {
		t.Errorf("lines = %q", lines)
	}
}

func TestBuiltinsReturnVoid(t *testing.T) {
	var buf bytes.Buffer
	val, err := builtinPrintln(nil, WriterOutput(&buf))
	if err != nil || val != Void {
		t.Errorf("println() = %v, %v", val, err)
	}
	if buf.String() != "\n" {
		t.Errorf("println() wrote %q", buf.String())
	}
}
