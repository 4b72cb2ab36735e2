package runtime

import (
	"io"
	"strings"
)

// Output is the channel print and println write to.
type Output interface {
	Write(text string) error
	WriteLine(text string) error
}

type writerOutput struct {
	w io.Writer
}

// WriterOutput adapts an io.Writer such as os.Stdout.
func WriterOutput(w io.Writer) Output {
	return &writerOutput{w: w}
}

func (o *writerOutput) Write(text string) error {
	_, err := io.WriteString(o.w, text)
	return err
}

func (o *writerOutput) WriteLine(text string) error {
	_, err := io.WriteString(o.w, text+"\n")
	return err
}

// LineOutput hands complete lines to Emit, for hosts whose only output is a
// per-line logging callback. Text written without a line break is held until
// the next WriteLine or Flush.
type LineOutput struct {
	Emit func(line string)

	pending strings.Builder
}

func (o *LineOutput) Write(text string) error {
	for {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			break
		}
		o.pending.WriteString(text[:idx])
		o.emit()
		text = text[idx+1:]
	}
	o.pending.WriteString(text)
	return nil
}

func (o *LineOutput) WriteLine(text string) error {
	if err := o.Write(text); err != nil {
		return err
	}
	o.emit()
	return nil
}

// Flush emits any partial line still pending.
func (o *LineOutput) Flush() {
	if o.pending.Len() > 0 {
		o.emit()
	}
}

func (o *LineOutput) emit() {
	line := o.pending.String()
	o.pending.Reset()
	if o.Emit != nil {
		o.Emit(line)
	}
}
