package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/lox/vm"
)

// Tracer is a vm.Observer that writes the operand stack and the instruction
// about to execute for every step.
type Tracer struct {
	vm.NoOpObserver
	w io.Writer
}

// NewTracer returns a Tracer writing to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// OnStep writes the trace for one instruction.
func (t *Tracer) OnStep(event vm.StepEvent) bool {
	var b strings.Builder
	b.WriteString("          ")
	for _, v := range event.Stack {
		fmt.Fprintf(&b, "[ %s ]", v.Inspect())
	}
	b.WriteString("\n")
	io.WriteString(t.w, b.String())
	DisassembleInstruction(t.w, event.Chunk, event.Offset)
	return true
}
