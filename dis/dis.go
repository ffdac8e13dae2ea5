// Package dis supports analysis and disassembly of compiled Lox code.
package dis

import (
	"fmt"
	"io"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/op"
	"github.com/deepnoodle-ai/wonton/color"
)

var (
	colorOpcode   = color.Cyan
	colorConstant = color.Green
	colorLine     = color.BrightBlack
	colorHeader   = color.Yellow
	colorError    = color.Red
)

// Disassemble writes a listing of every instruction in the chunk, preceded by
// a "== name ==" header.
func Disassemble(w io.Writer, chunk *bytecode.Chunk, name string) {
	fmt.Fprintf(w, "%s\n", colorHeader.Apply(fmt.Sprintf("== %s ==", name)))
	for offset := 0; offset < chunk.Len(); {
		offset = DisassembleInstruction(w, chunk, offset)
	}
}

// DisassembleInstruction writes the instruction at the given offset and
// returns the offset of the next instruction.
func DisassembleInstruction(w io.Writer, chunk *bytecode.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.LineAt(offset) == chunk.LineAt(offset-1) {
		fmt.Fprint(w, colorLine.Apply("   | "))
	} else {
		fmt.Fprint(w, colorLine.Apply(fmt.Sprintf("%4d ", chunk.LineAt(offset))))
	}

	code := chunk.OpAt(offset)
	if !code.IsValid() {
		fmt.Fprintf(w, "%s\n", colorError.Apply(fmt.Sprintf("Unknown opcode %d", byte(code))))
		return offset + 1
	}
	info := op.GetInfo(code)
	if offset+info.Size() > chunk.Len() {
		fmt.Fprintf(w, "%s\n", colorError.Apply(fmt.Sprintf("%s (truncated)", info.Name)))
		return chunk.Len()
	}

	switch info.Format {
	case op.ConstantOperand:
		index := int(chunk.ByteAt(offset + 1))
		fmt.Fprintf(w, "%s %4d '%s'\n", opcodeName(info), index,
			colorConstant.Apply(constantText(chunk, index)))
	case op.ByteOperand:
		fmt.Fprintf(w, "%s %4d\n", opcodeName(info), chunk.ByteAt(offset+1))
	case op.JumpOperand, op.LoopOperand:
		fmt.Fprintf(w, "%s %4d -> %d\n", opcodeName(info), offset, jumpTarget(chunk, offset, info))
	default:
		fmt.Fprintf(w, "%s\n", colorOpcode.Apply(info.Name))
	}
	return offset + info.Size()
}

func opcodeName(info op.Info) string {
	return colorOpcode.Apply(fmt.Sprintf("%-16s", info.Name))
}

func constantText(chunk *bytecode.Chunk, index int) string {
	if index >= chunk.ConstantCount() {
		return "<invalid>"
	}
	return chunk.ConstantAt(index).Inspect()
}

// jumpTarget returns the offset a jump or loop instruction transfers to.
func jumpTarget(chunk *bytecode.Chunk, offset int, info op.Info) int {
	next := offset + info.Size()
	jump := chunk.Uint16At(offset + 1)
	if info.Format == op.LoopOperand {
		return next - jump
	}
	return next + jump
}
