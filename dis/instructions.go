package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/internal/table"
	"github.com/deepnoodle-ai/lox/op"
)

// Instruction is one decoded instruction in a chunk.
type Instruction struct {
	Offset   int     `json:"offset"`
	Line     int     `json:"line"`
	Opcode   op.Code `json:"-"`
	Name     string  `json:"opcode"`
	Operands []int   `json:"operands,omitempty"`
	// Info describes the operand: the constant value for constant operands
	// or the target offset for jumps.
	Info string `json:"info,omitempty"`
}

// Instructions decodes every instruction in the chunk. It fails on unknown
// opcodes and on a trailing instruction with missing operand bytes.
func Instructions(chunk *bytecode.Chunk) ([]Instruction, error) {
	var result []Instruction
	iter := bytecode.NewInstructionIter(chunk)
	for {
		offset := iter.Offset()
		raw, ok := iter.Next()
		if !ok {
			return result, nil
		}
		code := op.Code(raw[0])
		if !code.IsValid() {
			return nil, fmt.Errorf("unknown opcode %d at offset %d", raw[0], offset)
		}
		info := op.GetInfo(code)
		if len(raw) != info.Size() {
			return nil, fmt.Errorf("truncated %s at offset %d", info.Name, offset)
		}
		instr := Instruction{
			Offset: offset,
			Line:   chunk.LineAt(offset),
			Opcode: code,
			Name:   info.Name,
		}
		switch info.Format {
		case op.ConstantOperand:
			index := int(raw[1])
			instr.Operands = []int{index}
			instr.Info = constantText(chunk, index)
			if index < chunk.ConstantCount() && chunk.ConstantAt(index).IsString() {
				instr.Info = strconv.Quote(instr.Info)
			}
		case op.ByteOperand:
			instr.Operands = []int{int(raw[1])}
		case op.JumpOperand, op.LoopOperand:
			instr.Operands = []int{chunk.Uint16At(offset + 1)}
			instr.Info = fmt.Sprintf("-> %d", jumpTarget(chunk, offset, info))
		}
		result = append(result, instr)
	}
}

// Print writes the instructions as a table.
func Print(instructions []Instruction, w io.Writer) {
	rows := make([][]string, 0, len(instructions))
	for _, instr := range instructions {
		operands := make([]string, len(instr.Operands))
		for i, operand := range instr.Operands {
			operands[i] = strconv.Itoa(operand)
		}
		rows = append(rows, []string{
			strconv.Itoa(instr.Offset),
			strconv.Itoa(instr.Line),
			instr.Name,
			strings.Join(operands, ", "),
			instr.Info,
		})
	}
	table.NewTable(w).
		WithHeader([]string{"OFFSET", "LINE", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(rows).
		Render()
}
