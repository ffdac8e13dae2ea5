package bytecode

import (
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/lox/op"
	"github.com/deepnoodle-ai/lox/value"
)

// MaxConstants is the capacity of the constant pool. Constant operands are a
// single byte wide.
const MaxConstants = 256

// ErrTooManyConstants is returned by AddConstant when the pool is full.
var ErrTooManyConstants = errors.New("too many constants in one chunk")

// Chunk is a compiled block of bytecode. The line table always has exactly
// one entry per code byte.
type Chunk struct {
	name      string
	code      []byte
	lines     []int
	constants []value.Value
}

// NewChunk returns an empty chunk with the given name. The name is only used
// for diagnostics.
func NewChunk(name string) *Chunk {
	return &Chunk{name: name}
}

// Name returns the name of this chunk.
func (c *Chunk) Name() string {
	return c.name
}

// Write appends one byte of code produced by the given source line.
func (c *Chunk) Write(b byte, line int) {
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(code op.Code, line int) {
	c.Write(byte(code), line)
}

// AddConstant appends a value to the constant pool and returns its index.
func (c *Chunk) AddConstant(v value.Value) (int, error) {
	if len(c.constants) >= MaxConstants {
		return 0, ErrTooManyConstants
	}
	c.constants = append(c.constants, v)
	return len(c.constants) - 1, nil
}

// Patch overwrites a previously written byte. The compiler uses it to fill in
// jump offsets once the jump target is known.
func (c *Chunk) Patch(offset int, b byte) {
	c.code[offset] = b
}

// Len returns the number of code bytes.
func (c *Chunk) Len() int {
	return len(c.code)
}

// ByteAt returns the code byte at the given offset.
func (c *Chunk) ByteAt(offset int) byte {
	return c.code[offset]
}

// OpAt returns the code byte at the given offset as an opcode.
func (c *Chunk) OpAt(offset int) op.Code {
	return op.Code(c.code[offset])
}

// Uint16At reads a big-endian two byte operand starting at offset.
func (c *Chunk) Uint16At(offset int) int {
	return int(c.code[offset])<<8 | int(c.code[offset+1])
}

// LineAt returns the source line for the code byte at the given offset, or 0
// if the offset is out of range.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.lines) {
		return 0
	}
	return c.lines[offset]
}

// ConstantCount returns the number of constants.
func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Chunk) ConstantAt(index int) value.Value {
	return c.constants[index]
}

// Code returns a copy of the code bytes.
func (c *Chunk) Code() []byte {
	code := make([]byte, len(c.code))
	copy(code, c.code)
	return code
}

// Validate checks that the chunk can be executed without reading outside its
// own buffers: every opcode is known, every instruction is complete, constant
// operands are in range and jumps land inside the code.
func (c *Chunk) Validate() error {
	if len(c.lines) != len(c.code) {
		return fmt.Errorf("invalid chunk: %d code bytes but %d line entries",
			len(c.code), len(c.lines))
	}
	iter := NewInstructionIter(c)
	for {
		offset := iter.Offset()
		instr, ok := iter.Next()
		if !ok {
			return nil
		}
		code := op.Code(instr[0])
		if !code.IsValid() {
			return fmt.Errorf("invalid chunk: unknown opcode %d at offset %d", instr[0], offset)
		}
		info := op.GetInfo(code)
		if len(instr) != info.Size() {
			return fmt.Errorf("invalid chunk: truncated %s at offset %d", info.Name, offset)
		}
		next := offset + info.Size()
		switch info.Format {
		case op.ConstantOperand:
			if idx := int(instr[1]); idx >= len(c.constants) {
				return fmt.Errorf("invalid chunk: constant index %d out of range at offset %d", idx, offset)
			}
		case op.JumpOperand:
			if target := next + c.Uint16At(offset+1); target > len(c.code) {
				return fmt.Errorf("invalid chunk: jump target %d out of range at offset %d", target, offset)
			}
		case op.LoopOperand:
			if target := next - c.Uint16At(offset+1); target < 0 {
				return fmt.Errorf("invalid chunk: loop target %d out of range at offset %d", target, offset)
			}
		}
	}
}
