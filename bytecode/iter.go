package bytecode

import "github.com/deepnoodle-ai/lox/op"

// InstructionIter iterates over instructions in a Chunk.
type InstructionIter struct {
	chunk *Chunk
	pos   int
}

// NewInstructionIter creates a new instruction iterator for the given chunk.
func NewInstructionIter(chunk *Chunk) *InstructionIter {
	return &InstructionIter{chunk: chunk}
}

// Offset returns the offset of the instruction the next call to Next returns.
func (i *InstructionIter) Offset() int {
	return i.pos
}

// Next returns the next instruction: the opcode byte followed by its operand
// bytes. A trailing instruction whose operands run past the end of the code
// is returned truncated. Returns false when there are no more instructions.
func (i *InstructionIter) Next() ([]byte, bool) {
	if i.pos >= i.chunk.Len() {
		return nil, false
	}
	size := op.GetInfo(i.chunk.OpAt(i.pos)).Size()
	end := i.pos + size
	if end > i.chunk.Len() {
		end = i.chunk.Len()
	}
	instr := make([]byte, end-i.pos)
	copy(instr, i.chunk.code[i.pos:end])
	i.pos = end
	return instr, true
}

// All returns all instructions as a newly allocated slice.
// This is a convenience method that collects all results from Next().
func (i *InstructionIter) All() [][]byte {
	var results [][]byte
	for {
		instr, ok := i.Next()
		if !ok {
			break
		}
		results = append(results, instr)
	}
	return results
}
