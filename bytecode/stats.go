package bytecode

// Stats contains statistics about compiled bytecode.
// This is useful for auditing scripts before execution.
type Stats struct {
	// CodeBytes is the size of the instruction stream in bytes.
	CodeBytes int

	// InstructionCount is the total number of bytecode instructions.
	InstructionCount int

	// ConstantCount is the number of constants in the constant pool.
	ConstantCount int

	// LineCount is the highest source line that produced code.
	LineCount int
}

// Stats returns statistics about this chunk.
func (c *Chunk) Stats() Stats {
	stats := Stats{
		CodeBytes:        len(c.code),
		InstructionCount: len(NewInstructionIter(c).All()),
		ConstantCount:    len(c.constants),
	}
	for _, line := range c.lines {
		if line > stats.LineCount {
			stats.LineCount = line
		}
	}
	return stats
}
