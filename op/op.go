// Package op defines opcodes used by the Lox compiler and virtual machine.
//
// Every instruction is a one-byte opcode followed by a fixed number of
// operand bytes. The operand width and the stack effect of each opcode are
// static and described by Info.
package op

// Code is a one-byte opcode that indicates an operation to execute.
type Code uint8

const (
	// Push constants
	Constant Code = iota
	Nil
	True
	False

	// Stack
	Pop

	// Variables
	GetLocal
	SetLocal
	GetGlobal
	DefineGlobal
	SetGlobal

	// Comparison
	Equal
	Greater
	Less

	// Arithmetic
	Add
	Subtract
	Multiply
	Divide

	// Unary
	Not
	Negate

	// Statements
	Print

	// Jump
	Jump
	JumpIfFalse
	Loop

	// Execution
	Return

	codeCount
)

// OperandFormat describes how the operand bytes of an instruction are
// interpreted. Disassemblers use it to render operands.
type OperandFormat uint8

const (
	// NoOperand instructions are a single opcode byte.
	NoOperand OperandFormat = iota
	// ConstantOperand is a one-byte index into the constant pool.
	ConstantOperand
	// ByteOperand is a one-byte unsigned immediate, e.g. a stack slot.
	ByteOperand
	// JumpOperand is a two-byte big-endian forward offset.
	JumpOperand
	// LoopOperand is a two-byte big-endian backward offset.
	LoopOperand
)

// Width returns the number of operand bytes for the format.
func (f OperandFormat) Width() int {
	switch f {
	case ConstantOperand, ByteOperand:
		return 1
	case JumpOperand, LoopOperand:
		return 2
	default:
		return 0
	}
}

// Info contains information about an opcode.
type Info struct {
	Code   Code
	Name   string
	Format OperandFormat
	// Pops is the number of values removed from the stack.
	Pops int
	// Pushes is the number of values pushed after popping.
	Pushes int
}

// OperandWidth returns the number of operand bytes following the opcode.
func (i Info) OperandWidth() int {
	return i.Format.Width()
}

// Size returns the total encoded size of the instruction in bytes.
func (i Info) Size() int {
	return 1 + i.Format.Width()
}

// StackEffect returns the net change in stack depth.
func (i Info) StackEffect() int {
	return i.Pushes - i.Pops
}

var infos [256]Info

func init() {
	type opInfo struct {
		op     Code
		name   string
		format OperandFormat
		pops   int
		pushes int
	}
	ops := []opInfo{
		{Constant, "OP_CONSTANT", ConstantOperand, 0, 1},
		{Nil, "OP_NIL", NoOperand, 0, 1},
		{True, "OP_TRUE", NoOperand, 0, 1},
		{False, "OP_FALSE", NoOperand, 0, 1},
		{Pop, "OP_POP", NoOperand, 1, 0},
		{GetLocal, "OP_GET_LOCAL", ByteOperand, 0, 1},
		{SetLocal, "OP_SET_LOCAL", ByteOperand, 1, 1},
		{GetGlobal, "OP_GET_GLOBAL", ConstantOperand, 0, 1},
		{DefineGlobal, "OP_DEFINE_GLOBAL", ConstantOperand, 1, 0},
		{SetGlobal, "OP_SET_GLOBAL", ConstantOperand, 1, 1},
		{Equal, "OP_EQUAL", NoOperand, 2, 1},
		{Greater, "OP_GREATER", NoOperand, 2, 1},
		{Less, "OP_LESS", NoOperand, 2, 1},
		{Add, "OP_ADD", NoOperand, 2, 1},
		{Subtract, "OP_SUBTRACT", NoOperand, 2, 1},
		{Multiply, "OP_MULTIPLY", NoOperand, 2, 1},
		{Divide, "OP_DIVIDE", NoOperand, 2, 1},
		{Not, "OP_NOT", NoOperand, 1, 1},
		{Negate, "OP_NEGATE", NoOperand, 1, 1},
		{Print, "OP_PRINT", NoOperand, 1, 0},
		{Jump, "OP_JUMP", JumpOperand, 0, 0},
		// The condition is peeked, not popped
		{JumpIfFalse, "OP_JUMP_IF_FALSE", JumpOperand, 0, 0},
		{Loop, "OP_LOOP", LoopOperand, 0, 0},
		{Return, "OP_RETURN", NoOperand, 0, 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:   o.op,
			Name:   o.name,
			Format: o.format,
			Pops:   o.pops,
			Pushes: o.pushes,
		}
	}
}

// GetInfo returns information about the given opcode. Unknown opcodes have an
// empty Name.
func GetInfo(op Code) Info {
	return infos[op]
}

// IsValid reports whether the byte is a defined opcode.
func (c Code) IsValid() bool {
	return c < codeCount
}

// String returns the opcode name, e.g. "OP_ADD".
func (c Code) String() string {
	if !c.IsValid() {
		return "OP_UNKNOWN"
	}
	return infos[c].Name
}
