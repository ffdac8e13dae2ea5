// Package bytecode provides the compiled representation of Lox programs.
//
// A [Chunk] is an append-only buffer of instruction bytes, a constant pool
// and a line table holding one source line per code byte. The compiler owns
// a Chunk while writing it and then hands it to the virtual machine, which
// only reads it through the index-based accessors:
//
//	chunk.ByteAt(offset)
//	chunk.LineAt(offset)
//	chunk.ConstantAt(index)
//
// # Package Dependencies
//
// This package depends only on [github.com/deepnoodle-ai/lox/op] and
// [github.com/deepnoodle-ai/lox/value].
//
// # Usage
//
//	chunk := bytecode.NewChunk("script")
//	idx, err := chunk.AddConstant(value.Number(1.2))
//	if err != nil {
//	    return err
//	}
//	chunk.WriteOp(op.Constant, 1)
//	chunk.Write(byte(idx), 1)
//	chunk.WriteOp(op.Return, 1)
//
// Chunks can be serialized with [Chunk.MarshalBinary] and restored with
// [UnmarshalChunk], which validates the result before returning it.
package bytecode
