package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/lox/value"
	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is written into every serialized chunk. Decoding rejects
// other versions.
const FormatVersion = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Serialization types

type chunkState struct {
	Version   int             `cbor:"version"`
	Name      string          `cbor:"name"`
	Code      []byte          `cbor:"code"`
	Lines     []int           `cbor:"lines"`
	Constants []constantState `cbor:"constants"`
}

type constantState struct {
	Type   uint8   `cbor:"type"`
	Bool   bool    `cbor:"bool,omitempty"`
	Number float64 `cbor:"number"`
	String string  `cbor:"string,omitempty"`
}

// MarshalBinary encodes the chunk as canonical CBOR.
func (c *Chunk) MarshalBinary() ([]byte, error) {
	state := chunkState{
		Version:   FormatVersion,
		Name:      c.name,
		Code:      c.code,
		Lines:     c.lines,
		Constants: make([]constantState, 0, len(c.constants)),
	}
	for _, v := range c.constants {
		cs := constantState{Type: uint8(v.Type())}
		switch v.Type() {
		case value.BOOL:
			cs.Bool = v.AsBool()
		case value.NUMBER:
			cs.Number = v.AsNumber()
		case value.STRING:
			cs.String = v.AsString()
		}
		state.Constants = append(state.Constants, cs)
	}
	return encMode.Marshal(state)
}

// UnmarshalChunk decodes a chunk produced by MarshalBinary and validates it.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var state chunkState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	if state.Version != FormatVersion {
		return nil, fmt.Errorf("bytecode: unsupported format version %d", state.Version)
	}
	if len(state.Constants) > MaxConstants {
		return nil, fmt.Errorf("bytecode: %w (%d)", ErrTooManyConstants, len(state.Constants))
	}
	chunk := &Chunk{
		name:  state.Name,
		code:  state.Code,
		lines: state.Lines,
	}
	for i, cs := range state.Constants {
		var v value.Value
		switch value.Type(cs.Type) {
		case value.NIL:
			v = value.Nil
		case value.BOOL:
			v = value.Bool(cs.Bool)
		case value.NUMBER:
			v = value.Number(cs.Number)
		case value.STRING:
			v = value.String(cs.String)
		default:
			return nil, fmt.Errorf("bytecode: constant %d has unknown type %d", i, cs.Type)
		}
		chunk.constants = append(chunk.constants, v)
	}
	if err := chunk.Validate(); err != nil {
		return nil, fmt.Errorf("bytecode: %w", err)
	}
	return chunk, nil
}
