// Package value defines the runtime values manipulated by the Lox virtual
// machine.
//
// A Value is a small tagged union: nil, booleans, IEEE-754 double precision
// numbers and immutable strings. Values are passed by value and are safe to
// copy and share between goroutines.
//
//	switch v.Type() {
//	case value.NUMBER:
//		// do something with v.AsNumber()
//	case value.STRING:
//		// do something with v.AsString()
//	}
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Type identifies the variant held by a Value.
type Type uint8

// Type constants
const (
	NIL Type = iota
	BOOL
	NUMBER
	STRING
)

// String returns the user facing name of the type, as used in error messages.
func (t Type) String() string {
	switch t {
	case NIL:
		return "nil"
	case BOOL:
		return "bool"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Value is a tagged union over the runtime types. The zero Value is nil.
type Value struct {
	typ Type
	b   bool
	n   float64
	s   string
}

var (
	Nil   = Value{}
	True  = Value{typ: BOOL, b: true}
	False = Value{typ: BOOL, b: false}
)

// Number returns a number value.
func Number(n float64) Value {
	return Value{typ: NUMBER, n: n}
}

// Bool returns the boolean value for b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// String returns a string value.
func String(s string) Value {
	return Value{typ: STRING, s: s}
}

// Type of the value.
func (v Value) Type() Type {
	return v.typ
}

func (v Value) IsNil() bool {
	return v.typ == NIL
}

func (v Value) IsBool() bool {
	return v.typ == BOOL
}

func (v Value) IsNumber() bool {
	return v.typ == NUMBER
}

func (v Value) IsString() bool {
	return v.typ == STRING
}

// AsBool returns the boolean payload. It is false for non-bool values.
func (v Value) AsBool() bool {
	return v.b
}

// AsNumber returns the numeric payload. It is 0 for non-number values.
func (v Value) AsNumber() float64 {
	return v.n
}

// AsString returns the string payload. It is empty for non-string values.
func (v Value) AsString() string {
	return v.s
}

// IsTruthy reports whether the value counts as true in a condition. Only nil
// and false are falsy.
func (v Value) IsTruthy() bool {
	switch v.typ {
	case NIL:
		return false
	case BOOL:
		return v.b
	default:
		return true
	}
}

// Equals reports whether two values are equal. Values of different types are
// never equal, and numbers follow IEEE-754 so NaN is not equal to itself.
func (v Value) Equals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case NIL:
		return true
	case BOOL:
		return v.b == other.b
	case NUMBER:
		return v.n == other.n
	case STRING:
		return v.s == other.s
	default:
		return false
	}
}

// Inspect returns the printed representation of the value.
func (v Value) Inspect() string {
	switch v.typ {
	case NIL:
		return "nil"
	case BOOL:
		if v.b {
			return "true"
		}
		return "false"
	case NUMBER:
		return FormatNumber(v.n)
	case STRING:
		return v.s
	default:
		return fmt.Sprintf("<%s>", v.typ)
	}
}

func (v Value) String() string {
	return v.Inspect()
}

// Interface converts the value to a native Go value.
func (v Value) Interface() any {
	switch v.typ {
	case BOOL:
		return v.b
	case NUMBER:
		return v.n
	case STRING:
		return v.s
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.typ == NUMBER && (math.IsNaN(v.n) || math.IsInf(v.n, 0)) {
		return nil, fmt.Errorf("value error: %s is not representable in json", v.Inspect())
	}
	return json.Marshal(v.Interface())
}

// FormatNumber renders a number the way the print statement shows it:
// integral values without a fractional part, everything else in the shortest
// form that round-trips.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}
