// Package value holds the scalar domain shared by signatures, the
// instruction codec and the statement tree: the two runtime types script
// engines know about, the operator kinds, and register identities.
package value

import (
	"fmt"
	"math"
)

// ScalarType is the runtime type of an argument or register.
type ScalarType uint8

const (
	Int ScalarType = iota
	Float
)

func (t ScalarType) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	}
	return "unknown"
}

// RegID identifies a register in the target engine. Float registers are
// numbered in the same space; the type sigil lives on the reference.
type RegID int32

// Scalar is a single immediate value. The engines store everything in 32
// bits; Bits is the canonical encoding and the accessors reinterpret it.
type Scalar struct {
	Type ScalarType
	Bits uint32
}

func FromInt(v int32) Scalar {
	return Scalar{Type: Int, Bits: uint32(v)}
}

func FromFloat(v float32) Scalar {
	return Scalar{Type: Float, Bits: math.Float32bits(v)}
}

func (s Scalar) Int() int32 {
	return int32(s.Bits)
}

func (s Scalar) Float() float32 {
	return math.Float32frombits(s.Bits)
}

func (s Scalar) String() string {
	switch s.Type {
	case Float:
		return fmt.Sprintf("%g", s.Float())
	default:
		return fmt.Sprintf("%d", s.Int())
	}
}
