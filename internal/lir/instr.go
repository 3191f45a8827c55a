// Package lir is the linear instruction form sitting between the
// structured statement tree and the binary boundary. One Instr corresponds
// to one encoded instruction; the external container owns the surrounding
// headers.
package lir

import (
	"fmt"

	"scarlet/internal/value"
)

// ArgKind distinguishes the states an argument passes through while being
// lowered. Encoded output contains only ArgRaw; labels and locals are
// resolved by the flattener's fixup passes first.
type ArgKind uint8

const (
	// ArgRaw is a fully encoded argument: an immediate or a register id.
	ArgRaw ArgKind = iota
	// ArgLabel is a jump destination not yet resolved to an offset.
	ArgLabel
	// ArgTimeOf is a `timeof(label)` not yet resolved to a time value.
	ArgTimeOf
	// ArgLocal is a scratch-allocated local awaiting a register.
	ArgLocal
)

// RawArg is the 32-bit encoded form of one argument. IsReg distinguishes a
// register id from an immediate; it becomes the argument's bit in the
// instruction's parameter mask.
type RawArg struct {
	Bits  uint32
	IsReg bool
}

func RawInt(v int32) RawArg {
	return RawArg{Bits: uint32(v)}
}

func RawFloat(v float32) RawArg {
	return RawArg{Bits: value.FromFloat(v).Bits}
}

// RawReg encodes a register operand. Float-typed registers store their id
// as a float unless the signature says otherwise.
func RawReg(reg value.RegID, ty value.ScalarType) RawArg {
	if ty == value.Float {
		return RawArg{Bits: value.FromFloat(float32(reg)).Bits, IsReg: true}
	}
	return RawArg{Bits: uint32(reg), IsReg: true}
}

// LocalID identifies a scratch local inside one body.
type LocalID int32

const NoLocalID LocalID = -1

// Arg is one argument in any lowering state.
type Arg struct {
	Kind  ArgKind
	Raw   RawArg
	Label string
	Local LocalID
}

func LabelArg(label string) Arg {
	return Arg{Kind: ArgLabel, Label: label}
}

func TimeOfArg(label string) Arg {
	return Arg{Kind: ArgTimeOf, Label: label}
}

func LocalArg(id LocalID) Arg {
	return Arg{Kind: ArgLocal, Local: id}
}

func RawArgOf(r RawArg) Arg {
	return Arg{Kind: ArgRaw, Raw: r}
}

// ExpectRaw returns the encoded form of an argument that must already be
// resolved. Reaching an unresolved argument here is a bug in the lowering
// pipeline, not a user error.
func (a Arg) ExpectRaw() RawArg {
	if a.Kind != ArgRaw {
		panic(fmt.Sprintf("lir: unresolved argument %v", a.Kind))
	}
	return a.Raw
}

// PseudoArgs is the fallback payload for instructions without a known
// signature: the observed parameter mask plus the raw argument bytes,
// preserving an exact round trip. HasArg0 carries the reserved first
// argument of a timeline instruction whose signature is not known.
type PseudoArgs struct {
	Mask    uint16
	Blob    []byte
	HasArg0 bool
	Arg0    int16
}

// Instr is one linear instruction.
type Instr struct {
	Time     int32
	Opcode   uint16
	DiffMask uint8
	Args     []Arg

	// Pseudo is set instead of Args when no signature is known.
	Pseudo *PseudoArgs
}

// ParamMask packs the per-argument register flags into the format's
// parameter mask, low bit first.
func (in *Instr) ParamMask() (uint16, error) {
	if in.Pseudo != nil {
		return in.Pseudo.Mask, nil
	}
	if len(in.Args) > 16 {
		return 0, fmt.Errorf("too many arguments in instruction: %d", len(in.Args))
	}
	var mask uint16
	for i := len(in.Args) - 1; i >= 0; i-- {
		mask <<= 1
		a := in.Args[i]
		if a.Kind == ArgLocal || (a.Kind == ArgRaw && a.Raw.IsReg) {
			mask |= 1
		}
	}
	return mask, nil
}
