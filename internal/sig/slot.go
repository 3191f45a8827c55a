// Package sig models the externally supplied instruction signatures: per
// opcode, an ordered list of argument-slot descriptors, plus optional
// intrinsic bindings, merged enums, register aliases and name tables. A
// Table is built once per game/format and is immutable afterwards, so every
// compile and decompile invocation may read it concurrently without locks.
package sig

// ArgKind is the primitive encoding of one argument slot.
type ArgKind uint8

const (
	// ArgDword is a 4-byte signed integer.
	ArgDword ArgKind = iota
	// ArgWord is a 2-byte signed integer.
	ArgWord
	// ArgByte is a 1-byte signed integer.
	ArgByte
	// ArgFloat is a 4-byte IEEE-754 single.
	ArgFloat
	// ArgColor is a 4-byte integer conventionally shown in hex.
	ArgColor
	// ArgPadding is a 4-byte slot that must be zero and has no source-level
	// representation.
	ArgPadding
	// ArgJumpOffset is a 4-byte jump destination, encoded per the format's
	// label scheme.
	ArgJumpOffset
	// ArgJumpTime is a 4-byte time value paired with a jump offset.
	ArgJumpTime
)

// Width returns the encoded size of the slot in bytes.
func (k ArgKind) Width() int {
	switch k {
	case ArgWord:
		return 2
	case ArgByte:
		return 1
	}
	return 4
}

// Scalar reports how the slot's bits are typed at the source level.
func (k ArgKind) IsFloat() bool {
	return k == ArgFloat
}

func (k ArgKind) String() string {
	switch k {
	case ArgDword:
		return "S"
	case ArgWord:
		return "s"
	case ArgByte:
		return "b"
	case ArgFloat:
		return "f"
	case ArgColor:
		return "C"
	case ArgPadding:
		return "_"
	case ArgJumpOffset:
		return "o"
	case ArgJumpTime:
		return "t"
	}
	return "?"
}

// ParseArgKind maps a signature character to its slot kind.
func ParseArgKind(c byte) (ArgKind, bool) {
	switch c {
	case 'S':
		return ArgDword, true
	case 's':
		return ArgWord, true
	case 'b':
		return ArgByte, true
	case 'f':
		return ArgFloat, true
	case 'C':
		return ArgColor, true
	case '_':
		return ArgPadding, true
	case 'o':
		return ArgJumpOffset, true
	case 't':
		return ArgJumpTime, true
	}
	return 0, false
}

// Slot describes one argument position of a signature.
type Slot struct {
	Kind ArgKind
	// Enum optionally names the enum whose members this slot accepts.
	Enum string
	// NameRef marks the slot as an integer reference into one of the name
	// tables (subs, scripts, sprites), liftable to a symbolic name.
	HasNameRef bool
	NameRef    NameKind
}
