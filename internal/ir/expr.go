// Package ir is the structured statement tree shared by the flattener and
// the structurer. Convenience syntax is assumed to be desugared before a
// body reaches this form; what remains maps closely onto instructions,
// conditionals, loops and labels.
package ir

import (
	"math"

	"scarlet/internal/source"
	"scarlet/internal/value"
)

// ExprKind enumerates expression variants.
type ExprKind uint8

const (
	// ExprLitInt is an integer literal.
	ExprLitInt ExprKind = iota
	// ExprLitFloat is a float literal.
	ExprLitFloat
	// ExprReg is a direct register reference like [10002].
	ExprReg
	// ExprNamed is a register alias or variable reference by name.
	ExprNamed
	// ExprBin is a binary operation.
	ExprBin
	// ExprUn is a unary operation (negate, bitwise not).
	ExprUn
	// ExprCast is an int/float reinterpreting cast.
	ExprCast
	// ExprEnum is a symbolic enum-member reference.
	ExprEnum
	// ExprDiffSwitch selects one of N per-difficulty literal alternatives.
	ExprDiffSwitch
	// ExprName is a symbolic sub/script/sprite reference that encodes as
	// its integer id.
	ExprName
	// ExprDecrement is the `x--` condition form of the decrement-jump
	// intrinsic; it only appears as a jump condition.
	ExprDecrement
)

// Expr is a tagged-variant expression node.
type Expr struct {
	Kind ExprKind
	Span source.Span

	Int   int32   // ExprLitInt
	Float float32 // ExprLitFloat

	Reg     value.RegID      // ExprReg
	RegType value.ScalarType // ExprReg, ExprNamed

	Ident string // ExprNamed: alias or variable name

	BinOp value.BinOp // ExprBin
	UnOp  value.UnOp  // ExprUn
	Lhs   *Expr       // ExprBin
	Rhs   *Expr       // ExprBin; operand of ExprUn and ExprCast

	CastTo value.ScalarType // ExprCast

	Enum   string // ExprEnum: enum name
	Member string // ExprEnum: member name

	// Cases holds the per-difficulty alternatives of ExprDiffSwitch,
	// indexed by difficulty bit position. A nil entry repeats the previous
	// one (the X:Y::Z shorthand).
	Cases []*Expr

	NameKind uint8  // ExprName: which namespace (sig.NameKind value)
	Name     string // ExprName
}

func LitInt(v int32) *Expr {
	return &Expr{Kind: ExprLitInt, Int: v}
}

func LitFloat(v float32) *Expr {
	return &Expr{Kind: ExprLitFloat, Float: v}
}

// Inf, NaN and Pi are the built-in constants; they are plain float
// literals by the time they reach this tree.
func Inf() *Expr { return LitFloat(float32(math.Inf(1))) }
func NaN() *Expr { return LitFloat(float32(math.NaN())) }
func Pi() *Expr  { return LitFloat(math.Pi) }

func Reg(id value.RegID, ty value.ScalarType) *Expr {
	return &Expr{Kind: ExprReg, Reg: id, RegType: ty}
}

func Named(ident string, ty value.ScalarType) *Expr {
	return &Expr{Kind: ExprNamed, Ident: ident, RegType: ty}
}

func Bin(op value.BinOp, lhs, rhs *Expr) *Expr {
	return &Expr{Kind: ExprBin, BinOp: op, Lhs: lhs, Rhs: rhs}
}

func Un(op value.UnOp, operand *Expr) *Expr {
	return &Expr{Kind: ExprUn, UnOp: op, Rhs: operand}
}

func Cast(to value.ScalarType, operand *Expr) *Expr {
	return &Expr{Kind: ExprCast, CastTo: to, Rhs: operand}
}

func EnumMember(enum, member string) *Expr {
	return &Expr{Kind: ExprEnum, Enum: enum, Member: member}
}

func DiffSwitch(cases ...*Expr) *Expr {
	return &Expr{Kind: ExprDiffSwitch, Cases: cases}
}

func Decrement(operand *Expr) *Expr {
	return &Expr{Kind: ExprDecrement, Rhs: operand}
}

// IsLiteral reports whether the expression is a plain literal that can be
// encoded without evaluation.
func (e *Expr) IsLiteral() bool {
	if e == nil {
		return false
	}
	return e.Kind == ExprLitInt || e.Kind == ExprLitFloat
}

// Equal compares two expressions structurally. It is used to collapse
// difficulty switches whose branches all agree.
func (e *Expr) Equal(other *Expr) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Kind != other.Kind {
		return false
	}
	switch e.Kind {
	case ExprLitInt:
		return e.Int == other.Int
	case ExprLitFloat:
		// Bit comparison: NaN branches that are textually identical
		// should still collapse.
		return math.Float32bits(e.Float) == math.Float32bits(other.Float)
	case ExprReg:
		return e.Reg == other.Reg && e.RegType == other.RegType
	case ExprNamed:
		return e.Ident == other.Ident && e.RegType == other.RegType
	case ExprBin:
		return e.BinOp == other.BinOp && e.Lhs.Equal(other.Lhs) && e.Rhs.Equal(other.Rhs)
	case ExprUn:
		return e.UnOp == other.UnOp && e.Rhs.Equal(other.Rhs)
	case ExprCast:
		return e.CastTo == other.CastTo && e.Rhs.Equal(other.Rhs)
	case ExprEnum:
		return e.Enum == other.Enum && e.Member == other.Member
	case ExprName:
		return e.NameKind == other.NameKind && e.Name == other.Name
	case ExprDecrement:
		return e.Rhs.Equal(other.Rhs)
	case ExprDiffSwitch:
		if len(e.Cases) != len(other.Cases) {
			return false
		}
		for i := range e.Cases {
			if !e.Cases[i].Equal(other.Cases[i]) {
				return false
			}
		}
		return true
	}
	return false
}
