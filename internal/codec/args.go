package codec

import (
	"errors"
	"fmt"
	"math"

	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/sig"
	"scarlet/internal/value"
)

// ErrComplexArg is returned by LowerScalarArg for expressions that cannot
// encode as a single raw argument; the flattener splits those through a
// scratch register instead.
var ErrComplexArg = errors.New("argument is not a scalar")

// RaiseOptions selects how much lifting decode performs.
type RaiseOptions struct {
	// NoEnums suppresses symbolic enum members; values stay integers.
	NoEnums bool
	// NoNames suppresses sub/script/sprite name lifting.
	NoNames bool
	// NoRegAliases renders registers as raw [id] references.
	NoRegAliases bool
}

// RaiseArg lifts one decoded raw argument to an expression, applying enum
// reverse lookup, name lifting and register aliases. Every fallback here
// is silent: an unresolvable value renders as a raw literal or register,
// never an error.
func RaiseArg(table *sig.Table, slot sig.Slot, raw lir.RawArg, opts RaiseOptions) *ir.Expr {
	if raw.IsReg {
		return raiseReg(table, slot, raw, opts)
	}
	if slot.Kind.IsFloat() {
		return ir.LitFloat(math.Float32frombits(raw.Bits))
	}
	v := int32(raw.Bits)
	if slot.Enum != "" && !opts.NoEnums {
		if e, ok := table.Enum(slot.Enum); ok {
			if member, ok := e.Member(v); ok {
				return ir.EnumMember(slot.Enum, member)
			}
		}
	}
	if slot.HasNameRef && !opts.NoNames {
		if name, ok := table.Name(slot.NameRef, v); ok {
			return &ir.Expr{Kind: ir.ExprName, NameKind: uint8(slot.NameRef), Name: name}
		}
	}
	return ir.LitInt(v)
}

func raiseReg(table *sig.Table, slot sig.Slot, raw lir.RawArg, opts RaiseOptions) *ir.Expr {
	ty := value.Int
	id := int32(raw.Bits)
	if slot.Kind.IsFloat() {
		ty = value.Float
		f := math.Float32frombits(raw.Bits)
		// Float-encoded register ids are whole numbers; anything else is
		// not a register reference we can lift, so keep the raw form.
		if f != float32(math.Trunc(float64(f))) {
			return ir.LitFloat(f)
		}
		id = int32(f)
	}
	reg := value.RegID(id)
	if !opts.NoRegAliases {
		if name, ok := table.RegName(reg); ok {
			return ir.Named(name, ty)
		}
	}
	return ir.Reg(reg, ty)
}

// LowerScalarArg encodes an expression that needs no evaluation: literals,
// enum members, symbolic names, casts of those, and register references.
// Anything else returns ErrComplexArg.
func LowerScalarArg(table *sig.Table, slot sig.Slot, e *ir.Expr) (lir.RawArg, error) {
	switch e.Kind {
	case ir.ExprLitInt:
		if slot.Kind.IsFloat() {
			return lir.RawFloat(float32(e.Int)), nil
		}
		return lir.RawInt(e.Int), nil
	case ir.ExprLitFloat:
		if slot.Kind.IsFloat() {
			return lir.RawFloat(e.Float), nil
		}
		return lir.RawArg{}, fmt.Errorf("float literal %g in an int slot", e.Float)
	case ir.ExprEnum:
		en, ok := table.Enum(e.Enum)
		if !ok {
			return lir.RawArg{}, fmt.Errorf("unknown enum %s", e.Enum)
		}
		v, ok := en.Value(e.Member)
		if !ok {
			return lir.RawArg{}, fmt.Errorf("enum %s has no member %s", e.Enum, e.Member)
		}
		return lir.RawInt(v), nil
	case ir.ExprName:
		id, ok := table.NameID(sig.NameKind(e.NameKind), e.Name)
		if !ok {
			return lir.RawArg{}, fmt.Errorf("unknown %s name %q", sig.NameKind(e.NameKind), e.Name)
		}
		return lir.RawInt(id), nil
	case ir.ExprReg:
		ty := value.Int
		if slot.Kind.IsFloat() {
			ty = value.Float
		}
		return lir.RawReg(e.Reg, ty), nil
	case ir.ExprNamed:
		reg, ok := table.RegByAlias(e.Ident)
		if !ok {
			return lir.RawArg{}, fmt.Errorf("unknown register alias %q", e.Ident)
		}
		ty := value.Int
		if slot.Kind.IsFloat() {
			ty = value.Float
		}
		return lir.RawReg(reg, ty), nil
	case ir.ExprCast:
		// Casts only reinterpret how a register is read; an immediate
		// operand converts at compile time.
		inner, err := LowerScalarArg(table, slot, e.Rhs)
		if err != nil {
			return lir.RawArg{}, err
		}
		return inner, nil
	}
	return lir.RawArg{}, ErrComplexArg
}
