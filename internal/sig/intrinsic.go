package sig

import (
	"fmt"

	"scarlet/internal/value"
)

// IntrinsicKind names the high-level operations a format may bind to
// opcodes.
type IntrinsicKind uint8

const (
	// KindJmp is `goto label @ t;`. Operands: offset, optional time.
	KindJmp IntrinsicKind = iota
	// KindInterruptLabel is `interrupt[n]:`. Operands: n.
	KindInterruptLabel
	// KindAssignOp is `a = b;` or `a += b;`. Operands: dest, rhs.
	KindAssignOp
	// KindBinOp is `a = b op c;`. Operands: dest, b, c.
	KindBinOp
	// KindUnOp is `a = op b;`. Operands: dest, b.
	KindUnOp
	// KindCountJmp is `if (x--) goto label @ t;`. Operands: x, offset, time.
	KindCountJmp
	// KindCondJmp is `if (a op b) goto label @ t;`. Operands: a, b, offset,
	// time.
	KindCondJmp
)

func (k IntrinsicKind) String() string {
	switch k {
	case KindJmp:
		return "unconditional jump"
	case KindInterruptLabel:
		return "interrupt label"
	case KindAssignOp:
		return "assign op"
	case KindBinOp:
		return "binary op"
	case KindUnOp:
		return "unary op"
	case KindCountJmp:
		return "decrement jump"
	case KindCondJmp:
		return "conditional jump"
	}
	return "unknown intrinsic"
}

// Intrinsic identifies one logical operation. It is a comparable value used
// as a map key, so parameterized kinds carry their parameters here; fields
// that do not apply to a kind stay zero.
type Intrinsic struct {
	Kind IntrinsicKind
	Bin  value.BinOp    // KindBinOp, KindCondJmp
	Un   value.UnOp     // KindUnOp
	As   value.AssignOp // KindAssignOp
	Ty   value.ScalarType
}

func Jmp() Intrinsic { return Intrinsic{Kind: KindJmp} }

func InterruptLabel() Intrinsic { return Intrinsic{Kind: KindInterruptLabel} }

func AssignOp(op value.AssignOp, ty value.ScalarType) Intrinsic {
	return Intrinsic{Kind: KindAssignOp, As: op, Ty: ty}
}

func BinOp(op value.BinOp, ty value.ScalarType) Intrinsic {
	return Intrinsic{Kind: KindBinOp, Bin: op, Ty: ty}
}

func UnOp(op value.UnOp, ty value.ScalarType) Intrinsic {
	return Intrinsic{Kind: KindUnOp, Un: op, Ty: ty}
}

func CountJmp() Intrinsic { return Intrinsic{Kind: KindCountJmp} }

func CondJmp(op value.BinOp, ty value.ScalarType) Intrinsic {
	return Intrinsic{Kind: KindCondJmp, Bin: op, Ty: ty}
}

func (in Intrinsic) String() string {
	switch in.Kind {
	case KindAssignOp:
		return fmt.Sprintf("%s(%s, %s)", in.Kind, in.As, in.Ty)
	case KindBinOp, KindCondJmp:
		return fmt.Sprintf("%s(%s, %s)", in.Kind, in.Bin, in.Ty)
	case KindUnOp:
		return fmt.Sprintf("%s(%s, %s)", in.Kind, in.Un, in.Ty)
	}
	return in.Kind.String()
}

// Binding maps an intrinsic's logical operands to physical slot indices of
// one concrete signature. Signatures may order the slots however they like;
// resolution scans the descriptor list instead of assuming positions.
//
// All indices refer to the signature's slot list. -1 means absent.
type Binding struct {
	// NumArgs is the full slot count, trailing padding included.
	NumArgs int

	// Offset and Time locate the jump operands for jump-like kinds. Time
	// is -1 for formats whose jumps carry no time argument; such jumps
	// always proceed at the destination's own time.
	Offset int
	Time   int

	// Out is the output operand (written register).
	Out int
	// OutFloatAsInt marks formats that store a float destination register
	// as an integer id.
	OutFloatAsInt bool

	// In lists input operand slots in logical order.
	In []int

	// Imm is the immediate integer operand of KindInterruptLabel.
	Imm int

	// Padding is the count of trailing padding slots, which must encode as
	// zero and never appear at the source level.
	Padding int
}

// ResolveBinding computes the operand mapping of intrinsic in against the
// ordered slot list. It returns an error describing the first incompatible
// slot when the signature cannot realize the intrinsic.
func ResolveBinding(in Intrinsic, slots []Slot) (*Binding, error) {
	b := &Binding{NumArgs: len(slots), Offset: -1, Time: -1, Out: -1, Imm: -1}

	// Work on an index list so operands can be claimed in any order.
	rest := make([]int, 0, len(slots))
	for i := range slots {
		rest = append(rest, i)
	}

	// Trailing padding first; it is invisible to operands.
	for len(rest) > 0 && slots[rest[len(rest)-1]].Kind == ArgPadding {
		rest = rest[:len(rest)-1]
		b.Padding++
	}

	claimKind := func(k ArgKind) int {
		for j, idx := range rest {
			if slots[idx].Kind == k {
				rest = append(rest[:j], rest[j+1:]...)
				return idx
			}
		}
		return -1
	}
	claimFront := func() int {
		if len(rest) == 0 {
			return -1
		}
		idx := rest[0]
		rest = rest[1:]
		return idx
	}

	needJump := func() error {
		if b.Offset = claimKind(ArgJumpOffset); b.Offset < 0 {
			return fmt.Errorf("%s: signature has no jump offset slot ('o')", in)
		}
		b.Time = claimKind(ArgJumpTime)
		return nil
	}
	needOut := func(ty value.ScalarType) error {
		idx := claimFront()
		if idx < 0 {
			return fmt.Errorf("%s: not enough slots for output operand", in)
		}
		switch {
		case ty == value.Int && !slots[idx].Kind.IsFloat():
		case ty == value.Float && slots[idx].Kind.IsFloat():
		case ty == value.Float && slots[idx].Kind == ArgDword:
			b.OutFloatAsInt = true
		default:
			return fmt.Errorf("%s: output slot %d has unexpected encoding %s", in, idx, slots[idx].Kind)
		}
		b.Out = idx
		return nil
	}
	needIn := func(ty value.ScalarType) error {
		idx := claimFront()
		if idx < 0 {
			return fmt.Errorf("%s: not enough slots for input operand", in)
		}
		if ty == value.Float != slots[idx].Kind.IsFloat() {
			return fmt.Errorf("%s: input slot %d has unexpected encoding %s", in, idx, slots[idx].Kind)
		}
		b.In = append(b.In, idx)
		return nil
	}

	var err error
	switch in.Kind {
	case KindJmp:
		err = needJump()
	case KindInterruptLabel:
		if b.Imm = claimFront(); b.Imm < 0 {
			err = fmt.Errorf("%s: not enough slots", in)
		}
	case KindAssignOp:
		if err = needOut(in.Ty); err == nil {
			err = needIn(in.Ty)
		}
	case KindBinOp:
		if err = needOut(in.Ty); err == nil {
			if err = needIn(in.Ty); err == nil {
				err = needIn(in.Ty)
			}
		}
	case KindUnOp:
		if err = needOut(in.Ty); err == nil {
			err = needIn(in.Ty)
		}
	case KindCountJmp:
		if err = needJump(); err == nil {
			err = needOut(value.Int)
		}
	case KindCondJmp:
		if err = needJump(); err == nil {
			if err = needIn(in.Ty); err == nil {
				err = needIn(in.Ty)
			}
		}
	default:
		err = fmt.Errorf("unknown intrinsic kind %d", in.Kind)
	}
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%s: unexpected extra %s slot at index %d", in, slots[rest[0]].Kind, rest[0])
	}
	return b, nil
}
