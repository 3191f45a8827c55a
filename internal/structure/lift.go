package structure

import (
	"math"

	"scarlet/internal/codec"
	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/sig"
	"scarlet/internal/source"
	"scarlet/internal/value"
)

func sourceless() source.Span {
	return source.Span{}
}

// liftInstr recognizes an intrinsic-bound instruction and rebuilds its
// statement form. Any mismatch between the intrinsic shape and the actual
// argument values falls back to a plain call, never an error.
func (r *raiser) liftInstr(in *lir.Instr) (ir.Stmt, bool) {
	if r.opts.NoIntrinsics || in.Pseudo != nil {
		return ir.Stmt{}, false
	}
	intrin, ok := r.table.IntrinsicForOpcode(in.Opcode)
	if !ok {
		return ir.Stmt{}, false
	}
	sg, ok := r.table.Resolve(in.Opcode)
	if !ok {
		return ir.Stmt{}, false
	}
	b, ok := sg.Binding()
	if !ok || b.NumArgs != len(in.Args) {
		return ir.Stmt{}, false
	}

	switch intrin.Kind {
	case sig.KindJmp:
		return r.liftJump(in, nil)
	case sig.KindCondJmp:
		lhs, ok := r.raiseAt(in, sg, b.In[0])
		if !ok {
			return ir.Stmt{}, false
		}
		rhs, ok := r.raiseAt(in, sg, b.In[1])
		if !ok {
			return ir.Stmt{}, false
		}
		return r.liftJump(in, ir.Bin(intrin.Bin, lhs, rhs))
	case sig.KindCountJmp:
		counter, ok := r.destFromRaw(in, sg, b, value.Int)
		if !ok {
			return ir.Stmt{}, false
		}
		return r.liftJump(in, ir.Decrement(counter))
	case sig.KindAssignOp:
		dest, ok := r.destFromRaw(in, sg, b, intrin.Ty)
		if !ok {
			return ir.Stmt{}, false
		}
		val, ok := r.raiseAt(in, sg, b.In[0])
		if !ok {
			return ir.Stmt{}, false
		}
		return ir.Assign(dest, intrin.As, val), true
	case sig.KindBinOp:
		dest, ok := r.destFromRaw(in, sg, b, intrin.Ty)
		if !ok {
			return ir.Stmt{}, false
		}
		lhs, ok := r.raiseAt(in, sg, b.In[0])
		if !ok {
			return ir.Stmt{}, false
		}
		rhs, ok := r.raiseAt(in, sg, b.In[1])
		if !ok {
			return ir.Stmt{}, false
		}
		return ir.Assign(dest, value.Set, ir.Bin(intrin.Bin, lhs, rhs)), true
	case sig.KindUnOp:
		dest, ok := r.destFromRaw(in, sg, b, intrin.Ty)
		if !ok {
			return ir.Stmt{}, false
		}
		operand, ok := r.raiseAt(in, sg, b.In[0])
		if !ok {
			return ir.Stmt{}, false
		}
		return ir.Assign(dest, value.Set, ir.Un(intrin.Un, operand)), true
	case sig.KindInterruptLabel:
		if b.Imm < 0 || b.Imm >= len(in.Args) {
			return ir.Stmt{}, false
		}
		a := in.Args[b.Imm]
		if a.Kind != lir.ArgRaw || a.Raw.IsReg {
			return ir.Stmt{}, false
		}
		return ir.Interrupt(int32(a.Raw.Bits)), true
	}
	return ir.Stmt{}, false
}

// liftJump turns a jump-like instruction into a goto. An explicit time is
// kept only when it differs from the destination's own time; matching
// times round-trip through the implicit timeof form.
func (r *raiser) liftJump(in *lir.Instr, cond *ir.Expr) (ir.Stmt, bool) {
	target, timeArg, ok := r.jumpTarget(in)
	if !ok {
		return ir.Stmt{}, false
	}
	name, ok := r.labels[target]
	if !ok {
		return ir.Stmt{}, false
	}
	s := ir.Goto(name)
	s.GotoCond = cond
	if timeArg != nil && *timeArg != r.targetTime(target) {
		s.HasTime = true
		s.GotoTime = *timeArg
	}
	return s, true
}

// raiseAt lifts the raw argument in one slot.
func (r *raiser) raiseAt(in *lir.Instr, sg *sig.Signature, slot int) (*ir.Expr, bool) {
	if slot < 0 || slot >= len(in.Args) || slot >= len(sg.Slots) {
		return nil, false
	}
	a := in.Args[slot]
	if a.Kind != lir.ArgRaw {
		return nil, false
	}
	return codec.RaiseArg(r.table, sg.Slots[slot], a.Raw, r.opts.Raise), true
}

// destFromRaw lifts the output operand, which must be a register. Formats
// that store a float destination as an integer id reconstruct the float
// register here.
func (r *raiser) destFromRaw(in *lir.Instr, sg *sig.Signature, b *sig.Binding, ty value.ScalarType) (*ir.Expr, bool) {
	if b.Out < 0 || b.Out >= len(in.Args) {
		return nil, false
	}
	a := in.Args[b.Out]
	if a.Kind != lir.ArgRaw || !a.Raw.IsReg {
		return nil, false
	}
	var id int32
	switch {
	case b.OutFloatAsInt:
		id = int32(a.Raw.Bits)
		ty = value.Float
	case sg.Slots[b.Out].Kind.IsFloat():
		f := math.Float32frombits(a.Raw.Bits)
		if f != float32(math.Trunc(float64(f))) {
			return nil, false
		}
		id = int32(f)
		ty = value.Float
	default:
		id = int32(a.Raw.Bits)
	}
	reg := value.RegID(id)
	if !r.opts.Raise.NoRegAliases {
		if name, ok := r.table.RegName(reg); ok {
			return ir.Named(name, ty), true
		}
	}
	return ir.Reg(reg, ty), true
}

// plainCall renders an instruction as a direct call, with symbolic
// argument lifting per slot. Padding slots are invisible at the source
// level and are dropped.
func (r *raiser) plainCall(in *lir.Instr) ir.Stmt {
	if in.Pseudo != nil {
		return r.pseudoCall(in)
	}
	sg, haveSig := r.table.Resolve(in.Opcode)

	var args []*ir.Expr
	if haveSig {
		for i := range sg.Slots {
			if sg.Slots[i].Kind == sig.ArgPadding {
				continue
			}
			if i >= len(in.Args) || in.Args[i].Kind != lir.ArgRaw {
				args = append(args, ir.LitInt(0))
				continue
			}
			args = append(args, codec.RaiseArg(r.table, sg.Slots[i], in.Args[i].Raw, r.opts.Raise))
		}
	}

	if !r.opts.Raise.NoNames {
		if name, ok := r.table.InsName(in.Opcode); ok {
			return ir.InstrCall(name, args...)
		}
	}
	return ir.RawCall(in.Opcode, args...)
}

// pseudoCall renders an instruction whose signature is unknown. A blob
// that is a whole number of words renders one argument per word, register
// flags taken from the preserved parameter mask; anything else renders
// with no arguments and survives only through the raw side of the codec.
func (r *raiser) pseudoCall(in *lir.Instr) ir.Stmt {
	p := in.Pseudo
	var args []*ir.Expr
	if p.HasArg0 {
		args = append(args, ir.LitInt(int32(p.Arg0)))
	}
	if len(p.Blob)%4 == 0 {
		for i := 0; i+4 <= len(p.Blob); i += 4 {
			v := int32(uint32(p.Blob[i]) | uint32(p.Blob[i+1])<<8 |
				uint32(p.Blob[i+2])<<16 | uint32(p.Blob[i+3])<<24)
			if p.Mask&(1<<(i/4)) != 0 {
				args = append(args, ir.Reg(value.RegID(v), value.Int))
			} else {
				args = append(args, ir.LitInt(v))
			}
		}
	}
	return ir.RawCall(in.Opcode, args...)
}
