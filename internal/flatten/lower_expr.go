package flatten

import (
	"errors"

	"scarlet/internal/codec"
	"scarlet/internal/diag"
	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/sig"
	"scarlet/internal/source"
	"scarlet/internal/value"
)

// destOp is the destination of a synthesized assignment: either a source
// register expression or a scratch local.
type destOp struct {
	expr  *ir.Expr
	local lir.LocalID
	ty    value.ScalarType
}

func destExpr(e *ir.Expr, ty value.ScalarType) destOp {
	return destOp{expr: e, local: lir.NoLocalID, ty: ty}
}

func destLocal(id lir.LocalID, ty value.ScalarType) destOp {
	return destOp{local: id, ty: ty}
}

// exprType infers the scalar type an expression evaluates to.
func (f *flattener) exprType(e *ir.Expr) value.ScalarType {
	switch e.Kind {
	case ir.ExprLitFloat:
		return value.Float
	case ir.ExprReg, ir.ExprNamed:
		return e.RegType
	case ir.ExprBin:
		if e.BinOp.IsComparison() {
			return value.Int
		}
		if f.exprType(e.Lhs) == value.Float || f.exprType(e.Rhs) == value.Float {
			return value.Float
		}
		return value.Int
	case ir.ExprUn:
		return f.exprType(e.Rhs)
	case ir.ExprCast:
		return e.CastTo
	case ir.ExprDiffSwitch:
		for _, c := range e.Cases {
			if c != nil {
				return f.exprType(c)
			}
		}
	}
	return value.Int
}

func (f *flattener) freeAll(locals []lir.LocalID) {
	for i := len(locals) - 1; i >= 0; i-- {
		f.freeLocal(locals[i])
	}
}

// lowerOperand encodes one argument expression against its slot. Scalar
// expressions encode directly; anything else is computed into a fresh
// scratch local first, returned in the free list for release after the
// consuming instruction.
func (f *flattener) lowerOperand(e *ir.Expr, slot sig.Slot, time int32, span source.Span) (lir.Arg, []lir.LocalID, bool) {
	raw, err := codec.LowerScalarArg(f.table, slot, e)
	if err == nil {
		if raw.IsReg && !f.table.Format().HasRegisters {
			f.errorf(diag.CodecRegisterNotAllowed, exprSpan(e, span),
				"this format has no registers")
			return lir.Arg{}, nil, false
		}
		f.recordScalar(e, raw, slot)
		return lir.RawArgOf(raw), nil, true
	}
	if !errors.Is(err, codec.ErrComplexArg) {
		f.errorf(diag.FlatArgTypeMismatch, exprSpan(e, span), "%v", err)
		return lir.Arg{}, nil, false
	}
	if e.Kind == ir.ExprDiffSwitch {
		f.errorf(diag.FlatDifficultyNotInFmt, exprSpan(e, span),
			"difficulty switch is only valid as a direct instruction argument")
		return lir.Arg{}, nil, false
	}

	ty := value.Int
	if slot.Kind.IsFloat() {
		ty = value.Float
	}
	id := f.allocLocal(ty, exprSpan(e, span))
	if !f.assignInto(destLocal(id, ty), e, time, span) {
		return lir.Arg{}, nil, false
	}
	return lir.LocalArg(id), []lir.LocalID{id}, true
}

// recordScalar feeds alias-collision tracking and debug info from a
// successfully encoded scalar argument.
func (f *flattener) recordScalar(e *ir.Expr, raw lir.RawArg, slot sig.Slot) {
	switch e.Kind {
	case ir.ExprReg:
		f.noteRegUse(e, e.Reg, regTypeOf(slot))
	case ir.ExprNamed:
		if reg, ok := f.table.RegByAlias(e.Ident); ok {
			f.noteRegUse(e, reg, regTypeOf(slot))
		}
	case ir.ExprEnum:
		if f.debug != nil {
			if en, ok := f.table.Enum(e.Enum); ok {
				if v, ok := en.Value(e.Member); ok {
					f.debug.AddConst(e.Member, v)
				}
			}
		}
	case ir.ExprCast:
		f.recordScalar(e.Rhs, raw, slot)
	}
}

func regTypeOf(slot sig.Slot) value.ScalarType {
	if slot.Kind.IsFloat() {
		return value.Float
	}
	return value.Int
}

func exprSpan(e *ir.Expr, fallback source.Span) source.Span {
	if !e.Span.Empty() {
		return e.Span
	}
	return fallback
}

// outArg encodes the output operand of an assignment-like instruction.
func (f *flattener) outArg(d destOp, slot sig.Slot, span source.Span) (lir.Arg, bool) {
	if d.local != lir.NoLocalID {
		return lir.LocalArg(d.local), true
	}
	raw, err := codec.LowerScalarArg(f.table, slot, d.expr)
	if err != nil {
		f.errorf(diag.FlatArgTypeMismatch, exprSpan(d.expr, span), "%v", err)
		return lir.Arg{}, false
	}
	if !raw.IsReg {
		f.errorf(diag.FlatArgTypeMismatch, exprSpan(d.expr, span),
			"assignment destination must be a register")
		return lir.Arg{}, false
	}
	f.recordScalar(d.expr, raw, slot)
	return lir.RawArgOf(raw), true
}

func (f *flattener) lowerAssign(s *ir.Stmt) {
	dest := s.Dest
	if dest == nil || (dest.Kind != ir.ExprReg && dest.Kind != ir.ExprNamed) {
		f.errorf(diag.FlatArgTypeMismatch, s.Span,
			"assignment destination must be a register or alias")
		return
	}
	if !f.table.Format().HasRegisters {
		f.errorf(diag.CodecRegisterNotAllowed, s.Span, "this format has no registers")
		return
	}
	ty := dest.RegType

	if s.AssignOp != value.Set {
		// Update assignments keep their compound intrinsic when the right
		// side is scalar; otherwise they decay to `a = a op rhs`.
		if _, ok := f.table.OpcodeForIntrinsic(sig.AssignOp(s.AssignOp, ty)); ok {
			bi, ok := f.resolveIntrinsic(sig.AssignOp(s.AssignOp, ty), s.Span, "update assignment")
			if !ok {
				return
			}
			if _, err := codec.LowerScalarArg(f.table, bi.Sig.Slots[bi.Bind.In[0]], s.Value); err == nil {
				f.emitAssignLike(bi, destExpr(dest, ty), []*ir.Expr{s.Value}, s.Time, s.Span)
				return
			}
		}
		bin, _ := s.AssignOp.BinOp()
		f.assignInto(destExpr(dest, ty), ir.Bin(bin, dest, s.Value), s.Time, s.Span)
		return
	}

	f.assignInto(destExpr(dest, ty), s.Value, s.Time, s.Span)
}

// assignInto emits the instructions computing e into dest, splitting
// non-scalar operands through scratch locals recursively.
func (f *flattener) assignInto(d destOp, e *ir.Expr, time int32, span source.Span) bool {
	switch e.Kind {
	case ir.ExprBin:
		if e.BinOp.IsComparison() {
			f.errorf(diag.FlatArgTypeMismatch, exprSpan(e, span),
				"a comparison result cannot be stored")
			return false
		}
		bi, ok := f.resolveIntrinsic(sig.BinOp(e.BinOp, d.ty), exprSpan(e, span), "binary op")
		if !ok {
			return false
		}
		return f.emitAssignLike(bi, d, []*ir.Expr{e.Lhs, e.Rhs}, time, span)
	case ir.ExprUn:
		return f.lowerUnop(d, e.UnOp, e.Rhs, time, exprSpan(e, span))
	case ir.ExprDecrement:
		f.errorf(diag.FlatArgTypeMismatch, exprSpan(e, span),
			"a decrement is only valid as a jump condition")
		return false
	case ir.ExprDiffSwitch:
		f.errorf(diag.FlatDifficultyNotInFmt, exprSpan(e, span),
			"difficulty switch is only valid as a direct instruction argument")
		return false
	default:
		bi, ok := f.resolveIntrinsic(sig.AssignOp(value.Set, d.ty), exprSpan(e, span), "assignment")
		if !ok {
			return false
		}
		return f.emitAssignLike(bi, d, []*ir.Expr{e}, time, span)
	}
}

// emitAssignLike fills and emits an intrinsic with one output operand and
// the given input operands.
func (f *flattener) emitAssignLike(bi boundIntrinsic, d destOp, inputs []*ir.Expr, time int32, span source.Span) bool {
	args := newIntrinsicArgs(bi.Bind)
	out, ok := f.outArg(d, bi.Sig.Slots[bi.Bind.Out], span)
	if !ok {
		return false
	}
	args[bi.Bind.Out] = out

	var frees []lir.LocalID
	for k, in := range inputs {
		a, fr, ok := f.lowerOperand(in, bi.Sig.Slots[bi.Bind.In[k]], time, span)
		if !ok {
			f.freeAll(frees)
			return false
		}
		args[bi.Bind.In[k]] = a
		frees = append(frees, fr...)
	}
	f.emitInstr(lir.Instr{Time: time, Opcode: bi.Opcode, Args: args})
	f.freeAll(frees)
	return true
}

// lowerUnop emits a unary operation, falling back to an equivalent binary
// form when the format has no unary intrinsic: negation becomes a multiply
// by minus one, bitwise not becomes a subtraction from minus one.
func (f *flattener) lowerUnop(d destOp, op value.UnOp, operand *ir.Expr, time int32, span source.Span) bool {
	if _, ok := f.table.OpcodeForIntrinsic(sig.UnOp(op, d.ty)); ok {
		bi, ok := f.resolveIntrinsic(sig.UnOp(op, d.ty), span, "unary op")
		if !ok {
			return false
		}
		return f.emitAssignLike(bi, d, []*ir.Expr{operand}, time, span)
	}

	switch op {
	case value.Neg:
		minusOne := ir.LitInt(-1)
		if d.ty == value.Float {
			minusOne = ir.LitFloat(-1)
		}
		return f.assignInto(d, ir.Bin(value.Mul, minusOne, operand), time, span)
	case value.Not:
		if d.ty == value.Float {
			f.errorf(diag.FlatArgTypeMismatch, span, "bitwise not needs an integer operand")
			return false
		}
		return f.assignInto(d, ir.Bin(value.Sub, ir.LitInt(-1), operand), time, span)
	}
	f.errorf(diag.FlatIntrinsicNotInTable, span, "unary op not supported in this format")
	return false
}

func (f *flattener) lowerInstrCall(s *ir.Stmt) {
	opcode := s.Opcode
	if !s.HasOpcode {
		op, ok := f.table.OpcodeByName(s.Name)
		if !ok {
			f.errorf(diag.FlatUnknownInstruction, s.Span, "unknown instruction %q", s.Name)
			return
		}
		opcode = op
	}
	sg, ok := f.table.Resolve(opcode)
	if !ok {
		f.errorf(diag.CodecUnknownOpcode, s.Span,
			"no signature known for opcode %d", opcode)
		return
	}

	// Padding slots never appear at the source level; arguments map onto
	// the visible slots in order.
	visible := make([]int, 0, len(sg.Slots))
	for i := range sg.Slots {
		if sg.Slots[i].Kind != sig.ArgPadding {
			visible = append(visible, i)
		}
	}
	if len(s.Args) != len(visible) {
		f.errorf(diag.CodecArgCountMismatch, s.Span,
			"opcode %d takes %d arguments, got %d", opcode, len(visible), len(s.Args))
		return
	}

	args := make([]lir.Arg, len(sg.Slots))
	for i := range args {
		args[i] = lir.RawArgOf(lir.RawInt(0))
	}
	var frees []lir.LocalID
	for k, si := range visible {
		a, fr, ok := f.lowerOperand(s.Args[k], sg.Slots[si], s.Time, s.Span)
		if !ok {
			f.freeAll(frees)
			return
		}
		args[si] = a
		frees = append(frees, fr...)
	}
	f.emitInstr(lir.Instr{Time: s.Time, Opcode: opcode, Args: args})
	f.freeAll(frees)
}
