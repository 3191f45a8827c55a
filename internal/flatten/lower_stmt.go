package flatten

import (
	"scarlet/internal/diag"
	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/sig"
	"scarlet/internal/source"
	"scarlet/internal/value"
)

func (f *flattener) lowerBlock(b *ir.Block) {
	if b == nil {
		return
	}
	for i := range b.Stmts {
		f.lowerStmt(&b.Stmts[i])
	}
}

// lowerStmt resolves the statement's difficulty mask and expands
// difficulty switches, then hands each concrete variant to
// lowerSimpleStmt.
func (f *flattener) lowerStmt(s *ir.Stmt) {
	format := f.table.Format()

	mask := uint8(0)
	if format.HasDiffMask {
		mask = format.FullDiffMask
	}
	switch {
	case s.HasRawMask:
		if !format.HasDiffMask {
			f.errorf(diag.FlatDifficultyNotInFmt, s.Span,
				"this format has no per-instruction difficulty masks")
			return
		}
		// A raw mask encodes verbatim, empty and extra bits included.
		mask = s.RawMask
	case s.Diff != "":
		if !format.HasDiffMask {
			f.errorf(diag.FlatDifficultyNotInFmt, s.Span,
				"this format has no per-instruction difficulty masks")
			return
		}
		m, ok := format.DifficultyMask(s.Diff)
		if !ok {
			f.errorf(diag.FlatDifficultyNotInFmt, s.Span,
				"unknown difficulty letter in %q", s.Diff)
			return
		}
		mask = m
	}
	if format.HasDiffMask && mask == 0 && !s.HasRawMask {
		// Restricted to no difficulty at all; nothing to emit.
		return
	}

	if stmtHasDiffSwitch(s) {
		if !format.HasDiffMask {
			f.errorf(diag.FlatDifficultyNotInFmt, s.Span,
				"difficulty switches need per-instruction difficulty masks")
			return
		}
		if stmtHasBadDiffSwitch(s) {
			f.errorf(diag.FlatBadDiffSwitch, s.Span,
				"a difficulty switch needs a first alternative")
			return
		}
		for _, v := range expandDiffSwitches(s, mask) {
			f.diffMask = v.mask
			f.lowerSimpleStmt(&v.stmt)
		}
		return
	}

	f.diffMask = mask
	f.lowerSimpleStmt(s)
}

func (f *flattener) lowerSimpleStmt(s *ir.Stmt) {
	switch s.Kind {
	case ir.StmtInstrCall:
		f.lowerInstrCall(s)
	case ir.StmtAssign:
		f.lowerAssign(s)
	case ir.StmtCond:
		f.lowerCond(s)
	case ir.StmtLoop:
		f.lowerLoop(s)
	case ir.StmtBreak:
		if len(f.loopStack) == 0 {
			f.errorf(diag.FlatBreakOutsideLoop, s.Span, "break outside of a loop")
			return
		}
		f.emitJmp(s.Time, f.loopStack[len(f.loopStack)-1].breakLabel, false, 0, s.Span)
	case ir.StmtLabel:
		f.emitLabel(s.Label, s.Span)
	case ir.StmtTimeLabel:
		// Times are already stamped on the statements that follow.
	case ir.StmtGoto:
		if s.GotoCond == nil {
			f.emitJmp(s.Time, s.Label, s.HasTime, s.GotoTime, s.Span)
			return
		}
		f.condJump(s.Time, s.GotoCond, false, s.Label, s.HasTime, s.GotoTime, s.Span)
	case ir.StmtInterrupt:
		f.lowerInterrupt(s)
	}
}

// emitJmp emits an unconditional jump to a label. An explicit time
// overrides the destination's own time; formats whose jumps carry no time
// argument reject explicit times.
func (f *flattener) emitJmp(time int32, label string, hasTime bool, atTime int32, span source.Span) {
	bi, ok := f.resolveIntrinsic(sig.Jmp(), span, "unconditional jump")
	if !ok {
		return
	}
	args := newIntrinsicArgs(bi.Bind)
	args[bi.Bind.Offset] = lir.LabelArg(label)
	if !f.fillJumpTime(bi.Bind, args, label, hasTime, atTime, span) {
		return
	}
	f.emitInstr(lir.Instr{Time: time, Opcode: bi.Opcode, Args: args})
}

// fillJumpTime fills the time operand of a jump-like instruction, or
// reports the explicit time a timeless jump cannot carry.
func (f *flattener) fillJumpTime(b *sig.Binding, args []lir.Arg, label string, hasTime bool, atTime int32, span source.Span) bool {
	if b.Time < 0 {
		if hasTime {
			f.errorf(diag.FlatTimeNotInFmt, span,
				"jumps in this format carry no time argument")
			return false
		}
		return true
	}
	if hasTime {
		args[b.Time] = lir.RawArgOf(lir.RawInt(atTime))
	} else {
		args[b.Time] = lir.TimeOfArg(label)
	}
	return true
}

// condJump emits a jump taken when cond holds, or when it fails if negate
// is set. This is the one place decrement conditions are legal.
func (f *flattener) condJump(time int32, cond *ir.Expr, negate bool, label string, hasTime bool, atTime int32, span source.Span) {
	switch {
	case cond.Kind == ir.ExprDecrement:
		if negate {
			f.errorf(diag.FlatIntrinsicNotInTable, span,
				"a decrement condition cannot be negated")
			return
		}
		f.countJump(time, cond, label, hasTime, atTime, span)
	case cond.Kind == ir.ExprBin && cond.BinOp.IsComparison():
		op := cond.BinOp
		if negate {
			op = op.Negate()
		}
		ty := f.exprType(cond.Lhs)
		if f.exprType(cond.Rhs) == value.Float {
			ty = value.Float
		}
		bi, ok := f.resolveIntrinsic(sig.CondJmp(op, ty), span, "conditional jump")
		if !ok {
			return
		}
		args := newIntrinsicArgs(bi.Bind)
		args[bi.Bind.Offset] = lir.LabelArg(label)
		if !f.fillJumpTime(bi.Bind, args, label, hasTime, atTime, span) {
			return
		}
		lhs, freesA, ok := f.lowerOperand(cond.Lhs, bi.Sig.Slots[bi.Bind.In[0]], time, span)
		if !ok {
			return
		}
		rhs, freesB, ok := f.lowerOperand(cond.Rhs, bi.Sig.Slots[bi.Bind.In[1]], time, span)
		if !ok {
			f.freeAll(freesA)
			return
		}
		args[bi.Bind.In[0]] = lhs
		args[bi.Bind.In[1]] = rhs
		f.emitInstr(lir.Instr{Time: time, Opcode: bi.Opcode, Args: args})
		f.freeAll(freesB)
		f.freeAll(freesA)
	default:
		// Any other expression tests against zero.
		op := value.Ne
		if negate {
			op = value.Eq
		}
		wrapped := ir.Bin(op, cond, ir.LitInt(0))
		wrapped.Span = span
		f.condJump(time, wrapped, false, label, hasTime, atTime, span)
	}
}

// countJump emits the decrement-jump intrinsic: jump while the counter
// register, decremented first, stays positive.
func (f *flattener) countJump(time int32, cond *ir.Expr, label string, hasTime bool, atTime int32, span source.Span) {
	bi, ok := f.resolveIntrinsic(sig.CountJmp(), span, "decrement jump")
	if !ok {
		return
	}
	operand := cond.Rhs
	if operand.Kind != ir.ExprReg && operand.Kind != ir.ExprNamed {
		f.errorf(diag.FlatArgTypeMismatch, span,
			"decrement condition needs a register operand")
		return
	}
	args := newIntrinsicArgs(bi.Bind)
	args[bi.Bind.Offset] = lir.LabelArg(label)
	if !f.fillJumpTime(bi.Bind, args, label, hasTime, atTime, span) {
		return
	}
	counter, _, ok := f.lowerOperand(operand, bi.Sig.Slots[bi.Bind.Out], time, span)
	if !ok {
		return
	}
	args[bi.Bind.Out] = counter
	f.emitInstr(lir.Instr{Time: time, Opcode: bi.Opcode, Args: args})
}

func (f *flattener) lowerInterrupt(s *ir.Stmt) {
	bi, ok := f.resolveIntrinsic(sig.InterruptLabel(), s.Span, "interrupt label")
	if !ok {
		return
	}
	args := newIntrinsicArgs(bi.Bind)
	args[bi.Bind.Imm] = lir.RawArgOf(lir.RawInt(s.Interrupt))
	f.emitInstr(lir.Instr{Time: s.Time, Opcode: bi.Opcode, Args: args})
}

// lowerLoop lowers both infinite loops and do-while loops. The back edge
// is an unconditional jump, or a conditional jump taken while the
// condition still holds.
func (f *flattener) lowerLoop(s *ir.Stmt) {
	entry := f.gensym("loop")
	exit := f.gensym("end")

	f.emitLabel(entry, s.Span)
	f.loopStack = append(f.loopStack, loopCtx{breakLabel: exit})
	savedMask := f.diffMask
	f.lowerBlock(s.Body)
	f.diffMask = savedMask
	f.loopStack = f.loopStack[:len(f.loopStack)-1]

	endTime := s.Time
	if s.Body != nil && len(s.Body.Stmts) > 0 {
		endTime = s.Body.Stmts[len(s.Body.Stmts)-1].Time
	}
	if s.Cond == nil {
		f.emitJmp(endTime, entry, false, 0, s.Span)
	} else {
		f.condJump(endTime, s.Cond, false, entry, false, 0, s.Span)
	}
	f.emitLabel(exit, s.Span)
}

// lowerCond lowers an if/elseif/else chain. Each branch tests its
// condition and jumps past its body on failure; taken bodies jump to the
// merge point, except the last branch of an else-less chain, which simply
// falls through.
func (f *flattener) lowerCond(s *ir.Stmt) {
	merge := f.gensym("merge")
	savedMask := f.diffMask

	for i := range s.Branches {
		br := &s.Branches[i]
		last := i == len(s.Branches)-1

		next := merge
		if !last || s.Else != nil {
			next = f.gensym("else")
		}
		f.diffMask = savedMask
		f.condJump(s.Time, br.Cond, true, next, false, 0, s.Span)
		f.lowerBlock(br.Body)
		f.diffMask = savedMask
		if !last || s.Else != nil {
			bodyEnd := s.Time
			if br.Body != nil && len(br.Body.Stmts) > 0 {
				bodyEnd = br.Body.Stmts[len(br.Body.Stmts)-1].Time
			}
			f.emitJmp(bodyEnd, merge, false, 0, s.Span)
			f.emitLabel(next, s.Span)
		}
	}
	if s.Else != nil {
		f.lowerBlock(s.Else)
		f.diffMask = savedMask
	}
	f.emitLabel(merge, s.Span)
}
