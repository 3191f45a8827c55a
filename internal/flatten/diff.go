package flatten

import (
	"scarlet/internal/ir"
)

// diffVariant is one expanded copy of a statement containing difficulty
// switches, restricted to the difficulties that share its resolution.
type diffVariant struct {
	mask uint8
	stmt ir.Stmt
}

// expandDiffSwitches resolves a statement's difficulty switches per level
// and groups the levels whose resolutions agree, so an instruction that
// only differs on one difficulty emits two copies, not one per level. A
// switch that resolves identically everywhere collapses back to a single
// statement under the full mask.
func expandDiffSwitches(s *ir.Stmt, mask uint8) []diffVariant {
	var out []diffVariant
	for bit := 0; bit < 8; bit++ {
		b := uint8(1) << bit
		if mask&b == 0 {
			continue
		}
		resolved := resolveStmtForLevel(s, bit)
		merged := false
		for i := range out {
			if stmtExprsEqual(&out[i].stmt, &resolved) {
				out[i].mask |= b
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, diffVariant{mask: b, stmt: resolved})
		}
	}
	return out
}

// resolveStmtForLevel copies a statement with every difficulty switch
// replaced by its alternative for one difficulty bit.
func resolveStmtForLevel(s *ir.Stmt, level int) ir.Stmt {
	out := *s
	out.Diff = ""
	out.HasRawMask = false
	out.RawMask = 0
	if s.Args != nil {
		out.Args = make([]*ir.Expr, len(s.Args))
		for i, a := range s.Args {
			out.Args[i] = resolveExprForLevel(a, level)
		}
	}
	out.Dest = resolveExprForLevel(s.Dest, level)
	out.Value = resolveExprForLevel(s.Value, level)
	out.GotoCond = resolveExprForLevel(s.GotoCond, level)
	return out
}

// resolveExprForLevel deep-copies an expression, replacing difficulty
// switches with the alternative selected by the difficulty bit. A nil
// alternative repeats the previous one; levels past the end reuse the
// last alternative.
func resolveExprForLevel(e *ir.Expr, level int) *ir.Expr {
	if e == nil {
		return nil
	}
	if e.Kind == ir.ExprDiffSwitch {
		idx := level
		if idx >= len(e.Cases) {
			idx = len(e.Cases) - 1
		}
		for idx > 0 && e.Cases[idx] == nil {
			idx--
		}
		return resolveExprForLevel(e.Cases[idx], level)
	}
	out := *e
	out.Lhs = resolveExprForLevel(e.Lhs, level)
	out.Rhs = resolveExprForLevel(e.Rhs, level)
	out.Cases = nil
	return &out
}

// stmtExprsEqual compares two resolved copies of the same statement; only
// the expression fields can differ.
func stmtExprsEqual(a, b *ir.Stmt) bool {
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].Equal(b.Args[i]) {
			return false
		}
	}
	return exprPtrEqual(a.Dest, b.Dest) &&
		exprPtrEqual(a.Value, b.Value) &&
		exprPtrEqual(a.GotoCond, b.GotoCond)
}

func exprPtrEqual(a, b *ir.Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}

// stmtHasDiffSwitch reports whether any expression of the statement is or
// contains a difficulty switch. Only leaf statements expand; switches in
// control-flow conditions have no single-instruction encoding.
func stmtHasDiffSwitch(s *ir.Stmt) bool {
	for _, a := range s.Args {
		if exprHasDiffSwitch(a) {
			return true
		}
	}
	return exprHasDiffSwitch(s.Dest) || exprHasDiffSwitch(s.Value) || exprHasDiffSwitch(s.GotoCond)
}

func exprHasDiffSwitch(e *ir.Expr) bool {
	if e == nil {
		return false
	}
	if e.Kind == ir.ExprDiffSwitch {
		return true
	}
	for _, c := range e.Cases {
		if exprHasDiffSwitch(c) {
			return true
		}
	}
	return exprHasDiffSwitch(e.Lhs) || exprHasDiffSwitch(e.Rhs)
}

// stmtHasBadDiffSwitch finds a difficulty switch the expander cannot
// resolve: one with no alternatives, or whose first alternative is empty
// (there is nothing for the lowest level to repeat).
func stmtHasBadDiffSwitch(s *ir.Stmt) bool {
	for _, a := range s.Args {
		if exprHasBadDiffSwitch(a) {
			return true
		}
	}
	return exprHasBadDiffSwitch(s.Dest) || exprHasBadDiffSwitch(s.Value) || exprHasBadDiffSwitch(s.GotoCond)
}

func exprHasBadDiffSwitch(e *ir.Expr) bool {
	if e == nil {
		return false
	}
	if e.Kind == ir.ExprDiffSwitch && (len(e.Cases) == 0 || e.Cases[0] == nil) {
		return true
	}
	for _, c := range e.Cases {
		if exprHasBadDiffSwitch(c) {
			return true
		}
	}
	return exprHasBadDiffSwitch(e.Lhs) || exprHasBadDiffSwitch(e.Rhs)
}
