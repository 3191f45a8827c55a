package structure

import (
	"sort"

	"scarlet/internal/ir"
)

// collapseRegions folds the flat goto graph into loops and conditionals.
// Break gotos are recognized first, then conditional regions and loops
// collapse to a fixed point, innermost structures first. Anything left
// over stays a goto; structuring is best-effort by construction.
func collapseRegions(stmts []ir.Stmt) []ir.Stmt {
	stmts = convertBreaks(stmts)
	for {
		var removed bool
		stmts, removed = cleanupLabels(stmts)
		if out, ok := matchIf(stmts); ok {
			stmts = out
			continue
		}
		if out, ok := matchLoop(stmts); ok {
			stmts = out
			continue
		}
		if !removed {
			return stmts
		}
	}
}

// convertBreaks rewrites forward gotos targeting a loop's exit label into
// break statements. Loops are backward jumps; each is processed innermost
// first, and a goto claimed by an inner loop is never re-attributed to an
// outer one.
func convertBreaks(stmts []ir.Stmt) []ir.Stmt {
	refs := make(map[string]int)
	countRefs(stmts, refs)

	type pair struct{ i, j int }
	var pairs []pair
	for j := range stmts {
		s := &stmts[j]
		if s.Kind != ir.StmtGoto || s.HasTime {
			continue
		}
		i := findLabel(stmts, s.Label, 0)
		if i < 0 || i >= j || refs[s.Label] != 1 {
			continue
		}
		pairs = append(pairs, pair{i, j})
	}
	sort.Slice(pairs, func(a, b int) bool {
		return pairs[a].j-pairs[a].i < pairs[b].j-pairs[b].i
	})

	var claimed []pair
	inClaimed := func(k int) bool {
		for _, c := range claimed {
			if k > c.i && k < c.j {
				return true
			}
		}
		return false
	}
	for _, p := range pairs {
		overlaps := false
		for _, c := range claimed {
			nested := (c.i > p.i && c.j < p.j) || (p.i > c.i && p.j < c.j)
			disjoint := c.j < p.i || p.j < c.i
			if !nested && !disjoint {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		if p.j+1 < len(stmts) && stmts[p.j+1].Kind == ir.StmtLabel {
			exit := stmts[p.j+1].Label
			for k := p.i + 1; k < p.j; k++ {
				if inClaimed(k) {
					continue
				}
				s := &stmts[k]
				if s.Kind == ir.StmtGoto && s.GotoCond == nil && !s.HasTime && s.Label == exit {
					br := ir.Break()
					br.Time = s.Time
					*s = br
				}
			}
		}
		claimed = append(claimed, p)
	}
	return stmts
}

// matchIf collapses one conditional region: a forward conditional goto
// whose body holds no labels, optionally ending in a jump around an else
// body. The taken condition is the negation of the encoded one. The scan
// runs back to front so the innermost branch of an else-if chain collapses
// before the branch jumping over it.
func matchIf(stmts []ir.Stmt) ([]ir.Stmt, bool) {
	for i := len(stmts) - 1; i >= 0; i-- {
		s := &stmts[i]
		if s.Kind != ir.StmtGoto || s.GotoCond == nil || s.HasTime {
			continue
		}
		neg := negateCond(s.GotoCond)
		if neg == nil {
			continue
		}
		j := findLabel(stmts, s.Label, i+1)
		if j < 0 || hasLabel(stmts[i+1:j]) {
			continue
		}
		region := stmts[i+1 : j]

		if n := len(region); n > 0 {
			last := &region[n-1]
			if last.Kind == ir.StmtGoto && last.GotoCond == nil && !last.HasTime {
				m := findLabel(stmts, last.Label, j+1)
				if m >= 0 && !hasLabel(stmts[j+1:m]) {
					var els *ir.Block
					if m > j+1 {
						els = &ir.Block{Stmts: copyStmts(stmts[j+1 : m])}
					}
					ifs := ir.If([]ir.CondBranch{{
						Cond: neg,
						Body: &ir.Block{Stmts: copyStmts(region[:n-1])},
					}}, els)
					ifs.Time = s.Time
					ifs.Diff = s.Diff
					ifs.HasRawMask = s.HasRawMask
					ifs.RawMask = s.RawMask
					return replaceRange(stmts, i, m, ifs), true
				}
			}
		}

		ifs := ir.If([]ir.CondBranch{{
			Cond: neg,
			Body: &ir.Block{Stmts: copyStmts(region)},
		}}, nil)
		ifs.Time = s.Time
		ifs.Diff = s.Diff
		ifs.HasRawMask = s.HasRawMask
		ifs.RawMask = s.RawMask
		return replaceRange(stmts, i, j, ifs), true
	}
	return nil, false
}

// matchLoop collapses one backward jump into a loop. A conditional back
// edge is a do-while; the label must have no other references and the
// body no remaining labels.
func matchLoop(stmts []ir.Stmt) ([]ir.Stmt, bool) {
	refs := make(map[string]int)
	countRefs(stmts, refs)
	for j := range stmts {
		s := &stmts[j]
		if s.Kind != ir.StmtGoto || s.HasTime || refs[s.Label] != 1 {
			continue
		}
		i := findLabel(stmts, s.Label, 0)
		if i < 0 || i >= j || hasLabel(stmts[i+1:j]) {
			continue
		}
		lp := ir.Loop(&ir.Block{Stmts: copyStmts(stmts[i+1 : j])}, s.GotoCond)
		lp.Time = stmts[i].Time
		lp.Diff = s.Diff
		lp.HasRawMask = s.HasRawMask
		lp.RawMask = s.RawMask
		return replaceRange(stmts, i, j+1, lp), true
	}
	return nil, false
}

// negateCond inverts a lifted jump condition. Only comparisons invert;
// a decrement condition has no negation and blocks the match.
func negateCond(e *ir.Expr) *ir.Expr {
	if e.Kind == ir.ExprBin && e.BinOp.IsComparison() {
		c := *e
		c.BinOp = e.BinOp.Negate()
		return &c
	}
	return nil
}

func findLabel(stmts []ir.Stmt, name string, from int) int {
	for i := from; i < len(stmts); i++ {
		if stmts[i].Kind == ir.StmtLabel && stmts[i].Label == name {
			return i
		}
	}
	return -1
}

func hasLabel(stmts []ir.Stmt) bool {
	for i := range stmts {
		if stmts[i].Kind == ir.StmtLabel {
			return true
		}
	}
	return false
}

func copyStmts(stmts []ir.Stmt) []ir.Stmt {
	return append([]ir.Stmt(nil), stmts...)
}

// replaceRange substitutes stmts[from:to] with one statement.
func replaceRange(stmts []ir.Stmt, from, to int, repl ir.Stmt) []ir.Stmt {
	out := make([]ir.Stmt, 0, len(stmts)-(to-from)+1)
	out = append(out, stmts[:from]...)
	out = append(out, repl)
	out = append(out, stmts[to:]...)
	return out
}

// countRefs tallies goto references per label, descending into nested
// blocks.
func countRefs(stmts []ir.Stmt, m map[string]int) {
	for i := range stmts {
		s := &stmts[i]
		if s.Kind == ir.StmtGoto {
			m[s.Label]++
		}
		for b := range s.Branches {
			if s.Branches[b].Body != nil {
				countRefs(s.Branches[b].Body.Stmts, m)
			}
		}
		if s.Else != nil {
			countRefs(s.Else.Stmts, m)
		}
		if s.Body != nil {
			countRefs(s.Body.Stmts, m)
		}
	}
}

// cleanupLabels drops labels nothing references anymore.
func cleanupLabels(stmts []ir.Stmt) ([]ir.Stmt, bool) {
	refs := make(map[string]int)
	countRefs(stmts, refs)
	return dropUnrefLabels(stmts, refs)
}

func dropUnrefLabels(stmts []ir.Stmt, refs map[string]int) ([]ir.Stmt, bool) {
	out := stmts[:0]
	removed := false
	for i := range stmts {
		s := stmts[i]
		if s.Kind == ir.StmtLabel && refs[s.Label] == 0 {
			removed = true
			continue
		}
		for b := range s.Branches {
			if s.Branches[b].Body != nil {
				var r bool
				s.Branches[b].Body.Stmts, r = dropUnrefLabels(s.Branches[b].Body.Stmts, refs)
				removed = removed || r
			}
		}
		if s.Else != nil {
			var r bool
			s.Else.Stmts, r = dropUnrefLabels(s.Else.Stmts, refs)
			removed = removed || r
		}
		if s.Body != nil {
			var r bool
			s.Body.Stmts, r = dropUnrefLabels(s.Body.Stmts, refs)
			removed = removed || r
		}
		out = append(out, s)
	}
	return out, removed
}

// mergeElseIf rewrites `else { if ... }` nests into else-if chains, the
// shape the flattener emits them from.
func mergeElseIf(stmts []ir.Stmt) {
	for i := range stmts {
		s := &stmts[i]
		for b := range s.Branches {
			if s.Branches[b].Body != nil {
				mergeElseIf(s.Branches[b].Body.Stmts)
			}
		}
		if s.Else != nil {
			mergeElseIf(s.Else.Stmts)
		}
		if s.Body != nil {
			mergeElseIf(s.Body.Stmts)
		}
		if s.Kind != ir.StmtCond {
			continue
		}
		for s.Else != nil && len(s.Else.Stmts) == 1 {
			inner := &s.Else.Stmts[0]
			if inner.Kind != ir.StmtCond || inner.Diff != "" || inner.HasRawMask {
				break
			}
			s.Branches = append(s.Branches, inner.Branches...)
			s.Else = inner.Else
		}
	}
}

// insertTimeLabels threads the running time through the tree, inserting a
// time label wherever a statement's time departs from it.
func insertTimeLabels(stmts []ir.Stmt, cur *int32) []ir.Stmt {
	var out []ir.Stmt
	for i := range stmts {
		s := stmts[i]
		if s.Time != *cur {
			out = append(out, ir.TimeLabel(s.Time))
			*cur = s.Time
		}
		for b := range s.Branches {
			if s.Branches[b].Body != nil {
				s.Branches[b].Body.Stmts = insertTimeLabels(s.Branches[b].Body.Stmts, cur)
			}
		}
		if s.Else != nil {
			s.Else.Stmts = insertTimeLabels(s.Else.Stmts, cur)
		}
		if s.Body != nil {
			s.Body.Stmts = insertTimeLabels(s.Body.Stmts, cur)
		}
		out = append(out, s)
	}
	return out
}
