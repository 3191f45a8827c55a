// Package structure raises a linear instruction list back into the
// statement tree: jumps become labels and gotos, intrinsic opcodes lift
// to assignments and conditions, and a fixed-point region pass folds the
// goto graph into loops and conditional chains. Structuring never fails;
// anything the passes cannot prove stays a plain goto.
package structure

import (
	"fmt"

	"scarlet/internal/codec"
	"scarlet/internal/diag"
	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/sig"
)

// Options selects how much raising is performed.
type Options struct {
	// NoIntrinsics keeps every instruction a plain call; jumps are not
	// lifted, so no control flow is recovered either.
	NoIntrinsics bool
	// NoStructure lifts intrinsics but leaves control flow as labels and
	// gotos.
	NoStructure bool
	// Raise tunes symbolic argument lifting.
	Raise codec.RaiseOptions
	// MaxDiagnostics caps the bag; zero means a reasonable default.
	MaxDiagnostics int
}

// Structure raises one instruction list into a statement tree.
func Structure(table *sig.Table, instrs []lir.Instr, opts Options) (*ir.Block, *diag.Bag) {
	maxDiag := opts.MaxDiagnostics
	if maxDiag == 0 {
		maxDiag = 100
	}
	r := &raiser{
		table:  table,
		opts:   opts,
		bag:    diag.NewBag(maxDiag),
		instrs: instrs,
	}
	r.computePositions()
	r.collectTargets()
	stmts := r.raise()

	if !opts.NoIntrinsics && !opts.NoStructure {
		stmts = collapseRegions(stmts)
	}
	stmts, _ = cleanupLabels(stmts)
	mergeElseIf(stmts)

	block := &ir.Block{Stmts: stmts}
	cur := int32(0)
	block.Stmts = insertTimeLabels(block.Stmts, &cur)
	return block, r.bag
}

type raiser struct {
	table  *sig.Table
	opts   Options
	bag    *diag.Bag
	instrs []lir.Instr

	// pos is the encoded position of each instruction: a byte offset, or
	// the instruction index for index-addressed formats. end is the
	// position one past the last instruction.
	pos []int32
	end int32

	// posIndex inverts pos; end maps to len(instrs).
	posIndex map[int32]int

	// labels names the jump targets, keyed by instruction index.
	labels map[int]string
}

func (r *raiser) computePositions() {
	format := r.table.Format()
	r.pos = make([]int32, len(r.instrs))
	r.posIndex = make(map[int32]int, len(r.instrs)+1)
	p := 0
	for i := range r.instrs {
		if format.LabelsAsIndex {
			r.pos[i] = int32(i)
		} else {
			r.pos[i] = int32(p)
			p += codec.InstrSize(r.table, &r.instrs[i])
		}
		r.posIndex[r.pos[i]] = i
	}
	if format.LabelsAsIndex {
		r.end = int32(len(r.instrs))
	} else {
		r.end = int32(p)
	}
	r.posIndex[r.end] = len(r.instrs)
}

// collectTargets scans jump-like instructions and assigns a label to every
// reachable destination. Targets that do not land on an instruction
// boundary are diagnosed; the jump then stays a plain call.
func (r *raiser) collectTargets() {
	r.labels = make(map[int]string)
	if r.opts.NoIntrinsics {
		return
	}
	for i := range r.instrs {
		target, _, ok := r.jumpTarget(&r.instrs[i])
		if !ok {
			continue
		}
		if _, have := r.labels[target]; !have {
			r.labels[target] = fmt.Sprintf("label_%d", r.posOf(target))
		}
	}
}

func (r *raiser) posOf(index int) int32 {
	if index == len(r.instrs) {
		return r.end
	}
	return r.pos[index]
}

// jumpTarget extracts the destination instruction index and the encoded
// time argument of a jump-like instruction, when it has one and the
// destination is sound.
func (r *raiser) jumpTarget(in *lir.Instr) (target int, timeArg *int32, ok bool) {
	if in.Pseudo != nil {
		return 0, nil, false
	}
	intrin, found := r.table.IntrinsicForOpcode(in.Opcode)
	if !found {
		return 0, nil, false
	}
	switch intrin.Kind {
	case sig.KindJmp, sig.KindCondJmp, sig.KindCountJmp:
	default:
		return 0, nil, false
	}
	sg, _ := r.table.Resolve(in.Opcode)
	b, bound := sg.Binding()
	if !bound || b.Offset >= len(in.Args) {
		return 0, nil, false
	}
	off := in.Args[b.Offset]
	if off.Kind != lir.ArgRaw || off.Raw.IsReg {
		return 0, nil, false
	}
	v := int32(off.Raw.Bits)
	idx, found := r.posIndex[v]
	if !found {
		r.bag.Add(diag.NewWarning(diag.StructBadJumpArg, sourceless(),
			fmt.Sprintf("jump to %d lands between instructions", v)))
		return 0, nil, false
	}
	if b.Time >= 0 && b.Time < len(in.Args) {
		t := in.Args[b.Time]
		if t.Kind == lir.ArgRaw && !t.Raw.IsReg {
			tv := int32(t.Raw.Bits)
			timeArg = &tv
		}
	}
	return idx, timeArg, true
}

// targetTime is the time a jump adopts when it carries no explicit one:
// the time of the destination instruction.
func (r *raiser) targetTime(index int) int32 {
	if index < len(r.instrs) {
		return r.instrs[index].Time
	}
	if len(r.instrs) > 0 {
		return r.instrs[len(r.instrs)-1].Time
	}
	return 0
}

// raise builds the flat statement list: labels, lifted intrinsics, and
// plain calls, in instruction order.
func (r *raiser) raise() []ir.Stmt {
	format := r.table.Format()
	var out []ir.Stmt
	for i := range r.instrs {
		in := &r.instrs[i]
		if name, ok := r.labels[i]; ok {
			l := ir.Label(name)
			l.Time = in.Time
			out = append(out, l)
		}
		s, ok := r.liftInstr(in)
		if !ok {
			s = r.plainCall(in)
		}
		s.Time = in.Time
		if format.HasDiffMask && in.DiffMask != format.FullDiffMask {
			letters := format.DifficultyLetters(in.DiffMask)
			if m, ok := format.DifficultyMask(letters); ok && letters != "" && m == in.DiffMask {
				s.Diff = letters
			} else {
				// An empty mask or bits past the full mask have no letter
				// spelling; keep the raw mask so recompiling is lossless.
				s.HasRawMask = true
				s.RawMask = in.DiffMask
			}
		}
		out = append(out, s)
	}
	if name, ok := r.labels[len(r.instrs)]; ok {
		l := ir.Label(name)
		l.Time = r.targetTime(len(r.instrs))
		out = append(out, l)
	}
	return out
}
