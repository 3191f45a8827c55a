package flatten

import (
	"math"

	"scarlet/internal/diag"
	"scarlet/internal/lir"
	"scarlet/internal/value"
)

// assignScratchRegs maps scratch locals onto the format's general-use
// registers. Registers the body already touches explicitly are never used
// as scratch; allocation is a stack per scalar type so a freed register is
// reused first.
func (f *flattener) assignScratchRegs() {
	if len(f.locals) == 0 {
		return
	}

	used := f.explicitRegs()
	free := make(map[value.ScalarType][]value.RegID)
	for ty, regs := range f.table.Format().GeneralUseRegs {
		for _, r := range regs {
			if !used[r] {
				free[ty] = append(free[ty], r)
			}
		}
	}

	assigned := make([]value.RegID, len(f.locals))
	for i := range assigned {
		assigned[i] = -1
	}

	for i := range f.out {
		switch f.out[i].Kind {
		case lowRegAlloc:
			id := f.out[i].Local
			ty := f.locals[id].ty
			pool := free[ty]
			if len(pool) == 0 {
				f.errorf(diag.FlatScratchExhausted, f.out[i].Cause,
					"no free %s scratch register for this sub-expression", ty)
				continue
			}
			assigned[id] = pool[len(pool)-1]
			free[ty] = pool[:len(pool)-1]
		case lowRegFree:
			id := f.out[i].Local
			if assigned[id] >= 0 {
				ty := f.locals[id].ty
				free[ty] = append(free[ty], assigned[id])
			}
		case lowInstr:
			f.patchLocals(&f.out[i].Instr, assigned)
		}
	}
}

// patchLocals replaces local arguments with their registers, encoded the
// way the argument's slot expects.
func (f *flattener) patchLocals(in *lir.Instr, assigned []value.RegID) {
	sg, haveSig := f.table.Resolve(in.Opcode)
	for j := range in.Args {
		if in.Args[j].Kind != lir.ArgLocal {
			continue
		}
		reg := assigned[in.Args[j].Local]
		if reg < 0 {
			// Allocation already failed with a diagnostic; keep the
			// stream encodable.
			in.Args[j] = lir.RawArgOf(lir.RawInt(0))
			continue
		}
		ty := value.Int
		if haveSig && j < len(sg.Slots) && sg.Slots[j].Kind.IsFloat() {
			ty = value.Float
		}
		in.Args[j] = lir.RawArgOf(lir.RawReg(reg, ty))
	}
}

// explicitRegs collects every register id the body references directly.
// Float-encoded ids count under both readings, since a scratch collision
// in either is fatal.
func (f *flattener) explicitRegs() map[value.RegID]bool {
	used := make(map[value.RegID]bool)
	for i := range f.out {
		if f.out[i].Kind != lowInstr {
			continue
		}
		for _, a := range f.out[i].Instr.Args {
			if a.Kind != lir.ArgRaw || !a.Raw.IsReg {
				continue
			}
			used[value.RegID(int32(a.Raw.Bits))] = true
			fv := math.Float32frombits(a.Raw.Bits)
			if fv == float32(math.Trunc(float64(fv))) && !math.IsInf(float64(fv), 0) {
				used[value.RegID(int32(fv))] = true
			}
		}
	}
	return used
}
