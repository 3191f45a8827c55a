package flatten

import (
	"scarlet/internal/codec"
	"scarlet/internal/diag"
	"scarlet/internal/lir"
)

// labelInfo is a resolved jump target: its byte offset, its instruction
// index, and the time of the instruction it precedes.
type labelInfo struct {
	offset int32
	index  int32
	time   int32
}

// resolveLabels walks the lowered stream twice: once to attach every label
// to the position and time of the instruction that follows it, once to
// replace label and timeof arguments with the resolved values. The format
// decides whether jump targets encode as byte offsets or as instruction
// indices.
func (f *flattener) resolveLabels() {
	labels := make(map[string]labelInfo)

	offset := 0
	index := 0
	lastTime := int32(0)
	var pending []int
	for i := range f.out {
		switch f.out[i].Kind {
		case lowLabel:
			pending = append(pending, i)
		case lowInstr:
			in := &f.out[i].Instr
			for _, pi := range pending {
				f.defineLabel(labels, pi, labelInfo{
					offset: int32(offset),
					index:  int32(index),
					time:   in.Time,
				})
			}
			pending = pending[:0]
			offset += codec.InstrSize(f.table, in)
			index++
			lastTime = in.Time
		}
	}
	// Labels at the very end of a body target the position one past the
	// last instruction, at the time already reached.
	for _, pi := range pending {
		f.defineLabel(labels, pi, labelInfo{
			offset: int32(offset),
			index:  int32(index),
			time:   lastTime,
		})
	}

	asIndex := f.table.Format().LabelsAsIndex
	for i := range f.out {
		if f.out[i].Kind != lowInstr {
			continue
		}
		in := &f.out[i].Instr
		for j := range in.Args {
			a := &in.Args[j]
			switch a.Kind {
			case lir.ArgLabel:
				info, ok := labels[a.Label]
				if !ok {
					f.errorf(diag.FlatUndefinedLabel, f.out[i].Cause,
						"undefined label %q", a.Label)
					*a = lir.RawArgOf(lir.RawInt(0))
					continue
				}
				v := info.offset
				if asIndex {
					v = info.index
				}
				*a = lir.RawArgOf(lir.RawInt(v))
			case lir.ArgTimeOf:
				info, ok := labels[a.Label]
				if !ok {
					f.errorf(diag.FlatUndefinedLabel, f.out[i].Cause,
						"undefined label %q", a.Label)
					*a = lir.RawArgOf(lir.RawInt(0))
					continue
				}
				*a = lir.RawArgOf(lir.RawInt(info.time))
			}
		}
	}
}

func (f *flattener) defineLabel(labels map[string]labelInfo, at int, info labelInfo) {
	name := f.out[at].Label
	if _, dup := labels[name]; dup {
		f.errorf(diag.FlatDuplicateLabel, f.out[at].Cause, "duplicate label %q", name)
		return
	}
	labels[name] = info
}
