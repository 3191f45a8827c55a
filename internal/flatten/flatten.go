// Package flatten lowers a structured statement tree into the linear
// instruction list of a target format. Control flow becomes synthesized
// labels and jumps, intrinsic statements become their bound opcodes, and
// complex sub-expressions spill through scratch registers. Label and
// register fixups run as separate passes over the lowered stream.
package flatten

import (
	"fmt"

	"scarlet/internal/debuginfo"
	"scarlet/internal/diag"
	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/sig"
	"scarlet/internal/source"
	"scarlet/internal/value"
)

// Options selects optional flattener behavior.
type Options struct {
	// FuncName labels the body in debug info.
	FuncName string
	// DebugInfo enables collection of name-to-location records.
	DebugInfo bool
	// MaxDiagnostics caps the bag; zero means a reasonable default.
	MaxDiagnostics int
}

// Result is the output of one flatten invocation.
type Result struct {
	Instrs []lir.Instr
	Debug  *debuginfo.Func
}

// Flatten lowers one body. Statement-level failures abort only the
// offending statement; the bag carries everything that went wrong.
func Flatten(table *sig.Table, body *ir.Block, opts Options) (*Result, *diag.Bag) {
	maxDiag := opts.MaxDiagnostics
	if maxDiag == 0 {
		maxDiag = 100
	}
	f := &flattener{
		table:    table,
		opts:     opts,
		bag:      diag.NewBag(maxDiag),
		regNames: make(map[value.RegID]string),
	}
	if opts.DebugInfo {
		f.debug = debuginfo.NewFunc(opts.FuncName)
	}

	f.lowerBlock(body)
	f.resolveLabels()
	f.assignScratchRegs()

	instrs := make([]lir.Instr, 0, len(f.out))
	for i := range f.out {
		if f.out[i].Kind == lowInstr {
			instrs = append(instrs, f.out[i].Instr)
		}
	}
	f.debug.Finish()
	return &Result{Instrs: instrs, Debug: f.debug}, f.bag
}

// lowKind tags entries of the intermediate lowered stream.
type lowKind uint8

const (
	// lowInstr is a real instruction.
	lowInstr lowKind = iota
	// lowLabel is a jump target awaiting an offset.
	lowLabel
	// lowRegAlloc begins the live range of a scratch local.
	lowRegAlloc
	// lowRegFree ends it.
	lowRegFree
)

type lowStmt struct {
	Kind  lowKind
	Instr lir.Instr
	Label string
	Local lir.LocalID
	Cause source.Span
}

type loopCtx struct {
	breakLabel string
}

type localInfo struct {
	ty   value.ScalarType
	span source.Span
}

type flattener struct {
	table *sig.Table
	opts  Options
	bag   *diag.Bag
	debug *debuginfo.Func

	out       []lowStmt
	loopStack []loopCtx
	labelSeq  int
	locals    []localInfo

	// regNames remembers the first spelling each register was referenced
	// by, to warn when one register is used under two names in one body.
	regNames map[value.RegID]string

	// diffMask is the difficulty mask applied to emitted instructions.
	// Zero means the format has no masks.
	diffMask uint8
}

func (f *flattener) gensym(hint string) string {
	f.labelSeq++
	return fmt.Sprintf("@%s_%d", hint, f.labelSeq)
}

func (f *flattener) errorf(code diag.Code, span source.Span, format string, args ...any) {
	f.bag.Add(diag.NewError(code, span, fmt.Sprintf(format, args...)))
}

func (f *flattener) warnf(code diag.Code, span source.Span, format string, args ...any) {
	f.bag.Add(diag.NewWarning(code, span, fmt.Sprintf(format, args...)))
}

func (f *flattener) emitLabel(name string, span source.Span) {
	f.out = append(f.out, lowStmt{Kind: lowLabel, Label: name, Cause: span})
}

func (f *flattener) emitInstr(in lir.Instr) {
	in.DiffMask = f.diffMask
	f.out = append(f.out, lowStmt{Kind: lowInstr, Instr: in})
}

func (f *flattener) allocLocal(ty value.ScalarType, span source.Span) lir.LocalID {
	id := lir.LocalID(len(f.locals))
	f.locals = append(f.locals, localInfo{ty: ty, span: span})
	f.out = append(f.out, lowStmt{Kind: lowRegAlloc, Local: id, Cause: span})
	return id
}

func (f *flattener) freeLocal(id lir.LocalID) {
	f.out = append(f.out, lowStmt{Kind: lowRegFree, Local: id})
}

// noteRegUse tracks register spellings for alias-collision warnings and
// debug info.
func (f *flattener) noteRegUse(e *ir.Expr, reg value.RegID, ty value.ScalarType) {
	var spelling string
	switch e.Kind {
	case ir.ExprNamed:
		spelling = e.Ident
		f.debug.AddVar(e.Ident, reg, ty)
	case ir.ExprReg:
		spelling = fmt.Sprintf("[%d]", reg)
	default:
		return
	}
	if prev, ok := f.regNames[reg]; ok {
		if prev != spelling {
			f.warnf(diag.FlatAliasCollision, e.Span,
				"register %d used as both %s and %s in one body", reg, prev, spelling)
			// Report each extra spelling once.
			f.regNames[reg] = spelling
		}
		return
	}
	f.regNames[reg] = spelling
}

// boundIntrinsic is one intrinsic resolved against the table: the opcode
// it encodes as plus the operand mapping of that opcode's signature.
type boundIntrinsic struct {
	Opcode uint16
	Sig    *sig.Signature
	Bind   *sig.Binding
}

// resolveIntrinsic looks up the opcode bound to an intrinsic, or reports
// the fatal absence of an encoding for this behavior.
func (f *flattener) resolveIntrinsic(in sig.Intrinsic, span source.Span, descr string) (boundIntrinsic, bool) {
	opcode, ok := f.table.OpcodeForIntrinsic(in)
	if !ok {
		f.errorf(diag.FlatIntrinsicNotInTable, span, "%s not supported in this format", descr)
		return boundIntrinsic{}, false
	}
	s, ok := f.table.Resolve(opcode)
	if !ok {
		f.errorf(diag.FlatIntrinsicNotInTable, span, "%s bound to opcode %d with no signature", descr, opcode)
		return boundIntrinsic{}, false
	}
	b, ok := s.Binding()
	if !ok {
		f.errorf(diag.FlatIntrinsicNotInTable, span, "%s has no resolved operand mapping", descr)
		return boundIntrinsic{}, false
	}
	return boundIntrinsic{Opcode: opcode, Sig: s, Bind: b}, true
}

// newIntrinsicArgs returns a fully padded argument list for a binding.
func newIntrinsicArgs(b *sig.Binding) []lir.Arg {
	args := make([]lir.Arg, b.NumArgs)
	for i := range args {
		args[i] = lir.RawArgOf(lir.RawInt(0))
	}
	return args
}
