package sig

import (
	"fmt"

	"scarlet/internal/value"
)

// Table is the resolved opcode/intrinsic/enum registry for one
// game+format. Build it once, then share it read-only between any number of
// concurrent codec, flatten and structure calls.
type Table struct {
	format     Format
	sigs       map[uint16]*Signature
	intrinsics map[Intrinsic]uint16
	opIntrin   map[uint16]Intrinsic
	enums      map[string]*Enum
	aliases    *regAliases
	names      map[NameKind]*nameTable
	insNames   map[string]uint16
	insByOp    map[uint16]string
}

func (t *Table) Format() *Format {
	return &t.format
}

// Resolve returns the signature for an opcode, or false for an unknown
// opcode (which the codec handles via pseudo-arguments).
func (t *Table) Resolve(opcode uint16) (*Signature, bool) {
	s, ok := t.sigs[opcode]
	return s, ok
}

// OpcodeForIntrinsic finds the opcode realizing a logical operation.
// Absence means the behavior has no encoding in this format.
func (t *Table) OpcodeForIntrinsic(in Intrinsic) (uint16, bool) {
	op, ok := t.intrinsics[in]
	return op, ok
}

// IntrinsicForOpcode is the reverse mapping, used when lifting raw
// instructions during decompilation.
func (t *Table) IntrinsicForOpcode(opcode uint16) (Intrinsic, bool) {
	in, ok := t.opIntrin[opcode]
	return in, ok
}

func (t *Table) Enum(name string) (*Enum, bool) {
	e, ok := t.enums[name]
	return e, ok
}

// RegByAlias resolves an alias to a register id.
func (t *Table) RegByAlias(name string) (value.RegID, bool) {
	r, ok := t.aliases.byName[name]
	return r, ok
}

// AliasesForReg lists every alias of a register, sorted. More than one
// entry means uses under different names should warn.
func (t *Table) AliasesForReg(reg value.RegID) []string {
	return t.aliases.byReg[reg]
}

// RegName picks the canonical display alias for a register during
// decompilation, or false when the register has no alias.
func (t *Table) RegName(reg value.RegID) (string, bool) {
	names := t.aliases.byReg[reg]
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Name lifts an integer reference in one namespace to its symbolic name.
func (t *Table) Name(kind NameKind, id int32) (string, bool) {
	nt, ok := t.names[kind]
	if !ok {
		return "", false
	}
	n, ok := nt.byID[id]
	return n, ok
}

// NameID resolves a symbolic name back to its integer id.
func (t *Table) NameID(kind NameKind, name string) (int32, bool) {
	nt, ok := t.names[kind]
	if !ok {
		return 0, false
	}
	id, ok := nt.byName[name]
	return id, ok
}

// OpcodeByName resolves an instruction-name alias from the mapfiles.
func (t *Table) OpcodeByName(name string) (uint16, bool) {
	op, ok := t.insNames[name]
	return op, ok
}

// InsName returns the mapfile name of an opcode for decompiled output, or
// false when only the raw `ins_N` form is available.
func (t *Table) InsName(opcode uint16) (string, bool) {
	n, ok := t.insByOp[opcode]
	return n, ok
}

// Builder accumulates signature-source contributions in any order and
// resolves them into an immutable Table.
type Builder struct {
	format     Format
	sigs       map[uint16]*Signature
	intrinsics map[Intrinsic]uint16
	enums      map[string]*Enum
	aliases    *regAliases
	names      map[NameKind]*nameTable
	insNames   map[string]uint16
	insByOp    map[uint16]string
	errs       []error
}

func NewBuilder(format Format) *Builder {
	if format.FullDiffMask == 0 {
		format.FullDiffMask = 0x0F
	}
	return &Builder{
		format:     format,
		sigs:       make(map[uint16]*Signature),
		intrinsics: make(map[Intrinsic]uint16),
		enums:      make(map[string]*Enum),
		aliases:    newRegAliases(),
		names:      make(map[NameKind]*nameTable),
		insNames:   make(map[string]uint16),
		insByOp:    make(map[uint16]string),
	}
}

// DefineInsName registers an instruction-name alias for an opcode. Later
// layers override earlier ones in both directions.
func (b *Builder) DefineInsName(name string, opcode uint16) {
	b.insNames[name] = opcode
	b.insByOp[opcode] = name
}

// AddSignature registers the slot layout of an opcode. A later source
// redefining an opcode replaces the layout; that is how user mapfiles
// override built-ins.
func (b *Builder) AddSignature(opcode uint16, slots []Slot) {
	b.sigs[opcode] = &Signature{Opcode: opcode, Slots: slots}
}

// BindIntrinsic declares that an opcode realizes a logical operation. The
// operand-role mapping is resolved against the opcode's slots at Build
// time.
func (b *Builder) BindIntrinsic(opcode uint16, in Intrinsic) {
	if old, ok := b.intrinsics[in]; ok && old != opcode {
		b.errs = append(b.errs, fmt.Errorf("intrinsic %s bound to both opcode %d and %d", in, old, opcode))
		return
	}
	b.intrinsics[in] = opcode
}

// DefineEnumMember contributes one member to an open enum, creating the
// enum on first use. Conflicting values are collected, not overwritten.
func (b *Builder) DefineEnumMember(enum, member string, val int32) {
	e, ok := b.enums[enum]
	if !ok {
		e = NewEnum(enum)
		b.enums[enum] = e
	}
	if err := e.Define(member, val); err != nil {
		b.errs = append(b.errs, err)
	}
}

// BindSlotEnum attaches an enum to one slot of an already-added signature.
func (b *Builder) BindSlotEnum(opcode uint16, slot int, enum string) {
	s, ok := b.sigs[opcode]
	if !ok || slot < 0 || slot >= len(s.Slots) {
		b.errs = append(b.errs, fmt.Errorf("opcode %d: no slot %d to bind enum %s", opcode, slot, enum))
		return
	}
	s.Slots[slot].Enum = enum
}

func (b *Builder) DefineRegAlias(name string, reg value.RegID) {
	b.aliases.define(name, reg)
}

func (b *Builder) DefineName(kind NameKind, id int32, name string) {
	nt, ok := b.names[kind]
	if !ok {
		nt = newNameTable()
		b.names[kind] = nt
	}
	nt.define(id, name)
}

// Build resolves intrinsic bindings and freezes the table. The returned
// error list carries every merge conflict and incompatible binding; a
// non-empty list still yields a usable Table minus the failed entries.
func (b *Builder) Build() (*Table, []error) {
	errs := append([]error(nil), b.errs...)
	opIntrin := make(map[uint16]Intrinsic, len(b.intrinsics))

	for in, opcode := range b.intrinsics {
		s, ok := b.sigs[opcode]
		if !ok {
			errs = append(errs, fmt.Errorf("intrinsic %s bound to opcode %d which has no signature", in, opcode))
			continue
		}
		binding, err := ResolveBinding(in, s.Slots)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch in.Kind {
		case KindJmp, KindCondJmp, KindCountJmp:
			if (binding.Time >= 0) != b.format.JumpHasTime {
				errs = append(errs, fmt.Errorf("intrinsic %s on opcode %d: time operand disagrees with the format's jump_has_time", in, opcode))
				continue
			}
		}
		s.HasIntrin = true
		s.Intrin = in
		s.binding = binding
		opIntrin[opcode] = in
	}

	// Intrinsics whose binding failed stay out of both directions.
	intrinsics := make(map[Intrinsic]uint16, len(opIntrin))
	for op, in := range opIntrin {
		intrinsics[in] = op
	}

	return &Table{
		format:     b.format,
		sigs:       b.sigs,
		intrinsics: intrinsics,
		opIntrin:   opIntrin,
		enums:      b.enums,
		aliases:    b.aliases,
		names:      b.names,
		insNames:   b.insNames,
		insByOp:    b.insByOp,
	}, errs
}
