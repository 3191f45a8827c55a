// Package mapfile loads signature tables from TOML sources. A table is
// assembled from layered sources: embedded built-ins first, then user
// files in the order given, with later layers overriding signatures and
// contributing to shared open enums.
package mapfile

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"scarlet/internal/diag"
	"scarlet/internal/sig"
	"scarlet/internal/source"
	"scarlet/internal/value"
)

// fileDoc mirrors the on-disk TOML layout of one mapfile.
type fileDoc struct {
	Meta   metaDoc            `toml:"meta"`
	Format *formatDoc         `toml:"format"`
	Ins    map[string]insDoc  `toml:"ins"`
	Enum   map[string]enumDoc `toml:"enum"`
	Alias  map[string]int64   `toml:"alias"`
	Names  map[string]nameDoc `toml:"names"`
}

type metaDoc struct {
	Game     string `toml:"game"`
	Language string `toml:"language"`
}

type formatDoc struct {
	InstrHeaderSize int                `toml:"instr_header_size"`
	HasRegisters    bool               `toml:"has_registers"`
	HasDiffMask     bool               `toml:"has_diff_mask"`
	JumpHasTime     bool               `toml:"jump_has_time"`
	LabelsAsIndex   bool               `toml:"labels_as_index"`
	TimelineArg0    bool               `toml:"timeline_arg0"`
	FullDiffMask    int64              `toml:"full_diff_mask"`
	GeneralUseRegs  map[string][]int64 `toml:"general_use_regs"`
}

type insDoc struct {
	Name      string            `toml:"name"`
	Sig       string            `toml:"sig"`
	Intrinsic string            `toml:"intrinsic"`
	Enums     map[string]string `toml:"enums"`
}

type enumDoc map[string]int64

type nameDoc map[string]string

// Loader accumulates mapfile layers before building a table.
type Loader struct {
	files []loadedFile
	bag   *diag.Bag
	fset  *source.FileSet
}

type loadedFile struct {
	name string
	doc  fileDoc
	span source.Span
}

func NewLoader() *Loader {
	return &Loader{
		bag:  diag.NewBag(100),
		fset: source.NewFileSet(),
	}
}

// AddFile parses one mapfile from disk.
func (l *Loader) AddFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	l.AddBytes(path, data)
	return nil
}

// AddBytes parses one mapfile layer from memory; name is used only in
// diagnostics.
func (l *Loader) AddBytes(name string, data []byte) {
	id := l.fset.Add(name)
	span := source.Span{File: id}
	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		l.bag.Add(diag.NewError(diag.MapBadSource, span,
			fmt.Sprintf("%s: %v", name, err)))
		return
	}
	l.files = append(l.files, loadedFile{name: name, doc: doc, span: span})
}

// Build assembles the table from every loaded layer. Format properties
// merge with later layers winning field groups they define; everything
// else layers additively, with signature redefinitions overriding.
func (l *Loader) Build() (*sig.Table, *diag.Bag) {
	format := sig.Format{}
	for _, f := range l.files {
		if f.doc.Meta.Game != "" {
			format.Game = f.doc.Meta.Game
		}
		if f.doc.Meta.Language != "" {
			format.Language = f.doc.Meta.Language
		}
		if fd := f.doc.Format; fd != nil {
			format.InstrHeaderSize = fd.InstrHeaderSize
			format.HasRegisters = fd.HasRegisters
			format.HasDiffMask = fd.HasDiffMask
			format.JumpHasTime = fd.JumpHasTime
			format.LabelsAsIndex = fd.LabelsAsIndex
			format.TimelineArg0 = fd.TimelineArg0
			format.FullDiffMask = uint8(fd.FullDiffMask)
			if len(fd.GeneralUseRegs) > 0 {
				format.GeneralUseRegs = make(map[value.ScalarType][]value.RegID)
				for tyName, regs := range fd.GeneralUseRegs {
					ty, ok := parseScalarType(tyName)
					if !ok {
						l.bag.Add(diag.NewError(diag.MapBadSource, f.span,
							fmt.Sprintf("%s: unknown register type %q", f.name, tyName)))
						continue
					}
					for _, r := range regs {
						format.GeneralUseRegs[ty] = append(format.GeneralUseRegs[ty], value.RegID(r))
					}
				}
			}
		}
	}

	b := sig.NewBuilder(format)
	for _, f := range l.files {
		l.applyFile(b, &f)
	}
	table, errs := b.Build()
	for _, err := range errs {
		code := diag.MapBadSource
		switch {
		case isEnumConflict(err):
			code = diag.MapEnumConflict
		}
		l.bag.Add(diag.NewError(code, source.Span{}, err.Error()))
	}
	return table, l.bag
}

func (l *Loader) applyFile(b *sig.Builder, f *loadedFile) {
	for opStr, ins := range f.doc.Ins {
		opcode, err := strconv.ParseUint(opStr, 10, 16)
		if err != nil {
			l.bag.Add(diag.NewError(diag.MapBadSource, f.span,
				fmt.Sprintf("%s: bad opcode key %q", f.name, opStr)))
			continue
		}
		op := uint16(opcode)

		slots, ok := sig.ParseSlots(ins.Sig)
		if !ok {
			l.bag.Add(diag.NewError(diag.MapBadSignature, f.span,
				fmt.Sprintf("%s: opcode %d has malformed signature %q", f.name, op, ins.Sig)))
			continue
		}
		b.AddSignature(op, slots)

		if ins.Name != "" {
			b.DefineInsName(ins.Name, op)
		}
		if ins.Intrinsic != "" {
			in, err := ParseIntrinsic(ins.Intrinsic)
			if err != nil {
				l.bag.Add(diag.NewError(diag.MapBadIntrinsic, f.span,
					fmt.Sprintf("%s: opcode %d: %v", f.name, op, err)))
			} else {
				b.BindIntrinsic(op, in)
			}
		}
		for slotStr, enum := range ins.Enums {
			slot, err := strconv.Atoi(slotStr)
			if err != nil || slot < 0 || slot >= len(slots) {
				l.bag.Add(diag.NewError(diag.MapBadSource, f.span,
					fmt.Sprintf("%s: opcode %d: bad enum slot key %q", f.name, op, slotStr)))
				continue
			}
			b.BindSlotEnum(op, slot, enum)
		}
	}

	for enum, members := range f.doc.Enum {
		for member, val := range members {
			b.DefineEnumMember(enum, member, int32(val))
		}
	}
	for alias, reg := range f.doc.Alias {
		b.DefineRegAlias(alias, value.RegID(reg))
	}
	for kindName, entries := range f.doc.Names {
		kind, ok := parseNameKind(kindName)
		if !ok {
			l.bag.Add(diag.NewError(diag.MapBadSource, f.span,
				fmt.Sprintf("%s: unknown name namespace %q", f.name, kindName)))
			continue
		}
		for idStr, name := range entries {
			id, err := strconv.ParseInt(idStr, 10, 32)
			if err != nil {
				l.bag.Add(diag.NewError(diag.MapBadSource, f.span,
					fmt.Sprintf("%s: bad %s id %q", f.name, kindName, idStr)))
				continue
			}
			b.DefineName(kind, int32(id), name)
		}
	}
}

func parseScalarType(s string) (value.ScalarType, bool) {
	switch s {
	case "int":
		return value.Int, true
	case "float":
		return value.Float, true
	}
	return 0, false
}

func parseNameKind(s string) (sig.NameKind, bool) {
	switch s {
	case "sub":
		return sig.NameSub, true
	case "script":
		return sig.NameScript, true
	case "sprite":
		return sig.NameSprite, true
	}
	return 0, false
}
