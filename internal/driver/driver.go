// Package driver wires the signature table, the flattener, the
// structurer and the codec into whole-script operations over the msgpack
// script container.
package driver

import (
	"fmt"

	"scarlet/internal/codec"
	"scarlet/internal/debuginfo"
	"scarlet/internal/diag"
	"scarlet/internal/flatten"
	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/mapfile"
	"scarlet/internal/sig"
	"scarlet/internal/structure"
)

// Options configures one driver instance.
type Options struct {
	Game     string
	Language string

	// Mapfiles lists user mapfile paths, layered over the built-ins in
	// order.
	Mapfiles []string
	// NoBuiltinMapfiles builds the table from user mapfiles alone.
	NoBuiltinMapfiles bool

	// NoStructure leaves decompiled control flow as labels and gotos.
	NoStructure bool
	// NoIntrinsics keeps every decompiled instruction a plain call.
	NoIntrinsics bool
	// Raise tunes symbolic argument lifting on decompile.
	Raise codec.RaiseOptions

	// EmitDebugInfo collects name-to-location records while flattening.
	EmitDebugInfo bool

	// MaxDiagnostics caps every bag the driver creates.
	MaxDiagnostics int
}

// Driver holds a built signature table and the options it was built for.
type Driver struct {
	opts  Options
	table *sig.Table
}

// New loads the signature table for the options' game and language. The
// bag carries mapfile problems; a table with errors is still returned and
// usable minus the failed entries.
func New(opts Options) (*Driver, *diag.Bag, error) {
	table, bag, err := mapfile.Load(opts.Game, opts.Language, opts.Mapfiles, opts.NoBuiltinMapfiles)
	if err != nil {
		return nil, nil, err
	}
	return &Driver{opts: opts, table: table}, bag, nil
}

func (d *Driver) Table() *sig.Table { return d.table }

// CompileBody flattens one statement tree into encoded instruction
// records.
func (d *Driver) CompileBody(name string, body *ir.Block) ([]InstrRecord, *debuginfo.Func, *diag.Bag) {
	res, bag := flatten.Flatten(d.table, body, flatten.Options{
		FuncName:       name,
		DebugInfo:      d.opts.EmitDebugInfo,
		MaxDiagnostics: d.opts.MaxDiagnostics,
	})
	records := make([]InstrRecord, 0, len(res.Instrs))
	for i := range res.Instrs {
		rec, err := encodeRecord(d.table, &res.Instrs[i])
		if err != nil {
			bag.Add(diag.NewError(diag.CodecBlobSizeMismatch, sourcelessSpan(),
				fmt.Sprintf("%s: %v", name, err)))
			continue
		}
		records = append(records, rec)
	}
	return records, res.Debug, bag
}

// DecompileBody decodes instruction records and raises them into a
// statement tree.
func (d *Driver) DecompileBody(name string, records []InstrRecord) (*ir.Block, *diag.Bag) {
	instrs, bag := d.decodeRecords(name, records)
	block, sbag := structure.Structure(d.table, instrs, structure.Options{
		NoIntrinsics:   d.opts.NoIntrinsics,
		NoStructure:    d.opts.NoStructure,
		Raise:          d.opts.Raise,
		MaxDiagnostics: d.opts.MaxDiagnostics,
	})
	bag.Merge(sbag)
	return block, bag
}

func (d *Driver) decodeRecords(name string, records []InstrRecord) ([]lir.Instr, *diag.Bag) {
	maxDiag := d.opts.MaxDiagnostics
	if maxDiag == 0 {
		maxDiag = 100
	}
	bag := diag.NewBag(maxDiag)
	instrs := make([]lir.Instr, 0, len(records))
	for i := range records {
		in, err := decodeRecord(d.table, &records[i])
		if err != nil {
			bag.Add(diag.NewError(diag.CodecBlobSizeMismatch, sourcelessSpan(),
				fmt.Sprintf("%s: instruction %d: %v", name, i, err)))
			continue
		}
		instrs = append(instrs, *in)
	}
	return instrs, bag
}
