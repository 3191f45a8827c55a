package driver

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"scarlet/internal/codec"
	"scarlet/internal/lir"
	"scarlet/internal/sig"
	"scarlet/internal/source"
)

const scriptSchemaVersion uint16 = 1

// InstrRecord is the serialized form of one instruction: the fixed header
// fields plus the encoded argument blob and its parameter mask.
type InstrRecord struct {
	Time     int32
	Opcode   uint16
	DiffMask uint8
	Mask     uint16
	Blob     []byte

	// HasArg0/Arg0 carry the header-packed first argument of
	// timeline-style languages.
	HasArg0 bool
	Arg0    int16
}

// ScriptFile is the msgpack script container: one body of instruction
// records per sub.
type ScriptFile struct {
	Schema   uint16
	Game     string
	Language string
	Subs     map[string][]InstrRecord
}

// SubNames returns the container's body names, sorted.
func (s *ScriptFile) SubNames() []string {
	out := make([]string, 0, len(s.Subs))
	for name := range s.Subs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ReadScript loads a script container.
func ReadScript(path string) (*ScriptFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var out ScriptFile
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, err
	}
	if out.Schema != scriptSchemaVersion {
		return nil, errors.New("unsupported script container version")
	}
	return &out, nil
}

// WriteScript stores a script container atomically: a temp file in the
// destination directory, renamed over the target.
func WriteScript(path string, s *ScriptFile) error {
	s.Schema = scriptSchemaVersion

	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func encodeRecord(table *sig.Table, in *lir.Instr) (InstrRecord, error) {
	mask, err := in.ParamMask()
	if err != nil {
		return InstrRecord{}, err
	}
	blob, err := codec.EncodeArgs(table, in)
	if err != nil {
		return InstrRecord{}, err
	}
	rec := InstrRecord{
		Time:     in.Time,
		Opcode:   in.Opcode,
		DiffMask: in.DiffMask,
		Mask:     mask,
		Blob:     blob,
	}
	if in.Pseudo != nil && in.Pseudo.HasArg0 {
		rec.HasArg0 = true
		rec.Arg0 = in.Pseudo.Arg0
	}
	return rec, nil
}

func decodeRecord(table *sig.Table, rec *InstrRecord) (*lir.Instr, error) {
	var in *lir.Instr
	var err error
	if table.Format().TimelineArg0 && rec.HasArg0 {
		in, err = codec.DecodeTimelineArgs(table, rec.Opcode, rec.Arg0, rec.Blob, rec.Mask)
	} else {
		in, err = codec.DecodeArgs(table, rec.Opcode, rec.Blob, rec.Mask)
	}
	if err != nil {
		return nil, err
	}
	in.Time = rec.Time
	in.DiffMask = rec.DiffMask
	return in, nil
}

func sourcelessSpan() source.Span {
	return source.Span{}
}
