package debuginfo

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when SideFile format changes.
const sideFileSchemaVersion uint16 = 1

// SideFile is the serialized form written next to a compiled script.
type SideFile struct {
	Schema uint16
	Game   string
	Funcs  []*Func
}

// Write serializes the side file atomically: encode to a temp file in the
// destination directory, then rename over the target.
func Write(path string, game string, funcs []*Func) error {
	for _, f := range funcs {
		f.Finish()
	}
	payload := &SideFile{Schema: sideFileSchemaVersion, Game: game, Funcs: funcs}

	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Read loads a side file, returning false without error when the file does
// not exist or carries a different schema.
func Read(path string) (*SideFile, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		_ = f.Close()
	}()

	var out SideFile
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&out); err != nil {
		return nil, false, err
	}
	if out.Schema != sideFileSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}
