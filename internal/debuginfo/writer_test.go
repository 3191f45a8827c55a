package debuginfo

import (
	"path/filepath"
	"testing"

	"scarlet/internal/value"
)

func TestAddDedupAndFinish(t *testing.T) {
	fn := NewFunc("main")
	fn.AddVar("I1", 10001, value.Int)
	fn.AddVar("I0", 10000, value.Int)
	fn.AddVar("I0", 99, value.Float)
	fn.AddConst("FAN", 2)
	fn.AddConst("AIMED", 1)
	fn.AddConst("FAN", 7)
	fn.Finish()

	if len(fn.Vars) != 2 || fn.Vars[0].Name != "I0" || fn.Vars[0].Reg != 10000 {
		t.Errorf("vars %+v", fn.Vars)
	}
	if len(fn.Consts) != 2 || fn.Consts[0].Name != "AIMED" || fn.Consts[1].Value != 2 {
		t.Errorf("consts %+v", fn.Consts)
	}
}

func TestNilFuncIsInert(t *testing.T) {
	var fn *Func
	fn.AddVar("I0", 10000, value.Int)
	fn.AddConst("FAN", 2)
	fn.Finish()
}

func TestWriteReadRoundTrip(t *testing.T) {
	fn := NewFunc("main")
	fn.AddVar("I0", 10000, value.Int)
	fn.AddVar("F0", 10004, value.Float)
	fn.AddConst("FAN", 2)

	path := filepath.Join(t.TempDir(), "stage1.dbg")
	if err := Write(path, "th17", []*Func{fn}); err != nil {
		t.Fatalf("write: %v", err)
	}
	side, ok, err := Read(path)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if side.Game != "th17" || len(side.Funcs) != 1 {
		t.Fatalf("side file %+v", side)
	}
	got := side.Funcs[0]
	if got.Name != "main" {
		t.Errorf("func name %q", got.Name)
	}
	// Write finishes records, so the loaded slices come back sorted.
	if len(got.Vars) != 2 || got.Vars[0].Name != "F0" || got.Vars[1].Reg != 10000 {
		t.Errorf("vars %+v", got.Vars)
	}
	if len(got.Consts) != 1 || got.Consts[0].Value != 2 {
		t.Errorf("consts %+v", got.Consts)
	}
}

func TestReadMissingFile(t *testing.T) {
	side, ok, err := Read(filepath.Join(t.TempDir(), "absent.dbg"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if ok || side != nil {
		t.Errorf("missing file reported as present")
	}
}
