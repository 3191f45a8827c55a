package mapfile

import (
	"testing"

	"scarlet/internal/diag"
	"scarlet/internal/sig"
	"scarlet/internal/value"
)

const baseLayer = `
[meta]
game = "g"
language = "l"

[format]
instr_header_size = 16
has_registers = true
has_diff_mask = true
jump_has_time = true
full_diff_mask = 15

[format.general_use_regs]
int = [100, 101]
float = [102]

[ins.12]
name = "jmp"
sig = "ot"
intrinsic = "jmp"

[ins.50]
name = "shoot"
sig = "SS"
[ins.50.enums]
1 = "Shot"

[enum.Shot]
AIMED = 1
FAN = 2

[alias]
I0 = 10000

[names.sub]
0 = "main"
1 = "boss"
`

func buildOne(t *testing.T, layers ...string) (*sig.Table, *diag.Bag) {
	t.Helper()
	l := NewLoader()
	for i, src := range layers {
		l.AddBytes("layer", []byte(src))
		_ = i
	}
	return l.Build()
}

func TestBuildFromToml(t *testing.T) {
	table, bag := buildOne(t, baseLayer)
	if bag.HasErrors() {
		t.Fatalf("build: %+v", bag.Items())
	}
	f := table.Format()
	if f.Game != "g" || f.InstrHeaderSize != 16 || !f.HasDiffMask {
		t.Errorf("format %+v", f)
	}
	if got := f.GeneralUseRegs[value.Int]; len(got) != 2 || got[0] != 100 {
		t.Errorf("int scratch regs %v", got)
	}
	if op, ok := table.OpcodeForIntrinsic(sig.Jmp()); !ok || op != 12 {
		t.Errorf("jmp bound to %d ok=%v", op, ok)
	}
	s, ok := table.Resolve(50)
	if !ok || len(s.Slots) != 2 || s.Slots[1].Enum != "Shot" {
		t.Errorf("opcode 50: %+v", s)
	}
	if e, ok := table.Enum("Shot"); !ok {
		t.Errorf("enum missing")
	} else if v, _ := e.Value("FAN"); v != 2 {
		t.Errorf("FAN = %d", v)
	}
	if reg, ok := table.RegByAlias("I0"); !ok || reg != 10000 {
		t.Errorf("alias I0 = %d", reg)
	}
	if name, ok := table.Name(sig.NameSub, 1); !ok || name != "boss" {
		t.Errorf("sub 1 = %q", name)
	}
	if op, ok := table.OpcodeByName("shoot"); !ok || op != 50 {
		t.Errorf("shoot = %d", op)
	}
}

func TestLaterLayerOverridesSignature(t *testing.T) {
	override := `
[ins.50]
name = "spray"
sig = "SSS"

[enum.Shot]
SPREAD = 3
`
	table, bag := buildOne(t, baseLayer, override)
	if bag.HasErrors() {
		t.Fatalf("build: %+v", bag.Items())
	}
	s, ok := table.Resolve(50)
	if !ok || len(s.Slots) != 3 {
		t.Errorf("override did not replace the layout: %+v", s)
	}
	if op, ok := table.OpcodeByName("spray"); !ok || op != 50 {
		t.Errorf("spray = %d ok=%v", op, ok)
	}
	// Enums layer additively across files.
	e, _ := table.Enum("Shot")
	if v, ok := e.Value("SPREAD"); !ok || v != 3 {
		t.Errorf("SPREAD = %d ok=%v", v, ok)
	}
	if v, ok := e.Value("AIMED"); !ok || v != 1 {
		t.Errorf("AIMED lost in merge: %d ok=%v", v, ok)
	}
}

func TestEnumConflictAcrossLayers(t *testing.T) {
	conflict := `
[enum.Shot]
AIMED = 9
`
	_, bag := buildOne(t, baseLayer, conflict)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.MapEnumConflict {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an enum conflict, got %+v", bag.Items())
	}
}

func TestMalformedSignatureDiagnosed(t *testing.T) {
	_, bag := buildOne(t, `
[ins.5]
sig = "SxS"
`)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.MapBadSignature {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a signature diagnostic, got %+v", bag.Items())
	}
}

func TestBadTomlDiagnosed(t *testing.T) {
	l := NewLoader()
	l.AddBytes("broken", []byte("[ins\n"))
	_, bag := l.Build()
	if !bag.HasErrors() {
		t.Errorf("expected a parse diagnostic")
	}
}

func TestParseIntrinsicSpecs(t *testing.T) {
	cases := []struct {
		spec string
		want sig.Intrinsic
	}{
		{"jmp", sig.Jmp()},
		{"interrupt", sig.InterruptLabel()},
		{"countjmp", sig.CountJmp()},
		{"assign(=, int)", sig.AssignOp(value.Set, value.Int)},
		{"assign(+=, float)", sig.AssignOp(value.AddAssign, value.Float)},
		{"binop(*, int)", sig.BinOp(value.Mul, value.Int)},
		{"unop(-, float)", sig.UnOp(value.Neg, value.Float)},
		{"condjmp(<=, int)", sig.CondJmp(value.Le, value.Int)},
	}
	for _, c := range cases {
		got, err := ParseIntrinsic(c.spec)
		if err != nil {
			t.Errorf("%s: %v", c.spec, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s parsed to %+v", c.spec, got)
		}
	}

	bad := []string{
		"teleport",
		"jmp(1)",
		"assign(=)",
		"binop(==, int)",
		"condjmp(+, int)",
		"unop(!, int)",
		"assign(=, bool)",
		"binop(+, int",
	}
	for _, spec := range bad {
		if _, err := ParseIntrinsic(spec); err == nil {
			t.Errorf("%s should not parse", spec)
		}
	}
}

func TestBuiltinsLoad(t *testing.T) {
	names := BuiltinNames()
	if len(names) == 0 {
		t.Fatalf("no embedded mapfiles")
	}
	table, bag, err := Load("th17", "ecl", nil, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("builtin has errors: %+v", bag.Items())
	}
	if table.Format().Game != "th17" {
		t.Errorf("game %q", table.Format().Game)
	}
	if _, ok := table.OpcodeForIntrinsic(sig.Jmp()); !ok {
		t.Errorf("builtin table lacks a jump")
	}
	if _, ok := table.OpcodeForIntrinsic(sig.UnOp(value.Neg, value.Int)); !ok {
		t.Errorf("builtin table lacks integer negate")
	}
}

func TestLoadUnknownGame(t *testing.T) {
	_, bag, err := Load("nosuch", "ecl", nil, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bag.HasErrors() {
		t.Errorf("unknown game should be diagnosed")
	}
}
