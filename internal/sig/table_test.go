package sig

import (
	"testing"

	"scarlet/internal/value"
)

func slots(t *testing.T, s string) []Slot {
	t.Helper()
	out, ok := ParseSlots(s)
	if !ok {
		t.Fatalf("bad signature %q", s)
	}
	return out
}

func TestResolveBindingCondJmp(t *testing.T) {
	b, err := ResolveBinding(CondJmp(value.Eq, value.Int), slots(t, "otSS"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Offset != 0 || b.Time != 1 {
		t.Errorf("jump operands at %d/%d, want 0/1", b.Offset, b.Time)
	}
	if len(b.In) != 2 || b.In[0] != 2 || b.In[1] != 3 {
		t.Errorf("inputs %v, want [2 3]", b.In)
	}
}

func TestResolveBindingPermutedSlots(t *testing.T) {
	// Jump operands may sit anywhere in the slot list.
	b, err := ResolveBinding(CondJmp(value.Ne, value.Int), slots(t, "SSot"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Offset != 2 || b.Time != 3 {
		t.Errorf("jump operands at %d/%d, want 2/3", b.Offset, b.Time)
	}
	if len(b.In) != 2 || b.In[0] != 0 || b.In[1] != 1 {
		t.Errorf("inputs %v, want [0 1]", b.In)
	}
}

func TestResolveBindingTimelessJump(t *testing.T) {
	b, err := ResolveBinding(Jmp(), slots(t, "o_"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Offset != 0 || b.Time != -1 {
		t.Errorf("offset %d time %d, want 0/-1", b.Offset, b.Time)
	}
	if b.Padding != 1 {
		t.Errorf("padding %d, want 1", b.Padding)
	}
}

func TestResolveBindingFloatOutAsInt(t *testing.T) {
	b, err := ResolveBinding(AssignOp(value.Set, value.Float), slots(t, "Sf"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !b.OutFloatAsInt {
		t.Errorf("expected float destination stored as integer id")
	}
	if b.Out != 0 || len(b.In) != 1 || b.In[0] != 1 {
		t.Errorf("out %d in %v", b.Out, b.In)
	}
}

func TestResolveBindingRejectsExtraSlot(t *testing.T) {
	if _, err := ResolveBinding(Jmp(), slots(t, "otS")); err == nil {
		t.Errorf("jump over an extra dword slot should not resolve")
	}
}

func TestResolveBindingRejectsTypeMismatch(t *testing.T) {
	if _, err := ResolveBinding(BinOp(value.Add, value.Float), slots(t, "SSS")); err == nil {
		t.Errorf("float binop over int slots should not resolve")
	}
}

func TestEnumMergeIsOrderIndependent(t *testing.T) {
	a := NewEnum("Shot")
	if err := a.Define("AIMED", 1); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := a.Define("AIMED", 1); err != nil {
		t.Errorf("re-defining with the same value should be a no-op, got %v", err)
	}
	if err := a.Define("AIMED", 2); err == nil {
		t.Errorf("conflicting value should error")
	} else if _, ok := err.(EnumConflict); !ok {
		t.Errorf("conflict error has type %T", err)
	}
	if v, ok := a.Value("AIMED"); !ok || v != 1 {
		t.Errorf("conflict must not overwrite: got %d ok=%v", v, ok)
	}
}

func TestEnumReverseLookupPrefersSmallestName(t *testing.T) {
	e := NewEnum("Shot")
	for _, name := range []string{"ZULU", "ALPHA", "MIKE"} {
		if err := e.Define(name, 7); err != nil {
			t.Fatalf("define %s: %v", name, err)
		}
	}
	if m, ok := e.Member(7); !ok || m != "ALPHA" {
		t.Errorf("reverse lookup %q, want ALPHA", m)
	}
}

func TestBuilderDropsFailedIntrinsicBinding(t *testing.T) {
	b := NewBuilder(Format{Game: "g", Language: "l"})
	b.AddSignature(5, slots(t, "SS"))
	// An opcode without a jump offset slot cannot realize a jump.
	b.BindIntrinsic(5, Jmp())
	table, errs := b.Build()
	if len(errs) == 0 {
		t.Fatalf("expected a binding error")
	}
	if _, ok := table.OpcodeForIntrinsic(Jmp()); ok {
		t.Errorf("failed binding must not reach the table")
	}
	if _, ok := table.IntrinsicForOpcode(5); ok {
		t.Errorf("failed binding must not reach the reverse map")
	}
	if _, ok := table.Resolve(5); !ok {
		t.Errorf("the signature itself should survive")
	}
}

func TestBuilderRejectsDoubleIntrinsicBinding(t *testing.T) {
	b := NewBuilder(Format{})
	b.AddSignature(1, slots(t, "ot"))
	b.AddSignature(2, slots(t, "ot"))
	b.BindIntrinsic(1, Jmp())
	b.BindIntrinsic(2, Jmp())
	table, errs := b.Build()
	if len(errs) == 0 {
		t.Fatalf("two opcodes for one intrinsic should error")
	}
	if op, ok := table.OpcodeForIntrinsic(Jmp()); !ok || op != 1 {
		t.Errorf("first binding should win, got %d ok=%v", op, ok)
	}
}

func TestRegAliasCanonicalName(t *testing.T) {
	b := NewBuilder(Format{})
	b.DefineRegAlias("RANK", 10002)
	b.DefineRegAlias("DIFF", 10002)
	table, errs := b.Build()
	if len(errs) != 0 {
		t.Fatalf("build: %v", errs)
	}
	if name, ok := table.RegName(10002); !ok || name != "DIFF" {
		t.Errorf("canonical alias %q, want DIFF", name)
	}
	if got := table.AliasesForReg(10002); len(got) != 2 {
		t.Errorf("aliases %v, want both spellings", got)
	}
	if reg, ok := table.RegByAlias("RANK"); !ok || reg != 10002 {
		t.Errorf("RANK resolves to %d", reg)
	}
}

func TestDifficultyMaskRoundTrip(t *testing.T) {
	f := Format{FullDiffMask: 0x0F}
	mask, ok := f.DifficultyMask("ENH")
	if !ok || mask != 0x07 {
		t.Fatalf("mask %#x ok=%v, want 0x07", mask, ok)
	}
	if got := f.DifficultyLetters(mask); got != "ENH" {
		t.Errorf("letters %q, want ENH", got)
	}
	if _, ok := f.DifficultyMask("EX"); ok {
		t.Errorf("X is outside a 4-bit mask and should be rejected")
	}
}

func TestNameTableLayering(t *testing.T) {
	b := NewBuilder(Format{})
	b.DefineName(NameSub, 3, "boss")
	b.DefineName(NameSub, 3, "midboss")
	table, errs := b.Build()
	if len(errs) != 0 {
		t.Fatalf("build: %v", errs)
	}
	if name, ok := table.Name(NameSub, 3); !ok || name != "midboss" {
		t.Errorf("later definition should win, got %q", name)
	}
	if id, ok := table.NameID(NameSub, "midboss"); !ok || id != 3 {
		t.Errorf("reverse lookup %d ok=%v", id, ok)
	}
}

func TestBuildRejectsJumpTimeMismatch(t *testing.T) {
	b := NewBuilder(Format{Game: "g", Language: "l"})
	b.AddSignature(12, slots(t, "ot"))
	b.BindIntrinsic(12, Jmp())
	table, errs := b.Build()
	if len(errs) == 0 {
		t.Fatalf("a timed jump should not bind in a format without jump times")
	}
	if _, ok := table.OpcodeForIntrinsic(Jmp()); ok {
		t.Errorf("failed binding still resolves")
	}
	if s, ok := table.Resolve(12); !ok || s.HasIntrin {
		t.Errorf("failed binding left the signature intrinsic: %+v", s)
	}

	b = NewBuilder(Format{Game: "g", Language: "l", JumpHasTime: true})
	b.AddSignature(12, slots(t, "o_"))
	b.BindIntrinsic(12, Jmp())
	if _, errs := b.Build(); len(errs) == 0 {
		t.Errorf("a timeless jump should not bind when the format requires jump times")
	}
}
