package codec

import (
	"bytes"
	"errors"
	"testing"

	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/sig"
	"scarlet/internal/testkit"
	"scarlet/internal/value"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	table := testkit.Table()
	in := &lir.Instr{
		Opcode: 32, // SSS
		Args: []lir.Arg{
			lir.RawArgOf(lir.RawReg(10000, value.Int)),
			lir.RawArgOf(lir.RawInt(-7)),
			lir.RawArgOf(lir.RawReg(100, value.Int)),
		},
	}
	mask, err := in.ParamMask()
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	if mask != 0b101 {
		t.Fatalf("mask %#b, want 0b101", mask)
	}
	blob, err := EncodeArgs(table, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(blob) != 12 {
		t.Fatalf("blob is %d bytes, want 12", len(blob))
	}
	back, err := DecodeArgs(table, 32, blob, mask)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in.Args {
		if back.Args[i].Raw != in.Args[i].Raw {
			t.Errorf("arg %d: %+v, want %+v", i, back.Args[i].Raw, in.Args[i].Raw)
		}
	}
}

func TestDecodeSignExtendsSubDwordSlots(t *testing.T) {
	table := testkit.BareTable()
	in := &lir.Instr{
		Opcode: 40, // ss
		Args: []lir.Arg{
			lir.RawArgOf(lir.RawInt(-5)),
			lir.RawArgOf(lir.RawInt(300)),
		},
	}
	blob, err := EncodeArgs(table, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(blob) != 4 {
		t.Fatalf("blob is %d bytes, want 4", len(blob))
	}
	back, err := DecodeArgs(table, 40, blob, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := int32(back.Args[0].Raw.Bits); got != -5 {
		t.Errorf("word arg decoded to %d, want -5", got)
	}
	if got := int32(back.Args[1].Raw.Bits); got != 300 {
		t.Errorf("word arg decoded to %d, want 300", got)
	}
}

func TestEncodeRejectsOutOfRangeWord(t *testing.T) {
	table := testkit.BareTable()
	in := &lir.Instr{
		Opcode: 40,
		Args: []lir.Arg{
			lir.RawArgOf(lir.RawInt(70000)),
			lir.RawArgOf(lir.RawInt(0)),
		},
	}
	if _, err := EncodeArgs(table, in); err == nil {
		t.Errorf("70000 does not fit a word slot")
	}
}

func TestEncodeRejectsRegisterInRegisterlessFormat(t *testing.T) {
	table := testkit.BareTable()
	in := &lir.Instr{
		Opcode: 42,
		Args:   []lir.Arg{lir.RawArgOf(lir.RawReg(3, value.Int))},
	}
	if _, err := EncodeArgs(table, in); !errors.Is(err, ErrRegisterNotAllowed) {
		t.Errorf("got %v, want ErrRegisterNotAllowed", err)
	}
}

func TestEncodeRejectsNonzeroPadding(t *testing.T) {
	table := testkit.Table()
	in := &lir.Instr{
		Opcode: 52, // S__
		Args: []lir.Arg{
			lir.RawArgOf(lir.RawInt(1)),
			lir.RawArgOf(lir.RawInt(9)),
			lir.RawArgOf(lir.RawInt(0)),
		},
	}
	if _, err := EncodeArgs(table, in); err == nil {
		t.Errorf("nonzero padding must not encode")
	}
}

func TestUnknownOpcodeRoundTripsAsPseudo(t *testing.T) {
	table := testkit.Table()
	blob := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	in, err := DecodeArgs(table, 999, blob, 0b10)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.Pseudo == nil {
		t.Fatalf("unknown opcode should decode to the pseudo form")
	}
	if in.Pseudo.Mask != 0b10 {
		t.Errorf("pseudo mask %#b", in.Pseudo.Mask)
	}
	back, err := EncodeArgs(table, in)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(back, blob) {
		t.Errorf("pseudo blob changed: %v -> %v", blob, back)
	}
}

func TestDecodeTimelineArgsKeepsArg0(t *testing.T) {
	table := testkit.Table()
	in, err := DecodeTimelineArgs(table, 999, 17, nil, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.Pseudo == nil || !in.Pseudo.HasArg0 || in.Pseudo.Arg0 != 17 {
		t.Errorf("arg0 not preserved: %+v", in.Pseudo)
	}
}

func TestDecodeRejectsBlobSizeMismatch(t *testing.T) {
	table := testkit.Table()
	if _, err := DecodeArgs(table, 51, []byte{0, 0}, 0); !errors.Is(err, ErrArgCount) {
		t.Errorf("got %v, want ErrArgCount", err)
	}
}

func TestInstrSizeCountsHeader(t *testing.T) {
	table := testkit.Table()
	in := &lir.Instr{Opcode: 32}
	if got := InstrSize(table, in); got != 16+12 {
		t.Errorf("size %d, want 28", got)
	}
}

func TestLowerScalarArg(t *testing.T) {
	table := testkit.Table()
	intSlot := sig.Slot{Kind: sig.ArgDword}
	floatSlot := sig.Slot{Kind: sig.ArgFloat}

	raw, err := LowerScalarArg(table, intSlot, ir.LitInt(42))
	if err != nil || raw.Bits != 42 || raw.IsReg {
		t.Errorf("int literal: %+v err=%v", raw, err)
	}

	// An int literal in a float slot converts at compile time.
	raw, err = LowerScalarArg(table, floatSlot, ir.LitInt(2))
	if err != nil || raw != lir.RawFloat(2) {
		t.Errorf("int literal in float slot: %+v err=%v", raw, err)
	}

	if _, err := LowerScalarArg(table, intSlot, ir.LitFloat(1.5)); err == nil {
		t.Errorf("float literal must not encode into an int slot")
	}

	raw, err = LowerScalarArg(table, intSlot, ir.EnumMember("Shot", "FAN"))
	if err != nil || int32(raw.Bits) != 2 {
		t.Errorf("enum member: %+v err=%v", raw, err)
	}
	if _, err := LowerScalarArg(table, intSlot, ir.EnumMember("Shot", "NONE")); err == nil {
		t.Errorf("unknown enum member must fail")
	}

	raw, err = LowerScalarArg(table, intSlot, ir.Named("I1", value.Int))
	if err != nil || !raw.IsReg || int32(raw.Bits) != 10001 {
		t.Errorf("alias: %+v err=%v", raw, err)
	}

	raw, err = LowerScalarArg(table, floatSlot, ir.Named("F0", value.Float))
	if err != nil || raw != lir.RawReg(10004, value.Float) {
		t.Errorf("float alias: %+v err=%v", raw, err)
	}

	raw, err = LowerScalarArg(table, intSlot, ir.Cast(value.Int, ir.Reg(10004, value.Float)))
	if err != nil || !raw.IsReg || int32(raw.Bits) != 10004 {
		t.Errorf("cast reads the register under the slot's encoding: %+v err=%v", raw, err)
	}

	if _, err := LowerScalarArg(table, intSlot, ir.Bin(value.Add, ir.LitInt(1), ir.LitInt(2))); !errors.Is(err, ErrComplexArg) {
		t.Errorf("got %v, want ErrComplexArg", err)
	}
}

func TestRaiseArgSymbolicLifting(t *testing.T) {
	table := testkit.Table()
	enumSlot := sig.Slot{Kind: sig.ArgDword, Enum: "Shot"}

	e := RaiseArg(table, enumSlot, lir.RawInt(2), RaiseOptions{})
	if e.Kind != ir.ExprEnum || e.Member != "FAN" {
		t.Errorf("enum lift: %s", ir.ExprString(e))
	}
	e = RaiseArg(table, enumSlot, lir.RawInt(2), RaiseOptions{NoEnums: true})
	if e.Kind != ir.ExprLitInt || e.Int != 2 {
		t.Errorf("NoEnums lift: %s", ir.ExprString(e))
	}
	e = RaiseArg(table, enumSlot, lir.RawInt(99), RaiseOptions{})
	if e.Kind != ir.ExprLitInt || e.Int != 99 {
		t.Errorf("unmapped value falls back to a literal: %s", ir.ExprString(e))
	}

	e = RaiseArg(table, sig.Slot{Kind: sig.ArgDword}, lir.RawReg(10001, value.Int), RaiseOptions{})
	if e.Kind != ir.ExprNamed || e.Ident != "I1" {
		t.Errorf("register alias lift: %s", ir.ExprString(e))
	}
	e = RaiseArg(table, sig.Slot{Kind: sig.ArgDword}, lir.RawReg(10001, value.Int), RaiseOptions{NoRegAliases: true})
	if e.Kind != ir.ExprReg || e.Reg != 10001 {
		t.Errorf("raw register lift: %s", ir.ExprString(e))
	}

	e = RaiseArg(table, sig.Slot{Kind: sig.ArgFloat}, lir.RawReg(10004, value.Float), RaiseOptions{NoRegAliases: true})
	if e.Kind != ir.ExprReg || e.Reg != 10004 || e.RegType != value.Float {
		t.Errorf("float register lift: %s", ir.ExprString(e))
	}
	// A register-flagged float that is not a whole number cannot be a
	// register id.
	e = RaiseArg(table, sig.Slot{Kind: sig.ArgFloat}, lir.RawArg{Bits: lir.RawFloat(1.5).Bits, IsReg: true}, RaiseOptions{})
	if e.Kind != ir.ExprLitFloat {
		t.Errorf("fractional register id should stay a literal: %s", ir.ExprString(e))
	}
}
