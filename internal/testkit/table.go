// Package testkit provides the shared signature-table fixtures the
// lowering, raising and codec tests build against, so each test file does
// not rebuild the same opcode set by hand.
package testkit

import (
	"scarlet/internal/sig"
	"scarlet/internal/value"
)

// Table builds a small ecl-style table covering the intrinsic surface:
// jumps, conditional jumps over both scalar types, a decrement jump,
// assignments and binary ops, plus a few plain instructions with enums,
// padding and register aliases. Unary ops are deliberately absent so the
// fallback lowerings are exercised.
//
// Opcode 14 permutes its operand order on purpose; binding resolution must
// not assume slot positions.
func Table() *sig.Table {
	b := sig.NewBuilder(sig.Format{
		Game:            "testgame",
		Language:        "ecl",
		InstrHeaderSize: 16,
		HasRegisters:    true,
		HasDiffMask:     true,
		JumpHasTime:     true,
		FullDiffMask:    0x0F,
		GeneralUseRegs: map[value.ScalarType][]value.RegID{
			value.Int:   {100, 101},
			value.Float: {102, 103},
		},
	})

	add := func(op uint16, name, sigstr string) {
		slots, ok := sig.ParseSlots(sigstr)
		if !ok {
			panic("testkit: bad signature " + sigstr)
		}
		b.AddSignature(op, slots)
		if name != "" {
			b.DefineInsName(name, op)
		}
	}
	bind := func(op uint16, name, sigstr string, in sig.Intrinsic) {
		add(op, name, sigstr)
		b.BindIntrinsic(op, in)
	}

	add(10, "ret", "")
	bind(12, "jmp", "ot", sig.Jmp())
	bind(13, "", "otSS", sig.CondJmp(value.Eq, value.Int))
	bind(14, "", "SSot", sig.CondJmp(value.Ne, value.Int))
	bind(15, "", "otSS", sig.CondJmp(value.Lt, value.Int))
	bind(16, "", "otSS", sig.CondJmp(value.Le, value.Int))
	bind(17, "", "otSS", sig.CondJmp(value.Gt, value.Int))
	bind(18, "", "otSS", sig.CondJmp(value.Ge, value.Int))
	bind(19, "", "otff", sig.CondJmp(value.Eq, value.Float))
	bind(20, "", "otff", sig.CondJmp(value.Ne, value.Float))
	bind(21, "", "Sot", sig.CountJmp())
	bind(22, "", "S", sig.InterruptLabel())
	bind(30, "set", "SS", sig.AssignOp(value.Set, value.Int))
	bind(31, "setf", "ff", sig.AssignOp(value.Set, value.Float))
	bind(36, "addi", "SS", sig.AssignOp(value.AddAssign, value.Int))
	bind(32, "", "SSS", sig.BinOp(value.Add, value.Int))
	bind(33, "", "SSS", sig.BinOp(value.Sub, value.Int))
	bind(34, "", "SSS", sig.BinOp(value.Mul, value.Int))
	bind(35, "", "fff", sig.BinOp(value.Mul, value.Float))
	add(50, "shoot", "SS")
	add(51, "wait", "S")
	add(52, "spawn", "S__")

	b.BindSlotEnum(50, 1, "Shot")
	b.DefineEnumMember("Shot", "AIMED", 1)
	b.DefineEnumMember("Shot", "FAN", 2)

	b.DefineRegAlias("I0", 10000)
	b.DefineRegAlias("I1", 10001)
	b.DefineRegAlias("F0", 10004)
	b.DefineRegAlias("RANK", 10002)
	b.DefineRegAlias("DIFF", 10002)

	table, errs := b.Build()
	if len(errs) > 0 {
		panic("testkit: " + errs[0].Error())
	}
	return table
}

// BareTable builds a register-less, timeless format in the style of the
// early stage scripts: labels address instruction indices and jumps carry
// trailing padding instead of a time operand.
func BareTable() *sig.Table {
	b := sig.NewBuilder(sig.Format{
		Game:            "baregame",
		Language:        "std",
		InstrHeaderSize: 8,
		LabelsAsIndex:   true,
	})

	add := func(op uint16, name, sigstr string) {
		slots, ok := sig.ParseSlots(sigstr)
		if !ok {
			panic("testkit: bad signature " + sigstr)
		}
		b.AddSignature(op, slots)
		if name != "" {
			b.DefineInsName(name, op)
		}
	}

	add(12, "", "o_")
	b.BindIntrinsic(12, sig.Jmp())
	add(40, "pos", "ss")
	add(41, "fade", "b___")
	add(42, "wait", "S")

	table, errs := b.Build()
	if len(errs) > 0 {
		panic("testkit: " + errs[0].Error())
	}
	return table
}
