package structure

import (
	"strings"
	"testing"

	"scarlet/internal/codec"
	"scarlet/internal/flatten"
	"scarlet/internal/ir"
	"scarlet/internal/lir"
	"scarlet/internal/testkit"
	"scarlet/internal/value"
)

func wait(n int32) ir.Stmt { return ir.InstrCall("wait", ir.LitInt(n)) }

func block(stmts ...ir.Stmt) *ir.Block { return &ir.Block{Stmts: stmts} }

func iReg() *ir.Expr { return ir.Named("I0", value.Int) }

// roundTrip flattens a body and raises it back, requiring the printed tree
// to come out unchanged.
func roundTrip(t *testing.T, stmts ...ir.Stmt) {
	t.Helper()
	table := testkit.Table()
	src := block(stmts...)
	want := ir.Print(src)

	res, fbag := flatten.Flatten(table, src, flatten.Options{})
	if fbag.HasErrors() {
		t.Fatalf("flatten: %+v", fbag.Items())
	}
	out, sbag := Structure(table, res.Instrs, Options{})
	if sbag.HasErrors() {
		t.Fatalf("structure: %+v", sbag.Items())
	}
	if got := ir.Print(out); got != want {
		t.Errorf("round trip changed the tree\n--- source\n%s--- raised\n%s", want, got)
	}
}

func TestRoundTripAssignments(t *testing.T) {
	roundTrip(t,
		ir.Assign(iReg(), value.Set, ir.LitInt(5)),
		ir.Assign(iReg(), value.Set, ir.Bin(value.Add, iReg(), ir.LitInt(1))),
		ir.Assign(ir.Named("F0", value.Float), value.Set, ir.LitFloat(1.5)))
}

func TestRoundTripIfElse(t *testing.T) {
	roundTrip(t,
		ir.If([]ir.CondBranch{{
			Cond: ir.Bin(value.Eq, iReg(), ir.LitInt(1)),
			Body: block(wait(1)),
		}}, block(wait(2))))
}

func TestRoundTripSimpleIf(t *testing.T) {
	roundTrip(t,
		wait(1),
		ir.If([]ir.CondBranch{{
			Cond: ir.Bin(value.Lt, iReg(), ir.LitInt(10)),
			Body: block(wait(2)),
		}}, nil),
		wait(3))
}

func TestRoundTripElseIfChain(t *testing.T) {
	roundTrip(t,
		ir.If([]ir.CondBranch{
			{Cond: ir.Bin(value.Eq, iReg(), ir.LitInt(1)), Body: block(wait(1))},
			{Cond: ir.Bin(value.Eq, iReg(), ir.LitInt(2)), Body: block(wait(2))},
		}, block(wait(3))))
}

func TestRoundTripElseIfChainWithoutElse(t *testing.T) {
	roundTrip(t,
		ir.If([]ir.CondBranch{
			{Cond: ir.Bin(value.Eq, iReg(), ir.LitInt(1)), Body: block(wait(1))},
			{Cond: ir.Bin(value.Gt, iReg(), ir.LitInt(5)), Body: block(wait(2))},
		}, nil))
}

func TestRoundTripNestedIf(t *testing.T) {
	roundTrip(t,
		ir.If([]ir.CondBranch{{
			Cond: ir.Bin(value.Ge, iReg(), ir.LitInt(1)),
			Body: block(
				wait(1),
				ir.If([]ir.CondBranch{{
					Cond: ir.Bin(value.Le, iReg(), ir.LitInt(9)),
					Body: block(wait(2)),
				}}, nil)),
		}}, nil))
}

func TestRoundTripInfiniteLoop(t *testing.T) {
	roundTrip(t,
		ir.Loop(block(wait(1), wait(2)), nil))
}

func TestRoundTripNestedLoops(t *testing.T) {
	roundTrip(t,
		ir.Loop(block(
			wait(1),
			ir.Loop(block(wait(2)), nil)), nil))
}

func TestRoundTripDoWhile(t *testing.T) {
	roundTrip(t,
		ir.Loop(block(wait(1)), ir.Bin(value.Lt, iReg(), ir.LitInt(10))))
}

func TestRoundTripCountLoop(t *testing.T) {
	roundTrip(t,
		ir.Loop(block(wait(1)), ir.Decrement(iReg())))
}

func TestRoundTripLoopWithBreak(t *testing.T) {
	roundTrip(t,
		ir.Loop(block(
			wait(1),
			ir.If([]ir.CondBranch{{
				Cond: ir.Bin(value.Eq, iReg(), ir.LitInt(0)),
				Body: block(ir.Break()),
			}}, nil)), nil))
}

func TestRoundTripBreaksBindInnermost(t *testing.T) {
	roundTrip(t,
		ir.Loop(block(
			wait(1),
			ir.Loop(block(
				wait(2),
				ir.If([]ir.CondBranch{{
					Cond: ir.Bin(value.Ne, iReg(), ir.LitInt(0)),
					Body: block(ir.Break()),
				}}, nil)), nil),
			ir.Break()), nil))
}

func TestRoundTripDifficultyLetters(t *testing.T) {
	w := wait(1)
	w.Diff = "EN"
	roundTrip(t, w, wait(2))
}

func TestRoundTripTimeLabels(t *testing.T) {
	w1 := wait(1)
	w2 := wait(2)
	w2.Time = 60
	roundTrip(t, w1, ir.TimeLabel(60), w2)
}

func TestRoundTripInterrupt(t *testing.T) {
	roundTrip(t, ir.Interrupt(3), wait(1))
}

func TestExplicitJumpTimeSurvives(t *testing.T) {
	table := testkit.Table()
	g := ir.Goto("l")
	g.HasTime = true
	g.GotoTime = 30
	w := wait(1)
	w.Time = 60
	res, fbag := flatten.Flatten(table, block(g, ir.Label("l"), ir.TimeLabel(60), w), flatten.Options{})
	if fbag.HasErrors() {
		t.Fatalf("flatten: %+v", fbag.Items())
	}
	out, _ := Structure(table, res.Instrs, Options{})
	found := false
	for _, s := range out.Stmts {
		if s.Kind == ir.StmtGoto && s.HasTime && s.GotoTime == 30 {
			found = true
		}
	}
	if !found {
		t.Errorf("explicit jump time dropped:\n%s", ir.Print(out))
	}
}

func TestImplicitJumpTimeDropsExplicitForm(t *testing.T) {
	table := testkit.Table()
	w := wait(1)
	w.Time = 60
	res, fbag := flatten.Flatten(table, block(ir.Goto("l"), ir.Label("l"), ir.TimeLabel(60), w), flatten.Options{})
	if fbag.HasErrors() {
		t.Fatalf("flatten: %+v", fbag.Items())
	}
	out, _ := Structure(table, res.Instrs, Options{})
	for _, s := range out.Stmts {
		if s.Kind == ir.StmtGoto && s.HasTime {
			t.Errorf("a jump at the target's own time should not print @:\n%s", ir.Print(out))
		}
	}
}

func TestNoStructureKeepsGotos(t *testing.T) {
	table := testkit.Table()
	src := block(ir.If([]ir.CondBranch{{
		Cond: ir.Bin(value.Eq, iReg(), ir.LitInt(1)),
		Body: block(wait(1)),
	}}, nil))
	res, _ := flatten.Flatten(table, src, flatten.Options{})
	out, _ := Structure(table, res.Instrs, Options{NoStructure: true})
	text := ir.Print(out)
	if !strings.Contains(text, "goto ") {
		t.Errorf("expected raw gotos:\n%s", text)
	}
	for _, s := range out.Stmts {
		if s.Kind == ir.StmtCond || s.Kind == ir.StmtLoop {
			t.Errorf("structure recovered despite NoStructure:\n%s", text)
		}
	}
}

func TestNoIntrinsicsKeepsPlainCalls(t *testing.T) {
	table := testkit.Table()
	src := block(ir.Assign(iReg(), value.Set, ir.LitInt(5)))
	res, _ := flatten.Flatten(table, src, flatten.Options{})
	out, _ := Structure(table, res.Instrs, Options{NoIntrinsics: true})
	if len(out.Stmts) != 1 || out.Stmts[0].Kind != ir.StmtInstrCall {
		t.Fatalf("expected a plain call:\n%s", ir.Print(out))
	}
	if out.Stmts[0].Name != "set" {
		t.Errorf("call name %q, want set", out.Stmts[0].Name)
	}
}

func TestRawArgsOptionDisablesLifting(t *testing.T) {
	table := testkit.Table()
	src := block(ir.Assign(iReg(), value.Set, ir.LitInt(5)))
	res, _ := flatten.Flatten(table, src, flatten.Options{})

	out, _ := Structure(table, res.Instrs, Options{})
	if got := ir.Print(out); !strings.Contains(got, "I0 = 5;") {
		t.Errorf("alias lifting expected by default:\n%s", got)
	}

	out, _ = Structure(table, res.Instrs, Options{
		Raise: codec.RaiseOptions{NoRegAliases: true},
	})
	if got := ir.Print(out); !strings.Contains(got, "[10000] = 5;") {
		t.Errorf("raw register form expected with NoRegAliases:\n%s", got)
	}
}

func TestPseudoInstructionStaysRawCall(t *testing.T) {
	table := testkit.Table()
	instrs := []lir.Instr{{
		Opcode: 999,
		Pseudo: &lir.PseudoArgs{
			Mask: 0b10,
			Blob: []byte{7, 0, 0, 0, 16, 39, 0, 0},
		},
	}}
	out, _ := Structure(table, instrs, Options{})
	if len(out.Stmts) != 1 {
		t.Fatalf("%d statements", len(out.Stmts))
	}
	s := out.Stmts[0]
	if s.Kind != ir.StmtInstrCall || !s.HasOpcode || s.Opcode != 999 {
		t.Fatalf("got %s", ir.Print(out))
	}
	if len(s.Args) != 2 || s.Args[0].Int != 7 || s.Args[1].Kind != ir.ExprReg {
		t.Errorf("pseudo args: %s", ir.Print(out))
	}
}

func TestJumpBetweenInstructionsWarns(t *testing.T) {
	table := testkit.Table()
	// A hand-built jump into the middle of an instruction.
	instrs := []lir.Instr{
		{Opcode: 12, Args: []lir.Arg{
			lir.RawArgOf(lir.RawInt(13)),
			lir.RawArgOf(lir.RawInt(0)),
		}},
		{Opcode: 51, Args: []lir.Arg{lir.RawArgOf(lir.RawInt(1))}},
	}
	out, bag := Structure(table, instrs, Options{})
	if !bag.HasWarnings() {
		t.Errorf("expected a bad-jump warning")
	}
	if out.Stmts[0].Kind != ir.StmtInstrCall {
		t.Errorf("unliftable jump should stay a call:\n%s", ir.Print(out))
	}
}

func TestNeverActiveMaskRoundTrips(t *testing.T) {
	table := testkit.Table()
	instrs := []lir.Instr{{Opcode: 51, DiffMask: 0x00, Args: []lir.Arg{lir.RawArgOf(lir.RawInt(1))}}}
	out, sbag := Structure(table, instrs, Options{})
	if sbag.HasErrors() {
		t.Fatalf("structure: %+v", sbag.Items())
	}
	if got := ir.Print(out); !strings.Contains(got, "{0x00} ") {
		t.Fatalf("empty mask lost its spelling:\n%s", got)
	}
	res, fbag := flatten.Flatten(table, out, flatten.Options{})
	if fbag.HasErrors() {
		t.Fatalf("flatten: %+v", fbag.Items())
	}
	if len(res.Instrs) != 1 || res.Instrs[0].DiffMask != 0x00 {
		t.Errorf("mask 0x00 re-encoded as %#x", res.Instrs[0].DiffMask)
	}
}

func TestMaskBitsPastFullSetRoundTrip(t *testing.T) {
	table := testkit.Table()
	instrs := []lir.Instr{{Opcode: 51, DiffMask: 0xF3, Args: []lir.Arg{lir.RawArgOf(lir.RawInt(1))}}}
	out, _ := Structure(table, instrs, Options{})
	if got := ir.Print(out); !strings.Contains(got, "{0xf3} ") {
		t.Fatalf("extra mask bits lost their spelling:\n%s", got)
	}
	res, fbag := flatten.Flatten(table, out, flatten.Options{})
	if fbag.HasErrors() {
		t.Fatalf("flatten: %+v", fbag.Items())
	}
	if len(res.Instrs) != 1 || res.Instrs[0].DiffMask != 0xF3 {
		t.Errorf("mask 0xf3 re-encoded as %#x", res.Instrs[0].DiffMask)
	}
}
