package ir

import (
	"scarlet/internal/source"
	"scarlet/internal/value"
)

// StmtKind enumerates statement variants.
type StmtKind uint8

const (
	// StmtInstrCall is a direct instruction call: a name or raw opcode
	// plus argument expressions.
	StmtInstrCall StmtKind = iota
	// StmtAssign is `a = expr;` or `a op= expr;`, realized through the
	// assign/binop intrinsics of the target format.
	StmtAssign
	// StmtCond is an if/elseif/.../else chain.
	StmtCond
	// StmtLoop is a loop with an optional back-edge condition. A nil
	// condition loops forever.
	StmtLoop
	// StmtBreak jumps past the end of the nearest enclosing loop.
	StmtBreak
	// StmtLabel is a named jump target.
	StmtLabel
	// StmtTimeLabel changes the current time; statements that follow
	// inherit it.
	StmtTimeLabel
	// StmtGoto is a raw jump, optionally conditional and optionally
	// carrying an explicit `@ time`.
	StmtGoto
	// StmtInterrupt is `interrupt[n]:`.
	StmtInterrupt
)

// CondBranch is one arm of a conditional chain.
type CondBranch struct {
	Cond *Expr
	Body *Block
}

// Stmt is a tagged-variant statement node. Every statement carries the
// time it executes at; statements sharing a time are concurrent for
// encoding purposes.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Time int32

	// Diff restricts the statement to a set of difficulty letters ("ENH").
	// Empty means unrestricted.
	Diff string

	// HasRawMask carries a decoded difficulty mask the letter syntax
	// cannot spell: an empty mask, or bits past the format's full mask.
	// RawMask encodes verbatim, so such instructions recompile losslessly.
	HasRawMask bool
	RawMask    uint8

	// StmtInstrCall. Name resolves through the signature table's aliases;
	// HasOpcode with Opcode bypasses name resolution for `ins_123` style
	// calls.
	Name      string
	HasOpcode bool
	Opcode    uint16
	Args      []*Expr

	// StmtAssign.
	Dest     *Expr // ExprReg or ExprNamed
	AssignOp value.AssignOp
	Value    *Expr

	// StmtCond.
	Branches []CondBranch
	Else     *Block

	// StmtLoop.
	Body *Block
	Cond *Expr // back-edge condition; nil loops forever

	// StmtLabel, StmtGoto.
	Label string

	// StmtGoto.
	GotoCond *Expr  // nil for unconditional
	HasTime  bool   // explicit `@ time`
	GotoTime int32

	// StmtInterrupt.
	Interrupt int32
}

// Block is a statement sequence.
type Block struct {
	Stmts []Stmt
}

// InstrCall builds a named instruction-call statement.
func InstrCall(name string, args ...*Expr) Stmt {
	return Stmt{Kind: StmtInstrCall, Name: name, Args: args}
}

// RawCall builds an instruction call addressed by opcode.
func RawCall(opcode uint16, args ...*Expr) Stmt {
	return Stmt{Kind: StmtInstrCall, HasOpcode: true, Opcode: opcode, Args: args}
}

func Assign(dest *Expr, op value.AssignOp, val *Expr) Stmt {
	return Stmt{Kind: StmtAssign, Dest: dest, AssignOp: op, Value: val}
}

func Label(name string) Stmt {
	return Stmt{Kind: StmtLabel, Label: name}
}

func TimeLabel(time int32) Stmt {
	return Stmt{Kind: StmtTimeLabel, Time: time}
}

func Goto(label string) Stmt {
	return Stmt{Kind: StmtGoto, Label: label}
}

func CondGoto(cond *Expr, label string) Stmt {
	return Stmt{Kind: StmtGoto, GotoCond: cond, Label: label}
}

func Break() Stmt {
	return Stmt{Kind: StmtBreak}
}

func Loop(body *Block, cond *Expr) Stmt {
	return Stmt{Kind: StmtLoop, Body: body, Cond: cond}
}

func If(branches []CondBranch, els *Block) Stmt {
	return Stmt{Kind: StmtCond, Branches: branches, Else: els}
}

func Interrupt(n int32) Stmt {
	return Stmt{Kind: StmtInterrupt, Interrupt: n}
}
