// Package debuginfo collects, per compiled function, the mapping from
// source-level names to runtime locations. The records are deliberately
// flat and extensible; full lexical-scope resolution is not modeled.
package debuginfo

import (
	"sort"

	"scarlet/internal/value"
)

// VarLoc maps a variable or alias name to the register holding it.
type VarLoc struct {
	Name string
	Reg  value.RegID
	Type value.ScalarType
}

// ConstVal records a name resolved to a compile-time constant.
type ConstVal struct {
	Name  string
	Value int32
}

// Func is the debug record of one compiled function body.
type Func struct {
	Name   string
	Vars   []VarLoc
	Consts []ConstVal

	vars   map[string]bool
	consts map[string]bool
}

func NewFunc(name string) *Func {
	return &Func{
		Name:   name,
		vars:   make(map[string]bool),
		consts: make(map[string]bool),
	}
}

// AddVar records a name-to-register binding once; repeats are ignored.
func (f *Func) AddVar(name string, reg value.RegID, ty value.ScalarType) {
	if f == nil || f.vars[name] {
		return
	}
	f.vars[name] = true
	f.Vars = append(f.Vars, VarLoc{Name: name, Reg: reg, Type: ty})
}

// AddConst records a name resolved to a constant once; repeats are
// ignored.
func (f *Func) AddConst(name string, val int32) {
	if f == nil || f.consts[name] {
		return
	}
	f.consts[name] = true
	f.Consts = append(f.Consts, ConstVal{Name: name, Value: val})
}

// Finish sorts the records so output does not depend on compile order.
func (f *Func) Finish() {
	if f == nil {
		return
	}
	sort.Slice(f.Vars, func(i, j int) bool { return f.Vars[i].Name < f.Vars[j].Name })
	sort.Slice(f.Consts, func(i, j int) bool { return f.Consts[i].Name < f.Consts[j].Name })
}
