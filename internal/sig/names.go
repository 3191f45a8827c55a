package sig

import (
	"sort"

	"scarlet/internal/value"
)

// NameKind distinguishes the integer-reference namespaces that decode can
// lift back to symbolic names.
type NameKind uint8

const (
	NameSub NameKind = iota
	NameScript
	NameSprite
)

func (k NameKind) String() string {
	switch k {
	case NameSub:
		return "sub"
	case NameScript:
		return "script"
	case NameSprite:
		return "sprite"
	}
	return "name"
}

// nameTable maps integer ids of one namespace to names. Unresolved ids are
// rendered as raw literals, never an error.
type nameTable struct {
	byID   map[int32]string
	byName map[string]int32
}

func newNameTable() *nameTable {
	return &nameTable{byID: make(map[int32]string), byName: make(map[string]int32)}
}

func (t *nameTable) define(id int32, name string) {
	// Last definition wins within one source; across sources the builder
	// feeds them in layer order, so user sources override built-ins.
	t.byID[id] = name
	t.byName[name] = id
}

// regAliases maps alias names to register ids, remembering every alias per
// register so alias collisions inside one body can be warned about.
type regAliases struct {
	byName map[string]value.RegID
	byReg  map[value.RegID][]string
}

func newRegAliases() *regAliases {
	return &regAliases{
		byName: make(map[string]value.RegID),
		byReg:  make(map[value.RegID][]string),
	}
}

func (r *regAliases) define(name string, reg value.RegID) {
	if old, ok := r.byName[name]; ok && old == reg {
		return
	}
	r.byName[name] = reg
	r.byReg[reg] = append(r.byReg[reg], name)
	sort.Strings(r.byReg[reg])
}
