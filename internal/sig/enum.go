package sig

import (
	"fmt"
	"sort"
)

// Enum is one open name-to-value table. Definitions from any number of
// sources accumulate into the same Enum; merging is order-independent and
// a name bound to two different values is a conflict, never an overwrite.
type Enum struct {
	Name    string
	byName  map[string]int32
	byValue map[int32]string
}

func NewEnum(name string) *Enum {
	return &Enum{
		Name:    name,
		byName:  make(map[string]int32),
		byValue: make(map[int32]string),
	}
}

// EnumConflict reports one name bound to two different values across
// sources.
type EnumConflict struct {
	Enum     string
	Member   string
	Old, New int32
}

func (c EnumConflict) Error() string {
	return fmt.Sprintf("enum %s: member %s bound to both %d and %d", c.Enum, c.Member, c.Old, c.New)
}

// Define adds one member. Re-defining a member with the same value is a
// no-op; a different value returns an EnumConflict and leaves the table
// untouched.
func (e *Enum) Define(member string, val int32) error {
	if old, ok := e.byName[member]; ok {
		if old != val {
			return EnumConflict{Enum: e.Name, Member: member, Old: old, New: val}
		}
		return nil
	}
	e.byName[member] = val
	// Several members may share a value (aliases). Reverse lookup keeps
	// the lexicographically smallest name so decode output does not depend
	// on source order.
	if cur, ok := e.byValue[val]; !ok || member < cur {
		e.byValue[val] = member
	}
	return nil
}

// Value resolves a member name.
func (e *Enum) Value(member string) (int32, bool) {
	v, ok := e.byName[member]
	return v, ok
}

// Member reverse-looks-up a value. Decode falls back to the raw integer
// when this fails; absence is not an error.
func (e *Enum) Member(val int32) (string, bool) {
	m, ok := e.byValue[val]
	return m, ok
}

// Members returns the member names in sorted order.
func (e *Enum) Members() []string {
	out := make([]string, 0, len(e.byName))
	for name := range e.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge folds all of other's members into e, collecting conflicts instead
// of stopping at the first.
func (e *Enum) Merge(other *Enum) []error {
	var errs []error
	for _, member := range other.Members() {
		if err := e.Define(member, other.byName[member]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
