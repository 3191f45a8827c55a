package sig

// Signature is the declarative layout of one opcode's arguments.
type Signature struct {
	Opcode uint16
	Slots  []Slot

	// Intrin is the intrinsic this opcode realizes, if any.
	HasIntrin bool
	Intrin    Intrinsic

	// binding is the resolved operand-role mapping, computed when the
	// Table is built. Nil when HasIntrin is false.
	binding *Binding
}

// ArgsSize returns the total encoded size of the argument blob in bytes.
func (s *Signature) ArgsSize() int {
	n := 0
	for _, slot := range s.Slots {
		n += slot.Kind.Width()
	}
	return n
}

// Binding returns the operand-role mapping for the bound intrinsic.
func (s *Signature) Binding() (*Binding, bool) {
	if s == nil || s.binding == nil {
		return nil, false
	}
	return s.binding, true
}

// ParseSlots builds a slot list from a compact signature string such as
// "SSof", one character per slot.
func ParseSlots(sigstr string) ([]Slot, bool) {
	slots := make([]Slot, 0, len(sigstr))
	for i := 0; i < len(sigstr); i++ {
		k, ok := ParseArgKind(sigstr[i])
		if !ok {
			return nil, false
		}
		slots = append(slots, Slot{Kind: k})
	}
	return slots, true
}
