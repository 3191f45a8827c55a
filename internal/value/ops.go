package value

// BinOp enumerates binary operators that can appear in expressions and in
// intrinsic identities.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	BitAnd
	BitOr
	BitXor
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Rem:
		return "%"
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case BitAnd:
		return "&"
	case BitOr:
		return "|"
	case BitXor:
		return "^"
	}
	return "?"
}

// IsComparison reports whether the operator yields a condition rather than
// a value.
func (op BinOp) IsComparison() bool {
	switch op {
	case Eq, Ne, Lt, Le, Gt, Ge:
		return true
	}
	return false
}

// Negate returns the comparison testing the opposite outcome. Calling it on
// a non-comparison operator returns the operator unchanged.
func (op BinOp) Negate() BinOp {
	switch op {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Le:
		return Gt
	case Gt:
		return Le
	case Ge:
		return Lt
	}
	return op
}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	Neg UnOp = iota
	Not // bitwise not
)

func (op UnOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "~"
	}
	return "?"
}

// AssignOp enumerates assignment operators for update-assignment
// intrinsics.
type AssignOp uint8

const (
	Set AssignOp = iota
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	RemAssign
)

func (op AssignOp) String() string {
	switch op {
	case Set:
		return "="
	case AddAssign:
		return "+="
	case SubAssign:
		return "-="
	case MulAssign:
		return "*="
	case DivAssign:
		return "/="
	case RemAssign:
		return "%="
	}
	return "?"
}

// BinOp returns the plain binary operator an update assignment applies,
// and false for plain Set.
func (op AssignOp) BinOp() (BinOp, bool) {
	switch op {
	case AddAssign:
		return Add, true
	case SubAssign:
		return Sub, true
	case MulAssign:
		return Mul, true
	case DivAssign:
		return Div, true
	case RemAssign:
		return Rem, true
	}
	return 0, false
}
