package mapfile

import (
	"errors"
	"fmt"
	"strings"

	"scarlet/internal/sig"
	"scarlet/internal/value"
)

func isEnumConflict(err error) bool {
	var c sig.EnumConflict
	return errors.As(err, &c)
}

// ParseIntrinsic parses a mapfile intrinsic spec:
//
//	jmp
//	interrupt
//	countjmp
//	assign(=, int)
//	binop(+, float)
//	unop(-, int)
//	condjmp(==, int)
func ParseIntrinsic(s string) (sig.Intrinsic, error) {
	head := s
	var params []string
	if i := strings.IndexByte(s, '('); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return sig.Intrinsic{}, fmt.Errorf("malformed intrinsic %q", s)
		}
		head = s[:i]
		for _, p := range strings.Split(s[i+1:len(s)-1], ",") {
			params = append(params, strings.TrimSpace(p))
		}
	}

	need := func(n int) error {
		if len(params) != n {
			return fmt.Errorf("intrinsic %s takes %d parameters, got %d", head, n, len(params))
		}
		return nil
	}

	switch head {
	case "jmp":
		if err := need(0); err != nil {
			return sig.Intrinsic{}, err
		}
		return sig.Jmp(), nil
	case "interrupt":
		if err := need(0); err != nil {
			return sig.Intrinsic{}, err
		}
		return sig.InterruptLabel(), nil
	case "countjmp":
		if err := need(0); err != nil {
			return sig.Intrinsic{}, err
		}
		return sig.CountJmp(), nil
	case "assign":
		if err := need(2); err != nil {
			return sig.Intrinsic{}, err
		}
		op, ok := parseAssignOp(params[0])
		if !ok {
			return sig.Intrinsic{}, fmt.Errorf("unknown assign operator %q", params[0])
		}
		ty, ok := parseScalarType(params[1])
		if !ok {
			return sig.Intrinsic{}, fmt.Errorf("unknown operand type %q", params[1])
		}
		return sig.AssignOp(op, ty), nil
	case "binop":
		if err := need(2); err != nil {
			return sig.Intrinsic{}, err
		}
		op, ok := parseBinOp(params[0])
		if !ok || op.IsComparison() {
			return sig.Intrinsic{}, fmt.Errorf("unknown binary operator %q", params[0])
		}
		ty, ok := parseScalarType(params[1])
		if !ok {
			return sig.Intrinsic{}, fmt.Errorf("unknown operand type %q", params[1])
		}
		return sig.BinOp(op, ty), nil
	case "unop":
		if err := need(2); err != nil {
			return sig.Intrinsic{}, err
		}
		op, ok := parseUnOp(params[0])
		if !ok {
			return sig.Intrinsic{}, fmt.Errorf("unknown unary operator %q", params[0])
		}
		ty, ok := parseScalarType(params[1])
		if !ok {
			return sig.Intrinsic{}, fmt.Errorf("unknown operand type %q", params[1])
		}
		return sig.UnOp(op, ty), nil
	case "condjmp":
		if err := need(2); err != nil {
			return sig.Intrinsic{}, err
		}
		op, ok := parseBinOp(params[0])
		if !ok || !op.IsComparison() {
			return sig.Intrinsic{}, fmt.Errorf("unknown comparison %q", params[0])
		}
		ty, ok := parseScalarType(params[1])
		if !ok {
			return sig.Intrinsic{}, fmt.Errorf("unknown operand type %q", params[1])
		}
		return sig.CondJmp(op, ty), nil
	}
	return sig.Intrinsic{}, fmt.Errorf("unknown intrinsic %q", head)
}

func parseBinOp(s string) (value.BinOp, bool) {
	switch s {
	case "+":
		return value.Add, true
	case "-":
		return value.Sub, true
	case "*":
		return value.Mul, true
	case "/":
		return value.Div, true
	case "%":
		return value.Rem, true
	case "==":
		return value.Eq, true
	case "!=":
		return value.Ne, true
	case "<":
		return value.Lt, true
	case "<=":
		return value.Le, true
	case ">":
		return value.Gt, true
	case ">=":
		return value.Ge, true
	case "&":
		return value.BitAnd, true
	case "|":
		return value.BitOr, true
	case "^":
		return value.BitXor, true
	}
	return 0, false
}

func parseUnOp(s string) (value.UnOp, bool) {
	switch s {
	case "-":
		return value.Neg, true
	case "~":
		return value.Not, true
	}
	return 0, false
}

func parseAssignOp(s string) (value.AssignOp, bool) {
	switch s {
	case "=":
		return value.Set, true
	case "+=":
		return value.AddAssign, true
	case "-=":
		return value.SubAssign, true
	case "*=":
		return value.MulAssign, true
	case "/=":
		return value.DivAssign, true
	case "%=":
		return value.RemAssign, true
	}
	return 0, false
}
