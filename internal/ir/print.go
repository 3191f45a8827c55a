package ir

import (
	"fmt"
	"strings"
)

// Print renders a block in a compact, deterministic text form. It exists
// for tests and debugging, not for user-facing decompiled output.
func Print(b *Block) string {
	var sb strings.Builder
	printBlock(&sb, b, 0)
	return sb.String()
}

func printBlock(sb *strings.Builder, b *Block, depth int) {
	if b == nil {
		return
	}
	for i := range b.Stmts {
		printStmt(sb, &b.Stmts[i], depth)
	}
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}

func printStmt(sb *strings.Builder, s *Stmt, depth int) {
	indent(sb, depth)
	if s.HasRawMask {
		fmt.Fprintf(sb, "{0x%02x} ", s.RawMask)
	} else if s.Diff != "" {
		fmt.Fprintf(sb, "{%s} ", s.Diff)
	}
	switch s.Kind {
	case StmtInstrCall:
		name := s.Name
		if s.HasOpcode {
			name = fmt.Sprintf("ins_%d", s.Opcode)
		}
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = ExprString(a)
		}
		fmt.Fprintf(sb, "%s(%s);\n", name, strings.Join(args, ", "))
	case StmtAssign:
		fmt.Fprintf(sb, "%s %s %s;\n", ExprString(s.Dest), s.AssignOp, ExprString(s.Value))
	case StmtCond:
		for i, br := range s.Branches {
			if i == 0 {
				fmt.Fprintf(sb, "if (%s) {\n", ExprString(br.Cond))
			} else {
				indent(sb, depth)
				fmt.Fprintf(sb, "} else if (%s) {\n", ExprString(br.Cond))
			}
			printBlock(sb, br.Body, depth+1)
		}
		if s.Else != nil {
			indent(sb, depth)
			sb.WriteString("} else {\n")
			printBlock(sb, s.Else, depth+1)
		}
		indent(sb, depth)
		sb.WriteString("}\n")
	case StmtLoop:
		sb.WriteString("loop {\n")
		printBlock(sb, s.Body, depth+1)
		indent(sb, depth)
		if s.Cond != nil {
			fmt.Fprintf(sb, "} while (%s);\n", ExprString(s.Cond))
		} else {
			sb.WriteString("}\n")
		}
	case StmtBreak:
		sb.WriteString("break;\n")
	case StmtLabel:
		fmt.Fprintf(sb, "%s:\n", s.Label)
	case StmtTimeLabel:
		fmt.Fprintf(sb, "+%d:\n", s.Time)
	case StmtGoto:
		if s.GotoCond != nil {
			fmt.Fprintf(sb, "if (%s) ", ExprString(s.GotoCond))
		}
		if s.HasTime {
			fmt.Fprintf(sb, "goto %s @ %d;\n", s.Label, s.GotoTime)
		} else {
			fmt.Fprintf(sb, "goto %s;\n", s.Label)
		}
	case StmtInterrupt:
		fmt.Fprintf(sb, "interrupt[%d]:\n", s.Interrupt)
	default:
		sb.WriteString("<?>;\n")
	}
}

// ExprString renders one expression.
func ExprString(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExprLitInt:
		return fmt.Sprintf("%d", e.Int)
	case ExprLitFloat:
		return fmt.Sprintf("%g", e.Float)
	case ExprReg:
		return fmt.Sprintf("[%d]", e.Reg)
	case ExprNamed:
		return e.Ident
	case ExprBin:
		return fmt.Sprintf("(%s %s %s)", ExprString(e.Lhs), e.BinOp, ExprString(e.Rhs))
	case ExprUn:
		return fmt.Sprintf("(%s%s)", e.UnOp, ExprString(e.Rhs))
	case ExprCast:
		return fmt.Sprintf("_%s(%s)", e.CastTo, ExprString(e.Rhs))
	case ExprEnum:
		return fmt.Sprintf("%s.%s", e.Enum, e.Member)
	case ExprName:
		return e.Name
	case ExprDecrement:
		return fmt.Sprintf("(%s--)", ExprString(e.Rhs))
	case ExprDiffSwitch:
		parts := make([]string, len(e.Cases))
		for i, c := range e.Cases {
			if c == nil {
				parts[i] = ""
			} else {
				parts[i] = ExprString(c)
			}
		}
		return "(" + strings.Join(parts, " : ") + ")"
	}
	return "<?>"
}
