package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprint renders n as indented text, one node per line. It is the
// "pretty-print" leg of the node capability set described in the parser's
// design notes, alongside Children (traversal) and the registry-built
// Operator/Call interfaces (construction).
func Sprint(n Node) string {
	var sb strings.Builder
	sprintNode(&sb, n, 0)
	return sb.String()
}

func sprintNode(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(describe(n))
	sb.WriteByte('\n')
	for _, child := range childrenOf(n) {
		sprintNode(sb, child, depth+1)
	}
}

// childrenOf reports n's children for printing. For TensorMap and
// TensorJoin it appends the lambda's body after the operands, since
// Children omits it; the body prints as an ordinary child line.
func childrenOf(n Node) []Node {
	switch v := n.(type) {
	case *TensorMap:
		if v.Lambda != nil {
			return []Node{v.X, v.Lambda.Root}
		}
	case *TensorJoin:
		if v.Lambda != nil {
			return []Node{v.Lhs, v.Rhs, v.Lambda.Root}
		}
	}
	if n == nil {
		return nil
	}
	return n.Children()
}

func describe(n Node) string {
	switch v := n.(type) {
	case nil:
		return "<nil>"
	case *Number:
		return "Number(" + strconv.FormatFloat(v.Value, 'g', -1, 64) + ")"
	case *String:
		return fmt.Sprintf("String(%q)", v.Value)
	case *Symbol:
		return fmt.Sprintf("Symbol(%d)", v.ID)
	case *Neg:
		return "Neg"
	case *Not:
		return "Not"
	case *Array:
		return fmt.Sprintf("Array[%d]", len(v.Elems))
	case *If:
		return fmt.Sprintf("If(p_true=%g)", v.PTrue)
	case *Let:
		return fmt.Sprintf("Let(%s)", v.Name)
	case *ErrorNode:
		return fmt.Sprintf("Error(%s)", v.Message)
	case *TensorSum:
		if v.HasDim {
			return fmt.Sprintf("TensorSum(dim=%s)", v.Dim)
		}
		return "TensorSum"
	case *TensorMap:
		return "TensorMap"
	case *TensorJoin:
		return "TensorJoin"
	case *BinaryOp:
		return fmt.Sprintf("BinaryOp(%s)", v.OpName)
	case *BasicCall:
		return fmt.Sprintf("Call(%s/%d)", v.FuncName, v.FixedArity)
	default:
		return fmt.Sprintf("%T", n)
	}
}
