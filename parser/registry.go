package parser

import "github.com/rankexpr/rankexpr/ast"

// OperatorRepo looks up infix operators by their leading source bytes.
// Create is tried against the longest match first, so a repo implementation
// must itself disambiguate prefixes (e.g. "<=" against "<"); MaxSize tells
// the caller how many bytes to peek before trying.
type OperatorRepo interface {
	// MaxSize is the length in bytes of the longest operator spelling
	// this repo knows about.
	MaxSize() int

	// Create attempts to match an operator at the start of s, returning
	// a fresh ast.Operator and the number of bytes it consumed. ok is
	// false if no operator starts at s.
	Create(s string) (op ast.Operator, length int, ok bool)
}

// CallRepo looks up named functions, e.g. "sqrt" or "pow", returning a
// fresh ast.Call ready to have its arguments bound.
type CallRepo interface {
	// Create returns a fresh ast.Call for name, or ok=false if name is
	// not a known function.
	Create(name string) (call ast.Call, ok bool)
}
