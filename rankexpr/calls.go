package rankexpr

import (
	"github.com/rankexpr/rankexpr/ast"
	"github.com/rankexpr/rankexpr/parser"
)

// defaultCalls is the built-in named-function table: name to fixed arity.
// These are pure catalog entries - the parser only needs to know how many
// arguments a call takes to parse it; evaluating a parsed expression is
// outside this module's scope (see SPEC_FULL.md's Non-goals).
var defaultCalls = map[string]int{
	"sin":     1,
	"cos":     1,
	"tan":     1,
	"asin":    1,
	"acos":    1,
	"atan":    1,
	"atan2":   2,
	"cosh":    1,
	"sinh":    1,
	"tanh":    1,
	"sqrt":    1,
	"cbrt":    1,
	"exp":     1,
	"exp2":    1,
	"log":     1,
	"log2":    1,
	"log10":   1,
	"pow":     2,
	"hypot":   2,
	"fabs":    1,
	"floor":   1,
	"ceil":    1,
	"round":   1,
	"sign":    1,
	"erf":     1,
	"isNan":   1,
	"relu":    1,
	"sigmoid": 1,
	"elu":     1,
	"max":     2,
	"min":     2,
	"fmod":    2,
}

type callRepo struct {
	entries map[string]int
}

func newCallRepo(entries map[string]int) *callRepo {
	return &callRepo{entries: entries}
}

func (r *callRepo) Create(name string) (ast.Call, bool) {
	arity, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return &ast.BasicCall{FuncName: name, FixedArity: arity}, true
}

// DefaultCalls returns the built-in function registry used by Parse and
// ParseParams.
func DefaultCalls() parser.CallRepo {
	return newCallRepo(defaultCalls)
}
