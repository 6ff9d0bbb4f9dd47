package rankexpr

import (
	"github.com/rankexpr/rankexpr/ast"
	"github.com/rankexpr/rankexpr/parser"
)

type operatorEntry struct {
	name       string
	precedence int
	rightAssoc bool
}

// defaultOperators is the built-in infix operator table: arithmetic,
// comparison and logical operators, ordered from loosest to tightest
// binding. Ties break left-to-right except for "^", which nests to the
// right so that "2^3^2" reads as "2^(3^2)".
var defaultOperators = []operatorEntry{
	{"||", 10, false},
	{"&&", 20, false},
	{"==", 30, false},
	{"!=", 30, false},
	{"~=", 30, false},
	{"<=", 40, false},
	{">=", 40, false},
	{"<", 40, false},
	{">", 40, false},
	{"+", 50, false},
	{"-", 50, false},
	{"*", 60, false},
	{"/", 60, false},
	{"%", 60, false},
	{"^", 70, true},
}

// operatorRepo is the default parser.OperatorRepo: a small, fixed table of
// operator spellings, matched longest-prefix-first so that "<=" is never
// mistaken for "<" followed by "=".
type operatorRepo struct {
	entries []operatorEntry
	maxSize int
}

func newOperatorRepo(entries []operatorEntry) *operatorRepo {
	repo := &operatorRepo{entries: entries}
	for _, e := range entries {
		if len(e.name) > repo.maxSize {
			repo.maxSize = len(e.name)
		}
	}
	return repo
}

func (r *operatorRepo) MaxSize() int { return r.maxSize }

func (r *operatorRepo) Create(s string) (ast.Operator, int, bool) {
	var best *operatorEntry
	for i := range r.entries {
		e := &r.entries[i]
		if len(s) < len(e.name) || s[:len(e.name)] != e.name {
			continue
		}
		if best == nil || len(e.name) > len(best.name) {
			best = e
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return &ast.BinaryOp{OpName: best.name, Prec: best.precedence, RightAssoc: best.rightAssoc}, len(best.name), true
}

// DefaultOperators returns the built-in operator registry used by Parse
// and ParseParams.
func DefaultOperators() parser.OperatorRepo {
	return newOperatorRepo(defaultOperators)
}
