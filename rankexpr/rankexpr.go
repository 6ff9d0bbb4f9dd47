// Package rankexpr is the product layer on top of parser: it supplies the
// concrete operator and function catalogs a ranking expression actually
// uses, and wraps the core parsing entry points so a caller never has to
// assemble a parser.Registries by hand.
package rankexpr

import (
	"github.com/rankexpr/rankexpr/ast"
	"github.com/rankexpr/rankexpr/parser"
)

// defaultRegistries is built once; both it and the operatorRepo/callRepo
// values it holds are read-only after construction, so it is safe to
// share across concurrent parses on independent parseContexts.
var defaultRegistries = parser.Registries{Operators: DefaultOperators(), Calls: DefaultCalls()}

// Parse parses expr using the default operator and function registries,
// treating every unresolved identifier as a new implicit parameter in
// first-encounter order.
func Parse(expr string, opts ...parser.Option) *ast.Function {
	return parser.Parse(defaultRegistries, expr, opts...)
}

// ParseParams parses expr against a fixed parameter list using the
// default operator and function registries. It returns an error if
// paramNames contains a duplicate name.
func ParseParams(paramNames []string, expr string, opts ...parser.Option) (*ast.Function, error) {
	return parser.ParseParams(defaultRegistries, paramNames, expr, opts...)
}

// Unwrap splits an input of the form "wrapper ( body )" into its wrapper
// name and body text. See parser.Unwrap.
func Unwrap(input string) (wrapper, body string, err error) {
	return parser.Unwrap(input)
}
