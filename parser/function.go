// Package parser implements the core of a recursive-descent parser for
// ranking expressions: a cursor-driven grammar, symbol resolution against
// either implicit or explicit parameter lists, lexically scoped
// let-bindings, and a pluggable SymbolExtractor for host-defined symbol
// syntax. It knows nothing about which operators or functions exist -
// those are supplied by a caller-provided Registries - so it has no
// dependency on any concrete ranking-expression vocabulary.
package parser

import (
	"errors"

	"github.com/rankexpr/rankexpr/ast"
)

// Registries bundles the two lookup tables the grammar consults while
// parsing: which infix operators exist, and which named functions exist.
// Concrete catalogs live outside this package; see the rankexpr package
// for the default set.
type Registries struct {
	Operators OperatorRepo
	Calls     CallRepo
}

type options struct {
	extractor SymbolExtractor
}

// Option configures a Parse or ParseParams call.
type Option func(*options)

// WithSymbolExtractor supplies a SymbolExtractor that reads every
// identifier that is not a let-binding before it is resolved as a
// parameter - for example, to recognize dotted or namespaced symbol syntax
// a host application defines on top of the base grammar.
func WithSymbolExtractor(extractor SymbolExtractor) Option {
	return func(o *options) { o.extractor = extractor }
}

func parseFunction(registries Registries, params Params, expr string, opts ...Option) *ast.Function {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx := newParseContext(expr, registries.Operators, registries.Calls)
	ctx.pushResolveContext(newResolveContext(params, o.extractor))

	parseExpression(ctx)
	root := ctx.getResult()

	if ctx.failed() && params.implicit() {
		return &ast.Function{Root: root}
	}
	return &ast.Function{Root: root, Params: params.extract()}
}

// Parse parses expr, treating every bare identifier (one not followed by
// "(") that is not a let-binding as a parameter, numbered in
// first-encounter order. If the parse fails, the returned Function's
// Params is empty rather than whatever parameters were discovered before
// the failure, since a partial parameter list from a broken parse is not
// meaningful to a caller.
func Parse(registries Registries, expr string, opts ...Option) *ast.Function {
	return parseFunction(registries, NewImplicitParams(), expr, opts...)
}

// ParseParams parses expr against a fixed parameter list: an identifier
// that is not one of paramNames, a let-binding, or resolvable through a
// SymbolExtractor fails the parse with an "unknown symbol" diagnostic
// rather than being added as a new parameter. It returns an error if
// paramNames itself contains a duplicate name.
func ParseParams(registries Registries, paramNames []string, expr string, opts ...Option) (*ast.Function, error) {
	params, err := NewExplicitParams(paramNames)
	if err != nil {
		return nil, err
	}
	return parseFunction(registries, params, expr, opts...), nil
}

// Unwrap splits an input of the form "wrapper ( body )" into its wrapper
// name and body text, tolerating surrounding whitespace. It is used to
// peel a host-defined outer call (e.g. a ranking profile's "rank(...)"
// envelope) off an expression before parsing the body.
func Unwrap(input string) (wrapper, body string, err error) {
	i, n := 0, len(input)
	for i < n && isSpace(input[i]) {
		i++
	}
	start := i
	for i < n && isAlpha(input[i]) {
		i++
	}
	wrapper = input[start:i]
	if wrapper == "" {
		return "", "", errors.New("could not extract wrapper name")
	}
	for i < n && isSpace(input[i]) {
		i++
	}
	if i >= n || input[i] != '(' {
		return "", "", errors.New("could not match opening '('")
	}
	bodyStart := i + 1

	j := n - 1
	for j > bodyStart && isSpace(input[j]) {
		j--
	}
	if j < bodyStart || input[j] != ')' {
		return "", "", errors.New("could not match closing ')'")
	}
	return wrapper, input[bodyStart:j], nil
}
