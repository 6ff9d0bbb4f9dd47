package parser

import "fmt"

// Params resolves a parameter name to an index. Implicit and explicit
// parameter lists differ only in what happens on a miss: ExplicitParams
// treats a miss as "not a parameter", which fails the parse with an
// "unknown symbol" diagnostic, while ImplicitParams registers the name on
// first sight and never misses.
type Params interface {
	// Resolve looks up name, returning its index and whether it was
	// found (or, for ImplicitParams, newly registered).
	Resolve(name string) (id int, ok bool)

	// implicit reports whether this is an ImplicitParams, which changes
	// how Parse handles a failed parse (see Parse in function.go).
	implicit() bool

	// extract returns the parameter names in resolution order, for
	// attaching to the finished ast.Function.
	extract() []string
}

// ExplicitParams resolves against a fixed, caller-supplied name list. It
// is used whenever the caller already knows the parameter names, such as
// when parsing a lambda's body against its bound variables.
type ExplicitParams struct {
	names []string
	index map[string]int
}

// NewExplicitParams builds an ExplicitParams over names. It returns an
// error if names contains a duplicate, since two parameters sharing a
// name make the surrounding resolution logic ambiguous.
func NewExplicitParams(names []string) (*ExplicitParams, error) {
	p := &ExplicitParams{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, dup := p.index[name]; dup {
			return nil, fmt.Errorf("duplicate parameter name: %q", name)
		}
		p.index[name] = i
	}
	return p, nil
}

func (p *ExplicitParams) Resolve(name string) (int, bool) {
	id, ok := p.index[name]
	return id, ok
}

func (p *ExplicitParams) implicit() bool { return false }

func (p *ExplicitParams) extract() []string { return append([]string(nil), p.names...) }

// ImplicitParams discovers parameter names as they are encountered,
// assigning each a fresh index in first-sight order. It is used for the
// top-level expression, where the caller does not pre-declare which
// identifiers are parameters.
type ImplicitParams struct {
	names []string
	index map[string]int
}

// NewImplicitParams returns an empty ImplicitParams ready to register
// names as resolution discovers them.
func NewImplicitParams() *ImplicitParams {
	return &ImplicitParams{index: make(map[string]int)}
}

func (p *ImplicitParams) Resolve(name string) (int, bool) {
	if id, ok := p.index[name]; ok {
		return id, true
	}
	id := len(p.names)
	p.names = append(p.names, name)
	p.index[name] = id
	return id, true
}

func (p *ImplicitParams) implicit() bool { return true }

func (p *ImplicitParams) extract() []string { return append([]string(nil), p.names...) }

// SymbolExtractor lets a host application recognize symbols beyond plain
// identifiers - qualified names, indexed lookups, whatever the host's
// naming convention needs. Once registered, it is consulted for every
// non-let-bound identifier, not only ones that fail plain resolution: the
// cursor is rewound to the very start of the identifier before it runs, so
// it is responsible for re-reading the base identifier itself as well as
// any extension.
//
// ExtractSymbol is given source and the half-open range [pos, end)
// starting at the first byte of the identifier (so source[pos:] is the
// whole symbol, unread). It returns the new cursor position and the
// resolved symbol name. If it declines to recognize anything at pos, it
// should return pos (or anything not strictly greater than pos) and the
// caller will treat the symbol as unresolved.
type SymbolExtractor interface {
	ExtractSymbol(source string, pos, end int) (newPos int, symbol string)
}

// resolveContext pairs a Params with an optional SymbolExtractor and the
// stack of let-binding names currently in scope. The parser pushes a new
// resolveContext whenever it enters a lambda body, since a lambda sees
// only its own explicit parameters, never the enclosing scope's.
type resolveContext struct {
	params          Params
	symbolExtractor SymbolExtractor
	letNames        []string
}

func newResolveContext(params Params, extractor SymbolExtractor) *resolveContext {
	return &resolveContext{params: params, symbolExtractor: extractor}
}

func (rc *resolveContext) pushLetName(name string) {
	rc.letNames = append(rc.letNames, name)
}

func (rc *resolveContext) popLetName() {
	rc.letNames = rc.letNames[:len(rc.letNames)-1]
}

// resolveLetRef searches the active let bindings innermost-first,
// returning the negative id -(i+1) that encodes depth i (0 = outermost).
func (rc *resolveContext) resolveLetRef(name string) (int, bool) {
	for i := len(rc.letNames) - 1; i >= 0; i-- {
		if rc.letNames[i] == name {
			return -(i + 1), true
		}
	}
	return 0, false
}

func (rc *resolveContext) resolveParam(name string) (int, bool) {
	return rc.params.Resolve(name)
}

// resolveLetRef delegates to the innermost resolve context.
func (c *parseContext) resolveLetRef(name string) (int, bool) {
	return c.resolver().resolveLetRef(name)
}

func (c *parseContext) resolveParameter(name string) (int, bool) {
	return c.resolver().resolveParam(name)
}

func (c *parseContext) pushLetBinding(name string) {
	c.resolver().pushLetName(name)
}

func (c *parseContext) popLetBinding() {
	c.resolver().popLetName()
}
