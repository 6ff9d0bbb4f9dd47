package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rankexpr/rankexpr/ast"
)

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isIdentChar reports whether b may appear in an identifier. Digits are
// accepted even when first is true, a compatibility decision kept from the
// grammar this parser tracks. A value never reaches it with a leading
// digit, since parseValue sends a leading digit to parseNumber first; the
// names getIdent reads for let bindings, lambda parameters and sum
// dimensions can start with a digit. '$' is a continuation character only,
// never a leading one.
func isIdentChar(b byte, first bool) bool {
	return isAlpha(b) || isDigit(b) || b == '_' || b == '@' || (b == '$' && !first)
}

func unhex(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

// getIdent reads a maximal run of identifier characters after skipping
// leading spaces, returning "" if none are present.
func getIdent(ctx *parseContext) string {
	ctx.skipSpaces()
	var sb strings.Builder
	first := true
	for !ctx.eos() && isIdentChar(ctx.get(), first) {
		sb.WriteByte(ctx.get())
		ctx.next()
		first = false
	}
	return sb.String()
}

// parseString consumes a double-quoted string literal, resolving \", \\,
// \f, \n, \r, \t and \xHH escapes, and pushes the resulting ast.String.
func parseString(ctx *parseContext) {
	ctx.eat('"')
	var sb strings.Builder
	for {
		if ctx.eos() {
			ctx.fail("unterminated string")
			break
		}
		b := ctx.get()
		if b == '"' {
			ctx.next()
			break
		}
		if b != '\\' {
			sb.WriteByte(b)
			ctx.next()
			continue
		}
		ctx.next()
		e := ctx.get()
		switch e {
		case '"':
			sb.WriteByte('"')
			ctx.next()
		case '\\':
			sb.WriteByte('\\')
			ctx.next()
		case 'f':
			sb.WriteByte('\f')
			ctx.next()
		case 'n':
			sb.WriteByte('\n')
			ctx.next()
		case 'r':
			sb.WriteByte('\r')
			ctx.next()
		case 't':
			sb.WriteByte('\t')
			ctx.next()
		case 'x':
			ctx.next()
			hi, okHi := unhex(ctx.get())
			ctx.next()
			lo, okLo := unhex(ctx.get())
			ctx.next()
			if !okHi || !okLo {
				ctx.fail("bad hex quote")
				break
			}
			sb.WriteByte(hi<<4 | lo)
		default:
			ctx.fail("bad quote")
		}
	}
	ctx.pushExpression(&ast.String{Value: sb.String()})
}

// parseNumber consumes a decimal literal with an optional fractional part
// and an optional exponent, and pushes the resulting ast.Number.
func parseNumber(ctx *parseContext) {
	var sb strings.Builder
	for !ctx.eos() && isDigit(ctx.get()) {
		sb.WriteByte(ctx.get())
		ctx.next()
	}
	if !ctx.eos() && ctx.get() == '.' {
		sb.WriteByte('.')
		ctx.next()
		for !ctx.eos() && isDigit(ctx.get()) {
			sb.WriteByte(ctx.get())
			ctx.next()
		}
	}
	if !ctx.eos() && (ctx.get() == 'e' || ctx.get() == 'E') {
		sb.WriteByte(ctx.get())
		ctx.next()
		if !ctx.eos() && (ctx.get() == '+' || ctx.get() == '-') {
			sb.WriteByte(ctx.get())
			ctx.next()
		}
		for !ctx.eos() && isDigit(ctx.get()) {
			sb.WriteByte(ctx.get())
			ctx.next()
		}
	}
	str := sb.String()
	value, err := strconv.ParseFloat(str, 64)
	if str == "" || err != nil {
		ctx.fail(fmt.Sprintf("invalid number: '%s'", str))
		return
	}
	ctx.pushExpression(&ast.Number{Value: value})
}

// parseArray consumes a "[" expr, expr, ... "]" literal.
func parseArray(ctx *parseContext) {
	ctx.eat('[')
	var elems []ast.Node
	ctx.skipSpaces()
	if !ctx.eos() && ctx.get() != ']' {
		for {
			parseExpression(ctx)
			elems = append(elems, ctx.popExpression())
			ctx.skipSpaces()
			if ctx.eos() || ctx.get() != ',' {
				break
			}
			ctx.next()
		}
	}
	ctx.eat(']')
	ctx.pushExpression(&ast.Array{Elems: elems})
}

// parseIf consumes the inner "cond, true, false[, p_true]" contents of an
// if(...) call; the surrounding parentheses are eaten by tryParseCall.
func parseIf(ctx *parseContext) {
	parseExpression(ctx)
	cond := ctx.popExpression()
	ctx.eat(',')
	parseExpression(ctx)
	trueBranch := ctx.popExpression()
	ctx.eat(',')
	parseExpression(ctx)
	falseBranch := ctx.popExpression()

	pTrue := 0.5
	ctx.skipSpaces()
	if !ctx.eos() && ctx.get() == ',' {
		ctx.next()
		ctx.skipSpaces()
		parseNumber(ctx)
		if n, ok := ctx.popExpression().(*ast.Number); ok {
			pTrue = n.Value
		}
	}
	ctx.pushExpression(&ast.If{Cond: cond, True: trueBranch, False: falseBranch, PTrue: pTrue})
}

// parseLet consumes the inner "name, value, body" contents of a let(...)
// call, making name visible as a let-binding while body is parsed.
func parseLet(ctx *parseContext) {
	name := getIdent(ctx)
	ctx.eat(',')
	parseExpression(ctx)
	value := ctx.popExpression()
	ctx.eat(',')

	ctx.pushLetBinding(name)
	parseExpression(ctx)
	body := ctx.popExpression()
	ctx.popLetBinding()

	ctx.pushExpression(&ast.Let{Name: name, Value: value, Body: body})
}

// parseCallArgs consumes call's fixed-arity, comma-separated argument list
// and pushes call itself as the completed expression.
func parseCallArgs(ctx *parseContext, call ast.Call) {
	for i := 0; i < call.Arity(); i++ {
		if i > 0 {
			ctx.eat(',')
		}
		parseExpression(ctx)
		call.BindArg(i, ctx.popExpression())
	}
	ctx.pushExpression(call)
}

// getIdentList consumes a parenthesized, comma-separated identifier list,
// e.g. "(a, b, c)".
func getIdentList(ctx *parseContext) []string {
	ctx.eat('(')
	var names []string
	ctx.skipSpaces()
	if !ctx.eos() && ctx.get() != ')' {
		for {
			names = append(names, getIdent(ctx))
			ctx.skipSpaces()
			if ctx.eos() || ctx.get() != ',' {
				break
			}
			ctx.next()
		}
	}
	ctx.eat(')')
	return names
}

// parseLambda consumes an "f(names)(body)" lambda, resolving body against
// a fresh scope that sees only names - not any enclosing let-bindings or
// parameters. A duplicate name in the list fails the parse through the
// ordinary failure latch rather than aborting, since these names come
// from untrusted expression text.
func parseLambda(ctx *parseContext) *ast.Function {
	ctx.skipSpaces()
	ctx.eat('f')
	names := getIdentList(ctx)

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			ctx.fail(fmt.Sprintf("duplicate lambda parameter: '%s'", name))
			return &ast.Function{Root: &ast.ErrorNode{Message: ctx.failure}}
		}
		seen[name] = true
	}

	params, _ := NewExplicitParams(names)
	ctx.pushResolveContext(newResolveContext(params, nil))
	ctx.eat('(')
	parseExpression(ctx)
	body := ctx.popExpression()
	ctx.eat(')')
	ctx.popResolveContext()

	return &ast.Function{Root: body, Params: params.extract()}
}

// parseTensorMap consumes the inner "x, lambda" contents of a map(...)
// call, requiring lambda to take exactly one parameter.
func parseTensorMap(ctx *parseContext) {
	parseExpression(ctx)
	x := ctx.popExpression()
	ctx.eat(',')
	lambda := parseLambda(ctx)
	if len(lambda.Params) != 1 {
		ctx.fail(fmt.Sprintf("map requires a lambda with 1 parameter, was %d", len(lambda.Params)))
		return
	}
	ctx.pushExpression(&ast.TensorMap{X: x, Lambda: lambda})
}

// parseTensorJoin consumes the inner "lhs, rhs, lambda" contents of a
// join(...) call, requiring lambda to take exactly two parameters.
func parseTensorJoin(ctx *parseContext) {
	parseExpression(ctx)
	lhs := ctx.popExpression()
	ctx.eat(',')
	parseExpression(ctx)
	rhs := ctx.popExpression()
	ctx.eat(',')
	lambda := parseLambda(ctx)
	if len(lambda.Params) != 2 {
		ctx.fail(fmt.Sprintf("join requires a lambda with 2 parameter, was %d", len(lambda.Params)))
		return
	}
	ctx.pushExpression(&ast.TensorJoin{Lhs: lhs, Rhs: rhs, Lambda: lambda})
}

// parseTensorSum consumes the inner "x[, dimension]" contents of a
// sum(...) call.
func parseTensorSum(ctx *parseContext) {
	parseExpression(ctx)
	x := ctx.popExpression()
	ctx.skipSpaces()
	if !ctx.eos() && ctx.get() == ',' {
		ctx.next()
		dim := getIdent(ctx)
		ctx.pushExpression(&ast.TensorSum{X: x, Dim: dim, HasDim: true})
		return
	}
	ctx.pushExpression(&ast.TensorSum{X: x})
}

// tryParseCall checks whether name is immediately followed by "(" and, if
// so, consumes the whole call including both parentheses, dispatching to
// the handler for one of the built-in forms (if, let, map, join, sum) or
// to a CallRepo lookup for an ordinary named function. It reports whether
// it matched and consumed a call at all.
func tryParseCall(ctx *parseContext, name string) bool {
	if ctx.eos() || ctx.get() != '(' {
		return false
	}
	ctx.next()
	switch name {
	case "if":
		parseIf(ctx)
	case "let":
		parseLet(ctx)
	case "map":
		parseTensorMap(ctx)
	case "join":
		parseTensorJoin(ctx)
	case "sum":
		parseTensorSum(ctx)
	default:
		call, ok := ctx.calls.Create(name)
		if !ok {
			ctx.fail(fmt.Sprintf("unknown function: '%s'", name))
			return false
		}
		parseCallArgs(ctx, call)
	}
	ctx.eat(')')
	return true
}

// parseSymbol resolves name as a let-reference first, then - after giving
// the active SymbolExtractor a chance to extend it - as a parameter. It
// returns the (possibly extractor-mutated) name alongside the resolution
// result, since the caller needs the final name to report "unknown
// symbol: '...'" accurately.
func parseSymbol(ctx *parseContext, name string, beforeName inputMark) (resolvedName string, id int, ok bool) {
	if letID, found := ctx.resolveLetRef(name); found {
		return name, letID, true
	}
	name = ctx.extractSymbol(name, beforeName)
	id, ok = ctx.resolveParameter(name)
	return name, id, ok
}

// parseSymbolOrCall reads a bare identifier and either consumes it as a
// call (tryParseCall) or resolves it as a symbol reference, pushing an
// ast.Symbol on success.
func parseSymbolOrCall(ctx *parseContext) {
	beforeName := ctx.getInputMark()
	name := getIdent(ctx)
	if tryParseCall(ctx, name) {
		return
	}
	resolvedName, id, ok := parseSymbol(ctx, name, beforeName)
	if resolvedName == "" {
		ctx.fail("missing value")
		return
	}
	if !ok {
		ctx.fail(fmt.Sprintf("unknown symbol: '%s'", resolvedName))
		return
	}
	ctx.pushExpression(&ast.Symbol{ID: id})
}

// parseValue consumes one operand: a unary-prefixed value, a parenthesized
// sub-expression, an array, string, number, or symbol/call.
func parseValue(ctx *parseContext) {
	ctx.skipSpaces()
	switch {
	case ctx.eos():
		ctx.fail("missing value")
	case ctx.get() == '-':
		ctx.next()
		parseValue(ctx)
		ctx.pushExpression(&ast.Neg{X: ctx.popExpression()})
	case ctx.get() == '!':
		ctx.next()
		parseValue(ctx)
		ctx.pushExpression(&ast.Not{X: ctx.popExpression()})
	case ctx.get() == '(':
		ctx.next()
		parseExpression(ctx)
		ctx.eat(')')
	case ctx.get() == '[':
		parseArray(ctx)
	case ctx.get() == '"':
		parseString(ctx)
	case isDigit(ctx.get()):
		parseNumber(ctx)
	default:
		parseSymbolOrCall(ctx)
	}
}

// parseOperator consumes one infix operator token and pushes it onto the
// operator stack, first reducing any operator already waiting there whose
// DoBefore reports that it binds first (higher precedence, or equal
// precedence and not right-associative).
func parseOperator(ctx *parseContext) {
	ctx.skipSpaces()
	if ctx.eos() {
		ctx.fail("missing operator")
		return
	}
	maxLen := ctx.operators.MaxSize()
	op, length, ok := ctx.operators.Create(ctx.peek(maxLen))
	if !ok {
		ctx.fail(fmt.Sprintf("invalid operator: '%c'", ctx.get()))
		return
	}
	ctx.pushOperator(op)
	ctx.skip(length)
}

// parseExpression consumes a value, operator, value, operator, ... chain
// until a terminator (end of source, ")", "," or "]"), then reduces the
// operators it pushed down to a single expression node.
func parseExpression(ctx *parseContext) {
	old := ctx.enterExpression()
	for {
		parseValue(ctx)
		ctx.skipSpaces()
		if ctx.eos() {
			break
		}
		switch ctx.get() {
		case ')', ',', ']':
			// terminator reached; fall through to reduce below
		default:
			parseOperator(ctx)
			continue
		}
		break
	}
	for ctx.numOperators() > 0 {
		ctx.applyOperator()
	}
	ctx.leaveExpression(old)
}
