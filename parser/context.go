package parser

import (
	"fmt"
	"strings"

	"github.com/rankexpr/rankexpr/ast"
)

// inputMark captures a cursor position so a caller can rewind to it later,
// most notably to let a SymbolExtractor re-read the identifier it was
// offered and to let restoreInputMark decide whether doing so should clear
// a latched failure.
type inputMark struct {
	pos  int
	curr byte
}

// parseContext is the mutable state threaded through one parse: the byte
// cursor over source, the single-shot failure latch, the expression and
// operator stacks used by precedence climbing, and the stack of resolve
// contexts used for symbol lookup. It has no exported API; parser.Parse and
// friends are the only doors in.
type parseContext struct {
	source string
	pos    int
	end    int
	curr   byte

	scratch strings.Builder
	failure string

	exprStack []ast.Node
	opStack   []ast.Operator
	opMark    int

	resolveStack []*resolveContext

	operators OperatorRepo
	calls     CallRepo
}

func newParseContext(source string, operators OperatorRepo, calls CallRepo) *parseContext {
	ctx := &parseContext{
		source:    source,
		pos:       0,
		end:       len(source),
		operators: operators,
		calls:     calls,
	}
	if ctx.pos < ctx.end {
		ctx.curr = source[ctx.pos]
	}
	return ctx
}

// get returns the byte under the cursor, or 0 at end of source.
func (c *parseContext) get() byte { return c.curr }

// eos reports whether the cursor has reached end of source (or the failure
// latch has forced it there).
func (c *parseContext) eos() bool { return c.curr == 0 }

// next advances the cursor by one byte.
func (c *parseContext) next() {
	if c.curr != 0 && c.pos < c.end {
		c.pos++
		if c.pos < c.end {
			c.curr = c.source[c.pos]
		} else {
			c.curr = 0
		}
	} else {
		c.curr = 0
	}
}

// eat requires the current byte to equal want, consuming it; otherwise it
// fails with a diagnostic naming both the expected and actual byte.
func (c *parseContext) eat(want byte) {
	got := c.get()
	if got != want {
		c.fail(fmt.Sprintf("expected '%c', but got '%c'", want, got))
		return
	}
	c.next()
}

// skipSpaces advances past any run of ASCII whitespace.
func (c *parseContext) skipSpaces() {
	for !c.eos() && isSpace(c.get()) {
		c.next()
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// scratchBuf clears and returns the context's reusable scratch buffer, for
// callers that need temporary storage without allocating.
func (c *parseContext) scratchBuf() *strings.Builder {
	c.scratch.Reset()
	return &c.scratch
}

// peek reads up to n bytes starting at the cursor into a freshly sized
// string, without advancing. If the cursor is already at end of source the
// result is n NUL bytes, regardless of how many source bytes remain -
// mirroring the original's "peek is only valid relative to curr" contract.
func (c *parseContext) peek(n int) string {
	buf := make([]byte, n)
	if c.curr == 0 {
		return string(buf)
	}
	for i := 0; i < n; i++ {
		p := c.pos + i
		if p < c.end {
			buf[i] = c.source[p]
		}
	}
	return string(buf)
}

// skip advances the cursor by n bytes.
func (c *parseContext) skip(n int) {
	for i := 0; i < n; i++ {
		c.next()
	}
}

// fail latches the first failure message seen during a parse and forces
// the cursor to end of source, so that every subsequent grammar rule falls
// straight through to getResult without doing further work. Only
// restoreInputMark (resuming from EOS back to a non-EOS mark) clears it.
func (c *parseContext) fail(msg string) {
	if c.failure == "" {
		c.failure = msg
	}
	c.curr = 0
}

// failed reports whether fail has been called.
func (c *parseContext) failed() bool { return c.failure != "" }

// getInputMark snapshots the cursor for a later restoreInputMark call.
func (c *parseContext) getInputMark() inputMark {
	return inputMark{pos: c.pos, curr: c.curr}
}

// restoreInputMark rewinds the cursor to mark. If doing so moves the
// cursor from EOS back to a live position, any latched failure is cleared
// first - this is the only path that clears the latch. extractSymbol uses
// it to hand the whole identifier back to a SymbolExtractor.
func (c *parseContext) restoreInputMark(mark inputMark) {
	if c.curr == 0 && mark.curr != 0 {
		c.failure = ""
	}
	c.pos = mark.pos
	c.curr = mark.curr
}

// pushExpression pushes a completed node onto the expression stack.
func (c *parseContext) pushExpression(n ast.Node) {
	c.exprStack = append(c.exprStack, n)
}

// popExpression pops and returns the top of the expression stack. An
// empty stack is a bug in the grammar above this call, not a user-facing
// parse error; it still goes through the ordinary failure latch rather
// than panicking, and returns a dummy node so the caller can keep going
// down its error path.
func (c *parseContext) popExpression() ast.Node {
	n := len(c.exprStack)
	if n == 0 {
		c.fail("expression stack underflow")
		return &ast.Number{}
	}
	top := c.exprStack[n-1]
	c.exprStack = c.exprStack[:n-1]
	return top
}

func (c *parseContext) numExpressions() int { return len(c.exprStack) }

func (c *parseContext) numOperators() int { return len(c.opStack) - c.opMark }

// applyOperator pops the top operator and its two operands (rhs above lhs
// on the expression stack), binds them, and pushes the operator back as a
// completed expression node.
func (c *parseContext) applyOperator() {
	n := len(c.opStack)
	op := c.opStack[n-1]
	c.opStack = c.opStack[:n-1]
	rhs := c.popExpression()
	lhs := c.popExpression()
	op.Bind(lhs, rhs)
	c.pushExpression(op)
}

// pushOperator first reduces any operator already on the stack (above the
// current mark) that must bind before op does, then pushes op.
func (c *parseContext) pushOperator(op ast.Operator) {
	for len(c.opStack) > c.opMark && c.opStack[len(c.opStack)-1].DoBefore(op) {
		c.applyOperator()
	}
	c.opStack = append(c.opStack, op)
}

// enterExpression lowers the operator-stack mark to the current depth,
// returning the previous mark so the caller can restore it once the
// sub-expression (call argument, parenthesized group, ...) is complete.
// This is what lets a nested parseExpression call reduce only the
// operators it pushed, leaving outer operators untouched on the stack.
func (c *parseContext) enterExpression() int {
	old := c.opMark
	c.opMark = len(c.opStack)
	return old
}

func (c *parseContext) leaveExpression(old int) {
	c.opMark = old
}

// resolver returns the innermost active resolve context.
func (c *parseContext) resolver() *resolveContext {
	return c.resolveStack[len(c.resolveStack)-1]
}

func (c *parseContext) pushResolveContext(rc *resolveContext) {
	c.resolveStack = append(c.resolveStack, rc)
}

func (c *parseContext) popResolveContext() {
	c.resolveStack = c.resolveStack[:len(c.resolveStack)-1]
}

// extractSymbol attempts to extend name using the active SymbolExtractor,
// restoring the cursor to beforeName first so the extractor sees the whole
// identifier, not just the text after it. It runs before any parameter
// lookup of name. If there is no extractor, name is returned unchanged. If the extractor declines or the
// position it returns is not strictly forward progress within source, name
// is cleared.
func (c *parseContext) extractSymbol(name string, beforeName inputMark) string {
	extractor := c.resolver().symbolExtractor
	if extractor == nil {
		return name
	}
	c.restoreInputMark(beforeName)
	if c.eos() {
		return ""
	}
	newPos, symbol := extractor.ExtractSymbol(c.source, c.pos, c.end)
	if newPos > c.pos && newPos <= c.end {
		c.pos = newPos
		if c.pos < c.end {
			c.curr = c.source[c.pos]
		} else {
			c.curr = 0
		}
		return symbol
	}
	return ""
}

// getResult finalizes the parse: a complete parse must have exhausted the
// source, leave exactly one expression on the stack, and no outstanding
// operators. Any latched failure wins over that check and is rendered as a
// bracketed "[consumed]...[reason]...[remaining]" diagnostic.
func (c *parseContext) getResult() ast.Node {
	if !c.eos() || c.numExpressions() != 1 || c.numOperators() != 0 {
		c.fail("incomplete parse")
	}
	if c.failure != "" {
		before := c.source[:c.pos]
		after := c.source[c.pos:]
		return &ast.ErrorNode{Message: fmt.Sprintf("[%s]...[%s]...[%s]", before, c.failure, after)}
	}
	return c.popExpression()
}
