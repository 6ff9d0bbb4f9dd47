package rankexpr_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rankexpr/rankexpr/ast"
	"github.com/rankexpr/rankexpr/parser"
	"github.com/rankexpr/rankexpr/rankexpr"
)

func TestParseGolden(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		params []string
	}{
		{name: "Arithmetic", expr: "a + b * c - d / e", params: []string{"a", "b", "c", "d", "e"}},
		{name: "Comparison", expr: "score >= threshold && freshness > 0", params: []string{"score", "threshold", "freshness"}},
		{name: "MathCalls", expr: "sigmoid(pow(x, 2) + sqrt(y))", params: []string{"x", "y"}},
		{name: "IfWithPTrue", expr: "if(clicked, 1.0, 0.0, 0.9)", params: []string{"clicked"}},
		{name: "LetBinding", expr: "let(norm, a / b, norm * norm)", params: []string{"a", "b"}},
		{name: "TensorSumWithDim", expr: "sum(weights, term)", params: []string{"weights"}},
		{name: "TensorMap", expr: "map(weights, f(w)(max(w, 0)))", params: []string{"weights"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fn := rankexpr.Parse(test.expr)
			if fn.HasError() {
				t.Fatalf("Parse(%q): %s", test.expr, fn.ErrorMessage())
			}
			if !cmp.Equal(fn.Params, test.params, cmpopts.EquateEmpty()) {
				t.Errorf("Params = %v, want %v", fn.Params, test.params)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantSub string
	}{
		{name: "UnknownFunction", expr: "frobnicate(a)", wantSub: "unknown function: 'frobnicate'"},
		{name: "TrailingOperator", expr: "a +", wantSub: "missing value"},
		{name: "UnterminatedString", expr: `"abc`, wantSub: "unterminated string"},
		{name: "BadEscape", expr: `"a\qb"`, wantSub: "bad quote"},
		{name: "MapWrongArity", expr: "map(a, f(x,y)(x+y))", wantSub: "map requires a lambda with 1 parameter"},
		{name: "JoinWrongArity", expr: "join(a, b, f(x)(x))", wantSub: "join requires a lambda with 2 parameter, was 1"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fn := rankexpr.Parse(test.expr)
			if !fn.HasError() {
				t.Fatalf("Parse(%q) succeeded, want an error containing %q; got %s", test.expr, test.wantSub, ast.Sprint(fn.Root))
			}
			if got := fn.ErrorMessage(); !containsSub(got, test.wantSub) {
				t.Errorf("ErrorMessage() = %q, want to contain %q", got, test.wantSub)
			}
		})
	}
}

func TestParseParamsRejectsUnknownIdentifier(t *testing.T) {
	fn, err := rankexpr.ParseParams([]string{"a", "b"}, "a + b + c")
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if !fn.HasError() {
		t.Fatal("expected an error for the unknown identifier 'c'")
	}
}

func TestParseParamsDuplicateNameError(t *testing.T) {
	_, err := rankexpr.ParseParams([]string{"a", "a"}, "a")
	if err == nil {
		t.Fatal("expected an error constructing ParseParams with a duplicate name")
	}
}

func TestDottedExtractorResolvesQualifiedSymbol(t *testing.T) {
	// The extractor runs on every non-let symbol before parameter
	// resolution, so "attribute" immediately followed by ".weight.boost"
	// is extended to the single qualified name "attribute.weight.boost"
	// rather than resolving "attribute" alone - matching how the bare
	// identifier case below (without an extractor) sees a plain "score".
	fn := rankexpr.Parse(
		"attribute.weight.boost * 2",
		parser.WithSymbolExtractor(rankexpr.DottedExtractor{}),
	)
	if fn.HasError() {
		t.Fatalf("unexpected error: %s", fn.ErrorMessage())
	}
	if want := []string{"attribute.weight.boost"}; !cmp.Equal(fn.Params, want, cmpopts.EquateEmpty()) {
		t.Errorf("Params = %v, want %v", fn.Params, want)
	}
}

func TestDottedExtractorAllowsDollarContinuation(t *testing.T) {
	fn := rankexpr.Parse(
		"attribute.weight$1 * 2",
		parser.WithSymbolExtractor(rankexpr.DottedExtractor{}),
	)
	if fn.HasError() {
		t.Fatalf("unexpected error: %s", fn.ErrorMessage())
	}
	if want := []string{"attribute.weight$1"}; !cmp.Equal(fn.Params, want, cmpopts.EquateEmpty()) {
		t.Errorf("Params = %v, want %v", fn.Params, want)
	}
}

func TestWithoutExtractorSymbolStaysBare(t *testing.T) {
	fn := rankexpr.Parse("score * 2")
	if fn.HasError() {
		t.Fatalf("unexpected error: %s", fn.ErrorMessage())
	}
	if want := []string{"score"}; !cmp.Equal(fn.Params, want, cmpopts.EquateEmpty()) {
		t.Errorf("Params = %v, want %v", fn.Params, want)
	}
}

func TestUnwrap(t *testing.T) {
	wrapper, body, err := rankexpr.Unwrap("rank(a + b)")
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if wrapper != "rank" || body != "a + b" {
		t.Errorf("Unwrap = (%q, %q), want (\"rank\", \"a + b\")", wrapper, body)
	}
}

func containsSub(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
