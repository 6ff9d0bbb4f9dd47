package ast

import "testing"

func TestBinaryOpDoBefore(t *testing.T) {
	tests := []struct {
		name       string
		top, other *BinaryOp
		want       bool
	}{
		{
			name:  "HigherPrecedenceOnTopReduces",
			top:   &BinaryOp{OpName: "*", Prec: 60},
			other: &BinaryOp{OpName: "+", Prec: 50},
			want:  true,
		},
		{
			name:  "LowerPrecedenceOnTopWaits",
			top:   &BinaryOp{OpName: "+", Prec: 50},
			other: &BinaryOp{OpName: "*", Prec: 60},
			want:  false,
		},
		{
			name:  "EqualPrecedenceLeftAssocReduces",
			top:   &BinaryOp{OpName: "-", Prec: 50},
			other: &BinaryOp{OpName: "+", Prec: 50},
			want:  true,
		},
		{
			name:  "EqualPrecedenceRightAssocWaits",
			top:   &BinaryOp{OpName: "^", Prec: 70, RightAssoc: true},
			other: &BinaryOp{OpName: "^", Prec: 70, RightAssoc: true},
			want:  false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.top.DoBefore(test.other); got != test.want {
				t.Errorf("DoBefore(...) = %v, want %v", got, test.want)
			}
		})
	}
}

func TestBasicCallBindArg(t *testing.T) {
	call := &BasicCall{FuncName: "atan2", FixedArity: 2}
	call.BindArg(1, &Number{Value: 2})
	call.BindArg(0, &Number{Value: 1})
	if len(call.Args) != 2 {
		t.Fatalf("len(Args) = %d, want 2", len(call.Args))
	}
	if call.Args[0].(*Number).Value != 1 || call.Args[1].(*Number).Value != 2 {
		t.Errorf("Args = %+v, want [1 2]", call.Args)
	}
}

func TestFunctionHasError(t *testing.T) {
	ok := &Function{Root: &Number{Value: 1}}
	if ok.HasError() {
		t.Error("HasError() = true for a successful Function")
	}
	if got := ok.ErrorMessage(); got != "" {
		t.Errorf("ErrorMessage() = %q, want empty", got)
	}

	bad := &Function{Root: &ErrorNode{Message: "[x]...[bad]...[y]"}}
	if !bad.HasError() {
		t.Error("HasError() = false for an Error-rooted Function")
	}
	if got, want := bad.ErrorMessage(), "[x]...[bad]...[y]"; got != want {
		t.Errorf("ErrorMessage() = %q, want %q", got, want)
	}
}

func TestSprint(t *testing.T) {
	tree := &BinaryOp{
		OpName: "+",
		Prec:   50,
		Lhs:    &Number{Value: 1},
		Rhs:    &Symbol{ID: 0},
	}
	got := Sprint(tree)
	want := "BinaryOp(+)\n  Number(1)\n  Symbol(0)\n"
	if got != want {
		t.Errorf("Sprint(...) = %q, want %q", got, want)
	}
}
