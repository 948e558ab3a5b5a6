package calculator

import (
	"context"
	"strings"
	"testing"
)

func TestCalc(t *testing.T) {
	cases := []struct {
		op   string
		a, b float64
		want float64
	}{
		{"add", 2, 3, 5},
		{"+", 2, 3, 5},
		{"sub", 10, 4, 6},
		{"-", 10, 4, 6},
		{"mul", 6, 7, 42},
		{"*", 6, 7, 42},
		{"div", 10, 4, 2.5},
		{"/", 10, 4, 2.5},
	}

	for _, tc := range cases {
		output, err := Calc(context.Background(), Input{A: tc.a, B: tc.b, Op: tc.op})
		if err != nil {
			t.Errorf("Calc(%v %s %v) failed: %v", tc.a, tc.op, tc.b, err)
			continue
		}
		if output.Result != tc.want {
			t.Errorf("Calc(%v %s %v) = %v, want %v", tc.a, tc.op, tc.b, output.Result, tc.want)
		}
	}
}

func TestCalc_DivisionByZero(t *testing.T) {
	if _, err := Calc(context.Background(), Input{A: 1, B: 0, Op: "div"}); err == nil {
		t.Error("expected error for division by zero")
	}
}

func TestCalc_UnknownOperation(t *testing.T) {
	_, err := Calc(context.Background(), Input{A: 1, B: 2, Op: "pow"})
	if err == nil || !strings.Contains(err.Error(), "pow") {
		t.Errorf("err = %v, want unsupported operation", err)
	}
}

func TestNew_CallableThroughGenericInterface(t *testing.T) {
	calc := New()

	if calc.ToolInfo().Name != "Calculator" {
		t.Errorf("name = %q", calc.ToolInfo().Name)
	}

	output, err := calc.Call(context.Background(), `{"A": 8, "B": 2, "Op": "div"}`)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if output != `{"result":4}` {
		t.Errorf("output = %q", output)
	}
}
