// Package calculator provides a small arithmetic tool, mostly useful for
// exercising the orchestration loop in examples and tests without any
// external dependency.
package calculator

import (
	"context"
	"fmt"

	"github.com/routegate/routegate/providers/tool"
)

// New returns a [tool.Tool] configured for basic arithmetic. The computation
// runs in-process; no network calls are made.
func New() *tool.Tool[Input, Output] {
	return tool.NewTool[Input, Output](
		"Calculator",
		Calc,
		tool.WithDescription("Performs basic arithmetic: addition, subtraction, multiplication and division of two numbers."),
	)
}

// Calc applies req.Op to the operands req.A and req.B. Supported operations
// are "add"/"+", "sub"/"-", "mul"/"*" and "div"/"/". Division by zero is an
// explicit error rather than IEEE infinity, since the result is fed back to
// a language model as text.
func Calc(_ context.Context, req Input) (Output, error) {
	switch req.Op {
	case "add", "+":
		return Output{Result: req.A + req.B}, nil
	case "sub", "-":
		return Output{Result: req.A - req.B}, nil
	case "mul", "*":
		return Output{Result: req.A * req.B}, nil
	case "div", "/":
		if req.B == 0 {
			return Output{}, fmt.Errorf("division by zero")
		}
		return Output{Result: req.A / req.B}, nil
	default:
		return Output{}, fmt.Errorf("unsupported operation %q", req.Op)
	}
}

// Input holds the two operands and the operation applied by [Calc].
type Input struct {
	A  float64 `json:"A"  jsonschema:"description=First operand,required"`
	B  float64 `json:"B"  jsonschema:"description=Second operand,required"`
	Op string  `json:"Op" jsonschema:"description=Operation type,enum=add,enum=sub,enum=mul,enum=div,required"`
}

// Output carries the numeric result produced by [Calc].
type Output struct {
	Result float64 `json:"result" jsonschema:"description=The result of the calculation"`
}
