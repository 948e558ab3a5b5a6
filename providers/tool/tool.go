package tool

import (
	"context"
	"encoding/json"

	"github.com/routegate/routegate/core/parse"
	"github.com/routegate/routegate/internal/jsonschema"
	"github.com/routegate/routegate/providers/ai"
)

// Tool binds a name and description to a strongly-typed function. JSON
// schemas for the input type I and output type O are derived via reflection
// at construction time. Use [NewTool] to build one; store it behind
// [GenericTool] for name-keyed dispatch.
type Tool[I, O any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Output      *jsonschema.Schema
	Function    func(ctx context.Context, input I) (O, error)
}

// GenericTool is the type-erased interface every tool satisfies. It is what
// the catalog stores and what the orchestration loop calls; the generic
// parameters of [Tool] never leak past this boundary.
type GenericTool interface {
	// ToolInfo returns the metadata (name, description, parameter schema)
	// advertised to the model.
	ToolInfo() ai.ToolDescription

	// Call invokes the tool with a JSON-encoded input string and returns a
	// JSON-encoded output string. Returns an error if input parsing,
	// execution, or output marshaling fails.
	Call(ctx context.Context, inputJson string) (string, error)
}

type toolOptions struct {
	Description string
}

// WithDescription sets the human-readable description surfaced to the model
// so it can decide when to invoke the tool.
func WithDescription(description string) func(*toolOptions) {
	return func(o *toolOptions) {
		o.Description = description
	}
}

// NewTool constructs a [Tool] from a name and a handler function.
//
//	search := tool.NewTool("search", searchFunc,
//	    tool.WithDescription("Searches the web for a query."))
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...func(*toolOptions)) *Tool[I, O] {
	opts := &toolOptions{}
	for _, option := range options {
		option(opts)
	}

	return &Tool[I, O]{
		Name:        name,
		Description: opts.Description,
		Parameters:  jsonschema.For[I](),
		Output:      jsonschema.For[O](),
		Function:    function,
	}
}

// ToolInfo returns the [ai.ToolDescription] advertised to the model.
func (t *Tool[I, O]) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call deserializes inputJson into I (tolerating the malformed JSON models
// produce, via core/parse), executes the function, and returns the output
// serialized as JSON.
func (t *Tool[I, O]) Call(ctx context.Context, inputJson string) (string, error) {
	parsedInput, err := parse.ParseAs[I](inputJson)
	if err != nil {
		return "", err
	}

	output, err := t.Function(ctx, parsedInput)
	if err != nil {
		return "", err
	}

	outputBytes, err := json.Marshal(output)
	if err != nil {
		return "", err
	}

	return string(outputBytes), nil
}
