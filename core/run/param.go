package run

import (
	"context"
	"fmt"

	"github.com/routegate/routegate/providers/ai"
)

// TurnContext is the snapshot of run state a dynamic parameter resolver sees.
// It is rebuilt before every turn, so resolvers always observe current
// values.
type TurnContext struct {
	// Turn is the 0-based index of the turn about to be issued.
	Turn int
	// Usage is the cumulative token usage of all completed steps.
	Usage ai.Usage
	// LastStepErrored reports whether any tool execution failed in the
	// previous step. False on the first turn.
	LastStepErrored bool
}

// Param is a request field that is either a fixed value or a resolver
// re-evaluated against the [TurnContext] before every turn. The zero Param
// resolves to the zero value of T.
//
// Resolvers must be self-contained: they run in unspecified order and must
// not depend on another field's resolved value. A policy spanning several
// fields belongs inside one resolver.
type Param[T any] struct {
	value    T
	resolver func(ctx context.Context, turn TurnContext) (T, error)
}

// Value returns a Param fixed to v for every turn.
func Value[T any](v T) Param[T] {
	return Param[T]{value: v}
}

// Dynamic returns a Param resolved by fn before every turn. Use
// [DynamicFunc] when the resolver needs a context or can fail.
func Dynamic[T any](fn func(turn TurnContext) T) Param[T] {
	return Param[T]{resolver: func(_ context.Context, turn TurnContext) (T, error) {
		return fn(turn), nil
	}}
}

// DynamicFunc returns a Param resolved by fn before every turn. A resolver
// error aborts the run: without resolved parameters no request can be built.
func DynamicFunc[T any](fn func(ctx context.Context, turn TurnContext) (T, error)) Param[T] {
	return Param[T]{resolver: fn}
}

// Resolve produces the concrete value for the current turn. Results are
// never cached: a dynamic Param's resolver runs once per turn, every turn.
func (p Param[T]) Resolve(ctx context.Context, turn TurnContext) (T, error) {
	if p.resolver == nil {
		return p.value, nil
	}
	return p.resolver(ctx, turn)
}

// Request is the dynamic request shape a run starts from. Input seeds the
// conversation; the remaining fields are Params resolved fresh before each
// turn and combined with the accumulated conversation history into the
// turn's ai.ChatRequest.
type Request struct {
	// Input is the initial user message, appended to the conversation once
	// at the start of the run. May be empty when the memory provider has
	// been pre-populated.
	Input string

	Model            Param[string]
	SystemPrompt     Param[string]
	GenerationConfig Param[*ai.GenerationConfig]
	ResponseFormat   Param[*ai.ResponseFormat]
}

// resolve materializes every dynamic field for the given turn. Any resolver
// error is wrapped with the field name and propagated; the caller treats it
// as the run's terminal error.
func (r Request) resolve(ctx context.Context, turn TurnContext) (ai.ChatRequest, error) {
	model, err := r.Model.Resolve(ctx, turn)
	if err != nil {
		return ai.ChatRequest{}, fmt.Errorf("resolving model: %w", err)
	}

	systemPrompt, err := r.SystemPrompt.Resolve(ctx, turn)
	if err != nil {
		return ai.ChatRequest{}, fmt.Errorf("resolving system prompt: %w", err)
	}

	generationConfig, err := r.GenerationConfig.Resolve(ctx, turn)
	if err != nil {
		return ai.ChatRequest{}, fmt.Errorf("resolving generation config: %w", err)
	}

	responseFormat, err := r.ResponseFormat.Resolve(ctx, turn)
	if err != nil {
		return ai.ChatRequest{}, fmt.Errorf("resolving response format: %w", err)
	}

	return ai.ChatRequest{
		Model:            model,
		SystemPrompt:     systemPrompt,
		GenerationConfig: generationConfig,
		ResponseFormat:   responseFormat,
	}, nil
}
