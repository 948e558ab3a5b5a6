package run

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/routegate/routegate/providers/ai"
)

func TestParam_ZeroValueResolvesToZero(t *testing.T) {
	var p Param[string]
	got, err := p.Resolve(context.Background(), TurnContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestParam_ValueIsStableAcrossTurns(t *testing.T) {
	p := Value("openai/gpt-4o")
	for turn := 0; turn < 3; turn++ {
		got, err := p.Resolve(context.Background(), TurnContext{Turn: turn})
		if err != nil {
			t.Fatalf("turn %d: %v", turn, err)
		}
		if got != "openai/gpt-4o" {
			t.Errorf("turn %d: got %q", turn, got)
		}
	}
}

func TestParam_DynamicSeesTurnContext(t *testing.T) {
	p := Dynamic(func(turn TurnContext) int {
		return turn.Turn * 100
	})
	got, err := p.Resolve(context.Background(), TurnContext{Turn: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 400 {
		t.Errorf("got %d, want 400", got)
	}
}

func TestParam_DynamicFuncPropagatesError(t *testing.T) {
	resolveErr := errors.New("unavailable")
	p := DynamicFunc(func(context.Context, TurnContext) (string, error) {
		return "", resolveErr
	})
	if _, err := p.Resolve(context.Background(), TurnContext{}); !errors.Is(err, resolveErr) {
		t.Errorf("err = %v, want %v", err, resolveErr)
	}
}

func TestRequest_ResolveWrapsFieldName(t *testing.T) {
	request := Request{
		GenerationConfig: DynamicFunc(func(context.Context, TurnContext) (*ai.GenerationConfig, error) {
			return nil, errors.New("bad config")
		}),
	}

	_, err := request.resolve(context.Background(), TurnContext{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "generation config") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestRequest_ResolveBuildsChatRequest(t *testing.T) {
	request := Request{
		Model: Value("m"),
		SystemPrompt: Dynamic(func(turn TurnContext) string {
			if turn.LastStepErrored {
				return "careful now"
			}
			return "normal"
		}),
		GenerationConfig: Value(&ai.GenerationConfig{Temperature: 0.5}),
	}

	chatRequest, err := request.resolve(context.Background(), TurnContext{LastStepErrored: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chatRequest.Model != "m" {
		t.Errorf("model = %q", chatRequest.Model)
	}
	if chatRequest.SystemPrompt != "careful now" {
		t.Errorf("system prompt = %q", chatRequest.SystemPrompt)
	}
	if chatRequest.GenerationConfig == nil || chatRequest.GenerationConfig.Temperature != 0.5 {
		t.Errorf("generation config = %+v", chatRequest.GenerationConfig)
	}
	if chatRequest.ResponseFormat != nil {
		t.Errorf("unset response format resolved to %+v", chatRequest.ResponseFormat)
	}
}
