package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/routegate/routegate/providers/ai"
)

func TestSendMessage_ResponsesEndpoint(t *testing.T) {
	var gotPath string
	var gotBody responsesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)

		io.WriteString(w, `{
			"id": "resp-1",
			"object": "response",
			"model": "openai/gpt-4o",
			"status": "completed",
			"output": [
				{"id": "rs-1", "type": "reasoning", "summary": [{"text": "considering"}]},
				{"id": "msg-1", "type": "message", "role": "assistant",
				 "content": [{"type": "output_text", "text": "The answer "}, {"type": "output_text", "text": "is 4."}]}
			],
			"usage": {"input_tokens": 8, "output_tokens": 4, "total_tokens": 12}
		}`)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL).WithEndpoint(EndpointResponses)

	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Model:        "openai/gpt-4o",
		SystemPrompt: "Be terse.",
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "2+2?"},
		},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if gotPath != "/responses" {
		t.Errorf("path = %q, want /responses", gotPath)
	}
	if gotBody.Instructions != "Be terse." {
		t.Errorf("instructions = %q", gotBody.Instructions)
	}
	if len(gotBody.Input) != 1 || gotBody.Input[0].Type != "message" || gotBody.Input[0].Role != "user" {
		t.Errorf("input items = %+v", gotBody.Input)
	}

	if response.Content != "The answer is 4." {
		t.Errorf("content = %q", response.Content)
	}
	if response.Reasoning != "considering" {
		t.Errorf("reasoning = %q", response.Reasoning)
	}
	if response.FinishReason != "stop" {
		t.Errorf("finish reason = %q, want stop for completed status", response.FinishReason)
	}
	if response.Usage == nil || response.Usage.PromptTokens != 8 || response.Usage.TotalTokens != 12 {
		t.Errorf("usage = %+v", response.Usage)
	}
}

func TestRequestToResponses_ToolRoundTripItems(t *testing.T) {
	request := ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "add 1 and 2"},
			{
				Role: ai.RoleAssistant,
				ToolCalls: []ai.ToolCall{{
					ID:   "call_9",
					Type: "function",
					Function: ai.ToolCallFunction{
						Name:      "Calculator",
						Arguments: `{"A":1,"B":2,"Op":"add"}`,
					},
				}},
			},
			{Role: ai.RoleTool, ToolCallID: "call_9", Name: "Calculator", Content: `{"result":3}`},
		},
		Tools: []ai.ToolDescription{{Name: "Calculator", Description: "math"}},
	}

	wire := requestToResponses(request)

	if len(wire.Input) != 3 {
		t.Fatalf("input items = %d, want 3", len(wire.Input))
	}
	if wire.Input[0].Type != "message" {
		t.Errorf("item 0 type = %q", wire.Input[0].Type)
	}
	if wire.Input[1].Type != "function_call" || wire.Input[1].CallID != "call_9" || wire.Input[1].Name != "Calculator" {
		t.Errorf("item 1 = %+v", wire.Input[1])
	}
	if wire.Input[2].Type != "function_call_output" || wire.Input[2].CallID != "call_9" || wire.Input[2].Output != `{"result":3}` {
		t.Errorf("item 2 = %+v", wire.Input[2])
	}

	// Responses tools are flattened, no nested function object.
	if len(wire.Tools) != 1 || wire.Tools[0].Name != "Calculator" || wire.Tools[0].Type != "function" {
		t.Errorf("tools = %+v", wire.Tools)
	}
}

func TestResponsesToGeneric_FunctionCallBecomesToolCall(t *testing.T) {
	resp := &responsesResponse{
		ID:     "resp-2",
		Model:  "m",
		Status: "completed",
		Output: []responsesOutputItem{
			{
				ID:        "fc-1",
				Type:      "function_call",
				CallID:    "call_5",
				Name:      "WebFetch",
				Arguments: `{"url":"example.com"}`,
			},
		},
	}

	out := responsesToGeneric(resp)

	if len(out.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d, want 1", len(out.ToolCalls))
	}
	if out.ToolCalls[0].ID != "call_5" || out.ToolCalls[0].Function.Name != "WebFetch" {
		t.Errorf("tool call = %+v", out.ToolCalls[0])
	}
	// Tool calls pending override the completed status.
	if out.FinishReason != "tool_calls" {
		t.Errorf("finish reason = %q, want tool_calls", out.FinishReason)
	}
}

func TestSendMessage_ResponsesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"id": "resp-3", "object": "response", "model": "m", "output": [],
			"error": {"code": "rate_limit_exceeded", "message": "slow down"}
		}`)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL).WithEndpoint(EndpointResponses)

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if err == nil || !strings.Contains(err.Error(), "rate_limit_exceeded") {
		t.Errorf("err = %v, want embedded error code", err)
	}
}

func TestStreamMessage_AlwaysUsesChatCompletions(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	// Even with the responses endpoint selected, streaming goes through
	// chat completions.
	provider := newTestProvider(server.URL).WithEndpoint(EndpointResponses)

	chatStream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}
	for _, iterErr := range chatStream.Iter() {
		if iterErr != nil {
			t.Fatalf("stream error: %v", iterErr)
		}
	}

	if gotPath != "/chat/completions" {
		t.Errorf("stream path = %q, want /chat/completions", gotPath)
	}
}
