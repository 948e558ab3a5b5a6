package openrouter

import (
	"context"
	"fmt"

	"github.com/routegate/routegate/internal/jsonschema"
	"github.com/routegate/routegate/internal/utils"
	"github.com/routegate/routegate/providers/ai"
)

// sendResponses dispatches request to the router's item-based /responses
// endpoint and maps the result back to the generic response shape.
func (p *Provider) sendResponses(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	httpResponse, resp, err := utils.DoPostSync[responsesResponse](
		ctx, p.client, p.baseURL+responsesEndpoint, p.apiKey,
		requestToResponses(request), p.hooks, p.extraHeaders()...)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from routing API: %s", httpResponse.Status)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("responses API error %s: %s", resp.Error.Code, resp.Error.Message)
	}

	return responsesToGeneric(resp), nil
}

/*
	RESPONSES API - INPUT
*/

// responsesRequest is the wire format of POST /responses. Conversation state
// travels as an ordered list of typed input items rather than role-tagged
// messages.
type responsesRequest struct {
	Model           string               `json:"model,omitempty"`
	Input           []responsesInputItem `json:"input,omitempty"`
	Instructions    string               `json:"instructions,omitempty"` // System prompt
	MaxOutputTokens *int                 `json:"max_output_tokens,omitempty"`
	Temperature     *float64             `json:"temperature,omitempty"`
	TopP            *float64             `json:"top_p,omitempty"`
	Tools           []responsesTool      `json:"tools,omitempty"`
	ToolChoice      any                  `json:"tool_choice,omitempty"`
	Text            *responsesTextConfig `json:"text,omitempty"`
}

// responsesInputItem is one item of the ordered input list. Type is
// "message" for plain turns, "function_call" for a prior assistant tool
// request, and "function_call_output" for a tool result fed back in.
type responsesInputItem struct {
	Type    string `json:"type"`
	Role    string `json:"role,omitempty"`    // message items
	Content string `json:"content,omitempty"` // message items

	// function_call / function_call_output items
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
}

// responsesTool uses a flattened function schema (no nested "function"
// object, unlike chat completions).
type responsesTool struct {
	Type        string             `json:"type"` // "function"
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

type responsesTextConfig struct {
	Format *responsesTextFormat `json:"format,omitempty"`
}

type responsesTextFormat struct {
	Type   string             `json:"type"` // "text", "json_object", "json_schema"
	Name   string             `json:"name,omitempty"`
	Schema *jsonschema.Schema `json:"schema,omitempty"`
	Strict bool               `json:"strict,omitempty"`
}

/*
	RESPONSES API - OUTPUT
*/

type responsesResponse struct {
	ID        string                `json:"id"`
	Object    string                `json:"object"` // "response"
	CreatedAt int64                 `json:"created_at,omitempty"`
	Model     string                `json:"model"`
	Status    string                `json:"status,omitempty"` // completed, incomplete, failed
	Output    []responsesOutputItem `json:"output"`
	Usage     *responsesUsage       `json:"usage,omitempty"`
	Error     *responsesError       `json:"error,omitempty"`
}

type responsesError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// responsesOutputItem is one item of the ordered output list, tagged by
// kind: "message" (content parts), "function_call" (tool request), or
// "reasoning" (summary text).
type responsesOutputItem struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Role      string                 `json:"role,omitempty"`
	Status    string                 `json:"status,omitempty"`
	CallID    string                 `json:"call_id,omitempty"`
	Name      string                 `json:"name,omitempty"`
	Arguments string                 `json:"arguments,omitempty"`
	Content   []responsesContentItem `json:"content,omitempty"`
	Summary   []responsesSummaryItem `json:"summary,omitempty"`
}

type responsesContentItem struct {
	Type string `json:"type"` // "output_text", "refusal"
	Text string `json:"text,omitempty"`
}

type responsesSummaryItem struct {
	Text string `json:"text"`
}

type responsesUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	TotalTokens         int `json:"total_tokens"`
	OutputTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens,omitempty"`
	} `json:"output_tokens_details,omitempty"`
}

/*
	CONVERSION FUNCTIONS
*/

// requestToResponses converts an ai.ChatRequest to the item-based format.
// Assistant tool calls become function_call items and tool messages become
// function_call_output items, which is how the endpoint expects prior tool
// rounds to be replayed.
func requestToResponses(request ai.ChatRequest) responsesRequest {
	req := responsesRequest{
		Model:        request.Model,
		Instructions: request.SystemPrompt,
	}

	for _, msg := range request.Messages {
		switch {
		case msg.Role == ai.RoleTool:
			req.Input = append(req.Input, responsesInputItem{
				Type:   "function_call_output",
				CallID: msg.ToolCallID,
				Output: msg.Content,
			})

		case len(msg.ToolCalls) > 0:
			if msg.Content != "" {
				req.Input = append(req.Input, responsesInputItem{
					Type:    "message",
					Role:    string(msg.Role),
					Content: msg.Content,
				})
			}
			for _, tc := range msg.ToolCalls {
				req.Input = append(req.Input, responsesInputItem{
					Type:      "function_call",
					CallID:    tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}

		default:
			req.Input = append(req.Input, responsesInputItem{
				Type:    "message",
				Role:    string(msg.Role),
				Content: msg.Content,
			})
		}
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature > 0 {
			temp := float64(cfg.Temperature)
			req.Temperature = &temp
		}
		if cfg.TopP > 0 {
			topP := float64(cfg.TopP)
			req.TopP = &topP
		}
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			req.MaxOutputTokens = &maxTokens
		}
	}

	for _, tl := range request.Tools {
		req.Tools = append(req.Tools, responsesTool{
			Type:        "function",
			Name:        tl.Name,
			Description: tl.Description,
			Parameters:  tl.Parameters,
		})
	}

	if rf := request.ResponseFormat; rf != nil && rf.OutputSchema != nil {
		req.Text = &responsesTextConfig{
			Format: &responsesTextFormat{
				Type:   "json_schema",
				Name:   "response",
				Schema: rf.OutputSchema,
				Strict: rf.Strict,
			},
		}
	}

	return req
}

// responsesToGeneric flattens the ordered output items into the generic
// response shape: message text concatenates, function_call items become
// tool calls, reasoning summaries concatenate.
func responsesToGeneric(resp *responsesResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{
		Id:      resp.ID,
		Model:   resp.Model,
		Object:  resp.Object,
		Created: resp.CreatedAt,
	}

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, content := range item.Content {
				switch content.Type {
				case "output_text":
					out.Content += content.Text
				case "refusal":
					out.Refusal += content.Text
				}
			}

		case "function_call":
			out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
				ID:   item.CallID,
				Type: "function",
				Function: ai.ToolCallFunction{
					Name:      item.Name,
					Arguments: item.Arguments,
				},
			})

		case "reasoning":
			for _, summary := range item.Summary {
				out.Reasoning += summary.Text
			}
		}
	}

	switch {
	case len(out.ToolCalls) > 0:
		out.FinishReason = "tool_calls"
	case resp.Status == "completed":
		out.FinishReason = "stop"
	case resp.Status != "":
		out.FinishReason = resp.Status
	}

	if resp.Usage != nil {
		usage := &ai.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		if resp.Usage.OutputTokensDetails != nil {
			usage.ReasoningTokens = resp.Usage.OutputTokensDetails.ReasoningTokens
		}
		out.Usage = usage
	}

	return out
}
