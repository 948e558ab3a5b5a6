package ai

import (
	"encoding/json"

	"github.com/routegate/routegate/internal/jsonschema"
)

/*
	##### REQUEST SIDE #####
*/

// ChatRequest represents a single request to the routing API. The Model field
// names the upstream model the router should dispatch to (e.g.
// "openai/gpt-4o-mini"); an empty Model lets the router pick its default.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Routed model identifier ("vendor/name")
	Messages         []Message         `json:"messages"`                    // Conversation so far, excluding the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt, prepended by the provider
	Tools            []ToolDescription `json:"tools,omitempty"`             // Tool schemas advertised to the model
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional structured-output constraint
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional sampling parameters
}

// ToolDescription is the schema-level description of a tool as advertised to
// the model: a unique name, a human-readable description, and a JSON schema
// for the expected arguments. The orchestration loop only ever matches on
// Name; the schema is consumed by the remote model.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Message represents a single message in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Tool calling fields
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links back to the originating call
	Name       string     `json:"name,omitempty"`         // For role=tool, name of the tool that produced this message

	// Extended fields
	Refusal   string `json:"refusal,omitempty"`   // Set when the model declines to answer
	Reasoning string `json:"reasoning,omitempty"` // Reasoning/thinking content, when the routed model exposes it
}

// GenerationConfig carries the optional sampling parameters forwarded to the
// routed model. Zero values are omitted from the wire request.
type GenerationConfig struct {
	MaxTokens        int     `json:"max_tokens,omitempty"`
	Temperature      float32 `json:"temperature,omitempty"`       // [0..2], higher is more random
	TopP             float32 `json:"top_p,omitempty"`             // Nucleus sampling [0..1]
	FrequencyPenalty float32 `json:"frequency_penalty,omitempty"` // [-2..2]
	PresencePenalty  float32 `json:"presence_penalty,omitempty"`  // [-2..2]
}

// ResponseFormat constrains the shape of the model output.
type ResponseFormat struct {
	OutputSchema *jsonschema.Schema `json:"output_schema,omitempty"` // Schema for structured responses
	Strict       bool               `json:"strict,omitempty"`        // Enforce the schema strictly when the router supports it
	Type         string             `json:"type,omitempty"`          // "text" | "json_object" | "json_schema"
}

/*
	##### RESPONSE SIDE #####
*/

// Usage carries the token counters reported by the router for one response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Extended token metrics
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
	CachedTokens    int `json:"cached_tokens,omitempty"`
}

// Add accumulates the counters from other into u. Used by the orchestration
// loop to maintain cumulative usage across turns.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.ReasoningTokens += other.ReasoningTokens
	u.CachedTokens += other.CachedTokens
}

// ChatResponse represents one completed response from the routing API.
type ChatResponse struct {
	Id           string     `json:"id"`
	Model        string     `json:"model"` // Model the router actually dispatched to
	Object       string     `json:"object"`
	Created      int64      `json:"created"`
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *Usage     `json:"usage,omitempty"`

	// Extended fields
	Refusal   string `json:"refusal,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// ToolCall represents a function/tool invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type"` // "function"
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ToolResult is the standardized outcome of one tool execution, serialized
// back to the model as a tool message. Keeping the shape uniform (success
// flag plus error code) makes partial tool failures legible to the model.
type ToolResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`   // Machine-readable code when Success is false
	Message string `json:"message,omitempty"` // Human-readable detail
	Data    any    `json:"data,omitempty"`    // Result payload when Success is true
}

// NewToolResultSuccess creates a successful tool result carrying data.
func NewToolResultSuccess(data any) ToolResult {
	return ToolResult{Success: true, Data: data}
}

// NewToolResultError creates a failed tool result. errorType is a
// machine-readable code such as "tool_not_found" or "tool_execution_failed".
func NewToolResultError(errorType, message string) ToolResult {
	return ToolResult{Success: false, Error: errorType, Message: message}
}

// ToJSON serializes the result for inclusion in a RoleTool message.
func (tr ToolResult) ToJSON() (string, error) {
	bytes, err := json.Marshal(tr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// MessageRole identifies the author of a message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)
