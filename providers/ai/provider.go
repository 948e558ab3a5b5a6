package ai

import (
	"context"
	"net/http"
)

// StreamProvider is an optional interface a provider can implement to support
// streaming (SSE-based) responses. Callers detect streaming support via type
// assertion: provider.(StreamProvider). Without it, callers fall back to the
// synchronous SendMessage method wrapped in a single-event stream.
type StreamProvider interface {
	Provider
	// StreamMessage sends a chat request and returns a ChatStream yielding
	// incremental deltas as they arrive. Pre-stream errors (auth, bad
	// request, network) are returned as a normal error; mid-stream errors
	// are yielded through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}

// Provider is the interface every model-endpoint implementation must satisfy.
// It covers dispatching a request, interpreting the terminal state of a
// response, and the fluent configuration used at construction time.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// Returns an error when the call fails, the context is cancelled, or
	// the response cannot be decoded. No retry is performed here; retry
	// policy belongs to the caller's HTTP client or wrapper.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// IsStopMessage reports whether the response is a terminal completion,
	// i.e. the model has nothing more to say and requested no tool calls.
	IsStopMessage(message *ChatResponse) bool

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}
