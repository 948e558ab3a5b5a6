package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/routegate/routegate/internal/utils"
	"github.com/routegate/routegate/providers/ai"
)

const (
	defaultBaseURL          = "https://openrouter.ai/api/v1"
	chatCompletionsEndpoint = "/chat/completions"
	responsesEndpoint       = "/responses"
)

// Endpoint selects which router endpoint SendMessage talks to.
type Endpoint string

const (
	// EndpointChatCompletions is the OpenAI-compatible endpoint (default).
	EndpointChatCompletions Endpoint = "chat_completions"
	// EndpointResponses is the router's item-based endpoint.
	EndpointResponses Endpoint = "responses"
)

// Provider implements ai.Provider and ai.StreamProvider for an
// OpenRouter-compatible routing API.
type Provider struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	hooks    *ai.Hooks
	endpoint Endpoint

	// Attribution headers the router uses for app rankings.
	referer string
	title   string
}

// New creates a provider reading OPENROUTER_API_KEY and
// OPENROUTER_API_BASE_URL from the environment when set.
func New() *Provider {
	baseURL := os.Getenv("OPENROUTER_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:   os.Getenv("OPENROUTER_API_KEY"),
		baseURL:  baseURL,
		client:   &http.Client{},
		endpoint: EndpointChatCompletions,
	}
}

// WithAPIKey sets the API key for the provider.
func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for API requests.
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client. Retry and backoff policy, when
// wanted, belongs in this client's transport; the provider never retries.
func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithHooks attaches transport hooks fired around every HTTP call.
func (p *Provider) WithHooks(hooks *ai.Hooks) *Provider {
	p.hooks = hooks
	return p
}

// WithEndpoint selects the endpoint used by SendMessage. Streaming always
// uses chat completions regardless of this setting.
func (p *Provider) WithEndpoint(endpoint Endpoint) *Provider {
	p.endpoint = endpoint
	return p
}

// WithAppAttribution sets the HTTP-Referer and X-Title headers the router
// uses to attribute traffic to an application.
func (p *Provider) WithAppAttribution(referer, title string) *Provider {
	p.referer = referer
	p.title = title
	return p
}

// extraHeaders builds the attribution headers when configured.
func (p *Provider) extraHeaders() []utils.HeaderOption {
	var headers []utils.HeaderOption
	if p.referer != "" {
		headers = append(headers, utils.HeaderOption{Key: "HTTP-Referer", Value: p.referer})
	}
	if p.title != "" {
		headers = append(headers, utils.HeaderOption{Key: "X-Title", Value: p.title})
	}
	return headers
}

// SendMessage sends a chat request to the configured endpoint and returns
// the completed response.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	if p.endpoint == EndpointResponses {
		return p.sendResponses(ctx, request)
	}
	return p.sendChatCompletions(ctx, request)
}

func (p *Provider) sendChatCompletions(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	httpResponse, resp, err := utils.DoPostSync[chatCompletionResponse](
		ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey,
		requestToChatCompletion(request), p.hooks, p.extraHeaders()...)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from routing API: %s", httpResponse.Status)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return chatCompletionToGeneric(resp), nil
}

// IsStopMessage reports whether the response is a terminal completion.
func (p *Provider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	// Prefer the explicit finish reason reported by the router.
	switch message.FinishReason {
	case "stop", "length", "content_filter":
		return true
	}
	// No content and no tool calls: nothing left to do.
	if message.Content == "" && len(message.ToolCalls) == 0 {
		return true
	}
	return false
}
