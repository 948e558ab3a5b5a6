package openrouter

import (
	"context"

	"github.com/routegate/routegate/internal/utils"
)

/*
	RESOURCE SERVICES

	Thin read-only facades over the router's metadata endpoints. One small
	interface per resource, all backed by the same provider transport, so
	callers can swap fakes in tests without touching the chat path.
*/

// ModelsService lists the models the router can dispatch to.
type ModelsService interface {
	List(ctx context.Context) ([]Model, error)
}

// CreditsService reports the account's credit balance.
type CreditsService interface {
	Get(ctx context.Context) (*Credits, error)
}

// KeysService describes the API key used for authentication.
type KeysService interface {
	Current(ctx context.Context) (*Key, error)
}

// Model describes one routable model.
type Model struct {
	ID            string        `json:"id"` // "vendor/name"
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	ContextLength int           `json:"context_length,omitempty"`
	Pricing       *ModelPricing `json:"pricing,omitempty"`
}

// ModelPricing carries per-token prices as decimal strings, the way the
// router reports them.
type ModelPricing struct {
	Prompt     string `json:"prompt,omitempty"`
	Completion string `json:"completion,omitempty"`
}

// Credits is the account credit balance.
type Credits struct {
	TotalCredits float64 `json:"total_credits"`
	TotalUsage   float64 `json:"total_usage"`
}

// Key describes the current API key.
type Key struct {
	Label      string   `json:"label,omitempty"`
	Usage      float64  `json:"usage"`
	Limit      *float64 `json:"limit,omitempty"` // nil means unlimited
	IsFreeTier bool     `json:"is_free_tier"`
}

// Models returns the models service for this provider.
func (p *Provider) Models() ModelsService { return &modelsService{p} }

// Credits returns the credits service for this provider.
func (p *Provider) Credits() CreditsService { return &creditsService{p} }

// Keys returns the keys service for this provider.
func (p *Provider) Keys() KeysService { return &keysService{p} }

// dataEnvelope is the {"data": ...} wrapper the router puts around metadata
// responses.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type modelsService struct{ provider *Provider }

func (s *modelsService) List(ctx context.Context) ([]Model, error) {
	_, resp, err := utils.DoGetSync[dataEnvelope[[]Model]](
		ctx, s.provider.client, s.provider.baseURL+"/models",
		s.provider.apiKey, s.provider.hooks, s.provider.extraHeaders()...)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type creditsService struct{ provider *Provider }

func (s *creditsService) Get(ctx context.Context) (*Credits, error) {
	_, resp, err := utils.DoGetSync[dataEnvelope[Credits]](
		ctx, s.provider.client, s.provider.baseURL+"/credits",
		s.provider.apiKey, s.provider.hooks, s.provider.extraHeaders()...)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

type keysService struct{ provider *Provider }

func (s *keysService) Current(ctx context.Context) (*Key, error) {
	_, resp, err := utils.DoGetSync[dataEnvelope[Key]](
		ctx, s.provider.client, s.provider.baseURL+"/key",
		s.provider.apiKey, s.provider.hooks, s.provider.extraHeaders()...)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
