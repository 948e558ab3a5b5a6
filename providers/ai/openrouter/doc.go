// Package openrouter implements the [ai.Provider] and [ai.StreamProvider]
// interfaces against an OpenRouter-compatible LLM-routing API. It supports
// both router endpoints: the OpenAI-style /chat/completions endpoint (sync
// and SSE streaming) and the item-based /responses endpoint (sync only; its
// SSE schema differs and is not implemented).
//
// The provider also exposes the router's thin read-only resource services
// (Models, Credits, Keys) behind small per-resource interfaces.
package openrouter
