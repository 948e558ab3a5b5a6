package ai

import (
	"context"
	"time"
)

// RequestInfo describes one outbound HTTP call as seen by transport hooks.
// The Body slice is shared with the transport; hooks must not mutate it.
type RequestInfo struct {
	Method string
	URL    string
	Body   []byte
}

// ResponseInfo describes the outcome of one HTTP call.
type ResponseInfo struct {
	StatusCode int
	Body       []byte // nil for streaming responses, whose body stays open
	Duration   time.Duration
}

// BeforeRequestHook runs just before a request is sent.
type BeforeRequestHook func(ctx context.Context, req *RequestInfo)

// AfterResponseHook runs after a response has been received, regardless of
// its status code. For streaming calls it runs once the headers are in.
type AfterResponseHook func(ctx context.Context, req *RequestInfo, res *ResponseInfo)

// ErrorHook runs when the transport fails before a response is available
// (connection errors, context cancellation, body read failures).
type ErrorHook func(ctx context.Context, req *RequestInfo, err error)

// Hooks is an ordered list of transport callbacks. Registration order is
// invocation order, and all invocations are synchronous on the calling
// goroutine. A nil *Hooks is valid and fires nothing.
type Hooks struct {
	beforeRequest []BeforeRequestHook
	afterResponse []AfterResponseHook
	onError       []ErrorHook
}

// NewHooks returns an empty hook list.
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnBeforeRequest appends a before-request callback.
func (h *Hooks) OnBeforeRequest(hook BeforeRequestHook) *Hooks {
	h.beforeRequest = append(h.beforeRequest, hook)
	return h
}

// OnAfterResponse appends an after-response callback.
func (h *Hooks) OnAfterResponse(hook AfterResponseHook) *Hooks {
	h.afterResponse = append(h.afterResponse, hook)
	return h
}

// OnError appends an error callback.
func (h *Hooks) OnError(hook ErrorHook) *Hooks {
	h.onError = append(h.onError, hook)
	return h
}

// FireBeforeRequest invokes the before-request callbacks in order.
func (h *Hooks) FireBeforeRequest(ctx context.Context, req *RequestInfo) {
	if h == nil {
		return
	}
	for _, hook := range h.beforeRequest {
		hook(ctx, req)
	}
}

// FireAfterResponse invokes the after-response callbacks in order.
func (h *Hooks) FireAfterResponse(ctx context.Context, req *RequestInfo, res *ResponseInfo) {
	if h == nil {
		return
	}
	for _, hook := range h.afterResponse {
		hook(ctx, req, res)
	}
}

// FireError invokes the error callbacks in order.
func (h *Hooks) FireError(ctx context.Context, req *RequestInfo, err error) {
	if h == nil {
		return
	}
	for _, hook := range h.onError {
		hook(ctx, req, err)
	}
}
