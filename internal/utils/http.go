package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/routegate/routegate/providers/ai"
)

// HeaderOption is an extra header applied to an outbound request. Options are
// applied after the defaults, so they may override Authorization when a
// caller needs per-request credentials.
type HeaderOption struct {
	Key   string
	Value string
}

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes
// the JSON response into OutputStruct. Transport hooks fire around the call:
// before-request once the body is marshaled, after-response once the body has
// been read (any status), on-error for network and body-read failures.
//
// Error handling:
//   - context errors (timeout, cancellation) propagate immediately
//   - non-2xx statuses return an error carrying the status and body
//   - decode errors include a truncated response preview for debugging
//
// The response body is always closed; close failures are logged, never
// returned, so they cannot mask the primary error.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, hooks *ai.Hooks, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	requestInfo := &ai.RequestInfo{Method: http.MethodPost, URL: url, Body: jsonBody}
	hooks.FireBeforeRequest(ctx, requestInfo)

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		hooks.FireError(ctx, requestInfo, err)
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		hooks.FireError(ctx, requestInfo, err)
		return nil, nil, fmt.Errorf("error reading response body: %w", err)
	}

	hooks.FireAfterResponse(ctx, requestInfo, &ai.ResponseInfo{
		StatusCode: res.StatusCode,
		Body:       respBody,
		Duration:   requestDuration,
	})

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, fmt.Errorf("non-2xx status %d: %s", res.StatusCode, string(respBody))
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(respBody), 500))
	}

	return res, &resStruct, nil
}

// DoGetSync performs a synchronous HTTP GET and decodes the JSON response
// into OutputStruct. Used by the thin resource services (models, credits,
// keys), which are read-only endpoints. Hooks fire exactly as in DoPostSync.
func DoGetSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, hooks *ai.Hooks, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	requestInfo := &ai.RequestInfo{Method: http.MethodGet, URL: url}
	hooks.FireBeforeRequest(ctx, requestInfo)

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		hooks.FireError(ctx, requestInfo, err)
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		hooks.FireError(ctx, requestInfo, err)
		return nil, nil, fmt.Errorf("error reading response body: %w", err)
	}

	hooks.FireAfterResponse(ctx, requestInfo, &ai.ResponseInfo{
		StatusCode: res.StatusCode,
		Body:       respBody,
		Duration:   requestDuration,
	})

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, fmt.Errorf("non-2xx status %d: %s", res.StatusCode, string(respBody))
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(respBody), 500))
	}

	return res, &resStruct, nil
}

// CloseWithLog closes c and logs a warning on failure. Used for response
// bodies where a close error must not override the primary error path.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
