package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/routegate/routegate/providers/ai"
)

// maxSSELineSize is the maximum size of a single SSE line (1 MB). The default
// bufio.Scanner limit of 64 KiB is too small for large events such as
// tool-call arguments or long completions. Lines beyond this limit surface as
// a wrapped bufio.ErrTooLong through Next().
const maxSSELineSize = 1 * 1024 * 1024

// maxResponseBodySize caps response body reads at 10 MB via io.LimitReader so
// a rogue endpoint cannot force unbounded allocation.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// DoPostStream performs an HTTP POST and returns the response with its body
// left open for SSE consumption. The caller owns the body and must close it
// when done reading; on error paths the body is drained and closed here.
// After-response hooks fire with a nil body once headers arrive, since the
// payload is still streaming.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, hooks *ai.Hooks, headers ...HeaderOption) (*http.Response, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	requestInfo := &ai.RequestInfo{Method: http.MethodPost, URL: url, Body: jsonBody}
	hooks.FireBeforeRequest(ctx, requestInfo)

	requestStart := time.Now()
	response, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		hooks.FireError(ctx, requestInfo, err)
		return response, fmt.Errorf("error sending stream request: %w", err)
	}

	// Non-2xx: the body is an error document, not an event stream. Read it,
	// close it, and return the error.
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return response, fmt.Errorf("non-2xx status %d (failed to read body: %v)", response.StatusCode, readErr)
		}
		hooks.FireAfterResponse(ctx, requestInfo, &ai.ResponseInfo{
			StatusCode: response.StatusCode,
			Body:       errorBody,
			Duration:   requestDuration,
		})
		return response, fmt.Errorf("non-2xx status %d: %s", response.StatusCode, string(errorBody))
	}

	hooks.FireAfterResponse(ctx, requestInfo, &ai.ResponseInfo{
		StatusCode: response.StatusCode,
		Duration:   requestDuration,
	})

	return response, nil
}

// SSEScanner reads Server-Sent Events from an io.Reader. It joins multi-line
// data fields, skips comments and blank lines, and detects the [DONE]
// sentinel used by OpenAI-compatible routers.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates an SSEScanner over reader. Individual SSE lines up to
// maxSSELineSize are supported.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next SSE data payload. Consecutive "data:" lines within
// one event are joined with newlines. Returns io.EOF when the stream ends or
// the [DONE] sentinel is read.
func (sseScanner *SSEScanner) Next() (string, error) {
	var dataLines []string

	for sseScanner.scanner.Scan() {
		line := sseScanner.scanner.Text()

		// Blank line terminates an event; flush whatever data accumulated.
		if line == "" {
			if len(dataLines) > 0 {
				return strings.Join(dataLines, "\n"), nil
			}
			continue
		}

		// SSE comment
		if strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

			if data == "[DONE]" {
				return "", io.EOF
			}

			dataLines = append(dataLines, data)
			continue
		}

		// Other SSE fields (event:, id:, retry:) are ignored.
	}

	if err := sseScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}

	// Stream ended mid-event: return what we have.
	if len(dataLines) > 0 {
		return strings.Join(dataLines, "\n"), nil
	}

	return "", io.EOF
}
