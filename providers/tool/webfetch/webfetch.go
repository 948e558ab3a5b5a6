// Package webfetch provides a tool that downloads a web page and converts
// its HTML to Markdown so the content can be fed back to a language model.
package webfetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/routegate/routegate/internal/utils"
	"github.com/routegate/routegate/providers/tool"
)

const (
	// DefaultTimeout is the overall request timeout when the input does not
	// override it.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the tool to remote servers.
	DefaultUserAgent = "routegate-webfetch/1.0"
	// MaxBodySize caps the downloaded body at 10MB.
	MaxBodySize = 10 * 1024 * 1024
	// maxRedirects bounds the redirect chain.
	maxRedirects = 10
)

// New returns a [tool.Tool] that fetches a web page and returns its content
// as Markdown. Partial URLs are normalized by prepending "https://", up to
// ten redirects are followed, and the body is capped at [MaxBodySize].
func New() *tool.Tool[Input, Output] {
	return tool.NewTool[Input, Output](
		"WebFetch",
		Fetch,
		tool.WithDescription("Fetches a web page and converts its HTML content to Markdown. Accepts partial URLs like 'example.com', follows redirects and returns the final URL with the converted content."),
	)
}

// Fetch retrieves the page at req.URL and converts it to Markdown. The
// final URL after redirects is reported in [Output.URL]. The body read runs
// on its own goroutine so cancellation is honored even during slow reads.
func Fetch(ctx context.Context, req Input) (Output, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return Output{}, fmt.Errorf("url cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	timeout := DefaultTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpRequest, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("building request: %w", err)
	}
	userAgent := DefaultUserAgent
	if req.UserAgent != "" {
		userAgent = req.UserAgent
	}
	httpRequest.Header.Set("User-Agent", userAgent)

	response, err := newClient(timeout).Do(httpRequest)
	if err != nil {
		if fetchCtx.Err() != nil {
			return Output{}, fmt.Errorf("request timed out or was canceled: %w", err)
		}
		return Output{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer utils.CloseWithLog(response.Body)

	if response.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status: %s", response.Status)
	}

	htmlBytes, err := readAllWithContext(fetchCtx, io.LimitReader(response.Body, MaxBodySize))
	if err != nil {
		return Output{}, err
	}
	if len(htmlBytes) == MaxBodySize {
		return Output{}, fmt.Errorf("response body exceeds %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(htmlBytes))
	if err != nil {
		return Output{}, fmt.Errorf("converting HTML to Markdown: %w", err)
	}

	output := Output{
		URL:      response.Request.URL.String(),
		Markdown: markdown,
	}
	if req.IncludeHTML {
		output.HTML = string(htmlBytes)
	}
	return output, nil
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConnsPerHost:   10,
			ForceAttemptHTTP2:     true,
		},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (>%d)", maxRedirects)
			}
			return nil
		},
	}
}

func readAllWithContext(ctx context.Context, reader io.Reader) ([]byte, error) {
	type readResult struct {
		data []byte
		err  error
	}
	results := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(reader)
		results <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("reading response body: %w", ctx.Err())
	case result := <-results:
		if result.err != nil {
			return nil, fmt.Errorf("reading response body: %w", result.err)
		}
		return result.data, nil
	}
}

// Input holds the parameters the model passes to the tool. Only URL is
// required.
type Input struct {
	URL            string `json:"url" jsonschema:"description=The URL of the web page to fetch (partial URLs like 'example.com' are accepted),required"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" jsonschema:"description=Request timeout in seconds (default 30),minimum=1,maximum=300"`
	UserAgent      string `json:"user_agent,omitempty" jsonschema:"description=Custom User-Agent header for the request"`
	IncludeHTML    bool   `json:"include_html,omitempty" jsonschema:"description=When true the raw HTML is included alongside the Markdown"`
}

// Output is the fetch result returned to the model. HTML is populated only
// when requested.
type Output struct {
	URL      string `json:"url" jsonschema:"description=The final URL after following redirects"`
	Markdown string `json:"markdown" jsonschema:"description=The page content converted to Markdown"`
	HTML     string `json:"html,omitempty" jsonschema:"description=The raw HTML content when include_html was set"`
}
