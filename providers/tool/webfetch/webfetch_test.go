package webfetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch_ConvertsHTMLToMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><body><h1>Title</h1><p>Some <strong>bold</strong> text.</p></body></html>`)
	}))
	defer server.Close()

	output, err := Fetch(context.Background(), Input{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(output.Markdown, "# Title") {
		t.Errorf("heading not converted: %q", output.Markdown)
	}
	if !strings.Contains(output.Markdown, "**bold**") {
		t.Errorf("bold not converted: %q", output.Markdown)
	}
	if output.HTML != "" {
		t.Error("HTML included without include_html")
	}
}

func TestFetch_IncludeHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<p>hi</p>`)
	}))
	defer server.Close()

	output, err := Fetch(context.Background(), Input{URL: server.URL, IncludeHTML: true})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if output.HTML != `<p>hi</p>` {
		t.Errorf("HTML = %q", output.HTML)
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<p>landed</p>`)
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	output, err := Fetch(context.Background(), Input{URL: redirecting.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if output.URL != final.URL {
		t.Errorf("final URL = %q, want %q", output.URL, final.URL)
	}
	if !strings.Contains(output.Markdown, "landed") {
		t.Errorf("markdown = %q", output.Markdown)
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	if _, err := Fetch(context.Background(), Input{URL: "   "}); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestFetch_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), Input{URL: server.URL})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want 404 status error", err)
	}
}

func TestFetch_CustomUserAgent(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		io.WriteString(w, `<p>ok</p>`)
	}))
	defer server.Close()

	if _, err := Fetch(context.Background(), Input{URL: server.URL, UserAgent: "custom/2.0"}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotUserAgent != "custom/2.0" {
		t.Errorf("user agent = %q", gotUserAgent)
	}

	if _, err := Fetch(context.Background(), Input{URL: server.URL}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotUserAgent != DefaultUserAgent {
		t.Errorf("default user agent = %q, want %q", gotUserAgent, DefaultUserAgent)
	}
}

func TestFetch_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	if _, err := Fetch(ctx, Input{URL: server.URL}); err == nil {
		t.Error("expected error after cancellation")
	}
}
