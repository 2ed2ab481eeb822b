package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:8080", "http://secure-proxy:8443", "localhost, .internal.example, 10.0.0.1")

	tests := []struct {
		target string
		want   string
	}{
		{target: "http://api.tavily.com/search", want: "http://proxy:8080"},
		{target: "https://api.openai.com/v1/embeddings", want: "http://secure-proxy:8443"},
		{target: "http://localhost:9000/", want: ""},
		{target: "https://db.internal.example/", want: ""},
		{target: "https://internal.example/", want: ""},
		{target: "http://10.0.0.1/", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			u, _ := url.Parse(tt.target)
			got, err := proxy(&http.Request{URL: u})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			gotStr := ""
			if got != nil {
				gotStr = got.String()
			}
			if gotStr != tt.want {
				t.Errorf("Expected proxy %q for %s, got %q", tt.want, tt.target, gotStr)
			}
		})
	}
}

func TestNewProxyFunc_Wildcard(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:8080", "", "*")
	u, _ := url.Parse("http://anything.example/")
	if got, _ := proxy(&http.Request{URL: u}); got != nil {
		t.Errorf("Expected wildcard to bypass proxy, got %v", got)
	}
}

func TestRobotsChecker(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		fetches.Add(1)
		fmt.Fprint(w, "User-agent: Authentica\nDisallow: /private/\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker("Authentica/0.1 (+https://example.com)", 5*time.Second, nil)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/public/paper")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("Expected public path to be allowed for our agent group")
	}
	if delay != 2*time.Second {
		t.Errorf("Expected 2s crawl delay, got %v", delay)
	}

	if checker.IsAllowed(ctx, server.URL+"/private/paper") {
		t.Error("Expected private path to be disallowed")
	}
	if fetches.Load() != 1 {
		t.Errorf("Expected robots.txt to be fetched once, got %d", fetches.Load())
	}
}

func TestRobotsChecker_MissingFileAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker("Authentica/0.1", 5*time.Second, nil)
	if !checker.IsAllowed(context.Background(), server.URL+"/anything") {
		t.Error("Expected missing robots.txt to allow everything")
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker("Authentica/0.1", 200*time.Millisecond, nil)
	if !checker.IsAllowed(context.Background(), "http://127.0.0.1:1/paper") {
		t.Error("Expected unreachable robots.txt to allow by default")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "Authentica/0.1 (+https://github.com/ppiankov/authentica)", want: "Authentica"},
		{in: "curl/8.0", want: "curl"},
		{in: "plain", want: "plain"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.in); got != tt.want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
