package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url with extras", "https://youtube.com/watch?v=abc123&t=42s", "abc123", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts", "https://www.youtube.com/shorts/xyz789", "xyz789", false},
		{"embed", "https://www.youtube.com/embed/xyz789", "xyz789", false},
		{"no id", "https://www.youtube.com/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractVideoID(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestTranscriptFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("v"); got != "abc123" {
			t.Errorf("video id = %q, want abc123", got)
		}
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0" dur="2">Hello &amp; welcome</text>
  <text start="2" dur="3">  to the channel  </text>
  <text start="5" dur="1"></text>
</transcript>`)
	}))
	defer server.Close()

	fetcher := NewTranscriptFetcher(zap.NewNop())
	fetcher.baseURL = server.URL

	got, err := fetcher.Fetch(context.Background(), "https://www.youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if want := "Hello & welcome to the channel"; got != want {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}

func TestTranscriptFetchNoCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// YouTube serves an empty 200 body for videos without captions.
	}))
	defer server.Close()

	fetcher := NewTranscriptFetcher(zap.NewNop())
	fetcher.baseURL = server.URL

	got, err := fetcher.Fetch(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("missing captions must not error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}

func TestTranscriptFetchBadURL(t *testing.T) {
	fetcher := NewTranscriptFetcher(zap.NewNop())

	if _, err := fetcher.Fetch(context.Background(), "https://example.com/"); err == nil {
		t.Fatal("expected error for a URL without a video id")
	}
}
