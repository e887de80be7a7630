package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/config"
	"github.com/yourorg/crypto-dashboard/internal/model"

	"go.uber.org/zap"
)

func newCMCTestClient(serverURL string) *CoinMarketCapClient {
	return NewCoinMarketCapClient(config.CoinMarketCapConfig{
		BaseURL: serverURL,
		APIKey:  "cmc-test-key",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestQuotesBatchedLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(cmcAPIKeyHeader); got != "cmc-test-key" {
			t.Errorf("api key header = %q, want cmc-test-key", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "OBSCURE,TINY" {
			t.Errorf("symbol param = %q, want OBSCURE,TINY", got)
		}
		fmt.Fprint(w, `{
			"status": {"error_code": 0, "credit_count": 1},
			"data": {
				"OBSCURE": [
					{"id": 9999, "symbol": "OBSCURE", "name": "Obscure Coin",
					 "quote": {"USD": {"price": 0.01, "market_cap": 1000000, "volume_24h": 5000}}},
					{"id": 10000, "symbol": "OBSCURE", "name": "Obscure Clone",
					 "quote": {"USD": {"price": 0.001}}}
				],
				"TINY": []
			}
		}`)
	}))
	defer server.Close()

	client := newCMCTestClient(server.URL)

	records, err := client.Quotes(context.Background(), []string{"obscure", "tiny"})
	if err != nil {
		t.Fatalf("Quotes returned error: %v", err)
	}

	rec, ok := records["obscure"]
	if !ok {
		t.Fatal("expected obscure in records")
	}
	// First match per ticker wins.
	if rec.Name != "Obscure Coin" || rec.Price != 0.01 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Source != model.SourceFallback {
		t.Errorf("source = %q, want %q", rec.Source, model.SourceFallback)
	}
	if _, ok := records["tiny"]; ok {
		t.Error("a ticker with no matches must be absent")
	}
}

func TestQuotesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": {"error_code": 1002, "error_message": "API key invalid"}, "data": {}}`)
	}))
	defer server.Close()

	client := newCMCTestClient(server.URL)

	_, err := client.Quotes(context.Background(), []string{"btc"})
	if err == nil {
		t.Fatal("expected error from an error_code response")
	}
}

func TestQuotesRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newCMCTestClient(server.URL)

	_, err := client.Quotes(context.Background(), []string{"btc"})
	if !IsRateLimited(err) {
		t.Fatalf("expected a rate limit error, got %v", err)
	}
}

func TestQuotesEmptyBatch(t *testing.T) {
	client := newCMCTestClient("http://example.invalid")

	records, err := client.Quotes(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty batch must not error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestQuotesMissingAPIKey(t *testing.T) {
	client := NewCoinMarketCapClient(config.CoinMarketCapConfig{
		BaseURL: "http://example.invalid",
		Timeout: time.Second,
	}, zap.NewNop())

	if _, err := client.Quotes(context.Background(), []string{"btc"}); err == nil {
		t.Fatal("expected error when the API key is missing")
	}
}
