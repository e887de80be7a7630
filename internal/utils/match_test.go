package utils

import "testing"

func TestMatchCoin(t *testing.T) {
	coins := []CoinRef{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
		{ID: "ethereum", Symbol: "ETH", Name: "Ethereum"},
		{ID: "avalanche-2", Symbol: "AVAX", Name: "Avalanche"},
		{ID: "render-token", Symbol: "RNDR", Name: "Render"},
	}

	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"exact ticker", "btc", "bitcoin", true},
		{"exact ticker uppercase", "ETH", "ethereum", true},
		{"exact name", "bitcoin", "bitcoin", true},
		{"name with parenthetical ticker", "Avalanche (AVAX)", "avalanche-2", true},
		{"padded input", "  render  ", "render-token", true},
		{"no match", "dogwifhat", "", false},
		{"empty input", "", "", false},
		{"punctuation only", "***", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchCoin(tt.input, coins)
			if ok != tt.wantOK {
				t.Fatalf("MatchCoin(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got.ID != tt.wantID {
				t.Errorf("MatchCoin(%q) = %q, want %q", tt.input, got.ID, tt.wantID)
			}
		})
	}
}

func TestMatchCoinTickerBeatsName(t *testing.T) {
	coins := []CoinRef{
		{ID: "btc-proxy", Symbol: "BITCOIN", Name: "Bitcoin Proxy"},
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
	}

	got, ok := MatchCoin("bitcoin", coins)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != "btc-proxy" {
		t.Errorf("ticker tier must run before the name tier, got %q", got.ID)
	}
}
