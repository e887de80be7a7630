package model

import "time"

// Source tags identifying which upstream produced a CoinRecord
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
)

// CoinRecord holds the unified market data for a single coin, regardless of
// which upstream it came from. Records are immutable once built for a fetch cycle.
type CoinRecord struct {
	ID                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	MarketCap         float64  `json:"market_cap"`
	Volume24h         float64  `json:"volume_24h"`
	PercentChange1h   float64  `json:"percent_change_1h"`
	PercentChange24h  float64  `json:"percent_change_24h"`
	PercentChange7d   float64  `json:"percent_change_7d"`
	CirculatingSupply float64  `json:"circulating_supply"`
	TotalSupply       float64  `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply,omitempty"`
	Source            string   `json:"source"`
}

// ResolveResult is the response shape of the market data resolver.
type ResolveResult struct {
	Data      map[string]CoinRecord `json:"data"`
	Timestamp time.Time             `json:"timestamp"`
	FromCache bool                  `json:"fromCache"`
	Stale     bool                  `json:"stale,omitempty"`
	ErrorNote string                `json:"errorNote,omitempty"`
	// QuotaExhausted is set when the fallback source was needed but the
	// monthly call ceiling had been reached.
	QuotaExhausted bool `json:"quotaExhausted,omitempty"`
}

// CoinDetail is the single-coin lookup response.
type CoinDetail struct {
	CoinRecord
	Description string    `json:"description,omitempty"`
	Homepage    string    `json:"homepage,omitempty"`
	Image       string    `json:"image,omitempty"`
	MarketRank  int       `json:"market_rank,omitempty"`
	ATH         float64   `json:"ath,omitempty"`
	ATL         float64   `json:"atl,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// OHLC represents a single candlestick bar of a coin's price history.
type OHLC struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// HistoryResult is the response shape of the coin history endpoint.
type HistoryResult struct {
	CoinID    string    `json:"coin_id"`
	Days      int       `json:"days"`
	Candles   []OHLC    `json:"candles"`
	Timestamp time.Time `json:"timestamp"`
	FromCache bool      `json:"fromCache"`
	Stale     bool      `json:"stale,omitempty"`
}
