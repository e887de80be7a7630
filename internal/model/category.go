package model

import "time"

// Category is a coin category listing entry served by /api/categories.
type Category struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	MarketCap          float64  `json:"market_cap"`
	MarketCapChange24h float64  `json:"market_cap_change_24h"`
	Volume24h          float64  `json:"volume_24h"`
	Top3Coins          []string `json:"top_3_coins"`
}

// CategoryDetail is a category with its member coins.
type CategoryDetail struct {
	Category
	Coins []CoinRecord `json:"coins"`
}

// CategoryResult wraps a category response with cache metadata.
type CategoryResult struct {
	Categories []Category      `json:"categories,omitempty"`
	Detail     *CategoryDetail `json:"detail,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	FromCache  bool            `json:"fromCache"`
}

// AnalysisRequest is the body delegated to the AI-analysis microservice.
type AnalysisRequest struct {
	URL      string   `json:"url,omitempty"`
	Channels []string `json:"channels,omitempty"`
	Force    bool     `json:"force,omitempty"`
}

// TranscriptResult reports a fetched transcript and where it came from.
type TranscriptResult struct {
	Transcript string `json:"transcript"`
	Source     string `json:"source"`
}
