package model

// GeckoMarket is one entry of the CoinGecko /coins/markets listing.
type GeckoMarket struct {
	ID                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Image             string   `json:"image"`
	CurrentPrice      float64  `json:"current_price"`
	MarketCap         float64  `json:"market_cap"`
	MarketCapRank     int      `json:"market_cap_rank"`
	TotalVolume       float64  `json:"total_volume"`
	PriceChangePct1h  float64  `json:"price_change_percentage_1h_in_currency"`
	PriceChangePct24h float64  `json:"price_change_percentage_24h_in_currency"`
	PriceChangePct7d  float64  `json:"price_change_percentage_7d_in_currency"`
	CirculatingSupply float64  `json:"circulating_supply"`
	TotalSupply       float64  `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`
	LastUpdated       string   `json:"last_updated"`
}

// ToCoinRecord converts a listing entry to the unified record shape.
func (m GeckoMarket) ToCoinRecord() CoinRecord {
	return CoinRecord{
		ID:                m.ID,
		Symbol:            m.Symbol,
		Name:              m.Name,
		Price:             m.CurrentPrice,
		MarketCap:         m.MarketCap,
		Volume24h:         m.TotalVolume,
		PercentChange1h:   m.PriceChangePct1h,
		PercentChange24h:  m.PriceChangePct24h,
		PercentChange7d:   m.PriceChangePct7d,
		CirculatingSupply: m.CirculatingSupply,
		TotalSupply:       m.TotalSupply,
		MaxSupply:         m.MaxSupply,
		Source:            SourcePrimary,
	}
}

// GeckoCoinDetail is the CoinGecko /coins/{id} response, trimmed to the
// fields the dashboard consumes.
type GeckoCoinDetail struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	MarketCapRank int `json:"market_cap_rank"`
	MarketData    struct {
		CurrentPrice      map[string]float64 `json:"current_price"`
		MarketCap         map[string]float64 `json:"market_cap"`
		TotalVolume       map[string]float64 `json:"total_volume"`
		PriceChangePct1h  map[string]float64 `json:"price_change_percentage_1h_in_currency"`
		PriceChangePct24h map[string]float64 `json:"price_change_percentage_24h_in_currency"`
		PriceChangePct7d  map[string]float64 `json:"price_change_percentage_7d_in_currency"`
		CirculatingSupply float64            `json:"circulating_supply"`
		TotalSupply       float64            `json:"total_supply"`
		MaxSupply         *float64           `json:"max_supply"`
		ATH               map[string]float64 `json:"ath"`
		ATL               map[string]float64 `json:"atl"`
	} `json:"market_data"`
	LastUpdated string `json:"last_updated"`
}

// GeckoCategory is one entry of the CoinGecko /coins/categories listing.
type GeckoCategory struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	MarketCap          float64  `json:"market_cap"`
	MarketCapChange24h float64  `json:"market_cap_change_24h"`
	Volume24h          float64  `json:"volume_24h"`
	Top3Coins          []string `json:"top_3_coins"`
	UpdatedAt          string   `json:"updated_at"`
}
