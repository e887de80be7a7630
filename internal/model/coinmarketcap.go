package model

import "strconv"

// CMCQuoteResponse is the CoinMarketCap /v2/cryptocurrency/quotes/latest
// response. Data maps the requested symbol to one or more matches.
type CMCQuoteResponse struct {
	Status CMCStatus                 `json:"status"`
	Data   map[string][]CMCQuoteData `json:"data"`
}

// CMCStatus carries CoinMarketCap's per-response error envelope.
type CMCStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	CreditCount  int    `json:"credit_count"`
}

// CMCQuoteData is one CoinMarketCap cryptocurrency entry.
type CMCQuoteData struct {
	ID                int                      `json:"id"`
	Name              string                   `json:"name"`
	Symbol            string                   `json:"symbol"`
	Slug              string                   `json:"slug"`
	CirculatingSupply float64                  `json:"circulating_supply"`
	TotalSupply       float64                  `json:"total_supply"`
	MaxSupply         *float64                 `json:"max_supply"`
	LastUpdated       string                   `json:"last_updated"`
	Quote             map[string]CMCQuoteEntry `json:"quote"`
}

// CMCQuoteEntry is the per-currency quote block.
type CMCQuoteEntry struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange1h  float64 `json:"percent_change_1h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
	MarketCap        float64 `json:"market_cap"`
	LastUpdated      string  `json:"last_updated"`
}

// ToCoinRecord converts a CoinMarketCap entry to the unified record shape,
// reading the USD quote block.
func (d CMCQuoteData) ToCoinRecord() CoinRecord {
	usd := d.Quote["USD"]
	return CoinRecord{
		ID:                strconv.Itoa(d.ID),
		Symbol:            d.Symbol,
		Name:              d.Name,
		Price:             usd.Price,
		MarketCap:         usd.MarketCap,
		Volume24h:         usd.Volume24h,
		PercentChange1h:   usd.PercentChange1h,
		PercentChange24h:  usd.PercentChange24h,
		PercentChange7d:   usd.PercentChange7d,
		CirculatingSupply: d.CirculatingSupply,
		TotalSupply:       d.TotalSupply,
		MaxSupply:         d.MaxSupply,
		Source:            SourceFallback,
	}
}
