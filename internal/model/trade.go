package model

import "time"

// Trade is a single executed trade row from the trading backend.
type Trade struct {
	ID          int64     `db:"id" json:"id"`
	Platform    string    `db:"platform" json:"platform"`
	AccountType string    `db:"account_type" json:"account_type"`
	Symbol      string    `db:"symbol" json:"symbol"`
	Side        string    `db:"side" json:"side"`
	Quantity    float64   `db:"quantity" json:"quantity"`
	Price       float64   `db:"price" json:"price"`
	PnlUSD      float64   `db:"pnl_usd" json:"pnl_usd"`
	Fee         float64   `db:"fee" json:"fee"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TradeFilter narrows trade queries.
type TradeFilter struct {
	Platform string
	Symbol   string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

// Balance is one asset balance row for a platform/account type.
type Balance struct {
	ID          int64     `db:"id" json:"id"`
	Platform    string    `db:"platform" json:"platform"`
	AccountType string    `db:"account_type" json:"account_type"`
	Asset       string    `db:"asset" json:"asset"`
	Free        float64   `db:"free" json:"free"`
	Locked      float64   `db:"locked" json:"locked"`
	UsdValue    float64   `db:"usd_value" json:"usd_value"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BalanceGroup is the per-platform/account-type rollup served by /api/balances.
type BalanceGroup struct {
	Platform    string    `json:"platform"`
	AccountType string    `json:"account_type"`
	TotalUSD    float64   `json:"total_usd"`
	Assets      []Balance `json:"assets"`
}

// BalanceSummary is the grouped balance response.
type BalanceSummary struct {
	Groups   []BalanceGroup `json:"groups"`
	TotalUSD float64        `json:"total_usd"`
}

// PnlQuery selects the window and filters for a P&L aggregate.
type PnlQuery struct {
	Period   string
	Platform string
	Range    string
	From     string
	To       string
}

// DailyPnl is one day's P&L bucket.
type DailyPnl struct {
	Day    time.Time `db:"day" json:"day"`
	PnlUSD float64   `db:"pnl_usd" json:"pnl_usd"`
	Trades int       `db:"trades" json:"trades"`
}

// PnlSummary is the P&L aggregate served by /api/pnl.
type PnlSummary struct {
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	Platform   string     `json:"platform,omitempty"`
	TotalPnl   float64    `json:"totalPnL"`
	TradeCount int        `json:"tradeCount"`
	WinCount   int        `json:"winCount"`
	LossCount  int        `json:"lossCount"`
	WinRate    float64    `json:"winRate"`
	Daily      []DailyPnl `json:"daily,omitempty"`
}
