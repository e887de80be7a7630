package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TradeRepository handles database operations for trades and balances
type TradeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *sqlx.DB, logger *zap.Logger) *TradeRepository {
	return &TradeRepository{
		db:     db,
		logger: logger,
	}
}

// GetTrades retrieves trades matching the filter, newest first, with the
// total row count for pagination.
func (r *TradeRepository) GetTrades(ctx context.Context, filter model.TradeFilter) ([]model.Trade, int, error) {
	query := `
		SELECT id, platform, account_type, symbol, side, quantity, price, pnl_usd, fee, timestamp, created_at
		FROM trades
		WHERE 1=1
	`
	countQuery := `SELECT COUNT(*) FROM trades WHERE 1=1`

	args := []interface{}{}
	argCount := 1

	addCondition := func(cond string, val interface{}) {
		clause := fmt.Sprintf(" AND %s $%d", cond, argCount)
		query += clause
		countQuery += clause
		args = append(args, val)
		argCount++
	}

	if filter.Platform != "" {
		addCondition("platform =", filter.Platform)
	}
	if filter.Symbol != "" {
		addCondition("symbol =", filter.Symbol)
	}
	if filter.From != nil {
		addCondition("timestamp >=", *filter.From)
	}
	if filter.To != nil {
		addCondition("timestamp <=", *filter.To)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		r.logger.Error("Failed to count trades", zap.Error(err))
		return nil, 0, err
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		args = append(args, filter.Limit, offset)
	}

	var trades []model.Trade
	if err := r.db.SelectContext(ctx, &trades, query, args...); err != nil {
		r.logger.Error("Failed to get trades",
			zap.Error(err),
			zap.String("platform", filter.Platform))
		return nil, 0, err
	}

	return trades, total, nil
}

// GetBalances retrieves balance rows, optionally narrowed to a platform and
// account type.
func (r *TradeRepository) GetBalances(ctx context.Context, platform, accountType string) ([]model.Balance, error) {
	query := `
		SELECT id, platform, account_type, asset, free, locked, usd_value, updated_at
		FROM balances
		WHERE 1=1
	`

	args := []interface{}{}
	argCount := 1

	if platform != "" {
		query += fmt.Sprintf(" AND platform = $%d", argCount)
		args = append(args, platform)
		argCount++
	}
	if accountType != "" {
		query += fmt.Sprintf(" AND account_type = $%d", argCount)
		args = append(args, accountType)
		argCount++
	}

	query += " ORDER BY platform, account_type, usd_value DESC"

	var balances []model.Balance
	if err := r.db.SelectContext(ctx, &balances, query, args...); err != nil {
		r.logger.Error("Failed to get balances",
			zap.Error(err),
			zap.String("platform", platform),
			zap.String("account_type", accountType))
		return nil, err
	}

	return balances, nil
}

// AggregatePnl computes the total and win/loss counts over trades whose
// timestamp falls inside [from, to].
func (r *TradeRepository) AggregatePnl(ctx context.Context, from, to time.Time, platform string) (*model.PnlSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(pnl_usd), 0) AS total_pnl,
			COUNT(*) AS trade_count,
			COUNT(*) FILTER (WHERE pnl_usd > 0) AS win_count,
			COUNT(*) FILTER (WHERE pnl_usd < 0) AS loss_count
		FROM trades
		WHERE timestamp >= $1 AND timestamp <= $2
	`

	args := []interface{}{from, to}
	if platform != "" {
		query += " AND platform = $3"
		args = append(args, platform)
	}

	var row struct {
		TotalPnl   float64 `db:"total_pnl"`
		TradeCount int     `db:"trade_count"`
		WinCount   int     `db:"win_count"`
		LossCount  int     `db:"loss_count"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		r.logger.Error("Failed to aggregate pnl",
			zap.Error(err),
			zap.Time("from", from),
			zap.Time("to", to))
		return nil, err
	}

	summary := &model.PnlSummary{
		StartDate:  from,
		EndDate:    to,
		Platform:   platform,
		TotalPnl:   row.TotalPnl,
		TradeCount: row.TradeCount,
		WinCount:   row.WinCount,
		LossCount:  row.LossCount,
	}
	if row.TradeCount > 0 {
		summary.WinRate = float64(row.WinCount) / float64(row.TradeCount)
	}
	return summary, nil
}

// DailyPnl buckets P&L by calendar day inside [from, to].
func (r *TradeRepository) DailyPnl(ctx context.Context, from, to time.Time, platform string) ([]model.DailyPnl, error) {
	query := `
		SELECT
			date_trunc('day', timestamp) AS day,
			COALESCE(SUM(pnl_usd), 0) AS pnl_usd,
			COUNT(*) AS trades
		FROM trades
		WHERE timestamp >= $1 AND timestamp <= $2
	`

	args := []interface{}{from, to}
	if platform != "" {
		query += " AND platform = $3"
		args = append(args, platform)
	}

	query += " GROUP BY 1 ORDER BY 1"

	var daily []model.DailyPnl
	if err := r.db.SelectContext(ctx, &daily, query, args...); err != nil {
		r.logger.Error("Failed to get daily pnl", zap.Error(err))
		return nil, err
	}

	return daily, nil
}
