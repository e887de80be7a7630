package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/model"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"go.uber.org/zap"
)

// ErrInvalidRange marks a date-range the caller supplied that cannot be
// resolved.
var ErrInvalidRange = errors.New("invalid time range")

// TradeStore is the persistence surface the trade service needs.
type TradeStore interface {
	GetTrades(ctx context.Context, filter model.TradeFilter) ([]model.Trade, int, error)
	GetBalances(ctx context.Context, platform, accountType string) ([]model.Balance, error)
	AggregatePnl(ctx context.Context, from, to time.Time, platform string) (*model.PnlSummary, error)
	DailyPnl(ctx context.Context, from, to time.Time, platform string) ([]model.DailyPnl, error)
}

// TradeService handles trade, balance and P&L queries
type TradeService struct {
	repo   TradeStore
	logger *zap.Logger
	now    func() time.Time
}

// NewTradeService creates a new trade service
func NewTradeService(repo TradeStore, logger *zap.Logger) *TradeService {
	return &TradeService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// NewTradeServiceWithClock creates a trade service with a pinned clock.
func NewTradeServiceWithClock(repo TradeStore, logger *zap.Logger, now func() time.Time) *TradeService {
	return &TradeService{
		repo:   repo,
		logger: logger,
		now:    now,
	}
}

// GetTrades returns trades matching the filter with a total count.
func (s *TradeService) GetTrades(ctx context.Context, filter model.TradeFilter) ([]model.Trade, int, error) {
	return s.repo.GetTrades(ctx, filter)
}

// GetBalanceSummary groups balance rows by platform and account type and
// totals their USD value.
func (s *TradeService) GetBalanceSummary(ctx context.Context, platform, accountType string) (*model.BalanceSummary, error) {
	balances, err := s.repo.GetBalances(ctx, platform, accountType)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		platform    string
		accountType string
	}

	order := make([]groupKey, 0)
	groups := make(map[groupKey]*model.BalanceGroup)
	summary := &model.BalanceSummary{}

	for _, b := range balances {
		key := groupKey{b.Platform, b.AccountType}
		g, ok := groups[key]
		if !ok {
			g = &model.BalanceGroup{Platform: b.Platform, AccountType: b.AccountType}
			groups[key] = g
			order = append(order, key)
		}
		g.Assets = append(g.Assets, b)
		g.TotalUSD += b.UsdValue
		summary.TotalUSD += b.UsdValue
	}

	summary.Groups = make([]model.BalanceGroup, 0, len(order))
	for _, key := range order {
		summary.Groups = append(summary.Groups, *groups[key])
	}

	return summary, nil
}

// GetPnl resolves the query's time window and aggregates P&L over it. The
// named range wins over explicit from/to when both are supplied.
func (s *TradeService) GetPnl(ctx context.Context, query model.PnlQuery) (*model.PnlSummary, error) {
	// period is the older name for range; range wins when both are set.
	rangeName := query.Range
	if rangeName == "" {
		rangeName = query.Period
	}

	from, to, err := utils.ResolveTimeRange(rangeName, query.From, query.To, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	summary, err := s.repo.AggregatePnl(ctx, from, to, query.Platform)
	if err != nil {
		return nil, err
	}

	// The daily breakdown is additive; its failure should not lose the
	// aggregate.
	daily, err := s.repo.DailyPnl(ctx, from, to, query.Platform)
	if err != nil {
		s.logger.Warn("Failed to compute daily pnl breakdown", zap.Error(err))
	} else {
		summary.Daily = daily
	}

	return summary, nil
}
