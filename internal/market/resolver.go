package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yourorg/crypto-dashboard/internal/client"
	"github.com/yourorg/crypto-dashboard/internal/config"
	"github.com/yourorg/crypto-dashboard/internal/model"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"go.uber.org/zap"
)

const keyListings = "listings"

var (
	// ErrRateLimited means a live fetch was throttled and no cached data
	// exists to serve instead.
	ErrRateLimited = errors.New("market data request throttled and no cached data available")
	// ErrNoSymbols means the caller requested an empty symbol set.
	ErrNoSymbols = errors.New("no symbols requested")
)

// PrimarySource provides the full top-N market listing. It is never queried
// for individual symbols; matching happens client-side.
type PrimarySource interface {
	ListMarkets(ctx context.Context) ([]model.CoinRecord, error)
}

// FallbackSource provides quotes for specific symbols at a quota cost.
type FallbackSource interface {
	Quotes(ctx context.Context, symbols []string) (map[string]model.CoinRecord, error)
}

// HistorySource provides per-coin candlestick history.
type HistorySource interface {
	GetOHLC(ctx context.Context, id string, days int) ([]model.OHLC, error)
}

// DetailSource provides single-coin detail lookups.
type DetailSource interface {
	GetCoin(ctx context.Context, id string) (*model.CoinDetail, error)
}

// Resolver unifies the two upstream market data sources behind one
// interface with caching, throttling and fallback quota enforcement.
type Resolver struct {
	primary  PrimarySource
	fallback FallbackSource
	history  HistorySource
	detail   DetailSource
	store    *Store
	cfg      config.ResolverConfig
	retry    client.RetryPolicy
	logger   *zap.Logger
}

// NewResolver creates a market data resolver.
func NewResolver(
	primary PrimarySource,
	fallback FallbackSource,
	history HistorySource,
	detail DetailSource,
	store *Store,
	cfg config.ResolverConfig,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		primary:  primary,
		fallback: fallback,
		history:  history,
		detail:   detail,
		store:    store,
		cfg:      cfg,
		retry:    client.DetailRetryPolicy(),
		logger:   logger,
	}
}

// Resolve returns unified records for the requested symbols. Primary data is
// preferred; symbols absent from the primary listing are fetched from the
// fallback source in one batched call, subject to the monthly quota.
func (r *Resolver) Resolve(ctx context.Context, symbols []string) (*model.ResolveResult, error) {
	requested := normalizeSymbols(symbols)
	if len(requested) == 0 {
		return nil, ErrNoSymbols
	}

	// Fresh cache serves the request when it covers at least one symbol.
	if v, ts, ok := r.store.Fresh(keyListings, r.cfg.ListingsTTL); ok {
		cached := v.(map[string]model.CoinRecord)
		if data := filterSymbols(cached, requested); len(data) > 0 {
			return &model.ResolveResult{Data: data, Timestamp: ts, FromCache: true}, nil
		}
	}

	// Inside the minimum live-call interval we serve whatever is cached,
	// stale or not. A cache that covers none of the requested symbols is
	// no better than no cache.
	if !r.store.Allow(keyListings, r.cfg.ListingsMinInterval) {
		if v, ts, ok := r.store.Any(keyListings); ok {
			cached := v.(map[string]model.CoinRecord)
			if data := filterSymbols(cached, requested); len(data) > 0 {
				return &model.ResolveResult{
					Data:      data,
					Timestamp: ts,
					FromCache: true,
					Stale:     true,
				}, nil
			}
		}
		return nil, ErrRateLimited
	}

	listing, err := r.primary.ListMarkets(ctx)
	if err != nil {
		// Degrade to the previous cache entry, however old.
		if v, ts, ok := r.store.Any(keyListings); ok {
			cached := v.(map[string]model.CoinRecord)
			r.logger.Warn("Serving stale market data after primary fetch failure", zap.Error(err))
			return &model.ResolveResult{
				Data:      filterSymbols(cached, requested),
				Timestamp: ts,
				FromCache: true,
				Stale:     true,
				ErrorNote: err.Error(),
			}, nil
		}
		return nil, fmt.Errorf("primary source fetch failed: %w", err)
	}

	merged := matchListing(listing, requested)

	missing := make([]string, 0)
	for _, sym := range requested {
		if _, ok := merged[sym]; !ok {
			missing = append(missing, sym)
		}
	}

	result := &model.ResolveResult{FromCache: false}

	if len(missing) > 0 {
		if r.store.Quota().Allow() {
			quotes, ferr := r.fallback.Quotes(ctx, missing)
			if ferr != nil {
				// Primary data still stands; the response is just partial.
				r.logger.Warn("Fallback source fetch failed",
					zap.Error(ferr),
					zap.Strings("symbols", missing))
				result.ErrorNote = ferr.Error()
			} else {
				r.store.Quota().Record()
				for sym, rec := range quotes {
					merged[sym] = rec
				}
			}
		} else {
			r.logger.Warn("Fallback quota exhausted, returning partial data",
				zap.Strings("symbols", missing))
			result.QuotaExhausted = true
		}
	}

	r.store.Put(keyListings, merged)
	_, ts, _ := r.store.Any(keyListings)

	result.Data = filterSymbols(merged, requested)
	result.Timestamp = ts
	return result, nil
}

// History returns candlestick history for one coin, cached per coin+days and
// throttled per coin id.
func (r *Resolver) History(ctx context.Context, coinID string, days int) (*model.HistoryResult, error) {
	cacheKey := fmt.Sprintf("history:%s:%d", coinID, days)
	rateKey := "history:" + coinID

	if v, ts, ok := r.store.Fresh(cacheKey, r.cfg.HistoryTTL); ok {
		return &model.HistoryResult{
			CoinID:    coinID,
			Days:      days,
			Candles:   v.([]model.OHLC),
			Timestamp: ts,
			FromCache: true,
		}, nil
	}

	if !r.store.Allow(rateKey, r.cfg.HistoryMinInterval) {
		if v, ts, ok := r.store.Any(cacheKey); ok {
			return &model.HistoryResult{
				CoinID:    coinID,
				Days:      days,
				Candles:   v.([]model.OHLC),
				Timestamp: ts,
				FromCache: true,
				Stale:     true,
			}, nil
		}
		return nil, ErrRateLimited
	}

	candles, err := r.history.GetOHLC(ctx, coinID, days)
	if err != nil {
		if v, ts, ok := r.store.Any(cacheKey); ok {
			r.logger.Warn("Serving stale history after fetch failure",
				zap.Error(err),
				zap.String("coin_id", coinID))
			return &model.HistoryResult{
				CoinID:    coinID,
				Days:      days,
				Candles:   v.([]model.OHLC),
				Timestamp: ts,
				FromCache: true,
				Stale:     true,
			}, nil
		}
		return nil, fmt.Errorf("history fetch failed for %s: %w", coinID, err)
	}

	r.store.Put(cacheKey, candles)
	_, ts, _ := r.store.Any(cacheKey)

	return &model.HistoryResult{
		CoinID:    coinID,
		Days:      days,
		Candles:   candles,
		Timestamp: ts,
	}, nil
}

// Detail returns a single coin's detail record. The live lookup runs under a
// bounded retry policy with a distinct wait on upstream 429s.
func (r *Resolver) Detail(ctx context.Context, coinID string) (*model.CoinDetail, bool, error) {
	cacheKey := "detail:" + coinID

	if v, _, ok := r.store.Fresh(cacheKey, r.cfg.DetailTTL); ok {
		return v.(*model.CoinDetail), true, nil
	}

	if !r.store.Allow(cacheKey, r.cfg.HistoryMinInterval) {
		if v, _, ok := r.store.Any(cacheKey); ok {
			return v.(*model.CoinDetail), true, nil
		}
		return nil, false, ErrRateLimited
	}

	var detail *model.CoinDetail
	err := r.retry.Do(ctx, func() error {
		var derr error
		detail, derr = r.detail.GetCoin(ctx, coinID)
		return derr
	})
	if err != nil {
		if v, _, ok := r.store.Any(cacheKey); ok {
			r.logger.Warn("Serving stale coin detail after fetch failure",
				zap.Error(err),
				zap.String("coin_id", coinID))
			return v.(*model.CoinDetail), true, nil
		}
		return nil, false, fmt.Errorf("detail fetch failed for %s: %w", coinID, err)
	}

	r.store.Put(cacheKey, detail)
	return detail, false, nil
}

// KnownCoins returns the identities of every coin in the listing cache,
// however old, for callers mapping free-form project names to coin records.
// Empty until the first successful listing fetch.
func (r *Resolver) KnownCoins() []utils.CoinRef {
	v, _, ok := r.store.Any(keyListings)
	if !ok {
		return nil
	}

	cached := v.(map[string]model.CoinRecord)
	seen := make(map[string]struct{}, len(cached))
	refs := make([]utils.CoinRef, 0, len(cached))
	for _, rec := range cached {
		// The cache holds name-alias entries pointing at the same coin.
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		refs = append(refs, utils.CoinRef{ID: rec.ID, Symbol: rec.Symbol, Name: rec.Name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs
}

// normalizeSymbols lower-cases and deduplicates, preserving request order.
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := strings.ToLower(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// matchListing builds the cache mapping from a primary listing: every coin
// keyed by lower-cased ticker, plus alias entries for requested symbols that
// only match by display name. Exact matches only; fuzzy matching lives in
// the separate coin-name helper, not here.
func matchListing(listing []model.CoinRecord, requested []string) map[string]model.CoinRecord {
	bySymbol := make(map[string]model.CoinRecord, len(listing))
	byName := make(map[string]model.CoinRecord, len(listing))
	for _, rec := range listing {
		sym := strings.ToLower(rec.Symbol)
		if _, ok := bySymbol[sym]; !ok {
			// First occurrence wins: the listing is ranked by market cap.
			bySymbol[sym] = rec
		}
		name := strings.ToLower(rec.Name)
		if _, ok := byName[name]; !ok {
			byName[name] = rec
		}
	}

	merged := make(map[string]model.CoinRecord, len(bySymbol))
	for sym, rec := range bySymbol {
		merged[sym] = rec
	}
	for _, req := range requested {
		if _, ok := merged[req]; ok {
			continue
		}
		if rec, ok := byName[req]; ok {
			merged[req] = rec
		}
	}
	return merged
}

// filterSymbols narrows a cached mapping down to the requested symbols.
func filterSymbols(cached map[string]model.CoinRecord, requested []string) map[string]model.CoinRecord {
	out := make(map[string]model.CoinRecord, len(requested))
	for _, sym := range requested {
		if rec, ok := cached[sym]; ok {
			out[sym] = rec
		}
	}
	return out
}
