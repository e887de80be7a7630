package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourorg/crypto-dashboard/internal/config"
	"github.com/yourorg/crypto-dashboard/internal/market"
	"github.com/yourorg/crypto-dashboard/internal/model"

	"go.uber.org/zap"
)

// CategorySource provides category listings from the primary market data API.
type CategorySource interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryCoins(ctx context.Context, categoryID string) ([]model.CoinRecord, error)
}

// CategoryService serves category listings with their own cache windows:
// long for the full list, short for per-category detail.
type CategoryService struct {
	source CategorySource
	store  *market.Store
	cfg    config.ResolverConfig
	logger *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(source CategorySource, store *market.Store, cfg config.ResolverConfig, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		source: source,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// List returns the category listing, cached for the list TTL.
func (s *CategoryService) List(ctx context.Context) (*model.CategoryResult, error) {
	const key = "categories"

	if v, ts, ok := s.store.Fresh(key, s.cfg.CategoryListTTL); ok {
		return &model.CategoryResult{
			Categories: v.([]model.Category),
			Timestamp:  ts,
			FromCache:  true,
		}, nil
	}

	categories, err := s.source.ListCategories(ctx)
	if err != nil {
		if v, ts, ok := s.store.Any(key); ok {
			s.logger.Warn("Serving stale category list after fetch failure", zap.Error(err))
			return &model.CategoryResult{
				Categories: v.([]model.Category),
				Timestamp:  ts,
				FromCache:  true,
			}, nil
		}
		return nil, fmt.Errorf("category list fetch failed: %w", err)
	}

	s.store.Put(key, categories)
	_, ts, _ := s.store.Any(key)

	return &model.CategoryResult{
		Categories: categories,
		Timestamp:  ts,
	}, nil
}

// Get returns one category with its member coins, cached for the detail TTL.
func (s *CategoryService) Get(ctx context.Context, categoryID string) (*model.CategoryResult, error) {
	key := "category:" + categoryID

	if v, ts, ok := s.store.Fresh(key, s.cfg.CategoryDetailTTL); ok {
		return &model.CategoryResult{
			Detail:    v.(*model.CategoryDetail),
			Timestamp: ts,
			FromCache: true,
		}, nil
	}

	coins, err := s.source.GetCategoryCoins(ctx, categoryID)
	if err != nil {
		if v, ts, ok := s.store.Any(key); ok {
			s.logger.Warn("Serving stale category detail after fetch failure",
				zap.Error(err),
				zap.String("category_id", categoryID))
			return &model.CategoryResult{
				Detail:    v.(*model.CategoryDetail),
				Timestamp: ts,
				FromCache: true,
			}, nil
		}
		return nil, fmt.Errorf("category fetch failed for %s: %w", categoryID, err)
	}

	detail := &model.CategoryDetail{
		Category: model.Category{
			ID:   categoryID,
			Name: titleFromID(categoryID),
		},
		Coins: coins,
	}
	for _, c := range coins {
		detail.MarketCap += c.MarketCap
		detail.Volume24h += c.Volume24h
	}

	s.store.Put(key, detail)
	_, ts, _ := s.store.Any(key)

	return &model.CategoryResult{
		Detail:    detail,
		Timestamp: ts,
	}, nil
}

// titleFromID turns "decentralized-finance-defi" into
// "Decentralized Finance Defi" for display when the listing name is not
// cached.
func titleFromID(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
