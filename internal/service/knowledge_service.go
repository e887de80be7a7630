package service

import (
	"context"
	"sort"

	"github.com/yourorg/crypto-dashboard/internal/model"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"go.uber.org/zap"
)

// KnowledgeStore is the persistence surface the knowledge service needs.
type KnowledgeStore interface {
	InsertBatch(ctx context.Context, records []model.KnowledgeRecord) (*model.IngestResult, error)
	List(ctx context.Context, filter model.KnowledgeFilter) ([]model.KnowledgeRecord, error)
	ExistingLinks(ctx context.Context, links []string) (map[string]bool, error)
}

// CoinLister exposes the coins the market resolver currently knows about.
// A nil lister disables summary enrichment.
type CoinLister interface {
	KnownCoins() []utils.CoinRef
}

// EventPublisher pushes analytics events to the event stream. A nil
// publisher disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// KnowledgeService handles ingestion and aggregation of AI analysis records
type KnowledgeService struct {
	repo      KnowledgeStore
	coins     CoinLister
	publisher EventPublisher
	topic     string
	logger    *zap.Logger
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(repo KnowledgeStore, coins CoinLister, publisher EventPublisher, topic string, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{
		repo:      repo,
		coins:     coins,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// Ingest bulk-inserts records, skipping any whose link already exists, and
// publishes an ingest event when anything new landed. Known links are
// partitioned out with one lookup up front; the unique constraint on link
// still backstops anything inserted concurrently.
func (s *KnowledgeService) Ingest(ctx context.Context, records []model.KnowledgeRecord) (*model.IngestResult, error) {
	links := make([]string, 0, len(records))
	for _, rec := range records {
		links = append(links, rec.Link)
	}

	existing, err := s.repo.ExistingLinks(ctx, links)
	if err != nil {
		return nil, err
	}

	result := &model.IngestResult{}
	fresh := make([]model.KnowledgeRecord, 0, len(records))
	for _, rec := range records {
		if existing[rec.Link] {
			result.Skipped++
			result.SkippedLinks = append(result.SkippedLinks, rec.Link)
			continue
		}
		fresh = append(fresh, rec)
	}

	if len(fresh) > 0 {
		inserted, err := s.repo.InsertBatch(ctx, fresh)
		if err != nil {
			return nil, err
		}
		result.Inserted = inserted.Inserted
		result.Skipped += inserted.Skipped
		result.SkippedLinks = append(result.SkippedLinks, inserted.SkippedLinks...)
	}

	if s.publisher != nil && result.Inserted > 0 {
		event := map[string]interface{}{
			"type":     "knowledge.ingested",
			"inserted": result.Inserted,
			"skipped":  result.Skipped,
		}
		if perr := s.publisher.Publish(ctx, s.topic, "knowledge", event); perr != nil {
			// Event delivery is best effort.
			s.logger.Warn("Failed to publish knowledge event", zap.Error(perr))
		}
	}

	s.logger.Info("Knowledge batch ingested",
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// List returns records matching the filter.
func (s *KnowledgeService) List(ctx context.Context, filter model.KnowledgeFilter) ([]model.KnowledgeRecord, error) {
	return s.repo.List(ctx, filter)
}

// Summarize aggregates records and resolves each mention name against the
// coins the market resolver knows, filling in coin ids and tickers where a
// match exists.
func (s *KnowledgeService) Summarize(records []model.KnowledgeRecord) *model.KnowledgeSummary {
	summary := Summarize(records)

	if s.coins == nil {
		return summary
	}
	refs := s.coins.KnownCoins()
	if len(refs) == 0 {
		return summary
	}

	for ci := range summary.Channels {
		for di := range summary.Channels[ci].Dates {
			mentions := summary.Channels[ci].Dates[di].CoinMentions
			for mi := range mentions {
				if ref, ok := utils.MatchCoin(mentions[mi].Coin, refs); ok {
					mentions[mi].CoinID = ref.ID
					mentions[mi].Symbol = ref.Symbol
				}
			}
		}
	}

	return summary
}

// Summarize runs the aggregation pipeline: records grouped by channel, then
// by video date, with mention counts, rpoints sums and category tallies per
// bucket. Channels and dates come back sorted for stable output.
func Summarize(records []model.KnowledgeRecord) *model.KnowledgeSummary {
	type dateBucket struct {
		totalRpoints float64
		mentions     map[string]*model.CoinMentionAgg
		categories   map[string]int
	}

	byChannel := make(map[string]map[string]*dateBucket)

	for _, rec := range records {
		day := rec.Date.Format("2006-01-02")

		dates, ok := byChannel[rec.Channel]
		if !ok {
			dates = make(map[string]*dateBucket)
			byChannel[rec.Channel] = dates
		}

		bucket, ok := dates[day]
		if !ok {
			bucket = &dateBucket{
				mentions:   make(map[string]*model.CoinMentionAgg),
				categories: make(map[string]int),
			}
			dates[day] = bucket
		}

		for _, m := range rec.Mentions {
			agg, ok := bucket.mentions[m.Coin]
			if !ok {
				agg = &model.CoinMentionAgg{Coin: m.Coin}
				bucket.mentions[m.Coin] = agg
			}
			count := m.Count
			if count == 0 {
				count = 1
			}
			agg.MentionCount += count
			agg.TotalRpoints += m.Rpoints
			bucket.totalRpoints += m.Rpoints

			for _, cat := range m.Categories {
				bucket.categories[cat]++
			}
		}
	}

	summary := &model.KnowledgeSummary{}

	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	for _, ch := range channels {
		chSummary := model.ChannelSummary{Channel: ch}

		days := make([]string, 0, len(byChannel[ch]))
		for day := range byChannel[ch] {
			days = append(days, day)
		}
		sort.Strings(days)

		for _, day := range days {
			bucket := byChannel[ch][day]

			coins := make([]string, 0, len(bucket.mentions))
			for coin := range bucket.mentions {
				coins = append(coins, coin)
			}
			// Highest rpoints first, name as tiebreak.
			sort.Slice(coins, func(i, j int) bool {
				a, b := bucket.mentions[coins[i]], bucket.mentions[coins[j]]
				if a.TotalRpoints != b.TotalRpoints {
					return a.TotalRpoints > b.TotalRpoints
				}
				return a.Coin < b.Coin
			})

			ds := model.DateSummary{
				Date:           day,
				TotalRpoints:   bucket.totalRpoints,
				CategoryCounts: bucket.categories,
			}
			for _, coin := range coins {
				ds.CoinMentions = append(ds.CoinMentions, *bucket.mentions[coin])
			}
			chSummary.Dates = append(chSummary.Dates, ds)
		}

		summary.Channels = append(summary.Channels, chSummary)
	}

	return summary
}
