package service

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/model"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"go.uber.org/zap"
)

// fakeKnowledgeStore mimics the link-unique insert semantics of the real
// repository in memory.
type fakeKnowledgeStore struct {
	records      map[string]model.KnowledgeRecord
	insertCalls  int
	lookupCalls  int
	lastInserted []model.KnowledgeRecord
	listErr      error
}

func newFakeKnowledgeStore() *fakeKnowledgeStore {
	return &fakeKnowledgeStore{records: make(map[string]model.KnowledgeRecord)}
}

func (f *fakeKnowledgeStore) InsertBatch(ctx context.Context, records []model.KnowledgeRecord) (*model.IngestResult, error) {
	f.insertCalls++
	f.lastInserted = records

	result := &model.IngestResult{}
	for _, rec := range records {
		if _, exists := f.records[rec.Link]; exists {
			result.Skipped++
			result.SkippedLinks = append(result.SkippedLinks, rec.Link)
			continue
		}
		f.records[rec.Link] = rec
		result.Inserted++
	}
	return result, nil
}

func (f *fakeKnowledgeStore) ExistingLinks(ctx context.Context, links []string) (map[string]bool, error) {
	f.lookupCalls++

	existing := make(map[string]bool)
	for _, link := range links {
		if _, ok := f.records[link]; ok {
			existing[link] = true
		}
	}
	return existing, nil
}

func (f *fakeKnowledgeStore) List(ctx context.Context, filter model.KnowledgeFilter) ([]model.KnowledgeRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.KnowledgeRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

type fakePublisher struct {
	events []map[string]interface{}
	topics []string
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	if m, ok := value.(map[string]interface{}); ok {
		f.events = append(f.events, m)
	}
	return nil
}

func knowledgeRecord(link, channel string, date time.Time, mentions ...model.ProjectMention) model.KnowledgeRecord {
	return model.KnowledgeRecord{
		Link:     link,
		Title:    "Video at " + link,
		Channel:  channel,
		Date:     date,
		Mentions: mentions,
	}
}

func TestIngestIdempotence(t *testing.T) {
	store := newFakeKnowledgeStore()
	svc := NewKnowledgeService(store, nil, nil, "analytics", zap.NewNop())

	batch := []model.KnowledgeRecord{
		knowledgeRecord("https://youtu.be/a", "AlphaChannel", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
		knowledgeRecord("https://youtu.be/b", "AlphaChannel", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)),
	}

	first, err := svc.Ingest(context.Background(), batch)
	if err != nil {
		t.Fatalf("first Ingest returned error: %v", err)
	}
	if first.Inserted != 2 || first.Skipped != 0 {
		t.Errorf("first ingest = %d inserted / %d skipped, want 2/0", first.Inserted, first.Skipped)
	}

	second, err := svc.Ingest(context.Background(), batch)
	if err != nil {
		t.Fatalf("second Ingest returned error: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 2 {
		t.Errorf("second ingest = %d inserted / %d skipped, want 0/2", second.Inserted, second.Skipped)
	}
	if len(second.SkippedLinks) != 2 {
		t.Errorf("expected both links reported as skipped, got %v", second.SkippedLinks)
	}
	if len(store.records) != 2 {
		t.Errorf("store should hold exactly 2 records, got %d", len(store.records))
	}
}

func TestIngestPartitionsKnownLinks(t *testing.T) {
	store := newFakeKnowledgeStore()
	store.records["https://youtu.be/old"] = knowledgeRecord(
		"https://youtu.be/old", "AlphaChannel", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))

	svc := NewKnowledgeService(store, nil, nil, "analytics", zap.NewNop())

	batch := []model.KnowledgeRecord{
		knowledgeRecord("https://youtu.be/old", "AlphaChannel", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)),
		knowledgeRecord("https://youtu.be/new", "AlphaChannel", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
	}

	result, err := svc.Ingest(context.Background(), batch)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if store.lookupCalls != 1 {
		t.Errorf("expected one link lookup, got %d", store.lookupCalls)
	}
	if result.Inserted != 1 || result.Skipped != 1 {
		t.Errorf("ingest = %d inserted / %d skipped, want 1/1", result.Inserted, result.Skipped)
	}
	if len(result.SkippedLinks) != 1 || result.SkippedLinks[0] != "https://youtu.be/old" {
		t.Errorf("skipped links = %v, want the known link only", result.SkippedLinks)
	}

	// Only the fresh record reaches the insert.
	if len(store.lastInserted) != 1 || store.lastInserted[0].Link != "https://youtu.be/new" {
		t.Errorf("insert received %v, want the new link only", store.lastInserted)
	}

	// An all-duplicate batch never touches the insert path.
	inserts := store.insertCalls
	result, err = svc.Ingest(context.Background(), batch[:1])
	if err != nil {
		t.Fatalf("duplicate Ingest returned error: %v", err)
	}
	if store.insertCalls != inserts {
		t.Errorf("all-duplicate batch must skip the insert, got %d extra calls", store.insertCalls-inserts)
	}
	if result.Inserted != 0 || result.Skipped != 1 {
		t.Errorf("duplicate ingest = %d inserted / %d skipped, want 0/1", result.Inserted, result.Skipped)
	}
}

func TestIngestPublishesEvent(t *testing.T) {
	store := newFakeKnowledgeStore()
	pub := &fakePublisher{}
	svc := NewKnowledgeService(store, nil, pub, "analytics", zap.NewNop())

	batch := []model.KnowledgeRecord{
		knowledgeRecord("https://youtu.be/a", "AlphaChannel", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
	}

	if _, err := svc.Ingest(context.Background(), batch); err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	if pub.topics[0] != "analytics" {
		t.Errorf("event published to %q, want analytics", pub.topics[0])
	}

	// An all-duplicate batch inserts nothing and publishes nothing.
	if _, err := svc.Ingest(context.Background(), batch); err != nil {
		t.Fatalf("duplicate Ingest returned error: %v", err)
	}
	if len(pub.events) != 1 {
		t.Errorf("duplicate-only batch must not publish, got %d events", len(pub.events))
	}
}

func TestIngestSurvivesPublishFailure(t *testing.T) {
	store := newFakeKnowledgeStore()
	pub := &fakePublisher{err: context.DeadlineExceeded}
	svc := NewKnowledgeService(store, nil, pub, "analytics", zap.NewNop())

	batch := []model.KnowledgeRecord{
		knowledgeRecord("https://youtu.be/a", "AlphaChannel", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
	}

	result, err := svc.Ingest(context.Background(), batch)
	if err != nil {
		t.Fatalf("Ingest must not fail on publish errors: %v", err)
	}
	if result.Inserted != 1 {
		t.Errorf("expected 1 inserted, got %d", result.Inserted)
	}
}

func TestSummarizeGrouping(t *testing.T) {
	day1 := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	records := []model.KnowledgeRecord{
		knowledgeRecord("https://youtu.be/a", "AlphaChannel", day1,
			model.ProjectMention{Coin: "Bitcoin", Rpoints: 10, Count: 2, Categories: []string{"layer-1"}},
			model.ProjectMention{Coin: "Ethereum", Rpoints: 6, Count: 1, Categories: []string{"layer-1", "defi"}},
		),
		knowledgeRecord("https://youtu.be/b", "AlphaChannel", day1,
			model.ProjectMention{Coin: "Bitcoin", Rpoints: 4}, // Count 0 defaults to 1
		),
		knowledgeRecord("https://youtu.be/c", "AlphaChannel", day2,
			model.ProjectMention{Coin: "Solana", Rpoints: 8, Count: 1},
		),
		knowledgeRecord("https://youtu.be/d", "BetaChannel", day1,
			model.ProjectMention{Coin: "Bitcoin", Rpoints: 3, Count: 1},
		),
	}

	summary := Summarize(records)

	if len(summary.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(summary.Channels))
	}
	if summary.Channels[0].Channel != "AlphaChannel" || summary.Channels[1].Channel != "BetaChannel" {
		t.Errorf("channels must be sorted, got %s / %s",
			summary.Channels[0].Channel, summary.Channels[1].Channel)
	}

	alpha := summary.Channels[0]
	if len(alpha.Dates) != 2 {
		t.Fatalf("expected 2 dates for AlphaChannel, got %d", len(alpha.Dates))
	}
	if alpha.Dates[0].Date != "2024-03-10" || alpha.Dates[1].Date != "2024-03-11" {
		t.Errorf("dates must be sorted, got %s / %s", alpha.Dates[0].Date, alpha.Dates[1].Date)
	}

	bucket := alpha.Dates[0]
	if bucket.TotalRpoints != 20 {
		t.Errorf("day total rpoints = %v, want 20", bucket.TotalRpoints)
	}
	if len(bucket.CoinMentions) != 2 {
		t.Fatalf("expected 2 coins in bucket, got %d", len(bucket.CoinMentions))
	}

	// Bitcoin leads: 14 rpoints across both videos, 3 mentions (2 + default 1).
	btc := bucket.CoinMentions[0]
	if btc.Coin != "Bitcoin" {
		t.Fatalf("highest-rpoints coin should sort first, got %s", btc.Coin)
	}
	if btc.TotalRpoints != 14 {
		t.Errorf("bitcoin rpoints = %v, want 14", btc.TotalRpoints)
	}
	if btc.MentionCount != 3 {
		t.Errorf("bitcoin mention count = %d, want 3", btc.MentionCount)
	}

	if got := bucket.CategoryCounts["layer-1"]; got != 2 {
		t.Errorf("layer-1 tally = %d, want 2", got)
	}
	if got := bucket.CategoryCounts["defi"]; got != 1 {
		t.Errorf("defi tally = %d, want 1", got)
	}
}

type fakeCoinLister struct {
	refs []utils.CoinRef
}

func (f *fakeCoinLister) KnownCoins() []utils.CoinRef { return f.refs }

func TestSummarizeResolvesCoinIDs(t *testing.T) {
	coins := &fakeCoinLister{refs: []utils.CoinRef{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "solana", Symbol: "sol", Name: "Solana"},
	}}
	svc := NewKnowledgeService(newFakeKnowledgeStore(), coins, nil, "analytics", zap.NewNop())

	records := []model.KnowledgeRecord{
		knowledgeRecord("https://youtu.be/a", "AlphaChannel", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			model.ProjectMention{Coin: "Bitcoin", Rpoints: 10, Count: 1},
			model.ProjectMention{Coin: "Some Obscure Gem", Rpoints: 2, Count: 1},
		),
	}

	summary := svc.Summarize(records)
	mentions := summary.Channels[0].Dates[0].CoinMentions
	if len(mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(mentions))
	}

	btc := mentions[0]
	if btc.CoinID != "bitcoin" || btc.Symbol != "btc" {
		t.Errorf("bitcoin mention resolved to %q/%q, want bitcoin/btc", btc.CoinID, btc.Symbol)
	}

	// Unmatched names stay bare rather than guessing.
	if gem := mentions[1]; gem.CoinID != "" || gem.Symbol != "" {
		t.Errorf("unmatched mention got %q/%q, want empty", gem.CoinID, gem.Symbol)
	}
}

func TestSummarizeWithoutCoinLister(t *testing.T) {
	svc := NewKnowledgeService(newFakeKnowledgeStore(), nil, nil, "analytics", zap.NewNop())

	records := []model.KnowledgeRecord{
		knowledgeRecord("https://youtu.be/a", "AlphaChannel", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			model.ProjectMention{Coin: "Bitcoin", Rpoints: 10, Count: 1},
		),
	}

	summary := svc.Summarize(records)
	if m := summary.Channels[0].Dates[0].CoinMentions[0]; m.CoinID != "" {
		t.Errorf("enrichment without a lister should be a no-op, got CoinID %q", m.CoinID)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if len(summary.Channels) != 0 {
		t.Errorf("empty input should produce no channels, got %d", len(summary.Channels))
	}
}
