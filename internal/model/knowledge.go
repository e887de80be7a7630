package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ProjectMention is one coin/project mentioned in an analyzed video, with its
// relevance score (rpoints) and category labels.
type ProjectMention struct {
	Coin       string   `json:"coin"`
	Symbol     string   `json:"symbol,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Rpoints    float64  `json:"rpoints"`
	Count      int      `json:"count"`
}

// KnowledgeRecord is one AI-analysis entry for a video. Link is unique; a
// record whose link already exists is skipped on insert.
type KnowledgeRecord struct {
	ID        int64            `db:"id" json:"id"`
	Link      string           `db:"link" json:"link"`
	Title     string           `db:"title" json:"title"`
	Channel   string           `db:"channel" json:"channel"`
	Date      time.Time        `db:"video_date" json:"date"`
	Summary   string           `db:"summary" json:"summary,omitempty"`
	Mentions  []ProjectMention `db:"-" json:"mentions"`
	RawLLM    types.JSONText   `db:"llm_answer" json:"llm_answer,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// KnowledgeFilter narrows knowledge queries.
type KnowledgeFilter struct {
	Channel string
	From    *time.Time
	To      *time.Time
	Limit   int
}

// IngestResult reports the outcome of a bulk knowledge insert.
type IngestResult struct {
	Inserted     int      `json:"inserted"`
	Skipped      int      `json:"skipped"`
	SkippedLinks []string `json:"skippedLinks,omitempty"`
}

// CoinMentionAgg is a coin's aggregated mentions within one channel/date
// bucket. CoinID and Symbol are filled when the mention name maps to a coin
// in the market listing cache.
type CoinMentionAgg struct {
	Coin         string  `json:"coin"`
	CoinID       string  `json:"coinId,omitempty"`
	Symbol       string  `json:"symbol,omitempty"`
	MentionCount int     `json:"mentionCount"`
	TotalRpoints float64 `json:"totalRpoints"`
}

// DateSummary aggregates one channel's records for a single calendar day.
type DateSummary struct {
	Date           string           `json:"date"`
	TotalRpoints   float64          `json:"totalRpoints"`
	CoinMentions   []CoinMentionAgg `json:"coinMentions"`
	CategoryCounts map[string]int   `json:"categoryCounts"`
}

// ChannelSummary aggregates a channel's records by date.
type ChannelSummary struct {
	Channel string        `json:"channel"`
	Dates   []DateSummary `json:"dates"`
}

// KnowledgeSummary is the output of the aggregation pipeline.
type KnowledgeSummary struct {
	Channels []ChannelSummary `json:"channels"`
}
