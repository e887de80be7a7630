package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourorg/crypto-dashboard/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// KnowledgeRepository handles database operations for AI analysis records
type KnowledgeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewKnowledgeRepository creates a new knowledge repository
func NewKnowledgeRepository(db *sqlx.DB, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

// InsertBatch inserts records inside one transaction, skipping any whose
// link already exists. The skip relies on the unique constraint on link, so
// re-posting the same batch is safe.
func (r *KnowledgeRepository) InsertBatch(ctx context.Context, records []model.KnowledgeRecord) (*model.IngestResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	const insert = `
		INSERT INTO knowledge (link, title, channel, video_date, summary, mentions, llm_answer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (link) DO NOTHING
	`

	result := &model.IngestResult{}
	for _, rec := range records {
		mentions, err := json.Marshal(rec.Mentions)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal mentions for %s: %w", rec.Link, err)
		}

		res, err := tx.ExecContext(ctx, insert,
			rec.Link, rec.Title, rec.Channel, rec.Date, rec.Summary, mentions, rec.RawLLM)
		if err != nil {
			r.logger.Error("Failed to insert knowledge record",
				zap.Error(err),
				zap.String("link", rec.Link))
			return nil, err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			result.Skipped++
			result.SkippedLinks = append(result.SkippedLinks, rec.Link)
		} else {
			result.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit knowledge batch", zap.Error(err))
		return nil, err
	}

	return result, nil
}

// List retrieves knowledge records matching the filter, newest video first.
func (r *KnowledgeRepository) List(ctx context.Context, filter model.KnowledgeFilter) ([]model.KnowledgeRecord, error) {
	query := `
		SELECT id, link, title, channel, video_date, summary, mentions, llm_answer, created_at, updated_at
		FROM knowledge
		WHERE 1=1
	`

	args := []interface{}{}
	argCount := 1

	if filter.Channel != "" {
		query += fmt.Sprintf(" AND channel = $%d", argCount)
		args = append(args, filter.Channel)
		argCount++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND video_date >= $%d", argCount)
		args = append(args, *filter.From)
		argCount++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND video_date <= $%d", argCount)
		args = append(args, *filter.To)
		argCount++
	}

	query += " ORDER BY video_date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list knowledge records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []model.KnowledgeRecord
	for rows.Next() {
		var rec model.KnowledgeRecord
		var mentions []byte
		if err := rows.Scan(&rec.ID, &rec.Link, &rec.Title, &rec.Channel, &rec.Date,
			&rec.Summary, &mentions, &rec.RawLLM, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			r.logger.Error("Failed to scan knowledge record", zap.Error(err))
			return nil, err
		}
		if len(mentions) > 0 {
			if err := json.Unmarshal(mentions, &rec.Mentions); err != nil {
				r.logger.Warn("Malformed mentions payload, skipping",
					zap.String("link", rec.Link),
					zap.Error(err))
			}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ExistingLinks returns which of the given links are already stored.
func (r *KnowledgeRepository) ExistingLinks(ctx context.Context, links []string) (map[string]bool, error) {
	if len(links) == 0 {
		return map[string]bool{}, nil
	}

	var found []string
	err := r.db.SelectContext(ctx, &found,
		`SELECT link FROM knowledge WHERE link = ANY($1)`, pq.Array(links))
	if err != nil {
		r.logger.Error("Failed to check existing links", zap.Error(err))
		return nil, err
	}

	existing := make(map[string]bool, len(found))
	for _, link := range found {
		existing[link] = true
	}
	return existing, nil
}
