package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stillwater-dev/inboxd/internal/models"
)

// SearchIndexRepository owns the denormalized search entries. The primary key
// on (source_type, source_id) makes Upsert idempotent: indexing the same item
// state twice converges on one identical row.
type SearchIndexRepository struct {
	db *DB
}

// NewSearchIndexRepository creates a new search index repository
func NewSearchIndexRepository(db *DB) *SearchIndexRepository {
	return &SearchIndexRepository{db: db}
}

// Upsert creates or replaces the entry for a source record
func (r *SearchIndexRepository) Upsert(ctx context.Context, entry *models.SearchIndexEntry) error {
	query := `
		INSERT INTO search_index (source_type, source_id, user_id, title, content, tag_values, embedding_ref, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source_type, source_id) DO UPDATE
		SET title = EXCLUDED.title,
		    content = EXCLUDED.content,
		    tag_values = EXCLUDED.tag_values,
		    embedding_ref = EXCLUDED.embedding_ref,
		    updated_at = EXCLUDED.updated_at
	`

	entry.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		entry.SourceType,
		entry.SourceID,
		entry.UserID,
		entry.Title,
		entry.Content,
		pq.Array(entry.TagValues),
		entry.EmbeddingRef,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert search index entry: %w", err)
	}

	return nil
}

// GetBySource retrieves the entry for a source record
func (r *SearchIndexRepository) GetBySource(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) (*models.SearchIndexEntry, error) {
	entry := &models.SearchIndexEntry{}
	var embeddingRef sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT source_type, source_id, user_id, title, content, tag_values, embedding_ref, updated_at
		FROM search_index
		WHERE source_type = $1 AND source_id = $2
	`, sourceType, sourceID).Scan(
		&entry.SourceType,
		&entry.SourceID,
		&entry.UserID,
		&entry.Title,
		&entry.Content,
		pq.Array(&entry.TagValues),
		&embeddingRef,
		&entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("search index entry for %s/%s: %w", sourceType, sourceID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search index entry: %w", err)
	}

	entry.EmbeddingRef = embeddingRef.String
	return entry, nil
}

// DeleteBySource removes the entry for a permanently deleted source record.
// Archival does not delete entries; archived items stay searchable.
func (r *SearchIndexRepository) DeleteBySource(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM search_index WHERE source_type = $1 AND source_id = $2`,
		sourceType, sourceID); err != nil {
		return fmt.Errorf("failed to delete search index entry: %w", err)
	}
	return nil
}
