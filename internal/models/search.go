package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceType identifies what kind of record a search index entry was derived
// from. Only items are indexed here; other source types live elsewhere.
type SourceType string

const (
	SourceTypeItem SourceType = "ITEM"
)

// SearchIndexEntry is the denormalized searchable view of a source record,
// unique per (SourceType, SourceID). Archived items remain indexed; entries
// are removed only when the source is deleted.
type SearchIndexEntry struct {
	SourceType   SourceType `json:"source_type"`
	SourceID     uuid.UUID  `json:"source_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	TagValues    []string   `json:"tag_values,omitempty"`
	EmbeddingRef string     `json:"embedding_ref,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
