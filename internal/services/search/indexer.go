// Package search keeps the denormalized search index consistent with the
// item store.
package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"go.uber.org/zap"
)

// titlePrefixLen caps titles derived from raw content
const titlePrefixLen = 80

// Indexer builds and reconciles search index entries for inbox items
type Indexer struct {
	items  database.ItemRepositoryInterface
	index  database.SearchIndexRepositoryInterface
	logger *zap.Logger
}

// NewIndexer creates an indexer
func NewIndexer(items database.ItemRepositoryInterface, index database.SearchIndexRepositoryInterface, logger *zap.Logger) *Indexer {
	return &Indexer{items: items, index: index, logger: logger}
}

// BuildEntry derives the search index entry for an item. The same item state
// always yields the same entry, which together with the upsert keyed on
// (sourceType, sourceId) makes indexing idempotent.
func BuildEntry(item *models.InboxItem) *models.SearchIndexEntry {
	var parts []string
	if item.Content != "" {
		parts = append(parts, item.Content)
	}
	if item.Classification != nil && item.Classification.Reasoning != "" {
		parts = append(parts, item.Classification.Reasoning)
	}

	var descriptions []string
	for _, ea := range item.ExtractedActions {
		if ea.Description != "" {
			descriptions = append(descriptions, ea.Description)
		}
	}
	if len(descriptions) > 0 {
		parts = append(parts, strings.Join(descriptions, " "))
	}

	var tagValues []string
	for _, tag := range item.Tags {
		if tag.Value != "" {
			tagValues = append(tagValues, tag.Value)
		}
	}
	if len(tagValues) > 0 {
		parts = append(parts, strings.Join(tagValues, " "))
	}

	title := ""
	if len(descriptions) > 0 {
		title = descriptions[0]
	} else {
		title = titlePrefix(item.Content)
	}

	return &models.SearchIndexEntry{
		SourceType: models.SourceTypeItem,
		SourceID:   item.ID,
		UserID:     item.UserID,
		Title:      title,
		Content:    strings.Join(parts, "\n"),
		TagValues:  tagValues,
	}
}

// titlePrefix truncates content to titlePrefixLen runes, never splitting a
// multi-byte character.
func titlePrefix(content string) string {
	if utf8.RuneCountInString(content) <= titlePrefixLen {
		return content
	}
	return string([]rune(content)[:titlePrefixLen])
}

// Indexable reports whether an item should have an index entry: reviewed, or
// pending with content so capture is searchable before classification.
func Indexable(item *models.InboxItem) bool {
	switch item.Status {
	case models.ItemStatusReviewed:
		return true
	case models.ItemStatusPending:
		return item.Content != ""
	default:
		return false
	}
}

// IndexItem upserts the entry for one item, skipping non-indexable states
func (ix *Indexer) IndexItem(ctx context.Context, item *models.InboxItem) error {
	if !Indexable(item) {
		return nil
	}
	return ix.index.Upsert(ctx, BuildEntry(item))
}

// RemoveItem drops the entry for a permanently deleted item
func (ix *Indexer) RemoveItem(ctx context.Context, item *models.InboxItem) error {
	return ix.index.DeleteBySource(ctx, models.SourceTypeItem, item.ID)
}

// ReconcileResult reports one bounded reconciliation pass. Remaining counts
// the unindexed items left after this pass, so the caller can decide whether
// to re-invoke.
type ReconcileResult struct {
	Indexed   int `json:"indexed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Remaining int `json:"remaining"`
}

// Reconcile backfills index entries for items that lack one, in a single
// bounded batch. A failure on one item does not stop the batch; failed items
// stay unindexed and are retried on the next pass.
func (ix *Indexer) Reconcile(ctx context.Context, batchSize int) (*ReconcileResult, error) {
	items, remaining, err := ix.items.ListUnindexed(ctx, batchSize)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	for _, item := range items {
		if !Indexable(item) {
			result.Skipped++
			continue
		}
		if err := ix.index.Upsert(ctx, BuildEntry(item)); err != nil {
			result.Failed++
			ix.logger.Error("failed_to_index_item",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Indexed++
	}

	result.Remaining = remaining - result.Indexed - result.Skipped
	if result.Remaining < 0 {
		result.Remaining = 0
	}

	ix.logger.Info("reindex_pass_complete",
		zap.Int("indexed", result.Indexed),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
		zap.Int("remaining", result.Remaining),
	)

	return result, nil
}
