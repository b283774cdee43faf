package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"go.uber.org/zap"
)

type mockItemRepository struct {
	database.ItemRepositoryInterface

	listUnindexedFunc func(ctx context.Context, limit int) ([]*models.InboxItem, int, error)
}

func (m *mockItemRepository) ListUnindexed(ctx context.Context, limit int) ([]*models.InboxItem, int, error) {
	return m.listUnindexedFunc(ctx, limit)
}

type mockIndexRepository struct {
	upsertFunc func(ctx context.Context, entry *models.SearchIndexEntry) error
	deleteFunc func(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) error
}

func (m *mockIndexRepository) Upsert(ctx context.Context, entry *models.SearchIndexEntry) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, entry)
	}
	return nil
}

func (m *mockIndexRepository) GetBySource(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) (*models.SearchIndexEntry, error) {
	return nil, models.ErrNotFound
}

func (m *mockIndexRepository) DeleteBySource(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, sourceType, sourceID)
	}
	return nil
}

var _ database.SearchIndexRepositoryInterface = (*mockIndexRepository)(nil)

func TestBuildEntryFullItem(t *testing.T) {
	t.Parallel()

	item := &models.InboxItem{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Content: "Dentist said to book a cleaning",
		Status:  models.ItemStatusReviewed,
		Classification: &models.Classification{
			Category:   models.CategoryAction,
			Confidence: 0.9,
			Reasoning:  "contains a clear task",
		},
		ExtractedActions: []models.ExtractedAction{
			{Description: "Book dental cleaning", Priority: models.PriorityNormal},
			{Description: "Check insurance coverage", Priority: models.PriorityLow},
		},
		Tags: []models.Tag{
			{Type: models.TagTypeTopic, Value: "health"},
			{Type: models.TagTypePerson, Value: "dentist"},
		},
	}

	entry := BuildEntry(item)

	if entry.SourceType != models.SourceTypeItem || entry.SourceID != item.ID {
		t.Errorf("entry key = %s/%s, want ITEM/%s", entry.SourceType, entry.SourceID, item.ID)
	}
	if entry.Title != "Book dental cleaning" {
		t.Errorf("title = %q, want first action description", entry.Title)
	}
	for _, want := range []string{
		"Dentist said to book a cleaning",
		"contains a clear task",
		"Book dental cleaning",
		"Check insurance coverage",
		"health",
		"dentist",
	} {
		if !strings.Contains(entry.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if len(entry.TagValues) != 2 {
		t.Errorf("tag values = %v, want 2", entry.TagValues)
	}
}

func TestBuildEntryUnclassifiedUsesContentPrefix(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	item := &models.InboxItem{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Content: long,
		Status:  models.ItemStatusPending,
	}

	entry := BuildEntry(item)

	if len(entry.Title) != titlePrefixLen {
		t.Errorf("title length = %d, want %d", len(entry.Title), titlePrefixLen)
	}
	if entry.Content != long {
		t.Error("content should be the raw content alone")
	}
}

func TestBuildEntryTitleKeepsRunesIntact(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("héj", 50)
	item := &models.InboxItem{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Content: long,
		Status:  models.ItemStatusPending,
	}

	entry := BuildEntry(item)

	if !utf8.ValidString(entry.Title) {
		t.Errorf("title %q is not valid UTF-8", entry.Title)
	}
	if got := utf8.RuneCountInString(entry.Title); got != titlePrefixLen {
		t.Errorf("title rune count = %d, want %d", got, titlePrefixLen)
	}
	if !strings.HasPrefix(long, entry.Title) {
		t.Error("title is not a prefix of the content")
	}
}

func TestBuildEntryIsDeterministic(t *testing.T) {
	t.Parallel()

	item := &models.InboxItem{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Content: "note to self",
		Status:  models.ItemStatusReviewed,
		Classification: &models.Classification{
			Category: models.CategoryNote, Confidence: 0.85, Reasoning: "a note",
		},
	}

	first := BuildEntry(item)
	second := BuildEntry(item)

	if first.Title != second.Title || first.Content != second.Content {
		t.Error("same item state produced different entries")
	}
}

func TestIndexable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  models.ItemStatus
		content string
		want    bool
	}{
		{name: "reviewed", status: models.ItemStatusReviewed, content: "x", want: true},
		{name: "pending with content", status: models.ItemStatusPending, content: "x", want: true},
		{name: "pending without content", status: models.ItemStatusPending, content: "", want: false},
		{name: "processing", status: models.ItemStatusProcessing, content: "x", want: false},
		{name: "error", status: models.ItemStatusError, content: "x", want: false},
		{name: "archived", status: models.ItemStatusArchived, content: "x", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &models.InboxItem{Status: tt.status, Content: tt.content}
			if got := Indexable(item); got != tt.want {
				t.Errorf("Indexable(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestReconcileCounts(t *testing.T) {
	t.Parallel()

	good := &models.InboxItem{ID: uuid.New(), UserID: uuid.New(), Content: "a", Status: models.ItemStatusReviewed}
	bad := &models.InboxItem{ID: uuid.New(), UserID: uuid.New(), Content: "b", Status: models.ItemStatusReviewed}
	skip := &models.InboxItem{ID: uuid.New(), UserID: uuid.New(), Content: "", Status: models.ItemStatusPending}

	items := &mockItemRepository{
		listUnindexedFunc: func(ctx context.Context, limit int) ([]*models.InboxItem, int, error) {
			if limit != 50 {
				t.Errorf("batch size = %d, want 50", limit)
			}
			return []*models.InboxItem{good, bad, skip}, 10, nil
		},
	}
	index := &mockIndexRepository{
		upsertFunc: func(ctx context.Context, entry *models.SearchIndexEntry) error {
			if entry.SourceID == bad.ID {
				return errors.New("index write failed")
			}
			return nil
		},
	}

	ix := NewIndexer(items, index, zap.NewNop())

	result, err := ix.Reconcile(context.Background(), 50)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if result.Indexed != 1 || result.Failed != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 indexed, 1 failed, 1 skipped", result)
	}
	if result.Remaining != 8 {
		t.Errorf("remaining = %d, want 8", result.Remaining)
	}
}

func TestIndexItemSkipsNonIndexable(t *testing.T) {
	t.Parallel()

	upserts := 0
	index := &mockIndexRepository{
		upsertFunc: func(ctx context.Context, entry *models.SearchIndexEntry) error {
			upserts++
			return nil
		},
	}

	ix := NewIndexer(&mockItemRepository{}, index, zap.NewNop())

	item := &models.InboxItem{ID: uuid.New(), Status: models.ItemStatusProcessing, Content: "x"}
	if err := ix.IndexItem(context.Background(), item); err != nil {
		t.Fatalf("IndexItem() error = %v", err)
	}
	if upserts != 0 {
		t.Errorf("upserts = %d, want 0 for non-indexable item", upserts)
	}
}
