package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/models"
)

// ItemRepositoryInterface defines the interface for item repository operations
// This interface enables better testability by allowing mock implementations
type ItemRepositoryInterface interface {
	Create(ctx context.Context, item *models.InboxItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InboxItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.InboxItem, string, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	ApplyClassification(ctx context.Context, id uuid.UUID, toStatus models.ItemStatus, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag) ([]*models.Action, error)
	MarkError(ctx context.Context, id uuid.UUID, message string) error
	MarkRetrying(ctx context.Context, id uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID, reason models.ArchiveReason, allowError bool) error
	Restore(ctx context.Context, id uuid.UUID) error
	SetUserFeedback(ctx context.Context, id uuid.UUID, fb *models.UserFeedback) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	NeedsReviewQueue(ctx context.Context, userID uuid.UUID, threshold float64, limit int, cursor *Cursor) ([]*models.InboxItem, string, error)
	DisagreementsQueue(ctx context.Context, userID uuid.UUID, limit int, cursor *Cursor) ([]*models.InboxItem, string, error)
	ErrorQueue(ctx context.Context, userID uuid.UUID, limit int, cursor *Cursor) ([]*models.InboxItem, string, error)
	ReceiptsQueue(ctx context.Context, userID uuid.UUID, threshold float64, limit int) ([]*models.InboxItem, error)
	Metrics(ctx context.Context, userID uuid.UUID, needsReviewThreshold float64) (*QueueMetrics, error)
	SweepAutoArchive(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error)
	ExpiringSoon(ctx context.Context, userID uuid.UUID, warningCutoff, archiveCutoff time.Time) ([]*models.InboxItem, error)
	Bankruptcy(ctx context.Context, userID uuid.UUID) (int, error)
	SweepStuckProcessing(ctx context.Context, olderThan time.Time) (int, error)
	ListUnindexed(ctx context.Context, limit int) ([]*models.InboxItem, int, error)
	ListUsersWithItems(ctx context.Context) ([]uuid.UUID, error)
}

// ActionRepositoryInterface defines the interface for action repository operations
type ActionRepositoryInterface interface {
	GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*models.Action, error)
	ElevatePriority(ctx context.Context, itemID uuid.UUID, priority models.Priority) (*uuid.UUID, *models.Priority, error)
	SetPriority(ctx context.Context, actionID uuid.UUID, priority models.Priority) error
	DeleteByItemID(ctx context.Context, itemID uuid.UUID) error
}

// FeedbackRepositoryInterface defines the interface for feedback repository operations
type FeedbackRepositoryInterface interface {
	Record(ctx context.Context, itemID, userID uuid.UUID, decision models.SwipeDecision) (*models.FeedbackEvent, bool, error)
	Delete(ctx context.Context, eventID uuid.UUID) error
	DeleteByItemID(ctx context.Context, itemID uuid.UUID) error
}

// SearchIndexRepositoryInterface defines the interface for search index repository operations
type SearchIndexRepositoryInterface interface {
	Upsert(ctx context.Context, entry *models.SearchIndexEntry) error
	GetBySource(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) (*models.SearchIndexEntry, error)
	DeleteBySource(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var (
	_ ItemRepositoryInterface        = (*ItemRepository)(nil)
	_ ActionRepositoryInterface      = (*ActionRepository)(nil)
	_ FeedbackRepositoryInterface    = (*FeedbackRepository)(nil)
	_ SearchIndexRepositoryInterface = (*SearchIndexRepository)(nil)
)
