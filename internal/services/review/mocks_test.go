package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
)

type mockItemRepository struct {
	getByIDFunc         func(ctx context.Context, id uuid.UUID) (*models.InboxItem, error)
	setStatusFunc       func(ctx context.Context, id uuid.UUID, status models.ItemStatus) error
	setUserFeedbackFunc func(ctx context.Context, id uuid.UUID, fb *models.UserFeedback) error
	archiveFunc         func(ctx context.Context, id uuid.UUID, reason models.ArchiveReason, allowError bool) error
	needsReviewFunc     func(ctx context.Context, userID uuid.UUID, threshold float64, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error)
	metricsFunc         func(ctx context.Context, userID uuid.UUID, needsReviewThreshold float64) (*database.QueueMetrics, error)
}

func (m *mockItemRepository) Create(ctx context.Context, item *models.InboxItem) error { return nil }

func (m *mockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InboxItem, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *mockItemRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter database.ListFilter) ([]*models.InboxItem, string, error) {
	return nil, "", nil
}

func (m *mockItemRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockItemRepository) ApplyClassification(ctx context.Context, id uuid.UUID, toStatus models.ItemStatus, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag) ([]*models.Action, error) {
	return nil, nil
}

func (m *mockItemRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	return nil
}

func (m *mockItemRepository) MarkRetrying(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockItemRepository) Archive(ctx context.Context, id uuid.UUID, reason models.ArchiveReason, allowError bool) error {
	if m.archiveFunc != nil {
		return m.archiveFunc(ctx, id, reason, allowError)
	}
	return nil
}

func (m *mockItemRepository) Restore(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockItemRepository) SetUserFeedback(ctx context.Context, id uuid.UUID, fb *models.UserFeedback) error {
	if m.setUserFeedbackFunc != nil {
		return m.setUserFeedbackFunc(ctx, id, fb)
	}
	return nil
}

func (m *mockItemRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockItemRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockItemRepository) NeedsReviewQueue(ctx context.Context, userID uuid.UUID, threshold float64, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	if m.needsReviewFunc != nil {
		return m.needsReviewFunc(ctx, userID, threshold, limit, cursor)
	}
	return nil, "", nil
}

func (m *mockItemRepository) DisagreementsQueue(ctx context.Context, userID uuid.UUID, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	return nil, "", nil
}

func (m *mockItemRepository) ErrorQueue(ctx context.Context, userID uuid.UUID, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	return nil, "", nil
}

func (m *mockItemRepository) ReceiptsQueue(ctx context.Context, userID uuid.UUID, threshold float64, limit int) ([]*models.InboxItem, error) {
	return nil, nil
}

func (m *mockItemRepository) Metrics(ctx context.Context, userID uuid.UUID, needsReviewThreshold float64) (*database.QueueMetrics, error) {
	if m.metricsFunc != nil {
		return m.metricsFunc(ctx, userID, needsReviewThreshold)
	}
	return nil, nil
}

func (m *mockItemRepository) SweepAutoArchive(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error) {
	return 0, nil
}

func (m *mockItemRepository) ExpiringSoon(ctx context.Context, userID uuid.UUID, warningCutoff, archiveCutoff time.Time) ([]*models.InboxItem, error) {
	return nil, nil
}

func (m *mockItemRepository) Bankruptcy(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (m *mockItemRepository) SweepStuckProcessing(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

func (m *mockItemRepository) ListUnindexed(ctx context.Context, limit int) ([]*models.InboxItem, int, error) {
	return nil, 0, nil
}

func (m *mockItemRepository) ListUsersWithItems(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

var _ database.ItemRepositoryInterface = (*mockItemRepository)(nil)

type mockActionRepository struct {
	elevatePriorityFunc func(ctx context.Context, itemID uuid.UUID, priority models.Priority) (*uuid.UUID, *models.Priority, error)
	setPriorityFunc     func(ctx context.Context, actionID uuid.UUID, priority models.Priority) error
}

func (m *mockActionRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*models.Action, error) {
	return nil, nil
}

func (m *mockActionRepository) ElevatePriority(ctx context.Context, itemID uuid.UUID, priority models.Priority) (*uuid.UUID, *models.Priority, error) {
	if m.elevatePriorityFunc != nil {
		return m.elevatePriorityFunc(ctx, itemID, priority)
	}
	return nil, nil, nil
}

func (m *mockActionRepository) SetPriority(ctx context.Context, actionID uuid.UUID, priority models.Priority) error {
	if m.setPriorityFunc != nil {
		return m.setPriorityFunc(ctx, actionID, priority)
	}
	return nil
}

func (m *mockActionRepository) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	return nil
}

var _ database.ActionRepositoryInterface = (*mockActionRepository)(nil)

type mockFeedbackRepository struct {
	recordFunc func(ctx context.Context, itemID, userID uuid.UUID, decision models.SwipeDecision) (*models.FeedbackEvent, bool, error)
	deleteFunc func(ctx context.Context, eventID uuid.UUID) error
}

func (m *mockFeedbackRepository) Record(ctx context.Context, itemID, userID uuid.UUID, decision models.SwipeDecision) (*models.FeedbackEvent, bool, error) {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, itemID, userID, decision)
	}
	return &models.FeedbackEvent{ID: uuid.New(), ItemID: itemID, UserID: userID, Decision: decision, AppliedAt: time.Now()}, true, nil
}

func (m *mockFeedbackRepository) Delete(ctx context.Context, eventID uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, eventID)
	}
	return nil
}

func (m *mockFeedbackRepository) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	return nil
}

var _ database.FeedbackRepositoryInterface = (*mockFeedbackRepository)(nil)

// memoryUndoStore is an in-process UndoStore for tests. TTLs are ignored;
// expiry is exercised by taking records out.
type memoryUndoStore struct {
	records map[uuid.UUID]*models.FeedbackUndo
}

func newMemoryUndoStore() *memoryUndoStore {
	return &memoryUndoStore{records: make(map[uuid.UUID]*models.FeedbackUndo)}
}

func (s *memoryUndoStore) Put(ctx context.Context, undo *models.FeedbackUndo, ttl time.Duration) error {
	s.records[undo.EventID] = undo
	return nil
}

func (s *memoryUndoStore) Take(ctx context.Context, eventID uuid.UUID) (*models.FeedbackUndo, error) {
	undo, ok := s.records[eventID]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(s.records, eventID)
	return undo, nil
}

var _ UndoStore = (*memoryUndoStore)(nil)
