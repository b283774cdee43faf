package triage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"github.com/stillwater-dev/inboxd/internal/queue"
	"github.com/stillwater-dev/inboxd/internal/services/classifier"
)

// mockItemRepository implements database.ItemRepositoryInterface with
// overridable functions. Unset functions return zero values.
type mockItemRepository struct {
	getByIDFunc             func(ctx context.Context, id uuid.UUID) (*models.InboxItem, error)
	markProcessingFunc      func(ctx context.Context, id uuid.UUID) error
	applyClassificationFunc func(ctx context.Context, id uuid.UUID, toStatus models.ItemStatus, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag) ([]*models.Action, error)
	markErrorFunc           func(ctx context.Context, id uuid.UUID, message string) error
	markRetryingFunc        func(ctx context.Context, id uuid.UUID) error
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

func (m *mockItemRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	if m.markProcessingFunc != nil {
		return m.markProcessingFunc(ctx, id)
	}
	return nil
}

func (m *mockItemRepository) ApplyClassification(ctx context.Context, id uuid.UUID, toStatus models.ItemStatus, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag) ([]*models.Action, error) {
	if m.applyClassificationFunc != nil {
		return m.applyClassificationFunc(ctx, id, toStatus, cls, extracted, tags)
	}
	return nil, nil
}

func (m *mockItemRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	if m.markErrorFunc != nil {
		return m.markErrorFunc(ctx, id, message)
	}
	return nil
}

func (m *mockItemRepository) MarkRetrying(ctx context.Context, id uuid.UUID) error {
	if m.markRetryingFunc != nil {
		return m.markRetryingFunc(ctx, id)
	}
	return nil
}

func (m *mockItemRepository) Archive(ctx context.Context, id uuid.UUID, reason models.ArchiveReason, allowError bool) error {
	return nil
}

func (m *mockItemRepository) Restore(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockItemRepository) SetUserFeedback(ctx context.Context, id uuid.UUID, fb *models.UserFeedback) error {
	return nil
}

func (m *mockItemRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error {
	return nil
}

func (m *mockItemRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockItemRepository) NeedsReviewQueue(ctx context.Context, userID uuid.UUID, threshold float64, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
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

// mockClassifier implements classifier.Dispatcher
type mockClassifier struct {
	dispatchFunc    func(ctx context.Context, req *classifier.DispatchRequest) error
	healthCheckFunc func(ctx context.Context) error
}

func (m *mockClassifier) Dispatch(ctx context.Context, req *classifier.DispatchRequest) error {
	if m.dispatchFunc != nil {
		return m.dispatchFunc(ctx, req)
	}
	return nil
}

func (m *mockClassifier) HealthCheck(ctx context.Context) error {
	if m.healthCheckFunc != nil {
		return m.healthCheckFunc(ctx)
	}
	return nil
}

var _ classifier.Dispatcher = (*mockClassifier)(nil)

// mockJobQueue implements queue.JobQueue
type mockJobQueue struct {
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

func (m *mockJobQueue) Dequeue(ctx context.Context) (*queue.Message, error) { return nil, nil }

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (m *mockJobQueue) Close() error { return nil }

func (m *mockJobQueue) HealthCheck(ctx context.Context) error { return nil }

var _ queue.JobQueue = (*mockJobQueue)(nil)
