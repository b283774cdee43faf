package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"github.com/stillwater-dev/inboxd/internal/services/retention"
	"github.com/stillwater-dev/inboxd/internal/services/review"
	"github.com/stillwater-dev/inboxd/internal/services/search"
)

type mockItemRepository struct {
	database.ItemRepositoryInterface

	createFunc     func(ctx context.Context, item *models.InboxItem) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.InboxItem, error)
	listByUserFunc func(ctx context.Context, userID uuid.UUID, filter database.ListFilter) ([]*models.InboxItem, string, error)
	archiveFunc    func(ctx context.Context, id uuid.UUID, reason models.ArchiveReason, allowError bool) error
	restoreFunc    func(ctx context.Context, id uuid.UUID) error
	deleteFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockItemRepository) Create(ctx context.Context, item *models.InboxItem) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	return nil
}

func (m *mockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InboxItem, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *mockItemRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter database.ListFilter) ([]*models.InboxItem, string, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, filter)
	}
	return nil, "", nil
}

func (m *mockItemRepository) Archive(ctx context.Context, id uuid.UUID, reason models.ArchiveReason, allowError bool) error {
	if m.archiveFunc != nil {
		return m.archiveFunc(ctx, id, reason, allowError)
	}
	return nil
}

func (m *mockItemRepository) Restore(ctx context.Context, id uuid.UUID) error {
	if m.restoreFunc != nil {
		return m.restoreFunc(ctx, id)
	}
	return nil
}

func (m *mockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockActionRepository struct {
	database.ActionRepositoryInterface

	getByItemIDFunc func(ctx context.Context, itemID uuid.UUID) ([]*models.Action, error)
}

func (m *mockActionRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*models.Action, error) {
	if m.getByItemIDFunc != nil {
		return m.getByItemIDFunc(ctx, itemID)
	}
	return nil, nil
}

type mockFeedbackRepository struct {
	database.FeedbackRepositoryInterface

	deleteByItemIDFunc func(ctx context.Context, itemID uuid.UUID) error
}

func (m *mockFeedbackRepository) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	if m.deleteByItemIDFunc != nil {
		return m.deleteByItemIDFunc(ctx, itemID)
	}
	return nil
}

type mockDispatchService struct {
	enqueueFunc func(ctx context.Context, item *models.InboxItem) error
	retryFunc   func(ctx context.Context, itemID uuid.UUID) error
}

func (m *mockDispatchService) Enqueue(ctx context.Context, item *models.InboxItem) error {
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, item)
	}
	return nil
}

func (m *mockDispatchService) Retry(ctx context.Context, itemID uuid.UUID) error {
	if m.retryFunc != nil {
		return m.retryFunc(ctx, itemID)
	}
	return nil
}

var _ DispatchService = (*mockDispatchService)(nil)

type mockIndexService struct {
	indexFunc  func(ctx context.Context, item *models.InboxItem) error
	removeFunc func(ctx context.Context, item *models.InboxItem) error
}

func (m *mockIndexService) IndexItem(ctx context.Context, item *models.InboxItem) error {
	if m.indexFunc != nil {
		return m.indexFunc(ctx, item)
	}
	return nil
}

func (m *mockIndexService) RemoveItem(ctx context.Context, item *models.InboxItem) error {
	if m.removeFunc != nil {
		return m.removeFunc(ctx, item)
	}
	return nil
}

var _ IndexService = (*mockIndexService)(nil)

type mockTriageService struct {
	applyCallbackFunc func(ctx context.Context, itemID uuid.UUID, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag, settings models.UserSettings) ([]*models.Action, models.ItemStatus, error)
	applyFailureFunc  func(ctx context.Context, itemID uuid.UUID, message string) error
}

func (m *mockTriageService) ApplyCallback(ctx context.Context, itemID uuid.UUID, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag, settings models.UserSettings) ([]*models.Action, models.ItemStatus, error) {
	if m.applyCallbackFunc != nil {
		return m.applyCallbackFunc(ctx, itemID, cls, extracted, tags, settings)
	}
	return nil, models.ItemStatusReviewed, nil
}

func (m *mockTriageService) ApplyFailure(ctx context.Context, itemID uuid.UUID, message string) error {
	if m.applyFailureFunc != nil {
		return m.applyFailureFunc(ctx, itemID, message)
	}
	return nil
}

var _ TriageService = (*mockTriageService)(nil)

type mockReviewService struct {
	needsReviewFunc func(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error)
	metricsFunc     func(ctx context.Context, settings models.UserSettings) (*database.QueueMetrics, error)
	swipeFunc       func(ctx context.Context, userID, itemID uuid.UUID, decision models.SwipeDecision) (*review.SwipeResult, error)
	undoFunc        func(ctx context.Context, userID uuid.UUID, eventID uuid.UUID) error
}

func (m *mockReviewService) NeedsReview(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	if m.needsReviewFunc != nil {
		return m.needsReviewFunc(ctx, settings, limit, cursor)
	}
	return nil, "", nil
}

func (m *mockReviewService) Disagreements(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	return nil, "", nil
}

func (m *mockReviewService) Errors(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	return nil, "", nil
}

func (m *mockReviewService) Receipts(ctx context.Context, settings models.UserSettings, limit int) ([]*models.InboxItem, error) {
	return nil, nil
}

func (m *mockReviewService) Metrics(ctx context.Context, settings models.UserSettings) (*database.QueueMetrics, error) {
	if m.metricsFunc != nil {
		return m.metricsFunc(ctx, settings)
	}
	return &database.QueueMetrics{StatusCounts: map[models.ItemStatus]int{}}, nil
}

func (m *mockReviewService) Swipe(ctx context.Context, userID, itemID uuid.UUID, decision models.SwipeDecision) (*review.SwipeResult, error) {
	if m.swipeFunc != nil {
		return m.swipeFunc(ctx, userID, itemID, decision)
	}
	return &review.SwipeResult{Event: &models.FeedbackEvent{ID: uuid.New(), ItemID: itemID, UserID: userID, Decision: decision, AppliedAt: time.Now()}}, nil
}

func (m *mockReviewService) Undo(ctx context.Context, userID uuid.UUID, eventID uuid.UUID) error {
	if m.undoFunc != nil {
		return m.undoFunc(ctx, userID, eventID)
	}
	return nil
}

var _ ReviewService = (*mockReviewService)(nil)

type mockRetentionService struct {
	bankruptcyFunc   func(ctx context.Context, userID uuid.UUID) (int, error)
	expiringSoonFunc func(ctx context.Context, userID uuid.UUID) ([]*models.InboxItem, error)
	sweepAutoFunc    func(ctx context.Context) (*retention.SweepResult, error)
	sweepStuckFunc   func(ctx context.Context) (int, error)
}

func (m *mockRetentionService) Bankruptcy(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.bankruptcyFunc != nil {
		return m.bankruptcyFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockRetentionService) ExpiringSoon(ctx context.Context, userID uuid.UUID) ([]*models.InboxItem, error) {
	if m.expiringSoonFunc != nil {
		return m.expiringSoonFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockRetentionService) SweepAutoArchive(ctx context.Context) (*retention.SweepResult, error) {
	if m.sweepAutoFunc != nil {
		return m.sweepAutoFunc(ctx)
	}
	return &retention.SweepResult{}, nil
}

func (m *mockRetentionService) SweepStuckProcessing(ctx context.Context) (int, error) {
	if m.sweepStuckFunc != nil {
		return m.sweepStuckFunc(ctx)
	}
	return 0, nil
}

var (
	_ RetentionService = (*mockRetentionService)(nil)
	_ SweepService     = (*mockRetentionService)(nil)
)

type mockReindexService struct {
	reconcileFunc func(ctx context.Context, batchSize int) (*search.ReconcileResult, error)
}

func (m *mockReindexService) Reconcile(ctx context.Context, batchSize int) (*search.ReconcileResult, error) {
	if m.reconcileFunc != nil {
		return m.reconcileFunc(ctx, batchSize)
	}
	return &search.ReconcileResult{}, nil
}

var _ ReindexService = (*mockReindexService)(nil)

type staticSettingsResolver struct{}

func (staticSettingsResolver) Resolve(ctx context.Context, userID uuid.UUID) (models.UserSettings, error) {
	return models.DefaultUserSettings(userID), nil
}

var _ SettingsResolver = staticSettingsResolver{}
