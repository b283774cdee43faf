package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"go.uber.org/zap"
)

// Service exposes the three review queues, the receipts view, queue metrics,
// and the swipe/undo feedback loop.
type Service struct {
	items      database.ItemRepositoryInterface
	actions    database.ActionRepositoryInterface
	feedback   database.FeedbackRepositoryInterface
	undo       UndoStore
	undoWindow time.Duration
	logger     *zap.Logger
}

// NewService creates a review service
func NewService(
	items database.ItemRepositoryInterface,
	actions database.ActionRepositoryInterface,
	feedback database.FeedbackRepositoryInterface,
	undo UndoStore,
	undoWindow time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		items:      items,
		actions:    actions,
		feedback:   feedback,
		undo:       undo,
		undoWindow: undoWindow,
		logger:     logger,
	}
}

// SwipeResult is the outcome of one swipe application. UndoToken is empty for
// a duplicate submission, which was already applied the first time.
type SwipeResult struct {
	Event     *models.FeedbackEvent `json:"event"`
	UndoToken string                `json:"undo_token,omitempty"`
	Duplicate bool                  `json:"duplicate"`
}

// NeedsReview returns the active review queue: pending items that are
// unclassified or below the user's needs-review threshold.
func (s *Service) NeedsReview(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	return s.items.NeedsReviewQueue(ctx, settings.UserID, settings.NeedsReviewThreshold, limit, cursor)
}

// Disagreements returns items the user deferred to the weekly review
func (s *Service) Disagreements(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	return s.items.DisagreementsQueue(ctx, settings.UserID, limit, cursor)
}

// Errors returns items whose classification failed, oldest first
func (s *Service) Errors(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error) {
	return s.items.ErrorQueue(ctx, settings.UserID, limit, cursor)
}

// Receipts returns auto-filed items for the passive receipts view
func (s *Service) Receipts(ctx context.Context, settings models.UserSettings, limit int) ([]*models.InboxItem, error) {
	return s.items.ReceiptsQueue(ctx, settings.UserID, settings.AutoFileThreshold, limit)
}

// Metrics returns per-status counts plus the needs-review badge count
func (s *Service) Metrics(ctx context.Context, settings models.UserSettings) (*database.QueueMetrics, error) {
	return s.items.Metrics(ctx, settings.UserID, settings.NeedsReviewThreshold)
}

// Swipe applies one directional decision to an item. Each (item, decision)
// pair applies at most once; a duplicate submission returns the original
// event without re-applying side effects. A successful application stores an
// undo record that exactly reverses the side effects within the undo window.
func (s *Service) Swipe(ctx context.Context, userID, itemID uuid.UUID, decision models.SwipeDecision) (*SwipeResult, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, fmt.Errorf("item %s: %w", itemID, models.ErrNotFound)
	}

	event, won, err := s.feedback.Record(ctx, itemID, userID, decision)
	if err != nil {
		return nil, err
	}
	if !won {
		s.logger.Debug("duplicate_swipe_ignored",
			zap.String("item_id", itemID.String()),
			zap.String("decision", string(decision)),
		)
		return &SwipeResult{Event: event, Duplicate: true}, nil
	}

	undo := &models.FeedbackUndo{
		EventID:      event.ID,
		ItemID:       itemID,
		UserID:       userID,
		Decision:     decision,
		PrevStatus:   item.Status,
		PrevFeedback: item.UserFeedback,
	}

	if err := s.applySwipe(ctx, item, decision, undo); err != nil {
		// Roll the event back so the client can resubmit cleanly.
		if delErr := s.feedback.Delete(ctx, event.ID); delErr != nil {
			s.logger.Error("failed_to_roll_back_feedback_event",
				zap.String("event_id", event.ID.String()),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	if err := s.undo.Put(ctx, undo, s.undoWindow); err != nil {
		// The swipe stands; only the undo window is lost.
		s.logger.Warn("failed_to_store_undo_record",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("swipe_applied",
		zap.String("item_id", itemID.String()),
		zap.String("decision", string(decision)),
	)

	return &SwipeResult{Event: event, UndoToken: event.ID.String()}, nil
}

func (s *Service) applySwipe(ctx context.Context, item *models.InboxItem, decision models.SwipeDecision, undo *models.FeedbackUndo) error {
	fb := &models.UserFeedback{
		Decision:         decision,
		DeferredToWeekly: decision == models.SwipeDisagree,
		RecordedAt:       time.Now(),
	}

	switch decision {
	case models.SwipeAgree:
		// Agreement records the confirmation and nothing else.

	case models.SwipeDisagree:
		// Deferred items live in the weekly disagreements queue, which is
		// defined over pending items.
		if item.Status == models.ItemStatusReviewed {
			if err := s.items.SetStatus(ctx, item.ID, models.ItemStatusPending); err != nil {
				return err
			}
		}

	case models.SwipeUrgent:
		actionID, prevPriority, err := s.actions.ElevatePriority(ctx, item.ID, models.PriorityUrgent)
		if err != nil {
			return err
		}
		undo.ElevatedActionID = actionID
		undo.PrevPriority = prevPriority

	case models.SwipeHide:
		if err := s.items.Archive(ctx, item.ID, models.ArchiveReasonManual, true); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unsupported swipe decision %q: %w", decision, models.ErrValidation)
	}

	return s.items.SetUserFeedback(ctx, item.ID, fb)
}

// Undo reverses a swipe applied within the undo window. The undo record is
// taken atomically, so a second undo for the same event finds nothing and
// fails with ErrNotFound.
func (s *Service) Undo(ctx context.Context, userID uuid.UUID, eventID uuid.UUID) error {
	undo, err := s.undo.Take(ctx, eventID)
	if err != nil {
		return err
	}
	if undo.UserID != userID {
		return fmt.Errorf("undo event %s: %w", eventID, models.ErrNotFound)
	}

	if err := s.items.SetStatus(ctx, undo.ItemID, undo.PrevStatus); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if err := s.items.SetUserFeedback(ctx, undo.ItemID, undo.PrevFeedback); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if undo.ElevatedActionID != nil && undo.PrevPriority != nil {
		if err := s.actions.SetPriority(ctx, *undo.ElevatedActionID, *undo.PrevPriority); err != nil {
			return err
		}
	}
	if err := s.feedback.Delete(ctx, eventID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}

	s.logger.Info("swipe_undone",
		zap.String("item_id", undo.ItemID.String()),
		zap.String("decision", string(undo.Decision)),
	)

	return nil
}
