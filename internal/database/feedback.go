package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/models"
)

// FeedbackRepository records applied swipe decisions. The unique
// (item_id, decision) constraint is what makes swipe ingestion idempotent:
// the second identical submission inserts nothing and applies no side effects.
type FeedbackRepository struct {
	db *DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Record inserts a feedback event. Returns (event, true) when this call won
// the insert, (existing event, false) when the decision was already applied.
func (r *FeedbackRepository) Record(ctx context.Context, itemID, userID uuid.UUID, decision models.SwipeDecision) (*models.FeedbackEvent, bool, error) {
	event := &models.FeedbackEvent{
		ID:        uuid.New(),
		ItemID:    itemID,
		UserID:    userID,
		Decision:  decision,
		AppliedAt: time.Now(),
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback_events (id, item_id, user_id, decision, applied_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id, decision) DO NOTHING
	`, event.ID, event.ItemID, event.UserID, event.Decision, event.AppliedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record feedback: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		existing, err := r.get(ctx, itemID, decision)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	return event, true, nil
}

// Delete removes a feedback event, re-opening the (item, decision) slot.
// Used by undo.
func (r *FeedbackRepository) Delete(ctx context.Context, eventID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feedback_events WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete feedback event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete feedback event: %w", models.ErrNotFound)
	}

	return nil
}

// DeleteByItemID removes all feedback events for an item
func (r *FeedbackRepository) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feedback_events WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to delete feedback events: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) get(ctx context.Context, itemID uuid.UUID, decision models.SwipeDecision) (*models.FeedbackEvent, error) {
	event := &models.FeedbackEvent{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, user_id, decision, applied_at
		FROM feedback_events
		WHERE item_id = $1 AND decision = $2
	`, itemID, decision).Scan(&event.ID, &event.ItemID, &event.UserID, &event.Decision, &event.AppliedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback event: %w", err)
	}
	return event, nil
}
