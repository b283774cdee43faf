// Package review computes the user-facing triage queues and applies swipe
// feedback, including the short undo window after each swipe.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stillwater-dev/inboxd/internal/models"
)

// UndoStore holds pending undo records. Records expire on their own; an
// expired record means the swipe is final.
type UndoStore interface {
	Put(ctx context.Context, undo *models.FeedbackUndo, ttl time.Duration) error

	// Take removes and returns the record for an event, so two concurrent
	// undo attempts cannot both succeed. Returns ErrNotFound when the window
	// has closed or the record was already taken.
	Take(ctx context.Context, eventID uuid.UUID) (*models.FeedbackUndo, error)
}

// RedisUndoStore keeps undo records in Redis with a TTL equal to the undo
// window, so expiry is enforced by the store rather than by clock checks.
type RedisUndoStore struct {
	client *redis.Client
}

// NewRedisUndoStore creates an undo store backed by the given Redis client
func NewRedisUndoStore(client *redis.Client) *RedisUndoStore {
	return &RedisUndoStore{client: client}
}

func undoKey(eventID uuid.UUID) string {
	return "undo:" + eventID.String()
}

// Put stores an undo record with the given TTL
func (s *RedisUndoStore) Put(ctx context.Context, undo *models.FeedbackUndo, ttl time.Duration) error {
	raw, err := json.Marshal(undo)
	if err != nil {
		return fmt.Errorf("failed to marshal undo record: %w", err)
	}

	if err := s.client.Set(ctx, undoKey(undo.EventID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store undo record: %w", err)
	}

	return nil
}

// Take atomically removes and returns the undo record via GETDEL
func (s *RedisUndoStore) Take(ctx context.Context, eventID uuid.UUID) (*models.FeedbackUndo, error) {
	raw, err := s.client.GetDel(ctx, undoKey(eventID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("undo window closed for event %s: %w", eventID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take undo record: %w", err)
	}

	undo := &models.FeedbackUndo{}
	if err := json.Unmarshal(raw, undo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal undo record: %w", err)
	}

	return undo, nil
}

var _ UndoStore = (*RedisUndoStore)(nil)
