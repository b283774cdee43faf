package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"github.com/stillwater-dev/inboxd/internal/queue"
	"github.com/stillwater-dev/inboxd/internal/services/classifier"
	"go.uber.org/zap"
)

// Dispatcher coordinates sending pending items to the external classifier.
// Capture enqueues a job; the worker drains the queue and performs the
// guarded dispatch; manual retry dispatches inline.
type Dispatcher struct {
	items      database.ItemRepositoryInterface
	classifier classifier.Dispatcher
	jobQueue   queue.JobQueue
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(items database.ItemRepositoryInterface, cls classifier.Dispatcher, jobQueue queue.JobQueue, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		items:      items,
		classifier: cls,
		jobQueue:   jobQueue,
		logger:     logger,
	}
}

// Enqueue schedules an async dispatch for a freshly captured item. Capture
// must never fail because the classifier is down, so queueing failures are
// surfaced to the caller for logging only; the item stays pending and remains
// visible in the needs-review queue.
func (d *Dispatcher) Enqueue(ctx context.Context, item *models.InboxItem) error {
	job := queue.NewJob(queue.JobTypeDispatch, item.UserID, &item.ID)
	if err := d.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue dispatch job: %w", err)
	}

	d.logger.Debug("dispatch_job_enqueued",
		zap.String("item_id", item.ID.String()),
		zap.String("job_id", job.ID.String()),
	)
	return nil
}

// Dispatch sends one pending item to the classifier. The pending -> processing
// mark happens first and fails closed: if the item is no longer pending the
// dispatch is skipped entirely, so a job delivered twice cannot produce a
// duplicate submission. A failed outbound call transitions the item to error
// rather than bubbling up; there is no automatic retry.
func (d *Dispatcher) Dispatch(ctx context.Context, itemID uuid.UUID) error {
	item, err := d.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := d.items.MarkProcessing(ctx, itemID); err != nil {
		if errors.Is(err, models.ErrConflict) {
			d.logger.Debug("dispatch_skipped_not_pending",
				zap.String("item_id", itemID.String()),
				zap.String("status", string(item.Status)),
			)
			return nil
		}
		return err
	}

	return d.send(ctx, item)
}

// Retry re-dispatches an errored item on explicit user or operator request.
// The error -> processing mark is guarded the same way; an item that is not
// in error yields ErrConflict. The retry count only moves on a further
// failure.
func (d *Dispatcher) Retry(ctx context.Context, itemID uuid.UUID) error {
	item, err := d.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := d.items.MarkRetrying(ctx, itemID); err != nil {
		return err
	}

	d.logger.Info("item_retry_triggered",
		zap.String("item_id", itemID.String()),
		zap.Int("retry_count", item.RetryCount()),
	)

	return d.send(ctx, item)
}

func (d *Dispatcher) send(ctx context.Context, item *models.InboxItem) error {
	// The item id is the idempotency key, so retries reuse it.
	req := &classifier.DispatchRequest{
		ItemID:    item.ID,
		Content:   item.Content,
		Source:    item.Source,
		Type:      string(item.Type),
		CreatedAt: item.CreatedAt,
	}

	if err := d.classifier.Dispatch(ctx, req); err != nil {
		if markErr := d.items.MarkError(ctx, item.ID, err.Error()); markErr != nil && !errors.Is(markErr, models.ErrConflict) {
			d.logger.Error("failed_to_record_dispatch_error",
				zap.String("item_id", item.ID.String()),
				zap.Error(markErr),
			)
		}
		return fmt.Errorf("dispatch failed for item %s: %w", item.ID, err)
	}

	d.logger.Info("item_dispatched",
		zap.String("item_id", item.ID.String()),
	)
	return nil
}
