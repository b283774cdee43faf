// Package workers contains the queue consumers that drive asynchronous item
// processing.
package workers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/queue"
	"github.com/stillwater-dev/inboxd/internal/services/search"
	"go.uber.org/zap"
)

// Dispatcher performs a guarded classification dispatch for one item
type Dispatcher interface {
	Dispatch(ctx context.Context, itemID uuid.UUID) error
}

// Reindexer runs one bounded index reconciliation pass
type Reindexer interface {
	Reconcile(ctx context.Context, batchSize int) (*search.ReconcileResult, error)
}

// DispatchWorker consumes dispatch jobs and sends items to the external
// classifier. Jobs are acked once handled; dispatch failures are recorded on
// the item rather than requeued, since retry is user-triggered.
type DispatchWorker struct {
	dispatcher       Dispatcher
	reindexer        Reindexer
	reindexBatchSize int
	logger           *zap.Logger
}

// NewDispatchWorker creates a dispatch worker
func NewDispatchWorker(dispatcher Dispatcher, reindexer Reindexer, reindexBatchSize int, logger *zap.Logger) *DispatchWorker {
	return &DispatchWorker{
		dispatcher:       dispatcher,
		reindexer:        reindexer,
		reindexBatchSize: reindexBatchSize,
		logger:           logger,
	}
}

// ProcessJob handles one queued message, acknowledging or requeueing it.
// Expired jobs and malformed jobs are acked and dropped so they cannot poison
// the queue.
func (w *DispatchWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.IsExpired() {
		w.logger.Warn("dropping_expired_job",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
		)
		return msg.Ack()
	}

	// Not yet due, put it back
	if !job.ShouldProcess() {
		return msg.Nack(true)
	}

	switch job.Type {
	case queue.JobTypeDispatch:
		return w.processDispatch(ctx, job, msg)
	case queue.JobTypeReindex:
		return w.processReindex(ctx, job, msg)
	default:
		w.logger.Error("unknown_job_type",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
		)
		return msg.Ack()
	}
}

func (w *DispatchWorker) processDispatch(ctx context.Context, job *queue.Job, msg queue.MessageInterface) error {
	if job.ItemID == nil {
		w.logger.Error("dispatch_job_missing_item_id",
			zap.String("job_id", job.ID.String()),
		)
		return msg.Ack()
	}

	if err := w.dispatcher.Dispatch(ctx, *job.ItemID); err != nil {
		// The failure is already recorded on the item; the job itself is
		// done. Automatic redelivery would bypass the user-triggered retry
		// model.
		w.logger.Error("dispatch_job_failed",
			zap.String("job_id", job.ID.String()),
			zap.String("item_id", job.ItemID.String()),
			zap.Error(err),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack after dispatch failure: %w", ackErr)
		}
		return err
	}

	return msg.Ack()
}

func (w *DispatchWorker) processReindex(ctx context.Context, job *queue.Job, msg queue.MessageInterface) error {
	if _, err := w.reindexer.Reconcile(ctx, w.reindexBatchSize); err != nil {
		w.logger.Error("reindex_job_failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		if job.CanRetry() {
			job.IncrementRetry()
			return msg.Nack(true)
		}
		return msg.Ack()
	}

	return msg.Ack()
}
