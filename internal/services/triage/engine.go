// Package triage owns the item state machine: dispatch to the external
// classifier, application of classification callbacks, and the confidence
// routing policy.
package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"go.uber.org/zap"
)

// Engine applies classification results to items
type Engine struct {
	items  database.ItemRepositoryInterface
	logger *zap.Logger
}

// NewEngine creates a triage engine
func NewEngine(items database.ItemRepositoryInterface, logger *zap.Logger) *Engine {
	return &Engine{items: items, logger: logger}
}

// RouteStatus decides where a classified item lands. Results below the
// needs-review threshold go back to pending so the user sees them in the
// review queue; everything else is reviewed. Auto-filing is not a distinct
// status: reviewed items at or above the auto-file threshold are simply
// excluded from the active queues by a confidence filter.
func RouteStatus(cls *models.Classification, settings models.UserSettings) models.ItemStatus {
	if cls.Confidence < settings.NeedsReviewThreshold {
		return models.ItemStatusPending
	}
	return models.ItemStatusReviewed
}

// AutoFiled reports whether a classified item was accepted without review.
func AutoFiled(cls *models.Classification, settings models.UserSettings) bool {
	return cls != nil && cls.Confidence >= settings.AutoFileThreshold
}

// ApplyCallback applies a well-formed classification result to a processing
// item. The underlying update is guarded on status, so a duplicate delivery
// resolves to ErrConflict and an unknown item to ErrNotFound; neither mutates
// anything.
func (e *Engine) ApplyCallback(ctx context.Context, itemID uuid.UUID, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag, settings models.UserSettings) ([]*models.Action, models.ItemStatus, error) {
	status := RouteStatus(cls, settings)

	actions, err := e.items.ApplyClassification(ctx, itemID, status, cls, extracted, tags)
	if errors.Is(err, models.ErrConflict) {
		// Distinguish a duplicate or late callback from a bogus item id.
		if _, getErr := e.items.GetByID(ctx, itemID); errors.Is(getErr, models.ErrNotFound) {
			return nil, "", fmt.Errorf("callback for unknown item %s: %w", itemID, models.ErrNotFound)
		}
		return nil, "", fmt.Errorf("item %s is not processing: %w", itemID, models.ErrConflict)
	}
	if err != nil {
		return nil, "", err
	}

	e.logger.Info("classification_applied",
		zap.String("item_id", itemID.String()),
		zap.String("category", string(cls.Category)),
		zap.Float64("confidence", cls.Confidence),
		zap.String("routed_status", string(status)),
		zap.Int("actions_materialized", len(actions)),
		zap.Bool("auto_filed", AutoFiled(cls, settings)),
	)

	return actions, status, nil
}

// ApplyFailure records an explicit failure report from the classifier,
// transitioning processing -> error. A report for an item that is no longer
// processing is a benign conflict.
func (e *Engine) ApplyFailure(ctx context.Context, itemID uuid.UUID, message string) error {
	err := e.items.MarkError(ctx, itemID, message)
	if errors.Is(err, models.ErrConflict) {
		if _, getErr := e.items.GetByID(ctx, itemID); errors.Is(getErr, models.ErrNotFound) {
			return fmt.Errorf("failure report for unknown item %s: %w", itemID, models.ErrNotFound)
		}
		return fmt.Errorf("item %s is not processing: %w", itemID, models.ErrConflict)
	}
	if err != nil {
		return err
	}

	e.logger.Warn("classification_failed",
		zap.String("item_id", itemID.String()),
		zap.String("error", message),
	)

	return nil
}
