package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"github.com/stillwater-dev/inboxd/internal/validation"
	"go.uber.org/zap"
)

// TriageService applies classification callbacks to items
type TriageService interface {
	ApplyCallback(ctx context.Context, itemID uuid.UUID, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag, settings models.UserSettings) ([]*models.Action, models.ItemStatus, error)
	ApplyFailure(ctx context.Context, itemID uuid.UUID, message string) error
}

// SettingsResolver resolves per-user triage settings
type SettingsResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (models.UserSettings, error)
}

// CallbackHandler receives classification results from the external
// classifier. Authentication by shared secret happens in middleware before
// requests reach this handler.
type CallbackHandler struct {
	items    database.ItemRepositoryInterface
	triage   TriageService
	settings SettingsResolver
	indexer  IndexService
	logger   *zap.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(items database.ItemRepositoryInterface, triage TriageService, settings SettingsResolver, indexer IndexService, logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{items: items, triage: triage, settings: settings, indexer: indexer, logger: logger}
}

// RegisterRoutes registers the callback route on the given router
func (h *CallbackHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/callback", h.HandleCallback).Methods("POST")
}

// CallbackClassification is the classification block of a callback payload
type CallbackClassification struct {
	Category         string  `json:"category" validate:"required,category"`
	Confidence       float64 `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning        string  `json:"reasoning" validate:"max=10000"`
	SuggestedProject string  `json:"suggestedProject,omitempty" validate:"max=200"`
	SuggestedArea    string  `json:"suggestedArea,omitempty" validate:"max=200"`
}

// CallbackAction is one extracted action in a callback payload
type CallbackAction struct {
	Description string     `json:"description" validate:"required,max=2000"`
	Confidence  float64    `json:"confidence" validate:"gte=0,lte=1"`
	Owner       string     `json:"owner,omitempty" validate:"max=200"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    string     `json:"priority" validate:"required,priority"`
	SourceSpan  string     `json:"sourceSpan,omitempty" validate:"max=2000"`
}

// CallbackTag is one tag in a callback payload
type CallbackTag struct {
	Type       string     `json:"type" validate:"required,tag_type"`
	Value      string     `json:"value" validate:"required,max=500"`
	Confidence float64    `json:"confidence" validate:"gte=0,lte=1"`
	LinkedID   *uuid.UUID `json:"linkedId,omitempty"`
}

// CallbackRequest is the full callback payload. Either Classification or
// Error is present: a result applies the classification, an error report
// fails the item.
type CallbackRequest struct {
	ItemID           uuid.UUID               `json:"itemId" validate:"required"`
	Classification   *CallbackClassification `json:"classification,omitempty"`
	ExtractedActions []CallbackAction        `json:"extractedActions,omitempty" validate:"dive"`
	Tags             []CallbackTag           `json:"tags,omitempty" validate:"dive"`
	Error            string                  `json:"error,omitempty" validate:"max=2000"`
	ModelUsed        string                  `json:"modelUsed,omitempty" validate:"max=200"`
	ProcessingTimeMs int64                   `json:"processingTimeMs,omitempty" validate:"gte=0"`
}

// CallbackResponse reports what the callback application did
type CallbackResponse struct {
	ItemID       uuid.UUID         `json:"item_id"`
	Status       models.ItemStatus `json:"status"`
	ActionsCount int               `json:"actions_count"`
}

// HandleCallback validates and applies one classification callback. A
// malformed payload is rejected with enough detail for the classifier to
// retry, and mutates nothing. A payload for an unknown item yields 404; for
// an item that is no longer processing, 409. Both leave state untouched, so
// a duplicate delivery is harmless.
func (h *CallbackHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	ctx := r.Context()

	if req.Error != "" {
		if err := h.triage.ApplyFailure(ctx, req.ItemID, req.Error); err != nil {
			respondMappedError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, CallbackResponse{ItemID: req.ItemID, Status: models.ItemStatusError})
		return
	}

	if req.Classification == nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "Either classification or error is required")
		return
	}

	item, err := h.items.GetByID(ctx, req.ItemID)
	if err != nil {
		respondMappedError(w, err)
		return
	}

	settings, err := h.settings.Resolve(ctx, item.UserID)
	if err != nil {
		h.logger.Error("failed_to_resolve_settings", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	cls := &models.Classification{
		Category:         models.Category(req.Classification.Category),
		Confidence:       req.Classification.Confidence,
		Reasoning:        req.Classification.Reasoning,
		SuggestedProject: req.Classification.SuggestedProject,
		SuggestedArea:    req.Classification.SuggestedArea,
	}

	extracted := make([]models.ExtractedAction, 0, len(req.ExtractedActions))
	for _, a := range req.ExtractedActions {
		extracted = append(extracted, models.ExtractedAction{
			Description: validation.SanitizeText(a.Description),
			Confidence:  a.Confidence,
			Owner:       a.Owner,
			DueDate:     a.DueDate,
			Priority:    models.Priority(a.Priority),
			SourceSpan:  a.SourceSpan,
		})
	}

	tags := make([]models.Tag, 0, len(req.Tags))
	for _, t := range req.Tags {
		tags = append(tags, models.Tag{
			Type:       models.TagType(t.Type),
			Value:      validation.SanitizeText(t.Value),
			Confidence: t.Confidence,
			LinkedID:   t.LinkedID,
		})
	}

	actions, status, err := h.triage.ApplyCallback(ctx, req.ItemID, cls, extracted, tags, settings)
	if err != nil {
		respondMappedError(w, err)
		return
	}

	// The capture-time index entry only has the raw content; rebuild it now
	// that reasoning, actions, and tags are stored. Index failure does not
	// fail the callback.
	if updated, err := h.items.GetByID(ctx, req.ItemID); err != nil {
		h.logger.Warn("failed_to_reload_item_for_index",
			zap.String("item_id", req.ItemID.String()),
			zap.Error(err),
		)
	} else if err := h.indexer.IndexItem(ctx, updated); err != nil {
		h.logger.Warn("failed_to_index_classified_item",
			zap.String("item_id", req.ItemID.String()),
			zap.Error(err),
		)
	}

	h.logger.Info("callback_processed",
		zap.String("item_id", req.ItemID.String()),
		zap.String("model_used", req.ModelUsed),
		zap.Int64("processing_time_ms", req.ProcessingTimeMs),
	)

	respondJSON(w, http.StatusOK, CallbackResponse{
		ItemID:       req.ItemID,
		Status:       status,
		ActionsCount: len(actions),
	})
}
