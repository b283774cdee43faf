package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"github.com/stillwater-dev/inboxd/internal/request"
	"github.com/stillwater-dev/inboxd/internal/services/review"
	"github.com/stillwater-dev/inboxd/internal/validation"
	"go.uber.org/zap"
)

// ReviewService exposes the review queues and the swipe/undo loop
type ReviewService interface {
	NeedsReview(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error)
	Disagreements(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error)
	Errors(ctx context.Context, settings models.UserSettings, limit int, cursor *database.Cursor) ([]*models.InboxItem, string, error)
	Receipts(ctx context.Context, settings models.UserSettings, limit int) ([]*models.InboxItem, error)
	Metrics(ctx context.Context, settings models.UserSettings) (*database.QueueMetrics, error)
	Swipe(ctx context.Context, userID, itemID uuid.UUID, decision models.SwipeDecision) (*review.SwipeResult, error)
	Undo(ctx context.Context, userID uuid.UUID, eventID uuid.UUID) error
}

// RetentionService exposes the user-facing retention operations
type RetentionService interface {
	Bankruptcy(ctx context.Context, userID uuid.UUID) (int, error)
	ExpiringSoon(ctx context.Context, userID uuid.UUID) ([]*models.InboxItem, error)
}

// ReviewHandler handles review queue and feedback requests
type ReviewHandler struct {
	review    ReviewService
	retention RetentionService
	settings  SettingsResolver
	logger    *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewSvc ReviewService, retention RetentionService, settings SettingsResolver, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{review: reviewSvc, retention: retention, settings: settings, logger: logger}
}

// RegisterRoutes registers review routes on the given API router
func (h *ReviewHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/review/needs-review", h.NeedsReview).Methods("GET")
	r.HandleFunc("/review/disagreements", h.Disagreements).Methods("GET")
	r.HandleFunc("/review/errors", h.Errors).Methods("GET")
	r.HandleFunc("/review/receipts", h.Receipts).Methods("GET")
	r.HandleFunc("/review/metrics", h.Metrics).Methods("GET")
	r.HandleFunc("/review/expiring-soon", h.ExpiringSoon).Methods("GET")
	r.HandleFunc("/review/bankruptcy", h.Bankruptcy).Methods("POST")
	r.HandleFunc("/review/undo/{eventId}", h.Undo).Methods("POST")
	r.HandleFunc("/items/{id}/swipe", h.Swipe).Methods("POST")
}

// QueueResponse is a cursor-paginated queue page
type QueueResponse struct {
	Items      []*models.InboxItem `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// NeedsReview returns the active review queue
func (h *ReviewHandler) NeedsReview(w http.ResponseWriter, r *http.Request) {
	h.queue(w, r, h.review.NeedsReview)
}

// Disagreements returns the weekly disagreements queue
func (h *ReviewHandler) Disagreements(w http.ResponseWriter, r *http.Request) {
	h.queue(w, r, h.review.Disagreements)
}

// Errors returns the failed classification queue
func (h *ReviewHandler) Errors(w http.ResponseWriter, r *http.Request) {
	h.queue(w, r, h.review.Errors)
}

func (h *ReviewHandler) queue(w http.ResponseWriter, r *http.Request, fetch func(context.Context, models.UserSettings, int, *database.Cursor) ([]*models.InboxItem, string, error)) {
	settings, ok := h.userSettings(w, r)
	if !ok {
		return
	}

	cursor, err := database.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid cursor")
		return
	}

	items, nextCursor, err := fetch(r.Context(), settings, parseLimit(r), cursor)
	if err != nil {
		h.logger.Error("failed_to_fetch_queue", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, QueueResponse{Items: items, NextCursor: nextCursor})
}

// Receipts returns recently auto-filed items
func (h *ReviewHandler) Receipts(w http.ResponseWriter, r *http.Request) {
	settings, ok := h.userSettings(w, r)
	if !ok {
		return
	}

	items, err := h.review.Receipts(r.Context(), settings, parseLimit(r))
	if err != nil {
		h.logger.Error("failed_to_fetch_receipts", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, QueueResponse{Items: items})
}

// Metrics returns per-status counts plus the needs-review badge count
func (h *ReviewHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	settings, ok := h.userSettings(w, r)
	if !ok {
		return
	}

	metrics, err := h.review.Metrics(r.Context(), settings)
	if err != nil {
		h.logger.Error("failed_to_fetch_metrics", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// ExpiringSoon lists items approaching auto-archival. Read-only.
func (h *ReviewHandler) ExpiringSoon(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	items, err := h.retention.ExpiringSoon(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed_to_fetch_expiring_items", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, QueueResponse{Items: items})
}

// BankruptcyResponse reports a bankruptcy declaration
type BankruptcyResponse struct {
	ItemsArchived int `json:"items_archived"`
}

// Bankruptcy archives all of the user's pending items at once
func (h *ReviewHandler) Bankruptcy(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	count, err := h.retention.Bankruptcy(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed_to_declare_bankruptcy", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, BankruptcyResponse{ItemsArchived: count})
}

// SwipeRequest carries one swipe decision
type SwipeRequest struct {
	Decision string `json:"decision" validate:"required,swipe_decision"`
}

// Swipe applies a swipe decision to an item
func (h *ReviewHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	itemID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid item ID")
		return
	}

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	result, err := h.review.Swipe(r.Context(), user.ID, itemID, models.SwipeDecision(req.Decision))
	if err != nil {
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Undo reverses a swipe within the undo window
func (h *ReviewHandler) Undo(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	eventID, err := uuid.Parse(mux.Vars(r)["eventId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid event ID")
		return
	}

	if err := h.review.Undo(r.Context(), user.ID, eventID); err != nil {
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"undone": true})
}

func (h *ReviewHandler) userSettings(w http.ResponseWriter, r *http.Request) (models.UserSettings, bool) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return models.UserSettings{}, false
	}

	settings, err := h.settings.Resolve(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed_to_resolve_settings", zap.Error(err))
		respondMappedError(w, err)
		return models.UserSettings{}, false
	}

	return settings, true
}
