package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"github.com/stillwater-dev/inboxd/internal/request"
	"github.com/stillwater-dev/inboxd/internal/validation"
	"go.uber.org/zap"
)

const (
	// MaxContentLength is the maximum length for item content
	MaxContentLength = 10000
	// DefaultPageSize is the default page size for pagination
	DefaultPageSize = 100
	// MaxPageSize is the maximum page size for pagination
	MaxPageSize = 500
)

// DispatchService schedules and retries classification dispatches
type DispatchService interface {
	Enqueue(ctx context.Context, item *models.InboxItem) error
	Retry(ctx context.Context, itemID uuid.UUID) error
}

// IndexService keeps the search index in step with item mutations
type IndexService interface {
	IndexItem(ctx context.Context, item *models.InboxItem) error
	RemoveItem(ctx context.Context, item *models.InboxItem) error
}

// ItemHandler handles inbox item requests
type ItemHandler struct {
	items      database.ItemRepositoryInterface
	actions    database.ActionRepositoryInterface
	feedback   database.FeedbackRepositoryInterface
	dispatcher DispatchService
	indexer    IndexService
	logger     *zap.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(
	items database.ItemRepositoryInterface,
	actions database.ActionRepositoryInterface,
	feedback database.FeedbackRepositoryInterface,
	dispatcher DispatchService,
	indexer IndexService,
	logger *zap.Logger,
) *ItemHandler {
	return &ItemHandler{
		items:      items,
		actions:    actions,
		feedback:   feedback,
		dispatcher: dispatcher,
		indexer:    indexer,
		logger:     logger,
	}
}

// RegisterRoutes registers item routes on the given router.
// The router should already have the /items prefix.
func (h *ItemHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListItems).Methods("GET")
	r.HandleFunc("", h.CaptureItem).Methods("POST")
	r.HandleFunc("/{id}", h.GetItem).Methods("GET")
	r.HandleFunc("/{id}", h.DeleteItem).Methods("DELETE")
	r.HandleFunc("/{id}/actions", h.GetItemActions).Methods("GET")
	r.HandleFunc("/{id}/archive", h.ArchiveItem).Methods("POST")
	r.HandleFunc("/{id}/restore", h.RestoreItem).Methods("POST")
	r.HandleFunc("/{id}/retry", h.RetryItem).Methods("POST")
}

// CaptureItemRequest represents a capture request
type CaptureItemRequest struct {
	Type     string `json:"type" validate:"required,item_type"`
	Content  string `json:"content" validate:"max=10000"`
	Source   string `json:"source,omitempty" validate:"max=200"`
	MediaRef string `json:"media_ref,omitempty" validate:"max=1000"`
}

// CaptureItem captures a new inbox item and schedules its classification.
// Capture succeeds even when the classifier or the job queue is down; the
// item simply stays pending.
func (h *ItemHandler) CaptureItem(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CaptureItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	req.Content = validation.SanitizeText(req.Content)
	if req.Content == "" && req.MediaRef == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Either content or media_ref is required")
		return
	}

	ctx := r.Context()
	item := &models.InboxItem{
		ID:       uuid.New(),
		UserID:   user.ID,
		Type:     models.ItemType(req.Type),
		Content:  req.Content,
		Source:   req.Source,
		MediaRef: req.MediaRef,
		Status:   models.ItemStatusPending,
	}

	if err := h.items.Create(ctx, item); err != nil {
		h.logger.Error("failed_to_create_item", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	// Index immediately so the item is searchable before classification.
	if err := h.indexer.IndexItem(ctx, item); err != nil {
		h.logger.Warn("failed_to_index_captured_item",
			zap.String("item_id", item.ID.String()),
			zap.Error(err),
		)
	}

	if err := h.dispatcher.Enqueue(ctx, item); err != nil {
		h.logger.Error("failed_to_enqueue_dispatch",
			zap.String("item_id", item.ID.String()),
			zap.Error(err),
		)
	}

	respondJSON(w, http.StatusCreated, item)
}

// ListItemsResponse is a cursor-paginated page of items
type ListItemsResponse struct {
	Items      []*models.InboxItem `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// ListItems lists the user's items, optionally filtered by status
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	filter := database.ListFilter{Limit: parseLimit(r)}

	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateItemStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		status := models.ItemStatus(s)
		filter.Status = &status
	}

	cursor, err := database.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid cursor")
		return
	}
	filter.Cursor = cursor

	items, nextCursor, err := h.items.ListByUser(r.Context(), user.ID, filter)
	if err != nil {
		h.logger.Error("failed_to_list_items", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ListItemsResponse{Items: items, NextCursor: nextCursor})
}

// GetItem retrieves a single item
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// GetItemActions lists the actions materialized from an item
func (h *ItemHandler) GetItemActions(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	actions, err := h.actions.GetByItemID(r.Context(), item.ID)
	if err != nil {
		h.logger.Error("failed_to_get_item_actions", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, actions)
}

// ArchiveItem archives an item on explicit user request. Unlike the
// auto-archive sweep, a manual archive may target an errored item.
func (h *ItemHandler) ArchiveItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	if err := h.items.Archive(r.Context(), item.ID, models.ArchiveReasonManual, true); err != nil {
		respondMappedError(w, err)
		return
	}

	updated, err := h.items.GetByID(r.Context(), item.ID)
	if err != nil {
		respondMappedError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// RestoreItem restores an archived item to its pre-archive status
func (h *ItemHandler) RestoreItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	if err := h.items.Restore(r.Context(), item.ID); err != nil {
		respondMappedError(w, err)
		return
	}

	updated, err := h.items.GetByID(r.Context(), item.ID)
	if err != nil {
		respondMappedError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// RetryItem re-dispatches an errored item synchronously. A dispatch failure
// leaves the item in error with an updated message.
func (h *ItemHandler) RetryItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	if err := h.dispatcher.Retry(r.Context(), item.ID); err != nil {
		respondMappedError(w, err)
		return
	}

	updated, err := h.items.GetByID(r.Context(), item.ID)
	if err != nil {
		respondMappedError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteItem permanently removes an item along with its feedback events and
// search index entry. Archival is the soft path; deletion is explicit and
// final.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if err := h.feedback.DeleteByItemID(ctx, item.ID); err != nil {
		h.logger.Error("failed_to_delete_item_feedback", zap.Error(err))
		respondMappedError(w, err)
		return
	}
	if err := h.items.Delete(ctx, item.ID); err != nil {
		respondMappedError(w, err)
		return
	}
	if err := h.indexer.RemoveItem(ctx, item); err != nil {
		h.logger.Warn("failed_to_remove_search_entry",
			zap.String("item_id", item.ID.String()),
			zap.Error(err),
		)
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// ownedItem loads the path item and checks it belongs to the requesting user.
// Foreign items read as not found, never as forbidden, to avoid leaking ids.
func (h *ItemHandler) ownedItem(w http.ResponseWriter, r *http.Request) (*models.InboxItem, bool) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return nil, false
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid item ID")
		return nil, false
	}

	item, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Item not found")
		} else {
			h.logger.Error("failed_to_get_item", zap.Error(err))
			respondMappedError(w, err)
		}
		return nil, false
	}
	if item.UserID != user.ID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Item not found")
		return nil, false
	}

	return item, true
}

func parseLimit(r *http.Request) int {
	limit := DefaultPageSize
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			if parsed > MaxPageSize {
				limit = MaxPageSize
			} else {
				limit = parsed
			}
		}
	}
	return limit
}
