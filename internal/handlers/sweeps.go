package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stillwater-dev/inboxd/internal/services/retention"
	"github.com/stillwater-dev/inboxd/internal/services/search"
	"go.uber.org/zap"
)

// SweepService runs the scheduler-triggered retention sweeps
type SweepService interface {
	SweepAutoArchive(ctx context.Context) (*retention.SweepResult, error)
	SweepStuckProcessing(ctx context.Context) (int, error)
}

// ReindexService runs bounded search index reconciliation passes
type ReindexService interface {
	Reconcile(ctx context.Context, batchSize int) (*search.ReconcileResult, error)
}

// SweepHandler exposes the internal endpoints an external scheduler invokes
// on a fixed cadence. Every endpoint is idempotent: triggering one twice
// cannot double-apply anything. Shared-secret authentication happens in
// middleware.
type SweepHandler struct {
	retention        SweepService
	indexer          ReindexService
	reindexBatchSize int
	logger           *zap.Logger
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(retentionSvc SweepService, indexer ReindexService, reindexBatchSize int, logger *zap.Logger) *SweepHandler {
	return &SweepHandler{
		retention:        retentionSvc,
		indexer:          indexer,
		reindexBatchSize: reindexBatchSize,
		logger:           logger,
	}
}

// RegisterRoutes registers sweep routes on the given internal router
func (h *SweepHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sweeps/auto-archive", h.AutoArchive).Methods("POST")
	r.HandleFunc("/sweeps/timeouts", h.Timeouts).Methods("POST")
	r.HandleFunc("/reindex", h.Reindex).Methods("POST")
}

// AutoArchive runs the per-user auto-archive sweep
func (h *SweepHandler) AutoArchive(w http.ResponseWriter, r *http.Request) {
	result, err := h.retention.SweepAutoArchive(r.Context())
	if err != nil {
		h.logger.Error("auto_archive_sweep_failed", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// TimeoutSweepResponse reports one stuck-processing sweep
type TimeoutSweepResponse struct {
	ItemsFailed int `json:"items_failed"`
}

// Timeouts force-fails items stuck in processing past the timeout window
func (h *SweepHandler) Timeouts(w http.ResponseWriter, r *http.Request) {
	failed, err := h.retention.SweepStuckProcessing(r.Context())
	if err != nil {
		h.logger.Error("timeout_sweep_failed", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, TimeoutSweepResponse{ItemsFailed: failed})
}

// Reindex runs one bounded reconciliation pass. The response includes the
// remaining count so the scheduler can decide whether to re-invoke.
func (h *SweepHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	result, err := h.indexer.Reconcile(r.Context(), h.reindexBatchSize)
	if err != nil {
		h.logger.Error("reindex_pass_failed", zap.Error(err))
		respondMappedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
