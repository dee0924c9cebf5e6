package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
)

const defaultRunListLimit = 50

// RunsHandler serves the run history API
type RunsHandler struct {
	repo interfaces.RunRepository
}

// NewRunsHandler creates a run history handler
func NewRunsHandler(repo interfaces.RunRepository) *RunsHandler {
	return &RunsHandler{repo: repo}
}

// List returns recent runs, newest first. The limit query parameter
// bounds the page size.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRunListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, goerr.New("invalid limit parameter"), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.repo.List(ctx, limit)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to list runs", "error", err)
		writeError(w, goerr.Wrap(err, "failed to list runs"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"runs": records,
	}); err != nil {
		ctxlog.From(ctx).Error("Failed to encode runs response", "error", err)
	}
}

// Get returns one run by ID
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	record, err := h.repo.Get(ctx, id)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to get run", "run_id", id, "error", err)
		writeError(w, goerr.Wrap(err, "failed to get run"), http.StatusInternalServerError)
		return
	}
	if record == nil {
		writeError(w, goerr.New("run not found"), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(record); err != nil {
		ctxlog.From(ctx).Error("Failed to encode run response", "error", err)
	}
}
