package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/interfaces"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ReportHandler serves stored analyses and their PDF reports.
type ReportHandler struct {
	store    interfaces.ReportStore
	renderer ReportRenderer
	logger   arbor.ILogger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(store interfaces.ReportStore, renderer ReportRenderer, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// LatestHandler handles GET /api/reports/latest
func (h *ReportHandler) LatestHandler(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetLatest(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "No report found. Please analyze first.")
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// GetHandler handles GET /api/reports/{id}
func (h *ReportHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, fmt.Sprintf("analysis %s not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// ListHandler handles GET /api/reports?limit=N
func (h *ReportHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := QueryInt(r, "limit", defaultListLimit, maxListLimit)

	items, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.writeStoreError(w, err, "")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": items,
		"count":    len(items),
		"limit":    limit,
	})
}

// DownloadHandler handles GET /api/report/download
func (h *ReportHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.renderer.RenderLatest(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "No report found. Please analyze first.")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendered.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rendered.Data); err != nil {
		h.logger.Warn().Err(err).Str("filename", rendered.Filename).Msg("Failed to write report")
	}
}

func (h *ReportHandler) writeStoreError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, interfaces.ErrNotFound) && notFound != "" {
		WriteError(w, http.StatusNotFound, notFound)
		return
	}
	h.logger.Error().Err(err).Msg("Report request failed")
	WriteError(w, http.StatusInternalServerError, err.Error())
}
