package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/common"
)

// SystemHandler serves liveness and build information.
type SystemHandler struct {
	logger arbor.ILogger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(logger arbor.ILogger) *SystemHandler {
	return &SystemHandler{logger: logger}
}

// RootHandler handles GET /
func (h *SystemHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Bravix credit evaluation API is running",
		"version": common.GetVersion(),
	})
}

// HealthHandler handles GET /health and GET /api/health
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VersionHandler handles GET /api/version
func (h *SystemHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
