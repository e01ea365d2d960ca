package api

import (
	"log/slog"
	"net/http"

	"github.com/pilotprep/pilotprep/internal/api/shared"
	"github.com/pilotprep/pilotprep/internal/service/progress"
)

// DashboardHandler handles the composed dashboard endpoint.
type DashboardHandler struct {
	progress progress.Service
	logger   *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(progressService progress.Service, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DashboardHandler")
	}

	return &DashboardHandler{
		progress: progressService,
		logger:   logger.With(slog.String("component", "dashboard_handler")),
	}
}

// GetDashboard handles GET /dashboard requests, composing group progress,
// study hours, question performance, and syllabus coverage into one
// response.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.progress.Dashboard(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build dashboard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dashboard)
}
