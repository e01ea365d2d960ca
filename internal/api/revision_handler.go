package api

import (
	"log/slog"
	"net/http"

	"github.com/pilotprep/pilotprep/internal/api/shared"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/service/scheduler"
	"github.com/pilotprep/pilotprep/internal/store"
)

// DefaultUpcomingHorizonDays is the horizon applied to the upcoming-revisions
// endpoint when the caller does not pass one.
const DefaultUpcomingHorizonDays = 30

// RevisionHandler handles revision-related HTTP requests.
type RevisionHandler struct {
	scheduler scheduler.Service
	logger    *slog.Logger
}

// NewRevisionHandler creates a new RevisionHandler.
func NewRevisionHandler(schedulerService scheduler.Service, logger *slog.Logger) *RevisionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RevisionHandler")
	}

	return &RevisionHandler{
		scheduler: schedulerService,
		logger:    logger.With(slog.String("component", "revision_handler")),
	}
}

// ListRevisions handles GET /revisions requests, optionally filtered by
// topic_id and is_completed.
func (h *RevisionHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	topicID, err := queryUUID(r, "topic_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	completed, err := queryBool(r, "is_completed")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	revisions, err := h.scheduler.ListRevisions(r.Context(), userID, store.RevisionFilter{
		TopicID:   topicID,
		Completed: completed,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list revisions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, revisions)
}

// UpcomingRevisions handles GET /revisions/upcoming requests. The "days"
// parameter bounds the horizon; zero or negative disables the date filter.
func (h *RevisionHandler) UpcomingRevisions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	days, err := queryInt(r, "days", DefaultUpcomingHorizonDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	includeCompleted, err := queryBool(r, "include_completed")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	revisions, err := h.scheduler.UpcomingRevisions(
		r.Context(),
		userID,
		days,
		includeCompleted != nil && *includeCompleted,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list upcoming revisions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, revisions)
}

// CalendarRevisions handles GET /revisions/calendar requests, returning
// revisions within the start/end window.
func (h *RevisionHandler) CalendarRevisions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	from, err := queryTime(r, "start")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	to, err := queryTime(r, "end")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	revisions, err := h.scheduler.CalendarRevisions(r.Context(), userID, from, to)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list calendar revisions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, revisions)
}

// UpdateRevision handles PUT /revisions/{id} requests.
func (h *RevisionHandler) UpdateRevision(w http.ResponseWriter, r *http.Request) {
	userID, revisionID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRevisionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	revision, err := h.scheduler.UpdateRevision(r.Context(), userID, revisionID, scheduler.RevisionPatch{
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		Notify:      req.Notify,
		Color:       req.Color,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, revision)
}

// CompleteRevision handles POST /revisions/{id}/complete requests. An absent
// flag marks the revision complete; an explicit false unmarks it.
func (h *RevisionHandler) CompleteRevision(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, revisionID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	completed := true
	if r.ContentLength > 0 {
		var req CompleteRevisionRequest
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if req.Completed != nil {
			completed = *req.Completed
		}
	}

	revision, err := h.scheduler.CompleteRevision(r.Context(), userID, revisionID, completed)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("revision completion updated",
		slog.String("revision_id", revisionID.String()),
		slog.Bool("is_completed", completed))
	shared.RespondWithJSON(w, r, http.StatusOK, revision)
}
