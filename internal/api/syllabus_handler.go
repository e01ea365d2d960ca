package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pilotprep/pilotprep/internal/api/shared"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/service/progress"
	"github.com/pilotprep/pilotprep/internal/service/syllabus"
	"github.com/pilotprep/pilotprep/internal/store"
)

// SyllabusHandler handles curriculum and per-user progress HTTP requests.
type SyllabusHandler struct {
	syllabus  store.SyllabusStore
	importer  syllabus.Importer
	progress  progress.Service
	validator *validator.Validate
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// NewSyllabusHandler creates a new SyllabusHandler.
func NewSyllabusHandler(
	syllabusStore store.SyllabusStore,
	importer syllabus.Importer,
	progressService progress.Service,
	logger *slog.Logger,
) *SyllabusHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SyllabusHandler")
	}

	return &SyllabusHandler{
		syllabus:  syllabusStore,
		importer:  importer,
		progress:  progressService,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "syllabus_handler")),
		timeFunc:  time.Now,
	}
}

// ListItems handles GET /syllabus requests, optionally restricted to one
// section.
func (h *SyllabusHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.syllabus.ListItems(r.Context(), r.URL.Query().Get("section"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list syllabus items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// Coverage handles GET /syllabus/progress requests, returning every item
// joined with the user's progress mark.
func (h *SyllabusHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	overview, err := h.progress.SyllabusCoverage(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute syllabus coverage")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, overview)
}

// Mark handles POST /syllabus/mark requests, saving the user's progress
// against one item.
func (h *SyllabusHandler) Mark(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req MarkSyllabusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	// The item must exist before progress can be marked against it.
	if _, err := h.syllabus.GetItem(r.Context(), req.ItemID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	mark, err := h.syllabus.GetProgress(r.Context(), userID, req.ItemID)
	if err != nil {
		if !errors.Is(err, store.ErrProgressNotFound) {
			HandleAPIError(w, r, err, "Failed to load syllabus progress")
			return
		}
		mark, err = domain.NewSyllabusProgress(userID, req.ItemID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	studied := true
	if req.Studied != nil {
		studied = *req.Studied
	}
	mark.SetStudied(studied, h.timeFunc())
	if req.Confidence != "" {
		mark.Confidence = domain.Confidence(req.Confidence)
	}
	if req.Notes != nil {
		mark.Notes = *req.Notes
	}

	if err := h.syllabus.SaveProgress(r.Context(), mark); err != nil {
		HandleAPIError(w, r, err, "Failed to save syllabus progress")
		return
	}

	log.Debug("syllabus progress marked",
		slog.String("user_id", userID.String()),
		slog.String("item_id", req.ItemID.String()),
		slog.Bool("is_studied", studied))
	shared.RespondWithJSON(w, r, http.StatusOK, mark)
}

// Import handles POST /syllabus/import requests, loading the configured
// curriculum file. The import is one-shot; re-imports are rejected.
func (h *SyllabusHandler) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if _, ok := requireUserID(w, r); !ok {
		return
	}

	created, err := h.importer.Import(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("syllabus imported via API",
		slog.Int("items_created", created))
	shared.RespondWithJSON(w, r, http.StatusCreated, ImportSyllabusResponse{
		ItemsCreated: created,
	})
}
