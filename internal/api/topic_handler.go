package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pilotprep/pilotprep/internal/api/shared"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/service/scheduler"
)

// TopicHandler handles topic and schedule-generation HTTP requests.
type TopicHandler struct {
	scheduler scheduler.Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(schedulerService scheduler.Service, logger *slog.Logger) *TopicHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TopicHandler")
	}

	return &TopicHandler{
		scheduler: schedulerService,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "topic_handler")),
	}
}

// ListTopics handles GET /topics requests.
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	topics, err := h.scheduler.ListTopics(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list topics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, topics)
}

// CreateTopic handles POST /topics requests.
func (h *TopicHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTopicRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	topic, err := h.scheduler.CreateTopic(r.Context(), userID, scheduler.CreateTopicParams{
		GroupID:         req.GroupID,
		GroupName:       req.GroupName,
		Name:            req.Name,
		Description:     req.Description,
		Confidence:      domain.Confidence(req.Confidence),
		CreateRevisions: req.CreateRevisions,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("topic created",
		slog.String("topic_id", topic.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, topic)
}

// UpdateTopic handles PUT /topics/{id} requests.
func (h *TopicHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTopicRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	patch := scheduler.TopicPatch{
		GroupID:     req.GroupID,
		GroupName:   req.GroupName,
		Name:        req.Name,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Confidence != nil {
		confidence := domain.Confidence(*req.Confidence)
		patch.Confidence = &confidence
	}

	topic, err := h.scheduler.UpdateTopic(r.Context(), userID, topicID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, topic)
}

// DeleteTopic handles DELETE /topics/{id} requests.
func (h *TopicHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, topicID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.scheduler.DeleteTopic(r.Context(), userID, topicID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("topic deleted",
		slog.String("topic_id", topicID.String()),
		slog.String("user_id", userID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ListTopicRevisions handles GET /topics/{id}/revisions requests.
func (h *TopicHandler) ListTopicRevisions(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	revisions, err := h.scheduler.ListTopicRevisions(r.Context(), userID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, revisions)
}

// GenerateSchedule handles POST /topics/{id}/revisions requests, creating
// the topic's full revision schedule.
func (h *TopicHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, topicID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	revisions, err := h.scheduler.GenerateSchedule(r.Context(), userID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("revision schedule generated",
		slog.String("topic_id", topicID.String()),
		slog.Int("revision_count", len(revisions)))
	shared.RespondWithJSON(w, r, http.StatusCreated, revisions)
}
