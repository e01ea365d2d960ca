package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pilotprep/pilotprep/internal/api/shared"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/service/progress"
	"github.com/pilotprep/pilotprep/internal/store"
)

// StudyHandler handles study-session and question-record HTTP requests.
type StudyHandler struct {
	sessions  store.StudySessionStore
	questions store.QuestionRecordStore
	progress  progress.Service
	validator *validator.Validate
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(
	sessions store.StudySessionStore,
	questions store.QuestionRecordStore,
	progressService progress.Service,
	logger *slog.Logger,
) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}

	return &StudyHandler{
		sessions:  sessions,
		questions: questions,
		progress:  progressService,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "study_handler")),
		timeFunc:  time.Now,
	}
}

// ListSessions handles GET /study/sessions requests, optionally filtered by
// topic_id, start_date, and end_date.
func (h *StudyHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter, err := sessionFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sessions, err := h.sessions.ListByUser(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list study sessions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessions)
}

func sessionFilterFromQuery(r *http.Request) (store.SessionFilter, error) {
	topicID, err := queryUUID(r, "topic_id")
	if err != nil {
		return store.SessionFilter{}, err
	}
	from, err := queryTime(r, "start_date")
	if err != nil {
		return store.SessionFilter{}, err
	}
	to, err := queryTime(r, "end_date")
	if err != nil {
		return store.SessionFilter{}, err
	}
	return store.SessionFilter{TopicID: topicID, From: from, To: to}, nil
}

// CreateSession handles POST /study/sessions requests. A session without an
// end time stays open until closed via the end endpoint.
func (h *StudyHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	session, err := domain.NewStudySession(userID, req.TopicID, req.StartedAt, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if req.EndedAt != nil {
		if err := session.SetEnd(*req.EndedAt); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	if err := h.sessions.Create(r.Context(), session); err != nil {
		HandleAPIError(w, r, err, "Failed to create study session")
		return
	}

	log.Info("study session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// UpdateSession handles PUT /study/sessions/{id} requests.
func (h *StudyHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := h.sessions.GetForUser(r.Context(), sessionID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.TopicID != nil {
		session.TopicID = req.TopicID
	}
	if req.StartedAt != nil {
		session.StartedAt = req.StartedAt.UTC()
	}
	if req.Description != nil {
		session.Description = *req.Description
	}
	if req.EndedAt != nil {
		if err := session.SetEnd(*req.EndedAt); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	} else if req.StartedAt != nil && session.EndedAt != nil {
		// A moved start changes the derived duration.
		if err := session.SetEnd(*session.EndedAt); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	if err := h.sessions.Update(r.Context(), session); err != nil {
		HandleAPIError(w, r, err, "Failed to update study session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// EndSession handles POST /study/sessions/{id}/end requests, closing an open
// session. An absent end time uses the current server time.
func (h *StudyHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	endedAt := h.timeFunc()
	if r.ContentLength > 0 {
		var req EndSessionRequest
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if req.EndedAt != nil {
			endedAt = *req.EndedAt
		}
	}

	session, err := h.sessions.GetForUser(r.Context(), sessionID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := session.Finish(endedAt); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.sessions.Update(r.Context(), session); err != nil {
		HandleAPIError(w, r, err, "Failed to end study session")
		return
	}

	log.Info("study session ended",
		slog.String("session_id", session.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// ListQuestionRecords handles GET /study/questions requests.
func (h *StudyHandler) ListQuestionRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	topicID, err := queryUUID(r, "topic_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	from, err := queryTime(r, "start_date")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	to, err := queryTime(r, "end_date")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	records, err := h.questions.ListByUser(r.Context(), userID, store.QuestionFilter{
		TopicID: topicID,
		From:    from,
		To:      to,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list question records")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, records)
}

// CreateQuestionRecord handles POST /study/questions requests.
func (h *StudyHandler) CreateQuestionRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateQuestionRecordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	recordedAt := h.timeFunc()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}
	wrong := -1
	if req.Wrong != nil {
		wrong = *req.Wrong
	}

	record, err := domain.NewQuestionRecord(
		userID,
		req.TopicID,
		recordedAt,
		req.Source,
		req.SpecificTopic,
		domain.Difficulty(req.Difficulty),
		req.Total,
		req.Correct,
		wrong,
		req.Notes,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.questions.Create(r.Context(), record); err != nil {
		HandleAPIError(w, r, err, "Failed to create question record")
		return
	}

	log.Info("question record created",
		slog.String("record_id", record.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, record)
}

// UpdateQuestionRecord handles PUT /study/questions/{id} requests. The wrong
// count and accuracy are re-derived after the patch is applied.
func (h *StudyHandler) UpdateQuestionRecord(w http.ResponseWriter, r *http.Request) {
	userID, recordID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateQuestionRecordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	record, err := h.questions.GetForUser(r.Context(), recordID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.TopicID != nil {
		record.TopicID = req.TopicID
	}
	if req.RecordedAt != nil {
		record.RecordedAt = req.RecordedAt.UTC()
	}
	if req.Source != nil {
		record.Source = *req.Source
	}
	if req.SpecificTopic != nil {
		record.SpecificTopic = *req.SpecificTopic
	}
	if req.Difficulty != nil {
		record.Difficulty = domain.Difficulty(*req.Difficulty)
	}
	if req.Total != nil {
		record.Total = *req.Total
	}
	if req.Correct != nil {
		record.Correct = *req.Correct
	}
	if req.Wrong != nil {
		record.Wrong = *req.Wrong
	} else if req.Total != nil || req.Correct != nil {
		record.Wrong = record.Total - record.Correct
	}
	record.RecalculateAccuracy()

	if err := record.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.questions.Update(r.Context(), record); err != nil {
		HandleAPIError(w, r, err, "Failed to update question record")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// QuestionStats handles GET /study/questions/stats requests, returning a
// chart-ready performance breakdown grouped by topic, date, or difficulty.
func (h *StudyHandler) QuestionStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = progress.GroupByTopic
	}
	from, err := queryTime(r, "start_date")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	to, err := queryTime(r, "end_date")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	chart, err := h.progress.QuestionPerformance(r.Context(), userID, groupBy, from, to)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, chart)
}
