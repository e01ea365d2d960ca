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
	"github.com/pilotprep/pilotprep/internal/store"
)

// NotificationHandler handles notification and preference HTTP requests.
type NotificationHandler struct {
	notifications store.NotificationStore
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications store.NotificationStore, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NotificationHandler")
	}

	return &NotificationHandler{
		notifications: notifications,
		validator:     validator.New(),
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// ListNotifications handles GET /notifications requests, optionally filtered
// by read state.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	read, err := queryBool(r, "is_read")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	notifications, err := h.notifications.ListByUser(r.Context(), userID, read)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notifications")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notifications)
}

// CreateNotification handles POST /notifications requests.
func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateNotificationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	notification, err := domain.NewNotification(userID, req.RevisionID, req.Title, req.Message)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.notifications.Create(r.Context(), notification); err != nil {
		HandleAPIError(w, r, err, "Failed to create notification")
		return
	}

	log.Info("notification created",
		slog.String("notification_id", notification.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, notification)
}

// MarkRead handles POST /notifications/{id}/read requests.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, notificationID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	notification, err := h.notifications.GetForUser(r.Context(), notificationID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	notification.Read = true
	if err := h.notifications.Update(r.Context(), notification); err != nil {
		HandleAPIError(w, r, err, "Failed to update notification")
		return
	}

	log.Debug("notification marked read",
		slog.String("notification_id", notificationID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, notification)
}

// GetPreferences handles GET /notifications/preferences requests. Users who
// have never saved preferences get the defaults.
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	pref, err := h.notifications.GetPreference(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, store.ErrPreferenceNotFound) {
			HandleAPIError(w, r, err, "Failed to load notification preferences")
			return
		}
		pref = domain.DefaultNotificationPreference(userID)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pref)
}

// UpdatePreferences handles PUT /notifications/preferences requests.
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdatePreferencesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	pref, err := h.notifications.GetPreference(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, store.ErrPreferenceNotFound) {
			HandleAPIError(w, r, err, "Failed to load notification preferences")
			return
		}
		pref = domain.DefaultNotificationPreference(userID)
	}

	if req.BrowserEnabled != nil {
		pref.BrowserEnabled = *req.BrowserEnabled
	}
	if req.EmailEnabled != nil {
		pref.EmailEnabled = *req.EmailEnabled
	}
	if req.ReminderMinutesBefore != nil {
		pref.ReminderMinutesBefore = *req.ReminderMinutesBefore
	}
	pref.UpdatedAt = time.Now().UTC()

	if err := h.notifications.SavePreference(r.Context(), pref); err != nil {
		HandleAPIError(w, r, err, "Failed to save notification preferences")
		return
	}

	log.Debug("notification preferences updated",
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, pref)
}
