package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/store"
)

// memoryNotificationStore is an in-memory NotificationStore for handler
// tests.
type memoryNotificationStore struct {
	notifications map[uuid.UUID]*domain.Notification
	preferences   map[uuid.UUID]*domain.NotificationPreference
}

func newMemoryNotificationStore() *memoryNotificationStore {
	return &memoryNotificationStore{
		notifications: make(map[uuid.UUID]*domain.Notification),
		preferences:   make(map[uuid.UUID]*domain.NotificationPreference),
	}
}

func (s *memoryNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	copied := *notification
	s.notifications[notification.ID] = &copied
	return nil
}

func (s *memoryNotificationStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	notification, ok := s.notifications[id]
	if !ok || notification.UserID != userID {
		return nil, store.ErrNotificationNotFound
	}
	copied := *notification
	return &copied, nil
}

func (s *memoryNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, read *bool) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, notification := range s.notifications {
		if notification.UserID != userID {
			continue
		}
		if read != nil && notification.Read != *read {
			continue
		}
		copied := *notification
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memoryNotificationStore) Update(ctx context.Context, notification *domain.Notification) error {
	if _, ok := s.notifications[notification.ID]; !ok {
		return store.ErrNotificationNotFound
	}
	copied := *notification
	s.notifications[notification.ID] = &copied
	return nil
}

func (s *memoryNotificationStore) GetPreference(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	pref, ok := s.preferences[userID]
	if !ok {
		return nil, store.ErrPreferenceNotFound
	}
	copied := *pref
	return &copied, nil
}

func (s *memoryNotificationStore) SavePreference(ctx context.Context, pref *domain.NotificationPreference) error {
	copied := *pref
	s.preferences[pref.UserID] = &copied
	return nil
}

func (s *memoryNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore { return s }

func newNotificationRouter(notifications store.NotificationStore, userID uuid.UUID) http.Handler {
	h := NewNotificationHandler(notifications, testLogger())

	r := chi.NewRouter()
	r.Use(injectUserID(userID))
	r.Get("/notifications", h.ListNotifications)
	r.Post("/notifications", h.CreateNotification)
	r.Post("/notifications/{id}/read", h.MarkRead)
	r.Get("/notifications/preferences", h.GetPreferences)
	r.Put("/notifications/preferences", h.UpdatePreferences)
	return r
}

func mustNotification(t *testing.T, userID uuid.UUID) *domain.Notification {
	t.Helper()
	notification, err := domain.NewNotification(userID, nil, "Revision due", "Air Law revision 2 is due today")
	require.NoError(t, err)
	return notification
}

func TestListNotifications(t *testing.T) {
	userID := uuid.New()
	notifications := newMemoryNotificationStore()
	require.NoError(t, notifications.Create(context.Background(), mustNotification(t, userID)))
	require.NoError(t, notifications.Create(context.Background(), mustNotification(t, uuid.New())))
	router := newNotificationRouter(notifications, userID)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got []domain.Notification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, userID, got[0].UserID)
}

func TestListNotificationsUnreadOnly(t *testing.T) {
	userID := uuid.New()
	notifications := newMemoryNotificationStore()

	unread := mustNotification(t, userID)
	read := mustNotification(t, userID)
	read.Read = true
	require.NoError(t, notifications.Create(context.Background(), unread))
	require.NoError(t, notifications.Create(context.Background(), read))
	router := newNotificationRouter(notifications, userID)

	req := httptest.NewRequest(http.MethodGet, "/notifications?is_read=false", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got []domain.Notification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, unread.ID, got[0].ID)
}

func TestCreateNotification(t *testing.T) {
	userID := uuid.New()
	notifications := newMemoryNotificationStore()
	router := newNotificationRouter(notifications, userID)

	revisionID := uuid.New()
	body, err := json.Marshal(CreateNotificationRequest{
		Title:      "Revision due",
		Message:    "Air Law revision 2 is due today",
		RevisionID: &revisionID,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "Revision due", got.Title)
	require.NotNil(t, got.RevisionID)
	assert.Equal(t, revisionID, *got.RevisionID)
	assert.False(t, got.Read)
	assert.Len(t, notifications.notifications, 1)
}

func TestCreateNotificationMissingFields(t *testing.T) {
	userID := uuid.New()
	notifications := newMemoryNotificationStore()
	router := newNotificationRouter(notifications, userID)

	body, err := json.Marshal(CreateNotificationRequest{Title: "Revision due"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, notifications.notifications)
}

func TestMarkNotificationRead(t *testing.T) {
	userID := uuid.New()
	notifications := newMemoryNotificationStore()
	notification := mustNotification(t, userID)
	require.NoError(t, notifications.Create(context.Background(), notification))
	router := newNotificationRouter(notifications, userID)

	req := httptest.NewRequest(http.MethodPost, "/notifications/"+notification.ID.String()+"/read", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, notifications.notifications[notification.ID].Read)
}

func TestMarkNotificationReadForeignUser(t *testing.T) {
	userID := uuid.New()
	notifications := newMemoryNotificationStore()
	foreign := mustNotification(t, uuid.New())
	require.NoError(t, notifications.Create(context.Background(), foreign))
	router := newNotificationRouter(notifications, userID)

	req := httptest.NewRequest(http.MethodPost, "/notifications/"+foreign.ID.String()+"/read", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, notifications.notifications[foreign.ID].Read)
}

func TestGetPreferencesDefaults(t *testing.T) {
	userID := uuid.New()
	router := newNotificationRouter(newMemoryNotificationStore(), userID)

	req := httptest.NewRequest(http.MethodGet, "/notifications/preferences", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got domain.NotificationPreference
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.BrowserEnabled)
	assert.Equal(t, 30, got.ReminderMinutesBefore)
}

func TestUpdatePreferences(t *testing.T) {
	userID := uuid.New()
	notifications := newMemoryNotificationStore()
	router := newNotificationRouter(notifications, userID)

	enabled := false
	minutes := 120
	body, err := json.Marshal(UpdatePreferencesRequest{
		BrowserEnabled:        &enabled,
		ReminderMinutesBefore: &minutes,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/notifications/preferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	saved := notifications.preferences[userID]
	require.NotNil(t, saved)
	assert.False(t, saved.BrowserEnabled)
	assert.Equal(t, 120, saved.ReminderMinutesBefore)
}

func TestUpdatePreferencesNegativeReminder(t *testing.T) {
	userID := uuid.New()
	router := newNotificationRouter(newMemoryNotificationStore(), userID)

	minutes := -5
	body, err := json.Marshal(UpdatePreferencesRequest{ReminderMinutesBefore: &minutes})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/notifications/preferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
