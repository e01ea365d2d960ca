package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotprep/pilotprep/internal/api/shared"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/service/scheduler"
	"github.com/pilotprep/pilotprep/internal/store"
)

// mockSchedulerService returns canned results for handler tests.
type mockSchedulerService struct {
	topics    []*domain.Topic
	topic     *domain.Topic
	revisions []*domain.Revision
	upcoming  []*store.UpcomingRevision
	revision  *domain.Revision
	err       error

	gotHorizon int
}

func (m *mockSchedulerService) CreateTopic(ctx context.Context, userID uuid.UUID, params scheduler.CreateTopicParams) (*domain.Topic, error) {
	return m.topic, m.err
}

func (m *mockSchedulerService) ListTopics(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error) {
	return m.topics, m.err
}

func (m *mockSchedulerService) GetTopic(ctx context.Context, userID, topicID uuid.UUID) (*domain.Topic, error) {
	return m.topic, m.err
}

func (m *mockSchedulerService) UpdateTopic(ctx context.Context, userID, topicID uuid.UUID, patch scheduler.TopicPatch) (*domain.Topic, error) {
	return m.topic, m.err
}

func (m *mockSchedulerService) DeleteTopic(ctx context.Context, userID, topicID uuid.UUID) error {
	return m.err
}

func (m *mockSchedulerService) GenerateSchedule(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.Revision, error) {
	return m.revisions, m.err
}

func (m *mockSchedulerService) ListTopicRevisions(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.Revision, error) {
	return m.revisions, m.err
}

func (m *mockSchedulerService) ListRevisions(ctx context.Context, userID uuid.UUID, filter store.RevisionFilter) ([]*domain.Revision, error) {
	return m.revisions, m.err
}

func (m *mockSchedulerService) CompleteRevision(ctx context.Context, userID, revisionID uuid.UUID, completed bool) (*domain.Revision, error) {
	return m.revision, m.err
}

func (m *mockSchedulerService) UpdateRevision(ctx context.Context, userID, revisionID uuid.UUID, patch scheduler.RevisionPatch) (*domain.Revision, error) {
	return m.revision, m.err
}

func (m *mockSchedulerService) UpcomingRevisions(ctx context.Context, userID uuid.UUID, horizonDays int, includeCompleted bool) ([]*store.UpcomingRevision, error) {
	m.gotHorizon = horizonDays
	return m.upcoming, m.err
}

func (m *mockSchedulerService) CalendarRevisions(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*store.UpcomingRevision, error) {
	return m.upcoming, m.err
}

// newTopicRouter mounts the topic handler behind chi with the user injected
// into the request context, mirroring the authenticated route group.
func newTopicRouter(svc scheduler.Service, userID *uuid.UUID) http.Handler {
	h := NewTopicHandler(svc, slog.Default())

	r := chi.NewRouter()
	if userID != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), shared.UserIDContextKey, *userID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	r.Get("/topics", h.ListTopics)
	r.Post("/topics", h.CreateTopic)
	r.Put("/topics/{id}", h.UpdateTopic)
	r.Delete("/topics/{id}", h.DeleteTopic)
	r.Get("/topics/{id}/revisions", h.ListTopicRevisions)
	r.Post("/topics/{id}/revisions", h.GenerateSchedule)
	return r
}

func mustTopic(t *testing.T, userID uuid.UUID) *domain.Topic {
	t.Helper()
	topic, err := domain.NewTopic(userID, 1, "Air Law", "Airspace classes", "", domain.ConfidenceLow)
	require.NoError(t, err)
	return topic
}

func TestListTopics(t *testing.T) {
	userID := uuid.New()
	svc := &mockSchedulerService{topics: []*domain.Topic{mustTopic(t, userID)}}
	router := newTopicRouter(svc, &userID)

	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var topics []domain.Topic
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topics))
	require.Len(t, topics, 1)
	assert.Equal(t, "Airspace classes", topics[0].Name)
}

func TestListTopicsUnauthenticated(t *testing.T) {
	router := newTopicRouter(&mockSchedulerService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateTopic(t *testing.T) {
	userID := uuid.New()
	svc := &mockSchedulerService{topic: mustTopic(t, userID)}
	router := newTopicRouter(svc, &userID)

	body, err := json.Marshal(CreateTopicRequest{
		GroupID:         1,
		GroupName:       "Air Law",
		Name:            "Airspace classes",
		CreateRevisions: true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/topics", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateTopicValidation(t *testing.T) {
	userID := uuid.New()
	router := newTopicRouter(&mockSchedulerService{}, &userID)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"group_id": `},
		{"missing name", `{"group_id": 1, "group_name": "Air Law"}`},
		{"zero group", `{"group_id": 0, "group_name": "Air Law", "name": "Airspace"}`},
		{"unknown confidence", `{"group_id": 1, "group_name": "Air Law", "name": "Airspace", "confidence_level": "Expert"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/topics", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestDeleteTopic(t *testing.T) {
	userID := uuid.New()
	router := newTopicRouter(&mockSchedulerService{}, &userID)

	req := httptest.NewRequest(http.MethodDelete, "/topics/"+uuid.New().String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestDeleteTopicNotFound(t *testing.T) {
	userID := uuid.New()
	router := newTopicRouter(&mockSchedulerService{err: store.ErrTopicNotFound}, &userID)

	req := httptest.NewRequest(http.MethodDelete, "/topics/"+uuid.New().String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteTopicInvalidID(t *testing.T) {
	userID := uuid.New()
	router := newTopicRouter(&mockSchedulerService{}, &userID)

	req := httptest.NewRequest(http.MethodDelete, "/topics/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerateScheduleConflict(t *testing.T) {
	userID := uuid.New()
	router := newTopicRouter(&mockSchedulerService{err: store.ErrScheduleExists}, &userID)

	req := httptest.NewRequest(http.MethodPost, "/topics/"+uuid.New().String()+"/revisions", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGenerateSchedule(t *testing.T) {
	userID := uuid.New()
	topic := mustTopic(t, userID)

	revisions := make([]*domain.Revision, 0, 5)
	for i := 1; i <= 5; i++ {
		rev, err := domain.NewRevision(topic.ID, topic.CreatedAt.AddDate(0, 0, i), i)
		require.NoError(t, err)
		revisions = append(revisions, rev)
	}
	router := newTopicRouter(&mockSchedulerService{revisions: revisions}, &userID)

	req := httptest.NewRequest(http.MethodPost, "/topics/"+topic.ID.String()+"/revisions", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var out []domain.Revision
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Len(t, out, 5)
}
