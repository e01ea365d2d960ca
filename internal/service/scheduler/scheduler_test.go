package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/store"
)

// mockTopicStore is a test implementation of store.TopicStore.
type mockTopicStore struct {
	topics    map[uuid.UUID]*domain.Topic
	createErr error
	updateErr error
}

func newMockTopicStore() *mockTopicStore {
	return &mockTopicStore{topics: make(map[uuid.UUID]*domain.Topic)}
}

func (m *mockTopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *topic
	m.topics[topic.ID] = &copied
	return nil
}

func (m *mockTopicStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Topic, error) {
	topic, ok := m.topics[id]
	if !ok || topic.UserID != userID {
		return nil, store.ErrTopicNotFound
	}
	copied := *topic
	return &copied, nil
}

func (m *mockTopicStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error) {
	var out []*domain.Topic
	for _, topic := range m.topics {
		if topic.UserID == userID {
			copied := *topic
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTopicStore) Update(ctx context.Context, topic *domain.Topic) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.topics[topic.ID]; !ok {
		return store.ErrTopicNotFound
	}
	copied := *topic
	m.topics[topic.ID] = &copied
	return nil
}

func (m *mockTopicStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	topic, ok := m.topics[id]
	if !ok || topic.UserID != userID {
		return store.ErrTopicNotFound
	}
	delete(m.topics, id)
	return nil
}

func (m *mockTopicStore) WithTx(tx *sql.Tx) store.TopicStore { return m }

// mockRevisionStore is a test implementation of store.RevisionStore.
type mockRevisionStore struct {
	revisions map[uuid.UUID]*domain.Revision
	ownerByID map[uuid.UUID]uuid.UUID // topic ID -> owning user
	createErr error
	updateErr error
}

func newMockRevisionStore() *mockRevisionStore {
	return &mockRevisionStore{
		revisions: make(map[uuid.UUID]*domain.Revision),
		ownerByID: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockRevisionStore) CreateMultiple(ctx context.Context, revisions []*domain.Revision) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, rev := range revisions {
		copied := *rev
		m.revisions[rev.ID] = &copied
	}
	return nil
}

func (m *mockRevisionStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Revision, error) {
	rev, ok := m.revisions[id]
	if !ok || m.ownerByID[rev.TopicID] != userID {
		return nil, store.ErrRevisionNotFound
	}
	copied := *rev
	return &copied, nil
}

func (m *mockRevisionStore) CountByTopic(ctx context.Context, topicID uuid.UUID) (int, error) {
	count := 0
	for _, rev := range m.revisions {
		if rev.TopicID == topicID {
			count++
		}
	}
	return count, nil
}

func (m *mockRevisionStore) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*domain.Revision, error) {
	var out []*domain.Revision
	for _, rev := range m.revisions {
		if rev.TopicID == topicID {
			copied := *rev
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockRevisionStore) ListByUser(ctx context.Context, userID uuid.UUID, filter store.RevisionFilter) ([]*domain.Revision, error) {
	return nil, nil
}

func (m *mockRevisionStore) ListUpcoming(ctx context.Context, userID uuid.UUID, cutoff *time.Time, includeCompleted bool) ([]*store.UpcomingRevision, error) {
	return nil, nil
}

func (m *mockRevisionStore) ListWindow(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*store.UpcomingRevision, error) {
	return nil, nil
}

func (m *mockRevisionStore) Update(ctx context.Context, revision *domain.Revision) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.revisions[revision.ID]; !ok {
		return store.ErrRevisionNotFound
	}
	copied := *revision
	m.revisions[revision.ID] = &copied
	return nil
}

func (m *mockRevisionStore) WithTx(tx *sql.Tx) store.RevisionStore { return m }

// newTestService wires a service around mock stores and a sqlmock connection.
func newTestService(t *testing.T) (Service, *mockTopicStore, *mockRevisionStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	topics := newMockTopicStore()
	revisions := newMockRevisionStore()

	svc, err := NewService(db, topics, revisions, slog.Default())
	require.NoError(t, err)

	return svc, topics, revisions, mock
}

func TestNewService(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	tests := []struct {
		name        string
		db          *sql.DB
		topics      store.TopicStore
		revisions   store.RevisionStore
		expectError bool
	}{
		{
			name:        "nil db",
			db:          nil,
			topics:      newMockTopicStore(),
			revisions:   newMockRevisionStore(),
			expectError: true,
		},
		{
			name:        "nil topic store",
			db:          db,
			topics:      nil,
			revisions:   newMockRevisionStore(),
			expectError: true,
		},
		{
			name:        "nil revision store",
			db:          db,
			topics:      newMockTopicStore(),
			revisions:   nil,
			expectError: true,
		},
		{
			name:        "all dependencies provided",
			db:          db,
			topics:      newMockTopicStore(),
			revisions:   newMockRevisionStore(),
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.db, tt.topics, tt.revisions, slog.Default())
			if tt.expectError {
				assert.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestGenerateSchedule(t *testing.T) {
	svc, topics, revisions, mock := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	topic, err := domain.NewTopic(userID, 1, "Navigation", "Dead reckoning", "", domain.ConfidenceLow)
	require.NoError(t, err)
	require.NoError(t, topics.Create(ctx, topic))

	mock.ExpectBegin()
	mock.ExpectCommit()

	generated, err := svc.GenerateSchedule(ctx, userID, topic.ID)
	require.NoError(t, err)
	require.Len(t, generated, RevisionCount)

	// Sequences are contiguous from 1 and dates follow the cumulative
	// interval plan.
	wantDates := ScheduleDates(topic.CreatedAt)
	for i, rev := range generated {
		assert.Equal(t, i+1, rev.Sequence)
		assert.Equal(t, topic.ID, rev.TopicID)
		assert.True(t, rev.ScheduledAt.Equal(wantDates[i]),
			"revision %d: expected %v, got %v", i+1, wantDates[i], rev.ScheduledAt)
		assert.True(t, rev.Notify)
		assert.Equal(t, domain.DefaultRevisionColor, rev.Color)
		assert.False(t, rev.Completed)
	}

	count, err := revisions.CountByTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, RevisionCount, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateScheduleIdempotent(t *testing.T) {
	svc, topics, _, mock := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	topic, err := domain.NewTopic(userID, 1, "Navigation", "Dead reckoning", "", domain.ConfidenceLow)
	require.NoError(t, err)
	require.NoError(t, topics.Create(ctx, topic))

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = svc.GenerateSchedule(ctx, userID, topic.ID)
	require.NoError(t, err)

	// A second generation finds existing rows and rolls back.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.GenerateSchedule(ctx, userID, topic.ID)
	assert.ErrorIs(t, err, store.ErrScheduleExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateScheduleOwnership(t *testing.T) {
	svc, topics, _, _ := newTestService(t)
	ctx := context.Background()

	owner := uuid.New()
	topic, err := domain.NewTopic(owner, 1, "Navigation", "Dead reckoning", "", domain.ConfidenceLow)
	require.NoError(t, err)
	require.NoError(t, topics.Create(ctx, topic))

	// Another user cannot generate a schedule for someone else's topic.
	_, err = svc.GenerateSchedule(ctx, uuid.New(), topic.ID)
	assert.ErrorIs(t, err, store.ErrTopicNotFound)
}

func TestCreateTopic(t *testing.T) {
	svc, topics, revisions, mock := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectCommit()

	topic, err := svc.CreateTopic(ctx, userID, CreateTopicParams{
		GroupID:         2,
		GroupName:       "Meteorology",
		Name:            "Thunderstorm development",
		Confidence:      domain.ConfidenceMedium,
		CreateRevisions: true,
	})
	require.NoError(t, err)
	require.NotNil(t, topic)

	stored, err := topics.GetForUser(ctx, topic.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Thunderstorm development", stored.Name)

	count, err := revisions.CountByTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, RevisionCount, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTopicScheduleFailureKeepsTopic(t *testing.T) {
	svc, topics, revisions, mock := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	// Make the revision insert fail. The topic must still be created: the
	// user can regenerate the schedule afterwards.
	revisions.createErr = assert.AnError
	mock.ExpectBegin()
	mock.ExpectRollback()

	topic, err := svc.CreateTopic(ctx, userID, CreateTopicParams{
		GroupID:         1,
		GroupName:       "Air Law",
		Name:            "ICAO annexes",
		CreateRevisions: true,
	})
	require.NoError(t, err)
	require.NotNil(t, topic)

	_, err = topics.GetForUser(ctx, topic.ID, userID)
	assert.NoError(t, err)

	count, err := revisions.CountByTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateTopicWithoutRevisions(t *testing.T) {
	svc, _, revisions, _ := newTestService(t)
	ctx := context.Background()

	topic, err := svc.CreateTopic(ctx, uuid.New(), CreateTopicParams{
		GroupID:   1,
		GroupName: "Air Law",
		Name:      "Rules of the air",
	})
	require.NoError(t, err)

	count, err := revisions.CountByTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateTopicCompletion(t *testing.T) {
	svc, topics, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	topic, err := domain.NewTopic(userID, 1, "Navigation", "Wind triangle", "", domain.ConfidenceLow)
	require.NoError(t, err)
	require.NoError(t, topics.Create(ctx, topic))

	completed := true
	updated, err := svc.UpdateTopic(ctx, userID, topic.ID, TopicPatch{Completed: &completed})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletedAt)

	notCompleted := false
	updated, err = svc.UpdateTopic(ctx, userID, topic.ID, TopicPatch{Completed: &notCompleted})
	require.NoError(t, err)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletedAt)
}

func TestCompleteRevision(t *testing.T) {
	svc, topics, revisions, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	topic, err := domain.NewTopic(userID, 1, "Navigation", "Compass errors", "", domain.ConfidenceLow)
	require.NoError(t, err)
	require.NoError(t, topics.Create(ctx, topic))
	revisions.ownerByID[topic.ID] = userID

	rev, err := domain.NewRevision(topic.ID, topic.CreatedAt.AddDate(0, 0, 1), 1)
	require.NoError(t, err)
	require.NoError(t, revisions.CreateMultiple(ctx, []*domain.Revision{rev}))

	updated, err := svc.CompleteRevision(ctx, userID, rev.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletedAt)

	// Undo restores the incomplete state.
	updated, err = svc.CompleteRevision(ctx, userID, rev.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletedAt)

	// Another user's revision is invisible.
	_, err = svc.CompleteRevision(ctx, uuid.New(), rev.ID, true)
	assert.ErrorIs(t, err, store.ErrRevisionNotFound)
}

func TestUpdateRevision(t *testing.T) {
	svc, topics, revisions, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	topic, err := domain.NewTopic(userID, 1, "Navigation", "Compass errors", "", domain.ConfidenceLow)
	require.NoError(t, err)
	require.NoError(t, topics.Create(ctx, topic))
	revisions.ownerByID[topic.ID] = userID

	rev, err := domain.NewRevision(topic.ID, topic.CreatedAt.AddDate(0, 0, 1), 1)
	require.NoError(t, err)
	require.NoError(t, revisions.CreateMultiple(ctx, []*domain.Revision{rev}))

	newDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	notes := "Moved to after the mock exam"
	notify := false

	updated, err := svc.UpdateRevision(ctx, userID, rev.ID, RevisionPatch{
		ScheduledAt: &newDate,
		Notes:       &notes,
		Notify:      &notify,
	})
	require.NoError(t, err)
	assert.True(t, updated.ScheduledAt.Equal(newDate))
	assert.Equal(t, notes, updated.Notes)
	assert.False(t, updated.Notify)
	// Untouched fields keep their values.
	assert.Equal(t, domain.DefaultRevisionColor, updated.Color)
}
