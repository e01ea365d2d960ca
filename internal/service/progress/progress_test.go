package progress

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/store"
)

// fakeTopicStore serves a fixed topic list.
type fakeTopicStore struct {
	topics []*domain.Topic
}

func (f *fakeTopicStore) Create(ctx context.Context, topic *domain.Topic) error { return nil }
func (f *fakeTopicStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Topic, error) {
	return nil, store.ErrTopicNotFound
}
func (f *fakeTopicStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error) {
	return f.topics, nil
}
func (f *fakeTopicStore) Update(ctx context.Context, topic *domain.Topic) error { return nil }
func (f *fakeTopicStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return nil
}
func (f *fakeTopicStore) WithTx(tx *sql.Tx) store.TopicStore { return f }

// fakeSessionStore serves a fixed session list.
type fakeSessionStore struct {
	sessions []*domain.StudySession
}

func (f *fakeSessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	return nil
}
func (f *fakeSessionStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.StudySession, error) {
	return nil, store.ErrSessionNotFound
}
func (f *fakeSessionStore) ListByUser(ctx context.Context, userID uuid.UUID, filter store.SessionFilter) ([]*domain.StudySession, error) {
	return f.sessions, nil
}
func (f *fakeSessionStore) Update(ctx context.Context, session *domain.StudySession) error {
	return nil
}
func (f *fakeSessionStore) WithTx(tx *sql.Tx) store.StudySessionStore { return f }

// fakeQuestionStore serves a fixed record list.
type fakeQuestionStore struct {
	records []*domain.QuestionRecord
}

func (f *fakeQuestionStore) Create(ctx context.Context, record *domain.QuestionRecord) error {
	return nil
}
func (f *fakeQuestionStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.QuestionRecord, error) {
	return nil, store.ErrQuestionRecordNotFound
}
func (f *fakeQuestionStore) ListByUser(ctx context.Context, userID uuid.UUID, filter store.QuestionFilter) ([]*domain.QuestionRecord, error) {
	return f.records, nil
}
func (f *fakeQuestionStore) Update(ctx context.Context, record *domain.QuestionRecord) error {
	return nil
}
func (f *fakeQuestionStore) WithTx(tx *sql.Tx) store.QuestionRecordStore { return f }

// fakeSyllabusStore serves fixed items and progress marks.
type fakeSyllabusStore struct {
	items []*domain.SyllabusItem
	marks []*domain.SyllabusProgress
}

func (f *fakeSyllabusStore) CreateItems(ctx context.Context, items []*domain.SyllabusItem) error {
	return nil
}
func (f *fakeSyllabusStore) CountItems(ctx context.Context) (int, error) {
	return len(f.items), nil
}
func (f *fakeSyllabusStore) ListItems(ctx context.Context, section string) ([]*domain.SyllabusItem, error) {
	return f.items, nil
}
func (f *fakeSyllabusStore) ListSections(ctx context.Context) ([]string, error) {
	return nil, nil
}
func (f *fakeSyllabusStore) GetItem(ctx context.Context, id uuid.UUID) (*domain.SyllabusItem, error) {
	return nil, store.ErrSyllabusItemNotFound
}
func (f *fakeSyllabusStore) GetProgress(ctx context.Context, userID, itemID uuid.UUID) (*domain.SyllabusProgress, error) {
	return nil, store.ErrProgressNotFound
}
func (f *fakeSyllabusStore) ListProgressByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SyllabusProgress, error) {
	return f.marks, nil
}
func (f *fakeSyllabusStore) SaveProgress(ctx context.Context, progress *domain.SyllabusProgress) error {
	return nil
}
func (f *fakeSyllabusStore) WithTx(tx *sql.Tx) store.SyllabusStore { return f }

func newTestService(
	t *testing.T,
	topics *fakeTopicStore,
	sessions *fakeSessionStore,
	questions *fakeQuestionStore,
	syllabus *fakeSyllabusStore,
) Service {
	t.Helper()
	svc, err := NewService(topics, sessions, questions, syllabus, slog.Default())
	require.NoError(t, err)
	return svc
}

func makeTopic(t *testing.T, userID uuid.UUID, groupID int, groupName, name string, completed bool) *domain.Topic {
	t.Helper()
	topic, err := domain.NewTopic(userID, groupID, groupName, name, "", domain.ConfidenceLow)
	require.NoError(t, err)
	if completed {
		topic.MarkCompleted(time.Now())
	}
	return topic
}

func TestPct(t *testing.T) {
	assert.Equal(t, 0.0, pct(0, 0), "zero whole must not divide")
	assert.Equal(t, 0.0, pct(5, 0))
	assert.Equal(t, 50.0, pct(1, 2))
	assert.Equal(t, 33.3, pct(1, 3), "rounded to one decimal place")
	assert.Equal(t, 66.7, pct(2, 3))
	assert.Equal(t, 100.0, pct(7, 7))
}

func TestGroupProgress(t *testing.T) {
	userID := uuid.New()
	topics := &fakeTopicStore{topics: []*domain.Topic{
		makeTopic(t, userID, 2, "Meteorology", "Fronts", true),
		makeTopic(t, userID, 1, "Air Law", "Airspace", true),
		makeTopic(t, userID, 1, "Air Law", "Rules of the air", false),
		makeTopic(t, userID, 1, "Air Law", "Licensing", false),
	}}
	svc := newTestService(t, topics, &fakeSessionStore{}, &fakeQuestionStore{}, &fakeSyllabusStore{})

	groups, err := svc.GroupProgress(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Sorted by group ID.
	assert.Equal(t, 1, groups[0].GroupID)
	assert.Equal(t, "Air Law", groups[0].GroupName)
	assert.Equal(t, 3, groups[0].Total)
	assert.Equal(t, 1, groups[0].Completed)
	assert.Equal(t, 33.3, groups[0].Percentage)

	assert.Equal(t, 2, groups[1].GroupID)
	assert.Equal(t, 1, groups[1].Total)
	assert.Equal(t, 100.0, groups[1].Percentage)
}

func TestGroupProgressEmpty(t *testing.T) {
	svc := newTestService(t, &fakeTopicStore{}, &fakeSessionStore{}, &fakeQuestionStore{}, &fakeSyllabusStore{})

	groups, err := svc.GroupProgress(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestStudyHours(t *testing.T) {
	userID := uuid.New()
	topicA := makeTopic(t, userID, 1, "Air Law", "Airspace", false)
	topicB := makeTopic(t, userID, 2, "Meteorology", "Fronts", false)

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	makeSession := func(topicID *uuid.UUID, minutes int) *domain.StudySession {
		session, err := domain.NewStudySession(userID, topicID, start, "")
		require.NoError(t, err)
		require.NoError(t, session.SetEnd(start.Add(time.Duration(minutes)*time.Minute)))
		return session
	}

	open, err := domain.NewStudySession(userID, &topicA.ID, start, "")
	require.NoError(t, err)

	sessions := &fakeSessionStore{sessions: []*domain.StudySession{
		makeSession(&topicA.ID, 60),
		makeSession(&topicA.ID, 30),
		makeSession(&topicB.ID, 45),
		makeSession(nil, 15), // counted in the total, not in any group
		open,                 // no duration yet, ignored entirely
	}}
	topics := &fakeTopicStore{topics: []*domain.Topic{topicA, topicB}}
	svc := newTestService(t, topics, sessions, &fakeQuestionStore{}, &fakeSyllabusStore{})

	summary, err := svc.StudyHours(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 150, summary.TotalMinutes)
	assert.Equal(t, 2.5, summary.TotalHours)

	require.Len(t, summary.ByGroup, 2)
	assert.Equal(t, 1, summary.ByGroup[0].GroupID)
	assert.Equal(t, 90, summary.ByGroup[0].Minutes)
	assert.Equal(t, 1.5, summary.ByGroup[0].Hours)
	assert.Equal(t, 2, summary.ByGroup[1].GroupID)
	assert.Equal(t, 45, summary.ByGroup[1].Minutes)
	assert.Equal(t, 0.8, summary.ByGroup[1].Hours)
}

func makeRecord(t *testing.T, userID uuid.UUID, topicID *uuid.UUID, recordedAt time.Time, difficulty domain.Difficulty, total, correct int) *domain.QuestionRecord {
	t.Helper()
	record, err := domain.NewQuestionRecord(
		userID, topicID, recordedAt, "", "", difficulty, total, correct, -1, "",
	)
	require.NoError(t, err)
	return record
}

func TestQuestionPerformanceByTopic(t *testing.T) {
	userID := uuid.New()
	topicA := makeTopic(t, userID, 1, "Air Law", "Airspace", false)
	topicB := makeTopic(t, userID, 2, "Meteorology", "Fronts", false)
	recordedAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	questions := &fakeQuestionStore{records: []*domain.QuestionRecord{
		makeRecord(t, userID, &topicA.ID, recordedAt, domain.DifficultyEasy, 10, 8),
		makeRecord(t, userID, &topicA.ID, recordedAt, domain.DifficultyEasy, 10, 6),
		makeRecord(t, userID, &topicB.ID, recordedAt, domain.DifficultyHard, 20, 10),
		makeRecord(t, userID, nil, recordedAt, domain.DifficultyUnspecified, 5, 5),
	}}
	topics := &fakeTopicStore{topics: []*domain.Topic{topicA, topicB}}
	svc := newTestService(t, topics, &fakeSessionStore{}, questions, &fakeSyllabusStore{})

	chart, err := svc.QuestionPerformance(context.Background(), userID, GroupByTopic, nil, nil)
	require.NoError(t, err)

	// Alphabetical by topic name, the topicless bucket last.
	require.Equal(t, []string{"Airspace", "Fronts", "No topic"}, chart.Labels)
	assert.Equal(t, []int{20, 20, 5}, chart.Totals)
	assert.Equal(t, []float64{70.0, 50.0, 100.0}, chart.Accuracy)
}

func TestQuestionPerformanceByDate(t *testing.T) {
	userID := uuid.New()
	questions := &fakeQuestionStore{records: []*domain.QuestionRecord{
		makeRecord(t, userID, nil, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), domain.DifficultyEasy, 10, 5),
		makeRecord(t, userID, nil, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), domain.DifficultyEasy, 10, 9),
		makeRecord(t, userID, nil, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), domain.DifficultyEasy, 10, 7),
	}}
	svc := newTestService(t, &fakeTopicStore{}, &fakeSessionStore{}, questions, &fakeSyllabusStore{})

	chart, err := svc.QuestionPerformance(context.Background(), userID, GroupByDate, nil, nil)
	require.NoError(t, err)

	// Months appear in chronological order regardless of record order.
	require.Equal(t, []string{"Jan/2026", "Mar/2026"}, chart.Labels)
	assert.Equal(t, []int{20, 10}, chart.Totals)
	assert.Equal(t, []float64{80.0, 50.0}, chart.Accuracy)
}

func TestQuestionPerformanceByDifficulty(t *testing.T) {
	userID := uuid.New()
	recordedAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	questions := &fakeQuestionStore{records: []*domain.QuestionRecord{
		makeRecord(t, userID, nil, recordedAt, domain.DifficultyHard, 10, 4),
		makeRecord(t, userID, nil, recordedAt, domain.DifficultyUnspecified, 10, 10),
	}}
	svc := newTestService(t, &fakeTopicStore{}, &fakeSessionStore{}, questions, &fakeSyllabusStore{})

	chart, err := svc.QuestionPerformance(context.Background(), userID, GroupByDifficulty, nil, nil)
	require.NoError(t, err)

	// Every difficulty bucket is present even when empty, in fixed order.
	require.Equal(t, []string{"Easy", "Medium", "Hard", "Unspecified"}, chart.Labels)
	assert.Equal(t, []int{0, 0, 10, 10}, chart.Totals)
	assert.Equal(t, []float64{0, 0, 40.0, 100.0}, chart.Accuracy)
}

func TestQuestionPerformanceUnknownGrouping(t *testing.T) {
	svc := newTestService(t, &fakeTopicStore{}, &fakeSessionStore{}, &fakeQuestionStore{}, &fakeSyllabusStore{})

	_, err := svc.QuestionPerformance(context.Background(), uuid.New(), "week", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidGroupBy)
}

func TestSyllabusCoverage(t *testing.T) {
	userID := uuid.New()

	makeItem := func(section, content string, order int) *domain.SyllabusItem {
		item, err := domain.NewSyllabusItem(section, "", content, order)
		require.NoError(t, err)
		return item
	}
	items := []*domain.SyllabusItem{
		makeItem("1. AIR LAW", "ICAO conventions", 1),
		makeItem("1. AIR LAW", "Rules of the air", 2),
		makeItem("2. METEOROLOGY", "The atmosphere", 3),
	}

	studiedAt := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	mark := func(itemID uuid.UUID, confidence domain.Confidence) *domain.SyllabusProgress {
		p, err := domain.NewSyllabusProgress(userID, itemID)
		require.NoError(t, err)
		p.SetStudied(true, studiedAt)
		p.Confidence = confidence
		return p
	}
	marks := []*domain.SyllabusProgress{
		mark(items[0].ID, domain.ConfidenceHigh),
		mark(items[1].ID, domain.ConfidenceLow),
	}

	syllabus := &fakeSyllabusStore{items: items, marks: marks}
	svc := newTestService(t, &fakeTopicStore{}, &fakeSessionStore{}, &fakeQuestionStore{}, syllabus)

	overview, err := svc.SyllabusCoverage(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 3, overview.TotalItems)
	assert.Equal(t, 2, overview.StudiedItems)
	assert.Equal(t, 66.7, overview.Percentage)

	// Confidence counts cover studied items only.
	assert.Equal(t, 1, overview.ByConfidence.Low)
	assert.Equal(t, 0, overview.ByConfidence.Medium)
	assert.Equal(t, 1, overview.ByConfidence.High)

	require.Len(t, overview.Items, 3)
	assert.True(t, overview.Items[0].Studied)
	assert.Equal(t, domain.ConfidenceHigh, overview.Items[0].Confidence)
	// Unmarked items default to not studied with low confidence.
	assert.False(t, overview.Items[2].Studied)
	assert.Equal(t, domain.ConfidenceLow, overview.Items[2].Confidence)
}

func TestDashboard(t *testing.T) {
	userID := uuid.New()
	topic := makeTopic(t, userID, 1, "Air Law", "Airspace", true)

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	session, err := domain.NewStudySession(userID, &topic.ID, start, "")
	require.NoError(t, err)
	require.NoError(t, session.SetEnd(start.Add(2*time.Hour)))

	record := makeRecord(t, userID, &topic.ID, start, domain.DifficultyMedium, 40, 30)

	item, err := domain.NewSyllabusItem("1. AIR LAW", "", "ICAO conventions", 1)
	require.NoError(t, err)

	svc := newTestService(t,
		&fakeTopicStore{topics: []*domain.Topic{topic}},
		&fakeSessionStore{sessions: []*domain.StudySession{session}},
		&fakeQuestionStore{records: []*domain.QuestionRecord{record}},
		&fakeSyllabusStore{items: []*domain.SyllabusItem{item}},
	)

	dashboard, err := svc.Dashboard(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, dashboard.Groups, 1)
	assert.Equal(t, 100.0, dashboard.Groups[0].Percentage)

	assert.Equal(t, 120, dashboard.StudyHours.TotalMinutes)
	assert.Equal(t, 2.0, dashboard.StudyHours.TotalHours)

	assert.Equal(t, 40, dashboard.Questions.Total)
	assert.Equal(t, 30, dashboard.Questions.Correct)
	assert.Equal(t, 75.0, dashboard.Questions.Accuracy)
	require.Len(t, dashboard.Questions.ByGroup, 1)
	assert.Equal(t, 1, dashboard.Questions.ByGroup[0].GroupID)

	assert.Equal(t, 1, dashboard.Syllabus.TotalItems)
	assert.Equal(t, 0, dashboard.Syllabus.StudiedItems)
	assert.Equal(t, 0.0, dashboard.Syllabus.Percentage)
}
