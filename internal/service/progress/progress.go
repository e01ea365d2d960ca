package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/store"
)

// Grouping dimensions accepted by QuestionPerformance.
const (
	GroupByTopic      = "topic"
	GroupByDate       = "date"
	GroupByDifficulty = "difficulty"
)

// ErrInvalidGroupBy is returned when QuestionPerformance is asked to group by
// an unknown dimension.
var ErrInvalidGroupBy = errors.New("group_by must be one of: topic, date, difficulty")

// noTopicLabel buckets question records whose topic reference is absent or
// whose topic has been deleted.
const noTopicLabel = "No topic"

// Service computes on-demand statistics over a user's study data.
type Service interface {
	// GroupProgress partitions the user's topics by syllabus group and
	// reports per-group completion.
	GroupProgress(ctx context.Context, userID uuid.UUID) ([]GroupProgress, error)

	// StudyHours totals the user's logged study time, overall and per group.
	StudyHours(ctx context.Context, userID uuid.UUID) (*StudyHoursSummary, error)

	// QuestionPerformance buckets the user's question records by the given
	// dimension and reports per-bucket accuracy. Nil date bounds are open.
	QuestionPerformance(ctx context.Context, userID uuid.UUID, groupBy string, from, to *time.Time) (*PerformanceChart, error)

	// SyllabusCoverage joins every syllabus item with the user's progress
	// mark, defaulting unmarked items to un-studied.
	SyllabusCoverage(ctx context.Context, userID uuid.UUID) (*SyllabusOverview, error)

	// Dashboard composes the other operations into one response.
	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	topics    store.TopicStore
	sessions  store.StudySessionStore
	questions store.QuestionRecordStore
	syllabus  store.SyllabusStore
	logger    *slog.Logger
}

// NewService creates a new progress Service.
// It returns an error if any of the required dependencies are nil.
func NewService(
	topics store.TopicStore,
	sessions store.StudySessionStore,
	questions store.QuestionRecordStore,
	syllabus store.SyllabusStore,
	logger *slog.Logger,
) (Service, error) {
	if topics == nil {
		return nil, fmt.Errorf("%w: topic store cannot be nil", domain.ErrValidation)
	}
	if sessions == nil {
		return nil, fmt.Errorf("%w: study session store cannot be nil", domain.ErrValidation)
	}
	if questions == nil {
		return nil, fmt.Errorf("%w: question record store cannot be nil", domain.ErrValidation)
	}
	if syllabus == nil {
		return nil, fmt.Errorf("%w: syllabus store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		topics:    topics,
		sessions:  sessions,
		questions: questions,
		syllabus:  syllabus,
		logger:    logger.With(slog.String("component", "progress_service")),
	}, nil
}

// pct returns part/whole as a percentage, rounded to one decimal place.
// A zero whole yields 0 rather than NaN.
func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

// round1 rounds to one decimal place, halves away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// GroupProgress implements Service.GroupProgress
func (s *serviceImpl) GroupProgress(ctx context.Context, userID uuid.UUID) ([]GroupProgress, error) {
	topics, err := s.topics.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byGroup := map[int]*GroupProgress{}
	for _, topic := range topics {
		group, ok := byGroup[topic.GroupID]
		if !ok {
			group = &GroupProgress{GroupID: topic.GroupID, GroupName: topic.GroupName}
			byGroup[topic.GroupID] = group
		}
		group.Total++
		if topic.Completed {
			group.Completed++
		}
	}

	groups := make([]GroupProgress, 0, len(byGroup))
	for _, group := range byGroup {
		group.Percentage = pct(group.Completed, group.Total)
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].GroupID < groups[j].GroupID })

	return groups, nil
}

// StudyHours implements Service.StudyHours
// The grand total counts any session with a recorded duration; the per-group
// breakdown additionally needs a topic link to resolve the group.
func (s *serviceImpl) StudyHours(ctx context.Context, userID uuid.UUID) (*StudyHoursSummary, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID, store.SessionFilter{})
	if err != nil {
		return nil, err
	}

	groupOf, err := s.topicGroups(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &StudyHoursSummary{ByGroup: []GroupHours{}}
	byGroup := map[int]*GroupHours{}

	for _, session := range sessions {
		if session.DurationMinutes == nil {
			continue
		}
		minutes := *session.DurationMinutes
		summary.TotalMinutes += minutes

		if session.TopicID == nil {
			continue
		}
		topic, ok := groupOf[*session.TopicID]
		if !ok {
			continue
		}
		group, ok := byGroup[topic.GroupID]
		if !ok {
			group = &GroupHours{GroupID: topic.GroupID, GroupName: topic.GroupName}
			byGroup[topic.GroupID] = group
		}
		group.Minutes += minutes
	}

	summary.TotalHours = round1(float64(summary.TotalMinutes) / 60)
	for _, group := range byGroup {
		group.Hours = round1(float64(group.Minutes) / 60)
		summary.ByGroup = append(summary.ByGroup, *group)
	}
	sort.Slice(summary.ByGroup, func(i, j int) bool {
		return summary.ByGroup[i].GroupID < summary.ByGroup[j].GroupID
	})

	return summary, nil
}

// bucket accumulates question counts for one chart bar.
type bucket struct {
	key     string
	label   string
	total   int
	correct int
}

// QuestionPerformance implements Service.QuestionPerformance
func (s *serviceImpl) QuestionPerformance(ctx context.Context, userID uuid.UUID, groupBy string, from, to *time.Time) (*PerformanceChart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	records, err := s.questions.ListByUser(ctx, userID, store.QuestionFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	var buckets []bucket
	switch groupBy {
	case GroupByTopic:
		buckets, err = s.bucketByTopic(ctx, userID, records)
		if err != nil {
			return nil, err
		}
	case GroupByDate:
		buckets = bucketByMonth(records)
	case GroupByDifficulty:
		buckets = bucketByDifficulty(records)
	default:
		log.Warn("rejected unknown grouping dimension",
			slog.String("group_by", groupBy))
		return nil, ErrInvalidGroupBy
	}

	chart := &PerformanceChart{
		GroupBy:  groupBy,
		Labels:   make([]string, 0, len(buckets)),
		Accuracy: make([]float64, 0, len(buckets)),
		Totals:   make([]int, 0, len(buckets)),
	}
	for _, b := range buckets {
		chart.Labels = append(chart.Labels, b.label)
		chart.Accuracy = append(chart.Accuracy, pct(b.correct, b.total))
		chart.Totals = append(chart.Totals, b.total)
	}

	return chart, nil
}

func (s *serviceImpl) bucketByTopic(ctx context.Context, userID uuid.UUID, records []*domain.QuestionRecord) ([]bucket, error) {
	groupOf, err := s.topicGroups(ctx, userID)
	if err != nil {
		return nil, err
	}

	byLabel := map[string]*bucket{}
	for _, record := range records {
		label := noTopicLabel
		if record.TopicID != nil {
			if topic, ok := groupOf[*record.TopicID]; ok {
				label = topic.Name
			}
		}
		b, ok := byLabel[label]
		if !ok {
			b = &bucket{key: label, label: label}
			byLabel[label] = b
		}
		b.total += record.Total
		b.correct += record.Correct
	}

	return sortBuckets(byLabel, func(i, j bucket) bool {
		// The sentinel bucket renders last.
		if i.label == noTopicLabel || j.label == noTopicLabel {
			return j.label == noTopicLabel
		}
		return i.label < j.label
	}), nil
}

func bucketByMonth(records []*domain.QuestionRecord) []bucket {
	byKey := map[string]*bucket{}
	for _, record := range records {
		month := record.RecordedAt.UTC()
		key := month.Format("2006-01")
		b, ok := byKey[key]
		if !ok {
			b = &bucket{key: key, label: month.Format("Jan/2006")}
			byKey[key] = b
		}
		b.total += record.Total
		b.correct += record.Correct
	}

	// "YYYY-MM" keys sort lexically into chronological order.
	return sortBuckets(byKey, func(i, j bucket) bool { return i.key < j.key })
}

func bucketByDifficulty(records []*domain.QuestionRecord) []bucket {
	order := []struct {
		tag   domain.Difficulty
		label string
	}{
		{domain.DifficultyEasy, "Easy"},
		{domain.DifficultyMedium, "Medium"},
		{domain.DifficultyHard, "Hard"},
		{domain.DifficultyUnspecified, "Unspecified"},
	}

	buckets := make([]bucket, len(order))
	index := map[domain.Difficulty]int{}
	for i, o := range order {
		buckets[i] = bucket{key: o.label, label: o.label}
		index[o.tag] = i
	}

	for _, record := range records {
		i, ok := index[record.Difficulty]
		if !ok {
			i = index[domain.DifficultyUnspecified]
		}
		buckets[i].total += record.Total
		buckets[i].correct += record.Correct
	}

	return buckets
}

func sortBuckets(m map[string]*bucket, less func(i, j bucket) bool) []bucket {
	buckets := make([]bucket, 0, len(m))
	for _, b := range m {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return less(buckets[i], buckets[j]) })
	return buckets
}

// topicGroups maps the user's topic IDs to their topics for group and name
// lookups.
func (s *serviceImpl) topicGroups(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*domain.Topic, error) {
	topics, err := s.topics.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Topic, len(topics))
	for _, topic := range topics {
		byID[topic.ID] = topic
	}
	return byID, nil
}

// SyllabusCoverage implements Service.SyllabusCoverage
func (s *serviceImpl) SyllabusCoverage(ctx context.Context, userID uuid.UUID) (*SyllabusOverview, error) {
	items, err := s.syllabus.ListItems(ctx, "")
	if err != nil {
		return nil, err
	}

	marks, err := s.syllabus.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	markOf := make(map[uuid.UUID]*domain.SyllabusProgress, len(marks))
	for _, mark := range marks {
		markOf[mark.ItemID] = mark
	}

	overview := &SyllabusOverview{
		Items:      make([]ItemProgress, 0, len(items)),
		TotalItems: len(items),
	}

	for _, item := range items {
		entry := ItemProgress{
			ItemID:     item.ID,
			Section:    item.Section,
			Subsection: item.Subsection,
			Content:    item.Content,
			OrderIndex: item.OrderIndex,
			Confidence: domain.ConfidenceLow,
		}
		if mark, ok := markOf[item.ID]; ok {
			entry.Studied = mark.Studied
			entry.StudiedAt = mark.StudiedAt
			entry.Confidence = mark.Confidence
			entry.Notes = mark.Notes
		}
		if entry.Studied {
			overview.StudiedItems++
			switch entry.Confidence {
			case domain.ConfidenceLow:
				overview.ByConfidence.Low++
			case domain.ConfidenceMedium:
				overview.ByConfidence.Medium++
			case domain.ConfidenceHigh:
				overview.ByConfidence.High++
			}
		}
		overview.Items = append(overview.Items, entry)
	}

	overview.Percentage = pct(overview.StudiedItems, overview.TotalItems)
	return overview, nil
}

// Dashboard implements Service.Dashboard
func (s *serviceImpl) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	groups, err := s.GroupProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	hours, err := s.StudyHours(ctx, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionSummary(ctx, userID)
	if err != nil {
		return nil, err
	}

	coverage, err := s.SyllabusCoverage(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Groups:     groups,
		StudyHours: *hours,
		Questions:  *questions,
		Syllabus: SyllabusSummary{
			TotalItems:   coverage.TotalItems,
			StudiedItems: coverage.StudiedItems,
			Percentage:   coverage.Percentage,
		},
	}, nil
}

func (s *serviceImpl) questionSummary(ctx context.Context, userID uuid.UUID) (*QuestionSummary, error) {
	records, err := s.questions.ListByUser(ctx, userID, store.QuestionFilter{})
	if err != nil {
		return nil, err
	}

	groupOf, err := s.topicGroups(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &QuestionSummary{ByGroup: []GroupAccuracy{}}
	byGroup := map[int]*GroupAccuracy{}

	for _, record := range records {
		summary.Total += record.Total
		summary.Correct += record.Correct

		if record.TopicID == nil {
			continue
		}
		topic, ok := groupOf[*record.TopicID]
		if !ok {
			continue
		}
		group, ok := byGroup[topic.GroupID]
		if !ok {
			group = &GroupAccuracy{GroupID: topic.GroupID, GroupName: topic.GroupName}
			byGroup[topic.GroupID] = group
		}
		group.Total += record.Total
		group.Correct += record.Correct
	}

	summary.Accuracy = pct(summary.Correct, summary.Total)
	for _, group := range byGroup {
		group.Accuracy = pct(group.Correct, group.Total)
		summary.ByGroup = append(summary.ByGroup, *group)
	}
	sort.Slice(summary.ByGroup, func(i, j int) bool {
		return summary.ByGroup[i].GroupID < summary.ByGroup[j].GroupID
	})

	return summary, nil
}
