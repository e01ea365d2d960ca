package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/store"
)

// SchedulerError is a custom error type for scheduler service errors.
type SchedulerError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SchedulerError.
func (e *SchedulerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scheduler %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("scheduler %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SchedulerError) Unwrap() error {
	return e.Err
}

// NewSchedulerError creates a new SchedulerError.
func NewSchedulerError(operation, message string, err error) *SchedulerError {
	return &SchedulerError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CreateTopicParams holds the caller-supplied fields for a new topic.
// When CreateRevisions is set, a revision schedule is generated right after
// the topic is saved; a schedule failure does not fail the topic creation.
type CreateTopicParams struct {
	GroupID         int
	GroupName       string
	Name            string
	Description     string
	Confidence      domain.Confidence
	CreateRevisions bool
}

// TopicPatch holds partial updates to a topic. Nil fields are left unchanged;
// pointers distinguish "absent" from the zero value.
type TopicPatch struct {
	GroupID     *int
	GroupName   *string
	Name        *string
	Description *string
	Completed   *bool
	Confidence  *domain.Confidence
}

// RevisionPatch holds partial updates to a revision. Nil fields are left
// unchanged. Moving a revision's date never cascades to later revisions.
type RevisionPatch struct {
	ScheduledAt *time.Time
	Notes       *string
	Notify      *bool
	Color       *string
}

// Service provides topic and revision scheduling operations.
type Service interface {
	// CreateTopic saves a new topic for the user, optionally generating its
	// revision schedule in the same call.
	CreateTopic(ctx context.Context, userID uuid.UUID, params CreateTopicParams) (*domain.Topic, error)

	// ListTopics returns the user's topics, newest first.
	ListTopics(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error)

	// GetTopic retrieves one of the user's topics.
	GetTopic(ctx context.Context, userID, topicID uuid.UUID) (*domain.Topic, error)

	// UpdateTopic applies a partial update to one of the user's topics.
	UpdateTopic(ctx context.Context, userID, topicID uuid.UUID, patch TopicPatch) (*domain.Topic, error)

	// DeleteTopic removes one of the user's topics and, via cascade, its
	// revisions.
	DeleteTopic(ctx context.Context, userID, topicID uuid.UUID) error

	// GenerateSchedule creates the full revision schedule for a topic. Returns
	// store.ErrScheduleExists if the topic already has revisions.
	GenerateSchedule(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.Revision, error)

	// ListTopicRevisions returns a topic's revisions ordered by sequence,
	// after checking the topic belongs to the user.
	ListTopicRevisions(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.Revision, error)

	// ListRevisions returns revisions across the user's topics, by scheduled
	// date ascending, optionally filtered.
	ListRevisions(ctx context.Context, userID uuid.UUID, filter store.RevisionFilter) ([]*domain.Revision, error)

	// CompleteRevision sets or clears a revision's completion state. Marking
	// an already completed revision keeps the original timestamp.
	CompleteRevision(ctx context.Context, userID, revisionID uuid.UUID, completed bool) (*domain.Revision, error)

	// UpdateRevision applies a partial update to one of the user's revisions.
	UpdateRevision(ctx context.Context, userID, revisionID uuid.UUID, patch RevisionPatch) (*domain.Revision, error)

	// UpcomingRevisions returns revisions due within the horizon, ascending,
	// enriched with topic display data. A non-positive horizon disables the
	// date filter.
	UpcomingRevisions(ctx context.Context, userID uuid.UUID, horizonDays int, includeCompleted bool) ([]*store.UpcomingRevision, error)

	// CalendarRevisions returns the user's revisions scheduled within the
	// given window, for calendar rendering. Nil bounds are open.
	CalendarRevisions(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*store.UpcomingRevision, error)
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db        *sql.DB
	topics    store.TopicStore
	revisions store.RevisionStore
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// NewService creates a new scheduler Service.
// It returns an error if any of the required dependencies are nil.
func NewService(
	db *sql.DB,
	topics store.TopicStore,
	revisions store.RevisionStore,
	logger *slog.Logger,
) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db cannot be nil", domain.ErrValidation)
	}
	if topics == nil {
		return nil, fmt.Errorf("%w: topic store cannot be nil", domain.ErrValidation)
	}
	if revisions == nil {
		return nil, fmt.Errorf("%w: revision store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		db:        db,
		topics:    topics,
		revisions: revisions,
		logger:    logger.With(slog.String("component", "scheduler_service")),
		timeFunc:  time.Now,
	}, nil
}

// CreateTopic implements Service.CreateTopic
func (s *serviceImpl) CreateTopic(ctx context.Context, userID uuid.UUID, params CreateTopicParams) (*domain.Topic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	topic, err := domain.NewTopic(
		userID,
		params.GroupID,
		params.GroupName,
		params.Name,
		params.Description,
		params.Confidence,
	)
	if err != nil {
		return nil, err
	}

	if err := s.topics.Create(ctx, topic); err != nil {
		log.Error("failed to create topic",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewSchedulerError("create_topic", "failed to save topic", err)
	}

	if params.CreateRevisions {
		// The topic is already committed; a schedule failure here must not
		// undo it. The client can retry via the schedule endpoint.
		if _, err := s.GenerateSchedule(ctx, userID, topic.ID); err != nil {
			log.Warn("topic created but schedule generation failed",
				slog.String("error", err.Error()),
				slog.String("topic_id", topic.ID.String()))
		}
	}

	return topic, nil
}

// ListTopics implements Service.ListTopics
func (s *serviceImpl) ListTopics(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error) {
	return s.topics.ListByUser(ctx, userID)
}

// GetTopic implements Service.GetTopic
func (s *serviceImpl) GetTopic(ctx context.Context, userID, topicID uuid.UUID) (*domain.Topic, error) {
	return s.topics.GetForUser(ctx, topicID, userID)
}

// UpdateTopic implements Service.UpdateTopic
func (s *serviceImpl) UpdateTopic(ctx context.Context, userID, topicID uuid.UUID, patch TopicPatch) (*domain.Topic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	topic, err := s.topics.GetForUser(ctx, topicID, userID)
	if err != nil {
		return nil, err
	}

	if patch.GroupID != nil {
		topic.GroupID = *patch.GroupID
	}
	if patch.GroupName != nil {
		topic.GroupName = *patch.GroupName
	}
	if patch.Name != nil {
		topic.Name = *patch.Name
	}
	if patch.Description != nil {
		topic.Description = *patch.Description
	}
	if patch.Confidence != nil {
		topic.Confidence = *patch.Confidence
	}
	if patch.Completed != nil {
		if *patch.Completed {
			topic.MarkCompleted(s.timeFunc())
		} else {
			topic.MarkIncomplete()
		}
	}

	if err := s.topics.Update(ctx, topic); err != nil {
		log.Error("failed to update topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topicID.String()))
		return nil, err
	}

	return topic, nil
}

// DeleteTopic implements Service.DeleteTopic
func (s *serviceImpl) DeleteTopic(ctx context.Context, userID, topicID uuid.UUID) error {
	return s.topics.Delete(ctx, topicID, userID)
}

// GenerateSchedule implements Service.GenerateSchedule
// The existence check and the inserts share one transaction, and the unique
// (topic_id, sequence) index backs the check, so two concurrent generations
// cannot both succeed.
func (s *serviceImpl) GenerateSchedule(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.Revision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	topic, err := s.topics.GetForUser(ctx, topicID, userID)
	if err != nil {
		return nil, err
	}

	revisions := make([]*domain.Revision, 0, RevisionCount)
	for i, date := range ScheduleDates(topic.CreatedAt) {
		rev, err := domain.NewRevision(topic.ID, date, i+1)
		if err != nil {
			return nil, NewSchedulerError("generate_schedule", "failed to build revision", err)
		}
		revisions = append(revisions, rev)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txRevisions := s.revisions.WithTx(tx)

		count, err := txRevisions.CountByTopic(ctx, topic.ID)
		if err != nil {
			return NewSchedulerError("generate_schedule", "failed to check existing schedule", err)
		}
		if count > 0 {
			return store.ErrScheduleExists
		}

		return txRevisions.CreateMultiple(ctx, revisions)
	})
	if err != nil {
		return nil, err
	}

	log.Info("revision schedule generated",
		slog.String("topic_id", topic.ID.String()),
		slog.Int("revision_count", len(revisions)))
	return revisions, nil
}

// ListTopicRevisions implements Service.ListTopicRevisions
func (s *serviceImpl) ListTopicRevisions(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.Revision, error) {
	if _, err := s.topics.GetForUser(ctx, topicID, userID); err != nil {
		return nil, err
	}
	return s.revisions.ListByTopic(ctx, topicID)
}

// ListRevisions implements Service.ListRevisions
func (s *serviceImpl) ListRevisions(ctx context.Context, userID uuid.UUID, filter store.RevisionFilter) ([]*domain.Revision, error) {
	return s.revisions.ListByUser(ctx, userID, filter)
}

// CompleteRevision implements Service.CompleteRevision
func (s *serviceImpl) CompleteRevision(ctx context.Context, userID, revisionID uuid.UUID, completed bool) (*domain.Revision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rev, err := s.revisions.GetForUser(ctx, revisionID, userID)
	if err != nil {
		return nil, err
	}

	if completed {
		rev.MarkCompleted(s.timeFunc())
	} else {
		rev.MarkIncomplete()
	}

	if err := s.revisions.Update(ctx, rev); err != nil {
		log.Error("failed to update revision completion",
			slog.String("error", err.Error()),
			slog.String("revision_id", revisionID.String()))
		return nil, err
	}

	return rev, nil
}

// UpdateRevision implements Service.UpdateRevision
func (s *serviceImpl) UpdateRevision(ctx context.Context, userID, revisionID uuid.UUID, patch RevisionPatch) (*domain.Revision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rev, err := s.revisions.GetForUser(ctx, revisionID, userID)
	if err != nil {
		return nil, err
	}

	if patch.ScheduledAt != nil {
		rev.ScheduledAt = patch.ScheduledAt.UTC()
	}
	if patch.Notes != nil {
		rev.Notes = *patch.Notes
	}
	if patch.Notify != nil {
		rev.Notify = *patch.Notify
	}
	if patch.Color != nil {
		rev.Color = *patch.Color
	}

	if err := s.revisions.Update(ctx, rev); err != nil {
		log.Error("failed to update revision",
			slog.String("error", err.Error()),
			slog.String("revision_id", revisionID.String()))
		return nil, err
	}

	return rev, nil
}

// UpcomingRevisions implements Service.UpcomingRevisions
func (s *serviceImpl) UpcomingRevisions(ctx context.Context, userID uuid.UUID, horizonDays int, includeCompleted bool) ([]*store.UpcomingRevision, error) {
	var cutoff *time.Time
	if horizonDays > 0 {
		c := s.timeFunc().UTC().AddDate(0, 0, horizonDays)
		cutoff = &c
	}
	return s.revisions.ListUpcoming(ctx, userID, cutoff, includeCompleted)
}

// CalendarRevisions implements Service.CalendarRevisions
func (s *serviceImpl) CalendarRevisions(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*store.UpcomingRevision, error) {
	return s.revisions.ListWindow(ctx, userID, from, to)
}
