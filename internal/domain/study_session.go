package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StudySession-specific validation errors
var (
	ErrSessionIDEmpty        = fmt.Errorf("%w: study session ID cannot be empty", ErrValidation)
	ErrSessionUserIDEmpty    = fmt.Errorf("%w: study session user ID cannot be empty", ErrValidation)
	ErrSessionStartZero      = fmt.Errorf("%w: study session start time cannot be zero", ErrValidation)
	ErrSessionEndBeforeStart = fmt.Errorf("%w: study session end time cannot precede start time", ErrValidation)
	ErrSessionAlreadyEnded   = fmt.Errorf("%w: study session has already ended", ErrValidation)
)

// StudySession is a logged interval of study time, optionally tied to a
// topic. DurationMinutes is derived from the start/end pair and is nil while
// the session is still open.
type StudySession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	TopicID         *uuid.UUID `json:"topic_id,omitempty"`
	StartedAt       time.Time  `json:"start_time"`
	EndedAt         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Description     string     `json:"description,omitempty"`
}

// NewStudySession creates an open study session starting at the given time.
func NewStudySession(userID uuid.UUID, topicID *uuid.UUID, startedAt time.Time, description string) (*StudySession, error) {
	session := &StudySession{
		ID:          uuid.New(),
		UserID:      userID,
		TopicID:     topicID,
		StartedAt:   startedAt.UTC(),
		Description: description,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the StudySession has valid data.
func (s *StudySession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.UserID == uuid.Nil {
		return ErrSessionUserIDEmpty
	}

	if s.StartedAt.IsZero() {
		return ErrSessionStartZero
	}

	if s.EndedAt != nil && s.EndedAt.Before(s.StartedAt) {
		return ErrSessionEndBeforeStart
	}

	return nil
}

// SetEnd sets the end time and recomputes the derived duration in whole
// minutes. Passing an end before the start is rejected.
func (s *StudySession) SetEnd(endedAt time.Time) error {
	utc := endedAt.UTC()
	if utc.Before(s.StartedAt) {
		return ErrSessionEndBeforeStart
	}

	s.EndedAt = &utc
	minutes := int(utc.Sub(s.StartedAt).Minutes())
	s.DurationMinutes = &minutes
	return nil
}

// Finish closes an open session at the given time. Returns
// ErrSessionAlreadyEnded if the session already has an end time.
func (s *StudySession) Finish(now time.Time) error {
	if s.EndedAt != nil {
		return ErrSessionAlreadyEnded
	}
	return s.SetEnd(now)
}
