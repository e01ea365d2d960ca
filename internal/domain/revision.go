package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultRevisionColor is the calendar display color assigned to revisions
// generated by the scheduler.
const DefaultRevisionColor = "#4285f4"

// Revision-specific validation errors
var (
	ErrRevisionIDEmpty         = fmt.Errorf("%w: revision ID cannot be empty", ErrValidation)
	ErrRevisionTopicIDEmpty    = fmt.Errorf("%w: revision topic ID cannot be empty", ErrValidation)
	ErrRevisionSequenceInvalid = fmt.Errorf("%w: revision sequence must be at least 1", ErrValidation)
	ErrRevisionScheduleZero    = fmt.Errorf("%w: revision scheduled date cannot be zero", ErrValidation)
)

// Revision is one scheduled spaced-repetition review of a Topic. Sequence
// numbers are contiguous starting at 1, assigned at schedule generation and
// never reused. Revisions are deleted only via cascade with their topic.
//
// Invariant: CompletedAt is non-nil exactly when Completed is true.
type Revision struct {
	ID          uuid.UUID  `json:"id"`
	TopicID     uuid.UUID  `json:"topic_id"`
	ScheduledAt time.Time  `json:"scheduled_date"`
	Sequence    int        `json:"revision_number"`
	Completed   bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Notify      bool       `json:"notify"`
	Color       string     `json:"color"`
}

// NewRevision creates an incomplete Revision for the given topic with
// scheduler defaults: notifications on and the default display color.
func NewRevision(topicID uuid.UUID, scheduledAt time.Time, sequence int) (*Revision, error) {
	rev := &Revision{
		ID:          uuid.New(),
		TopicID:     topicID,
		ScheduledAt: scheduledAt.UTC(),
		Sequence:    sequence,
		Notify:      true,
		Color:       DefaultRevisionColor,
	}

	if err := rev.Validate(); err != nil {
		return nil, err
	}

	return rev, nil
}

// Validate checks if the Revision has valid data.
func (r *Revision) Validate() error {
	if r.ID == uuid.Nil {
		return ErrRevisionIDEmpty
	}

	if r.TopicID == uuid.Nil {
		return ErrRevisionTopicIDEmpty
	}

	if r.Sequence < 1 {
		return ErrRevisionSequenceInvalid
	}

	if r.ScheduledAt.IsZero() {
		return ErrRevisionScheduleZero
	}

	return nil
}

// MarkCompleted flags the revision as completed at the given time.
// Re-marking an already completed revision keeps the original timestamp.
func (r *Revision) MarkCompleted(now time.Time) {
	if r.Completed && r.CompletedAt != nil {
		return
	}
	r.Completed = true
	utc := now.UTC()
	r.CompletedAt = &utc
}

// MarkIncomplete clears the completion flag and timestamp.
func (r *Revision) MarkIncomplete() {
	r.Completed = false
	r.CompletedAt = nil
}
