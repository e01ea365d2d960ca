package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topic-specific validation errors
var (
	ErrTopicIDEmpty           = fmt.Errorf("%w: topic ID cannot be empty", ErrValidation)
	ErrTopicUserIDEmpty       = fmt.Errorf("%w: topic user ID cannot be empty", ErrValidation)
	ErrTopicNameEmpty         = fmt.Errorf("%w: topic name cannot be empty", ErrValidation)
	ErrTopicGroupInvalid      = fmt.Errorf("%w: topic group ID must be positive", ErrValidation)
	ErrTopicGroupNameEmpty    = fmt.Errorf("%w: topic group name cannot be empty", ErrValidation)
	ErrTopicConfidenceInvalid = fmt.Errorf("%w: topic confidence level is not valid", ErrValidation)
)

// Topic is a unit of exam-syllabus content a user is tracking. A topic
// belongs to a syllabus group (e.g. G1 "Navigation") and owns zero or more
// scheduled revisions, which are cascade-deleted with it.
//
// Invariant: CompletedAt is non-nil exactly when Completed is true.
type Topic struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	GroupID     int        `json:"group_id"`
	GroupName   string     `json:"group_name"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"is_completed"`
	Confidence  Confidence `json:"confidence_level"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTopic creates a new, incomplete Topic owned by the given user.
// An empty confidence defaults to Low.
func NewTopic(userID uuid.UUID, groupID int, groupName, name, description string, confidence Confidence) (*Topic, error) {
	if confidence == "" {
		confidence = ConfidenceLow
	}

	topic := &Topic{
		ID:          uuid.New(),
		UserID:      userID,
		GroupID:     groupID,
		GroupName:   groupName,
		Name:        name,
		Description: description,
		Confidence:  confidence,
		CreatedAt:   time.Now().UTC(),
	}

	if err := topic.Validate(); err != nil {
		return nil, err
	}

	return topic, nil
}

// Validate checks if the Topic has valid data.
func (t *Topic) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTopicIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTopicUserIDEmpty
	}

	if t.Name == "" {
		return ErrTopicNameEmpty
	}

	if t.GroupID <= 0 {
		return ErrTopicGroupInvalid
	}

	if t.GroupName == "" {
		return ErrTopicGroupNameEmpty
	}

	if !t.Confidence.IsValid() {
		return ErrTopicConfidenceInvalid
	}

	return nil
}

// MarkCompleted flags the topic as completed at the given time. Re-marking a
// completed topic keeps the original completion timestamp.
func (t *Topic) MarkCompleted(now time.Time) {
	if t.Completed && t.CompletedAt != nil {
		return
	}
	t.Completed = true
	utc := now.UTC()
	t.CompletedAt = &utc
}

// MarkIncomplete clears the completion flag and timestamp.
func (t *Topic) MarkIncomplete() {
	t.Completed = false
	t.CompletedAt = nil
}
