package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionRecord-specific validation errors
var (
	ErrQuestionIDEmpty           = fmt.Errorf("%w: question record ID cannot be empty", ErrValidation)
	ErrQuestionUserIDEmpty       = fmt.Errorf("%w: question record user ID cannot be empty", ErrValidation)
	ErrQuestionTotalNegative     = fmt.Errorf("%w: total questions cannot be negative", ErrValidation)
	ErrQuestionCorrectOutOfRange = fmt.Errorf("%w: correct answers must be between 0 and total questions", ErrValidation)
	ErrQuestionDifficultyInvalid = fmt.Errorf("%w: question record difficulty tag is not valid", ErrValidation)
)

// QuestionRecord is a logged batch of practice-question outcomes, optionally
// tied to a topic. Wrong defaults to Total-Correct and Accuracy is the
// derived hit percentage (0 when Total is 0).
type QuestionRecord struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	TopicID       *uuid.UUID `json:"topic_id,omitempty"`
	RecordedAt    time.Time  `json:"date"`
	Source        string     `json:"source,omitempty"`
	SpecificTopic string     `json:"specific_topic,omitempty"`
	Difficulty    Difficulty `json:"difficulty_level,omitempty"`
	Total         int        `json:"total_questions"`
	Correct       int        `json:"correct_answers"`
	Wrong         int        `json:"wrong_answers"`
	Accuracy      float64    `json:"accuracy_percentage"`
	Notes         string     `json:"notes,omitempty"`
}

// NewQuestionRecord creates a question record and derives the wrong count and
// accuracy. Pass wrong < 0 to have it computed as total - correct.
func NewQuestionRecord(
	userID uuid.UUID,
	topicID *uuid.UUID,
	recordedAt time.Time,
	source, specificTopic string,
	difficulty Difficulty,
	total, correct, wrong int,
	notes string,
) (*QuestionRecord, error) {
	if wrong < 0 {
		wrong = total - correct
	}

	record := &QuestionRecord{
		ID:            uuid.New(),
		UserID:        userID,
		TopicID:       topicID,
		RecordedAt:    recordedAt.UTC(),
		Source:        source,
		SpecificTopic: specificTopic,
		Difficulty:    difficulty,
		Total:         total,
		Correct:       correct,
		Wrong:         wrong,
		Notes:         notes,
	}
	record.RecalculateAccuracy()

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the QuestionRecord has valid data.
func (q *QuestionRecord) Validate() error {
	if q.ID == uuid.Nil {
		return ErrQuestionIDEmpty
	}

	if q.UserID == uuid.Nil {
		return ErrQuestionUserIDEmpty
	}

	if q.Total < 0 {
		return ErrQuestionTotalNegative
	}

	if q.Correct < 0 || q.Correct > q.Total {
		return ErrQuestionCorrectOutOfRange
	}

	if !q.Difficulty.IsValid() {
		return ErrQuestionDifficultyInvalid
	}

	return nil
}

// RecalculateAccuracy rederives the accuracy percentage from the counts.
// A record with zero total questions has an accuracy of 0, not NaN.
func (q *QuestionRecord) RecalculateAccuracy() {
	if q.Total > 0 {
		q.Accuracy = float64(q.Correct) / float64(q.Total) * 100
	} else {
		q.Accuracy = 0
	}
}
