package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
)

// SessionFilter narrows study-session list queries. Nil fields are ignored;
// the date bounds apply to the session start time.
type SessionFilter struct {
	TopicID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

// QuestionFilter narrows question-record list queries. Nil fields are
// ignored; the date bounds apply to the record date.
type QuestionFilter struct {
	TopicID    *uuid.UUID
	Difficulty *domain.Difficulty
	From       *time.Time
	To         *time.Time
}

// StudySessionStore defines the interface for study-session persistence.
type StudySessionStore interface {
	// Create saves a new study session.
	Create(ctx context.Context, session *domain.StudySession) error

	// GetForUser retrieves a session by ID, constrained to the given owner.
	// Returns ErrSessionNotFound if absent or owned by another user.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.StudySession, error)

	// ListByUser returns the user's sessions, newest first, optionally
	// filtered.
	ListByUser(ctx context.Context, userID uuid.UUID, filter SessionFilter) ([]*domain.StudySession, error)

	// Update persists changes to an existing session.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.StudySession) error

	// WithTx returns a StudySessionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) StudySessionStore
}

// QuestionRecordStore defines the interface for question-record persistence.
type QuestionRecordStore interface {
	// Create saves a new question record.
	Create(ctx context.Context, record *domain.QuestionRecord) error

	// GetForUser retrieves a record by ID, constrained to the given owner.
	// Returns ErrQuestionRecordNotFound if absent or owned by another user.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.QuestionRecord, error)

	// ListByUser returns the user's question records, newest first,
	// optionally filtered.
	ListByUser(ctx context.Context, userID uuid.UUID, filter QuestionFilter) ([]*domain.QuestionRecord, error)

	// Update persists changes to an existing record.
	// Returns ErrQuestionRecordNotFound if the record does not exist.
	Update(ctx context.Context, record *domain.QuestionRecord) error

	// WithTx returns a QuestionRecordStore bound to the provided transaction.
	WithTx(tx *sql.Tx) QuestionRecordStore
}
