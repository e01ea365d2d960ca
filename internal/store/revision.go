package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
)

// RevisionFilter narrows revision list queries. Nil fields are ignored.
type RevisionFilter struct {
	TopicID   *uuid.UUID
	Completed *bool
}

// UpcomingRevision is a revision enriched with denormalized topic fields for
// display. The topic data is joined at read time, never stored.
type UpcomingRevision struct {
	domain.Revision
	TopicName        string `json:"topic_name"`
	TopicGroup       string `json:"topic_group"`
	TopicDescription string `json:"topic_description"`
}

// RevisionStore defines the interface for revision persistence. Ownership is
// enforced through the parent topic: every user-scoped read joins against the
// topics table.
type RevisionStore interface {
	// CreateMultiple saves a batch of revisions atomically; either every row
	// is inserted or none. Returns ErrScheduleExists if an insert violates
	// the (topic_id, sequence) uniqueness constraint.
	CreateMultiple(ctx context.Context, revisions []*domain.Revision) error

	// GetForUser retrieves a revision by ID, constrained to topics owned by
	// the user. Returns ErrRevisionNotFound if absent or owned by another user.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Revision, error)

	// CountByTopic returns the number of revision rows for a topic. Used by
	// the scheduler's in-transaction idempotency check.
	CountByTopic(ctx context.Context, topicID uuid.UUID) (int, error)

	// ListByTopic returns a topic's revisions ordered by sequence.
	ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*domain.Revision, error)

	// ListByUser returns revisions across all of a user's topics, ordered by
	// scheduled date ascending, optionally filtered.
	ListByUser(ctx context.Context, userID uuid.UUID, filter RevisionFilter) ([]*domain.Revision, error)

	// ListUpcoming returns a user's revisions with scheduled date at or
	// before the cutoff (no date filter when cutoff is nil), ascending,
	// optionally excluding completed ones, enriched with topic display data.
	ListUpcoming(ctx context.Context, userID uuid.UUID, cutoff *time.Time, includeCompleted bool) ([]*UpcomingRevision, error)

	// ListWindow returns a user's revisions scheduled within [from, to],
	// for calendar rendering. Nil bounds are open.
	ListWindow(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*UpcomingRevision, error)

	// Update persists changes to an existing revision.
	// Returns ErrRevisionNotFound if the revision does not exist.
	Update(ctx context.Context, revision *domain.Revision) error

	// WithTx returns a RevisionStore that runs its operations on the
	// provided transaction.
	WithTx(tx *sql.Tx) RevisionStore
}
