package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
)

// TopicStore defines the interface for topic persistence. All reads are
// scoped to the owning user; a topic belonging to another user behaves like
// a missing one.
type TopicStore interface {
	// Create saves a new topic.
	Create(ctx context.Context, topic *domain.Topic) error

	// GetForUser retrieves a topic by ID, constrained to the given owner.
	// Returns ErrTopicNotFound if the topic does not exist or belongs to
	// someone else.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Topic, error)

	// ListByUser returns all topics owned by the user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error)

	// Update persists changes to an existing topic.
	// Returns ErrTopicNotFound if the topic does not exist.
	Update(ctx context.Context, topic *domain.Topic) error

	// Delete removes a topic; its revisions are cascade-deleted by the
	// database. Returns ErrTopicNotFound if the topic does not exist or
	// belongs to someone else.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// WithTx returns a TopicStore that runs its operations on the provided
	// transaction.
	WithTx(tx *sql.Tx) TopicStore
}
