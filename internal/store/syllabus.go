package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
)

// SyllabusStore defines the interface for curriculum items and per-user
// progress marks. Items are shared reference data; progress rows are unique
// per (user, item).
type SyllabusStore interface {
	// CreateItems saves a batch of syllabus items atomically.
	CreateItems(ctx context.Context, items []*domain.SyllabusItem) error

	// CountItems returns the total number of syllabus items.
	CountItems(ctx context.Context) (int, error)

	// ListItems returns syllabus items ordered by their order index,
	// optionally restricted to one section (empty string means all).
	ListItems(ctx context.Context, section string) ([]*domain.SyllabusItem, error)

	// ListSections returns the distinct section headings in item order.
	ListSections(ctx context.Context) ([]string, error)

	// GetItem retrieves one syllabus item by ID.
	// Returns ErrSyllabusItemNotFound if it does not exist.
	GetItem(ctx context.Context, id uuid.UUID) (*domain.SyllabusItem, error)

	// GetProgress retrieves a user's progress mark for one item.
	// Returns ErrProgressNotFound if the user has never marked the item.
	GetProgress(ctx context.Context, userID, itemID uuid.UUID) (*domain.SyllabusProgress, error)

	// ListProgressByUser returns all progress marks for a user.
	ListProgressByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SyllabusProgress, error)

	// SaveProgress inserts or updates a user's progress mark for an item,
	// keyed on the (user_id, item_id) uniqueness constraint.
	SaveProgress(ctx context.Context, progress *domain.SyllabusProgress) error

	// WithTx returns a SyllabusStore bound to the provided transaction.
	WithTx(tx *sql.Tx) SyllabusStore
}
