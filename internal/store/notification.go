package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
)

// NotificationStore defines the interface for notification records and
// per-user notification preferences.
type NotificationStore interface {
	// Create saves a new notification.
	Create(ctx context.Context, notification *domain.Notification) error

	// GetForUser retrieves a notification by ID, constrained to the owner.
	// Returns ErrNotificationNotFound if absent or owned by another user.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)

	// ListByUser returns the user's notifications, newest first, optionally
	// filtered by read state (nil means all).
	ListByUser(ctx context.Context, userID uuid.UUID, read *bool) ([]*domain.Notification, error)

	// Update persists changes to an existing notification.
	Update(ctx context.Context, notification *domain.Notification) error

	// GetPreference retrieves the user's notification preferences.
	// Returns ErrPreferenceNotFound if the user has never saved any.
	GetPreference(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error)

	// SavePreference inserts or updates the user's notification preferences,
	// keyed on the user_id uniqueness constraint.
	SavePreference(ctx context.Context, pref *domain.NotificationPreference) error

	// WithTx returns a NotificationStore bound to the provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
