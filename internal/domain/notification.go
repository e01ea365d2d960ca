package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification-specific validation errors
var (
	ErrNotificationIDEmpty      = fmt.Errorf("%w: notification ID cannot be empty", ErrValidation)
	ErrNotificationUserIDEmpty  = fmt.Errorf("%w: notification user ID cannot be empty", ErrValidation)
	ErrNotificationTitleEmpty   = fmt.Errorf("%w: notification title cannot be empty", ErrValidation)
	ErrNotificationMessageEmpty = fmt.Errorf("%w: notification message cannot be empty", ErrValidation)
)

// Notification is a per-user reminder, optionally tied to a revision.
// It carries no derived logic.
type Notification struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	RevisionID   *uuid.UUID `json:"revision_id,omitempty"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Read         bool       `json:"is_read"`
	CreatedAt    time.Time  `json:"created_at"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// NewNotification creates an unread notification for the given user.
func NewNotification(userID uuid.UUID, revisionID *uuid.UUID, title, message string) (*Notification, error) {
	n := &Notification{
		ID:         uuid.New(),
		UserID:     userID,
		RevisionID: revisionID,
		Title:      title,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNotificationIDEmpty
	}

	if n.UserID == uuid.Nil {
		return ErrNotificationUserIDEmpty
	}

	if n.Title == "" {
		return ErrNotificationTitleEmpty
	}

	if n.Message == "" {
		return ErrNotificationMessageEmpty
	}

	return nil
}

// NotificationPreference holds a user's reminder settings.
type NotificationPreference struct {
	ID                    uuid.UUID `json:"id"`
	UserID                uuid.UUID `json:"user_id"`
	BrowserEnabled        bool      `json:"enable_browser_notifications"`
	EmailEnabled          bool      `json:"enable_email_notifications"`
	ReminderMinutesBefore int       `json:"reminder_minutes_before"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultNotificationPreference returns the settings assigned to a user who
// has never saved preferences: browser reminders on, email off, 30 minutes
// of lead time.
func DefaultNotificationPreference(userID uuid.UUID) *NotificationPreference {
	now := time.Now().UTC()
	return &NotificationPreference{
		ID:                    uuid.New(),
		UserID:                userID,
		BrowserEnabled:        true,
		EmailEnabled:          false,
		ReminderMinutesBefore: 30,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
