package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateTopicRequest defines the payload for creating a topic.
type CreateTopicRequest struct {
	GroupID         int    `json:"group_id"         validate:"required,min=1"`
	GroupName       string `json:"group_name"       validate:"required"`
	Name            string `json:"name"             validate:"required"`
	Description     string `json:"description"`
	Confidence      string `json:"confidence_level" validate:"omitempty,oneof=Low Medium High"`
	CreateRevisions bool   `json:"create_revisions"`
}

// UpdateTopicRequest defines the payload for a partial topic update.
// Absent fields are left unchanged.
type UpdateTopicRequest struct {
	GroupID     *int    `json:"group_id"         validate:"omitempty,min=1"`
	GroupName   *string `json:"group_name"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Completed   *bool   `json:"is_completed"`
	Confidence  *string `json:"confidence_level" validate:"omitempty,oneof=Low Medium High"`
}

// UpdateRevisionRequest defines the payload for a partial revision update.
type UpdateRevisionRequest struct {
	ScheduledAt *time.Time `json:"scheduled_date"`
	Notes       *string    `json:"notes"`
	Notify      *bool      `json:"notify"`
	Color       *string    `json:"color"`
}

// CompleteRevisionRequest defines the payload for toggling a revision's
// completion. An absent flag defaults to marking complete.
type CompleteRevisionRequest struct {
	Completed *bool `json:"is_completed"`
}

// CreateSessionRequest defines the payload for logging a study session.
// An absent end time leaves the session open.
type CreateSessionRequest struct {
	TopicID     *uuid.UUID `json:"topic_id"`
	StartedAt   time.Time  `json:"start_time" validate:"required"`
	EndedAt     *time.Time `json:"end_time"`
	Description string     `json:"description"`
}

// UpdateSessionRequest defines the payload for a partial session update.
type UpdateSessionRequest struct {
	TopicID     *uuid.UUID `json:"topic_id"`
	StartedAt   *time.Time `json:"start_time"`
	EndedAt     *time.Time `json:"end_time"`
	Description *string    `json:"description"`
}

// EndSessionRequest defines the payload for closing an open session. An
// absent end time closes the session at the current server time.
type EndSessionRequest struct {
	EndedAt *time.Time `json:"end_time"`
}

// CreateQuestionRecordRequest defines the payload for logging a batch of
// practice questions. An absent wrong count is derived as total - correct.
type CreateQuestionRecordRequest struct {
	TopicID       *uuid.UUID `json:"topic_id"`
	RecordedAt    *time.Time `json:"date"`
	Source        string     `json:"source"`
	SpecificTopic string     `json:"specific_topic"`
	Difficulty    string     `json:"difficulty_level" validate:"omitempty,oneof=Easy Medium Hard"`
	Total         int        `json:"total_questions"  validate:"required,min=1"`
	Correct       int        `json:"correct_answers"  validate:"min=0"`
	Wrong         *int       `json:"wrong_answers"    validate:"omitempty,min=0"`
	Notes         string     `json:"notes"`
}

// UpdateQuestionRecordRequest defines the payload for a partial question
// record update. Counts are re-derived after the patch is applied.
type UpdateQuestionRecordRequest struct {
	TopicID       *uuid.UUID `json:"topic_id"`
	RecordedAt    *time.Time `json:"date"`
	Source        *string    `json:"source"`
	SpecificTopic *string    `json:"specific_topic"`
	Difficulty    *string    `json:"difficulty_level" validate:"omitempty,oneof=Easy Medium Hard"`
	Total         *int       `json:"total_questions"  validate:"omitempty,min=0"`
	Correct       *int       `json:"correct_answers"  validate:"omitempty,min=0"`
	Wrong         *int       `json:"wrong_answers"    validate:"omitempty,min=0"`
	Notes         *string    `json:"notes"`
}

// MarkSyllabusRequest defines the payload for marking syllabus progress. An
// absent studied flag marks the item studied; confidence and notes are only
// touched when present.
type MarkSyllabusRequest struct {
	ItemID     uuid.UUID `json:"item_id"          validate:"required"`
	Studied    *bool     `json:"is_studied"`
	Confidence string    `json:"confidence_level" validate:"omitempty,oneof=Low Medium High"`
	Notes      *string   `json:"notes"`
}

// ImportSyllabusResponse reports the outcome of a syllabus import.
type ImportSyllabusResponse struct {
	ItemsCreated int `json:"items_created"`
}

// CreateNotificationRequest defines the payload for creating a notification,
// optionally tied to a revision.
type CreateNotificationRequest struct {
	Title      string     `json:"title"   validate:"required"`
	Message    string     `json:"message" validate:"required"`
	RevisionID *uuid.UUID `json:"revision_id"`
}

// UpdatePreferencesRequest defines the payload for saving notification
// preferences.
type UpdatePreferencesRequest struct {
	BrowserEnabled        *bool `json:"enable_browser_notifications"`
	EmailEnabled          *bool `json:"enable_email_notifications"`
	ReminderMinutesBefore *int  `json:"reminder_minutes_before" validate:"omitempty,min=0"`
}
