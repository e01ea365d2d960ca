package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it so callers can match
	// either the generic or the specific error.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity (e.g. a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	ErrUserNotFound           = fmt.Errorf("%w: user", ErrNotFound)
	ErrTopicNotFound          = fmt.Errorf("%w: topic", ErrNotFound)
	ErrRevisionNotFound       = fmt.Errorf("%w: revision", ErrNotFound)
	ErrSessionNotFound        = fmt.Errorf("%w: study session", ErrNotFound)
	ErrQuestionRecordNotFound = fmt.Errorf("%w: question record", ErrNotFound)
	ErrSyllabusItemNotFound   = fmt.Errorf("%w: syllabus item", ErrNotFound)
	ErrNotificationNotFound   = fmt.Errorf("%w: notification", ErrNotFound)
	ErrPreferenceNotFound     = fmt.Errorf("%w: notification preference", ErrNotFound)
	ErrProgressNotFound       = fmt.Errorf("%w: syllabus progress", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrScheduleExists indicates that the topic already has a generated
	// revision schedule; the (topic_id, sequence) uniqueness constraint
	// enforces this at the database level.
	ErrScheduleExists = fmt.Errorf("%w: revision schedule", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
