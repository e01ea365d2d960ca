package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/service/auth"
	"github.com/pilotprep/pilotprep/internal/service/progress"
	"github.com/pilotprep/pilotprep/internal/service/syllabus"
	"github.com/pilotprep/pilotprep/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"topic not found", store.ErrTopicNotFound, http.StatusNotFound},
		{"revision not found", store.ErrRevisionNotFound, http.StatusNotFound},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"schedule exists", store.ErrScheduleExists, http.StatusConflict},
		{"syllabus already imported", syllabus.ErrAlreadyImported, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"validation error", domain.ErrValidation, http.StatusBadRequest},
		{"wrapped validation error", fmt.Errorf("%w: name cannot be empty", domain.ErrValidation), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"invalid group by", progress.ErrInvalidGroupBy, http.StatusBadRequest},
		{"session already ended", domain.ErrSessionAlreadyEnded, http.StatusBadRequest},
		{"session end before start", domain.ErrSessionEndBeforeStart, http.StatusBadRequest},
		{"unknown error", errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"token error", auth.ErrExpiredToken, "Invalid token"},
		{"topic not found", store.ErrTopicNotFound, "Topic not found"},
		{"revision not found", store.ErrRevisionNotFound, "Revision not found"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"schedule exists", store.ErrScheduleExists, "Topic already has a revision schedule"},
		{"already imported", syllabus.ErrAlreadyImported, "Syllabus has already been imported"},
		{"invalid group by", progress.ErrInvalidGroupBy, "Invalid group_by parameter"},
		{"unknown error leaks nothing", errors.New("pq: connection refused host=10.0.0.5"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestGetSafeErrorMessageValidationDetail(t *testing.T) {
	// Validation errors carry their own safe, user-facing detail.
	err := fmt.Errorf("%w: topic name cannot be empty", domain.ErrValidation)
	got := GetSafeErrorMessage(err)
	assert.Contains(t, got, "topic name cannot be empty")
}
