package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewStudySession(t *testing.T) {
	t.Parallel() // Enable parallel execution
	userID := uuid.New()
	topicID := uuid.New()
	start := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)

	session, err := NewStudySession(userID, &topicID, start, "Evening review")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if session.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, session.UserID)
	}

	if session.TopicID == nil || *session.TopicID != topicID {
		t.Errorf("Expected topic ID %s, got %v", topicID, session.TopicID)
	}

	if session.EndedAt != nil {
		t.Error("Expected open session to have nil EndedAt")
	}

	if session.DurationMinutes != nil {
		t.Error("Expected open session to have nil DurationMinutes")
	}

	// Session without a topic is valid
	session, err = NewStudySession(userID, nil, start, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if session.TopicID != nil {
		t.Error("Expected nil topic ID")
	}

	// Test invalid userID
	_, err = NewStudySession(uuid.Nil, nil, start, "")
	if !errors.Is(err, ErrSessionUserIDEmpty) {
		t.Errorf("Expected error %v, got %v", ErrSessionUserIDEmpty, err)
	}

	// Test zero start time
	_, err = NewStudySession(userID, nil, time.Time{}, "")
	if !errors.Is(err, ErrSessionStartZero) {
		t.Errorf("Expected error %v, got %v", ErrSessionStartZero, err)
	}
}

func TestStudySessionSetEnd(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)
	session, err := NewStudySession(uuid.New(), nil, start, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := session.SetEnd(start.Add(90 * time.Minute)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.DurationMinutes == nil || *session.DurationMinutes != 90 {
		t.Errorf("Expected duration 90 minutes, got %v", session.DurationMinutes)
	}

	// Partial minutes truncate
	if err := session.SetEnd(start.Add(45*time.Minute + 30*time.Second)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if *session.DurationMinutes != 45 {
		t.Errorf("Expected duration 45 minutes, got %d", *session.DurationMinutes)
	}

	// End before start is rejected
	err = session.SetEnd(start.Add(-time.Minute))
	if !errors.Is(err, ErrSessionEndBeforeStart) {
		t.Errorf("Expected error %v, got %v", ErrSessionEndBeforeStart, err)
	}
}

func TestStudySessionFinish(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)
	session, err := NewStudySession(uuid.New(), nil, start, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := session.Finish(start.Add(30 * time.Minute)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.EndedAt == nil {
		t.Fatal("Expected EndedAt to be set")
	}

	// Finishing an already closed session is rejected
	err = session.Finish(start.Add(time.Hour))
	if !errors.Is(err, ErrSessionAlreadyEnded) {
		t.Errorf("Expected error %v, got %v", ErrSessionAlreadyEnded, err)
	}
}
