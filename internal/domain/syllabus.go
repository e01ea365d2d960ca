package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Syllabus-specific validation errors
var (
	ErrSyllabusItemIDEmpty       = fmt.Errorf("%w: syllabus item ID cannot be empty", ErrValidation)
	ErrSyllabusSectionEmpty      = fmt.Errorf("%w: syllabus item section cannot be empty", ErrValidation)
	ErrSyllabusContentEmpty      = fmt.Errorf("%w: syllabus item content cannot be empty", ErrValidation)
	ErrSyllabusOrderNegative     = fmt.Errorf("%w: syllabus item order index cannot be negative", ErrValidation)
	ErrProgressIDEmpty           = fmt.Errorf("%w: syllabus progress ID cannot be empty", ErrValidation)
	ErrProgressUserIDEmpty       = fmt.Errorf("%w: syllabus progress user ID cannot be empty", ErrValidation)
	ErrProgressItemIDEmpty       = fmt.Errorf("%w: syllabus progress item ID cannot be empty", ErrValidation)
	ErrProgressConfidenceInvalid = fmt.Errorf("%w: syllabus progress confidence level is not valid", ErrValidation)
)

// SyllabusItem is one line item of the official exam curriculum. Items are
// shared reference data owned by the system, not by any user, and are ordered
// by OrderIndex for display.
type SyllabusItem struct {
	ID         uuid.UUID `json:"id"`
	Section    string    `json:"section"`
	Subsection string    `json:"subsection,omitempty"`
	Content    string    `json:"content"`
	OrderIndex int       `json:"order_index"`
}

// NewSyllabusItem creates a curriculum item at the given position.
func NewSyllabusItem(section, subsection, content string, orderIndex int) (*SyllabusItem, error) {
	item := &SyllabusItem{
		ID:         uuid.New(),
		Section:    section,
		Subsection: subsection,
		Content:    content,
		OrderIndex: orderIndex,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the SyllabusItem has valid data.
func (i *SyllabusItem) Validate() error {
	if i.ID == uuid.Nil {
		return ErrSyllabusItemIDEmpty
	}

	if i.Section == "" {
		return ErrSyllabusSectionEmpty
	}

	if i.Content == "" {
		return ErrSyllabusContentEmpty
	}

	if i.OrderIndex < 0 {
		return ErrSyllabusOrderNegative
	}

	return nil
}

// SyllabusProgress is a user's mark against one SyllabusItem. At most one
// record exists per (user, item) pair; StudiedAt is set exactly when Studied
// flips to true and cleared when it is unset.
type SyllabusProgress struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ItemID     uuid.UUID  `json:"item_id"`
	Studied    bool       `json:"is_studied"`
	StudiedAt  *time.Time `json:"study_date,omitempty"`
	Confidence Confidence `json:"confidence_level"`
	Notes      string     `json:"notes,omitempty"`
}

// NewSyllabusProgress creates an un-studied progress record with the default
// Low confidence.
func NewSyllabusProgress(userID, itemID uuid.UUID) (*SyllabusProgress, error) {
	progress := &SyllabusProgress{
		ID:         uuid.New(),
		UserID:     userID,
		ItemID:     itemID,
		Confidence: ConfidenceLow,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the SyllabusProgress has valid data.
func (p *SyllabusProgress) Validate() error {
	if p.ID == uuid.Nil {
		return ErrProgressIDEmpty
	}

	if p.UserID == uuid.Nil {
		return ErrProgressUserIDEmpty
	}

	if p.ItemID == uuid.Nil {
		return ErrProgressItemIDEmpty
	}

	if !p.Confidence.IsValid() {
		return ErrProgressConfidenceInvalid
	}

	return nil
}

// SetStudied updates the studied flag, maintaining the StudiedAt invariant:
// the date is recorded once when the flag first flips to true and cleared
// when the flag is unset.
func (p *SyllabusProgress) SetStudied(studied bool, now time.Time) {
	p.Studied = studied
	if studied {
		if p.StudiedAt == nil {
			utc := now.UTC()
			p.StudiedAt = &utc
		}
	} else {
		p.StudiedAt = nil
	}
}
