package domain

// Confidence is a user's self-rated mastery of a topic or syllabus item.
type Confidence string

// Possible confidence levels.
const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// IsValid reports whether c is one of the known confidence levels.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// Difficulty tags a batch of practice questions. The empty value means the
// user did not specify a difficulty.
type Difficulty string

// Possible difficulty tags.
const (
	DifficultyEasy        Difficulty = "Easy"
	DifficultyMedium      Difficulty = "Medium"
	DifficultyHard        Difficulty = "Hard"
	DifficultyUnspecified Difficulty = ""
)

// IsValid reports whether d is one of the known difficulty tags.
// The empty (unspecified) value is valid.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyUnspecified:
		return true
	}
	return false
}
