package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
)

// GroupProgress is the completion state of one syllabus group's topics.
type GroupProgress struct {
	GroupID    int     `json:"group_id"`
	GroupName  string  `json:"group_name"`
	Total      int     `json:"total_topics"`
	Completed  int     `json:"completed_topics"`
	Percentage float64 `json:"percentage"`
}

// GroupHours is the studied time attributed to one syllabus group.
type GroupHours struct {
	GroupID   int     `json:"group_id"`
	GroupName string  `json:"group_name"`
	Minutes   int     `json:"total_minutes"`
	Hours     float64 `json:"total_hours"`
}

// StudyHoursSummary totals a user's logged study time. Sessions without a
// duration are counted as zero in the grand total; the per-group breakdown
// additionally requires a topic link.
type StudyHoursSummary struct {
	TotalMinutes int          `json:"total_minutes"`
	TotalHours   float64      `json:"total_hours"`
	ByGroup      []GroupHours `json:"by_group"`
}

// PerformanceChart is a chart-ready view of question performance: parallel
// arrays of bucket labels, per-bucket accuracy, and per-bucket question
// counts, index-aligned.
type PerformanceChart struct {
	GroupBy  string    `json:"group_by"`
	Labels   []string  `json:"labels"`
	Accuracy []float64 `json:"accuracy"`
	Totals   []int     `json:"totals"`
}

// ItemProgress is one syllabus item joined with the user's progress mark, or
// the un-studied defaults when the user has never marked the item.
type ItemProgress struct {
	ItemID     uuid.UUID         `json:"item_id"`
	Section    string            `json:"section"`
	Subsection string            `json:"subsection,omitempty"`
	Content    string            `json:"content"`
	OrderIndex int               `json:"order_index"`
	Studied    bool              `json:"is_studied"`
	StudiedAt  *time.Time        `json:"study_date,omitempty"`
	Confidence domain.Confidence `json:"confidence_level"`
	Notes      string            `json:"notes,omitempty"`
}

// ConfidenceBreakdown counts studied syllabus items per confidence level.
type ConfidenceBreakdown struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// SyllabusOverview is the user's coverage of the full curriculum.
type SyllabusOverview struct {
	Items        []ItemProgress      `json:"items"`
	TotalItems   int                 `json:"total_items"`
	StudiedItems int                 `json:"studied_items"`
	Percentage   float64             `json:"percentage"`
	ByConfidence ConfidenceBreakdown `json:"by_confidence"`
}

// GroupAccuracy is the question performance attributed to one syllabus group.
type GroupAccuracy struct {
	GroupID   int     `json:"group_id"`
	GroupName string  `json:"group_name"`
	Total     int     `json:"total_questions"`
	Correct   int     `json:"correct_answers"`
	Accuracy  float64 `json:"accuracy"`
}

// QuestionSummary totals a user's practice-question outcomes. Records not
// linked to a topic count in the overall figures but not per group.
type QuestionSummary struct {
	Total    int             `json:"total_questions"`
	Correct  int             `json:"correct_answers"`
	Accuracy float64         `json:"accuracy"`
	ByGroup  []GroupAccuracy `json:"by_group"`
}

// SyllabusSummary is the coverage portion of the dashboard, without the
// per-item detail.
type SyllabusSummary struct {
	TotalItems   int     `json:"total_items"`
	StudiedItems int     `json:"studied_items"`
	Percentage   float64 `json:"percentage"`
}

// Dashboard composes the per-concern summaries into one response. It adds no
// computation of its own.
type Dashboard struct {
	Groups     []GroupProgress   `json:"group_progress"`
	StudyHours StudyHoursSummary `json:"study_hours"`
	Questions  QuestionSummary   `json:"question_performance"`
	Syllabus   SyllabusSummary   `json:"syllabus_coverage"`
}
