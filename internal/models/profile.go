// ABOUTME: Profile data models feeding the personalization document
// ABOUTME: Covers questionnaire answers, free-text entries, steps, gratitudes, daily analyses
package models

import "time"

// ProfileAnalysis is the provider's verdict on whether a chat message
// contains new profile-worthy information.
type ProfileAnalysis struct {
	UpdateNeeded  bool   `json:"update_needed"`
	ExtractedInfo string `json:"extracted_info,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// ProfileAnswer is the latest answer to one questionnaire question
type ProfileAnswer struct {
	SectionName  string    `json:"section_name"`
	OrderIndex   int       `json:"order_index"`
	QuestionText string    `json:"question_text"`
	AnswerText   string    `json:"answer_text"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
}

// SectionEntry is a free-text profile record grouped under a sub-block
type SectionEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	SectionName string    `json:"section_name"`
	Subblock    string    `json:"subblock,omitempty"`
	EntityType  string    `json:"entity_type,omitempty"`
	Content     string    `json:"content"`
	Importance  float64   `json:"importance"`
	CreatedAt   time.Time `json:"created_at"`
}

// StepAnswer is one answer inside the recovery-program step workbook
type StepAnswer struct {
	StepNumber   int       `json:"step_number"`
	StepTitle    string    `json:"step_title"`
	QuestionText string    `json:"question_text"`
	AnswerText   string    `json:"answer_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// Gratitude is one gratitude journal entry
type Gratitude struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Daily analysis statuses
const (
	AnalysisInProgress = "in_progress"
	AnalysisCompleted  = "completed"
)

// DailyAnswer is one numbered answer of a daily self-analysis
type DailyAnswer struct {
	QuestionNumber int    `json:"question_number"`
	AnswerText     string `json:"answer_text"`
}

// DailyAnalysis is one evening self-review session
type DailyAnalysis struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	Date      time.Time     `json:"date"`
	Status    string        `json:"status"`
	Answers   []DailyAnswer `json:"answers,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
