// ABOUTME: Profile data storage for SQLite
// ABOUTME: Versioned questionnaire answers, free-text entries, steps, gratitudes, daily analyses
package sqlite

import (
	"fmt"
	"time"

	"github.com/soberpath/recall/internal/models"
)

// ProfileStore handles all profile-related persistence
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a new ProfileStore
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// SaveAnswer records an answer to a questionnaire question. Re-answering
// the same question inserts a new version; old versions are kept.
func (s *ProfileStore) SaveAnswer(userID int64, sectionName string, orderIndex int, questionText, answerText string) error {
	var version int
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(version), 0) FROM profile_answers
		WHERE user_id = ? AND section_name = ? AND order_index = ?
	`, userID, sectionName, orderIndex).Scan(&version)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO profile_answers (user_id, section_name, order_index, question_text, answer_text, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, userID, sectionName, orderIndex, questionText, answerText, version+1, time.Now())
	return err
}

// LatestAnswers returns the newest version of every answered question,
// ordered by section and question position.
func (s *ProfileStore) LatestAnswers(userID int64) ([]models.ProfileAnswer, error) {
	rows, err := s.db.Query(`
		SELECT a.section_name, a.order_index, a.question_text, a.answer_text, a.version, a.created_at
		FROM profile_answers a
		JOIN (
			SELECT section_name, order_index, MAX(version) AS version
			FROM profile_answers
			WHERE user_id = ?
			GROUP BY section_name, order_index
		) latest ON latest.section_name = a.section_name
			AND latest.order_index = a.order_index
			AND latest.version = a.version
		WHERE a.user_id = ?
		ORDER BY a.section_name, a.order_index
	`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var answers []models.ProfileAnswer
	for rows.Next() {
		var a models.ProfileAnswer
		if err := rows.Scan(&a.SectionName, &a.OrderIndex, &a.QuestionText, &a.AnswerText, &a.Version, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// AddEntry records a free-text profile entry under a section/sub-block
func (s *ProfileStore) AddEntry(entry *models.SectionEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.Exec(`
		INSERT INTO profile_entries (user_id, section_name, subblock, entity_type, content, importance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.UserID, entry.SectionName, entry.Subblock, entry.EntityType, entry.Content, entry.Importance, createdAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	entry.CreatedAt = createdAt
	return nil
}

// Entries returns all free-text entries for a user, newest first within
// each section/sub-block group.
func (s *ProfileStore) Entries(userID int64) ([]models.SectionEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, section_name, subblock, entity_type, content, importance, created_at
		FROM profile_entries
		WHERE user_id = ?
		ORDER BY section_name, subblock, created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []models.SectionEntry
	for rows.Next() {
		var e models.SectionEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SectionName, &e.Subblock, &e.EntityType, &e.Content, &e.Importance, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddStepAnswer records one answer in the step workbook
func (s *ProfileStore) AddStepAnswer(userID int64, stepNumber int, stepTitle, questionText, answerText string) error {
	_, err := s.db.Exec(`
		INSERT INTO step_answers (user_id, step_number, step_title, question_text, answer_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, stepNumber, stepTitle, questionText, answerText, time.Now())
	return err
}

// StepAnswers returns the user's workbook answers in step order
func (s *ProfileStore) StepAnswers(userID int64) ([]models.StepAnswer, error) {
	rows, err := s.db.Query(`
		SELECT step_number, step_title, question_text, answer_text, created_at
		FROM step_answers
		WHERE user_id = ?
		ORDER BY step_number, created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var answers []models.StepAnswer
	for rows.Next() {
		var a models.StepAnswer
		if err := rows.Scan(&a.StepNumber, &a.StepTitle, &a.QuestionText, &a.AnswerText, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// AddGratitude appends a gratitude journal entry
func (s *ProfileStore) AddGratitude(userID int64, text string) error {
	_, err := s.db.Exec(`
		INSERT INTO gratitudes (user_id, text, created_at) VALUES (?, ?, ?)
	`, userID, text, time.Now())
	return err
}

// RecentGratitudes returns the newest n gratitude entries
func (s *ProfileStore) RecentGratitudes(userID int64, limit int) ([]models.Gratitude, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, text, created_at
		FROM gratitudes
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var gratitudes []models.Gratitude
	for rows.Next() {
		var g models.Gratitude
		if err := rows.Scan(&g.ID, &g.UserID, &g.Text, &g.CreatedAt); err != nil {
			return nil, err
		}
		gratitudes = append(gratitudes, g)
	}
	return gratitudes, rows.Err()
}

// StartDailyAnalysis opens a self-analysis session for a date
func (s *ProfileStore) StartDailyAnalysis(userID int64, date time.Time) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO daily_analyses (user_id, date, status, created_at)
		VALUES (?, ?, ?, ?)
	`, userID, date.Format("2006-01-02"), models.AnalysisInProgress, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// AddDailyAnswer records one numbered answer inside a session
func (s *ProfileStore) AddDailyAnswer(analysisID int64, questionNumber int, answerText string) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_answers (analysis_id, question_number, answer_text)
		VALUES (?, ?, ?)
	`, analysisID, questionNumber, answerText)
	return err
}

// CompleteDailyAnalysis marks a session finished
func (s *ProfileStore) CompleteDailyAnalysis(analysisID int64) error {
	_, err := s.db.Exec(`
		UPDATE daily_analyses SET status = ? WHERE id = ?
	`, models.AnalysisCompleted, analysisID)
	return err
}

// RecentCompletedAnalyses returns the newest n completed sessions with
// their answers. Sessions still in progress are excluded.
func (s *ProfileStore) RecentCompletedAnalyses(userID int64, limit int) ([]models.DailyAnalysis, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, date, status, created_at
		FROM daily_analyses
		WHERE user_id = ? AND status = ?
		ORDER BY date DESC, id DESC
		LIMIT ?
	`, userID, models.AnalysisCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var analyses []models.DailyAnalysis
	for rows.Next() {
		var (
			a    models.DailyAnalysis
			date string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &date, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Date, err = time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse analysis date %q: %w", date, err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range analyses {
		answerRows, err := s.db.Query(`
			SELECT question_number, answer_text
			FROM daily_answers
			WHERE analysis_id = ?
			ORDER BY question_number
		`, analyses[i].ID)
		if err != nil {
			return nil, err
		}
		for answerRows.Next() {
			var answer models.DailyAnswer
			if err := answerRows.Scan(&answer.QuestionNumber, &answer.AnswerText); err != nil {
				_ = answerRows.Close()
				return nil, err
			}
			analyses[i].Answers = append(analyses[i].Answers, answer)
		}
		if err := answerRows.Err(); err != nil {
			_ = answerRows.Close()
			return nil, err
		}
		_ = answerRows.Close()
	}

	return analyses, nil
}
