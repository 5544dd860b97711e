// ABOUTME: Tests for profile data storage
// ABOUTME: Covers answer versioning, entry ordering, gratitude limits, analysis status
package sqlite

import (
	"testing"
	"time"

	"github.com/soberpath/recall/internal/models"
)

func TestSaveAnswer_Versioning(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	if err := storage.Profile.SaveAnswer(user.ID, "О себе", 1, "Как вас зовут?", "Алексей"); err != nil {
		t.Fatalf("SaveAnswer error: %v", err)
	}
	if err := storage.Profile.SaveAnswer(user.ID, "О себе", 1, "Как вас зовут?", "Лёша"); err != nil {
		t.Fatalf("SaveAnswer error: %v", err)
	}
	if err := storage.Profile.SaveAnswer(user.ID, "О себе", 2, "Сколько вам лет?", "35"); err != nil {
		t.Fatalf("SaveAnswer error: %v", err)
	}

	answers, err := storage.Profile.LatestAnswers(user.ID)
	if err != nil {
		t.Fatalf("LatestAnswers error: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 latest answers, got %d", len(answers))
	}
	if answers[0].AnswerText != "Лёша" {
		t.Errorf("latest version expected, got %q", answers[0].AnswerText)
	}
	if answers[0].Version != 2 {
		t.Errorf("Version = %d, want 2", answers[0].Version)
	}
}

func TestEntries_GroupOrdering(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"старое", "среднее", "новое"} {
		entry := &models.SectionEntry{
			UserID:      user.ID,
			SectionName: "Личность",
			Subblock:    "самооценка",
			Content:     content,
			Importance:  0.5,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := storage.Profile.AddEntry(entry); err != nil {
			t.Fatalf("AddEntry error: %v", err)
		}
	}

	entries, err := storage.Profile.Entries(user.ID)
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Content != "новое" {
		t.Errorf("newest first expected, got %q", entries[0].Content)
	}
}

func TestRecentGratitudes_Limit(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	for i := 0; i < 25; i++ {
		if err := storage.Profile.AddGratitude(user.ID, "благодарность"); err != nil {
			t.Fatalf("AddGratitude error: %v", err)
		}
	}

	gratitudes, err := storage.Profile.RecentGratitudes(user.ID, 20)
	if err != nil {
		t.Fatalf("RecentGratitudes error: %v", err)
	}
	if len(gratitudes) != 20 {
		t.Errorf("expected 20 gratitudes, got %d", len(gratitudes))
	}
}

func TestStepAnswers(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	if err := storage.Profile.AddStepAnswer(user.ID, 2, "Пришли к убеждению", "Что для вас высшая сила?", "Группа"); err != nil {
		t.Fatalf("AddStepAnswer error: %v", err)
	}
	if err := storage.Profile.AddStepAnswer(user.ID, 1, "Мы признали", "В чем бессилие?", "Алкоголь"); err != nil {
		t.Fatalf("AddStepAnswer error: %v", err)
	}

	answers, err := storage.Profile.StepAnswers(user.ID)
	if err != nil {
		t.Fatalf("StepAnswers error: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	if answers[0].StepNumber != 1 {
		t.Errorf("step order expected, first = step %d", answers[0].StepNumber)
	}
}

func TestRecentCompletedAnalyses_ExcludesInProgress(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	done, err := storage.Profile.StartDailyAnalysis(user.ID, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("StartDailyAnalysis error: %v", err)
	}
	if err := storage.Profile.AddDailyAnswer(done, 1, "День прошел спокойно"); err != nil {
		t.Fatalf("AddDailyAnswer error: %v", err)
	}
	if err := storage.Profile.CompleteDailyAnalysis(done); err != nil {
		t.Fatalf("CompleteDailyAnalysis error: %v", err)
	}

	if _, err := storage.Profile.StartDailyAnalysis(user.ID, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("StartDailyAnalysis error: %v", err)
	}

	analyses, err := storage.Profile.RecentCompletedAnalyses(user.ID, 10)
	if err != nil {
		t.Fatalf("RecentCompletedAnalyses error: %v", err)
	}
	if len(analyses) != 1 {
		t.Fatalf("expected 1 completed analysis, got %d", len(analyses))
	}
	if len(analyses[0].Answers) != 1 || analyses[0].Answers[0].QuestionNumber != 1 {
		t.Errorf("Answers = %+v", analyses[0].Answers)
	}
}

func TestRecentCompletedAnalyses_MalformedDate(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	_, err := storage.db.Exec(`
		INSERT INTO daily_analyses (user_id, date, status, created_at)
		VALUES (?, ?, ?, ?)
	`, user.ID, "вчера", models.AnalysisCompleted, time.Now())
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}

	if _, err := storage.Profile.RecentCompletedAnalyses(user.ID, 10); err == nil {
		t.Error("expected error for unparseable analysis date")
	}
}
