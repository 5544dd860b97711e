// ABOUTME: Tests for the personalization document builder
// ABOUTME: Covers idempotency, section replacement, preamble handling
package core

import (
	"context"
	"strings"
	"testing"

	"github.com/soberpath/recall/internal/models"
)

func TestRebuild_IdempotentWithoutNewInfo(t *testing.T) {
	storage := newCoreStorage(t)
	user := newCoreUser(t, storage)
	if err := storage.Users.SetOnboarding(user.ID, "Алексей", models.ExperienceNewbie, "2024-03-15"); err != nil {
		t.Fatalf("SetOnboarding error: %v", err)
	}
	if err := storage.Profile.AddGratitude(user.ID, "за трезвый день"); err != nil {
		t.Fatalf("AddGratitude error: %v", err)
	}

	personalizer := NewPersonalizer(storage, &stubProvider{}, nopLog())

	first, err := personalizer.Rebuild(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}
	second, err := personalizer.Rebuild(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}

	if first != second {
		t.Errorf("rebuild not idempotent:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
	if strings.Count(second, headerGratitudes) != 1 {
		t.Errorf("gratitude section duplicated:\n%s", second)
	}
}

func TestRebuild_ReplacesSectionsNotAppends(t *testing.T) {
	storage := newCoreStorage(t)
	user := newCoreUser(t, storage)
	personalizer := NewPersonalizer(storage, &stubProvider{}, nopLog())

	if err := storage.Profile.AddGratitude(user.ID, "первая"); err != nil {
		t.Fatalf("AddGratitude error: %v", err)
	}
	if _, err := personalizer.Rebuild(context.Background(), user.ID); err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}

	if err := storage.Profile.AddGratitude(user.ID, "вторая"); err != nil {
		t.Fatalf("AddGratitude error: %v", err)
	}
	document, err := personalizer.Rebuild(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}

	if strings.Count(document, headerGratitudes) != 1 {
		t.Errorf("section appended instead of replaced:\n%s", document)
	}
	if !strings.Contains(document, "- первая") || !strings.Contains(document, "- вторая") {
		t.Errorf("gratitudes missing:\n%s", document)
	}
}

func TestRebuildWithAnalysis_AppendsPreamble(t *testing.T) {
	storage := newCoreStorage(t)
	user := newCoreUser(t, storage)
	provider := &stubProvider{summary: "У пользователя есть брат Иван."}
	personalizer := NewPersonalizer(storage, provider, nopLog())

	analysis := models.ProfileAnalysis{UpdateNeeded: true, ExtractedInfo: "брат Иван"}
	first, err := personalizer.RebuildWithAnalysis(context.Background(), user.ID, analysis)
	if err != nil {
		t.Fatalf("RebuildWithAnalysis error: %v", err)
	}
	if !strings.HasPrefix(first, "У пользователя есть брат Иван.") {
		t.Errorf("preamble missing:\n%s", first)
	}

	// Second rebuild with new info concatenates, never replaces
	provider.summary = "Пользователь сменил работу."
	analysis.ExtractedInfo = "новая работа"
	second, err := personalizer.RebuildWithAnalysis(context.Background(), user.ID, analysis)
	if err != nil {
		t.Fatalf("RebuildWithAnalysis error: %v", err)
	}
	if !strings.Contains(second, "У пользователя есть брат Иван.") || !strings.Contains(second, "Пользователь сменил работу.") {
		t.Errorf("preamble history lost:\n%s", second)
	}
}

func TestRebuild_SummarizeFailureKeepsDocument(t *testing.T) {
	storage := newCoreStorage(t)
	user := newCoreUser(t, storage)
	provider := &stubProvider{summaryErr: context.DeadlineExceeded}
	personalizer := NewPersonalizer(storage, provider, nopLog())

	analysis := models.ProfileAnalysis{UpdateNeeded: true, ExtractedInfo: "что-то новое"}
	document, err := personalizer.RebuildWithAnalysis(context.Background(), user.ID, analysis)
	if err != nil {
		t.Fatalf("rebuild must survive summarize failure: %v", err)
	}
	if !strings.Contains(document, headerInstruction) {
		t.Errorf("document incomplete:\n%s", document)
	}
}

func TestRebuild_MissingUser(t *testing.T) {
	storage := newCoreStorage(t)
	personalizer := NewPersonalizer(storage, &stubProvider{}, nopLog())

	if _, err := personalizer.Rebuild(context.Background(), 9999); err == nil {
		t.Error("expected error for missing user")
	}
}

func TestRebuild_SectionContents(t *testing.T) {
	storage := newCoreStorage(t)
	user := newCoreUser(t, storage)
	if err := storage.Users.SetOnboarding(user.ID, "Алексей", models.ExperienceWorking, "2024-03-15"); err != nil {
		t.Fatalf("SetOnboarding error: %v", err)
	}
	if err := storage.Profile.SaveAnswer(user.ID, "О себе", 1, "Как вас зовут?", "Алексей"); err != nil {
		t.Fatalf("SaveAnswer error: %v", err)
	}
	if err := storage.Profile.AddStepAnswer(user.ID, 1, "Мы признали", "В чем бессилие?", "Алкоголь"); err != nil {
		t.Fatalf("AddStepAnswer error: %v", err)
	}
	for _, content := range []string{"нынешнее", "прошлое", "позапрошлое", "давнее"} {
		if err := storage.Profile.AddEntry(&models.SectionEntry{
			UserID: user.ID, SectionName: "Личность", Subblock: "самооценка", Content: content,
		}); err != nil {
			t.Fatalf("AddEntry error: %v", err)
		}
	}

	personalizer := NewPersonalizer(storage, &stubProvider{}, nopLog())
	document, err := personalizer.Rebuild(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}

	for _, want := range []string{
		headerInstruction,
		headerOnboarding,
		"Имя: Алексей",
		"Дата трезвости: 2024-03-15",
		headerProfile,
		"Вопрос: Как вас зовут?",
		headerSteps,
		"Мы признали (Шаг 1)",
		"Сейчас: давнее",
		"... и ещё 1 записей",
	} {
		if !strings.Contains(document, want) {
			t.Errorf("document missing %q:\n%s", want, document)
		}
	}
	if strings.Contains(document, headerGratitudes) {
		t.Error("empty gratitude section should be omitted")
	}
}
