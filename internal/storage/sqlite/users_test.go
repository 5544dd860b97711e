// ABOUTME: Tests for user and message stores
// ABOUTME: Covers find-or-create idempotency, prompt updates, history order
package sqlite

import (
	"errors"
	"testing"

	"github.com/soberpath/recall/internal/models"
)

func TestFindOrCreate_Idempotent(t *testing.T) {
	storage := newTestStorage(t)

	first, err := storage.Users.FindOrCreate("tg-42")
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}
	second, err := storage.Users.FindOrCreate("tg-42")
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same user, got ids %d and %d", first.ID, second.ID)
	}
}

func TestGetByID_Missing(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Users.GetByID(9999)
	if err == nil {
		t.Fatal("expected error for missing user")
	}
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestSetPersonalPrompt(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	if err := storage.Users.SetPersonalPrompt(user.ID, "=== ИНСТРУКЦИЯ ДЛЯ БОТА ===\n..."); err != nil {
		t.Fatalf("SetPersonalPrompt error: %v", err)
	}

	reloaded, err := storage.Users.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if reloaded.PersonalPrompt == "" {
		t.Error("personal prompt not persisted")
	}

	if err := storage.Users.SetPersonalPrompt(9999, "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for missing user, got %v", err)
	}
}

func TestSetOnboarding(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	if err := storage.Users.SetOnboarding(user.ID, "Алексей", models.ExperienceNewbie, "2024-03-15"); err != nil {
		t.Fatalf("SetOnboarding error: %v", err)
	}

	reloaded, err := storage.Users.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if !reloaded.Onboarded() {
		t.Error("user should be onboarded")
	}
	if reloaded.SobrietyDate != "2024-03-15" {
		t.Errorf("SobrietyDate = %q", reloaded.SobrietyDate)
	}
}

func TestMessages_RecentOrder(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	texts := []string{"первое", "второе", "третье"}
	for _, text := range texts {
		if _, err := storage.Messages.Add(user.ID, models.RoleUser, text); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}
	if _, err := storage.Messages.Add(user.ID, models.RoleAssistant, "ответ"); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	history, err := storage.Messages.Recent(user.ID, 10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history))
	}
	if history[0].Content != "первое" || history[3].Content != "ответ" {
		t.Errorf("history not chronological: %q ... %q", history[0].Content, history[3].Content)
	}

	userOnly, err := storage.Messages.RecentUserMessages(user.ID, 2)
	if err != nil {
		t.Fatalf("RecentUserMessages error: %v", err)
	}
	if len(userOnly) != 2 {
		t.Fatalf("expected 2 user messages, got %d", len(userOnly))
	}
	if userOnly[0].Content != "третье" {
		t.Errorf("newest first expected, got %q", userOnly[0].Content)
	}
}
