// ABOUTME: Tests for tracking state persistence
// ABOUTME: Covers empty-state default, upsert round trip, list overwrite
package sqlite

import (
	"testing"
	"time"

	"github.com/soberpath/recall/internal/models"
)

func TestTrackingGet_FreshUser(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	state, err := storage.Tracking.Get(user.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if state.UserID != user.ID {
		t.Errorf("UserID = %d, want %d", state.UserID, user.ID)
	}
	if len(state.Candidates) != 0 || len(state.Confirmed) != 0 {
		t.Error("fresh state should be empty")
	}
	if state.MinToConfirm != models.DefaultMinToConfirm {
		t.Errorf("MinToConfirm = %d, want default", state.MinToConfirm)
	}
}

func TestTrackingSave_RoundTrip(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	now := time.Now().Truncate(time.Second)
	state := models.NewTrackingState(user.ID)
	state.Candidates = []models.TrackedEntry{{Content: "конфликт с женой", FirstSeen: now}}
	state.Counts["конфликт с женой"] = 2
	state.Archetypes = []string{"victim"}

	if err := storage.Tracking.Save(state); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := storage.Tracking.Get(user.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(loaded.Candidates) != 1 || loaded.Candidates[0].Content != "конфликт с женой" {
		t.Errorf("Candidates = %+v", loaded.Candidates)
	}
	if loaded.Counts["конфликт с женой"] != 2 {
		t.Errorf("Counts = %v", loaded.Counts)
	}
	if len(loaded.Archetypes) != 1 || loaded.Archetypes[0] != "victim" {
		t.Errorf("Archetypes = %v", loaded.Archetypes)
	}
}

func TestTrackingSave_OverwritesDerivedLists(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	state := models.NewTrackingState(user.ID)
	state.Archetypes = []string{"victim", "judge"}
	state.MetaFlags = []string{"loop_detected"}
	if err := storage.Tracking.Save(state); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	state.Archetypes = []string{"rescuer"}
	state.MetaFlags = []string{}
	if err := storage.Tracking.Save(state); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := storage.Tracking.Get(user.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(loaded.Archetypes) != 1 || loaded.Archetypes[0] != "rescuer" {
		t.Errorf("Archetypes not overwritten: %v", loaded.Archetypes)
	}
	if len(loaded.MetaFlags) != 0 {
		t.Errorf("MetaFlags not overwritten: %v", loaded.MetaFlags)
	}
}
