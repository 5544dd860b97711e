// ABOUTME: Frame tracking state machine with archetype derivation
// ABOUTME: Themes graduate from candidate to confirmed after repeated sightings
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soberpath/recall/internal/models"
	"github.com/soberpath/recall/internal/storage/sqlite"
)

// historyCap bounds the stored observation history
const historyCap = 20

// Meta flags derived from the confirmed set
const (
	FlagLoopDetected     = "loop_detected"
	FlagFrameShift       = "frame_shift"
	FlagIdentityConflict = "identity_conflict"
)

// archetypePatterns maps each archetype to the phrases that signal it.
// Matching is substring, case-insensitive.
var archetypePatterns = []struct {
	name     string
	patterns []string
}{
	{"victim", []string{"жертва", "меня обидели", "несправедливо", "я не виноват"}},
	{"rescuer", []string{"помогаю", "спасаю", "нужно помочь", "должен помочь"}},
	{"judge", []string{"осуждаю", "неправильно", "должен", "обязан", "виноват"}},
	{"persecutor", []string{"наказать", "виноват", "должен ответить"}},
}

// Tracker maintains per-user theme tracking state
type Tracker struct {
	store        *sqlite.Storage
	minToConfirm int
	log          zerolog.Logger
}

// NewTracker creates a Tracker. minToConfirm applies to fresh states only;
// existing states keep their persisted threshold.
func NewTracker(store *sqlite.Storage, minToConfirm int, log zerolog.Logger) *Tracker {
	if minToConfirm <= 0 {
		minToConfirm = models.DefaultMinToConfirm
	}
	return &Tracker{
		store:        store,
		minToConfirm: minToConfirm,
		log:          log.With().Str("component", "tracker").Logger(),
	}
}

// Observe records one sighting of a theme. The first sighting creates a
// candidate with count 1; each repeat increments the counter; reaching
// the threshold moves the entry to confirmed. Confirmed entries stay
// confirmed and keep counting.
func (t *Tracker) Observe(userID int64, content string, data map[string]interface{}) (*models.TrackingState, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty tracking content")
	}

	state, err := t.store.Tracking.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("load tracking state: %w", err)
	}
	if len(state.Candidates) == 0 && len(state.Confirmed) == 0 && len(state.Counts) == 0 {
		state.MinToConfirm = t.minToConfirm
	}

	state.Counts[content]++
	state.History = append(state.History, content)
	if len(state.History) > historyCap {
		state.History = state.History[len(state.History)-historyCap:]
	}

	if state.IsConfirmed(content) {
		if err := t.store.Tracking.Save(state); err != nil {
			return nil, fmt.Errorf("save tracking state: %w", err)
		}
		return state, nil
	}

	idx := -1
	for i, candidate := range state.Candidates {
		if candidate.Content == content {
			idx = i
			break
		}
	}
	if idx == -1 {
		state.Candidates = append(state.Candidates, models.TrackedEntry{
			Content:   content,
			Data:      data,
			FirstSeen: time.Now(),
		})
		idx = len(state.Candidates) - 1
	}

	if state.Counts[content] >= state.MinToConfirm {
		entry := state.Candidates[idx]
		now := time.Now()
		entry.ConfirmedAt = &now
		state.Confirmed = append(state.Confirmed, entry)
		state.Candidates = append(state.Candidates[:idx], state.Candidates[idx+1:]...)
		t.log.Info().Int64("user", userID).Str("content", content).Msg("theme confirmed")
	}

	if err := t.store.Tracking.Save(state); err != nil {
		return nil, fmt.Errorf("save tracking state: %w", err)
	}
	return state, nil
}

// Derive recomputes archetypes and meta flags from the confirmed set
// and overwrites the stored lists.
func (t *Tracker) Derive(userID int64) (*models.TrackingState, error) {
	state, err := t.store.Tracking.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("load tracking state: %w", err)
	}

	state.Archetypes = DetectArchetypes(state.ConfirmedContents())
	state.MetaFlags = DetectMetaFlags(state)

	if err := t.store.Tracking.Save(state); err != nil {
		return nil, fmt.Errorf("save tracking state: %w", err)
	}
	return state, nil
}

// DetectArchetypes matches confirmed theme texts against the archetype
// keyword patterns. Pure function of the confirmed contents.
func DetectArchetypes(confirmed []string) []string {
	archetypes := []string{}
	for _, arch := range archetypePatterns {
		for _, content := range confirmed {
			lower := strings.ToLower(content)
			matched := false
			for _, pattern := range arch.patterns {
				if strings.Contains(lower, pattern) {
					archetypes = append(archetypes, arch.name)
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
	}
	return archetypes
}

// DetectMetaFlags derives behavioral flags from the tracking state:
// the same theme three times in a row, two or more confirmed themes,
// or five or more confirmed themes. No flags fire until at least one
// theme is confirmed, even when the observation history already loops.
func DetectMetaFlags(state *models.TrackingState) []string {
	flags := []string{}
	if len(state.Confirmed) == 0 {
		return flags
	}

	if n := len(state.History); n >= 3 {
		last := state.History[n-1]
		if state.History[n-2] == last && state.History[n-3] == last {
			flags = append(flags, FlagLoopDetected)
		}
	}
	if len(state.Confirmed) >= 2 {
		flags = append(flags, FlagFrameShift)
	}
	if len(state.Confirmed) >= 5 {
		flags = append(flags, FlagIdentityConflict)
	}
	return flags
}
