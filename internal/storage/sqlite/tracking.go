// ABOUTME: Frame tracking state persistence for SQLite
// ABOUTME: One row per user with JSON-encoded candidates, confirmed, and counters
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/soberpath/recall/internal/models"
)

// TrackingStore handles tracking state persistence
type TrackingStore struct {
	db *DB
}

// NewTrackingStore creates a new TrackingStore
func NewTrackingStore(db *DB) *TrackingStore {
	return &TrackingStore{db: db}
}

// Get returns the user's tracking state, or a fresh empty state when
// the user has never been tracked.
func (s *TrackingStore) Get(userID int64) (*models.TrackingState, error) {
	var (
		candidates   string
		confirmed    string
		counts       string
		history      string
		minToConfirm int
		archetypes   string
		metaFlags    string
		updatedAt    time.Time
	)

	err := s.db.QueryRow(`
		SELECT candidates, confirmed, counts, history, min_to_confirm, archetypes, meta_flags, updated_at
		FROM frame_tracking
		WHERE user_id = ?
	`, userID).Scan(&candidates, &confirmed, &counts, &history, &minToConfirm, &archetypes, &metaFlags, &updatedAt)

	if err == sql.ErrNoRows {
		return models.NewTrackingState(userID), nil
	}
	if err != nil {
		return nil, err
	}

	state := models.NewTrackingState(userID)
	state.MinToConfirm = minToConfirm
	state.UpdatedAt = updatedAt

	if err := json.Unmarshal([]byte(candidates), &state.Candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates for user %d: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(confirmed), &state.Confirmed); err != nil {
		return nil, fmt.Errorf("failed to decode confirmed for user %d: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(counts), &state.Counts); err != nil {
		return nil, fmt.Errorf("failed to decode counts for user %d: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(history), &state.History); err != nil {
		return nil, fmt.Errorf("failed to decode history for user %d: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(archetypes), &state.Archetypes); err != nil {
		return nil, fmt.Errorf("failed to decode archetypes for user %d: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(metaFlags), &state.MetaFlags); err != nil {
		return nil, fmt.Errorf("failed to decode meta flags for user %d: %w", userID, err)
	}

	return state, nil
}

// Save upserts the tracking state, overwriting all derived lists
func (s *TrackingStore) Save(state *models.TrackingState) error {
	candidates, err := json.Marshal(state.Candidates)
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}
	confirmed, err := json.Marshal(state.Confirmed)
	if err != nil {
		return fmt.Errorf("failed to encode confirmed: %w", err)
	}
	counts, err := json.Marshal(state.Counts)
	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}
	history, err := json.Marshal(state.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	archetypes, err := json.Marshal(state.Archetypes)
	if err != nil {
		return fmt.Errorf("failed to encode archetypes: %w", err)
	}
	metaFlags, err := json.Marshal(state.MetaFlags)
	if err != nil {
		return fmt.Errorf("failed to encode meta flags: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO frame_tracking (user_id, candidates, confirmed, counts, history, min_to_confirm, archetypes, meta_flags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			candidates = excluded.candidates,
			confirmed = excluded.confirmed,
			counts = excluded.counts,
			history = excluded.history,
			min_to_confirm = excluded.min_to_confirm,
			archetypes = excluded.archetypes,
			meta_flags = excluded.meta_flags,
			updated_at = excluded.updated_at
	`, state.UserID, string(candidates), string(confirmed), string(counts), string(history),
		state.MinToConfirm, string(archetypes), string(metaFlags), time.Now())

	return err
}
