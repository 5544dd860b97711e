// ABOUTME: Frame tracking state models for repeated-theme detection
// ABOUTME: Candidates graduate to confirmed after min_to_confirm sightings
package models

import "time"

// DefaultMinToConfirm is how many identical sightings confirm a candidate
const DefaultMinToConfirm = 3

// TrackedEntry is one observed theme inside the tracking state
type TrackedEntry struct {
	Content     string                 `json:"content"`
	Data        map[string]interface{} `json:"data,omitempty"`
	FirstSeen   time.Time              `json:"first_seen"`
	ConfirmedAt *time.Time             `json:"confirmed_at,omitempty"`
}

// TrackingState is the persistent per-user tracking record.
// Counts survive confirmation; confirmed entries never demote.
type TrackingState struct {
	UserID       int64          `json:"user_id"`
	Candidates   []TrackedEntry `json:"candidates"`
	Confirmed    []TrackedEntry `json:"confirmed"`
	Counts       map[string]int `json:"counts"`
	History      []string       `json:"history"`
	MinToConfirm int            `json:"min_to_confirm"`
	Archetypes   []string       `json:"archetypes"`
	MetaFlags    []string       `json:"meta_flags"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewTrackingState returns an empty state for a user
func NewTrackingState(userID int64) *TrackingState {
	return &TrackingState{
		UserID:       userID,
		Candidates:   []TrackedEntry{},
		Confirmed:    []TrackedEntry{},
		Counts:       map[string]int{},
		History:      []string{},
		MinToConfirm: DefaultMinToConfirm,
		Archetypes:   []string{},
		MetaFlags:    []string{},
	}
}

// IsConfirmed reports whether content already graduated
func (s *TrackingState) IsConfirmed(content string) bool {
	for _, e := range s.Confirmed {
		if e.Content == content {
			return true
		}
	}
	return false
}

// ConfirmedContents returns the confirmed theme texts in confirmation order
func (s *TrackingState) ConfirmedContents() []string {
	contents := make([]string, 0, len(s.Confirmed))
	for _, e := range s.Confirmed {
		contents = append(contents, e.Content)
	}
	return contents
}
