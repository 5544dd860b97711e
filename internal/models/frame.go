// ABOUTME: Frame and Block data models for the memory store
// ABOUTME: A frame is one persisted memory unit linked to topic blocks
package models

import "time"

// Block is a topic label frames attach to. Titles are normalized
// (lowercased, trimmed) before storage and unique per title.
type Block struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Frame is one classified memory unit for a user
type Frame struct {
	ID            int64                  `json:"id"`
	UserID        int64                  `json:"user_id"`
	Content       string                 `json:"content"`
	Emotion       string                 `json:"emotion"`
	Weight        float64                `json:"weight"`
	ThinkingFrame string                 `json:"thinking_frame,omitempty"`
	LevelOfMind   int                    `json:"level_of_mind,omitempty"`
	MemoryType    string                 `json:"memory_type,omitempty"`
	TargetBlock   map[string]interface{} `json:"target_block,omitempty"`
	Action        string                 `json:"action,omitempty"`
	StrategyHint  string                 `json:"strategy_hint,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	Blocks        []Block                `json:"blocks,omitempty"`
}

// BlockTitles returns the titles of the frame's linked blocks
func (f *Frame) BlockTitles() []string {
	titles := make([]string, 0, len(f.Blocks))
	for _, b := range f.Blocks {
		titles = append(titles, b.Title)
	}
	return titles
}
