// ABOUTME: Core knowledge chunk model for the seeded vector collection
// ABOUTME: Chunks are fixed guidance documents shared by all users
package models

// CoreChunk is one seeded entry of the assistant's core knowledge base
type CoreChunk struct {
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Block   string   `json:"block,omitempty"`
}
