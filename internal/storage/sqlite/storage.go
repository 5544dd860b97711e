// ABOUTME: Unified Storage facade over all SQLite stores
// ABOUTME: Owns the single database handle shared by every store
package sqlite

import (
	"fmt"
)

// Storage bundles every store around one database handle. The handle is
// created once and constructor-injected into the engine; nothing else
// opens connections.
type Storage struct {
	db         *DB
	Users      *UserStore
	Blocks     *BlockStore
	Frames     *FrameStore
	Messages   *MessageStore
	Tracking   *TrackingStore
	Profile    *ProfileStore
	Embeddings *EmbeddingStore
}

// NewStorage opens (or creates) the database at path and wires all stores
func NewStorage(path string) (*Storage, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	blocks := NewBlockStore(db)
	return &Storage{
		db:         db,
		Users:      NewUserStore(db),
		Blocks:     blocks,
		Frames:     NewFrameStore(db, blocks),
		Messages:   NewMessageStore(db),
		Tracking:   NewTrackingStore(db),
		Profile:    NewProfileStore(db),
		Embeddings: NewEmbeddingStore(db),
	}
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}
