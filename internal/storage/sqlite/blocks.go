// ABOUTME: Block registry storage for SQLite
// ABOUTME: Get-or-create of normalized topic titles with unique-conflict recovery
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/soberpath/recall/internal/models"
)

// BlockStore handles topic block persistence
type BlockStore struct {
	db *DB
}

// NewBlockStore creates a new BlockStore
func NewBlockStore(db *DB) *BlockStore {
	return &BlockStore{db: db}
}

// NormalizeTitle canonicalizes a block title: lowercase, trimmed.
// "Семья " and "семья" map to the same block.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// GetOrCreate returns the block for a title, creating it on first use.
// A concurrent insert of the same title loses the unique race and falls
// back to re-reading the winner's row.
func (s *BlockStore) GetOrCreate(title string) (*models.Block, error) {
	clean := NormalizeTitle(title)
	if clean == "" {
		return nil, fmt.Errorf("block title is empty")
	}

	block, err := s.GetByTitle(clean)
	if err != nil {
		return nil, err
	}
	if block != nil {
		return block, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO blocks (title, created_at) VALUES (?, ?)
		ON CONFLICT(title) DO NOTHING
	`, clean, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create block %q: %w", clean, err)
	}

	block, err = s.GetByTitle(clean)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("block %q vanished after insert", clean)
	}
	return block, nil
}

// GetByTitle retrieves a block by its normalized title, nil when absent
func (s *BlockStore) GetByTitle(title string) (*models.Block, error) {
	var block models.Block
	err := s.db.QueryRow(`
		SELECT id, title, created_at FROM blocks WHERE title = ?
	`, NormalizeTitle(title)).Scan(&block.ID, &block.Title, &block.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// All returns every registered block ordered by title
func (s *BlockStore) All() ([]models.Block, error) {
	rows, err := s.db.Query(`SELECT id, title, created_at FROM blocks ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var blocks []models.Block
	for rows.Next() {
		var block models.Block
		if err := rows.Scan(&block.ID, &block.Title, &block.CreatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}
