// ABOUTME: Frame storage operations for SQLite
// ABOUTME: Inserts frames with block links, tag-based retrieval, bulk fetch
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/soberpath/recall/internal/models"
)

// FrameStore handles frame persistence
type FrameStore struct {
	db     *DB
	blocks *BlockStore
}

// NewFrameStore creates a new FrameStore
func NewFrameStore(db *DB, blocks *BlockStore) *FrameStore {
	return &FrameStore{db: db, blocks: blocks}
}

// Add inserts a frame and links it to the given block titles.
// Titles are resolved through the registry before the insert, so new
// topics create blocks on the fly; the frame row and its links then
// commit as one transaction. The frame is returned with its id and
// blocks set.
func (s *FrameStore) Add(frame *models.Frame, blockTitles []string) error {
	createdAt := frame.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var targetBlock interface{}
	if frame.TargetBlock != nil {
		data, err := json.Marshal(frame.TargetBlock)
		if err != nil {
			return fmt.Errorf("failed to encode target block: %w", err)
		}
		targetBlock = string(data)
	}

	var blocks []models.Block
	for _, title := range blockTitles {
		block, err := s.blocks.GetOrCreate(title)
		if err != nil {
			return fmt.Errorf("failed to resolve block %q: %w", title, err)
		}
		blocks = append(blocks, *block)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := tx.Exec(`
		INSERT INTO frames (user_id, content, emotion, weight, thinking_frame,
			level_of_mind, memory_type, target_block, action, strategy_hint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, frame.UserID, frame.Content, frame.Emotion, frame.Weight, frame.ThinkingFrame,
		frame.LevelOfMind, frame.MemoryType, targetBlock, frame.Action, frame.StrategyHint, createdAt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert frame: %w", err)
	}

	frameID, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read frame id: %w", err)
	}

	for _, block := range blocks {
		_, err = tx.Exec(`
			INSERT INTO frame_blocks (frame_id, block_id) VALUES (?, ?)
			ON CONFLICT(frame_id, block_id) DO NOTHING
		`, frameID, block.ID)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to link block %q: %w", block.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit frame: %w", err)
	}

	frame.ID = frameID
	frame.CreatedAt = createdAt
	frame.Blocks = blocks
	return nil
}

// RelevantByBlocks returns a user's frames linked to any of the given
// titles, heaviest and newest first. An empty title list short-circuits
// to an empty result without touching the database.
func (s *FrameStore) RelevantByBlocks(userID int64, blockTitles []string, limit int) ([]models.Frame, error) {
	if len(blockTitles) == 0 {
		return nil, nil
	}

	clean := make([]string, 0, len(blockTitles))
	args := []interface{}{userID}
	for _, title := range blockTitles {
		normalized := NormalizeTitle(title)
		if normalized == "" {
			continue
		}
		clean = append(clean, "?")
		args = append(args, normalized)
	}
	if len(clean) == 0 {
		return nil, nil
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT DISTINCT f.id, f.user_id, f.content, f.emotion, f.weight,
			f.thinking_frame, f.level_of_mind, f.memory_type, f.target_block,
			f.action, f.strategy_hint, f.created_at
		FROM frames f
		JOIN frame_blocks fb ON fb.frame_id = f.id
		JOIN blocks b ON b.id = fb.block_id
		WHERE f.user_id = ? AND b.title IN (%s)
		ORDER BY f.weight DESC, f.created_at DESC
		LIMIT ?
	`, strings.Join(clean, ", "))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	frames, err := scanFrames(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachBlocks(frames); err != nil {
		return nil, err
	}
	return frames, nil
}

// GetByIDs bulk-fetches frames; missing ids are silently skipped
func (s *FrameStore) GetByIDs(ids []int64) ([]models.Frame, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, content, emotion, weight, thinking_frame,
			level_of_mind, memory_type, target_block, action, strategy_hint, created_at
		FROM frames
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	frames, err := scanFrames(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachBlocks(frames); err != nil {
		return nil, err
	}
	return frames, nil
}

// CountForUser returns how many frames a user has accumulated
func (s *FrameStore) CountForUser(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM frames WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

func (s *FrameStore) attachBlocks(frames []models.Frame) error {
	for i := range frames {
		rows, err := s.db.Query(`
			SELECT b.id, b.title, b.created_at
			FROM blocks b
			JOIN frame_blocks fb ON fb.block_id = b.id
			WHERE fb.frame_id = ?
			ORDER BY b.title
		`, frames[i].ID)
		if err != nil {
			return err
		}

		var blocks []models.Block
		for rows.Next() {
			var block models.Block
			if err := rows.Scan(&block.ID, &block.Title, &block.CreatedAt); err != nil {
				_ = rows.Close()
				return err
			}
			blocks = append(blocks, block)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		_ = rows.Close()
		frames[i].Blocks = blocks
	}
	return nil
}

func scanFrames(rows *sql.Rows) ([]models.Frame, error) {
	var frames []models.Frame

	for rows.Next() {
		var (
			frame       models.Frame
			targetBlock sql.NullString
		)
		if err := rows.Scan(&frame.ID, &frame.UserID, &frame.Content, &frame.Emotion,
			&frame.Weight, &frame.ThinkingFrame, &frame.LevelOfMind, &frame.MemoryType,
			&targetBlock, &frame.Action, &frame.StrategyHint, &frame.CreatedAt); err != nil {
			return nil, err
		}
		if targetBlock.Valid && targetBlock.String != "" {
			if err := json.Unmarshal([]byte(targetBlock.String), &frame.TargetBlock); err != nil {
				return nil, fmt.Errorf("failed to decode target block for frame %d: %w", frame.ID, err)
			}
		}
		frames = append(frames, frame)
	}

	return frames, rows.Err()
}
