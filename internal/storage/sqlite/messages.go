// ABOUTME: Chat message log storage for SQLite
// ABOUTME: Appends turns and reads recent history for context and highlights
package sqlite

import (
	"time"

	"github.com/soberpath/recall/internal/models"
)

// MessageStore handles chat log persistence
type MessageStore struct {
	db *DB
}

// NewMessageStore creates a new MessageStore
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

// Add appends a message to the user's chat log
func (s *MessageStore) Add(userID int64, role, content string) (*models.Message, error) {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)
	`, userID, role, content, now)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Message{
		ID:        id,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}, nil
}

// Recent returns the last n messages in chronological order
func (s *MessageStore) Recent(userID int64, limit int) ([]models.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, role, content, created_at
		FROM messages
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// RecentUserMessages returns the user's own last n messages, newest first
func (s *MessageStore) RecentUserMessages(userID int64, limit int) ([]models.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, role, content, created_at
		FROM messages
		WHERE user_id = ? AND role = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, models.RoleUser, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
