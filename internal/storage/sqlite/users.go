// ABOUTME: User storage operations for SQLite
// ABOUTME: Find-or-create by messenger id plus personalization document updates
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/soberpath/recall/internal/models"
)

// ErrUserNotFound is returned when a user id has no row
var ErrUserNotFound = fmt.Errorf("user not found")

// UserStore handles user persistence
type UserStore struct {
	db *DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// FindOrCreate returns the user for a messenger id, creating a row on first contact
func (s *UserStore) FindOrCreate(messengerID string) (*models.User, error) {
	user, err := s.getByMessengerID(messengerID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO users (messenger_id, created_at) VALUES (?, ?)
		ON CONFLICT(messenger_id) DO NOTHING
	`, messengerID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err = s.getByMessengerID(messengerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user vanished after insert: %s", messengerID)
	}
	return user, nil
}

func (s *UserStore) getByMessengerID(messengerID string) (*models.User, error) {
	row := s.db.QueryRow(`
		SELECT id, messenger_id, display_name, program_experience, sobriety_date, personal_prompt, created_at
		FROM users
		WHERE messenger_id = ?
	`, messengerID)
	return scanUser(row)
}

// GetByID retrieves a user by internal id. A missing user is an error:
// every caller holds an id that was handed out by FindOrCreate.
func (s *UserStore) GetByID(userID int64) (*models.User, error) {
	row := s.db.QueryRow(`
		SELECT id, messenger_id, display_name, program_experience, sobriety_date, personal_prompt, created_at
		FROM users
		WHERE id = ?
	`, userID)

	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	return user, nil
}

// SetOnboarding stores the onboarding answers
func (s *UserStore) SetOnboarding(userID int64, displayName, experience, sobrietyDate string) error {
	_, err := s.db.Exec(`
		UPDATE users
		SET display_name = ?, program_experience = ?, sobriety_date = ?
		WHERE id = ?
	`, displayName, experience, sobrietyDate, userID)
	return err
}

// SetPersonalPrompt replaces the stored personalization document
func (s *UserStore) SetPersonalPrompt(userID int64, prompt string) error {
	result, err := s.db.Exec(`
		UPDATE users SET personal_prompt = ? WHERE id = ?
	`, prompt, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.MessengerID, &user.DisplayName,
		&user.ProgramExperience, &user.SobrietyDate, &user.PersonalPrompt, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
