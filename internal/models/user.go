// ABOUTME: User account model with onboarding data and personalization document
// ABOUTME: Users are keyed internally by id and externally by messenger id
package models

import "time"

// Program experience levels collected during onboarding
const (
	ExperienceNewbie   = "newbie"
	ExperienceFamiliar = "familiar"
	ExperienceWorking  = "working"
	ExperienceVeteran  = "veteran"
)

// User is one account. PersonalPrompt holds the generated
// personalization document, rebuilt as profile data changes.
type User struct {
	ID                int64     `json:"id"`
	MessengerID       string    `json:"messenger_id"`
	DisplayName       string    `json:"display_name,omitempty"`
	ProgramExperience string    `json:"program_experience,omitempty"`
	SobrietyDate      string    `json:"sobriety_date,omitempty"`
	PersonalPrompt    string    `json:"personal_prompt,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Onboarded reports whether the user completed onboarding
func (u *User) Onboarded() bool {
	return u.DisplayName != ""
}
