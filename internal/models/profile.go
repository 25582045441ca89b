package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID                      uuid.UUID      `json:"id"`
	UserID                  uuid.UUID      `json:"user_id"`
	Phone                   *string        `json:"phone"`
	Bio                     string         `json:"bio"`
	Location                string         `json:"location"`
	ProfilePicture          *string        `json:"profile_picture"`
	VolunteerSkills         []string       `json:"volunteer_skills"`
	VolunteerInterests      []string       `json:"volunteer_interests"`
	Availability            map[string]any `json:"availability"`
	VolunteerHours          int            `json:"volunteer_hours"`
	Certifications          []string       `json:"certifications"`
	NotificationPreferences map[string]any `json:"notification_preferences"`
	PrivacySettings         map[string]any `json:"privacy_settings"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	User                    *User          `json:"user,omitempty"`
}

// IsCompleted is true once the user has filled in both bio and location.
func (p *Profile) IsCompleted() bool {
	return p.Bio != "" && p.Location != ""
}
