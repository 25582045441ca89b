package dto

import "time"

type ProfileResponse struct {
	User                    UserResponse   `json:"user"`
	FullName                string         `json:"full_name"`
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
}

type ProfileEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Profile ProfileResponse `json:"profile"`
}

type ProfileListResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Profiles []ProfileResponse `json:"profiles"`
}

// UpdateProfileRequest is a partial update; absent fields are left alone.
// volunteer_hours is deliberately not accepted.
type UpdateProfileRequest struct {
	FirstName               *string         `json:"first_name"`
	LastName                *string         `json:"last_name"`
	Email                   *string         `json:"email"`
	Phone                   *string         `json:"phone"`
	Bio                     *string         `json:"bio"`
	Location                *string         `json:"location"`
	VolunteerSkills         *[]string       `json:"volunteer_skills"`
	VolunteerInterests      *[]string       `json:"volunteer_interests"`
	Availability            *map[string]any `json:"availability"`
	Certifications          *[]string       `json:"certifications"`
	NotificationPreferences *map[string]any `json:"notification_preferences"`
	PrivacySettings         *map[string]any `json:"privacy_settings"`
}

// ValidationErrorResponse reports field errors keyed by field name.
type ValidationErrorResponse struct {
	Success bool                `json:"success"`
	Error   map[string][]string `json:"error"`
}
