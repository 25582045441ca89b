package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PasswordHash *string    `json:"-"`
	IsStaff      bool       `json:"is_staff"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasUsablePassword reports whether the user can sign in with a local
// password. Accounts created through social login never can.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

type SocialAccount struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Provider  string         `json:"provider"`
	UID       string         `json:"uid"`
	ExtraData map[string]any `json:"extra_data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type AuthToken struct {
	Key       string    `json:"key"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
