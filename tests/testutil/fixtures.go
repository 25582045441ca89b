package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Username: fmt.Sprintf("user%d", f.counter),
		Email:    fmt.Sprintf("user%d@example.com", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name, is_staff)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, date_joined, updated_at
	`, user.Username, user.Email, user.FirstName, user.LastName, user.IsStaff).Scan(
		&user.ID, &user.DateJoined, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithUsername sets the user's username
func WithUsername(username string) UserOption {
	return func(u *models.User) {
		u.Username = username
	}
}

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithNames sets the user's first and last name
func WithNames(first, last string) UserOption {
	return func(u *models.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// WithStaff marks the user as staff
func WithStaff() UserOption {
	return func(u *models.User) {
		u.IsStaff = true
	}
}

// LinkAccount links a provider identity to user
func (f *Fixtures) LinkAccount(t *testing.T, user *models.User, provider, uid string) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO social_accounts (user_id, provider, uid) VALUES ($1, $2, $3)
	`, user.ID, provider, uid)
	if err != nil {
		t.Fatalf("failed to link account: %v", err)
	}
}

// CreateOpportunity creates a volunteer opportunity posted by creator
func (f *Fixtures) CreateOpportunity(t *testing.T, creator *models.User, postedAt time.Time) *models.VolunteerOpportunity {
	t.Helper()
	f.counter++

	o := &models.VolunteerOpportunity{
		Title:          fmt.Sprintf("Opportunity %d", f.counter),
		Description:    "Help out",
		Organization:   "Food Bank",
		Location:       "Downtown",
		SkillsRequired: []string{},
		DatePosted:     postedAt,
		CreatedBy:      creator.ID,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO volunteer_opportunities (title, description, organization, location, date_posted, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, o.Title, o.Description, o.Organization, o.Location, o.DatePosted, o.CreatedBy).Scan(&o.ID)
	if err != nil {
		t.Fatalf("failed to create opportunity: %v", err)
	}

	return o
}

// CountRows returns the number of rows in table matching the optional user id
func (f *Fixtures) CountRows(t *testing.T, table string, userID *uuid.UUID) int {
	t.Helper()
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	args := []any{}
	if userID != nil {
		query += " WHERE user_id = $1"
		args = append(args, *userID)
	}

	var n int
	if err := f.db.Pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
