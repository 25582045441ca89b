package models

import (
	"time"

	"github.com/google/uuid"
)

type VolunteerOpportunity struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Organization   string     `json:"organization"`
	Location       string     `json:"location"`
	SkillsRequired []string   `json:"skills_required"`
	DatePosted     time.Time  `json:"date_posted"`
	Deadline       *time.Time `json:"deadline"`
	HoursRequired  int        `json:"hours_required"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	Creator        *User      `json:"creator,omitempty"`
}

// Volunteer history statuses
const (
	HistoryStatusApplied    = "applied"
	HistoryStatusAccepted   = "accepted"
	HistoryStatusInProgress = "in_progress"
	HistoryStatusCompleted  = "completed"
	HistoryStatusCancelled  = "cancelled"
)

type VolunteerHistory struct {
	ID               uuid.UUID             `json:"id"`
	UserID           uuid.UUID             `json:"user_id"`
	OpportunityID    uuid.UUID             `json:"opportunity_id"`
	HoursContributed int                   `json:"hours_contributed"`
	StartDate        time.Time             `json:"start_date"`
	EndDate          *time.Time            `json:"end_date"`
	Status           string                `json:"status"`
	Feedback         string                `json:"feedback"`
	Rating           *int                  `json:"rating"`
	CreatedAt        time.Time             `json:"created_at"`
	Opportunity      *VolunteerOpportunity `json:"opportunity,omitempty"`
}

type ContactSubmission struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
