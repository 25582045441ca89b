package dto

import (
	"time"

	"github.com/google/uuid"
)

type OpportunityResponse struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Organization   string        `json:"organization"`
	Location       string        `json:"location"`
	SkillsRequired []string      `json:"skills_required"`
	DatePosted     time.Time     `json:"date_posted"`
	Deadline       *time.Time    `json:"deadline"`
	HoursRequired  int           `json:"hours_required"`
	CreatedBy      *UserResponse `json:"created_by"`
}

type OpportunityListResponse struct {
	Success       bool                  `json:"success"`
	Count         int                   `json:"count"`
	Opportunities []OpportunityResponse `json:"opportunities"`
}

type CreateOpportunityRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Organization   string     `json:"organization"`
	Location       string     `json:"location"`
	SkillsRequired []string   `json:"skills_required"`
	Deadline       *time.Time `json:"deadline"`
	HoursRequired  int        `json:"hours_required"`
}

type OpportunityEnvelope struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Opportunity OpportunityResponse `json:"opportunity"`
}

type ApplyRequest struct {
	StartDate *time.Time `json:"start_date"`
}

type HistoryResponse struct {
	ID               uuid.UUID           `json:"id"`
	User             *UserResponse       `json:"user,omitempty"`
	Opportunity      OpportunityResponse `json:"opportunity"`
	HoursContributed int                 `json:"hours_contributed"`
	StartDate        time.Time           `json:"start_date"`
	EndDate          *time.Time          `json:"end_date"`
	Status           string              `json:"status"`
	Feedback         string              `json:"feedback"`
	Rating           *int                `json:"rating"`
	CreatedAt        time.Time           `json:"created_at"`
}

type ApplicationResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Application HistoryResponse `json:"application"`
}

type HistoryListResponse struct {
	Success bool              `json:"success"`
	Count   int               `json:"count"`
	History []HistoryResponse `json:"history"`
}
