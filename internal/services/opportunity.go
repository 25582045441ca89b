package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/models"
)

var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrAlreadyApplied      = errors.New("already applied to this opportunity")
)

const opportunityColumns = `id, title, description, organization, location, skills_required,
	date_posted, deadline, hours_required, created_by`

type OpportunityService struct {
	db *database.DB
}

func NewOpportunityService(db *database.DB) *OpportunityService {
	return &OpportunityService{db: db}
}

func scanOpportunity(row scanner) (*models.VolunteerOpportunity, error) {
	var o models.VolunteerOpportunity
	if err := row.Scan(
		&o.ID, &o.Title, &o.Description, &o.Organization, &o.Location, &o.SkillsRequired,
		&o.DatePosted, &o.Deadline, &o.HoursRequired, &o.CreatedBy,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns all opportunities, newest first.
func (s *OpportunityService) List(ctx context.Context) ([]models.VolunteerOpportunity, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+opportunityColumns+`
		FROM volunteer_opportunities
		ORDER BY date_posted DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opportunities := []models.VolunteerOpportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opportunities = append(opportunities, *o)
	}
	return opportunities, rows.Err()
}

func (s *OpportunityService) GetByID(ctx context.Context, id uuid.UUID) (*models.VolunteerOpportunity, error) {
	o, err := scanOpportunity(s.db.Pool.QueryRow(ctx, `
		SELECT `+opportunityColumns+` FROM volunteer_opportunities WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOpportunityNotFound
	}
	return o, err
}

func (s *OpportunityService) Create(ctx context.Context, o *models.VolunteerOpportunity) (*models.VolunteerOpportunity, error) {
	skills := o.SkillsRequired
	if skills == nil {
		skills = []string{}
	}

	return scanOpportunity(s.db.Pool.QueryRow(ctx, `
		INSERT INTO volunteer_opportunities
			(title, description, organization, location, skills_required, deadline, hours_required, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+opportunityColumns,
		o.Title, o.Description, o.Organization, o.Location, skills, o.Deadline, o.HoursRequired, o.CreatedBy))
}

// Apply records an application by userID starting at startDate. Applying
// twice returns ErrAlreadyApplied.
func (s *OpportunityService) Apply(ctx context.Context, userID, opportunityID uuid.UUID, startDate time.Time) (*models.VolunteerHistory, error) {
	opportunity, err := s.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	var h models.VolunteerHistory
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO volunteer_history (user_id, opportunity_id, start_date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, opportunity_id) DO NOTHING
		RETURNING id, user_id, opportunity_id, hours_contributed, start_date, end_date,
			status, feedback, rating, created_at
	`, userID, opportunityID, startDate, models.HistoryStatusApplied).Scan(
		&h.ID, &h.UserID, &h.OpportunityID, &h.HoursContributed, &h.StartDate, &h.EndDate,
		&h.Status, &h.Feedback, &h.Rating, &h.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyApplied
	}
	if err != nil {
		return nil, err
	}
	h.Opportunity = opportunity
	return &h, nil
}

// History returns the user's volunteer history, newest first.
func (s *OpportunityService) History(ctx context.Context, userID uuid.UUID) ([]models.VolunteerHistory, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT h.id, h.user_id, h.opportunity_id, h.hours_contributed, h.start_date, h.end_date,
			h.status, h.feedback, h.rating, h.created_at,
			o.id, o.title, o.description, o.organization, o.location, o.skills_required,
			o.date_posted, o.deadline, o.hours_required, o.created_by
		FROM volunteer_history h
		INNER JOIN volunteer_opportunities o ON o.id = h.opportunity_id
		WHERE h.user_id = $1
		ORDER BY h.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []models.VolunteerHistory{}
	for rows.Next() {
		var h models.VolunteerHistory
		var o models.VolunteerOpportunity
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.OpportunityID, &h.HoursContributed, &h.StartDate, &h.EndDate,
			&h.Status, &h.Feedback, &h.Rating, &h.CreatedAt,
			&o.ID, &o.Title, &o.Description, &o.Organization, &o.Location, &o.SkillsRequired,
			&o.DatePosted, &o.Deadline, &o.HoursRequired, &o.CreatedBy,
		); err != nil {
			return nil, err
		}
		h.Opportunity = &o
		history = append(history, h)
	}
	return history, rows.Err()
}
