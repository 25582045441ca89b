package services

import (
	"context"

	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/models"
)

type ContactService struct {
	db *database.DB
}

func NewContactService(db *database.DB) *ContactService {
	return &ContactService{db: db}
}

func (s *ContactService) Create(ctx context.Context, firstName, lastName, email, message string) (*models.ContactSubmission, error) {
	var c models.ContactSubmission
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO contact_submissions (first_name, last_name, email, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, first_name, last_name, email, message, created_at
	`, firstName, lastName, email, message).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Message, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
