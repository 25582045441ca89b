package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/internal/services"
	"github.com/zarenu/zare-api/internal/social"
)

// SocialLoginInterface defines the methods used by handlers from social.Reconciler
type SocialLoginInterface interface {
	Login(ctx context.Context, req social.LoginRequest) (*social.LoginResult, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	Revoke(ctx context.Context, userID uuid.UUID) error
}

// IdentityServiceInterface defines the methods used by handlers from IdentityService
type IdentityServiceInterface interface {
	Providers(ctx context.Context, userID uuid.UUID) ([]string, error)
	Unlink(ctx context.Context, userID uuid.UUID, provider social.Provider) error
}

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Update(ctx context.Context, id uuid.UUID, upd services.UserUpdate) (*models.User, error)
}

// ProfileServiceInterface defines the methods used by handlers from ProfileService
type ProfileServiceInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, upd services.ProfileUpdate) (*models.Profile, error)
	ListWithUsers(ctx context.Context) ([]models.Profile, error)
}

// OpportunityServiceInterface defines the methods used by handlers from OpportunityService
type OpportunityServiceInterface interface {
	List(ctx context.Context) ([]models.VolunteerOpportunity, error)
	Create(ctx context.Context, o *models.VolunteerOpportunity) (*models.VolunteerOpportunity, error)
	Apply(ctx context.Context, userID, opportunityID uuid.UUID, startDate time.Time) (*models.VolunteerHistory, error)
	History(ctx context.Context, userID uuid.UUID) ([]models.VolunteerHistory, error)
}

// ContactServiceInterface defines the methods used by handlers from ContactService
type ContactServiceInterface interface {
	Create(ctx context.Context, firstName, lastName, email, message string) (*models.ContactSubmission, error)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendContactNotification(to string, c *models.ContactSubmission) error
}

// HealthChecker is satisfied by database.DB.
type HealthChecker interface {
	Health(ctx context.Context) error
}
