package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/internal/services"
	"github.com/zarenu/zare-api/internal/social"
)

// MockSocialLogin mocks the social login reconciler
type MockSocialLogin struct {
	mock.Mock
}

func (m *MockSocialLogin) Login(ctx context.Context, req social.LoginRequest) (*social.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*social.LoginResult), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockTokenService) Revoke(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockIdentityService mocks the IdentityService
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) Providers(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockIdentityService) Unlink(ctx context.Context, userID uuid.UUID, provider social.Provider) error {
	args := m.Called(ctx, userID, provider)
	return args.Error(0)
}

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, upd services.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockProfileService mocks the ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID uuid.UUID, upd services.ProfileUpdate) (*models.Profile, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) ListWithUsers(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

// MockOpportunityService mocks the OpportunityService
type MockOpportunityService struct {
	mock.Mock
}

func (m *MockOpportunityService) List(ctx context.Context) ([]models.VolunteerOpportunity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VolunteerOpportunity), args.Error(1)
}

func (m *MockOpportunityService) Create(ctx context.Context, o *models.VolunteerOpportunity) (*models.VolunteerOpportunity, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VolunteerOpportunity), args.Error(1)
}

func (m *MockOpportunityService) Apply(ctx context.Context, userID, opportunityID uuid.UUID, startDate time.Time) (*models.VolunteerHistory, error) {
	args := m.Called(ctx, userID, opportunityID, startDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VolunteerHistory), args.Error(1)
}

func (m *MockOpportunityService) History(ctx context.Context, userID uuid.UUID) ([]models.VolunteerHistory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VolunteerHistory), args.Error(1)
}

// MockContactService mocks the ContactService
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Create(ctx context.Context, firstName, lastName, email, message string) (*models.ContactSubmission, error) {
	args := m.Called(ctx, firstName, lastName, email, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactSubmission), args.Error(1)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendContactNotification(to string, c *models.ContactSubmission) error {
	args := m.Called(to, c)
	return args.Error(0)
}

// MockHealthChecker mocks the database health probe
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
