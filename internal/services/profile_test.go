package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/social"
)

var profileRowColumns = []string{
	"id", "user_id", "phone", "bio", "location", "profile_picture", "volunteer_skills",
	"volunteer_interests", "availability", "volunteer_hours", "certifications",
	"notification_preferences", "privacy_settings", "created_at", "updated_at",
}

func setupProfileService(t *testing.T) (*ProfileService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewProfileService(db), mock
}

func profileValues(userID uuid.UUID, bio, location string) []any {
	now := time.Now()
	return []any{
		uuid.New(), userID, nil, bio, location, nil, []string{"first aid"},
		[]string{}, map[string]any{}, 12, []string{},
		map[string]any{"email": true}, map[string]any{}, now, now,
	}
}

func TestProfileService_GetByUserID(t *testing.T) {
	svc, mock := setupProfileService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE user_id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(profileRowColumns).AddRow(profileValues(userID, "Hi", "Lagos")...))

	profile, err := svc.GetByUserID(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, profile.UserID)
	assert.Equal(t, []string{"first aid"}, profile.VolunteerSkills)
	assert.Equal(t, 12, profile.VolunteerHours)
	assert.True(t, profile.IsCompleted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_GetByUserID_NotFound(t *testing.T) {
	svc, mock := setupProfileService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM profiles`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByUserID(ctx, userID)

	assert.ErrorIs(t, err, social.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_GetOrCreate(t *testing.T) {
	svc, mock := setupProfileService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`INSERT INTO profiles .+ ON CONFLICT \(user_id\) DO NOTHING`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT .+ FROM profiles`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(profileRowColumns).AddRow(profileValues(userID, "", "")...))

	profile, err := svc.GetOrCreate(ctx, userID)

	require.NoError(t, err)
	assert.False(t, profile.IsCompleted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_Update(t *testing.T) {
	svc, mock := setupProfileService(t)
	ctx := context.Background()
	userID := uuid.New()
	bio := "Weekend volunteer"
	skills := []string{"cooking", "driving"}

	values := profileValues(userID, bio, "Accra")
	values[6] = skills

	mock.ExpectQuery(`UPDATE profiles SET`).
		WithArgs(pgxmock.AnyArg(), &bio, pgxmock.AnyArg(), &skills,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), userID).
		WillReturnRows(pgxmock.NewRows(profileRowColumns).AddRow(values...))

	profile, err := svc.Update(ctx, userID, ProfileUpdate{Bio: &bio, VolunteerSkills: &skills})

	require.NoError(t, err)
	assert.Equal(t, bio, profile.Bio)
	assert.Equal(t, skills, profile.VolunteerSkills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_Update_NotFound(t *testing.T) {
	svc, mock := setupProfileService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`UPDATE profiles SET`).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Update(ctx, userID, ProfileUpdate{})

	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileService_SetPictureIfEmpty(t *testing.T) {
	svc, mock := setupProfileService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE profiles SET profile_picture .+ profile_picture IS NULL`).
		WithArgs("profiles/alice_profile.jpg", userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE profiles SET profile_picture`).
		WithArgs("profiles/alice_profile.jpg", userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	stored, err := svc.SetPictureIfEmpty(ctx, userID, "profiles/alice_profile.jpg")
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = svc.SetPictureIfEmpty(ctx, userID, "profiles/alice_profile.jpg")
	require.NoError(t, err)
	assert.False(t, stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_ListWithUsers(t *testing.T) {
	svc, mock := setupProfileService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	columns := append(append([]string{}, profileRowColumns...),
		"u_id", "username", "email", "first_name", "last_name", "password_hash",
		"is_staff", "date_joined", "last_login", "u_updated_at")
	values := append(profileValues(userID, "Bio", "Abuja"),
		userID, "alice", "alice@example.com", "Alice", "Smith", nil, false, now, nil, now)

	mock.ExpectQuery(`FROM profiles p\s+INNER JOIN users u`).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(values...))

	profiles, err := svc.ListWithUsers(ctx)

	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.NotNil(t, profiles[0].User)
	assert.Equal(t, "alice", profiles[0].User.Username)
	assert.Equal(t, "Alice Smith", profiles[0].User.FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}
