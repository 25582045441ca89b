package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/internal/social"
)

var ErrProfileNotFound = errors.New("profile not found")

const profileColumns = `id, user_id, phone, bio, location, profile_picture, volunteer_skills,
	volunteer_interests, availability, volunteer_hours, certifications,
	notification_preferences, privacy_settings, created_at, updated_at`

func profileDest(p *models.Profile) []any {
	return []any{
		&p.ID, &p.UserID, &p.Phone, &p.Bio, &p.Location, &p.ProfilePicture, &p.VolunteerSkills,
		&p.VolunteerInterests, &p.Availability, &p.VolunteerHours, &p.Certifications,
		&p.NotificationPreferences, &p.PrivacySettings, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanProfile(row scanner) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(profileDest(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

type ProfileService struct {
	db *database.DB
}

func NewProfileService(db *database.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetByUserID returns social.ErrNotFound when the user has no profile, so the
// reconciler can treat it like any other store miss.
func (s *ProfileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := scanProfile(s.db.Pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, social.ErrNotFound
	}
	return profile, err
}

func (s *ProfileService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, err
	}
	return s.GetByUserID(ctx, userID)
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// untouched; volunteer_hours is not editable.
type ProfileUpdate struct {
	Phone                   *string
	Bio                     *string
	Location                *string
	VolunteerSkills         *[]string
	VolunteerInterests      *[]string
	Availability            *map[string]any
	Certifications          *[]string
	NotificationPreferences *map[string]any
	PrivacySettings         *map[string]any
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.Profile, error) {
	profile, err := scanProfile(s.db.Pool.QueryRow(ctx, `
		UPDATE profiles SET
			phone = COALESCE($1, phone),
			bio = COALESCE($2, bio),
			location = COALESCE($3, location),
			volunteer_skills = COALESCE($4, volunteer_skills),
			volunteer_interests = COALESCE($5, volunteer_interests),
			availability = COALESCE($6, availability),
			certifications = COALESCE($7, certifications),
			notification_preferences = COALESCE($8, notification_preferences),
			privacy_settings = COALESCE($9, privacy_settings),
			updated_at = NOW()
		WHERE user_id = $10
		RETURNING `+profileColumns,
		upd.Phone, upd.Bio, upd.Location, upd.VolunteerSkills, upd.VolunteerInterests,
		upd.Availability, upd.Certifications, upd.NotificationPreferences, upd.PrivacySettings,
		userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	return profile, err
}

// SetPictureIfEmpty stores ref as the profile picture unless one is already
// set, reporting whether it was stored.
func (s *ProfileService) SetPictureIfEmpty(ctx context.Context, userID uuid.UUID, ref string) (bool, error) {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE profiles SET profile_picture = $1, updated_at = NOW()
		WHERE user_id = $2 AND profile_picture IS NULL
	`, ref, userID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// ListWithUsers returns every profile with its user, newest first.
func (s *ProfileService) ListWithUsers(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT p.id, p.user_id, p.phone, p.bio, p.location, p.profile_picture, p.volunteer_skills,
			p.volunteer_interests, p.availability, p.volunteer_hours, p.certifications,
			p.notification_preferences, p.privacy_settings, p.created_at, p.updated_at,
			u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
			u.is_staff, u.date_joined, u.last_login, u.updated_at
		FROM profiles p
		INNER JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		var p models.Profile
		var u models.User
		dest := append(profileDest(&p),
			&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
			&u.IsStaff, &u.DateJoined, &u.LastLogin, &u.UpdatedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		p.User = &u
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
