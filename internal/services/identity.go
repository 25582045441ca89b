package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/internal/social"
)

var ErrAccountNotFound = errors.New("social account not found")

// IdentityService stores users and their linked social accounts.
type IdentityService struct {
	db *database.DB
}

func NewIdentityService(db *database.DB) *IdentityService {
	return &IdentityService{db: db}
}

func (s *IdentityService) InTx(ctx context.Context, fn func(tx social.IdentityTx) error) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&identityTx{tx: tx})
	})
}

// Providers lists the providers linked to a user, oldest link first.
func (s *IdentityService) Providers(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT provider FROM social_accounts
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

func (s *IdentityService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.SocialAccount, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, provider, uid, extra_data, created_at, updated_at
		FROM social_accounts
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.SocialAccount
	for rows.Next() {
		var a models.SocialAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Provider, &a.UID, &a.ExtraData, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Unlink removes the user's account for provider. It returns
// ErrAccountNotFound when there is nothing to remove.
func (s *IdentityService) Unlink(ctx context.Context, userID uuid.UUID, provider social.Provider) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM social_accounts WHERE user_id = $1 AND provider = $2
	`, userID, provider.String())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

type identityTx struct {
	tx pgx.Tx
}

func (t *identityTx) Lock(ctx context.Context, key string) error {
	return database.LockKey(ctx, t.tx, key)
}

func (t *identityTx) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(t.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, social.ErrNotFound
	}
	return user, err
}

func (t *identityTx) UserByIdentity(ctx context.Context, p social.Provider, externalID string) (*models.User, error) {
	user, err := scanUser(t.tx.QueryRow(ctx, `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
			u.is_staff, u.date_joined, u.last_login, u.updated_at
		FROM users u
		INNER JOIN social_accounts sa ON sa.user_id = u.id
		WHERE sa.provider = $1 AND sa.uid = $2
	`, p.String(), externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, social.ErrNotFound
	}
	return user, err
}

func (t *identityTx) CreateUser(ctx context.Context, u *models.User) error {
	created, err := scanUser(t.tx.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING
		RETURNING `+userColumns,
		u.Username, u.Email, u.FirstName, u.LastName))
	if errors.Is(err, pgx.ErrNoRows) {
		return social.ErrUsernameTaken
	}
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

func (t *identityTx) UpdateNames(ctx context.Context, userID uuid.UUID, firstName, lastName string) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE users SET first_name = $1, last_name = $2, updated_at = NOW()
		WHERE id = $3
	`, firstName, lastName, userID)
	return err
}

func (t *identityTx) UpsertIdentity(ctx context.Context, userID uuid.UUID, p social.Provider, externalID string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}

	// The WHERE clause turns a link owned by someone else into zero rows.
	var owner uuid.UUID
	err := t.tx.QueryRow(ctx, `
		INSERT INTO social_accounts (user_id, provider, uid, extra_data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, uid) DO UPDATE
			SET extra_data = EXCLUDED.extra_data, updated_at = NOW()
			WHERE social_accounts.user_id = EXCLUDED.user_id
		RETURNING user_id
	`, userID, p.String(), externalID, metadata).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return social.ErrIdentityConflict
	}
	if isUniqueViolation(err) {
		// (user_id, provider): the user already has a different account here.
		return fmt.Errorf("user already linked to %s: %w", p, social.ErrIdentityConflict)
	}
	return err
}

func (t *identityTx) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (t *identityTx) TouchLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
