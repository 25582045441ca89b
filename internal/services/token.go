package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

const tokenKeyBytes = 20

// TokenService issues the opaque per-user credential. A user holds at most
// one key; it survives logins and is removed on logout.
type TokenService struct {
	db *database.DB
}

func NewTokenService(db *database.DB) *TokenService {
	return &TokenService{db: db}
}

func GenerateKey() (string, error) {
	b := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GetOrCreate returns the user's existing key or stores a fresh one. The
// no-op update on conflict makes RETURNING yield the winning row.
func (s *TokenService) GetOrCreate(ctx context.Context, userID uuid.UUID) (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}

	var stored string
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO auth_tokens (key, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING key
	`, key, userID).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return stored, nil
}

// Authenticate resolves a key to its user.
func (s *TokenService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
			u.is_staff, u.date_joined, u.last_login, u.updated_at
		FROM auth_tokens t
		INNER JOIN users u ON u.id = t.user_id
		WHERE t.key = $1
	`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	return user, err
}

func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	return err
}
