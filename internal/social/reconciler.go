package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zarenu/zare-api/internal/models"
)

// IdentityStore runs reconciliation steps inside a single transaction.
type IdentityStore interface {
	InTx(ctx context.Context, fn func(tx IdentityTx) error) error
}

// IdentityTx is the transaction-scoped view of users and linked identities.
// Lookups return ErrNotFound when nothing matches.
type IdentityTx interface {
	Lock(ctx context.Context, key string) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByIdentity(ctx context.Context, p Provider, externalID string) (*models.User, error)
	// CreateUser inserts u and fills its generated fields. It returns
	// ErrUsernameTaken without aborting the transaction when the username
	// already exists.
	CreateUser(ctx context.Context, u *models.User) error
	UpdateNames(ctx context.Context, userID uuid.UUID, firstName, lastName string) error
	// UpsertIdentity links (p, externalID) to userID, replacing metadata
	// wholesale when the link already exists. It returns ErrIdentityConflict
	// when the pair belongs to a different user.
	UpsertIdentity(ctx context.Context, userID uuid.UUID, p Provider, externalID string, metadata map[string]any) error
	EnsureProfile(ctx context.Context, userID uuid.UUID) error
	TouchLogin(ctx context.Context, userID uuid.UUID) error
}

type CredentialIssuer interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (string, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	// SetPictureIfEmpty stores ref unless the profile already has a picture.
	SetPictureIfEmpty(ctx context.Context, userID uuid.UUID, ref string) (bool, error)
}

// PictureFetcher downloads a remote image and returns a stored reference.
type PictureFetcher interface {
	Fetch(ctx context.Context, rawURL, name string) (string, error)
}

type LoginRequest struct {
	Provider    string
	AccessToken string
	UserData    Claims
}

type LoginResult struct {
	Token     string
	User      *models.User
	Profile   *models.Profile
	IsNewUser bool
	Provider  Provider
}

type Reconciler struct {
	registry    *Registry
	store       IdentityStore
	credentials CredentialIssuer
	profiles    ProfileStore
	pictures    PictureFetcher
	logger      zerolog.Logger
}

func NewReconciler(
	registry *Registry,
	store IdentityStore,
	credentials CredentialIssuer,
	profiles ProfileStore,
	pictures PictureFetcher,
	logger zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		registry:    registry,
		store:       store,
		credentials: credentials,
		profiles:    profiles,
		pictures:    pictures,
		logger:      logger,
	}
}

// Login maps a third-party assertion onto a local user, creating the user,
// link, profile and credential as needed. Errors are always *Error.
func (r *Reconciler) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if strings.TrimSpace(req.Provider) == "" || req.AccessToken == "" {
		return nil, newError(CodeMissingParameters, "Provider and access_token are required", nil)
	}

	provider, ok := ParseProvider(req.Provider)
	if !ok {
		return nil, newError(CodeInvalidProvider, "Unsupported provider: "+strings.ToLower(req.Provider), nil)
	}

	normalizer, ok := r.registry.Get(provider)
	if !ok {
		return nil, newError(CodeInvalidProvider, "Unsupported provider: "+provider.String(), nil)
	}

	ident, err := normalizer.Normalize(ctx, req.AccessToken, req.UserData)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, newError(provider.authErrorCode(), provider.Title()+" authentication error", err)
	}

	user, isNew, err := r.reconcile(ctx, ident)
	if err != nil {
		return nil, newError(CodeAuthenticationError, "Authentication failed", err)
	}

	token, err := r.credentials.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, newError(CodeAuthenticationError, "Authentication failed", fmt.Errorf("failed to issue credential: %w", err))
	}

	profile, err := r.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, newError(CodeAuthenticationError, "Authentication failed", fmt.Errorf("failed to load profile: %w", err))
	}

	pictureURL := req.UserData.Picture
	if pictureURL == "" {
		pictureURL = ident.Picture
	}
	r.attachPicture(ctx, user, profile, pictureURL)

	return &LoginResult{
		Token:     token,
		User:      user,
		Profile:   profile,
		IsNewUser: isNew,
		Provider:  provider,
	}, nil
}

func (r *Reconciler) reconcile(ctx context.Context, ident *Identity) (*models.User, bool, error) {
	var (
		user  *models.User
		isNew bool
	)

	err := r.store.InTx(ctx, func(tx IdentityTx) error {
		user, isNew = nil, false

		if err := tx.Lock(ctx, "identity:"+ident.Provider.String()+":"+ident.ExternalID); err != nil {
			return err
		}
		if ident.Email != "" && !ident.HasPlaceholderEmail() {
			if err := tx.Lock(ctx, "email:"+ident.Email); err != nil {
				return err
			}
		}

		var err error
		if ident.lookupByEmail() {
			user, err = tx.UserByEmail(ctx, ident.Email)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("failed to look up user by email: %w", err)
			}
		}

		if user == nil {
			user, err = tx.UserByIdentity(ctx, ident.Provider, ident.ExternalID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("failed to look up linked identity: %w", err)
			}
		}

		if user == nil {
			user, err = createUser(ctx, tx, ident)
			if err != nil {
				return err
			}
			isNew = true
		} else if err := backfillNames(ctx, tx, user, ident); err != nil {
			return err
		}

		if err := tx.UpsertIdentity(ctx, user.ID, ident.Provider, ident.ExternalID, ident.Metadata); err != nil {
			return fmt.Errorf("failed to link identity: %w", err)
		}
		if err := tx.EnsureProfile(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		if err := tx.TouchLogin(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to record login: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, isNew, nil
}

// createUser tries base, base1, base2, ... until an insert succeeds. The
// stored email is the identity's address when nobody owns it, then the
// id-derived placeholder, then a placeholder derived from the username.
func createUser(ctx context.Context, tx IdentityTx, ident *Identity) (*models.User, error) {
	email, err := freeEmail(ctx, tx, ident)
	if err != nil {
		return nil, err
	}

	first, last := ident.names()
	base := ident.usernameBase()

	for n := 0; ; n++ {
		username := base
		if n > 0 {
			username = fmt.Sprintf("%s%d", base, n)
		}

		addr := email
		if addr == "" {
			addr = PlaceholderEmail(ident.Provider, username)
			taken, err := emailTaken(ctx, tx, addr)
			if err != nil {
				return nil, err
			}
			if taken {
				continue
			}
		}

		u := &models.User{
			Username:  username,
			Email:     addr,
			FirstName: first,
			LastName:  last,
		}
		err := tx.CreateUser(ctx, u)
		if errors.Is(err, ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return u, nil
	}
}

// freeEmail returns the first unowned address among the identity's email and
// its id placeholder, or "" when both belong to existing users.
func freeEmail(ctx context.Context, tx IdentityTx, ident *Identity) (string, error) {
	candidates := []string{ident.Email}
	if !ident.HasPlaceholderEmail() {
		candidates = append(candidates, PlaceholderEmail(ident.Provider, ident.ExternalID))
	}

	for _, email := range candidates {
		if email == "" {
			continue
		}
		taken, err := emailTaken(ctx, tx, email)
		if err != nil {
			return "", err
		}
		if !taken {
			return email, nil
		}
	}
	return "", nil
}

// emailTaken locks email for the rest of the transaction and reports whether
// a user already owns it.
func emailTaken(ctx context.Context, tx IdentityTx, email string) (bool, error) {
	if err := tx.Lock(ctx, "email:"+email); err != nil {
		return false, err
	}
	_, err := tx.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return true, nil
}

// backfillNames fills empty name fields only; populated ones are never
// overwritten.
func backfillNames(ctx context.Context, tx IdentityTx, user *models.User, ident *Identity) error {
	first, last := user.FirstName, user.LastName
	if first == "" && ident.FirstName != "" {
		first = ident.FirstName
	}
	if last == "" && ident.LastName != "" {
		last = ident.LastName
	}
	if first == user.FirstName && last == user.LastName {
		return nil
	}

	if err := tx.UpdateNames(ctx, user.ID, first, last); err != nil {
		return fmt.Errorf("failed to update names: %w", err)
	}
	user.FirstName, user.LastName = first, last
	return nil
}

// attachPicture downloads pictureURL into an empty profile picture. Failures
// are logged and otherwise ignored.
func (r *Reconciler) attachPicture(ctx context.Context, user *models.User, profile *models.Profile, pictureURL string) {
	if pictureURL == "" || r.pictures == nil || profile == nil || profile.ProfilePicture != nil {
		return
	}

	ref, err := r.pictures.Fetch(ctx, pictureURL, user.Username+"_profile.jpg")
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", user.ID.String()).Str("url", pictureURL).Msg("failed to fetch profile picture")
		return
	}

	stored, err := r.profiles.SetPictureIfEmpty(ctx, user.ID, ref)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to save profile picture")
		return
	}
	if stored {
		profile.ProfilePicture = &ref
	}
}
