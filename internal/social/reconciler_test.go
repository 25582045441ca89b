package social

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarenu/zare-api/internal/models"
)

type identityKey struct {
	provider Provider
	uid      string
}

type linkRecord struct {
	userID   uuid.UUID
	metadata map[string]any
}

// memStore is an in-memory IdentityStore. InTx serializes transactions and
// discards writes when fn fails.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	links    map[identityKey]linkRecord
	profiles map[uuid.UUID]*models.Profile
	locks    []string
	failOn   string
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]*models.User{},
		links:    map[identityKey]linkRecord{},
		profiles: map[uuid.UUID]*models.Profile{},
	}
}

func (s *memStore) InTx(ctx context.Context, fn func(tx IdentityTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:    s,
		users:    map[uuid.UUID]*models.User{},
		links:    map[identityKey]linkRecord{},
		profiles: map[uuid.UUID]*models.Profile{},
	}
	for k, v := range s.users {
		u := *v
		tx.users[k] = &u
	}
	for k, v := range s.links {
		tx.links[k] = v
	}
	for k, v := range s.profiles {
		tx.profiles[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}
	s.users, s.links, s.profiles = tx.users, tx.links, tx.profiles
	return nil
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *memStore) addUser(username, email string) *models.User {
	u := &models.User{ID: uuid.New(), Username: username, Email: email, DateJoined: time.Now()}
	s.users[u.ID] = u
	s.profiles[u.ID] = &models.Profile{ID: uuid.New(), UserID: u.ID}
	return u
}

// errDuplicateEmail stands in for the users.email unique violation, which
// aborts the transaction.
var errDuplicateEmail = errors.New("duplicate key value violates unique constraint \"users_email_key\"")

type memTx struct {
	store    *memStore
	users    map[uuid.UUID]*models.User
	links    map[identityKey]linkRecord
	profiles map[uuid.UUID]*models.Profile
}

func (tx *memTx) fail(op string) error {
	if tx.store.failOn == op {
		return errors.New(op + " failed")
	}
	return nil
}

func (tx *memTx) Lock(ctx context.Context, key string) error {
	tx.store.locks = append(tx.store.locks, key)
	return nil
}

func (tx *memTx) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range tx.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (tx *memTx) UserByIdentity(ctx context.Context, p Provider, externalID string) (*models.User, error) {
	link, ok := tx.links[identityKey{p, externalID}]
	if !ok {
		return nil, ErrNotFound
	}
	c := *tx.users[link.userID]
	return &c, nil
}

func (tx *memTx) CreateUser(ctx context.Context, u *models.User) error {
	if err := tx.fail("create"); err != nil {
		return err
	}
	for _, existing := range tx.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	for _, existing := range tx.users {
		if existing.Email == u.Email {
			return errDuplicateEmail
		}
	}
	u.ID = uuid.New()
	u.DateJoined = time.Now()
	c := *u
	tx.users[u.ID] = &c
	return nil
}

func (tx *memTx) UpdateNames(ctx context.Context, userID uuid.UUID, firstName, lastName string) error {
	u := tx.users[userID]
	u.FirstName, u.LastName = firstName, lastName
	return nil
}

func (tx *memTx) UpsertIdentity(ctx context.Context, userID uuid.UUID, p Provider, externalID string, metadata map[string]any) error {
	if err := tx.fail("link"); err != nil {
		return err
	}
	key := identityKey{p, externalID}
	if existing, ok := tx.links[key]; ok && existing.userID != userID {
		return ErrIdentityConflict
	}
	tx.links[key] = linkRecord{userID: userID, metadata: metadata}
	return nil
}

func (tx *memTx) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	if _, ok := tx.profiles[userID]; !ok {
		tx.profiles[userID] = &models.Profile{ID: uuid.New(), UserID: userID}
	}
	return nil
}

func (tx *memTx) TouchLogin(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	tx.users[userID].LastLogin = &now
	return nil
}

type memCredentials struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]string
}

func (c *memCredentials) GetOrCreate(ctx context.Context, userID uuid.UUID) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens == nil {
		c.tokens = map[uuid.UUID]string{}
	}
	if t, ok := c.tokens[userID]; ok {
		return t, nil
	}
	t := uuid.NewString()
	c.tokens[userID] = t
	return t, nil
}

type memProfiles struct {
	store *memStore
}

func (p *memProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, ok := p.store.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *prof
	return &c, nil
}

func (p *memProfiles) SetPictureIfEmpty(ctx context.Context, userID uuid.UUID, ref string) (bool, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof := p.store.profiles[userID]
	if prof.ProfilePicture != nil {
		return false, nil
	}
	prof.ProfilePicture = &ref
	return true, nil
}

type stubPictures struct {
	calls []string
	err   error
}

func (s *stubPictures) Fetch(ctx context.Context, rawURL, name string) (string, error) {
	s.calls = append(s.calls, rawURL)
	if s.err != nil {
		return "", s.err
	}
	return "profiles/" + name, nil
}

// fixedNormalizer returns a canned identity for any token.
type fixedNormalizer struct {
	provider Provider
	ident    func() *Identity
	err      error
}

func (n *fixedNormalizer) Provider() Provider { return n.provider }

func (n *fixedNormalizer) Normalize(ctx context.Context, token string, claims Claims) (*Identity, error) {
	if n.err != nil {
		return nil, n.err
	}
	return n.ident(), nil
}

type reconcilerFixture struct {
	store    *memStore
	creds    *memCredentials
	pictures *stubPictures
	r        *Reconciler
}

func newFixture(normalizers ...Normalizer) *reconcilerFixture {
	store := newMemStore()
	creds := &memCredentials{}
	pictures := &stubPictures{}
	r := NewReconciler(NewRegistry(normalizers...), store, creds, &memProfiles{store: store}, pictures, zerolog.Nop())
	return &reconcilerFixture{store: store, creds: creds, pictures: pictures, r: r}
}

func googleIdentity(id, email string) func() *Identity {
	return func() *Identity {
		return &Identity{
			Provider:      Google,
			ExternalID:    id,
			Email:         email,
			EmailVerified: true,
			FirstName:     "Alice",
			LastName:      "Smith",
			Metadata:      map[string]any{"id": id},
		}
	}
}

func TestReconciler_MissingParameters(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("1", "a@x.com")})

	_, err := f.r.Login(context.Background(), LoginRequest{Provider: "google"})
	requireCode(t, err, CodeMissingParameters)

	_, err = f.r.Login(context.Background(), LoginRequest{AccessToken: "tok"})
	requireCode(t, err, CodeMissingParameters)

	assert.Equal(t, 0, f.store.userCount())
}

func TestReconciler_InvalidProvider(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("1", "a@x.com")})

	_, err := f.r.Login(context.Background(), LoginRequest{Provider: "Twitter", AccessToken: "tok"})
	requireCode(t, err, CodeInvalidProvider)
	assert.Equal(t, "Unsupported provider: twitter", AsError(err).Message)
	assert.Equal(t, 0, f.store.userCount())
}

func TestReconciler_NormalizerErrorPassesThrough(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, err: newError(CodeInvalidToken, "Invalid Google access token", nil)})

	_, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	requireCode(t, err, CodeInvalidToken)
	assert.Equal(t, 0, f.store.userCount())
}

func TestReconciler_UnclassifiedNormalizerError(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, err: errors.New("boom")})

	_, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	requireCode(t, err, CodeGoogleAuthError)
}

func TestReconciler_NewUser(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("g-1", "alice@example.com")})

	res, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	require.NoError(t, err)

	assert.True(t, res.IsNewUser)
	assert.Equal(t, Google, res.Provider)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, "Alice", res.User.FirstName)
	assert.NotEmpty(t, res.Token)
	require.NotNil(t, res.Profile)
	assert.Equal(t, res.User.ID, res.Profile.UserID)
	assert.Contains(t, f.store.locks, "identity:google:g-1")
	assert.Contains(t, f.store.locks, "email:alice@example.com")
}

func TestReconciler_RepeatLoginIsIdempotent(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("g-1", "alice@example.com")})
	ctx := context.Background()
	req := LoginRequest{Provider: "google", AccessToken: "tok"}

	first, err := f.r.Login(ctx, req)
	require.NoError(t, err)
	second, err := f.r.Login(ctx, req)
	require.NoError(t, err)

	assert.False(t, second.IsNewUser)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, 1, f.store.userCount())
	assert.Len(t, f.store.links, 1)
}

func TestReconciler_UsernameCollision(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("g-2", "alice@other.com")})
	f.store.addUser("alice", "alice@example.com")
	f.store.addUser("alice1", "alice1@example.com")

	res, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	require.NoError(t, err)

	assert.True(t, res.IsNewUser)
	assert.Equal(t, "alice2", res.User.Username)
}

func TestReconciler_MatchesExistingEmail(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("g-3", "bob@example.com")})
	existing := f.store.addUser("bobby", "bob@example.com")

	res, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	require.NoError(t, err)

	assert.False(t, res.IsNewUser)
	assert.Equal(t, existing.ID, res.User.ID)
	assert.Equal(t, "Alice", res.User.FirstName, "empty names are backfilled")
	assert.Equal(t, existing.ID, f.store.links[identityKey{Google, "g-3"}].userID)
}

func TestReconciler_DoesNotOverwriteNames(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("g-3", "bob@example.com")})
	existing := f.store.addUser("bobby", "bob@example.com")
	existing.FirstName = "Robert"

	res, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	require.NoError(t, err)

	assert.Equal(t, "Robert", res.User.FirstName)
	assert.Equal(t, "Smith", res.User.LastName)
}

func TestReconciler_FacebookPlaceholderRepeat(t *testing.T) {
	fb := &fixedNormalizer{provider: Facebook, ident: func() *Identity {
		return &Identity{
			Provider:   Facebook,
			ExternalID: "555",
			Email:      PlaceholderEmail(Facebook, "555"),
			FullName:   "Carl Jung",
			Metadata:   map[string]any{"id": "555"},
		}
	}}
	f := newFixture(fb)
	ctx := context.Background()
	req := LoginRequest{Provider: "facebook", AccessToken: "tok"}

	first, err := f.r.Login(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.IsNewUser)
	assert.Equal(t, "fb_555", first.User.Username)
	assert.Equal(t, "555@facebook.temp", first.User.Email)
	assert.Equal(t, "Carl", first.User.FirstName)
	assert.Equal(t, "Jung", first.User.LastName)

	second, err := f.r.Login(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.IsNewUser)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, f.store.userCount())
}

func TestReconciler_UnverifiedEmailDoesNotMatch(t *testing.T) {
	apple := &fixedNormalizer{provider: Apple, ident: func() *Identity {
		return &Identity{
			Provider:   Apple,
			ExternalID: "apple-sub-1",
			Email:      "victim@example.com",
			Metadata:   map[string]any{"sub": "apple-sub-1"},
		}
	}}
	f := newFixture(apple)
	victim := f.store.addUser("victim", "victim@example.com")

	res, err := f.r.Login(context.Background(), LoginRequest{Provider: "apple", AccessToken: "tok"})
	require.NoError(t, err)

	assert.True(t, res.IsNewUser)
	assert.NotEqual(t, victim.ID, res.User.ID)
	assert.Equal(t, "apple-sub-1@apple.temp", res.User.Email)
}

func TestReconciler_ReloginAfterUnlinkKeepsPlaceholderUnique(t *testing.T) {
	fb := &fixedNormalizer{provider: Facebook, ident: func() *Identity {
		return &Identity{
			Provider:   Facebook,
			ExternalID: "555",
			Email:      PlaceholderEmail(Facebook, "555"),
			Metadata:   map[string]any{"id": "555"},
		}
	}}
	f := newFixture(fb)
	ctx := context.Background()
	req := LoginRequest{Provider: "facebook", AccessToken: "tok"}

	first, err := f.r.Login(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "555@facebook.temp", first.User.Email)

	f.store.mu.Lock()
	delete(f.store.links, identityKey{Facebook, "555"})
	f.store.mu.Unlock()

	second, err := f.r.Login(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.IsNewUser)
	assert.NotEqual(t, first.User.ID, second.User.ID)
	assert.Equal(t, "fb_5551", second.User.Username)
	assert.Equal(t, "fb_5551@facebook.temp", second.User.Email)
	assert.Equal(t, second.User.ID, f.store.links[identityKey{Facebook, "555"}].userID)

	third, err := f.r.Login(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.IsNewUser)
	assert.Equal(t, second.User.ID, third.User.ID)
}

func TestReconciler_UnverifiedEmailAndPlaceholderTaken(t *testing.T) {
	apple := &fixedNormalizer{provider: Apple, ident: func() *Identity {
		return &Identity{
			Provider:   Apple,
			ExternalID: "apple-sub-2",
			Email:      "victim@example.com",
			Metadata:   map[string]any{"sub": "apple-sub-2"},
		}
	}}
	f := newFixture(apple)
	f.store.addUser("victim", "victim@example.com")
	f.store.addUser("old_apple", "apple-sub-2@apple.temp")
	f.store.addUser("victim1", "victim1@apple.temp")

	res, err := f.r.Login(context.Background(), LoginRequest{Provider: "apple", AccessToken: "tok"})
	require.NoError(t, err)

	assert.True(t, res.IsNewUser)
	assert.Equal(t, "victim2", res.User.Username)
	assert.Equal(t, "victim2@apple.temp", res.User.Email)
}

func TestReconciler_IdentityConflictRollsBack(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("g-owned", "carol@example.com")})
	owner := f.store.addUser("owner", "owner@example.com")
	f.store.links[identityKey{Google, "g-owned"}] = linkRecord{userID: owner.ID}
	f.store.addUser("carol", "carol@example.com")

	_, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	requireCode(t, err, CodeAuthenticationError)
	assert.ErrorIs(t, err, ErrIdentityConflict)
	assert.Equal(t, owner.ID, f.store.links[identityKey{Google, "g-owned"}].userID)
}

func TestReconciler_StoreFailureLeavesNoUser(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("g-5", "dave@example.com")})
	f.store.failOn = "link"

	_, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	requireCode(t, err, CodeAuthenticationError)
	assert.Equal(t, 0, f.store.userCount())
}

func TestReconciler_PictureAttached(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: func() *Identity {
		i := googleIdentity("g-6", "erin@example.com")()
		i.Picture = "https://provider.example/p.jpg"
		return i
	}})

	res, err := f.r.Login(context.Background(), LoginRequest{
		Provider:    "google",
		AccessToken: "tok",
		UserData:    Claims{Picture: "https://client.example/p.jpg"},
	})
	require.NoError(t, err)

	require.Len(t, f.pictures.calls, 1)
	assert.Equal(t, "https://client.example/p.jpg", f.pictures.calls[0])
	require.NotNil(t, res.Profile.ProfilePicture)
	assert.Equal(t, "profiles/erin_profile.jpg", *res.Profile.ProfilePicture)

	_, err = f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	require.NoError(t, err)
	assert.Len(t, f.pictures.calls, 1, "existing picture is kept")
}

func TestReconciler_PictureFailureIsSwallowed(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: func() *Identity {
		i := googleIdentity("g-7", "fred@example.com")()
		i.Picture = "https://provider.example/p.jpg"
		return i
	}})
	f.pictures.err = errors.New("timeout")

	res, err := f.r.Login(context.Background(), LoginRequest{Provider: "google", AccessToken: "tok"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Nil(t, res.Profile.ProfilePicture)
}

func TestReconciler_ConcurrentFirstLogins(t *testing.T) {
	f := newFixture(&fixedNormalizer{provider: Google, ident: googleIdentity("g-8", "gina@example.com")})
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	results := make([]*LoginResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.r.Login(ctx, LoginRequest{Provider: "google", AccessToken: "tok"})
		}(i)
	}
	wg.Wait()

	newCount := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].User.ID, results[i].User.ID)
		if results[i].IsNewUser {
			newCount++
		}
	}
	assert.Equal(t, 1, newCount)
	assert.Equal(t, 1, f.store.userCount())
}
