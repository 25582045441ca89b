package social

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type Provider string

const (
	Google   Provider = "google"
	Facebook Provider = "facebook"
	Apple    Provider = "apple"
)

// ParseProvider matches s case-insensitively against the supported providers.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(strings.ToLower(s)); p {
	case Google, Facebook, Apple:
		return p, true
	}
	return "", false
}

func (p Provider) String() string {
	return string(p)
}

// Title is the display form used in user-facing messages.
func (p Provider) Title() string {
	switch p {
	case Google:
		return "Google"
	case Facebook:
		return "Facebook"
	case Apple:
		return "Apple"
	}
	return string(p)
}

func (p Provider) placeholderDomain() string {
	return "@" + string(p) + ".temp"
}

// Claims are the profile fields a client sends alongside the access token.
type Claims struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Picture   string `json:"picture"`
}

// Identity is the canonical result of normalizing a provider assertion.
type Identity struct {
	Provider      Provider
	ExternalID    string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	FullName      string
	Picture       string
	Metadata      map[string]any
}

// PlaceholderEmail builds the synthetic address used when a provider
// withholds the real one.
func PlaceholderEmail(p Provider, externalID string) string {
	return externalID + p.placeholderDomain()
}

func (i *Identity) HasPlaceholderEmail() bool {
	return strings.HasSuffix(i.Email, i.Provider.placeholderDomain())
}

// lookupByEmail reports whether the email is trustworthy enough to match an
// existing account on.
func (i *Identity) lookupByEmail() bool {
	return i.Email != "" && !i.HasPlaceholderEmail() && i.EmailVerified
}

// usernameBase is the candidate username before collision suffixes.
func (i *Identity) usernameBase() string {
	if !i.HasPlaceholderEmail() {
		if local, _, _ := strings.Cut(i.Email, "@"); local != "" {
			return local
		}
	}
	switch i.Provider {
	case Facebook:
		return "fb_" + i.ExternalID
	case Apple:
		id := i.ExternalID
		if len(id) > 8 {
			id = id[:8]
		}
		return "apple_" + id
	}
	return string(i.Provider) + "_" + i.ExternalID
}

// names returns first/last name, falling back to splitting FullName on the
// first space when neither is set.
func (i *Identity) names() (string, string) {
	if i.FirstName != "" || i.LastName != "" || i.FullName == "" {
		return i.FirstName, i.LastName
	}
	first, last, _ := strings.Cut(i.FullName, " ")
	return first, last
}

// Normalizer turns a provider credential plus client claims into an Identity.
type Normalizer interface {
	Provider() Provider
	Normalize(ctx context.Context, token string, claims Claims) (*Identity, error)
}

// Options configure the built-in normalizers.
type Options struct {
	// TrustedClaims skips upstream verification and takes the client's claims
	// as-is. Gate it on environment, never on request contents.
	TrustedClaims bool
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// DefaultVerifyTimeout bounds a provider verification call when Options
// leaves Timeout unset.
const DefaultVerifyTimeout = 10 * time.Second

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultVerifyTimeout
	}
	return o
}

// Registry holds the normalizers by provider.
type Registry struct {
	normalizers map[Provider]Normalizer
}

func NewRegistry(list ...Normalizer) *Registry {
	m := make(map[Provider]Normalizer, len(list))
	for _, n := range list {
		m[n.Provider()] = n
	}
	return &Registry{normalizers: m}
}

// NewDefaultRegistry wires Google, Facebook and Apple.
func NewDefaultRegistry(opts Options) *Registry {
	return NewRegistry(
		NewGoogleNormalizer(opts),
		NewFacebookNormalizer(opts),
		NewAppleNormalizer(opts),
	)
}

func (r *Registry) Get(p Provider) (Normalizer, bool) {
	n, ok := r.normalizers[p]
	return n, ok
}
