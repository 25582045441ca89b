package social

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type AppleNormalizer struct {
	opts Options
}

func NewAppleNormalizer(opts Options) *AppleNormalizer {
	return &AppleNormalizer{opts: opts.withDefaults()}
}

func (n *AppleNormalizer) Provider() Provider {
	return Apple
}

// Normalize reads sub/email/email_verified from the identity token.
//
// The token signature is NOT verified against Apple's keys; anyone able to
// mint a JWT-shaped string can assert any Apple id. Fetching and checking
// https://appleid.apple.com/auth/keys is required before this is trustworthy.
func (n *AppleNormalizer) Normalize(ctx context.Context, token string, claims Claims) (*Identity, error) {
	ident := &Identity{
		Provider: Apple,
		// Apple only sends the name on first sign-in, and only to the client.
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Picture:   claims.Picture,
	}

	if n.opts.TrustedClaims {
		ident.ExternalID = claims.ID
		ident.Email = claims.Email
		ident.EmailVerified = true
	} else {
		parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
		if err != nil {
			return nil, newError(CodeInvalidToken, "Invalid Apple ID token", err)
		}
		mc, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return nil, newError(CodeInvalidToken, "Invalid Apple ID token", nil)
		}
		ident.ExternalID = stringClaim(mc, "sub")
		ident.Email = stringClaim(mc, "email")
		ident.EmailVerified = boolClaim(mc, "email_verified")
	}

	if ident.ExternalID == "" {
		return nil, newError(CodeMissingAppleID, "Apple ID not found in token", nil)
	}

	if ident.Email == "" {
		ident.Email = PlaceholderEmail(Apple, ident.ExternalID)
	}

	ident.Metadata = map[string]any{
		"sub":            ident.ExternalID,
		"email":          ident.Email,
		"first_name":     ident.FirstName,
		"last_name":      ident.LastName,
		"email_verified": ident.EmailVerified,
	}
	return ident, nil
}
