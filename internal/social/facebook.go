package social

import (
	"context"
	"strings"
)

const facebookGraphURL = "https://graph.facebook.com/me?fields=id,name,email,first_name,last_name,picture.type(large)"

type FacebookNormalizer struct {
	opts     Options
	graphURL string
}

func NewFacebookNormalizer(opts Options) *FacebookNormalizer {
	return &FacebookNormalizer{opts: opts.withDefaults(), graphURL: facebookGraphURL}
}

func (n *FacebookNormalizer) Provider() Provider {
	return Facebook
}

func (n *FacebookNormalizer) Normalize(ctx context.Context, token string, claims Claims) (*Identity, error) {
	var info map[string]any
	if n.opts.TrustedClaims {
		info = map[string]any{
			"id":         claims.ID,
			"email":      claims.Email,
			"first_name": claims.FirstName,
			"last_name":  claims.LastName,
			"name":       strings.TrimSpace(claims.FirstName + " " + claims.LastName),
			"picture":    claims.Picture,
		}
	} else {
		var err error
		info, err = fetchClaims(ctx, Facebook, n.opts.HTTPClient, n.opts.Timeout, n.graphURL, token)
		if err != nil {
			return nil, err
		}
	}

	// Graph nests the picture as {"data": {"url": ...}}; flatten it.
	picture := stringClaim(info, "picture")
	if nested, ok := info["picture"].(map[string]any); ok {
		if data, ok := nested["data"].(map[string]any); ok {
			picture = stringClaim(data, "url")
		}
	}
	info["picture"] = picture

	ident := &Identity{
		Provider:   Facebook,
		ExternalID: stringClaim(info, "id"),
		Email:      stringClaim(info, "email"),
		FirstName:  stringClaim(info, "first_name"),
		LastName:   stringClaim(info, "last_name"),
		FullName:   stringClaim(info, "name"),
		Picture:    picture,
		Metadata:   info,
	}

	if ident.ExternalID == "" {
		return nil, newError(CodeFacebookAuthError, "Account id not provided by Facebook", nil)
	}

	if ident.Email == "" {
		ident.Email = PlaceholderEmail(Facebook, ident.ExternalID)
	} else {
		ident.EmailVerified = true
	}

	return ident, nil
}
