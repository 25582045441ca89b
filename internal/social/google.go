package social

import (
	"context"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"

type GoogleNormalizer struct {
	opts        Options
	userInfoURL string
}

func NewGoogleNormalizer(opts Options) *GoogleNormalizer {
	return &GoogleNormalizer{opts: opts.withDefaults(), userInfoURL: googleUserInfoURL}
}

func (n *GoogleNormalizer) Provider() Provider {
	return Google
}

func (n *GoogleNormalizer) Normalize(ctx context.Context, token string, claims Claims) (*Identity, error) {
	var info map[string]any
	if n.opts.TrustedClaims {
		info = map[string]any{
			"id":          claims.ID,
			"email":       claims.Email,
			"given_name":  claims.FirstName,
			"family_name": claims.LastName,
			"picture":     claims.Picture,
		}
	} else {
		var err error
		info, err = fetchClaims(ctx, Google, n.opts.HTTPClient, n.opts.Timeout, n.userInfoURL, token)
		if err != nil {
			return nil, err
		}
	}

	ident := &Identity{
		Provider:      Google,
		ExternalID:    stringClaim(info, "id"),
		Email:         stringClaim(info, "email"),
		EmailVerified: true,
		FirstName:     stringClaim(info, "given_name"),
		LastName:      stringClaim(info, "family_name"),
		FullName:      stringClaim(info, "name"),
		Picture:       stringClaim(info, "picture"),
		Metadata:      info,
	}

	if ident.Email == "" {
		return nil, newError(CodeMissingEmail, "Email not provided by Google", nil)
	}
	if ident.ExternalID == "" {
		return nil, newError(CodeMissingEmail, "Account id not provided by Google", nil)
	}

	ident.Metadata["picture"] = ident.Picture
	return ident, nil
}
