package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// fetchClaims performs a single authenticated GET against a provider's
// identity endpoint. It never retries.
func fetchClaims(ctx context.Context, p Provider, base *http.Client, timeout time.Duration, rawURL, token string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newError(p.authErrorCode(), p.Title()+" authentication error", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, newError(CodeNetworkError, "Network error while verifying "+p.Title()+" token", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(CodeInvalidToken, "Invalid "+p.Title()+" access token",
			fmt.Errorf("%s returned status %d", p, resp.StatusCode))
	}

	var claims map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, newError(p.authErrorCode(), p.Title()+" authentication error",
			fmt.Errorf("failed to decode user info: %w", err))
	}
	return claims, nil
}

func stringClaim(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	}
	return ""
}

func boolClaim(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
