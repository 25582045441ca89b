package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zarenu/zare-api/internal/models"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, key string) (*models.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newProtectedApp(tokens TokenAuthenticator, extra ...drift.HandlerFunc) http.Handler {
	app := drift.New()
	app.Use(Auth(tokens))
	for _, mw := range extra {
		app.Use(mw)
	}
	app.Get("/protected", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"user_id": GetUserID(c).String()})
	})
	return app
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth_MissingAuthorizationHeader(t *testing.T) {
	app := newProtectedApp(new(mockAuthenticator))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NOT_AUTHENTICATED", body["code"])
}

func TestAuth_InvalidAuthorizationFormat(t *testing.T) {
	tests := []string{"Basic abc", "Token", "Bearer ", "sometoken"}

	for _, header := range tests {
		t.Run(header, func(t *testing.T) {
			app := newProtectedApp(new(mockAuthenticator))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid authorization header format")
		})
	}
}

func TestAuth_UnknownToken(t *testing.T) {
	tokens := new(mockAuthenticator)
	tokens.On("Authenticate", mock.Anything, "nope").Return(nil, errors.New("invalid token"))
	app := newProtectedApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token nope")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NOT_AUTHENTICATED", decodeError(t, rec)["code"])
	tokens.AssertExpectations(t)
}

func TestAuth_AcceptsTokenAndBearerSchemes(t *testing.T) {
	userID := uuid.New()

	for _, scheme := range []string{"Token", "Bearer", "token"} {
		t.Run(scheme, func(t *testing.T) {
			tokens := new(mockAuthenticator)
			tokens.On("Authenticate", mock.Anything, "abc123").Return(&models.User{ID: userID}, nil)
			app := newProtectedApp(tokens)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", scheme+" abc123")
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), userID.String())
			tokens.AssertExpectations(t)
		})
	}
}

func TestRequireStaff_Forbidden(t *testing.T) {
	tokens := new(mockAuthenticator)
	tokens.On("Authenticate", mock.Anything, "k").Return(&models.User{ID: uuid.New()}, nil)
	app := newProtectedApp(tokens, RequireStaff())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token k")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin access required")
}

func TestRequireStaff_Allowed(t *testing.T) {
	tokens := new(mockAuthenticator)
	tokens.On("Authenticate", mock.Anything, "k").Return(&models.User{ID: uuid.New(), IsStaff: true}, nil)
	app := newProtectedApp(tokens, RequireStaff())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token k")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetUser_NotSet(t *testing.T) {
	app := drift.New()
	var got *models.User
	var gotID uuid.UUID
	app.Get("/open", func(c *drift.Context) {
		got = GetUser(c)
		gotID = GetUserID(c)
		_ = c.JSON(http.StatusOK, nil)
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))

	assert.Nil(t, got)
	assert.Equal(t, uuid.Nil, gotID)
}
