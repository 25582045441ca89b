package social

import (
	"errors"
	"net/http"
)

// Code is the machine-readable error kind returned to clients.
type Code string

const (
	CodeMissingParameters   Code = "MISSING_PARAMETERS"
	CodeInvalidProvider     Code = "INVALID_PROVIDER"
	CodeInvalidToken        Code = "INVALID_TOKEN"
	CodeMissingEmail        Code = "MISSING_EMAIL"
	CodeMissingAppleID      Code = "MISSING_APPLE_ID"
	CodeNetworkError        Code = "NETWORK_ERROR"
	CodeGoogleAuthError     Code = "GOOGLE_AUTH_ERROR"
	CodeFacebookAuthError   Code = "FACEBOOK_AUTH_ERROR"
	CodeAppleAuthError      Code = "APPLE_AUTH_ERROR"
	CodeAuthenticationError Code = "AUTHENTICATION_ERROR"
	CodeNotAuthenticated    Code = "NOT_AUTHENTICATED"
	CodeMissingProvider     Code = "MISSING_PROVIDER"
	CodeAccountNotFound     Code = "ACCOUNT_NOT_FOUND"
	CodeProfileNotFound     Code = "PROFILE_NOT_FOUND"
)

// Status maps a code to its HTTP status.
func (c Code) Status() int {
	switch c {
	case CodeMissingParameters, CodeInvalidProvider, CodeMissingProvider:
		return http.StatusBadRequest
	case CodeInvalidToken, CodeMissingEmail, CodeMissingAppleID, CodeNetworkError,
		CodeGoogleAuthError, CodeFacebookAuthError, CodeAppleAuthError, CodeNotAuthenticated:
		return http.StatusUnauthorized
	case CodeAccountNotFound, CodeProfileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error is a classified failure. Message is safe to show to the caller; Err
// holds the internal cause and is only logged.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// AsError classifies err, defaulting to AUTHENTICATION_ERROR.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return newError(CodeAuthenticationError, "Authentication failed", err)
}

var (
	ErrNotFound         = errors.New("not found")
	ErrUsernameTaken    = errors.New("username taken")
	ErrIdentityConflict = errors.New("identity linked to another user")
)

func (p Provider) authErrorCode() Code {
	switch p {
	case Google:
		return CodeGoogleAuthError
	case Facebook:
		return CodeFacebookAuthError
	case Apple:
		return CodeAppleAuthError
	}
	return CodeAuthenticationError
}
