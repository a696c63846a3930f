package session

import "errors"

// Session management errors
var (
	// ErrInvalidCredentials is returned by Login when the backend rejects
	// the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoRefreshToken is returned by Refresh when no refresh token is
	// stored; no network call is made in that case.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshFailed is returned by Refresh when the backend rejects the
	// refresh token or returns a malformed response.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrTokenNotFound is returned by stores when a key has no value.
	ErrTokenNotFound = errors.New("token not found")
)
