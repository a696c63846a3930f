// Package session owns the access/refresh token lifecycle for the Remedial
// Portal API: claim decoding, expiry evaluation, login, coordinated refresh
// and teardown. It separates token semantics from persistence concerns,
// enabling reuse across CLI tools, services and tests.
package session

import "context"

// Storage keys. Fixed so that tokens survive restarts of the same client.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Store defines the interface for token persistence backends.
// Implementations can use files, databases, memory, etc.
type Store interface {
	// Get retrieves the value for a key. Returns ErrTokenNotFound when the
	// key has no value.
	Get(ctx context.Context, key string) (string, error)

	// Set saves a value under the given key.
	Set(ctx context.Context, key, value string) error

	// Delete removes a single key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all stored values. Idempotent.
	Clear(ctx context.Context) error

	// Close cleans up storage resources.
	Close() error
}
