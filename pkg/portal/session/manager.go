package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Config contains session manager configuration.
type Config struct {
	// BaseURL is the API origin, e.g. "https://remedialapi.futb.edu.ng/api".
	BaseURL string

	// HTTPClient used for the login and token-refresh calls. These are the
	// two auth-exempt endpoints, so the manager talks to the network
	// directly rather than through the gateway.
	HTTPClient *http.Client

	// OnSessionEnded is invoked after Logout tears the session down, so
	// dependent surfaces can return to an unauthenticated state.
	OnSessionEnded func()

	// ExpiryCheckInterval bounds the window during which the client appears
	// authenticated while every request would fail. Zero means one minute;
	// a negative value disables the check.
	ExpiryCheckInterval time.Duration

	Logger *slog.Logger
}

// Manager is the single source of truth for whether the caller holds a
// usable credential. It owns login, refresh and teardown against the
// pluggable token store.
type Manager struct {
	store  Store
	config Config
	logger *slog.Logger

	// refreshMu serializes refresh calls so concurrent 401 handlers cannot
	// race on the stored token pair.
	refreshMu sync.Mutex

	stopWatch chan struct{}
	closeOnce sync.Once
}

// User is the identity derived from a successful login: token claims merged
// with the server-supplied profile payload.
type User struct {
	ID    int             `json:"id"`
	Email string          `json:"email"`
	Roles []string        `json:"roles"`
	Info  json.RawMessage `json:"info,omitempty"`
}

type loginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ID           int             `json:"id"`
	Email        string          `json:"email"`
	Roles        []string        `json:"roles"`
	Info         json.RawMessage `json:"info"`
}

// The refresh endpoint names its token field differently from login.
type refreshResponse struct {
	Token string `json:"token"`
}

// NewManager creates a session manager over the given token store.
func NewManager(store Store, config Config) *Manager {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if config.ExpiryCheckInterval == 0 {
		config.ExpiryCheckInterval = time.Minute
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	m := &Manager{
		store:     store,
		config:    config,
		logger:    config.Logger,
		stopWatch: make(chan struct{}),
	}

	if config.ExpiryCheckInterval > 0 {
		go m.watchExpiry()
	}

	return m
}

// AccessToken returns the stored access token, or ErrTokenNotFound.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.store.Get(ctx, KeyAccessToken)
}

// Valid reports whether a stored access token exists and is not expired.
func (m *Manager) Valid(ctx context.Context) bool {
	token, err := m.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return false
	}
	return !IsExpired(token)
}

// CurrentUser derives the authenticated identity from the stored token
// claims. Fails when no usable token is stored.
func (m *Manager) CurrentUser(ctx context.Context) (*User, error) {
	token, err := m.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return nil, err
	}
	if IsExpired(token) {
		return nil, ErrTokenNotFound
	}
	claims := DecodeClaims(token)
	if claims == nil {
		return nil, ErrTokenNotFound
	}
	return &User{
		ID:    claims.UserID,
		Email: claims.Email,
		Roles: claims.Roles,
	}, nil
}

// Login authenticates against POST /login and stores both tokens on
// success. Bad credentials surface as ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if lr.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access token")
	}

	if err := m.store.Set(ctx, KeyAccessToken, lr.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}
	if lr.RefreshToken != "" {
		if err := m.store.Set(ctx, KeyRefreshToken, lr.RefreshToken); err != nil {
			return nil, fmt.Errorf("failed to store refresh token: %w", err)
		}
	}

	user := &User{
		ID:    lr.ID,
		Email: lr.Email,
		Roles: lr.Roles,
		Info:  lr.Info,
	}

	// Fill identity gaps from the token claims.
	if claims := DecodeClaims(lr.AccessToken); claims != nil {
		if user.ID == 0 {
			user.ID = claims.UserID
		}
		if user.Email == "" {
			user.Email = claims.Email
		}
		if len(user.Roles) == 0 {
			user.Roles = claims.Roles
		}
	}

	m.logger.Info("logged in", "email", user.Email)
	return user, nil
}

// Refresh exchanges the stored refresh token for a new access token via
// POST /token/refresh. Without a stored refresh token it fails immediately
// with no network call. On failure the existing tokens are left untouched;
// the caller decides whether the session ends.
//
// Refresh calls are serialized but not deduplicated: each concurrent 401
// handler performs its own exchange. The mutex only protects the token
// pair from racing writers.
func (m *Manager) Refresh(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	refreshToken, err := m.store.Get(ctx, KeyRefreshToken)
	if errors.Is(err, ErrTokenNotFound) {
		return ErrNoRefreshToken
	}
	if err != nil {
		return fmt.Errorf("failed to load refresh token: %w", err)
	}

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+"/token/refresh", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}

	var rr refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if rr.Token == "" {
		return fmt.Errorf("%w: response missing token", ErrRefreshFailed)
	}

	if err := m.store.Set(ctx, KeyAccessToken, rr.Token); err != nil {
		return fmt.Errorf("failed to store refreshed token: %w", err)
	}

	m.logger.Debug("access token refreshed")
	return nil
}

// Clear removes both tokens and all derived session data. Idempotent.
func (m *Manager) Clear(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Logout clears the session and notifies dependent surfaces that it ended.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.Clear(ctx); err != nil {
		return err
	}
	m.logger.Info("session ended")
	if m.config.OnSessionEnded != nil {
		m.config.OnSessionEnded()
	}
	return nil
}

// Close stops the background expiry watcher and closes the store.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopWatch)
	})
	return m.store.Close()
}

// watchExpiry proactively logs out once the stored token goes stale,
// instead of waiting for the next failed call.
func (m *Manager) watchExpiry() {
	ticker := time.NewTicker(m.config.ExpiryCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopWatch:
			return
		case <-ticker.C:
			ctx := context.Background()
			token, err := m.store.Get(ctx, KeyAccessToken)
			if err != nil {
				continue
			}
			if IsExpired(token) {
				m.logger.Info("access token expired, ending session")
				if err := m.Logout(ctx); err != nil {
					m.logger.Error("failed to end expired session", "error", err)
				}
			}
		}
	}
}
