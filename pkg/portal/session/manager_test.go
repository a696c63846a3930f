package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type fakeBackend struct {
	server       *httptest.Server
	loginCalls   atomic.Int32
	refreshCalls atomic.Int32

	loginStatus   int
	refreshStatus int
	accessToken   string
	refreshToken  string
	refreshed     string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		loginStatus:   http.StatusOK,
		refreshStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		b.loginCalls.Add(1)
		if b.loginStatus != http.StatusOK {
			w.WriteHeader(b.loginStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  b.accessToken,
			"refresh_token": b.refreshToken,
			"id":            7,
			"email":         "admin@futb.edu.ng",
			"roles":         []string{"ROLE_ADMIN"},
		})
	})
	mux.HandleFunc("POST /token/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["refresh_token"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if b.refreshStatus != http.StatusOK {
			w.WriteHeader(b.refreshStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": b.refreshed})
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func newTestManager(t *testing.T, backend *fakeBackend, store Store) *Manager {
	t.Helper()
	m := NewManager(store, Config{
		BaseURL:             backend.server.URL,
		ExpiryCheckInterval: -1,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestLoginStoresTokens(t *testing.T) {
	backend := newFakeBackend(t)
	backend.accessToken = makeToken(t, map[string]any{
		"id": 7, "username": "admin@futb.edu.ng", "exp": time.Now().Add(time.Hour).Unix(),
	})
	backend.refreshToken = "refresh-1"

	store := NewMemoryStore()
	m := newTestManager(t, backend, store)

	user, err := m.Login(context.Background(), "admin@futb.edu.ng", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != 7 || user.Email != "admin@futb.edu.ng" {
		t.Errorf("unexpected user %+v", user)
	}

	ctx := context.Background()
	if got, _ := store.Get(ctx, KeyAccessToken); got != backend.accessToken {
		t.Error("access token not stored")
	}
	if got, _ := store.Get(ctx, KeyRefreshToken); got != "refresh-1" {
		t.Error("refresh token not stored")
	}
	if !m.Valid(ctx) {
		t.Error("session should be valid after login")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	backend := newFakeBackend(t)
	backend.loginStatus = http.StatusUnauthorized

	m := newTestManager(t, backend, NewMemoryStore())

	_, err := m.Login(context.Background(), "admin@futb.edu.ng", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshWithoutTokenMakesNoNetworkCall(t *testing.T) {
	backend := newFakeBackend(t)
	m := newTestManager(t, backend, NewMemoryStore())

	err := m.Refresh(context.Background())
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if n := backend.refreshCalls.Load(); n != 0 {
		t.Errorf("expected 0 refresh calls, got %d", n)
	}
}

// brokenStore fails every read the way a lost database connection would.
type brokenStore struct {
	MemoryStore
	getErr error
}

func (b *brokenStore) Get(ctx context.Context, key string) (string, error) {
	return "", b.getErr
}

func TestRefreshStoreFailureIsNotMissingToken(t *testing.T) {
	backend := newFakeBackend(t)
	storeErr := errors.New("connection reset")
	m := newTestManager(t, backend, &brokenStore{getErr: storeErr})

	err := m.Refresh(context.Background())
	if errors.Is(err, ErrNoRefreshToken) {
		t.Fatal("backend failure must not be reported as a missing token")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected the store error to propagate, got %v", err)
	}
	if n := backend.refreshCalls.Load(); n != 0 {
		t.Errorf("expected 0 refresh calls, got %d", n)
	}
}

func TestRefreshStoresNewAccessToken(t *testing.T) {
	backend := newFakeBackend(t)
	backend.refreshed = makeToken(t, map[string]any{"exp": time.Now().Add(time.Hour).Unix()})

	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, KeyAccessToken, "stale")
	_ = store.Set(ctx, KeyRefreshToken, "refresh-1")

	m := newTestManager(t, backend, store)

	if err := m.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if got, _ := store.Get(ctx, KeyAccessToken); got != backend.refreshed {
		t.Error("refreshed access token not stored")
	}
	// The refresh token itself is untouched.
	if got, _ := store.Get(ctx, KeyRefreshToken); got != "refresh-1" {
		t.Error("refresh token should not change")
	}
}

func TestRefreshFailureLeavesTokensAlone(t *testing.T) {
	backend := newFakeBackend(t)
	backend.refreshStatus = http.StatusBadRequest

	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, KeyAccessToken, "stale")
	_ = store.Set(ctx, KeyRefreshToken, "refresh-1")

	m := newTestManager(t, backend, store)

	err := m.Refresh(ctx)
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
	// Refresh itself never clears; the gateway owns that policy.
	if got, _ := store.Get(ctx, KeyAccessToken); got != "stale" {
		t.Error("access token should survive a failed refresh")
	}
}

func TestLogoutClearsAndNotifies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, KeyAccessToken, "tok")
	_ = store.Set(ctx, KeyRefreshToken, "ref")

	var ended atomic.Bool
	m := NewManager(store, Config{
		BaseURL:             "http://unused",
		ExpiryCheckInterval: -1,
		OnSessionEnded:      func() { ended.Store(true) },
	})
	t.Cleanup(func() { _ = m.Close() })

	if err := m.Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if store.Len() != 0 {
		t.Error("store should be empty after logout")
	}
	if !ended.Load() {
		t.Error("session-ended hook should fire")
	}

	// Idempotent.
	if err := m.Logout(ctx); err != nil {
		t.Errorf("second logout should not fail: %v", err)
	}
}

func TestExpiryWatcherLogsOutProactively(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	expired := makeToken(t, map[string]any{"exp": time.Now().Add(-time.Minute).Unix()})
	_ = store.Set(ctx, KeyAccessToken, expired)

	var ended atomic.Bool
	m := NewManager(store, Config{
		BaseURL:             "http://unused",
		ExpiryCheckInterval: 10 * time.Millisecond,
		OnSessionEnded:      func() { ended.Store(true) },
	})
	t.Cleanup(func() { _ = m.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for !ended.Load() {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not end the expired session")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if store.Len() != 0 {
		t.Error("store should be cleared by the watcher")
	}
}

func TestCurrentUserFromClaims(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	token := makeToken(t, map[string]any{
		"id": 9, "username": "ops@futb.edu.ng", "roles": []string{"ROLE_STAFF"},
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_ = store.Set(ctx, KeyAccessToken, token)

	m := NewManager(store, Config{BaseURL: "http://unused", ExpiryCheckInterval: -1})
	t.Cleanup(func() { _ = m.Close() })

	user, err := m.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.ID != 9 || user.Email != "ops@futb.edu.ng" {
		t.Errorf("unexpected user %+v", user)
	}

	// Expired token yields no identity.
	_ = store.Set(ctx, KeyAccessToken, makeToken(t, map[string]any{"exp": time.Now().Add(-time.Hour).Unix()}))
	if _, err := m.CurrentUser(ctx); err == nil {
		t.Error("expected error with expired token")
	}
}
