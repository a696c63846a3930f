package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// storeContract exercises the behavior every backend must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound on empty store, got %v", err)
	}

	if err := store.Set(ctx, KeyAccessToken, "tok-a"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := store.Set(ctx, KeyRefreshToken, "tok-r"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	value, err := store.Get(ctx, KeyAccessToken)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if value != "tok-a" {
		t.Errorf("expected tok-a, got %q", value)
	}

	// Overwrite
	if err := store.Set(ctx, KeyAccessToken, "tok-b"); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}
	value, _ = store.Get(ctx, KeyAccessToken)
	if value != "tok-b" {
		t.Errorf("expected tok-b, got %q", value)
	}

	if err := store.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound after delete, got %v", err)
	}

	// Deleting an absent key is not an error.
	if err := store.Delete(ctx, KeyAccessToken); err != nil {
		t.Errorf("delete of absent key should not fail: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	if _, err := store.Get(ctx, KeyRefreshToken); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound after clear, got %v", err)
	}

	// Clear is idempotent.
	if err := store.Clear(ctx); err != nil {
		t.Errorf("second clear should not fail: %v", err)
	}

	if err := store.Set(ctx, "", "x"); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	storeContract(t, NewFileStore(path))
}

func TestFileStorePersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")

	first := NewFileStore(path)
	if err := first.Set(ctx, KeyAccessToken, "persisted"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	// A fresh instance over the same path sees the value.
	second := NewFileStore(path)
	value, err := second.Get(ctx, KeyAccessToken)
	if err != nil {
		t.Fatalf("failed to get from second instance: %v", err)
	}
	if value != "persisted" {
		t.Errorf("expected persisted, got %q", value)
	}
}

func TestSQLStore(t *testing.T) {
	store, err := NewSQLStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("failed to open sql store: %v", err)
	}
	defer store.Close()

	if store.Driver() != SQLite {
		t.Fatalf("expected sqlite driver, got %s", store.Driver())
	}
	storeContract(t, store)
}

func TestDetectDriver(t *testing.T) {
	cases := map[string]Driver{
		"tokens.db":                        SQLite,
		":memory:":                         SQLite,
		"file:tokens.db?cache=shared":      SQLite,
		"postgres://u:p@localhost/tokens":  PostgreSQL,
		"postgresql://localhost/tokens":    PostgreSQL,
		"host=localhost dbname=tokens":     PostgreSQL,
	}
	for conn, want := range cases {
		if got := DetectDriver(conn); got != want {
			t.Errorf("DetectDriver(%q) = %s, want %s", conn, got, want)
		}
	}
}
