package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Database drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Driver represents the type of database driver backing a SQLStore.
type Driver string

// Database driver constants
const (
	SQLite     Driver = "sqlite3"
	PostgreSQL Driver = "postgres"
)

// DetectDriver determines the database driver from the connection string.
func DetectDriver(connectionString string) Driver {
	connectionString = strings.ToLower(connectionString)

	switch {
	case strings.HasPrefix(connectionString, "postgres://") ||
		strings.HasPrefix(connectionString, "postgresql://") ||
		strings.Contains(connectionString, "host="):
		return PostgreSQL
	default:
		// Simple paths, file: URLs and :memory: are all SQLite.
		return SQLite
	}
}

// SQLStore implements Store on top of a relational database. Useful when
// several operator tools share one credential set, or when the host already
// runs a database anyway.
type SQLStore struct {
	db     *sql.DB
	driver Driver
}

// NewSQLStore opens a database connection (driver inferred from the
// connection string) and ensures the token table exists.
func NewSQLStore(connectionString string) (*SQLStore, error) {
	driver := DetectDriver(connectionString)

	if driver == SQLite && !strings.Contains(connectionString, "?") && connectionString != ":memory:" {
		connectionString += "?_busy_timeout=10000&_journal_mode=WAL"
	}

	db, err := sql.Open(string(driver), connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from connection pooling.
	if driver == SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS tokens (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create token table: %w", err)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// Get retrieves the value for a key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("token key cannot be empty")
	}

	var value string
	query := fmt.Sprintf("SELECT value FROM tokens WHERE key = %s", s.placeholder(1))
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return value, nil
}

// Set saves a value under the given key.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("token key cannot be empty")
	}

	query := fmt.Sprintf(
		"INSERT INTO tokens (key, value) VALUES (%s, %s) ON CONFLICT(key) DO UPDATE SET value = %s",
		s.placeholder(1), s.placeholder(2), s.placeholder(3))
	if _, err := s.db.ExecContext(ctx, query, key, value, value); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Delete removes a single key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("token key cannot be empty")
	}

	query := fmt.Sprintf("DELETE FROM tokens WHERE key = %s", s.placeholder(1))
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Clear removes all stored values.
func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tokens"); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Driver returns the database driver type.
func (s *SQLStore) Driver() Driver {
	return s.driver
}

// placeholder returns the appropriate SQL placeholder for the driver.
func (s *SQLStore) placeholder(position int) string {
	if s.driver == PostgreSQL {
		return fmt.Sprintf("$%d", position)
	}
	return "?"
}
