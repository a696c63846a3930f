package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/remedialportal/console/internal/logger"
	"github.com/remedialportal/console/pkg/portal"
	"github.com/remedialportal/console/pkg/portal/session"
)

// newClient builds a portal client from the loaded configuration,
// selecting the configured token store backend.
func newClient() (*portal.Client, error) {
	store, err := newTokenStore()
	if err != nil {
		return nil, err
	}

	return portal.New(portal.Config{
		BaseURL:    cfg.APIBaseURL,
		TokenStore: store,
		Logger:     logger.Logger(),
		OnSessionEnded: func() {
			logger.Warn("session ended, please log in again")
		},
	})
}

func newTokenStore() (session.Store, error) {
	switch cfg.TokenStore {
	case "memory":
		return session.NewMemoryStore(), nil
	case "sql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("token_store is sql but database_url is empty")
		}
		return session.NewSQLStore(cfg.DatabaseURL)
	default:
		path := cfg.TokenStorePath
		if !filepath.IsAbs(path) {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve home directory: %w", err)
			}
			path = filepath.Join(home, path)
		}
		return session.NewFileStore(path), nil
	}
}

// printJSON renders a value as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPayload parses the --data argument; "-" reads from stdin.
func readPayload(data string) (map[string]any, error) {
	raw := []byte(data)
	if data == "-" {
		var err error
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	payload := make(map[string]any)
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return payload, nil
}
