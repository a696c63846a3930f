// Package portal is a client library for the Remedial Portal back-office
// API. It wires the session manager and the hypermedia gateway together
// and exposes typed services for every portal resource.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/remedialportal/console/pkg/portal/hydra"
	"github.com/remedialportal/console/pkg/portal/session"
)

// Config contains the configuration for the portal client.
type Config struct {
	// BaseURL is the API origin, e.g. "https://remedialapi.futb.edu.ng/api".
	BaseURL string

	// TokenStore persists the token pair. Defaults to an in-memory store,
	// which does not survive restarts.
	TokenStore session.Store

	// OnSessionEnded fires when the session is torn down: explicit logout,
	// failed refresh, or proactive expiry detection.
	OnSessionEnded func()

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is the main portal client.
type Client struct {
	config   Config
	sessions *session.Manager
	gateway  *hydra.Client

	Applicants           *Resource[Applicant]
	Applications         *Resource[Application]
	Payments             *Resource[Payment]
	Users                *Resource[User]
	States               *Resource[State]
	Lgas                 *Resource[Lga]
	Programs             *Resource[Program]
	DocumentTypes        *Resource[DocumentType]
	ApplicationDocuments *Resource[ApplicationDocument]
	OLevelResults        *Resource[OLevelResult]
}

// New creates a portal client with the given configuration.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if config.TokenStore == nil {
		config.TokenStore = session.NewMemoryStore()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	sessions := session.NewManager(config.TokenStore, session.Config{
		BaseURL:        config.BaseURL,
		HTTPClient:     config.HTTPClient,
		OnSessionEnded: config.OnSessionEnded,
		Logger:         config.Logger,
	})

	gateway := hydra.NewClient(hydra.Config{
		BaseURL:    config.BaseURL,
		HTTPClient: config.HTTPClient,
		Sessions:   sessions,
		Logger:     config.Logger,
	})

	c := &Client{
		config:   config,
		sessions: sessions,
		gateway:  gateway,
	}

	c.Applicants = NewResource[Applicant](gateway, "/applicants")
	c.Applications = NewResource[Application](gateway, "/applications")
	c.Payments = NewResource[Payment](gateway, "/payments")
	c.Users = NewResource[User](gateway, "/users")
	c.States = NewResource[State](gateway, "/states")
	c.Lgas = NewResource[Lga](gateway, "/lgas")
	c.Programs = NewResource[Program](gateway, "/programs")
	c.DocumentTypes = NewResource[DocumentType](gateway, "/document_types")
	c.ApplicationDocuments = NewResource[ApplicationDocument](gateway, "/application_documents")
	c.OLevelResults = NewResource[OLevelResult](gateway, "/o_level_results")

	return c, nil
}

// Login authenticates and stores the token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*session.User, error) {
	return c.sessions.Login(ctx, email, password)
}

// Logout tears the session down and fires the session-ended hook.
func (c *Client) Logout(ctx context.Context) error {
	return c.sessions.Logout(ctx)
}

// CurrentUser returns the identity behind the stored access token.
func (c *Client) CurrentUser(ctx context.Context) (*session.User, error) {
	return c.sessions.CurrentUser(ctx)
}

// Authenticated reports whether a usable access token is stored.
func (c *Client) Authenticated(ctx context.Context) bool {
	return c.sessions.Valid(ctx)
}

// Sessions returns the session manager for advanced usage.
func (c *Client) Sessions() *session.Manager {
	return c.sessions
}

// Gateway returns the underlying gateway for untyped calls.
func (c *Client) Gateway() *hydra.Client {
	return c.gateway
}

// Close cleans up client resources.
func (c *Client) Close() error {
	return c.sessions.Close()
}
