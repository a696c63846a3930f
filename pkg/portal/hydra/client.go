// Package hydra is the single gateway for outbound calls to the Remedial
// Portal API. It attaches credentials, normalizes the backend's drifting
// collection shapes into one canonical envelope, and implements the
// refresh-and-retry protocol on authorization failure.
package hydra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/remedialportal/console/pkg/portal/session"
)

// Media types the backend negotiates. Partial updates must use merge-patch
// semantics; the backend distinguishes them from full-document PATCH.
const (
	mediaTypeJSONLD     = "application/ld+json"
	mediaTypeMergePatch = "application/merge-patch+json"
)

// SessionManager is the slice of the session manager the gateway needs:
// read a token before each call, refresh on 401, tear down on failure.
type SessionManager interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
	Clear(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Config contains the gateway configuration.
type Config struct {
	// BaseURL is the API origin all endpoints are resolved against.
	BaseURL string

	HTTPClient *http.Client
	Sessions   SessionManager
	Logger     *slog.Logger
}

// Client executes requests against the portal API. It holds no mutable
// state between calls; the token pair lives in the session manager.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionManager
	logger     *slog.Logger

	// Ordered pipeline applied to every outbound request before send.
	requestStages []requestStage
}

// requestStage mutates an outbound request before it is sent. Stages are
// an explicit ordered pipeline so each one is testable on its own.
type requestStage func(ctx context.Context, req *http.Request) error

// NewClient creates a gateway over the given session manager.
func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		sessions:   cfg.Sessions,
		logger:     cfg.Logger,
	}
	c.requestStages = []requestStage{c.attachCredentials}
	return c
}

// isAuthExempt reports whether an endpoint never carries credentials.
// Attaching a token to a login call is meaningless, and a refresh call
// would carry the very token being replaced.
func isAuthExempt(endpoint string) bool {
	return strings.Contains(endpoint, "/login") || strings.Contains(endpoint, "/token/refresh")
}

// attachCredentials aborts locally when no usable token is stored, so a
// call never reaches the network with a token known to be stale.
func (c *Client) attachCredentials(ctx context.Context, req *http.Request) error {
	if isAuthExempt(req.URL.Path) {
		return nil
	}

	token, err := c.sessions.AccessToken(ctx)
	if err != nil {
		_ = c.sessions.Clear(ctx)
		return ErrSessionExpired
	}
	if session.IsExpired(token) {
		_ = c.sessions.Clear(ctx)
		return ErrSessionExpired
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// GetCollection fetches a collection endpoint and normalizes whatever
// shape comes back into the canonical envelope.
func (c *Client) GetCollection(ctx context.Context, endpoint string, query url.Values) (*Collection, error) {
	body, err := c.do(ctx, http.MethodGet, endpoint, query, "", nil)
	if err != nil {
		return nil, err
	}
	return NormalizeBytes(body), nil
}

// GetItem fetches a single resource representation into out.
func (c *Client) GetItem(ctx context.Context, endpoint string, out any) error {
	body, err := c.do(ctx, http.MethodGet, endpoint, nil, "", nil)
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// Post creates a resource and decodes the response into out when non-nil.
func (c *Client) Post(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	respBody, err := c.do(ctx, http.MethodPost, endpoint, nil, mediaTypeJSONLD, body)
	if err != nil {
		return err
	}
	return decodeInto(respBody, out)
}

// Patch applies a partial update with merge-patch semantics: only the
// supplied fields change.
func (c *Client) Patch(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	respBody, err := c.do(ctx, http.MethodPatch, endpoint, nil, mediaTypeMergePatch, body)
	if err != nil {
		return err
	}
	return decodeInto(respBody, out)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, endpoint string) error {
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil, "", nil)
	return err
}

// do runs one logical call: build, attach, send, and on a 401 refresh the
// session and reissue the original request exactly once. Every other
// failure propagates unmodified.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, contentType string, body []byte) ([]byte, error) {
	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	send := func() (int, []byte, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", mediaTypeJSONLD)
		if body != nil {
			req.Header.Set("Content-Type", contentType)
		}

		for _, stage := range c.requestStages {
			if err := stage(ctx, req); err != nil {
				return 0, nil, err
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
		}
		return resp.StatusCode, respBody, nil
	}

	status, respBody, err := send()
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !isAuthExempt(endpoint) {
		if err := c.sessions.Refresh(ctx); err != nil {
			c.logger.Warn("token refresh failed, ending session", "error", err)
			_ = c.sessions.Logout(ctx)
			return nil, fmt.Errorf("%w: %v", ErrSessionEnded, &StatusError{Code: status, Body: respBody})
		}

		c.logger.Debug("retrying after token refresh", "method", method, "endpoint", endpoint)
		status, respBody, err = send()
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			// Retry is bounded to one attempt per logical call; a second
			// rejection means the refreshed credential is no good either.
			_ = c.sessions.Logout(ctx)
			return nil, fmt.Errorf("%w: %v", ErrSessionEnded, &StatusError{Code: status, Body: respBody})
		}
	}

	if status < 200 || status > 299 {
		return nil, &StatusError{Code: status, Body: respBody}
	}
	return respBody, nil
}

// decodeInto unmarshals a response body, tolerating empty bodies and
// callers that don't want the result.
func decodeInto(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
