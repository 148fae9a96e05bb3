// Package client is the HTTP client for the Insightd API. It attaches
// the session's bearer token to authenticated requests and treats
// HTTP 401 uniformly as session expiry.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/insightd-dev/insightd/internal/cli/guard"
	"github.com/insightd-dev/insightd/internal/cli/session"
)

// ErrSessionExpired reports that a request came back 401 and the
// session has already been cleared and the login navigation triggered.
// Callers treat it as handled and must not surface it as a failure.
var ErrSessionExpired = errors.New("session expired")

// StatusError is a non-2xx response. The body is kept as text for
// diagnostics; callers decide how to surface it.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Code, e.Body)
}

// Client represents an HTTP client for the Insightd API
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *session.Store
	navigator  guard.Navigator
}

// New creates a new API client. The navigator receives the login
// navigation when an authenticated request is rejected with 401.
func New(baseURL string, store *session.Store, navigator guard.Navigator) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:     store,
		navigator: navigator,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// do performs an authenticated request: JSON content-type and accept
// headers, plus the bearer token when the session holds one. A 401
// clears the session, triggers the login navigation once, and returns
// ErrSessionExpired. Transport errors propagate wrapped; there are no
// retries here.
func (c *Client) do(method, path string, body, out interface{}) error {
	req, err := c.newRequest(method, path, body)
	if err != nil {
		return err
	}

	if token := c.store.Snapshot().Token; token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token invalid or expired. Clear reports whether a session
		// was actually present, so concurrent 401s navigate only once.
		if c.store.Clear() && c.navigator != nil {
			c.navigator.Navigate(guard.RouteLogin)
		}
		return ErrSessionExpired
	}

	return decodeResponse(resp, out)
}

// doPublic performs an unauthenticated request. A 401 here is an
// ordinary status failure (wrong credentials), not session expiry.
func (c *Client) doPublic(method, path string, body, out interface{}) error {
	req, err := c.newRequest(method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func (c *Client) newRequest(method, path string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
