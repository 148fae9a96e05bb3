// Package auth turns credentials into a session. It tries the remote
// auth endpoints first and, when demo mode is enabled, falls back to a
// fixed demo credential table on remote failure.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/insightd-dev/insightd/internal/cli/client"
	"github.com/insightd-dev/insightd/internal/cli/guard"
	"github.com/insightd-dev/insightd/internal/cli/session"
)

// Expected failure modes. These are returned as values, never panicked;
// callers match them with errors.Is to decide what to tell the user.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrServer             = errors.New("server error")
	ErrConnection         = errors.New("connection error")
	ErrDuplicateEmail     = errors.New("email already registered")
)

// Placeholder tokens used when the server response carries no token
const (
	loginPlaceholderToken    = "demo-token"
	registerPlaceholderToken = "new-user-token"
)

// API is the subset of the HTTP client the service needs
type API interface {
	Login(email, password string) (*client.AuthResponse, error)
	Register(name, email, password string) (*client.AuthResponse, error)
}

// Service is the only writer of the session store besides the request
// helper's 401 handling.
type Service struct {
	api       API
	store     *session.Store
	demo      *DemoCredentials
	navigator guard.Navigator
}

// NewService creates an auth service. demo may be disabled but must not
// be nil; navigator receives the login navigation on Logout.
func NewService(api API, store *session.Store, demo *DemoCredentials, navigator guard.Navigator) *Service {
	return &Service{api: api, store: store, demo: demo, navigator: navigator}
}

// Login authenticates against the remote endpoint. Any remote failure,
// whether an HTTP error status or a transport error, falls through to
// the same demo credential check before the error is reported.
func (s *Service) Login(email, password string) error {
	epoch := s.store.Epoch()

	resp, err := s.api.Login(email, password)
	if err == nil {
		user, token := normalizeLogin(resp, email)
		s.store.SetIfCurrent(epoch, user, token)
		return nil
	}

	if user, token, ok := s.demo.Match(email, password); ok {
		s.store.SetIfCurrent(epoch, user, token)
		return nil
	}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusUnauthorized {
			return ErrInvalidCredentials
		}
		return ErrServer
	}
	return ErrConnection
}

// Register creates an account on the remote endpoint. There is no demo
// fallback here; with no remote account created there is nothing to
// fall back to.
func (s *Service) Register(name, email, password string) error {
	epoch := s.store.Epoch()

	resp, err := s.api.Register(name, email, password)
	if err == nil {
		user, token := normalizeRegister(resp, name, email)
		s.store.SetIfCurrent(epoch, user, token)
		return nil
	}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusConflict {
			return ErrDuplicateEmail
		}
		return ErrServer
	}
	return ErrConnection
}

// Logout clears the session and navigates to the login route. No
// network call is involved.
func (s *Service) Logout() {
	s.store.Clear()
	if s.navigator != nil {
		s.navigator.Navigate(guard.RouteLogin)
	}
}

// UpdateUser replaces the session's user record, e.g. after a profile
// edit. The record is not re-validated.
func (s *Service) UpdateUser(user session.User) {
	s.store.UpdateUser(user)
}

// normalizeLogin turns a server response into a session pair. A
// response without a user record is synthesized from the email; a
// response without a token gets a placeholder.
func normalizeLogin(resp *client.AuthResponse, email string) (session.User, string) {
	user := resp.User
	if user == nil {
		user = &session.User{Email: email, Name: localPart(email)}
	}
	token := resp.Token
	if token == "" {
		token = loginPlaceholderToken
	}
	return *user, token
}

func normalizeRegister(resp *client.AuthResponse, name, email string) (session.User, string) {
	user := resp.User
	if user == nil {
		user = &session.User{Email: email, Name: name}
	}
	token := resp.Token
	if token == "" {
		token = registerPlaceholderToken
	}
	return *user, token
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
