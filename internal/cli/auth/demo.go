package auth

import "github.com/insightd-dev/insightd/internal/cli/session"

// demoEntry maps fixed demo credentials to a canned user record.
//
// These are plaintext demo accounts compiled into the client. They are
// only consulted when demo mode is explicitly enabled, and production
// builds must keep it disabled.
type demoEntry struct {
	email    string
	password string
	user     session.User
	token    string
}

var demoEntries = []demoEntry{
	{
		email:    "admin@aibusiness.com",
		password: "admin123",
		user:     session.User{ID: "1", Email: "admin@aibusiness.com", Name: "Administrator", Role: "admin"},
		token:    "demo-admin-token",
	},
	{
		email:    "user@example.com",
		password: "user123",
		user:     session.User{ID: "2", Email: "user@example.com", Name: "Demo User", Role: "user"},
		token:    "demo-user-token",
	},
}

// DemoCredentials is the demo-mode fallback table
type DemoCredentials struct {
	enabled bool
}

// NewDemoCredentials creates the fallback table; pass enabled=false for
// a table that never matches.
func NewDemoCredentials(enabled bool) *DemoCredentials {
	return &DemoCredentials{enabled: enabled}
}

// Enabled reports whether demo mode is on
func (d *DemoCredentials) Enabled() bool {
	return d.enabled
}

// IsDemoToken reports whether the token came from the demo table, so
// the CLI can warn that the session is not backed by the server.
func IsDemoToken(token string) bool {
	for _, entry := range demoEntries {
		if entry.token == token {
			return true
		}
	}
	return false
}

// Match checks the credentials against the demo table. Requires an
// exact email and password match.
func (d *DemoCredentials) Match(email, password string) (session.User, string, bool) {
	if !d.enabled {
		return session.User{}, "", false
	}
	for _, entry := range demoEntries {
		if entry.email == email && entry.password == password {
			return entry.user, entry.token, true
		}
	}
	return session.User{}, "", false
}
