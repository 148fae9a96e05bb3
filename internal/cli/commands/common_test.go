package commands

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/insightd-dev/insightd/internal/cli/auth"
)

func TestLoginFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, want: "Invalid email or password."},
		{name: "duplicate email", err: auth.ErrDuplicateEmail, want: "already registered"},
		{name: "connection", err: auth.ErrConnection, want: "Could not reach the server"},
		{name: "server", err: auth.ErrServer, want: "server reported an error"},
		{name: "wrapped", err: fmt.Errorf("login: %w", auth.ErrConnection), want: "Could not reach the server"},
		{name: "unknown", err: errors.New("mystery"), want: "server reported an error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loginFailureMessage(tt.err)
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected message containing %q, got %q", tt.want, got)
			}
		})
	}
}
