package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/insightd-dev/insightd/internal/cli/auth"
	"github.com/insightd-dev/insightd/internal/cli/client"
	"github.com/insightd-dev/insightd/internal/cli/guard"
	"github.com/insightd-dev/insightd/internal/cli/session"
	"github.com/insightd-dev/insightd/internal/cli/userconfig"
)

// consoleNavigator turns navigation effects into terminal guidance.
// "Redirecting to login" in the web dashboard means telling a CLI user
// which command to run next.
type consoleNavigator struct{}

func (consoleNavigator) Navigate(route guard.Route) {
	switch route {
	case guard.RouteLogin:
		fmt.Println("Not signed in. Run 'insight login' first.")
	case guard.RouteHome:
		fmt.Println("This action requires admin access.")
	}
}

// env holds the wired-up dependencies shared by all commands
type env struct {
	config    *userconfig.UserConfig
	store     *session.Store
	client    *client.Client
	authsvc   *auth.Service
	navigator guard.Navigator
}

// newEnv loads config, opens the session store (rehydrating it from
// durable storage) and wires the client and auth service together.
func newEnv() (*env, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	sessionPath, err := session.DefaultSessionPath()
	if err != nil {
		return nil, err
	}

	files := session.NewFileStorage(sessionPath)
	var storage session.Storage = session.NewKeyringStorage(files, cfg.ServerURL)
	if os.Getenv("INSIGHT_NO_KEYRING") != "" {
		// Headless environments (CI) have no keychain to talk to
		storage = files
	}

	store := session.NewStore(storage)
	store.Initialize()

	navigator := consoleNavigator{}
	apiClient := client.New(cfg.ServerURL, store, navigator)

	demo := auth.NewDemoCredentials(cfg.DemoLogin || os.Getenv("INSIGHT_DEMO_LOGIN") != "")
	authsvc := auth.NewService(apiClient, store, demo, navigator)

	return &env{
		config:    cfg,
		store:     store,
		client:    apiClient,
		authsvc:   authsvc,
		navigator: navigator,
	}, nil
}

// enableDemo turns on the demo credential fallback for this invocation
// regardless of the stored config
func (e *env) enableDemo() {
	e.authsvc = auth.NewService(e.client, e.store, auth.NewDemoCredentials(true), e.navigator)
}

// requireSession evaluates the route guard for the command and reports
// whether the caller may proceed. The guard already printed guidance
// when access was denied.
func (e *env) requireSession(requireAdmin bool) bool {
	g := guard.New(e.store, requireAdmin, e.navigator)
	return g.Evaluate() == guard.StateAuthorized
}

// loginFailureMessage maps the auth error taxonomy to what the user
// should do next
func loginFailureMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, auth.ErrDuplicateEmail):
		return "That email is already registered."
	case errors.Is(err, auth.ErrConnection):
		return "Could not reach the server. Check the server URL and your connection."
	default:
		return "The server reported an error. Try again later."
	}
}
