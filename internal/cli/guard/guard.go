// Package guard gates access to protected views based on session state
// and role.
package guard

import (
	"github.com/insightd-dev/insightd/internal/cli/session"
)

// Route is a symbolic navigation target. Concrete destinations are an
// application concern (a URL in the web dashboard, a suggested command
// in the CLI).
type Route string

const (
	RouteLogin Route = "login"
	RouteHome  Route = "home"
)

// Navigator executes a navigation effect. Implementations must be safe
// to call once per guard transition.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(route Route)

func (f NavigatorFunc) Navigate(route Route) {
	f(route)
}

// State is the guard's view of the session.
//
// Unknown is the only initial state and is held exactly while the
// session store is still loading. Authorized renders the protected
// content. Unauthorized and Forbidden terminate in a navigation effect
// and render nothing. No transition returns to Unknown.
type State int

const (
	StateUnknown State = iota
	StateAuthorized
	StateUnauthorized
	StateForbidden
)

func (s State) String() string {
	switch s {
	case StateAuthorized:
		return "authorized"
	case StateUnauthorized:
		return "unauthorized"
	case StateForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Guard evaluates session state for one protected view. The navigation
// effect is emitted from Evaluate as an explicit command, never during
// the decision itself, and at most once per transition: re-evaluating
// in the same denied state does not navigate again, so a guard mounted
// on the navigation target cannot loop.
type Guard struct {
	store        *session.Store
	requireAdmin bool
	navigator    Navigator
	redirected   bool
}

// New creates a guard. requireAdmin additionally demands the admin role.
func New(store *session.Store, requireAdmin bool, navigator Navigator) *Guard {
	return &Guard{
		store:        store,
		requireAdmin: requireAdmin,
		navigator:    navigator,
	}
}

// Evaluate returns the current state and, on the first transition into
// a denied state, emits the navigation effect: Unauthorized navigates
// to the login route, Forbidden to the home route.
//
// Callers render a loading placeholder for Unknown, the protected
// content for Authorized, and nothing at all for the denied states.
func (g *Guard) Evaluate() State {
	snap := g.store.Snapshot()
	if snap.Loading {
		return StateUnknown
	}

	switch {
	case snap.User == nil:
		g.redirect(RouteLogin)
		return StateUnauthorized
	case g.requireAdmin && !snap.User.IsAdmin():
		g.redirect(RouteHome)
		return StateForbidden
	}

	// A fresh authorization re-arms the redirect for a later logout
	g.redirected = false
	return StateAuthorized
}

func (g *Guard) redirect(route Route) {
	if g.redirected || g.navigator == nil {
		return
	}
	g.redirected = true
	g.navigator.Navigate(route)
}
