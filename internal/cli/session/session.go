// Package session holds the CLI's authenticated session: the current
// user record and bearer token, persisted across invocations.
package session

import (
	"encoding/json"
	"sync"
)

// User is the session's user record. Opaque to this package beyond
// Role; whatever the server (or demo fallback) returns is kept as-is.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// Session is an immutable snapshot of the store state. User and Token
// are always both set or both empty.
type Session struct {
	User    *User
	Token   string
	Loading bool
}

// LoggedIn reports whether the snapshot holds an authenticated user
func (s Session) LoggedIn() bool {
	return s.User != nil
}

// Store is the single source of truth for "who is logged in". It is an
// injected object; callers receive it explicitly, there is no package
// singleton. All writers go through Set/SetIfCurrent/Clear, which keep
// the user/token pair consistent in every observable state.
type Store struct {
	mu      sync.Mutex
	storage Storage
	user    *User
	token   string
	loading bool
	epoch   uint64
}

// NewStore creates a store backed by the given storage. The store
// reports Loading until Initialize has run.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage, loading: true}
}

// Initialize rehydrates the session from durable storage, best-effort.
// A missing token, missing user blob or unparseable user blob clears
// both keys from storage and leaves the session logged out. Loading
// becomes false exactly once, after the attempt completes.
func (s *Store) Initialize() {
	userJSON, token, err := s.storage.Load()

	var user *User
	if err == nil && userJSON != "" && token != "" {
		var u User
		if jsonErr := json.Unmarshal([]byte(userJSON), &u); jsonErr == nil {
			user = &u
		}
	}
	if user == nil {
		// Corrupt or partial state self-heals to logged out
		_ = s.storage.Clear()
		token = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loading {
		// Already initialized; never transition back
		return
	}
	s.user = user
	s.token = token
	s.loading = false
}

// Epoch returns the current write epoch. A caller about to perform a
// slow operation (network login) captures the epoch first and commits
// with SetIfCurrent so a concurrent Clear or Set wins deterministically.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Set persists user and token and updates the in-memory session. The
// storage write is best-effort; a failed write does not roll back the
// in-memory state.
func (s *Store) Set(user User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(user, token)
}

// SetIfCurrent commits like Set, but only when no other write happened
// since the given epoch was observed. Returns whether the commit was
// applied; a stale commit is discarded.
func (s *Store) SetIfCurrent(epoch uint64, user User, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.set(user, token)
	return true
}

func (s *Store) set(user User, token string) {
	if data, err := json.Marshal(user); err == nil {
		_ = s.storage.Save(string(data), token)
	}
	u := user
	s.user = &u
	s.token = token
	s.epoch++
}

// Clear removes the session from storage and memory. Idempotent; the
// return value reports whether a session was actually present, so a
// caller reacting to session expiry can trigger its redirect exactly
// once even when several requests fail at the same time.
func (s *Store) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.storage.Clear()
	had := s.user != nil
	s.user = nil
	s.token = ""
	s.epoch++
	return had
}

// UpdateUser replaces the user record and re-persists it; the token is
// untouched. No-op when logged out.
func (s *Store) UpdateUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	if data, err := json.Marshal(user); err == nil {
		_ = s.storage.Save(string(data), s.token)
	}
	u := user
	s.user = &u
}

// Snapshot returns a consistent view of the session
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Session{Token: s.token, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}
