// Package store manages the client's persisted session state: the auth
// token and the cached user issued by the backend after the OAuth handoff.
// The session is an explicit object handed to whoever needs it, never a
// package global, and the on-disk copy is the only thing that survives
// between runs.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avikr/stax/internal/domain"
)

// ErrNotAuthenticated indicates an operation that needs a session was
// attempted anonymously.
var ErrNotAuthenticated = errors.New("not authenticated")

// sessionFile is the persisted shape. The cached user goes stale until the
// next profile fetch; the backend copy is authoritative.
type sessionFile struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Session holds the current auth state and its backing file.
type Session struct {
	path  string
	token string
	user  *domain.User
}

// DefaultPath returns the session file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "stax", "session.json"), nil
}

// Open loads the session at path. A missing or unreadable file yields an
// anonymous session rather than an error, so a corrupt file never locks
// the user out of the app.
func Open(path string) *Session {
	s := &Session{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil || f.Token == "" {
		return s
	}

	s.token = f.Token
	s.user = f.User
	return s
}

// Token returns the bearer token, or "" when anonymous.
func (s *Session) Token() string {
	return s.token
}

// User returns the cached user, or nil when anonymous.
func (s *Session) User() *domain.User {
	return s.user
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.token != ""
}

// Owns reports whether the session user owns the given component. The
// backend records Component.OwnerID as the user's provider ID.
func (s *Session) Owns(c *domain.Component) bool {
	return s.user != nil && c != nil && c.OwnerID == s.user.ProviderID
}

// SetAuth stores the token and user and persists them.
func (s *Session) SetAuth(token string, user domain.User) error {
	s.token = token
	s.user = &user
	return s.save()
}

// RefreshUser replaces the cached user copy and persists it. Called after
// a profile fetch so the stale copy catches up.
func (s *Session) RefreshUser(user domain.User) error {
	if s.token == "" {
		return ErrNotAuthenticated
	}
	s.user = &user
	return s.save()
}

// Clear wipes the session in memory and on disk.
func (s *Session) Clear() error {
	s.token = ""
	s.user = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

func (s *Session) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	raw, err := json.MarshalIndent(sessionFile{Token: s.token, User: s.user}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	// Token material - keep the file private.
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}
