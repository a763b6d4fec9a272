// Package stores holds the two state containers behind the storefront:
// the session (who is logged in) and the cart. Both are explicit,
// constructor-injected objects persisting into a kv.Store, never
// package-level singletons.
package stores

import (
	"context"
	"sync"

	"github.com/gmcandra/mebelshop/pkg/auth"
	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/gmcandra/mebelshop/pkg/logger"
)

// Identity is the display info derived from token claims.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session owns the bearer token and everything derived from it. The
// token is parsed structurally only; signature and expiry checks belong
// to the issuing endpoint and the request middleware, not here. A token
// that fails to parse is treated as absent: the session always lands in
// a fully logged-out shape, never a partial one.
type Session struct {
	mu    sync.Mutex
	store kv.Store
	key   string

	token         string
	authenticated bool
	role          string
	userID        uint
	identity      *Identity
}

// NewSession creates a Session persisting its token under key in store.
func NewSession(store kv.Store, key string) *Session {
	return &Session{store: store, key: key}
}

// Login decodes token and, on success, persists it and derives the
// authenticated state from its claims. On decode failure the session is
// reset to logged-out, the persisted token is cleared, and
// auth.ErrInvalidToken is returned; the bad token is never persisted.
func (s *Session) Login(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, err := auth.DecodeClaims(token)
	if err != nil {
		s.resetLocked(ctx)
		return auth.ErrInvalidToken
	}

	s.token = token
	s.authenticated = true
	s.role = claims.Role
	s.userID = claims.UserID
	s.identity = &Identity{Name: claims.Name, Email: claims.Email}

	if err := s.store.Set(ctx, s.key, []byte(token)); err != nil {
		logger.Warn("session: persist failed", "error", err)
	}
	return nil
}

// Logout unconditionally clears the session and its persisted token.
// It never fails.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(ctx)
}

// Load restores the session from storage. A missing token yields a
// logged-out session; a token that no longer decodes is removed from
// storage, same as the Login failure path.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, s.key)
	if err != nil {
		if err != kv.ErrNotFound {
			logger.Warn("session: load failed", "error", err)
		}
		s.resetStateLocked()
		return
	}

	claims, err := auth.DecodeClaims(string(raw))
	if err != nil {
		s.resetLocked(ctx)
		return
	}

	s.token = string(raw)
	s.authenticated = true
	s.role = claims.Role
	s.userID = claims.UserID
	s.identity = &Identity{Name: claims.Name, Email: claims.Email}
}

// resetLocked clears state and storage. Callers hold s.mu.
func (s *Session) resetLocked(ctx context.Context) {
	s.resetStateLocked()
	if err := s.store.Delete(ctx, s.key); err != nil && err != kv.ErrNotFound {
		logger.Warn("session: clear failed", "error", err)
	}
}

func (s *Session) resetStateLocked() {
	s.token = ""
	s.authenticated = false
	s.role = ""
	s.userID = 0
	s.identity = nil
}

// Token returns the raw bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a decodable token is present.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Role returns the role claim, or "" when logged out.
func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.Role() == auth.RoleAdmin
}

// UserID returns the user id claim, or 0 when logged out.
func (s *Session) UserID() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Identity returns the display claims, or nil when logged out.
func (s *Session) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}
