// Package session owns the session credential and the identity derived from
// it. The Session store is the single writer of both; every other component
// only reads them through accessors that never require a network call.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"insightwatch/internal/api"
)

// ErrInvalidLogin is returned when the backend rejects the credentials.
var ErrInvalidLogin = errors.New("invalid email or password")

// ErrNotAuthenticated is returned by operations that need an active session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Backend is the slice of the API client the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Me(ctx context.Context) (*api.UserPayload, error)
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Session holds the credential and cached identity behind a single-writer
// lock. Reads are always consistent snapshots; listeners fire outside the
// lock so RouteGuard consumers observe the new state synchronously after
// Login/Logout return.
type Session struct {
	backend  Backend
	tokens   TokenStore
	validate *validator.Validate

	mu       sync.RWMutex
	token    string
	identity *Identity

	changed []func()
	reset   []func()
}

// New creates a session bound to a backend and a credential slot.
func New(backend Backend, tokens TokenStore) *Session {
	return &Session{
		backend:  backend,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// OnChange registers a listener fired after every auth-state transition.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = append(s.changed, fn)
}

// OnLogout registers a reset hook fired when the session ends. The selection
// scope registers here so a stale subject never leaks across identities.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset = append(s.reset, fn)
}

// Login exchanges credentials for a session token, persists it in the slot
// and caches the identity. The email is trimmed and lowercased before use.
func (s *Session) Login(ctx context.Context, email, password string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return Identity{}, fmt.Errorf("%w: %s", ErrInvalidLogin, "email and password are required")
	}

	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.APIError
		if errors.Is(err, api.ErrUnauthorized) {
			return Identity{}, ErrInvalidLogin
		}
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			return Identity{}, fmt.Errorf("%w: %s", ErrInvalidLogin, apiErr.Message)
		}
		return Identity{}, err
	}
	if result.Token == "" {
		return Identity{}, ErrInvalidLogin
	}

	identity := NewIdentity(&result.User)
	if identity.Email == "" {
		identity.Email = email
	}

	if err := s.tokens.Write(result.Token); err != nil {
		log.Warn().Err(err).Msg("Failed to persist session token; session is memory-only")
	}

	s.mu.Lock()
	s.token = result.Token
	s.identity = &identity
	changed := append([]func(){}, s.changed...)
	s.mu.Unlock()

	log.Info().Str("subject", identity.Subject).Str("role", string(identity.Role)).Msg("Logged in")
	for _, fn := range changed {
		fn()
	}
	return identity, nil
}

// Logout destroys the credential and performs a full client-side reset: the
// slot is cleared, the cached identity dropped and every reset hook fired so
// no partial state survives into the next login.
func (s *Session) Logout() {
	if err := s.tokens.Clear(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear session token slot")
	}

	s.mu.Lock()
	s.token = ""
	s.identity = nil
	reset := append([]func(){}, s.reset...)
	changed := append([]func(){}, s.changed...)
	s.mu.Unlock()

	for _, fn := range reset {
		fn()
	}
	for _, fn := range changed {
		fn()
	}
	log.Info().Msg("Logged out")
}

// IsAuthenticated reports credential presence. No network involved.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// CurrentIdentity returns a copy of the cached identity, or nil when logged
// out or not yet derived.
func (s *Session) CurrentIdentity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Role returns the current role, degraded to least-privileged when unknown.
func (s *Session) Role() Role {
	if id := s.CurrentIdentity(); id != nil {
		return id.Role
	}
	return RoleDepartmentMember
}

// Token returns the live credential for attaching to backend requests.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Restore loads the credential from the slot at process start and rebuilds
// the identity from its claims when possible.
func (s *Session) Restore() error {
	token, err := s.tokens.Read()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	s.mu.Lock()
	s.token = token
	if id, ok := identityFromToken(token); ok {
		s.identity = &id
	}
	s.mu.Unlock()
	return nil
}

// RefreshIdentity re-derives the identity from the backend's "who am I"
// endpoint. A rejected credential ends the session.
func (s *Session) RefreshIdentity(ctx context.Context) (Identity, error) {
	if !s.IsAuthenticated() {
		return Identity{}, ErrNotAuthenticated
	}

	user, err := s.backend.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			log.Info().Msg("Session credential rejected by backend; logging out")
			s.Logout()
			return Identity{}, ErrNotAuthenticated
		}
		return Identity{}, err
	}

	identity := NewIdentity(user)
	s.mu.Lock()
	s.identity = &identity
	changed := append([]func(){}, s.changed...)
	s.mu.Unlock()

	for _, fn := range changed {
		fn()
	}
	return identity, nil
}
