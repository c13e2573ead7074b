package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-case-portal/credentials"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/rs/zerolog"
)

// State is a point-in-time copy of the session.
type State struct {
	AccessToken     string
	Role            permissions.Role
	IsAuthenticated bool
}

// Session holds who is signed in and as which role. It mirrors the
// credential store and is the Credentials source for the request pipeline,
// so a refreshed or cleared token is visible here as soon as the pipeline
// writes it.
type Session struct {
	store    *credentials.Store
	logger   zerolog.Logger
	onChange []func(State)

	lock  sync.RWMutex
	token string
	role  permissions.Role
}

// Option configures a Session.
type Option func(*Session)

// WithOnChange registers fn to be called synchronously after every state
// change. fn must not call back into methods that modify the session.
func WithOnChange(fn func(State)) Option {
	return func(s *Session) {
		s.onChange = append(s.onChange, fn)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a session initialised from the credential store.
func New(ctx context.Context, store *credentials.Store, options ...Option) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("[sessions.New] credential store is required")
	}
	s := &Session{
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	token, err := store.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load access token: %w", err)
	}
	storedRole, err := store.Role(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	s.token = token
	if r, ok := permissions.ParseRole(storedRole); ok {
		s.role = r
	} else if storedRole != "" {
		s.logger.Warn().Str("role", storedRole).Msg("ignoring unknown stored role")
	}
	if s.token != "" && s.role == "" {
		s.role = permissions.DefaultRole
	}
	return s, nil
}

// SignIn stores the access token and makes the user authenticated. The role
// is the one given, else the role already held, else the default role.
func (s *Session) SignIn(ctx context.Context, accessToken string, role permissions.Role) error {
	if accessToken == "" {
		return fmt.Errorf("sign in: %w", errors.ErrInvalidToken)
	}
	if role != "" && !role.Valid() {
		return fmt.Errorf("sign in as %q: %w", role, errors.ErrUnknownRole)
	}

	s.lock.Lock()
	if role == "" {
		role = s.role
	}
	if role == "" {
		role = permissions.DefaultRole
	}
	if err := s.store.SetAccessToken(ctx, accessToken); err != nil {
		s.lock.Unlock()
		return err
	}
	if err := s.store.SetRole(ctx, role.String()); err != nil {
		s.lock.Unlock()
		return err
	}
	s.token = accessToken
	s.role = role
	state := s.stateLocked()
	s.lock.Unlock()

	s.logger.Debug().Str("role", role.String()).Msg("signed in")
	s.notify(state)
	return nil
}

// SignOut removes all credentials and the role. Signing out when already
// signed out is not an error.
func (s *Session) SignOut(ctx context.Context) error {
	s.lock.Lock()
	changed := s.token != "" || s.role != ""
	err := s.store.Clear(ctx)
	// Memory is reset even if the store failed so the process stops
	// sending the old token.
	s.token = ""
	s.role = ""
	state := s.stateLocked()
	s.lock.Unlock()

	if changed {
		s.logger.Debug().Msg("signed out")
		s.notify(state)
	}
	return err
}

// SetRole switches the active role.
func (s *Session) SetRole(ctx context.Context, role permissions.Role) error {
	if !role.Valid() {
		return fmt.Errorf("set role %q: %w", role, errors.ErrUnknownRole)
	}

	s.lock.Lock()
	if err := s.store.SetRole(ctx, role.String()); err != nil {
		s.lock.Unlock()
		return err
	}
	s.role = role
	state := s.stateLocked()
	s.lock.Unlock()

	s.notify(state)
	return nil
}

func (s *Session) Token() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.token
}

// Role returns the active role. A nil session has none.
func (s *Session) Role() permissions.Role {
	if s == nil {
		return ""
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.role
}

// IsAuthenticated reports whether an access token is held. A nil session
// is signed out.
func (s *Session) IsAuthenticated() bool {
	if s == nil {
		return false
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.token != ""
}

func (s *Session) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.stateLocked()
}

// AccessToken returns the token held in memory.
func (s *Session) AccessToken(_ context.Context) (string, error) {
	return s.Token(), nil
}

// SetAccessToken replaces the access token after a refresh. The role is
// left untouched.
func (s *Session) SetAccessToken(ctx context.Context, token string) error {
	s.lock.Lock()
	if err := s.store.SetAccessToken(ctx, token); err != nil {
		s.lock.Unlock()
		return err
	}
	s.token = token
	if token != "" && s.role == "" {
		s.role = permissions.DefaultRole
	}
	state := s.stateLocked()
	s.lock.Unlock()

	s.notify(state)
	return nil
}

func (s *Session) RefreshToken(ctx context.Context) (string, error) {
	return s.store.RefreshToken(ctx)
}

func (s *Session) SetRefreshToken(ctx context.Context, token string) error {
	return s.store.SetRefreshToken(ctx, token)
}

// Clear is SignOut under the name the request pipeline uses.
func (s *Session) Clear(ctx context.Context) error {
	return s.SignOut(ctx)
}

func (s *Session) stateLocked() State {
	return State{
		AccessToken:     s.token,
		Role:            s.role,
		IsAuthenticated: s.token != "",
	}
}

func (s *Session) notify(state State) {
	for _, fn := range s.onChange {
		fn(state)
	}
}
