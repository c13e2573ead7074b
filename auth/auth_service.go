package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/jrsteele09/go-case-portal/sessions"
	"github.com/jrsteele09/go-case-portal/users"
	"github.com/rs/zerolog"
)

// Backend auth endpoints, relative to the API root.
const (
	LoginPath    = "/auth/login/"
	RegisterPath = "/auth/register/"
	MePath       = "/auth/me/"
)

// LoginRequest signs in with one of username, email, phone or national id.
type LoginRequest struct {
	Identifier string
	Password   string
}

type RegisterRequest struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	NationalID      string
	Password        string
	ConfirmPassword string
}

// Result describes a completed login or registration.
type Result struct {
	User     users.User
	Role     permissions.Role
	SignedIn bool
}

// Service signs users in and out against the backend and keeps the session
// in step.
type Service struct {
	client    *apiclient.Client
	session   *sessions.Session
	validator *Validator
	logger    zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an auth Service. Both dependencies are required.
func NewService(client *apiclient.Client, session *sessions.Session, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("[auth.NewService] api client is required")
	}
	if session == nil {
		return nil, fmt.Errorf("[auth.NewService] session is required")
	}

	s := &Service{
		client:    client,
		session:   session,
		validator: NewValidator(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login exchanges credentials for tokens and signs the session in with the
// role the backend reports for the user.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, err
	}

	body := map[string]string{
		"identifier": strings.TrimSpace(req.Identifier),
		"password":   req.Password,
	}
	var raw map[string]any
	if err := s.client.Post(ctx, LoginPath, body, &raw); err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	res, err := s.signIn(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !res.SignedIn {
		return nil, fmt.Errorf("login: %w: no access token", errors.ErrMalformedResponse)
	}
	s.logger.Info().Str("user", res.User.Username).Str("role", res.Role.String()).Msg("signed in")
	return res, nil
}

// Register creates an account. When the backend answers with tokens the
// session is signed in as well.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	if err := s.validator.ValidateRegistration(req); err != nil {
		return nil, err
	}

	body := map[string]string{
		"username":    strings.TrimSpace(req.Username),
		"first_name":  strings.TrimSpace(req.FirstName),
		"last_name":   strings.TrimSpace(req.LastName),
		"email":       strings.TrimSpace(req.Email),
		"phone":       strings.TrimSpace(req.Phone),
		"national_id": strings.TrimSpace(req.NationalID),
		"password":    req.Password,
	}
	var raw map[string]any
	if err := s.client.Post(ctx, RegisterPath, body, &raw); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	res, err := s.signIn(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user", res.User.Username).Bool("signed_in", res.SignedIn).Msg("registered")
	return res, nil
}

// Me fetches the signed-in user's profile.
func (s *Service) Me(ctx context.Context) (*users.User, error) {
	if !s.session.IsAuthenticated() {
		return nil, errors.ErrSessionRequired
	}
	var u users.User
	if err := s.client.Get(ctx, MePath, &u); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &u, nil
}

// Logout forgets all credentials. It does not contact the backend.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.SignOut(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info().Msg("signed out")
	return nil
}

// signIn reads tokens and the user out of a login or registration response.
// Tokens may sit at the top level or under "tokens".
func (s *Service) signIn(ctx context.Context, raw map[string]any) (*Result, error) {
	tokens := raw
	if nested, ok := raw["tokens"].(map[string]any); ok {
		tokens = nested
	}
	access := apiclient.FirstString(tokens, "access", "access_token", "token")
	refresh := apiclient.FirstString(tokens, "refresh", "refresh_token")

	userRaw, ok := raw["user"].(map[string]any)
	if !ok {
		userRaw = raw
	}
	res := &Result{User: users.FromPayload(userRaw)}
	if access == "" {
		return res, nil
	}

	if refresh != "" {
		if err := s.session.SetRefreshToken(ctx, refresh); err != nil {
			return nil, fmt.Errorf("failed to store refresh token: %w", err)
		}
	}
	if err := s.session.SignIn(ctx, access, res.User.Role); err != nil {
		return nil, err
	}
	res.Role = s.session.Role()
	res.SignedIn = true
	return res, nil
}
