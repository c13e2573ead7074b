package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/go-case-portal/internal/config"
	"github.com/jrsteele09/go-case-portal/token"
	"github.com/jrsteele09/go-case-portal/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-case-portal/token/refresh/repofake"
	"github.com/jrsteele09/go-case-portal/users"
	fakeuserrepo "github.com/jrsteele09/go-case-portal/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Server is an in-memory stand-in for the case portal REST backend. It
// serves the same shapes under /api that the client packages consume.
type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	routeOut io.Writer
	logger   zerolog.Logger

	users         users.UserRepo
	refreshRepo   refresh.Repo
	refreshTokens *refresh.Manager
	issuer        *token.Issuer
	revoked       token.RevokedTokenCache
	rotateRefresh bool
	seedPassword  string
	nowFunc       func() time.Time

	data     *store
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithUserRepo(repo users.UserRepo) Option {
	return func(s *Server) {
		s.users = repo
	}
}

func WithRefreshRepo(repo refresh.Repo) Option {
	return func(s *Server) {
		s.refreshRepo = repo
	}
}

// WithRevokedTokenCache replaces the in-memory revocation list, e.g. with
// token.RedisRevokedTokenCache.
func WithRevokedTokenCache(cache token.RevokedTokenCache) Option {
	return func(s *Server) {
		s.revoked = cache
	}
}

// WithRefreshRotation makes the refresh endpoint issue a new refresh token
// with every access token.
func WithRefreshRotation(rotate bool) Option {
	return func(s *Server) {
		s.rotateRefresh = rotate
	}
}

// WithNowFunc sets the clock for tokens and timestamps (primarily for testing).
func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

// WithRouteOutput sets where the route table is printed in DEV.
func WithRouteOutput(w io.Writer) Option {
	return func(s *Server) {
		s.routeOut = w
	}
}

func New(cfg config.Config, options ...Option) (*Server, error) {
	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		routeOut:     os.Stdout,
		logger:       zerolog.Nop(),
		seedPassword: cfg.GetSeedPassword(),
		nowFunc:      time.Now,
		registry:     prometheus.NewRegistry(),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.users == nil {
		s.users = fakeuserrepo.NewFakeUserRepo()
	}
	if s.refreshRepo == nil {
		s.refreshRepo = refreshrepofake.NewFakeRefreshTokenRepo()
	}
	if s.revoked == nil {
		s.revoked = token.NewInMemoryRevokedTokenCache()
	}

	signer, err := token.NewSigner(cfg.GetJWTAlgorithm(), cfg.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("[server.New] failed to create signer: %w", err)
	}
	s.issuer = token.NewIssuer(signer,
		token.WithAccessTokenTTL(cfg.GetAccessTokenTTL()),
		token.WithRevokedTokenCache(s.revoked),
		token.WithNowFunc(s.nowFunc),
	)
	s.refreshTokens = refresh.NewManager(s.refreshRepo,
		refresh.WithExpiry(cfg.GetRefreshTokenTTL()),
		refresh.WithNowFunc(s.nowFunc),
	)

	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pcs_mock_requests_total",
		Help: "Requests served by the stand-in backend, by route and status code.",
	}, []string{"route", "code"})
	s.registry.MustRegister(s.requests)

	s.data = newStore(s.nowFunc)
	if err := s.bootstrap(); err != nil {
		return nil, fmt.Errorf("[server.New] failed to seed data: %w", err)
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// RevokeAccessToken invalidates an issued access token so the next request
// carrying it gets a 401.
func (s *Server) RevokeAccessToken(raw string) error {
	return s.issuer.RevokeAccessToken(raw)
}

// Users exposes the account store, e.g. to change a role during a test.
func (s *Server) Users() users.UserRepo {
	return s.users
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

// ANSI colours of the DEV route table, keyed by method.
const ansiReset = "\033[0m"

var methodColours = map[string]string{
	"GET":    "\033[32m",
	"POST":   "\033[34m",
	"PUT":    "\033[36m",
	"PATCH":  "\033[35m",
	"DELETE": "\033[33m",
}

func (s *Server) logRoute(method, path string) {
	colour, ok := methodColours[method]
	if !ok {
		colour = "\033[90m"
	}
	fmt.Fprintf(s.routeOut, "[%s %-7s%s] %s\n", colour, method, ansiReset, path)
}
