package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout        = 20 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	defaultRefreshPath    = "/auth/token/refresh/"
)

// Credentials is where the pipeline reads and writes tokens. It is
// satisfied by *credentials.Store and *sessions.Session.
type Credentials interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	RefreshToken(ctx context.Context) (string, error)
	SetRefreshToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type options struct {
	base           http.RoundTripper
	timeout        time.Duration
	refreshTimeout time.Duration
	refreshPath    string
	exemptPaths    []string
	logger         zerolog.Logger
	metrics        *Metrics
}

// Option configures a Client, Transport or Refresher.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		base:           http.DefaultTransport,
		timeout:        defaultTimeout,
		refreshTimeout: defaultRefreshTimeout,
		refreshPath:    defaultRefreshPath,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBaseTransport sets the RoundTripper that actually sends requests.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		if rt != nil {
			o.base = rt
		}
	}
}

// WithTimeout bounds one logical call, including any refresh and retry.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRefreshTimeout bounds the token refresh call on its own.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.refreshTimeout = d
		}
	}
}

// WithRefreshPath sets the refresh endpoint path relative to the base URL.
func WithRefreshPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.refreshPath = path
		}
	}
}

// WithExemptPaths adds path suffixes whose 401 responses are returned
// without a refresh attempt.
func WithExemptPaths(suffixes ...string) Option {
	return func(o *options) {
		o.exemptPaths = append(o.exemptPaths, suffixes...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

type noRefreshKey struct{}

type retriedKey struct{}

// WithoutRefresh marks requests made with ctx so that a 401 is returned to
// the caller as-is instead of triggering a token refresh.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRefreshKey{}, true)
}

func refreshDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(noRefreshKey{}).(bool)
	return v
}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func retried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}
