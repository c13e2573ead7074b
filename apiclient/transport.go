package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-attempt id for correlating client and
// server logs.
const RequestIDHeader = "X-Request-ID"

// Endpoints whose 401 means "wrong credentials", not "expired token".
var defaultExemptPaths = []string{
	"/auth/login/",
	"/auth/register/",
	"/auth/token/refresh/",
}

// Transport attaches the bearer token to outgoing requests and, when a
// request comes back 401, refreshes the token once and re-sends it.
type Transport struct {
	base      http.RoundTripper
	creds     Credentials
	refresher *Refresher
	exempt    []string
	logger    zerolog.Logger
	metrics   *Metrics
}

var _ http.RoundTripper = (*Transport)(nil)

// NewTransport creates a Transport reading tokens from creds. When
// refresher is nil a 401 is always returned to the caller as-is.
func NewTransport(creds Credentials, refresher *Refresher, opts ...Option) *Transport {
	return newTransport(creds, refresher, newOptions(opts))
}

func newTransport(creds Credentials, refresher *Refresher, o *options) *Transport {
	exempt := append([]string{}, defaultExemptPaths...)
	exempt = append(exempt, o.refreshPath)
	exempt = append(exempt, o.exemptPaths...)
	return &Transport{
		base:      o.base,
		creds:     creds,
		refresher: refresher,
		exempt:    exempt,
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	token, err := t.creds.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}

	resp, err := t.send(req, getBody, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !t.refreshable(req) || retried(ctx) {
		return resp, nil
	}

	fresh, err := t.refresher.Refresh(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			drain(resp)
			return nil, ctx.Err()
		}
		t.logger.Debug().Err(err).Str("path", req.URL.Path).Msg("returning 401 after failed refresh")
		return resp, nil
	}

	drain(resp)
	t.metrics.retry()
	retry := req.WithContext(markRetried(ctx))
	return t.send(retry, getBody, fresh)
}

// send issues one attempt on a copy of req.
func (t *Transport) send(req *http.Request, getBody func() (io.ReadCloser, error), token string) (*http.Response, error) {
	attempt := req.Clone(req.Context())
	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		attempt.Body = body
		attempt.GetBody = getBody
	}
	attempt.Header.Del("Authorization")
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(attempt)
	}
	attempt.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := t.base.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	t.metrics.request(resp.StatusCode)
	t.logger.Debug().
		Str("method", attempt.Method).
		Str("path", attempt.URL.Path).
		Int("status", resp.StatusCode).
		Str("request_id", attempt.Header.Get(RequestIDHeader)).
		Msg("api request")
	return resp, nil
}

func (t *Transport) refreshable(req *http.Request) bool {
	if t.refresher == nil || refreshDisabled(req.Context()) {
		return false
	}
	for _, suffix := range t.exempt {
		if suffix != "" && strings.HasSuffix(req.URL.Path, suffix) {
			return false
		}
	}
	return true
}

// replayableBody returns a function producing fresh copies of the request
// body, buffering it when the request cannot rewind itself. The original
// body is closed either way.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	if req.GetBody != nil {
		return req.GetBody, nil
	}
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to buffer request body")
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
