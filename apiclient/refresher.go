package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// All refreshes share one key: there is at most one in flight at a time.
const refreshKey = "refresh"

const maxRefreshBody = 1 << 20

// Refresher exchanges the stored refresh token for a new access token.
// Concurrent callers share a single exchange.
type Refresher struct {
	endpoint string
	creds    Credentials
	client   *http.Client
	timeout  time.Duration
	logger   zerolog.Logger
	metrics  *Metrics
	group    singleflight.Group
}

// NewRefresher creates a Refresher that posts to endpoint, a full URL.
func NewRefresher(endpoint string, creds Credentials, opts ...Option) *Refresher {
	return newRefresher(endpoint, creds, newOptions(opts))
}

func newRefresher(endpoint string, creds Credentials, o *options) *Refresher {
	return &Refresher{
		endpoint: endpoint,
		creds:    creds,
		// The plain base transport: the refresh call itself is never
		// intercepted.
		client:  &http.Client{Transport: o.base},
		timeout: o.refreshTimeout,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Refresh returns an access token to retry with. stale is the token the
// failed request was sent with; if the stored token has already moved on,
// the stored token is returned without calling the endpoint.
//
// The exchange is detached from ctx: cancelling ctx stops this caller's
// wait but leaves the exchange running for the others.
func (r *Refresher) Refresh(ctx context.Context, stale string) (string, error) {
	ch := r.group.DoChan(refreshKey, func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx), stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (r *Refresher) refresh(ctx context.Context, stale string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	current, err := r.creds.AccessToken(ctx)
	if err == nil && current != "" && current != stale {
		r.metrics.refresh(RefreshReused)
		return current, nil
	}

	refreshToken, err := r.creds.RefreshToken(ctx)
	if err != nil {
		return "", r.fail(ctx, err)
	}
	if refreshToken == "" {
		return "", r.fail(ctx, errors.ErrNoRefreshToken)
	}

	body, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", r.fail(ctx, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", r.fail(ctx, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", r.fail(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRefreshBody))
	if err != nil {
		return "", r.fail(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", r.fail(ctx, newError(resp.StatusCode, raw))
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", r.fail(ctx, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err))
	}
	access := FirstString(payload, "access", "access_token", "token")
	if access == "" {
		return "", r.fail(ctx, fmt.Errorf("%w: no access token in refresh response", errors.ErrMalformedResponse))
	}

	if err := r.creds.SetAccessToken(ctx, access); err != nil {
		return "", r.fail(ctx, err)
	}
	if rotated := FirstString(payload, "refresh", "refresh_token"); rotated != "" {
		if err := r.creds.SetRefreshToken(ctx, rotated); err != nil {
			r.logger.Warn().Err(err).Msg("failed to store rotated refresh token")
		}
	}

	r.metrics.refresh(RefreshSuccess)
	r.logger.Debug().Msg("access token refreshed")
	return access, nil
}

// fail drops all credentials so no caller keeps using a token that can no
// longer be renewed.
func (r *Refresher) fail(ctx context.Context, cause error) error {
	r.metrics.refresh(RefreshFailure)
	r.logger.Warn().Err(cause).Msg("token refresh failed, clearing credentials")
	if err := r.creds.Clear(context.WithoutCancel(ctx)); err != nil {
		r.logger.Error().Err(err).Msg("failed to clear credentials")
	}
	return fmt.Errorf("%w: %w", errors.ErrRefreshFailed, cause)
}
