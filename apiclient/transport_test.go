package apiclient_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTransport_AttachesBearer(t *testing.T) {
	h := newHarness(t, &fakeAPI{validToken: "good"})
	h.signIn(t, "good", "r1")

	var out map[string]string
	require.NoError(t, h.client.Get(context.Background(), "/cases/", &out))
	require.Equal(t, "/api/cases/", out["path"])

	refreshes, protected := h.api.counts()
	require.Zero(t, refreshes)
	require.Equal(t, 1, protected)
}

func TestTransport_UnauthenticatedRequestHasNoHeader(t *testing.T) {
	h := newHarness(t, &fakeAPI{validToken: "good"})

	err := h.client.Get(context.Background(), "/cases/", nil)
	require.ErrorIs(t, err, errors.ErrUnauthorized)

	h.api.mu.Lock()
	require.Equal(t, []string{""}, h.api.authHeaders)
	h.api.mu.Unlock()

	refreshes, _ := h.api.counts()
	require.Zero(t, refreshes, "without a refresh token the endpoint is never called")
}

func TestTransport_RefreshesOnceForConcurrentRequests(t *testing.T) {
	api := &fakeAPI{validToken: "fresh", nextToken: "fresh", refreshDelay: 50 * time.Millisecond}
	reg := prometheus.NewRegistry()
	metrics := apiclient.NewMetrics(reg)
	h := newHarness(t, api, apiclient.WithMetrics(metrics))
	h.signIn(t, "stale", "r1")

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- h.client.Get(context.Background(), "/cases/", nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	refreshes, _ := api.counts()
	require.Equal(t, 1, refreshes)
	api.mu.Lock()
	require.Equal(t, []map[string]string{{"refresh": "r1"}}, api.refreshBodies)
	api.mu.Unlock()

	access, _ := h.tokens(t)
	require.Equal(t, "fresh", access)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Refresh.WithLabelValues(apiclient.RefreshSuccess)))
	require.Zero(t, testutil.ToFloat64(metrics.Refresh.WithLabelValues(apiclient.RefreshFailure)))
}

func TestTransport_LateUnauthorizedReusesNewToken(t *testing.T) {
	api := &fakeAPI{validToken: "fresh", nextToken: "fresh"}
	h := newHarness(t, api)
	h.signIn(t, "fresh", "r1")

	// A request sent with an old token after the store has moved on.
	refresher := h.client.Refresher()
	tok, err := refresher.Refresh(context.Background(), "stale")
	require.NoError(t, err)
	require.Equal(t, "fresh", tok)

	refreshes, _ := api.counts()
	require.Zero(t, refreshes)
}

func TestTransport_RetriesAtMostOnce(t *testing.T) {
	api := &fakeAPI{validToken: "a1", nextToken: "a2", alwaysReject: true}
	metrics := apiclient.NewMetrics(nil)
	h := newHarness(t, api, apiclient.WithMetrics(metrics))
	h.signIn(t, "a1", "r1")

	err := h.client.Get(context.Background(), "/cases/", nil)
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	refreshes, protected := api.counts()
	require.Equal(t, 1, refreshes)
	require.Equal(t, 2, protected)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Retries))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.Requests.WithLabelValues("401")))

	// The refresh itself worked, so the new credentials stay.
	access, refresh := h.tokens(t)
	require.Equal(t, "a2", access)
	require.Equal(t, "r1", refresh)
}

func TestTransport_ExemptRequests(t *testing.T) {
	t.Run("login", func(t *testing.T) {
		api := &fakeAPI{validToken: "a1", nextToken: "a2"}
		h := newHarness(t, api)
		h.signIn(t, "a1", "r1")

		err := h.client.Post(context.Background(), "/auth/login/", map[string]string{"identifier": "x", "password": "y"}, nil)
		require.ErrorIs(t, err, errors.ErrUnauthorized)
		require.Equal(t, "No active account found with the given credentials", apiclient.Message(err))

		refreshes, _ := api.counts()
		require.Zero(t, refreshes)
		access, refresh := h.tokens(t)
		require.Equal(t, "a1", access)
		require.Equal(t, "r1", refresh)
	})

	t.Run("marked context", func(t *testing.T) {
		api := &fakeAPI{validToken: "a1", nextToken: "a2"}
		h := newHarness(t, api)
		h.signIn(t, "old", "r1")

		err := h.client.Get(apiclient.WithoutRefresh(context.Background()), "/cases/", nil)
		require.ErrorIs(t, err, errors.ErrUnauthorized)
		refreshes, _ := api.counts()
		require.Zero(t, refreshes)
	})

	t.Run("extra exempt path", func(t *testing.T) {
		api := &fakeAPI{validToken: "a1", nextToken: "a2"}
		h := newHarness(t, api, apiclient.WithExemptPaths("/auth/me/"))
		h.signIn(t, "old", "r1")

		err := h.client.Get(context.Background(), "/auth/me/", nil)
		require.ErrorIs(t, err, errors.ErrUnauthorized)
		refreshes, _ := api.counts()
		require.Zero(t, refreshes)
	})
}

func TestTransport_RefreshFailureClearsCredentials(t *testing.T) {
	t.Run("endpoint rejects refresh token", func(t *testing.T) {
		api := &fakeAPI{validToken: "a1", refreshStatus: http.StatusUnauthorized}
		metrics := apiclient.NewMetrics(nil)
		h := newHarness(t, api, apiclient.WithMetrics(metrics))
		h.signIn(t, "old", "expired-refresh")

		err := h.client.Get(context.Background(), "/cases/", nil)
		var apiErr *apiclient.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Given token not valid for any token type", apiErr.Message, "the original 401 is returned")

		access, refresh := h.tokens(t)
		require.Empty(t, access)
		require.Empty(t, refresh)
		_, protected := api.counts()
		require.Equal(t, 1, protected)
		require.Equal(t, float64(1), testutil.ToFloat64(metrics.Refresh.WithLabelValues(apiclient.RefreshFailure)))
	})

	t.Run("every waiter sees the failure", func(t *testing.T) {
		const callers = 6
		api := &fakeAPI{
			validToken:     "a1",
			refreshStatus:  http.StatusUnauthorized,
			refreshStarted: make(chan struct{}, callers),
			refreshRelease: make(chan struct{}),
		}
		h := newHarness(t, api)
		h.signIn(t, "old", "expired-refresh")

		errs := make(chan error, callers)
		for i := 0; i < callers; i++ {
			go func() {
				errs <- h.client.Get(context.Background(), "/cases/", nil)
			}()
		}

		<-api.refreshStarted
		require.Eventually(t, func() bool {
			_, protected := api.counts()
			return protected == callers
		}, 2*time.Second, 5*time.Millisecond)
		close(api.refreshRelease)

		for i := 0; i < callers; i++ {
			require.ErrorIs(t, <-errs, errors.ErrUnauthorized)
		}
		refreshes, protected := api.counts()
		require.Equal(t, 1, refreshes)
		require.Equal(t, callers, protected)

		access, refresh := h.tokens(t)
		require.Empty(t, access)
		require.Empty(t, refresh)
	})

	t.Run("no refresh token stored", func(t *testing.T) {
		api := &fakeAPI{validToken: "a1", nextToken: "a2"}
		h := newHarness(t, api)
		h.signIn(t, "old", "")

		err := h.client.Get(context.Background(), "/cases/", nil)
		require.ErrorIs(t, err, errors.ErrUnauthorized)
		refreshes, _ := api.counts()
		require.Zero(t, refreshes)
		access, _ := h.tokens(t)
		require.Empty(t, access)
	})

	t.Run("malformed refresh response", func(t *testing.T) {
		api := &fakeAPI{validToken: "a1", nextToken: "a2", refreshResponse: map[string]any{"access": 42}}
		h := newHarness(t, api)
		h.signIn(t, "old", "r1")

		_, err := h.client.Refresher().Refresh(context.Background(), "old")
		require.ErrorIs(t, err, errors.ErrRefreshFailed)
		require.ErrorIs(t, err, errors.ErrMalformedResponse)
		access, refresh := h.tokens(t)
		require.Empty(t, access)
		require.Empty(t, refresh)
	})
}

func TestTransport_RefreshResponseShapes(t *testing.T) {
	tests := []struct {
		name        string
		response    map[string]any
		wantAccess  string
		wantRefresh string
	}{
		{"access", map[string]any{"access": "a2"}, "a2", "r1"},
		{"access_token before token", map[string]any{"access_token": "a3", "token": "a4"}, "a3", "r1"},
		{"token only", map[string]any{"token": "a4"}, "a4", "r1"},
		{"access wins over access_token", map[string]any{"access": "a2", "access_token": "a3"}, "a2", "r1"},
		{"rotated refresh", map[string]any{"access": "a2", "refresh": "r2"}, "a2", "r2"},
		{"rotated refresh_token", map[string]any{"access": "a2", "refresh_token": "r3"}, "a2", "r3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{validToken: "a1", refreshResponse: tt.response}
			h := newHarness(t, api)
			h.signIn(t, "a1", "r1")

			tok, err := h.client.Refresher().Refresh(context.Background(), "a1")
			require.NoError(t, err)
			require.Equal(t, tt.wantAccess, tok)

			access, refresh := h.tokens(t)
			require.Equal(t, tt.wantAccess, access)
			require.Equal(t, tt.wantRefresh, refresh)
		})
	}
}

func TestTransport_NonUnauthorizedPassThrough(t *testing.T) {
	api := &fakeAPI{validToken: "a1"}
	h := newHarness(t, api)
	h.signIn(t, "a1", "r1")
	ctx := context.Background()

	err := h.client.Get(ctx, "/forbidden/", nil)
	require.ErrorIs(t, err, errors.ErrForbidden)
	require.Equal(t, "You do not have permission to perform this action.", apiclient.Message(err))

	err = h.client.Get(ctx, "/boom/", nil)
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.ErrorIs(t, err, errors.ErrInternal)
	require.Equal(t, "Server error. Please try again later.", apiclient.Message(err))

	refreshes, _ := api.counts()
	require.Zero(t, refreshes)
	access, _ := h.tokens(t)
	require.Equal(t, "a1", access)

	h.server.Close()
	err = h.client.Get(ctx, "/cases/", nil)
	require.Error(t, err)
	require.Equal(t, "Network error. Please check your connection.", apiclient.Message(err))
	access, _ = h.tokens(t)
	require.Equal(t, "a1", access)
}

func TestTransport_TimeoutIsNotRefreshed(t *testing.T) {
	api := &fakeAPI{validToken: "a1", nextToken: "a2"}
	h := newHarness(t, api, apiclient.WithTimeout(30*time.Millisecond))
	h.signIn(t, "a1", "r1")

	err := h.client.Get(context.Background(), "/stall/", nil)
	require.Error(t, err)
	require.Equal(t, "Request timed out. Please try again.", apiclient.Message(err))

	refreshes, protected := api.counts()
	require.Zero(t, refreshes)
	require.Equal(t, 1, protected)
	access, refresh := h.tokens(t)
	require.Equal(t, "a1", access)
	require.Equal(t, "r1", refresh)
}

func TestTransport_ReplaysBodyOnRetry(t *testing.T) {
	api := &fakeAPI{validToken: "fresh", nextToken: "fresh"}
	h := newHarness(t, api)
	h.signIn(t, "stale", "r1")

	require.NoError(t, h.client.Post(context.Background(), "/intake/complaints/", map[string]string{"title": "Stolen bike"}, nil))

	// A body that cannot rewind itself is buffered.
	h.signIn(t, "stale-again", "r1")
	api.mu.Lock()
	api.validToken, api.nextToken = "fresh-2", "fresh-2"
	api.mu.Unlock()

	req, err := http.NewRequest(http.MethodPost, h.client.BaseURL()+"/intake/complaints/", io.NopCloser(strings.NewReader("raw-body")))
	require.NoError(t, err)
	require.Nil(t, req.GetBody)
	resp, err := h.client.HTTPClient().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Equal(t, []string{
		`{"title":"Stolen bike"}`,
		`{"title":"Stolen bike"}`,
		"raw-body",
		"raw-body",
	}, api.bodies)
}

func TestTransport_CancelledWaiterLeavesRefreshRunning(t *testing.T) {
	api := &fakeAPI{
		validToken:     "fresh",
		nextToken:      "fresh",
		refreshStarted: make(chan struct{}, 1),
		refreshRelease: make(chan struct{}),
	}
	h := newHarness(t, api)
	h.signIn(t, "stale", "r1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.client.Get(ctx, "/cases/", nil)
	}()

	<-api.refreshStarted
	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)

	close(api.refreshRelease)
	require.Eventually(t, func() bool {
		access, _ := h.tokens(t)
		return access == "fresh"
	}, 2*time.Second, 10*time.Millisecond)
}
