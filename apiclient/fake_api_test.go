package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/credentials"
	credentialsrepofake "github.com/jrsteele09/go-case-portal/credentials/repofake"
	"github.com/stretchr/testify/require"
)

// fakeAPI accepts one valid access token at a time. A successful refresh
// makes nextToken the valid one.
type fakeAPI struct {
	mu sync.Mutex

	validToken string
	nextToken  string

	refreshStatus   int
	refreshResponse map[string]any
	refreshDelay    time.Duration
	refreshStarted  chan struct{}
	refreshRelease  chan struct{}
	alwaysReject    bool

	refreshCalls   int
	refreshBodies  []map[string]string
	protectedCalls int
	bodies         []string
	authHeaders    []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/token/refresh/":
		f.serveRefresh(w, r)
	case "/api/auth/login/":
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
	case "/api/forbidden/":
		writeJSON(w, http.StatusForbidden, map[string]any{})
	case "/api/boom/":
		w.WriteHeader(http.StatusInternalServerError)
	case "/api/stall/":
		f.serveStall(w, r)
	default:
		f.serveProtected(w, r)
	}
}

func (f *fakeAPI) serveRefresh(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.refreshCalls++
	f.refreshBodies = append(f.refreshBodies, body)
	status := f.refreshStatus
	response := f.refreshResponse
	delay := f.refreshDelay
	started, release := f.refreshStarted, f.refreshRelease
	next := f.nextToken
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	time.Sleep(delay)

	if status != 0 && status != http.StatusOK {
		writeJSON(w, status, map[string]any{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	if response == nil {
		response = map[string]any{"access": next}
	}

	f.mu.Lock()
	f.validToken = next
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, response)
}

func (f *fakeAPI) serveProtected(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.protectedCalls++
	f.bodies = append(f.bodies, string(b))
	f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
	ok := !f.alwaysReject && r.Header.Get("Authorization") == "Bearer "+f.validToken
	f.mu.Unlock()

	if r.Header.Get(apiclient.RequestIDHeader) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "missing request id"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": r.URL.Path, "method": r.Method})
}

// serveStall counts as a protected call and never answers before the
// client gives up.
func (f *fakeAPI) serveStall(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.protectedCalls++
	f.mu.Unlock()

	select {
	case <-r.Context().Done():
	case <-time.After(5 * time.Second):
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
}

func (f *fakeAPI) counts() (refresh, protected int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.protectedCalls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	api    *fakeAPI
	server *httptest.Server
	store  *credentials.Store
	client *apiclient.Client
}

func newHarness(t *testing.T, api *fakeAPI, opts ...apiclient.Option) *harness {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	store := credentials.NewStore(credentialsrepofake.NewFakeCredentialsRepo())
	return &harness{
		api:    api,
		server: server,
		store:  store,
		client: apiclient.New(server.URL+"/api", store, opts...),
	}
}

func (h *harness) signIn(t *testing.T, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.store.SetAccessToken(ctx, access))
	require.NoError(t, h.store.SetRefreshToken(ctx, refresh))
}

func (h *harness) tokens(t *testing.T) (access, refresh string) {
	t.Helper()
	ctx := context.Background()
	access, err := h.store.AccessToken(ctx)
	require.NoError(t, err)
	refresh, err = h.store.RefreshToken(ctx)
	require.NoError(t, err)
	return access, refresh
}
