// Package servertest starts the stand-in backend behind an httptest server
// and wires a client session to it.
package servertest

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/auth"
	"github.com/jrsteele09/go-case-portal/credentials"
	credentialsrepofake "github.com/jrsteele09/go-case-portal/credentials/repofake"
	"github.com/jrsteele09/go-case-portal/internal/config"
	"github.com/jrsteele09/go-case-portal/server"
	"github.com/jrsteele09/go-case-portal/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// Password of every seeded demo account.
const Password = "Password1"

// Env is a running backend plus one signed-out client.
type Env struct {
	Server  *server.Server
	HTTP    *httptest.Server
	Repo    *credentialsrepofake.FakeCredentialsRepo
	Session *sessions.Session
	Client  *apiclient.Client
	Auth    *auth.Service
	Metrics *apiclient.Metrics
}

// New starts a backend configured from the environment defaults with the
// seed password forced to Password.
func New(t *testing.T, options ...server.Option) *Env {
	t.Helper()
	t.Setenv("PCS_SEED_PASSWORD", Password)

	options = append([]server.Option{server.WithRouteOutput(io.Discard)}, options...)
	srv, err := server.New(config.New(), options...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return attach(t, srv, ts)
}

// Attach returns a second signed-out client for the backend behind env, so
// a test can act as two users at once.
func Attach(t *testing.T, env *Env) *Env {
	t.Helper()
	return attach(t, env.Server, env.HTTP)
}

func attach(t *testing.T, srv *server.Server, ts *httptest.Server) *Env {
	t.Helper()
	ctx := context.Background()
	repo := credentialsrepofake.NewFakeCredentialsRepo()
	session, err := sessions.New(ctx, credentials.NewStore(repo))
	require.NoError(t, err)

	metrics := apiclient.NewMetrics(prometheus.NewRegistry())
	client := apiclient.New(ts.URL+server.RouteAPI, session, apiclient.WithMetrics(metrics))
	authService, err := auth.NewService(client, session)
	require.NoError(t, err)

	return &Env{
		Server:  srv,
		HTTP:    ts,
		Repo:    repo,
		Session: session,
		Client:  client,
		Auth:    authService,
		Metrics: metrics,
	}
}

// SignIn logs in as one of the seeded accounts, e.g. "detective".
func (e *Env) SignIn(t *testing.T, username string) *auth.Result {
	t.Helper()
	res, err := e.Auth.Login(context.Background(), auth.LoginRequest{Identifier: username, Password: Password})
	require.NoError(t, err)
	return res
}
