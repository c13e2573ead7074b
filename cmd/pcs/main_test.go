package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-case-portal/server"
	"github.com/jrsteele09/go-case-portal/server/servertest"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t *testing.T
}

func newCLI(t *testing.T) *cli {
	env := servertest.New(t)
	t.Setenv("PCS_API_URL", env.HTTP.URL+server.RouteAPI)
	t.Setenv("PCS_STORAGE", "file")
	t.Setenv("PCS_CREDENTIALS_PATH", filepath.Join(t.TempDir(), "credentials.json"))
	t.Setenv("LOG_LEVEL", "error")
	return &cli{t: t}
}

func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI_SessionSurvivesBetweenRuns(t *testing.T) {
	c := newCLI(t)

	code, out, _ := c.run("status")
	require.Equal(t, 0, code)
	require.Contains(t, out, "Not signed in")

	code, out, errOut := c.run("login", "-i", "detective", "-p", servertest.Password)
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "Signed in as detective (DETECTIVE)")

	code, out, _ = c.run("status")
	require.Equal(t, 0, code)
	require.Contains(t, out, "DETECTIVE")

	code, out, errOut = c.run("cases", "list", "--status", "active")
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "C-1002")
	require.NotContains(t, out, "C-1001")

	code, out, _ = c.run("open", "/admin")
	require.Equal(t, 0, code)
	require.Contains(t, out, "redirected to /dashboard")

	code, out, _ = c.run("open", "/detective-board")
	require.Equal(t, 0, code)
	require.Contains(t, out, "allowed")

	code, out, errOut = c.run("logout")
	require.Equal(t, 0, code)
	require.Contains(t, out, "Signed out")
	require.NotContains(t, errOut, "Your session has ended")

	code, out, _ = c.run("open", "/cases")
	require.Equal(t, 0, code)
	require.Contains(t, out, "sign in first: /auth?next=%2Fcases")
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t)

	code, _, errOut := c.run("login", "-i", "citizen", "-p", "WrongPassword1")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "pcs login:")

	code, _, errOut = c.run("login", "-i", "citizen", "-p", servertest.Password)
	require.Equal(t, 0, code, errOut)

	code, _, errOut = c.run("evidence", "list")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "Permission denied")

	code, _, errOut = c.run("bogus")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "unknown command")
}

func TestCLI_ComplaintAndMetrics(t *testing.T) {
	c := newCLI(t)
	code, _, errOut := c.run("login", "citizen", "-p", servertest.Password)
	require.Equal(t, 0, code, errOut)

	code, out, errOut := c.run("--metrics", "complaints", "create", "--title", "Stolen phone", "--field", "location=Main St")
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "Stolen phone")
	require.Contains(t, out, "SUBMITTED")
	require.Contains(t, errOut, `pcs_client_requests_total{code="201"} 1`)

	code, out, _ = c.run("most-wanted")
	require.Equal(t, 0, code)
	require.Contains(t, out, "Daniel Kraus")
}
