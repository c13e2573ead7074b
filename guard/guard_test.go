package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-case-portal/credentials"
	credentialsrepofake "github.com/jrsteele09/go-case-portal/credentials/repofake"
	"github.com/jrsteele09/go-case-portal/guard"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/jrsteele09/go-case-portal/sessions"
	"github.com/stretchr/testify/require"
)

type fixedSession struct {
	authenticated bool
	role          permissions.Role
}

func (s fixedSession) IsAuthenticated() bool { return s.authenticated }
func (s fixedSession) Role() permissions.Role { return s.role }

func signedIn(role permissions.Role) guard.Session {
	return fixedSession{authenticated: true, role: role}
}

func TestCheck(t *testing.T) {
	g := guard.New()
	admin := guard.RequireRoles(permissions.RoleAdmin)

	t.Run("anonymous goes to sign in with return location", func(t *testing.T) {
		d := g.Check(fixedSession{}, guard.RequireAuthenticated(), "/cases/C-1001")
		require.False(t, d.Allowed)
		require.Equal(t, "/auth?next=%2Fcases%2FC-1001", d.Location)
		require.Equal(t, "/cases/C-1001", d.From)
		require.Equal(t, guard.ReasonUnauthenticated, d.Reason)
	})

	t.Run("nil session is anonymous", func(t *testing.T) {
		d := g.Check(nil, guard.RequireAuthenticated(), "/dashboard")
		require.False(t, d.Allowed)
		require.Equal(t, guard.ReasonUnauthenticated, d.Reason)
	})

	t.Run("nil *sessions.Session is anonymous", func(t *testing.T) {
		var session *sessions.Session
		d := g.CheckPath(session, "/admin")
		require.False(t, d.Allowed)
		require.Equal(t, guard.ReasonUnauthenticated, d.Reason)
		require.Equal(t, "/auth?next=%2Fadmin", d.Location)
	})

	t.Run("citizen is sent to the landing page from admin", func(t *testing.T) {
		d := g.Check(signedIn(permissions.RoleCitizen), admin, "/admin")
		require.False(t, d.Allowed)
		require.Equal(t, "/dashboard", d.Location)
		require.Equal(t, guard.ReasonForbidden, d.Reason)
	})

	t.Run("admin is allowed", func(t *testing.T) {
		d := g.Check(signedIn(permissions.RoleAdmin), admin, "/admin")
		require.True(t, d.Allowed)
		require.Empty(t, d.Location)
	})

	t.Run("module requirement follows the table", func(t *testing.T) {
		board := guard.RequireModule(permissions.ModuleDetectiveBoard)
		require.True(t, g.Check(signedIn(permissions.RoleDetective), board, "/detective-board").Allowed)
		require.False(t, g.Check(signedIn(permissions.RoleCaptain), board, "/detective-board").Allowed)
	})

	t.Run("unknown role is only authenticated", func(t *testing.T) {
		require.True(t, g.Check(signedIn("SHERIFF"), guard.RequireAuthenticated(), "/x").Allowed)
		require.False(t, g.Check(signedIn("SHERIFF"), guard.RequireModule(permissions.ModuleDashboard), "/dashboard").Allowed)
	})
}

func TestCheckPath(t *testing.T) {
	g := guard.New()
	tests := []struct {
		name     string
		session  guard.Session
		path     string
		allowed  bool
		location string
	}{
		{"public home", fixedSession{}, "/", true, ""},
		{"public sign in", fixedSession{}, "/auth", true, ""},
		{"public most wanted", fixedSession{}, "/most-wanted", true, ""},
		{"anonymous dashboard", fixedSession{}, "/dashboard", false, "/auth?next=%2Fdashboard"},
		{"anonymous with query", fixedSession{}, "/cases?status=ACTIVE", false, "/auth?next=%2Fcases%3Fstatus%3DACTIVE"},
		{"citizen dashboard", signedIn(permissions.RoleCitizen), "/dashboard", true, ""},
		{"citizen cases", signedIn(permissions.RoleCitizen), "/cases/C-1001", false, "/dashboard"},
		{"officer cases", signedIn(permissions.RolePoliceOfficer), "/cases/C-1001", true, ""},
		{"judge reports", signedIn(permissions.RoleJudge), "/reports", true, ""},
		{"judge evidence", signedIn(permissions.RoleJudge), "/evidence", false, "/dashboard"},
		{"unowned path", signedIn(permissions.RoleCitizen), "/profile", true, ""},
		{"unknown role landing", signedIn("SHERIFF"), "/dashboard", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.CheckPath(tt.session, tt.path)
			require.Equal(t, tt.allowed, d.Allowed)
			require.Equal(t, tt.location, d.Location)
		})
	}
}

func TestOptions(t *testing.T) {
	g := guard.New(
		guard.WithSignInPath("/login"),
		guard.WithLandingPath("/home"),
		guard.WithPublicPaths("/login"),
	)
	require.Equal(t, "/login?next=%2F", g.CheckPath(fixedSession{}, "/").Location)
	require.Equal(t, "/login", g.SignInLocation("/login"))
	require.Equal(t, "/home", g.CheckPath(signedIn(permissions.RoleCitizen), "/admin").Location)
}

func TestRequire_Middleware(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewStore(credentialsrepofake.NewFakeCredentialsRepo())
	session, err := sessions.New(ctx, store)
	require.NoError(t, err)

	g := guard.New()
	handler := g.Require(session, guard.RequireModule(permissions.ModuleReports))(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/reports?case=C-1001", nil))
		return rec
	}

	rec := serve()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth?next=%2Freports%3Fcase%3DC-1001", rec.Header().Get("Location"))

	require.NoError(t, session.SignIn(ctx, "tok", permissions.RoleDetective))
	rec = serve()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	require.NoError(t, session.SetRole(ctx, permissions.RoleChief))
	require.Equal(t, http.StatusNoContent, serve().Code)

	require.NoError(t, session.SignOut(ctx))
	require.Equal(t, http.StatusSeeOther, serve().Code)
}
