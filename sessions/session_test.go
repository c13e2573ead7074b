package sessions_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-case-portal/credentials"
	credentialsrepofake "github.com/jrsteele09/go-case-portal/credentials/repofake"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/jrsteele09/go-case-portal/sessions"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, seed map[string]string, options ...sessions.Option) (*sessions.Session, *credentials.Store) {
	t.Helper()
	repo := credentialsrepofake.NewFakeCredentialsRepo()
	repo.Seed(seed)
	store := credentials.NewStore(repo)
	s, err := sessions.New(context.Background(), store, options...)
	require.NoError(t, err)
	return s, store
}

func TestNew_LoadsFromStore(t *testing.T) {
	s, _ := newSession(t, map[string]string{"access_token": "tok", "role": "JUDGE"})
	require.True(t, s.IsAuthenticated())
	require.Equal(t, "tok", s.Token())
	require.Equal(t, permissions.RoleJudge, s.Role())

	s, _ = newSession(t, map[string]string{"pcs_token": "legacy", "role": "nonsense"})
	require.True(t, s.IsAuthenticated())
	require.Equal(t, permissions.DefaultRole, s.Role())

	s, _ = newSession(t, nil)
	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Role())
}

func TestSignIn_RoleResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("stored role is kept", func(t *testing.T) {
		s, store := newSession(t, map[string]string{"role": "DETECTIVE"})
		require.NoError(t, s.SignIn(ctx, "tok", ""))
		require.Equal(t, permissions.RoleDetective, s.Role())

		role, err := store.Role(ctx)
		require.NoError(t, err)
		require.Equal(t, "DETECTIVE", role)
	})

	t.Run("default role when none is known", func(t *testing.T) {
		s, store := newSession(t, nil)
		require.NoError(t, s.SignIn(ctx, "tok", ""))
		require.Equal(t, permissions.RoleCitizen, s.Role())
		require.True(t, s.IsAuthenticated())

		tok, err := store.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "tok", tok)
	})

	t.Run("explicit role wins", func(t *testing.T) {
		s, _ := newSession(t, map[string]string{"role": "DETECTIVE"})
		require.NoError(t, s.SignIn(ctx, "tok", permissions.RoleAdmin))
		require.Equal(t, permissions.RoleAdmin, s.Role())
	})

	t.Run("rejects unknown role and empty token", func(t *testing.T) {
		s, _ := newSession(t, nil)
		require.ErrorIs(t, s.SignIn(ctx, "tok", "SHERIFF"), errors.ErrUnknownRole)
		require.ErrorIs(t, s.SignIn(ctx, "", permissions.RoleAdmin), errors.ErrInvalidToken)
		require.False(t, s.IsAuthenticated())
	})
}

func TestSignOut_Idempotent(t *testing.T) {
	ctx := context.Background()
	var changes int
	s, store := newSession(t, map[string]string{"refresh_token": "r"}, sessions.WithOnChange(func(sessions.State) { changes++ }))

	require.NoError(t, s.SignIn(ctx, "tok", permissions.RoleCaptain))
	require.NoError(t, s.SignOut(ctx))
	first := s.State()
	require.NoError(t, s.SignOut(ctx))
	require.Equal(t, first, s.State())

	require.Equal(t, sessions.State{}, first)
	require.Equal(t, 2, changes, "second sign-out is not a change")

	rt, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	require.Empty(t, rt)
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	var last sessions.State
	s, store := newSession(t, nil, sessions.WithOnChange(func(st sessions.State) { last = st }))
	require.NoError(t, s.SignIn(ctx, "tok", ""))

	require.NoError(t, s.SetRole(ctx, permissions.RoleChief))
	require.Equal(t, permissions.RoleChief, last.Role)
	role, err := store.Role(ctx)
	require.NoError(t, err)
	require.Equal(t, "CHIEF", role)

	require.ErrorIs(t, s.SetRole(ctx, "captain"), errors.ErrUnknownRole)
	require.Equal(t, permissions.RoleChief, s.Role())
}

func TestSession_Credentials(t *testing.T) {
	ctx := context.Background()
	s, store := newSession(t, nil)
	require.NoError(t, s.SignIn(ctx, "old", permissions.RoleDetective))

	require.NoError(t, s.SetAccessToken(ctx, "new"))
	tok, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", tok)
	stored, err := store.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", stored)
	require.Equal(t, permissions.RoleDetective, s.Role())

	require.NoError(t, s.SetRefreshToken(ctx, "rt"))
	rt, err := s.RefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "rt", rt)

	require.NoError(t, s.Clear(ctx))
	require.False(t, s.IsAuthenticated())
	rt, err = s.RefreshToken(ctx)
	require.NoError(t, err)
	require.Empty(t, rt)
}
