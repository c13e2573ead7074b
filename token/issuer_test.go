package token_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-case-portal/credentials"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/jrsteele09/go-case-portal/token"
	"github.com/jrsteele09/go-case-portal/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const secretStr = "1234"

var testUser = &users.User{ID: "7", Username: "jdoe", Role: permissions.RoleDetective}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newIssuer(t *testing.T, c *clock, options ...token.IssuerOption) *token.Issuer {
	t.Helper()
	options = append([]token.IssuerOption{
		token.WithNowFunc(c.Now),
		token.WithAccessTokenTTL(time.Minute),
	}, options...)
	return token.NewIssuer(token.NewHMACSigner(secretStr), options...)
}

func TestIssuerRoundTrip(t *testing.T) {
	c := &clock{now: time.Now()}
	issuer := newIssuer(t, c)

	raw, err := issuer.CreateAccessToken(testUser)
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "7", claims.UserID)
	require.Equal(t, "jdoe", claims.Username)
	require.Equal(t, permissions.RoleDetective, claims.Role)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, c.now.Add(time.Minute).Unix(), claims.ExpiresAt.Unix())

	// The client's unverified view agrees with the backend.
	inspected, err := credentials.Inspect(raw)
	require.NoError(t, err)
	require.Equal(t, "7", inspected.UserID)
	require.Equal(t, "access", inspected.TokenType)
	require.Equal(t, claims.ID, inspected.ID)
}

func TestIssuerRejects(t *testing.T) {
	c := &clock{now: time.Now()}
	issuer := newIssuer(t, c)
	raw, err := issuer.CreateAccessToken(testUser)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := &clock{now: c.now.Add(2 * time.Minute)}
		_, err := newIssuer(t, later).Parse(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := token.NewIssuer(token.NewHMACSigner("other"), token.WithNowFunc(c.Now))
		_, err := other.Parse(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := issuer.Parse(" ")
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("no user", func(t *testing.T) {
		_, err := issuer.CreateAccessToken(&users.User{})
		require.Error(t, err)
	})
}

func TestIssuerRevocation(t *testing.T) {
	c := &clock{now: time.Now()}
	issuer := newIssuer(t, c)

	raw, err := issuer.CreateAccessToken(testUser)
	require.NoError(t, err)
	other, err := issuer.CreateAccessToken(testUser)
	require.NoError(t, err)

	require.NoError(t, issuer.RevokeAccessToken(raw))
	_, err = issuer.Parse(raw)
	require.ErrorIs(t, err, errors.ErrInvalidToken)

	_, err = issuer.Parse(other)
	require.NoError(t, err)
}

func TestRedisRevokedTokenCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := token.NewRedisRevokedTokenCache(client, "pcs")
	c := &clock{now: time.Now()}
	issuer := newIssuer(t, c, token.WithRevokedTokenCache(cache))

	raw, err := issuer.CreateAccessToken(testUser)
	require.NoError(t, err)
	require.NoError(t, issuer.RevokeAccessToken(raw))

	_, err = issuer.Parse(raw)
	require.ErrorIs(t, err, errors.ErrInvalidToken)

	mr.FastForward(2 * time.Minute)
	claims, err := credentials.Inspect(raw)
	require.NoError(t, err)
	require.False(t, cache.IsRevoked(claims.ID))
}

func TestNewSigner(t *testing.T) {
	for _, alg := range []string{"", token.AlgorithmHS256, token.AlgorithmRS256, token.AlgorithmES256} {
		t.Run("alg "+alg, func(t *testing.T) {
			signer, err := token.NewSigner(alg, "")
			require.NoError(t, err)

			issuer := token.NewIssuer(signer)
			raw, err := issuer.CreateAccessToken(testUser)
			require.NoError(t, err)
			_, err = issuer.Parse(raw)
			require.NoError(t, err)
		})
	}

	_, err := token.NewSigner("none", "")
	require.Error(t, err)
}

func TestSigner_RejectsOtherMethods(t *testing.T) {
	rs, err := token.NewSigner(token.AlgorithmRS256, "")
	require.NoError(t, err)
	raw, err := token.NewIssuer(rs).CreateAccessToken(testUser)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	require.NoError(t, err)
	require.NotEmpty(t, parsed.Header["kid"])

	_, err = token.NewIssuer(token.NewHMACSigner("secret")).Parse(raw)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}
