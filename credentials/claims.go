package credentials

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-case-portal/internal/errors"
)

// TokenClaims is the subset of access-token claims shown to the user.
// The values come from an unverified parse: the client holds no key and
// only the backend can decide whether a token is valid.
type TokenClaims struct {
	UserID    string
	TokenType string
	Role      string
	ID        string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past at now.
// Tokens without exp never expire by this measure.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes the claims of a JWT access token without verifying it.
func Inspect(token string) (*TokenClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.ErrInvalidToken
	}
	parsed, _, err := jwtlib.NewParser().ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.ErrInvalidToken
	}

	out := &TokenClaims{
		TokenType: claimString(claims, "token_type"),
		Role:      claimString(claims, "role"),
		ID:        claimString(claims, "jti"),
	}
	// simplejwt puts the user in user_id; standard issuers use sub.
	out.UserID = claimString(claims, "user_id")
	if out.UserID == "" {
		out.UserID = claimString(claims, "sub")
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func claimString(claims jwtlib.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
