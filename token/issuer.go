package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/jrsteele09/go-case-portal/users"
	"github.com/pkg/errors"
)

const (
	defaultIssuer         = "pcs-mock"
	defaultAccessTokenTTL = 5 * time.Minute
)

// Claims is what a verified access token says about its holder.
type Claims struct {
	ID        string // jti
	UserID    string
	Username  string
	Role      permissions.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer creates and verifies access tokens.
type Issuer struct {
	signer    Signer
	issuer    string
	accessTTL time.Duration
	revoked   RevokedTokenCache
	nowFunc   func() time.Time
}

type IssuerOption func(*Issuer)

func WithAccessTokenTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessTTL = ttl
	}
}

func WithIssuer(issuer string) IssuerOption {
	return func(i *Issuer) {
		i.issuer = issuer
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) IssuerOption {
	return func(i *Issuer) {
		i.revoked = cache
	}
}

func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(signer Signer, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:    signer,
		issuer:    defaultIssuer,
		accessTTL: defaultAccessTokenTTL,
		revoked:   NewInMemoryRevokedTokenCache(),
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(i)
	}
	if i.accessTTL <= 0 {
		i.accessTTL = defaultAccessTokenTTL
	}
	return i
}

func (i *Issuer) AccessTokenTTL() time.Duration {
	return i.accessTTL
}

// CreateAccessToken signs a token naming user and their role.
func (i *Issuer) CreateAccessToken(user *users.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("access token needs a user")
	}
	now := i.nowFunc()
	claims := jwt.MapClaims{
		"iss":        i.issuer,
		"sub":        user.ID,
		"user_id":    user.ID,
		"username":   user.Username,
		"role":       string(user.Role),
		"token_type": "access",
		"iat":        now.Unix(),
		"exp":        now.Add(i.accessTTL).Unix(),
		"jti":        uuid.New().String(),
	}
	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Issuer.CreateAccessToken")
	}
	return signed, nil
}

// Parse verifies raw and returns its claims. Expired, revoked and
// malformed tokens all yield an error wrapping ErrInvalidToken.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims, err := i.verify(raw)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" && i.revoked.IsRevoked(claims.ID) {
		return nil, errors.Wrap(apperrors.ErrInvalidToken, "token revoked")
	}
	return claims, nil
}

// RevokeAccessToken makes raw unusable before it expires.
func (i *Issuer) RevokeAccessToken(raw string) error {
	claims, err := i.verify(raw)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return errors.Wrap(apperrors.ErrInvalidToken, "token missing jti claim")
	}
	return i.revoked.Add(claims.ID, claims.ExpiresAt)
}

func (i *Issuer) CleanupRevokedTokens() {
	i.revoked.Cleanup()
}

func (i *Issuer) verify(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidToken, "empty token")
	}
	parsed, err := jwt.Parse(raw, i.signer.VerificationKey,
		jwt.WithValidMethods([]string{i.signer.SigningMethod().Alg()}),
		jwt.WithTimeFunc(i.nowFunc),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(i.issuer),
	)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidToken, err.Error())
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(apperrors.ErrInvalidToken, "unexpected claims type")
	}
	if tt, _ := mc["token_type"].(string); tt != "access" {
		return nil, errors.Wrap(apperrors.ErrInvalidToken, "not an access token")
	}

	c := &Claims{}
	c.ID, _ = mc["jti"].(string)
	c.UserID, _ = mc["user_id"].(string)
	c.Username, _ = mc["username"].(string)
	if role, _ := mc["role"].(string); role != "" {
		c.Role, _ = permissions.ParseRole(role)
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
