package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer signs portal access tokens and hands jwt.Parse the key that
// checks them.
type Signer interface {
	Sign(claims jwt.MapClaims) (string, error)

	// VerificationKey is a jwt.Keyfunc.
	VerificationKey(token *jwt.Token) (any, error)

	SigningMethod() jwt.SigningMethod
}

// AccessSigner signs with a single JWT method. signKey goes to
// SignedString and verifyKey back to the parser; for HS256 they are the
// same secret.
type AccessSigner struct {
	method    jwt.SigningMethod
	keyID     string
	signKey   any
	verifyKey any
}

// NewHMACSigner signs HS256 tokens with secret, the way the portal backend
// does by default.
func NewHMACSigner(secret string) *AccessSigner {
	key := []byte(secret)
	return &AccessSigner{method: jwt.SigningMethodHS256, signKey: key, verifyKey: key}
}

func (s *AccessSigner) Sign(claims jwt.MapClaims) (string, error) {
	tok := jwt.NewWithClaims(s.method, claims)
	if s.keyID != "" {
		tok.Header["kid"] = s.keyID
	}
	raw, err := tok.SignedString(s.signKey)
	if err != nil {
		return "", errors.Wrapf(err, "sign %s access token", s.method.Alg())
	}
	return raw, nil
}

// VerificationKey refuses any token not signed with this signer's method.
func (s *AccessSigner) VerificationKey(tok *jwt.Token) (any, error) {
	if tok.Method == nil || tok.Method.Alg() != s.method.Alg() {
		return nil, errors.Errorf("access token uses %v, expected %s", tok.Header["alg"], s.method.Alg())
	}
	return s.verifyKey, nil
}

func (s *AccessSigner) SigningMethod() jwt.SigningMethod {
	return s.method
}
