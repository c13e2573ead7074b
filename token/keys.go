package token

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const rsaKeyBits = 2048

// newRSASigner signs RS256 with a key generated for this process only. A
// restarted backend invalidates every token it issued.
func newRSASigner(keyID string) (*AccessSigner, error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, errors.Wrap(err, "generate RS256 signing key")
	}
	return &AccessSigner{
		method:    jwt.SigningMethodRS256,
		keyID:     keyID,
		signKey:   key,
		verifyKey: &key.PublicKey,
	}, nil
}

// newECDSASigner is the ES256 (P-256) counterpart of newRSASigner.
func newECDSASigner(keyID string) (*AccessSigner, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate ES256 signing key")
	}
	return &AccessSigner{
		method:    jwt.SigningMethodES256,
		keyID:     keyID,
		signKey:   key,
		verifyKey: &key.PublicKey,
	}, nil
}
