package token

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Signing algorithms accepted by NewSigner.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
)

// NewSigner builds a signer for algorithm. HS256 uses secret, or a random
// one when secret is empty; the asymmetric algorithms generate a fresh key.
func NewSigner(algorithm, secret string) (Signer, error) {
	switch strings.ToUpper(algorithm) {
	case "", AlgorithmHS256:
		if secret == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				return nil, errors.Wrap(err, "failed to generate HMAC secret")
			}
			secret = hex.EncodeToString(b)
		}
		return NewHMACSigner(secret), nil

	case AlgorithmRS256:
		signer, err := newRSASigner(uuid.NewString())
		if err != nil {
			return nil, err
		}
		return signer, nil

	case AlgorithmES256:
		signer, err := newECDSASigner(uuid.NewString())
		if err != nil {
			return nil, err
		}
		return signer, nil

	default:
		return nil, errors.Errorf("unsupported signing algorithm: %s", algorithm)
	}
}
