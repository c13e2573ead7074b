package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-case-portal/internal/errors"
)

const (
	defaultExpiry      = 24 * time.Hour
	defaultTokenLength = 32
)

// Manager handles refresh token creation, validation and rotation.
type Manager struct {
	// mu serialises issuing so a token is rotated at most once.
	mu sync.Mutex

	repo        Repo
	expiry      time.Duration
	tokenLength int
	nowFunc     func() time.Time
}

type Option func(*Manager)

func WithExpiry(expiry time.Duration) Option {
	return func(m *Manager) {
		m.expiry = expiry
	}
}

// WithTokenLength sets the number of random bytes in a token.
func WithTokenLength(n int) Option {
	return func(m *Manager) {
		m.tokenLength = n
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func NewManager(repo Repo, options ...Option) *Manager {
	m := &Manager{
		repo:        repo,
		expiry:      defaultExpiry,
		tokenLength: defaultTokenLength,
		nowFunc:     time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.expiry <= 0 {
		m.expiry = defaultExpiry
	}
	if m.tokenLength < 16 {
		m.tokenLength = defaultTokenLength
	}
	return m
}

// Create issues a refresh token for userID. A user holds at most one:
// any earlier token is deleted.
func (m *Manager) Create(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(userID)
}

func (m *Manager) create(userID string) (string, error) {
	if existing, err := m.repo.GetByUserID(userID); err == nil && existing != nil {
		if err := m.repo.Delete(existing.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    m.nowFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Validate returns the record for token if it exists and has not expired.
// An expired token is deleted.
func (m *Manager) Validate(token string) (*StoredRefreshToken, error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "unknown refresh token")
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return nil, errors.Wrapf(errors.ErrInvalidToken, "refresh token expired")
	}
	return rt, nil
}

// Rotate validates token and replaces it with a new one for the same user.
// Of two concurrent rotations of one token, only the first succeeds.
func (m *Manager) Rotate(token string) (string, *StoredRefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, err := m.Validate(token)
	if err != nil {
		return "", nil, err
	}
	next, err := m.create(rt.UserID)
	if err != nil {
		return "", nil, err
	}
	return next, rt, nil
}

func (m *Manager) Delete(token string) error {
	return m.repo.Delete(token)
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return m.nowFunc().Sub(rt.Iat) > m.expiry
}
