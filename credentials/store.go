package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-case-portal/internal/errors"
)

// Canonical storage keys. These are the only keys ever written.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	RoleKey         = "role"
)

// Keys written by earlier releases. They are read after the canonical key
// and removed by Clear, but never written.
var (
	legacyAccessTokenKeys  = []string{"pcs_token", "pcs_access_token"}
	legacyRefreshTokenKeys = []string{"pcs_refresh_token", "pcs_refresh"}
)

// Store persists the access token, refresh token and active role.
type Store struct {
	repo Repo
}

// NewStore creates a credential store over repo.
func NewStore(repo Repo) *Store {
	return &Store{repo: repo}
}

// AccessToken returns the stored access token, or "" when none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.first(ctx, append([]string{AccessTokenKey}, legacyAccessTokenKeys...))
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, AccessTokenKey, token)
}

// RefreshToken returns the stored refresh token, or "" when none is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.first(ctx, append([]string{RefreshTokenKey}, legacyRefreshTokenKeys...))
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, RefreshTokenKey, token)
}

// Role returns the persisted role name, or "" when none is stored.
func (s *Store) Role(ctx context.Context) (string, error) {
	return s.first(ctx, []string{RoleKey})
}

func (s *Store) SetRole(ctx context.Context, role string) error {
	return s.set(ctx, RoleKey, role)
}

// Clear removes every known key, canonical and legacy, so that no stale
// credential survives a sign-out.
func (s *Store) Clear(ctx context.Context) error {
	keys := []string{AccessTokenKey, RefreshTokenKey, RoleKey}
	keys = append(keys, legacyAccessTokenKeys...)
	keys = append(keys, legacyRefreshTokenKeys...)
	if err := s.repo.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *Store) first(ctx context.Context, keys []string) (string, error) {
	for _, k := range keys {
		v, err := s.repo.Get(ctx, k)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				continue
			}
			return "", fmt.Errorf("failed to read %s: %w", k, err)
		}
		if strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	return "", nil
}

// set writes value under key; an empty value deletes the key so that a
// later read falls through to "absent" rather than returning "".
func (s *Store) set(ctx context.Context, key, value string) error {
	if value == "" {
		if err := s.repo.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	}
	if err := s.repo.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
