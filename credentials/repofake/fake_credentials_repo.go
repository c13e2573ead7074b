package credentialsrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-case-portal/credentials"
	"github.com/jrsteele09/go-case-portal/internal/errors"
)

var _ credentials.Repo = (*FakeCredentialsRepo)(nil)

type FakeCredentialsRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeCredentialsRepo() *FakeCredentialsRepo {
	return &FakeCredentialsRepo{
		values: make(map[string]string),
	}
}

// Seed writes values directly, bypassing Store, e.g. to plant legacy keys.
func (r *FakeCredentialsRepo) Seed(values map[string]string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for k, v := range values {
		r.values[k] = v
	}
}

// Keys returns the number of stored keys.
func (r *FakeCredentialsRepo) Keys() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.values)
}

func (r *FakeCredentialsRepo) Get(_ context.Context, key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (r *FakeCredentialsRepo) Set(_ context.Context, key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.values[key] = value
	return nil
}

func (r *FakeCredentialsRepo) Delete(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}
