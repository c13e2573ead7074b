package credentials

import "context"

// Repo is the durable key-value storage behind a Store. Get returns
// errors.ErrNotFound when the key has never been set or was deleted.
type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
