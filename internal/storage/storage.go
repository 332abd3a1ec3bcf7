// Package storage defines the durable key/value store backing the cart and
// session containers. Values are opaque JSON documents keyed by fixed names
// ("cart", "jwt_token", "user") and must round-trip losslessly.
package storage

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store persists client state across restarts. Set must be durable before it
// returns so a forced reload never reverts a completed mutation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
