// Package metadata is a small key/value store in the local database. The CLI
// keeps its session there.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns common.ErrorNotFound
// for missing keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
