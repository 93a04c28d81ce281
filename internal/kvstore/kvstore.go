// Package kvstore provides the key-value blob store the task layer persists
// into. Values are opaque byte blobs; callers own their encoding.
package kvstore

import (
	"context"
	"errors"
)

var ErrNoKey = errors.New("kvstore: key not found")

type Store interface {
	// Get returns the blob stored under key, or ErrNoKey if absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, overwriting any previous blob.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
