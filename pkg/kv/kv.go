// Package kv provides the durable key-value storage the client-side stores
// persist into — the server-side stand-in for browser local storage.
//
// Two drivers ship with the shop:
//
//   - Memory: in-process map, for tests and local development.
//   - Redis: production driver, shares the client used by pkg/cache.
//
// Values are opaque byte slices; callers own serialization.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set
// (or has been deleted).
var ErrNotFound = errors.New("kv: key not found")

// Store is plain get/set/delete key-value storage with no TTL semantics:
// persisted state survives until explicitly removed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
