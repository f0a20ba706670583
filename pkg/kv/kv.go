// Package kv provides the string-keyed byte stores that diagram snapshots are
// persisted to.
//
// # Overview
//
// A [Store] maps string keys to opaque byte values. The diagram persistence
// adapter writes two keys per diagram, so implementations only need to be good
// at a handful of small values.
//
// # Implementations
//
//   - [Memory]: in-process map with an optional byte quota, useful for tests
//     and as the analog of a browser's local storage
//   - [FileStore]: one JSON envelope file per key under a directory
//   - [NullStore]: never stores anything
//
// Network and embedded database backends live in sub-packages:
// kv/redis, kv/mongo, kv/badger and kv/sqlite.
//
// # Errors
//
// A missing key is not an error: Get reports it through its bool result.
// [ErrQuotaExceeded] is returned by stores that enforce a size limit, and
// [ErrClosed] by stores used after Close.
package kv

import "context"

// Store is a string-keyed byte store.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
