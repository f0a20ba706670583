package kv

import "errors"

// Sentinel errors for store operations.
var (
	// ErrQuotaExceeded is returned when a write would take a store past its
	// size limit. The previous value is left in place.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrClosed is returned by stores used after Close.
	ErrClosed = errors.New("store closed")

	// ErrCorrupt is returned when a stored entry cannot be decoded by the
	// backend itself.
	ErrCorrupt = errors.New("corrupt entry")
)
