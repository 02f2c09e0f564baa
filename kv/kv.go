// Package kv defines the keyed byte store that holds per-team local state
// (cursor, admin keypair, snapshot).
//
// Implementations live in subpackages; kvtest carries the shared contract
// tests.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: not found")

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Reader reads single keys.
type Reader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Tx is the view handed to an Update callback. Writes made through it become
// visible to other callers only if the callback returns nil.
type Tx interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store is a keyed byte store.
//
// Get returns ErrNotFound for absent keys. Update runs fn atomically with
// respect to other Updates and Sets: either every write in fn lands or none do.
type Store interface {
	Reader
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
