// Package kv provides the durable key/value persistence the offline upload
// queue is stored in.
//
// A missing key is not an error: Get returns a nil value and a nil error,
// matching the getItem contract of mobile key/value stores.
package kv

import "context"

// Store is a durable string-keyed blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Update atomically replaces the value under key with the result of fn.
	// fn receives nil when the key is missing. An error from fn aborts the
	// update and is returned as is.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}
