// Package kv implements the key-value media the catalog store writes its
// serialized collection into. Every implementation replaces a value
// atomically: after Set either the whole new value or the old one is
// stored. Media that cannot accept a value because of its size return an
// error wrapping common.ErrQuotaExceeded.
package kv

import "context"

// Repository is a byte-valued key-value store.
type Repository interface {
	// Get returns the value stored under key, or (nil, nil) if there is none.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
