// Package state persists the small per-user key/value records the bot keeps.
package state

import (
	"context"
	"errors"
)

// ErrKeyNotFound indicates that the user has no value stored under the key.
var ErrKeyNotFound = errors.New("user state key not found")

// Storage defines the persistence contract for per-user values.
// Values are opaque JSON documents; atomicity is only required per key.
type Storage interface {
	// Get returns the raw value or ErrKeyNotFound.
	Get(ctx context.Context, userID, key string) ([]byte, error)
	// Set stores value under key for the user, creating the record if needed.
	Set(ctx context.Context, userID, key string, value []byte) error
	// Clear removes a single key; clearing a missing key is not an error.
	Clear(ctx context.Context, userID, key string) error
}
