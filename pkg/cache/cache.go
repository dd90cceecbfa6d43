// Package cache stores rendered artifacts so unchanged DOT input is not
// rendered twice.
//
// Keys are built with [ArtifactKey] from a hash of the input text, the output
// format and the renderer command line. [FileCache] keeps the raw artifact bytes
// per key under a directory; [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// ArtifactKey generates the key of a rendered artifact.
// renderer identifies how the artifact was produced, e.g. the renderer's
// argument vector without the output path.
func ArtifactKey(inputHash, format string, renderer ...string) string {
	return hashKey("artifact", inputHash, format, renderer)
}
