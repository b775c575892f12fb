// Package cache provides byte caching for rendered diagram artifacts.
//
// The conversion broker uses a cache keyed by a digest of the diagram source
// and output format, so that re-rendering identical input skips the round
// trip to the rendering engine entirely. Two backends are provided:
//   - FileCache: file-based storage for persistent reuse across restarts
//   - NullCache: a no-op backend that disables caching
package cache

import (
	"context"
	"time"
)

// TTLArtifact is the default time-to-live for cached rendered artifacts.
// Rendering is deterministic for a given engine version, so a generous TTL
// is safe; the TTL mainly bounds disk usage after engine upgrades.
const TTLArtifact = 24 * time.Hour

// Cache is the interface for artifact cache backends.
type Cache interface {
	// Get retrieves a value by key. The second return value reports whether
	// the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key with the given TTL. A TTL of 0 means the
	// entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
