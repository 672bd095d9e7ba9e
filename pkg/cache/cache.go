// Package cache stores intermediate pipeline results by content key.
//
// The pipeline caches three kinds of entries, each under a key built by a
// [Keyer]:
//
//   - fetched record documents, keyed by source URL
//   - computed layouts, keyed by the hash of the records plus layout options
//   - rendered artifacts, keyed by the hash of the layout plus render options
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// the server, and [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Default time-to-live for each entry kind.
const (
	TTLSource   = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
