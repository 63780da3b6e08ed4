// Package cache stores resolved driver manifests between runs.
//
// Resolving a descriptor is cheap, but packaging pipelines run the same
// descriptors over and over. Results are keyed by the descriptor's content
// hash plus every option that changes the walk, so an edited INF or a
// different hardware id never hits a stale entry.
//
// Backends:
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: shared entries for build farms
//   - [NullCache]: disables caching
package cache

import (
	"context"
	"time"
)

// TTLResolve is how long a resolved manifest stays cached.
const TTLResolve = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ResolveKeyOpts are the resolve options that change a result.
type ResolveKeyOpts struct {
	Seed             []string `json:"seed"`
	HardwareID       string   `json:"hwid"`
	Strict           bool     `json:"strict"`
	Dedupe           bool     `json:"dedupe"`
	MaxFiles         int      `json:"max_files"`
	RequireSignature bool     `json:"require_signature"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ResolveKey returns the key for a descriptor's content hash resolved
	// with opts.
	ResolveKey(contentHash string, opts ResolveKeyOpts) string
}

// DefaultKeyer produces "resolve:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResolveKey implements Keyer.
func (DefaultKeyer) ResolveKey(contentHash string, opts ResolveKeyOpts) string {
	return hashKey("resolve", contentHash, opts)
}
