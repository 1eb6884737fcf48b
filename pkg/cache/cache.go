// Package cache stores rendered artifacts and reductions between runs.
//
// # Backends
//
//   - [NullCache] never stores anything (--no-cache)
//   - [FileCache] keeps entries under a local directory (CLI default)
//   - [RedisCache] shares entries between server instances
//
// # Keys
//
// Keys are derived by a [Keyer] from a hash of the input and the options
// that influence the output, so changing any render parameter misses the
// cache while re-running the same command hits it. A [ScopedKeyer] prefixes
// keys to separate namespaces sharing one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Entry lifetimes.
const (
	// TTLForest is the lifetime of a serialized reduction.
	TTLForest = 24 * time.Hour
	// TTLArtifact is the lifetime of a rendered image.
	TTLArtifact = 7 * 24 * time.Hour
)

// ForestKeyOpts are the options that affect a reduction.
type ForestKeyOpts struct {
	Ignored     string `json:"ignored,omitempty"`
	IncludeRoot bool   `json:"include_root,omitempty"`
	Prefix      int    `json:"prefix,omitempty"`
}

// ArtifactKeyOpts are the options that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Kind     string        `json:"kind"`
	VizType  string        `json:"viz_type"`
	Format   string        `json:"format"`
	Forest   ForestKeyOpts `json:"forest"`
	Detailed bool          `json:"detailed,omitempty"`
	Scale    float64       `json:"scale,omitempty"`

	// ParamsHash identifies the renderer parameters, see [HashValue].
	ParamsHash string `json:"params_hash,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ForestKey returns the key of the reduction of the input with the
	// given hash.
	ForestKey(inputHash string, opts ForestKeyOpts) string
	// ArtifactKey returns the key of an artifact rendered from the input
	// with the given hash.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ForestKey implements Keyer.
func (DefaultKeyer) ForestKey(inputHash string, opts ForestKeyOpts) string {
	return hashKey("forest", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}
