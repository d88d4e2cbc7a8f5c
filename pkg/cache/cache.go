// Package cache stores computed layouts, rendered artifacts and fetched
// graphs behind a byte-oriented key/value interface.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [MemoryCache]: process-local map, the server default
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: disables caching
//
// Keys come from a [Keyer] so that every component derives them the same
// way; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry kind.
const (
	// TTLGraph bounds how long a fetched analyzer response is reused.
	TTLGraph = 10 * time.Minute

	// TTLLayout applies to settled layouts; they are pure functions of their key.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered SVG, DOT and raster output.
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// LayoutKey keys a settled layout of the graph with the given hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every input besides the graph that changes a layout.
type LayoutKeyOpts struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Seed      uint64  `json:"seed"`
	Placement string  `json:"placement,omitempty"`
	MaxTicks  int     `json:"max_ticks,omitempty"`
	Params    any     `json:"params,omitempty"`
}

// ArtifactKeyOpts holds every input besides the layout that changes an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Theme    string `json:"theme,omitempty"`
	Engine   string `json:"engine,omitempty"`
	Tooltips bool   `json:"tooltips,omitempty"`
	Labels   bool   `json:"labels,omitempty"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>" without hashing.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LayoutKey hashes the graph hash together with the layout options.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey hashes the layout hash together with the artifact options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
