// Package cache provides pluggable byte caches for analysis results, layouts
// and rendered artifacts.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON envelopes under a local directory, for CLI use
//   - [RedisCache]: a shared Redis instance, for the serve command
//   - [MongoCache]: a MongoDB collection with a TTL index
//
// All backends treat a missing or expired key as a miss (hit == false, nil
// error). Errors are reserved for backend failures.
//
// # Keys
//
// A [Keyer] derives cache keys from content hashes and the options that affect
// the cached value, so a changed option never returns a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(dot), cache.LayoutKeyOpts{Engine: "neato"})
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per cached value kind.
const (
	TTLModel    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored under key. hit is false on a miss.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// ModelKeyOpts are the analysis options that change a scraped model.
type ModelKeyOpts struct {
	Fingerprint    string `json:"fingerprint,omitempty"` // Hash of the source contents
	Projects       string `json:"projects,omitempty"`
	Types          string `json:"types,omitempty"`
	ExecutableOnly bool   `json:"executable_only,omitempty"`
	References     bool   `json:"references,omitempty"`
	External       bool   `json:"external,omitempty"`
}

// LayoutKeyOpts are the layout options that change computed geometry.
type LayoutKeyOpts struct {
	Engine        string  `json:"engine"`
	LabelFontSize float64 `json:"label_font_size,omitempty"`
	Rounded       bool    `json:"rounded,omitempty"`
}

// ArtifactKeyOpts are the render options that change an output file.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Theme  string  `json:"theme,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	ModelKey(provider, source string, opts ModelKeyOpts) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys of the form kind:hash.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ModelKey keys a scraped model by provider, source location and options.
func (DefaultKeyer) ModelKey(provider, source string, opts ModelKeyOpts) string {
	return hashKey("model", provider, source, opts)
}

// LayoutKey keys engine output by the hash of its input graph.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey keys a rendered file by the hash of its layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
