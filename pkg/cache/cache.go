// Package cache provides caching for expensive pipeline stages.
//
// Two backends are available: a file-based cache for CLI usage (entries
// under the XDG cache directory) and a redis-backed cache for shared
// setups. A null cache disables caching entirely.
//
// Keys are produced by a [Keyer] so that every stage hashes its inputs
// the same way: barcode symbols by symbology and encoded data, layouts
// by catalog hash and wheel geometry, artifacts by layout hash and
// render options.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached stage. Symbols and layouts are pure functions
// of their inputs and can live long; artifacts depend on locally
// installed fonts and tools; remote pictures follow ordinary HTTP
// freshness expectations.
const (
	DefaultSymbolTTL   = 30 * 24 * time.Hour
	DefaultLayoutTTL   = 30 * 24 * time.Hour
	DefaultArtifactTTL = 7 * 24 * time.Hour
	DefaultHTTPTTL     = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Get reports a miss with (nil, false, nil); errors are reserved for
// backend failures. Set with a zero or negative ttl stores the entry
// without an expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SymbolKeyOpts captures the options that change a generated barcode
// symbol for an identical input value.
type SymbolKeyOpts struct {
	Backend string `json:"backend"`
	NoText  bool   `json:"no_text"`
}

// LayoutKeyOpts captures the wheel parameters that change a computed
// layout for an identical catalog.
type LayoutKeyOpts struct {
	Slices int     `json:"slices"`
	Size   float64 `json:"size"`
	Margin float64 `json:"margin"`
	Slots  string  `json:"slots"` // canonical serialization of slot overrides
}

// ArtifactKeyOpts captures the render options that change a final
// artifact for an identical layout.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	FontFamily string  `json:"font_family"`
	Foreground string  `json:"foreground"`
	Background string  `json:"background"`
	Scale      float64 `json:"scale"`
	Engine     string  `json:"engine"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// HTTPKey generates a key for HTTP response caching (picture fetches).
	HTTPKey(namespace, key string) string

	// SymbolKey generates a key for a generated barcode symbol.
	SymbolKey(symbology, data string, opts SymbolKeyOpts) string

	// LayoutKey generates a key for a computed wheel layout.
	LayoutKey(catalogHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generation strategy.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// Format: http:namespace:key
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// SymbolKey generates a key for barcode symbol caching.
func (k *DefaultKeyer) SymbolKey(symbology, data string, opts SymbolKeyOpts) string {
	return hashKey("symbol", symbology, data, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(catalogHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", catalogHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
