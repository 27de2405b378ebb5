package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several catalogs share one redis instance and
// need separate cache namespaces.
//
// Example usage:
//
//	// Catalog-specific keys
//	catalogKeyer := NewScopedKeyer(NewDefaultKeyer(), "catalog:abc123:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// SymbolKey generates a prefixed key for barcode symbol caching.
func (k *ScopedKeyer) SymbolKey(symbology, data string, opts SymbolKeyOpts) string {
	return k.prefix + k.inner.SymbolKey(symbology, data, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(catalogHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(catalogHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
