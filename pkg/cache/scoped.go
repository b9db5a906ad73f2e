package cache

// ScopedKeyer wraps a Keyer with a prefix for isolation between deployments
// sharing one cache, e.g. several renderer endpoints behind one Redis.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "wiki-staging:")
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

// RenderKey generates a prefixed key for rendering results.
func (k *ScopedKeyer) RenderKey(backend, tex string) string {
	return k.prefix + k.inner.RenderKey(backend, tex)
}
