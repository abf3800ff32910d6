package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments can
// share one backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ExtractionKey generates a prefixed key for extraction results.
func (k *ScopedKeyer) ExtractionKey(service, sliceHash string, opts ExtractionKeyOpts) string {
	return k.prefix + k.inner.ExtractionKey(service, sliceHash, opts)
}
