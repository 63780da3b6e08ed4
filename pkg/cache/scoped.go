package cache

// ScopedKeyer prefixes every key of an inner Keyer. A shared Redis
// instance can then hold entries for several pipelines or tool versions
// side by side.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "infcat:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResolveKey returns the inner key with the prefix prepended.
func (k *ScopedKeyer) ResolveKey(contentHash string, opts ResolveKeyOpts) string {
	return k.prefix + k.inner.ResolveKey(contentHash, opts)
}
