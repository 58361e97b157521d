package cache

// ScopedKeyer wraps a Keyer with a prefix, giving several deployments that
// share one Redis their own key space.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "solbosch:")
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

// RouteKey generates a prefixed route key.
func (k *ScopedKeyer) RouteKey(revision string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(revision, opts)
}
