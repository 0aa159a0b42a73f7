package cache

// ScopedKeyer wraps a Keyer with a prefix so separate projects or
// inventories sharing one backend never collide.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ItemsKey(contentHash string) string {
	return k.prefix + k.inner.ItemsKey(contentHash)
}

func (k *ScopedKeyer) PlanKey(itemsHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(itemsHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
