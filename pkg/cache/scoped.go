package cache

// ScopedKeyer wraps a Keyer with a prefix so separate contexts get separate
// cache namespaces. The server scopes its keys apart from the CLI's, which
// keeps differently-versioned artifact encodings from colliding.
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

// SourceKey generates a prefixed key for parsed graph caching.
func (k *ScopedKeyer) SourceKey(dialect, sourceHash string) string {
	return k.prefix + k.inner.SourceKey(dialect, sourceHash)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sourceHash, opts)
}

// ProbeKey generates a prefixed key for tool probe caching.
func (k *ScopedKeyer) ProbeKey(tool string) string {
	return k.prefix + k.inner.ProbeKey(tool)
}
