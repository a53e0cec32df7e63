package cache

// ScopedKeyer wraps a Keyer with a prefix. Crawls made with different access
// tokens may see different private repositories, so the CLI scopes keys by a
// hash of the token.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "token:"+Hash([]byte(tok))[:12]+":")
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

func (k *ScopedKeyer) TreeKey(repo, branch string) string {
	return k.prefix + k.inner.TreeKey(repo, branch)
}

func (k *ScopedKeyer) ContentKey(repo, branch, path string) string {
	return k.prefix + k.inner.ContentKey(repo, branch, path)
}
