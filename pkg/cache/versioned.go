package cache

import "strconv"

// VersionedKeyer tags layout and artifact keys with the layout algorithm
// version, so entries computed by an older leveler, placer or optimizer are
// never served after an upgrade. Fetched record documents do not depend on
// the algorithm and keep their keys.
type VersionedKeyer struct {
	inner Keyer
	tag   string
}

// NewVersionedKeyer wraps inner, or the default keyer if inner is nil.
func NewVersionedKeyer(inner Keyer, version int) *VersionedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &VersionedKeyer{inner: inner, tag: "v" + strconv.Itoa(version) + "/"}
}

func (k *VersionedKeyer) SourceKey(url string) string {
	return k.inner.SourceKey(url)
}

func (k *VersionedKeyer) LayoutKey(recordsHash string, opts LayoutKeyOpts) string {
	return k.tag + k.inner.LayoutKey(recordsHash, opts)
}

func (k *VersionedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.tag + k.inner.ArtifactKey(layoutHash, opts)
}

var _ Keyer = (*VersionedKeyer)(nil)
