package cache

// Keyer builds cache keys.
type Keyer interface {
	SourceKey(url string) string
	LayoutKey(recordsHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the options that change a computed layout.
type LayoutKeyOpts struct {
	MaxIterations int  `json:"max_iterations"`
	SkipOptimize  bool `json:"skip_optimize"`
}

// ArtifactKeyOpts lists the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Renderer string `json:"renderer"`
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer with no prefix.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SourceKey keys a fetched record document by its URL.
func (DefaultKeyer) SourceKey(url string) string {
	return "source:" + url
}

// LayoutKey keys a layout by the hash of its input records.
func (DefaultKeyer) LayoutKey(recordsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", recordsHash, opts)
}

// ArtifactKey keys a rendered artifact by the hash of its layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
