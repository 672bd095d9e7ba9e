package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/cache"
	errs "github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/observability"
	"github.com/matzehuels/stemma/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// LayoutVersion tags cached layouts and renders. Bump it whenever leveling,
// placement or the optimizer change their output for the same records.
const LayoutVersion = 1

// NewRunner creates a runner with the given cache and keyer. A nil keyer
// means the default keyer tagged with [LayoutVersion]; a nil cache disables
// caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewVersionedKeyer(cache.NewDefaultKeyer(), LayoutVersion)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	recs, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Records = recs
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Individuals = len(recs.Individuals)
	result.Stats.Unions = len(recs.Unions)
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded records",
		"individuals", result.Stats.Individuals,
		"unions", result.Stats.Unions,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, warnings, layoutHit, err := r.LayoutWithCacheInfo(ctx, recs, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Warnings = warnings
	result.RecordsHash = recordsHash(recs)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"generations", l.Generations,
		"cost", l.Stats.Cost,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo returns the records named by opts. Inline records are
// returned as is; remote sources are cached.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (recs graph.Records, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return graph.Records{}, false, err
	}
	if opts.Records != nil {
		return *opts.Records, false, Validate(*opts.Records)
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Source)
	start := time.Now()
	defer func() {
		hooks.OnLoadComplete(ctx, opts.Source, len(recs.Individuals)+len(recs.Unions), time.Since(start), err)
	}()

	remote := errs.IsURL(opts.Source)
	key := r.Keyer.SourceKey(opts.Source)
	if remote && !opts.Refresh {
		if data, ok := r.cacheGet(ctx, key); ok {
			if recs, err := Decode(data); err == nil {
				return recs, true, nil
			}
		}
	}

	data, err := readSource(ctx, opts.Source)
	if err != nil {
		return graph.Records{}, false, err
	}
	recs, err = Decode(data)
	if err != nil {
		return graph.Records{}, false, fmt.Errorf("%s: %w", opts.Source, err)
	}
	if remote {
		r.cacheSet(ctx, key, data, cache.TTLSource)
	}
	return recs, false, nil
}

// Load is LoadWithCacheInfo without the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (graph.Records, error) {
	recs, _, err := r.LoadWithCacheInfo(ctx, opts)
	return recs, err
}

// LayoutWithCacheInfo computes a layout with caching. Warnings about dropped
// references are returned on hits and misses alike.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, recs graph.Records, opts Options) (l graph.Layout, warnings []tree.Warning, hit bool, err error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	key := r.Keyer.LayoutKey(recordsHash(recs), opts.LayoutKeyOpts())
	if !opts.Refresh && opts.Sink == nil {
		if data, ok := r.cacheGet(ctx, key); ok {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				// Rebuilding the tree is cheap and recovers the dropped references.
				_, warnings, _ := recs.ToTree()
				return cached, warnings, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(recs.Individuals)+len(recs.Unions))
	start := time.Now()
	l, warnings, err = ComputeLayout(ctx, recs, opts)
	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		return graph.Layout{}, nil, false, err
	}

	// A layout cut short by the deadline depends on machine speed.
	if !l.Stats.Exhausted || l.Stats.Iterations >= opts.MaxIterations {
		if data, err := graph.MarshalLayout(l); err == nil {
			r.cacheSet(ctx, key, data, cache.TTLLayout)
		}
	}
	return l, warnings, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, recs graph.Records, opts Options) (graph.Layout, error) {
	l, _, _, err := r.LayoutWithCacheInfo(ctx, recs, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// ID and creation time do not affect rendering.
	keyed := l
	keyed.ID, keyed.CreatedAt = "", time.Time{}
	layoutData, err := graph.MarshalLayout(keyed)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := r.cacheGet(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.cacheSet(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, key)
	}
	return data, hit
}

func (r *Runner) cacheSet(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func recordsHash(recs graph.Records) string {
	data, _ := graph.MarshalRecords(recs)
	return cache.Hash(data)
}
