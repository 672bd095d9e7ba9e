// Package observability lets a binary watch the stemma pipeline without the
// pipeline knowing who is watching.
//
// Each stage reports to a process-wide hook set: record loading, layout and
// rendering ([PipelineHooks]), the optimizer's committed moves
// ([OptimizerHooks]), the layout cache ([CacheHooks]) and the HTTP API
// ([HTTPHooks]). All hooks default to no-ops. A binary installs its own
// once at startup, before serving:
//
//	stats := observability.NewStats()
//	observability.Register(stats)
//	defer observability.Reset()
//
// [Stats] is the built-in implementation; `stemma serve` exposes its
// snapshot at GET /v1/stats.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives stage events from the pipeline runner. Sizes are
// record counts: individuals plus unions.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, records int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, records int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// OptimizerHooks receives events from the layout optimizer.
type OptimizerHooks interface {
	// OnIteration is called after each committed move group.
	OnIteration(ctx context.Context, iteration int, cost float64, moves int)
	// OnStop is called once per run, with the budget error if it ran out.
	OnStop(ctx context.Context, iterations int, cost float64, err error)
}

// CacheHooks receives cache lookups and writes. key is the full cache key;
// its prefix up to the first colon names the stage.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string, size int)
}

// HTTPHooks receives requests to the HTTP API. route is the matched
// pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

type noopPipeline struct{}

func (noopPipeline) OnLoadStart(context.Context, string)                               {}
func (noopPipeline) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (noopPipeline) OnLayoutStart(context.Context, int)                                {}
func (noopPipeline) OnLayoutComplete(context.Context, time.Duration, error)            {}
func (noopPipeline) OnRenderStart(context.Context, []string)                           {}
func (noopPipeline) OnRenderComplete(context.Context, []string, time.Duration, error)  {}

type noopOptimizer struct{}

func (noopOptimizer) OnIteration(context.Context, int, float64, int) {}
func (noopOptimizer) OnStop(context.Context, int, float64, error)    {}

type noopCache struct{}

func (noopCache) OnCacheHit(context.Context, string)      {}
func (noopCache) OnCacheMiss(context.Context, string)     {}
func (noopCache) OnCacheSet(context.Context, string, int) {}

type noopHTTP struct{}

func (noopHTTP) OnRequest(context.Context, string, string)                      {}
func (noopHTTP) OnResponse(context.Context, string, string, int, time.Duration) {}

type hookSet struct {
	pipeline  PipelineHooks
	optimizer OptimizerHooks
	cache     CacheHooks
	http      HTTPHooks
}

var (
	mu    sync.RWMutex
	hooks = defaults()
)

func defaults() hookSet {
	return hookSet{noopPipeline{}, noopOptimizer{}, noopCache{}, noopHTTP{}}
}

func set(fn func(*hookSet)) {
	mu.Lock()
	defer mu.Unlock()
	fn(&hooks)
}

func get() hookSet {
	mu.RLock()
	defer mu.RUnlock()
	return hooks
}

// SetPipelineHooks installs h. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		set(func(s *hookSet) { s.pipeline = h })
	}
}

// SetOptimizerHooks installs h. nil is ignored.
func SetOptimizerHooks(h OptimizerHooks) {
	if h != nil {
		set(func(s *hookSet) { s.optimizer = h })
	}
}

// SetCacheHooks installs h. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		set(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks installs h. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		set(func(s *hookSet) { s.http = h })
	}
}

// Register installs s for every hook kind.
func Register(s *Stats) {
	set(func(h *hookSet) { *h = hookSet{s, s, s, s} })
}

func Pipeline() PipelineHooks   { return get().pipeline }
func Optimizer() OptimizerHooks { return get().optimizer }
func Cache() CacheHooks         { return get().cache }
func HTTP() HTTPHooks           { return get().http }

// Reset restores the no-op hooks.
func Reset() {
	set(func(h *hookSet) { *h = defaults() })
}
