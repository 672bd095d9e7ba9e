package observability

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Stats counts pipeline, optimizer, cache and HTTP events in memory. It
// implements every hook interface and is safe for concurrent use.
type Stats struct {
	mu      sync.Mutex
	started time.Time
	snap    Snapshot
}

// StageStats counts runs of one pipeline stage.
type StageStats struct {
	Runs    int64         `json:"runs"`
	Errors  int64         `json:"errors"`
	Records int64         `json:"records,omitempty"`
	Total   time.Duration `json:"total_ns"`
}

// Snapshot is a copy of the counters at one point in time.
type Snapshot struct {
	Uptime time.Duration `json:"uptime_ns"`

	Load   StageStats `json:"load"`
	Layout StageStats `json:"layout"`
	Render StageStats `json:"render"`

	OptimizerRuns      int64   `json:"optimizer_runs"`
	OptimizerExhausted int64   `json:"optimizer_exhausted"`
	Iterations         int64   `json:"iterations"`
	LastCost           float64 `json:"last_cost"`

	// Cache counters are keyed by stage: "source", "layout" or "artifact".
	CacheHits   map[string]int64 `json:"cache_hits"`
	CacheMisses map[string]int64 `json:"cache_misses"`
	CacheBytes  int64            `json:"cache_bytes_written"`

	InFlight  int64            `json:"requests_in_flight"`
	Responses map[string]int64 `json:"responses"` // by status class, e.g. "2xx"
}

// NewStats returns zeroed counters with the uptime clock started.
func NewStats() *Stats {
	return &Stats{
		started: time.Now(),
		snap: Snapshot{
			CacheHits:   map[string]int64{},
			CacheMisses: map[string]int64{},
			Responses:   map[string]int64{},
		},
	}
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snap
	out.Uptime = time.Since(s.started)
	out.CacheHits = copyCounts(s.snap.CacheHits)
	out.CacheMisses = copyCounts(s.snap.CacheMisses)
	out.Responses = copyCounts(s.snap.Responses)
	return out
}

func (s *Stats) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}

func (st *StageStats) add(records int, d time.Duration, err error) {
	st.Runs++
	st.Records += int64(records)
	st.Total += d
	if err != nil {
		st.Errors++
	}
}

func (s *Stats) OnLoadStart(context.Context, string) {}

func (s *Stats) OnLoadComplete(_ context.Context, _ string, records int, d time.Duration, err error) {
	s.update(func(n *Snapshot) { n.Load.add(records, d, err) })
}

func (s *Stats) OnLayoutStart(_ context.Context, records int) {
	s.update(func(n *Snapshot) { n.Layout.Records += int64(records) })
}

func (s *Stats) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	s.update(func(n *Snapshot) { n.Layout.add(0, d, err) })
}

func (s *Stats) OnRenderStart(context.Context, []string) {}

func (s *Stats) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	s.update(func(n *Snapshot) { n.Render.add(0, d, err) })
}

func (s *Stats) OnIteration(_ context.Context, _ int, cost float64, _ int) {
	s.update(func(n *Snapshot) {
		n.Iterations++
		n.LastCost = cost
	})
}

func (s *Stats) OnStop(_ context.Context, _ int, cost float64, err error) {
	s.update(func(n *Snapshot) {
		n.OptimizerRuns++
		n.LastCost = cost
		if err != nil {
			n.OptimizerExhausted++
		}
	})
}

func (s *Stats) OnCacheHit(_ context.Context, key string) {
	s.update(func(n *Snapshot) { n.CacheHits[keyStage(key)]++ })
}

func (s *Stats) OnCacheMiss(_ context.Context, key string) {
	s.update(func(n *Snapshot) { n.CacheMisses[keyStage(key)]++ })
}

func (s *Stats) OnCacheSet(_ context.Context, _ string, size int) {
	s.update(func(n *Snapshot) { n.CacheBytes += int64(size) })
}

func (s *Stats) OnRequest(context.Context, string, string) {
	s.update(func(n *Snapshot) { n.InFlight++ })
}

func (s *Stats) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	s.update(func(n *Snapshot) {
		n.InFlight--
		n.Responses[statusClass(status)]++
	})
}

// keyStage extracts the stage from a cache key such as
// "v1/layout:3f2a..." or "source:https://...".
func keyStage(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		key = key[:i]
	}
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		key = key[i+1:]
	}
	return key
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return string(rune('0'+status/100)) + "xx"
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var (
	_ PipelineHooks  = (*Stats)(nil)
	_ OptimizerHooks = (*Stats)(nil)
	_ CacheHooks     = (*Stats)(nil)
	_ HTTPHooks      = (*Stats)(nil)
)
