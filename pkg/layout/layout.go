// Package layout computes coordinates for a descent graph.
//
// [Compute] runs the full chain on a [tree.Tree]:
//
//  1. Cycle check ([tree.Tree.CheckAcyclic]).
//  2. Generation leveling ([transform.AssignLevels]); X becomes the level.
//  3. Order constraints between unions ([ordering.Derive]).
//  4. Initial placement ([placement.Place]).
//  5. Greedy optimization ([optimize.Run]) unless disabled.
//
// Only a relation cycle is fatal. A leveling without fixpoint and an
// exhausted optimizer budget are logged as warnings and recorded in
// [Stats]; the coordinates are still valid.
//
//	l, err := layout.Compute(ctx, t, layout.Options{Timeout: 10 * time.Second})
package layout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/layout/optimize"
	"github.com/matzehuels/stemma/pkg/layout/ordering"
	"github.com/matzehuels/stemma/pkg/layout/placement"
	"github.com/matzehuels/stemma/pkg/tree"
	"github.com/matzehuels/stemma/pkg/tree/transform"
)

// DefaultTimeout bounds the optimizer when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configures [Compute].
type Options struct {
	MaxIterations int           // Optimizer iteration limit (default: optimize.DefaultMaxIterations)
	Timeout       time.Duration // Optimizer deadline (default: DefaultTimeout)
	Workers       int           // Parallel variant evaluators (default: GOMAXPROCS)
	SkipOptimize  bool          // Stop after initial placement
	Sink          optimize.Sink // Move notifications (default: optimize.Discard)
	Logger        *log.Logger   // Progress output (default: discard)
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = optimize.DefaultMaxIterations
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Sink == nil {
		o.Sink = optimize.Discard
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Stats describes a layout run.
type Stats struct {
	Individuals int
	Unions      int
	Generations int
	LevelPasses int
	Fixpoint    bool // false when leveling fell back to the relaxed rule
	Constraints int
	Placement   placement.Stats
	Optimizer   optimize.Result
	Exhausted   bool // optimizer stopped by its budget
	Overlaps    int  // node pairs sharing a cell in the final layout
	Cost        float64
	Duration    time.Duration
}

// Layout is a positioned tree.
type Layout struct {
	Tree  *tree.Tree
	Stats Stats
}

// Compute levels, places and optimizes t in place.
func Compute(ctx context.Context, t *tree.Tree, opts Options) (*Layout, error) {
	opts.SetDefaults()
	logger := opts.Logger
	start := time.Now()

	if err := t.CheckAcyclic(); err != nil {
		return nil, err
	}

	stats := Stats{
		Individuals: len(t.Individuals()),
		Unions:      len(t.Unions()),
		Fixpoint:    true,
	}

	passes, err := transform.AssignLevels(t)
	switch {
	case errors.Is(err, transform.ErrNoFixpoint):
		stats.Fixpoint = false
		logger.Warn("generation levels have no fixpoint, using relaxed leveling")
	case err != nil:
		return nil, fmt.Errorf("assign levels: %w", err)
	}
	stats.LevelPasses = passes
	stats.Generations = len(t.Generations())
	logger.Debug("assigned levels", "generations", stats.Generations, "passes", passes)

	g := ordering.Derive(t, ordering.WithLogger(logger))
	stats.Constraints = g.Len()

	stats.Placement = placement.Place(t, g)
	logger.Debug("initial placement",
		"constraints", stats.Constraints,
		"rounds", stats.Placement.Rounds,
		"cascades", stats.Placement.Cascades,
		"cost", optimize.Cost(t))

	if !opts.SkipOptimize {
		octx, cancel := context.WithTimeout(ctx, opts.Timeout)
		res, err := optimize.Run(octx, t, optimize.Options{
			MaxIterations: opts.MaxIterations,
			Workers:       opts.Workers,
			Sink:          opts.Sink,
			Logger:        logger,
		})
		cancel()
		stats.Optimizer = res
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			stats.Exhausted = true
			logger.Warn("optimizer stopped early", "iterations", res.Iterations, "reason", err)
		}
	}

	stats.Overlaps = optimize.Overlaps(t)
	stats.Cost = optimize.Cost(t)
	stats.Duration = time.Since(start)
	return &Layout{Tree: t, Stats: stats}, nil
}
