package optimize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stemma/pkg/observability"
	"github.com/matzehuels/stemma/pkg/tree"
)

const (
	// Epsilon is the smallest cost decrease that counts as an improvement.
	Epsilon = 1e-9

	// DefaultMaxIterations bounds the number of committed variants.
	DefaultMaxIterations = 10_000
)

// ErrBudgetExhausted is returned when the iteration limit or the context
// stops the search before a local optimum. Coordinates committed so far are
// kept.
var ErrBudgetExhausted = errors.New("optimizer budget exhausted")

// Options configures [Run].
type Options struct {
	MaxIterations int         // Maximum committed variants (default: DefaultMaxIterations)
	Workers       int         // Parallel evaluators (default: GOMAXPROCS)
	Sink          Sink        // Move notifications (default: Discard)
	Logger        *log.Logger // Debug output (default: discard)
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Sink == nil {
		o.Sink = Discard
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Result summarizes an optimizer run.
type Result struct {
	Iterations  int       // committed variants
	Moves       int       // notifications sent
	InitialCost float64   // cost before the first iteration
	FinalCost   float64   // cost after the last commit
	Costs       []float64 // cost after each commit, strictly decreasing
	Converged   bool      // stopped at a local optimum
	Duration    time.Duration
}

// Run improves the Y coordinates of a placed tree in place.
//
// The returned Result is valid even when the error is non-nil. An error
// wrapping [ErrBudgetExhausted] also wraps the context error, if any.
func Run(ctx context.Context, t *tree.Tree, opts Options) (res Result, err error) {
	opts.SetDefaults()
	start := time.Now()

	snap := newSnapshot(t)
	res.InitialCost = snap.cost()
	res.FinalCost = res.InitialCost

	defer func() {
		res.Duration = time.Since(start)
		observability.Optimizer().OnStop(ctx, res.Iterations, res.FinalCost, err)
		opts.Logger.Debug("optimizer stopped",
			"iterations", res.Iterations,
			"moves", res.Moves,
			"cost", res.FinalCost,
			"converged", res.Converged,
			"duration", res.Duration)
	}()

	gs := groups(t)
	sh := shifts()
	for {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%w: %w", ErrBudgetExhausted, err)
		}

		best, err := search(ctx, snap, gs, sh, opts.Workers)
		if err != nil {
			return res, fmt.Errorf("%w: %w", ErrBudgetExhausted, err)
		}
		if best.Delta >= -Epsilon {
			res.Converged = true
			return res, nil
		}
		if res.Iterations >= opts.MaxIterations {
			return res, fmt.Errorf("%w: %d iterations", ErrBudgetExhausted, res.Iterations)
		}

		res.Iterations++
		for _, m := range best.Moves {
			n := t.Node(m.Node)
			n.Y = m.ToY
			opts.Sink.Moved(Notification{Node: n.ID, Key: n.Key, X: n.X, Y: n.Y, Iteration: res.Iterations})
		}
		res.Moves += len(best.Moves)

		snap.apply(best.Moves)
		res.FinalCost = snap.cost()
		res.Costs = append(res.Costs, res.FinalCost)

		observability.Optimizer().OnIteration(ctx, res.Iterations, res.FinalCost, len(best.Moves))
		opts.Logger.Debug("optimizer iteration",
			"iteration", res.Iterations,
			"delta", best.Delta,
			"cost", res.FinalCost,
			"moves", len(best.Moves))
	}
}

// search evaluates every group and shift against s and returns the variant
// with the lowest delta. Ties go to the earliest candidate, enumerated
// shift by shift.
func search(ctx context.Context, s *snapshot, groups [][]tree.NodeID, shifts []int, workers int) (Variant, error) {
	n := len(groups) * len(shifts)
	if n == 0 {
		return Variant{}, nil
	}

	results := make([]Variant, n)
	g, gctx := errgroup.WithContext(ctx)
	workers = min(workers, n)
	for w := range workers {
		g.Go(func() error {
			for i := w; i < n; i += workers {
				if (i/workers)%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				moves := s.variant(groups[i%len(groups)], shifts[i/len(groups)])
				results[i] = Variant{Moves: moves, Delta: s.delta(moves)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Variant{}, err
	}

	best := 0
	for i := 1; i < n; i++ {
		if results[i].Delta < results[best].Delta {
			best = i
		}
	}
	return results[best], nil
}
