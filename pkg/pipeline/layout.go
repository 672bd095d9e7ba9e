package pipeline

import (
	"context"
	"errors"

	errs "github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/layout"
	"github.com/matzehuels/stemma/pkg/tree"
)

// ComputeLayout lays out records without caching.
func ComputeLayout(ctx context.Context, recs graph.Records, opts Options) (graph.Layout, []tree.Warning, error) {
	opts.SetLayoutDefaults()

	t, warnings, err := BuildTree(recs)
	if err != nil {
		return graph.Layout{}, nil, err
	}
	for _, w := range warnings {
		opts.Logger.Warn("dangling reference", "record", w.Record, "ref", w.Ref, "reason", w.Reason)
	}

	l, err := layout.Compute(ctx, t, layout.Options{
		MaxIterations: opts.MaxIterations,
		Timeout:       opts.Timeout,
		Workers:       opts.Workers,
		SkipOptimize:  opts.SkipOptimize,
		Sink:          opts.Sink,
		Logger:        opts.Logger,
	})
	switch {
	case errors.Is(err, tree.ErrCycle):
		return graph.Layout{}, nil, errs.Wrap(errs.ErrCodeCycle, err, "layout")
	case err != nil:
		return graph.Layout{}, nil, errs.Classify(err, "layout")
	}
	return graph.FromLayout(l), warnings, nil
}
