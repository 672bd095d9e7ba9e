package cli

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/layout/optimize"
)

// heartbeat is how often progressSink reports a search that is still running.
const heartbeat = 10 * time.Second

// progressSink logs optimizer progress: the first committed iteration,
// periodic heartbeats, and a summary once the layout is done.
//
// Moved is called from the optimizer goroutine only, so the sink keeps no
// lock.
type progressSink struct {
	watch     *stopwatch
	logger    *log.Logger
	iteration int
	moves     int
	lastLog   time.Time
}

func newProgressSink(logger *log.Logger) *progressSink {
	return &progressSink{
		watch:   startStopwatch(logger),
		logger:  logger,
		lastLog: time.Now(),
	}
}

// Moved implements optimize.Sink.
func (p *progressSink) Moved(n optimize.Notification) {
	p.moves++
	if n.Iteration == p.iteration {
		return
	}
	p.iteration = n.Iteration
	p.logger.Debugf("Iteration %d: moved %s to (%d, %d)", n.Iteration, n.Key, n.X, n.Y)

	switch {
	case n.Iteration == 1:
		p.logger.Info("Optimizing layout...")
		p.lastLog = time.Now()
	case time.Since(p.lastLog) >= heartbeat:
		elapsed := p.watch.elapsed().Truncate(time.Second)
		p.logger.Infof("Optimizing... %v elapsed, %d iterations, %d moves", elapsed, n.Iteration, p.moves)
		p.lastLog = time.Now()
	}
}

// finish logs the final cost and warns when nodes still overlap.
func (p *progressSink) finish(l graph.Layout) {
	p.watch.done("Optimized %d generations: cost %.2f after %d iterations", l.Generations, l.Stats.Cost, l.Stats.Iterations)
	if l.Stats.Overlaps > 0 {
		p.logger.Warnf("Layout has %d overlapping nodes; try raising --max-iterations", l.Stats.Overlaps)
	}
	if l.Stats.Exhausted {
		p.logger.Warn("Optimizer stopped at its time or iteration budget; try raising --timeout")
	}
}
