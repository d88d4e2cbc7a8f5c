package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/depforce/pkg/cache"
	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/observability"
	"github.com/matzehuels/depforce/pkg/sim"
)

// ctxCheckInterval is how many ticks run between cancellation checks.
const ctxCheckInterval = 64

// GenerateLayout runs the simulation over data until it settles, opts.MaxTicks
// ticks have run, or ctx is done. The result records the graph hash, seed
// and tick count needed to reproduce it.
func GenerateLayout(ctx context.Context, data graph.GraphData, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(data.Nodes))
	start := time.Now()

	l, err := settle(ctx, data, opts)
	hooks.OnLayoutComplete(ctx, l.Ticks, time.Since(start), err)
	return l, err
}

func settle(ctx context.Context, data graph.GraphData, opts Options) (graph.Layout, error) {
	s, err := sim.New(data, opts.Viewport(), opts.SimOptions()...)
	if err != nil {
		return graph.Layout{}, err
	}

	maxTicks := opts.MaxTicks
	if maxTicks <= 0 {
		maxTicks = sim.DefaultMaxTicks
	}
	frame := s.Frame()
	for i := 0; frame.State != sim.Settled && i < maxTicks; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return graph.Layout{}, errors.Wrap(errors.ErrCodeTimeout, err, "layout cancelled after %d ticks", frame.Tick)
			}
		}
		frame = s.Tick()
	}
	if frame.State != sim.Settled {
		opts.Logger.Warn("layout stopped before settling", "ticks", frame.Tick, "alpha", frame.Alpha)
	}

	l := frame.Layout(s.Data(), s.Viewport(), s.Seed())
	l.GraphHash, err = GraphHash(data)
	if err != nil {
		return graph.Layout{}, err
	}
	return l, nil
}

// GraphHash returns the content hash used in layout cache keys.
func GraphHash(data graph.GraphData) (string, error) {
	b, err := graph.MarshalGraph(data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize graph")
	}
	return cache.Hash(b), nil
}
