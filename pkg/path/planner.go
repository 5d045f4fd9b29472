// Package path turns pointer recordings into resampled motion paths, either
// in one batch (Planner.Plan) or incrementally from a sample channel (Tracker).
package path

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/itohio/cursorpath/pkg/config"
	"github.com/itohio/cursorpath/pkg/resample"
	"github.com/itohio/cursorpath/pkg/sample"
	"github.com/itohio/cursorpath/pkg/segment"
)

// Planner segments recordings and resamples every segment.
// A Planner is not safe for concurrent use because it owns the random source.
type Planner struct {
	gapThreshold float64
	workers      int
	resampler    *resample.Resampler
	logger       *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger used for per-segment diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWorkers overrides the number of workers Plan fans segments out to.
func WithWorkers(n int) Option {
	return func(p *Planner) {
		p.workers = max(n, 1)
	}
}

// New creates a Planner from cfg drawing randomness from src.
func New(cfg *config.Config, src resample.Source, opts ...Option) (*Planner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", segment.ErrInvalidInput, err)
	}

	r, err := resample.New(&cfg.Resampling, src)
	if err != nil {
		return nil, err
	}

	p := &Planner{
		gapThreshold: cfg.Segmentation.GapThresholdMs,
		workers:      max(cfg.Processing.Workers, 1),
		resampler:    r,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Plan splits samples into segments and resamples each one. Randomness is
// drawn sequentially in segment order before any fan-out, so the result is
// identical for any worker count.
func (p *Planner) Plan(samples []sample.Sample) ([]resample.Segment, error) {
	segments, err := segment.Split(samples, p.gapThreshold)
	if err != nil {
		return nil, err
	}

	draws := make([]resample.Draws, len(segments))
	for i := range segments {
		if draws[i], err = p.resampler.Draw(); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}

	out := make([]resample.Segment, len(segments))
	errs := make([]error, len(segments))

	workers := min(p.workers, len(segments))
	if workers <= 1 {
		for i := range segments {
			out[i], errs[i] = p.apply(i, segments[i], draws[i])
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					out[i], errs[i] = p.apply(i, segments[i], draws[i])
				}
			}()
		}
		for i := range segments {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}

	p.logger.Info("planned path",
		"samples", len(samples),
		"segments", len(out),
		"workers", workers)

	return out, nil
}

func (p *Planner) apply(i int, seg segment.Segment, d resample.Draws) (resample.Segment, error) {
	rs, err := p.resampler.Apply(seg, d)
	if err != nil {
		return resample.Segment{}, err
	}
	p.logSegment(i, seg, rs)
	return rs, nil
}

func (p *Planner) logSegment(i int, seg segment.Segment, rs resample.Segment) {
	p.logger.Debug("resampled segment",
		"index", i,
		"points", len(seg.Points),
		"duration", seg.Duration(),
		"total_movement_time", rs.TotalMovementTime,
		"easing_before", rs.EasingTypeBefore,
		"easing_after", rs.EasingTypeAfter)
}
