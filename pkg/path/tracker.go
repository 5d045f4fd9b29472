package path

import (
	"sync"

	"github.com/itohio/cursorpath/pkg/resample"
	"github.com/itohio/cursorpath/pkg/sample"
	"github.com/itohio/cursorpath/pkg/segment"
)

// Tracker builds a path incrementally from a live sample stream.
// A segment is resampled as soon as a gap above the threshold closes it, and
// the open segment is flushed when the input channel closes. Fed the same
// samples and seed, it produces the same segments as Planner.Plan.
type Tracker struct {
	planner *Planner

	// open holds the samples of the segment still being recorded
	open     []sample.Sample
	segments []resample.Segment
	err      error
	mu       sync.RWMutex

	callbacks []func(index int, seg resample.Segment)
	cbMu      sync.RWMutex
}

// NewTracker creates a Tracker sharing the planner's configuration and random source.
func (p *Planner) NewTracker() *Tracker {
	return &Tracker{planner: p}
}

// ProcessSamples consumes input until it is closed, then flushes the open segment.
func (t *Tracker) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		t.processSample(s)
	}
	t.flush()
}

// processSample appends s to the open segment, closing it first on a gap.
func (t *Tracker) processSample(s sample.Sample) {
	if err := s.Validate(); err != nil {
		t.planner.logger.Warn("dropping invalid sample", "error", err)
		return
	}

	t.mu.Lock()
	var closed []sample.Sample
	if n := len(t.open); n > 0 {
		prev := t.open[n-1].Time
		if s.Time < prev {
			t.mu.Unlock()
			t.planner.logger.Warn("dropping out-of-order sample", "time", s.Time, "previous", prev)
			return
		}
		if s.Time-prev > t.planner.gapThreshold {
			closed = t.open
			t.open = nil
		}
	}
	t.open = append(t.open, s)
	t.mu.Unlock()

	if closed != nil {
		t.closeSegment(closed)
	}
}

func (t *Tracker) flush() {
	t.mu.Lock()
	open := t.open
	t.open = nil
	t.mu.Unlock()

	if len(open) > 0 {
		t.closeSegment(open)
	}
}

// closeSegment resamples points and notifies callbacks without holding locks.
func (t *Tracker) closeSegment(points []sample.Sample) {
	seg := segment.New(points)
	rs, err := t.planner.resampler.Resample(seg)

	t.mu.Lock()
	if err != nil {
		if t.err == nil {
			t.err = err
		}
		t.mu.Unlock()
		t.planner.logger.Error("failed to resample segment", "points", len(points), "error", err)
		return
	}
	index := len(t.segments)
	t.segments = append(t.segments, rs)
	t.mu.Unlock()

	t.planner.logSegment(index, seg, rs)
	t.notifyCallbacks(index, rs)
}

// Segments returns a copy of the segments completed so far, in order.
func (t *Tracker) Segments() []resample.Segment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]resample.Segment(nil), t.segments...)
}

// Pending returns the number of samples in the open segment.
func (t *Tracker) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.open)
}

// Err returns the first resampling error, if any.
func (t *Tracker) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// OnSegment registers a callback invoked for every completed segment.
func (t *Tracker) OnSegment(callback func(index int, seg resample.Segment)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

func (t *Tracker) notifyCallbacks(index int, seg resample.Segment) {
	t.cbMu.RLock()
	callbacks := make([]func(int, resample.Segment), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(index, seg)
	}
}
