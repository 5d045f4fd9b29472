// Package resample reduces a raw pointer segment to four control points with
// randomized parametric positions and easing names.
//
// A resampled segment places its control points at t = 0, second, third, 1
// along the straight line from the first to the last raw point. Control
// point 2 sits at a draw from the second-point range; control point 3 sits at
// 1 minus a draw from the mirrored third-point range. Points 1 and 3 carry the
// "none" easing, point 2 the segment's easing-before and point 4 its
// easing-after, both drawn uniformly from the configured easing set.
package resample

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/itohio/cursorpath/pkg/config"
	"github.com/itohio/cursorpath/pkg/sample"
	"github.com/itohio/cursorpath/pkg/segment"
)

// ControlPoints is the number of points in a resampled segment.
const ControlPoints = 4

var (
	// ErrDegenerateSegment reports a segment with no points.
	ErrDegenerateSegment = errors.New("degenerate segment")
	// ErrInvalidInput reports parameters or random draws outside their domain.
	ErrInvalidInput = segment.ErrInvalidInput
)

// Source supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded PCG source.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
}

// Segment is a segment reduced to exactly four control points.
type Segment struct {
	Points            [ControlPoints]sample.Sample `json:"points" yaml:"points"`
	EasingTypeBefore  string                       `json:"easingTypeBefore" yaml:"easingTypeBefore"`
	EasingTypeAfter   string                       `json:"easingTypeAfter" yaml:"easingTypeAfter"`
	TotalMovementTime float64                      `json:"totalMovementTime" yaml:"totalMovementTime"`
}

// Draws holds the random choices for one segment, already mapped onto their domains.
type Draws struct {
	Second       float64 // Parametric position of control point 2
	Third        float64 // Parametric position of control point 3
	EasingBefore string
	EasingAfter  string
}

// Positions returns the parametric positions of all four control points.
func (d Draws) Positions() [ControlPoints]float64 {
	return [ControlPoints]float64{0, d.Second, d.Third, 1}
}

// Resampler turns raw segments into four-point segments.
// Draw is not safe for concurrent use; Apply is.
type Resampler struct {
	cfg config.ResamplingConfig
	src Source
}

// New creates a Resampler. The configuration is validated and copied.
func New(cfg *config.ResamplingConfig, src Source) (*Resampler, error) {
	if cfg == nil {
		cfg = &config.Default().Resampling
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	r := &Resampler{cfg: *cfg, src: src}
	r.cfg.Easings = append([]string(nil), cfg.Easings...)
	return r, nil
}

// Resample draws randomness for seg and reduces it. An empty segment fails
// with ErrDegenerateSegment without consuming any draws.
func (r *Resampler) Resample(seg segment.Segment) (Segment, error) {
	if len(seg.Points) == 0 {
		return Segment{}, fmt.Errorf("%w: no points", ErrDegenerateSegment)
	}

	d, err := r.Draw()
	if err != nil {
		return Segment{}, err
	}
	return r.Apply(seg, d)
}

// Draw consumes exactly four values from the source, in order: control point
// 2, control point 3, easing before, easing after.
func (r *Resampler) Draw() (Draws, error) {
	var u [4]float64
	for i := range u {
		u[i] = r.src.Float64()
		if !(u[i] >= 0 && u[i] < 1) {
			return Draws{}, fmt.Errorf("%w: random draw %v outside [0,1)", ErrInvalidInput, u[i])
		}
	}

	second := r.cfg.SecondPoint
	third := r.cfg.ThirdPointMirror
	return Draws{
		Second:       second.Min + u[0]*(second.Max-second.Min),
		Third:        1 - (third.Min + u[1]*(third.Max-third.Min)),
		EasingBefore: r.pickEasing(u[2]),
		EasingAfter:  r.pickEasing(u[3]),
	}, nil
}

func (r *Resampler) pickEasing(u float64) string {
	i := min(int(u*float64(len(r.cfg.Easings))), len(r.cfg.Easings)-1)
	return r.cfg.Easings[i]
}

// Apply reduces seg using the given draws. It is a pure function of its inputs.
//
// A single-point segment becomes a stationary hold: four points at the same
// position whose times are spread by the spacing correction.
func (r *Resampler) Apply(seg segment.Segment, d Draws) (Segment, error) {
	n := len(seg.Points)
	if n == 0 {
		return Segment{}, fmt.Errorf("%w: no points", ErrDegenerateSegment)
	}
	if !(0 < d.Second && d.Second < d.Third && d.Third < 1) {
		return Segment{}, fmt.Errorf("%w: control points out of order: 0 < %v < %v < 1", ErrInvalidInput, d.Second, d.Third)
	}

	start, end := seg.Points[0], seg.Points[n-1]
	positions := d.Positions()

	total, inflated := r.spacedDuration(end.Time-start.Time, positions)
	endTime := end.Time
	if inflated {
		endTime = start.Time + total
	}

	out := Segment{
		EasingTypeBefore:  d.EasingBefore,
		EasingTypeAfter:   d.EasingAfter,
		TotalMovementTime: total,
	}
	for i, t := range positions {
		idx := min(int(math.Floor(t*float64(n-1))), n-1)

		p := seg.Points[idx]
		p.X = lerp(start.X, end.X, t)
		p.Y = lerp(start.Y, end.Y, t)
		p.Time = lerp(start.Time, endTime, t)
		switch i {
		case 1:
			p.EasingType = d.EasingBefore
		case 3:
			p.EasingType = d.EasingAfter
		default:
			p.EasingType = sample.EasingNone
		}
		out.Points[i] = p
	}

	return out, nil
}

// spacedDuration returns the segment duration after the minimum-spacing
// correction and whether it had to be inflated.
func (r *Resampler) spacedDuration(total float64, positions [ControlPoints]float64) (float64, bool) {
	floor := r.cfg.MinSpacingMs

	if r.cfg.SpacingMode == config.SpacingMean {
		if total/(ControlPoints-1) < floor {
			return floor * (ControlPoints - 1), true
		}
		return total, false
	}

	smallest := math.Inf(1)
	for i := 1; i < ControlPoints; i++ {
		smallest = min(smallest, positions[i]-positions[i-1])
	}
	if total*smallest < floor {
		return floor / smallest, true
	}
	return total, false
}

// lerp is exact at t == 0 and t == 1.
func lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}
