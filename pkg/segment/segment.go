// Package segment splits an ordered pointer recording into segments at
// temporal gaps.
package segment

import (
	"errors"
	"fmt"
	"math"

	"github.com/itohio/cursorpath/pkg/sample"
)

// DefaultGapThresholdMs is the gap above which a new segment starts.
const DefaultGapThresholdMs = 200

// ErrInvalidInput reports a recording or parameter the segmenter cannot work with.
var ErrInvalidInput = errors.New("invalid input")

// Segment is a maximal run of samples with no internal gap above the threshold.
type Segment struct {
	Points           []sample.Sample `json:"points" yaml:"points"`
	EasingTypeBefore string          `json:"easingTypeBefore" yaml:"easingTypeBefore"`
	EasingTypeAfter  string          `json:"easingTypeAfter" yaml:"easingTypeAfter"`
}

// New returns a segment holding a copy of points with linear easings.
func New(points []sample.Sample) Segment {
	return Segment{
		Points:           append([]sample.Sample(nil), points...),
		EasingTypeBefore: sample.EasingLinear,
		EasingTypeAfter:  sample.EasingLinear,
	}
}

// Duration returns the time between the first and last point.
func (s Segment) Duration() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Time - s.Points[0].Time
}

// Split partitions samples into segments, breaking between two consecutive
// samples whenever their time difference is strictly greater than
// gapThreshold. Every sample lands in exactly one segment, in input order, and
// the final segment is always emitted even when it holds a single sample.
//
// Samples are not re-sorted: a decreasing timestamp is reported as
// ErrInvalidInput, as are an empty recording, non-finite sample fields and a
// negative or NaN threshold.
func Split(samples []sample.Sample, gapThreshold float64) ([]Segment, error) {
	if math.IsNaN(gapThreshold) || gapThreshold < 0 {
		return nil, fmt.Errorf("%w: gap threshold must be non-negative, got %v", ErrInvalidInput, gapThreshold)
	}
	if err := Validate(samples); err != nil {
		return nil, err
	}

	var segments []Segment
	start := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].Time-samples[i-1].Time > gapThreshold {
			segments = append(segments, New(samples[start:i]))
			start = i
		}
	}
	segments = append(segments, New(samples[start:]))

	return segments, nil
}

// Validate checks that samples is a non-empty, finite, time-ordered recording.
func Validate(samples []sample.Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidInput)
	}
	for i, s := range samples {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: sample %d: %v", ErrInvalidInput, i, err)
		}
		if i > 0 && s.Time < samples[i-1].Time {
			return fmt.Errorf("%w: sample %d time %v is before previous %v", ErrInvalidInput, i, s.Time, samples[i-1].Time)
		}
	}
	return nil
}
