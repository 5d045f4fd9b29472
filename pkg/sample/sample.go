package sample

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/itohio/cursorpath/pkg/capture"
)

// CursorType names the cursor glyph active at a sample. Values outside the
// known set are carried through unchanged.
type CursorType string

const (
	Arrow           CursorType = "arrow"
	IBeam           CursorType = "iBeam"
	ResizeUpDown    CursorType = "resizeUpDown"
	ResizeLeftRight CursorType = "resizeLeftRight"
	PointingHand    CursorType = "pointingHand"
)

// Known reports whether c is one of the glyphs a renderer ships assets for.
func (c CursorType) Known() bool {
	switch c {
	case Arrow, IBeam, ResizeUpDown, ResizeLeftRight, PointingHand:
		return true
	}
	return false
}

// Easing names with a fixed meaning.
const (
	EasingNone   = "none"   // Immediate, used on control points 1 and 3
	EasingLinear = "linear" // Segment-level default before resampling
)

// Sample is one timestamped pointer observation.
type Sample struct {
	Time       float64    `json:"time" yaml:"time"` // ms
	X          float64    `json:"x" yaml:"x"`
	Y          float64    `json:"y" yaml:"y"`
	CursorType CursorType `json:"cursorType,omitempty" yaml:"cursorType,omitempty"`
	EasingType string     `json:"easingType,omitempty" yaml:"easingType,omitempty"`
}

// FromRaw converts a capture record into a Sample.
func FromRaw(raw capture.RawSample) Sample {
	return Sample{
		Time:       raw.Time,
		X:          raw.X,
		Y:          raw.Y,
		CursorType: CursorType(raw.Cursor),
	}
}

// Validate rejects samples with non-finite time or position.
func (s Sample) Validate() error {
	for _, f := range [...]struct {
		name string
		v    float64
	}{{"time", s.Time}, {"x", s.X}, {"y", s.Y}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s is not finite: %v", f.name, f.v)
		}
	}
	return nil
}

// UnmarshalJSON accepts both the recorder tuple form [time, x, y, cursorType]
// (cursorType optional or null) and the object form produced by MarshalJSON.
func (s *Sample) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return s.unmarshalTuple(data)
	}

	type plain Sample
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Sample(p)
	return nil
}

func (s *Sample) unmarshalTuple(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) < 3 || len(fields) > 4 {
		return fmt.Errorf("sample tuple must have 3 or 4 elements, got %d", len(fields))
	}

	var out Sample
	for i, dst := range []*float64{&out.Time, &out.X, &out.Y} {
		if bytes.Equal(bytes.TrimSpace(fields[i]), []byte("null")) {
			return fmt.Errorf("sample tuple element %d is null", i)
		}
		if err := json.Unmarshal(fields[i], dst); err != nil {
			return fmt.Errorf("sample tuple element %d: %w", i, err)
		}
	}
	if len(fields) == 4 {
		var cursor *string
		if err := json.Unmarshal(fields[3], &cursor); err != nil {
			return fmt.Errorf("sample tuple cursor: %w", err)
		}
		if cursor != nil {
			out.CursorType = CursorType(*cursor)
		}
	}

	*s = out
	return nil
}

// Decode reads a JSON array of samples.
func Decode(r io.Reader) ([]Sample, error) {
	var samples []Sample
	if err := json.NewDecoder(r).Decode(&samples); err != nil {
		return nil, fmt.Errorf("failed to decode samples: %w", err)
	}
	return samples, nil
}

// Load reads a JSON recording from a file.
func Load(filename string) ([]Sample, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
