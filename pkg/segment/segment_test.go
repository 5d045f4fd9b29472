package segment

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/itohio/cursorpath/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Example(t *testing.T) {
	samples := []sample.Sample{
		{Time: 0, X: 0, Y: 0, CursorType: sample.Arrow},
		{Time: 50, X: 10, Y: 10, CursorType: sample.Arrow},
		{Time: 500, X: 20, Y: 20, CursorType: sample.IBeam},
	}

	segments, err := Split(samples, 200)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, samples[:2], segments[0].Points)
	assert.Equal(t, samples[2:], segments[1].Points)
	for _, seg := range segments {
		assert.Equal(t, sample.EasingLinear, seg.EasingTypeBefore)
		assert.Equal(t, sample.EasingLinear, seg.EasingTypeAfter)
	}
	assert.Equal(t, 50.0, segments[0].Duration())
	assert.Equal(t, 0.0, segments[1].Duration())
}

func TestSplit_Boundaries(t *testing.T) {
	tests := []struct {
		name      string
		times     []float64
		threshold float64
		want      [][]float64
	}{
		{
			name:      "single sample",
			times:     []float64{10},
			threshold: 200,
			want:      [][]float64{{10}},
		},
		{
			name:      "gap equal to threshold stays together",
			times:     []float64{0, 200, 400},
			threshold: 200,
			want:      [][]float64{{0, 200, 400}},
		},
		{
			name:      "gap just above threshold splits",
			times:     []float64{0, 200.001},
			threshold: 200,
			want:      [][]float64{{0}, {200.001}},
		},
		{
			name:      "zero threshold splits on any advance",
			times:     []float64{0, 0, 1, 1, 1},
			threshold: 0,
			want:      [][]float64{{0, 0}, {1, 1, 1}},
		},
		{
			name:      "trailing single point",
			times:     []float64{0, 16, 32, 1000},
			threshold: 200,
			want:      [][]float64{{0, 16, 32}, {1000}},
		},
		{
			name:      "infinite threshold never splits",
			times:     []float64{0, 1e9},
			threshold: math.Inf(1),
			want:      [][]float64{{0, 1e9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]sample.Sample, len(tt.times))
			for i, ts := range tt.times {
				samples[i] = sample.Sample{Time: ts}
			}

			segments, err := Split(samples, tt.threshold)
			require.NoError(t, err)

			got := make([][]float64, len(segments))
			for i, seg := range segments {
				for _, p := range seg.Points {
					got[i] = append(got[i], p.Time)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplit_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		samples   []sample.Sample
		threshold float64
	}{
		{name: "nil", samples: nil, threshold: 200},
		{name: "empty", samples: []sample.Sample{}, threshold: 200},
		{name: "negative threshold", samples: []sample.Sample{{Time: 0}}, threshold: -1},
		{name: "NaN threshold", samples: []sample.Sample{{Time: 0}}, threshold: math.NaN()},
		{name: "decreasing time", samples: []sample.Sample{{Time: 10}, {Time: 5}}, threshold: 200},
		{name: "NaN position", samples: []sample.Sample{{Time: 0, X: math.NaN()}}, threshold: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := Split(tt.samples, tt.threshold)
			assert.Nil(t, segments)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestSplit_DoesNotAlias(t *testing.T) {
	samples := []sample.Sample{{Time: 0, X: 1}, {Time: 10, X: 2}}

	segments, err := Split(samples, 200)
	require.NoError(t, err)

	segments[0].Points[0].X = 99
	assert.Equal(t, 1.0, samples[0].X)
}

func TestSplit_UnknownCursorPropagates(t *testing.T) {
	samples := []sample.Sample{{Time: 0, CursorType: "crosshair"}}

	segments, err := Split(samples, 200)
	require.NoError(t, err)
	assert.Equal(t, sample.CursorType("crosshair"), segments[0].Points[0].CursorType)
}

// randomRecording produces ordered samples with a mix of short and long gaps.
func randomRecording(rng *rand.Rand, n int) []sample.Sample {
	samples := make([]sample.Sample, n)
	ts := 0.0
	for i := range samples {
		if i > 0 {
			if rng.IntN(10) == 0 {
				ts += 150 + rng.Float64()*200
			} else {
				ts += rng.Float64() * 40
			}
		}
		samples[i] = sample.Sample{Time: ts, X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
	}
	return samples
}

func TestSplit_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const threshold = 200

	for iter := range 200 {
		samples := randomRecording(rng, 1+rng.IntN(300))

		segments, err := Split(samples, threshold)
		require.NoError(t, err)

		// Partition: concatenation reproduces the input
		var joined []sample.Sample
		for _, seg := range segments {
			require.NotEmpty(t, seg.Points)
			joined = append(joined, seg.Points...)
		}
		require.Equal(t, samples, joined, "iteration %d", iter)

		// Gap: inside a segment gaps are <= threshold, across boundaries > threshold
		for i, seg := range segments {
			for j := 1; j < len(seg.Points); j++ {
				assert.LessOrEqual(t, seg.Points[j].Time-seg.Points[j-1].Time, float64(threshold))
			}
			if i > 0 {
				prev := segments[i-1].Points
				assert.Greater(t, seg.Points[0].Time-prev[len(prev)-1].Time, float64(threshold))
			}
		}
	}
}
