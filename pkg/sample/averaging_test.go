package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAveraging(window int, resetGap float64, input []Sample) []Sample {
	in := make(chan Sample, len(input))
	for _, s := range input {
		in <- s
	}
	close(in)
	return Collect(NewAveragingConverter(window, resetGap, 10)(in))
}

func TestNewAveragingConverter_BasicAveraging(t *testing.T) {
	input := []Sample{
		{Time: 0, X: 0, Y: 0, CursorType: Arrow},
		{Time: 10, X: 3, Y: 6, CursorType: Arrow},
		{Time: 20, X: 6, Y: 0, CursorType: IBeam},
		{Time: 30, X: 9, Y: 6, CursorType: IBeam},
	}

	got := runAveraging(3, 200, input)
	require.Len(t, got, 4)

	assert.InDelta(t, 0.0, got[0].X, 1e-9)
	assert.InDelta(t, 1.5, got[1].X, 1e-9)
	assert.InDelta(t, 3.0, got[1].Y, 1e-9)
	assert.InDelta(t, 3.0, got[2].X, 1e-9)
	assert.InDelta(t, 2.0, got[2].Y, 1e-9)
	assert.InDelta(t, 6.0, got[3].X, 1e-9) // window slides: (3+6+9)/3
	assert.InDelta(t, 4.0, got[3].Y, 1e-9)

	// Time and cursor come from the newest sample
	for i := range got {
		assert.Equal(t, input[i].Time, got[i].Time)
		assert.Equal(t, input[i].CursorType, got[i].CursorType)
	}
}

func TestNewAveragingConverter_ResetsOnGap(t *testing.T) {
	input := []Sample{
		{Time: 0, X: 0},
		{Time: 10, X: 10},
		{Time: 500, X: 100}, // gap > 200 starts a fresh window
		{Time: 510, X: 110},
	}

	got := runAveraging(4, 200, input)
	require.Len(t, got, 4)
	assert.InDelta(t, 5.0, got[1].X, 1e-9)
	assert.InDelta(t, 100.0, got[2].X, 1e-9)
	assert.InDelta(t, 105.0, got[3].X, 1e-9)
}

func TestNewAveragingConverter_InvalidWindow(t *testing.T) {
	input := []Sample{{Time: 0, X: 1}, {Time: 1, X: 5}}

	// Window <= 0 behaves as pass-through
	got := runAveraging(0, 200, input)
	assert.Equal(t, input, got)
}

func TestAverageSamples_Empty(t *testing.T) {
	assert.Equal(t, Sample{}, averageSamples(nil))
}
