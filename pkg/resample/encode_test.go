package resample

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/itohio/cursorpath/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testSegment() Segment {
	return Segment{
		Points: [ControlPoints]sample.Sample{
			{Time: 0, X: 0, Y: 0, CursorType: sample.Arrow, EasingType: "none"},
			{Time: 15, X: 3, Y: 3, CursorType: sample.Arrow, EasingType: "sine.inOut"},
			{Time: 37.5, X: 7.5, Y: 7.5, CursorType: sample.Arrow, EasingType: "none"},
			{Time: 50, X: 10, Y: 10, CursorType: sample.Arrow, EasingType: "expo.inOut"},
		},
		EasingTypeBefore:  "sine.inOut",
		EasingTypeAfter:   "expo.inOut",
		TotalMovementTime: 50,
	}
}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []Segment{testSegment()}, FormatJSON))

	var decoded []struct {
		Points            []sample.Sample `json:"points"`
		EasingTypeBefore  string          `json:"easingTypeBefore"`
		EasingTypeAfter   string          `json:"easingTypeAfter"`
		TotalMovementTime float64         `json:"totalMovementTime"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Len(t, decoded[0].Points, ControlPoints)
	assert.Equal(t, "sine.inOut", decoded[0].EasingTypeBefore)
	assert.Equal(t, "expo.inOut", decoded[0].EasingTypeAfter)
	assert.Equal(t, 50.0, decoded[0].TotalMovementTime)
	assert.Equal(t, testSegment().Points[1], decoded[0].Points[1])
}

func TestEncode_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []Segment{testSegment()}, FormatYAML))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "sine.inOut", decoded[0]["easingTypeBefore"])
	assert.Len(t, decoded[0]["points"], ControlPoints)
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, FormatJSON))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, nil, "xml"))
}
