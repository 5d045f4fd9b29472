package resample

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats understood by Encode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes segments to w in the given format.
func Encode(w io.Writer, segments []Segment, format string) error {
	if segments == nil {
		segments = []Segment{}
	}

	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(segments); err != nil {
			return fmt.Errorf("failed to encode segments: %w", err)
		}
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(segments); err != nil {
			return fmt.Errorf("failed to encode segments: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode segments: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
