package sample

import (
	"log/slog"

	"github.com/itohio/cursorpath/pkg/capture"
)

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan capture.RawSample) <-chan Sample

// NewConverter creates a converter that validates capture records and keeps
// the stream ordered: non-finite records and records older than their
// predecessor are dropped.
func NewConverter(bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan capture.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var (
				last    float64
				started bool
			)
			for raw := range in {
				s := FromRaw(raw)
				if err := s.Validate(); err != nil {
					slog.Warn("dropping invalid sample", "error", err)
					continue
				}
				if started && s.Time < last {
					slog.Warn("dropping out-of-order sample", "time", s.Time, "previous", last)
					continue
				}
				last, started = s.Time, true

				out <- s
			}
		}()

		return out
	}
}

// Collect drains a sample channel into a slice.
func Collect(in <-chan Sample) []Sample {
	var samples []Sample
	for s := range in {
		samples = append(samples, s)
	}
	return samples
}
