package sample

// NewAveragingConverter creates a stage that smooths pointer jitter by
// replacing each position with the mean of the last windowSize positions.
// The window restarts whenever two consecutive samples are more than
// resetGap apart, so averaging never reaches across a segment boundary.
// Time and cursor of each output come from the most recent input.
func NewAveragingConverter(windowSize int, resetGap float64, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var buffer []Sample
			for s := range in {
				if n := len(buffer); n > 0 && s.Time-buffer[n-1].Time > resetGap {
					buffer = buffer[:0]
				}

				buffer = append(buffer, s)
				if len(buffer) > windowSize {
					buffer = buffer[1:]
				}

				out <- averageSamples(buffer)
			}
		}()

		return out
	}
}

// averageSamples averages positions; everything else comes from the last sample.
func averageSamples(samples []Sample) Sample {
	if len(samples) == 0 {
		return Sample{}
	}

	var sumX, sumY float64
	for _, s := range samples {
		sumX += s.X
		sumY += s.Y
	}

	avg := samples[len(samples)-1]
	n := float64(len(samples))
	avg.X = sumX / n
	avg.Y = sumY / n
	return avg
}
