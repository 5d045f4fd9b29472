package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/itohio/cursorpath/pkg/config"
)

const envPrefix = "CURSORPATH_"

// applyEnv overrides cfg with CURSORPATH_* environment variables.
func applyEnv(cfg *config.Config) error {
	floats := map[string]*float64{
		"GAP_THRESHOLD_MS": &cfg.Segmentation.GapThresholdMs,
		"MIN_SPACING_MS":   &cfg.Resampling.MinSpacingMs,
	}
	for name, dst := range floats {
		if v, ok := lookup(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"BAUD_RATE":       &cfg.Capture.BaudRate,
		"AVERAGE_SAMPLES": &cfg.Capture.AverageSamples,
		"WORKERS":         &cfg.Processing.Workers,
	}
	for name, dst := range ints {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"SPACING_MODE": &cfg.Resampling.SpacingMode,
		"PORT":         &cfg.Capture.Port,
		"LOG_LEVEL":    &cfg.Log.Level,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	if v, ok := lookup("SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", envPrefix, err)
		}
		cfg.Processing.Seed = seed
	}
	if v, ok := lookup("LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_JSON: %w", envPrefix, err)
		}
		cfg.Log.JSON = b
	}

	return nil
}

// lookup returns a non-empty CURSORPATH_ variable.
func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	return v, ok && v != ""
}
