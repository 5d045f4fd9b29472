package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Spacing correction modes.
const (
	SpacingInterval = "interval" // Inflate until the smallest control-point interval reaches the floor
	SpacingMean     = "mean"     // Inflate until the mean control-point interval reaches the floor
)

// Config represents the application configuration.
type Config struct {
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Resampling   ResamplingConfig   `yaml:"resampling"`
	Capture      CaptureConfig      `yaml:"capture"`
	Processing   ProcessingConfig   `yaml:"processing"`
	Mock         MockConfig         `yaml:"mock"`
	Log          LogConfig          `yaml:"log"`
}

// SegmentationConfig controls how a sample stream is split into segments.
type SegmentationConfig struct {
	GapThresholdMs float64 `yaml:"gap_threshold_ms"` // Gap strictly above this starts a new segment
}

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ResamplingConfig controls the 4-point segment reduction.
type ResamplingConfig struct {
	MinSpacingMs     float64  `yaml:"min_spacing_ms"`     // Minimum time between adjacent control points (ms)
	SpacingMode      string   `yaml:"spacing_mode"`       // "interval" or "mean"
	SecondPoint      Range    `yaml:"second_point"`       // Parametric position of control point 2
	ThirdPointMirror Range    `yaml:"third_point_mirror"` // Control point 3 sits at 1 - draw from this range
	Easings          []string `yaml:"easings"`
}

// CaptureConfig contains pointer logger settings.
type CaptureConfig struct {
	Port           string `yaml:"port"`
	BaudRate       int    `yaml:"baud_rate"`
	BufferSize     int    `yaml:"buffer_size"`
	AverageSamples int    `yaml:"average_samples"` // Number of samples to average (0 = disabled, default)
}

// ProcessingConfig contains planner parameters.
type ProcessingConfig struct {
	Seed    uint64 `yaml:"seed"`    // 0 = seed from the clock
	Workers int    `yaml:"workers"` // 1 = sequential
}

// MockConfig contains synthetic recorder configuration.
type MockConfig struct {
	Duration     time.Duration `yaml:"duration"`      // Length of the synthetic recording
	SampleRate   time.Duration `yaml:"sample_rate"`   // Interval between samples while moving
	MoveDuration time.Duration `yaml:"move_duration"` // Mean length of one movement burst
	PauseMin     time.Duration `yaml:"pause_min"`     // Idle time between bursts
	PauseMax     time.Duration `yaml:"pause_max"`
	Width        float64       `yaml:"width"` // Screen area targets are drawn from
	Height       float64       `yaml:"height"`
	Jitter       float64       `yaml:"jitter"` // Hand jitter amplitude (px)
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultEasings is the easing-name set segments draw from.
func DefaultEasings() []string {
	return []string{
		"none",
		"power4.inOut",
		"power2.inOut",
		"power3.inOut",
		"sine.inOut",
		"expo.inOut",
	}
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Segmentation: SegmentationConfig{
			GapThresholdMs: 200,
		},
		Resampling: ResamplingConfig{
			MinSpacingMs:     0.05,
			SpacingMode:      SpacingInterval,
			SecondPoint:      Range{Min: 0.2, Max: 0.4},
			ThirdPointMirror: Range{Min: 0.2, Max: 0.4},
			Easings:          DefaultEasings(),
		},
		Capture: CaptureConfig{
			Port:           "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate:       115200,
			BufferSize:     100,
			AverageSamples: 0,
		},
		Processing: ProcessingConfig{
			Seed:    0,
			Workers: 1,
		},
		Mock: MockConfig{
			Duration:     10 * time.Second,
			SampleRate:   16 * time.Millisecond, // ~60 Hz
			MoveDuration: 600 * time.Millisecond,
			PauseMin:     300 * time.Millisecond,
			PauseMax:     1500 * time.Millisecond,
			Width:        1920,
			Height:       1080,
			Jitter:       1.5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the tunables that the segmenter and resampler rely on.
func (c *Config) Validate() error {
	if math.IsNaN(c.Segmentation.GapThresholdMs) || c.Segmentation.GapThresholdMs < 0 {
		return fmt.Errorf("gap_threshold_ms must be non-negative, got %v", c.Segmentation.GapThresholdMs)
	}
	return c.Resampling.Validate()
}

// Validate checks that the resampling ranges keep control points ordered.
func (r *ResamplingConfig) Validate() error {
	if math.IsNaN(r.MinSpacingMs) || math.IsInf(r.MinSpacingMs, 0) || r.MinSpacingMs < 0 {
		return fmt.Errorf("min_spacing_ms must be a non-negative number, got %v", r.MinSpacingMs)
	}
	switch r.SpacingMode {
	case SpacingInterval, SpacingMean:
	default:
		return fmt.Errorf("unknown spacing_mode %q", r.SpacingMode)
	}
	if err := r.SecondPoint.validate("second_point"); err != nil {
		return err
	}
	if err := r.ThirdPointMirror.validate("third_point_mirror"); err != nil {
		return err
	}
	// Control point 2 must stay strictly before control point 3.
	if r.SecondPoint.Max > 1-r.ThirdPointMirror.Max ||
		(r.SecondPoint.Min == r.SecondPoint.Max && r.SecondPoint.Max == 1-r.ThirdPointMirror.Max) {
		return fmt.Errorf("second_point [%v,%v) overlaps third point [%v,%v]",
			r.SecondPoint.Min, r.SecondPoint.Max, 1-r.ThirdPointMirror.Max, 1-r.ThirdPointMirror.Min)
	}
	if len(r.Easings) == 0 {
		return fmt.Errorf("easings must not be empty")
	}
	for i, name := range r.Easings {
		if name == "" {
			return fmt.Errorf("easings[%d] is empty", i)
		}
	}
	return nil
}

func (r Range) validate(name string) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("%s bounds must be numbers", name)
	}
	if r.Min <= 0 || r.Max >= 1 || r.Min > r.Max {
		return fmt.Errorf("%s must satisfy 0 < min <= max < 1, got [%v,%v)", name, r.Min, r.Max)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Resampling.SpacingMode == "" {
		c.Resampling.SpacingMode = def.Resampling.SpacingMode
	}
	if c.Resampling.SecondPoint == (Range{}) {
		c.Resampling.SecondPoint = def.Resampling.SecondPoint
	}
	if c.Resampling.ThirdPointMirror == (Range{}) {
		c.Resampling.ThirdPointMirror = def.Resampling.ThirdPointMirror
	}
	if len(c.Resampling.Easings) == 0 {
		c.Resampling.Easings = def.Resampling.Easings
	}

	if c.Capture.Port == "" {
		c.Capture.Port = def.Capture.Port
	}
	if c.Capture.BaudRate == 0 {
		c.Capture.BaudRate = def.Capture.BaudRate
	}
	if c.Capture.BufferSize == 0 {
		c.Capture.BufferSize = def.Capture.BufferSize
	}

	if c.Processing.Workers == 0 {
		c.Processing.Workers = def.Processing.Workers
	}

	if c.Mock.Duration == 0 {
		c.Mock.Duration = def.Mock.Duration
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.MoveDuration == 0 {
		c.Mock.MoveDuration = def.Mock.MoveDuration
	}
	if c.Mock.PauseMin == 0 {
		c.Mock.PauseMin = def.Mock.PauseMin
	}
	if c.Mock.PauseMax == 0 {
		c.Mock.PauseMax = def.Mock.PauseMax
	}
	if c.Mock.Width == 0 {
		c.Mock.Width = def.Mock.Width
	}
	if c.Mock.Height == 0 {
		c.Mock.Height = def.Mock.Height
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
