package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/cursorpath/internal/logging"
	"github.com/itohio/cursorpath/pkg/capture"
	"github.com/itohio/cursorpath/pkg/config"
	"github.com/itohio/cursorpath/pkg/path"
	"github.com/itohio/cursorpath/pkg/resample"
	"github.com/itohio/cursorpath/pkg/sample"
	"github.com/joho/godotenv"
)

// options selects the input and output of a single run.
type options struct {
	in     string
	out    string
	format string
	mock   bool
	serial bool
}

func main() {
	var (
		inFlag             = flag.String("in", "", "Recording to read (JSON array of samples)")
		portFlag           = flag.String("port", "", "Capture from a pointer logger on this serial port (e.g., COM3 or /dev/ttyACM0)")
		mockFlag           = flag.Bool("mock", false, "Capture from a synthetic recorder instead of a serial port")
		listPortsFlag      = flag.Bool("ports", false, "List available serial ports and exit")
		formatFlag         = flag.String("format", resample.FormatJSON, "Output format (json or yaml)")
		outFlag            = flag.String("out", "", "Output file (default stdout)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		seedFlag           = flag.Uint64("seed", 0, "Random seed (0 = from config, or the clock if unset)")
		workersFlag        = flag.Int("workers", 0, "Workers used to resample a recording (0 = from config)")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of live samples to average (0 = disabled, overrides config)")
		logLevelFlag       = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
		logJSONFlag        = flag.Bool("log-json", false, "Log as JSON instead of text")
	)
	flag.Parse()

	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := applyEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid environment: %v\n", err)
		os.Exit(1)
	}

	// Command line overrides
	if *portFlag != "" {
		cfg.Capture.Port = *portFlag
	}
	if *seedFlag != 0 {
		cfg.Processing.Seed = *seedFlag
	}
	if *workersFlag > 0 {
		cfg.Processing.Workers = *workersFlag
	}
	if *averageSamplesFlag >= 0 {
		cfg.Capture.AverageSamples = *averageSamplesFlag
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if *logJSONFlag {
		cfg.Log.JSON = true
	}

	logging.Init(os.Stderr, cfg.Log.JSON, logging.ParseLevel(cfg.Log.Level))

	if envErr != nil {
		slog.Debug("no .env file found, using system environment variables")
	} else {
		slog.Info("loaded environment variables from .env file")
	}

	if *listPortsFlag {
		if err := listPorts(os.Stdout); err != nil {
			slog.Error("failed to list ports", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		in:     *inFlag,
		out:    *outFlag,
		format: *formatFlag,
		mock:   *mockFlag,
		serial: *portFlag != "",
	}
	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		slog.Error("cursorpath failed", "error", err)
		os.Exit(1)
	}
}

// run builds a path from the selected input and writes it to the selected output.
func run(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer) error {
	if cfg.Processing.Seed == 0 {
		cfg.Processing.Seed = uint64(time.Now().UnixNano())
		slog.Info("seeded from clock", "seed", cfg.Processing.Seed)
	}

	planner, err := path.New(cfg, resample.NewSource(cfg.Processing.Seed), path.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var segments []resample.Segment
	switch {
	case opts.in != "":
		samples, err := sample.Load(opts.in)
		if err != nil {
			return err
		}
		if segments, err = planner.Plan(samples); err != nil {
			return err
		}
	case opts.mock:
		src := capture.NewMock(&cfg.Mock, cfg.Processing.Seed)
		if segments, err = track(ctx, cfg, planner, src); err != nil {
			return err
		}
	case opts.serial:
		src := capture.New(cfg.Capture.Port, cfg.Capture.BaudRate, cfg.Capture.BufferSize)
		if segments, err = track(ctx, cfg, planner, src); err != nil {
			return err
		}
	default:
		return fmt.Errorf("no input: use -in, -port or -mock")
	}

	return write(segments, opts, stdout)
}

// track runs a live capture source through the conversion chain into a
// Tracker until the source ends or ctx is cancelled.
func track(ctx context.Context, cfg *config.Config, planner *path.Planner, src capture.Source) ([]resample.Segment, error) {
	if err := src.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer src.Close()

	stream := sample.NewConverter(cfg.Capture.BufferSize)(src.Samples())
	if n := cfg.Capture.AverageSamples; n > 0 {
		stream = sample.NewAveragingConverter(n, cfg.Segmentation.GapThresholdMs, cfg.Capture.BufferSize)(stream)
	}

	tracker := planner.NewTracker()
	tracker.OnSegment(func(index int, seg resample.Segment) {
		slog.Info("segment closed",
			"index", index,
			"start", seg.Points[0].Time,
			"total_movement_time", seg.TotalMovementTime)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		tracker.ProcessSamples(stream)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		slog.Info("interrupted, flushing open segment", "pending", tracker.Pending())
		if err := src.Close(); err != nil {
			slog.Warn("error closing source", "error", err)
		}
		<-done
	}

	return tracker.Segments(), tracker.Err()
}

func write(segments []resample.Segment, opts options, stdout io.Writer) error {
	if opts.out == "" || opts.out == "-" {
		return resample.Encode(stdout, segments, opts.format)
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := resample.Encode(f, segments, opts.format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	slog.Info("wrote path", "file", opts.out, "segments", len(segments))
	return nil
}

func listPorts(w io.Writer) error {
	ports, err := capture.Ports()
	if err != nil {
		return err
	}
	for _, p := range ports {
		fmt.Fprintln(w, p.Name)
	}
	return nil
}
