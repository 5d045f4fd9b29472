package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for USB pointer loggers.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// RawSample is one pointer record as delivered by a capture source.
type RawSample struct {
	Time   float64 // Milliseconds since the start of the recording
	X      float64
	Y      float64
	Cursor string // Cursor glyph name, empty when the logger does not report one
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads pointer records from a logger attached to a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial source with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		samples:  make(chan RawSample, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readSamples(port)

	return nil
}

// Close closes the port. The samples channel is closed once the reader exits.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			slog.Warn("error closing serial port", "port", d.port, "error", err)
		}
		d.conn = nil
	}

	d.connected = false

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// IsConnected returns whether the port is currently open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines from r until EOF, error or Close and owns the samples channel.
func (d *Serial) readSamples(r io.Reader) {
	defer close(d.samples)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sample, err := ParseLine(line)
		if err != nil {
			slog.Warn("failed to parse line", "line", line, "error", err)
			continue
		}

		select {
		case d.samples <- sample:
		case <-d.ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
		slog.Warn("error reading from serial port", "port", d.port, "error", err)
	}
}

// ParseLine parses one logger record into a RawSample.
// Format: time_ms,x,y[,cursor]
// Example: 1250.5,640,480,iBeam
func ParseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 3 or 4 comma-separated values, got %d", len(parts))
	}

	var values [3]float64
	for i, name := range [3]string{"time", "x", "y"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return RawSample{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return RawSample{}, fmt.Errorf("invalid %s: %v", name, v)
		}
		values[i] = v
	}

	sample := RawSample{
		Time: values[0],
		X:    values[1],
		Y:    values[2],
	}
	if len(parts) == 4 {
		sample.Cursor = strings.TrimSpace(parts[3])
	}

	return sample, nil
}
