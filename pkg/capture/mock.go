package capture

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/cursorpath/pkg/config"
)

// mockCursors is the glyph pool a synthetic burst picks from, weighted toward arrow.
var mockCursors = []string{"arrow", "arrow", "arrow", "iBeam", "pointingHand", "resizeUpDown", "resizeLeftRight"}

// Mock simulates a pointer logger. It replays a synthetic recording on a
// virtual clock: movement bursts toward random targets separated by idle pauses.
type Mock struct {
	cfg *config.MockConfig
	rng *rand.Rand

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	// Simulation state
	clock float64 // ms
	x, y  float64
}

// NewMock creates a new mocked source. The same seed yields the same recording.
func NewMock(cfg *config.MockConfig, seed uint64) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Duration:     10 * time.Second,
			SampleRate:   16 * time.Millisecond,
			MoveDuration: 600 * time.Millisecond,
			PauseMin:     300 * time.Millisecond,
			PauseMax:     1500 * time.Millisecond,
			Width:        1920,
			Height:       1080,
			Jitter:       1.5,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.ctx.Err() != nil {
		return fmt.Errorf("mock already closed")
	}

	m.connected = true
	m.clock = 0
	m.x = m.cfg.Width / 2
	m.y = m.cfg.Height / 2

	go m.generateSamples()

	return nil
}

// Close stops the mocked source.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel()
	m.connected = false

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the mock is currently producing samples.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateSamples emits the whole recording and closes the channel.
func (m *Mock) generateSamples() {
	defer func() {
		m.mu.Lock()
		m.connected = false
		m.mu.Unlock()
		close(m.samples)
	}()

	end := float64(m.cfg.Duration) / float64(time.Millisecond)
	cursor := mockCursors[0]

	if !m.emit(RawSample{Time: m.clock, X: m.x, Y: m.y, Cursor: cursor}) {
		return
	}

	for m.clock < end {
		cursor = mockCursors[m.rng.IntN(len(mockCursors))]
		for _, s := range m.generateBurst(cursor) {
			if s.Time > end {
				return
			}
			if !m.emit(s) {
				return
			}
		}
		m.clock += m.pause()
	}
}

func (m *Mock) emit(s RawSample) bool {
	select {
	case m.samples <- s:
		return true
	case <-m.ctx.Done():
		return false
	}
}

// generateBurst moves the pointer to a random target with smoothstep velocity and hand jitter.
func (m *Mock) generateBurst(cursor string) []RawSample {
	step := float64(m.cfg.SampleRate) / float64(time.Millisecond)
	if step <= 0 {
		step = 1
	}
	duration := float64(m.cfg.MoveDuration) / float64(time.Millisecond) * (0.5 + m.rng.Float64())
	steps := max(int(duration/step), 1)

	fromX, fromY := m.x, m.y
	toX := m.rng.Float64() * m.cfg.Width
	toY := m.rng.Float64() * m.cfg.Height

	burst := make([]RawSample, 0, steps)
	for k := 1; k <= steps; k++ {
		s := float64(k) / float64(steps)
		eased := s * s * (3 - 2*s)

		m.clock += step
		m.x = fromX + eased*(toX-fromX)
		m.y = fromY + eased*(toY-fromY)
		if k < steps {
			m.x += m.jitter()
			m.y += m.jitter()
		}

		burst = append(burst, RawSample{Time: m.clock, X: m.x, Y: m.y, Cursor: cursor})
	}
	return burst
}

func (m *Mock) jitter() float64 {
	return (m.rng.Float64()*2 - 1) * m.cfg.Jitter
}

// pause returns the idle time in ms before the next burst.
func (m *Mock) pause() float64 {
	lo := float64(m.cfg.PauseMin) / float64(time.Millisecond)
	hi := float64(m.cfg.PauseMax) / float64(time.Millisecond)
	if hi < lo {
		hi = lo
	}
	return lo + m.rng.Float64()*(hi-lo)
}
