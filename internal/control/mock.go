package control

import (
	"context"
	"math"
	"sync"
)

// MockVolume is an in-memory VolumeControl for tests and dry runs.
type MockVolume struct {
	mu    sync.Mutex
	level float64
	rng   VolumeRange
	sets  []float64
	err   error
	res   float64
}

// NewMockVolume creates a MockVolume at level within rng.
func NewMockVolume(level float64, rng VolumeRange) *MockVolume {
	return &MockVolume{level: level, rng: rng}
}

// SetError makes every call fail with err until cleared with nil.
func (m *MockVolume) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetResolution makes SetLevel round to multiples of res, the way devices
// that only take whole percents do. Zero applies levels unchanged.
func (m *MockVolume) SetResolution(res float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.res = res
}

// Level returns the current level.
func (m *MockVolume) Level(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.level, nil
}

// SetLevel records the request and stores it, rounded to the resolution.
func (m *MockVolume) SetLevel(ctx context.Context, level float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.sets = append(m.sets, level)
	if m.res > 0 {
		level = math.Round(level/m.res) * m.res
	}
	m.level = level
	return level, nil
}

// Range returns the configured range.
func (m *MockVolume) Range(ctx context.Context) (VolumeRange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return VolumeRange{}, m.err
	}
	return m.rng, nil
}

// Sets returns every level passed to SetLevel.
func (m *MockVolume) Sets() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.sets...)
}

// MockSurface records scroll and open requests.
type MockSurface struct {
	mu      sync.Mutex
	scrolls []int
	opened  []string
	err     error
}

// NewMockSurface creates an empty MockSurface.
func NewMockSurface() *MockSurface {
	return &MockSurface{}
}

// SetError makes every call fail with err until cleared with nil.
func (m *MockSurface) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Scroll records ticks.
func (m *MockSurface) Scroll(ctx context.Context, ticks int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.scrolls = append(m.scrolls, ticks)
	return nil
}

// OpenResource records identifier.
func (m *MockSurface) OpenResource(ctx context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.opened = append(m.opened, identifier)
	return nil
}

// Scrolls returns every recorded scroll.
func (m *MockSurface) Scrolls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.scrolls...)
}

// Opened returns every recorded open.
func (m *MockSurface) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}
