// Package clock provides the time source used for every duration measurement
// taken by the benchmarking engine.
package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic high-resolution time source.
type Clock interface {
	// Now returns the current reading of the clock.
	Now() time.Time
	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

// realClock reads the wall clock. time.Now carries a monotonic component, so
// Since is immune to wall-clock adjustments.
type realClock struct{}

func (realClock) Now() time.Time                  { return time.Now() }
func (realClock) Since(t time.Time) time.Duration { return time.Since(t) }

// New returns the real monotonic clock.
func New() Clock {
	return realClock{}
}

// Mock is a manually controlled clock for deterministic tests. Every call to
// Now advances the clock by the configured step, simulating work that takes a
// fixed amount of time between readings.
type Mock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewMock creates a mock clock starting at the given instant.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

// Now returns the current mock time, then advances it by the step.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.now
	m.now = m.now.Add(m.step)
	return t
}

// Since returns the mock time elapsed since t.
func (m *Mock) Since(t time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now.Sub(t)
}

// Advance moves the mock clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// SetStep configures the amount of time that passes on every Now call.
func (m *Mock) SetStep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = d
}
