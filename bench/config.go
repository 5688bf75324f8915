// Package bench implements an adaptive latency benchmarking engine. A
// benchmark repeatedly invokes a black-box operation in cycles, accumulates
// per-iteration duration samples, and stops once the estimated mean is
// precise enough or the time budget runs out.
package bench

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultMaxTime is the wall-clock budget applied when a config does not
	// set one.
	DefaultMaxTime = 30 * time.Second
	// DefaultInitialIterations sizes the mandatory first cycle.
	DefaultInitialIterations = 1
)

// Operation is one iteration of the unit of work under test. The engine
// measures wall time around the call.
type Operation func(ctx context.Context) error

// SelfTimedOperation is one iteration that measures its own duration, for
// callers that want to exclude work the engine cannot see (e.g. request
// encoding around a network round trip).
type SelfTimedOperation func(ctx context.Context) (time.Duration, error)

// SetupFunc runs exactly once before the first cycle.
type SetupFunc func(ctx context.Context) error

// CycleSetupFunc runs once per cycle with the iteration count about to run,
// for batch preparation.
type CycleSetupFunc func(ctx context.Context, iterations int) error

// Config is an immutable description of one unit of work to benchmark. It is
// constructed by the caller and consumed read-only by the runner.
type Config struct {
	// Name identifies the benchmark in reports. Not required to be unique.
	Name string `json:"name" yaml:"name"`

	// Operation is the unit of work. Exactly one of Operation or SelfTimed
	// must be set.
	Operation Operation `json:"-" yaml:"-"`
	// SelfTimed is an operation that reports its own measured duration.
	SelfTimed SelfTimedOperation `json:"-" yaml:"-"`

	// SetupOnce runs before the first cycle. Its duration is tracked
	// separately and does not count against the time budget.
	SetupOnce SetupFunc `json:"-" yaml:"-"`
	// SetupPerCycle runs before each cycle with the upcoming iteration count.
	SetupPerCycle CycleSetupFunc `json:"-" yaml:"-"`

	// MaxTime is the soft wall-clock budget, evaluated between cycles only.
	// Zero means DefaultMaxTime.
	MaxTime time.Duration `json:"max_time" yaml:"maxTime"`
	// InitialIterations sizes the first cycle. Zero means
	// DefaultInitialIterations.
	InitialIterations int `json:"initial_iterations" yaml:"initialIterations"`
	// WarmupRuns is the number of untimed operation invocations before the
	// first cycle. Their cost is accounted as setup time.
	WarmupRuns int `json:"warmup_runs" yaml:"warmupRuns"`

	// Synchronous skips per-iteration timing: only each cycle's net time is
	// captured and divided evenly across its iterations.
	Synchronous bool `json:"synchronous" yaml:"synchronous"`
}

// withDefaults returns a copy of the config with zero values filled in.
func (c Config) withDefaults() Config {
	if c.MaxTime == 0 {
		c.MaxTime = DefaultMaxTime
	}
	if c.InitialIterations == 0 {
		c.InitialIterations = DefaultInitialIterations
	}
	return c
}

// validate rejects invalid configurations before the first cycle runs.
func (c Config) validate() error {
	if c.Operation == nil && c.SelfTimed == nil {
		return errors.Errorf("benchmark %q: no operation configured", c.Name)
	}
	if c.Operation != nil && c.SelfTimed != nil {
		return errors.Errorf("benchmark %q: both Operation and SelfTimed configured", c.Name)
	}
	if c.MaxTime <= 0 {
		return errors.Errorf("benchmark %q: non-positive time budget %v", c.Name, c.MaxTime)
	}
	if c.InitialIterations <= 0 {
		return errors.Errorf("benchmark %q: non-positive initial iteration count %d", c.Name, c.InitialIterations)
	}
	if c.WarmupRuns < 0 {
		return errors.Errorf("benchmark %q: negative warmup run count %d", c.Name, c.WarmupRuns)
	}
	return nil
}

// ConfigBuilder builds benchmark configs with a fluent API.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a builder for a named benchmark.
func NewConfigBuilder(name string) *ConfigBuilder {
	return &ConfigBuilder{config: Config{Name: name}}
}

// WithOperation sets the engine-timed operation.
func (b *ConfigBuilder) WithOperation(op Operation) *ConfigBuilder {
	b.config.Operation = op
	return b
}

// WithSelfTimedOperation sets an operation that measures its own duration.
func (b *ConfigBuilder) WithSelfTimedOperation(op SelfTimedOperation) *ConfigBuilder {
	b.config.SelfTimed = op
	return b
}

// WithSetupOnce sets the one-time setup hook.
func (b *ConfigBuilder) WithSetupOnce(fn SetupFunc) *ConfigBuilder {
	b.config.SetupOnce = fn
	return b
}

// WithSetupPerCycle sets the per-cycle setup hook.
func (b *ConfigBuilder) WithSetupPerCycle(fn CycleSetupFunc) *ConfigBuilder {
	b.config.SetupPerCycle = fn
	return b
}

// WithMaxTime sets the wall-clock budget.
func (b *ConfigBuilder) WithMaxTime(d time.Duration) *ConfigBuilder {
	b.config.MaxTime = d
	return b
}

// WithInitialIterations sets the first cycle's iteration count.
func (b *ConfigBuilder) WithInitialIterations(n int) *ConfigBuilder {
	b.config.InitialIterations = n
	return b
}

// WithWarmupRuns sets the number of untimed warm-up invocations.
func (b *ConfigBuilder) WithWarmupRuns(n int) *ConfigBuilder {
	b.config.WarmupRuns = n
	return b
}

// WithSynchronous toggles net-cycle-only timing.
func (b *ConfigBuilder) WithSynchronous(sync bool) *ConfigBuilder {
	b.config.Synchronous = sync
	return b
}

// Build returns the configured benchmark config.
func (b *ConfigBuilder) Build() Config {
	return b.config
}
