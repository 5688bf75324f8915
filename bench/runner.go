package bench

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-bench/clock"
	"github.com/nvr-ai/go-bench/stats"
)

// CycleInfo is handed to the progress callback after every completed cycle.
type CycleInfo struct {
	// ConfigName identifies the benchmark the cycle belongs to.
	ConfigName string
	// Cycle is the zero-based cycle index within the run.
	Cycle int
	// GlobalCycle is the cycle index across a comparison; equal to Cycle for
	// standalone runs.
	GlobalCycle int
	// Iterations is the cycle's iteration count.
	Iterations int

	NetTime   time.Duration
	GrossTime time.Duration
	// Elapsed is total wall time since the run started.
	Elapsed time.Duration

	// Timings is the current estimate over all samples so far.
	Timings stats.Timings
}

// CycleFunc observes per-cycle progress. It is invoked synchronously between
// cycles and must not block for long; a panic inside it aborts the run.
type CycleFunc func(CycleInfo)

// Runner executes single benchmark configurations end to end.
//
// Iterations within a run execute strictly sequentially, one in flight at a
// time: parallel iterations would contend for the wall clock and bias the
// per-iteration latencies this engine exists to measure.
type Runner struct {
	clock clock.Clock
}

// NewRunner creates a runner backed by the real monotonic clock.
func NewRunner() *Runner {
	return &Runner{clock: clock.New()}
}

// NewRunnerWithClock creates a runner with an explicit time source, used by
// tests to make scheduling deterministic.
func NewRunnerWithClock(c clock.Clock) *Runner {
	return &Runner{clock: c}
}

// Run executes one benchmark configuration to completion and returns its
// aggregate result. Failures in the operation or either setup hook terminate
// the run immediately; no partial result is returned. onCycle may be nil.
func (r *Runner) Run(ctx context.Context, cfg Config, onCycle CycleFunc) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var memBefore runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&memBefore)

	start := r.clock.Now()

	if cfg.SetupOnce != nil {
		if err := cfg.SetupOnce(ctx); err != nil {
			return nil, errors.Wrapf(err, "benchmark %q: one-time setup failed", cfg.Name)
		}
	}

	// Warm-up invocations are untimed and their errors ignored: a cold-start
	// failure here would equally have happened on the first measured
	// iteration, which does propagate.
	for i := 0; i < cfg.WarmupRuns; i++ {
		r.invokeUntimed(ctx, cfg)
	}

	// One-time setup and warm-up cost is excluded from the time budget.
	setupOnceTime := r.clock.Since(start)

	var (
		samples        []float64
		records        []CycleRecord
		grossCycleTime time.Duration
		netTotal       time.Duration
		iterations     int
	)

	for {
		state := schedulerState{
			config:         cfg,
			elapsed:        r.clock.Since(start),
			setupOnceTime:  setupOnceTime,
			grossCycleTime: grossCycleTime,
			iterations:     iterations,
			cycles:         len(records),
			timings:        stats.Estimate(samples),
		}
		n := nextIterationCount(state)
		if n <= 0 {
			break
		}

		if cfg.SetupPerCycle != nil {
			if err := cfg.SetupPerCycle(ctx, n); err != nil {
				return nil, errors.Wrapf(err, "benchmark %q: cycle %d setup failed", cfg.Name, len(records))
			}
		}

		net, gross, err := r.runCycle(ctx, cfg, n, &samples)
		if err != nil {
			return nil, errors.Wrapf(err, "benchmark %q: cycle %d failed", cfg.Name, len(records))
		}

		grossCycleTime += gross
		netTotal += net
		iterations += n

		record := CycleRecord{
			Index:      len(records),
			Iterations: n,
			NetTime:    net,
			GrossTime:  gross,
			Timings:    stats.Estimate(samples),
		}
		records = append(records, record)

		if onCycle != nil {
			onCycle(CycleInfo{
				ConfigName:  cfg.Name,
				Cycle:       record.Index,
				GlobalCycle: record.Index,
				Iterations:  n,
				NetTime:     net,
				GrossTime:   gross,
				Elapsed:     r.clock.Since(start),
				Timings:     record.Timings,
			})
		}
	}

	elapsed := r.clock.Since(start)

	var memAfter runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&memAfter)

	return &Result{
		Name:         cfg.Name,
		Cycles:       len(records),
		Iterations:   iterations,
		Elapsed:      elapsed,
		SetupTime:    elapsed - netTotal,
		Timings:      stats.Estimate(samples),
		CycleRecords: records,
		Samples:      samples,
		Memory: MemoryMetrics{
			AllocBytes:      memAfter.Alloc,
			TotalAllocBytes: memAfter.TotalAlloc - memBefore.TotalAlloc,
			SysBytes:        memAfter.Sys,
			NumGC:           memAfter.NumGC - memBefore.NumGC,
			HeapAllocBytes:  memAfter.HeapAlloc,
			HeapSysBytes:    memAfter.HeapSys,
		},
	}, nil
}

// runCycle executes n iterations back to back and appends their samples.
//
// Below the detail limit each iteration is timed individually. Above it, or
// when the config opts out of per-iteration timing, only the cycle's net time
// is measured and divided evenly across iterations: at very high counts the
// clock reads themselves would dominate small operations. Self-timed
// operations always sample individually since their durations cost nothing
// extra to capture.
func (r *Runner) runCycle(ctx context.Context, cfg Config, n int, samples *[]float64) (net, gross time.Duration, err error) {
	cycleStart := r.clock.Now()

	switch {
	case cfg.SelfTimed != nil:
		for i := 0; i < n; i++ {
			d, opErr := cfg.SelfTimed(ctx)
			if opErr != nil {
				return 0, 0, errors.Wrapf(opErr, "iteration %d", i)
			}
			*samples = append(*samples, d.Seconds())
			net += d
		}
		gross = r.clock.Since(cycleStart)

	case !cfg.Synchronous && n <= perIterationSampleLimit:
		for i := 0; i < n; i++ {
			iterStart := r.clock.Now()
			if opErr := cfg.Operation(ctx); opErr != nil {
				return 0, 0, errors.Wrapf(opErr, "iteration %d", i)
			}
			d := r.clock.Since(iterStart)
			*samples = append(*samples, d.Seconds())
			net += d
		}
		gross = r.clock.Since(cycleStart)

	default:
		for i := 0; i < n; i++ {
			if opErr := cfg.Operation(ctx); opErr != nil {
				return 0, 0, errors.Wrapf(opErr, "iteration %d", i)
			}
		}
		gross = r.clock.Since(cycleStart)
		net = gross
		per := net.Seconds() / float64(n)
		for i := 0; i < n; i++ {
			*samples = append(*samples, per)
		}
	}

	return net, gross, nil
}

// invokeUntimed runs the operation once outside any measurement.
func (r *Runner) invokeUntimed(ctx context.Context, cfg Config) {
	if cfg.SelfTimed != nil {
		_, _ = cfg.SelfTimed(ctx)
		return
	}
	_ = cfg.Operation(ctx)
}
