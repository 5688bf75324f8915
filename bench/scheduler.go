package bench

import (
	"math"
	"time"

	"github.com/nvr-ai/go-bench/stats"
)

const (
	// targetRelativeMargin is the stopping criterion: sampling stops once the
	// 95% margin of error falls below 2% of the mean.
	targetRelativeMargin = 0.02
	// maxErrorFactor caps how conservatively an unconverged estimate shrinks
	// the next cycle.
	maxErrorFactor = 10.0
	// cycleBudgetFraction caps a single cycle's target net time at a tenth of
	// the total budget so progress stays observable.
	cycleBudgetFraction = 0.1
	// perIterationSampleLimit is the cycle size above which individual
	// iteration timings are no longer captured; only the cycle's net time is
	// recorded, divided evenly across iterations. Timing every iteration of
	// a very large cycle would itself dominate the measurement.
	perIterationSampleLimit = 1000
)

// schedulerState is the accounting the scheduler consults after each cycle.
type schedulerState struct {
	config Config

	// elapsed is total wall time since the run started, including setup.
	elapsed time.Duration
	// setupOnceTime is the cost of the one-time setup hook plus warm-up.
	setupOnceTime time.Duration
	// grossCycleTime is wall time spent inside executed cycles.
	grossCycleTime time.Duration

	iterations int
	cycles     int
	timings    stats.Timings
}

// nextIterationCount decides whether another cycle runs and how large it is.
// A return of 0 stops the run.
//
// The first cycle always runs at the configured initial size so at least one
// measurement exists. Afterwards the remaining budget (with one-time setup
// refunded, so that expensive preparation does not eat into measurement time)
// is balanced against the current precision: the further the relative margin
// of error is from the target, the smaller the next cycle, capped at a tenth
// of the total budget per cycle.
func nextIterationCount(s schedulerState) int {
	cfg := s.config

	if s.cycles == 0 {
		return cfg.InitialIterations
	}

	// One-time setup is free against the budget.
	remaining := cfg.MaxTime - s.elapsed + s.setupOnceTime
	if remaining <= 0 {
		return 0
	}

	if s.timings.RelativeMarginOfError < targetRelativeMargin {
		return 0
	}

	// An infinite relative margin saturates at the cap.
	errorFactor := math.Min(s.timings.RelativeMarginOfError+1, maxErrorFactor)

	// Fixed per-cycle overhead observed so far: everything that was neither
	// one-time setup nor time inside a cycle.
	meanSetupPerCycle := (s.elapsed - s.grossCycleTime - s.setupOnceTime) / time.Duration(s.cycles)
	if remaining < meanSetupPerCycle {
		return 0
	}

	targetNet := float64(remaining-meanSetupPerCycle) / errorFactor
	maxNet := float64(cfg.MaxTime) * cycleBudgetFraction
	if targetNet > maxNet {
		targetNet = maxNet
	}

	grossPerIteration := float64(s.grossCycleTime) / float64(s.iterations)
	if grossPerIteration <= 0 {
		return cfg.InitialIterations
	}

	return int(math.Round(targetNet / grossPerIteration))
}
