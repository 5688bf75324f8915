package main

import (
	"fmt"

	"github.com/8ff/prettyTimer"

	"github.com/nvr-ai/go-bench/bench"
)

// progress prints per-cycle lines in verbose mode and feeds each cycle's
// gross time into a timing summary printed after the comparison.
type progress struct {
	timing *prettyTimer.TimingStats
}

func newProgress() *progress {
	return &progress{timing: prettyTimer.NewTimingStats()}
}

func (p *progress) onCycle(info bench.CycleInfo) {
	p.timing.RecordTiming(info.GrossTime)
	fmt.Printf("  [%d] %s cycle %d: %d iterations, net %v, rme %.2f%%\n",
		info.GlobalCycle, info.ConfigName, info.Cycle, info.Iterations,
		info.NetTime, info.Timings.RelativeMarginOfError*100)
}

// summary prints the cycle timing distribution collected so far.
func (p *progress) summary() {
	fmt.Println()
	fmt.Println("Cycle timings:")
	p.timing.PrintStats()
}
