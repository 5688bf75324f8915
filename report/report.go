// Package report renders benchmark results for humans and persists them for
// offline inspection. It consumes the engine's result structures and never
// influences measurement.
package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/fatih/color"

	"github.com/nvr-ai/go-bench/bench"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// RenderResult writes a human-readable summary of a single benchmark run.
func RenderResult(w io.Writer, r *bench.Result) {
	bold.Fprintf(w, "%s\n", r.Name)
	fmt.Fprintf(w, "  mean %v ± %v (%s, %d samples, %d cycles)\n",
		formatSeconds(r.Timings.Mean),
		formatSeconds(r.Timings.MarginOfError),
		formatRelativeMargin(r.Timings.RelativeMarginOfError),
		r.Timings.SampleCount,
		r.Cycles,
	)

	p := r.Percentiles()
	fmt.Fprintf(w, "  min %v  p50 %v  p95 %v  p99 %v  max %v\n",
		formatSeconds(p.Min), formatSeconds(p.P50), formatSeconds(p.P95),
		formatSeconds(p.P99), formatSeconds(p.Max))
	fmt.Fprintf(w, "  elapsed %v (setup %v)\n",
		r.Elapsed.Truncate(time.Millisecond), r.SetupTime.Truncate(time.Millisecond))
}

// RenderComparison writes the ranked comparison table.
func RenderComparison(w io.Writer, cr *bench.ComparisonResult) {
	for _, cand := range cr.Candidates {
		if cand.Err != nil {
			red.Fprintf(w, "  FAILED  %-24s %v\n", cand.Config.Name, cand.Err)
			continue
		}

		t := cand.Result.Timings
		line := fmt.Sprintf("  #%d  %-24s mean %-12v ± %-6s",
			cand.Rank, cand.Config.Name, formatSeconds(t.Mean), formatRelativeMargin(t.RelativeMarginOfError))

		if cand.IsFastest {
			green.Fprintf(w, "%s  fastest\n", line)
			continue
		}
		fmt.Fprintf(w, "%s  +%s..+%s slower (%s..%s)\n", line,
			cand.Overhead.Min.Truncate(time.Microsecond),
			cand.Overhead.Max.Truncate(time.Microsecond),
			formatPercent(cand.Overhead.RelativeMin),
			formatPercent(cand.Overhead.RelativeMax))
	}

	if cr.Failed > 0 {
		fmt.Fprintf(w, "  %d of %d configurations failed\n", cr.Failed, cr.Succeeded+cr.Failed)
	}
}

// formatSeconds renders a duration given in seconds with a sensible unit.
func formatSeconds(s float64) string {
	if math.IsInf(s, 0) || math.IsNaN(s) {
		return "n/a"
	}
	return time.Duration(s * float64(time.Second)).Truncate(time.Nanosecond).String()
}

func formatRelativeMargin(rme float64) string {
	if math.IsInf(rme, 0) || math.IsNaN(rme) {
		return "±∞"
	}
	return fmt.Sprintf("±%.2f%%", rme*100)
}

func formatPercent(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "∞"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
