package bench

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/nvr-ai/go-bench/stats"
)

// CycleRecord is the immutable outcome of one cycle.
type CycleRecord struct {
	// Index is the zero-based cycle number within the run.
	Index int `json:"index"`
	// Iterations is the number of operation invocations in the cycle.
	Iterations int `json:"iterations"`
	// NetTime is time attributable strictly to the operation.
	NetTime time.Duration `json:"net_time"`
	// GrossTime is wall-clock time for the whole cycle, including runner
	// overhead such as per-iteration clock reads.
	GrossTime time.Duration `json:"gross_time"`
	// Timings is the estimator snapshot over all samples collected so far.
	Timings stats.Timings `json:"timings"`
}

// MemoryMetrics captures the allocation pressure of a run.
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// Result is the final aggregate over a completed benchmark run.
type Result struct {
	Name string `json:"name"`

	Cycles     int `json:"cycles"`
	Iterations int `json:"iterations"`

	// Elapsed is total wall time of the run.
	Elapsed time.Duration `json:"elapsed"`
	// SetupTime is elapsed time not spent inside the operation: one-time
	// setup, warm-up, per-cycle setup hooks, and runner overhead.
	SetupTime time.Duration `json:"setup_time"`

	Timings stats.Timings `json:"timings"`

	// CycleRecords and Samples are retained in execution order for offline
	// inspection. Samples are iteration durations in seconds.
	CycleRecords []CycleRecord `json:"cycle_records"`
	Samples      []float64     `json:"samples"`

	Memory MemoryMetrics `json:"memory"`
}

// Merge combines results from multiple runs of the same configuration into an
// aggregate equivalent to one longer run: sample and cycle sequences are
// concatenated and the Timings recomputed over the merged samples.
func Merge(results ...*Result) *Result {
	merged := &Result{}
	for _, r := range results {
		if r == nil {
			continue
		}
		if merged.Name == "" {
			merged.Name = r.Name
		}
		merged.Cycles += r.Cycles
		merged.Iterations += r.Iterations
		merged.Elapsed += r.Elapsed
		merged.SetupTime += r.SetupTime
		merged.CycleRecords = append(merged.CycleRecords, r.CycleRecords...)
		merged.Samples = append(merged.Samples, r.Samples...)
		merged.Memory.TotalAllocBytes += r.Memory.TotalAllocBytes
		merged.Memory.NumGC += r.Memory.NumGC
	}
	merged.Timings = stats.Estimate(merged.Samples)
	return merged
}

// Percentiles is an on-demand latency distribution summary over the raw
// samples of a run. All values are in seconds.
type Percentiles struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

// Percentiles computes the distribution summary from the run's samples.
func (r *Result) Percentiles() Percentiles {
	if len(r.Samples) == 0 {
		return Percentiles{}
	}
	sorted := make([]float64, len(r.Samples))
	copy(sorted, r.Samples)
	sort.Float64s(sorted)

	return Percentiles{
		Min: sorted[0],
		P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95: stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99: stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Max: sorted[len(sorted)-1],
	}
}

// MeanDuration returns the estimated mean latency as a time.Duration.
func (r *Result) MeanDuration() time.Duration {
	return time.Duration(r.Timings.Mean * float64(time.Second))
}
