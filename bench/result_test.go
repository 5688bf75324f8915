package bench

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-bench/clock"
	"github.com/nvr-ai/go-bench/stats"
)

func TestMergeEquivalentToOneLongerRun(t *testing.T) {
	a := &Result{
		Name:       "merge",
		Cycles:     2,
		Iterations: 4,
		Elapsed:    10 * time.Millisecond,
		SetupTime:  time.Millisecond,
		Samples:    []float64{0.001, 0.0012, 0.0011, 0.0013},
		CycleRecords: []CycleRecord{
			{Index: 0, Iterations: 2},
			{Index: 1, Iterations: 2},
		},
	}
	a.Timings = stats.Estimate(a.Samples)

	b := &Result{
		Name:         "merge",
		Cycles:       1,
		Iterations:   3,
		Elapsed:      5 * time.Millisecond,
		SetupTime:    time.Millisecond,
		Samples:      []float64{0.0009, 0.0014, 0.001},
		CycleRecords: []CycleRecord{{Index: 0, Iterations: 3}},
	}
	b.Timings = stats.Estimate(b.Samples)

	merged := Merge(a, b)

	combined := append(append([]float64{}, a.Samples...), b.Samples...)
	want := stats.Estimate(combined)

	assert.Equal(t, "merge", merged.Name)
	assert.Equal(t, 3, merged.Cycles)
	assert.Equal(t, 7, merged.Iterations)
	assert.Equal(t, 15*time.Millisecond, merged.Elapsed)
	assert.Len(t, merged.CycleRecords, 3)
	assert.Equal(t, want.Mean, merged.Timings.Mean)
	assert.InDelta(t, want.RelativeMarginOfError, merged.Timings.RelativeMarginOfError, 1e-12)
}

func TestMergeRealRunsMatchesConcatenatedSamples(t *testing.T) {
	mock := clock.NewMock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	runner := NewRunnerWithClock(mock)

	durations := []time.Duration{
		time.Millisecond, 1200 * time.Microsecond, 900 * time.Microsecond,
		1100 * time.Microsecond, time.Millisecond, 1300 * time.Microsecond,
	}
	i := 0
	cfg := NewConfigBuilder("repeated").
		WithOperation(func(ctx context.Context) error {
			mock.Advance(durations[i%len(durations)])
			i++
			return nil
		}).
		WithMaxTime(5 * time.Millisecond).
		WithInitialIterations(3).
		Build()

	first, err := runner.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	merged := Merge(first, second)

	combined := append(append([]float64{}, first.Samples...), second.Samples...)
	want := stats.Estimate(combined)

	assert.Equal(t, want.Mean, merged.Timings.Mean)
	assert.InDelta(t, want.RelativeMarginOfError, merged.Timings.RelativeMarginOfError, 1e-12)
	assert.Equal(t, first.Iterations+second.Iterations, merged.Iterations)
}

func TestPercentiles(t *testing.T) {
	r := &Result{}
	for i := 1; i <= 100; i++ {
		r.Samples = append(r.Samples, float64(i)/1000)
	}

	p := r.Percentiles()

	assert.Equal(t, 0.001, p.Min)
	assert.Equal(t, 0.1, p.Max)
	assert.InDelta(t, 0.050, p.P50, 0.001)
	assert.InDelta(t, 0.095, p.P95, 0.001)
	assert.InDelta(t, 0.099, p.P99, 0.001)
}

func TestPercentilesEmpty(t *testing.T) {
	r := &Result{}
	assert.Equal(t, Percentiles{}, r.Percentiles())
}

func TestResultSerializableWithDegenerateTimings(t *testing.T) {
	r := &Result{
		Name:    "degenerate",
		Timings: stats.Estimate(nil),
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"relative_margin_of_error":null`)
}
