package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-bench/bench"
	"github.com/nvr-ai/go-bench/clock"
)

func TestProgressCollectsCycleTimings(t *testing.T) {
	mock := clock.NewMock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c := bench.NewComparisonWithRunner(bench.NewRunnerWithClock(mock))
	c.Add(bench.NewConfigBuilder("steady").
		WithSelfTimedOperation(func(ctx context.Context) (time.Duration, error) {
			return time.Millisecond, nil
		}).
		WithInitialIterations(2).
		Build())

	prog := newProgress()

	result := c.Run(context.Background(), prog.onCycle)
	require.Equal(t, 1, result.Succeeded)

	// Every observed cycle fed the timing collector; the summary renders
	// without panicking even after a single recording.
	require.NotPanics(t, prog.summary)
}
