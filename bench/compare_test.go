package bench

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-bench/clock"
)

// selfTimedConstant reports a fixed latency without touching the clock.
func selfTimedConstant(d time.Duration) SelfTimedOperation {
	return func(ctx context.Context) (time.Duration, error) {
		return d, nil
	}
}

func newComparisonUnderMockClock() *Comparison {
	mock := clock.NewMock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewComparisonWithRunner(NewRunnerWithClock(mock))
}

func comparisonOfConstants(t *testing.T) *ComparisonResult {
	t.Helper()

	c := newComparisonUnderMockClock()
	// Deliberately added out of speed order.
	c.Add(NewConfigBuilder("medium").WithSelfTimedOperation(selfTimedConstant(5 * time.Millisecond)).WithInitialIterations(2).Build())
	c.Add(NewConfigBuilder("slow").WithSelfTimedOperation(selfTimedConstant(10 * time.Millisecond)).WithInitialIterations(2).Build())
	c.Add(NewConfigBuilder("fast").WithSelfTimedOperation(selfTimedConstant(time.Millisecond)).WithInitialIterations(2).Build())

	return c.Run(context.Background(), nil)
}

func TestComparisonRanksByAscendingMean(t *testing.T) {
	result := comparisonOfConstants(t)

	require.Len(t, result.Candidates, 3)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	assert.Equal(t, "fast", result.Candidates[0].Config.Name)
	assert.Equal(t, "medium", result.Candidates[1].Config.Name)
	assert.Equal(t, "slow", result.Candidates[2].Config.Name)

	for i, cand := range result.Candidates {
		assert.Equal(t, i, cand.Rank)
		assert.Equal(t, i == 0, cand.IsFastest)
	}
}

func TestComparisonOverheadBracketsTrueRatio(t *testing.T) {
	result := comparisonOfConstants(t)

	// The 5ms candidate against the 1ms fastest: the true overhead ratio is
	// (5-1)/1 = 400% and must lie within the reported range.
	medium := result.Candidates[1]
	require.Equal(t, "medium", medium.Config.Name)

	// Zero-variance candidates collapse the range to a point; allow for
	// floating-point noise in the last place.
	assert.LessOrEqual(t, medium.Overhead.RelativeMin, 4.0+1e-9)
	assert.GreaterOrEqual(t, medium.Overhead.RelativeMax, 4.0-1e-9)
	assert.LessOrEqual(t, medium.Overhead.Min, 4*time.Millisecond+time.Microsecond)
	assert.GreaterOrEqual(t, medium.Overhead.Max, 4*time.Millisecond-time.Microsecond)

	// The fastest candidate carries no overhead range.
	assert.Equal(t, OverheadRange{}, result.Candidates[0].Overhead)
}

func TestComparisonFailedCandidateExcludedFromRanking(t *testing.T) {
	c := newComparisonUnderMockClock()
	c.Add(NewConfigBuilder("ok").WithSelfTimedOperation(selfTimedConstant(time.Millisecond)).WithInitialIterations(2).Build())
	c.Add(NewConfigBuilder("broken").WithSelfTimedOperation(func(ctx context.Context) (time.Duration, error) {
		return 0, errors.New("timeout")
	}).Build())
	c.Add(NewConfigBuilder("also-ok").WithSelfTimedOperation(selfTimedConstant(2 * time.Millisecond)).WithInitialIterations(2).Build())

	result := c.Run(context.Background(), nil)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Candidates, 3)

	// Ranked candidates first, the failed one last and unranked.
	assert.Equal(t, "ok", result.Candidates[0].Config.Name)
	assert.Equal(t, "also-ok", result.Candidates[1].Config.Name)

	failed := result.Candidates[2]
	assert.Equal(t, "broken", failed.Config.Name)
	assert.Equal(t, -1, failed.Rank)
	assert.False(t, failed.IsFastest)
	assert.Error(t, failed.Err)
	assert.Nil(t, failed.Result)
	// The failure reason survives serialization, not just the Err field.
	assert.Equal(t, "timeout", failed.ErrorMessage)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"error_message":"timeout"`)
}

func TestComparisonFailureDoesNotAbortOthers(t *testing.T) {
	c := newComparisonUnderMockClock()
	c.Add(NewConfigBuilder("broken-first").WithSelfTimedOperation(func(ctx context.Context) (time.Duration, error) {
		return 0, errors.New("boom")
	}).Build())
	c.Add(NewConfigBuilder("survivor").WithSelfTimedOperation(selfTimedConstant(time.Millisecond)).WithInitialIterations(2).Build())

	result := c.Run(context.Background(), nil)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "survivor", result.Candidates[0].Config.Name)
	assert.True(t, result.Candidates[0].IsFastest)
}

func TestComparisonForwardsGlobalCycleIndex(t *testing.T) {
	c := newComparisonUnderMockClock()
	c.Add(NewConfigBuilder("a").WithSelfTimedOperation(selfTimedConstant(time.Millisecond)).WithInitialIterations(2).Build())
	c.Add(NewConfigBuilder("b").WithSelfTimedOperation(selfTimedConstant(2 * time.Millisecond)).WithInitialIterations(2).Build())

	var names []string
	var globals []int
	result := c.Run(context.Background(), func(info CycleInfo) {
		names = append(names, info.ConfigName)
		globals = append(globals, info.GlobalCycle)
	})

	require.Equal(t, 2, result.Succeeded)
	require.NotEmpty(t, globals)
	// Global indices increase monotonically across both configurations.
	for i, g := range globals {
		assert.Equal(t, i, g)
	}
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "b")
}
