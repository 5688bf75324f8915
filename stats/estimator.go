// Package stats computes confidence statistics over latency samples.
package stats

import (
	"encoding/json"
	"math"
)

// Timings summarizes a sample set: the estimated mean operation latency and
// how confident that estimate is at the 95% level.
type Timings struct {
	SampleCount int `json:"sample_count"`
	// All times are in seconds.
	Mean                  float64 `json:"mean"`
	StdDev                float64 `json:"std_dev"`
	StdErr                float64 `json:"std_err"`
	MarginOfError         float64 `json:"margin_of_error"`
	RelativeMarginOfError float64 `json:"relative_margin_of_error"`
}

// MarshalJSON renders a non-finite relative margin as null so that results
// with degenerate statistics stay serializable.
func (t Timings) MarshalJSON() ([]byte, error) {
	type alias struct {
		SampleCount           int      `json:"sample_count"`
		Mean                  float64  `json:"mean"`
		StdDev                float64  `json:"std_dev"`
		StdErr                float64  `json:"std_err"`
		MarginOfError         float64  `json:"margin_of_error"`
		RelativeMarginOfError *float64 `json:"relative_margin_of_error"`
	}
	a := alias{
		SampleCount:   t.SampleCount,
		Mean:          t.Mean,
		StdDev:        t.StdDev,
		StdErr:        t.StdErr,
		MarginOfError: t.MarginOfError,
	}
	if !math.IsInf(t.RelativeMarginOfError, 0) && !math.IsNaN(t.RelativeMarginOfError) {
		rme := t.RelativeMarginOfError
		a.RelativeMarginOfError = &rme
	}
	return json.Marshal(a)
}

// Estimate computes Timings over an ordered set of duration samples, in
// seconds. It is a pure function and may be called repeatedly against a
// growing sample set.
//
// The standard deviation uses the population formula (divide by n, not n-1).
// This is very slightly biased for small n but is kept deliberately: the
// reported margins of error are consistent across cycle sizes and match the
// engine's established behavior. Do not "correct" it to the sample formula.
func Estimate(samples []float64) Timings {
	n := len(samples)
	if n == 0 {
		return Timings{RelativeMarginOfError: math.Inf(1)}
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(n)

	var sqSum float64
	for _, s := range samples {
		d := s - mean
		sqSum += d * d
	}
	stdDev := math.Sqrt(sqSum / float64(n))
	stdErr := stdDev / math.Sqrt(float64(n))
	margin := stdErr * CriticalValue(float64(n-1))

	// A singleton has no spread to estimate from and a zero mean admits no
	// stable ratio; both read as "insufficient precision, keep sampling".
	rme := math.Inf(1)
	if mean > 0 && n > 1 {
		rme = margin / mean
	}

	return Timings{
		SampleCount:           n,
		Mean:                  mean,
		StdDev:                stdDev,
		StdErr:                stdErr,
		MarginOfError:         margin,
		RelativeMarginOfError: rme,
	}
}
