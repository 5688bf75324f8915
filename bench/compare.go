package bench

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"
)

// OverheadRange expresses how much slower a candidate is than the fastest
// one, as a range rather than a point estimate: both the candidate's and the
// fastest's margins of error propagate into the comparison.
type OverheadRange struct {
	// Min and Max bound the absolute per-iteration overhead.
	Min time.Duration `json:"min"`
	Max time.Duration `json:"max"`
	// RelativeMin and RelativeMax bound the overhead as a fraction of the
	// fastest candidate's mean.
	RelativeMin float64 `json:"relative_min"`
	RelativeMax float64 `json:"relative_max"`
}

// MarshalJSON renders non-finite relative bounds as null so comparisons with
// degenerate statistics stay serializable.
func (o OverheadRange) MarshalJSON() ([]byte, error) {
	type alias struct {
		Min         time.Duration `json:"min"`
		Max         time.Duration `json:"max"`
		RelativeMin *float64      `json:"relative_min"`
		RelativeMax *float64      `json:"relative_max"`
	}
	a := alias{Min: o.Min, Max: o.Max}
	if !math.IsInf(o.RelativeMin, 0) && !math.IsNaN(o.RelativeMin) {
		v := o.RelativeMin
		a.RelativeMin = &v
	}
	if !math.IsInf(o.RelativeMax, 0) && !math.IsNaN(o.RelativeMax) {
		v := o.RelativeMax
		a.RelativeMax = &v
	}
	return json.Marshal(a)
}

// Candidate pairs a benchmark config with its outcome in a comparison.
type Candidate struct {
	Config Config  `json:"config"`
	Result *Result `json:"result,omitempty"`
	// Err is set when the candidate's run failed; failed candidates are
	// excluded from ranking. ErrorMessage carries the failure into
	// persisted results.
	Err          error  `json:"-"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Rank orders successful candidates by ascending mean time, fastest
	// first at rank 0. Failed candidates carry rank -1.
	Rank      int  `json:"rank"`
	IsFastest bool `json:"is_fastest"`
	// Overhead is populated for every ranked candidate except the fastest.
	Overhead OverheadRange `json:"overhead"`
}

// ComparisonResult is the ranked outcome of comparing several configs.
type ComparisonResult struct {
	// Candidates are ordered by rank, with failed candidates last in their
	// original relative order.
	Candidates []Candidate `json:"candidates"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
}

// Comparison runs several benchmark configurations back to back under the
// same measurement conditions, so transient system load affects all
// candidates similarly, and ranks them by mean time.
type Comparison struct {
	runner  *Runner
	configs []Config
}

// NewComparison creates a comparison using the real clock.
func NewComparison() *Comparison {
	return &Comparison{runner: NewRunner()}
}

// NewComparisonWithRunner creates a comparison driving runs through the given
// runner.
func NewComparisonWithRunner(r *Runner) *Comparison {
	return &Comparison{runner: r}
}

// Add appends a configuration to the comparison.
func (c *Comparison) Add(cfg Config) {
	c.configs = append(c.configs, cfg)
}

// Run executes every configuration's full adaptive benchmark sequentially and
// ranks the outcomes. A failing configuration does not abort the remaining
// ones; it is reported in the Failed count and left unranked. Per-cycle
// callbacks are forwarded with the configuration's name and a global cycle
// index across the whole comparison.
func (c *Comparison) Run(ctx context.Context, onCycle CycleFunc) *ComparisonResult {
	globalCycle := 0

	candidates := make([]Candidate, 0, len(c.configs))
	for _, cfg := range c.configs {
		var wrapped CycleFunc
		if onCycle != nil {
			wrapped = func(info CycleInfo) {
				info.GlobalCycle = globalCycle
				globalCycle++
				onCycle(info)
			}
		} else {
			wrapped = func(CycleInfo) { globalCycle++ }
		}

		result, err := c.runner.Run(ctx, cfg, wrapped)
		candidates = append(candidates, Candidate{Config: cfg, Result: result, Err: err, Rank: -1})
	}

	return rank(candidates)
}

// rank orders successful candidates by ascending mean time and computes
// overhead ranges against the fastest.
func rank(candidates []Candidate) *ComparisonResult {
	var ranked, failed []Candidate
	for _, cand := range candidates {
		if cand.Err != nil {
			cand.ErrorMessage = cand.Err.Error()
			failed = append(failed, cand)
			continue
		}
		ranked = append(ranked, cand)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Timings.Mean < ranked[j].Result.Timings.Mean
	})

	for i := range ranked {
		ranked[i].Rank = i
		if i == 0 {
			ranked[i].IsFastest = true
			continue
		}
		ranked[i].Overhead = overheadRange(ranked[i].Result.Timings.Mean, ranked[i].Result.Timings.MarginOfError,
			ranked[0].Result.Timings.Mean, ranked[0].Result.Timings.MarginOfError)
	}

	out := &ComparisonResult{
		Candidates: append(ranked, failed...),
		Succeeded:  len(ranked),
		Failed:     len(failed),
	}
	return out
}

// overheadRange bounds the difference between a candidate's mean and the
// fastest mean over the Cartesian combination of both margins of error: the
// worst case pairs the candidate's upper bound with the fastest's lower
// bound, and vice versa.
func overheadRange(mean, margin, fastestMean, fastestMargin float64) OverheadRange {
	candidateBounds := [2]float64{mean - margin, mean + margin}
	fastestBounds := [2]float64{fastestMean - fastestMargin, fastestMean + fastestMargin}

	absMin, absMax := math.Inf(1), math.Inf(-1)
	relMin, relMax := math.Inf(1), math.Inf(-1)
	for _, cb := range candidateBounds {
		for _, fb := range fastestBounds {
			diff := cb - fb
			absMin = math.Min(absMin, diff)
			absMax = math.Max(absMax, diff)

			rel := math.Inf(1)
			if fb > 0 {
				rel = diff / fb
			}
			relMin = math.Min(relMin, rel)
			relMax = math.Max(relMax, rel)
		}
	}

	return OverheadRange{
		Min:         time.Duration(absMin * float64(time.Second)),
		Max:         time.Duration(absMax * float64(time.Second)),
		RelativeMin: relMin,
		RelativeMax: relMax,
	}
}
