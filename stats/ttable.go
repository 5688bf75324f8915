package stats

import "math"

// normalCriticalValue is the two-tailed 95% critical value of the standard
// normal distribution, used for degrees of freedom beyond the table.
const normalCriticalValue = 1.96

// tTable holds two-tailed 95%-confidence Student's t critical values indexed
// by degrees of freedom 1..30. Index 0 is unused.
var tTable = [31]float64{
	0,
	12.706, 4.303, 3.182, 2.776, 2.571,
	2.447, 2.365, 2.306, 2.262, 2.228,
	2.201, 2.179, 2.160, 2.145, 2.131,
	2.120, 2.110, 2.101, 2.093, 2.086,
	2.080, 2.074, 2.069, 2.064, 2.060,
	2.056, 2.052, 2.048, 2.045, 2.042,
}

// CriticalValue returns the two-tailed 95% Student's t critical value for the
// given degrees of freedom. The value is rounded to the nearest integer
// before lookup; df <= 0 is treated as 1, and df beyond the table resolves to
// the normal approximation rather than a missing entry.
func CriticalValue(df float64) float64 {
	idx := int(math.Round(df))
	if idx <= 0 {
		idx = 1
	}
	if idx >= len(tTable) {
		return normalCriticalValue
	}
	return tTable[idx]
}
