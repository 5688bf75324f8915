package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-bench/bench"
)

// SaveComparison persists a comparison to the output directory: full detail
// as timestamped JSON plus a summary CSV. It returns the two file paths.
func SaveComparison(outputDir string, cr *bench.ComparisonResult) (jsonPath, csvPath string, err error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	jsonPath = filepath.Join(outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))
	csvPath = filepath.Join(outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))

	data, err := json.MarshalIndent(cr, "", "  ")
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", errors.Wrap(err, "failed to write results file")
	}

	if err := saveSummaryCSV(csvPath, cr); err != nil {
		return "", "", errors.Wrap(err, "failed to save summary CSV")
	}

	return jsonPath, csvPath, nil
}

func saveSummaryCSV(filename string, cr *bench.ComparisonResult) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	header := "Rank,Name,Mean_ms,Margin_ms,Relative_Margin,Samples,Cycles,Iterations,Overhead_Min_ms,Overhead_Max_ms\n"
	if _, err := file.WriteString(header); err != nil {
		return err
	}

	for _, cand := range cr.Candidates {
		if cand.Err != nil {
			line := fmt.Sprintf(",%s,,,,,,,,\n", cand.Config.Name)
			if _, err := file.WriteString(line); err != nil {
				return err
			}
			continue
		}

		t := cand.Result.Timings
		// Degenerate margins stay empty, matching the JSON null convention.
		rme := ""
		if !math.IsInf(t.RelativeMarginOfError, 0) && !math.IsNaN(t.RelativeMarginOfError) {
			rme = fmt.Sprintf("%.6f", t.RelativeMarginOfError)
		}
		line := fmt.Sprintf("%d,%s,%.6f,%.6f,%s,%d,%d,%d,%.6f,%.6f\n",
			cand.Rank,
			cand.Config.Name,
			t.Mean*1e3,
			t.MarginOfError*1e3,
			rme,
			t.SampleCount,
			cand.Result.Cycles,
			cand.Result.Iterations,
			float64(cand.Overhead.Min.Nanoseconds())/1e6,
			float64(cand.Overhead.Max.Nanoseconds())/1e6,
		)
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}

	return nil
}
