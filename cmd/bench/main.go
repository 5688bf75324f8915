// Command bench runs scenario files through the adaptive benchmarking engine
// and renders a ranked comparison.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-bench/bench"
	"github.com/nvr-ai/go-bench/report"
)

var (
	scenarioFile string
	outputDir    string
	budget       time.Duration
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "bench",
	Short: "Adaptive latency benchmark runner",
	Long: `bench runs one or more benchmark scenarios side by side, adaptively
sampling each operation until its mean latency is known to within 2% at 95%
confidence or the time budget runs out, then ranks the candidates.

Scenario files (YAML or JSON) reference built-in reference operations:
sleep, spin, alloc, hash. Without a scenario file a small demo set runs.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&scenarioFile, "scenarios", "s", "", "Path to a YAML or JSON scenario file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write JSON and CSV results into")
	rootCmd.Flags().DurationVarP(&budget, "budget", "b", 5*time.Second, "Per-scenario time budget when the scenario does not set one")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-cycle progress")
}

func run(cmd *cobra.Command, args []string) error {
	set, err := loadOrDemoSet()
	if err != nil {
		return err
	}

	configs, err := set.Resolve(builtinOps)
	if err != nil {
		return err
	}

	comparison := bench.NewComparison()
	for _, cfg := range configs {
		if cfg.MaxTime == 0 {
			cfg.MaxTime = budget
		}
		comparison.Add(cfg)
	}

	fmt.Printf("%s: %d scenarios\n", set.Name, len(configs))

	var (
		onCycle bench.CycleFunc
		prog    *progress
	)
	if verbose {
		prog = newProgress()
		onCycle = prog.onCycle
	}

	result := comparison.Run(context.Background(), onCycle)

	fmt.Println()
	report.RenderComparison(os.Stdout, result)

	if prog != nil {
		prog.summary()
	}

	if outputDir != "" {
		jsonPath, csvPath, err := report.SaveComparison(outputDir, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nResults saved to: %s\nSummary saved to: %s\n", jsonPath, csvPath)
	}

	return nil
}

// loadOrDemoSet loads the requested scenario file, or falls back to a small
// built-in demo comparing the reference operations.
func loadOrDemoSet() (*bench.ScenarioSet, error) {
	if scenarioFile != "" {
		return bench.LoadScenarioSet(scenarioFile)
	}
	return &bench.ScenarioSet{
		Name:        "demo",
		Description: "Built-in reference operations",
		Scenarios: []bench.Scenario{
			{Name: "sleep-1ms", Operation: "sleep", Params: map[string]any{"duration": "1ms"}},
			{Name: "spin-100us", Operation: "spin", Params: map[string]any{"duration": "100us"}},
			{Name: "hash-64k", Operation: "hash", Params: map[string]any{"bytes": 65536}},
			{Name: "alloc-1m", Operation: "alloc", Params: map[string]any{"bytes": 1048576}},
		},
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
