package bench

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Scenario is the declarative form of a benchmark config, suitable for
// scenario files. The operation is referenced by name and resolved against a
// Registry at load time.
type Scenario struct {
	Name      string `json:"name"      yaml:"name"`
	Operation string `json:"operation" yaml:"operation"`
	// Params configure the named operation, e.g. a sleep duration.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`

	// MaxTimeSeconds is the wall-clock budget; zero means the default.
	MaxTimeSeconds    float64 `json:"max_time_seconds,omitempty"   yaml:"maxTimeSeconds,omitempty"`
	InitialIterations int     `json:"initial_iterations,omitempty" yaml:"initialIterations,omitempty"`
	WarmupRuns        int     `json:"warmup_runs,omitempty"        yaml:"warmupRuns,omitempty"`
	Synchronous       bool    `json:"synchronous,omitempty"        yaml:"synchronous,omitempty"`
}

// ScenarioSet is a collection of related scenarios compared side by side.
type ScenarioSet struct {
	Name        string     `json:"name"        yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Scenarios   []Scenario `json:"scenarios"   yaml:"scenarios"`
}

// OperationFactory builds an operation from scenario parameters.
type OperationFactory func(params map[string]any) (Operation, error)

// Registry maps operation names to factories.
type Registry map[string]OperationFactory

// Resolve turns the scenario set into runnable configs against the registry.
func (s *ScenarioSet) Resolve(registry Registry) ([]Config, error) {
	configs := make([]Config, 0, len(s.Scenarios))
	for _, sc := range s.Scenarios {
		factory, ok := registry[sc.Operation]
		if !ok {
			return nil, errors.Errorf("scenario %q: unknown operation %q", sc.Name, sc.Operation)
		}
		op, err := factory(sc.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "scenario %q", sc.Name)
		}
		configs = append(configs, Config{
			Name:              sc.Name,
			Operation:         op,
			MaxTime:           time.Duration(sc.MaxTimeSeconds * float64(time.Second)),
			InitialIterations: sc.InitialIterations,
			WarmupRuns:        sc.WarmupRuns,
			Synchronous:       sc.Synchronous,
		})
	}
	return configs, nil
}

// LoadScenarioSet reads a scenario set from a YAML or JSON file, keyed off
// the file extension.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var set ScenarioSet
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &set); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal scenario set")
		}
	default:
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal scenario set")
		}
	}

	return &set, nil
}

// SaveScenarioSet writes a scenario set to a YAML or JSON file, keyed off the
// file extension.
func SaveScenarioSet(set *ScenarioSet, filename string) error {
	var (
		data []byte
		err  error
	)
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(set)
	default:
		data, err = json.MarshalIndent(set, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}
	return nil
}
