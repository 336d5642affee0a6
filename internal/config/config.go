// Package config handles experiment configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Experiment holds everything one calibration experiment needs. Values come
// from a YAML file, overridable through CALIB_* environment variables.
type Experiment struct {
	// Identity of the (model, dataset) pair, carried into every record.
	Model   string `envconfig:"CALIB_MODEL" yaml:"model"`
	Dataset string `envconfig:"CALIB_DATASET" yaml:"dataset"`

	// Confidence source: either a precomputed confidence CSV, or an ONNX
	// classifier applied to a feature CSV.
	Confidences string `envconfig:"CALIB_CONFIDENCES" yaml:"confidences"`
	ONNXModel   string `envconfig:"CALIB_ONNX_MODEL" yaml:"onnx_model"`
	Features    string `envconfig:"CALIB_FEATURES" yaml:"features"`

	// Evaluation parameters.
	Folds      int   `envconfig:"CALIB_FOLDS" yaml:"folds"`
	Bins       int   `envconfig:"CALIB_BINS" yaml:"bins"`
	Seed       int64 `envconfig:"CALIB_SEED" yaml:"seed"`
	Stratified bool  `envconfig:"CALIB_STRATIFIED" yaml:"stratified"`
	Workers    int   `envconfig:"CALIB_WORKERS" yaml:"workers"`

	// OutDir receives results.csv and downstream summaries.
	OutDir string `envconfig:"CALIB_OUT_DIR" yaml:"out_dir"`
}

// Default returns the experiment defaults.
func Default() Experiment {
	return Experiment{
		Folds:   5,
		Bins:    20,
		Seed:    42,
		Workers: 1,
		OutDir:  "results",
	}
}

// Load reads the YAML file (optional) and applies environment overrides.
// An empty path loads defaults plus environment only. Callers validate
// after applying any further overrides of their own.
func Load(path string) (Experiment, error) {
	exp := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return exp, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &exp); err != nil {
			return exp, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &exp); err != nil {
		return exp, fmt.Errorf("applying environment overrides: %w", err)
	}
	return exp, nil
}

// Validate checks the experiment is runnable.
func (e Experiment) Validate() error {
	if e.Model == "" {
		return errors.New("config: model is required")
	}
	if e.Dataset == "" {
		return errors.New("config: dataset is required")
	}
	if e.Confidences == "" && (e.ONNXModel == "" || e.Features == "") {
		return errors.New("config: need confidences, or onnx_model with features")
	}
	if e.Confidences != "" && e.ONNXModel != "" {
		return errors.New("config: confidences and onnx_model are mutually exclusive")
	}
	if e.Folds < 2 {
		return fmt.Errorf("config: folds must be at least 2, got %d", e.Folds)
	}
	if e.Bins < 1 {
		return fmt.Errorf("config: bins must be positive, got %d", e.Bins)
	}
	if e.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", e.Workers)
	}
	if e.OutDir == "" {
		return errors.New("config: out_dir is required")
	}
	return nil
}
