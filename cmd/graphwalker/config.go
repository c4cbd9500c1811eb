package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// runConfig is the optional YAML run file passed with --config.
//
//	seed: 42
//	store: sqlite:walks.db
//	max_failures: 100
//	runs:
//	  - model: login.graphml
//	    generator: random(edge_coverage(100))
//
// Relative model paths resolve against the run file's directory. Flags set
// on the command line take precedence.
type runConfig struct {
	Seed        *int64     `yaml:"seed"`
	Store       string     `yaml:"store"`
	Verbose     bool       `yaml:"verbose"`
	JSON        bool       `yaml:"json"`
	MaxFailures int        `yaml:"max_failures"`
	MetricsAddr string     `yaml:"metrics_addr"`
	Jobs        int        `yaml:"jobs"`
	Runs        []runEntry `yaml:"runs"`
}

type runEntry struct {
	Model     string `yaml:"model"`
	Generator string `yaml:"generator"`
}

func loadRunConfig(path string) (*runConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var cfg runConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid run file %s: %w", path, err)
	}
	if cfg.MaxFailures < 0 {
		return nil, fmt.Errorf("invalid run file %s: max_failures must be >= 0", path)
	}

	dir := filepath.Dir(path)
	for i, r := range cfg.Runs {
		if r.Model == "" {
			return nil, fmt.Errorf("invalid run file %s: run %d has no model", path, i)
		}
		if !filepath.IsAbs(r.Model) {
			cfg.Runs[i].Model = filepath.Join(dir, r.Model)
		}
	}
	return &cfg, nil
}
