package app

import "errors"

// Config holds everything an App instance needs to run. It is the merged
// result of CLI flags; the scan configuration itself lives in config.Model
// and is loaded separately.
type Config struct {
	// RootPath overrides the configured local scan root when non-empty.
	RootPath string
	// ConfigPath points at the flowdeploy.hcl file. Empty means built-in
	// defaults only.
	ConfigPath string
	// OutputDir overrides the configured output directory when non-empty.
	OutputDir string

	// TasksPath switches the run into task-preparation mode.
	TasksPath string

	LogFormat string
	LogLevel  string

	// Watch keeps the process alive and regenerates on tree changes.
	Watch bool
	// Force restores silent last-write-wins on deployment name collisions.
	Force bool
}

// NewConfig validates the flag-level configuration. Scan settings are
// validated later, once file values and overrides are merged.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RootPath == "" && cfg.ConfigPath == "" && cfg.TasksPath == "" {
		return nil, errors.New("a scan root, a config file, or a tasks file is required")
	}
	if cfg.Watch && cfg.TasksPath != "" {
		return nil, errors.New("watch mode does not apply to task preparation")
	}
	return &cfg, nil
}
