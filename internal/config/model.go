package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Model is the unified, format-agnostic representation of the generator
// configuration. Loaders populate it by merging file values over Default().
type Model struct {
	Paths    Paths
	Defaults Defaults
	Source   Source
	Schedule Schedule
}

// Paths maps the local scan root to its remote counterpart and names the
// directory manifests are written to.
type Paths struct {
	// LocalRoot is the directory tree scanned for flow scripts.
	LocalRoot string
	// RemoteRoot replaces LocalRoot in every emitted entrypoint and becomes
	// the working directory of the pull step.
	RemoteRoot string
	// OutputDir receives one <deployment>-deploy.yaml per discovered script.
	OutputDir string
}

// Defaults holds values copied verbatim into every manifest.
type Defaults struct {
	PrefectVersion string
	WorkPool       string
}

// Source describes what counts as a deployable flow script.
type Source struct {
	// DirName is the literal directory name that marks a deployment
	// container. Every directory with this name, at any depth, is matched.
	DirName string
	// Extension is the file suffix (including the dot) a script must carry.
	Extension string
}

// Schedule configures the single schedule entry of every manifest. Exactly
// one of IntervalSeconds or Cron must be set.
type Schedule struct {
	IntervalSeconds float64
	Cron            string
	Timezone        string
	Active          bool
	// AnchorDate is emitted verbatim for interval schedules.
	AnchorDate string
	Catchup    bool
}

// Default returns the built-in configuration, mirroring the generator's
// historical constants. LocalRoot is intentionally empty: it has to come
// from the config file or the command line.
func Default() *Model {
	return &Model{
		Paths: Paths{
			RemoteRoot: "/prefect/src",
			OutputDir:  "exports/prefect_jobs",
		},
		Defaults: Defaults{
			PrefectVersion: "3.0.1",
			WorkPool:       "default-worker-pool",
		},
		Source: Source{
			DirName:   "src",
			Extension: ".py",
		},
		Schedule: Schedule{
			IntervalSeconds: 3600.0,
			Timezone:        "UTC",
			Active:          true,
			AnchorDate:      "2024-01-01T01:00:00+00:00",
			Catchup:         false,
		},
	}
}

// Validate checks the model before any traversal begins. It collects every
// violation instead of stopping at the first one.
func (m *Model) Validate() error {
	var errs []error

	if m.Paths.LocalRoot == "" {
		errs = append(errs, errors.New("paths.local_root must not be empty"))
	}
	if m.Paths.RemoteRoot == "" {
		errs = append(errs, errors.New("paths.remote_root must not be empty"))
	}
	if m.Paths.OutputDir == "" {
		errs = append(errs, errors.New("paths.output_dir must not be empty"))
	}
	if m.Defaults.PrefectVersion == "" {
		errs = append(errs, errors.New("defaults.prefect_version must not be empty"))
	}
	if m.Defaults.WorkPool == "" {
		errs = append(errs, errors.New("defaults.work_pool must not be empty"))
	}
	if m.Source.DirName == "" {
		errs = append(errs, errors.New("source.dir_name must not be empty"))
	}
	if m.Source.Extension == "" || !strings.HasPrefix(m.Source.Extension, ".") {
		errs = append(errs, fmt.Errorf("source.extension must start with a dot, got %q", m.Source.Extension))
	}

	errs = append(errs, m.Schedule.validate()...)

	return errors.Join(errs...)
}

func (s *Schedule) validate() []error {
	var errs []error

	switch {
	case s.Cron != "" && s.IntervalSeconds > 0:
		errs = append(errs, errors.New("schedule: interval and cron are mutually exclusive"))
	case s.Cron == "" && s.IntervalSeconds <= 0:
		errs = append(errs, errors.New("schedule: interval must be positive"))
	case s.Cron != "":
		if _, err := cron.ParseStandard(s.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule: invalid cron expression %q: %w", s.Cron, err))
		}
	}

	if s.Timezone == "" {
		errs = append(errs, errors.New("schedule: timezone must not be empty"))
	} else if _, err := time.LoadLocation(s.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("schedule: unknown timezone %q: %w", s.Timezone, err))
	}

	if s.Cron == "" {
		if _, err := time.Parse(time.RFC3339, s.AnchorDate); err != nil {
			errs = append(errs, fmt.Errorf("schedule: anchor must be RFC3339, got %q: %w", s.AnchorDate, err))
		}
	}

	return errs
}
