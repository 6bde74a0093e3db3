// Package taskprep loads a task list from a YAML config file and stamps
// every task with a set of fixed-format UTC timestamps, ready to be handed
// to downstream flow code.
package taskprep

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TimestampsKey is the map key added to every stamped task.
const TimestampsKey = "TIMESTAMPS"

// Task is one entry of the TASKS list. Keys are whatever the config author
// put there; taskprep only adds the TIMESTAMPS entry.
type Task map[string]any

// Stamps carries one wall-clock reading in the formats downstream data
// paths expect: embedded in records, in file names, and in date-partitioned
// folder paths.
type Stamps struct {
	In    string `yaml:"_IN_DATA_TIMESTAMP"`
	Out   string `yaml:"_OUT_DATA_TIMESTAMP"`
	Year  string `yaml:"_YEAR_DATA_TIMESTAMP"`
	Month string `yaml:"_MONTH_DATA_TIMESTAMP"`
	Day   string `yaml:"_DAY_DATA_TIMESTAMP"`
}

// StampsAt renders the timestamp set for a given instant, normalised to UTC.
func StampsAt(t time.Time) Stamps {
	utc := t.UTC()
	return Stamps{
		In:    utc.Format("2006-01-02 15:04:05"),
		Out:   utc.Format("2006_01_02_150405"),
		Year:  utc.Format("2006"),
		Month: utc.Format("01"),
		Day:   utc.Format("02"),
	}
}

// configFile is the expected shape of the YAML config.
type configFile struct {
	Tasks []Task `yaml:"TASKS"`
}

// Prepare reads the config at path and returns a copy of its tasks, each
// stamped with the timestamps for now. All tasks share the same reading so
// a run is internally consistent.
func Prepare(path string, now time.Time) ([]Task, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task config %s: %w", path, err)
	}

	var cfg configFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing task config %s: %w", path, err)
	}
	if cfg.Tasks == nil {
		return nil, fmt.Errorf("task config %s has no TASKS list", path)
	}

	stamps := StampsAt(now)

	stamped := make([]Task, 0, len(cfg.Tasks))
	for _, task := range cfg.Tasks {
		copied := make(Task, len(task)+1)
		for k, v := range task {
			copied[k] = v
		}
		copied[TimestampsKey] = stamps
		stamped = append(stamped, copied)
	}
	return stamped, nil
}

// Encode writes the stamped tasks back out as a TASKS document.
func Encode(tasks []Task) ([]byte, error) {
	out, err := yaml.Marshal(configFile{Tasks: tasks})
	if err != nil {
		return nil, fmt.Errorf("encoding stamped tasks: %w", err)
	}
	return out, nil
}
