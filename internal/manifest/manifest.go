package manifest

import (
	"bytes"
	"fmt"

	"github.com/vk/flowdeploy/internal/config"
	"gopkg.in/yaml.v3"
)

// setWorkingDirectoryStep is the Prefect pull step that positions the runtime
// inside the remote source tree before executing a flow.
const setWorkingDirectoryStep = "prefect.deployments.steps.set_working_directory"

// banner opens every generated file, matching the header Prefect itself
// writes with `prefect init`.
const banner = `# Welcome to your prefect.yaml file! You can use this file for storing and managing
# configuration for deploying your flows. We recommend committing this file to source
# control along with your flow code.

`

// Descriptor is one schedulable deployment, constructed transiently per
// discovered flow script and discarded after rendering.
type Descriptor struct {
	// Project is the top-level identifier of the manifest.
	Project string
	// Name is the deployment name; it also names the output file.
	Name string
	// Entrypoint references the flow as <remote path>:<callable>.
	Entrypoint string

	PrefectVersion string
	// WorkingDir is the remote directory the pull step switches into.
	WorkingDir string
	WorkPool   string

	Schedule config.Schedule
}

// FileName returns the manifest's output file name.
func (d *Descriptor) FileName() string {
	return d.Name + "-deploy.yaml"
}

// document mirrors the prefect.yaml top-level schema. Field order here is
// the emitted key order.
type document struct {
	Name                   string          `yaml:"name"`
	PrefectVersion         string          `yaml:"prefect-version"`
	Build                  any             `yaml:"build"`
	Push                   any             `yaml:"push"`
	Pull                   []pullStep      `yaml:"pull"`
	Deployments            []deployment    `yaml:"deployments"`
	EnforceParameterSchema bool            `yaml:"enforce_parameter_schema"`
	Schedules              []scheduleEntry `yaml:"schedules"`
}

type pullStep map[string]workingDirectory

type workingDirectory struct {
	Directory string `yaml:"directory"`
}

type deployment struct {
	Name             string         `yaml:"name"`
	Version          *string        `yaml:"version"`
	Tags             []string       `yaml:"tags"`
	ConcurrencyLimit *int           `yaml:"concurrency_limit"`
	Description      *string        `yaml:"description"`
	Entrypoint       string         `yaml:"entrypoint"`
	Parameters       map[string]any `yaml:"parameters"`
	WorkPool         workPool       `yaml:"work_pool"`
}

type workPool struct {
	Name          string         `yaml:"name"`
	WorkQueueName *string        `yaml:"work_queue_name"`
	JobVariables  map[string]any `yaml:"job_variables"`
}

type scheduleEntry struct {
	Interval      float64 `yaml:"interval,omitempty"`
	Cron          string  `yaml:"cron,omitempty"`
	AnchorDate    string  `yaml:"anchor_date,omitempty"`
	Timezone      string  `yaml:"timezone"`
	Active        bool    `yaml:"active"`
	MaxActiveRuns *int    `yaml:"max_active_runs"`
	Catchup       bool    `yaml:"catchup"`
}

// sectionComments are attached above the top-level keys, same as the
// annotations in a freshly initialised prefect.yaml.
var sectionComments = map[string]string{
	"name":        "Generic metadata about this project",
	"build":       "build section allows you to manage and build docker images",
	"push":        "push section allows you to manage if and how this project is uploaded to remote locations",
	"pull":        "pull section allows you to provide instructions for cloning this project in remote locations",
	"deployments": "the deployments section allows you to provide configuration for deploying flows",
}

// Render serialises the descriptor to prefect.yaml bytes.
func (d *Descriptor) Render() ([]byte, error) {
	doc := document{
		Name:           d.Project,
		PrefectVersion: d.PrefectVersion,
		Pull: []pullStep{
			{setWorkingDirectoryStep: workingDirectory{Directory: d.WorkingDir}},
		},
		Deployments: []deployment{
			{
				Name:       d.Name,
				Tags:       []string{},
				Entrypoint: d.Entrypoint,
				Parameters: map[string]any{},
				WorkPool: workPool{
					Name:         d.WorkPool,
					JobVariables: map[string]any{},
				},
			},
		},
		EnforceParameterSchema: true,
		Schedules:              []scheduleEntry{d.scheduleEntry()},
	}

	var node yaml.Node
	if err := node.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding manifest %s: %w", d.Name, err)
	}
	annotate(&node)

	var buf bytes.Buffer
	buf.WriteString(banner)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("rendering manifest %s: %w", d.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("rendering manifest %s: %w", d.Name, err)
	}
	return buf.Bytes(), nil
}

func (d *Descriptor) scheduleEntry() scheduleEntry {
	entry := scheduleEntry{
		Timezone: d.Schedule.Timezone,
		Active:   d.Schedule.Active,
		Catchup:  d.Schedule.Catchup,
	}
	if d.Schedule.Cron != "" {
		entry.Cron = d.Schedule.Cron
		return entry
	}
	entry.Interval = d.Schedule.IntervalSeconds
	entry.AnchorDate = d.Schedule.AnchorDate
	return entry
}

// annotate sets head comments on the top-level keys of an encoded document
// mapping node.
func annotate(node *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if comment, ok := sectionComments[key.Value]; ok {
			key.HeadComment = comment
		}
	}
}
