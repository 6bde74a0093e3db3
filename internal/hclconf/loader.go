package hclconf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/flowdeploy/internal/config"
	"github.com/vk/flowdeploy/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot describes all top-level blocks a flowdeploy.hcl file may carry.
// Every block and every attribute is optional; anything absent keeps its
// built-in default. There is deliberately no remain body: unknown blocks or
// attributes are configuration mistakes and fail the decode.
type fileRoot struct {
	Paths    *pathsBlock    `hcl:"paths,block"`
	Defaults *defaultsBlock `hcl:"defaults,block"`
	Source   *sourceBlock   `hcl:"source,block"`
	Schedule *scheduleBlock `hcl:"schedule,block"`
}

type pathsBlock struct {
	LocalRoot  *string `hcl:"local_root,optional"`
	RemoteRoot *string `hcl:"remote_root,optional"`
	OutputDir  *string `hcl:"output_dir,optional"`
}

type defaultsBlock struct {
	PrefectVersion *string `hcl:"prefect_version,optional"`
	WorkPool       *string `hcl:"work_pool,optional"`
}

type sourceBlock struct {
	DirName   *string `hcl:"dir_name,optional"`
	Extension *string `hcl:"extension,optional"`
}

type scheduleBlock struct {
	Interval *float64 `hcl:"interval,optional"`
	Cron     *string  `hcl:"cron,optional"`
	Timezone *string  `hcl:"timezone,optional"`
	Active   *bool    `hcl:"active,optional"`
	Anchor   *string  `hcl:"anchor,optional"`
	Catchup  *bool    `hcl:"catchup,optional"`
}

// Load parses the file at path and returns the merged configuration model.
// An empty path yields the plain defaults.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.Default()

	if path == "" {
		logger.Debug("No config file, using built-in defaults.")
		return model, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	mergeModel(model, &root)
	logger.Debug("Configuration loaded.", "path", path)
	return model, nil
}

// evalContext builds the expression evaluation context. The process
// environment is exposed as the `env` map variable.
func evalContext() *hcl.EvalContext {
	environ := os.Environ()
	vals := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vals[k] = cty.StringVal(v)
	}

	env := cty.EmptyObjectVal
	if len(vals) > 0 {
		env = cty.ObjectVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// mergeModel copies every attribute that was present in the file onto the
// default model.
func mergeModel(model *config.Model, root *fileRoot) {
	if b := root.Paths; b != nil {
		setString(&model.Paths.LocalRoot, b.LocalRoot)
		setString(&model.Paths.RemoteRoot, b.RemoteRoot)
		setString(&model.Paths.OutputDir, b.OutputDir)
	}
	if b := root.Defaults; b != nil {
		setString(&model.Defaults.PrefectVersion, b.PrefectVersion)
		setString(&model.Defaults.WorkPool, b.WorkPool)
	}
	if b := root.Source; b != nil {
		setString(&model.Source.DirName, b.DirName)
		setString(&model.Source.Extension, b.Extension)
	}
	if b := root.Schedule; b != nil {
		if b.Interval != nil {
			model.Schedule.IntervalSeconds = *b.Interval
		}
		if b.Cron != nil {
			model.Schedule.Cron = *b.Cron
			// A cron schedule replaces the default interval unless the file
			// explicitly set one; Validate rejects that combination.
			if b.Interval == nil {
				model.Schedule.IntervalSeconds = 0
			}
		}
		setString(&model.Schedule.Timezone, b.Timezone)
		if b.Active != nil {
			model.Schedule.Active = *b.Active
		}
		setString(&model.Schedule.AnchorDate, b.Anchor)
		if b.Catchup != nil {
			model.Schedule.Catchup = *b.Catchup
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
