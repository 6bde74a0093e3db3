package hclconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowdeploy/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowdeploy.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	model, err := NewLoader().Load(context.Background(), "")
	require.NoError(t, err)

	if diff := cmp.Diff(config.Default(), model); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FullFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
paths {
  local_root  = "/data/etl/src"
  remote_root = "/prefect/flows"
  output_dir  = "/data/exports"
}

defaults {
  prefect_version = "3.1.0"
  work_pool       = "etl-pool"
}

source {
  dir_name  = "flows"
  extension = ".py"
}

schedule {
  interval = 900
  timezone = "Europe/Berlin"
  active   = false
  anchor   = "2025-01-01T00:00:00+00:00"
  catchup  = true
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	want := &config.Model{
		Paths: config.Paths{
			LocalRoot:  "/data/etl/src",
			RemoteRoot: "/prefect/flows",
			OutputDir:  "/data/exports",
		},
		Defaults: config.Defaults{
			PrefectVersion: "3.1.0",
			WorkPool:       "etl-pool",
		},
		Source: config.Source{
			DirName:   "flows",
			Extension: ".py",
		},
		Schedule: config.Schedule{
			IntervalSeconds: 900,
			Timezone:        "Europe/Berlin",
			Active:          false,
			AnchorDate:      "2025-01-01T00:00:00+00:00",
			Catchup:         true,
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, model.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
paths {
  local_root = "/data/etl/src"
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "/data/etl/src", model.Paths.LocalRoot)
	assert.Equal(t, "/prefect/src", model.Paths.RemoteRoot)
	assert.Equal(t, "3.0.1", model.Defaults.PrefectVersion)
	assert.Equal(t, 3600.0, model.Schedule.IntervalSeconds)
}

func TestLoad_CronClearsDefaultInterval(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
schedule {
  cron = "0 6 * * *"
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "0 6 * * *", model.Schedule.Cron)
	assert.Zero(t, model.Schedule.IntervalSeconds)
}

func TestLoad_EnvInterpolation(t *testing.T) {
	t.Setenv("FLOWDEPLOY_TEST_ROOT", "/from/env")

	path := writeConfig(t, `
paths {
  local_root = "${env.FLOWDEPLOY_TEST_ROOT}/src"
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env/src", model.Paths.LocalRoot)
}

func TestLoad_InvalidHCL(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `paths {`)

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
}

func TestLoad_UnknownBlockRejected(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
banana {
  ripeness = 3
}
`)

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}
