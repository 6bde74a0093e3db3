package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() *Model {
	m := Default()
	m.Paths.LocalRoot = "/tmp/etl/src"
	return m
}

func TestDefault(t *testing.T) {
	m := Default()

	assert.Equal(t, "3.0.1", m.Defaults.PrefectVersion)
	assert.Equal(t, "default-worker-pool", m.Defaults.WorkPool)
	assert.Equal(t, "src", m.Source.DirName)
	assert.Equal(t, ".py", m.Source.Extension)
	assert.Equal(t, 3600.0, m.Schedule.IntervalSeconds)
	assert.Equal(t, "UTC", m.Schedule.Timezone)
	assert.True(t, m.Schedule.Active)
	assert.Empty(t, m.Paths.LocalRoot, "the scan root must be provided explicitly")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(m *Model)
		wantErr string
	}{
		{
			name:   "valid defaults plus local root",
			mutate: func(m *Model) {},
		},
		{
			name:    "missing local root",
			mutate:  func(m *Model) { m.Paths.LocalRoot = "" },
			wantErr: "local_root",
		},
		{
			name:    "missing remote root",
			mutate:  func(m *Model) { m.Paths.RemoteRoot = "" },
			wantErr: "remote_root",
		},
		{
			name:    "missing output dir",
			mutate:  func(m *Model) { m.Paths.OutputDir = "" },
			wantErr: "output_dir",
		},
		{
			name:    "extension without dot",
			mutate:  func(m *Model) { m.Source.Extension = "py" },
			wantErr: "extension",
		},
		{
			name:    "empty dir name",
			mutate:  func(m *Model) { m.Source.DirName = "" },
			wantErr: "dir_name",
		},
		{
			name:    "zero interval",
			mutate:  func(m *Model) { m.Schedule.IntervalSeconds = 0 },
			wantErr: "interval must be positive",
		},
		{
			name:    "negative interval",
			mutate:  func(m *Model) { m.Schedule.IntervalSeconds = -30 },
			wantErr: "interval must be positive",
		},
		{
			name: "interval and cron together",
			mutate: func(m *Model) {
				m.Schedule.Cron = "0 * * * *"
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "valid cron replaces interval",
			mutate: func(m *Model) {
				m.Schedule.IntervalSeconds = 0
				m.Schedule.Cron = "30 2 * * 1"
			},
		},
		{
			name: "invalid cron expression",
			mutate: func(m *Model) {
				m.Schedule.IntervalSeconds = 0
				m.Schedule.Cron = "not a cron"
			},
			wantErr: "invalid cron expression",
		},
		{
			name:    "empty timezone",
			mutate:  func(m *Model) { m.Schedule.Timezone = "" },
			wantErr: "timezone",
		},
		{
			name:    "unknown timezone",
			mutate:  func(m *Model) { m.Schedule.Timezone = "Mars/Olympus" },
			wantErr: "unknown timezone",
		},
		{
			name:    "malformed anchor",
			mutate:  func(m *Model) { m.Schedule.AnchorDate = "yesterday" },
			wantErr: "anchor",
		},
		{
			name: "anchor ignored for cron schedules",
			mutate: func(m *Model) {
				m.Schedule.IntervalSeconds = 0
				m.Schedule.Cron = "@hourly"
				m.Schedule.AnchorDate = "irrelevant"
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := validModel()
			tc.mutate(m)

			err := m.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	m := &Model{}

	err := m.Validate()
	require.Error(t, err)

	for _, want := range []string{"local_root", "remote_root", "output_dir", "dir_name", "extension", "interval", "timezone"} {
		assert.Contains(t, err.Error(), want)
	}
}
