package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/beacon/timing"
)

const validRegistry = `
metrics:
  app:
    startup_time:
      type: timing_distribution
      description: Time from process start to first frame.
      time_unit: millisecond
      lifetime: ping
      send_in_pings: [metrics]
    shutdown_time:
      type: timing_distribution
      send_in_pings: [metrics, baseline]
      disabled: true
  network:
    request_time:
      type: timing_distribution
      time_unit: microsecond
      lifetime: application
      send_in_pings: [metrics]
`

func TestParseValidRegistry(t *testing.T) {
	reg, err := Parse([]byte(validRegistry))
	require.NoError(t, err)
	require.Len(t, reg.Definitions, 3)

	// Definitions are ordered by category then name.
	assert.Equal(t, "app.shutdown_time", reg.Definitions[0].MetricData().Identifier())
	assert.Equal(t, "app.startup_time", reg.Definitions[1].MetricData().Identifier())
	assert.Equal(t, "network.request_time", reg.Definitions[2].MetricData().Identifier())

	startup := reg.Definitions[1]
	assert.Equal(t, timing.Millisecond, startup.TimeUnit)
	assert.Equal(t, timing.LifetimePing, startup.Lifetime)
	assert.Equal(t, []string{"metrics"}, startup.SendInPings)
	assert.False(t, startup.Disabled)
	assert.NotEmpty(t, startup.Description)

	request := reg.Definitions[2]
	assert.Equal(t, timing.Microsecond, request.TimeUnit)
	assert.Equal(t, timing.LifetimeApplication, request.Lifetime)
}

func TestParseAppliesDefaults(t *testing.T) {
	reg, err := Parse([]byte(`
metrics:
  app:
    startup_time:
      type: timing_distribution
      send_in_pings: [metrics]
`))
	require.NoError(t, err)
	require.Len(t, reg.Definitions, 1)

	def := reg.Definitions[0]
	assert.Equal(t, timing.Millisecond, def.TimeUnit, "default unit is millisecond")
	assert.Equal(t, timing.LifetimePing, def.Lifetime, "default lifetime is ping")
	assert.False(t, def.Disabled)
}

func TestParseRejectsInvalidRegistries(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown metric type",
			yaml: `
metrics:
  app:
    startup_time:
      type: counter
      send_in_pings: [metrics]
`,
		},
		{
			name: "missing send_in_pings",
			yaml: `
metrics:
  app:
    startup_time:
      type: timing_distribution
`,
		},
		{
			name: "empty ping list",
			yaml: `
metrics:
  app:
    startup_time:
      type: timing_distribution
      send_in_pings: []
`,
		},
		{
			name: "uppercase metric name",
			yaml: `
metrics:
  app:
    StartupTime:
      type: timing_distribution
      send_in_pings: [metrics]
`,
		},
		{
			name: "unknown field",
			yaml: `
metrics:
  app:
    startup_time:
      type: timing_distribution
      send_in_pings: [metrics]
      bucket_count: 100
`,
		},
		{
			name: "no metrics key",
			yaml: `pings: {}`,
		},
		{
			name: "unknown time unit",
			yaml: `
metrics:
  app:
    startup_time:
      type: timing_distribution
      time_unit: fortnight
      send_in_pings: [metrics]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("metrics: ["))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validRegistry), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, reg.Definitions, 3)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
