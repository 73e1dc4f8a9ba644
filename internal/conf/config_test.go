package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, ":3000", settings.HTTP.Bind)
	assert.Equal(t, "data/alerts.db", settings.Database.Path)
	assert.False(t, settings.Sensor.Enabled)
	assert.Equal(t, "0", settings.Sensor.Device)
	assert.Equal(t, 3*time.Second, settings.Sensor.RestartDelay.Std())
	assert.Equal(t, 5*time.Second, settings.Sensor.ShutdownGrace.Std())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("NETSENTRY_HTTP_BIND", ":9090")
	t.Setenv("NETSENTRY_LOG_LEVEL", "debug")
	t.Setenv("NETSENTRY_SENSOR_RESTART_DELAY", "750ms")

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", settings.HTTP.Bind)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, 750*time.Millisecond, settings.Sensor.RestartDelay.Std())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: warn
http:
  bind: "127.0.0.1:8080"
database:
  path: /tmp/netsentry-test.db
sensor:
  enabled: true
  path: /usr/local/bin/nids
  device: eth0
  restart_delay: 10s
  shutdown_grace: 30s
`), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", settings.LogLevel)
	assert.Equal(t, "127.0.0.1:8080", settings.HTTP.Bind)
	assert.Equal(t, "/tmp/netsentry-test.db", settings.Database.Path)
	assert.True(t, settings.Sensor.Enabled)
	assert.Equal(t, "/usr/local/bin/nids", settings.Sensor.Path)
	assert.Equal(t, "eth0", settings.Sensor.Device)
	assert.Equal(t, 10*time.Second, settings.Sensor.RestartDelay.Std())
	assert.Equal(t, 30*time.Second, settings.Sensor.ShutdownGrace.Std())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_SensorEnabledRequiresPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sensor:
  enabled: true
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
