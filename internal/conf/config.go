// Package conf loads application settings from a YAML file and
// NETSENTRY_-prefixed environment variables via Viper.
package conf

import (
	"fmt"
	"strings"

	"github.com/netsentry/netsentry/internal/errors"
	"github.com/spf13/viper"
)

// HTTPSettings configures the API listener.
type HTTPSettings struct {
	Bind string `mapstructure:"bind"`
}

// DatabaseSettings configures the SQLite store.
type DatabaseSettings struct {
	Path string `mapstructure:"path"`
}

// SensorSettings configures the supervised external sensor process.
type SensorSettings struct {
	Enabled       bool     `mapstructure:"enabled"`
	Path          string   `mapstructure:"path"`
	Device        string   `mapstructure:"device"`
	RestartDelay  Duration `mapstructure:"restart_delay"`
	ShutdownGrace Duration `mapstructure:"shutdown_grace"`
}

// AdminSettings optionally seeds an admin user at startup.
type AdminSettings struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
}

// Settings is the full application configuration.
type Settings struct {
	LogLevel string           `mapstructure:"log_level"`
	HTTP     HTTPSettings     `mapstructure:"http"`
	Database DatabaseSettings `mapstructure:"database"`
	Sensor   SensorSettings   `mapstructure:"sensor"`
	Admin    AdminSettings    `mapstructure:"admin"`
}

// Load reads settings from the given config file and the environment. Pass
// an empty path to use defaults and environment only.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("NETSENTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("http.bind", ":3000")
	v.SetDefault("database.path", "data/alerts.db")
	v.SetDefault("sensor.enabled", false)
	v.SetDefault("sensor.path", "")
	v.SetDefault("sensor.device", "0")
	v.SetDefault("sensor.restart_delay", "3s")
	v.SetDefault("sensor.shutdown_grace", "5s")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) validate() error {
	if s.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	if s.Sensor.Enabled && s.Sensor.Path == "" {
		return errors.New("sensor.path must be set when the sensor is enabled")
	}
	return nil
}
