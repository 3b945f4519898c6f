// Package config loads the process-level bootstrap configuration: the
// handful of knobs needed before the persisted settings file (see the
// settings package) can even be located — log level, the debug HTTP
// listen address, and where to find the settings file itself.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the env-var-driven bootstrap configuration.
type Config struct {
	SettingsPath string `env:"MQTT_INSPECT_SETTINGS_PATH" envDefault:"./settings.json"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	DebugHTTPAddr string        `env:"DEBUG_HTTP_ADDR" envDefault:":8080"`
	ReadTimeout   time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout  time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout   time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	DebugHTTPEnabled bool `env:"DEBUG_HTTP_ENABLED" envDefault:"false"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile      string
	SettingsPath string
	LogLevel     string
}

// Load reads configuration from a .env file (if present), environment
// variables, then CLI overrides, in ascending priority.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.SettingsPath != "" {
		cfg.SettingsPath = overrides.SettingsPath
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}

	return cfg, nil
}
