package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process-level settings that never live in a config file.
// Empty values leave the corresponding Config field untouched.
type Env struct {
	LogLevel  string `env:"GOVERNANCE_LOG_LEVEL"`
	LogFormat string `env:"GOVERNANCE_LOG_FORMAT"`
	LogFile   string `env:"GOVERNANCE_LOG_FILE"`
	DBPath    string `env:"GOVERNANCE_DB_PATH"`
}

// ParseEnv loads Env from the environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overrides the logging and database settings of c with every
// non-empty field of e.
func (e Env) Apply(c *Config) {
	if e.LogLevel != "" {
		c.Logging.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		c.Logging.Format = e.LogFormat
	}
	if e.LogFile != "" {
		c.Logging.File = e.LogFile
	}
	if e.DBPath != "" {
		c.Output.Database = e.DBPath
	}
}
