package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config is the bridge process configuration, separate from the simulation
// tuning file: this is where the process runs, that is how the world
// behaves.
type Config struct {
	// HTTP listen address, e.g. ":8080"
	Address string `env:"ADDRESS" envDefault:":8080"`

	// Canon database path.
	CanonDB string `env:"CANON_DB" envDefault:"canon.db"`

	// Optional tuning YAML; empty means built-in defaults.
	TuningFile string `env:"TUNING_FILE" envDefault:""`

	// Tick log directory; empty disables the tick log.
	TickLogDir string `env:"TICKLOG_DIR" envDefault:""`

	// Log level for zerolog (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// External scoring service base URL; empty disables the pull.
	OracleURL string `env:"ORACLE_URL" envDefault:""`
}

// Load loads .env (if present) and parses environment variables.
func Load() (Config, error) {
	// Load .env if available; ignore error if file does not exist
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
