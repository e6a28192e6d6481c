package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const DATABASE_TYPE_POSTGRES = "POSTGRES"
const DATABASE_TYPE_MYSQL = "MYSQL"
const DATABASE_TYPE_SQLLITE = "SQLLITE"

// Settings is the process wide configuration, read from CFLOW_ prefixed
// environment variables.
type Settings struct {
	DatabaseType        string `env:"DATABASE_TYPE" envDefault:"SQLLITE"`
	DatabaseURL         string `env:"DATABASE_URL"`
	DatabaseSqlLiteFile string `env:"DATABASE_SQLLITE_FILE_NAME" envDefault:"./catalogflow.db"`
	ServerWebPort       string `env:"SERVER_WEB_PORT" envDefault:"8080"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"INFO"`
	GuardParallel       bool   `env:"GUARD_PARALLEL" envDefault:"false"`
	EnforceStateAccess  bool   `env:"ENFORCE_STATE_ACCESS" envDefault:"true"`
	MetricsEnabled      bool   `env:"METRICS_ENABLED" envDefault:"true"`
	SeedOnStart         bool   `env:"SEED_ON_START" envDefault:"false"`
}

const envPrefix = "CFLOW_"

// Load reads an optional .env file from the working directory and parses the
// environment into Settings.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse(env.Options{Prefix: envPrefix})
}

// Parse builds Settings from the given env options. Tests pass
// Environment directly instead of touching the process environment.
func Parse(opts env.Options) (Settings, error) {
	if opts.Prefix == "" {
		opts.Prefix = envPrefix
	}
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	s.DatabaseType = strings.ToUpper(strings.TrimSpace(s.DatabaseType))
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	switch s.DatabaseType {
	case DATABASE_TYPE_SQLLITE:
		if s.DatabaseSqlLiteFile == "" {
			return fmt.Errorf("%sDATABASE_SQLLITE_FILE_NAME must not be empty", envPrefix)
		}
	case DATABASE_TYPE_POSTGRES:
		if s.DatabaseURL == "" {
			return fmt.Errorf("%sDATABASE_URL is required for %s", envPrefix, s.DatabaseType)
		}
	case DATABASE_TYPE_MYSQL:
		if s.DatabaseURL == "" {
			return fmt.Errorf("%sDATABASE_URL is required for %s", envPrefix, s.DatabaseType)
		}
		if !strings.HasPrefix(s.DatabaseURL, "mysql://") {
			return fmt.Errorf("%sDATABASE_URL must start with mysql://", envPrefix)
		}
		if !strings.Contains(s.DatabaseURL, "parseTime=true") {
			return fmt.Errorf("%sDATABASE_URL must set parseTime=true", envPrefix)
		}
	default:
		return fmt.Errorf("unsupported database type %q", s.DatabaseType)
	}
	return nil
}
