package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// Config is read from the environment and, when CONFIG_FILE names one, a
// YAML file whose values take precedence.
type Config struct {
	Production       bool          `env:"PRODUCTION" envDefault:"false" yaml:"production"`
	Port             string        `env:"PORT" envDefault:"80" yaml:"port"`
	PostgresURL      string        `env:"POSTGRES_URL" yaml:"postgres_url"`
	MaxOccurrences   int           `env:"MAX_OCCURRENCES" envDefault:"5000" yaml:"max_occurrences"`
	MaxWindow        time.Duration `env:"MAX_WINDOW" envDefault:"8784h" yaml:"max_window"`
	CleanupSchedule  string        `env:"CLEANUP_SCHEDULE" envDefault:"@daily" yaml:"cleanup_schedule"`
	CleanupRetention time.Duration `env:"CLEANUP_RETENTION" envDefault:"720h" yaml:"cleanup_retention"`
	MaxBodySize      int64         `env:"MAX_BODY_SIZE" envDefault:"1048576" yaml:"max_body_size"`
}

var ErrMissingPostgresURL = errors.New("postgres url must be set")

func Load() (*Config, error) {
	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if conf.PostgresURL == "" {
		return nil, ErrMissingPostgresURL
	}

	return conf, nil
}
