// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage selects and locates the persistence backend.
type Storage struct {
	Driver      string `env:"IDEOSPACE_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"IDEOSPACE_SQLITE_PATH" envDefault:"ideospace.db"`
	PostgresDSN string `env:"IDEOSPACE_POSTGRES_DSN"`
}

// Archive selects where settled snapshots are exported. Driver "none"
// disables export.
type Archive struct {
	Driver      string `env:"IDEOSPACE_ARCHIVE_DRIVER" envDefault:"none"`
	FSRoot      string `env:"IDEOSPACE_ARCHIVE_FS_ROOT" envDefault:"archive"`
	S3Bucket    string `env:"IDEOSPACE_ARCHIVE_S3_BUCKET"`
	S3Region    string `env:"IDEOSPACE_ARCHIVE_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"IDEOSPACE_ARCHIVE_S3_ENDPOINT"`
	S3PathStyle bool   `env:"IDEOSPACE_ARCHIVE_S3_PATH_STYLE"`
}

// Config is the full process configuration.
type Config struct {
	Storage      Storage
	Archive      Archive
	SeedDefaults bool   `env:"IDEOSPACE_SEED_DEFAULTS" envDefault:"true"`
	LogLevel     string `env:"IDEOSPACE_LOG_LEVEL" envDefault:"info"`
}

var (
	storageDrivers = []string{"memory", "sqlite", "postgres"}
	archiveDrivers = []string{"none", "memory", "fs", "s3"}
)

// Load parses the process environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFrom parses an explicit variable map instead of the process
// environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate normalises driver names and rejects unknown ones.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Archive.Driver = strings.ToLower(strings.TrimSpace(c.Archive.Driver))
	if !oneOf(c.Storage.Driver, storageDrivers) {
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if !oneOf(c.Archive.Driver, archiveDrivers) {
		return fmt.Errorf("unknown archive driver %q", c.Archive.Driver)
	}
	if c.Archive.Driver == "s3" && c.Archive.S3Bucket == "" {
		return fmt.Errorf("archive driver s3 requires IDEOSPACE_ARCHIVE_S3_BUCKET")
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
