package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"github.com/walletport/backup-sdk/types"
)

const envPrefix = "BACKUP"

// Config holds the importer settings read from BACKUP_* environment
// variables. Command line flags take precedence over them.
type Config struct {
	Datadir        string        `envconfig:"DATADIR"`
	StoreType      string        `envconfig:"STORE_TYPE" default:"kv"`
	DefaultChainID string        `envconfig:"DEFAULT_CHAIN_ID"`
	UnlockDelay    time.Duration `envconfig:"UNLOCK_DELAY" default:"250ms"`
	KeyWorkers     int           `envconfig:"KEY_WORKERS" default:"4"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.Datadir == "" {
		cfg.Datadir = defaultDatadir()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreType {
	case types.InMemoryStore, types.KVStore, types.SQLStore:
	default:
		return fmt.Errorf("invalid store type %q", c.StoreType)
	}
	if c.KeyWorkers <= 0 {
		return fmt.Errorf("key workers must be positive, got %d", c.KeyWorkers)
	}
	if c.UnlockDelay < 0 {
		return fmt.Errorf("unlock delay must not be negative")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".backup-sdk"
	}
	return filepath.Join(home, ".backup-sdk")
}

// Usage prints the supported environment variables.
func Usage() error {
	return envconfig.Usage(envPrefix, &Config{})
}
