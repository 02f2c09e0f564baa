// Package config loads process settings from the environment. Command-line
// flags take their defaults from here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Client configures the teamchain CLI.
type Client struct {
	DBPath      string        `env:"TEAMCHAIN_DB"`
	KeysDir     string        `env:"TEAMCHAIN_KEYS_DIR"`
	Target      string        `env:"TEAMCHAIN_TARGET" envDefault:"127.0.0.1:7777"`
	ArchiveDir  string        `env:"TEAMCHAIN_ARCHIVE_DIR"`
	DialTimeout time.Duration `env:"TEAMCHAIN_DIAL_TIMEOUT" envDefault:"5s"`
	RPCTimeout  time.Duration `env:"TEAMCHAIN_RPC_TIMEOUT"`
	Verbose     bool          `env:"TEAMCHAIN_VERBOSE"`
}

// Daemon configures teamchaind.
//
// ArchiveDirs lists mirrored archive directories, comma separated in the
// environment.
type Daemon struct {
	Listen      string        `env:"TEAMCHAIN_LISTEN" envDefault:"127.0.0.1:7777"`
	ArchiveDirs []string      `env:"TEAMCHAIN_ARCHIVE_DIR" envSeparator:","`
	MaxSkew     time.Duration `env:"TEAMCHAIN_MAX_SKEW" envDefault:"5m"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadClient parses Client and fills in path defaults under the user's home.
func LoadClient() (Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return Client{}, err
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Client{}, err
		}
		cfg.DBPath = filepath.Join(home, ".xdao", "teamchain", "state.db")
	}
	return cfg, nil
}

// LoadDaemon parses Daemon.
func LoadDaemon() (Daemon, error) {
	var cfg Daemon
	if err := ParseEnv(&cfg); err != nil {
		return Daemon{}, err
	}
	return cfg, nil
}
