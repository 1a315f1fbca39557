package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	Auth   AuthConfig   `toml:"auth"`
	Paths  PathsConfig  `toml:"paths"`
	Stream StreamConfig `toml:"stream"`

	// Runtime flags (not from TOML)
	Dev bool `toml:"-"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

type AuthConfig struct {
	Token string `toml:"token"`
	// StreamToken is a read-only token for streaming clients; browser
	// WebSocket APIs cannot set headers, so it is passed as ?token=.
	StreamToken string `toml:"stream_token"`
}

type PathsConfig struct {
	// SourcesManifest is the YAML file declaring the log sources.
	SourcesManifest string `toml:"sources_manifest"`
}

type StreamConfig struct {
	Enabled         bool `toml:"enabled"`
	PollIntervalMS  int  `toml:"poll_interval_ms"`
	DefaultLimit    int  `toml:"default_limit"`
	MaxLimit        int  `toml:"max_limit"`
	InitTimeoutSecs int  `toml:"init_timeout_secs"`
}

func DefaultDev() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Dev: true,
		Server: ServerConfig{
			Listen: "localhost:7810",
		},
		Paths: PathsConfig{
			SourcesManifest: filepath.Join(home, ".opsboard", "sources.yml"),
		},
		Stream: defaultStream(),
	}
}

func DefaultProd() *Config {
	return &Config{
		Dev: false,
		Server: ServerConfig{
			Listen: "0.0.0.0:7810",
		},
		Paths: PathsConfig{
			SourcesManifest: "/etc/opsboard/sources.yml",
		},
		Stream: defaultStream(),
	}
}

func defaultStream() StreamConfig {
	return StreamConfig{
		Enabled:         true,
		PollIntervalMS:  1000,
		DefaultLimit:    500,
		MaxLimit:        2000,
		InitTimeoutSecs: 5,
	}
}

func Load(path string, dev bool) (*Config, error) {
	var cfg *Config
	if dev {
		cfg = DefaultDev()
	} else {
		cfg = DefaultProd()
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if cfg.Stream.PollIntervalMS <= 0 {
		cfg.Stream.PollIntervalMS = 1000
	}
	if cfg.Stream.DefaultLimit <= 0 {
		cfg.Stream.DefaultLimit = 500
	}
	if cfg.Stream.MaxLimit < cfg.Stream.DefaultLimit {
		cfg.Stream.MaxLimit = cfg.Stream.DefaultLimit
	}
	if cfg.Stream.InitTimeoutSecs <= 0 {
		cfg.Stream.InitTimeoutSecs = 5
	}

	return cfg, nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Stream.PollIntervalMS) * time.Millisecond
}

// InitTimeout returns the initial-tail timeout as a duration.
func (c *Config) InitTimeout() time.Duration {
	return time.Duration(c.Stream.InitTimeoutSecs) * time.Second
}
