// Package config loads runtime configuration for the attackgraph server.
// Sources are merged with the usual priority: flags > environment >
// config file > defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/gofastercloud/attackgraph/pkg/validation"
)

// envPrefix is the prefix for environment overrides, e.g.
// ATTACKGRAPH_SERVER_ADDR=:9090.
const envPrefix = "ATTACKGRAPH_"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"readtimeout"`
	WriteTimeout    time.Duration `koanf:"writetimeout"`
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout"`
}

// S3Config points at a feed object in S3. Bucket and Key must both be set
// for the S3 provider to be selected.
type S3Config struct {
	Bucket string `koanf:"bucket"`
	Key    string `koanf:"key"`
	Region string `koanf:"region"`
}

// FeedConfig selects and tunes the knowledge-base feed source.
type FeedConfig struct {
	// Path is a local feed file (JSON, YAML, or snappy-compressed).
	Path string `koanf:"path"`
	// S3 is the remote alternative to Path.
	S3 S3Config `koanf:"s3"`
	// Refresh is the polling interval; 0 disables periodic refresh.
	Refresh time.Duration `koanf:"refresh"`
	// Watch reloads the local feed file on filesystem changes.
	Watch bool `koanf:"watch"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Feed   FeedConfig   `koanf:"feed"`
	Log    LogConfig    `koanf:"log"`
}

// UsesS3 reports whether the feed should be fetched from S3.
func (c *Config) UsesS3() bool {
	return c.Feed.S3.Bucket != "" && c.Feed.S3.Key != ""
}

// Validate checks the merged configuration for startup-blocking mistakes.
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		Required("server.addr", c.Server.Addr).
		OneOf("log.level", c.Log.Level, []string{"debug", "info", "warn", "error"}).
		Custom("feed", func() error {
			if c.Feed.Path == "" && !c.UsesS3() {
				return fmt.Errorf("either feed.path or feed.s3.bucket and feed.s3.key must be set")
			}
			return nil
		}).
		When(c.Feed.Refresh != 0, func(cv *validation.ConfigValidator) {
			cv.MinDuration("feed.refresh", c.Feed.Refresh, 10*time.Second)
		}).
		When(c.Feed.Watch, func(cv *validation.ConfigValidator) {
			cv.Required("feed.path", c.Feed.Path)
		}).
		Validate()
}

// Load loads configuration from defaults, an optional YAML config file,
// environment variables, and flags.
func Load(configFile string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.addr":            ":8080",
		"server.readtimeout":     "15s",
		"server.writetimeout":    "30s",
		"server.shutdowntimeout": "10s",
		"feed.path":              "",
		"feed.s3.bucket":         "",
		"feed.s3.key":            "",
		"feed.s3.region":         "",
		"feed.refresh":           "0s",
		"feed.watch":             false,
		"log.level":              "info",
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	// ATTACKGRAPH_FEED_PATH=/data/feed.yaml maps to feed.path.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(p.m))
	for key, value := range p.m {
		out[key] = value
	}
	return maps.Unflatten(out, "."), nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
