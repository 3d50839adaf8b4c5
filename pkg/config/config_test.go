package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Feed.Refresh != 0 {
		t.Errorf("Feed.Refresh = %v, want 0", cfg.Feed.Refresh)
	}
	if cfg.UsesS3() {
		t.Error("UsesS3() = true with no S3 settings")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attackgraph.yaml")
	content := []byte(`
server:
  addr: ":9090"
feed:
  path: /data/enterprise-attack.yaml
  refresh: 5m
log:
  level: debug
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Feed.Path != "/data/enterprise-attack.yaml" {
		t.Errorf("Feed.Path = %q", cfg.Feed.Path)
	}
	if cfg.Feed.Refresh != 5*time.Minute {
		t.Errorf("Feed.Refresh = %v, want 5m", cfg.Feed.Refresh)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml", nil); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attackgraph.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATTACKGRAPH_LOG_LEVEL", "warn")
	t.Setenv("ATTACKGRAPH_FEED_S3_BUCKET", "threat-intel")
	t.Setenv("ATTACKGRAPH_FEED_S3_KEY", "feeds/enterprise.json")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn (env should win over file)", cfg.Log.Level)
	}
	if !cfg.UsesS3() {
		t.Error("UsesS3() = false with bucket and key set")
	}
	if cfg.Feed.S3.Bucket != "threat-intel" {
		t.Errorf("Feed.S3.Bucket = %q", cfg.Feed.S3.Bucket)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("ATTACKGRAPH_SERVER_ADDR", ":7070")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("server.addr", ":8080", "listen address")
	if err := fs.Parse([]string{"--server.addr", ":6060"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", fs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":6060" {
		t.Errorf("Server.Addr = %q, want :6060 (flag should win)", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("", nil)
		if err != nil {
			t.Fatal(err)
		}
		cfg.Feed.Path = "feed.yaml"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}

	cfg := base()
	cfg.Feed.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Config without a feed source should fail validation")
	}

	cfg = base()
	cfg.Feed.Path = ""
	cfg.Feed.S3 = S3Config{Bucket: "b", Key: "k"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("S3 feed source rejected: %v", err)
	}

	cfg = base()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("Unknown log level should fail validation")
	}

	cfg = base()
	cfg.Feed.Refresh = time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("Sub-10s refresh interval should fail validation")
	}

	cfg = base()
	cfg.Feed.Path = ""
	cfg.Feed.S3 = S3Config{Bucket: "b", Key: "k"}
	cfg.Feed.Watch = true
	if err := cfg.Validate(); err == nil {
		t.Error("Watch without a local path should fail validation")
	}
}
