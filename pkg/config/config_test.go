package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/laneflow/pkg/errors"
	"github.com/matzehuels/laneflow/pkg/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Store.Backend != StoreBackendMemory {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9090"

[cache]
backend = "redis"
[cache.redis]
addr = "localhost:6379"
db = 2

[store]
backend = "mongo"
[store.mongo]
uri = "mongodb://db:27017"
database = "flows"

[layout]
h_gap = 80
sweeps = 8
no_scale = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheBackendRedis || cfg.Cache.Redis.DB != 2 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Store.Mongo.Database != "flows" {
		t.Errorf("mongo = %+v", cfg.Store.Mongo)
	}
	if cfg.Layout.HGap != 80 || cfg.Layout.Sweeps != 8 || !cfg.Layout.NoScale {
		t.Errorf("layout = %+v", cfg.Layout)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":3000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q, want default file", cfg.Cache.Backend)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `[server` + "\n"},
		{"unknown cache backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n"},
		{"unknown store backend", "[store]\nbackend = \"postgres\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if code := apperrors.GetCode(err); code != apperrors.ErrCodeInvalidConfig {
				t.Errorf("error code = %v, want %v", code, apperrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected defaults, got %+v", cfg.Server)
	}
}

func TestApplyLayout(t *testing.T) {
	cfg := Default()
	cfg.Layout.HGap = 100
	cfg.Layout.Sweeps = 6
	cfg.Layout.NoScale = true

	// Caller-set fields win over the file.
	opts := pipeline.Options{HGap: 40}
	cfg.ApplyLayout(&opts)

	if opts.HGap != 40 {
		t.Errorf("HGap = %v, want caller value 40", opts.HGap)
	}
	if opts.Sweeps != 6 {
		t.Errorf("Sweeps = %v, want 6", opts.Sweeps)
	}
	if !opts.NoScale {
		t.Error("expected NoScale to be applied")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("laneflow", "config.toml")) {
		t.Errorf("path = %q", path)
	}
}
