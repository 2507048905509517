// Package config loads the optional laneflow TOML configuration file.
// Configuration covers server deployments (listen address, cache and
// store backends) and layout tuning defaults; CLI flags always win over
// file values.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/laneflow/pkg/errors"
	"github.com/matzehuels/laneflow/pkg/pipeline"
)

const appName = "laneflow"

// Cache backend names accepted in [cache].
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Store backend names accepted in [store].
const (
	StoreBackendMemory = "memory"
	StoreBackendMongo  = "mongo"
)

// Config is the decoded configuration file.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Layout LayoutConfig `toml:"layout"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"` // file backend; empty means the XDG cache dir
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type StoreConfig struct {
	Backend string      `toml:"backend"`
	Mongo   MongoConfig `toml:"mongo"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// LayoutConfig overrides the layout engine defaults. Zero values keep
// the built-in defaults.
type LayoutConfig struct {
	MinActivityWidth float64 `toml:"min_activity_width"`
	ActivityHeight   float64 `toml:"activity_height"`
	GatewaySize      float64 `toml:"gateway_size"`
	HGap             float64 `toml:"h_gap"`
	VGap             float64 `toml:"v_gap"`
	LaneMinHeight    float64 `toml:"lane_min_height"`
	Sweeps           int     `toml:"sweeps"`
	NoScale          bool    `toml:"no_scale"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Cache:  CacheConfig{Backend: CacheBackendFile},
		Store: StoreConfig{
			Backend: StoreBackendMemory,
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: appName},
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to defaults when
// it does not. An unreadable or invalid existing file is still an error.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks backend names and redis/mongo settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires cache.redis.addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendMongo:
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store backend mongo requires store.mongo.uri and store.mongo.database")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// ApplyLayout copies the layout overrides onto pipeline options,
// leaving fields the caller already set untouched.
func (c *Config) ApplyLayout(opts *pipeline.Options) {
	if opts.MinActivityWidth == 0 {
		opts.MinActivityWidth = c.Layout.MinActivityWidth
	}
	if opts.ActivityHeight == 0 {
		opts.ActivityHeight = c.Layout.ActivityHeight
	}
	if opts.GatewaySize == 0 {
		opts.GatewaySize = c.Layout.GatewaySize
	}
	if opts.HGap == 0 {
		opts.HGap = c.Layout.HGap
	}
	if opts.VGap == 0 {
		opts.VGap = c.Layout.VGap
	}
	if opts.LaneMinHeight == 0 {
		opts.LaneMinHeight = c.Layout.LaneMinHeight
	}
	if opts.Sweeps == 0 {
		opts.Sweeps = c.Layout.Sweeps
	}
	if c.Layout.NoScale {
		opts.NoScale = true
	}
}

// DefaultPath returns the configuration file location using the XDG
// standard (~/.config/laneflow/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
