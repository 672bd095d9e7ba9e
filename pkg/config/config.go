// Package config loads stemma's optional TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/stemma/config.toml (or
// ~/.config/stemma/config.toml) unless --config names another path. Every
// field is optional; missing sections keep their defaults, and command-line
// flags override whatever the file sets.
//
//	[layout]
//	max_iterations = 10000
//	timeout = "30s"
//	workers = 4
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	store = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the decoded configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type LayoutConfig struct {
	MaxIterations int      `toml:"max_iterations"`
	Timeout       Duration `toml:"timeout"`
	Workers       int      `toml:"workers"`
	SkipOptimize  bool     `toml:"skip_optimize"`
}

type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
}

type ServerConfig struct {
	Addr         string   `toml:"addr"`
	Store        string   `toml:"store"`
	StoreDir     string   `toml:"store_dir"`
	MongoURI     string   `toml:"mongo_uri"`
	MongoDB      string   `toml:"mongo_db"`
	Retention    Duration `toml:"retention"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// Duration decodes TOML strings such as "30s" or "1h30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			Store:        StoreMemory,
			MaxBodyBytes: 10 << 20,
		},
	}
}

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "stemma", "config.toml"), nil
}

// Load reads path over the defaults. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path
	return cfg, cfg.Validate()
}

// Validate checks backend names.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	switch c.Server.Store {
	case StoreMemory, StoreFile, StoreMongo:
	default:
		return fmt.Errorf("server.store: unknown backend %q", c.Server.Store)
	}
	if c.Server.Store == StoreMongo && c.Server.MongoURI == "" {
		return errors.New("server.mongo_uri is required for the mongo store")
	}
	return nil
}

// CacheDir returns the file cache directory, honoring XDG_CACHE_HOME.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "stemma"), nil
}
