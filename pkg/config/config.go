// Package config loads wayfinder settings from a TOML file and the
// environment.
//
// Settings are layered: [Default] values, then the TOML file, then
// WAYFINDER_* environment variables. Relative paths in the campus and
// building sections are resolved against data_dir.
//
//	data_dir = "data/plans/Solbosch"
//	locale   = "en"
//
//	[campus]
//	name = "solbosch_map_updated"
//	file = "general/solbosch_map_updated.json"
//	canonical = true
//
//	[[buildings]]
//	name = "P1"
//	file = "P1/P1.json"
//
// When no [[buildings]] are listed, every <data_dir>/<B>/<B>.json file is
// loaded as building B.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/guide"
)

// Config is the complete wayfinder configuration.
type Config struct {
	DataDir   string           `toml:"data_dir"`
	Locale    string           `toml:"locale"`
	Workers   int              `toml:"workers"`
	Campus    CampusConfig     `toml:"campus"`
	Buildings []BuildingConfig `toml:"buildings"`
	Icons     IconConfig       `toml:"icons"`
	Cache     CacheConfig      `toml:"cache"`
	Store     StoreConfig      `toml:"store"`
	Server    ServerConfig     `toml:"server"`
}

// CampusConfig locates the outdoor graph.
type CampusConfig struct {
	Name string `toml:"name"`
	File string `toml:"file"`
	// Canonical campuses are addressed by node id only.
	Canonical bool `toml:"canonical"`
}

// BuildingConfig locates one building graph.
type BuildingConfig struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

// IconConfig sets how instruction icons are referenced.
type IconConfig struct {
	Dir string `toml:"dir"`
	Ext string `toml:"ext"`
}

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// CacheConfig selects the route cache.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// StoreConfig selects where served routes are kept for later retrieval.
type StoreConfig struct {
	Backend  string        `toml:"backend"`
	URI      string        `toml:"uri"`
	Database string        `toml:"database"`
	TTL      time.Duration `toml:"ttl"`
}

// ServerConfig holds HTTP server settings. Rate is in requests per second
// per client.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// Locale answers requests that name none. Empty inherits Config.Locale.
	Locale     string  `toml:"locale"`
	Rate       float64 `toml:"rate"`
	Burst      int     `toml:"burst"`
	CORSOrigin string  `toml:"cors_origin"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir: "data/plans/Solbosch",
		Locale:  "en",
		Workers: 4,
		Campus: CampusConfig{
			Name:      "solbosch_map_updated",
			File:      "general/solbosch_map_updated.json",
			Canonical: true,
		},
		Icons: IconConfig{Dir: "data/images/instructions3D/", Ext: ".png"},
		Cache: CacheConfig{Backend: CacheFile, RedisAddr: "localhost:6379", TTL: 24 * time.Hour},
		Store: StoreConfig{Backend: StoreMemory, Database: "wayfinder", TTL: 7 * 24 * time.Hour},
		Server: ServerConfig{
			Addr:       ":8000",
			Rate:       10,
			Burst:      20,
			CORSOrigin: "*",
		},
	}
}

// Load reads the TOML file at path on top of [Default], applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if os.IsNotExist(err) {
			return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file %s does not exist", path)
		}
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if cfg.Server.Locale == "" {
		cfg.Server.Locale = cfg.Locale
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) applyEnv() error {
	c.DataDir = getEnv("WAYFINDER_DATA_DIR", c.DataDir)
	c.Locale = getEnv("WAYFINDER_LOCALE", c.Locale)
	c.Cache.Backend = getEnv("WAYFINDER_CACHE", c.Cache.Backend)
	c.Cache.Dir = getEnv("WAYFINDER_CACHE_DIR", c.Cache.Dir)
	c.Cache.RedisAddr = getEnv("WAYFINDER_REDIS_ADDR", c.Cache.RedisAddr)
	c.Store.Backend = getEnv("WAYFINDER_STORE", c.Store.Backend)
	c.Store.URI = getEnv("WAYFINDER_STORE_URI", c.Store.URI)
	c.Server.Addr = getEnv("WAYFINDER_ADDR", c.Server.Addr)
	if v := os.Getenv("WAYFINDER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "WAYFINDER_WORKERS")
		}
		c.Workers = n
	}
	return nil
}

// Validate checks every setting and reports the first problem found.
func (c Config) Validate() error {
	switch {
	case c.DataDir == "":
		return errors.New(errors.ErrCodeInvalidConfig, "data_dir is empty")
	case c.Workers < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be at least 1, got %d", c.Workers)
	case c.Campus.File == "":
		return errors.New(errors.ErrCodeInvalidConfig, "campus.file is empty")
	case c.Cache.TTL < 0 || c.Store.TTL < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "ttl must not be negative")
	case c.Server.Rate <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "server.rate must be positive")
	case c.Server.Burst < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "server.burst must be at least 1")
	}
	if err := validateLocale("locale", c.Locale); err != nil {
		return err
	}
	if c.Server.Locale != "" {
		if err := validateLocale("server.locale", c.Server.Locale); err != nil {
			return err
		}
	}
	if err := validateDataPath("campus.file", c.Campus.File); err != nil {
		return err
	}
	if !oneOf(c.Cache.Backend, CacheFile, CacheRedis, CacheNone) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if !oneOf(c.Store.Backend, StoreMemory, StoreRedis, StoreMongo) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend != StoreMemory && c.Store.URI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.uri is required for the %s backend", c.Store.Backend)
	}
	seen := make(map[string]bool, len(c.Buildings))
	for _, b := range c.Buildings {
		if b.Name == "" || b.File == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "building entries need a name and a file")
		}
		if err := validateDataPath("building "+b.Name, b.File); err != nil {
			return err
		}
		if seen[b.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "building %s listed twice", b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

func validateLocale(key, locale string) error {
	if err := errors.ValidateLocale(locale); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", key)
	}
	if _, err := guide.Lookup(locale); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", key)
	}
	return nil
}

// validateDataPath rejects relative paths that escape data_dir. Absolute
// paths are taken as given.
func validateDataPath(key, path string) error {
	if filepath.IsAbs(path) {
		return nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", key)
	}
	return nil
}

// Resolve returns path joined to DataDir unless it is absolute.
func (c Config) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// CampusName returns the configured campus name, or the campus file's base
// name without extension.
func (c Config) CampusName() string {
	if c.Campus.Name != "" {
		return c.Campus.Name
	}
	base := filepath.Base(c.Campus.File)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
