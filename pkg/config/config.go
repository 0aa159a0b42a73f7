// Package config loads rackplan.toml project configuration. Every field
// has a default; command-line flags override file values.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/rackplan/rackplan/pkg/errors"
)

// DefaultFileName is looked up in the working directory when no path is
// given.
const DefaultFileName = "rackplan.toml"

// Config is the full project configuration.
type Config struct {
	Layout  Layout   `toml:"layout"`
	Diagram Diagram  `toml:"diagram"`
	CSV     CSV      `toml:"csv"`
	Cache   CacheCfg `toml:"cache"`
}

// Layout configures placement allocation.
type Layout struct {
	Start    int    `toml:"start"`
	End      int    `toml:"end"`
	Spacing  int    `toml:"spacing"`
	Strategy string `toml:"strategy"`
	Relocate bool   `toml:"relocate"`
	Strict   bool   `toml:"strict"`
	Optimize bool   `toml:"optimize"`
}

// Diagram configures draw.io output geometry and display toggles.
type Diagram struct {
	CabinetWidth  int  `toml:"cabinet_width"`
	CabinetHeight int  `toml:"cabinet_height"`
	SlotHeight    int  `toml:"slot_height"`
	CabinetGap    int  `toml:"cabinet_gap"`
	Slots         int  `toml:"slots"`
	ShowRuler     bool `toml:"show_ruler"`
	ShowRoomTitle bool `toml:"show_room_title"`
	ShowAssetID   bool `toml:"show_asset_id"`
	Detailed      bool `toml:"detailed"`
}

// CSV configures inventory ingestion.
type CSV struct {
	Schema        string `toml:"schema"` // "", "full", or "legacy"
	DefaultArea   string `toml:"default_area"`
	DefaultZone   string `toml:"default_zone"`
	DefaultRoom   string `toml:"default_room"`
	DefaultVendor string `toml:"default_vendor"`
}

// CacheCfg configures the artifact cache backend.
type CacheCfg struct {
	Backend   string `toml:"backend"` // off, file, redis
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// Cache backend names.
const (
	CacheOff   = "off"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: Layout{
			Start:    3,
			End:      39,
			Spacing:  1,
			Strategy: "expand-up",
			Relocate: true,
		},
		Diagram: Diagram{
			ShowRuler:     true,
			ShowRoomTitle: true,
		},
		CSV: CSV{
			DefaultArea:   "default-area",
			DefaultZone:   "default-zone",
			DefaultRoom:   "default-room",
			DefaultVendor: "unknown",
		},
		Cache: CacheCfg{
			Backend: CacheFile,
			Dir:     defaultCacheDir(),
		},
	}
}

// Load reads the configuration file at path, merging it over the
// defaults. An empty path tries DefaultFileName and falls back to pure
// defaults when the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Layout.Start < 1 || c.Layout.End < c.Layout.Start {
		return errors.New(errors.ErrCodeInvalidConfig,
			"layout bounds %d..%d are invalid", c.Layout.Start, c.Layout.End)
	}
	if c.Layout.Spacing < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout spacing must not be negative")
	}
	switch c.Cache.Backend {
	case CacheOff, CacheFile, CacheRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (want off, file, or redis)", c.Cache.Backend)
	}
	return nil
}

// defaultCacheDir puts the file cache under the user cache directory,
// falling back to a dot directory in the working tree.
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "rackplan")
	}
	return ".rackplan-cache"
}
