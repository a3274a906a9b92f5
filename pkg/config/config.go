// Package config loads wiregraph settings from a TOML file.
//
// A missing key keeps its default, so a config file only needs the values
// it changes:
//
//	[grid]
//	unit = 5
//
//	[cache]
//	redis_addr = "localhost:6379"
//	ttl = "2h"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiregraph/pkg/editor"
	"github.com/matzehuels/wiregraph/pkg/errors"
	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/nets"
	"github.com/matzehuels/wiregraph/pkg/route"
)

// Config is the full set of settings.
type Config struct {
	Grid    Grid    `toml:"grid"`
	Hit     Hit     `toml:"hit"`
	Nets    Nets    `toml:"nets"`
	Cache   Cache   `toml:"cache"`
	Storage Storage `toml:"storage"`
}

type Grid struct {
	Unit    float64 `toml:"unit"`
	Epsilon float64 `toml:"epsilon"`
}

// Hit holds pointer tolerances in canvas units.
type Hit struct {
	Node    float64 `toml:"node"`
	Segment float64 `toml:"segment"`
	Pin     float64 `toml:"pin"`
}

type Nets struct {
	CellFactor float64 `toml:"cell_factor"`
	NodeOnly   bool    `toml:"node_only"`
}

// Cache selects the extraction result cache. RedisAddr wins over Dir when
// both are set.
type Cache struct {
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
	Disabled  bool          `toml:"disabled"`
}

// Storage selects the document store. MongoURI wins over Dir when both are
// set.
type Storage struct {
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Default returns the built-in settings.
func Default() Config {
	rc := route.DefaultConfig()
	return Config{
		Grid: Grid{Unit: rc.Grid, Epsilon: geom.Eps},
		Hit:  Hit{Node: rc.NodeRadius, Segment: rc.SegmentRadius, Pin: rc.PinRadius},
		Nets: Nets{CellFactor: 2},
		Cache: Cache{
			Dir: defaultDir(os.UserCacheDir),
			TTL: 24 * time.Hour,
		},
		Storage: Storage{
			Dir:      defaultDir(os.UserConfigDir, "documents"),
			Database: "wiregraph",
		},
	}
}

func defaultDir(base func() (string, error), elem ...string) string {
	dir, err := base()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(append([]string{dir, "wiregraph"}, elem...)...)
}

// DefaultPath is the config file looked up when no path is given.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "wiregraph", "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "wiregraph", "config.toml")
}

// Load reads the file at path over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or the file at [DefaultPath] when path is
// empty. A missing default file yields the defaults; a missing explicit
// file is an error.
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	path = DefaultPath()
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Validate reports the first setting outside its allowed range.
func (c Config) Validate() error {
	switch {
	case c.Grid.Unit < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "grid.unit must not be negative")
	case c.Grid.Epsilon <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "grid.epsilon must be positive")
	case c.Grid.Unit > 0 && c.Grid.Epsilon >= c.Grid.Unit/2:
		return errors.New(errors.ErrCodeInvalidConfig, "grid.epsilon must be below half a grid unit")
	case c.Hit.Node < 0 || c.Hit.Segment < 0 || c.Hit.Pin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "hit radii must not be negative")
	case c.Nets.CellFactor < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "nets.cell_factor must be at least 1")
	case c.Cache.TTL < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// RouteConfig returns the routing engine tolerances.
func (c Config) RouteConfig() route.Config {
	return route.Config{
		Grid:          c.Grid.Unit,
		NodeRadius:    c.Hit.Node,
		SegmentRadius: c.Hit.Segment,
		PinRadius:     c.Hit.Pin,
	}
}

// NetsOptions returns the extraction settings.
func (c Config) NetsOptions(logger *log.Logger) nets.Options {
	unit := c.Grid.Unit
	if unit == 0 {
		unit = route.DefaultConfig().Grid
	}
	return nets.Options{
		GridUnit:   unit,
		CellFactor: c.Nets.CellFactor,
		NodeOnly:   c.Nets.NodeOnly,
		Logger:     logger,
	}
}

// EditorOptions returns the settings of an editing session.
func (c Config) EditorOptions(logger *log.Logger) editor.Options {
	return editor.Options{
		Eps:    c.Grid.Epsilon,
		Route:  c.RouteConfig(),
		Nets:   c.NetsOptions(logger),
		Logger: logger,
	}
}
