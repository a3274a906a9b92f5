package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/wiregraph/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[grid]
unit = 5

[nets]
node_only = true

[cache]
redis_addr = "localhost:6379"
ttl = "2h"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := Default()
	if cfg.Grid.Unit != 5 {
		t.Errorf("Grid.Unit = %v, want 5", cfg.Grid.Unit)
	}
	if cfg.Grid.Epsilon != def.Grid.Epsilon {
		t.Errorf("Grid.Epsilon = %v, want default %v", cfg.Grid.Epsilon, def.Grid.Epsilon)
	}
	if !cfg.Nets.NodeOnly || cfg.Nets.CellFactor != def.Nets.CellFactor {
		t.Errorf("Nets = %+v", cfg.Nets)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Hit != def.Hit {
		t.Errorf("Hit = %+v, want %+v", cfg.Hit, def.Hit)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[grid\nunit = 1", errors.ErrCodeInvalidConfig},
		{"unknown key", "[grid]\nsize = 10", errors.ErrCodeInvalidConfig},
		{"negative radius", "[hit]\npin = -1", errors.ErrCodeInvalidConfig},
		{"epsilon too large", "[grid]\nunit = 10\nepsilon = 5", errors.ErrCodeInvalidConfig},
		{"cell factor", "[nets]\ncell_factor = 0.5", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault(\"\") error: %v", err)
	}
	if cfg.Grid != Default().Grid {
		t.Errorf("Grid = %+v, want defaults", cfg.Grid)
	}

	if _, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadOrDefault(explicit missing) should fail")
	}
}

func TestEditorOptions(t *testing.T) {
	cfg := Default()
	cfg.Grid.Unit = 0
	cfg.Nets.CellFactor = 3

	opts := cfg.EditorOptions(nil)
	if opts.Route.Grid != 0 {
		t.Errorf("Route.Grid = %v, want 0 (snapping off)", opts.Route.Grid)
	}
	if opts.Nets.GridUnit != 10 || opts.Nets.CellFactor != 3 {
		t.Errorf("Nets = %+v", opts.Nets)
	}
	if opts.Route.PinRadius != cfg.Hit.Pin {
		t.Errorf("Route.PinRadius = %v, want %v", opts.Route.PinRadius, cfg.Hit.Pin)
	}
}
