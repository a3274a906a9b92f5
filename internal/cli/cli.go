// Package cli implements the wiregraph command-line interface.
//
// # Commands
//
//   - nets: extract the nets of a snapshot
//   - cleanup: normalise the topology of a snapshot
//   - render: draw a snapshot as SVG, DOT, PNG or PDF
//   - draw: edit a snapshot interactively in the terminal
//   - serve: run the HTTP API
//   - store: manage stored documents
//   - cache: manage the result cache
//
// Settings come from a TOML file (see package config); --config selects
// it. All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wiregraph/pkg/buildinfo"
	"github.com/matzehuels/wiregraph/pkg/cache"
	"github.com/matzehuels/wiregraph/pkg/config"
	"github.com/matzehuels/wiregraph/pkg/pipeline"
	"github.com/matzehuels/wiregraph/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "wiregraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// settings. The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "wiregraph extracts nets from schematic wire drawings",
		Long: `wiregraph maintains orthogonal wire topologies for schematic capture and
extracts their electrical nets.

Snapshots are JSON files with nodes, segments and optionally the component
placements whose pins the wires connect to.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.netsCommand())
	root.AddCommand(c.cleanupCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "grid", cfg.Grid.Unit, "cell_factor", cfg.Nets.CellFactor)
	return nil
}

// =============================================================================
// Backend Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = c.Config.Cache.TTL
	return r, nil
}

// newCache picks the cache backend: none when disabled, Redis when an
// address is configured, the file cache otherwise.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	switch {
	case noCache || cfg.Disabled:
		return cache.NewNullCache(), nil
	case cfg.RedisAddr != "":
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		c.Logger.Debug("using redis cache", "addr", cfg.RedisAddr)
		return cache.WithHooks(rc), nil
	}
	fc, err := cache.NewFileCache(cfg.Dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.WithHooks(fc), nil
}

// newStore opens the document store: MongoDB when a URI is configured,
// the file store otherwise.
func (c *CLI) newStore(ctx context.Context) (storage.Store, error) {
	cfg := c.Config.Storage
	if cfg.MongoURI != "" {
		s, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect document store: %w", err)
		}
		return s, nil
	}
	return storage.NewFileStore(cfg.Dir)
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns pipeline options seeded from the config file.
func (c *CLI) pipelineOptions() pipeline.Options {
	nc := c.Config.NetsOptions(nil)
	return pipeline.Options{
		Eps:        c.Config.Grid.Epsilon,
		GridUnit:   nc.GridUnit,
		CellFactor: nc.CellFactor,
		NodeOnly:   nc.NodeOnly,
		Logger:     c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s, def string) []string {
	if s == "" {
		return []string{def}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// Input / Output
// =============================================================================

// readInput reads a snapshot from path, or from stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// basePath derives the base output path from the output and input file
// paths. Known format extensions are stripped from output; without an
// output, the input extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return appName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	exts := make([]string, 0, len(pipeline.ValidFormats))
	for _, f := range pipeline.ValidFormats {
		exts = append(exts, fileExt(f))
	}
	// longest first, so "snapshot.json" wins over "json"
	slices.SortFunc(exts, func(a, b string) int { return len(b) - len(a) })
	for _, ext := range exts {
		if strings.HasSuffix(output, "."+ext) {
			return strings.TrimSuffix(output, "."+ext)
		}
	}
	return output
}

// fileExt maps an output format to its file extension.
func fileExt(format string) string {
	switch format {
	case pipeline.FormatText:
		return "net"
	case pipeline.FormatSnapshot:
		return "snapshot.json"
	case pipeline.FormatGraphviz:
		return "gv.svg"
	default:
		return format
	}
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. An empty path or
// "-" is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	toStdout  bool
}

// writeArtifacts writes one file per format. A single format goes to
// output as given; several formats share the base path of output.
// It returns the written paths.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	if p.toStdout {
		for _, f := range p.formats {
			if _, err := os.Stdout.Write(p.artifacts[f]); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	var paths []string
	base := basePath(p.output, p.input)
	for _, f := range p.formats {
		path := base + "." + fileExt(f)
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := writeFile(path, p.artifacts[f]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
