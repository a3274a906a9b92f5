package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiregraph/pkg/cache"
	"github.com/matzehuels/wiregraph/pkg/nets"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-kind cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → extract → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, snapshot []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.Logger.Debug("pipeline options", "opts", opts.String())

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	p, err := Parse(snapshot, opts)
	if err != nil {
		return nil, err
	}
	result.Hash = p.Hash
	result.Document = p.Document()
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Nodes = p.Editor.Store().NodeCount()
	result.Stats.Segments = p.Editor.Store().SegmentCount()
	result.Stats.Pins = len(p.Editor.Pins())

	r.Logger.Info("parsed snapshot",
		"nodes", result.Stats.Nodes,
		"segments", result.Stats.Segments,
		"pins", result.Stats.Pins,
		"duration", result.Stats.ParseTime)
	if p.Cleanup.Changed() {
		r.Logger.Info("cleaned up topology",
			"merged", p.Cleanup.Merged,
			"dropped", p.Cleanup.Dropped,
			"collapsed", p.Cleanup.Collapsed,
			"split", p.Cleanup.Split)
	}

	// Stage 2: Extract
	extractStart := time.Now()
	report, res, hit, err := r.ExtractWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	result.Report = report
	result.Stats.ExtractTime = time.Since(extractStart)
	result.Stats.Nets = len(report.Nets)
	result.CacheInfo.ExtractHit = hit

	r.Logger.Info("extracted nets",
		"nets", len(report.Nets),
		"junctions", len(report.Junctions),
		"cached", hit,
		"duration", result.Stats.ExtractTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, p, res, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ExtractWithCacheInfo returns the report of p, from cache when possible.
// The full result is only computed on a miss, so res is nil on a hit.
func (r *Runner) ExtractWithCacheInfo(ctx context.Context, p *Parsed, opts Options) (nets.Report, *nets.Result, bool, error) {
	key := r.Keyer.NetsKey(p.Hash, opts.NetsKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var report nets.Report
			if err := json.Unmarshal(data, &report); err == nil {
				return report, nil, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
	}

	res := p.Editor.NetsContext(ctx)
	report := res.Report(p.Editor.Pins())
	if data, err := json.Marshal(report); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLNets)); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return report, res, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. res may be nil; it is extracted on demand when any format has
// to be rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *Parsed, res *nets.Result, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(p.Hash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	if res == nil {
		res = p.Editor.NetsContext(ctx)
	}
	rendered, err := Render(ctx, p, res, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(p.Hash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
