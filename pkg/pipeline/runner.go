package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneflow/pkg/cache"
	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
	"github.com/matzehuels/laneflow/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	doc, err := Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Document = doc
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = doc.NodeCount()
	result.Stats.EdgeCount = len(doc.Transitions)

	// Content hash of the normalized document keys the later stages.
	if data, err := flow.Marshal(doc); err == nil {
		result.FlowHash = cache.Hash(data)
	}

	r.Logger.Info("parsed flow",
		"nodes", doc.NodeCount(),
		"transitions", len(doc.Transitions),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	m, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, doc, result.FlowHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Model = m
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.LaneCount = len(m.Lanes)
	result.Stats.RankCount = len(m.Ranks)
	result.CacheInfo.LayoutHit = layoutHit

	for _, note := range m.Notes {
		r.Logger.Warn("layout note", "kind", note.Kind, "ref", note.Ref, "message", note.Message)
	}
	r.Logger.Info("computed layout",
		"lanes", len(m.Lanes),
		"ranks", len(m.Ranks),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, m, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and reports
// whether the result came from the cache. flowHash keys the entry; pass the
// hash of the normalized document's canonical serialization.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, doc *flow.Document, flowHash string, opts Options) (*layout.Model, bool, error) {
	r.applyLogger(&opts)
	cacheKey := r.Keyer.LayoutKey(flowHash, opts.LayoutKeyOpts())

	if !opts.Refresh && flowHash != "" {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Model
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &cached, true, nil
			}
			// Undecodable entry: recompute and overwrite.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	m, err := ComputeLayout(ctx, doc, opts)
	if err != nil {
		return nil, false, err
	}

	if flowHash != "" {
		if data, err := json.Marshal(m); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}

	return m, false, nil
}

// RenderWithCacheInfo renders artifacts with caching and reports whether
// every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *flow.Document, m *layout.Model, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := json.Marshal(m)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to serve every format from cache first.
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		allCached := true
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				allCached = false
				break
			}
			artifacts[format] = data
		}
		if allCached {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered, err := Render(ctx, doc, m, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
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

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
