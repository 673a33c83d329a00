package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/cache"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/layout"
	"github.com/matzehuels/pipegraph/pkg/observability"
	"github.com/matzehuels/pipegraph/pkg/render/nodelink"
	"github.com/matzehuels/pipegraph/pkg/source"
)

// Runner encapsulates layout, analysis and rendering with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// Document is the JSON artifact: the layout together with its analysis.
type Document struct {
	Layout  layout.Layout    `json:"layout"`
	Summary analysis.Summary `json:"summary"`
}

// New creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func New(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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

// Execute runs the complete layout → analysis → render pipeline on snap.
func (r *Runner) Execute(ctx context.Context, snap source.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	g := snap.Graph

	result := &Result{
		SnapshotID: snap.ID.String(),
		Artifacts:  make(map[string][]byte),
	}
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	if h, err := cache.HashJSON(g); err == nil {
		result.GraphHash = h
	}

	// Stage 1: Layout
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, result.SnapshotID, len(g.Nodes))
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, result.SnapshotID, len(l.Nodes), result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.RankedCount = len(l.Nodes)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"ranks", l.MaxRank+1,
		"unranked", len(l.Unranked),
		"duration", result.Stats.LayoutTime)

	// Stage 2: Analysis
	analysisStart := time.Now()
	summary, analysisHit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	result.Summary = summary
	result.Stats.AnalysisTime = time.Since(analysisStart)
	result.CacheInfo.AnalysisHit = analysisHit
	hooks.OnAnalysisComplete(ctx, result.SnapshotID, result.Stats.AnalysisTime)

	opts.Logger.Info("analyzed graph",
		"critical", len(summary.CriticalPath),
		"bottlenecks", summary.Bottlenecks,
		"duration", result.Stats.AnalysisTime)

	// Stage 3: Render
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, summary, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (layout.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}
	r.applyLogger(&opts)

	graphHash, err := cache.HashJSON(g)
	if err != nil {
		return layout.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	var cached layout.Layout
	if r.lookup(ctx, "layout", cacheKey, opts, &cached) {
		return cached, true, nil
	}

	l, err := layout.Compute(g, opts.Width, opts.Height, opts.LayoutOptions()...)
	if err != nil {
		return layout.Layout{}, false, err
	}
	r.store(ctx, "layout", cacheKey, l, cache.TTLLayout)
	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g graph.Graph, opts Options) (layout.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// AnalyzeWithCacheInfo summarizes g with caching and returns cache hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (analysis.Summary, bool, error) {
	opts.SetAnalysisDefaults()
	r.applyLogger(&opts)

	graphHash, err := cache.HashJSON(g)
	if err != nil {
		return analysis.Summary{}, false, err
	}
	cacheKey := r.Keyer.AnalysisKey(graphHash, opts.AnalysisKeyOpts())

	var cached analysis.Summary
	if r.lookup(ctx, "analysis", cacheKey, opts, &cached) {
		return cached, true, nil
	}

	s := analysis.Summarize(g, opts.TopN)
	r.store(ctx, "analysis", cacheKey, s, cache.TTLAnalysis)
	return s, false, nil
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g graph.Graph, opts Options) (analysis.Summary, error) {
	s, _, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	return s, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, s analysis.Summary, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	docHash, err := cache.HashJSON(Document{Layout: l, Summary: s})
	if err != nil {
		return nil, false, fmt.Errorf("hash layout for cache key: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := RenderArtifacts(ctx, l, s, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
			opts.Logger.Debug("cache set failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, s analysis.Summary, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, s, opts)
	return artifacts, err
}

// RenderArtifacts renders every requested format without touching a cache.
func RenderArtifacts(ctx context.Context, l layout.Layout, s analysis.Summary, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	dotOpts := nodelink.Options{Detailed: opts.Detailed, Pinned: opts.Pinned}
	if !opts.NoOverlay {
		dotOpts.Overlay = analysis.NewOverlay(s)
	}

	out := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := json.MarshalIndent(Document{Layout: l, Summary: s}, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal document: %w", err)
			}
			out[format] = data
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(l, dotOpts)
			}
			if format == FormatDOT {
				out[format] = []byte(dot)
				continue
			}
			svg, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, err
			}
			out[format] = svg
		}
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup decodes the cached JSON under key into dst. Corrupt entries count
// as misses and are recomputed.
func (r *Runner) lookup(ctx context.Context, keyType, key string, opts Options, dst any) bool {
	if opts.Refresh {
		return false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Debug("cache get failed", "type", keyType, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

// store writes v as JSON under key. Cache failures never fail a run.
func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache set failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
