// Package runner executes the layout → analysis → render pipeline with
// caching.
//
// This package is the single entry point used by the CLI and the HTTP
// server, so both apply the same defaults and cache keys.
//
// # Usage
//
// Create a Runner and execute it against a snapshot:
//
//	r := runner.New(cache, nil, logger)
//	opts := runner.DefaultOptions()
//	opts.Formats = []string{runner.FormatSVG}
//	result, err := r.Execute(ctx, snap, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[runner.FormatSVG]
//
// Run individual stages:
//
//	l, hit, err := r.Layout(ctx, snap.Graph, opts)
//	summary, hit, err := r.Analyze(ctx, snap.Graph, opts)
//	artifacts, hit, err := r.Render(ctx, l, summary, opts)
package runner

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/cache"
	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = layout.DefaultWidth

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = layout.DefaultHeight

	// DefaultTopN is the default number of bottlenecks reported.
	DefaultTopN = analysis.DefaultTopN
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Runner Configuration
// =============================================================================

// Options contains all configuration for a run.
// This struct supports JSON and TOML serialization for API requests and
// config files.
//
// Zero sizes fall back to the defaults, but a zero spacing or top margin is
// kept. Start from [DefaultOptions] to get the default spacing.
type Options struct {
	// Layout options
	Width             float64 `json:"width,omitempty" toml:"width"`
	Height            float64 `json:"height,omitempty" toml:"height"`
	NodeWidth         float64 `json:"node_width,omitempty" toml:"node_width"`
	NodeHeight        float64 `json:"node_height,omitempty" toml:"node_height"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty" toml:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty" toml:"vertical_spacing"`
	TopMargin         float64 `json:"top_margin,omitempty" toml:"top_margin"`
	Strict            bool    `json:"strict,omitempty" toml:"strict"`
	BreakCycles       bool    `json:"break_cycles,omitempty" toml:"break_cycles"`

	// Analysis options
	TopN int `json:"top_n,omitempty" toml:"top_n"`

	// Render options
	Formats  []string `json:"formats,omitempty" toml:"formats"`
	Detailed bool     `json:"detailed,omitempty" toml:"detailed"`
	Pinned   bool     `json:"pinned,omitempty" toml:"pinned"`
	// NoOverlay disables critical/bottleneck highlighting in rendered output.
	NoOverlay bool `json:"no_overlay,omitempty" toml:"no_overlay"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Logger overrides the runner's logger for this run (not serialized).
	Logger *log.Logger `json:"-" toml:"-"`
}

// Result contains the outputs of a run.
type Result struct {
	// SnapshotID identifies the input snapshot.
	SnapshotID string

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Layout contains the positioned nodes.
	Layout layout.Layout

	// Summary contains the analysis overlays.
	Summary analysis.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	RankedCount  int
	LayoutTime   time.Duration
	AnalysisTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit   bool // Whether the layout came from cache
	AnalysisHit bool // Whether the summary came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// DefaultOptions returns the default viewport, geometry and analysis
// options.
func DefaultOptions() Options {
	g := layout.DefaultGeometry()
	return Options{
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		NodeWidth:         g.NodeWidth,
		NodeHeight:        g.NodeHeight,
		HorizontalSpacing: g.HorizontalSpacing,
		VerticalSpacing:   g.VerticalSpacing,
		TopMargin:         g.TopMargin,
		TopN:              DefaultTopN,
	}
}

// ValidateAndSetDefaults checks options and applies defaults for a full run.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// SetLayoutDefaults sets default values for layout computation. Non-positive
// viewport and node sizes are reset; only negative spacings and margins are.
func (o *Options) SetLayoutDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	d := layout.DefaultGeometry()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.HorizontalSpacing < 0 {
		o.HorizontalSpacing = d.HorizontalSpacing
	}
	if o.VerticalSpacing < 0 {
		o.VerticalSpacing = d.VerticalSpacing
	}
	if o.TopMargin < 0 {
		o.TopMargin = d.TopMargin
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if err := errors.ValidateViewport(o.Width, o.Height); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	return nil
}

// SetAnalysisDefaults sets default values for analysis.
func (o *Options) SetAnalysisDefaults() {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	o.SetAnalysisDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Geometry returns the node geometry described by the options.
func (o *Options) Geometry() layout.Geometry {
	return layout.Geometry{
		NodeWidth:         o.NodeWidth,
		NodeHeight:        o.NodeHeight,
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
		TopMargin:         o.TopMargin,
	}
}

// LayoutOptions returns the layout.Compute options described by o.
func (o *Options) LayoutOptions() []layout.Option {
	opts := []layout.Option{layout.WithGeometry(o.Geometry())}
	if o.Strict {
		opts = append(opts, layout.WithStrict())
	}
	if o.BreakCycles {
		opts = append(opts, layout.WithBreakCycles())
	}
	return opts
}

// WantsFormat reports whether format is requested.
func (o *Options) WantsFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:             o.Width,
		Height:            o.Height,
		NodeWidth:         o.NodeWidth,
		NodeHeight:        o.NodeHeight,
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
		TopMargin:         o.TopMargin,
		Strict:            o.Strict,
		BreakCycles:       o.BreakCycles,
	}
}

// AnalysisKeyOpts returns cache key options for analysis.
func (o *Options) AnalysisKeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{TopN: o.TopN}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  fmt.Sprintf("%s:detailed=%t:pinned=%t", format, o.Detailed, o.Pinned),
		Overlay: !o.NoOverlay,
	}
}
