// Package cache provides pluggable caching for computed layouts, analyses
// and rendered artifacts.
//
// Three backends implement [Cache]:
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] stores entries as files, for CLI usage
//   - [RedisCache] stores entries in Redis, for the HTTP server
//
// Keys are derived by a [Keyer]. Keys are content-addressed: the graph is
// hashed and combined with every option that changes the result, so a
// changed snapshot or option never returns a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl ≤ 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs for cached objects.
const (
	TTLLayout   = 24 * time.Hour
	TTLAnalysis = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	AnalysisKey(graphHash string, opts AnalysisKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout inputs that change the result.
type LayoutKeyOpts struct {
	Width             float64 `json:"w"`
	Height            float64 `json:"h"`
	NodeWidth         float64 `json:"nw"`
	NodeHeight        float64 `json:"nh"`
	HorizontalSpacing float64 `json:"hs"`
	VerticalSpacing   float64 `json:"vs"`
	TopMargin         float64 `json:"tm"`
	Strict            bool    `json:"strict,omitempty"`
	BreakCycles       bool    `json:"break,omitempty"`
}

// AnalysisKeyOpts are the analysis inputs that change the result.
type AnalysisKeyOpts struct {
	TopN int `json:"top"`
}

// ArtifactKeyOpts identify a rendered artifact of a layout.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Overlay bool   `json:"overlay,omitempty"`
}

// DefaultKeyer produces unscoped keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey generates a key for layout caching.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// AnalysisKey generates a key for analysis caching.
func (DefaultKeyer) AnalysisKey(graphHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", graphHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
