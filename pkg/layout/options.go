package layout

// Default viewport and node geometry.
const (
	DefaultWidth             = 1200.0
	DefaultHeight            = 800.0
	DefaultNodeWidth         = 180.0
	DefaultNodeHeight        = 100.0
	DefaultHorizontalSpacing = 80.0
	DefaultVerticalSpacing   = 100.0
	DefaultTopMargin         = 50.0
)

// Geometry holds node box dimensions and spacing.
type Geometry struct {
	NodeWidth         float64 `json:"node_width" toml:"node_width" bson:"node_width"`
	NodeHeight        float64 `json:"node_height" toml:"node_height" bson:"node_height"`
	HorizontalSpacing float64 `json:"horizontal_spacing" toml:"horizontal_spacing" bson:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing" toml:"vertical_spacing" bson:"vertical_spacing"`
	TopMargin         float64 `json:"top_margin" toml:"top_margin" bson:"top_margin"`
}

// DefaultGeometry returns the default node geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		NodeWidth:         DefaultNodeWidth,
		NodeHeight:        DefaultNodeHeight,
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		TopMargin:         DefaultTopMargin,
	}
}

// withDefaults replaces non-positive sizes with defaults. A zero top margin
// or spacing is kept; only negative values are reset.
func (g Geometry) withDefaults() Geometry {
	d := DefaultGeometry()
	if g.NodeWidth <= 0 {
		g.NodeWidth = d.NodeWidth
	}
	if g.NodeHeight <= 0 {
		g.NodeHeight = d.NodeHeight
	}
	if g.HorizontalSpacing < 0 {
		g.HorizontalSpacing = d.HorizontalSpacing
	}
	if g.VerticalSpacing < 0 {
		g.VerticalSpacing = d.VerticalSpacing
	}
	if g.TopMargin < 0 {
		g.TopMargin = d.TopMargin
	}
	return g
}

// RowHeight is the vertical distance between two consecutive ranks.
func (g Geometry) RowHeight() float64 { return g.NodeHeight + g.VerticalSpacing }

type config struct {
	geometry    Geometry
	strict      bool
	breakCycles bool
}

// Option configures Compute.
type Option func(*config)

// WithGeometry replaces the whole geometry. Non-positive node sizes and
// negative spacings fall back to the defaults.
func WithGeometry(g Geometry) Option { return func(c *config) { c.geometry = g } }

// WithNodeSize sets the node box size.
func WithNodeSize(width, height float64) Option {
	return func(c *config) { c.geometry.NodeWidth, c.geometry.NodeHeight = width, height }
}

// WithVerticalSpacing sets the gap between ranks.
func WithVerticalSpacing(s float64) Option { return func(c *config) { c.geometry.VerticalSpacing = s } }

// WithHorizontalSpacing sets the horizontal spacing hint passed to renderers.
func WithHorizontalSpacing(s float64) Option {
	return func(c *config) { c.geometry.HorizontalSpacing = s }
}

// WithTopMargin sets the y offset of rank 0.
func WithTopMargin(m float64) Option { return func(c *config) { c.geometry.TopMargin = m } }

// WithStrict makes Compute fail on dangling edges and cycles instead of
// dropping the affected edges and nodes.
func WithStrict() Option { return func(c *config) { c.strict = true } }

// WithBreakCycles removes cycle-closing edges before ranking.
func WithBreakCycles() Option { return func(c *config) { c.breakCycles = true } }
