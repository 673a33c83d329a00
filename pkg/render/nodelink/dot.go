package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/layout"
)

// Overlay colours.
const (
	criticalColor   = "#D32F2F"
	optionalColor   = "#9E9E9E"
	bottleneckColor = "#FF6F00"
)

// pointsPerInch converts layout pixels to Graphviz inches for pinned output.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Overlay marks critical and bottleneck nodes. The zero value draws no
	// node highlights; edge styles always follow the edge type.
	Overlay analysis.Overlay
	// Detailed adds duration, platform and metadata to node labels.
	// When false, only the display name is shown.
	Detailed bool
	// Pinned places nodes at their computed positions using neato.
	Pinned bool
}

// ToDOT converts a layout to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(l layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=true;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
		buf.WriteString("  ranksep=0.5;\n")
		buf.WriteString("  nodesep=0.3;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=14, width=%.2f, height=%.2f, fixedsize=%t];\n",
		l.Geometry.NodeWidth/pointsPerInch, l.Geometry.NodeHeight/pointsPerInch, opts.Pinned)
	buf.WriteString("  edge [color=\"#616161\"];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(n.ID), strings.Join(nodeAttrs(n, l, opts), ", "))
	}

	if !opts.Pinned {
		buf.WriteString("\n")
		for rank := 0; rank <= l.MaxRank; rank++ {
			ids := l.Ranks[rank]
			if len(ids) == 0 {
				continue
			}
			quoted := make([]string, len(ids))
			for i, id := range ids {
				quoted[i] = dotQuote(id)
			}
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
		}
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(e.Source), dotQuote(e.Target))
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", dotQuote(e.Source), dotQuote(e.Target), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// dotEscaper escapes a DOT quoted string. Line breaks become the \n escape
// Graphviz centers; every other rune is written as is.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.DisplayName()
	}

	parts := []string{graph.FormatNodeDuration(&n)}
	if meta, ok := graph.PlatformInfo(n.Platform); ok {
		parts = append(parts, meta.Name)
	}
	for _, k := range slices.Sorted(maps.Keys(n.Metadata)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Metadata[k]))
	}
	return n.DisplayName() + "\n" + strings.Join(parts, "\n")
}

func nodeAttrs(n layout.PositionedNode, l layout.Layout, opts Options) []string {
	attrs := []string{
		"label=" + dotQuote(fmtLabel(n.Node, opts.Detailed)),
		"fillcolor=" + dotQuote(graph.StatusColor(n.Status)),
		"class=" + dotQuote(graph.StatusClass(n.Status)),
	}
	if n.Type == graph.NodeTypeEnvironment {
		attrs = append(attrs, "shape=component")
	}
	if opts.Overlay.Critical[n.ID] {
		attrs = append(attrs, "color="+dotQuote(criticalColor), "penwidth=2")
	}
	if opts.Overlay.Bottleneck[n.ID] {
		attrs = append(attrs, "color="+dotQuote(bottleneckColor), "penwidth=4")
	}
	if opts.Pinned {
		// Graphviz y grows upward; layout y grows downward. Positions are
		// box corners, Graphviz pins centers.
		cx := (n.Position.X + l.Geometry.NodeWidth/2) / pointsPerInch
		cy := (l.CanvasHeight - n.Position.Y - l.Geometry.NodeHeight/2) / pointsPerInch
		attrs = append(attrs, fmt.Sprintf("pos=\"%.3f,%.3f!\"", cx, cy))
	}
	return attrs
}

func edgeAttrs(e graph.Edge) []string {
	var attrs []string
	switch e.Kind() {
	case graph.EdgeTypeCritical:
		attrs = append(attrs, "color="+dotQuote(criticalColor), "penwidth=2.5", "style=bold")
	case graph.EdgeTypeOptional:
		attrs = append(attrs, "color="+dotQuote(optionalColor), "style=dashed")
	}
	if e.Label != "" {
		attrs = append(attrs, "label="+dotQuote(e.Label))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
