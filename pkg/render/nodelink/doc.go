// Package nodelink renders positioned pipeline graphs as node-link diagrams.
//
// # Overview
//
// Nodes appear as rounded boxes filled with their status colour and
// connected by dependency arrows. Analysis overlays are drawn on top:
//
//   - critical edges are bold and red
//   - optional edges are dashed and grey
//   - bottleneck nodes get a thick orange border
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Overlay: analysis.NewOverlay(summary)})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Ranks and Positions
//
// By default the DOT output uses the dot engine with one rank=same subgraph
// per layout rank, so Graphviz keeps the computed levels and only adds its
// own spacing. With Options.Pinned the neato engine is used instead and each
// node is pinned at its computed position, reproducing the layout exactly.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. No external Graphviz install is needed.
package nodelink
