// Package render groups the output renderers for positioned pipeline graphs.
//
// The [nodelink] subpackage turns a computed layout and its analysis overlay
// into a Graphviz DOT document and renders it to SVG in-process:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Overlay: overlay})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// JSON output needs no renderer; the layout itself is the JSON artifact.
//
// [nodelink]: github.com/matzehuels/pipegraph/pkg/render/nodelink
package render
