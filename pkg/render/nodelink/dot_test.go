package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/layout"
	"github.com/matzehuels/pipegraph/pkg/sample"
)

func sampleLayout(t *testing.T) (layout.Layout, analysis.Overlay) {
	t.Helper()
	g := sample.Pipeline()
	l, err := layout.Compute(g, 1200, 800)
	if err != nil {
		t.Fatal(err)
	}
	return l, analysis.NewOverlay(analysis.Summarize(g, 0))
}

func TestToDOT(t *testing.T) {
	l, overlay := sampleLayout(t)
	dot := ToDOT(l, Options{Overlay: overlay})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"build-1" [label="Build Backend"`,
		`{ rank=same; "build-1"; "build-2"; }`,
		`{ rank=same; "test-1"; "test-2"; "test-3"; "security-1"; }`,
		`"test-1" -> "deploy-1" [color="#D32F2F", penwidth=2.5, style=bold];`,
		`"build-1" -> "security-1" [color="#9E9E9E", style=dashed];`,
		`"build-1" -> "test-1";`,
		`class="pipeline-status-error"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}

	// test-3 is both critical and a bottleneck; the bottleneck border wins.
	line := lineFor(dot, `"test-3" [`)
	if !strings.Contains(line, "penwidth=4") {
		t.Errorf("bottleneck border missing: %s", line)
	}
	if strings.Contains(lineFor(dot, `"perf-1" [`), "penwidth") {
		t.Error("perf-1 should not be highlighted")
	}
}

func TestToDOTDetailed(t *testing.T) {
	l, _ := sampleLayout(t)
	dot := ToDOT(l, Options{Detailed: true})
	if !strings.Contains(dot, `label="Build Backend\n4m 5s\nGitHub Actions"`) {
		t.Errorf("detailed label missing:\n%s", lineFor(dot, `"build-1" [`))
	}
	if !strings.Contains(dot, `label="Deploy to Staging\nN/A\nAzure DevOps"`) {
		t.Errorf("N/A duration missing:\n%s", lineFor(dot, `"deploy-1" [`))
	}
}

func TestToDOTPinned(t *testing.T) {
	l, _ := sampleLayout(t)
	dot := ToDOT(l, Options{Pinned: true})
	if !strings.Contains(dot, "layout=neato;") || strings.Contains(dot, "rank=same") {
		t.Error("pinned output should use neato without rank subgraphs")
	}
	// build-1 at (310,50), 180x100 box, canvas 1000 high: center (400, 900) px.
	if !strings.Contains(lineFor(dot, `"build-1" [`), `pos="5.556,12.500!"`) {
		t.Errorf("pinned position wrong: %s", lineFor(dot, `"build-1" [`))
	}
}

func TestToDOTQuoting(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "déploy\tprod", Name: `Say "hi" C:\bin`, Type: graph.NodeTypeJob, Status: graph.StatusSuccess, Platform: graph.PlatformGitHub},
			{ID: "ünit", Name: "Ünit ☂", Type: graph.NodeTypeJob, Status: graph.StatusSuccess, Platform: graph.PlatformGitHub},
		},
		Edges: []graph.Edge{{ID: "e1", Source: "déploy\tprod", Target: "ünit", Label: "a\\b"}},
	}
	l, err := layout.Compute(g, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(l, Options{})

	for _, want := range []string{
		"\"déploy\tprod\" [label=\"Say \\\"hi\\\" C:\\\\bin\"",
		`"ünit" [label="Ünit ☂"`,
		"\"déploy\tprod\" -> \"ünit\" [label=\"a\\\\b\"];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `\u`) || strings.Contains(dot, `\x`) || strings.Contains(dot, `\t`) {
		t.Errorf("DOT contains Go escapes:\n%s", dot)
	}

	if _, err := RenderSVG(context.Background(), dot); err != nil {
		t.Errorf("RenderSVG: %v", err)
	}
}

func TestRenderSVG(t *testing.T) {
	l, overlay := sampleLayout(t)
	svg, err := RenderSVG(context.Background(), ToDOT(l, Options{Overlay: overlay}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("svg header not normalized: %.200s", svg)
	}
	if !bytes.Contains(svg, []byte("Integration Tests")) {
		t.Error("svg missing node label")
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox: %s", got)
	}
}

func lineFor(dot, prefix string) string {
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, prefix) {
			return line
		}
	}
	return ""
}
