package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/layout"
	"github.com/matzehuels/pipegraph/pkg/runner"
	"github.com/matzehuels/pipegraph/pkg/sample"
	"github.com/matzehuels/pipegraph/pkg/source"
)

const twoJobsYAML = `
nodes:
  - id: lint
    name: Lint
    type: job
    status: success
    platform: gitlab
    duration: 30
  - id: unit
    name: Unit Tests
    type: job
    status: running
    platform: gitlab
    duration: 90
edges:
  - source: lint
    target: unit
`

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	s, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func put(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func expectError(t *testing.T, resp *http.Response, status int, code errors.Code) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	var body ErrorResponse
	decode(t, resp, &body)
	if body.Code != code {
		t.Errorf("code = %q, want %q (error %q)", body.Code, code, body.Error)
	}
	if body.Error == "" {
		t.Error("error message should not be empty")
	}
}

func TestHealth(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	decode(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["snapshot"] != s.Snapshot().ID.String() {
		t.Errorf("snapshot = %v, want %s", body["snapshot"], s.Snapshot().ID)
	}
}

func TestGetGraph(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	resp := get(t, ts.URL+"/api/graph")
	var snap source.Snapshot
	decode(t, resp, &snap)
	if len(snap.Graph.Nodes) != 9 || len(snap.Graph.Edges) != 12 {
		t.Errorf("got %d nodes, %d edges", len(snap.Graph.Nodes), len(snap.Graph.Edges))
	}
	if snap.Name != "sample" {
		t.Errorf("Name = %q, want sample", snap.Name)
	}
}

func TestLayout(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp := get(t, ts.URL+"/api/layout")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var l layout.Layout
	decode(t, resp, &l)
	n, ok := l.Node("deploy-2")
	if !ok {
		t.Fatal("deploy-2 missing")
	}
	if n.Position.X != 510 || n.Position.Y != 850 {
		t.Errorf("deploy-2 at %+v, want {510 850}", n.Position)
	}
	if l.CanvasHeight != 1000 {
		t.Errorf("CanvasHeight = %g, want 1000", l.CanvasHeight)
	}

	resp = get(t, ts.URL+"/api/layout?width=1600")
	decode(t, resp, &l)
	n, _ = l.Node("build-1")
	// 1600/3 - 90
	if want := 1600.0/3 - 90; n.Position.X != want {
		t.Errorf("build-1 x = %g, want %g", n.Position.X, want)
	}
}

func TestLayoutBadQuery(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	tests := []struct {
		query string
		code  errors.Code
	}{
		{"width=abc", errors.ErrCodeInvalidViewport},
		{"height=-5", errors.ErrCodeInvalidViewport},
		{"width=0", errors.ErrCodeInvalidViewport},
		{"strict=maybe", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := get(t, ts.URL+"/api/layout?"+tt.query)
			expectError(t, resp, http.StatusBadRequest, tt.code)
		})
	}
}

func TestAnalysis(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp := get(t, ts.URL+"/api/analysis?top=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var s analysis.Summary
	decode(t, resp, &s)
	if len(s.Bottlenecks) != 2 || s.Bottlenecks[0] != "test-3" || s.Bottlenecks[1] != "test-2" {
		t.Errorf("Bottlenecks = %v, want [test-3 test-2]", s.Bottlenecks)
	}
	if s.LongestPath == nil || s.LongestPath.Duration != 613 {
		t.Errorf("LongestPath = %+v, want duration 613", s.LongestPath)
	}

	resp = get(t, ts.URL+"/api/analysis?top=0")
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)
}

func TestRender(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp := get(t, ts.URL+"/api/render.dot?detailed=true")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "digraph") {
		t.Errorf("dot body should start with digraph: %.40q", body)
	}
	if !strings.Contains(string(body), `4m 5s`) {
		t.Error("detailed dot should include durations")
	}

	resp = get(t, ts.URL+"/api/render.svg")
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<svg") {
		t.Error("svg body should contain <svg")
	}
}

func TestPlatforms(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	resp := get(t, ts.URL+"/api/platforms")
	var got []graph.PlatformMeta
	decode(t, resp, &got)
	if len(got) != len(graph.Platforms) {
		t.Errorf("got %d platforms, want %d", len(got), len(graph.Platforms))
	}
}

func TestPutGraph(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	before := s.Snapshot().ID

	resp := put(t, ts.URL+"/api/graph", "application/yaml", twoJobsYAML)
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var replaced GraphReplaced
	decode(t, resp, &replaced)
	if replaced.Nodes != 2 || replaced.Edges != 1 {
		t.Errorf("replaced = %+v", replaced)
	}

	snap := s.Snapshot()
	if snap.ID == before || snap.ID.String() != replaced.ID {
		t.Errorf("snapshot id = %s, want %s (was %s)", snap.ID, replaced.ID, before)
	}
	// Normalization fills the edge id.
	if snap.Graph.Edges[0].ID != "lint->unit" {
		t.Errorf("edge id = %q, want lint->unit", snap.Graph.Edges[0].ID)
	}

	var l layout.Layout
	decode(t, get(t, ts.URL+"/api/layout"), &l)
	if len(l.Nodes) != 2 || l.MaxRank != 1 {
		t.Errorf("layout of new graph: %d nodes, max rank %d", len(l.Nodes), l.MaxRank)
	}
}

func TestPutGraphJSON(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	data, err := graph.Marshal(sample.Expanded(), graph.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	resp := put(t, ts.URL+"/api/graph", "", string(data))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := len(s.Snapshot().Graph.Nodes); got != len(sample.Expanded().Nodes) {
		t.Errorf("nodes = %d", got)
	}
}

func TestPutGraphRejected(t *testing.T) {
	tests := []struct {
		name        string
		strict      bool
		contentType string
		body        string
		status      int
		code        errors.Code
	}{
		{
			name:        "bad enum",
			contentType: "application/json",
			body:        `{"nodes":[{"id":"a","type":"job","status":"exploded","platform":"github"}],"edges":[]}`,
			status:      http.StatusBadRequest,
			code:        errors.ErrCodeInvalidEnum,
		},
		{
			name:        "malformed",
			contentType: "application/json",
			body:        `{"nodes":`,
			status:      http.StatusBadRequest,
			code:        errors.ErrCodeInvalidFormat,
		},
		{
			name:        "content type",
			contentType: "text/csv",
			body:        "id,name",
			status:      http.StatusBadRequest,
			code:        errors.ErrCodeInvalidFormat,
		},
		{
			name:        "dangling strict",
			strict:      true,
			contentType: "application/json",
			body:        `{"nodes":[{"id":"a","type":"job","status":"success","platform":"github"}],"edges":[{"source":"a","target":"ghost"}]}`,
			status:      http.StatusUnprocessableEntity,
			code:        errors.ErrCodeDanglingEdge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defaults := runner.DefaultOptions()
			defaults.Strict = tt.strict
			s, ts := newTestServer(t, Config{Defaults: &defaults})
			before := s.Snapshot().ID

			resp := put(t, ts.URL+"/api/graph", tt.contentType, tt.body)
			expectError(t, resp, tt.status, tt.code)

			if s.Snapshot().ID != before {
				t.Error("rejected upload must not replace the snapshot")
			}
		})
	}
}

func TestStrictLayoutCycle(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	cyclic := `{"nodes":[
		{"id":"a","type":"job","status":"success","platform":"github"},
		{"id":"b","type":"job","status":"success","platform":"github"}],
		"edges":[{"source":"a","target":"b"},{"source":"b","target":"a"}]}`
	if resp := put(t, ts.URL+"/api/graph", "application/json", cyclic); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	resp := get(t, ts.URL+"/api/layout?strict=true")
	expectError(t, resp, http.StatusUnprocessableEntity, errors.ErrCodeCycleDetected)

	var l layout.Layout
	decode(t, get(t, ts.URL+"/api/layout"), &l)
	if len(l.Nodes) != 0 || len(l.Unranked) != 2 {
		t.Errorf("best effort: %d placed, unranked %v", len(l.Nodes), l.Unranked)
	}
}

func TestRouting(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	expectError(t, get(t, ts.URL+"/api/nope"), http.StatusNotFound, errors.ErrCodeNotFound)
	expectError(t, put(t, ts.URL+"/api/layout", "", "{}"), http.StatusMethodNotAllowed, errors.ErrCodeUnsupported)
}

func writeGraph(t *testing.T, path string, g graph.Graph) {
	t.Helper()
	if err := graph.WriteFile(g, path); err != nil {
		t.Fatal(err)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")
	writeGraph(t, path, sample.Pipeline())
	src, err := source.NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := newTestServer(t, Config{Source: src})
	first := s.Snapshot()

	writeGraph(t, path, sample.Expanded())
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	second := s.Snapshot()
	if second.ID == first.ID {
		t.Error("reload should produce a new snapshot id")
	}
	if len(second.Graph.Nodes) != len(sample.Expanded().Nodes) {
		t.Errorf("nodes = %d", len(second.Graph.Nodes))
	}

	// A broken file keeps the previous snapshot.
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(context.Background()); err == nil {
		t.Error("reload of malformed file should fail")
	}
	if s.Snapshot().ID != second.ID {
		t.Error("failed reload must keep the current snapshot")
	}
}

func TestServeWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	writeGraph(t, path, sample.Pipeline())
	src, err := source.NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(context.Background(), Config{
		Source: src,
		Watch:  true,
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
	})
	if err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	resp := get(t, "http://"+ln.Addr().String()+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	want := len(sample.Expanded().Nodes)
	deadline := time.Now().Add(5 * time.Second)
	for len(s.Snapshot().Graph.Nodes) != want {
		if time.Now().After(deadline) {
			t.Fatalf("snapshot not reloaded: %d nodes", len(s.Snapshot().Graph.Nodes))
		}
		// Rewrite until the watcher is attached and sees a change.
		writeGraph(t, path, sample.Expanded())
		time.Sleep(200 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeListener: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
