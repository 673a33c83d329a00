package server

import (
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/observability"
	"github.com/matzehuels/pipegraph/pkg/runner"
	"github.com/matzehuels/pipegraph/pkg/source"
)

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.observe,
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGetGraph)
		r.Put("/graph", s.handlePutGraph)
		r.Get("/layout", s.handleLayout)
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/render.svg", s.handleRender(runner.FormatSVG, "image/svg+xml"))
		r.Get("/render.dot", s.handleRender(runner.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
		r.Get("/platforms", s.handlePlatforms)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		err := errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", r.Method, r.URL.Path)
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: err.Message, Code: err.Code})
	})
	return r
}

// observe reports requests to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "bytes", ww.BytesWritten(), "duration", d)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"snapshot":  snap.ID,
		"loaded_at": snap.LoadedAt,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// GraphReplaced is the body returned by PUT /api/graph.
type GraphReplaced struct {
	ID    string `json:"id"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
}

func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	format, err := bodyFormat(r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var opts []graph.ValidateOption
	if s.defaults.Strict {
		opts = append(opts, graph.RejectDanglingEdges())
	}
	g, err := graph.Read(http.MaxBytesReader(w, r.Body, maxBodyBytes), format, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap := source.NewSnapshot("upload", "api", g)
	s.Replace(snap)
	writeJSON(w, http.StatusOK, GraphReplaced{
		ID:    snap.ID.String(),
		Nodes: len(g.Nodes),
		Edges: len(g.Edges),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), s.Snapshot().Graph, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.runner.Analyze(r.Context(), s.Snapshot().Graph, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRender(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.requestOptions(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}

		ctx := r.Context()
		g := s.Snapshot().Graph
		l, err := s.runner.Layout(ctx, g, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		summary, err := s.runner.Analyze(ctx, g, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		artifacts, err := s.runner.Render(ctx, l, summary, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeBytes(w, contentType, artifacts[format])
	}
}

func (s *Server) handlePlatforms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, graph.PlatformCatalogue())
}

// requestOptions overlays query parameters on the server defaults.
func (s *Server) requestOptions(r *http.Request) (runner.Options, error) {
	opts := s.defaults
	opts.Formats = nil
	q := r.URL.Query()

	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidViewport, "%s must be a number, got %q", name, v)
		}
		if f <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidViewport, "%s must be positive, got %q", name, v)
		}
		*dst = f
	}

	if v := q.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "top must be a positive integer, got %q", v)
		}
		opts.TopN = n
	}

	for name, dst := range map[string]*bool{
		"strict":       &opts.Strict,
		"break_cycles": &opts.BreakCycles,
		"detailed":     &opts.Detailed,
		"pinned":       &opts.Pinned,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
		}
		*dst = b
	}

	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

// bodyFormat maps a request Content-Type to a graph format. An empty
// Content-Type is read as JSON.
func bodyFormat(contentType string) (graph.Format, error) {
	if contentType == "" {
		return graph.FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "bad Content-Type %q", contentType)
	}
	switch mediaType {
	case "application/json", "text/json":
		return graph.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return graph.FormatYAML, nil
	case "application/toml", "text/toml":
		return graph.FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported Content-Type %q (use JSON, YAML or TOML)", mediaType)
	}
}
