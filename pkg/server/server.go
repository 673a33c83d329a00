// Package server exposes layouts and analyses of the current pipeline
// snapshot over HTTP.
//
// The server holds exactly one [source.Snapshot]. Requests read it under a
// read lock; PUT /api/graph and file reloads replace it wholesale, so a
// request never observes a half-updated graph.
//
// # Routes
//
//	GET  /healthz            liveness and current snapshot id
//	GET  /api/graph          current snapshot
//	PUT  /api/graph          replace the graph (JSON, YAML or TOML body)
//	GET  /api/layout         positioned nodes (?width=&height=&strict=)
//	GET  /api/analysis       critical path and bottlenecks (?top=)
//	GET  /api/render.svg     SVG with overlays (?detailed=&pinned=)
//	GET  /api/render.dot     Graphviz source
//	GET  /api/platforms      CI platform catalogue
//
// Errors are returned as {"error": ..., "code": ...} with a status derived
// from the error code.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pipegraph/pkg/runner"
	"github.com/matzehuels/pipegraph/pkg/source"
)

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:8080"

// maxBodyBytes bounds PUT /api/graph request bodies.
const maxBodyBytes = 10 << 20

// Config holds configuration for the server.
type Config struct {
	Addr string
	// Source provides the initial snapshot and reloads. Nil means the
	// built-in sample.
	Source source.Source
	// Runner computes layouts and renders. Nil means an uncached runner.
	Runner *runner.Runner
	// Defaults are applied to every request before query overrides. Nil
	// means runner.DefaultOptions.
	Defaults *runner.Options
	// Watch reloads the snapshot when a file source changes on disk.
	Watch  bool
	Logger *log.Logger
}

// Server serves one pipeline snapshot over HTTP.
type Server struct {
	addr     string
	src      source.Source
	runner   *runner.Runner
	defaults runner.Options
	watch    bool
	logger   *log.Logger

	mu   sync.RWMutex
	snap source.Snapshot
}

// New creates a server and loads its initial snapshot.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Source == nil {
		src, err := source.Builtin(string(source.KindSample))
		if err != nil {
			return nil, err
		}
		cfg.Source = src
	}
	if cfg.Runner == nil {
		cfg.Runner = runner.New(nil, nil, cfg.Logger)
	}
	defaults := runner.DefaultOptions()
	if cfg.Defaults != nil {
		defaults = *cfg.Defaults
	}

	s := &Server{
		addr:     cfg.Addr,
		src:      cfg.Source,
		runner:   cfg.Runner,
		defaults: defaults,
		watch:    cfg.Watch,
		logger:   cfg.Logger,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current snapshot.
func (s *Server) Snapshot() source.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Replace swaps in snap as the current snapshot.
func (s *Server) Replace(snap source.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.logger.Info("snapshot replaced",
		"id", snap.ID,
		"origin", snap.Origin,
		"nodes", len(snap.Graph.Nodes),
		"edges", len(snap.Graph.Edges))
}

// Reload loads a fresh snapshot from the source. On failure the current
// snapshot is kept.
func (s *Server) Reload(ctx context.Context) error {
	snap, err := s.src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.src, err)
	}
	s.Replace(snap)
	return nil
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", "http://"+ln.Addr().String(), "source", s.src)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		if fs, ok := s.src.(*source.FileSource); ok {
			eg.Go(func() error {
				return s.watchFile(egctx, fs.Path())
			})
		} else {
			s.logger.Warn("watch ignored: source is not a file", "source", s.src)
		}
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
