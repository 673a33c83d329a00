// Package cli implements the pipegraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/buildinfo"
	"github.com/matzehuels/pipegraph/pkg/cache"
	"github.com/matzehuels/pipegraph/pkg/observability"
	"github.com/matzehuels/pipegraph/pkg/runner"
	"github.com/matzehuels/pipegraph/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pipegraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	out        io.Writer
	errOut     io.Writer // spinner and progress output
	configFile string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
		out:    os.Stdout,
		errOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (results printed to stdout).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pipegraph lays out and analyzes CI/CD pipeline graphs",
		Long:         `Pipegraph computes layered layouts for CI/CD pipeline graphs and highlights their critical path and bottlenecks.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/pipegraph/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and applies --verbose.
func (c *CLI) setup() error {
	level := LogInfo
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	if c.verbose {
		observability.NewLogHooks(c.Logger).Register()
	}

	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			path = ""
		}
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*runner.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return runner.New(ch, c.newKeyer(), c.Logger), nil
}

// newKeyer scopes cache keys by [cache] namespace when one is set.
func (c *CLI) newKeyer() cache.Keyer {
	if ns := c.Config.Cache.Namespace; ns != "" {
		return cache.NewScopedKeyer(nil, ns)
	}
	return cache.NewDefaultKeyer()
}

// newCache builds the cache backend selected by [cache]. A file cache whose
// directory cannot be resolved degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		return cache.NewNullCache(), nil
	}

	var (
		ch  cache.Cache
		err error
	)
	switch cfg.Backend {
	case "", cacheBackendFile:
		dir := cfg.Dir
		if dir == "" {
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		ch, err = cache.NewFileCache(dir)
	case cacheBackendRedis:
		ch, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case cacheBackendNone:
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be file, redis or none)", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Backend, err)
	}
	return cache.WithTTL(ch, cfg.TTL.Duration), nil
}

// =============================================================================
// Sources
// =============================================================================

// sourceFlags selects the input snapshot. A positional file argument wins
// over everything else.
type sourceFlags struct {
	kind     string
	snapshot string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "source", "", "input source: sample, expanded, file, mongo (default from config)")
	cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "snapshot id (mongo source)")
}

// sourceConfig merges the config [source] section with flags and args.
func (c *CLI) sourceConfig(f sourceFlags, args []string, strict bool) source.Config {
	cfg := c.Config.Source
	if f.kind != "" {
		cfg.Kind = source.Kind(f.kind)
	}
	if f.snapshot != "" {
		cfg.SnapshotID = f.snapshot
	}
	if len(args) > 0 {
		cfg.Kind = source.KindFile
		cfg.Path = args[0]
	}
	cfg.Strict = cfg.Strict || strict
	return cfg
}

// loadSnapshot opens the selected source and loads one snapshot from it.
func (c *CLI) loadSnapshot(ctx context.Context, f sourceFlags, args []string, strict bool) (source.Snapshot, error) {
	cfg := c.sourceConfig(f, args, strict)
	src, err := source.Open(ctx, cfg)
	if err != nil {
		return source.Snapshot{}, err
	}
	defer source.Close(ctx, src)

	snap, err := src.Load(ctx)
	if err != nil {
		return source.Snapshot{}, fmt.Errorf("load %s: %w", src, err)
	}
	c.Logger.Debug("loaded snapshot", "source", src, "id", snap.ID, "nodes", len(snap.Graph.Nodes))
	return snap, nil
}

// =============================================================================
// Options Flags
// =============================================================================

// optionFlags binds layout and analysis flags. Only flags the user set
// override the config file.
type optionFlags struct {
	opts runner.Options
}

func (f *optionFlags) register(cmd *cobra.Command) {
	d := runner.DefaultOptions()
	fl := cmd.Flags()
	fl.Float64Var(&f.opts.Width, "width", d.Width, "viewport width")
	fl.Float64Var(&f.opts.Height, "height", d.Height, "viewport height")
	fl.Float64Var(&f.opts.NodeWidth, "node-width", d.NodeWidth, "node width")
	fl.Float64Var(&f.opts.NodeHeight, "node-height", d.NodeHeight, "node height")
	fl.Float64Var(&f.opts.HorizontalSpacing, "horizontal-spacing", d.HorizontalSpacing, "horizontal spacing hint for renderers")
	fl.Float64Var(&f.opts.VerticalSpacing, "vertical-spacing", d.VerticalSpacing, "gap between ranks")
	fl.Float64Var(&f.opts.TopMargin, "top-margin", d.TopMargin, "margin above the first rank")
	fl.BoolVar(&f.opts.Strict, "strict", false, "reject dangling edges and cycles")
	fl.BoolVar(&f.opts.BreakCycles, "break-cycles", false, "remove back edges so every node is placed")
	fl.IntVar(&f.opts.TopN, "top", runner.DefaultTopN, "number of bottlenecks to report")
}

// resolve returns the config options overlaid with the flags that were set.
func (f *optionFlags) resolve(cmd *cobra.Command, cfg Config) runner.Options {
	opts := cfg.RunnerOptions()
	fl := cmd.Flags()
	if fl.Changed("width") {
		opts.Width = f.opts.Width
	}
	if fl.Changed("height") {
		opts.Height = f.opts.Height
	}
	if fl.Changed("node-width") {
		opts.NodeWidth = f.opts.NodeWidth
	}
	if fl.Changed("node-height") {
		opts.NodeHeight = f.opts.NodeHeight
	}
	if fl.Changed("horizontal-spacing") {
		opts.HorizontalSpacing = f.opts.HorizontalSpacing
	}
	if fl.Changed("vertical-spacing") {
		opts.VerticalSpacing = f.opts.VerticalSpacing
	}
	if fl.Changed("top-margin") {
		opts.TopMargin = f.opts.TopMargin
	}
	if fl.Changed("strict") {
		opts.Strict = f.opts.Strict
	}
	if fl.Changed("break-cycles") {
		opts.BreakCycles = f.opts.BreakCycles
	}
	if fl.Changed("top") {
		opts.TopN = f.opts.TopN
	}
	return opts
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pipegraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{runner.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
