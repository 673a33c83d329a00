package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pipegraph/pkg/runner"
	"github.com/matzehuels/pipegraph/pkg/server"
	"github.com/matzehuels/pipegraph/pkg/source"
)

// Cache backends selectable in [cache].
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Config is the optional TOML config file. Every value can be overridden
// by a flag.
//
//	[layout]
//	width = 1600
//	strict = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[source]
//	kind = "file"
//	path = "pipeline.yaml"
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Analysis AnalysisConfig `toml:"analysis"`
	Cache    CacheConfig    `toml:"cache"`
	Source   source.Config  `toml:"source"`
	Server   ServerConfig   `toml:"server"`
}

// LayoutConfig is the [layout] section.
type LayoutConfig struct {
	Width             float64 `toml:"width"`
	Height            float64 `toml:"height"`
	NodeWidth         float64 `toml:"node_width"`
	NodeHeight        float64 `toml:"node_height"`
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
	TopMargin         float64 `toml:"top_margin"`
	Strict            bool    `toml:"strict"`
	BreakCycles       bool    `toml:"break_cycles"`
}

// AnalysisConfig is the [analysis] section.
type AnalysisConfig struct {
	TopN int `toml:"top_n"`
}

// CacheConfig is the [cache] section.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	// Namespace scopes every cache key, so deployments can share a backend.
	Namespace string `toml:"namespace"`
	// TTL overrides the per-object TTLs, e.g. "12h".
	TTL duration `toml:"ttl"`
}

// ServerConfig is the [server] section.
type ServerConfig struct {
	Addr  string `toml:"addr"`
	Watch bool   `toml:"watch"`
}

// duration decodes TOML strings like "90m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() Config {
	d := runner.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			Width:             d.Width,
			Height:            d.Height,
			NodeWidth:         d.NodeWidth,
			NodeHeight:        d.NodeHeight,
			HorizontalSpacing: d.HorizontalSpacing,
			VerticalSpacing:   d.VerticalSpacing,
			TopMargin:         d.TopMargin,
		},
		Analysis: AnalysisConfig{TopN: d.TopN},
		Cache:  CacheConfig{Backend: cacheBackendFile},
		Source: source.Config{Kind: source.KindSample},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// configPath returns the config file location using XDG standard
// (~/.config/pipegraph/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file at path over the defaults. A missing
// file is only an error when explicit is true.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}

// RunnerOptions converts the layout and analysis sections to runner options.
func (c Config) RunnerOptions() runner.Options {
	return runner.Options{
		Width:             c.Layout.Width,
		Height:            c.Layout.Height,
		NodeWidth:         c.Layout.NodeWidth,
		NodeHeight:        c.Layout.NodeHeight,
		HorizontalSpacing: c.Layout.HorizontalSpacing,
		VerticalSpacing:   c.Layout.VerticalSpacing,
		TopMargin:         c.Layout.TopMargin,
		Strict:            c.Layout.Strict,
		BreakCycles:       c.Layout.BreakCycles,
		TopN:              c.Analysis.TopN,
	}
}
