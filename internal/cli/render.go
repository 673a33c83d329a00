package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/runner"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output file (single format) or base path (multiple)
	formats   string // comma-separated output formats
	detailed  bool   // show duration and platform in node labels
	pinned    bool   // pin nodes to their computed positions
	noOverlay bool   // disable critical path and bottleneck styling
	noCache   bool
}

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ro    renderOpts
		src   sourceFlags
		flags optionFlags
	)

	cmd := &cobra.Command{
		Use:   "render [graph-file]",
		Short: "Render a pipeline graph to SVG, DOT or JSON",
		Long: `Render a pipeline graph to SVG, DOT or JSON.

Critical edges are drawn bold red, optional edges dashed, and bottleneck
nodes get a thick orange border. Use --pinned to keep the computed layout
positions instead of letting Graphviz place the nodes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.resolve(cmd, c.Config)
			opts.Formats = parseFormats(ro.formats)
			opts.Detailed = ro.detailed
			opts.Pinned = ro.pinned
			opts.NoOverlay = ro.noOverlay
			if err := runner.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), src, args, opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&ro.detailed, "detailed", false, "show duration and platform in node labels")
	cmd.Flags().BoolVar(&ro.pinned, "pinned", false, "pin nodes to the computed layout positions")
	cmd.Flags().BoolVar(&ro.noOverlay, "no-overlay", false, "disable critical path and bottleneck highlighting")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, src sourceFlags, args []string, opts runner.Options, ro renderOpts) error {
	snap, err := c.loadSnapshot(ctx, src, args, opts.Strict)
	if err != nil {
		return err
	}

	r, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer r.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, c.errOut, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()

	result, err := r.Execute(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	prog.done("Rendered " + snap.Name)

	base := defaultBase(args, snap.Name)
	paths := outputPaths(ro.output, base, opts.Formats)
	printSuccess("Rendered %s", StyleHighlight.Render(snap.Name))
	for _, format := range opts.Formats {
		path := paths[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	if n := len(result.Layout.Unranked); n > 0 {
		printWarning("%d node(s) on a cycle were not placed; try --break-cycles", n)
	}
	return nil
}

// defaultBase derives the output base path from the input file, or the
// snapshot name for non-file sources.
func defaultBase(args []string, name string) string {
	if len(args) > 0 {
		return strings.TrimSuffix(args[0], filepath.Ext(args[0]))
	}
	return name
}

// outputPaths maps each format to its output file. A single format with an
// explicit output uses that path verbatim; otherwise the output (or base)
// is used as a base path with the format as extension.
func outputPaths(output, base string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
