package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/runner"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		src     sourceFlags
		flags   optionFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph-file]",
		Short: "Compute the layered layout of a pipeline graph",
		Long: `Compute the layered layout of a pipeline graph.

Nodes are ranked by their longest path from a source and spread evenly
across the viewport width. The output is the layout as JSON: positions,
ranks, canvas height, and any nodes that could not be placed.

Without a file argument the configured source is used (the built-in
sample by default). Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.resolve(cmd, c.Config)
			return c.runLayout(cmd.Context(), src, args, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, or stdout for non-file sources)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, src sourceFlags, args []string, opts runner.Options, output string, noCache bool) error {
	snap, err := c.loadSnapshot(ctx, src, args, opts.Strict)
	if err != nil {
		return err
	}

	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer r.Close()

	l, cacheHit, err := r.LayoutWithCacheInfo(ctx, snap.Graph, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	outputPath := output
	if outputPath == "" && len(args) > 0 {
		base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
		outputPath = base + ".layout.json"
	}
	if outputPath == "" || outputPath == "-" {
		_, err := fmt.Fprintln(c.out, string(data))
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(snap.Graph.Nodes), len(snap.Graph.Edges), cacheHit)
	if n := len(l.Unranked); n > 0 {
		printWarning("%d node(s) on a cycle were not placed: %s", n, strings.Join(l.Unranked, ", "))
	}
	if n := len(l.DanglingEdges); n > 0 {
		printWarning("%d edge(s) reference unknown nodes: %s", n, strings.Join(l.DanglingEdges, ", "))
	}
	if n := len(l.InvalidNodes); n > 0 {
		printWarning("%d node(s) without an ID were skipped: %s", n, strings.Join(l.InvalidNodes, ", "))
	}
	printNewline()
	if len(args) > 0 {
		printNextStep("Render", appName+" render "+args[0])
	}

	return nil
}
