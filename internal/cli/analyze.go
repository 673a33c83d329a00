package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/runner"
)

// analyzeCommand creates the analyze command that reports the critical path
// and bottlenecks.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
		src     sourceFlags
		flags   optionFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze [graph-file]",
		Short: "Report the critical path, longest path and bottlenecks",
		Long: `Report the critical path, longest path and bottlenecks of a pipeline graph.

The critical path collects every node touching an edge marked critical.
Bottlenecks are the slowest nodes by duration. The longest path is the
duration-weighted longest chain, available only for acyclic graphs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.resolve(cmd, c.Config)
			return c.runAnalyze(cmd.Context(), src, args, opts, asJSON, noCache)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, src sourceFlags, args []string, opts runner.Options, asJSON, noCache bool) error {
	snap, err := c.loadSnapshot(ctx, src, args, opts.Strict)
	if err != nil {
		return err
	}

	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer r.Close()

	s, cacheHit, err := r.AnalyzeWithCacheInfo(ctx, snap.Graph, opts)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.out, string(data))
		return err
	}

	printSuccess("Analysis of %s", StyleHighlight.Render(snap.Name))
	printStats(s.NodeCount, s.EdgeCount, cacheHit)
	printNewline()

	printKeyValue("Critical path", formatPath(s.CriticalPath))
	if s.LongestPath != nil {
		printKeyValue("Longest path", fmt.Sprintf("%s  %s",
			formatPath(s.LongestPath.Nodes),
			StyleNumber.Render(graph.FormatDuration(s.LongestPath.Duration))))
	} else if s.Cyclic {
		printKeyValue("Longest path", StyleWarning.Render("graph has a cycle"))
	}
	printKeyValue("Total duration", fmt.Sprintf("%s across %d timed node(s)", graph.FormatDuration(s.TotalDuration), s.Timed))
	printKeyValue("Resources", fmt.Sprintf("%g CPU · %g memory", s.Resources.CPU, s.Resources.Memory))
	printNewline()

	if len(s.Bottlenecks) == 0 {
		printInfo("No timed nodes, no bottlenecks")
		return nil
	}
	printInfo("Top %d bottleneck(s)", len(s.Bottlenecks))
	printNodeTable(c.out, snap.Graph, s.Bottlenecks)
	return nil
}
