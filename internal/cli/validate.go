package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/dag/transform"
	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
)

// validateCommand creates the validate command that checks a graph for
// schema and structure problems.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		strict bool
		src    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "validate [graph-file]",
		Short: "Check a pipeline graph for schema and structure problems",
		Long: `Check a pipeline graph for schema and structure problems.

Schema errors (unknown status, duplicate ids, negative durations) always
fail. Dangling edges and cycles are reported as warnings, or as errors with
--strict.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), src, args, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat dangling edges and cycles as errors")
	src.register(cmd)

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, src sourceFlags, args []string, strict bool) error {
	// Schema problems fail at load; structure is checked below.
	snap, err := c.loadSnapshot(ctx, src, args, false)
	if err != nil {
		return err
	}

	d, report := graph.ToDAG(snap.Graph)
	ranking := transform.AssignRanks(d)

	printInfo("%s", snap.Origin)
	printStats(len(snap.Graph.Nodes), len(snap.Graph.Edges), false)

	var problems []string
	if n := len(report.DanglingEdges); n > 0 {
		printWarning("%d dangling edge(s): %s", n, strings.Join(report.DanglingEdges, ", "))
		problems = append(problems, "dangling edges")
	}
	if n := len(ranking.Unranked); n > 0 {
		printWarning("%d node(s) on or behind a cycle: %s", n, strings.Join(ranking.Unranked, ", "))
		problems = append(problems, "cycles")
	}

	if len(problems) == 0 {
		printSuccess("Graph is valid")
		return nil
	}
	if strict {
		code := errors.ErrCodeDanglingEdge
		if len(report.DanglingEdges) == 0 {
			code = errors.ErrCodeCycleDetected
		}
		return errors.New(code, "graph has %s", strings.Join(problems, " and "))
	}
	printSuccess("Graph is usable (best effort layout)")
	return nil
}
