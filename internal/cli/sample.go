package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/sample"
)

// sampleCommand creates the sample command that prints a built-in dataset.
func (c *CLI) sampleCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:       "sample [sample|expanded]",
		Short:     "Print a built-in pipeline dataset",
		ValidArgs: sample.Names,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := sample.Names[0]
			if len(args) > 0 {
				name = args[0]
			}
			g, ok := sample.ByName(name)
			if !ok {
				return fmt.Errorf("unknown dataset %q", name)
			}

			if output != "" && !cmd.Flags().Changed("format") {
				if err := graph.WriteFile(g, output); err != nil {
					return err
				}
				printSuccess("Wrote %s dataset", name)
				printFile(output)
				printNewline()
				printNextStep("Analyze", appName+" analyze "+output)
				return nil
			}

			f, err := graph.ParseFormat(format)
			if err != nil {
				return err
			}
			w := c.out
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return graph.Write(g, w, f)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format from extension unless --format is set)")
	cmd.Flags().StringVarP(&format, "format", "f", string(graph.FormatJSON), "output format: json, yaml, toml")

	return cmd
}
