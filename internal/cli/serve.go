package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/runner"
	"github.com/matzehuels/pipegraph/pkg/server"
	"github.com/matzehuels/pipegraph/pkg/source"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		watch   bool
		noCache bool
		src     sourceFlags
		flags   optionFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [graph-file]",
		Short: "Serve layouts and analyses over HTTP",
		Long: `Serve layouts and analyses of one pipeline snapshot over HTTP.

The snapshot can be replaced with PUT /api/graph. With --watch and a file
source, the snapshot is reloaded whenever the file changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}
			opts := flags.resolve(cmd, c.Config)
			return c.runServe(cmd.Context(), src, args, cfg, opts, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the snapshot when the graph file changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, sf sourceFlags, args []string, cfg ServerConfig, opts runner.Options, noCache bool) error {
	src, err := source.Open(ctx, c.sourceConfig(sf, args, opts.Strict))
	if err != nil {
		return err
	}
	defer source.Close(context.Background(), src)

	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer r.Close()

	srv, err := server.New(ctx, server.Config{
		Addr:     cfg.Addr,
		Source:   src,
		Runner:   r,
		Defaults: &opts,
		Watch:    cfg.Watch,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}

	printSuccess("Serving %s", StyleHighlight.Render(src.String()))
	printKeyValue("Address", StyleLink.Render("http://"+cfg.Addr))
	printNewline()

	return srv.Serve(ctx)
}
