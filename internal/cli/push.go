package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/source"
)

// pushCommand creates the push command that stores a snapshot in MongoDB.
func (c *CLI) pushCommand() *cobra.Command {
	var (
		mongo source.MongoConfig
		name  string
		src   sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "push [graph-file]",
		Short: "Store a pipeline snapshot in MongoDB",
		Long: `Store a pipeline snapshot in MongoDB.

The snapshot can then be served or analyzed with --source mongo. Without
--snapshot, the mongo source loads the most recently pushed snapshot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Source
			if mongo.URI == "" {
				mongo.URI = cfg.MongoURI
			}
			if mongo.Database == "" {
				mongo.Database = cfg.MongoDatabase
			}
			if mongo.Collection == "" {
				mongo.Collection = cfg.MongoCollection
			}
			return c.runPush(cmd.Context(), src, args, mongo, name)
		},
	}

	cmd.Flags().StringVar(&mongo.URI, "mongo-uri", "", "MongoDB connection string (default from config)")
	cmd.Flags().StringVar(&mongo.Database, "database", "", "database name (default "+source.DefaultMongoDatabase+")")
	cmd.Flags().StringVar(&mongo.Collection, "collection", "", "collection name (default "+source.DefaultMongoCollection+")")
	cmd.Flags().StringVar(&name, "name", "", "snapshot name (default: input name)")
	src.register(cmd)

	return cmd
}

func (c *CLI) runPush(ctx context.Context, src sourceFlags, args []string, cfg source.MongoConfig, name string) error {
	snap, err := c.loadSnapshot(ctx, src, args, false)
	if err != nil {
		return err
	}
	if name != "" {
		snap.Name = name
	}

	spinner := newSpinner(ctx, c.errOut, "Connecting to MongoDB...")
	spinner.Start()
	store, err := source.NewMongo(ctx, cfg)
	if err != nil {
		spinner.StopWithError("Connection failed")
		return err
	}
	defer store.Close(context.Background())

	spinner.SetMessage("Saving snapshot " + snap.Name + "...")
	if err := store.Save(ctx, snap); err != nil {
		spinner.StopWithError("Push failed")
		return fmt.Errorf("push snapshot: %w", err)
	}
	spinner.Stop()

	printSuccess("Pushed snapshot %s", StyleHighlight.Render(snap.ID.String()))
	printStats(len(snap.Graph.Nodes), len(snap.Graph.Edges), false)
	printNewline()
	printNextStep("Analyze", fmt.Sprintf("%s analyze --source mongo --snapshot %s", appName, snap.ID))
	return nil
}
