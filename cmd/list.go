package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mgclone/internal/formatter"
	"github.com/desertthunder/mgclone/internal/models"
	"github.com/urfave/cli/v3"
)

// List prints every database and collection on the source cluster.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	source, err := r.connect(ctx, cmd, "source", r.config.Source.URI)
	if err != nil {
		return err
	}
	defer r.closeCluster(ctx, source)

	listings, err := source.ListDatabasesAndCollections(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("listed cluster", "databases", len(listings))

	if cmd.Bool("json") {
		data, err := formatter.ListingToJSON(listings)
		if err != nil {
			return fmt.Errorf("failed to format listing: %w", err)
		}
		return r.writeBytes(data)
	}
	return r.writeBytes(formatter.ListingToText(models.NewClusterSummary(listings)))
}
