package main

import (
	"context"

	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/plan"
	"github.com/urfave/cli/v3"
)

// PlanExport writes the source listing, with any selection flags applied, as a TOML plan.
func (r *Runner) PlanExport(ctx context.Context, cmd *cli.Command) error {
	source, err := r.connect(ctx, cmd, "source", r.config.Source.URI)
	if err != nil {
		return err
	}
	defer r.closeCluster(ctx, source)

	listings, err := source.ListDatabasesAndCollections(ctx)
	if err != nil {
		return err
	}
	summary := models.NewClusterSummary(listings)
	if err := r.applySelection(cmd, summary); err != nil {
		return err
	}

	p := plan.Export(summary)
	if path := cmd.String("output"); path != "" {
		if err := plan.Write(path, p); err != nil {
			return err
		}
		r.logger.Info("plan written", "path", path, "databases", len(p.Databases))
		return r.writePlain("✓ Plan for %d databases written to %s\n", len(p.Databases), path)
	}

	data, err := plan.Encode(p)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}
