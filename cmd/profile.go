package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/repositories"
	"github.com/desertthunder/mgclone/internal/shared"
	"github.com/urfave/cli/v3"
)

type profileJSON struct {
	Name      string `json:"name"`
	URI       string `json:"uri"`
	CreatedAt string `json:"created_at"`
}

// ProfileAdd saves a connection URI under a name.
func (r *Runner) ProfileAdd(ctx context.Context, cmd *cli.Command) error {
	name, uri := cmd.StringArg("name"), cmd.StringArg("uri")
	if name == "" || uri == "" {
		return fmt.Errorf("%w: usage: profile add NAME URI", shared.ErrMissingArgument)
	}
	if _, err := shared.ParseURI(uri); err != nil {
		return err
	}

	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	profile := models.NewProfile(0, name, uri)
	if err := repositories.NewProfileRepository(db).Create(profile); err != nil {
		return err
	}
	r.logger.Info("profile saved", "name", name, "uri", shared.RedactURI(uri))
	return r.writePlain("✓ Saved profile %s (use as @%s)\n", name, name)
}

// ProfileList prints saved profiles with redacted URIs.
func (r *Runner) ProfileList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	profiles, err := repositories.NewProfileRepository(db).List(nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]profileJSON, len(profiles))
		for i, p := range profiles {
			out[i] = profileJSON{Name: p.Name(), URI: shared.RedactURI(p.URI()), CreatedAt: p.CreatedAt().Format(time.RFC3339)}
		}
		return r.writeJSON(out, true)
	}

	if len(profiles) == 0 {
		return r.writePlain("No profiles saved\n")
	}
	for _, p := range profiles {
		if err := r.writePlain("%-20s %s\n", p.Name(), shared.RedactURI(p.URI())); err != nil {
			return err
		}
	}
	return nil
}

// ProfileRemove deletes the named profile.
func (r *Runner) ProfileRemove(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: usage: profile remove NAME", shared.ErrMissingArgument)
	}

	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewProfileRepository(db)
	profile, err := repo.GetByName(name)
	if err != nil {
		return err
	}
	if err := repo.Delete(profile.ID()); err != nil {
		return err
	}
	r.logger.Info("profile removed", "name", name)
	return r.writePlain("✓ Removed profile %s\n", name)
}
