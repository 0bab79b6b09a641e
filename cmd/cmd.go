// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func sourceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "source",
		Aliases: []string{"s"},
		Usage:   "Source cluster URI or @profile (defaults to [source] uri)",
	}
}

func targetFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "target",
		Aliases: []string{"t"},
		Usage:   "Target cluster URI or @profile (defaults to [target] uri)",
	}
}

// selectionFlags are shared by commands that edit a listing before using it.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Clone only db or db.collection (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Skip db or db.collection (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "rename-db",
			Usage: "Rename a database on the target, as old=new (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "rename-collection",
			Usage: "Rename a collection on the target, as db.old=new (repeatable)",
		},
		&cli.StringFlag{
			Name:  "plan",
			Usage: "Apply a TOML selection plan before the flags above",
		},
	}
}

// setupCommand handles setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the default template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the profile database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// listCommand prints the databases and collections of a cluster.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List databases and collections on a cluster",
		Flags: []cli.Flag{
			sourceFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.List,
	}
}

// cloneCommand handles clone runs.
func cloneCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clone",
		Usage: "Clone collections between clusters",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Clone the selected collections from source to target",
				Flags: append([]cli.Flag{
					sourceFlag(),
					targetFlag(),
					&cli.StringFlag{
						Name:    "report",
						Aliases: []string{"r"},
						Usage:   "Report format (text, json or csv)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the report to a file instead of stdout",
					},
				}, selectionFlags()...),
				Action: r.CloneRun,
			},
		},
	}
}

// planCommand handles selection plan files.
func planCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Selection plan operations",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Write the listing of a cluster as an editable TOML plan",
				Flags: append([]cli.Flag{
					sourceFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (stdout when empty)",
					},
				}, selectionFlags()...),
				Action: r.PlanExport,
			},
		},
	}
}

// profileCommand manages saved connection profiles.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage saved connection URIs (use as @name)",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Save a connection URI under a name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
					&cli.StringArg{Name: "uri"},
				},
				Action: r.ProfileAdd,
			},
			{
				Name:  "list",
				Usage: "List saved profiles",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProfileList,
			},
			{
				Name:  "remove",
				Usage: "Delete a saved profile",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.ProfileRemove,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive cloning.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for collection cloning",
		Flags:   []cli.Flag{sourceFlag(), targetFlag()},
		Action:  r.TUI,
	}
}
