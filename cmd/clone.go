package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mgclone/internal/formatter"
	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/plan"
	"github.com/desertthunder/mgclone/internal/shared"
	"github.com/desertthunder/mgclone/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CloneRun lists the source, applies the selection, clones every selected collection and prints a report.
//
// It returns an error after the report when any job failed.
func (r *Runner) CloneRun(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("report")
	if !formatter.IsFormat(format) {
		return fmt.Errorf("%w: unknown report format %q (want text, json or csv)", shared.ErrInvalidArgument, format)
	}

	source, err := r.connect(ctx, cmd, "source", r.config.Source.URI)
	if err != nil {
		return err
	}
	defer r.closeCluster(ctx, source)

	target, err := r.connect(ctx, cmd, "target", r.config.Target.URI)
	if err != nil {
		return err
	}
	defer r.closeCluster(ctx, target)

	listings, err := source.ListDatabasesAndCollections(ctx)
	if err != nil {
		return err
	}
	summary := models.NewClusterSummary(listings)
	if err := r.applySelection(cmd, summary); err != nil {
		return err
	}

	engine := tasks.NewCloneEngine(tasks.EngineOptions{RateLimit: r.config.Clone.RateLimit, Logger: r.logger})
	progress := make(chan tasks.ProgressUpdate, 64)
	run := engine.Start(ctx, source, target, summary, progress)

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		r.printProgress(run.Done(), progress)
	}()

	outcomes, err := run.Wait(ctx)
	if err != nil {
		return fmt.Errorf("clone interrupted after %d of %d jobs: %w", run.Completed(), run.Total(), err)
	}
	<-printed

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteReportFile(path, format, outcomes); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
	} else if err := formatter.WriteReport(r.output, format, outcomes); err != nil {
		return err
	}

	if run.Failed() > 0 {
		return fmt.Errorf("%w: %d of %d jobs failed", shared.ErrTransfer, run.Failed(), run.Total())
	}
	return nil
}

// applySelection edits summary with the --plan file and then the selection flags.
func (r *Runner) applySelection(cmd *cli.Command, summary models.ClusterSummary) error {
	if path := cmd.String("plan"); path != "" {
		p, err := plan.Load(path)
		if err != nil {
			return err
		}
		if err := p.Apply(summary); err != nil {
			return err
		}
		r.logger.Debug("applied plan", "path", path)
	}

	opts := plan.Options{
		Include:          cmd.StringSlice("include"),
		Exclude:          cmd.StringSlice("exclude"),
		RenameDatabase:   cmd.StringSlice("rename-db"),
		RenameCollection: cmd.StringSlice("rename-collection"),
	}
	return opts.Apply(summary)
}

// printProgress logs updates until done is closed, then logs whatever is still buffered.
func (r *Runner) printProgress(done <-chan struct{}, progress <-chan tasks.ProgressUpdate) {
	for {
		select {
		case update := <-progress:
			r.logProgress(update)
		case <-done:
			for {
				select {
				case update := <-progress:
					r.logProgress(update)
				default:
					return
				}
			}
		}
	}
}

func (r *Runner) logProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.JobFailed:
		r.logger.Warn(update.Message, "step", update.Step, "total", update.Total)
	case tasks.RunDone:
		r.logger.Info(update.Message)
	default:
		r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
	}
}
