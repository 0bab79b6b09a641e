package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mgclone/internal/shared"
	"github.com/desertthunder/mgclone/internal/tasks"
	"github.com/desertthunder/mgclone/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for collection cloning.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	sourceURI, err := r.endpoint(cmd, "source", r.config.Source.URI)
	if err != nil {
		return err
	}
	targetURI, err := r.endpoint(cmd, "target", r.config.Target.URI)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.Options{
		SourceURI: sourceURI,
		TargetURI: targetURI,
		Dial:      r.dial,
		Engine:    tasks.NewCloneEngine(tasks.EngineOptions{RateLimit: r.config.Clone.RateLimit, Logger: fileLogger}),
		Logger:    fileLogger,
	})
	defer func() {
		if err := model.Close(context.WithoutCancel(ctx)); err != nil {
			fileLogger.Warn("failed to close clients", "error", err)
		}
	}()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
