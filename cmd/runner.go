package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mgclone/internal/cluster"
	"github.com/desertthunder/mgclone/internal/repositories"
	"github.com/desertthunder/mgclone/internal/shared"
	"github.com/desertthunder/mgclone/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	dial       ui.Dialer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // Loaded from --config before each command when nil
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Dial       ui.Dialer // Defaults to dialing real clusters with the [mongo] config
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		dial:       opts.Dial,
	}
	if r.dial == nil {
		r.dial = r.dialCluster
	}
	return r
}

// command builds the root command with global flags.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "mgclone",
		Usage:   "Clone MongoDB collections between clusters",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, listCommand, cloneCommand, planCommand, profileCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the configuration and applies the log level ahead of any command action.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil || cmd.IsSet("config") {
		r.configPath = cmd.String("config")
		config, err := shared.LoadConfigOrDefault(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	if level != "" {
		if err := shared.SetLogLevelString(r.logger, level); err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// dialCluster connects a cluster client using the [mongo] and [clone] config tables.
func (r *Runner) dialCluster(ctx context.Context, uri string) (ui.Cluster, error) {
	client, err := cluster.Connect(ctx, uri, r.config.Mongo, cluster.Options{
		QueueSize: r.config.Clone.QueueSize,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// openStore opens the profile database, applying pending migrations.
func (r *Runner) openStore() (*sql.DB, error) {
	return shared.OpenProfileStore(r.config.Database)
}

// resolveURI expands an @name reference to the URI of the saved profile.
func (r *Runner) resolveURI(value string) (string, error) {
	name, ok := strings.CutPrefix(value, "@")
	if !ok {
		return value, nil
	}

	db, err := r.openStore()
	if err != nil {
		return "", err
	}
	defer db.Close()

	profile, err := repositories.NewProfileRepository(db).GetByName(name)
	if err != nil {
		return "", err
	}
	return profile.URI(), nil
}

// endpoint reads a URI flag, falling back to fallback, and resolves profile references.
func (r *Runner) endpoint(cmd *cli.Command, flag, fallback string) (string, error) {
	value := cmd.String(flag)
	if value == "" {
		value = fallback
	}
	if value == "" {
		return "", fmt.Errorf("%w: --%s is required", shared.ErrMissingArgument, flag)
	}
	return r.resolveURI(value)
}

// connect resolves the URI named by flag and dials it.
func (r *Runner) connect(ctx context.Context, cmd *cli.Command, flag, fallback string) (ui.Cluster, error) {
	uri, err := r.endpoint(cmd, flag, fallback)
	if err != nil {
		return nil, err
	}
	return r.dial(ctx, uri)
}

func (r *Runner) closeCluster(ctx context.Context, c ui.Cluster) {
	if err := c.Close(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn("failed to close cluster client", "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return r.writeBytes(output)
}

// writeBytes writes data, adding a trailing newline when missing.
func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		if _, err := r.output.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
