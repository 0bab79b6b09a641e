package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/shared"
	"golang.org/x/time/rate"
)

// Downloader reads a whole collection. Implemented by cluster.Client.
type Downloader interface {
	Download(ctx context.Context, database, collection string) ([]models.Document, error)
}

// Uploader bulk inserts documents into a collection. Implemented by cluster.Client.
type Uploader interface {
	Upload(ctx context.Context, database, collection string, documents []models.Document) error
}

// EngineOptions configures a [CloneEngine].
type EngineOptions struct {
	RateLimit float64 // Job launches per second; 0 means unlimited
	Logger    *log.Logger
}

// CloneEngine turns a selection into independent transfer jobs.
type CloneEngine struct {
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewCloneEngine creates a new [CloneEngine].
func NewCloneEngine(opts EngineOptions) *CloneEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	e := &CloneEngine{logger: shared.WithLogger(opts.Logger, "component", "clone")}
	if opts.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return e
}

// BuildJobs returns one job per selected collection, in summary order. Targets use the renamed values.
func BuildJobs(summary models.ClusterSummary) []models.TransferJob {
	jobs := make([]models.TransferJob, 0, summary.SelectedCount())
	for _, db := range summary {
		for _, c := range db.Collections {
			if c.Selected {
				jobs = append(jobs, models.NewTransferJob(db.Identity, c))
			}
		}
	}
	return jobs
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CloneEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Start snapshots summary, launches one goroutine per selected collection, and returns without waiting.
//
// Each job downloads from source and, only if that succeeded, uploads to target. A failed job never
// affects the others. Jobs run detached from ctx's cancellation: once started, a run always completes.
func (e *CloneEngine) Start(
	ctx context.Context,
	source Downloader,
	target Uploader,
	summary models.ClusterSummary,
	progress chan<- ProgressUpdate,
) *Run {
	jobs := BuildJobs(summary.Snapshot())
	run := newRun(jobs)
	ctx = context.WithoutCancel(ctx)

	e.logger.Info("starting clone run", "jobs", len(jobs))
	if len(jobs) == 0 {
		e.sendProgress(progress, runDoneUpdate(0, 0, 0))
		return run
	}

	for i, job := range jobs {
		go e.runJob(ctx, run, i, job, source, target, progress)
	}
	return run
}

func (e *CloneEngine) runJob(
	ctx context.Context,
	run *Run,
	i int,
	job models.TransferJob,
	source Downloader,
	target Uploader,
	progress chan<- ProgressUpdate,
) {
	outcome := e.transfer(ctx, run, job, source, target, progress)

	completed, ok := run.record(i, outcome)
	if !ok {
		return
	}
	e.sendProgress(progress, outcomeUpdate(completed, run.Total(), outcome))

	if outcome.OK() {
		e.logger.Debug("job finished", "source", outcome.Source, "target", outcome.Target, "documents", outcome.Documents)
	} else {
		e.logger.Warn("job failed", "source", outcome.Source, "target", outcome.Target, "error", outcome.Err)
	}

	if run.report() {
		e.logger.Info("clone run finished", "succeeded", run.Succeeded(), "failed", run.Failed(), "elapsed", run.Elapsed())
		e.sendProgress(progress, runDoneUpdate(run.Total(), run.Succeeded(), run.Failed()))
		run.finish()
	}
}

func (e *CloneEngine) transfer(
	ctx context.Context,
	run *Run,
	job models.TransferJob,
	source Downloader,
	target Uploader,
	progress chan<- ProgressUpdate,
) models.TransferOutcome {
	outcome := models.TransferOutcome{Source: job.Source(), Target: job.Target()}

	if source == nil || target == nil {
		outcome.Err = fmt.Errorf("%w: source and target clients are required", shared.ErrMissingArgument)
		return outcome
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			outcome.Err = fmt.Errorf("%w: %s: %w", shared.ErrTransfer, job.Source(), err)
			return outcome
		}
	}

	e.sendProgress(progress, downloadUpdate(run.Completed(), run.Total(), job))
	documents, err := source.Download(ctx, job.SourceDB, job.SourceCollection)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Documents = len(documents)

	e.sendProgress(progress, uploadUpdate(run.Completed(), run.Total(), job, len(documents)))
	if err := target.Upload(ctx, job.TargetDB, job.TargetCollection, documents); err != nil {
		outcome.Err = err
	}
	return outcome
}
