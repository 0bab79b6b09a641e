package tasks

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertthunder/mgclone/internal/models"
)

// Run tracks the outcomes of one clone run.
//
// Outcomes are published through a copy-on-write slice so readers never take a lock: every [Run.Poll]
// sees a prefix of the completion order and later polls only ever extend it.
type Run struct {
	jobs      []models.TransferJob
	handles   []*Future[models.TransferOutcome]
	outcomes  atomic.Pointer[[]models.TransferOutcome]
	succeeded atomic.Int64
	failed    atomic.Int64
	startedAt time.Time
	reported  atomic.Int64 // outcomes whose job done update has been sent

	mu   sync.Mutex // serializes writers
	done chan struct{}
}

func newRun(jobs []models.TransferJob) *Run {
	r := &Run{
		jobs:      jobs,
		handles:   make([]*Future[models.TransferOutcome], len(jobs)),
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
	for i := range r.handles {
		r.handles[i] = newFuture[models.TransferOutcome]()
	}
	empty := []models.TransferOutcome{}
	r.outcomes.Store(&empty)
	if len(jobs) == 0 {
		close(r.done)
	}
	return r
}

// record publishes the outcome of job i. Only the first outcome for a job is kept.
func (r *Run) record(i int, outcome models.TransferOutcome) (completed int, stored bool) {
	if !r.handles[i].set(outcome) {
		return 0, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.outcomes.Load()
	next := make([]models.TransferOutcome, len(current), len(current)+1)
	copy(next, current)
	next = append(next, outcome)
	r.outcomes.Store(&next)

	if outcome.OK() {
		r.succeeded.Add(1)
	} else {
		r.failed.Add(1)
	}
	return len(next), true
}

// report counts one sent job done update and reports whether it was the last.
func (r *Run) report() (last bool) { return r.reported.Add(1) == int64(len(r.jobs)) }

// finish closes Done. The engine calls it once, after every outcome and its updates are sent.
func (r *Run) finish() { close(r.done) }

// Poll returns every outcome available so far in completion order. It never blocks.
func (r *Run) Poll() []models.TransferOutcome {
	return slices.Clone(*r.outcomes.Load())
}

// Total returns the number of jobs in the run.
func (r *Run) Total() int { return len(r.jobs) }

// Completed returns the number of jobs with an outcome.
func (r *Run) Completed() int { return len(*r.outcomes.Load()) }

// Succeeded returns the number of jobs that finished without error.
func (r *Run) Succeeded() int { return int(r.succeeded.Load()) }

// Failed returns the number of jobs that finished with an error.
func (r *Run) Failed() int { return int(r.failed.Load()) }

// Progress returns Completed/Total, or 1 for an empty run.
func (r *Run) Progress() float64 {
	if len(r.jobs) == 0 {
		return 1
	}
	return float64(r.Completed()) / float64(len(r.jobs))
}

// Jobs returns the jobs in launch order.
func (r *Run) Jobs() []models.TransferJob { return slices.Clone(r.jobs) }

// Handles returns one write-once result slot per job, index-aligned with [Run.Jobs].
func (r *Run) Handles() []*Future[models.TransferOutcome] { return slices.Clone(r.handles) }

// Elapsed returns the time since the run started.
func (r *Run) Elapsed() time.Duration { return time.Since(r.startedAt) }

// Done is closed once every job has an outcome and the final progress updates are sent.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until every job has an outcome or ctx ends, then returns the outcomes recorded so far.
func (r *Run) Wait(ctx context.Context) ([]models.TransferOutcome, error) {
	select {
	case <-r.done:
		return r.Poll(), nil
	case <-ctx.Done():
		return r.Poll(), ctx.Err()
	}
}
