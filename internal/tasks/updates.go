package tasks

import (
	"fmt"

	"github.com/desertthunder/mgclone/internal/models"
)

// ProgressUpdate represents a progress event during a clone run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Jobs completed when the update was sent
	Total   int    // Total jobs in the run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data: the job or its outcome
}

// Operation phase enumeration
type Phase int

const (
	Download Phase = iota
	Upload
	JobDone
	JobFailed
	RunDone
)

func (p Phase) String() string {
	switch p {
	case Download:
		return "download"
	case Upload:
		return "upload"
	case JobDone:
		return "job_done"
	case JobFailed:
		return "job_failed"
	case RunDone:
		return "run_done"
	default:
		return ""
	}
}

func downloadUpdate(step, total int, job models.TransferJob) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Downloading %s...", job.Source()),
		Data:    job,
	}
}

func uploadUpdate(step, total int, job models.TransferJob, documents int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Uploading %d documents to %s...", documents, job.Target()),
		Data:    job,
	}
}

func outcomeUpdate(step, total int, outcome models.TransferOutcome) ProgressUpdate {
	if outcome.OK() {
		return ProgressUpdate{
			Phase:   JobDone,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✓ %s → %s (%d documents)", step, total, outcome.Source, outcome.Target, outcome.Documents),
			Data:    outcome,
		}
	}
	return ProgressUpdate{
		Phase:   JobFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, outcome.Source, outcome.Err),
		Data:    outcome,
	}
}

func runDoneUpdate(total, succeeded, failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunDone,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Clone finished: %d succeeded, %d failed", succeeded, failed),
	}
}
