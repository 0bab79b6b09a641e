// Package tasks runs clone operations between two clusters with non-blocking progress reporting.
//
// # Clone Runs
//
// [CloneEngine.Start] takes a [models.ClusterSummary], snapshots it, and builds one [models.TransferJob]
// per selected collection with [BuildJobs]. Each job runs in its own goroutine:
//
//  1. Download the whole source collection through a [Downloader]
//  2. Upload the documents to the renamed target through an [Uploader], only if the download succeeded
//  3. Record exactly one [models.TransferOutcome]
//
// Jobs are independent. A failure is recorded in that job's outcome and never stops its siblings.
// Launches can be paced with [EngineOptions.RateLimit].
//
// # Progress Reporting
//
// [Run] is the aggregator returned by Start. [Run.Poll] returns the outcomes recorded so far in
// completion order and never blocks, so a render loop can call it every frame. Each job also has a
// write-once [Future] available through [Run.Handles].
//
// Optional [ProgressUpdate] values are sent on a channel with select/default so a slow reader never
// stalls a job.
package tasks
