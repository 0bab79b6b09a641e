package models

// TransferJob describes one collection copy from source to target.
type TransferJob struct {
	SourceDB         string
	SourceCollection string
	TargetDB         string
	TargetCollection string
}

// NewTransferJob derives a job from a database and one of its collection entries.
func NewTransferJob(db DatabaseIdentity, c CollectionEntry) TransferJob {
	return TransferJob{
		SourceDB:         db.Name,
		SourceCollection: c.Name,
		TargetDB:         db.Rename,
		TargetCollection: c.Rename,
	}
}

// Source returns the "db.collection" label of the job's source.
func (j TransferJob) Source() string { return j.SourceDB + "." + j.SourceCollection }

// Target returns the "db.collection" label of the job's target.
func (j TransferJob) Target() string { return j.TargetDB + "." + j.TargetCollection }

// TransferOutcome is the terminal result of exactly one [TransferJob].
type TransferOutcome struct {
	Source    string // Source label (db.collection)
	Target    string // Target label (db.collection)
	Documents int    // Documents downloaded from the source
	Err       error  // nil on success
}

// OK reports whether the job succeeded.
func (o TransferOutcome) OK() bool { return o.Err == nil }
