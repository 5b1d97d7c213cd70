// Package models defines the data carried through the media upload pipeline.
package models

import "time"

// JobState is the lifecycle position of a single UploadJob.
type JobState string

const (
	JobPending         JobState = "pending"
	JobInFlight        JobState = "in_flight"
	JobSucceeded       JobState = "succeeded"
	JobFailedTerminal  JobState = "failed_terminal"
	JobFailedRetryable JobState = "failed_retryable"
)

// UploadJob is one asset's journey through the pipeline.
type UploadJob struct {
	// Index is the position in the original submission. Results are
	// reassembled by Index regardless of completion order.
	Index int

	// SourceRef is the local asset handle (a path or file:// URI).
	SourceRef string

	// OwnerID namespaces the destination path.
	OwnerID string

	// TargetPath is assigned once and reused by every retry, which makes the
	// write idempotent.
	TargetPath string

	// Attempt counts retries; it starts at 0.
	Attempt int

	State JobState

	// ResultURL is set only when State is JobSucceeded.
	ResultURL string

	// Err holds the terminal error for failed jobs.
	Err error
}

// UploadBatch is the unit returned by the orchestrator.
type UploadBatch struct {
	OwnerID   string
	Jobs      []*UploadJob
	CreatedAt time.Time
}

// NewBatch tags sourceRefs with their submission index.
func NewBatch(ownerID string, sourceRefs []string) *UploadBatch {
	jobs := make([]*UploadJob, len(sourceRefs))
	for i, ref := range sourceRefs {
		jobs[i] = &UploadJob{
			Index:     i,
			SourceRef: ref,
			OwnerID:   ownerID,
			State:     JobPending,
		}
	}
	return &UploadBatch{OwnerID: ownerID, Jobs: jobs, CreatedAt: time.Now().UTC()}
}

// URLs returns the result URLs of succeeded jobs in submission order.
func (b *UploadBatch) URLs() []string {
	urls := make([]string, 0, len(b.Jobs))
	for _, j := range b.Jobs {
		if j.State == JobSucceeded && j.ResultURL != "" {
			urls = append(urls, j.ResultURL)
		}
	}
	return urls
}
