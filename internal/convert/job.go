package convert

import "github.com/google/uuid"

// JobStatus is the local lifecycle state of an analysis job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobTimedOut  JobStatus = "timed_out"
)

// Job tracks one source PDF through submit, poll, and fetch. It is created
// pending and mutated only by the converter; once the status leaves
// JobPending it is terminal.
type Job struct {
	ID          string
	OperationID string
	SourcePath  string
	OutputPath  string
	Status      JobStatus
	Err         error
}

// NewJob creates a pending job for the given source and output paths.
func NewJob(sourcePath, outputPath string) *Job {
	return &Job{
		ID:         uuid.New().String(),
		SourcePath: sourcePath,
		OutputPath: outputPath,
		Status:     JobPending,
	}
}
