package docintel

import "fmt"

// SubmissionError indicates the analyze POST itself failed: transport error,
// non-2xx response, or a response missing the Operation-Location header.
// Submission is not retried; a failed submit is fatal to the job.
type SubmissionError struct {
	StatusCode int    // 0 when the request never completed
	Detail     string // response body excerpt or transport error text
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submission failed (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("submission failed: %s", e.Detail)
}

// AnalysisError indicates the service reported the operation as failed. The
// service-provided diagnostic payload is carried through to the caller.
type AnalysisError struct {
	OperationID string
	Code        string
	Message     string
}

func (e *AnalysisError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("analysis %s failed: %s: %s", e.OperationID, e.Code, e.Message)
	}
	return fmt.Sprintf("analysis %s failed", e.OperationID)
}

// DownloadError indicates the result artifact could not be retrieved or
// persisted locally.
type DownloadError struct {
	OperationID string
	Err         error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download for %s failed: %v", e.OperationID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
