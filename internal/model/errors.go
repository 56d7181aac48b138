package model

import "fmt"

// FailureKind classifies job-level failures. Only a fetch failure is
// fatal to the job; the post-processing kinds degrade to skipping their
// stage.
type FailureKind string

const (
	FailureFetch     FailureKind = "fetch"
	FailureTranscode FailureKind = "transcode"
	FailureTrim      FailureKind = "trim"
	FailureSubtitles FailureKind = "subtitles"
)

// Fatal reports whether the failure kind aborts the job.
func (k FailureKind) Fatal() bool {
	return k == FailureFetch
}

// ErrorRecord captures what went wrong and at which pipeline stage.
type ErrorRecord struct {
	Stage   Stage
	Kind    FailureKind
	Message string
}

// Error implements the error interface.
func (e *ErrorRecord) Error() string {
	return fmt.Sprintf("%s failure at stage %s: %s", e.Kind, e.Stage, e.Message)
}

// NewErrorRecord wraps an underlying error for a stage.
func NewErrorRecord(stage Stage, kind FailureKind, err error) *ErrorRecord {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &ErrorRecord{Stage: stage, Kind: kind, Message: msg}
}
