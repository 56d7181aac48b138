package model

// Stage represents one step of the job pipeline.
type Stage string

const (
	// StageQueued means the job is waiting in the task queue
	StageQueued Stage = "Queued"

	// StageFetching means the media download is in progress
	StageFetching Stage = "Fetching"

	// StageConverting means audio transcoding is in progress
	StageConverting Stage = "Converting"

	// StageTrimming means time-range trimming is in progress
	StageTrimming Stage = "Trimming"

	// StageFetchingSubtitles means subtitle retrieval is in progress
	StageFetchingSubtitles Stage = "FetchingSubtitles"

	// StageFinalizing means the job is recording its result
	StageFinalizing Stage = "Finalizing"

	// StageDone means the job finished with a deliverable file
	StageDone Stage = "Done"

	// StageFailed means the job finished without a deliverable file
	StageFailed Stage = "Failed"
)

// stageOrder fixes the forward progression of the pipeline.
var stageOrder = map[Stage]int{
	StageQueued:            0,
	StageFetching:          1,
	StageConverting:        2,
	StageTrimming:          3,
	StageFetchingSubtitles: 4,
	StageFinalizing:        5,
	StageDone:              6,
	StageFailed:            7,
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsTerminal reports whether the stage is Done or Failed. Terminal stages
// are never left again.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// CanAdvanceTo reports whether a transition from s to next is legal.
// Stages only move forward through the pipeline order; skipping
// intermediate stages is allowed. Failed is reachable from any
// non-terminal stage.
func (s Stage) CanAdvanceTo(next Stage) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StageFailed {
		return true
	}
	from, ok := stageOrder[s]
	if !ok {
		return false
	}
	to, ok := stageOrder[next]
	if !ok || next == StageQueued {
		return false
	}
	return to > from && to <= stageOrder[StageDone]
}
