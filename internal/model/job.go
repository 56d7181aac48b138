package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job ID prefix
const (
	JobIDPrefix = "job-"
)

// Default subtitle language when the user leaves the field empty
const DefaultSubtitleLang = "en"

// JobSpec is the immutable description of one unit of work, created at
// submission time and never modified after being enqueued.
type JobSpec struct {
	ID                     string
	SourceURL              string
	Quality                QualitySelector
	DestinationFolder      string
	Trim                   TrimRange
	WantSubtitles          bool
	SubtitleLang           string
	ConvertAudioCodec      string // target codec, only meaningful for audio-only jobs
	AllowPlaylistExpansion bool
	CreatedAt              time.Time
}

// NewJobSpec validates inputs and builds a spec. The quality string is
// parsed once here; trim marks are kept as given and normalized by the
// pipeline before use. Playlist expansion is derived from the URL shape.
func NewJobSpec(sourceURL, quality, destinationFolder string) (JobSpec, error) {
	url := strings.TrimSpace(sourceURL)
	if url == "" {
		return JobSpec{}, fmt.Errorf("source URL must not be empty")
	}

	selector, err := ParseQualitySelector(quality)
	if err != nil {
		return JobSpec{}, err
	}

	return JobSpec{
		ID:                     generateJobID(),
		SourceURL:              url,
		Quality:                selector,
		DestinationFolder:      destinationFolder,
		SubtitleLang:           DefaultSubtitleLang,
		AllowPlaylistExpansion: LooksLikePlaylist(url),
		CreatedAt:              time.Now(),
	}, nil
}

// LooksLikePlaylist reports whether a URL heuristically refers to a
// playlist rather than a single video.
func LooksLikePlaylist(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, "list=") || strings.Contains(lower, "playlist")
}

// JobRun is the mutable execution state of one job. It is created when a
// worker dequeues the spec and is owned exclusively by that worker for
// its entire lifetime, so no locking is needed.
type JobRun struct {
	JobID            string
	Stage            Stage
	ProgressPercent  float64 // 0 to 100
	ProducedFilePath string
	LastError        *ErrorRecord
	StartedAt        time.Time
	FinishedAt       time.Time
}

// NewJobRun creates run state for a freshly dequeued job.
func NewJobRun(jobID string) *JobRun {
	return &JobRun{
		JobID:     jobID,
		Stage:     StageQueued,
		StartedAt: time.Now(),
	}
}

// Advance moves the run to a later pipeline stage. Illegal transitions
// (backward moves, or leaving a terminal stage) are rejected.
func (r *JobRun) Advance(next Stage) error {
	if !r.Stage.CanAdvanceTo(next) {
		return fmt.Errorf("illegal stage transition: %s -> %s", r.Stage, next)
	}
	r.Stage = next
	if next.IsTerminal() {
		r.FinishedAt = time.Now()
	}
	return nil
}

// Fail records a fatal error and moves the run to the Failed terminal
// stage. Terminal runs are never mutated again.
func (r *JobRun) Fail(rec *ErrorRecord) {
	if r.Stage.IsTerminal() {
		return
	}
	r.LastError = rec
	r.Stage = StageFailed
	r.FinishedAt = time.Now()
}

// Finished reports whether the run reached a terminal stage.
func (r *JobRun) Finished() bool {
	return r.Stage.IsTerminal()
}

// generateJobID generates a unique job ID using UUID v7 for better
// uniqueness and time ordering.
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(JobIDPrefix+"%d", time.Now().UnixNano())
	}
	return JobIDPrefix + id.String()
}
