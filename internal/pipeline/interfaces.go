package pipeline

import "context"

// ProgressFunc receives incremental transfer counts. totalBytes is 0
// when the remote size is unknown.
type ProgressFunc func(downloadedBytes, totalBytes int64)

// FormatInfo describes one candidate stream reported by a probe.
type FormatInfo struct {
	Height  int     // pixel height, 0 for audio-only streams
	Bitrate float64 // audio bitrate in kbit/s, 0 when unknown
	Size    int64   // declared size in bytes, 0 when unknown
}

// Metadata is the result of a metadata-only probe.
type Metadata struct {
	Title    string
	Duration float64 // seconds, 0 when unknown
	Formats  []FormatInfo
}

// Fetcher is the media-retrieval engine consumed by the pipeline. The
// concrete implementation lives in internal/platform; tests use fakes.
type Fetcher interface {
	// Probe retrieves metadata without downloading.
	Probe(ctx context.Context, url string) (*Metadata, error)

	// Fetch downloads media selected by formatSpec into the destination
	// template and returns the produced file path. Progress events are
	// delivered on onProgress.
	Fetch(ctx context.Context, url, formatSpec, destTemplate string, expandPlaylist bool, onProgress ProgressFunc) (string, error)

	// FetchSubtitles retrieves subtitles for lang next to the destination
	// template. Failures are non-fatal by contract.
	FetchSubtitles(ctx context.Context, url, lang, destTemplate string) error
}

// MediaTool is the transcode/trim engine consumed by the pipeline.
type MediaTool interface {
	// TranscodeAudio converts inputPath to the target audio codec at a
	// fixed quality target and returns the new file path.
	TranscodeAudio(ctx context.Context, inputPath, codec string) (string, error)

	// Trim cuts inputPath to the mark range. With fastCopy the streams
	// are copied without re-encoding; without it compatible codecs are
	// forced.
	Trim(ctx context.Context, inputPath, startMark, endMark string, fastCopy bool) (string, error)
}

// Observer receives job lifecycle callbacks. Implementations must be
// safe to invoke from any worker goroutine; a single-threaded UI
// marshals the calls onto its own event loop.
type Observer interface {
	OnProgress(jobID string, percent float64)
	OnStatus(jobID string, text string)
	OnLog(message string)
	OnHistoryAppend(url, filePath string)
	OnError(jobID string, message string)
}

// HistoryAppender persists one completed-job record durably before
// returning.
type HistoryAppender interface {
	AppendCompleted(url, filePath string) error
}

// NopObserver discards all callbacks. Useful as a default and in tests.
type NopObserver struct{}

func (NopObserver) OnProgress(string, float64)     {}
func (NopObserver) OnStatus(string, string)        {}
func (NopObserver) OnLog(string)                   {}
func (NopObserver) OnHistoryAppend(string, string) {}
func (NopObserver) OnError(string, string)         {}
