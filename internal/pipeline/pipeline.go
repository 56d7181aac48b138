package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ytget/mediaqueue/internal/model"
)

// OutputTemplate is the yt-dlp output template appended to the
// destination folder; titles are truncated to stay filesystem-safe.
const OutputTemplate = "%(title).120s.%(ext)s"

// Pipeline sequences the per-job stages, invoking the fetcher and media
// tool and translating their outcomes into observer callbacks. One
// Pipeline is shared by all workers; all per-job state lives in the
// JobRun owned by the calling worker.
type Pipeline struct {
	fetcher  Fetcher
	media    MediaTool
	observer Observer
	history  HistoryAppender
}

// New wires a pipeline. A nil observer is replaced with NopObserver; a
// nil history appender disables history recording.
func New(fetcher Fetcher, media MediaTool, observer Observer, history HistoryAppender) *Pipeline {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Pipeline{
		fetcher:  fetcher,
		media:    media,
		observer: observer,
		history:  history,
	}
}

// Run executes one job to a terminal stage. Only the fetch stage is
// fatal: without it there is no deliverable. Conversion, trimming and
// subtitle retrieval degrade to keeping the last-known-good file, so a
// user still gets a valid deliverable when post-processing fails.
func (p *Pipeline) Run(spec model.JobSpec) *model.JobRun {
	run := model.NewJobRun(spec.ID)
	ctx := context.Background()

	p.observer.OnLog(fmt.Sprintf("Start: %s", spec.SourceURL))

	if !p.fetch(ctx, spec, run) {
		return run
	}
	p.convert(ctx, spec, run)
	p.trim(ctx, spec, run)
	p.subtitles(ctx, spec, run)
	p.finalize(spec, run)

	return run
}

// fetch runs the only fatal stage. Returns false when the job failed.
func (p *Pipeline) fetch(ctx context.Context, spec model.JobSpec, run *model.JobRun) bool {
	if err := run.Advance(model.StageFetching); err != nil {
		log.Printf("Job %s: %v", spec.ID, err)
		return false
	}
	p.observer.OnStatus(spec.ID, "Downloading...")

	destTemplate := filepath.Join(spec.DestinationFolder, OutputTemplate)
	onProgress := func(downloaded, total int64) {
		percent := 0.0
		if total > 0 {
			percent = float64(downloaded) / float64(total) * 100
		}
		run.ProgressPercent = percent
		p.observer.OnProgress(spec.ID, percent)
		p.observer.OnStatus(spec.ID, fmt.Sprintf("Downloading... %.1f%% %s / %s",
			percent, model.HumanSize(downloaded), model.HumanSize(total)))
	}

	outFile, err := p.fetcher.Fetch(ctx, spec.SourceURL, spec.Quality.FormatSpec(),
		destTemplate, spec.AllowPlaylistExpansion, onProgress)
	if err != nil {
		rec := model.NewErrorRecord(model.StageFetching, model.FailureFetch, err)
		run.Fail(rec)
		p.observer.OnLog(fmt.Sprintf("Download failed: %v", err))
		p.observer.OnError(spec.ID, fmt.Sprintf("download failed for %s at stage %s: %v",
			spec.SourceURL, model.StageFetching, err))
		return false
	}

	run.ProducedFilePath = outFile
	run.ProgressPercent = 100
	p.observer.OnProgress(spec.ID, 100)
	return true
}

// convert transcodes audio-only fetches to the requested codec.
// Failure keeps the pre-conversion file; the original media is still a
// valid deliverable.
func (p *Pipeline) convert(ctx context.Context, spec model.JobSpec, run *model.JobRun) {
	if spec.Quality.Kind != model.QualityAudioOnly || spec.ConvertAudioCodec == "" {
		return
	}
	if err := run.Advance(model.StageConverting); err != nil {
		log.Printf("Job %s: %v", spec.ID, err)
		return
	}
	p.observer.OnStatus(spec.ID, "Converting audio...")

	newPath, err := p.media.TranscodeAudio(ctx, run.ProducedFilePath, spec.ConvertAudioCodec)
	if err != nil {
		run.LastError = model.NewErrorRecord(model.StageConverting, model.FailureTranscode, err)
		p.observer.OnLog(fmt.Sprintf("%s conversion failed: %v", spec.ConvertAudioCodec, err))
		return
	}
	p.swapProducedFile(run, newPath)
}

// trim cuts the produced file to the requested range, trying a stream
// copy first and retrying once with a re-encode. Total failure keeps the
// untrimmed file.
func (p *Pipeline) trim(ctx context.Context, spec model.JobSpec, run *model.JobRun) {
	if spec.Trim.IsZero() {
		return
	}
	if err := run.Advance(model.StageTrimming); err != nil {
		log.Printf("Job %s: %v", spec.ID, err)
		return
	}
	p.observer.OnStatus(spec.ID, "Trimming...")

	marks, err := spec.Trim.Normalized()
	if err != nil {
		run.LastError = model.NewErrorRecord(model.StageTrimming, model.FailureTrim, err)
		p.observer.OnLog(fmt.Sprintf("Trim failed: %v", err))
		return
	}

	newPath, err := p.media.Trim(ctx, run.ProducedFilePath, marks.Start, marks.End, true)
	if err != nil {
		// Stream copy can fail on keyframe boundaries; force codecs once.
		newPath, err = p.media.Trim(ctx, run.ProducedFilePath, marks.Start, marks.End, false)
	}
	if err != nil {
		run.LastError = model.NewErrorRecord(model.StageTrimming, model.FailureTrim, err)
		p.observer.OnLog(fmt.Sprintf("Trim failed: %v", err))
		return
	}
	p.swapProducedFile(run, newPath)
}

// subtitles retrieves subtitle files next to the deliverable. Failures
// never affect the produced file or the job outcome.
func (p *Pipeline) subtitles(ctx context.Context, spec model.JobSpec, run *model.JobRun) {
	if !spec.WantSubtitles {
		return
	}
	if err := run.Advance(model.StageFetchingSubtitles); err != nil {
		log.Printf("Job %s: %v", spec.ID, err)
		return
	}
	p.observer.OnStatus(spec.ID, "Fetching subtitles...")

	lang := spec.SubtitleLang
	if lang == "" {
		lang = model.DefaultSubtitleLang
	}
	destTemplate := filepath.Join(spec.DestinationFolder, OutputTemplate)
	if err := p.fetcher.FetchSubtitles(ctx, spec.SourceURL, lang, destTemplate); err != nil {
		run.LastError = model.NewErrorRecord(model.StageFetchingSubtitles, model.FailureSubtitles, err)
		p.observer.OnLog(fmt.Sprintf("Sub download failed: %v", err))
	}
}

// finalize records the result and reports completion.
func (p *Pipeline) finalize(spec model.JobSpec, run *model.JobRun) {
	if err := run.Advance(model.StageFinalizing); err != nil {
		log.Printf("Job %s: %v", spec.ID, err)
		return
	}

	run.ProgressPercent = 0
	p.observer.OnProgress(spec.ID, 0)

	if p.history != nil {
		if err := p.history.AppendCompleted(spec.SourceURL, run.ProducedFilePath); err != nil {
			p.observer.OnLog(fmt.Sprintf("History append failed: %v", err))
		}
	}

	if err := run.Advance(model.StageDone); err != nil {
		log.Printf("Job %s: %v", spec.ID, err)
		return
	}
	p.observer.OnHistoryAppend(spec.SourceURL, run.ProducedFilePath)
	p.observer.OnStatus(spec.ID, "Ready")
	p.observer.OnLog(fmt.Sprintf("Completed: %s", run.ProducedFilePath))
}

// swapProducedFile replaces the deliverable with the successor file and
// deletes the predecessor only after the successor is confirmed on disk,
// so observers never see zero or two deliverables.
func (p *Pipeline) swapProducedFile(run *model.JobRun, newPath string) {
	if newPath == "" || newPath == run.ProducedFilePath {
		return
	}
	if _, err := os.Stat(newPath); err != nil {
		p.observer.OnLog(fmt.Sprintf("Transform output missing: %v", err))
		return
	}

	oldPath := run.ProducedFilePath
	run.ProducedFilePath = newPath
	if oldPath != "" {
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			p.observer.OnLog(fmt.Sprintf("Failed to remove predecessor file %s: %v", oldPath, err))
		}
	}
}
