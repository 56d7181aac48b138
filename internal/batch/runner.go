// Package batch runs a queue of jobs from a YAML file without the UI.
// It wires the same queue, pool and pipeline the desktop app uses, with
// a log-based observer, and exits when every job has finished.
package batch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ytget/mediaqueue/internal/config"
	"github.com/ytget/mediaqueue/internal/history"
	"github.com/ytget/mediaqueue/internal/model"
	"github.com/ytget/mediaqueue/internal/pipeline"
	"github.com/ytget/mediaqueue/internal/platform"
	"github.com/ytget/mediaqueue/internal/queue"
	"github.com/ytget/mediaqueue/internal/worker"
)

// PlaylistExpander resolves a playlist URL into individual entries.
type PlaylistExpander interface {
	Expand(ctx context.Context, url string) ([]platform.PlaylistEntry, error)
}

// Runner owns the headless wiring for one batch invocation.
type Runner struct {
	expander PlaylistExpander
}

// NewRunner creates a batch runner with the yt-dlp playlist expander.
func NewRunner() *Runner {
	return &Runner{expander: platform.NewPlaylistExpander()}
}

// Run processes the batch file to completion and returns the number of
// failed jobs. A non-nil error means the batch could not start at all.
func (r *Runner) Run(ctx context.Context, batchPath string) (int, error) {
	cfg, err := config.LoadBatchConfig(batchPath)
	if err != nil {
		return 0, err
	}

	destDir := cfg.DownloadDir
	if destDir == "" {
		destDir, err = platform.GetHomeDownloadsDir()
		if err != nil {
			return 0, fmt.Errorf("failed to resolve download directory: %w", err)
		}
	}
	if err := platform.CreateDirectoryIfNotExists(destDir); err != nil {
		return 0, fmt.Errorf("failed to create download directory: %w", err)
	}

	specs, err := r.BuildSpecs(ctx, cfg, destDir)
	if err != nil {
		return 0, err
	}

	store, err := history.Open(history.DefaultPath())
	if err != nil {
		log.Printf("History disabled: %v", err)
		store = nil
	}

	pipe := pipeline.New(
		platform.NewYTDLPFetcher(),
		platform.NewFFmpegTool(),
		&logObserver{},
		historyAppender(store),
	)

	tasks := queue.New()
	var wg sync.WaitGroup
	var failedMu sync.Mutex
	failed := 0
	counted := &countingRunner{
		inner: pipe,
		done: func(run *model.JobRun) {
			if run == nil || run.Stage == model.StageFailed {
				failedMu.Lock()
				failed++
				failedMu.Unlock()
			}
			wg.Done()
		},
	}

	pool := worker.NewPool(tasks, counted, cfg.Workers)

	for _, spec := range specs {
		wg.Add(1)
		if err := tasks.Push(spec); err != nil {
			wg.Done()
			return 0, fmt.Errorf("failed to enqueue %s: %w", spec.SourceURL, err)
		}
	}
	log.Printf("Enqueued %d jobs, %d workers", len(specs), pool.Size())

	if err := pool.Start(); err != nil {
		return 0, err
	}
	wg.Wait()
	if err := pool.Stop(); err != nil {
		log.Printf("Pool shutdown: %v", err)
	}
	tasks.Close()

	log.Printf("Batch finished: %d ok, %d failed", len(specs)-failed, failed)
	return failed, nil
}

// BuildSpecs turns batch entries into job specs, expanding playlists
// into one spec per video.
func (r *Runner) BuildSpecs(ctx context.Context, cfg *config.BatchConfig, destDir string) ([]model.JobSpec, error) {
	var specs []model.JobSpec
	for i, job := range cfg.Jobs {
		urls := []string{job.URL}
		if job.ExpandPlaylist && platform.IsPlaylistURL(job.URL) {
			entries, err := r.expander.Expand(ctx, job.URL)
			if err != nil {
				return nil, fmt.Errorf("batch job %d: %w", i+1, err)
			}
			urls = urls[:0]
			for _, entry := range entries {
				urls = append(urls, entry.URL)
			}
		}

		for _, url := range urls {
			spec, err := model.NewJobSpec(url, cfg.JobQuality(job), destDir)
			if err != nil {
				return nil, fmt.Errorf("batch job %d: %w", i+1, err)
			}
			spec.Trim = model.TrimRange{Start: job.TrimStart, End: job.TrimEnd}
			spec.WantSubtitles = job.Subtitles
			spec.SubtitleLang = cfg.JobSubtitleLang(job)
			spec.ConvertAudioCodec = job.ConvertCodec
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// historyAppender avoids handing the pipeline a typed nil interface.
func historyAppender(store *history.Store) pipeline.HistoryAppender {
	if store == nil {
		return nil
	}
	return store
}

// countingRunner notifies the batch loop after each finished job.
type countingRunner struct {
	inner worker.Runner
	done  func(*model.JobRun)
}

func (c *countingRunner) Run(spec model.JobSpec) *model.JobRun {
	run := c.inner.Run(spec)
	c.done(run)
	return run
}

// logObserver reports pipeline events on the process log.
type logObserver struct{}

func (logObserver) OnProgress(jobID string, percent float64) {}

func (logObserver) OnStatus(jobID string, status string) {
	log.Printf("[%s] %s", jobID, status)
}

func (logObserver) OnLog(message string) {
	log.Print(message)
}

func (logObserver) OnHistoryAppend(url, filePath string) {}

func (logObserver) OnError(jobID string, message string) {
	log.Printf("[%s] ERROR: %s", jobID, message)
}
