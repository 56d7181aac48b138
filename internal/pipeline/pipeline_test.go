package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ytget/mediaqueue/internal/model"
)

// fakeFetcher writes a file into the destination folder on Fetch and
// replays canned progress events.
type fakeFetcher struct {
	fetchErr    error
	subsErr     error
	probeMeta   *Metadata
	probeErr    error
	progress    [][2]int64
	subsCalls   []string
	gotFormat   string
	gotExpand   bool
	outFileName string
}

func (f *fakeFetcher) Probe(ctx context.Context, url string) (*Metadata, error) {
	return f.probeMeta, f.probeErr
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, formatSpec, destTemplate string, expandPlaylist bool, onProgress ProgressFunc) (string, error) {
	f.gotFormat = formatSpec
	f.gotExpand = expandPlaylist
	for _, ev := range f.progress {
		onProgress(ev[0], ev[1])
	}
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	name := f.outFileName
	if name == "" {
		name = "video.mp4"
	}
	out := filepath.Join(filepath.Dir(destTemplate), name)
	if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func (f *fakeFetcher) FetchSubtitles(ctx context.Context, url, lang, destTemplate string) error {
	f.subsCalls = append(f.subsCalls, lang)
	return f.subsErr
}

// fakeMedia produces successor files or fails per configuration.
type fakeMedia struct {
	transcodeErr error
	trimErr      error
	trimFailFast bool // fail only the fastCopy attempt
	trimCalls    []bool
	trimMarks    [][2]string
}

func (m *fakeMedia) TranscodeAudio(ctx context.Context, inputPath, codec string) (string, error) {
	if m.transcodeErr != nil {
		return "", m.transcodeErr
	}
	out := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "." + codec
	if err := os.WriteFile(out, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func (m *fakeMedia) Trim(ctx context.Context, inputPath, startMark, endMark string, fastCopy bool) (string, error) {
	m.trimCalls = append(m.trimCalls, fastCopy)
	m.trimMarks = append(m.trimMarks, [2]string{startMark, endMark})
	if m.trimErr != nil {
		return "", m.trimErr
	}
	if m.trimFailFast && fastCopy {
		return "", errors.New("stream copy exited non-zero")
	}
	ext := filepath.Ext(inputPath)
	out := strings.TrimSuffix(inputPath, ext) + "_trimmed" + ext
	if err := os.WriteFile(out, []byte("trimmed"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// recordObserver captures callbacks in arrival order.
type recordObserver struct {
	mu       sync.Mutex
	events   []string
	statuses []string
	percents []float64
	errors   []string
	history  [][2]string
}

func (o *recordObserver) OnProgress(jobID string, percent float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf("progress %.1f", percent))
	o.percents = append(o.percents, percent)
}

func (o *recordObserver) OnStatus(jobID, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "status "+text)
	o.statuses = append(o.statuses, text)
}

func (o *recordObserver) OnLog(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "log "+message)
}

func (o *recordObserver) OnHistoryAppend(url, filePath string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "history "+url)
	o.history = append(o.history, [2]string{url, filePath})
}

func (o *recordObserver) OnError(jobID, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "error "+message)
	o.errors = append(o.errors, message)
}

type fakeHistory struct {
	appended [][2]string
	err      error
}

func (h *fakeHistory) AppendCompleted(url, filePath string) error {
	if h.err != nil {
		return h.err
	}
	h.appended = append(h.appended, [2]string{url, filePath})
	return nil
}

func testSpec(t *testing.T, quality string) model.JobSpec {
	t.Helper()
	spec, err := model.NewJobSpec("https://example.com/v", quality, t.TempDir())
	if err != nil {
		t.Fatalf("NewJobSpec failed: %v", err)
	}
	return spec
}

// countFiles returns how many regular files remain in the destination.
func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	return len(entries)
}

func TestRunHappyPath(t *testing.T) {
	fetcher := &fakeFetcher{progress: [][2]int64{{512, 2048}, {2048, 2048}}}
	media := &fakeMedia{}
	obs := &recordObserver{}
	hist := &fakeHistory{}
	p := New(fetcher, media, obs, hist)

	spec := testSpec(t, "best")
	run := p.Run(spec)

	if run.Stage != model.StageDone {
		t.Fatalf("Expected Done, got %s (err %v)", run.Stage, run.LastError)
	}
	if _, err := os.Stat(run.ProducedFilePath); err != nil {
		t.Errorf("Produced file missing: %v", err)
	}
	if countFiles(t, spec.DestinationFolder) != 1 {
		t.Errorf("Expected exactly one file in destination")
	}
	if fetcher.gotFormat != "bestvideo+bestaudio/best" {
		t.Errorf("Unexpected format spec %q", fetcher.gotFormat)
	}
	if len(hist.appended) != 1 || hist.appended[0][0] != spec.SourceURL {
		t.Errorf("Expected history append for %s, got %+v", spec.SourceURL, hist.appended)
	}
	if len(obs.history) != 1 {
		t.Errorf("Expected OnHistoryAppend, got %+v", obs.history)
	}

	// Per-job ordering: progress reaches 100, resets to 0, ends Ready.
	if obs.percents[len(obs.percents)-1] != 0 {
		t.Errorf("Expected final progress reset to 0, got %v", obs.percents)
	}
	if obs.statuses[len(obs.statuses)-1] != "Ready" {
		t.Errorf("Expected final status Ready, got %v", obs.statuses)
	}
	if !strings.Contains(strings.Join(obs.statuses, "|"), "25.0%") {
		t.Errorf("Expected a 25.0%% progress status, got %v", obs.statuses)
	}
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	fetcher := &fakeFetcher{fetchErr: errors.New("HTTP 403")}
	media := &fakeMedia{}
	obs := &recordObserver{}
	hist := &fakeHistory{}
	p := New(fetcher, media, obs, hist)

	run := p.Run(testSpec(t, "best"))

	if run.Stage != model.StageFailed {
		t.Fatalf("Expected Failed, got %s", run.Stage)
	}
	if run.LastError == nil || run.LastError.Kind != model.FailureFetch {
		t.Errorf("Expected fetch failure record, got %+v", run.LastError)
	}
	if len(obs.errors) != 1 {
		t.Fatalf("Expected one OnError, got %v", obs.errors)
	}
	if !strings.Contains(obs.errors[0], "https://example.com/v") ||
		!strings.Contains(obs.errors[0], string(model.StageFetching)) {
		t.Errorf("Error must name URL and stage: %s", obs.errors[0])
	}
	if len(hist.appended) != 0 {
		t.Error("Failed job must not reach history")
	}
	if len(media.trimCalls) != 0 {
		t.Error("No further stage may run after a fatal fetch failure")
	}
}

func TestRunProgressUnknownTotal(t *testing.T) {
	fetcher := &fakeFetcher{progress: [][2]int64{{1024, 0}}}
	obs := &recordObserver{}
	p := New(fetcher, &fakeMedia{}, obs, nil)

	p.Run(testSpec(t, "best"))

	if obs.percents[0] != 0 {
		t.Errorf("Unknown total must report 0%%, got %v", obs.percents[0])
	}
}

func TestRunConvertSwapsFile(t *testing.T) {
	fetcher := &fakeFetcher{outFileName: "song.webm"}
	media := &fakeMedia{}
	obs := &recordObserver{}
	p := New(fetcher, media, obs, nil)

	spec := testSpec(t, "audio")
	spec.ConvertAudioCodec = "mp3"
	run := p.Run(spec)

	if run.Stage != model.StageDone {
		t.Fatalf("Expected Done, got %s", run.Stage)
	}
	if !strings.HasSuffix(run.ProducedFilePath, ".mp3") {
		t.Errorf("Expected mp3 deliverable, got %s", run.ProducedFilePath)
	}
	if countFiles(t, spec.DestinationFolder) != 1 {
		t.Error("Predecessor file must be removed after the swap")
	}
}

func TestRunConvertFailureIsNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{outFileName: "song.webm"}
	media := &fakeMedia{transcodeErr: errors.New("codec not found")}
	obs := &recordObserver{}
	p := New(fetcher, media, obs, nil)

	spec := testSpec(t, "audio")
	spec.ConvertAudioCodec = "mp3"
	run := p.Run(spec)

	if run.Stage != model.StageDone {
		t.Fatalf("Conversion failure must not fail the job, got %s", run.Stage)
	}
	if !strings.HasSuffix(run.ProducedFilePath, "song.webm") {
		t.Errorf("Expected pre-conversion file kept, got %s", run.ProducedFilePath)
	}
	if _, err := os.Stat(run.ProducedFilePath); err != nil {
		t.Errorf("Pre-conversion file must still exist: %v", err)
	}
	if len(obs.errors) != 0 {
		t.Errorf("Non-fatal failure must not raise OnError: %v", obs.errors)
	}
}

func TestRunConvertSkippedWithoutAudioOnly(t *testing.T) {
	fetcher := &fakeFetcher{}
	media := &fakeMedia{}
	p := New(fetcher, media, &recordObserver{}, nil)

	spec := testSpec(t, "720p")
	spec.ConvertAudioCodec = "mp3" // only meaningful for audio-only jobs
	run := p.Run(spec)

	if run.Stage != model.StageDone {
		t.Fatalf("Expected Done, got %s", run.Stage)
	}
	if !strings.HasSuffix(run.ProducedFilePath, "video.mp4") {
		t.Errorf("Conversion must be skipped for video jobs, got %s", run.ProducedFilePath)
	}
}

func TestRunTrimRetriesWithReencode(t *testing.T) {
	fetcher := &fakeFetcher{}
	media := &fakeMedia{trimFailFast: true}
	obs := &recordObserver{}
	p := New(fetcher, media, obs, nil)

	spec := testSpec(t, "best")
	spec.Trim = model.TrimRange{Start: "90", End: "00:02:00"}
	run := p.Run(spec)

	if run.Stage != model.StageDone {
		t.Fatalf("Expected Done, got %s", run.Stage)
	}
	if len(media.trimCalls) != 2 || !media.trimCalls[0] || media.trimCalls[1] {
		t.Errorf("Expected fast copy then re-encode, got %v", media.trimCalls)
	}
	if media.trimMarks[0] != [2]string{"00:01:30", "00:02:00"} {
		t.Errorf("Expected normalized marks, got %v", media.trimMarks[0])
	}
	if !strings.Contains(run.ProducedFilePath, "_trimmed") {
		t.Errorf("Expected trimmed deliverable, got %s", run.ProducedFilePath)
	}
	if countFiles(t, spec.DestinationFolder) != 1 {
		t.Error("Untrimmed predecessor must be removed")
	}
}

func TestRunTrimTotalFailureIsNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{}
	media := &fakeMedia{trimErr: errors.New("ffmpeg not found")}
	obs := &recordObserver{}
	p := New(fetcher, media, obs, nil)

	spec := testSpec(t, "best")
	spec.Trim = model.TrimRange{Start: "10"}
	run := p.Run(spec)

	if run.Stage != model.StageDone {
		t.Fatalf("Trim failure must not fail the job, got %s", run.Stage)
	}
	if !strings.HasSuffix(run.ProducedFilePath, "video.mp4") {
		t.Errorf("Expected untrimmed file kept, got %s", run.ProducedFilePath)
	}
}

func TestRunSubtitleFailureIsNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{subsErr: errors.New("no subtitles available")}
	obs := &recordObserver{}
	hist := &fakeHistory{}
	p := New(fetcher, &fakeMedia{}, obs, hist)

	spec := testSpec(t, "best")
	spec.WantSubtitles = true
	spec.SubtitleLang = ""
	run := p.Run(spec)

	if run.Stage != model.StageDone {
		t.Fatalf("Subtitle failure must not fail the job, got %s", run.Stage)
	}
	if len(fetcher.subsCalls) != 1 || fetcher.subsCalls[0] != "en" {
		t.Errorf("Expected subtitle fetch with fallback lang en, got %v", fetcher.subsCalls)
	}
	if len(hist.appended) != 1 {
		t.Error("Job must still reach history after a subtitle failure")
	}
}

func TestRunHistoryFailureIsLoggedNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{}
	obs := &recordObserver{}
	hist := &fakeHistory{err: errors.New("disk full")}
	p := New(fetcher, &fakeMedia{}, obs, hist)

	run := p.Run(testSpec(t, "best"))

	if run.Stage != model.StageDone {
		t.Fatalf("History failure must not fail the job, got %s", run.Stage)
	}
	joined := strings.Join(obs.events, "|")
	if !strings.Contains(joined, "History append failed") {
		t.Errorf("Expected a history failure log, got %v", obs.events)
	}
}
