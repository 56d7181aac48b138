package ui

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mediaqueue/internal/config"
	"github.com/ytget/mediaqueue/internal/estimate"
	"github.com/ytget/mediaqueue/internal/history"
	"github.com/ytget/mediaqueue/internal/model"
	"github.com/ytget/mediaqueue/internal/platform"
	"github.com/ytget/mediaqueue/internal/queue"
	"github.com/ytget/mediaqueue/internal/worker"
)

// Deps bundles the services the root UI drives.
type Deps struct {
	Tasks     *queue.TaskQueue
	Estimator *estimate.Estimator
	History   *history.Store
	Expander  *platform.PlaylistExpander
}

// RootUI is the main window. It enqueues jobs, controls the worker
// pool, and renders progress from observer callbacks. It implements
// pipeline.Observer; every widget mutation is marshalled through
// fyne.Do since callbacks arrive on worker goroutines.
type RootUI struct {
	window   fyne.Window
	app      fyne.App
	settings *config.Settings
	deps     Deps
	pool     *worker.Pool

	mu    sync.Mutex
	jobs  map[string]*JobView
	order []string
	lines []string

	urlEntry      *widget.Entry
	qualitySelect *widget.Select
	subsCheck     *widget.Check
	subLangEntry  *widget.Entry
	trimStart     *widget.Entry
	trimEnd       *widget.Entry
	playlistCheck *widget.Check
	addBtn        *widget.Button
	estimateLabel *widget.Label
	startStopBtn  *widget.Button
	jobList       *widget.List
	historyList   *widget.List
	logLabel      *widget.Label
}

// NewRootUI builds the main window content.
func NewRootUI(window fyne.Window, app fyne.App, deps Deps) *RootUI {
	settings := config.NewSettings(app)

	downloadsDir := settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		log.Printf("Failed to create downloads directory %s: %v", downloadsDir, err)
	}

	ui := &RootUI{
		window:   window,
		app:      app,
		settings: settings,
		deps:     deps,
		jobs:     make(map[string]*JobView),
	}

	window.SetTitle("mediaqueue")
	ui.setupUI()
	return ui
}

// SetPool attaches the worker pool. Called once during wiring, before
// the window is shown.
func (ui *RootUI) SetPool(pool *worker.Pool) {
	ui.pool = pool
	ui.refreshPoolButton()
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder("Enter video or playlist URL")
	ui.urlEntry.Validator = ui.validateURL
	ui.urlEntry.OnSubmitted = func(string) { ui.onAddClick() }

	ui.qualitySelect = widget.NewSelect(ui.settings.GetQualityOptions(), func(selected string) {
		ui.settings.SetQuality(selected)
	})
	ui.qualitySelect.SetSelected(ui.settings.GetQuality())

	ui.subsCheck = widget.NewCheck("Subtitles", nil)
	ui.subLangEntry = widget.NewEntry()
	ui.subLangEntry.SetText(ui.settings.GetSubtitleLanguage())

	ui.trimStart = widget.NewEntry()
	ui.trimStart.SetPlaceHolder("start (sec or HH:MM:SS)")
	ui.trimEnd = widget.NewEntry()
	ui.trimEnd.SetPlaceHolder("end")

	ui.playlistCheck = widget.NewCheck("Expand playlist", nil)

	ui.addBtn = widget.NewButton("Add", ui.onAddClick)
	ui.addBtn.Importance = widget.HighImportance

	estimateBtn := widget.NewButton("Estimate", ui.onEstimateClick)
	ui.estimateLabel = widget.NewLabel("")
	ui.estimateLabel.TextStyle = fyne.TextStyle{Monospace: true}

	settingsBtn := widget.NewButton(IconSettings, func() {
		ShowSettingsDialog(ui.window, ui.settings, ui.onWorkerCountChange)
	})
	settingsBtn.Importance = widget.LowImportance

	ui.startStopBtn = widget.NewButton("Start", ui.onStartStopClick)
	clearBtn := widget.NewButton("Clear queue", ui.onClearClick)

	ui.jobList = widget.NewList(
		func() int {
			ui.mu.Lock()
			defer ui.mu.Unlock()
			return len(ui.order)
		},
		func() fyne.CanvasObject {
			return NewJobRow(JobView{}, ui.onRevealFile)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			view, ok := ui.jobViewAt(id)
			if !ok {
				return
			}
			if row, rowOK := obj.(*JobRow); rowOK {
				row.Update(view)
			}
		},
	)

	ui.historyList = widget.NewList(
		func() int { return len(ui.recentHistory()) },
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			entries := ui.recentHistory()
			if id >= len(entries) {
				return
			}
			entry := entries[id]
			if label, labelOK := obj.(*widget.Label); labelOK {
				when := time.Unix(entry.Time, 0).Format("2006-01-02 15:04")
				label.SetText(fmt.Sprintf("%s  %s", when, entry.File))
			}
		},
	)

	ui.logLabel = widget.NewLabel("")
	ui.logLabel.Wrapping = fyne.TextWrapWord

	urlRow := container.NewBorder(nil, nil, settingsBtn, ui.addBtn, ui.urlEntry)
	optionsRow := container.NewHBox(
		widget.NewLabel("Quality:"), ui.qualitySelect,
		ui.subsCheck, ui.subLangEntry,
		widget.NewLabel("Trim:"), ui.trimStart, ui.trimEnd,
		ui.playlistCheck,
	)
	estimateRow := container.NewHBox(estimateBtn, ui.estimateLabel)
	controlRow := container.NewHBox(ui.startStopBtn, clearBtn)

	top := container.NewVBox(urlRow, optionsRow, estimateRow, controlRow)

	tabs := container.NewAppTabs(
		container.NewTabItem("Queue", ui.jobList),
		container.NewTabItem("History", ui.historyList),
		container.NewTabItem("Log", container.NewVScroll(ui.logLabel)),
	)

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, tabs))
}

// validateURL validates the entered URL
func (ui *RootUI) validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil // Empty is allowed
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

// onAddClick builds a job spec from the form and enqueues it. Playlist
// URLs are expanded in the background when requested.
func (ui *RootUI) onAddClick() {
	urlText := strings.TrimSpace(ui.urlEntry.Text)
	if urlText == "" {
		ui.popup("Please enter a URL")
		return
	}
	if err := ui.validateURL(urlText); err != nil {
		ui.popup("Invalid URL: " + err.Error())
		return
	}

	if ui.playlistCheck.Checked && platform.IsPlaylistURL(urlText) {
		ui.addPlaylist(urlText)
		return
	}

	spec, err := ui.buildSpec(urlText)
	if err != nil {
		ui.popup("Error: " + err.Error())
		return
	}
	ui.enqueue(spec)
	ui.urlEntry.SetText("")
}

// addPlaylist resolves the playlist and enqueues one job per video.
func (ui *RootUI) addPlaylist(playlistURL string) {
	ui.appendLog("Resolving playlist: " + playlistURL)
	go func() {
		entries, err := ui.deps.Expander.Expand(context.Background(), playlistURL)
		fyne.Do(func() {
			if err != nil {
				ui.popup("Playlist failed: " + err.Error())
				return
			}
			added := 0
			for _, entry := range entries {
				spec, specErr := ui.buildSpec(entry.URL)
				if specErr != nil {
					log.Printf("Skipping playlist entry %s: %v", entry.URL, specErr)
					continue
				}
				ui.enqueue(spec)
				added++
			}
			ui.appendLog(fmt.Sprintf("Playlist added: %d videos", added))
			ui.urlEntry.SetText("")
		})
	}()
}

// buildSpec reads the current form state into a job spec.
func (ui *RootUI) buildSpec(sourceURL string) (model.JobSpec, error) {
	spec, err := model.NewJobSpec(sourceURL, ui.qualitySelect.Selected, ui.settings.GetDownloadDirectory())
	if err != nil {
		return model.JobSpec{}, err
	}
	spec.Trim = model.TrimRange{
		Start: strings.TrimSpace(ui.trimStart.Text),
		End:   strings.TrimSpace(ui.trimEnd.Text),
	}
	spec.WantSubtitles = ui.subsCheck.Checked
	spec.SubtitleLang = strings.TrimSpace(ui.subLangEntry.Text)
	if spec.Quality.Kind == model.QualityAudioOnly {
		spec.ConvertAudioCodec = ui.settings.GetConvertCodec()
	}
	return spec, nil
}

func (ui *RootUI) enqueue(spec model.JobSpec) {
	if err := ui.deps.Tasks.Push(spec); err != nil {
		ui.popup("Cannot enqueue: " + err.Error())
		return
	}

	ui.mu.Lock()
	ui.jobs[spec.ID] = &JobView{ID: spec.ID, URL: spec.SourceURL, Status: "Queued"}
	ui.order = append(ui.order, spec.ID)
	ui.mu.Unlock()

	ui.jobList.Refresh()
	log.Printf("Enqueued job %s: %s", spec.ID, spec.SourceURL)
}

// onEstimateClick probes the current URL and shows size/ETA without
// enqueueing anything.
func (ui *RootUI) onEstimateClick() {
	urlText := strings.TrimSpace(ui.urlEntry.Text)
	if urlText == "" || ui.validateURL(urlText) != nil {
		ui.popup("Enter a valid URL to estimate")
		return
	}
	spec, err := ui.buildSpec(urlText)
	if err != nil {
		ui.popup("Error: " + err.Error())
		return
	}

	ui.estimateLabel.SetText("Estimating...")
	go func() {
		result := ui.deps.Estimator.Estimate(context.Background(), spec)
		fyne.Do(func() {
			ui.estimateLabel.SetText(result.String())
		})
	}()
}

// onStartStopClick toggles the worker pool.
func (ui *RootUI) onStartStopClick() {
	if ui.pool == nil {
		return
	}
	if ui.pool.Running() {
		go func() {
			if err := ui.pool.Stop(); err != nil {
				log.Printf("Pool stop: %v", err)
			}
			fyne.Do(ui.refreshPoolButton)
		}()
		ui.startStopBtn.SetText("Stopping...")
		ui.startStopBtn.Disable()
		return
	}
	if err := ui.pool.Start(); err != nil {
		ui.popup("Cannot start: " + err.Error())
		return
	}
	ui.refreshPoolButton()
}

func (ui *RootUI) refreshPoolButton() {
	if ui.startStopBtn == nil {
		return
	}
	ui.startStopBtn.Enable()
	if ui.pool != nil && ui.pool.Running() {
		ui.startStopBtn.SetText(fmt.Sprintf("Stop (%d workers)", ui.pool.Size()))
	} else {
		ui.startStopBtn.SetText("Start")
	}
}

// onClearClick removes all queued jobs; running jobs are untouched.
func (ui *RootUI) onClearClick() {
	removed := ui.deps.Tasks.Clear()

	ui.mu.Lock()
	kept := ui.order[:0]
	for _, id := range ui.order {
		view := ui.jobs[id]
		if view != nil && view.Status == "Queued" {
			delete(ui.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	ui.order = kept
	ui.mu.Unlock()

	ui.jobList.Refresh()
	ui.popup(fmt.Sprintf("Removed %d queued jobs", removed))
}

// onWorkerCountChange applies a new pool size from the settings dialog.
func (ui *RootUI) onWorkerCountChange(count int) {
	if ui.pool == nil {
		return
	}
	if err := ui.pool.Configure(count); err != nil {
		ui.popup("Worker count: " + err.Error())
		return
	}
	ui.settings.SetWorkerCount(count)
	ui.refreshPoolButton()
}

func (ui *RootUI) onRevealFile(filePath string) {
	if err := platform.RevealFile(filePath); err != nil {
		log.Printf("Reveal failed for %s: %v", filePath, err)
		ui.popup("Cannot open: " + err.Error())
	}
}

// jobViewAt returns a copy of the view at the list position.
func (ui *RootUI) jobViewAt(index int) (JobView, bool) {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if index < 0 || index >= len(ui.order) {
		return JobView{}, false
	}
	view := ui.jobs[ui.order[index]]
	if view == nil {
		return JobView{}, false
	}
	return *view, true
}

func (ui *RootUI) recentHistory() []history.Entry {
	if ui.deps.History == nil {
		return nil
	}
	return ui.deps.History.Recent(HistoryUICap)
}

func (ui *RootUI) popup(message string) {
	widget.ShowPopUp(widget.NewLabel(message), ui.window.Canvas())
}

func (ui *RootUI) appendLog(line string) {
	ui.mu.Lock()
	ui.lines = append(ui.lines, line)
	if len(ui.lines) > LogLineCap {
		ui.lines = ui.lines[len(ui.lines)-LogLineCap:]
	}
	text := strings.Join(ui.lines, "\n")
	ui.mu.Unlock()

	ui.logLabel.SetText(text)
}

// updateJob mutates a view under the lock and refreshes the list on the
// UI thread.
func (ui *RootUI) updateJob(jobID string, mutate func(*JobView)) {
	ui.mu.Lock()
	view := ui.jobs[jobID]
	if view != nil {
		mutate(view)
	}
	ui.mu.Unlock()
	if view == nil {
		return
	}
	fyne.Do(func() {
		ui.jobList.Refresh()
	})
}

// Observer callbacks. Invoked from worker goroutines.

// OnProgress updates the job's progress bar.
func (ui *RootUI) OnProgress(jobID string, percent float64) {
	ui.updateJob(jobID, func(view *JobView) {
		view.Percent = percent
	})
}

// OnStatus updates the job's status line.
func (ui *RootUI) OnStatus(jobID string, status string) {
	ui.updateJob(jobID, func(view *JobView) {
		view.Status = status
	})
}

// OnLog appends to the in-app log pane.
func (ui *RootUI) OnLog(message string) {
	log.Print(message)
	fyne.Do(func() {
		ui.appendLog(message)
	})
}

// OnHistoryAppend records the deliverable and refreshes the history tab.
func (ui *RootUI) OnHistoryAppend(sourceURL, filePath string) {
	for _, id := range ui.jobIDsForURL(sourceURL) {
		ui.updateJob(id, func(view *JobView) {
			view.FilePath = filePath
		})
	}
	fyne.Do(func() {
		ui.historyList.Refresh()
	})
}

// OnError marks the job failed and surfaces the message.
func (ui *RootUI) OnError(jobID string, message string) {
	ui.updateJob(jobID, func(view *JobView) {
		view.Failed = true
		view.Status = "Failed"
	})
	fyne.Do(func() {
		ui.appendLog("ERROR: " + message)
	})
	ui.app.SendNotification(&fyne.Notification{
		Title:   "Download failed",
		Content: message,
	})
}

func (ui *RootUI) jobIDsForURL(sourceURL string) []string {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	var ids []string
	for _, id := range ui.order {
		if view := ui.jobs[id]; view != nil && view.URL == sourceURL {
			ids = append(ids, id)
		}
	}
	return ids
}

// ParseWorkerCount converts a dialog selection into a pool size.
func ParseWorkerCount(selected string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(selected))
	if err != nil {
		return 0, fmt.Errorf("invalid worker count %q", selected)
	}
	return count, nil
}
