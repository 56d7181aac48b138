package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/mediaqueue/internal/batch"
	"github.com/ytget/mediaqueue/internal/config"
	"github.com/ytget/mediaqueue/internal/estimate"
	"github.com/ytget/mediaqueue/internal/history"
	"github.com/ytget/mediaqueue/internal/pipeline"
	"github.com/ytget/mediaqueue/internal/platform"
	"github.com/ytget/mediaqueue/internal/queue"
	"github.com/ytget/mediaqueue/internal/ui"
	"github.com/ytget/mediaqueue/internal/worker"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.mediaqueue"
	AppName = "mediaqueue"
)

func main() {
	batchFile := flag.String("batch", "", "run a YAML batch file headless and exit")
	flag.Parse()

	fmt.Printf("%s v%s starting...\n", AppName, version)

	if *batchFile != "" {
		runBatch(*batchFile)
		return
	}
	runDesktop()
}

// runBatch processes the batch file without a window.
func runBatch(path string) {
	failed, err := batch.NewRunner().Run(context.Background(), path)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// runDesktop wires the queue, pool and pipeline behind the Fyne UI.
func runDesktop() {
	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(ui.WindowDefaultWidth, ui.WindowDefaultHeight))

	settings := config.NewSettings(myApp)
	downloadsDir := settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		fmt.Printf("failed to ensure downloads dir: %v\n", err)
	}

	media := platform.NewFFmpegTool()
	if !media.Available() {
		log.Printf("ffmpeg not found on PATH; conversion and trimming will fail per job")
	}
	fetcher := platform.NewYTDLPFetcher()

	store, err := history.Open(history.DefaultPath())
	if err != nil {
		log.Printf("History disabled: %v", err)
		store = nil
	}

	tasks := queue.New()
	rootUI := ui.NewRootUI(myWindow, myApp, ui.Deps{
		Tasks:     tasks,
		Estimator: estimate.New(fetcher, platform.NewHTTPProber()),
		History:   store,
		Expander:  platform.NewPlaylistExpander(),
	})

	pipe := pipeline.New(fetcher, media, rootUI, historyAppender(store))
	pool := worker.NewPool(tasks, pipe, settings.GetWorkerCount())
	if err := pool.Start(); err != nil {
		log.Printf("Pool start: %v", err)
	}
	rootUI.SetPool(pool)
	myWindow.ShowAndRun()

	tasks.Close()
	if err := pool.Stop(); err != nil {
		log.Printf("Pool shutdown: %v", err)
	}
}

// historyAppender avoids handing the pipeline a typed nil interface.
func historyAppender(store *history.Store) pipeline.HistoryAppender {
	if store == nil {
		return nil
	}
	return store
}
