package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mediaqueue/internal/config"
	"github.com/ytget/mediaqueue/internal/worker"
)

// ShowSettingsDialog opens the settings form. The worker count change
// is delegated to the caller since it has to go through the pool.
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, onWorkerCount func(int)) {
	dirEntry := widget.NewEntry()
	dirEntry.SetText(settings.GetDownloadDirectory())

	var workerOptions []string
	for n := worker.MinWorkers; n <= worker.MaxWorkers; n++ {
		workerOptions = append(workerOptions, fmt.Sprintf("%d", n))
	}
	workerSelect := widget.NewSelect(workerOptions, nil)
	workerSelect.SetSelected(fmt.Sprintf("%d", settings.GetWorkerCount()))

	langEntry := widget.NewEntry()
	langEntry.SetText(settings.GetSubtitleLanguage())

	codecEntry := widget.NewEntry()
	codecEntry.SetText(settings.GetConvertCodec())

	form := []*widget.FormItem{
		widget.NewFormItem("Download folder", dirEntry),
		widget.NewFormItem("Workers", workerSelect),
		widget.NewFormItem("Subtitle language", langEntry),
		widget.NewFormItem("Audio codec", codecEntry),
	}

	dialog.ShowForm("Settings", "Save", "Cancel", form, func(confirmed bool) {
		if !confirmed {
			return
		}
		if dirEntry.Text != "" {
			settings.SetDownloadDirectory(dirEntry.Text)
		}
		settings.SetSubtitleLanguage(langEntry.Text)
		settings.SetConvertCodec(codecEntry.Text)

		if count, err := ParseWorkerCount(workerSelect.Selected); err == nil {
			onWorkerCount(count)
		}
	}, window)
}
