package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// JobView is the UI-side snapshot of one job. It is updated from
// observer callbacks and rendered by JobRow.
type JobView struct {
	ID       string
	URL      string
	Status   string
	Percent  float64
	FilePath string
	Failed   bool
}

// JobRow is a compact row widget showing one job's URL, status and
// progress, with a reveal action once a file exists.
type JobRow struct {
	widget.BaseWidget

	view JobView

	titleLabel  *widget.Label
	statusLabel *widget.Label
	progressBar *widget.ProgressBar
	revealBtn   *widget.Button

	onReveal func(filePath string)
}

// NewJobRow creates a row for the given view.
func NewJobRow(view JobView, onReveal func(filePath string)) *JobRow {
	row := &JobRow{
		view:     view,
		onReveal: onReveal,
	}
	row.ExtendBaseWidget(row)

	row.titleLabel = widget.NewLabel("")
	row.titleLabel.Truncation = fyne.TextTruncateEllipsis

	row.statusLabel = widget.NewLabel("")
	row.statusLabel.Alignment = fyne.TextAlignTrailing

	row.progressBar = widget.NewProgressBar()

	row.revealBtn = widget.NewButton("open", func() {
		if row.onReveal != nil && row.view.FilePath != "" {
			row.onReveal(row.view.FilePath)
		}
	})
	row.revealBtn.Importance = widget.MediumImportance

	row.Update(view)
	return row
}

// Update replaces the rendered view.
func (row *JobRow) Update(view JobView) {
	row.view = view

	title := strings.TrimSpace(view.URL)
	if title == "" {
		title = view.ID
	}
	row.titleLabel.SetText(title)

	status := view.Status
	if status == "" {
		status = "Queued"
	}
	if view.Failed {
		row.statusLabel.Importance = widget.DangerImportance
	} else if strings.HasPrefix(status, "Ready") {
		row.statusLabel.Importance = widget.SuccessImportance
	} else {
		row.statusLabel.Importance = widget.MediumImportance
	}
	row.statusLabel.SetText(status)

	row.progressBar.TextFormatter = func() string {
		return fmt.Sprintf(ProgressLabelFormat, int(row.progressBar.Value*100))
	}
	row.progressBar.SetValue(view.Percent / 100)

	if view.FilePath != "" && !strings.HasPrefix(view.FilePath, "http") {
		row.revealBtn.Enable()
	} else {
		row.revealBtn.Disable()
	}
	row.Refresh()
}

// CreateRenderer builds the row layout.
func (row *JobRow) CreateRenderer() fyne.WidgetRenderer {
	info := container.NewBorder(nil, nil, nil, row.statusLabel, row.titleLabel)
	main := container.NewBorder(nil, nil, nil, row.revealBtn, container.NewVBox(info, row.progressBar))
	return widget.NewSimpleRenderer(container.NewVBox(main, widget.NewSeparator()))
}
