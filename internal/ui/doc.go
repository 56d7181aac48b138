// Package ui implements the Fyne desktop front end: the main window
// with the enqueue form and queue/history/log views, the settings
// dialog, and the compact theme. The root UI doubles as the pipeline
// observer; callbacks arriving from worker goroutines are marshalled
// onto the UI thread with fyne.Do.
package ui
