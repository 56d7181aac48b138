package config

import (
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/mediaqueue/internal/worker"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestDownloadDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	dir := settings.GetDownloadDirectory()
	if dir == "" {
		t.Error("Download directory should not be empty")
	}

	// Test setting custom value
	customDir := "/custom/downloads"
	settings.SetDownloadDirectory(customDir)

	retrievedDir := settings.GetDownloadDirectory()
	if retrievedDir != customDir {
		t.Errorf("Expected download directory %s, got %s", customDir, retrievedDir)
	}
}

func TestWorkerCount(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	count := settings.GetWorkerCount()
	if count != DefaultWorkerCount {
		t.Errorf("Expected default worker count %d, got %d", DefaultWorkerCount, count)
	}

	// Test setting custom value
	settings.SetWorkerCount(4)

	if got := settings.GetWorkerCount(); got != 4 {
		t.Errorf("Expected worker count 4, got %d", got)
	}

	// Test boundary values
	settings.SetWorkerCount(0)
	if settings.GetWorkerCount() != worker.MinWorkers {
		t.Errorf("Worker count should be clamped to minimum %d", worker.MinWorkers)
	}

	settings.SetWorkerCount(15)
	if settings.GetWorkerCount() != worker.MaxWorkers {
		t.Errorf("Worker count should be clamped to maximum %d", worker.MaxWorkers)
	}
}

func TestQuality(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	quality := settings.GetQuality()
	if quality != DefaultQuality {
		t.Errorf("Expected default quality %s, got %s", DefaultQuality, quality)
	}

	// Test setting custom value
	settings.SetQuality("720p")

	if got := settings.GetQuality(); got != "720p" {
		t.Errorf("Expected quality 720p, got %s", got)
	}
}

func TestSubtitleLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	lang := settings.GetSubtitleLanguage()
	if lang != DefaultSubtitleLang {
		t.Errorf("Expected default subtitle language %s, got %s", DefaultSubtitleLang, lang)
	}

	// Test setting custom value
	settings.SetSubtitleLanguage("pt")

	if got := settings.GetSubtitleLanguage(); got != "pt" {
		t.Errorf("Expected subtitle language pt, got %s", got)
	}
}

func TestConvertCodec(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	codec := settings.GetConvertCodec()
	if codec != DefaultConvertCodec {
		t.Errorf("Expected default codec %s, got %s", DefaultConvertCodec, codec)
	}

	// Test setting custom value
	settings.SetConvertCodec("opus")

	if got := settings.GetConvertCodec(); got != "opus" {
		t.Errorf("Expected codec opus, got %s", got)
	}

	// Test empty codec defaults back
	settings.SetConvertCodec("")
	if got := settings.GetConvertCodec(); got != DefaultConvertCodec {
		t.Errorf("Empty codec should default to %s, got %s", DefaultConvertCodec, got)
	}
}

func TestGetQualityOptions(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	options := settings.GetQualityOptions()
	expectedOptions := []string{"best", "1080p", "720p", "480p", "audio"}

	if len(options) != len(expectedOptions) {
		t.Fatalf("Expected %d quality options, got %d", len(expectedOptions), len(options))
	}

	for i, expected := range expectedOptions {
		if options[i] != expected {
			t.Errorf("Quality option %d: expected %s, got %s", i, expected, options[i])
		}
	}
}
