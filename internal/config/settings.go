package config

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/mediaqueue/internal/platform"
	"github.com/ytget/mediaqueue/internal/worker"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir  = "download_directory"
	KeyWorkerCount  = "worker_count"
	KeyQuality      = "quality_selector"
	KeySubtitleLang = "subtitle_language"
	KeyConvertCodec = "convert_audio_codec"
)

// Default values
const (
	DefaultWorkerCount  = 2
	DefaultQuality      = "best"
	DefaultSubtitleLang = "en"
	DefaultConvertCodec = "mp3"
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/downloads"
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetWorkerCount returns the configured pool size
func (s *Settings) GetWorkerCount() int {
	value := s.app.Preferences().Int(KeyWorkerCount)
	if value <= 0 {
		s.SetWorkerCount(DefaultWorkerCount)
		return DefaultWorkerCount
	}
	return value
}

// SetWorkerCount sets the pool size, clamped to the supported range
func (s *Settings) SetWorkerCount(count int) {
	if count < worker.MinWorkers {
		count = worker.MinWorkers
	}
	if count > worker.MaxWorkers {
		count = worker.MaxWorkers
	}
	s.app.Preferences().SetInt(KeyWorkerCount, count)
}

// GetQuality returns the configured quality selector string
func (s *Settings) GetQuality() string {
	quality := s.app.Preferences().String(KeyQuality)
	if quality == "" {
		s.SetQuality(DefaultQuality)
		return DefaultQuality
	}
	return quality
}

// SetQuality sets the quality selector string
func (s *Settings) SetQuality(quality string) {
	s.app.Preferences().SetString(KeyQuality, quality)
}

// GetSubtitleLanguage returns the preferred subtitle language
func (s *Settings) GetSubtitleLanguage() string {
	lang := s.app.Preferences().String(KeySubtitleLang)
	if lang == "" {
		s.SetSubtitleLanguage(DefaultSubtitleLang)
		return DefaultSubtitleLang
	}
	return lang
}

// SetSubtitleLanguage sets the preferred subtitle language
func (s *Settings) SetSubtitleLanguage(lang string) {
	s.app.Preferences().SetString(KeySubtitleLang, lang)
}

// GetConvertCodec returns the target codec for audio conversion
func (s *Settings) GetConvertCodec() string {
	codec := s.app.Preferences().String(KeyConvertCodec)
	if codec == "" {
		s.SetConvertCodec(DefaultConvertCodec)
		return DefaultConvertCodec
	}
	return codec
}

// SetConvertCodec sets the target codec for audio conversion
func (s *Settings) SetConvertCodec(codec string) {
	if codec == "" {
		codec = DefaultConvertCodec
	}
	s.app.Preferences().SetString(KeyConvertCodec, codec)
}

// GetQualityOptions returns the quality choices offered in the UI
func (s *Settings) GetQualityOptions() []string {
	return []string{"best", "1080p", "720p", "480p", "audio"}
}
