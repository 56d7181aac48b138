package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BatchJob describes one queued download in a batch file.
type BatchJob struct {
	URL            string `yaml:"url"`
	Quality        string `yaml:"quality,omitempty"`
	TrimStart      string `yaml:"trim_start,omitempty"`
	TrimEnd        string `yaml:"trim_end,omitempty"`
	Subtitles      bool   `yaml:"subtitles,omitempty"`
	SubtitleLang   string `yaml:"subtitle_lang,omitempty"`
	ConvertCodec   string `yaml:"convert_codec,omitempty"`
	ExpandPlaylist bool   `yaml:"expand_playlist,omitempty"`
}

// BatchConfig is the YAML file format consumed by headless mode.
type BatchConfig struct {
	DownloadDir  string     `yaml:"download_dir,omitempty"`
	Workers      int        `yaml:"workers,omitempty"`
	Quality      string     `yaml:"quality,omitempty"`
	SubtitleLang string     `yaml:"subtitle_lang,omitempty"`
	Jobs         []BatchJob `yaml:"jobs"`
}

// LoadBatchConfig reads and validates a batch file.
func LoadBatchConfig(path string) (*BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var cfg BatchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse batch file %s: %w", path, err)
	}

	if len(cfg.Jobs) == 0 {
		return nil, fmt.Errorf("batch file %s lists no jobs", path)
	}
	for i, job := range cfg.Jobs {
		if job.URL == "" {
			return nil, fmt.Errorf("batch job %d has no url", i+1)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *BatchConfig) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkerCount
	}
	if c.Quality == "" {
		c.Quality = DefaultQuality
	}
	if c.SubtitleLang == "" {
		c.SubtitleLang = DefaultSubtitleLang
	}
}

// JobQuality resolves the effective quality for a job, falling back to
// the file-level default.
func (c *BatchConfig) JobQuality(job BatchJob) string {
	if job.Quality != "" {
		return job.Quality
	}
	return c.Quality
}

// JobSubtitleLang resolves the effective subtitle language for a job.
func (c *BatchConfig) JobSubtitleLang(job BatchJob) string {
	if job.SubtitleLang != "" {
		return job.SubtitleLang
	}
	return c.SubtitleLang
}
