package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/mediaqueue/internal/pipeline"
)

// Progress reporting interval for yt-dlp downloads
const (
	ProgressInterval = 500 * time.Millisecond
)

// YTDLPFetcher implements pipeline.Fetcher on top of the yt-dlp binary
// via github.com/lrstanley/go-ytdlp.
type YTDLPFetcher struct{}

// NewYTDLPFetcher creates the yt-dlp backed fetcher.
func NewYTDLPFetcher() *YTDLPFetcher {
	return &YTDLPFetcher{}
}

// Fetch downloads the URL with the given format selector into the
// destination template and returns the produced file path.
func (f *YTDLPFetcher) Fetch(ctx context.Context, url, formatSpec, destTemplate string, expandPlaylist bool, onProgress pipeline.ProgressFunc) (string, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Format(formatSpec).
		Output(destTemplate)

	if !expandPlaylist {
		dl = dl.NoPlaylist()
	}

	if onProgress != nil {
		dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
			onProgress(int64(update.DownloadedBytes), int64(update.TotalBytes))
		})
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		return "", err
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return "", fmt.Errorf("failed to read download info: %w", err)
	}
	for _, entry := range info {
		if entry.Filename != nil && *entry.Filename != "" {
			return *entry.Filename, nil
		}
	}
	return "", fmt.Errorf("yt-dlp reported no output file for %s", url)
}

// Probe retrieves metadata without downloading.
func (f *YTDLPFetcher) Probe(ctx context.Context, url string) (*pipeline.Metadata, error) {
	dl := ytdlp.New().
		SkipDownload().
		Quiet().
		NoWarnings()

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, err
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("no metadata for %s", url)
	}

	meta := &pipeline.Metadata{}
	first := info[0]
	if first.Title != nil {
		meta.Title = *first.Title
	}
	if first.Duration != nil {
		meta.Duration = *first.Duration
	}
	for _, format := range first.Formats {
		if format == nil {
			continue
		}
		fi := pipeline.FormatInfo{}
		if format.Height != nil {
			fi.Height = int(*format.Height)
		}
		if format.ABR != nil {
			fi.Bitrate = *format.ABR
		} else if format.TBR != nil {
			fi.Bitrate = *format.TBR
		}
		if format.FileSize != nil {
			fi.Size = int64(*format.FileSize)
		} else if format.FileSizeApprox != nil {
			fi.Size = int64(*format.FileSizeApprox)
		}
		meta.Formats = append(meta.Formats, fi)
	}
	return meta, nil
}

// FetchSubtitles retrieves subtitles (manual or auto-generated) for the
// requested language without downloading the media again.
func (f *YTDLPFetcher) FetchSubtitles(ctx context.Context, url, lang, destTemplate string) error {
	dl := ytdlp.New().
		SkipDownload().
		WriteSubs().
		WriteAutoSubs().
		SubLangs(lang).
		Output(destTemplate).
		Quiet()

	_, err := dl.Run(ctx, url)
	return err
}
