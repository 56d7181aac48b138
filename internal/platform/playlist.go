package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultPlaylistTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// PlaylistEntry is one video resolved from a playlist.
type PlaylistEntry struct {
	VideoID string
	Title   string
	URL     string
}

// PlaylistExpander resolves playlist URLs into individual video entries
// so each video can be enqueued as its own job.
type PlaylistExpander struct {
	timeout time.Duration
}

// NewPlaylistExpander creates an expander with the default timeout.
func NewPlaylistExpander() *PlaylistExpander {
	return &PlaylistExpander{
		timeout: DefaultPlaylistTimeout,
	}
}

// SetTimeout sets the timeout for playlist resolution.
func (p *PlaylistExpander) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Expand lists the videos of the playlist referenced by the URL.
func (p *PlaylistExpander) Expand(ctx context.Context, url string) ([]PlaylistEntry, error) {
	playlistID := ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	entries := make([]PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, PlaylistEntry{
			VideoID: it.VideoID,
			Title:   it.Title,
			URL:     fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	return entries, nil
}

// IsPlaylistURL checks whether the URL carries a playlist parameter.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistParam)
}

// ExtractPlaylistID extracts the playlist ID from various URL formats:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(url string) string {
	if !strings.Contains(url, PlaylistParam) {
		return ""
	}
	parts := strings.Split(url, PlaylistParam)
	if len(parts) < 2 {
		return ""
	}
	playlistID := parts[1]
	if strings.Contains(playlistID, ParamSeparator) {
		playlistID = strings.Split(playlistID, ParamSeparator)[0]
	}
	return playlistID
}
