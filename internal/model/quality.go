package model

import (
	"fmt"
	"strconv"
	"strings"
)

// QualityKind discriminates the quality selector variants.
type QualityKind int

const (
	// QualityBest requests the highest-quality combined video+audio stream
	QualityBest QualityKind = iota

	// QualityCappedHeight requests the best video at or below a pixel height
	QualityCappedHeight

	// QualityAudioOnly requests the best audio-only stream
	QualityAudioOnly
)

// QualitySelector is the parsed form of a user quality choice. It is
// resolved once at submission time so the pipeline never branches on raw
// strings.
type QualitySelector struct {
	Kind      QualityKind
	MaxHeight int // pixel ceiling, only set for QualityCappedHeight
}

// ParseQualitySelector resolves a user string like "best", "720p" or
// "audio" into a selector.
func ParseQualitySelector(s string) (QualitySelector, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "best":
		return QualitySelector{Kind: QualityBest}, nil
	case s == "audio":
		return QualitySelector{Kind: QualityAudioOnly}, nil
	case strings.HasSuffix(s, "p"):
		height, err := strconv.Atoi(strings.TrimSuffix(s, "p"))
		if err != nil || height <= 0 {
			return QualitySelector{}, fmt.Errorf("invalid quality %q", s)
		}
		return QualitySelector{Kind: QualityCappedHeight, MaxHeight: height}, nil
	default:
		return QualitySelector{}, fmt.Errorf("invalid quality %q", s)
	}
}

// FormatSpec returns the yt-dlp format selector for the quality choice.
// The capped-height form carries a "/best" tail so an unavailable cap
// falls back to the unconstrained best stream instead of failing.
func (q QualitySelector) FormatSpec() string {
	switch q.Kind {
	case QualityAudioOnly:
		return "bestaudio/best"
	case QualityCappedHeight:
		return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best", q.MaxHeight)
	default:
		return "bestvideo+bestaudio/best"
	}
}

// String returns the user-facing form of the selector.
func (q QualitySelector) String() string {
	switch q.Kind {
	case QualityAudioOnly:
		return "audio"
	case QualityCappedHeight:
		return fmt.Sprintf("%dp", q.MaxHeight)
	default:
		return "best"
	}
}
