package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Time conversion constants
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)

// TrimRange describes an optional start/end pair for time-range trimming.
// Marks are either plain seconds ("90") or HH:MM:SS strings; both forms
// are accepted at submission and normalized before use.
type TrimRange struct {
	Start string
	End   string
}

// IsZero reports whether no trimming was requested.
func (tr TrimRange) IsZero() bool {
	return strings.TrimSpace(tr.Start) == "" && strings.TrimSpace(tr.End) == ""
}

// Normalized returns the range with both marks in HH:MM:SS form.
func (tr TrimRange) Normalized() (TrimRange, error) {
	start, err := NormalizeMark(tr.Start)
	if err != nil {
		return TrimRange{}, fmt.Errorf("invalid start mark: %w", err)
	}
	end, err := NormalizeMark(tr.End)
	if err != nil {
		return TrimRange{}, fmt.Errorf("invalid end mark: %w", err)
	}
	return TrimRange{Start: start, End: end}, nil
}

// NormalizeMark converts a time mark to HH:MM:SS. A mark that already
// contains a colon is returned unchanged, so normalization is idempotent.
// An empty mark normalizes to an empty string.
func NormalizeMark(mark string) (string, error) {
	s := strings.TrimSpace(mark)
	if s == "" {
		return "", nil
	}
	if strings.Contains(s, ":") {
		return s, nil
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil || seconds < 0 {
		return "", fmt.Errorf("cannot parse %q as seconds", mark)
	}
	total := int(seconds)
	hours := total / SecondsPerHour
	minutes := (total % SecondsPerHour) / SecondsPerMinute
	secs := total % SecondsPerMinute
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs), nil
}
