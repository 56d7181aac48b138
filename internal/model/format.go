package model

import "fmt"

// Byte size units for human-readable formatting
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize formats a byte count the way status lines and the estimator
// display it. Zero or negative counts render as "Unknown".
func HumanSize(bytes int64) string {
	if bytes <= 0 {
		return "Unknown"
	}
	size := float64(bytes)
	for _, unit := range sizeUnits {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f PB", size)
}

// FormatETA renders a duration in seconds as "XmYs", or "Unknown" for a
// non-positive value.
func FormatETA(seconds float64) string {
	if seconds <= 0 {
		return "Unknown"
	}
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%dm%ds", mins, secs)
}
