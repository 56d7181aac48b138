package model

import "testing"

func TestHumanSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "Unknown"},
		{-1, "Unknown"},
		{512, "512.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}

	for _, tt := range tests {
		if got := HumanSize(tt.bytes); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "Unknown"},
		{-3, "Unknown"},
		{42, "0m42s"},
		{90, "1m30s"},
		{3605, "60m5s"},
	}

	for _, tt := range tests {
		if got := FormatETA(tt.seconds); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
