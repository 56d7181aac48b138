package model

import (
	"strings"
	"testing"
)

func TestNewJobSpec(t *testing.T) {
	spec, err := NewJobSpec("https://youtube.com/watch?v=test", "720p", "/tmp/downloads")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if spec.SourceURL != "https://youtube.com/watch?v=test" {
		t.Errorf("SourceURL = %q", spec.SourceURL)
	}
	if spec.Quality.Kind != QualityCappedHeight || spec.Quality.MaxHeight != 720 {
		t.Errorf("Quality = %+v", spec.Quality)
	}
	if spec.SubtitleLang != DefaultSubtitleLang {
		t.Errorf("Expected default subtitle lang %q, got %q", DefaultSubtitleLang, spec.SubtitleLang)
	}
	if spec.AllowPlaylistExpansion {
		t.Error("Plain video URL should not allow playlist expansion")
	}
	if !strings.HasPrefix(spec.ID, JobIDPrefix) {
		t.Errorf("Expected ID with prefix %q, got %q", JobIDPrefix, spec.ID)
	}
	if spec.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestNewJobSpecValidation(t *testing.T) {
	if _, err := NewJobSpec("  ", "best", "/tmp"); err == nil {
		t.Error("Expected error for empty URL")
	}
	if _, err := NewJobSpec("https://example.com/v", "superduper", "/tmp"); err == nil {
		t.Error("Expected error for invalid quality")
	}
}

func TestNewJobSpecUniqueIDs(t *testing.T) {
	a, err := NewJobSpec("https://example.com/a", "best", "/tmp")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := NewJobSpec("https://example.com/b", "best", "/tmp")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a.ID == b.ID {
		t.Error("Expected unique job IDs")
	}
}

func TestLooksLikePlaylist(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://youtube.com/watch?v=abc", false},
		{"https://youtube.com/watch?v=abc&list=PL123", true},
		{"https://youtube.com/playlist?list=PL123", true},
		{"https://example.com/PLAYLIST/9", true},
	}

	for _, tt := range tests {
		if got := LooksLikePlaylist(tt.url); got != tt.want {
			t.Errorf("LooksLikePlaylist(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestFailureKindFatal(t *testing.T) {
	if !FailureFetch.Fatal() {
		t.Error("Fetch failures must be fatal")
	}
	for _, kind := range []FailureKind{FailureTranscode, FailureTrim, FailureSubtitles} {
		if kind.Fatal() {
			t.Errorf("%s failures must be non-fatal", kind)
		}
	}
}
