package platform

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpeg constants for audio conversion and trimming
const (
	FFmpegCommand = "ffmpeg"

	// Audio conversion quality target
	AudioBitrate    = "192k"
	AudioSampleRate = "44100"

	// Re-encode codecs used when stream copy fails
	TrimVideoCodec = "libx264"
	TrimAudioCodec = "aac"

	// Output suffix for trimmed files
	TrimmedSuffix = "_trimmed"
)

// FFmpegTool implements pipeline.MediaTool by shelling out to ffmpeg.
type FFmpegTool struct{}

// NewFFmpegTool creates the ffmpeg-backed media tool.
func NewFFmpegTool() *FFmpegTool {
	return &FFmpegTool{}
}

// Available reports whether the ffmpeg binary can be found. A missing
// binary degrades conversion and trimming to per-job non-fatal failures.
func (t *FFmpegTool) Available() bool {
	_, err := exec.LookPath(FFmpegCommand)
	return err == nil
}

// TranscodeAudio converts the input to the target audio codec at the
// fixed quality target and returns the new file path.
func (t *FFmpegTool) TranscodeAudio(ctx context.Context, inputPath, codec string) (string, error) {
	outputPath := audioOutputPath(inputPath, codec)
	args := BuildTranscodeArgs(inputPath, outputPath)
	return outputPath, runFFmpeg(ctx, args)
}

// Trim cuts the input to the mark range. Empty marks are omitted so
// open-ended ranges work. With fastCopy the streams are copied without
// re-encoding.
func (t *FFmpegTool) Trim(ctx context.Context, inputPath, startMark, endMark string, fastCopy bool) (string, error) {
	ext := filepath.Ext(inputPath)
	outputPath := strings.TrimSuffix(inputPath, ext) + TrimmedSuffix + ext
	args := BuildTrimArgs(inputPath, outputPath, startMark, endMark, fastCopy)
	return outputPath, runFFmpeg(ctx, args)
}

// BuildTranscodeArgs builds the ffmpeg arguments for audio extraction.
func BuildTranscodeArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-ab", AudioBitrate,
		"-ar", AudioSampleRate,
		outputPath,
	}
}

// BuildTrimArgs builds the ffmpeg arguments for trimming.
func BuildTrimArgs(inputPath, outputPath, startMark, endMark string, fastCopy bool) []string {
	args := []string{"-y", "-i", inputPath}
	if startMark != "" {
		args = append(args, "-ss", startMark)
	}
	if endMark != "" {
		args = append(args, "-to", endMark)
	}
	if fastCopy {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-c:v", TrimVideoCodec, "-c:a", TrimAudioCodec)
	}
	return append(args, outputPath)
}

// runFFmpeg executes ffmpeg and surfaces stderr in the error so stage
// logs carry the actual tool diagnostics.
func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, FFmpegCommand, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 500 {
			detail = detail[len(detail)-500:]
		}
		if detail != "" {
			return fmt.Errorf("%s failed: %w: %s", FFmpegCommand, err, detail)
		}
		return fmt.Errorf("%s failed: %w", FFmpegCommand, err)
	}
	return nil
}

// audioOutputPath swaps the extension for the target codec.
func audioOutputPath(inputPath, codec string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "." + codec
}
