// Package estimate implements the read-only size/ETA path: a metadata
// probe picks a candidate stream with the same selection rule the
// pipeline uses, and a short bounded transfer measures throughput. Every
// missing input degrades to an explicit unknown, never a zero division.
package estimate

import (
	"context"
	"fmt"

	"github.com/ytget/mediaqueue/internal/model"
	"github.com/ytget/mediaqueue/internal/pipeline"
)

// Unknown marks a size or ETA that could not be determined.
const Unknown = int64(-1)

// DefaultAudioBitrate is assumed when the probe reports no audio
// bitrate, in kbit/s.
const DefaultAudioBitrate = 128.0

// Prober measures current download throughput in bytes per second.
type Prober interface {
	MeasureThroughput(ctx context.Context) (float64, error)
}

// Estimate is the best-effort result for a not-yet-enqueued spec.
type Estimate struct {
	SizeBytes  int64 // Unknown when indeterminable
	ETASeconds int64 // Unknown when indeterminable
}

// SizeKnown reports whether a size was determined.
func (e Estimate) SizeKnown() bool { return e.SizeBytes > 0 }

// ETAKnown reports whether an ETA was determined.
func (e Estimate) ETAKnown() bool { return e.ETASeconds > 0 }

// String renders the estimate the way the status bar displays it.
func (e Estimate) String() string {
	size := "Unknown"
	if e.SizeKnown() {
		size = model.HumanSize(e.SizeBytes)
	}
	eta := "Unknown"
	if e.ETAKnown() {
		eta = model.FormatETA(float64(e.ETASeconds))
	}
	return fmt.Sprintf("Size: %s   ETA: %s", size, eta)
}

// Estimator queries metadata and throughput without downloading.
type Estimator struct {
	fetcher pipeline.Fetcher
	prober  Prober
}

// New creates an estimator over the given fetcher and prober.
func New(fetcher pipeline.Fetcher, prober Prober) *Estimator {
	return &Estimator{fetcher: fetcher, prober: prober}
}

// Estimate returns size and ETA for the spec. It never fails: a probe
// error, a missing size, or a failed throughput measurement each leave
// the corresponding field Unknown.
func (e *Estimator) Estimate(ctx context.Context, spec model.JobSpec) Estimate {
	result := Estimate{SizeBytes: Unknown, ETASeconds: Unknown}

	meta, err := e.fetcher.Probe(ctx, spec.SourceURL)
	if err == nil && meta != nil {
		result.SizeBytes = SelectSize(meta, spec.Quality)
	}

	if e.prober == nil || !result.SizeKnown() {
		return result
	}
	throughput, err := e.prober.MeasureThroughput(ctx)
	if err != nil || throughput <= 0 {
		return result
	}
	result.ETASeconds = int64(float64(result.SizeBytes) / throughput)
	if result.ETASeconds == 0 {
		result.ETASeconds = 1
	}
	return result
}

// SelectSize applies the pipeline's format selection rule to probed
// metadata and returns a declared or estimated byte size, or Unknown.
func SelectSize(meta *pipeline.Metadata, q model.QualitySelector) int64 {
	switch q.Kind {
	case model.QualityAudioOnly:
		return estimateAudioSize(meta)
	case model.QualityCappedHeight:
		if size := bestCappedSize(meta, q.MaxHeight); size > 0 {
			return size
		}
		return bestDeclaredSize(meta)
	default:
		return bestDeclaredSize(meta)
	}
}

// estimateAudioSize derives bytes from bitrate and duration when no
// exact size is declared: bitrate(kbit/s) * 1000 / 8 * duration.
func estimateAudioSize(meta *pipeline.Metadata) int64 {
	if meta.Duration <= 0 {
		return Unknown
	}
	bitrate := 0.0
	for _, f := range meta.Formats {
		if f.Height == 0 && f.Bitrate > bitrate {
			bitrate = f.Bitrate
		}
	}
	if bitrate == 0 {
		bitrate = DefaultAudioBitrate
	}
	return int64(bitrate * 1000 / 8 * meta.Duration)
}

// bestCappedSize picks the highest stream at or below the height cap
// among formats with a declared size.
func bestCappedSize(meta *pipeline.Metadata, maxHeight int) int64 {
	bestHeight := 0
	var size int64
	for _, f := range meta.Formats {
		if f.Height == 0 || f.Height > maxHeight || f.Size <= 0 {
			continue
		}
		if f.Height > bestHeight {
			bestHeight = f.Height
			size = f.Size
		}
	}
	if bestHeight == 0 {
		return Unknown
	}
	return size
}

// bestDeclaredSize falls back to the largest declared size.
func bestDeclaredSize(meta *pipeline.Metadata) int64 {
	best := Unknown
	for _, f := range meta.Formats {
		if f.Size > best {
			best = f.Size
		}
	}
	if best <= 0 {
		return Unknown
	}
	return best
}
