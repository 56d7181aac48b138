// Package pipeline implements the per-job state machine: fetch, optional
// audio conversion, optional trimming, optional subtitle retrieval, and
// finalization with history recording. It consumes the Fetcher and
// MediaTool capabilities and reports everything through a typed Observer
// that must tolerate calls from any worker goroutine.
package pipeline
