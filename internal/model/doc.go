// Package model defines the domain data structures used across the app:
// job specs, per-job run state, the pipeline stage enum with its
// forward-only transitions, quality selectors, and trim marks. Specs are
// immutable after submission; run state is owned by a single worker.
package model
