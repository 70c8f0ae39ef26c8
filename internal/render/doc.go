// Package render coordinates the caption burn-in phase: it extracts frames
// from the stitched video at the target framerate, partitions them into
// contiguous batches across a bounded worker pool, and has each worker
// rasterize captions onto its frames in place. Per-frame failures are logged
// and skipped; pool-level failures trigger a sequential fallback pass that
// produces identical output.
package render
