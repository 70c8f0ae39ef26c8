package render

import (
	"clipforge/internal/config"
)

// workerCount picks the pool size: three quarters of the logical cores,
// bounded below by one and above by the memory budget (one worker per
// worker_memory_mb of free RAM) and the configured hard cap. An explicit
// workers setting overrides the heuristic but still respects the cap.
// Unknown free memory (zero) skips the memory bound.
func workerCount(cfg *config.Config, cores int, freeBytes int64) int {
	maxWorkers := cfg.Render.MaxWorkers
	if cfg.Render.Workers > 0 {
		return min(cfg.Render.Workers, maxWorkers)
	}
	n := int(0.75 * float64(cores))
	if freeBytes > 0 {
		perWorker := int64(cfg.Render.WorkerMemoryMB) * 1024 * 1024
		if byMemory := int(freeBytes / perWorker); byMemory < n {
			n = byMemory
		}
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// batch is a contiguous run of frame indices owned by one worker.
type batch struct {
	start int
	count int
}

// splitBatches partitions frameCount frames into contiguous batches of
// ceil(frameCount/workers) frames each. Every frame lands in exactly one
// batch and batch order preserves frame order.
func splitBatches(frameCount, workers int) []batch {
	if frameCount <= 0 || workers <= 0 {
		return nil
	}
	size := (frameCount + workers - 1) / workers
	batches := make([]batch, 0, (frameCount+size-1)/size)
	for start := 0; start < frameCount; start += size {
		count := size
		if start+count > frameCount {
			count = frameCount - start
		}
		batches = append(batches, batch{start: start, count: count})
	}
	return batches
}
