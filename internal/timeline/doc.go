// Package timeline computes which time regions of a source video survive
// editing and re-derives caption timestamps onto the post-cut timeline.
//
// It is pure interval algebra over integer milliseconds: no I/O, no external
// tools. The export controller feeds its output to the segment extractor and
// the caption rasterizer.
package timeline
