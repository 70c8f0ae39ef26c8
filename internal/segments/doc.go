// Package segments cuts kept intervals out of a source video and stitches
// them back into one contiguous file. Extraction re-encodes so cuts land on
// exact timestamps rather than keyframes; concatenation uses ffmpeg's concat
// demuxer over a generated list file. A single interval covering the whole
// source skips ffmpeg entirely and becomes a verified copy.
package segments
