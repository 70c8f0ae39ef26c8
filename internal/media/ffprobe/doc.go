// Package ffprobe runs ffprobe against a media file and parses its JSON
// report into typed structs.
//
// Inspect is the entry point: it shells out with -show_streams and
// -show_format and returns a Result. Accessors on Result answer the
// questions the export pipeline asks most, such as duration in
// milliseconds, container size, stream counts, and the geometry and frame
// rate of the first video stream. Rational rates like "30000/1001" are
// reduced to floats on access.
//
// Nothing in here knows about clipforge jobs or configuration, so the
// package can wrap any ffprobe invocation.
package ffprobe
