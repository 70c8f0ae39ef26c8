// Package ffmpeg runs ffmpeg subprocesses for the export pipeline.
//
// It provides the shared Runner abstraction (with live stderr streaming and a
// bounded tail for failure classification), progress line parsing, hardware
// encoder probing, and the error classifiers the encoder uses to decide
// whether a failed run deserves its fallback retry. Argument lists are built
// by the domain packages (segments, encoding); this package only executes
// them and reports what happened.
package ffmpeg
