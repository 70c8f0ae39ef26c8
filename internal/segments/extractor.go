package segments

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"clipforge/internal/config"
	"clipforge/internal/fileutil"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/services"
	"clipforge/internal/timeline"
)

// Streams selects which tracks an extraction carries.
type Streams int

const (
	StreamsAll Streams = iota
	StreamsVideoOnly
	StreamsAudioOnly
)

// Request describes one stitch operation: cut every interval out of Source
// and concatenate the pieces into Output, using WorkDir for intermediates.
type Request struct {
	Source           string
	Output           string
	WorkDir          string
	Intervals        []timeline.Interval
	SourceDurationMs int64
	Streams          Streams
	// OnProgress, when set, is called after each completed segment.
	OnProgress func(done, total int)
}

// Extractor runs the extraction and concatenation phase of an export.
type Extractor struct {
	cfg    *config.Config
	logger *slog.Logger
	runner ffmpeg.Runner
}

// NewExtractor constructs the extractor with a real command runner.
func NewExtractor(cfg *config.Config, logger *slog.Logger) *Extractor {
	runner := &ffmpeg.CommandRunner{Grace: time.Duration(cfg.Export.TermGraceSeconds) * time.Second}
	return NewExtractorWithRunner(cfg, logger, runner)
}

// NewExtractorWithRunner allows injecting the runner (used in tests and by
// the export controller, which supplies a process-tracking runner).
func NewExtractorWithRunner(cfg *config.Config, logger *slog.Logger, runner ffmpeg.Runner) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "segment-extractor"),
		runner: runner,
	}
}

// Stitch cuts the requested intervals and concatenates them in order. The
// intervals are merged first, so overlapping or touching ranges become one
// segment. When the merged set is a single interval covering the entire
// source and all streams are kept, the source is copied unchanged instead of
// being re-encoded.
func (e *Extractor) Stitch(ctx context.Context, req Request) error {
	logger := logging.WithContext(ctx, e.logger)
	merged := timeline.MergeOverlapping(req.Intervals)
	if len(merged) == 0 {
		return services.Wrap(services.ErrValidation, "extracting", "stitch", "no intervals to extract", nil)
	}

	if req.Streams == StreamsAll && coversFullSource(merged, req.SourceDurationMs) {
		logger.Info("no cuts needed, copying source",
			logging.String("source", req.Source),
			logging.Int64("duration_ms", req.SourceDurationMs))
		if err := fileutil.CopyVerified(req.Source, req.Output); err != nil {
			return services.Wrap(services.ErrResource, "extracting", "copy source", "", err)
		}
		if req.OnProgress != nil {
			req.OnProgress(1, 1)
		}
		return nil
	}

	logger.Info("extracting segments",
		logging.Int("segments", len(merged)),
		logging.Int64("kept_ms", timeline.TotalDuration(merged)),
		logging.String("source", req.Source))

	paths := make([]string, 0, len(merged))
	for i, interval := range merged {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrCancelled, "extracting", "stitch", "", err)
		}
		segPath := filepath.Join(req.WorkDir, fmt.Sprintf("segment_%03d.mp4", i))
		if err := e.extract(ctx, req.Source, interval, req.Streams, segPath); err != nil {
			return services.Wrap(services.ErrExternalProcess, "extracting",
				fmt.Sprintf("segment %d of %d", i+1, len(merged)),
				fmt.Sprintf("%dms to %dms", interval.StartMs, interval.EndMs), err)
		}
		paths = append(paths, segPath)
		logger.Debug("segment extracted",
			logging.Int("index", i),
			logging.Int64("start_ms", interval.StartMs),
			logging.Int64("end_ms", interval.EndMs))
		if req.OnProgress != nil {
			req.OnProgress(i+1, len(merged)+1)
		}
	}

	if err := e.concat(ctx, paths, req.WorkDir, req.Output); err != nil {
		return services.Wrap(services.ErrExternalProcess, "extracting", "concatenate segments", "", err)
	}
	if req.OnProgress != nil {
		req.OnProgress(len(merged)+1, len(merged)+1)
	}
	logger.Info("segments stitched", logging.String("output", req.Output))
	return nil
}

func (e *Extractor) extract(ctx context.Context, source string, interval timeline.Interval, streams Streams, out string) error {
	res := e.runner.Run(ctx, e.cfg.FFmpegBinary(), extractArgs(source, interval, streams, out), nil)
	if res.Failed() {
		return res.Detail()
	}
	return nil
}

func (e *Extractor) concat(ctx context.Context, paths []string, workDir, out string) error {
	listPath := filepath.Join(workDir, "concat.txt")
	if err := writeConcatList(listPath, paths); err != nil {
		return err
	}
	res := e.runner.Run(ctx, e.cfg.FFmpegBinary(), concatArgs(listPath, out), nil)
	if res.Failed() {
		return res.Detail()
	}
	return nil
}

// extractArgs builds the per-interval cut. Seeking happens before the input
// for speed; re-encoding makes the cut land on the exact timestamp instead of
// the previous keyframe. Timestamps are reset so the concat demuxer sees
// segments that each start at zero.
func extractArgs(source string, interval timeline.Interval, streams Streams, out string) []string {
	args := []string{
		"-y", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-ss", formatSeconds(interval.StartMs),
		"-i", source,
		"-t", formatSeconds(interval.DurationMs()),
	}
	switch streams {
	case StreamsVideoOnly:
		args = append(args, "-an")
	case StreamsAudioOnly:
		args = append(args, "-vn")
	}
	if streams != StreamsAudioOnly {
		args = append(args, "-c:v", "libx264", "-preset", "veryfast", "-crf", "18")
	}
	if streams != StreamsVideoOnly {
		args = append(args, "-c:a", "aac", "-b:a", "192k")
	}
	args = append(args, "-avoid_negative_ts", "make_zero", out)
	return args
}

func concatArgs(listPath, out string) []string {
	return []string{
		"-y", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		out,
	}
}

// writeConcatList emits the concat demuxer's list file. Single quotes inside
// paths are escaped the way the demuxer expects.
func writeConcatList(path string, files []string) error {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(f, "'", `'\''`))
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// coversFullSource reports whether the merged set is one interval spanning
// the whole source. Durations within one millisecond count as full coverage
// so probe rounding does not force a pointless re-encode.
func coversFullSource(merged []timeline.Interval, durationMs int64) bool {
	if len(merged) != 1 || durationMs <= 0 {
		return false
	}
	return merged[0].StartMs <= 0 && merged[0].EndMs >= durationMs-1
}

func formatSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
}
