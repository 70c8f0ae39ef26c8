package encoding

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/services"
)

// Request describes one encode: mux the rendered frame sequence in FramesDir
// with the export's audio into Output.
type Request struct {
	FramesDir string
	Framerate float64
	// AudioSource is the video whose audio track is carried over, normally
	// the stitched segment file. ReplacementAudio overrides it with an
	// external track. When both are empty the output is video only.
	AudioSource      string
	ReplacementAudio string
	Output           string
	Quality          string
	Accel            ffmpeg.Accel
	// DurationMs sizes progress percentages. Zero disables percent
	// reporting.
	DurationMs int64
	OnProgress func(percent float64)
}

// Encoder drives the final mux of rendered frames and audio into the export
// container.
type Encoder struct {
	cfg    *config.Config
	logger *slog.Logger
	runner ffmpeg.Runner
}

// NewEncoder constructs the encoder with a real command runner.
func NewEncoder(cfg *config.Config, logger *slog.Logger) *Encoder {
	runner := &ffmpeg.CommandRunner{Grace: time.Duration(cfg.Export.TermGraceSeconds) * time.Second}
	return NewEncoderWithRunner(cfg, logger, runner)
}

// NewEncoderWithRunner allows injecting the runner (used in tests and by
// the export controller, which supplies a process-tracking runner).
func NewEncoderWithRunner(cfg *config.Config, logger *slog.Logger, runner ffmpeg.Runner) *Encoder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Encoder{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "encoder"),
		runner: runner,
	}
}

// DetectAccel probes for a usable hardware encoder, honoring the config
// toggle. Software is reported when acceleration is disabled or nothing
// probes healthy.
func (e *Encoder) DetectAccel(ctx context.Context) ffmpeg.Accel {
	logger := logging.WithContext(ctx, e.logger)
	if !e.cfg.Export.HardwareAccel {
		logger.Debug("hardware acceleration disabled in config")
		return ffmpeg.AccelNone
	}
	accel := ffmpeg.Detect(ctx, e.runner, e.cfg.FFmpegBinary())
	if accel.Hardware() {
		logger.Info("hardware encoder selected",
			logging.String("accel", string(accel)),
			logging.String("encoder", accel.Encoder()))
	} else {
		logger.Info("no hardware encoder available, encoding in software")
	}
	return accel
}

// Encode runs the mux, retrying exactly once on the conservative software
// path when the first attempt dies to a disk or I/O failure. Every other
// failure mode surfaces immediately.
func (e *Encoder) Encode(ctx context.Context, req Request) error {
	logger := logging.WithContext(ctx, e.logger)
	if err := e.validateEnvironment(req); err != nil {
		return err
	}

	primary := buildPlan(req, req.Accel, false)
	logger.Info("starting encode",
		logging.String("encoder", primary.encoder),
		logging.String("output", req.Output),
		logging.Int("crf", crfFor(req.Quality)))

	res := e.run(ctx, req, primary)
	if !res.Failed() {
		return e.verifyOutput(req.Output)
	}
	if ctx.Err() != nil {
		return services.Wrap(services.ErrCancelled, "encoding", "encode", "", ctx.Err())
	}
	if !ffmpeg.MatchIOFailure(res.Stderr) {
		return services.Wrap(services.ErrEncode, "encoding", "encode",
			fmt.Sprintf("%s encode failed", primary.encoder), res.Detail())
	}

	logger.Warn("encode hit an I/O failure, retrying on the conservative software path",
		logging.String("encoder", primary.encoder),
		logging.Error(res.Detail()))

	retry := buildPlan(req, req.Accel, true)
	retryRes := e.run(ctx, req, retry)
	if retryRes.Failed() {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, "encoding", "encode", "", ctx.Err())
		}
		return services.Wrap(services.ErrEncode, "encoding", "encode",
			fmt.Sprintf("%s encode failed (%v); fallback %s encode also failed", primary.encoder, res.Detail(), retry.encoder),
			retryRes.Detail())
	}
	logger.Info("fallback encode completed", logging.String("encoder", retry.encoder))
	return e.verifyOutput(req.Output)
}

func (e *Encoder) run(ctx context.Context, req Request, p plan) ffmpeg.Result {
	var lastPercent float64
	onLine := func(line string) {
		progress, ok := ffmpeg.ParseProgress(line)
		if !ok || req.OnProgress == nil || req.DurationMs <= 0 {
			return
		}
		percent := float64(progress.OutTimeMs) / float64(req.DurationMs) * 100
		if percent > 100 {
			percent = 100
		}
		if percent < lastPercent {
			return
		}
		lastPercent = percent
		req.OnProgress(percent)
	}
	return e.runner.Run(ctx, e.cfg.FFmpegBinary(), p.args, onLine)
}

func (e *Encoder) verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrEncode, "encoding", "verify output",
			fmt.Sprintf("Encoded file missing at %s", path), err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrEncode, "encoding", "verify output",
			fmt.Sprintf("Encoded file at %s is empty", path), nil)
	}
	return nil
}
