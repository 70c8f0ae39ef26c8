package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"clipforge/internal/caption"
	"clipforge/internal/config"
	"clipforge/internal/encoding"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/preflight"
	"clipforge/internal/queue"
	"clipforge/internal/raster"
	"clipforge/internal/render"
	"clipforge/internal/segments"
	"clipforge/internal/services"
)

// Request describes one export: cut Source per the caption edits and clips,
// burn captions in, and write the result to Output.
type Request struct {
	Source string
	Output string
	// Frames is the caller-owned caption timeline, ordered by start time.
	Frames []caption.SubtitleFrame
	// Clips optionally marks removed regions of the source timeline.
	Clips []caption.Clip
	Mode  queue.Mode
	// Quality and Framerate default from config when zero.
	Quality   string
	Framerate float64
	// ReplacementAudio swaps the source audio for an external track.
	ReplacementAudio string
	OnProgress       ProgressFunc
}

// Result reports a finished export.
type Result struct {
	OutputPath string
	SessionID  string
	JobID      int64
	// Rendered and Skipped count caption frames from the render phase.
	Rendered int
	Skipped  int
}

// Controller owns one export pipeline: extraction, rendering, encoding, and
// the resources they share. Controllers are safe to reuse for sequential
// runs; concurrent runs should each get their own controller so process
// tracking stays per-run.
type Controller struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	registry *ProcessRegistry
	runner   ffmpeg.Runner
	library  *raster.FontLibrary
}

// NewController constructs a controller with a real, process-tracking
// command runner. store may be nil when job persistence is not wanted.
func NewController(cfg *config.Config, logger *slog.Logger, store *queue.Store) *Controller {
	registry := NewProcessRegistry()
	runner := &ffmpeg.CommandRunner{
		Tracker: registry,
		Grace:   time.Duration(cfg.Export.TermGraceSeconds) * time.Second,
	}
	return newController(cfg, logger, store, registry, runner)
}

// NewControllerWithRunner injects the subprocess runner for tests.
func NewControllerWithRunner(cfg *config.Config, logger *slog.Logger, store *queue.Store, runner ffmpeg.Runner) *Controller {
	return newController(cfg, logger, store, NewProcessRegistry(), runner)
}

func newController(cfg *config.Config, logger *slog.Logger, store *queue.Store, registry *ProcessRegistry, runner ffmpeg.Runner) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "export-controller"),
		store:    store,
		registry: registry,
		runner:   runner,
		library:  raster.NewFontLibrary(cfg.Paths.FontDir),
	}
}

// Registry exposes the run's process registry, mainly so signal handling and
// tests can observe tracked subprocesses.
func (c *Controller) Registry() *ProcessRegistry {
	return c.registry
}

// runState carries the per-run wiring between phases.
type runState struct {
	req      Request
	plan     cutPlan
	ws       *Workspace
	token    *Token
	reporter *reporter
	job      *queue.Job
	logger   *slog.Logger
	// outputStarted flips right before the step that writes Output, so
	// cleanup knows whether a partial artifact may exist.
	outputStarted bool
}

// Run executes the export. It returns the final output path on success, a
// cancellation error when token fires, and a phase-tagged error otherwise.
// Cleanup of the workspace and any spawned processes happens on every path.
func (c *Controller) Run(ctx context.Context, req Request, token *Token) (*Result, error) {
	if token == nil {
		token = NewToken()
	}
	req = c.applyDefaults(req)
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	ctx = services.WithSessionID(ctx, sessionID)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	token.bind(cancel)

	logger, closeLogs := c.sessionLogger(sessionID)
	defer closeLogs()

	var job *queue.Job
	if c.store != nil {
		created, err := c.store.NewJob(runCtx, sessionID, req.Source, req.Output, req.Mode, req.Quality, req.Framerate)
		if err != nil {
			logger.Warn("job row not recorded", logging.Error(err))
		} else {
			job = created
			runCtx = services.WithJobID(runCtx, job.ID)
		}
	}
	logger = logging.WithContext(runCtx, logger)
	logger.Info("export started",
		logging.String("source", req.Source),
		logging.String("output", req.Output),
		logging.String("mode", string(req.Mode)),
		logging.String("quality", req.Quality))

	result, err := c.execute(runCtx, req, token, sessionID, job, logger)
	c.finalize(job, result, err, logger)
	return result, err
}

func (c *Controller) execute(ctx context.Context, req Request, token *Token, sessionID string, job *queue.Job, logger *slog.Logger) (res *Result, err error) {
	ws, wsErr := NewWorkspace(c.cfg, sessionID, logger)
	if wsErr != nil {
		return nil, wsErr
	}

	st := &runState{
		req:      req,
		ws:       ws,
		token:    token,
		reporter: newReporter(req.OnProgress, logger, c.store, job),
		job:      job,
		logger:   logger,
	}
	defer func() {
		if err != nil {
			c.registry.TerminateAll(c.grace())
			if st.outputStarted {
				_ = os.Remove(req.Output)
			}
		}
		ws.Cleanup()
	}()

	probe, probeErr := inspectSource(ctx, c.cfg.FFprobeBinary(), req.Source)
	if probeErr != nil {
		return nil, services.Wrap(services.ErrExternalProcess, "export", "probe source",
			fmt.Sprintf("Could not inspect %s", req.Source), probeErr)
	}
	durationMs := probe.DurationMs()
	if durationMs <= 0 {
		return nil, services.Wrap(services.ErrValidation, "export", "probe source",
			fmt.Sprintf("Source %s reports no duration", req.Source), nil)
	}

	plan, planErr := buildCutPlan(req.Frames, req.Clips, durationMs)
	if planErr != nil {
		return nil, planErr
	}
	st.plan = plan

	logger.Info("export plan ready",
		logging.Bool("cuts", plan.hasCuts()),
		logging.Int("kept_intervals", len(plan.kept)),
		logging.Int64("kept_duration_ms", plan.keptDurationMs),
		logging.Int("captions", len(plan.captions)))

	switch req.Mode {
	case queue.ModeSubtitlesOnly:
		return c.runSubtitlesOnly(ctx, st)
	case queue.ModeModifiedSegments:
		return c.runModifiedSegments(ctx, st)
	default:
		return c.runComplete(ctx, st)
	}
}

// runComplete is the full pipeline: stitch, render, encode.
func (c *Controller) runComplete(ctx context.Context, st *runState) (*Result, error) {
	pctx, plogger, err := c.enterPhase(ctx, st, queue.StatusExtracting)
	if err != nil {
		return nil, err
	}
	if err := c.stitch(pctx, plogger, st); err != nil {
		return nil, err
	}

	pctx, plogger, err = c.enterPhase(ctx, st, queue.StatusRendering)
	if err != nil {
		return nil, err
	}
	coordinator := render.NewCoordinatorWithRunner(c.cfg, plogger, c.library, c.runner)
	stats, renderErr := coordinator.Run(pctx, st.ws.StitchedPath(), st.ws.FramesDir(), st.plan.captions, st.req.Framerate,
		func(percent float64, message string) {
			st.reporter.phase(pctx, "rendering", renderLo, renderHi, percent, message)
		})
	if renderErr != nil {
		return nil, renderErr
	}

	pctx, plogger, err = c.enterPhase(ctx, st, queue.StatusEncoding)
	if err != nil {
		return nil, err
	}
	encoder := encoding.NewEncoderWithRunner(c.cfg, plogger, c.runner)
	accel := encoder.DetectAccel(pctx)
	st.outputStarted = true
	encodeErr := encoder.Encode(pctx, encoding.Request{
		FramesDir:        st.ws.FramesDir(),
		Framerate:        st.req.Framerate,
		AudioSource:      st.ws.StitchedPath(),
		ReplacementAudio: st.req.ReplacementAudio,
		Output:           st.req.Output,
		Quality:          st.req.Quality,
		Accel:            accel,
		DurationMs:       st.plan.keptDurationMs,
		OnProgress: func(percent float64) {
			st.reporter.phase(pctx, "encoding", encodeLo, encodeHi, percent, "encoding video")
		},
	})
	if encodeErr != nil {
		return nil, encodeErr
	}

	st.reporter.report(ctx, "completed", 100, "export complete")
	return &Result{
		OutputPath: st.req.Output,
		SessionID:  st.ws.SessionID,
		JobID:      jobID(st.job),
		Rendered:   stats.Rendered,
		Skipped:    stats.Skipped,
	}, nil
}

// runModifiedSegments applies the timeline cuts without caption burn-in: the
// stitched intermediate is remuxed straight to the output.
func (c *Controller) runModifiedSegments(ctx context.Context, st *runState) (*Result, error) {
	pctx, plogger, err := c.enterPhase(ctx, st, queue.StatusExtracting)
	if err != nil {
		return nil, err
	}
	if err := c.stitch(pctx, plogger, st); err != nil {
		return nil, err
	}

	pctx, _, err = c.enterPhase(ctx, st, queue.StatusEncoding)
	if err != nil {
		return nil, err
	}
	st.reporter.phase(pctx, "encoding", encodeLo, encodeHi, 0, "writing output")
	st.outputStarted = true
	if err := c.remux(pctx, st.ws.StitchedPath(), st.req.Output); err != nil {
		return nil, err
	}

	st.reporter.report(ctx, "completed", 100, "export complete")
	return &Result{OutputPath: st.req.Output, SessionID: st.ws.SessionID, JobID: jobID(st.job)}, nil
}

// runSubtitlesOnly writes the remapped captions as SRT, bypassing rendering
// and encoding entirely.
func (c *Controller) runSubtitlesOnly(ctx context.Context, st *runState) (*Result, error) {
	if st.token.Cancelled() {
		return nil, cancelledErr("export")
	}
	st.outputStarted = true
	if err := writeSRTFile(st.req.Output, st.plan.remapped); err != nil {
		return nil, err
	}
	st.reporter.report(ctx, "completed", 100, "subtitles written")
	return &Result{OutputPath: st.req.Output, SessionID: st.ws.SessionID, JobID: jobID(st.job)}, nil
}

// stitch runs the extraction phase into the workspace intermediate.
func (c *Controller) stitch(ctx context.Context, logger *slog.Logger, st *runState) error {
	extractor := segments.NewExtractorWithRunner(c.cfg, logger, c.runner)
	return extractor.Stitch(ctx, segments.Request{
		Source:           st.req.Source,
		Output:           st.ws.StitchedPath(),
		WorkDir:          st.ws.SegmentsDir(),
		Intervals:        st.plan.kept,
		SourceDurationMs: st.plan.sourceDurationMs,
		Streams:          segments.StreamsAll,
		OnProgress: func(done, total int) {
			st.reporter.phase(ctx, "extracting", extractLo, extractHi,
				float64(done)/float64(total)*100,
				fmt.Sprintf("extracted %d of %d segments", done, total))
		},
	})
}

// remux rewrites a finished intermediate into the output container with
// streaming-friendly flags, copying both streams.
func (c *Controller) remux(ctx context.Context, input, output string) error {
	args := []string{
		"-y", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-i", input,
		"-c", "copy",
		"-movflags", "+faststart",
		output,
	}
	res := c.runner.Run(ctx, c.cfg.FFmpegBinary(), args, nil)
	if res.Failed() {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, "encoding", "remux", "", ctx.Err())
		}
		return services.Wrap(services.ErrExternalProcess, "encoding", "remux",
			fmt.Sprintf("Could not remux %s", input), res.Detail())
	}
	return nil
}

// enterPhase is the between-phase checkpoint: it polls the cancellation
// token, advances the job status, and returns a phase-scoped context and
// logger.
func (c *Controller) enterPhase(ctx context.Context, st *runState, status queue.Status) (context.Context, *slog.Logger, error) {
	phase := string(status)
	if st.token.Cancelled() {
		return ctx, st.logger, cancelledErr(phase)
	}
	pctx := services.WithPhase(ctx, phase)
	logger := logging.ForPhase(c.cfg, logging.WithContext(pctx, st.logger), phase)

	if c.store != nil && st.job != nil {
		st.job.Status = status
		if st.job.StartedAt == nil {
			now := time.Now().UTC()
			st.job.StartedAt = &now
		}
		if err := c.store.Update(pctx, st.job); err != nil {
			logger.Warn("job status not persisted", logging.Error(err))
		}
	}
	logger.Info("phase started")
	return pctx, logger, nil
}

func (c *Controller) applyDefaults(req Request) Request {
	if strings.TrimSpace(string(req.Mode)) == "" {
		req.Mode = queue.ModeComplete
	}
	if strings.TrimSpace(req.Quality) == "" {
		req.Quality = c.cfg.Export.Quality
	}
	if req.Framerate <= 0 {
		req.Framerate = c.cfg.Export.Framerate
	}
	return req
}

func (c *Controller) validateRequest(req Request) error {
	if strings.TrimSpace(req.Source) == "" {
		return services.Wrap(services.ErrValidation, "export", "validate request", "Source path is required", nil)
	}
	if _, err := os.Stat(req.Source); err != nil {
		return services.Wrap(services.ErrValidation, "export", "validate request",
			fmt.Sprintf("Source %s is not readable", req.Source), err)
	}
	if strings.TrimSpace(req.Output) == "" {
		return services.Wrap(services.ErrValidation, "export", "validate request", "Output path is required", nil)
	}
	if _, ok := queue.ParseMode(string(req.Mode)); !ok {
		return services.Wrap(services.ErrValidation, "export", "validate request",
			fmt.Sprintf("Unknown export mode %q", req.Mode), nil)
	}
	switch strings.ToLower(strings.TrimSpace(req.Quality)) {
	case config.QualityHigh, config.QualityBalanced, config.QualityFast:
	default:
		return services.Wrap(services.ErrValidation, "export", "validate request",
			fmt.Sprintf("Unknown quality preset %q", req.Quality), nil)
	}
	if err := caption.ValidateFrames(req.Frames); err != nil {
		return services.Wrap(services.ErrValidation, "export", "validate request", "Caption timeline is invalid", err)
	}
	if err := caption.ValidateClips(req.Clips); err != nil {
		return services.Wrap(services.ErrValidation, "export", "validate request", "Clip set is invalid", err)
	}
	if audio := strings.TrimSpace(req.ReplacementAudio); audio != "" {
		if _, err := os.Stat(audio); err != nil {
			return services.Wrap(services.ErrValidation, "export", "validate request",
				fmt.Sprintf("Replacement audio %s is not readable", audio), err)
		}
	}
	if err := preflight.Writable(filepath.Dir(req.Output)); err != nil {
		return services.Wrap(services.ErrResource, "export", "validate request",
			fmt.Sprintf("Output directory %s is not writable", filepath.Dir(req.Output)), err)
	}
	return nil
}

// finalize settles the job row and logs the outcome.
func (c *Controller) finalize(job *queue.Job, result *Result, err error, logger *slog.Logger) {
	switch {
	case err == nil:
		logger.Info("export finished", logging.String("output", result.OutputPath))
	case errors.Is(err, services.ErrCancelled):
		logger.Info("export cancelled")
	default:
		logging.ErrorWithContext(logger, "export failed", "export_failed", logging.Error(err))
	}

	if c.store == nil || job == nil {
		return
	}
	switch {
	case err == nil:
		job.SetCompleted(result.OutputPath)
	case errors.Is(err, services.ErrCancelled):
		job.SetCancelled()
	default:
		job.SetFailed(err.Error())
	}
	// The run context may already be cancelled; the final status still has
	// to land.
	if updateErr := c.store.Update(context.Background(), job); updateErr != nil {
		logger.Warn("final job status not persisted", logging.Error(updateErr))
	}
}

func (c *Controller) sessionLogger(sessionID string) (*slog.Logger, func()) {
	jobLogger, closer, err := logging.NewJobLogger(c.logger, c.cfg, sessionID)
	if err != nil {
		c.logger.Warn("session log file unavailable", logging.Error(err))
		return c.logger, func() {}
	}
	return jobLogger, func() { _ = closer.Close() }
}

func (c *Controller) grace() time.Duration {
	return time.Duration(c.cfg.Export.TermGraceSeconds) * time.Second
}

func cancelledErr(phase string) error {
	return services.Wrap(services.ErrCancelled, phase, "checkpoint", "", context.Canceled)
}

func jobID(job *queue.Job) int64 {
	if job == nil {
		return 0
	}
	return job.ID
}
