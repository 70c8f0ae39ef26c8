package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"log/slog"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/raster"
	"clipforge/internal/services"
)

// tickEvery is how many frames a worker processes between progress reports.
const tickEvery = 8

// Progress receives aggregate render progress as a 0..100 percentage.
type Progress func(percent float64, message string)

// Stats summarizes one render phase.
type Stats struct {
	FrameCount int
	Rendered   int
	Skipped    int
	Workers    int
	Sequential bool
}

// Coordinator owns the frame extraction and caption burn-in phase.
type Coordinator struct {
	cfg     *config.Config
	logger  *slog.Logger
	library *raster.FontLibrary
	runner  ffmpeg.Runner
}

// NewCoordinator constructs the coordinator with a real command runner.
func NewCoordinator(cfg *config.Config, logger *slog.Logger, library *raster.FontLibrary) *Coordinator {
	runner := &ffmpeg.CommandRunner{Grace: time.Duration(cfg.Export.TermGraceSeconds) * time.Second}
	return NewCoordinatorWithRunner(cfg, logger, library, runner)
}

// NewCoordinatorWithRunner allows injecting the runner (tests, process
// tracking).
func NewCoordinatorWithRunner(cfg *config.Config, logger *slog.Logger, library *raster.FontLibrary, runner ffmpeg.Runner) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "render-coordinator"),
		library: library,
		runner:  runner,
	}
}

// Run extracts frames from video into framesDir and burns the captions into
// them. Frame files keep their extraction numbering so the encoder can mux
// them back in order.
func (c *Coordinator) Run(ctx context.Context, video, framesDir string, captions []raster.Caption, framerate float64, progress Progress) (Stats, error) {
	logger := logging.WithContext(ctx, c.logger)

	frames, err := c.extractFrames(ctx, video, framesDir, framerate)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{FrameCount: len(frames)}
	if len(captions) == 0 {
		logger.Info("no captions to rasterize", logging.Int("frames", len(frames)))
		report(progress, 100, fmt.Sprintf("Prepared %d frames", len(frames)))
		return stats, nil
	}

	workers := workerCount(c.cfg, logicalCores(), freeMemoryBytes())
	stats.Workers = workers
	batches := splitBatches(len(frames), workers)
	logger.Info("rendering captions",
		logging.Int("frames", len(frames)),
		logging.Int("workers", workers),
		logging.Int("batches", len(batches)),
		logging.Int("captions", len(captions)))

	rendered, skipped, err := c.renderParallel(ctx, frames, captions, framerate, workers, batches, progress, logger)
	if err != nil {
		if ctx.Err() != nil {
			return stats, services.Wrap(services.ErrCancelled, "rendering", "worker pool", "", ctx.Err())
		}
		logger.Warn("parallel rendering failed, retrying sequentially", logging.Error(err))
		// Workers may already have burned captions into some frames, so
		// re-extract for a clean pass rather than double-render.
		frames, err = c.extractFrames(ctx, video, framesDir, framerate)
		if err != nil {
			return stats, err
		}
		rendered, skipped, err = c.renderSequential(ctx, frames, captions, framerate, progress, logger)
		if err != nil {
			return stats, err
		}
		stats.Sequential = true
	}
	stats.Rendered, stats.Skipped = rendered, skipped
	logger.Info("render phase complete",
		logging.Int("rendered", rendered),
		logging.Int("skipped", skipped),
		logging.Bool("sequential", stats.Sequential))
	return stats, nil
}

func (c *Coordinator) extractFrames(ctx context.Context, video, framesDir string, framerate float64) ([]string, error) {
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrResource, "rendering", "create frames directory", "", err)
	}
	stale, _ := filepath.Glob(filepath.Join(framesDir, "frame_*.png"))
	for _, path := range stale {
		_ = os.Remove(path)
	}

	res := c.runner.Run(ctx, c.cfg.FFmpegBinary(), frameExtractArgs(video, framesDir, framerate), nil)
	if res.Failed() {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrCancelled, "rendering", "extract frames", "", ctx.Err())
		}
		return nil, services.Wrap(services.ErrExternalProcess, "rendering", "extract frames", "", res.Detail())
	}
	frames, err := filepath.Glob(filepath.Join(framesDir, "frame_*.png"))
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "rendering", "list frames", "", err)
	}
	sort.Strings(frames)
	if len(frames) == 0 {
		return nil, services.Wrap(services.ErrExternalProcess, "rendering", "extract frames", "decoder produced no frames", nil)
	}
	return frames, nil
}

func frameExtractArgs(video, framesDir string, framerate float64) []string {
	return []string{
		"-y", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-i", video,
		"-vf", "fps=" + strconv.FormatFloat(framerate, 'f', -1, 64),
		filepath.Join(framesDir, "frame_%05d.png"),
	}
}

type renderTask struct {
	batch    batch
	captions []raster.Caption
}

type batchResult struct {
	batch    batch
	rendered int
	skipped  int
	err      error
}

func (c *Coordinator) renderParallel(ctx context.Context, frames []string, captions []raster.Caption, framerate float64, workers int, batches []batch, progress Progress, logger *slog.Logger) (int, int, error) {
	if err := poolStart(); err != nil {
		return 0, 0, err
	}

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan renderTask, len(batches))
	results := make(chan batchResult, len(batches))
	ticks := make(chan int, workers*4)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			renderer := raster.NewRenderer(c.library, c.logger)
			for task := range tasks {
				rendered, skipped, err := c.renderBatch(poolCtx, renderer, frames, task, framerate, ticks, logger)
				results <- batchResult{batch: task.batch, rendered: rendered, skipped: skipped, err: err}
			}
		}()
	}
	for _, b := range batches {
		tasks <- renderTask{batch: b, captions: captions}
	}
	close(tasks)
	go func() {
		wg.Wait()
		close(ticks)
	}()

	var rendered, skipped, processed int
	var firstErr error
	remaining := len(batches)
	for remaining > 0 || ticks != nil {
		select {
		case n, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			processed += n
			report(progress, float64(processed)/float64(len(frames))*100,
				fmt.Sprintf("Rendered %d of %d frames", processed, len(frames)))
		case res := <-results:
			remaining--
			rendered += res.rendered
			skipped += res.skipped
			if res.err != nil && firstErr == nil {
				firstErr = res.err
				cancel()
			}
		}
	}
	if firstErr != nil {
		return rendered, skipped, firstErr
	}
	return rendered, skipped, nil
}

// renderBatch rasterizes one contiguous run of frames. I/O problems on a
// single frame are logged and skipped; rasterizer errors poison every frame
// alike and abort the batch.
func (c *Coordinator) renderBatch(ctx context.Context, renderer *raster.Renderer, frames []string, task renderTask, framerate float64, ticks chan<- int, logger *slog.Logger) (rendered, skipped int, err error) {
	pending := 0
	flush := func() {
		if pending > 0 {
			ticks <- pending
			pending = 0
		}
	}
	defer flush()

	for i := 0; i < task.batch.count; i++ {
		if err := ctx.Err(); err != nil {
			return rendered, skipped, err
		}
		idx := task.batch.start + i
		renderErr := renderFrame(renderer, frames[idx], task.captions, frameTimeMs(idx, framerate))
		switch {
		case renderErr == nil:
			rendered++
		case errors.Is(renderErr, services.ErrRender):
			return rendered, skipped, renderErr
		default:
			skipped++
			logger.Warn("frame render failed, leaving frame as extracted",
				logging.String("frame", frames[idx]),
				logging.Error(renderErr))
		}
		pending++
		if pending >= tickEvery {
			flush()
		}
	}
	return rendered, skipped, nil
}

func (c *Coordinator) renderSequential(ctx context.Context, frames []string, captions []raster.Caption, framerate float64, progress Progress, logger *slog.Logger) (int, int, error) {
	renderer := raster.NewRenderer(c.library, c.logger)
	var rendered, skipped int
	for idx, path := range frames {
		if err := ctx.Err(); err != nil {
			return rendered, skipped, services.Wrap(services.ErrCancelled, "rendering", "sequential render", "", err)
		}
		err := renderFrame(renderer, path, captions, frameTimeMs(idx, framerate))
		switch {
		case err == nil:
			rendered++
		case errors.Is(err, services.ErrRender):
			return rendered, skipped, err
		default:
			skipped++
			logger.Warn("frame render failed, leaving frame as extracted",
				logging.String("frame", path),
				logging.Error(err))
		}
		if (idx+1)%tickEvery == 0 || idx+1 == len(frames) {
			report(progress, float64(idx+1)/float64(len(frames))*100,
				fmt.Sprintf("Rendered %d of %d frames", idx+1, len(frames)))
		}
	}
	return rendered, skipped, nil
}

// renderFrame loads a frame, burns the captions visible at its timestamp,
// and replaces the file. The temp-and-rename keeps a failed write from
// leaving a truncated frame behind.
func renderFrame(renderer *raster.Renderer, path string, captions []raster.Caption, tMs int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open frame: %w", err)
	}
	decoded, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	rgba, ok := decoded.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(decoded.Bounds())
		draw.Draw(rgba, rgba.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	}
	if err := renderer.Render(rgba, captions, tMs); err != nil {
		return err
	}
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := png.Encode(out, rgba); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// frameTimeMs maps a zero-based frame index to its timestamp on the stitched
// timeline.
func frameTimeMs(index int, framerate float64) int64 {
	if framerate <= 0 {
		return 0
	}
	return int64(math.Round(float64(index) * 1000.0 / framerate))
}

func report(progress Progress, percent float64, message string) {
	if progress == nil {
		return
	}
	if percent > 100 {
		percent = 100
	}
	progress(percent, message)
}
