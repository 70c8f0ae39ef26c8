package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"clipforge/internal/caption"
	"clipforge/internal/config"
	"clipforge/internal/export"
	"clipforge/internal/logging"
	"clipforge/internal/preflight"
	"clipforge/internal/queue"
	"clipforge/internal/services"
)

func newExportCommand(cctx *commandContext) *cobra.Command {
	var (
		outputPath    string
		captionsPath  string
		modeFlag      string
		qualityFlag   string
		framerateFlag float64
		replaceAudio  string
		keepWorkspace bool
		workersFlag   int
	)

	cmd := &cobra.Command{
		Use:   "export <video>",
		Short: "Cut, caption, and encode a video per its edited timeline",
		Long: `Export applies word-level timeline edits to a video: excised words and
removed clips are cut out, captions are burned in frame by frame, and the
result is encoded to the output path.

Without --captions the source is exported uncut and uncaptioned, which is
mainly useful for verifying the pipeline end to end.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if keepWorkspace {
				cfg.Export.KeepWorkspace = true
			}
			if workersFlag > 0 {
				cfg.Render.Workers = workersFlag
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}
			output, err := config.ExpandPath(outputPath)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			if err := refuseOnFailedChecks(cmd.ErrOrStderr(), cfg); err != nil {
				return err
			}

			var doc caption.Document
			if trimmed := strings.TrimSpace(captionsPath); trimmed != "" {
				path, err := config.ExpandPath(trimmed)
				if err != nil {
					return fmt.Errorf("resolve captions path: %w", err)
				}
				doc, err = caption.ReadDocumentFile(path)
				if err != nil {
					return err
				}
			}
			if trimmed := strings.TrimSpace(replaceAudio); trimmed != "" {
				expanded, err := config.ExpandPath(trimmed)
				if err != nil {
					return fmt.Errorf("resolve replacement audio path: %w", err)
				}
				replaceAudio = expanded
			}

			interactive := isInteractive(cmd.ErrOrStderr())
			logger, err := buildExportLogger(cfg, interactive)
			if err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}
			pruneOldLogs(cfg, logger)

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()

			token := export.NewToken()
			stop := notifyCancel(cmd.ErrOrStderr(), token)
			defer stop()

			var bar *progressbar.ProgressBar
			var onProgress export.ProgressFunc
			if interactive {
				bar = progressbar.NewOptions(100,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("preparing"),
					progressbar.OptionSetWidth(30),
					progressbar.OptionSetPredictTime(false),
					progressbar.OptionClearOnFinish(),
				)
				onProgress = func(percent float64, message string) {
					bar.Describe(message)
					_ = bar.Set(int(percent))
				}
			}

			controller := export.NewController(cfg, logger, store)
			res, err := controller.Run(cmd.Context(), export.Request{
				Source:           source,
				Output:           output,
				Frames:           doc.Frames,
				Clips:            doc.Clips,
				Mode:             queue.Mode(strings.TrimSpace(modeFlag)),
				Quality:          qualityFlag,
				Framerate:        framerateFlag,
				ReplacementAudio: replaceAudio,
				OnProgress:       onProgress,
			}, token)

			if bar != nil {
				_ = bar.Clear()
			}
			out := cmd.OutOrStdout()
			switch {
			case err == nil:
				fmt.Fprintf(out, "Export complete: %s\n", res.OutputPath)
				if res.Rendered > 0 || res.Skipped > 0 {
					fmt.Fprintf(out, "Rendered %d frames (%d skipped)\n", res.Rendered, res.Skipped)
				}
				return nil
			case errors.Is(err, services.ErrCancelled):
				fmt.Fprintln(out, "Export cancelled")
				return err
			default:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (required)")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().StringVar(&captionsPath, "captions", "", "Timeline document (JSON) with caption frames and clips")
	cmd.Flags().StringVar(&modeFlag, "mode", string(queue.ModeComplete), "Export mode: complete, modified_segments, or subtitles_only")
	cmd.Flags().StringVar(&qualityFlag, "quality", "", "Quality preset: high, balanced, or fast (default from config)")
	cmd.Flags().Float64Var(&framerateFlag, "framerate", 0, "Render framerate (default from config)")
	cmd.Flags().StringVar(&replaceAudio, "replace-audio", "", "Replace the source audio with this track")
	cmd.Flags().BoolVar(&keepWorkspace, "keep-workspace", false, "Keep the staging workspace for inspection")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Render worker count (default sized from the machine)")

	return cmd
}

// refuseOnFailedChecks runs the readiness checks and prints every failure.
// Exports never start on a machine that cannot finish them.
func refuseOnFailedChecks(out io.Writer, cfg *config.Config) error {
	colorize := shouldColorize(out)
	failures := 0
	for _, result := range preflight.RunAll(cfg) {
		if result.Passed {
			continue
		}
		failures++
		fmt.Fprintln(out, renderStatusLine(result.Name, statusError, result.Detail, colorize))
	}
	if failures > 0 {
		return fmt.Errorf("%d readiness check(s) failed; run `clipforge probe` for the full report", failures)
	}
	return nil
}

// buildExportLogger keeps the console clean for the progress bar when the
// terminal is interactive; the main log file receives everything either way.
func buildExportLogger(cfg *config.Config, interactive bool) (*slog.Logger, error) {
	if !interactive {
		return logging.NewFromConfig(cfg)
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      "json",
		OutputPaths: []string{logging.MainLogPath(cfg)},
	})
}

func pruneOldLogs(cfg *config.Config, logger *slog.Logger) {
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{logging.MainLogPath(cfg)},
		},
		logging.RetentionTarget{
			Dir:     filepath.Join(cfg.Paths.LogDir, "jobs"),
			Pattern: "job-*.log",
		},
	)
}

// notifyCancel flips the token on the first interrupt so the run can wind
// down cleanly. The returned stop func releases the signal handler.
func notifyCancel(out io.Writer, token *export.Token) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(out, "\nCancelling export, waiting for ffmpeg to stop...")
			token.Cancel()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
