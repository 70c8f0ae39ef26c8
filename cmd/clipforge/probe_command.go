package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/preflight"
)

func newProbeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe [file]",
		Short: "Check export readiness or inspect a media file",
		Long: `Without arguments, probe runs the same readiness checks an export runs
and reports the ffmpeg and ffprobe versions in use. With a file argument
it inspects the container and its streams instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return runReadinessProbe(cmd, cfg)
			}
			return runMediaProbe(cmd, cfg, args[0])
		},
	}
}

func runReadinessProbe(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderSectionHeader("Readiness", colorize))
	failures := 0
	for _, result := range preflight.RunAll(cfg) {
		kind := statusOK
		if !result.Passed {
			kind = statusError
			failures++
		}
		fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSectionHeader("Tools", colorize))
	for _, binary := range []string{cfg.FFmpegBinary(), cfg.FFprobeBinary()} {
		version := deps.ToolVersion(cmd.Context(), binary)
		kind := statusOK
		if version == "" {
			version = "not found"
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(filepath.Base(binary), kind, version, colorize))
	}

	if failures > 0 {
		return fmt.Errorf("%d readiness check(s) failed", failures)
	}
	return nil
}

func runMediaProbe(cmd *cobra.Command, cfg *config.Config, arg string) error {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return fmt.Errorf("resolve media path: %w", err)
	}

	info, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	containerRows := [][]string{
		{"Format", valueOr(info.Format.FormatName, "unknown")},
		{"Duration", formatProbeDuration(info.DurationSeconds())},
		{"Size", formatByteSize(info.SizeBytes())},
		{"Bitrate", formatBitRate(info.BitRate())},
		{"Streams", fmt.Sprintf("%d (%d video, %d audio)", len(info.Streams), info.VideoStreamCount(), info.AudioStreamCount())},
	}
	fmt.Fprintln(out, renderTable([]tableColumn{{name: "Container"}, {name: filepath.Base(path)}}, containerRows))

	if len(info.Streams) == 0 {
		return nil
	}
	streamRows := make([][]string, 0, len(info.Streams))
	for _, stream := range info.Streams {
		streamRows = append(streamRows, []string{
			fmt.Sprintf("%d", stream.Index),
			valueOr(stream.CodecType, "unknown"),
			valueOr(stream.CodecName, "unknown"),
			describeStream(stream),
		})
	}
	columns := []tableColumn{{name: "#", right: true}, {name: "Type"}, {name: "Codec"}, {name: "Detail"}}
	fmt.Fprintln(out, renderTable(columns, streamRows))
	return nil
}

func describeStream(stream ffprobe.Stream) string {
	switch strings.ToLower(stream.CodecType) {
	case "video":
		if stream.Width <= 0 || stream.Height <= 0 {
			return "-"
		}
		detail := fmt.Sprintf("%dx%d", stream.Width, stream.Height)
		if rate := stream.FrameRate(); rate > 0 {
			detail += fmt.Sprintf(" @ %.2f fps", rate)
		}
		return detail
	case "audio":
		if stream.SampleRate == "" && stream.Channels == 0 {
			return "-"
		}
		return fmt.Sprintf("%s Hz, %d ch", valueOr(stream.SampleRate, "?"), stream.Channels)
	default:
		return valueOr(stream.CodecTag, "-")
	}
}

func formatProbeDuration(seconds float64) string {
	if seconds <= 0 {
		return "unknown"
	}
	total := int64(math.Round(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm%02ds", minutes, secs)
}

func formatByteSize(bytes int64) string {
	if bytes <= 0 {
		return "unknown"
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatBitRate(bitsPerSecond int64) string {
	if bitsPerSecond <= 0 {
		return "unknown"
	}
	if bitsPerSecond < 1_000_000 {
		return fmt.Sprintf("%.0f kb/s", float64(bitsPerSecond)/1_000)
	}
	return fmt.Sprintf("%.1f Mb/s", float64(bitsPerSecond)/1_000_000)
}

func valueOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
