package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"clipforge/internal/deps"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func newVersionCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show clipforge and tool versions",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "clipforge %s (%s)\n", version, runtime.Version())

			ffmpegBin, ffprobeBin := "ffmpeg", "ffprobe"
			if cfg := cctx.configValue(); cfg != nil {
				ffmpegBin = cfg.FFmpegBinary()
				ffprobeBin = cfg.FFprobeBinary()
			}
			for _, binary := range []string{ffmpegBin, ffprobeBin} {
				toolVersion := deps.ToolVersion(cmd.Context(), binary)
				if toolVersion == "" {
					toolVersion = "not found"
				}
				fmt.Fprintf(out, "%s %s\n", binary, toolVersion)
			}
			return nil
		},
	}
}
