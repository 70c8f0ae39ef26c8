package preflight

import (
	"clipforge/internal/config"
	"clipforge/internal/deps"
)

// CheckSystemDeps evaluates the external binaries exports shell out to.
// Both the CLI probe command and job startup consume this list so the
// requirements stay in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for extraction, frame decoding, and encoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
	}
	return deps.CheckBinaries(requirements)
}
