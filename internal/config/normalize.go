package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTools()
	c.normalizeExport()
	c.normalizeRender()
	c.normalizeLogging()
	return c.normalizePaths()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.FontDir) == "" {
		c.Paths.FontDir = defaultFontDir
	}
	for _, p := range []struct {
		key   string
		field *string
	}{
		{"paths.staging_dir", &c.Paths.StagingDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.font_dir", &c.Paths.FontDir},
	} {
		expanded, err := expandPath(*p.field)
		if err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
		*p.field = expanded
	}
	return nil
}

// normalizeTools applies the CLIPFORGE_FFMPEG and CLIPFORGE_FFPROBE
// environment overrides, then falls back to bare binary names resolved
// through PATH.
func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(envOverride("CLIPFORGE_FFMPEG", c.Tools.FFmpeg))
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(envOverride("CLIPFORGE_FFPROBE", c.Tools.FFprobe))
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func envOverride(key, current string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return current
}

func (c *Config) normalizeExport() {
	c.Export.Quality = lowerTrim(c.Export.Quality)
	if c.Export.Quality == "" {
		c.Export.Quality = defaultQuality
	}
	if c.Export.Framerate <= 0 {
		c.Export.Framerate = defaultFramerate
	}
	if c.Export.MinFreeSpaceMB <= 0 {
		c.Export.MinFreeSpaceMB = defaultMinFreeSpaceMB
	}
	if c.Export.TermGraceSeconds <= 0 {
		c.Export.TermGraceSeconds = defaultTermGraceSeconds
	}
}

func (c *Config) normalizeRender() {
	if c.Render.Workers < 0 {
		c.Render.Workers = 0
	}
	if c.Render.MaxWorkers <= 0 {
		c.Render.MaxWorkers = defaultMaxWorkers
	}
	if c.Render.WorkerMemoryMB <= 0 {
		c.Render.WorkerMemoryMB = defaultWorkerMemoryMB
	}
}

func (c *Config) normalizeLogging() {
	// Any format other than json collapses to the console default.
	if c.Logging.Format = lowerTrim(c.Logging.Format); c.Logging.Format != "json" {
		c.Logging.Format = "console"
	}
	if c.Logging.Level = lowerTrim(c.Logging.Level); c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if len(c.Logging.PhaseOverrides) > 0 {
		overrides := make(map[string]string, len(c.Logging.PhaseOverrides))
		for phase, level := range c.Logging.PhaseOverrides {
			phase, level = lowerTrim(phase), lowerTrim(level)
			if phase == "" || level == "" {
				continue
			}
			overrides[phase] = level
		}
		c.Logging.PhaseOverrides = overrides
	}
}

func lowerTrim(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
