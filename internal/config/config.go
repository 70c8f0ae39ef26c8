package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample.toml
var sampleTOML string

// Paths locates the directories clipforge writes into.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
	FontDir    string `toml:"font_dir"`
}

// Tools contains the external binaries the export pipeline shells out to.
// Values may be bare names resolved via PATH or absolute paths.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Export contains defaults applied to export jobs when the caller does not
// override them.
type Export struct {
	Quality          string  `toml:"quality"`
	Framerate        float64 `toml:"framerate"`
	HardwareAccel    bool    `toml:"hardware_accel"`
	MinFreeSpaceMB   int64   `toml:"min_free_space_mb"`
	KeepWorkspace    bool    `toml:"keep_workspace"`
	TermGraceSeconds int     `toml:"term_grace_seconds"`
}

// Render contains tuning for the frame rendering worker pool.
type Render struct {
	// Workers forces a fixed pool size. Zero selects automatically from
	// CPU count and available memory.
	Workers        int `toml:"workers"`
	MaxWorkers     int `toml:"max_workers"`
	WorkerMemoryMB int `toml:"worker_memory_mb"`
}

// Logging controls log format, verbosity, and retention.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	RetentionDays  int               `toml:"retention_days"`
	PhaseOverrides map[string]string `toml:"phase_overrides"`
}

// Config is the full clipforge configuration: where work is staged
// (Paths), which ffmpeg/ffprobe binaries run (Tools), default job settings
// (Export), worker pool tuning (Render), and log output (Logging).
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Export  Export  `toml:"export"`
	Render  Render  `toml:"render"`
	Logging Logging `toml:"logging"`
}

// Quality preset names accepted by export jobs.
const (
	QualityHigh     = "high"
	QualityBalanced = "balanced"
	QualityFast     = "fast"
)

// DefaultConfigPath returns the standard per-user config file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipforge/config.toml")
}

// Load resolves which config file applies, parses it over the defaults,
// and normalizes and validates the result. The returned path is where the
// file was found (or would be written); exists reports whether it was read.
func Load(path string) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		raw, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	// An explicit path wins even when the file is absent, so `config init`
	// can point at a location that does not exist yet.
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for export operation.
// FontDir is created on a best-effort basis so jobs can still run with the
// embedded fallback face when no font directory is provisioned.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.FontDir) != "" {
		_ = os.MkdirAll(c.Paths.FontDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for extraction and encoding.
func (c *Config) FFmpegBinary() string {
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	return c.Tools.FFprobe
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	expanded, err := expandHome(pathValue)
	if err != nil {
		return "", err
	}
	absolute, err := filepath.Abs(filepath.Clean(expanded))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", expanded, err)
	}
	return absolute, nil
}

// expandHome rewrites a leading "~" or "~/" to the user's home directory.
// Other forms like "~user" pass through untouched.
func expandHome(pathValue string) (string, error) {
	if pathValue != "~" && !strings.HasPrefix(pathValue, "~/") && !strings.HasPrefix(pathValue, `~\`) {
		return pathValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if pathValue == "~" {
		return home, nil
	}
	return filepath.Join(home, pathValue[2:]), nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path, creating
// parent directories as needed.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleTOML), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
