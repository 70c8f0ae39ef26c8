package config

const (
	defaultStagingDir       = "~/.local/share/clipforge/staging"
	defaultStateDir         = "~/.local/share/clipforge"
	defaultLogDir           = "~/.local/share/clipforge/logs"
	defaultFontDir          = "~/.local/share/clipforge/fonts"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultQuality          = QualityBalanced
	defaultFramerate        = 30.0
	defaultMinFreeSpaceMB   = 500
	defaultTermGraceSeconds = 3
	defaultMaxWorkers       = 16
	defaultWorkerMemoryMB   = 150
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
			FontDir:    defaultFontDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Export: Export{
			Quality:          defaultQuality,
			Framerate:        defaultFramerate,
			MinFreeSpaceMB:   defaultMinFreeSpaceMB,
			TermGraceSeconds: defaultTermGraceSeconds,
		},
		Render: Render{
			MaxWorkers:     defaultMaxWorkers,
			WorkerMemoryMB: defaultWorkerMemoryMB,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
