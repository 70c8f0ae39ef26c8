package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an export job. The processing statuses
// mirror the controller's phase machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExtracting Status = "extracting"
	StatusRendering  Status = "rendering"
	StatusEncoding   Status = "encoding"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusRendering,
	StatusEncoding,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

// AllStatuses returns the known statuses in lifecycle order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus normalizes user input into a known Status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range allStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// IsProcessingStatus reports whether a status reflects an in-flight phase.
func IsProcessingStatus(status Status) bool {
	switch status {
	case StatusExtracting, StatusRendering, StatusEncoding:
		return true
	}
	return false
}

// IsTerminalStatus reports whether a status can no longer change.
func IsTerminalStatus(status Status) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Mode selects which artifacts an export run produces.
type Mode string

const (
	// ModeComplete burns captions over the cut video.
	ModeComplete Mode = "complete"
	// ModeModifiedSegments applies the timeline cuts without caption overlay.
	ModeModifiedSegments Mode = "modified_segments"
	// ModeSubtitlesOnly writes an SRT file for the edited timeline.
	ModeSubtitlesOnly Mode = "subtitles_only"
)

// ParseMode normalizes user input into a known Mode.
func ParseMode(value string) (Mode, bool) {
	mode := Mode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case ModeComplete, ModeModifiedSegments, ModeSubtitlesOnly:
		return mode, true
	}
	return "", false
}

// Job represents one export request persisted in SQLite.
type Job struct {
	ID              int64
	SessionID       string
	SourcePath      string
	OutputPath      string
	Mode            Mode
	Quality         string
	Framerate       float64
	Status          Status
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

// IsProcessing returns true when the job is mid-export.
func (j Job) IsProcessing() bool {
	return IsProcessingStatus(j.Status)
}

// SetProgress updates the three progress fields together. Use this instead of
// setting the fields individually so stage, message, and percent stay in sync.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetFailed marks the job failed with the given error message.
func (j *Job) SetFailed(message string) {
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressMessage = message
	j.FinishedAt = &now
}

// SetCancelled marks the job cancelled by the user.
func (j *Job) SetCancelled() {
	now := time.Now().UTC()
	j.Status = StatusCancelled
	j.ProgressMessage = "cancelled"
	j.FinishedAt = &now
}

// SetCompleted marks the job done with its final output path.
func (j *Job) SetCompleted(outputPath string) {
	now := time.Now().UTC()
	j.Status = StatusCompleted
	j.OutputPath = outputPath
	j.ProgressPercent = 100
	j.ProgressMessage = "completed"
	j.FinishedAt = &now
}
