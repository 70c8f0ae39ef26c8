package queue

import (
	"database/sql"
	"strings"
	"time"
)

const jobColumns = "id, session_id, source_path, output_path, export_mode, quality, framerate, status, progress_stage, progress_percent, progress_message, error_message, created_at, updated_at, started_at, finished_at"

// timeLayouts are the formats a stored timestamp may use. RFC3339Nano is
// what the store writes; the plain layout covers rows touched by sqlite's
// own datetime() during manual surgery.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05"}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job                             Job
		mode, status                    string
		stage, message, errMsg          sql.NullString
		percent                         sql.NullFloat64
		created, updated, started, done sql.NullString
	)
	err := scanner.Scan(
		&job.ID, &job.SessionID, &job.SourcePath, &job.OutputPath,
		&mode, &job.Quality, &job.Framerate, &status,
		&stage, &percent, &message, &errMsg,
		&created, &updated, &started, &done,
	)
	if err != nil {
		return nil, err
	}

	job.Mode = Mode(mode)
	job.Status = Status(status)
	job.ProgressStage = stage.String
	job.ProgressPercent = percent.Float64
	job.ProgressMessage = message.String
	job.ErrorMessage = errMsg.String
	if t, ok := parseStoredTime(created); ok {
		job.CreatedAt = t
	}
	if t, ok := parseStoredTime(updated); ok {
		job.UpdatedAt = t
	}
	if t, ok := parseStoredTime(started); ok {
		job.StartedAt = &t
	}
	if t, ok := parseStoredTime(done); ok {
		job.FinishedAt = &t
	}
	return &job, nil
}

func parseStoredTime(raw sql.NullString) (time.Time, bool) {
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw.String); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nullableString maps "" to NULL so empty progress and error columns stay
// NULL instead of accumulating empty strings.
func nullableString(value string) any {
	if value != "" {
		return value
	}
	return nil
}

func nullableTime(value *time.Time) any {
	if value != nil {
		return value.UTC().Format(time.RFC3339Nano)
	}
	return nil
}

func makePlaceholders(count int) string {
	if count > 0 {
		return strings.TrimSuffix(strings.Repeat("?,", count), ",")
	}
	return ""
}
