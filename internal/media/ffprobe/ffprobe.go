package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the decoded ffprobe report for one media file.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream carries the per-stream fields the pipeline cares about. ffprobe
// reports far more; unknown keys are dropped during decoding.
type Stream struct {
	Index        int    `json:"index"`
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	CodecTag     string `json:"codec_tag_string"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PixFmt       string `json:"pix_fmt"`
	AvgFrameRate string `json:"avg_frame_rate"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

// FrameRate returns the stream's average frame rate in frames per second,
// or 0 when unavailable.
func (s Stream) FrameRate() float64 {
	return parseRational(s.AvgFrameRate)
}

// Format holds container-level metadata. Numeric values arrive as strings
// in ffprobe's JSON and stay strings here; use the Result accessors for
// parsed forms.
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

// Inspect runs ffprobe on path and decodes its JSON report. Diagnostics go
// to a separate stderr buffer so a chatty ffprobe cannot corrupt the JSON
// stream.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe: no input path")
	}
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}

	args := []string{
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path,
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return Result{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, detail)
		}
		return Result{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, fmt.Errorf("decode ffprobe output for %s: %w", path, err)
	}
	return result, nil
}

// VideoStreamCount reports how many video streams the container holds.
func (r Result) VideoStreamCount() int { return r.countType("video") }

// AudioStreamCount reports how many audio streams the container holds.
func (r Result) AudioStreamCount() int { return r.countType("audio") }

func (r Result) countType(codecType string) int {
	n := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, codecType) {
			n++
		}
	}
	return n
}

// FirstVideoStream returns the first video stream, if any.
func (r Result) FirstVideoStream() (Stream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return s, true
		}
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration, or 0 when the field is
// missing or malformed.
func (r Result) DurationSeconds() float64 {
	v, ok := parseDecimal(r.Format.Duration)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// DurationMs returns the container duration in whole milliseconds.
func (r Result) DurationMs() int64 {
	seconds := r.DurationSeconds()
	if seconds <= 0 {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}

// SizeBytes returns the reported file size, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	return nonNegativeInt(r.Format.Size)
}

// BitRate returns the container bitrate in bits per second, or 0 when
// unavailable.
func (r Result) BitRate() int64 {
	return nonNegativeInt(r.Format.BitRate)
}

func nonNegativeInt(value string) int64 {
	v, ok := parseDecimal(value)
	if !ok || v < 0 {
		return 0
	}
	return int64(v)
}

func parseDecimal(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return v, err == nil
}

// parseRational converts ffprobe rate strings such as "30000/1001", "25/1"
// or a bare "24" to frames per second.
func parseRational(value string) float64 {
	num, den, isRatio := strings.Cut(strings.TrimSpace(value), "/")
	if !isRatio {
		v, ok := parseDecimal(num)
		if !ok || v < 0 {
			return 0
		}
		return v
	}
	n, nOK := parseDecimal(num)
	d, dOK := parseDecimal(den)
	if !nOK || !dOK || d == 0 {
		return 0
	}
	if rate := n / d; rate > 0 {
		return rate
	}
	return 0
}
