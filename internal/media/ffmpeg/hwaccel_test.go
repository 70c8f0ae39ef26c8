package ffmpeg_test

import (
	"context"
	"errors"
	"testing"

	"clipforge/internal/media/ffmpeg"
)

type scriptedRunner struct {
	calls   [][]string
	working map[string]bool
}

func (s *scriptedRunner) Run(ctx context.Context, binary string, args []string, onLine func(string)) ffmpeg.Result {
	s.calls = append(s.calls, append([]string(nil), args...))
	encoder := ""
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-c:v" {
			encoder = args[i+1]
		}
	}
	if s.working[encoder] {
		return ffmpeg.Result{}
	}
	return ffmpeg.Result{Stderr: "Cannot load encoder", Err: errors.New("probe failed")}
}

func TestDetectPrefersFirstWorkingEncoder(t *testing.T) {
	runner := &scriptedRunner{working: map[string]bool{"h264_qsv": true, "h264_vaapi": true}}
	accel := ffmpeg.Detect(context.Background(), runner, "ffmpeg")
	if accel != ffmpeg.AccelQSV {
		t.Fatalf("expected qsv, got %s", accel)
	}
	if len(runner.calls) < 2 {
		t.Fatalf("expected nvenc probe before qsv, got %d calls", len(runner.calls))
	}
	first := runner.calls[0]
	var sawLavfi, sawNVENC bool
	for i, arg := range first {
		if arg == "lavfi" {
			sawLavfi = true
		}
		if arg == "-c:v" && i+1 < len(first) && first[i+1] == "h264_nvenc" {
			sawNVENC = true
		}
	}
	if !sawLavfi || !sawNVENC {
		t.Fatalf("expected synthetic nvenc probe first, got %v", first)
	}
}

func TestDetectFallsBackToSoftware(t *testing.T) {
	runner := &scriptedRunner{}
	accel := ffmpeg.Detect(context.Background(), runner, "ffmpeg")
	if accel != ffmpeg.AccelNone {
		t.Fatalf("expected software fallback, got %s", accel)
	}
	if accel.Hardware() {
		t.Fatal("software fallback must not report hardware")
	}
}

func TestAccelEncoderNames(t *testing.T) {
	cases := map[ffmpeg.Accel]string{
		ffmpeg.AccelNVENC:        "h264_nvenc",
		ffmpeg.AccelQSV:          "h264_qsv",
		ffmpeg.AccelVAAPI:        "h264_vaapi",
		ffmpeg.AccelVideoToolbox: "h264_videotoolbox",
		ffmpeg.AccelNone:         "libx264",
		ffmpeg.Accel(""):         "libx264",
	}
	for accel, want := range cases {
		if got := accel.Encoder(); got != want {
			t.Fatalf("Encoder(%q) = %q, want %q", accel, got, want)
		}
	}
}
