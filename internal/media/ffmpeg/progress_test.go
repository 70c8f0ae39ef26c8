package ffmpeg_test

import (
	"math"
	"testing"

	"clipforge/internal/media/ffmpeg"
)

func TestParseProgress(t *testing.T) {
	line := "frame=  240 fps= 60 q=28.0 size=    1024KiB time=00:01:05.50 bitrate=1048.6kbits/s speed=2.01x"
	update, ok := ffmpeg.ParseProgress(line)
	if !ok {
		t.Fatalf("expected progress line to parse: %q", line)
	}
	if update.OutTimeMs != 65_500 {
		t.Fatalf("expected 65500ms, got %d", update.OutTimeMs)
	}
	if update.Frame != 240 {
		t.Fatalf("expected frame 240, got %d", update.Frame)
	}
	if math.Abs(update.FPS-60) > 0.001 {
		t.Fatalf("expected fps 60, got %v", update.FPS)
	}
	if math.Abs(update.Speed-2.01) > 0.001 {
		t.Fatalf("expected speed 2.01, got %v", update.Speed)
	}
}

func TestParseProgressRejectsNonProgressLines(t *testing.T) {
	lines := []string{
		"Stream mapping:",
		"  Stream #0:0 -> #0:0 (png (native) -> h264 (libx264))",
		"size=N/A time=N/A bitrate=N/A speed=N/A",
		"",
	}
	for _, line := range lines {
		if _, ok := ffmpeg.ParseProgress(line); ok {
			t.Fatalf("expected %q not to parse as progress", line)
		}
	}
}

func TestParseProgressPartialFields(t *testing.T) {
	update, ok := ffmpeg.ParseProgress("size=     512KiB time=00:00:04.00 bitrate=1048.6kbits/s")
	if !ok {
		t.Fatal("expected line with time= to parse")
	}
	if update.OutTimeMs != 4000 {
		t.Fatalf("expected 4000ms, got %d", update.OutTimeMs)
	}
	if update.Frame != 0 || update.Speed != 0 {
		t.Fatalf("expected missing fields to stay zero, got %+v", update)
	}
}
