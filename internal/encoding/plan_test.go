package encoding

import (
	"slices"
	"strings"
	"testing"

	"clipforge/internal/media/ffmpeg"
)

func hasFlagValue(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestCRFForPresets(t *testing.T) {
	cases := []struct {
		quality string
		want    int
	}{
		{"high", 18},
		{"balanced", 23},
		{"fast", 28},
		{"HIGH", 18},
		{" fast ", 28},
		{"", 23},
		{"bogus", 23},
	}
	for _, tc := range cases {
		if got := crfFor(tc.quality); got != tc.want {
			t.Fatalf("crfFor(%q) = %d, want %d", tc.quality, got, tc.want)
		}
	}
}

func TestBuildPlanSoftware(t *testing.T) {
	req := Request{
		FramesDir:   "/work/frames",
		Framerate:   30,
		AudioSource: "/work/stitched.mp4",
		Output:      "/out/final.mp4",
		Quality:     "balanced",
	}

	p := buildPlan(req, ffmpeg.AccelNone, false)
	if p.encoder != "libx264" {
		t.Fatalf("encoder = %q, want libx264", p.encoder)
	}
	if p.fallback {
		t.Fatal("primary plan flagged as fallback")
	}
	if !hasFlagValue(p.args, "-i", "/work/frames/frame_%05d.png") {
		t.Fatalf("missing frame sequence input: %v", p.args)
	}
	if !hasFlagValue(p.args, "-framerate", "30") {
		t.Fatalf("missing framerate: %v", p.args)
	}
	if !hasFlagValue(p.args, "-crf", "23") {
		t.Fatalf("missing balanced crf: %v", p.args)
	}
	if !hasFlagValue(p.args, "-preset", "medium") {
		t.Fatalf("missing software preset: %v", p.args)
	}
	if !hasFlagValue(p.args, "-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2") {
		t.Fatalf("software plan should scale to even dimensions: %v", p.args)
	}
	if !hasFlagValue(p.args, "-pix_fmt", "yuv420p") {
		t.Fatalf("missing pixel format: %v", p.args)
	}
	if !hasFlagValue(p.args, "-c:a", "copy") {
		t.Fatalf("source audio should be stream copied: %v", p.args)
	}
	if !slices.Contains(p.args, "-shortest") {
		t.Fatalf("missing -shortest with audio input: %v", p.args)
	}
	if !hasFlagValue(p.args, "-movflags", "+faststart") {
		t.Fatalf("missing faststart: %v", p.args)
	}
	if p.args[len(p.args)-1] != "/out/final.mp4" {
		t.Fatalf("output should be the final arg: %v", p.args)
	}
}

func TestBuildPlanNVENC(t *testing.T) {
	req := Request{
		FramesDir:   "/work/frames",
		Framerate:   23.976,
		AudioSource: "/work/stitched.mp4",
		Output:      "/out/final.mp4",
		Quality:     "high",
	}

	p := buildPlan(req, ffmpeg.AccelNVENC, false)
	if p.encoder != "h264_nvenc" {
		t.Fatalf("encoder = %q, want h264_nvenc", p.encoder)
	}
	if !hasFlagValue(p.args, "-c:v", "h264_nvenc") {
		t.Fatalf("missing nvenc codec: %v", p.args)
	}
	if !hasFlagValue(p.args, "-cq", "18") {
		t.Fatalf("missing nvenc quality for high preset: %v", p.args)
	}
	if !hasFlagValue(p.args, "-framerate", "23.976") {
		t.Fatalf("missing fractional framerate: %v", p.args)
	}
	for _, arg := range p.args {
		if strings.HasPrefix(arg, "scale=") {
			t.Fatalf("hardware plan should not scale in software: %v", p.args)
		}
		if arg == "-preset" {
			t.Fatalf("hardware plan should not set a libx264 preset: %v", p.args)
		}
	}
}

func TestBuildPlanFallbackIgnoresAccelAndQuality(t *testing.T) {
	req := Request{
		FramesDir:   "/work/frames",
		Framerate:   30,
		AudioSource: "/work/stitched.mp4",
		Output:      "/out/final.mp4",
		Quality:     "high",
	}

	p := buildPlan(req, ffmpeg.AccelNVENC, true)
	if !p.fallback {
		t.Fatal("fallback plan not flagged")
	}
	if p.encoder != "libx264" {
		t.Fatalf("fallback encoder = %q, want libx264", p.encoder)
	}
	if !hasFlagValue(p.args, "-threads", "1") {
		t.Fatalf("fallback should be single threaded: %v", p.args)
	}
	if !hasFlagValue(p.args, "-preset", "ultrafast") {
		t.Fatalf("fallback should use ultrafast: %v", p.args)
	}
	if !hasFlagValue(p.args, "-crf", "28") {
		t.Fatalf("fallback should drop to the fast quality tier: %v", p.args)
	}
	if slices.Contains(p.args, "h264_nvenc") {
		t.Fatalf("fallback must not reference the hardware encoder: %v", p.args)
	}
}

func TestBuildPlanReplacementAudioReencodes(t *testing.T) {
	req := Request{
		FramesDir:        "/work/frames",
		Framerate:        30,
		AudioSource:      "/work/stitched.mp4",
		ReplacementAudio: "/media/narration.wav",
		Output:           "/out/final.mp4",
	}

	p := buildPlan(req, ffmpeg.AccelNone, false)
	if !hasFlagValue(p.args, "-i", "/media/narration.wav") {
		t.Fatalf("replacement audio should be the audio input: %v", p.args)
	}
	if hasFlagValue(p.args, "-i", "/work/stitched.mp4") {
		t.Fatalf("source audio should be displaced by the replacement: %v", p.args)
	}
	if !hasFlagValue(p.args, "-c:a", "aac") {
		t.Fatalf("replacement audio should be re-encoded: %v", p.args)
	}
}

func TestBuildPlanWithoutAudio(t *testing.T) {
	req := Request{
		FramesDir: "/work/frames",
		Framerate: 30,
		Output:    "/out/final.mp4",
	}

	p := buildPlan(req, ffmpeg.AccelNone, false)
	for i, arg := range p.args {
		if arg == "-map" && i+1 < len(p.args) && strings.HasPrefix(p.args[i+1], "1:") {
			t.Fatalf("no second input should be mapped: %v", p.args)
		}
		if arg == "-c:a" || arg == "-shortest" {
			t.Fatalf("audio flags present without audio input: %v", p.args)
		}
	}
}

func TestFormatFramerate(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{30, "30"},
		{23.976, "23.976"},
		{0, "30"},
		{-5, "30"},
	}
	for _, tc := range cases {
		if got := formatFramerate(tc.rate); got != tc.want {
			t.Fatalf("formatFramerate(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}
