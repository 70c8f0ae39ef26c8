package export_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"clipforge/internal/caption"
	"clipforge/internal/config"
	"clipforge/internal/export"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/testsupport"
)

// pipelineRunner fakes every ffmpeg invocation of a run by producing the
// artifact the real tool would have written: segment and remux outputs become
// small placeholder files, frame extraction becomes a directory of real PNGs.
type pipelineRunner struct {
	t      *testing.T
	frames int

	mu    sync.Mutex
	calls [][]string
}

func (r *pipelineRunner) Run(ctx context.Context, binary string, args []string, onLine func(string)) ffmpeg.Result {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), args...))
	r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return ffmpeg.Result{Err: err}
	}
	out := args[len(args)-1]
	switch {
	case out == "-":
		// Hardware probes write to the null muxer, not a file.
		return ffmpeg.Result{}
	case strings.HasSuffix(out, "frame_%05d.png"):
		dir := filepath.Dir(out)
		for i := 1; i <= r.frames; i++ {
			writeFramePNG(r.t, filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i)))
		}
		return ffmpeg.Result{}
	default:
		if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
			r.t.Errorf("write %s: %v", out, err)
		}
		return ffmpeg.Result{}
	}
}

func (r *pipelineRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// countCallsWith returns how many invocations contain every given argument
// as an exact token.
func (r *pipelineRunner) countCallsWith(flags ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, call := range r.calls {
		all := true
		for _, flag := range flags {
			found := false
			for _, arg := range call {
				if arg == flag {
					found = true
					break
				}
			}
			if !found {
				all = false
				break
			}
		}
		if all {
			count++
		}
	}
	return count
}

func (r *pipelineRunner) frameExtractCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, call := range r.calls {
		if strings.HasSuffix(call[len(call)-1], "frame_%05d.png") {
			count++
		}
	}
	return count
}

func writeFramePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{A: 255}), image.Point{}, draw.Src)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func stubProbe(t *testing.T, durationSeconds string) {
	t.Helper()
	restore := export.SetInspectForTests(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{Duration: durationSeconds}}, nil
	})
	t.Cleanup(restore)
}

func newTestController(t *testing.T, runner ffmpeg.Runner) (*export.Controller, *config.Config, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Export.MinFreeSpaceMB = 1
	cfg.Render.Workers = 2
	store := testsupport.MustOpenStore(t, cfg)
	return export.NewControllerWithRunner(cfg, nil, store, runner), cfg, store
}

// editedTimeline has one word struck through, so word-level cutting engages
// and the kept set becomes 0-2s plus 3-4s.
func editedTimeline() []caption.SubtitleFrame {
	return []caption.SubtitleFrame{{
		ID:      "f1",
		StartMs: 0,
		EndMs:   4000,
		Words: []caption.WordSegment{
			{ID: "w1", Text: "keep", StartMs: 0, EndMs: 2000},
			{ID: "w2", Text: "drop", StartMs: 2000, EndMs: 3000, EditState: caption.EditStateStrikethrough},
			{ID: "w3", Text: "tail", StartMs: 3000, EndMs: 4000},
		},
	}}
}

func baseRequest(t *testing.T) export.Request {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "source.mp4")
	if err := os.WriteFile(source, []byte("source"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return export.Request{
		Source: source,
		Output: filepath.Join(dir, "out.mp4"),
		Frames: editedTimeline(),
		Mode:   queue.ModeComplete,
	}
}

func stagingEntries(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunCompleteExport(t *testing.T) {
	runner := &pipelineRunner{t: t, frames: 6}
	ctrl, cfg, store := newTestController(t, runner)
	stubProbe(t, "10.000000")

	req := baseRequest(t)
	var (
		mu       sync.Mutex
		percents []float64
	)
	req.OnProgress = func(pct float64, msg string) {
		mu.Lock()
		percents = append(percents, pct)
		mu.Unlock()
	}

	res, err := ctrl.Run(context.Background(), req, export.NewToken())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.OutputPath != req.Output || res.SessionID == "" || res.JobID == 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Rendered != 6 || res.Skipped != 0 {
		t.Fatalf("unexpected render stats: %+v", res)
	}
	if data, err := os.ReadFile(req.Output); err != nil || string(data) != "media" {
		t.Fatalf("expected encoded output, got %q err %v", data, err)
	}

	// Two kept intervals plus the concat, one frame extraction, one encode.
	if got := runner.countCallsWith("-ss"); got != 2 {
		t.Fatalf("expected 2 segment extractions, got %d", got)
	}
	if got := runner.countCallsWith("-f", "concat"); got != 1 {
		t.Fatalf("expected 1 concat, got %d", got)
	}
	if got := runner.frameExtractCalls(); got != 1 {
		t.Fatalf("expected 1 frame extraction, got %d", got)
	}
	if got := runner.countCallsWith("-movflags", "+faststart"); got != 1 {
		t.Fatalf("expected 1 encode, got %d", got)
	}

	last := 0.0
	for _, pct := range percents {
		if pct < last {
			t.Fatalf("progress went backwards: %v", percents)
		}
		last = pct
	}
	if last != 100 {
		t.Fatalf("expected final progress 100, got %v", last)
	}

	job, err := store.GetByID(context.Background(), res.JobID)
	if err != nil || job == nil {
		t.Fatalf("load job: %v", err)
	}
	if job.Status != queue.StatusCompleted || job.OutputPath != req.Output {
		t.Fatalf("unexpected job row: %+v", job)
	}
	if job.ProgressPercent != 100 {
		t.Fatalf("expected job progress 100, got %v", job.ProgressPercent)
	}

	if entries := stagingEntries(t, cfg); len(entries) != 0 {
		t.Fatalf("expected workspace removed, found %v", entries)
	}
}

func TestRunSubtitlesOnly(t *testing.T) {
	runner := &pipelineRunner{t: t}
	ctrl, _, store := newTestController(t, runner)
	stubProbe(t, "10.000000")

	req := baseRequest(t)
	req.Mode = queue.ModeSubtitlesOnly
	req.Output = filepath.Join(filepath.Dir(req.Output), "captions.srt")

	res, err := ctrl.Run(context.Background(), req, export.NewToken())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	data, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatalf("read SRT: %v", err)
	}
	// The struck word is cut, so the caption remaps from 0-4s to 0-3s.
	want := "1\n00:00:00,000 --> 00:00:03,000\nkeep tail\n\n"
	if string(data) != want {
		t.Fatalf("unexpected SRT contents %q, want %q", data, want)
	}
	if runner.callCount() != 0 {
		t.Fatalf("expected no ffmpeg runs, got %d", runner.callCount())
	}

	job, err := store.GetByID(context.Background(), res.JobID)
	if err != nil || job == nil {
		t.Fatalf("load job: %v", err)
	}
	if job.Status != queue.StatusCompleted {
		t.Fatalf("expected completed job, got %s", job.Status)
	}
}

func TestRunModifiedSegmentsSkipsRendering(t *testing.T) {
	runner := &pipelineRunner{t: t}
	ctrl, _, _ := newTestController(t, runner)
	stubProbe(t, "10.000000")

	req := baseRequest(t)
	req.Mode = queue.ModeModifiedSegments

	res, err := ctrl.Run(context.Background(), req, export.NewToken())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Rendered != 0 {
		t.Fatalf("expected no rendered frames, got %d", res.Rendered)
	}
	if got := runner.frameExtractCalls(); got != 0 {
		t.Fatalf("expected no frame extraction, got %d", got)
	}
	if got := runner.countCallsWith("-c", "copy", "-movflags"); got != 1 {
		t.Fatalf("expected 1 remux, got %d", got)
	}
	if data, err := os.ReadFile(req.Output); err != nil || string(data) != "media" {
		t.Fatalf("expected remuxed output, got %q err %v", data, err)
	}
}

func TestRunCancelledDuringExtraction(t *testing.T) {
	runner := &pipelineRunner{t: t, frames: 6}
	ctrl, cfg, store := newTestController(t, runner)
	stubProbe(t, "10.000000")

	token := export.NewToken()
	req := baseRequest(t)
	var once sync.Once
	req.OnProgress = func(pct float64, msg string) {
		if strings.Contains(msg, "extracted 1 of") {
			once.Do(token.Cancel)
		}
	}

	_, err := ctrl.Run(context.Background(), req, token)
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if _, err := os.Stat(req.Output); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err %v", err)
	}
	if entries := stagingEntries(t, cfg); len(entries) != 0 {
		t.Fatalf("expected workspace removed after cancel, found %v", entries)
	}

	jobs, err := store.List(context.Background())
	if err != nil || len(jobs) != 1 {
		t.Fatalf("expected one job row, got %d err %v", len(jobs), err)
	}
	if jobs[0].Status != queue.StatusCancelled {
		t.Fatalf("expected cancelled job, got %s", jobs[0].Status)
	}
}

func TestRunKeepsWorkspaceWhenConfigured(t *testing.T) {
	runner := &pipelineRunner{t: t, frames: 4}
	ctrl, cfg, _ := newTestController(t, runner)
	cfg.Export.KeepWorkspace = true
	stubProbe(t, "10.000000")

	res, err := ctrl.Run(context.Background(), baseRequest(t), export.NewToken())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := "export-" + res.SessionID
	found := false
	for _, name := range stagingEntries(t, cfg) {
		if name == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s kept in staging", want)
	}
}

func TestRunProbeFailureFailsJob(t *testing.T) {
	runner := &pipelineRunner{t: t}
	ctrl, _, store := newTestController(t, runner)
	restore := export.SetInspectForTests(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("moov atom not found")
	})
	t.Cleanup(restore)

	_, err := ctrl.Run(context.Background(), baseRequest(t), export.NewToken())
	if !errors.Is(err, services.ErrExternalProcess) {
		t.Fatalf("expected external process error, got %v", err)
	}

	jobs, listErr := store.List(context.Background())
	if listErr != nil || len(jobs) != 1 {
		t.Fatalf("expected one job row, got %d err %v", len(jobs), listErr)
	}
	if jobs[0].Status != queue.StatusFailed || jobs[0].ErrorMessage == "" {
		t.Fatalf("expected failed job with message, got %+v", jobs[0])
	}
}

func TestRunRejectsZeroDurationSource(t *testing.T) {
	runner := &pipelineRunner{t: t}
	ctrl, _, _ := newTestController(t, runner)
	stubProbe(t, "0")

	_, err := ctrl.Run(context.Background(), baseRequest(t), export.NewToken())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunValidatesRequests(t *testing.T) {
	runner := &pipelineRunner{t: t}
	ctrl, _, _ := newTestController(t, runner)
	stubProbe(t, "10.000000")

	cases := []struct {
		name    string
		mutate  func(*export.Request)
		wantErr error
	}{
		{"missing source", func(r *export.Request) { r.Source = filepath.Join(t.TempDir(), "gone.mp4") }, services.ErrValidation},
		{"unknown mode", func(r *export.Request) { r.Mode = "bogus" }, services.ErrValidation},
		{"unknown quality", func(r *export.Request) { r.Quality = "ultra" }, services.ErrValidation},
		{"inverted frame", func(r *export.Request) {
			r.Frames = []caption.SubtitleFrame{{ID: "f1", StartMs: 500, EndMs: 500}}
		}, services.ErrValidation},
		{"overlapping clips", func(r *export.Request) {
			r.Clips = []caption.Clip{
				{ID: "c1", StartMs: 0, EndMs: 2000, IsRemoved: true},
				{ID: "c2", StartMs: 1000, EndMs: 3000, IsRemoved: true},
			}
		}, services.ErrValidation},
		{"missing replacement audio", func(r *export.Request) {
			r.ReplacementAudio = filepath.Join(t.TempDir(), "gone.m4a")
		}, services.ErrValidation},
		{"unwritable output dir", func(r *export.Request) {
			r.Output = filepath.Join(t.TempDir(), "missing", "out.mp4")
		}, services.ErrResource},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest(t)
			tc.mutate(&req)
			_, err := ctrl.Run(context.Background(), req, export.NewToken())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
	if runner.callCount() != 0 {
		t.Fatalf("expected no ffmpeg runs for rejected requests, got %d", runner.callCount())
	}
}
