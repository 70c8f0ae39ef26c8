package encoding

import (
	"fmt"
	"path/filepath"
	"sort"

	"clipforge/internal/preflight"
	"clipforge/internal/services"
)

// validateEnvironment rejects an encode before ffmpeg spawns when the
// machine cannot hold it: no rendered frames, an unwritable destination, or
// less free disk than the configured floor.
func (e *Encoder) validateEnvironment(req Request) error {
	frames, err := countFrames(req.FramesDir)
	if err != nil {
		return services.Wrap(services.ErrResource, "encoding", "inspect frames",
			fmt.Sprintf("Could not inspect frames directory %s", req.FramesDir), err)
	}
	if frames == 0 {
		return services.Wrap(services.ErrResource, "encoding", "inspect frames",
			fmt.Sprintf("Frames directory %s contains no rendered frames", req.FramesDir), nil)
	}

	outDir := filepath.Dir(req.Output)
	if err := preflight.Writable(outDir); err != nil {
		return services.Wrap(services.ErrResource, "encoding", "check output directory",
			fmt.Sprintf("Output directory %s is not writable", outDir), err)
	}

	free, err := freeSpace(outDir)
	if err != nil {
		return services.Wrap(services.ErrResource, "encoding", "check free space",
			fmt.Sprintf("Could not determine free space at %s", outDir), err)
	}
	minBytes := e.cfg.Export.MinFreeSpaceMB * (1 << 20)
	if minBytes > 0 && free < minBytes {
		return services.Wrap(services.ErrResource, "encoding", "check free space",
			fmt.Sprintf("Need %d MB free at %s, have %d MB", e.cfg.Export.MinFreeSpaceMB, outDir, free/(1<<20)), nil)
	}
	return nil
}

// countFrames reports how many rendered frames are waiting in dir.
func countFrames(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "frame_*.png"))
	if err != nil {
		return 0, err
	}
	sort.Strings(matches)
	return len(matches), nil
}
