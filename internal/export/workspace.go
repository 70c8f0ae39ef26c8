package export

import (
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// Workspace is the scoped temporary directory for one export session. All
// segments and rendered frames live under it, and Cleanup removes it on
// every exit path unless the config asks to keep workspaces for debugging.
type Workspace struct {
	SessionID string
	Root      string

	logger *slog.Logger
	keep   bool
}

// NewWorkspace creates the session directory tree under the staging dir.
func NewWorkspace(cfg *config.Config, sessionID string, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	root := filepath.Join(cfg.Paths.StagingDir, "export-"+sessionID)
	for _, dir := range []string{root, filepath.Join(root, "segments"), filepath.Join(root, "frames")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrResource, "export", "create workspace",
				fmt.Sprintf("Could not create workspace directory %s", dir), err)
		}
	}
	return &Workspace{
		SessionID: sessionID,
		Root:      root,
		logger:    logger,
		keep:      cfg.Export.KeepWorkspace,
	}, nil
}

// SegmentsDir holds per-interval extracts and the concat list.
func (w *Workspace) SegmentsDir() string {
	return filepath.Join(w.Root, "segments")
}

// FramesDir holds the numbered frame sequence.
func (w *Workspace) FramesDir() string {
	return filepath.Join(w.Root, "frames")
}

// StitchedPath is the cut-and-concatenated intermediate video.
func (w *Workspace) StitchedPath() string {
	return filepath.Join(w.Root, "stitched.mp4")
}

// Cleanup deletes the workspace tree. With keep_workspace set it logs the
// location instead so a failed run can be inspected.
func (w *Workspace) Cleanup() {
	if w == nil {
		return
	}
	if w.keep {
		w.logger.Info("keeping workspace for inspection", logging.String("workspace", w.Root))
		return
	}
	if err := os.RemoveAll(w.Root); err != nil {
		w.logger.Warn("workspace cleanup failed",
			logging.String("workspace", w.Root),
			logging.Error(err))
	}
}
