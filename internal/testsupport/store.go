package testsupport

import (
	"context"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/queue"
)

// MustOpenStore opens the job store for cfg and closes it when the test
// ends. The store holds an exclusive lock on the state directory, so a
// test that hands the same config to the CLI must close this store first.
func MustOpenStore(tb testing.TB, cfg *config.Config) *queue.Store {
	tb.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		tb.Fatalf("queue.Open: %v", err)
	}
	tb.Cleanup(func() { store.Close() })
	return store
}

// NewJob seeds one pending export job with workable defaults.
func NewJob(tb testing.TB, store *queue.Store, sessionID, sourcePath string) *queue.Job {
	tb.Helper()

	job, err := store.NewJob(context.Background(), sessionID, sourcePath, sourcePath+".export.mp4", queue.ModeComplete, config.QualityBalanced, 30)
	if err != nil {
		tb.Fatalf("store.NewJob: %v", err)
	}
	return job
}
