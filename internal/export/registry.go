package export

import (
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// ProcessRegistry tracks the live subprocesses of one export run so
// cancellation can signal all of them. It satisfies the command runner's
// Tracker interface.
type ProcessRegistry struct {
	mu    sync.Mutex
	procs map[*exec.Cmd]struct{}
}

// NewProcessRegistry returns an empty registry.
func NewProcessRegistry() *ProcessRegistry {
	return &ProcessRegistry{procs: make(map[*exec.Cmd]struct{})}
}

// Register adds a started process and returns its removal func.
func (r *ProcessRegistry) Register(cmd *exec.Cmd) (unregister func()) {
	r.mu.Lock()
	r.procs[cmd] = struct{}{}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.procs, cmd)
		r.mu.Unlock()
	}
}

// Len reports how many tracked processes are still live.
func (r *ProcessRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

// TerminateAll sends SIGTERM to every tracked process, waits up to grace for
// them to deregister, then SIGKILLs the stragglers. It returns once the
// registry is empty or every survivor has been killed.
func (r *ProcessRegistry) TerminateAll(grace time.Duration) {
	for _, cmd := range r.snapshot() {
		signalProcess(cmd, unix.SIGTERM)
	}
	if grace < 0 {
		grace = 0
	}
	deadline := time.Now().Add(grace)
	for r.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(25 * time.Millisecond)
	}
	for _, cmd := range r.snapshot() {
		signalProcess(cmd, unix.SIGKILL)
	}
}

func (r *ProcessRegistry) snapshot() []*exec.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	procs := make([]*exec.Cmd, 0, len(r.procs))
	for cmd := range r.procs {
		procs = append(procs, cmd)
	}
	return procs
}

func signalProcess(cmd *exec.Cmd, sig unix.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(sig)
}
