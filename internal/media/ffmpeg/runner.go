package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// maxStderrLines bounds how much stderr is retained for failure
// classification. Long encodes emit thousands of progress lines; only the
// tail matters when something goes wrong.
const maxStderrLines = 200

// Tracker records started subprocesses so that cancellation can signal every
// live ffmpeg process for a job. Register returns a function that removes the
// process again once it has exited.
type Tracker interface {
	Register(cmd *exec.Cmd) (unregister func())
}

// Result reports the outcome of a single ffmpeg invocation. Stderr holds the
// retained tail of the process's stderr output regardless of success, since
// ffmpeg writes both progress and diagnostics there.
type Result struct {
	Stderr string
	Err    error
}

// Failed reports whether the invocation returned an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Detail returns the run error annotated with the last retained stderr line,
// which is where ffmpeg states what actually went wrong. Returns nil on
// success.
func (r Result) Detail() error {
	if r.Err == nil {
		return nil
	}
	lines := strings.Split(r.Stderr, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if _, isProgress := ParseProgress(line); isProgress {
			continue
		}
		return fmt.Errorf("%w: %s", r.Err, line)
	}
	return r.Err
}

// Runner abstracts ffmpeg execution so pipelines can be tested without
// spawning real processes.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) Result
}

// CommandRunner executes ffmpeg via os/exec. Stderr is scanned line by line
// (carriage-return aware, since ffmpeg overwrites its progress line with \r)
// and each line is passed to the caller's onLine callback before being folded
// into the retained tail.
//
// When the context is cancelled the process receives SIGTERM and, if it has
// not exited after Grace, SIGKILL.
type CommandRunner struct {
	// Tracker, when set, is informed of every started process.
	Tracker Tracker
	// Grace is how long a signalled process may linger before it is killed.
	// Zero means kill immediately on cancellation.
	Grace time.Duration
}

func (r *CommandRunner) Run(ctx context.Context, binary string, args []string, onLine func(string)) Result {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = io.Discard
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	if r.Grace > 0 {
		cmd.WaitDelay = r.Grace
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{Err: fmt.Errorf("attach stderr pipe: %w", err)}
	}
	if err := cmd.Start(); err != nil {
		return Result{Err: fmt.Errorf("start %s: %w", binary, err)}
	}
	if r.Tracker != nil {
		unregister := r.Tracker.Register(cmd)
		defer unregister()
	}

	tail := make([]string, 0, maxStderrLines)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanLinesWithCR)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" {
			continue
		}
		if onLine != nil {
			onLine(line)
		}
		if len(tail) == maxStderrLines {
			copy(tail, tail[1:])
			tail = tail[:maxStderrLines-1]
		}
		tail = append(tail, line)
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	captured := strings.Join(tail, "\n")
	if waitErr != nil {
		if ctx.Err() != nil {
			return Result{Stderr: captured, Err: ctx.Err()}
		}
		return Result{Stderr: captured, Err: fmt.Errorf("%s: %w", binary, waitErr)}
	}
	if scanErr != nil {
		return Result{Stderr: captured, Err: fmt.Errorf("read %s output: %w", binary, scanErr)}
	}
	return Result{Stderr: captured}
}

// scanLinesWithCR is a bufio.SplitFunc that treats both \r and \n as line
// terminators. ffmpeg redraws its progress line using bare carriage returns,
// which the stock ScanLines splitter would accumulate into one giant token.
func scanLinesWithCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		for advance < len(data) && (data[advance] == '\r' || data[advance] == '\n') {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
