package services_test

import (
	"errors"
	"strings"
	"testing"

	"clipforge/internal/queue"
	"clipforge/internal/services"
)

func TestWrapTagsAndChains(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrEncode, "encoding", "mux", "pass failed", base)

	if !errors.Is(err, services.ErrEncode) {
		t.Fatalf("errors.Is lost the taxonomy marker: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("errors.Is lost the cause: %v", err)
	}
	for _, fragment := range []string{"encoding", "mux", "pass failed", "boom"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q is missing %q", err, fragment)
		}
	}
}

func TestWrapDefaults(t *testing.T) {
	// A nil marker falls back to the external-process bucket, and a fully
	// blank context still produces a readable message.
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalProcess) {
		t.Fatalf("nil marker should map to ErrExternalProcess, got %v", err)
	}
	if !strings.Contains(err.Error(), "export failure") {
		t.Fatalf("blank context should read as an export failure, got %q", err)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrResource, "preflight", "disk check", "disk full", nil)
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("marker missing: %v", err)
	}
	if errors.Is(err, services.ErrEncode) {
		t.Fatalf("wrong marker attached: %v", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("message missing from %q", err)
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want queue.Status
	}{
		{"cancellation", services.Wrap(services.ErrCancelled, "rendering", "pool", "stop requested", nil), queue.StatusCancelled},
		{"encode failure", services.Wrap(services.ErrEncode, "encoding", "mux", "mux failed", errors.New("io")), queue.StatusFailed},
		{"plain error", errors.New("unclassified"), queue.StatusFailed},
		{"nil", nil, queue.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.FailureStatus(tc.err); got != tc.want {
				t.Fatalf("FailureStatus = %s, want %s", got, tc.want)
			}
		})
	}
}
