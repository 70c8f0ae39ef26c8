package ffmpeg

import (
	"bufio"
	"strings"
	"testing"
)

func TestScanLinesWithCRSplitsOnBothTerminators(t *testing.T) {
	input := "frame=1 time=00:00:00.03\rframe=2 time=00:00:00.07\r\nDone writing output\nlast"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(scanLinesWithCR)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanner error: %v", err)
	}

	want := []string{
		"frame=1 time=00:00:00.03",
		"frame=2 time=00:00:00.07",
		"Done writing output",
		"last",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestScanLinesWithCRConsumesTerminatorRuns(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("a\r\r\n\nb"))
	scanner.Split(scanLinesWithCR)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Fatalf("expected [a b], got %q", lines)
	}
}
