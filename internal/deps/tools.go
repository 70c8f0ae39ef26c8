package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// ToolVersion reports the banner line advertised by an ffmpeg-family binary,
// e.g. "ffmpeg version 6.1.1". It returns an empty string when the binary is
// missing or does not answer -version.
func ToolVersion(ctx context.Context, binary string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}
