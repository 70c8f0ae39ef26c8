package ffmpeg

import (
	"context"
	"path/filepath"
	"sort"
)

// Accel identifies a hardware encode path. The zero-value behavior of every
// helper is software encoding.
type Accel string

const (
	AccelNone         Accel = "none"
	AccelNVENC        Accel = "nvenc"
	AccelQSV          Accel = "qsv"
	AccelVAAPI        Accel = "vaapi"
	AccelVideoToolbox Accel = "videotoolbox"
)

// probeOrder is the preference order for hardware encoders. NVENC and QSV
// are tried before VAAPI because they carry their own rate control; VAAPI
// quality varies wildly by driver. VideoToolbox only exists on Darwin and
// fails fast elsewhere.
var probeOrder = []Accel{AccelNVENC, AccelQSV, AccelVAAPI, AccelVideoToolbox}

// Encoder returns the H.264 encoder name ffmpeg uses for this acceleration.
func (a Accel) Encoder() string {
	switch a {
	case AccelNVENC:
		return "h264_nvenc"
	case AccelQSV:
		return "h264_qsv"
	case AccelVAAPI:
		return "h264_vaapi"
	case AccelVideoToolbox:
		return "h264_videotoolbox"
	default:
		return "libx264"
	}
}

// Hardware reports whether the acceleration uses a hardware encoder.
func (a Accel) Hardware() bool {
	return a != AccelNone && a != ""
}

// Detect probes for a usable hardware encoder by running a tiny test encode
// of a synthetic source against each candidate in preference order. The
// first encoder that completes wins; if none do, AccelNone is returned and
// the pipeline encodes in software.
func Detect(ctx context.Context, runner Runner, binary string) Accel {
	for _, accel := range probeOrder {
		args, ok := probeArgs(accel)
		if !ok {
			continue
		}
		if res := runner.Run(ctx, binary, args, nil); !res.Failed() {
			return accel
		}
		if ctx.Err() != nil {
			return AccelNone
		}
	}
	return AccelNone
}

// probeArgs builds the test-encode invocation for one candidate. A tenth of
// a second of black frames through the null muxer is enough to surface
// missing drivers or absent devices without touching the filesystem.
func probeArgs(accel Accel) ([]string, bool) {
	base := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
	}
	switch accel {
	case AccelVAAPI:
		device, ok := FirstRenderDevice()
		if !ok {
			return nil, false
		}
		args := []string{
			"-hide_banner", "-nostdin", "-loglevel", "error",
			"-init_hw_device", "vaapi=va:" + device,
			"-filter_hw_device", "va",
			"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
			"-vf", "format=nv12,hwupload",
			"-c:v", accel.Encoder(),
			"-f", "null", "-",
		}
		return args, true
	case AccelNVENC, AccelQSV, AccelVideoToolbox:
		args := append(base, "-c:v", accel.Encoder(), "-f", "null", "-")
		return args, true
	default:
		return nil, false
	}
}

// FirstRenderDevice finds the lowest-numbered DRM render node, which is where
// VAAPI encoders live on Linux. Encode argument builders need the same device
// the probe validated.
func FirstRenderDevice() (string, bool) {
	matches, err := filepath.Glob("/dev/dri/renderD*")
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}
