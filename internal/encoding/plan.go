package encoding

import (
	"path/filepath"
	"strconv"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/media/ffmpeg"
)

// framePattern is the printf-style name the render phase writes frames under.
const framePattern = "frame_%05d.png"

// crfFor maps a quality preset to its CRF-class value. Unknown presets get
// the balanced tier.
func crfFor(quality string) int {
	switch strings.ToLower(strings.TrimSpace(quality)) {
	case config.QualityHigh:
		return 18
	case config.QualityFast:
		return 28
	default:
		return 23
	}
}

// qualityArgs yields the rate-control flags for an encoder family. Hardware
// encoders each spell "constant quality" differently.
func qualityArgs(accel ffmpeg.Accel, crf int) []string {
	value := strconv.Itoa(crf)
	switch accel {
	case ffmpeg.AccelNVENC:
		return []string{"-rc", "vbr", "-cq", value}
	case ffmpeg.AccelQSV:
		return []string{"-global_quality", value}
	case ffmpeg.AccelVAAPI:
		return []string{"-qp", value}
	case ffmpeg.AccelVideoToolbox:
		return []string{"-q:v", value}
	default:
		return []string{"-crf", value}
	}
}

// plan is one fully-specified encode attempt.
type plan struct {
	args    []string
	encoder string
	// fallback marks the post-failure retry path: software only, single
	// threaded, lowest quality tier.
	fallback bool
}

// buildPlan assembles the ffmpeg invocation that muxes the frame sequence
// with the request's audio. The fallback plan ignores the requested
// acceleration and quality so a dying disk or saturated machine gets the
// cheapest possible second attempt.
func buildPlan(req Request, accel ffmpeg.Accel, fallback bool) plan {
	crf := crfFor(req.Quality)
	if fallback {
		accel = ffmpeg.AccelNone
		crf = crfFor(config.QualityFast)
	}

	args := []string{"-y", "-hide_banner", "-nostdin", "-loglevel", "error", "-stats"}

	var device string
	if accel == ffmpeg.AccelVAAPI {
		if d, ok := ffmpeg.FirstRenderDevice(); ok {
			device = d
			args = append(args, "-init_hw_device", "vaapi=va:"+device, "-filter_hw_device", "va")
		} else {
			accel = ffmpeg.AccelNone
		}
	}

	args = append(args,
		"-framerate", formatFramerate(req.Framerate),
		"-i", filepath.Join(req.FramesDir, framePattern),
	)

	audio, reencodeAudio := audioInput(req)
	if audio != "" {
		args = append(args, "-i", audio)
	}

	args = append(args, "-map", "0:v:0")
	if audio != "" {
		args = append(args, "-map", "1:a:0?")
	}

	switch {
	case accel == ffmpeg.AccelVAAPI:
		args = append(args, "-vf", "format=nv12,hwupload")
	case accel.Hardware():
		args = append(args, "-pix_fmt", "yuv420p")
	default:
		// Software encoders reject odd frame dimensions, which PNG
		// sources happily produce.
		args = append(args, "-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2", "-pix_fmt", "yuv420p")
	}

	args = append(args, "-c:v", accel.Encoder())
	if !accel.Hardware() {
		if fallback {
			args = append(args, "-threads", "1", "-preset", "ultrafast")
		} else {
			args = append(args, "-preset", "medium")
		}
	}
	args = append(args, qualityArgs(accel, crf)...)

	if audio != "" {
		if reencodeAudio {
			args = append(args, "-c:a", "aac", "-b:a", "192k")
		} else {
			args = append(args, "-c:a", "copy")
		}
		args = append(args, "-shortest")
	}

	args = append(args, "-movflags", "+faststart", req.Output)

	return plan{args: args, encoder: accel.Encoder(), fallback: fallback}
}

// audioInput resolves which file supplies the audio track. Replacement audio
// wins over the source track and is re-encoded because it can arrive in any
// container.
func audioInput(req Request) (path string, reencode bool) {
	if strings.TrimSpace(req.ReplacementAudio) != "" {
		return req.ReplacementAudio, true
	}
	if strings.TrimSpace(req.AudioSource) != "" {
		return req.AudioSource, false
	}
	return "", false
}

func formatFramerate(rate float64) string {
	if rate <= 0 {
		rate = 30
	}
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
