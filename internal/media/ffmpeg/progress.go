package ffmpeg

import (
	"regexp"
	"strconv"
)

// Progress is one sample of ffmpeg's stderr progress line, e.g.
//
//	frame=  240 fps= 60 q=28.0 size=    1024KiB time=00:00:08.00 bitrate=1048.6kbits/s speed=2.01x
type Progress struct {
	Frame     int64
	FPS       float64
	OutTimeMs int64
	Speed     float64
}

var (
	reProgressTime  = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	reProgressFrame = regexp.MustCompile(`frame=\s*(\d+)`)
	reProgressFPS   = regexp.MustCompile(`fps=\s*(\d+(?:\.\d+)?)`)
	reProgressSpeed = regexp.MustCompile(`speed=\s*(\d+(?:\.\d+)?)x`)
)

// ParseProgress extracts a progress sample from a single stderr line. The
// time= field anchors the match; lines without it (version banners, stream
// mappings, warnings) report ok=false.
func ParseProgress(line string) (Progress, bool) {
	m := reProgressTime.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, false
	}
	hours, _ := strconv.ParseInt(m[1], 10, 64)
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)
	update := Progress{
		OutTimeMs: hours*3600_000 + minutes*60_000 + int64(seconds*1000),
	}
	if fm := reProgressFrame.FindStringSubmatch(line); fm != nil {
		update.Frame, _ = strconv.ParseInt(fm[1], 10, 64)
	}
	if fm := reProgressFPS.FindStringSubmatch(line); fm != nil {
		update.FPS, _ = strconv.ParseFloat(fm[1], 64)
	}
	if sm := reProgressSpeed.FindStringSubmatch(line); sm != nil {
		update.Speed, _ = strconv.ParseFloat(sm[1], 64)
	}
	return update, true
}
