package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"clipforge/internal/caption"
	"clipforge/internal/fileutil"
	"clipforge/internal/services"
)

// WriteSRT renders the frames as a SubRip file. Frames with no displayable
// text are skipped; the style's text transform is applied so the file reads
// the way burned-in captions would have.
func WriteSRT(w io.Writer, frames []caption.SubtitleFrame) error {
	bw := bufio.NewWriter(w)
	index := 1
	for _, frame := range frames {
		text := strings.TrimSpace(frame.DisplayText())
		if text == "" {
			continue
		}
		transform := caption.TextTransform(strings.ToLower(strings.TrimSpace(frame.Style.TextTransform)))
		text = caption.TransformText(text, transform)
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			index, srtTimestamp(frame.StartMs), srtTimestamp(frame.EndMs), text); err != nil {
			return err
		}
		index++
	}
	return bw.Flush()
}

// writeSRTFile writes the remapped captions to path. The write goes through
// a temp file so an interrupted export never leaves a partial SRT behind.
func writeSRTFile(path string, frames []caption.SubtitleFrame) error {
	var buf bytes.Buffer
	if err := WriteSRT(&buf, frames); err != nil {
		return services.Wrap(services.ErrResource, "export", "write subtitles",
			fmt.Sprintf("Could not render subtitle file %s", path), err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrResource, "export", "write subtitles",
			fmt.Sprintf("Could not write subtitle file %s", path), err)
	}
	return nil
}

// srtTimestamp formats milliseconds as the SubRip HH:MM:SS,mmm form.
func srtTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}
