package caption

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Document is the caption timeline as the editor exports it: the subtitle
// frames with their word-level edits, the clip regions, and an optional
// default style applied to frames that carry none of their own.
type Document struct {
	Frames []SubtitleFrame `json:"subtitleFrames"`
	Clips  []Clip          `json:"clips,omitempty"`
	Style  *Style          `json:"style,omitempty"`
}

// ReadDocument decodes a timeline document and applies the document-level
// default style. Unknown fields are ignored so older builds keep reading
// documents from newer editors.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode timeline document: %w", err)
	}
	if doc.Style != nil {
		for i := range doc.Frames {
			if doc.Frames[i].Style == (Style{}) {
				doc.Frames[i].Style = *doc.Style
			}
		}
	}
	return doc, nil
}

// ReadDocumentFile reads a timeline document from disk.
func ReadDocumentFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open timeline document: %w", err)
	}
	defer f.Close()
	doc, err := ReadDocument(f)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
