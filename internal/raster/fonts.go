package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var parseDefaultFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

type libraryEntry struct {
	font     *opentype.Font
	fallback bool
}

// FontLibrary parses and caches font files by family name. Safe for
// concurrent use; parsed fonts are immutable and may be shared across
// renderers.
type FontLibrary struct {
	mu     sync.Mutex
	dir    string
	parsed map[string]libraryEntry
}

// NewFontLibrary creates a library that resolves families against dir. An
// empty dir means only the bundled default font is available.
func NewFontLibrary(dir string) *FontLibrary {
	return &FontLibrary{dir: dir, parsed: make(map[string]libraryEntry)}
}

// Font returns the parsed font for a family, looking for <dir>/<family>.ttf
// then <dir>/<family>.otf. A missing or unparsable family falls back to the
// bundled Go Regular face, reported through the second return value, so
// rendering never fails on fonts alone.
func (l *FontLibrary) Font(family string) (*opentype.Font, bool, error) {
	family = strings.TrimSpace(family)
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.parsed[family]; ok {
		return entry.font, entry.fallback, nil
	}
	entry, err := l.load(family)
	if err != nil {
		return nil, false, err
	}
	l.parsed[family] = entry
	return entry.font, entry.fallback, nil
}

func (l *FontLibrary) load(family string) (libraryEntry, error) {
	if family != "" && l.dir != "" {
		for _, ext := range []string{".ttf", ".otf"} {
			data, err := os.ReadFile(filepath.Join(l.dir, family+ext))
			if err != nil {
				continue
			}
			parsed, err := opentype.Parse(data)
			if err != nil {
				break
			}
			return libraryEntry{font: parsed}, nil
		}
	}
	fallback, err := parseDefaultFont()
	if err != nil {
		return libraryEntry{}, fmt.Errorf("parse bundled font: %w", err)
	}
	return libraryEntry{font: fallback, fallback: family != ""}, nil
}
