// Package raster draws styled captions onto frame pixel buffers. It supports
// three drawing modes: simple static text, karaoke highlighting on one line,
// and progressive word stacking. Styles are resolved once up front via
// Prepare; the drawing code consumes only resolved styles.
//
// Font faces are not safe for concurrent use, so each render worker owns its
// own Renderer. Workers share a FontLibrary, which caches parsed font files
// behind a lock and falls back to the bundled Go Regular face when a family
// cannot be loaded.
package raster
