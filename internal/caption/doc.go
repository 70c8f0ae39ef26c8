// Package caption defines the word-level subtitle timeline model shared by the
// export pipeline: word segments with edit states, subtitle frames, clip lists,
// and the style model with its resolution step.
//
// All timestamps are integer milliseconds. Values supplied by callers are
// treated as read-only for the duration of an export.
package caption
