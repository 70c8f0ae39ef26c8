// Package encoding turns a directory of rendered frames back into a video.
//
// The encoder muxes the numbered PNG sequence with the export's audio track,
// picking a hardware H.264 encoder when one probed healthy and falling back
// to libx264 otherwise. Disk-full and I/O failures during the encode get
// exactly one retry on a deliberately conservative software path; every other
// failure surfaces immediately.
package encoding
