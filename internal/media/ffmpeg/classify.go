package ffmpeg

import "regexp"

// Classification patterns for ffmpeg stderr output. ffmpeg's exit codes carry
// almost no information, so failure handling keys off well-known diagnostic
// strings instead.
var (
	reIOFailure = regexp.MustCompile(`(?i)` +
		`no space left on device` +
		`|input/output error` +
		`|too many packets buffered for output stream` +
		`|error writing` +
		`|broken pipe` +
		`|failed to write`)

	reMissingInput = regexp.MustCompile(`(?i)no such file or directory|does not contain any stream`)

	reEncoderInit = regexp.MustCompile(`(?i)` +
		`cannot load [a-z0-9_.-]+` +
		`|failed to initialise|failed to initialize` +
		`|error initializing output stream` +
		`|device creation failed` +
		`|no capable devices found`)
)

// MatchIOFailure reports whether stderr indicates an I/O-class failure:
// exhausted disk, a saturated mux queue, or a write that never landed. These
// are the only failures the encoder retries.
func MatchIOFailure(stderr string) bool {
	return reIOFailure.MatchString(stderr)
}

// MatchMissingInput reports whether stderr indicates an unreadable or
// streamless input file.
func MatchMissingInput(stderr string) bool {
	return reMissingInput.MatchString(stderr)
}

// MatchEncoderInit reports whether stderr indicates the encoder itself could
// not be brought up, which for hardware encoders usually means the device is
// absent or busy.
func MatchEncoderInit(stderr string) bool {
	return reEncoderInit.MatchString(stderr)
}
