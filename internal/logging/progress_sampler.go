package logging

import "strings"

// ProgressSampler rate-limits progress logging. Encoders and renderers
// report percentages far faster than anyone wants them in a log file, so
// the sampler passes an event through only when the stage changes or the
// percentage crosses into a new bucket.
type ProgressSampler struct {
	step       float64
	stage      string
	lastBucket int
}

// NewProgressSampler returns a sampler with the given bucket width in
// percent. Widths at or below zero fall back to 5.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, lastBucket: -1}
}

func (s *ProgressSampler) bucket(percent float64) int {
	if percent >= 100 {
		return int(100 / s.step)
	}
	return int(percent / s.step)
}

// ShouldLog reports whether this progress event carries new information.
// A negative percent means the caller does not know the completion ratio
// yet; only stage transitions emit then. The message is ignored on
// purpose since it tends to embed ETAs that change every tick.
func (s *ProgressSampler) ShouldLog(percent float64, stage, _ string) bool {
	if s == nil {
		return true
	}

	emit := false
	if trimmed := strings.TrimSpace(stage); trimmed != "" && trimmed != s.stage {
		s.stage = trimmed
		s.lastBucket = -1
		emit = true
	}

	if percent < 0 {
		return emit
	}
	if b := s.bucket(percent); b > s.lastBucket {
		s.lastBucket = b
		emit = true
	}
	return emit
}

// Reset forgets all sampling state so the next event always logs.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.stage = ""
	s.lastBucket = -1
}
