package upscaler

import (
	"fmt"
	"regexp"
	"strings"
)

// Error describes one failed upscale attempt. Crashed distinguishes a
// subprocess killed by a signal (OOM killer, GPU driver abort) from an
// orderly non-zero exit; the retry policy treats both the same, but the
// distinction is kept for the run summary and metrics.
type Error struct {
	Stderr   string
	Crashed  bool
	TimedOut bool
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.TimedOut:
		return "upscale timed out: " + e.Err.Error()
	case e.Crashed:
		return "upscale process crashed: " + e.Err.Error()
	default:
		detail := StderrSummary(e.Stderr)
		if detail != "" {
			return fmt.Sprintf("upscale failed: %v (%s)", e.Err, detail)
		}
		return "upscale failed: " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Pre-compiled patterns for the stderr conditions worth naming in logs.
// upscayl-bin is ncnn/Vulkan based; these cover the common failure texts.
var (
	reModelLoad  = regexp.MustCompile(`(?i)failed to load model|find_blob_index_by_name .* failed|fopen .*\.param failed`)
	reGPUFailure = regexp.MustCompile(`(?i)vkAllocateMemory failed|vkQueueSubmit failed|vkCreateDevice failed|device lost`)
	reBadInput   = regexp.MustCompile(`(?i)decode image .* failed|invalid image|unsupported image format`)
)

// StderrSummary maps known stderr patterns to a short human label, or returns
// the last non-empty stderr line as a fallback. Empty stderr yields "".
func StderrSummary(stderr string) string {
	switch {
	case stderr == "":
		return ""
	case reModelLoad.MatchString(stderr):
		return "model failed to load"
	case reGPUFailure.MatchString(stderr):
		return "GPU/Vulkan failure"
	case reBadInput.MatchString(stderr):
		return "input image could not be decoded"
	}
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
