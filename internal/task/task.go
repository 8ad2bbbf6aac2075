// Package task defines the unit of upscaling work, the per-attempt result,
// and the failure taxonomy shared by the pool, pipeline, and sink packages.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Unit describes one upscaling job: a single input image bound to a single
// output path. Units are immutable once created; a retry is expressed as a
// fresh Unit (same ID and paths) with Attempt incremented, see [Unit.Retry].
type Unit struct {
	ID         uuid.UUID
	InputPath  string
	OutputPath string
	Attempt    int
}

// NewUnit creates an attempt-0 Unit with a fresh identifier.
func NewUnit(inputPath, outputPath string) Unit {
	return Unit{
		ID:         uuid.New(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Attempt:    0,
	}
}

// Retry returns a copy of u for the next attempt. The ID is preserved so the
// coordinator keeps correlating results for the same input file.
func (u Unit) Retry() Unit {
	u.Attempt++
	return u
}

// Status is the terminal outcome of one dispatched attempt.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
)

// String returns the lowercase status label used in logs and metrics.
func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failure"
}

// FailKind classifies a failure for reporting. The retry policy is uniform
// across transform errors and worker crashes (an opaque transform cannot be
// reliably classified), so kinds exist for the summary and metrics, not for
// retry decisions.
type FailKind int

const (
	KindNone             FailKind = iota
	KindInputNotFound             // Enumeration pre-check failed; never retried.
	KindTransformFailure          // The upscale subprocess exited non-zero.
	KindWorkerCrash               // Subprocess killed by signal, or worker panic.
	KindSinkWrite                 // Output could not be persisted; never retried.
	KindCancelled                 // Run interrupted before the task finished.
)

// String returns the kind label used in summaries and metrics.
func (k FailKind) String() string {
	switch k {
	case KindInputNotFound:
		return "input_not_found"
	case KindTransformFailure:
		return "transform_failure"
	case KindWorkerCrash:
		return "worker_crash"
	case KindSinkWrite:
		return "sink_write_failure"
	case KindCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Result is the outcome of exactly one dispatched attempt of a Unit.
// Ownership transfers to the coordinator when it is collected; on success
// Payload holds the upscaled image bytes, on failure Err holds the reason.
type Result struct {
	TaskID   uuid.UUID
	Status   Status
	Payload  []byte
	Kind     FailKind
	Err      string
	Duration time.Duration
}

// Succeeded reports whether the attempt produced output.
func (r Result) Succeeded() bool { return r.Status == StatusSuccess }
