package pipeline

import "github.com/backmassage/upscayv/internal/task"

// TaskRecord identifies one input in the final report, with the reason it
// did not succeed.
type TaskRecord struct {
	InputPath  string
	OutputPath string
	Kind       task.FailKind
	Reason     string
	Attempts   int // Total attempts made (0 for enumeration-time failures).
}

// RunSummary aggregates one pipeline run. Counters balance:
// Succeeded + Failed + Incomplete + Skipped == Enumerated.
type RunSummary struct {
	Enumerated int // Task units created, including enumeration-time failures.
	Submitted  int // Units handed to the worker pool at least once.
	Succeeded  int
	Failed     int // Permanent failures, including pre-check and sink failures.
	Retried    int // Retry attempts dispatched (not tasks).
	Skipped    int // Existing outputs (--skip-existing) and dry-run previews.
	Incomplete int // Tasks left unfinished by an interrupted run.
	Aborted    bool // Enumeration failed before dispatch; no counts are trustworthy.

	FailedTasks     []TaskRecord // In enumeration order of first failure.
	IncompleteTasks []TaskRecord

	TotalInputBytes  int64
	TotalOutputBytes int64
}

// ExitCode returns the process exit status for this run: 0 only when the run
// completed with no permanent failures and nothing left incomplete.
func (s *RunSummary) ExitCode() int {
	if s.Aborted || s.Failed > 0 || s.Incomplete > 0 {
		return 1
	}
	return 0
}
