// Package pipeline orchestrates input enumeration, parallel dispatch through
// the worker pool, retry bookkeeping, and the final run summary.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/backmassage/upscayv/internal/config"
	"github.com/backmassage/upscayv/internal/display"
	"github.com/backmassage/upscayv/internal/logging"
	"github.com/backmassage/upscayv/internal/metrics"
	"github.com/backmassage/upscayv/internal/pool"
	"github.com/backmassage/upscayv/internal/probe"
	"github.com/backmassage/upscayv/internal/sink"
	"github.com/backmassage/upscayv/internal/task"
	"github.com/backmassage/upscayv/internal/upscaler"
)

// job tracks one task unit from enumeration to its terminal state. The unit
// field is replaced (not mutated) on retry; the task ID stays stable so pool
// results keep correlating to the same job.
type job struct {
	unit     task.Unit
	terminal bool
}

// Run is the top-level batch entry point: enumerate inputs, pre-check them,
// drive the worker pool until every task reaches a terminal state (or the
// context is cancelled), and return aggregate results.
//
// Per-task state machine: Pending -> Dispatched -> {Succeeded | Failed};
// Failed -> Pending (attempt+1) while attempts remain, else permanent.
// Retries apply uniformly to every failure cause except the enumeration
// pre-check, which is permanent by definition.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, tr upscaler.Transform, snk sink.Sink) RunSummary {
	var sum RunSummary

	entries, missing, err := Enumerate(cfg.Inputs)
	if err != nil {
		log.Error("Input discovery failed: %v", err)
		sum.Aborted = true
		return sum
	}
	sum.Enumerated = len(entries) + len(missing)

	logBatchHeader(cfg, log, &sum)

	for _, m := range missing {
		recordPermanent(&sum, log, snk,
			task.Unit{ID: uuid.New(), InputPath: m},
			task.KindInputNotFound, "input path does not exist", 0)
	}

	jobs := prepareJobs(cfg, log, snk, &sum, entries)
	if len(jobs) == 0 {
		logSummary(cfg, log, &sum)
		return sum
	}

	runPool(ctx, cfg, log, tr, snk, &sum, jobs)

	logSummary(cfg, log, &sum)
	return sum
}

// prepareJobs pre-checks each enumerated file and builds the dispatchable job
// list. Pre-check failures become permanent InputNotFound records (the
// condition is not transient, so no retry); skip-existing and dry-run files
// are counted as skipped.
func prepareJobs(cfg *config.Config, log *logging.Logger, snk sink.Sink, sum *RunSummary, entries []Entry) []*job {
	resolver := newCollisionResolver()
	var jobs []*job

	for _, e := range entries {
		outputPath := resolver.Resolve(e.Path, OutputFor(e, cfg.OutputDir, cfg.Format))

		pr, err := probe.Probe(e.Path)
		if err != nil {
			recordPermanent(sum, log, snk,
				task.NewUnit(e.Path, outputPath),
				task.KindInputNotFound, err.Error(), 0)
			continue
		}

		if cfg.ShowFileStats {
			log.Info("  %s | %s | %s",
				filepath.Base(e.Path), pr.Resolution(), display.FormatBytes(pr.Bytes))
		}

		if cfg.SkipExisting {
			if _, err := os.Stat(outputPath); err == nil {
				log.Warn("Skip (exists): %s", filepath.Base(outputPath))
				sum.Skipped++
				continue
			}
		}

		if cfg.DryRun {
			log.Success("[DRY] Would upscale %s -> %s", e.Path, outputPath)
			sum.Skipped++
			continue
		}

		sum.TotalInputBytes += pr.Bytes
		jobs = append(jobs, &job{unit: task.NewUnit(e.Path, outputPath)})
	}
	return jobs
}

// runPool drives the worker pool: feed pending units without blocking, then
// collect the next result, retrying failures until attempts are exhausted.
// Results arrive in completion order, so they are correlated by task ID.
func runPool(ctx context.Context, cfg *config.Config, log *logging.Logger, tr upscaler.Transform, snk sink.Sink, sum *RunSummary, jobs []*job) {
	p := pool.New(cfg.Workers, cfg.QueueSize, tr)

	track := make(map[uuid.UUID]*job, len(jobs))
	pending := make([]task.Unit, 0, len(jobs))
	for _, j := range jobs {
		track[j.unit.ID] = j
		pending = append(pending, j.unit)
	}
	sum.Submitted = len(jobs)

	outstanding := 0
	done := 0
	total := len(jobs)

	for (outstanding > 0 || len(pending) > 0) && ctx.Err() == nil {
		for len(pending) > 0 && p.TrySubmit(pending[0]) {
			outstanding++
			pending = pending[1:]
		}

		r, err := p.Collect(ctx)
		if err != nil {
			break
		}
		outstanding--

		j := track[r.TaskID]
		if j == nil {
			log.Error("Dropping result for unknown task %s", r.TaskID)
			continue
		}

		if r.Succeeded() {
			done++
			j.terminal = true
			finishSuccess(cfg, log, snk, sum, j, r, done, total)
			continue
		}

		if j.unit.Attempt < cfg.MaxRetries {
			j.unit = j.unit.Retry()
			pending = append(pending, j.unit)
			sum.Retried++
			metrics.TasksRetriedTotal.Inc()
			log.Warn("Retry %d/%d for %s: %s",
				j.unit.Attempt, cfg.MaxRetries, filepath.Base(j.unit.InputPath), r.Err)
			continue
		}

		done++
		j.terminal = true
		recordPermanent(sum, log, snk, j.unit, r.Kind, r.Err, j.unit.Attempt+1)
	}

	interrupted := ctx.Err() != nil
	p.Shutdown(!interrupted)

	if interrupted {
		// Results that were already buffered when the interrupt arrived are
		// terminal outcomes; settle them before sweeping for incomplete tasks.
		for {
			r, err := p.Collect(context.Background())
			if err != nil {
				break
			}
			j := track[r.TaskID]
			if j == nil || j.terminal {
				continue
			}
			if r.Succeeded() {
				done++
				j.terminal = true
				finishSuccess(cfg, log, snk, sum, j, r, done, total)
				continue
			}
			if r.Kind == task.KindCancelled {
				// The interrupt itself killed this attempt; it stays
				// incomplete rather than permanently failed.
				continue
			}
			if j.unit.Attempt >= cfg.MaxRetries {
				done++
				j.terminal = true
				recordPermanent(sum, log, snk, j.unit, r.Kind, r.Err, j.unit.Attempt+1)
			}
			// Failures with retry budget left stay non-terminal; the pool is
			// closed, so they are reported incomplete below.
		}

		log.Warn("Interrupted; recording unfinished tasks")
		for _, j := range jobs {
			if j.terminal {
				continue
			}
			sum.Incomplete++
			sum.IncompleteTasks = append(sum.IncompleteTasks, TaskRecord{
				InputPath:  j.unit.InputPath,
				OutputPath: j.unit.OutputPath,
				Kind:       task.KindCancelled,
				Reason:     "run interrupted",
				Attempts:   j.unit.Attempt,
			})
		}
	}
}

// finishSuccess persists one successful result through the sink. A sink
// write error is a permanent failure; the core does not retry it beyond
// surfacing it in the summary.
func finishSuccess(cfg *config.Config, log *logging.Logger, snk sink.Sink, sum *RunSummary, j *job, r task.Result, done, total int) {
	if err := snk.Write(j.unit.OutputPath, r.Payload); err != nil {
		recordPermanent(sum, log, snk, j.unit, task.KindSinkWrite, err.Error(), j.unit.Attempt+1)
		return
	}

	outBytes := int64(len(r.Payload))
	sum.Succeeded++
	sum.TotalOutputBytes += outBytes
	metrics.OutputBytesTotal.Add(float64(outBytes))

	log.Success("[%d/%d] %s in %s (%s)",
		done, total, filepath.Base(j.unit.InputPath),
		display.FormatDuration(r.Duration), display.FormatBytes(outBytes))
	if cfg.Verbose {
		log.Debug("  -> %s", j.unit.OutputPath)
	}
}

// recordPermanent finalizes one task as permanently failed: counters, the
// summary's failed list, metrics, the log, and the sink's failure ledger.
func recordPermanent(sum *RunSummary, log *logging.Logger, snk sink.Sink, u task.Unit, kind task.FailKind, reason string, attempts int) {
	sum.Failed++
	sum.FailedTasks = append(sum.FailedTasks, TaskRecord{
		InputPath:  u.InputPath,
		OutputPath: u.OutputPath,
		Kind:       kind,
		Reason:     reason,
		Attempts:   attempts,
	})
	metrics.RecordFailure(kind.String())
	log.Error("Failed (%s): %s: %s", kind, u.InputPath, reason)
	if err := snk.RecordFailure(u, kind, reason); err != nil {
		log.Warn("Could not record failure for %s: %v", u.InputPath, err)
	}
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, sum *RunSummary) {
	log.Info("Found %d files", sum.Enumerated)
	log.Info("Workers: %d, queue: %d", cfg.Workers, cfg.QueueSize)
	log.Info("Scale: %dx, format: %s", cfg.Scale, cfg.Format)

	if cfg.StrictMode {
		log.Info("Retry policy: strict (no retries)")
	} else {
		log.Info("Retry policy: up to %d per task", cfg.MaxRetries)
	}
	if cfg.SkipExisting {
		log.Info("Existing outputs: skip")
	} else {
		log.Info("Existing outputs: overwrite")
	}
	if cfg.TaskTimeout > 0 {
		log.Info("Per-attempt timeout: %s", cfg.TaskTimeout)
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, sum *RunSummary) {
	log.Info("==============================")
	log.Info("Done: %d upscaled, %d skipped, %d failed, %d incomplete (%d retries)",
		sum.Succeeded, sum.Skipped, sum.Failed, sum.Incomplete, sum.Retried)

	for _, t := range sum.FailedTasks {
		log.Error("  failed: %s (%s: %s)", t.InputPath, t.Kind, t.Reason)
	}
	for _, t := range sum.IncompleteTasks {
		log.Warn("  incomplete: %s", t.InputPath)
	}

	if cfg.DryRun {
		log.Info("  Output written: n/a (dry run)")
		return
	}
	if sum.Succeeded > 0 {
		log.Info("  Output written: %s (from %s of input)",
			display.FormatBytes(sum.TotalOutputBytes),
			display.FormatBytes(sum.TotalInputBytes))
	}
}
