// Package pool implements the fixed-size worker pool: a bounded submission
// queue fanned out to N workers, with results fanned back in on a single
// channel in completion order.
//
// Workers pull from the shared queue when idle, which load-balances uneven
// task durations (a 4K source occupies one worker while small images flow
// through the others). Each attempt runs the transform as an isolated
// subprocess, so a crashing upscale takes down its own attempt and nothing
// else; a panic inside the transform wrapper is recovered into a failure
// result and the worker keeps serving.
package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/backmassage/upscayv/internal/metrics"
	"github.com/backmassage/upscayv/internal/task"
	"github.com/backmassage/upscayv/internal/upscaler"
)

// Errors returned by Submit and Collect.
var (
	ErrPoolClosed = errors.New("pool is shut down")
	ErrDrained    = errors.New("all results collected")
)

// Pool owns the workers and the two queues. Create with New, feed with
// Submit/TrySubmit, drain with Collect, and finish with Shutdown.
type Pool struct {
	size      int
	transform upscaler.Transform

	tasks   chan task.Unit
	results chan task.Result

	ctx    context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup
	inFlight atomic.Int64

	closeOnce sync.Once
	doneOnce  sync.Once
}

// New starts size workers pulling from a queue of queueSize capacity.
// The results channel is sized so workers never block handing back a result,
// even while the collector is busy resubmitting retries.
func New(size, queueSize int, tr upscaler.Transform) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 1 {
		queueSize = 2 * size
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		size:      size,
		transform: tr,
		tasks:     make(chan task.Unit, queueSize),
		results:   make(chan task.Result, queueSize+size),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// InFlight returns the number of tasks currently being processed. Never
// exceeds Size.
func (p *Pool) InFlight() int { return int(p.inFlight.Load()) }

// Submit enqueues a task, blocking while the queue is full (backpressure).
// It returns the context error if ctx is cancelled while waiting, or
// ErrPoolClosed after Shutdown.
func (p *Pool) Submit(ctx context.Context, u task.Unit) error {
	select {
	case <-p.ctx.Done():
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- u:
		metrics.TasksSubmittedTotal.Inc()
		return nil
	}
}

// TrySubmit enqueues a task without blocking; it reports false when the
// queue is full. Used by the coordinator's drive loop so it can alternate
// between feeding the queue and draining results.
func (p *Pool) TrySubmit(u task.Unit) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- u:
		metrics.TasksSubmittedTotal.Inc()
		return true
	default:
		return false
	}
}

// Collect blocks until the next result is available, in completion order.
// It returns the context error on cancellation and ErrDrained once the
// result channel is closed after a draining Shutdown.
func (p *Pool) Collect(ctx context.Context) (task.Result, error) {
	select {
	case r, ok := <-p.results:
		if !ok {
			return task.Result{}, ErrDrained
		}
		return r, nil
	case <-ctx.Done():
		// Prefer an already-buffered result over reporting cancellation.
		select {
		case r, ok := <-p.results:
			if !ok {
				return task.Result{}, ErrDrained
			}
			return r, nil
		default:
			return task.Result{}, ctx.Err()
		}
	}
}

// Shutdown stops intake. With wait=true it blocks until queued and in-flight
// tasks finish, then closes the results channel so remaining results can be
// drained via Collect. With wait=false it cancels the pool context, which
// kills in-flight subprocesses best-effort; an attempt already inside the
// opaque transform may still complete before noticing.
func (p *Pool) Shutdown(wait bool) {
	p.closeOnce.Do(func() { close(p.tasks) })
	if !wait {
		p.cancel()
	}
	p.wg.Wait()
	p.doneOnce.Do(func() { close(p.results) })
}

// worker pulls tasks until the queue closes or the pool context is cancelled.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case u, ok := <-p.tasks:
			if !ok {
				return
			}
			p.inFlight.Add(1)
			metrics.TasksInFlight.Inc()
			r := p.runTask(u)
			p.inFlight.Add(-1)
			metrics.TasksInFlight.Dec()
			metrics.RecordCompleted(r.Status.String(), r.Duration)
			select {
			case p.results <- r:
			case <-p.ctx.Done():
				// Teardown in progress; the coordinator accounts for the
				// task as incomplete.
				return
			}
		}
	}
}

// runTask executes one attempt and converts every outcome, including a
// panic, into a Result. The named return lets the deferred recover replace
// the result on the way out.
func (p *Pool) runTask(u task.Unit) (res task.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = task.Result{
				TaskID:   u.ID,
				Status:   task.StatusFailure,
				Kind:     task.KindWorkerCrash,
				Err:      fmt.Sprintf("worker panic: %v\n%s", r, debug.Stack()),
				Duration: time.Since(start),
			}
		}
	}()

	payload, err := p.transform.Upscale(p.ctx, u.InputPath)
	if err != nil {
		return task.Result{
			TaskID:   u.ID,
			Status:   task.StatusFailure,
			Kind:     classify(err),
			Err:      err.Error(),
			Duration: time.Since(start),
		}
	}
	return task.Result{
		TaskID:   u.ID,
		Status:   task.StatusSuccess,
		Payload:  payload,
		Duration: time.Since(start),
	}
}

// classify maps a transform error to the failure taxonomy. A subprocess
// killed by a signal counts as a worker crash; everything else from the
// opaque transform is a transform failure.
func classify(err error) task.FailKind {
	var ue *upscaler.Error
	if errors.As(err, &ue) && ue.Crashed {
		return task.KindWorkerCrash
	}
	if errors.Is(err, context.Canceled) {
		return task.KindCancelled
	}
	return task.KindTransformFailure
}
