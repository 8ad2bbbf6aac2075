package pool

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/upscayv/internal/task"
	"github.com/backmassage/upscayv/internal/upscaler"
)

func okTransform(payload []byte) upscaler.Transform {
	return upscaler.TransformFunc(func(ctx context.Context, inputPath string) ([]byte, error) {
		return payload, nil
	})
}

func TestPool_AllSucceed(t *testing.T) {
	p := New(4, 8, okTransform([]byte("pixels")))

	const n = 20
	ids := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		u := task.NewUnit("/in/img.png", "/out/img.png")
		ids[u.ID.String()] = true
		require.NoError(t, p.Submit(context.Background(), u))
	}

	for i := 0; i < n; i++ {
		r, err := p.Collect(context.Background())
		require.NoError(t, err)
		assert.True(t, r.Succeeded())
		assert.Equal(t, []byte("pixels"), r.Payload)
		assert.True(t, ids[r.TaskID.String()], "result correlates to a submitted task")
	}

	p.Shutdown(true)
	_, err := p.Collect(context.Background())
	assert.ErrorIs(t, err, ErrDrained)
}

func TestPool_InFlightNeverExceedsSize(t *testing.T) {
	const size = 3
	var cur, peak atomic.Int64

	tr := upscaler.TransformFunc(func(ctx context.Context, inputPath string) ([]byte, error) {
		n := cur.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		cur.Add(-1)
		return []byte("x"), nil
	})

	p := New(size, size*2, tr)
	const n = 24
	go func() {
		for i := 0; i < n; i++ {
			p.Submit(context.Background(), task.NewUnit("/in/a.png", "/out/a.png"))
		}
	}()
	for i := 0; i < n; i++ {
		_, err := p.Collect(context.Background())
		require.NoError(t, err)
	}
	p.Shutdown(true)

	assert.LessOrEqual(t, peak.Load(), int64(size))
}

func TestPool_TrySubmitBackpressure(t *testing.T) {
	release := make(chan struct{})
	tr := upscaler.TransformFunc(func(ctx context.Context, inputPath string) ([]byte, error) {
		<-release
		return []byte("x"), nil
	})

	const size, queue = 2, 2
	p := New(size, queue, tr)
	defer func() {
		close(release)
		p.Shutdown(true)
	}()

	// Fill the workers, then the queue. The pool accepts size+queue units
	// before TrySubmit starts reporting a full queue; allow a few extra
	// attempts for workers to pull from the queue.
	accepted := 0
	deadline := time.After(2 * time.Second)
	for accepted < size+queue {
		if p.TrySubmit(task.NewUnit("/in/a.png", "/out/a.png")) {
			accepted++
			continue
		}
		select {
		case <-deadline:
			t.Fatalf("only %d of %d units accepted", accepted, size+queue)
		case <-time.After(time.Millisecond):
		}
	}

	// Everything is now blocked on the release gate; the next submit must
	// be rejected rather than blocking.
	assert.False(t, p.TrySubmit(task.NewUnit("/in/b.png", "/out/b.png")))
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New(1, 1, okTransform(nil))
	p.Shutdown(true)

	err := p.Submit(context.Background(), task.NewUnit("/in/a.png", "/out/a.png"))
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.False(t, p.TrySubmit(task.NewUnit("/in/a.png", "/out/a.png")))
}

func TestPool_SubmitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	tr := upscaler.TransformFunc(func(ctx context.Context, inputPath string) ([]byte, error) {
		<-release
		return nil, nil
	})
	p := New(1, 1, tr)
	defer func() {
		close(release)
		p.Shutdown(true)
	}()

	// Saturate worker and queue so the next Submit blocks.
	for i := 0; i < 2; i++ {
		require.NoError(t, p.Submit(context.Background(), task.NewUnit("/in/a.png", "/out/a.png")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, task.NewUnit("/in/b.png", "/out/b.png"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_PanicBecomesWorkerCrash(t *testing.T) {
	var calls atomic.Int64
	tr := upscaler.TransformFunc(func(ctx context.Context, inputPath string) ([]byte, error) {
		if calls.Add(1) == 1 {
			panic("corrupt state")
		}
		return []byte("x"), nil
	})

	p := New(1, 2, tr)
	require.NoError(t, p.Submit(context.Background(), task.NewUnit("/in/bad.png", "/out/bad.png")))

	r, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.False(t, r.Succeeded())
	assert.Equal(t, task.KindWorkerCrash, r.Kind)
	assert.True(t, strings.Contains(r.Err, "worker panic"), "error carries the panic value: %s", r.Err)

	// The worker survived the panic and keeps serving.
	require.NoError(t, p.Submit(context.Background(), task.NewUnit("/in/good.png", "/out/good.png")))
	r, err = p.Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Succeeded())

	p.Shutdown(true)
}

func TestPool_CollectHonorsContext(t *testing.T) {
	p := New(1, 1, okTransform(nil))
	defer p.Shutdown(true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Collect(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_CollectPrefersBufferedResultOverCancellation(t *testing.T) {
	p := New(1, 1, okTransform([]byte("x")))
	require.NoError(t, p.Submit(context.Background(), task.NewUnit("/in/a.png", "/out/a.png")))

	// Wait for the result to be buffered, then collect with a cancelled
	// context: the buffered result must win.
	require.Eventually(t, func() bool { return len(p.results) == 1 },
		time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := p.Collect(ctx)
	require.NoError(t, err)
	assert.True(t, r.Succeeded())

	p.Shutdown(true)
}

func TestPool_AbortShutdownUnblocksWorkers(t *testing.T) {
	started := make(chan struct{}, 1)
	tr := upscaler.TransformFunc(func(ctx context.Context, inputPath string) ([]byte, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	})

	p := New(1, 1, tr)
	require.NoError(t, p.Submit(context.Background(), task.NewUnit("/in/a.png", "/out/a.png")))
	<-started

	done := make(chan struct{})
	go func() {
		p.Shutdown(false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown(false) did not return")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want task.FailKind
	}{
		{"crash", &upscaler.Error{Crashed: true, Err: errors.New("signal: killed")}, task.KindWorkerCrash},
		{"exit failure", &upscaler.Error{Err: errors.New("exit status 1")}, task.KindTransformFailure},
		{"cancelled", context.Canceled, task.KindCancelled},
		{"plain error", errors.New("boom"), task.KindTransformFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
